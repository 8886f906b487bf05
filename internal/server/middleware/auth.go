package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/tasksync/internal/server/response"
	"github.com/agentstation/tasksync/pkg/constants"
)

// Authenticator resolves a bearer token to a user id.
type Authenticator interface {
	Authenticate(token string) (userID string, ok bool)
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	Enabled     bool
	PublicPaths []string
	// QueryParam is consulted when the Authorization header is absent,
	// since browsers cannot set headers on a WebSocket handshake.
	QueryParam string
}

// DefaultAuthConfig returns default authentication configuration.
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{
		Enabled:     true,
		PublicPaths: []string{"/api/health"},
		QueryParam:  constants.TokenQueryParam,
	}
}

type userKey struct{}

// WithUserID returns a context carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// UserID returns the authenticated user id, or "" when the request was not
// authenticated.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userKey{}).(string)
	return id
}

// Auth middleware resolves the bearer token of protected requests and
// stores the user id in the request context.
func Auth(config AuthConfig, users Authenticator, logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.Enabled || slices.Contains(config.PublicPaths, r.URL.Path) || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			token := extractToken(r, config)
			userID, ok := "", false
			if token != "" {
				userID, ok = users.Authenticate(token)
			}
			if !ok {
				logger.Warn().
					Str("path", r.URL.Path).
					Str("remote_addr", r.RemoteAddr).
					Bool("token_provided", token != "").
					Msg("Authentication failed")

				response.Unauthorized(w, "Invalid or missing bearer token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// extractToken extracts the bearer token from the request.
func extractToken(r *http.Request, config AuthConfig) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if config.QueryParam != "" {
		return r.URL.Query().Get(config.QueryParam)
	}
	return ""
}
