package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type tokenTable map[string]string

func (t tokenTable) Authenticate(token string) (string, bool) {
	id, ok := t[token]
	return id, ok
}

func TestDefaultAuthConfig(t *testing.T) {
	config := DefaultAuthConfig()

	assert.True(t, config.Enabled)
	assert.Equal(t, "token", config.QueryParam)
	assert.Contains(t, config.PublicPaths, "/api/health")
}

func TestAuth(t *testing.T) {
	logger := zerolog.Nop()
	users := tokenTable{"alice-token": "alice"}

	tests := []struct {
		name           string
		config         AuthConfig
		method         string
		target         string
		header         string
		expectedStatus int
		expectedUser   string
	}{
		{
			name:           "bearer header",
			config:         DefaultAuthConfig(),
			target:         "/api/todos",
			header:         "Bearer alice-token",
			expectedStatus: http.StatusOK,
			expectedUser:   "alice",
		},
		{
			name:           "query parameter",
			config:         DefaultAuthConfig(),
			target:         "/api/ws?token=alice-token",
			expectedStatus: http.StatusOK,
			expectedUser:   "alice",
		},
		{
			name:           "header wins over query",
			config:         DefaultAuthConfig(),
			target:         "/api/ws?token=alice-token",
			header:         "Bearer nope",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "raw token without scheme",
			config:         DefaultAuthConfig(),
			target:         "/api/todos",
			header:         "alice-token",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "unknown token",
			config:         DefaultAuthConfig(),
			target:         "/api/todos",
			header:         "Bearer bob-token",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "missing token",
			config:         DefaultAuthConfig(),
			target:         "/api/todos",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "public path",
			config:         DefaultAuthConfig(),
			target:         "/api/health",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "preflight",
			config:         DefaultAuthConfig(),
			method:         http.MethodOptions,
			target:         "/api/todos",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "disabled",
			config:         AuthConfig{},
			target:         "/api/todos",
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := Auth(tt.config, users, &logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = UserID(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req := httptest.NewRequest(method, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedUser, seen)
			if w.Code == http.StatusUnauthorized {
				assert.JSONEq(t, `{"error":"UNAUTHORIZED","message":"Invalid or missing bearer token"}`, w.Body.String())
			}
		})
	}
}

func TestUserIDWithoutAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, UserID(req.Context()))
	assert.Equal(t, "bob", UserID(WithUserID(req.Context(), "bob")))
}
