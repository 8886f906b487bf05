package realtime

import (
	"net/url"
	"strings"

	"github.com/agentstation/tasksync/internal/transport"
	"github.com/agentstation/tasksync/pkg/constants"
	"github.com/agentstation/tasksync/pkg/errors"
)

// EndpointURL derives the realtime endpoint from the REST API base:
// http becomes ws, https becomes wss, "/ws" is appended to the base path
// and the bearer token rides in the token query parameter.
func EndpointURL(apiBase *url.URL, token string) (string, error) {
	if apiBase == nil {
		return "", errors.NewValidationError("api_url", nil, "is required")
	}
	u := *apiBase
	switch strings.ToLower(u.Scheme) {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", errors.NewValidationError("api_url", apiBase.String(), "scheme must be http or https")
	}
	u.Fragment = ""
	ws := u.JoinPath(constants.RealtimePath)
	(&transport.QueryAuth{Param: constants.TokenQueryParam}).ApplyURL(ws, token)
	return ws.String(), nil
}

// redact hides the token in an endpoint URL for logging.
func redact(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "<invalid url>"
	}
	q := u.Query()
	if q.Has(constants.TokenQueryParam) {
		q.Set(constants.TokenQueryParam, "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
