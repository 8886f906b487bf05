package transport

import (
	"net/http"
	"net/url"
)

// Authenticator applies a bearer credential to an outgoing request.
type Authenticator interface {
	Apply(req *http.Request, token string)
}

// NoAuth implements no authentication.
type NoAuth struct{}

// Apply implements the Authenticator interface for NoAuth.
func (a *NoAuth) Apply(_ *http.Request, _ string) {}

// BearerAuth sends the token in the Authorization header.
type BearerAuth struct{}

// Apply implements the Authenticator interface for BearerAuth.
func (a *BearerAuth) Apply(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
}

// HeaderAuth implements custom header authentication.
type HeaderAuth struct {
	Header string
}

// Apply implements the Authenticator interface for HeaderAuth.
func (a *HeaderAuth) Apply(req *http.Request, token string) {
	req.Header.Set(a.Header, token)
}

// QueryAuth sends the token as a query parameter. Browsers cannot set
// headers on a WebSocket upgrade, so the realtime endpoint uses this.
type QueryAuth struct {
	Param string
}

// Apply implements the Authenticator interface for QueryAuth.
func (a *QueryAuth) Apply(req *http.Request, token string) {
	if req.URL == nil {
		return
	}
	a.ApplyURL(req.URL, token)
}

// ApplyURL sets the token parameter on u directly.
func (a *QueryAuth) ApplyURL(u *url.URL, token string) {
	query := u.Query()
	query.Set(a.Param, token)
	u.RawQuery = query.Encode()
}

// Ensure authenticators implement Authenticator at compile time
var (
	_ Authenticator = (*NoAuth)(nil)
	_ Authenticator = (*BearerAuth)(nil)
	_ Authenticator = (*HeaderAuth)(nil)
	_ Authenticator = (*QueryAuth)(nil)
)
