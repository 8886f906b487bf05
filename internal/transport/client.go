// Package transport provides the authenticated HTTP plumbing shared by the
// REST API client: credential application, JSON encoding and response
// classification.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/agentstation/tasksync/pkg/constants"
	"github.com/agentstation/tasksync/pkg/errors"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// TokenSource yields the current bearer token, if any.
type TokenSource interface {
	Token() (string, bool)
}

// Client provides HTTP client functionality with authentication.
type Client struct {
	http   *http.Client
	auth   Authenticator
	tokens TokenSource
}

// New creates a new transport client. The token is fetched from tokens
// before every request; tokens may be nil for unauthenticated use.
func New(auth Authenticator, tokens TokenSource) *Client {
	if auth == nil {
		auth = &NoAuth{}
	}
	return &Client{
		http:   &http.Client{Timeout: DefaultHTTPTimeout},
		auth:   auth,
		tokens: tokens,
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.http = hc
	}
	return c
}

// Do performs an HTTP request with authentication applied.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			c.auth.Apply(req, token)
		}
	}

	req.Header.Set("Accept", "application/json")
	if req.Body != nil && (req.Method == http.MethodPost || req.Method == http.MethodPut || req.Method == http.MethodPatch) {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.FromContext(req.Method+" "+req.URL.Path, ctx.Err())
		}
		return nil, &errors.APIError{Endpoint: req.URL.Path, Message: err.Error(), Err: errors.ErrUnavailable}
	}
	return resp, nil
}

// JSON sends body (when non-nil) as JSON and decodes the response into
// target (when non-nil).
func (c *Client) JSON(ctx context.Context, method, url string, body, target any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.WrapParse("json", "request", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return errors.WrapResource("create", "request", method+" "+url, err)
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return DecodeResponse(resp, target)
}
