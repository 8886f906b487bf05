package transport

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/agentstation/tasksync/pkg/errors"
)

// RequestBuilder derives endpoint URLs from a configured API base.
type RequestBuilder struct {
	base *url.URL
}

// NewRequestBuilder parses base, which must be an absolute http(s) URL.
func NewRequestBuilder(base string) (*RequestBuilder, error) {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return nil, errors.WrapParse("url", "", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.NewValidationError("api_url", base, "must be an absolute http or https URL")
	}
	return &RequestBuilder{base: u}, nil
}

// Base returns a copy of the API base URL.
func (rb *RequestBuilder) Base() *url.URL {
	u := *rb.base
	return &u
}

// URL joins path elements onto the base. Elements are escaped.
func (rb *RequestBuilder) URL(elems ...string) string {
	escaped := make([]string, len(elems))
	for i, e := range elems {
		escaped[i] = url.PathEscape(e)
	}
	return rb.base.JoinPath(escaped...).String()
}

// errorBody is the JSON error envelope returned by the backend.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// DecodeResponse closes the body and decodes a 2xx JSON response into
// target. Non-2xx responses become *errors.APIError.
func DecodeResponse(resp *http.Response, target any) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapIO("read", "response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(body))
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil {
			if eb.Message != "" {
				msg = eb.Message
			} else if eb.Error != "" {
				msg = eb.Error
			}
		}
		endpoint := ""
		if resp.Request != nil && resp.Request.URL != nil {
			endpoint = resp.Request.URL.Path
		}
		return errors.NewAPIError(endpoint, resp.StatusCode, msg)
	}

	if target == nil || resp.StatusCode == http.StatusNoContent || len(body) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", "response", err)
	}
	return nil
}
