// Package errors defines the error values shared by the tasksync client,
// CLI and development backend. Typed errors report their category through
// errors.Is against the sentinels below, so callers test categories with
// IsNotFound, IsUnauthorized and friends rather than inspecting types.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// New is errors.New.
var New = errors.New

// Categories.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized covers missing, expired and rejected bearer tokens.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUnavailable covers backend 5xx answers and transport failures.
	ErrUnavailable  = errors.New("backend unavailable")
	ErrNoCredential = errors.New("no credential available")
	ErrTimeout      = errors.New("operation timed out")
	ErrCanceled     = errors.New("operation canceled")
	// ErrUnknownEvent marks an inbound frame with a missing or unrecognised tag.
	ErrUnknownEvent = errors.New("unknown event")
)

// NotFoundError reports a missing record.
type NotFoundError struct {
	Resource string
	ID       string
}

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// Is matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError reports a rejected input value.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// NewValidationError creates a ValidationError.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Is matches ErrInvalidInput.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// APIError is a non-2xx answer from the REST backend. A zero StatusCode
// means no answer arrived; Err then says why.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
	Err        error
}

// NewAPIError creates an APIError.
func NewAPIError(endpoint string, statusCode int, message string) *APIError {
	return &APIError{Endpoint: endpoint, StatusCode: statusCode, Message: message}
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
	if e.Endpoint == "" {
		return msg
	}
	return e.Endpoint + ": " + msg
}

func (e *APIError) Unwrap() error { return e.Err }

// Is matches the category of the status code.
func (e *APIError) Is(target error) bool {
	c := statusCategory(e.StatusCode)
	return c != nil && c == target
}

func statusCategory(code int) error {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrInvalidInput
	}
	if code >= http.StatusInternalServerError {
		return ErrUnavailable
	}
	return nil
}

// ConfigError reports unusable configuration.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// NewConfigError creates a ConfigError.
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

func (e *ConfigError) Error() string {
	if e.Component == "" {
		return "config: " + e.Message
	}
	return fmt.Sprintf("config %s: %s", e.Component, e.Message)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ParseError reports undecodable data.
type ParseError struct {
	Format  string // json, yaml, url
	File    string
	Message string
	Err     error
}

// NewParseError creates a ParseError.
func NewParseError(format, file, message string, err error) *ParseError {
	return &ParseError{Format: format, File: file, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("parsing %s: %s", e.Format, e.Message)
	}
	return fmt.Sprintf("parsing %s file %s: %s", e.Format, e.File, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IOError reports a failed file operation.
type IOError struct {
	Operation string
	Path      string
	Err       error
}

// NewIOError creates an IOError.
func NewIOError(operation, path string, err error) *IOError {
	return &IOError{Operation: operation, Path: path, Err: err}
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Operation, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ResourceError attributes a failure to a REST operation on a record or
// collection, e.g. "update todo t-1".
type ResourceError struct {
	Operation string
	Resource  string
	ID        string
	Err       error
}

// NewResourceError creates a ResourceError.
func NewResourceError(operation, resource, id string, err error) *ResourceError {
	return &ResourceError{Operation: operation, Resource: resource, ID: id, Err: err}
}

func (e *ResourceError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s %s: %v", e.Operation, e.Resource, e.Err)
	}
	return fmt.Sprintf("%s %s %s: %v", e.Operation, e.Resource, e.ID, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// TransportError reports a realtime socket failure. URL never carries the
// token.
type TransportError struct {
	Operation string // dial, read, close
	URL       string
	Err       error
}

func (e *TransportError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("realtime %s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("realtime %s %s: %v", e.Operation, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is matches ErrUnavailable.
func (e *TransportError) Is(target error) bool { return target == ErrUnavailable }

// IsNotFound reports whether err is in the not-found category.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsValidationError reports whether err is in the invalid-input category.
func IsValidationError(err error) bool { return errors.Is(err, ErrInvalidInput) }

// IsUnauthorized reports whether err is in the unauthorized category.
func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }

// IsUnavailable reports whether the backend or transport could not be reached.
func IsUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }

// IsTimeout reports whether err is a timeout, including an expired context deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}

// IsCanceled reports whether err is a cancellation, including a cancelled context.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled)
}

// FromContext classifies a context error as ErrTimeout or ErrCanceled,
// keeping the original in the chain. Other errors, and errors already
// classified, pass through.
func FromContext(operation string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrTimeout), errors.Is(err, ErrCanceled):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w: %w", operation, ErrTimeout, err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w: %w", operation, ErrCanceled, err)
	}
	return err
}

// The Wrap helpers return nil for a nil err.

// WrapValidation converts err into a ValidationError on field.
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO wraps err as an IOError.
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapResource wraps err as a ResourceError.
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewResourceError(operation, resource, id, err)
}

// WrapParse wraps err as a ParseError.
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapTransport wraps err as a TransportError.
func WrapTransport(operation, url string, err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{Operation: operation, URL: url, Err: err}
}
