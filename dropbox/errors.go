package dropbox

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid dropbox client configuration")
	// ErrInvalidArgument indicates a request argument failed validation before dispatch
	ErrInvalidArgument = errors.New("invalid request argument")
	// ErrTransport indicates the request could not be built, sent or read
	ErrTransport = errors.New("dropbox transport error")
	// ErrDecode indicates a response body or header did not match the expected shape
	ErrDecode = errors.New("failed to decode dropbox response")
	// ErrMissingHeader indicates a download response lacked its result header
	ErrMissingHeader = errors.New("expected response header not found")
	// ErrContractViolation indicates an endpoint returned an error it is documented never to return
	ErrContractViolation = errors.New("dropbox endpoint broke its documented error contract")
)

// TransportError is returned when a request cannot be built, sent or read.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrTransport, e.Op, e.Err)
}

// Unwrap exposes both the transport kind and the underlying cause, so that
// errors.Is works for ErrTransport as well as for causes like context.Canceled.
func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

// DecodeError is returned when a response does not parse as the expected shape.
type DecodeError struct {
	// Source names what was being decoded, e.g. "response body".
	Source string
	// Raw holds the undecodable text for diagnostics.
	Raw string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrDecode, e.Source, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrDecode, e.Err}
}

// MissingHeaderError is returned when a download response has no result header.
type MissingHeaderError struct {
	Header string
}

func (e *MissingHeaderError) Error() string {
	return fmt.Sprintf("couldn't find header: %s", e.Header)
}

func (e *MissingHeaderError) Is(target error) bool {
	return target == ErrMissingHeader
}

// APIError is a non-2xx response whose body matched the Dropbox error shape:
//
//	{"error_summary": "...", "error": {".tag": "..."}, "user_message": ...}
//
// E is the closed error union of the endpoint that produced it.
type APIError[E any] struct {
	StatusCode int
	// Body is the raw response text.
	Body          string
	Summary       string
	EndpointError E
	// UserMessage is nil when the field was absent or null.
	UserMessage *string
}

// Error implements the error interface
func (e *APIError[E]) Error() string {
	if s, ok := any(e.EndpointError).(fmt.Stringer); ok && s.String() != "" {
		return fmt.Sprintf("dropbox API error: status %d: %s", e.StatusCode, s.String())
	}
	return fmt.Sprintf("dropbox API error: status %d: %s", e.StatusCode, e.Summary)
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *APIError[E]) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsRateLimited checks if the error indicates the app or user is being rate limited
func (e *APIError[E]) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// AsAPIError finds the first *APIError[E] in err's chain.
func AsAPIError[E any](err error) (*APIError[E], bool) {
	var apiErr *APIError[E]
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// ContractViolationError wraps an API error returned by an endpoint whose
// documented contract has no error union.
type ContractViolationError struct {
	Route string
	Err   error
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrContractViolation, e.Route, e.Err)
}

func (e *ContractViolationError) Unwrap() []error {
	return []error{ErrContractViolation, e.Err}
}
