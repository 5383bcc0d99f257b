package client

import (
	"errors"
	"fmt"
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors (bad parameters, auth, quota).
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 Too Many Requests.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network, timeout and open-breaker failures.
	ErrorClassNetwork ErrorClass = "network"
)

// Common errors returned by the client.
var (
	// ErrCircuitOpen is wrapped by APIError when the circuit breaker rejects a request.
	ErrCircuitOpen = errors.New("circuit breaker open")
)

// APIError is a transport failure: either the request never produced a
// response (StatusCode 0, ErrorClassNetwork) or the API answered with a
// non-2xx status. It is never retried by this package.
type APIError struct {
	Endpoint   string
	StatusCode int
	ErrorClass ErrorClass
	// Message is the API's error message when the body carried one,
	// otherwise the HTTP status text.
	Message string
	// Reason is the first machine-readable reason code, e.g. "quotaExceeded".
	Reason string
	Body   []byte
	Err    error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s error (status %d): %s: %v",
			e.Endpoint, e.ErrorClass, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s error (status %d): %s",
		e.Endpoint, e.ErrorClass, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// DecodeError reports a response body, or an item inside it, that does not
// have the expected shape.
type DecodeError struct {
	Endpoint string
	Detail   string
	Err      error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s: %s: %v", e.Endpoint, e.Detail, e.Err)
	}
	return fmt.Sprintf("decode %s: %s", e.Endpoint, e.Detail)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsClass reports whether err is an APIError of the given class.
func IsClass(err error, class ErrorClass) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.ErrorClass == class
}

// StatusCode returns the HTTP status of an APIError in err's chain, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
