package completion

import (
	"errors"
	"fmt"
)

var (
	ErrMissingAPIKey     = errors.New("completion: no API key")
	ErrMalformedResponse = errors.New("completion: malformed response")
)

// StatusError is a non-2xx answer from the provider. Message is the
// provider's text and must not be forwarded to end users.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("completion: provider returned %d: %s", e.StatusCode, e.Message)
}

// TransportError means the provider could not be reached.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "completion: transport failure: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
