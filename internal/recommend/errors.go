package recommend

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sahoo-ansu/I-MED/internal/intake"
)

// InvalidInputError rejects empty, too short or non-medical symptom text.
type InvalidInputError struct {
	Reason intake.Reason
}

func (e *InvalidInputError) Error() string {
	return "invalid symptom input: " + string(e.Reason)
}

// AuthenticationError means no usable completion API key was available.
type AuthenticationError struct{}

func (e *AuthenticationError) Error() string {
	return "no completion API key configured"
}

// UpstreamServiceError carries the provider's failing HTTP status.
type UpstreamServiceError struct {
	StatusCode int
	Err        error
}

func (e *UpstreamServiceError) Error() string {
	return fmt.Sprintf("completion provider returned %d: %v", e.StatusCode, e.Err)
}

func (e *UpstreamServiceError) Unwrap() error { return e.Err }

// ResponseParseError is a completion payload that could not be read.
type ResponseParseError struct {
	Err error
}

func (e *ResponseParseError) Error() string {
	return "failed to parse completion response: " + e.Err.Error()
}

func (e *ResponseParseError) Unwrap() error { return e.Err }

// TransportError means the completion provider could not be reached.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "completion provider unreachable: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

const (
	MessageInvalidInput = "Please provide valid symptom information. Your input appears to be incomplete or invalid."
	MessageNoAPIKey     = "No API key provided. Please configure an OpenRouter API key."
	MessageParseFailure = "Failed to parse AI response. Please try again."
	MessageTransport    = "AI service error"
	MessageInternal     = "An error occurred while processing your request"
)

// StatusCode maps an error returned by this package to an HTTP status.
func StatusCode(err error) int {
	var (
		invalid   *InvalidInputError
		auth      *AuthenticationError
		upstream  *UpstreamServiceError
		parse     *ResponseParseError
		transport *TransportError
	)
	switch {
	case errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.As(err, &auth):
		return http.StatusUnauthorized
	case errors.As(err, &upstream):
		if upstream.StatusCode >= 400 && upstream.StatusCode <= 599 {
			return upstream.StatusCode
		}
		return http.StatusBadGateway
	case errors.As(err, &parse):
		return http.StatusInternalServerError
	case errors.As(err, &transport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the client-facing text for err. Provider bodies and
// internal details never appear in it.
func PublicMessage(err error) string {
	var (
		invalid   *InvalidInputError
		auth      *AuthenticationError
		upstream  *UpstreamServiceError
		parse     *ResponseParseError
		transport *TransportError
	)
	switch {
	case errors.As(err, &invalid):
		return MessageInvalidInput
	case errors.As(err, &auth):
		return MessageNoAPIKey
	case errors.As(err, &upstream):
		return fmt.Sprintf("AI service error (%d)", StatusCode(err))
	case errors.As(err, &parse):
		return MessageParseFailure
	case errors.As(err, &transport):
		return MessageTransport
	default:
		return MessageInternal
	}
}
