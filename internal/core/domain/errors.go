package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrInvalidInput marks a request that failed validation.
var ErrInvalidInput = errors.New("invalid input")

// ErrorSource identifies which collaborator a failure came from.
type ErrorSource string

const (
	SourceUpstreamFeed    ErrorSource = "upstream-feed"
	SourceForecastService ErrorSource = "forecast-service"
	SourceNetwork         ErrorSource = "network"
)

// APIError is the typed failure returned by the feed and forecast adapters.
// Status is the upstream HTTP status, zero when none was received.
type APIError struct {
	Source  ErrorSource `json:"source"`
	Message string      `json:"message"`
	Status  int         `json:"status,omitempty"`
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (HTTP %d)", e.Source, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Message)
}

// NewAPIError builds an APIError.
func NewAPIError(source ErrorSource, status int, format string, args ...any) *APIError {
	return &APIError{Source: source, Status: status, Message: fmt.Sprintf(format, args...)}
}

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Status == http.StatusNotFound
}
