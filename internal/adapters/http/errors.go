package http

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/balloonwind/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`             // bad_request, not_found, upstream_error, ...
	Message   string `json:"message"`          // Human-readable message
	Source    string `json:"source,omitempty"` // failing collaborator, if any
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	return writeAPIError(c, APIError{Status: status, Code: code, Message: message})
}

func writeAPIError(c *fiber.Ctx, e APIError) error {
	e.RequestID, _ = c.Locals("requestid").(string)
	return c.Status(e.Status).JSON(e)
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// classify maps a service error onto a response.
func classify(err error) APIError {
	if errors.Is(err, domain.ErrInvalidInput) {
		return APIError{Status: http.StatusBadRequest, Code: "bad_request", Message: err.Error()}
	}
	if apiErr, ok := domain.AsAPIError(err); ok {
		e := APIError{Message: apiErr.Message, Source: string(apiErr.Source)}
		switch {
		case apiErr.Status == http.StatusNotFound:
			e.Status, e.Code = http.StatusNotFound, "not_found"
		case apiErr.Source == domain.SourceNetwork:
			e.Status, e.Code = http.StatusServiceUnavailable, "upstream_unavailable"
		default:
			e.Status, e.Code = http.StatusBadGateway, "upstream_error"
		}
		return e
	}
	return APIError{Status: http.StatusInternalServerError, Code: "internal_error", Message: err.Error()}
}

// errFromService writes the response for a usecase error and logs server-side
// failures.
func errFromService(c *fiber.Ctx, err error) error {
	e := classify(err)
	if e.Status >= 500 {
		LoggerFromCtx(c.UserContext()).Error("request failed",
			"path", c.Path(), "code", e.Code, "source", e.Source, "error", err)
	}
	return writeAPIError(c, e)
}
