package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/azhar1598/xplore-be/pkg/errors"
)

const internalErrorMessage = "Internal server error"

// APIResponse describes the standard envelope returned by the API.
type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Success sends a successful response using the shared envelope format.
func Success(c echo.Context, status int, message string, data any) error {
	if status == 0 {
		status = http.StatusOK
	}
	return c.JSON(status, APIResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// Error sends an error response using the shared envelope format.
func Error(c echo.Context, status int, code, message string) error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return c.JSON(status, APIResponse{
		Status:  "error",
		Message: message,
		Code:    code,
	})
}

// ErrorFrom maps err onto the envelope. Unclassified failures never leak their
// message.
func ErrorFrom(c echo.Context, err error) error {
	status := errors.StatusCode(err)
	message := internalErrorMessage
	if status != http.StatusInternalServerError {
		message = errors.Message(err, message)
	}
	return Error(c, status, errors.Code(err), message)
}

// legacyError is the bare {"error", "details"} body served on the root route.
type legacyError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func legacyErrorFrom(c echo.Context, err error) error {
	status := errors.StatusCode(err)
	switch status {
	case http.StatusBadRequest:
		return c.JSON(status, legacyError{Error: errors.Message(err, "Bad request")})
	case http.StatusInternalServerError:
		return c.JSON(status, legacyError{Error: internalErrorMessage, Details: err.Error()})
	default:
		return c.JSON(status, legacyError{Error: errors.Message(err, internalErrorMessage), Details: err.Error()})
	}
}
