package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"tarvee/internal/auth"
	"tarvee/internal/http/middleware"
	"tarvee/internal/validation"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

// errorEnvelope carries a machine-readable code and a safe message. Title is
// the heading of the notification shown to the user; Fields holds per-field
// validation messages.
type errorEnvelope struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Title   string            `json:"title,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Notification titles.
const (
	titleLoginFailed  = "Login Failed"
	titleSignUpFailed = "Sign Up Failed"
	titleLogoutFailed = "Logout Failed"
	titleAuthRequired = "Authentication Required"
	titleUploadFailed = "Upload Failed"
)

const msgAuthRequired = "You must be logged in to sell a book."

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "VALIDATION_FAILED", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return writeNotice(c, status, code, "", message)
}

// writeNotice is writeError with a notification title.
func writeNotice(c *fiber.Ctx, status int, code, title, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: middleware.RequestIDFrom(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
			Title:   title,
		},
	})
}

// writeValidation answers 422 with one message per rejected field.
func writeValidation(c *fiber.Ctx, title string, fields validation.FieldErrors) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(errorPayload{
		RequestID: middleware.RequestIDFrom(c),
		Error: errorEnvelope{
			Code:    "VALIDATION_FAILED",
			Message: "Please correct the highlighted fields.",
			Title:   title,
			Fields:  fields,
		},
	})
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if errors.Is(err, auth.ErrUnauthenticated) {
			return writeNotice(c, fiber.StatusUnauthorized, "AUTH_REQUIRED", titleAuthRequired, msgAuthRequired)
		}

		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeNotice(c, status, "PAYLOAD_TOO_LARGE", titleUploadFailed, "The upload is too large.")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
