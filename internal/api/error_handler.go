package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/employee-management/internal/api/handler"
	"github.com/99minutos/employee-management/internal/core/domain"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their HTTP status and error code.
//   - Logs unexpected errors without leaking details to the client.
//   - Renders the envelope {"code": "...", "message": "..."}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, handler.ErrorResponse) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, handler.ErrorResponse{Code: "VALIDATION_ERROR", Message: validationMessage(err)}
	case errors.Is(err, domain.ErrUsernameTaken):
		return http.StatusBadRequest, handler.ErrorResponse{Code: "USERNAME_TAKEN", Message: "Username already exists."}
	case errors.Is(err, domain.ErrUnknownRole):
		return http.StatusBadRequest, handler.ErrorResponse{Code: "ROLE_NOT_FOUND", Message: "Role not found."}
	case errors.Is(err, domain.ErrEmployeeNotFound):
		return http.StatusNotFound, handler.ErrorResponse{Code: "EMPLOYEE_NOT_FOUND", Message: "Employee not found."}
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusUnauthorized, handler.ErrorResponse{Code: "SESSION_EXPIRED", Message: "Session expired or invalidated. Please log in again."}
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, handler.ErrorResponse{Code: "UNAUTHORIZED", Message: "Authentication required."}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, handler.ErrorResponse{Code: "FORBIDDEN", Message: "Access denied."}
	}

	// Echo's own errors (unknown route, method not allowed, body too large).
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
		return he.Code, handler.ErrorResponse{Code: statusCode(he.Code), Message: fmt.Sprintf("%v", he.Message)}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, handler.ErrorResponse{Code: "INTERNAL_SERVER_ERROR", Message: "Internal server error."}
}

// validationMessage strips the sentinel prefix so the client sees only the
// per-field details.
func validationMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), domain.ErrInvalidInput.Error())
	msg = strings.TrimPrefix(msg, ": ")
	if msg == "" {
		return "Invalid input."
	}
	return msg
}

// statusCode turns 404 into "NOT_FOUND", 405 into "METHOD_NOT_ALLOWED", ...
func statusCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "ERROR"
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}
