package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/employee-management/internal/api/handler"
	"github.com/99minutos/employee-management/internal/core/domain"
)

func TestHTTPErrorHandler_Envelope(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
		msg    string
	}{
		{fmt.Errorf("%w: name is required", domain.ErrInvalidInput), http.StatusBadRequest, "VALIDATION_ERROR", "name is required"},
		{domain.ErrInvalidInput, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input."},
		{domain.ErrUsernameTaken, http.StatusBadRequest, "USERNAME_TAKEN", "Username already exists."},
		{domain.ErrUnknownRole, http.StatusBadRequest, "ROLE_NOT_FOUND", "Role not found."},
		{domain.ErrEmployeeNotFound, http.StatusNotFound, "EMPLOYEE_NOT_FOUND", ""},
		{domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED", ""},
		{domain.ErrSessionNotFound, http.StatusUnauthorized, "SESSION_EXPIRED", ""},
		{domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN", ""},
		{fmt.Errorf("insert: %w: %w", domain.ErrStorage, errors.New("socket closed")), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", ""},
		{echo.ErrNotFound, http.StatusNotFound, "NOT_FOUND", ""},
		{echo.ErrMethodNotAllowed, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", ""},
	}

	for _, tc := range cases {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

		NewHTTPErrorHandler(zerolog.Nop())(tc.err, c)

		if rec.Code != tc.status {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.status, rec.Code)
		}
		var body handler.ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("%v: invalid json: %v", tc.err, err)
		}
		if body.Code != tc.code {
			t.Fatalf("%v: expected code %s, got %s", tc.err, tc.code, body.Code)
		}
		if tc.msg != "" && body.Message != tc.msg {
			t.Fatalf("%v: expected message %q, got %q", tc.err, tc.msg, body.Message)
		}
	}
}

func TestHTTPErrorHandler_DoesNotLeakInternalErrors(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(errors.New("mongo: password=hunter2"), c)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if got := rec.Body.String(); strings.Contains(got, "hunter2") || strings.Contains(got, "mongo") {
		t.Fatalf("internal error leaked: %s", got)
	}
}

func TestHTTPErrorHandler_SkipsCommittedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.String(http.StatusOK, "done")

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrForbidden, c)

	if rec.Code != http.StatusOK || rec.Body.String() != "done" {
		t.Fatalf("committed response was overwritten: %d %q", rec.Code, rec.Body.String())
	}
}
