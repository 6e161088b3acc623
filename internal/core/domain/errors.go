package domain

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrUnknownRole        = errors.New("role not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrSessionNotFound    = errors.New("session expired or invalidated")
	ErrUnauthorized       = errors.New("authentication required")
	ErrForbidden          = errors.New("access forbidden")
	ErrEmployeeNotFound   = errors.New("employee not found")

	// ErrStorage marks failures of the persistence or report-file layer. It is
	// always wrapped together with the underlying driver error.
	ErrStorage = errors.New("storage failure")
)
