package handler

import "github.com/99minutos/employee-management/internal/pkg/validation"

// echoValidator lets Echo call c.Validate(req).
type echoValidator struct {
	v *validation.Validator
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
func NewValidator() *echoValidator {
	return &echoValidator{v: validation.New()}
}

// Validate satisfies echo.Validator. Failures wrap domain.ErrInvalidInput.
func (ev *echoValidator) Validate(i any) error {
	return ev.v.Struct(i)
}
