package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/employee-management/internal/core/domain"
)

// Authorize admits the request only if the session's role may access res.
// It must run after Session.
func Authorize(res domain.Resource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := CurrentSession(c)
			if sess == nil {
				return domain.ErrUnauthorized
			}
			if !domain.Authorize(sess.Role, res) {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
