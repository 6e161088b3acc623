package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/employee-management/internal/core/domain"
	"github.com/99minutos/employee-management/pkg/sessiontoken"
)

const (
	// SessionCookie carries the signed session envelope.
	SessionCookie = "EMS_SESSION"

	// SessionKey is the echo context key holding the resolved *domain.Session.
	SessionKey = "session"
)

// SessionResolver looks up the live session behind a token.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*domain.Session, error)
}

// Session resolves the caller's identity from the session cookie, or from an
// "Authorization: Bearer" header carrying the same value. Requests without a
// live session never reach next.
func Session(resolver SessionResolver, signer *sessiontoken.Signer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := credential(c)
			if raw == "" {
				return domain.ErrUnauthorized
			}

			token, _, err := signer.Parse(raw)
			if err != nil {
				return domain.ErrUnauthorized
			}

			sess, err := resolver.ResolveSession(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set(SessionKey, sess)
			return next(c)
		}
	}
}

// CurrentSession returns the session set by Session, or nil.
func CurrentSession(c echo.Context) *domain.Session {
	sess, _ := c.Get(SessionKey).(*domain.Session)
	return sess
}

func credential(c echo.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	parts := strings.SplitN(c.Request().Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
