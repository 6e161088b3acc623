package ports

import (
	"context"

	"github.com/99minutos/employee-management/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, username, password, role string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*domain.Session, error)
	ResolveSession(ctx context.Context, token string) (*domain.Session, error)
	Logout(ctx context.Context, token string) error
}
