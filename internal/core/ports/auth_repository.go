package ports

import (
	"context"
	"time"

	"github.com/99minutos/employee-management/internal/core/domain"
)

// UserRepository is the credential store.
type UserRepository interface {
	// FindByUsername returns domain.ErrUserNotFound when no user has that name.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// Create returns domain.ErrUsernameTaken when the username already exists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}

// RoleRepository is the role registry's persisted half: the set of named
// roles seeded at startup.
type RoleRepository interface {
	// FindByName returns domain.ErrUnknownRole when no role has that name.
	FindByName(ctx context.Context, name string) (domain.Role, error)
	// Seed inserts the given roles, leaving existing ones untouched.
	Seed(ctx context.Context, roles ...domain.Role) error
}

// SessionStore holds live sessions. Implementations guarantee at most one
// live session per username.
type SessionStore interface {
	// Create stores sess and invalidates any prior session of the same user.
	// It reports whether a prior session was replaced.
	Create(ctx context.Context, sess *domain.Session, ttl time.Duration) (replaced bool, err error)
	// Get returns the live session for token and extends its idle deadline by
	// ttl. It returns domain.ErrSessionNotFound when there is none.
	Get(ctx context.Context, token string, ttl time.Duration) (*domain.Session, error)
	// Delete invalidates the session. Deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error
}

// PasswordHasher is the one-way transform applied to secrets before storage.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Check(password, hash string) bool
}
