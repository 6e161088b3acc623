package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/employee-management/internal/core/domain"
	"github.com/99minutos/employee-management/internal/core/ports"
	"github.com/99minutos/employee-management/pkg/keylock"
)

const (
	defaultIdleTimeout = 30 * time.Minute

	// maxPasswordBytes is bcrypt's input limit.
	maxPasswordBytes = 72

	// dummyPassword is hashed once so logins for unknown users still pay for
	// a hash comparison.
	dummyPassword = "employee-management-unknown-user"
)

// AuthService implements registration, login and session resolution.
type AuthService struct {
	users       ports.UserRepository
	roles       ports.RoleRepository
	sessions    ports.SessionStore
	hasher      ports.PasswordHasher
	idleTimeout time.Duration
	locks       *keylock.Striped
	logger      zerolog.Logger
	dummyHash   string

	now      func() time.Time
	newToken func() string
}

func NewAuthService(
	users ports.UserRepository,
	roles ports.RoleRepository,
	sessions ports.SessionStore,
	hasher ports.PasswordHasher,
	idleTimeout time.Duration,
	logger zerolog.Logger,
) *AuthService {
	if idleTimeout <= 0 {
		idleTimeout = defaultIdleTimeout
	}
	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to prepare dummy password hash")
	}
	return &AuthService{
		users:       users,
		roles:       roles,
		sessions:    sessions,
		hasher:      hasher,
		idleTimeout: idleTimeout,
		locks:       keylock.New(0),
		logger:      logger,
		dummyHash:   dummyHash,
		now:         func() time.Time { return time.Now().UTC() },
		newToken:    uuid.NewString,
	}
}

// Register creates a user bound to an existing role. Registrations of the same
// username are serialized so only one of them can win.
func (s *AuthService) Register(ctx context.Context, username, password, role string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidInput
	}
	if len(password) > maxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", domain.ErrInvalidInput, maxPasswordBytes)
	}

	unlock := s.locks.Lock(username)
	defer unlock()

	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	r, err := s.roles.FindByName(ctx, role)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	created, err := s.users.Create(ctx, &domain.User{
		Username:     username,
		PasswordHash: hash,
		Role:         r,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("username", created.Username).Str("role", string(created.Role)).Msg("user registered")
	return created, nil
}

// Login verifies credentials and opens a session, replacing any session the
// user already had. Unknown users and wrong passwords are indistinguishable.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		s.hasher.Check(password, s.dummyHash)
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !s.hasher.Check(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	now := s.now()
	sess := &domain.Session{
		Token:     s.newToken(),
		Username:  user.Username,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(s.idleTimeout),
	}

	replaced, err := s.sessions.Create(ctx, sess, s.idleTimeout)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("username", user.Username).Bool("replaced_session", replaced).Msg("login")
	return sess, nil
}

// ResolveSession returns the live session for token and slides its idle expiry.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrSessionNotFound
	}
	sess, err := s.sessions.Get(ctx, token, s.idleTimeout)
	if err != nil {
		return nil, err
	}
	if sess.Expired(s.now()) {
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

// Logout invalidates the session. Logging out twice is not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return err
	}
	s.logger.Debug().Msg("session invalidated")
	return nil
}
