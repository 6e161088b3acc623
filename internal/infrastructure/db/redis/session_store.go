package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/99minutos/employee-management/internal/core/domain"
)

const defaultKeyPrefix = "ems:session:"

// createSessionScript stores the new session and drops the user's previous
// one in a single step, so two concurrent logins leave exactly one live session.
//
// KEYS[1] session key, KEYS[2] user pointer key
// ARGV: token, username, role, created_at, expires_at, ttl_ms, session key prefix
const createSessionScript = `
local old = redis.call("GET", KEYS[2])
local replaced = 0
if old and old ~= ARGV[1] then
  redis.call("DEL", ARGV[7] .. old)
  replaced = 1
end
redis.call("HSET", KEYS[1], "username", ARGV[2], "role", ARGV[3], "created_at", ARGV[4], "expires_at", ARGV[5])
redis.call("PEXPIRE", KEYS[1], ARGV[6])
redis.call("SET", KEYS[2], ARGV[1], "PX", ARGV[6])
return replaced
`

// touchSessionScript slides the idle deadline of a live session.
//
// KEYS[1] session key
// ARGV: expires_at, ttl_ms, user pointer prefix, token
const touchSessionScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[1], "expires_at", ARGV[1])
redis.call("PEXPIRE", KEYS[1], ARGV[2])
local user = redis.call("HGET", KEYS[1], "username")
if user then
  local ptr = ARGV[3] .. user
  if redis.call("GET", ptr) == ARGV[4] then
    redis.call("PEXPIRE", ptr, ARGV[2])
  end
end
return 1
`

// deleteSessionScript removes the session and, if it is still the user's
// current one, the user pointer.
//
// KEYS[1] session key
// ARGV: user pointer prefix, token
const deleteSessionScript = `
local user = redis.call("HGET", KEYS[1], "username")
redis.call("DEL", KEYS[1])
if user then
  local ptr = ARGV[1] .. user
  if redis.call("GET", ptr) == ARGV[2] then
    redis.call("DEL", ptr)
  end
end
return 1
`

var (
	createSessionLua = redis.NewScript(createSessionScript)
	touchSessionLua  = redis.NewScript(touchSessionScript)
	deleteSessionLua = redis.NewScript(deleteSessionScript)
)

// SessionStore keeps sessions as hashes under <prefix><token> and the
// username -> token pointer under <prefix>user:<username>. Both keys carry the
// idle timeout as TTL, so expired sessions disappear on their own.
type SessionStore struct {
	client redis.Cmdable
	prefix string
	now    func() time.Time
}

func NewSessionStore(client redis.Cmdable) *SessionStore {
	return &SessionStore{
		client: client,
		prefix: defaultKeyPrefix,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *SessionStore) sessionKey(token string) string { return s.prefix + token }
func (s *SessionStore) userPrefix() string             { return s.prefix + "user:" }
func (s *SessionStore) userKey(username string) string { return s.userPrefix() + username }

func (s *SessionStore) Create(ctx context.Context, sess *domain.Session, ttl time.Duration) (bool, error) {
	res, err := createSessionLua.Run(ctx, s.client,
		[]string{s.sessionKey(sess.Token), s.userKey(sess.Username)},
		sess.Token,
		sess.Username,
		string(sess.Role),
		sess.CreatedAt.UnixMilli(),
		sess.ExpiresAt.UnixMilli(),
		ttl.Milliseconds(),
		s.prefix,
	).Int64()
	if err != nil {
		return false, fmt.Errorf("create session: %w: %w", domain.ErrStorage, err)
	}
	return res == 1, nil
}

func (s *SessionStore) Get(ctx context.Context, token string, ttl time.Duration) (*domain.Session, error) {
	expiresAt := s.now().Add(ttl)
	alive, err := touchSessionLua.Run(ctx, s.client,
		[]string{s.sessionKey(token)},
		expiresAt.UnixMilli(),
		ttl.Milliseconds(),
		s.userPrefix(),
		token,
	).Int64()
	if err != nil {
		return nil, fmt.Errorf("touch session: %w: %w", domain.ErrStorage, err)
	}
	if alive == 0 {
		return nil, domain.ErrSessionNotFound
	}

	fields, err := s.client.HGetAll(ctx, s.sessionKey(token)).Result()
	if err != nil {
		return nil, fmt.Errorf("read session: %w: %w", domain.ErrStorage, err)
	}
	if len(fields) == 0 {
		return nil, domain.ErrSessionNotFound
	}
	return decodeSession(token, fields)
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if err := deleteSessionLua.Run(ctx, s.client, []string{s.sessionKey(token)}, s.userPrefix(), token).Err(); err != nil {
		return fmt.Errorf("delete session: %w: %w", domain.ErrStorage, err)
	}
	return nil
}

func decodeSession(token string, fields map[string]string) (*domain.Session, error) {
	created, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decode session created_at: %w: %w", domain.ErrStorage, err)
	}
	expires, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decode session expires_at: %w: %w", domain.ErrStorage, err)
	}
	return &domain.Session{
		Token:     token,
		Username:  fields["username"],
		Role:      domain.Role(fields["role"]),
		CreatedAt: time.UnixMilli(created).UTC(),
		ExpiresAt: time.UnixMilli(expires).UTC(),
	}, nil
}
