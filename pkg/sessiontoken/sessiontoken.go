// Package sessiontoken wraps a server-side session token in a signed HS256
// envelope. The envelope only proves the value was issued by this server; the
// session itself must still be resolved against the session store.
package sessiontoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalid = errors.New("invalid session envelope")

// Claims carried by the envelope: jti is the session token, sub the username.
type Claims struct {
	jwt.RegisteredClaims
}

type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Sign wraps token for username.
func (s *Signer) Sign(token, username string, issuedAt time.Time) (string, error) {
	claims := Claims{jwt.RegisteredClaims{
		ID:       token,
		Subject:  username,
		IssuedAt: jwt.NewNumericDate(issuedAt),
	}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session envelope: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature and returns the session token and username.
func (s *Signer) Parse(value string) (token, username string, err error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(value, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid || claims.ID == "" {
		return "", "", ErrInvalid
	}
	return claims.ID, claims.Subject, nil
}
