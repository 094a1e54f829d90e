// Package auth guards the loopback transport with a session token.
//
// HOW IT WORKS:
// `serve` generates a random secret, signs one HS256 JWT with it and writes the
// token to a file only the current user can read. The UI shell reads that file
// and sends the token as `Authorization: Bearer <token>`. Any other local
// process that cannot read the file cannot call the API.
//
// The secret lives only in memory, so restarting `serve` invalidates every
// previously issued token.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer is stamped into and required on every token.
const Issuer = "snippet-manager"

// ShellSubject identifies the UI shell as the token holder.
const ShellSubject = "shell"

// TokenService signs and validates session tokens.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// NewTokenService creates a TokenService using secret as the HMAC key.
// The secret must be at least 16 bytes.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: token secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret), now: time.Now}, nil
}

// NewRandomSecret returns a 32-byte hex-encoded secret from crypto/rand.
func NewRandomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("auth: generating secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

type claims struct {
	jwt.RegisteredClaims
}

// Generate signs a token for subject that expires after ttl.
func (s *TokenService) Generate(subject string, ttl time.Duration) (string, error) {
	now := s.now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses tokenStr and returns its subject.
//
// Rejected: wrong signing method, wrong issuer, missing or past expiry,
// empty subject.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return c.Subject, nil
}
