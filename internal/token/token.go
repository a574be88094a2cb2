// Package token issues and verifies signed, time-bounded bearer tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/stockroom/internal/crypto"
	"github.com/and161185/stockroom/internal/errs"
)

// DefaultTTL is the access token lifetime used when none is configured.
const DefaultTTL = time.Hour

// KeySize is the length of generated HS256 signing keys.
const KeySize = 32

// Subject identifies whom a token is issued to.
type Subject struct {
	UserID   string
	Username string
}

// Claims are the verified contents of a token.
type Claims struct {
	Subject
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type jwtClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

// Manager signs and verifies HS256 JWTs with a process-wide key.
type Manager struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager constructs a Manager. The key is copied and never changes afterwards.
func NewManager(key []byte, ttl time.Duration, opts ...Option) (*Manager, error) {
	if len(key) == 0 {
		return nil, errors.New("token: empty signing key")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Manager{key: append([]byte(nil), key...), ttl: ttl, now: time.Now}
	for _, o := range opts {
		o(m)
	}
	return m, nil
}

// GenerateKey returns a random signing key for processes started without one.
func GenerateKey() ([]byte, error) {
	return crypto.RandBytes(KeySize)
}

// TTL returns the configured token lifetime.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue creates a signed token for sub and returns it with its expiry.
func (m *Manager) Issue(sub Subject) (string, time.Time, error) {
	if sub.Username == "" || sub.UserID == "" {
		return "", time.Time{}, errors.New("token: empty subject")
	}
	now := m.now().Truncate(time.Second)
	exp := now.Add(m.ttl)
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		UserID: sub.UserID,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Verify checks signature and expiry. Failures are *errs.TokenError.
func (m *Manager) Verify(raw string) (Claims, error) {
	var c jwtClaims
	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.key, nil
	},
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return Claims{}, &errs.TokenError{Reason: classify(err)}
	}
	if c.Subject == "" || c.UserID == "" || c.IssuedAt == nil {
		return Claims{}, &errs.TokenError{Reason: errs.ReasonMalformed}
	}
	return Claims{
		Subject:   Subject{UserID: c.UserID, Username: c.Subject},
		IssuedAt:  c.IssuedAt.Time,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}

func classify(err error) errs.TokenReason {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return errs.ReasonMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return errs.ReasonSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return errs.ReasonExpired
	default:
		return errs.ReasonMalformed
	}
}
