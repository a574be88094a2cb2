package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/and161185/stockroom/internal/errs"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newManager(t *testing.T, c *clock) *Manager {
	t.Helper()
	m, err := NewManager([]byte("test-secret"), time.Hour, WithClock(c.now))
	require.NoError(t, err)
	return m
}

func requireReason(t *testing.T, err error, want errs.TokenReason) {
	t.Helper()
	require.ErrorIs(t, err, errs.ErrTokenInvalid)
	got, ok := errs.TokenFailure(err)
	require.True(t, ok, "want *errs.TokenError, got %T", err)
	require.Equal(t, want, got)
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	t.Parallel()
	c := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	m := newManager(t, c)

	sub := Subject{UserID: "9b2d0c8e-7c11-4c3b-9d35-2f0c1b7f3a10", Username: "alice"}
	tok, exp, err := m.Issue(sub)
	require.NoError(t, err)
	require.Equal(t, c.t.Add(time.Hour), exp)

	c.t = c.t.Add(59 * time.Minute)
	claims, err := m.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, sub, claims.Subject)
	require.Equal(t, exp, claims.ExpiresAt.UTC())
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()
	c := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	m := newManager(t, c)

	tok, _, err := m.Issue(Subject{UserID: "id", Username: "alice"})
	require.NoError(t, err)

	c.t = c.t.Add(2 * time.Hour)
	_, err = m.Verify(tok)
	requireReason(t, err, errs.ReasonExpired)
}

func TestVerify_WrongKey(t *testing.T) {
	t.Parallel()
	c := &clock{t: time.Now()}
	m := newManager(t, c)
	other, err := NewManager([]byte("other-secret"), time.Hour, WithClock(c.now))
	require.NoError(t, err)

	tok, _, err := other.Issue(Subject{UserID: "id", Username: "alice"})
	require.NoError(t, err)

	_, err = m.Verify(tok)
	requireReason(t, err, errs.ReasonSignature)
}

func TestVerify_TamperedPayload(t *testing.T) {
	t.Parallel()
	c := &clock{t: time.Now()}
	m := newManager(t, c)

	tok, _, err := m.Issue(Subject{UserID: "id", Username: "alice"})
	require.NoError(t, err)
	forged, _, err := m.Issue(Subject{UserID: "id", Username: "mallory"})
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	fparts := strings.Split(forged, ".")
	_, err = m.Verify(parts[0] + "." + fparts[1] + "." + parts[2])
	requireReason(t, err, errs.ReasonSignature)
}

func TestVerify_WrongAlg(t *testing.T) {
	t.Parallel()
	c := &clock{t: time.Now()}
	m := newManager(t, c)

	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			IssuedAt:  jwt.NewNumericDate(c.t),
			ExpiresAt: jwt.NewNumericDate(c.t.Add(time.Hour)),
		},
		UserID: "id",
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS384, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = m.Verify(s)
	requireReason(t, err, errs.ReasonSignature)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()
	c := &clock{t: time.Now()}
	m := newManager(t, c)

	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := m.Verify(raw)
		requireReason(t, err, errs.ReasonMalformed)
	}
}

func TestVerify_MissingUserID(t *testing.T) {
	t.Parallel()
	c := &clock{t: time.Now()}
	m := newManager(t, c)

	claims := jwt.RegisteredClaims{
		Subject:   "alice",
		IssuedAt:  jwt.NewNumericDate(c.t),
		ExpiresAt: jwt.NewNumericDate(c.t.Add(time.Hour)),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = m.Verify(s)
	requireReason(t, err, errs.ReasonMalformed)
}

func TestNewManager_Validation(t *testing.T) {
	t.Parallel()
	_, err := NewManager(nil, time.Hour)
	require.Error(t, err)

	m, err := NewManager([]byte("k"), 0)
	require.NoError(t, err)
	require.Equal(t, DefaultTTL, m.TTL())

	_, _, err = m.Issue(Subject{})
	require.Error(t, err)
	require.False(t, errors.Is(err, errs.ErrTokenInvalid))
}

func TestGenerateKey(t *testing.T) {
	t.Parallel()
	a, err := GenerateKey()
	require.NoError(t, err)
	b, err := GenerateKey()
	require.NoError(t, err)
	require.Len(t, a, KeySize)
	require.NotEqual(t, a, b)
}
