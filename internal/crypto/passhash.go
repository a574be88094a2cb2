// Package crypto implements server-side password hashing and verification.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const argonVersion = argon2.Version // 0x13

// Params holds the Argon2id cost parameters.
type Params struct {
	Time    uint32 // iterations
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

// DefaultParams returns the parameters tuned for server-side hashing.
func DefaultParams() Params {
	return Params{
		Time:    3,
		Memory:  64 * 1024, // 64 MB
		Threads: 1,
		KeyLen:  32,
		SaltLen: 16,
	}
}

// Hasher produces and checks self-describing Argon2id verifiers.
type Hasher struct {
	p Params
}

// NewHasher constructs a Hasher. Zero fields fall back to DefaultParams.
func NewHasher(p Params) *Hasher {
	d := DefaultParams()
	if p.Time == 0 {
		p.Time = d.Time
	}
	if p.Memory == 0 {
		p.Memory = d.Memory
	}
	if p.Threads == 0 {
		p.Threads = d.Threads
	}
	if p.KeyLen == 0 {
		p.KeyLen = d.KeyLen
	}
	if p.SaltLen == 0 {
		p.SaltLen = d.SaltLen
	}
	return &Hasher{p: p}
}

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// Hash returns an encoded verifier for secret:
// $argon2id$v=19$m=<mem>,t=<iter>,p=<par>$<salt_b64>$<key_b64>
func (h *Hasher) Hash(secret string) (string, error) {
	salt, err := RandBytes(int(h.p.SaltLen))
	if err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}
	key := argon2.IDKey([]byte(secret), salt, h.p.Time, h.p.Memory, h.p.Threads, h.p.KeyLen)

	b64 := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argonVersion, h.p.Memory, h.p.Time, h.p.Threads,
		b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

// Verify reports whether secret matches verifier. Malformed verifiers yield false.
func (h *Hasher) Verify(secret, verifier string) bool {
	if isBcrypt(verifier) {
		return bcrypt.CompareHashAndPassword([]byte(verifier), []byte(secret)) == nil
	}
	p, salt, want, err := decode(verifier)
	if err != nil || !h.withinBounds(p) {
		return false
	}
	got := argon2.IDKey([]byte(secret), salt, p.Time, p.Memory, p.Threads, uint32(len(want))) // #nosec G115 -- bounded by decode
	return subtle.ConstantTimeCompare(got, want) == 1
}

// NeedsRehash reports whether verifier was produced by a legacy scheme or with
// weaker parameters than the hasher is configured for.
func (h *Hasher) NeedsRehash(verifier string) bool {
	if isBcrypt(verifier) {
		return true
	}
	p, _, _, err := decode(verifier)
	if err != nil {
		return false
	}
	return p.Time < h.p.Time || p.Memory < h.p.Memory || p.Threads < h.p.Threads
}

// withinBounds rejects verifiers asking for much more work than we are configured for.
func (h *Hasher) withinBounds(p Params) bool {
	return uint64(p.Memory) <= uint64(h.p.Memory)*2 &&
		uint64(p.Time) <= uint64(h.p.Time)*2 &&
		uint32(p.Threads) <= uint32(h.p.Threads)*2 &&
		p.SaltLen >= 8 && p.SaltLen <= 64 &&
		p.KeyLen >= 16 && p.KeyLen <= 128
}

func isBcrypt(v string) bool {
	return strings.HasPrefix(v, "$2a$") || strings.HasPrefix(v, "$2b$") || strings.HasPrefix(v, "$2y$")
}

var errMalformed = errors.New("malformed verifier")

func decode(encoded string) (Params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return Params{}, nil, nil, errMalformed
	}
	if parts[2] != fmt.Sprintf("v=%d", argonVersion) {
		return Params{}, nil, nil, errMalformed
	}
	var mem, it, par uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &it, &par); err != nil {
		return Params{}, nil, nil, errMalformed
	}
	if mem == 0 || it == 0 || par == 0 || par > 255 {
		return Params{}, nil, nil, errMalformed
	}
	b64 := base64.RawStdEncoding
	salt, err := b64.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, errMalformed
	}
	key, err := b64.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return Params{}, nil, nil, errMalformed
	}
	return Params{
		Time:    it,
		Memory:  mem,
		Threads: uint8(par), // #nosec G115 -- checked above
		KeyLen:  uint32(len(key)),
		SaltLen: uint32(len(salt)),
	}, salt, key, nil
}
