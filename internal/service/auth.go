// Package service contains the authentication and record-management workflows.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/stockroom/internal/errs"
	"github.com/and161185/stockroom/internal/model"
	"github.com/and161185/stockroom/internal/repository"
	"github.com/and161185/stockroom/internal/token"
)

// Hasher turns secrets into stored verifiers and checks them.
type Hasher interface {
	Hash(secret string) (string, error)
	Verify(secret, verifier string) bool
	NeedsRehash(verifier string) bool
}

// TokenManager issues and verifies bearer tokens.
type TokenManager interface {
	Issue(sub token.Subject) (string, time.Time, error)
	Verify(raw string) (token.Claims, error)
}

// AuthService defines registration and login.
type AuthService interface {
	// Register creates a new account. Only the username is checked up front.
	Register(ctx context.Context, r model.Registration) (model.User, error)
	// Login verifies credentials and issues an access token.
	Login(ctx context.Context, username, password string) (model.Tokens, error)
	// Authenticate verifies a bearer token.
	Authenticate(ctx context.Context, raw string) (token.Claims, error)
}

type AuthServiceImpl struct {
	users  repository.UserRepository
	hasher Hasher
	tokens TokenManager
	log    *zap.Logger
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, hasher Hasher, tokens TokenManager, log *zap.Logger) *AuthServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthServiceImpl{users: users, hasher: hasher, tokens: tokens, log: log}
}

// Register creates a new user with a hashed password.
func (s *AuthServiceImpl) Register(ctx context.Context, r model.Registration) (model.User, error) {
	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" || r.Password == "" {
		return model.User{}, errs.Validation("username and password are required")
	}

	// Fast path only; the store's unique index decides races.
	if _, err := s.users.GetByUsername(ctx, r.Username); err == nil {
		return model.User{}, &errs.ConflictError{Field: "username", Value: r.Username}
	} else if !errors.Is(err, errs.ErrNotFound) {
		return model.User{}, err
	}

	hash, err := s.hasher.Hash(r.Password)
	if err != nil {
		return model.User{}, err
	}
	u := &model.User{Username: r.Username, Email: optional(r.Email), PwdHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		return model.User{}, userConflict(err, u)
	}
	s.log.Info("user registered", zap.String("username", u.Username), zap.String("user_id", u.ID.String()))
	return *u, nil
}

// Login authenticates username/password. Every failure mode yields ErrAuthenticationFailed.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (model.Tokens, error) {
	username = strings.TrimSpace(username)
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		reason := "unknown user"
		if !errors.Is(err, errs.ErrNotFound) {
			reason = err.Error()
		}
		s.log.Debug("login rejected", zap.String("username", username), zap.String("reason", reason))
		return model.Tokens{}, errs.ErrAuthenticationFailed
	}
	if !s.hasher.Verify(password, u.PwdHash) {
		s.log.Debug("login rejected", zap.String("username", username), zap.String("reason", "password mismatch"))
		return model.Tokens{}, errs.ErrAuthenticationFailed
	}

	if s.hasher.NeedsRehash(u.PwdHash) {
		s.rehash(ctx, u, password)
	}

	access, exp, err := s.tokens.Issue(token.Subject{UserID: u.ID.String(), Username: u.Username})
	if err != nil {
		return model.Tokens{}, err
	}
	return model.Tokens{AccessToken: access, ExpiresAt: exp}, nil
}

// rehash upgrades a legacy or weak verifier. Only the verifier is written, and only
// if it is still the one login checked. Failures are logged and ignored.
func (s *AuthServiceImpl) rehash(ctx context.Context, u *model.User, password string) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.log.Warn("rehash failed", zap.String("username", u.Username), zap.Error(err))
		return
	}
	if err := s.users.UpdateVerifier(ctx, u.ID, u.PwdHash, hash); err != nil {
		s.log.Warn("rehash not stored", zap.String("username", u.Username), zap.Error(err))
		return
	}
	s.log.Info("verifier upgraded", zap.String("username", u.Username))
}

// Authenticate verifies raw and returns its claims.
func (s *AuthServiceImpl) Authenticate(_ context.Context, raw string) (token.Claims, error) {
	return s.tokens.Verify(raw)
}

// optional maps an empty string to an absent value.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// userConflict converts a store-level uniqueness rejection into a ConflictError.
func userConflict(err error, u *model.User) error {
	sc, ok := errs.AsStoreConflict(err)
	if !ok {
		return err
	}
	value := u.Username
	if sc.Field == "email" && u.Email != nil {
		value = *u.Email
	}
	return &errs.ConflictError{Field: sc.Field, Value: value}
}
