package service

import (
	"context"
	"errors"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/stockroom/internal/errs"
	"github.com/and161185/stockroom/internal/model"
	"github.com/and161185/stockroom/internal/repository"
)

// UserService manages accounts on behalf of authenticated callers.
type UserService interface {
	Create(ctx context.Context, r model.Registration) (model.User, error)
	Update(ctx context.Context, id uuid.UUID, up model.UserUpdate) (model.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (model.User, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

type UserServiceImpl struct {
	users  repository.UserRepository
	hasher Hasher
}

// NewUserService constructs UserService.
func NewUserService(users repository.UserRepository, hasher Hasher) *UserServiceImpl {
	return &UserServiceImpl{users: users, hasher: hasher}
}

// Create checks username and email before inserting.
func (s *UserServiceImpl) Create(ctx context.Context, r model.Registration) (model.User, error) {
	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" || r.Password == "" {
		return model.User{}, errs.Validation("username and password are required")
	}
	email := optional(r.Email)
	if err := s.checkUsername(ctx, r.Username, uuid.Nil); err != nil {
		return model.User{}, err
	}
	if email != nil {
		if err := s.checkEmail(ctx, *email, uuid.Nil); err != nil {
			return model.User{}, err
		}
	}

	hash, err := s.hasher.Hash(r.Password)
	if err != nil {
		return model.User{}, err
	}
	u := &model.User{Username: r.Username, Email: email, PwdHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		return model.User{}, userConflict(err, u)
	}
	return *u, nil
}

// Update applies up to the user with id. The new state is assembled in full and
// persisted with a single store call.
func (s *UserServiceImpl) Update(ctx context.Context, id uuid.UUID, up model.UserUpdate) (model.User, error) {
	cur, err := s.users.GetByID(ctx, id)
	if err != nil {
		return model.User{}, userNotFound(err, id.String())
	}
	next := *cur

	if up.Username != nil {
		name := strings.TrimSpace(*up.Username)
		if name == "" {
			return model.User{}, errs.Validation("username must not be empty")
		}
		if name != cur.Username {
			if err := s.checkUsername(ctx, name, id); err != nil {
				return model.User{}, err
			}
		}
		next.Username = name
	}
	if up.Email != nil {
		email := optional(*up.Email)
		if email != nil && (cur.Email == nil || *email != *cur.Email) {
			if err := s.checkEmail(ctx, *email, id); err != nil {
				return model.User{}, err
			}
		}
		next.Email = email
	}
	if up.Password != "" {
		hash, err := s.hasher.Hash(up.Password)
		if err != nil {
			return model.User{}, err
		}
		next.PwdHash = hash
	}

	if err := s.users.Update(ctx, &next); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.User{}, userNotFound(err, id.String())
		}
		return model.User{}, userConflict(err, &next)
	}
	return next, nil
}

// Delete removes the user unconditionally.
func (s *UserServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return userNotFound(err, id.String())
	}
	return nil
}

// Get returns the user with id.
func (s *UserServiceImpl) Get(ctx context.Context, id uuid.UUID) (model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return model.User{}, userNotFound(err, id.String())
	}
	return *u, nil
}

// GetByUsername returns the user with the given username.
func (s *UserServiceImpl) GetByUsername(ctx context.Context, username string) (model.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return model.User{}, userNotFound(err, username)
	}
	return *u, nil
}

// List returns all users ordered by username.
func (s *UserServiceImpl) List(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

// UsernameExists reports whether username is taken.
func (s *UserServiceImpl) UsernameExists(ctx context.Context, username string) (bool, error) {
	return exists(s.users.GetByUsername(ctx, username))
}

// EmailExists reports whether email is taken.
func (s *UserServiceImpl) EmailExists(ctx context.Context, email string) (bool, error) {
	if strings.TrimSpace(email) == "" {
		return false, nil
	}
	return exists(s.users.GetByEmail(ctx, strings.TrimSpace(email)))
}

// checkUsername fails with a ConflictError when username belongs to a record other than self.
func (s *UserServiceImpl) checkUsername(ctx context.Context, username string, self uuid.UUID) error {
	u, err := s.users.GetByUsername(ctx, username)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return nil
	case err != nil:
		return err
	case u.ID == self:
		return nil
	}
	return &errs.ConflictError{Field: "username", Value: username}
}

func (s *UserServiceImpl) checkEmail(ctx context.Context, email string, self uuid.UUID) error {
	u, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return nil
	case err != nil:
		return err
	case u.ID == self:
		return nil
	}
	return &errs.ConflictError{Field: "email", Value: email}
}

func userNotFound(err error, key string) error {
	if errors.Is(err, errs.ErrNotFound) {
		return &errs.NotFoundError{Entity: "user", Key: key}
	}
	return err
}

func exists[T any](_ *T, err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errs.ErrNotFound):
		return false, nil
	}
	return false, err
}
