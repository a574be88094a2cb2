package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/and161185/stockroom/internal/errs"
	"github.com/and161185/stockroom/internal/model"
	"github.com/gofrs/uuid/v5"
)

// UserRepo implements repository.UserRepository in memory.
type UserRepo struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]*model.User
	byUsername map[string]uuid.UUID
	byEmail    map[string]uuid.UUID
}

// NewUserRepo constructs an empty user repository.
func NewUserRepo() *UserRepo {
	return &UserRepo{
		byID:       make(map[uuid.UUID]*model.User),
		byUsername: make(map[string]uuid.UUID),
		byEmail:    make(map[string]uuid.UUID),
	}
}

func cloneUser(u *model.User) *model.User {
	c := *u
	c.Email = cloneStr(u.Email)
	return &c
}

// Create inserts a new user, assigning ID and timestamps.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id, err := newID()
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byUsername[u.Username]; taken {
		return &errs.StoreConflict{Field: "username"}
	}
	if u.Email != nil {
		if _, taken := r.byEmail[*u.Email]; taken {
			return &errs.StoreConflict{Field: "email"}
		}
	}

	ts := now()
	u.ID, u.CreatedAt, u.UpdatedAt = id, ts, ts
	stored := cloneUser(u)
	r.byID[id] = stored
	r.byUsername[stored.Username] = id
	if stored.Email != nil {
		r.byEmail[*stored.Email] = id
	}
	return nil
}

// GetByID loads a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return cloneUser(u), nil
}

// GetByUsername loads a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUsername[username]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return cloneUser(r.byID[id]), nil
}

// GetByEmail loads a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return cloneUser(r.byID[id]), nil
}

// Update replaces username, email and verifier of an existing user.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[u.ID]
	if !ok {
		return errs.ErrNotFound
	}
	if owner, taken := r.byUsername[u.Username]; taken && owner != u.ID {
		return &errs.StoreConflict{Field: "username"}
	}
	if u.Email != nil {
		if owner, taken := r.byEmail[*u.Email]; taken && owner != u.ID {
			return &errs.StoreConflict{Field: "email"}
		}
	}

	delete(r.byUsername, cur.Username)
	if cur.Email != nil {
		delete(r.byEmail, *cur.Email)
	}

	u.CreatedAt = cur.CreatedAt
	u.UpdatedAt = now()
	stored := cloneUser(u)
	r.byID[u.ID] = stored
	r.byUsername[stored.Username] = u.ID
	if stored.Email != nil {
		r.byEmail[*stored.Email] = u.ID
	}
	return nil
}

// UpdateVerifier replaces the verifier only if it still equals from.
func (r *UserRepo) UpdateVerifier(ctx context.Context, id uuid.UUID, from, to string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[id]
	if !ok || cur.PwdHash != from {
		return errs.ErrNotFound
	}
	stored := cloneUser(cur)
	stored.PwdHash = to
	stored.UpdatedAt = now()
	r.byID[id] = stored
	return nil
}

// Delete removes a user by ID.
func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return errs.ErrNotFound
	}
	delete(r.byID, id)
	delete(r.byUsername, u.Username)
	if u.Email != nil {
		delete(r.byEmail, *u.Email)
	}
	return nil
}

// List returns all users ordered by username.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]model.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, *cloneUser(u))
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}
