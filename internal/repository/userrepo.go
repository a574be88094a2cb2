// Package repository defines storage interfaces implemented by concrete backends.
//
// Implementations must enforce uniqueness atomically: a write that would duplicate a
// unique value fails with *errs.StoreConflict. Lookups of absent rows and updates or
// deletes of absent rows fail with errs.ErrNotFound.
package repository

import (
	"context"

	"github.com/and161185/stockroom/internal/model"
	"github.com/gofrs/uuid/v5"
)

// UserRepository provides CRUD access for users.
type UserRepository interface {
	// Create inserts a new user. ID and timestamps are assigned by the store.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByUsername loads a user by exact username.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// GetByEmail loads a user by exact email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// Update replaces all mutable fields of the user in one atomic write.
	Update(ctx context.Context, u *model.User) error
	// UpdateVerifier swaps the stored verifier from "from" to "to" and touches no other
	// field. It fails with errs.ErrNotFound when the user is gone or its verifier
	// no longer equals from.
	UpdateVerifier(ctx context.Context, id uuid.UUID, from, to string) error
	// Delete removes a user by ID.
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns all users ordered by username.
	List(ctx context.Context) ([]model.User, error)
}
