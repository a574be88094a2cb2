package postgres

import (
	"context"

	"github.com/and161185/stockroom/internal/errs"
	"github.com/and161185/stockroom/internal/model"
	"github.com/gofrs/uuid/v5"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

const userCols = `id, username, email, pwd_hash, created_at, updated_at`

// Create inserts a new user row; id and timestamps come from column defaults.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (username, email, pwd_hash)
VALUES ($1, $2, $3)
RETURNING id, created_at, updated_at`
	err := r.db.Pool.QueryRow(ctx, q, u.Username, u.Email, u.PwdHash).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if c := uniqueViolation(err); c != nil {
		return c
	}
	return err
}

func (r *UserRepo) getOne(ctx context.Context, where string, arg any) (*model.User, error) {
	q := `SELECT ` + userCols + ` FROM users WHERE ` + where
	var u model.User
	err := r.db.Pool.QueryRow(ctx, q, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.PwdHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// GetByID selects a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.getOne(ctx, `id=$1`, id)
}

// GetByUsername selects a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getOne(ctx, `username=$1`, username)
}

// GetByEmail selects a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, `email=$1`, email)
}

// Update writes username, email and verifier in a single statement.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	const q = `
UPDATE users
SET username = $2, email = $3, pwd_hash = $4, updated_at = now()
WHERE id = $1
RETURNING created_at, updated_at`
	err := r.db.Pool.QueryRow(ctx, q, u.ID, u.Username, u.Email, u.PwdHash).Scan(&u.CreatedAt, &u.UpdatedAt)
	if c := uniqueViolation(err); c != nil {
		return c
	}
	return notFound(err)
}

// UpdateVerifier swaps pwd_hash from "from" to "to" in one conditional statement.
func (r *UserRepo) UpdateVerifier(ctx context.Context, id uuid.UUID, from, to string) error {
	const q = `UPDATE users SET pwd_hash = $3, updated_at = now() WHERE id = $1 AND pwd_hash = $2`
	tag, err := r.db.Pool.Exec(ctx, q, id, from, to)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes a user row.
func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// List returns all users ordered by username.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+userCols+` FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PwdHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
