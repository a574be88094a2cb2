package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/and161185/stockroom/internal/errs"
	"github.com/and161185/stockroom/internal/model"
	"github.com/gofrs/uuid/v5"
)

// ProductRepo implements ProductRepository using PostgreSQL.
type ProductRepo struct{ db *DB }

// NewProductRepo constructs a product repository.
func NewProductRepo(db *DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `id, name, price, description, category, stock_quantity, created_at, updated_at`

type scanner interface{ Scan(dest ...any) error }

func scanProduct(row scanner) (*model.Product, error) {
	var p model.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.Category, &p.StockQuantity, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new product row.
func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	const q = `
INSERT INTO products (name, price, description, category, stock_quantity)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at, updated_at`
	err := r.db.Pool.QueryRow(ctx, q, p.Name, p.Price, p.Description, p.Category, p.StockQuantity).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if c := uniqueViolation(err); c != nil {
		return c
	}
	return err
}

// GetByID selects a product by ID.
func (r *ProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := scanProduct(r.db.Pool.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

// GetByName selects a product by case-insensitive name.
func (r *ProductRepo) GetByName(ctx context.Context, name string) (*model.Product, error) {
	p, err := scanProduct(r.db.Pool.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE lower(name) = lower($1)`, name))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

// Update writes all mutable columns in a single statement.
func (r *ProductRepo) Update(ctx context.Context, p *model.Product) error {
	const q = `
UPDATE products
SET name = $2, price = $3, description = $4, category = $5, stock_quantity = $6, updated_at = now()
WHERE id = $1
RETURNING created_at, updated_at`
	err := r.db.Pool.QueryRow(ctx, q, p.ID, p.Name, p.Price, p.Description, p.Category, p.StockQuantity).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if c := uniqueViolation(err); c != nil {
		return c
	}
	return notFound(err)
}

// Delete removes a product row.
func (r *ProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// buildFilter renders f into a WHERE clause and its positional args.
func buildFilter(f model.ProductFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.NameContains != "" {
		add(`strpos(lower(name), lower($%d)) > 0`, f.NameContains)
	}
	if f.Category != "" {
		add(`lower(category) = lower($%d)`, f.Category)
	}
	if f.MinPrice != nil {
		add(`price >= $%d`, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add(`price <= $%d`, *f.MaxPrice)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return ` WHERE ` + strings.Join(conds, ` AND `), args
}

// List returns products matching f ordered by name.
func (r *ProductRepo) List(ctx context.Context, f model.ProductFilter) ([]model.Product, error) {
	where, args := buildFilter(f)
	rows, err := r.db.Pool.Query(ctx, `SELECT `+productCols+` FROM products`+where+` ORDER BY name`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Categories returns distinct non-null categories in ascending order.
func (r *ProductRepo) Categories(ctx context.Context) ([]string, error) {
	const q = `SELECT DISTINCT category FROM products WHERE category IS NOT NULL ORDER BY category`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
