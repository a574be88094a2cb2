package repository

import (
	"context"

	"github.com/and161185/stockroom/internal/model"
	"github.com/gofrs/uuid/v5"
)

// ProductRepository provides CRUD and filtered access to catalog items.
type ProductRepository interface {
	// Create inserts a new product. ID and timestamps are assigned by the store.
	Create(ctx context.Context, p *model.Product) error
	// GetByID loads a product by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	// GetByName loads a product by case-insensitive name.
	GetByName(ctx context.Context, name string) (*model.Product, error)
	// Update replaces all mutable fields of the product in one atomic write.
	Update(ctx context.Context, p *model.Product) error
	// Delete removes a product by ID.
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns products matching f ordered by name.
	List(ctx context.Context, f model.ProductFilter) ([]model.Product, error)
	// Categories returns distinct non-null categories in ascending order.
	Categories(ctx context.Context) ([]string, error)
}
