package service

import (
	"context"
	"errors"
	"strings"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/and161185/stockroom/internal/errs"
	"github.com/and161185/stockroom/internal/model"
	"github.com/and161185/stockroom/internal/repository"
)

// ProductService manages the product catalog.
type ProductService interface {
	Create(ctx context.Context, in model.ProductInput) (model.Product, error)
	Update(ctx context.Context, id uuid.UUID, up model.ProductUpdate) (model.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (model.Product, error)
	List(ctx context.Context, f model.ProductFilter) ([]model.Product, error)
	SearchByName(ctx context.Context, fragment string) ([]model.Product, error)
	ByCategory(ctx context.Context, category string) ([]model.Product, error)
	ByPriceRange(ctx context.Context, lo, hi decimal.Decimal) ([]model.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

type ProductServiceImpl struct {
	products repository.ProductRepository
}

// NewProductService constructs ProductService.
func NewProductService(products repository.ProductRepository) *ProductServiceImpl {
	return &ProductServiceImpl{products: products}
}

// Create validates in, checks the name case-insensitively and inserts.
func (s *ProductServiceImpl) Create(ctx context.Context, in model.ProductInput) (model.Product, error) {
	p := model.Product{
		Name:          strings.TrimSpace(in.Name),
		Price:         in.Price,
		Description:   in.Description,
		Category:      optionalPtr(in.Category),
		StockQuantity: in.StockQuantity,
	}
	if err := validateProduct(&p); err != nil {
		return model.Product{}, err
	}
	if err := s.checkName(ctx, p.Name, uuid.Nil); err != nil {
		return model.Product{}, err
	}
	if err := s.products.Create(ctx, &p); err != nil {
		return model.Product{}, productConflict(err, &p)
	}
	return p, nil
}

// Update applies up to the product with id. Name conflicts are checked only
// when the name changes ignoring case.
func (s *ProductServiceImpl) Update(ctx context.Context, id uuid.UUID, up model.ProductUpdate) (model.Product, error) {
	cur, err := s.products.GetByID(ctx, id)
	if err != nil {
		return model.Product{}, productNotFound(err, id.String())
	}
	next := *cur

	if up.Name != nil {
		name := strings.TrimSpace(*up.Name)
		if !strings.EqualFold(name, cur.Name) {
			if err := s.checkName(ctx, name, id); err != nil {
				return model.Product{}, err
			}
		}
		next.Name = name
	}
	if up.Price != nil {
		next.Price = *up.Price
	}
	if up.Description != nil {
		next.Description = optionalPtr(up.Description)
	}
	if up.Category != nil {
		next.Category = optionalPtr(up.Category)
	}
	if up.StockQuantity != nil {
		next.StockQuantity = *up.StockQuantity
	}
	if err := validateProduct(&next); err != nil {
		return model.Product{}, err
	}

	if err := s.products.Update(ctx, &next); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.Product{}, productNotFound(err, id.String())
		}
		return model.Product{}, productConflict(err, &next)
	}
	return next, nil
}

// Delete removes the product unconditionally.
func (s *ProductServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return productNotFound(err, id.String())
	}
	return nil
}

// Get returns the product with id.
func (s *ProductServiceImpl) Get(ctx context.Context, id uuid.UUID) (model.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return model.Product{}, productNotFound(err, id.String())
	}
	return *p, nil
}

// List returns products matching f.
func (s *ProductServiceImpl) List(ctx context.Context, f model.ProductFilter) ([]model.Product, error) {
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return nil, errs.Validation("min price %s exceeds max price %s", f.MinPrice, f.MaxPrice)
	}
	return s.products.List(ctx, f)
}

// SearchByName returns products whose name contains fragment, ignoring case.
func (s *ProductServiceImpl) SearchByName(ctx context.Context, fragment string) ([]model.Product, error) {
	return s.List(ctx, model.ProductFilter{NameContains: fragment})
}

// ByCategory returns products in category, ignoring case.
func (s *ProductServiceImpl) ByCategory(ctx context.Context, category string) ([]model.Product, error) {
	return s.List(ctx, model.ProductFilter{Category: category})
}

// ByPriceRange returns products priced within [lo, hi].
func (s *ProductServiceImpl) ByPriceRange(ctx context.Context, lo, hi decimal.Decimal) ([]model.Product, error) {
	return s.List(ctx, model.ProductFilter{MinPrice: &lo, MaxPrice: &hi})
}

// Categories returns the distinct categories in use.
func (s *ProductServiceImpl) Categories(ctx context.Context) ([]string, error) {
	return s.products.Categories(ctx)
}

func (s *ProductServiceImpl) checkName(ctx context.Context, name string, self uuid.UUID) error {
	p, err := s.products.GetByName(ctx, name)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return nil
	case err != nil:
		return err
	case p.ID == self:
		return nil
	}
	return &errs.ConflictError{Field: "name", Value: name}
}

func validateProduct(p *model.Product) error {
	if p.Name == "" {
		return errs.Validation("product name is required")
	}
	if p.Price.IsNegative() {
		return errs.Validation("price must not be negative")
	}
	if p.StockQuantity < 0 {
		return errs.Validation("stock quantity must not be negative")
	}
	return nil
}

func optionalPtr(s *string) *string {
	if s == nil {
		return nil
	}
	return optional(*s)
}

func productNotFound(err error, key string) error {
	if errors.Is(err, errs.ErrNotFound) {
		return &errs.NotFoundError{Entity: "product", Key: key}
	}
	return err
}

func productConflict(err error, p *model.Product) error {
	if sc, ok := errs.AsStoreConflict(err); ok {
		return &errs.ConflictError{Field: sc.Field, Value: p.Name}
	}
	return err
}
