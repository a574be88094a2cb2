package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/and161185/stockroom/internal/errs"
	"github.com/and161185/stockroom/internal/model"
	"github.com/gofrs/uuid/v5"
)

// ProductRepo implements repository.ProductRepository in memory.
type ProductRepo struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*model.Product
	byName map[string]uuid.UUID // lower(name) -> id
}

// NewProductRepo constructs an empty product repository.
func NewProductRepo() *ProductRepo {
	return &ProductRepo{
		byID:   make(map[uuid.UUID]*model.Product),
		byName: make(map[string]uuid.UUID),
	}
}

func nameKey(name string) string { return strings.ToLower(name) }

func cloneProduct(p *model.Product) *model.Product {
	c := *p
	c.Description = cloneStr(p.Description)
	c.Category = cloneStr(p.Category)
	return &c
}

// Create inserts a new product, assigning ID and timestamps.
func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id, err := newID()
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byName[nameKey(p.Name)]; taken {
		return &errs.StoreConflict{Field: "name"}
	}
	ts := now()
	p.ID, p.CreatedAt, p.UpdatedAt = id, ts, ts
	r.byID[id] = cloneProduct(p)
	r.byName[nameKey(p.Name)] = id
	return nil
}

// GetByID loads a product by ID.
func (r *ProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return cloneProduct(p), nil
}

// GetByName loads a product by case-insensitive name.
func (r *ProductRepo) GetByName(ctx context.Context, name string) (*model.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[nameKey(name)]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return cloneProduct(r.byID[id]), nil
}

// Update replaces all mutable fields of an existing product.
func (r *ProductRepo) Update(ctx context.Context, p *model.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[p.ID]
	if !ok {
		return errs.ErrNotFound
	}
	if owner, taken := r.byName[nameKey(p.Name)]; taken && owner != p.ID {
		return &errs.StoreConflict{Field: "name"}
	}
	delete(r.byName, nameKey(cur.Name))

	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = now()
	r.byID[p.ID] = cloneProduct(p)
	r.byName[nameKey(p.Name)] = p.ID
	return nil
}

// Delete removes a product by ID.
func (r *ProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return errs.ErrNotFound
	}
	delete(r.byID, id)
	delete(r.byName, nameKey(p.Name))
	return nil
}

// List returns products matching f ordered by name.
func (r *ProductRepo) List(ctx context.Context, f model.ProductFilter) ([]model.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]model.Product, 0, len(r.byID))
	for _, p := range r.byID {
		if matches(p, f) {
			out = append(out, *cloneProduct(p))
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Categories returns distinct non-null categories in ascending order.
func (r *ProductRepo) Categories(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	r.mu.RLock()
	for _, p := range r.byID {
		if p.Category != nil {
			seen[*p.Category] = struct{}{}
		}
	}
	r.mu.RUnlock()

	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

func matches(p *model.Product, f model.ProductFilter) bool {
	if f.NameContains != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.NameContains)) {
		return false
	}
	if f.Category != "" && (p.Category == nil || !strings.EqualFold(*p.Category, f.Category)) {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	return true
}
