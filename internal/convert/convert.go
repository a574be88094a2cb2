// Package convert maps between domain models and wire messages.
package convert

import (
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/and161185/stockroom/internal/api"
	"github.com/and161185/stockroom/internal/errs"
	"github.com/and161185/stockroom/internal/model"
)

// --- helpers ---

// ParseID parses a wire identifier.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.FromString(s)
	if err != nil {
		return uuid.Nil, errs.Validation("invalid id %q", s)
	}
	return id, nil
}

// ParsePrice parses a decimal price string.
func ParsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, errs.Validation("invalid price %q", s)
	}
	return d, nil
}

func optPrice(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := ParsePrice(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// --- Users ---

// ToUser converts a domain user into its wire form. The verifier is dropped.
func ToUser(u model.User) api.User {
	out := api.User{
		ID:        u.ID.String(),
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.Email != nil {
		out.Email = *u.Email
	}
	return out
}

// ToUsers converts a slice of users.
func ToUsers(us []model.User) []api.User {
	out := make([]api.User, 0, len(us))
	for _, u := range us {
		out = append(out, ToUser(u))
	}
	return out
}

// FromRegister converts a register/create request.
func FromRegister(r *api.RegisterRequest) model.Registration {
	return model.Registration{Username: r.Username, Password: r.Password, Email: r.Email}
}

// FromUpdateUser converts an update request into an id and change set.
func FromUpdateUser(r *api.UpdateUserRequest) (uuid.UUID, model.UserUpdate, error) {
	id, err := ParseID(r.ID)
	if err != nil {
		return uuid.Nil, model.UserUpdate{}, err
	}
	return id, model.UserUpdate{Username: r.Username, Email: r.Email, Password: r.Password}, nil
}

// ToLogin converts issued tokens.
func ToLogin(t model.Tokens) *api.LoginResponse {
	return &api.LoginResponse{AccessToken: t.AccessToken, TokenType: "Bearer", ExpiresAt: t.ExpiresAt}
}

// --- Products ---

// ToProduct converts a domain product; the price is rendered with two decimals.
func ToProduct(p model.Product) api.Product {
	return api.Product{
		ID:            p.ID.String(),
		Name:          p.Name,
		Price:         p.Price.StringFixed(2),
		Description:   p.Description,
		Category:      p.Category,
		StockQuantity: p.StockQuantity,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// ToProducts converts a slice of products.
func ToProducts(ps []model.Product) []api.Product {
	out := make([]api.Product, 0, len(ps))
	for _, p := range ps {
		out = append(out, ToProduct(p))
	}
	return out
}

// FromCreateProduct converts a create request.
func FromCreateProduct(r *api.CreateProductRequest) (model.ProductInput, error) {
	price, err := ParsePrice(r.Price)
	if err != nil {
		return model.ProductInput{}, err
	}
	return model.ProductInput{
		Name:          r.Name,
		Price:         price,
		Description:   r.Description,
		Category:      r.Category,
		StockQuantity: r.StockQuantity,
	}, nil
}

// FromUpdateProduct converts an update request into an id and change set.
func FromUpdateProduct(r *api.UpdateProductRequest) (uuid.UUID, model.ProductUpdate, error) {
	id, err := ParseID(r.ID)
	if err != nil {
		return uuid.Nil, model.ProductUpdate{}, err
	}
	up := model.ProductUpdate{
		Name:          r.Name,
		Description:   r.Description,
		Category:      r.Category,
		StockQuantity: r.StockQuantity,
	}
	if r.Price != nil {
		if up.Price, err = optPrice(*r.Price); err != nil {
			return uuid.Nil, model.ProductUpdate{}, err
		}
	}
	return id, up, nil
}

// FromListProducts converts a listing filter.
func FromListProducts(r *api.ListProductsRequest) (model.ProductFilter, error) {
	f := model.ProductFilter{NameContains: r.NameContains, Category: r.Category}
	var err error
	if f.MinPrice, err = optPrice(r.MinPrice); err != nil {
		return model.ProductFilter{}, err
	}
	if f.MaxPrice, err = optPrice(r.MaxPrice); err != nil {
		return model.ProductFilter{}, err
	}
	return f, nil
}
