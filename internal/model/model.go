// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// Tokens collects an issued access token.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time // access token expiry (for diagnostics)
}

// User represents an account stored on the server. The password is never stored in plaintext.
type User struct {
	ID        uuid.UUID // PK, assigned on insert
	Username  string    // unique
	Email     *string   // unique when present; nil means absent
	PwdHash   string    // encoded verifier, never leaves the service layer
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Registration is a request to create a new account.
type Registration struct {
	Username string
	Password string
	Email    string // optional
}

// UserUpdate carries optional changes for a user. Nil fields are left untouched.
// Email set to "" clears the address. An empty Password keeps the stored verifier.
type UserUpdate struct {
	Username *string
	Email    *string
	Password string
}

// Product is a catalog item.
type Product struct {
	ID            uuid.UUID
	Name          string // unique, case-insensitive
	Price         decimal.Decimal
	Description   *string
	Category      *string
	StockQuantity int32
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProductInput describes a product to create.
type ProductInput struct {
	Name          string
	Price         decimal.Decimal
	Description   *string
	Category      *string
	StockQuantity int32
}

// ProductUpdate carries optional changes for a product. Nil fields are left untouched.
type ProductUpdate struct {
	Name          *string
	Price         *decimal.Decimal
	Description   *string
	Category      *string
	StockQuantity *int32
}

// ProductFilter narrows a product listing. Zero value matches everything.
type ProductFilter struct {
	NameContains string           // case-insensitive substring
	Category     string           // case-insensitive equality
	MinPrice     *decimal.Decimal // inclusive
	MaxPrice     *decimal.Decimal // inclusive
}
