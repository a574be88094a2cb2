// Package api defines the Stockroom wire messages and method names shared by
// the gRPC server and client.
package api

import "time"

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "stockroom.v1.Stockroom"

// Full method names.
const (
	MethodRegister           = "/" + ServiceName + "/Register"
	MethodLogin              = "/" + ServiceName + "/Login"
	MethodWhoAmI             = "/" + ServiceName + "/WhoAmI"
	MethodCreateUser         = "/" + ServiceName + "/CreateUser"
	MethodUpdateUser         = "/" + ServiceName + "/UpdateUser"
	MethodDeleteUser         = "/" + ServiceName + "/DeleteUser"
	MethodGetUser            = "/" + ServiceName + "/GetUser"
	MethodGetUserByUsername  = "/" + ServiceName + "/GetUserByUsername"
	MethodListUsers          = "/" + ServiceName + "/ListUsers"
	MethodUsernameExists     = "/" + ServiceName + "/UsernameExists"
	MethodEmailExists        = "/" + ServiceName + "/EmailExists"
	MethodCreateProduct      = "/" + ServiceName + "/CreateProduct"
	MethodUpdateProduct      = "/" + ServiceName + "/UpdateProduct"
	MethodDeleteProduct      = "/" + ServiceName + "/DeleteProduct"
	MethodGetProduct         = "/" + ServiceName + "/GetProduct"
	MethodListProducts       = "/" + ServiceName + "/ListProducts"
	MethodSearchProducts     = "/" + ServiceName + "/SearchProducts"
	MethodProductsByCategory = "/" + ServiceName + "/ProductsByCategory"
	MethodProductsByPrice    = "/" + ServiceName + "/ProductsByPrice"
	MethodCategories         = "/" + ServiceName + "/Categories"
)

// Empty is used where a call takes or returns nothing.
type Empty struct{}

// --- Auth ---

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// --- Users ---

// User is the outward representation of an account. It never carries the verifier.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UserResponse struct {
	User User `json:"user"`
}

type UpdateUserRequest struct {
	ID       string  `json:"id"`
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password string  `json:"password,omitempty"`
}

type IDRequest struct {
	ID string `json:"id"`
}

type UsernameRequest struct {
	Username string `json:"username"`
}

type EmailRequest struct {
	Email string `json:"email"`
}

type ExistsResponse struct {
	Exists bool `json:"exists"`
}

type ListUsersResponse struct {
	Users []User `json:"users"`
}

// --- Products ---

// Product is the outward representation of a catalog item. Prices are decimal strings.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Price         string    `json:"price"`
	Description   *string   `json:"description,omitempty"`
	Category      *string   `json:"category,omitempty"`
	StockQuantity int32     `json:"stock_quantity"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ProductResponse struct {
	Product Product `json:"product"`
}

type CreateProductRequest struct {
	Name          string  `json:"name"`
	Price         string  `json:"price"`
	Description   *string `json:"description,omitempty"`
	Category      *string `json:"category,omitempty"`
	StockQuantity int32   `json:"stock_quantity"`
}

type UpdateProductRequest struct {
	ID            string  `json:"id"`
	Name          *string `json:"name,omitempty"`
	Price         *string `json:"price,omitempty"`
	Description   *string `json:"description,omitempty"`
	Category      *string `json:"category,omitempty"`
	StockQuantity *int32  `json:"stock_quantity,omitempty"`
}

// ListProductsRequest filters a listing; empty fields match everything.
type ListProductsRequest struct {
	NameContains string `json:"name_contains,omitempty"`
	Category     string `json:"category,omitempty"`
	MinPrice     string `json:"min_price,omitempty"`
	MaxPrice     string `json:"max_price,omitempty"`
}

type SearchProductsRequest struct {
	Name string `json:"name"`
}

type CategoryRequest struct {
	Category string `json:"category"`
}

type PriceRangeRequest struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

type ListProductsResponse struct {
	Products []Product `json:"products"`
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
}
