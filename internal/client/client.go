// Package client is a typed Stockroom gRPC client.
package client

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"os"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/and161185/stockroom/internal/api"
)

// bearerCreds attaches "authorization: Bearer <token>" to every call.
type bearerCreds struct {
	token      string
	requireTLS bool
}

func (b bearerCreds) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	return map[string]string{"authorization": "Bearer " + b.token}, nil
}
func (b bearerCreds) RequireTransportSecurity() bool { return b.requireTLS }

// Options configure Dial.
type Options struct {
	CACert    string // PEM bundle; system roots when empty
	Insecure  bool   // TLS without certificate verification (dev)
	Plaintext bool   // no TLS at all (local dev only)
	Token     string // bearer token for authenticated calls
}

// LoadTLS builds transport credentials from a CA file.
func LoadTLS(caPath string, skipVerify bool) (credentials.TransportCredentials, error) {
	if skipVerify {
		return credentials.NewTLS(&tls.Config{InsecureSkipVerify: true}), nil //nolint:gosec // opt-in dev flag
	}
	if caPath == "" {
		return credentials.NewClientTLSFromCert(nil, ""), nil
	}
	pem, err := os.ReadFile(caPath)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.New("bad CA cert")
	}
	return credentials.NewTLS(&tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}), nil
}

// Client calls the Stockroom service.
type Client struct {
	cc   grpc.ClientConnInterface
	conn *grpc.ClientConn
	auth *bearerCreds
}

// New wraps an existing connection. token may be empty for public calls.
func New(cc grpc.ClientConnInterface, token string, requireTLS bool) *Client {
	c := &Client{cc: cc}
	if token != "" {
		c.auth = &bearerCreds{token: token, requireTLS: requireTLS}
	}
	return c
}

// Dial connects to addr.
func Dial(addr string, o Options) (*Client, error) {
	var creds credentials.TransportCredentials
	if o.Plaintext {
		creds = insecure.NewCredentials()
	} else {
		var err error
		if creds, err = LoadTLS(o.CACert, o.Insecure); err != nil {
			return nil, err
		}
	}
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, err
	}
	c := New(conn, o.Token, !o.Plaintext)
	c.conn = conn
	return c, nil
}

// Close releases the underlying connection when Dial created it.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func invoke[Resp any](ctx context.Context, c *Client, method string, req any) (*Resp, error) {
	opts := []grpc.CallOption{grpc.CallContentSubtype(api.CodecName)}
	if c.auth != nil {
		opts = append(opts, grpc.PerRPCCredentials(*c.auth))
	}
	out := new(Resp)
	if err := c.cc.Invoke(ctx, method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// --- Auth ---

func (c *Client) Register(ctx context.Context, req *api.RegisterRequest) (*api.UserResponse, error) {
	return invoke[api.UserResponse](ctx, c, api.MethodRegister, req)
}

func (c *Client) Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {
	return invoke[api.LoginResponse](ctx, c, api.MethodLogin, req)
}

func (c *Client) WhoAmI(ctx context.Context) (*api.UserResponse, error) {
	return invoke[api.UserResponse](ctx, c, api.MethodWhoAmI, &api.Empty{})
}

// --- Users ---

func (c *Client) CreateUser(ctx context.Context, req *api.RegisterRequest) (*api.UserResponse, error) {
	return invoke[api.UserResponse](ctx, c, api.MethodCreateUser, req)
}

func (c *Client) UpdateUser(ctx context.Context, req *api.UpdateUserRequest) (*api.UserResponse, error) {
	return invoke[api.UserResponse](ctx, c, api.MethodUpdateUser, req)
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	_, err := invoke[api.Empty](ctx, c, api.MethodDeleteUser, &api.IDRequest{ID: id})
	return err
}

func (c *Client) GetUser(ctx context.Context, id string) (*api.UserResponse, error) {
	return invoke[api.UserResponse](ctx, c, api.MethodGetUser, &api.IDRequest{ID: id})
}

func (c *Client) GetUserByUsername(ctx context.Context, username string) (*api.UserResponse, error) {
	return invoke[api.UserResponse](ctx, c, api.MethodGetUserByUsername, &api.UsernameRequest{Username: username})
}

func (c *Client) ListUsers(ctx context.Context) (*api.ListUsersResponse, error) {
	return invoke[api.ListUsersResponse](ctx, c, api.MethodListUsers, &api.Empty{})
}

func (c *Client) UsernameExists(ctx context.Context, username string) (bool, error) {
	r, err := invoke[api.ExistsResponse](ctx, c, api.MethodUsernameExists, &api.UsernameRequest{Username: username})
	if err != nil {
		return false, err
	}
	return r.Exists, nil
}

func (c *Client) EmailExists(ctx context.Context, email string) (bool, error) {
	r, err := invoke[api.ExistsResponse](ctx, c, api.MethodEmailExists, &api.EmailRequest{Email: email})
	if err != nil {
		return false, err
	}
	return r.Exists, nil
}

// --- Products ---

func (c *Client) CreateProduct(ctx context.Context, req *api.CreateProductRequest) (*api.ProductResponse, error) {
	return invoke[api.ProductResponse](ctx, c, api.MethodCreateProduct, req)
}

func (c *Client) UpdateProduct(ctx context.Context, req *api.UpdateProductRequest) (*api.ProductResponse, error) {
	return invoke[api.ProductResponse](ctx, c, api.MethodUpdateProduct, req)
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	_, err := invoke[api.Empty](ctx, c, api.MethodDeleteProduct, &api.IDRequest{ID: id})
	return err
}

func (c *Client) GetProduct(ctx context.Context, id string) (*api.ProductResponse, error) {
	return invoke[api.ProductResponse](ctx, c, api.MethodGetProduct, &api.IDRequest{ID: id})
}

func (c *Client) ListProducts(ctx context.Context, req *api.ListProductsRequest) (*api.ListProductsResponse, error) {
	return invoke[api.ListProductsResponse](ctx, c, api.MethodListProducts, req)
}

func (c *Client) SearchProducts(ctx context.Context, name string) (*api.ListProductsResponse, error) {
	return invoke[api.ListProductsResponse](ctx, c, api.MethodSearchProducts, &api.SearchProductsRequest{Name: name})
}

func (c *Client) ProductsByCategory(ctx context.Context, category string) (*api.ListProductsResponse, error) {
	return invoke[api.ListProductsResponse](ctx, c, api.MethodProductsByCategory, &api.CategoryRequest{Category: category})
}

func (c *Client) ProductsByPrice(ctx context.Context, lo, hi string) (*api.ListProductsResponse, error) {
	return invoke[api.ListProductsResponse](ctx, c, api.MethodProductsByPrice, &api.PriceRangeRequest{Min: lo, Max: hi})
}

func (c *Client) Categories(ctx context.Context) ([]string, error) {
	r, err := invoke[api.CategoriesResponse](ctx, c, api.MethodCategories, &api.Empty{})
	if err != nil {
		return nil, err
	}
	return r.Categories, nil
}
