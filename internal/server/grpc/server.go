// Package grpcserver exposes the Stockroom gRPC API handlers.
package grpcserver

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/and161185/stockroom/internal/api"
	"github.com/and161185/stockroom/internal/convert"
	"github.com/and161185/stockroom/internal/errs"
	"github.com/and161185/stockroom/internal/service"
)

// Server wires services into gRPC handlers.
type Server struct {
	auth     service.AuthService
	users    service.UserService
	products service.ProductService
	log      *zap.Logger
}

var _ StockroomServer = (*Server)(nil)

// New constructs a gRPC server with injected services.
func New(auth service.AuthService, users service.UserService, products service.ProductService, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{auth: auth, users: users, products: products, log: log}
}

// toStatus maps domain errors onto gRPC status codes. Unknown errors are
// logged and reported without detail.
func (s *Server) toStatus(op string, err error) error {
	switch {
	case errors.Is(err, errs.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, errs.ErrConflict), errors.Is(err, errs.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, errs.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, errs.ErrAuthenticationFailed):
		return status.Error(codes.Unauthenticated, errs.ErrAuthenticationFailed.Error())
	case errors.Is(err, errs.ErrTokenInvalid):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	}
	s.log.Error("request failed", zap.String("op", op), zap.Error(err))
	return status.Errorf(codes.Internal, "%s: internal error", op)
}

// --- Auth ---

// Register creates a new user account.
func (s *Server) Register(ctx context.Context, req *api.RegisterRequest) (*api.UserResponse, error) {
	u, err := s.auth.Register(ctx, convert.FromRegister(req))
	if err != nil {
		return nil, s.toStatus("register", err)
	}
	return &api.UserResponse{User: convert.ToUser(u)}, nil
}

// Login authenticates a user and returns an access token.
func (s *Server) Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {
	tok, err := s.auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		return nil, s.toStatus("login", err)
	}
	return convert.ToLogin(tok), nil
}

// WhoAmI returns the account bound to the caller's token.
func (s *Server) WhoAmI(ctx context.Context, _ *api.Empty) (*api.UserResponse, error) {
	c, ok := ClaimsFromCtx(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "no auth")
	}
	id, err := uuid.FromString(c.UserID)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "token subject is not a user id")
	}
	u, err := s.users.Get(ctx, id)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, status.Error(codes.Unauthenticated, "account no longer exists")
	}
	if err != nil {
		return nil, s.toStatus("whoami", err)
	}
	return &api.UserResponse{User: convert.ToUser(u)}, nil
}

// --- Users ---

func (s *Server) CreateUser(ctx context.Context, req *api.RegisterRequest) (*api.UserResponse, error) {
	u, err := s.users.Create(ctx, convert.FromRegister(req))
	if err != nil {
		return nil, s.toStatus("create user", err)
	}
	return &api.UserResponse{User: convert.ToUser(u)}, nil
}

func (s *Server) UpdateUser(ctx context.Context, req *api.UpdateUserRequest) (*api.UserResponse, error) {
	id, up, err := convert.FromUpdateUser(req)
	if err != nil {
		return nil, s.toStatus("update user", err)
	}
	u, err := s.users.Update(ctx, id, up)
	if err != nil {
		return nil, s.toStatus("update user", err)
	}
	return &api.UserResponse{User: convert.ToUser(u)}, nil
}

func (s *Server) DeleteUser(ctx context.Context, req *api.IDRequest) (*api.Empty, error) {
	id, err := convert.ParseID(req.ID)
	if err != nil {
		return nil, s.toStatus("delete user", err)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return nil, s.toStatus("delete user", err)
	}
	return &api.Empty{}, nil
}

func (s *Server) GetUser(ctx context.Context, req *api.IDRequest) (*api.UserResponse, error) {
	id, err := convert.ParseID(req.ID)
	if err != nil {
		return nil, s.toStatus("get user", err)
	}
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, s.toStatus("get user", err)
	}
	return &api.UserResponse{User: convert.ToUser(u)}, nil
}

func (s *Server) GetUserByUsername(ctx context.Context, req *api.UsernameRequest) (*api.UserResponse, error) {
	u, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, s.toStatus("get user", err)
	}
	return &api.UserResponse{User: convert.ToUser(u)}, nil
}

func (s *Server) ListUsers(ctx context.Context, _ *api.Empty) (*api.ListUsersResponse, error) {
	us, err := s.users.List(ctx)
	if err != nil {
		return nil, s.toStatus("list users", err)
	}
	return &api.ListUsersResponse{Users: convert.ToUsers(us)}, nil
}

func (s *Server) UsernameExists(ctx context.Context, req *api.UsernameRequest) (*api.ExistsResponse, error) {
	ok, err := s.users.UsernameExists(ctx, req.Username)
	if err != nil {
		return nil, s.toStatus("username exists", err)
	}
	return &api.ExistsResponse{Exists: ok}, nil
}

func (s *Server) EmailExists(ctx context.Context, req *api.EmailRequest) (*api.ExistsResponse, error) {
	ok, err := s.users.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, s.toStatus("email exists", err)
	}
	return &api.ExistsResponse{Exists: ok}, nil
}

// --- Products ---

func (s *Server) CreateProduct(ctx context.Context, req *api.CreateProductRequest) (*api.ProductResponse, error) {
	in, err := convert.FromCreateProduct(req)
	if err != nil {
		return nil, s.toStatus("create product", err)
	}
	p, err := s.products.Create(ctx, in)
	if err != nil {
		return nil, s.toStatus("create product", err)
	}
	return &api.ProductResponse{Product: convert.ToProduct(p)}, nil
}

func (s *Server) UpdateProduct(ctx context.Context, req *api.UpdateProductRequest) (*api.ProductResponse, error) {
	id, up, err := convert.FromUpdateProduct(req)
	if err != nil {
		return nil, s.toStatus("update product", err)
	}
	p, err := s.products.Update(ctx, id, up)
	if err != nil {
		return nil, s.toStatus("update product", err)
	}
	return &api.ProductResponse{Product: convert.ToProduct(p)}, nil
}

func (s *Server) DeleteProduct(ctx context.Context, req *api.IDRequest) (*api.Empty, error) {
	id, err := convert.ParseID(req.ID)
	if err != nil {
		return nil, s.toStatus("delete product", err)
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return nil, s.toStatus("delete product", err)
	}
	return &api.Empty{}, nil
}

func (s *Server) GetProduct(ctx context.Context, req *api.IDRequest) (*api.ProductResponse, error) {
	id, err := convert.ParseID(req.ID)
	if err != nil {
		return nil, s.toStatus("get product", err)
	}
	p, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, s.toStatus("get product", err)
	}
	return &api.ProductResponse{Product: convert.ToProduct(p)}, nil
}

func (s *Server) ListProducts(ctx context.Context, req *api.ListProductsRequest) (*api.ListProductsResponse, error) {
	f, err := convert.FromListProducts(req)
	if err != nil {
		return nil, s.toStatus("list products", err)
	}
	ps, err := s.products.List(ctx, f)
	if err != nil {
		return nil, s.toStatus("list products", err)
	}
	return &api.ListProductsResponse{Products: convert.ToProducts(ps)}, nil
}

func (s *Server) SearchProducts(ctx context.Context, req *api.SearchProductsRequest) (*api.ListProductsResponse, error) {
	ps, err := s.products.SearchByName(ctx, req.Name)
	if err != nil {
		return nil, s.toStatus("search products", err)
	}
	return &api.ListProductsResponse{Products: convert.ToProducts(ps)}, nil
}

func (s *Server) ProductsByCategory(ctx context.Context, req *api.CategoryRequest) (*api.ListProductsResponse, error) {
	ps, err := s.products.ByCategory(ctx, req.Category)
	if err != nil {
		return nil, s.toStatus("products by category", err)
	}
	return &api.ListProductsResponse{Products: convert.ToProducts(ps)}, nil
}

func (s *Server) ProductsByPrice(ctx context.Context, req *api.PriceRangeRequest) (*api.ListProductsResponse, error) {
	lo, err := convert.ParsePrice(req.Min)
	if err != nil {
		return nil, s.toStatus("products by price", err)
	}
	hi, err := convert.ParsePrice(req.Max)
	if err != nil {
		return nil, s.toStatus("products by price", err)
	}
	ps, err := s.products.ByPriceRange(ctx, lo, hi)
	if err != nil {
		return nil, s.toStatus("products by price", err)
	}
	return &api.ListProductsResponse{Products: convert.ToProducts(ps)}, nil
}

func (s *Server) Categories(ctx context.Context, _ *api.Empty) (*api.CategoriesResponse, error) {
	cs, err := s.products.Categories(ctx)
	if err != nil {
		return nil, s.toStatus("categories", err)
	}
	return &api.CategoriesResponse{Categories: cs}, nil
}
