package grpcserver

import (
	"context"

	"google.golang.org/grpc"

	"github.com/and161185/stockroom/internal/api"
)

// StockroomServer is the handler set behind ServiceDesc.
type StockroomServer interface {
	Register(context.Context, *api.RegisterRequest) (*api.UserResponse, error)
	Login(context.Context, *api.LoginRequest) (*api.LoginResponse, error)
	WhoAmI(context.Context, *api.Empty) (*api.UserResponse, error)

	CreateUser(context.Context, *api.RegisterRequest) (*api.UserResponse, error)
	UpdateUser(context.Context, *api.UpdateUserRequest) (*api.UserResponse, error)
	DeleteUser(context.Context, *api.IDRequest) (*api.Empty, error)
	GetUser(context.Context, *api.IDRequest) (*api.UserResponse, error)
	GetUserByUsername(context.Context, *api.UsernameRequest) (*api.UserResponse, error)
	ListUsers(context.Context, *api.Empty) (*api.ListUsersResponse, error)
	UsernameExists(context.Context, *api.UsernameRequest) (*api.ExistsResponse, error)
	EmailExists(context.Context, *api.EmailRequest) (*api.ExistsResponse, error)

	CreateProduct(context.Context, *api.CreateProductRequest) (*api.ProductResponse, error)
	UpdateProduct(context.Context, *api.UpdateProductRequest) (*api.ProductResponse, error)
	DeleteProduct(context.Context, *api.IDRequest) (*api.Empty, error)
	GetProduct(context.Context, *api.IDRequest) (*api.ProductResponse, error)
	ListProducts(context.Context, *api.ListProductsRequest) (*api.ListProductsResponse, error)
	SearchProducts(context.Context, *api.SearchProductsRequest) (*api.ListProductsResponse, error)
	ProductsByCategory(context.Context, *api.CategoryRequest) (*api.ListProductsResponse, error)
	ProductsByPrice(context.Context, *api.PriceRangeRequest) (*api.ListProductsResponse, error)
	Categories(context.Context, *api.Empty) (*api.CategoriesResponse, error)
}

// unary builds a method descriptor that decodes Req and dispatches to call
// through the configured interceptor chain.
func unary[Req, Resp any](name string, call func(StockroomServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	full := "/" + api.ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, ic grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(StockroomServer)
			if ic == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: full}
			return ic(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			})
		},
	}
}

// ServiceDesc describes the Stockroom service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: api.ServiceName,
	HandlerType: (*StockroomServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Register", StockroomServer.Register),
		unary("Login", StockroomServer.Login),
		unary("WhoAmI", StockroomServer.WhoAmI),
		unary("CreateUser", StockroomServer.CreateUser),
		unary("UpdateUser", StockroomServer.UpdateUser),
		unary("DeleteUser", StockroomServer.DeleteUser),
		unary("GetUser", StockroomServer.GetUser),
		unary("GetUserByUsername", StockroomServer.GetUserByUsername),
		unary("ListUsers", StockroomServer.ListUsers),
		unary("UsernameExists", StockroomServer.UsernameExists),
		unary("EmailExists", StockroomServer.EmailExists),
		unary("CreateProduct", StockroomServer.CreateProduct),
		unary("UpdateProduct", StockroomServer.UpdateProduct),
		unary("DeleteProduct", StockroomServer.DeleteProduct),
		unary("GetProduct", StockroomServer.GetProduct),
		unary("ListProducts", StockroomServer.ListProducts),
		unary("SearchProducts", StockroomServer.SearchProducts),
		unary("ProductsByCategory", StockroomServer.ProductsByCategory),
		unary("ProductsByPrice", StockroomServer.ProductsByPrice),
		unary("Categories", StockroomServer.Categories),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "stockroom/v1/stockroom.proto",
}

// RegisterStockroomServer registers srv on s.
func RegisterStockroomServer(s grpc.ServiceRegistrar, srv StockroomServer) {
	s.RegisterService(&ServiceDesc, srv)
}
