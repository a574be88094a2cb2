package grpcserver

import (
	"context"
	"errors"
	"runtime/debug"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/and161185/stockroom/internal/api"
	"github.com/and161185/stockroom/internal/errs"
	"github.com/and161185/stockroom/internal/token"
)

// LoggingUnary returns a unary server interceptor for structured logging.
// Chain it before AuthUnary so rejected calls are logged too.
func LoggingUnary(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		start := time.Now()
		ctx, who := withCaller(ctx)
		resp, err := next(ctx, req)
		code := status.Code(err)

		var remote string
		if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
			remote = p.Addr.String()
		}

		// Metadata only: payloads may carry passwords.
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("dur", time.Since(start)),
			zap.String("peer", remote),
		}
		if who.username != "" {
			fields = append(fields, zap.String("user", who.username))
		} else if c, ok := ClaimsFromCtx(ctx); ok {
			fields = append(fields, zap.String("user", c.Username))
		}
		log.Info("grpc", fields...)
		return resp, err
	}
}

// RecoverUnary returns a unary server interceptor that recovers from panics.
func RecoverUnary(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic",
					zap.Any("reason", r),
					zap.ByteString("stack", debug.Stack()),
					zap.String("method", info.FullMethod),
				)
				err = status.Error(codes.Internal, "internal")
			}
		}()
		return next(ctx, req)
	}
}

// Authenticator verifies bearer tokens.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (token.Claims, error)
}

// PublicMethods may be called without a bearer token.
var PublicMethods = map[string]bool{
	api.MethodRegister:             true,
	api.MethodLogin:                true,
	"/grpc.health.v1.Health/Check": true,
}

// AuthUnary returns a unary server interceptor that requires a valid bearer
// token on every method outside public and stores the verified claims in context.
func AuthUnary(auth Authenticator, public map[string]bool, log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if public[info.FullMethod] {
			return next(ctx, req)
		}
		raw, err := bearerTokenFromMD(ctx)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		claims, err := auth.Authenticate(ctx, raw)
		if err != nil {
			reason, _ := errs.TokenFailure(err)
			log.Debug("token rejected", zap.String("method", info.FullMethod), zap.String("reason", string(reason)))
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		return next(WithClaims(ctx, claims), req)
	}
}

// bearerTokenFromMD extracts "authorization: Bearer <token>" from incoming metadata.
func bearerTokenFromMD(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", errors.New("no metadata")
	}
	for _, v := range md.Get("authorization") {
		v = strings.TrimSpace(v)
		if len(v) >= 7 && strings.EqualFold(v[:7], "bearer ") {
			t := strings.TrimSpace(v[7:])
			if t != "" {
				return t, nil
			}
		}
	}
	return "", errors.New("no bearer token")
}
