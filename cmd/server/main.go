// Command stockroom-server starts the Stockroom gRPC server.
package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/and161185/stockroom/internal/config"
	"github.com/and161185/stockroom/internal/crypto"
	"github.com/and161185/stockroom/internal/migrate"
	"github.com/and161185/stockroom/internal/repository"
	"github.com/and161185/stockroom/internal/repository/memory"
	"github.com/and161185/stockroom/internal/repository/postgres"
	grpcserver "github.com/and161185/stockroom/internal/server/grpc"
	"github.com/and161185/stockroom/internal/service"
	"github.com/and161185/stockroom/internal/token"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, opens the store and serves until SIGINT/SIGTERM.
func main() {
	cfg, err := config.Load(os.Args[1:], nil)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(2)
	}

	logger := newLogger(cfg.Dev)
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func newLogger(dev bool) *zap.Logger {
	build := zap.NewProduction
	if dev {
		build = zap.NewDevelopment
	}
	logger, err := build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// signingKey returns the configured key or a random one for this process.
func signingKey(cfg config.Config, log *zap.Logger) ([]byte, error) {
	if cfg.JWTKey != "" {
		return []byte(cfg.JWTKey), nil
	}
	log.Warn("no jwt key configured; generated a random key, tokens will not survive a restart")
	return token.GenerateKey()
}

// openStore selects PostgreSQL when a DSN is set, otherwise the in-memory store.
func openStore(ctx context.Context, cfg config.Config, log *zap.Logger) (repository.UserRepository, repository.ProductRepository, func(), error) {
	if cfg.DSN == "" {
		log.Warn("no dsn configured; using the in-memory store")
		return memory.NewUserRepo(), memory.NewProductRepo(), func() {}, nil
	}

	ver, err := migrate.Up(ctx, cfg.DSN, log)
	if err != nil {
		return nil, nil, nil, err
	}
	log.Info("schema ready", zap.Int64("version", ver))

	db, err := postgres.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, nil, nil, err
	}
	return postgres.NewUserRepo(db), postgres.NewProductRepo(db), db.Close, nil
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	users, products, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	key, err := signingKey(cfg, logger)
	if err != nil {
		return err
	}
	tokens, err := token.NewManager(key, cfg.AccessTTL)
	if err != nil {
		return err
	}
	hasher := crypto.NewHasher(cfg.HashParams())

	// Services
	authSvc := service.NewAuthService(users, hasher, tokens, logger.Named("auth"))
	userSvc := service.NewUserService(users, hasher)
	productSvc := service.NewProductService(products)

	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			grpcserver.RecoverUnary(logger),
			grpcserver.LoggingUnary(logger),
			grpcserver.AuthUnary(authSvc, grpcserver.PublicMethods, logger),
		),
	}
	if cfg.TLSEnabled() {
		creds, err := credentials.NewServerTLSFromFile(cfg.TLSCert, cfg.TLSKey)
		if err != nil {
			return err
		}
		opts = append(opts, grpc.Creds(creds))
	} else {
		logger.Warn("tls disabled; serving plaintext")
	}
	s := grpc.NewServer(opts...)

	grpcserver.RegisterStockroomServer(s, grpcserver.New(authSvc, userSvc, productSvc, logger))

	// Health & reflection (dev)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	if cfg.Dev {
		reflection.Register(s)
	}

	lis, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", lis.Addr().String()), zap.Bool("tls", cfg.TLSEnabled()))
		errCh <- s.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		hs.Shutdown()
		done := make(chan struct{})
		go func() {
			s.GracefulStop()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(cfg.ShutdownTimeout):
			s.Stop()
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return err
	}
}
