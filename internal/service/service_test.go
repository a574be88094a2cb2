package service

import (
	"context"
	"testing"

	"github.com/and161185/stockroom/internal/crypto"
	"github.com/and161185/stockroom/internal/errs"
	"github.com/and161185/stockroom/internal/model"
	"github.com/and161185/stockroom/internal/repository/memory"
	"github.com/and161185/stockroom/internal/token"
	"go.uber.org/zap/zaptest"
)

func testHasher() *crypto.Hasher {
	return crypto.NewHasher(crypto.Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16})
}

func testTokens(t *testing.T) *token.Manager {
	t.Helper()
	m, err := token.NewManager([]byte("0123456789abcdef0123456789abcdef"), 0)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

type fixture struct {
	users    *memory.UserRepo
	products *memory.ProductRepo
	auth     *AuthServiceImpl
	userSvc  *UserServiceImpl
	prodSvc  *ProductServiceImpl
	tokens   *token.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := memory.NewUserRepo()
	products := memory.NewProductRepo()
	h := testHasher()
	tm := testTokens(t)
	return &fixture{
		users:    users,
		products: products,
		auth:     NewAuthService(users, h, tm, zaptest.NewLogger(t)),
		userSvc:  NewUserService(users, h),
		prodSvc:  NewProductService(products),
		tokens:   tm,
	}
}

func strp(s string) *string { return &s }

func wantConflict(t *testing.T, err error, field, value string) {
	t.Helper()
	ce, ok := errs.AsConflict(err)
	if !ok {
		t.Fatalf("want ConflictError(%s, %s), got %v", field, value, err)
	}
	if ce.Field != field || ce.Value != value {
		t.Fatalf("want ConflictError(%s, %s), got (%s, %s)", field, value, ce.Field, ce.Value)
	}
}

func mustRegister(t *testing.T, f *fixture, username, password string) model.User {
	t.Helper()
	u, err := f.auth.Register(context.Background(), model.Registration{Username: username, Password: password})
	if err != nil {
		t.Fatalf("Register(%s): %v", username, err)
	}
	return u
}
