package grpcserver

import (
	"context"

	"github.com/and161185/stockroom/internal/token"
)

type ctxKey string

const (
	claimsKey ctxKey = "stockroom.claims"
	callerKey ctxKey = "stockroom.caller"
)

// caller is filled in by WithClaims so that interceptors running outside the
// auth step can still see who made the call.
type caller struct{ username string }

func withCaller(ctx context.Context) (context.Context, *caller) {
	c := &caller{}
	return context.WithValue(ctx, callerKey, c), c
}

// WithClaims stores verified token claims in context.
func WithClaims(ctx context.Context, c token.Claims) context.Context {
	if slot, ok := ctx.Value(callerKey).(*caller); ok {
		slot.username = c.Username
	}
	return context.WithValue(ctx, claimsKey, c)
}

// ClaimsFromCtx fetches verified token claims from context.
func ClaimsFromCtx(ctx context.Context) (token.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(token.Claims)
	return c, ok
}
