// Package tenant carries the active barbershop through a unit of work.
//
// The tenant lives in the context.Context of the request or job that owns
// it, never in package state, so concurrent requests for different shops
// cannot see each other's value. Code that needs to act on behalf of
// several shops (the expiry sweeper) switches tenant with Run, and the
// cross-tenant read it needs is only available under WithoutFilter.
package tenant

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-booking/internal/logger"
)

var (
	ErrTenantNotSet      = errors.New("tenant: not set in context")
	ErrPrivilegeRequired = errors.New("tenant: privileged context required")
)

type contextKey struct{}

type scope struct {
	id         uint
	privileged bool
	reason     string
}

// WithID returns a context scoped to the given barbershop. Any privileged
// mode inherited from the parent is dropped.
func WithID(ctx context.Context, id uint) context.Context {
	return context.WithValue(ctx, contextKey{}, scope{id: id})
}

// FromContext returns the current barbershop id.
func FromContext(ctx context.Context) (uint, error) {
	s, ok := ctx.Value(contextKey{}).(scope)
	if !ok || s.privileged || s.id == 0 {
		return 0, ErrTenantNotSet
	}
	return s.id, nil
}

// Clear returns a context that carries no tenant at all.
func Clear(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, scope{})
}

// Run executes fn with ctx scoped to id. The caller's context is left
// untouched whatever fn does, panics included.
func Run(ctx context.Context, id uint, fn func(ctx context.Context) error) error {
	return fn(WithID(ctx, id))
}

// WithoutFilter switches ctx into the cross-tenant mode used by background
// jobs. Every entry is logged with its reason.
func WithoutFilter(ctx context.Context, reason string) context.Context {
	logger.FromContext(ctx).Info("tenant filter bypassed",
		zap.String("reason", reason),
	)
	return context.WithValue(ctx, contextKey{}, scope{privileged: true, reason: reason})
}

func IsPrivileged(ctx context.Context) bool {
	s, ok := ctx.Value(contextKey{}).(scope)
	return ok && s.privileged
}

// Reason reports why ctx runs without a tenant filter, if it does.
func Reason(ctx context.Context) string {
	s, _ := ctx.Value(contextKey{}).(scope)
	return s.reason
}
