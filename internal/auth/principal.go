// Package auth holds the caller identity carried through a request, the
// authorization gate applied by administrative operations and the
// server-side session store.
package auth

import (
	"context"

	"github.com/iliyamo/b-cinema/internal/model"
)

// Principal is the identity attached to a request.  The zero value is the
// anonymous caller.
type Principal struct {
	SessionID string
	UserID    uint64
	UserName  string
	Role      string
}

// Anonymous reports whether no session is attached.
func (p Principal) Anonymous() bool { return p.UserID == 0 }

// IsAdmin reports whether the caller is an authenticated administrator.
func (p Principal) IsAdmin() bool { return !p.Anonymous() && p.Role == model.RoleAdmin }

type ctxKey struct{}

// WithPrincipal returns a child context carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns the principal stored in ctx, or the anonymous one.
func FromContext(ctx context.Context) Principal {
	p, _ := ctx.Value(ctxKey{}).(Principal)
	return p
}
