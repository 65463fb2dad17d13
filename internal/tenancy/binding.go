// Package tenancy resolves authenticated identities to tenant records,
// provisions per-tenant schemas and carries the resulting session
// binding through the request context.
package tenancy

import (
	"context"
)

// SessionBinding associates an authenticated identity with its resolved
// tenant and schema for the life of one session. It is never persisted.
type SessionBinding struct {
	Email    string
	TenantID int64
	Schema   string
}

type bindingKey struct{}

// WithBinding returns a context carrying the session binding.
func WithBinding(ctx context.Context, b SessionBinding) context.Context {
	return context.WithValue(ctx, bindingKey{}, b)
}

// BindingFromContext extracts the session binding. The second return is
// false when no binding is present or the binding has no schema; scoped
// handlers must treat that as an authentication failure, never as
// permission to query a shared scope.
func BindingFromContext(ctx context.Context) (SessionBinding, bool) {
	b, ok := ctx.Value(bindingKey{}).(SessionBinding)
	if !ok || b.Schema == "" || b.TenantID == 0 {
		return SessionBinding{}, false
	}
	return b, true
}
