package proto

import "context"

// Caller is the resolved identity an operation runs on behalf of. Email is
// empty when the identity provider exposes none.
type Caller struct {
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
}

// IsAnonymous reports whether no identity was resolved.
func (c Caller) IsAnonymous() bool {
	return c.UserID == ""
}

// CallerContextKey is the context key for the caller.
var CallerContextKey = &struct{ string }{"caller"}

// CallerFromContext returns the caller from the context.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(CallerContextKey).(Caller)
	return c, ok
}

// WithCallerContext returns a new context with the caller attached.
func WithCallerContext(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, CallerContextKey, c)
}
