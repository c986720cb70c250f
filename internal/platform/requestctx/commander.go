// Package requestctx carries per-request identity through context values.
package requestctx

import "context"

// commanderIDContextKey is the context key for the authenticated commander.
type commanderIDContextKey struct{}

// WithCommanderID stores a commander identifier in context.
func WithCommanderID(ctx context.Context, commanderID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, commanderIDContextKey{}, commanderID)
}

// CommanderIDFromContext returns the commander identifier stored in context.
// It is empty when the request carried no verified grant.
func CommanderIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(commanderIDContextKey{}).(string)
	return value
}
