package core

import "context"

type contextKey string

const (
	ctxKeyClient    contextKey = "client"
	ctxKeyUserAgent contextKey = "user_agent"
)

// ContextWithClient tags the context with the requesting client's identity
// (its IP address). Busy-gate keys are scoped by it.
func ContextWithClient(ctx context.Context, client string) context.Context {
	return context.WithValue(ctx, ctxKeyClient, client)
}

// ContextWithUserAgent adds User-Agent to context for request logging.
func ContextWithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, ctxKeyUserAgent, ua)
}

// GetClientFromContext extracts the client identity from context.
func GetClientFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyClient).(string); ok {
		return v
	}
	return ""
}

// GetUserAgentFromContext extracts User-Agent from context.
func GetUserAgentFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyUserAgent).(string); ok {
		return v
	}
	return ""
}
