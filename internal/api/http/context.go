package http

import "context"

type contextKey string

const agentIDKey contextKey = "agent-id"

// WithAgentID stores the authenticated agent on the request context.
func WithAgentID(ctx context.Context, agentID string) context.Context {
	return context.WithValue(ctx, agentIDKey, agentID)
}

// AgentIDFromContext returns the agent set by the auth middleware.
func AgentIDFromContext(ctx context.Context) (string, bool) {
	agentID, ok := ctx.Value(agentIDKey).(string)
	return agentID, ok && agentID != ""
}
