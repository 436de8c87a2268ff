package betterauth

import "context"

type contextKey string

const (
	contextKeyClientIP  contextKey = "betterauth.client_ip"
	contextKeyUserAgent contextKey = "betterauth.user_agent"
)

// WithClientIP attaches the caller's IP so sessions and audit events can
// record it. The engine never derives the IP itself.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, contextKeyClientIP, ip)
}

// WithUserAgent attaches the caller's user agent string.
func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, contextKeyUserAgent, ua)
}

func clientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(contextKeyClientIP).(string)
	return ip
}

func userAgentFromContext(ctx context.Context) string {
	ua, _ := ctx.Value(contextKeyUserAgent).(string)
	return ua
}
