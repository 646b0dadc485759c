package goOTP

import "context"

type clientIPContextKey struct{}

// WithClientIP attaches the calling client's IP address to ctx. The Engine uses it
// for per-IP issue throttling and audit events.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}
