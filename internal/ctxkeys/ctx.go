package ctxkeys

import (
	"context"
	"time"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	RequestTimeKey contextKey = "request_time"
	ClientIPKey    contextKey = "client_ip"
)

func RequestTime(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(RequestTimeKey).(time.Time)
	return t, ok
}

func WithRequestTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, RequestTimeKey, t)
}

// Now returns the request time carried by ctx, or the wall clock when none is set.
func Now(ctx context.Context) time.Time {
	if t, ok := RequestTime(ctx); ok {
		return t
	}
	return time.Now()
}

func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(ClientIPKey).(string)
	return ip
}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ClientIPKey, ip)
}
