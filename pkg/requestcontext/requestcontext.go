// Package requestcontext carries request-scoped values (request id, client
// metadata, request time) through context.Context so services never reach
// back into *http.Request.
package requestcontext

import (
	"context"
	"time"
)

type (
	requestIDKey   struct{}
	metadataKey    struct{}
	requestTimeKey struct{}
)

// ClientMetadata describes the calling browser as seen by the edge middleware.
type ClientMetadata struct {
	IP             string
	UserAgent      string
	AcceptLanguage string
	Timezone       string
}

// WithRequestID stores the request id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID returns the request id or "" outside a request.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithClientMetadata stores the client metadata.
func WithClientMetadata(ctx context.Context, md ClientMetadata) context.Context {
	return context.WithValue(ctx, metadataKey{}, md)
}

// Metadata returns the client metadata, zero-valued outside a request.
func Metadata(ctx context.Context) ClientMetadata {
	if md, ok := ctx.Value(metadataKey{}).(ClientMetadata); ok {
		return md
	}
	return ClientMetadata{}
}

// ClientIP is shorthand for Metadata(ctx).IP.
func ClientIP(ctx context.Context) string {
	return Metadata(ctx).IP
}

// UserAgent is shorthand for Metadata(ctx).UserAgent.
func UserAgent(ctx context.Context) string {
	return Metadata(ctx).UserAgent
}

// WithTime injects a specific time into a context.
// Useful for:
//   - Service unit tests that don't run the full HTTP middleware chain
//   - Expiry checks that must observe a simulated clock
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (for non-HTTP contexts like workers and tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}
