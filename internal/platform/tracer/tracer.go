// Package tracer provides a lightweight tracing abstraction.
//
// Callers depend on the Tracer interface rather than on OpenTelemetry, so
// detection and the outbound geolocation call can be traced in production
// while tests run with NoopTracer.
//
// Implementations:
//   - NoopTracer: For tests (zero overhead)
//   - OTelTracer: OpenTelemetry adapter for production
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span, recording any error that occurred.
	// End must be called exactly once, typically via defer.
	End(err error)

	SetAttributes(attrs ...Attribute)

	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a new span with the given name and attributes.
	//
	// Example:
	//   ctx, span := tracer.Start(ctx, tracer.SpanRegionDetect,
	//       tracer.String(tracer.AttrSubject, tracer.HashSubject(key)),
	//   )
	//   defer span.End(nil)
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool creates a boolean attribute.
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int64 creates an int64 attribute.
func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// HashSubject returns a short SHA-256 digest of a subject key so traces can be
// correlated without carrying visitor or user ids.
func HashSubject(key string) string {
	if key == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:8])
}

// Span names.
const (
	SpanRegionDetect   = "region.detect"
	SpanRegionStrategy = "region.strategy"
	SpanGeoIPLookup    = "region.geoip.lookup"
)

// Attribute keys.
const (
	AttrSubject  = "subject"
	AttrStrategy = "strategy"
	AttrRegion   = "region"
	AttrCacheHit = "cache.hit"
	AttrOverride = "override"
	AttrFallback = "fallback"
)
