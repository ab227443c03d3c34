package tracer

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestConvert(t *testing.T) {
	got := convert([]Attribute{
		String(AttrRegion, "eu"),
		Bool(AttrCacheHit, true),
		{Key: "attempts", Value: 3},
		{Key: "latency", Value: 40 * time.Millisecond},
		{Key: "strategies", Value: []string{"geoip", "timezone"}},
		{Key: "client_ip", Value: netip.MustParseAddr("203.0.113.0")},
		{Key: "dropped", Value: struct{}{}},
	})

	assert.Equal(t, []attribute.KeyValue{
		attribute.String(AttrRegion, "eu"),
		attribute.Bool(AttrCacheHit, true),
		attribute.Int("attempts", 3),
		attribute.Int64("latency", 40),
		attribute.StringSlice("strategies", []string{"geoip", "timezone"}),
		attribute.String("client_ip", "203.0.113.0"),
	}, got)
}
