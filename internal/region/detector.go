// Package region resolves which privacy regime applies to a visitor.
package region

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	compliance "consentd/internal/compliance/models"
	"consentd/internal/platform/kv"
	"consentd/internal/platform/tracer"
	"consentd/internal/region/metrics"
	id "consentd/pkg/domain"
	"consentd/pkg/requestcontext"
)

const (
	defaultCacheTTL        = 24 * time.Hour
	defaultStrategyTimeout = 3 * time.Second
	overrideRetention      = 365 * 24 * time.Hour

	cacheKey    = "region"
	overrideKey = "region_override"
)

// Detection sources besides strategy names.
const (
	SourceOverride = "override"
	SourceFallback = "fallback"
)

// FallbackRegion is used when no strategy has an opinion. It is the most
// restrictive regime.
const FallbackRegion = compliance.RegionEU

// Detection is a resolved region with its provenance.
type Detection struct {
	Region     compliance.Region `json:"region"`
	Source     string            `json:"source"`
	Cached     bool              `json:"cached"`
	DetectedAt time.Time         `json:"detected_at"`
}

type cachedDetection struct {
	Region     compliance.Region `json:"region"`
	Source     string            `json:"source"`
	DetectedAt time.Time         `json:"detected_at"`
}

// OverrideHook runs when a subject switches to a different override region,
// before the new region is returned.
type OverrideHook func(ctx context.Context, subject id.Subject, region compliance.Region)

type Option func(*Detector)

// Detector runs the override → cache → strategies → fallback chain.
type Detector struct {
	kv              kv.Store
	strategies      []Strategy
	logger          *slog.Logger
	tracer          tracer.Tracer
	metrics         *metrics.Metrics
	cacheTTL        time.Duration
	strategyTimeout time.Duration
	onOverride      OverrideHook

	group singleflight.Group

	mu          sync.Mutex
	generations map[string]uint64
}

// NewDetector builds a detector that tries strategies in the given order.
func NewDetector(store kv.Store, logger *slog.Logger, strategies []Strategy, opts ...Option) *Detector {
	d := &Detector{
		kv:              store,
		strategies:      strategies,
		logger:          logger,
		tracer:          tracer.NewNoop(),
		cacheTTL:        defaultCacheTTL,
		strategyTimeout: defaultStrategyTimeout,
		generations:     make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// WithCacheTTL sets how long a detected region is reused.
func WithCacheTTL(ttl time.Duration) Option {
	return func(d *Detector) {
		if ttl > 0 {
			d.cacheTTL = ttl
		}
	}
}

// WithStrategyTimeout bounds each strategy attempt.
func WithStrategyTimeout(timeout time.Duration) Option {
	return func(d *Detector) {
		if timeout > 0 {
			d.strategyTimeout = timeout
		}
	}
}

func WithOverrideHook(hook OverrideHook) Option {
	return func(d *Detector) {
		d.onOverride = hook
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(d *Detector) {
		if t != nil {
			d.tracer = t
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Detector) {
		d.metrics = m
	}
}

// Detect returns the subject's region. It never fails.
func (d *Detector) Detect(ctx context.Context, sig Signals) compliance.Region {
	return d.Resolve(ctx, sig).Region
}

// Resolve is Detect with provenance.
func (d *Detector) Resolve(ctx context.Context, sig Signals) Detection {
	ctx, span := d.tracer.Start(ctx, tracer.SpanRegionDetect,
		tracer.String(tracer.AttrSubject, tracer.HashSubject(sig.Subject.Key())),
	)
	defer span.End(nil)

	if detection, ok := d.applyOverride(ctx, sig); ok {
		span.SetAttributes(tracer.Bool(tracer.AttrOverride, true), tracer.String(tracer.AttrRegion, detection.Region.String()))
		d.record(detection)
		return detection
	}

	if cached, ok := d.cached(ctx, sig.Subject); ok {
		span.SetAttributes(tracer.Bool(tracer.AttrCacheHit, true), tracer.String(tracer.AttrRegion, cached.Region.String()))
		d.record(cached)
		return cached
	}
	span.SetAttributes(tracer.Bool(tracer.AttrCacheHit, false))

	key := d.flightKey(sig)
	v, _, shared := d.group.Do(key, func() (any, error) {
		return d.detect(context.WithoutCancel(ctx), sig), nil
	})
	detection := v.(Detection)
	if shared {
		span.AddEvent("coalesced")
	}
	span.SetAttributes(tracer.String(tracer.AttrRegion, detection.Region.String()))
	d.record(detection)
	return detection
}

// Redetect discards the cached region and runs detection again. A detection
// already in flight for the subject finishes but its result is not cached.
func (d *Detector) Redetect(ctx context.Context, sig Signals) Detection {
	key := d.flightKey(sig)
	d.mu.Lock()
	d.generations[key]++
	d.mu.Unlock()
	d.group.Forget(key)

	if !sig.Subject.IsZero() {
		if err := d.kv.Delete(ctx, kv.Key(sig.Subject.Key(), cacheKey)); err != nil {
			d.logger.WarnContext(ctx, "failed to drop cached region", "error", err)
		}
	}
	return d.Resolve(ctx, sig)
}

func (d *Detector) applyOverride(ctx context.Context, sig Signals) (Detection, bool) {
	if sig.Override == "" {
		return Detection{}, false
	}
	r, err := compliance.ParseRegion(sig.Override)
	if err != nil {
		d.logger.DebugContext(ctx, "ignoring invalid region override", "override", sig.Override)
		return Detection{}, false
	}
	detection := Detection{Region: r, Source: SourceOverride, DetectedAt: requestcontext.Now(ctx)}
	if sig.Subject.IsZero() {
		return detection, true
	}

	ns := sig.Subject.Key()
	var previous compliance.Region
	if err := kv.GetJSON(ctx, d.kv, kv.Key(ns, overrideKey), &previous); err != nil && !kv.IsNotFound(err) {
		d.logger.WarnContext(ctx, "previous region override unreadable", "error", err)
	}
	if previous != r {
		d.logger.InfoContext(ctx, "region override changed, resetting consent",
			"previous", previous,
			"region", r,
		)
		if d.onOverride != nil {
			d.onOverride(ctx, sig.Subject, r)
		}
		if d.metrics != nil {
			d.metrics.IncrementOverrideResets()
		}
		if err := kv.SetJSON(ctx, d.kv, kv.Key(ns, overrideKey), r, overrideRetention); err != nil {
			d.logger.WarnContext(ctx, "failed to remember region override", "error", err)
		}
	}
	d.store(ctx, sig.Subject, detection)
	return detection, true
}

func (d *Detector) cached(ctx context.Context, subject id.Subject) (Detection, bool) {
	if subject.IsZero() {
		return Detection{}, false
	}
	var entry cachedDetection
	if err := kv.GetJSON(ctx, d.kv, kv.Key(subject.Key(), cacheKey), &entry); err != nil {
		if !kv.IsNotFound(err) {
			d.logger.WarnContext(ctx, "cached region unreadable", "error", err)
		}
		return Detection{}, false
	}
	if !entry.Region.IsValid() || requestcontext.Now(ctx).Sub(entry.DetectedAt) >= d.cacheTTL {
		return Detection{}, false
	}
	return Detection{Region: entry.Region, Source: entry.Source, Cached: true, DetectedAt: entry.DetectedAt}, true
}

func (d *Detector) detect(ctx context.Context, sig Signals) Detection {
	start := time.Now()
	key := d.flightKey(sig)
	d.mu.Lock()
	generation := d.generations[key]
	d.mu.Unlock()

	detection := Detection{Region: FallbackRegion, Source: SourceFallback}
	for _, strategy := range d.strategies {
		r, err := d.try(ctx, strategy, sig)
		if err != nil {
			d.logger.WarnContext(ctx, "region strategy failed",
				"strategy", strategy.Name(),
				"error", err,
				"trace_id", tracer.TraceID(ctx),
			)
			if d.metrics != nil {
				d.metrics.IncrementStrategyFailure(strategy.Name())
			}
			continue
		}
		if r.IsValid() && r != compliance.RegionOther {
			detection = Detection{Region: r, Source: strategy.Name()}
			break
		}
	}
	detection.DetectedAt = requestcontext.Now(ctx)
	if d.metrics != nil {
		d.metrics.ObserveDetectLatency(time.Since(start).Seconds())
	}

	d.mu.Lock()
	current := d.generations[key]
	d.mu.Unlock()
	if current != generation {
		d.logger.DebugContext(ctx, "discarding superseded region detection", "region", detection.Region)
		return detection
	}
	d.store(ctx, sig.Subject, detection)
	return detection
}

func (d *Detector) try(ctx context.Context, strategy Strategy, sig Signals) (r compliance.Region, err error) {
	ctx, span := d.tracer.Start(ctx, tracer.SpanRegionStrategy, tracer.String(tracer.AttrStrategy, strategy.Name()))
	defer func() {
		if rec := recover(); rec != nil {
			r, err = compliance.RegionOther, fmt.Errorf("strategy %s panicked: %v", strategy.Name(), rec)
		}
		span.End(err)
	}()
	ctx, cancel := context.WithTimeout(ctx, d.strategyTimeout)
	defer cancel()
	return strategy.TryDetect(ctx, sig)
}

func (d *Detector) store(ctx context.Context, subject id.Subject, detection Detection) {
	if subject.IsZero() {
		return
	}
	entry := cachedDetection{Region: detection.Region, Source: detection.Source, DetectedAt: detection.DetectedAt}
	if err := kv.SetJSON(ctx, d.kv, kv.Key(subject.Key(), cacheKey), entry, d.cacheTTL); err != nil {
		d.logger.WarnContext(ctx, "failed to cache region", "error", err)
	}
}

func (d *Detector) record(detection Detection) {
	if d.metrics == nil {
		return
	}
	source := detection.Source
	if detection.Cached {
		source = "cache"
	}
	d.metrics.IncrementDetection(source, detection.Region.String())
}

func (d *Detector) flightKey(sig Signals) string {
	if key := sig.Subject.Key(); key != "" {
		return key
	}
	return "anonymous:" + sig.IP
}
