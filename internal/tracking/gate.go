// Package tracking gates analytics events on the subject's consent. Nothing
// reaches the analytics sink unless the event's category is currently
// granted; until the sink is initialized, permitted events wait in a bounded
// queue and are re-checked when it drains.
package tracking

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"consentd/internal/consent/models"
	"consentd/internal/consent/service"
	"consentd/internal/platform/kv"
	"consentd/internal/tracking/metrics"
	id "consentd/pkg/domain"
	"consentd/pkg/requestcontext"
)

// DefaultQueueCap bounds the pre-initialization queue.
const DefaultQueueCap = 100

// Event is what the analytics sink receives.
type Event struct {
	Name       string          `json:"event"`
	Category   models.Category `json:"category"`
	Properties map[string]any  `json:"properties,omitempty"`
	ClientID   string          `json:"client_id,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// Sink receives permitted events.
type Sink interface {
	Push(ctx context.Context, event Event) error
}

// Starter is implemented by sinks that must be brought up before use.
type Starter interface {
	Start(ctx context.Context) error
}

// PreferenceSource yields the subject's live preferences, nil when there is
// no valid decision.
type PreferenceSource interface {
	Current(ctx context.Context, subject id.Subject) *models.Preferences
}

// Outcome reports what happened to a tracked event.
type Outcome string

const (
	OutcomeForwarded  Outcome = "forwarded"
	OutcomeQueued     Outcome = "queued"
	OutcomeSuppressed Outcome = "suppressed"
	OutcomeFailed     Outcome = "failed"
	OutcomeDropped    Outcome = "dropped"
)

type queued struct {
	subject id.Subject
	event   Event
}

// Gate decides whether events may be forwarded.
type Gate struct {
	prefs   PreferenceSource
	sink    Sink
	store   kv.Store
	logger  *slog.Logger
	metrics *metrics.Metrics

	queueCap    int
	startMu     sync.Mutex
	mu          sync.Mutex
	initialized bool
	queue       []queued
}

// Option configures a Gate.
type Option func(*Gate)

// WithQueueCap overrides DefaultQueueCap. Values below 1 are ignored.
func WithQueueCap(n int) Option {
	return func(g *Gate) {
		if n > 0 {
			g.queueCap = n
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gate) {
		g.metrics = m
	}
}

// NewGate builds a gate. store holds per-subject analytics client ids.
func NewGate(prefs PreferenceSource, sink Sink, store kv.Store, logger *slog.Logger, opts ...Option) *Gate {
	g := &Gate{
		prefs:    prefs,
		sink:     sink,
		store:    store,
		logger:   logger,
		queueCap: DefaultQueueCap,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// IsAllowed reports whether category may be tracked for subject. Essential
// is always allowed; everything else fails closed without a valid decision.
func (g *Gate) IsAllowed(ctx context.Context, subject id.Subject, category models.Category) bool {
	if category.IsEssential() {
		return true
	}
	prefs := g.prefs.Current(ctx, subject)
	if prefs == nil {
		return false
	}
	return prefs.Allows(category)
}

// Track records a performance event.
func (g *Gate) Track(ctx context.Context, subject id.Subject, name string, props map[string]any) Outcome {
	return g.TrackAs(ctx, subject, models.CategoryPerformance, name, props)
}

// TrackAs records an event that requires category.
func (g *Gate) TrackAs(ctx context.Context, subject id.Subject, category models.Category, name string, props map[string]any) Outcome {
	if !g.IsAllowed(ctx, subject, category) {
		g.logger.DebugContext(ctx, "tracking suppressed",
			"event", name,
			"category", string(category),
			"subject", subject.String(),
		)
		return g.record(OutcomeSuppressed, category)
	}

	event := Event{
		Name:       name,
		Category:   category,
		Properties: props,
		Timestamp:  requestcontext.Now(ctx),
	}

	if !g.Initialized() && g.IsAllowed(ctx, subject, models.CategoryPerformance) {
		// Stored consent from an earlier session or another replica.
		if err := g.Initialize(ctx); err != nil {
			g.logger.WarnContext(ctx, "analytics sink not started", "error", err)
		}
	}

	g.mu.Lock()
	if !g.initialized {
		g.enqueue(queued{subject: subject, event: event})
		g.mu.Unlock()
		return g.record(OutcomeQueued, category)
	}
	g.mu.Unlock()

	return g.record(g.forward(ctx, subject, event), category)
}

// enqueue appends under g.mu, dropping the oldest entry at capacity.
func (g *Gate) enqueue(q queued) {
	if len(g.queue) >= g.queueCap {
		dropped := g.queue[0]
		g.queue = g.queue[1:]
		g.logger.Warn("tracking queue full, dropping oldest event",
			"event", dropped.event.Name,
			"cap", g.queueCap,
		)
		if g.metrics != nil {
			g.metrics.IncrementQueueDropped()
		}
	}
	g.queue = append(g.queue, q)
	if g.metrics != nil {
		g.metrics.SetQueueDepth(len(g.queue))
	}
}

// Initialize starts the sink when it needs starting and drains the queue,
// re-checking each event against the subject's current preferences. It is
// safe to call more than once; later calls are no-ops. The queue is flushed
// without holding the gate and outlives cancellation of ctx.
func (g *Gate) Initialize(ctx context.Context) error {
	g.startMu.Lock()
	defer g.startMu.Unlock()
	if g.Initialized() {
		return nil
	}

	if starter, ok := g.sink.(Starter); ok {
		if err := starter.Start(ctx); err != nil {
			if g.metrics != nil {
				g.metrics.IncrementSinkStartFailure()
			}
			return err
		}
	}

	g.mu.Lock()
	g.initialized = true
	pending := g.queue
	g.queue = nil
	if g.metrics != nil {
		g.metrics.SetQueueDepth(0)
	}
	g.mu.Unlock()

	flushCtx := context.WithoutCancel(ctx)
	for _, q := range pending {
		if !g.IsAllowed(flushCtx, q.subject, q.event.Category) {
			g.record(OutcomeDropped, q.event.Category)
			continue
		}
		g.record(g.forward(flushCtx, q.subject, q.event), q.event.Category)
	}
	g.logger.InfoContext(ctx, "analytics sink initialized", "flushed", len(pending))
	return nil
}

// Initialized reports whether the sink is accepting events.
func (g *Gate) Initialized() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.initialized
}

// Pending returns the number of queued events.
func (g *Gate) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.queue)
}

// OnConsentChange drops queued events the subject no longer permits. It is
// registered as a consent-change listener.
func (g *Gate) OnConsentChange(ctx context.Context, e service.ChangeEvent) {
	key := e.Subject.Key()
	g.mu.Lock()
	defer g.mu.Unlock()

	kept := g.queue[:0]
	for _, q := range g.queue {
		if q.subject.Key() == key && !e.Preferences.Allows(q.event.Category) {
			g.record(OutcomeDropped, q.event.Category)
			continue
		}
		kept = append(kept, q)
	}
	g.queue = kept
	if g.metrics != nil {
		g.metrics.SetQueueDepth(len(g.queue))
	}
}

func (g *Gate) forward(ctx context.Context, subject id.Subject, event Event) Outcome {
	if g.IsAllowed(ctx, subject, models.CategoryPerformance) {
		event.ClientID = g.clientID(ctx, subject)
	}
	if err := g.sink.Push(ctx, event); err != nil {
		g.logger.WarnContext(ctx, "analytics sink rejected event",
			"event", event.Name,
			"error", err,
		)
		if g.metrics != nil {
			g.metrics.IncrementSinkFailure()
		}
		return OutcomeFailed
	}
	return OutcomeForwarded
}

// clientID returns the subject's pseudonymous analytics id, minting one on
// first use. It lives under the performance side-key so clearing that
// category forgets it.
func (g *Gate) clientID(ctx context.Context, subject id.Subject) string {
	key := kv.Key(subject.Key(), models.SideKeyAnalyticsClientID)
	raw, err := g.store.Get(ctx, key)
	if err == nil {
		return string(raw)
	}
	if !kv.IsNotFound(err) {
		g.logger.WarnContext(ctx, "failed to read analytics client id", "error", err)
		return ""
	}
	minted := uuid.NewString()
	if err := g.store.Set(ctx, key, []byte(minted), 0); err != nil {
		g.logger.WarnContext(ctx, "failed to store analytics client id", "error", err)
	}
	return minted
}

func (g *Gate) record(outcome Outcome, category models.Category) Outcome {
	if g.metrics != nil {
		g.metrics.IncrementEvent(string(outcome), string(category))
	}
	return outcome
}
