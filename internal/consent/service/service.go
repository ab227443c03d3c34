package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	compliance "consentd/internal/compliance/models"
	"consentd/internal/consent/metrics"
	"consentd/internal/consent/models"
	id "consentd/pkg/domain"
	"consentd/pkg/requestcontext"
)

// Store defines the persistence the engine drives.
// Error Contract:
// - reads return nil or regional defaults when state is absent or unreadable
// - writes return false when nothing was persisted
type Store interface {
	State(ctx context.Context, subject id.Subject) *models.State
	SetPreferences(ctx context.Context, subject id.Subject, prefs models.Preferences, action models.Action, region compliance.Region) bool
	HasValidConsent(ctx context.Context, subject id.Subject, region compliance.Region) bool
	GetPreferencesForRegion(ctx context.Context, subject id.Subject, region compliance.Region) models.Preferences
	ExportAll(ctx context.Context, subject id.Subject) models.Export
	History(ctx context.Context, subject id.Subject) []models.Record
	ClearCategory(ctx context.Context, subject id.Subject, category models.Category) bool
	ClearAllNonEssential(ctx context.Context, subject id.Subject) bool
	ClearPreferences(ctx context.Context, subject id.Subject) bool
	Version() string
}

// AnalyticsInitializer starts the analytics pipeline once performance
// tracking is permitted. Repeated calls must be harmless.
type AnalyticsInitializer interface {
	Initialize(ctx context.Context) error
}

// AnalyticsInitializerFunc adapts a function to AnalyticsInitializer.
type AnalyticsInitializerFunc func(ctx context.Context) error

func (f AnalyticsInitializerFunc) Initialize(ctx context.Context) error {
	return f(ctx)
}

// ChangeEvent is delivered to listeners after a successful mutation.
type ChangeEvent struct {
	Subject     id.Subject
	Preferences models.Preferences
	Action      models.Action
	Region      compliance.Region
}

// Listener observes consent changes. It runs synchronously on the mutating
// request; a panic is contained to the listener that raised it.
type Listener func(ctx context.Context, event ChangeEvent)

// ListenerID identifies a registration for RemoveListener.
type ListenerID uint64

type listenerEntry struct {
	id ListenerID
	fn Listener
}

type Option func(*Service)

// Service is the consent engine: named high-level actions over the store
// plus change notification.
type Service struct {
	store     Store
	logger    *slog.Logger
	metrics   *metrics.Metrics
	analytics AnalyticsInitializer

	mu        sync.RWMutex
	listeners []listenerEntry
	nextID    ListenerID
}

func NewService(store Store, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:  store,
		logger: logger,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

// WithMetrics sets the metrics instance for the service
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithAnalytics sets what to start when performance tracking is granted.
func WithAnalytics(a AnalyticsInitializer) Option {
	return func(s *Service) {
		s.analytics = a
	}
}

// AcceptAll grants every category.
func (s *Service) AcceptAll(ctx context.Context, subject id.Subject, region compliance.Region) (models.Preferences, bool) {
	prefs := models.AllGranted()
	if !s.store.SetPreferences(ctx, subject, prefs, models.ActionAcceptAll, region) {
		return prefs, false
	}
	s.initializeAnalytics(ctx, prefs)
	s.notify(ctx, ChangeEvent{Subject: subject, Preferences: prefs, Action: models.ActionAcceptAll, Region: region})
	return prefs, true
}

// RejectAll keeps only essential and forgets data held for other categories.
func (s *Service) RejectAll(ctx context.Context, subject id.Subject, region compliance.Region) (models.Preferences, bool) {
	return s.revokeAll(ctx, subject, region, models.ActionRejectAll)
}

// Withdraw revokes a previous decision. The subject is asked again on the
// next visit; in the meantime only essential is allowed.
func (s *Service) Withdraw(ctx context.Context, subject id.Subject, region compliance.Region) (models.Preferences, bool) {
	return s.revokeAll(ctx, subject, region, models.ActionWithdraw)
}

func (s *Service) revokeAll(ctx context.Context, subject id.Subject, region compliance.Region, action models.Action) (models.Preferences, bool) {
	prefs := models.EssentialOnly()
	if !s.store.SetPreferences(ctx, subject, prefs, action, region) {
		return prefs, false
	}
	s.store.ClearAllNonEssential(ctx, subject)
	s.notify(ctx, ChangeEvent{Subject: subject, Preferences: prefs, Action: action, Region: region})
	return prefs, true
}

// SavePreferences records a custom selection. Categories the caller left out
// take the region's default; data for denied categories is cleared.
func (s *Service) SavePreferences(ctx context.Context, subject id.Subject, region compliance.Region, choices models.Choices) (models.Preferences, bool) {
	prefs := choices.Resolve(models.DefaultsFor(compliance.RulesFor(region)))
	if !s.store.SetPreferences(ctx, subject, prefs, models.ActionSaveCustom, region) {
		return prefs, false
	}
	for _, c := range models.Categories {
		if !prefs.Allows(c) {
			s.store.ClearCategory(ctx, subject, c)
		}
	}
	s.initializeAnalytics(ctx, prefs)
	s.notify(ctx, ChangeEvent{Subject: subject, Preferences: prefs, Action: models.ActionSaveCustom, Region: region})
	return prefs, true
}

// RevokeCategory switches a single category off and erases its data.
// Essential cannot be revoked.
func (s *Service) RevokeCategory(ctx context.Context, subject id.Subject, region compliance.Region, category models.Category) (models.Preferences, bool) {
	current := s.store.GetPreferencesForRegion(ctx, subject, region)
	if category.IsEssential() || !category.IsValid() {
		s.store.ClearCategory(ctx, subject, category)
		return current, false
	}
	choices := models.Choices{}
	for _, c := range models.Categories {
		choices[c] = current.Allows(c)
	}
	choices[category] = false
	return s.SavePreferences(ctx, subject, region, choices)
}

// Reset drops stored consent and side data so the subject starts over under
// the region's defaults.
func (s *Service) Reset(ctx context.Context, subject id.Subject, region compliance.Region) bool {
	if !s.store.ClearPreferences(ctx, subject) {
		return false
	}
	s.store.ClearAllNonEssential(ctx, subject)
	s.logger.InfoContext(ctx, "consent reset",
		"subject", subject.String(),
		"region", region,
	)
	s.notify(ctx, ChangeEvent{Subject: subject, Preferences: models.EssentialOnly(), Action: models.ActionReset, Region: region})
	return true
}

// Transfer carries a visitor's valid decision over to a user who signs in
// without one of their own. It reports whether the user ends up with valid
// consent.
func (s *Service) Transfer(ctx context.Context, from, to id.Subject) bool {
	if from.IsZero() || to.IsZero() || from.Key() == to.Key() {
		return false
	}
	if s.decided(ctx, s.store.State(ctx, to)) {
		return true
	}
	state := s.store.State(ctx, from)
	if !s.decided(ctx, state) {
		return false
	}
	if !s.store.SetPreferences(ctx, to, state.Preferences, models.ActionIdentityUpgrade, state.Region) {
		return false
	}
	s.logger.InfoContext(ctx, "consent transferred on identity upgrade",
		"from", from.String(),
		"to", to.String(),
	)
	s.notify(ctx, ChangeEvent{Subject: to, Preferences: state.Preferences, Action: models.ActionIdentityUpgrade, Region: state.Region})
	return true
}

// decided reports whether state is a live decision under the region it was
// recorded in. A withdrawal is not one.
func (s *Service) decided(ctx context.Context, state *models.State) bool {
	if state == nil || state.Action == models.ActionWithdraw {
		return false
	}
	return state.IsValid(requestcontext.Now(ctx), compliance.RulesFor(state.Region), s.store.Version())
}

// Status is the consent view served to the banner.
type Status struct {
	Region          compliance.Region  `json:"region"`
	Rule            compliance.Rule    `json:"rule"`
	Preferences     models.Preferences `json:"preferences"`
	HasValidConsent bool               `json:"has_valid_consent"`
	BannerRequired  bool               `json:"banner_required"`
	OptedOutOfSale  bool               `json:"opted_out_of_sale"`
	Version         string             `json:"version"`
	RecordedAt      *time.Time         `json:"recorded_at,omitempty"`
	ExpiresAt       *time.Time         `json:"expires_at,omitempty"`
}

// Status resolves what the banner should show for subject in region.
func (s *Service) Status(ctx context.Context, subject id.Subject, region compliance.Region) Status {
	rule := compliance.RulesFor(region)
	prefs := s.store.GetPreferencesForRegion(ctx, subject, region)
	valid := s.store.HasValidConsent(ctx, subject, region)
	status := Status{
		Region:          rule.Region,
		Rule:            rule,
		Preferences:     prefs,
		HasValidConsent: valid,
		BannerRequired:  !valid,
		Version:         s.store.Version(),
	}
	if rule.RequiresOptOut {
		status.OptedOutOfSale = prefs.OptedOutOfSale()
	}
	if valid {
		if state := s.store.State(ctx, subject); state != nil {
			recorded := state.Timestamp
			expires := state.ExpiresAt(rule)
			status.RecordedAt = &recorded
			status.ExpiresAt = &expires
		}
	}
	return status
}

// Current returns the subject's decision if it is still in force under the
// region it was recorded in, or nil.
func (s *Service) Current(ctx context.Context, subject id.Subject) *models.Preferences {
	state := s.store.State(ctx, subject)
	if state == nil {
		return nil
	}
	if !state.IsValid(requestcontext.Now(ctx), compliance.RulesFor(state.Region), s.store.Version()) {
		return nil
	}
	prefs := state.Preferences
	return &prefs
}

// Export returns the data-portability bundle.
func (s *Service) Export(ctx context.Context, subject id.Subject) models.Export {
	return s.store.ExportAll(ctx, subject)
}

// History returns the audit ring, oldest first.
func (s *Service) History(ctx context.Context, subject id.Subject) []models.Record {
	return s.store.History(ctx, subject)
}

// AddListener registers fn and returns a handle for RemoveListener.
// Listeners run in registration order.
func (s *Service) AddListener(fn Listener) ListenerID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.listeners = append(s.listeners, listenerEntry{id: s.nextID, fn: fn})
	return s.nextID
}

// RemoveListener unregisters a listener. Unknown ids are ignored.
func (s *Service) RemoveListener(lid ListenerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, entry := range s.listeners {
		if entry.id == lid {
			s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
			return
		}
	}
}

func (s *Service) notify(ctx context.Context, event ChangeEvent) {
	s.mu.RLock()
	snapshot := make([]listenerEntry, len(s.listeners))
	copy(snapshot, s.listeners)
	s.mu.RUnlock()

	for _, entry := range snapshot {
		s.dispatch(ctx, entry, event)
	}
}

func (s *Service) dispatch(ctx context.Context, entry listenerEntry, event ChangeEvent) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "consent listener failed",
				"listener_id", uint64(entry.id),
				"action", event.Action,
				"panic", r,
			)
			if s.metrics != nil {
				s.metrics.IncrementListenerFailures()
			}
		}
	}()
	entry.fn(ctx, event)
}

func (s *Service) initializeAnalytics(ctx context.Context, prefs models.Preferences) {
	if s.analytics == nil || !prefs.Performance {
		return
	}
	if err := s.analytics.Initialize(ctx); err != nil {
		s.logger.WarnContext(ctx, "analytics initialization failed", "error", err)
	}
}
