// Package store persists consent decisions per subject on top of the kv layer.
// Read and write failures never surface as errors: they are logged and
// reported as "absent" (reads) or false (writes), and callers degrade to
// regional defaults or ask the user to retry.
package store

import (
	"context"
	"log/slog"
	"time"

	compliance "consentd/internal/compliance/models"
	"consentd/internal/consent/metrics"
	"consentd/internal/consent/models"
	"consentd/internal/platform/kv"
	id "consentd/pkg/domain"
	platformsync "consentd/pkg/platform/sync"
	"consentd/pkg/requestcontext"
)

const (
	// DefaultVersion is the consent policy version records are written under.
	DefaultVersion = "1.0"

	defaultHistoryLimit = 10
	defaultRetention    = 2 * 365 * 24 * time.Hour

	stateKey   = "consent"
	historyKey = "consent_history"
)

type Option func(*Store)

// Store reads and writes consent state, the audit ring and category side values.
type Store struct {
	kv           kv.Store
	logger       *slog.Logger
	metrics      *metrics.Metrics
	version      string
	historyLimit int
	retention    time.Duration
	locks        *platformsync.KeyedMutex
}

func New(backend kv.Store, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		kv:           backend,
		logger:       logger,
		version:      DefaultVersion,
		historyLimit: defaultHistoryLimit,
		retention:    defaultRetention,
		locks:        platformsync.NewKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// WithVersion sets the policy version. Bumping it invalidates every stored decision.
func WithVersion(version string) Option {
	return func(s *Store) {
		if version != "" {
			s.version = version
		}
	}
}

// WithHistoryLimit caps the audit ring. Values below 1 are ignored.
func WithHistoryLimit(limit int) Option {
	return func(s *Store) {
		if limit > 0 {
			s.historyLimit = limit
		}
	}
}

// WithRetention sets how long the backend keeps consent documents before
// evicting them. Validity is decided separately by the region's expiry window.
func WithRetention(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.retention = ttl
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// Version returns the policy version new decisions are recorded under.
func (s *Store) Version() string {
	return s.version
}

// State returns the raw stored document, or nil when absent or unreadable.
func (s *Store) State(ctx context.Context, subject id.Subject) *models.State {
	defer s.observe("get_state", time.Now())
	if subject.IsZero() {
		return nil
	}
	var state models.State
	if err := kv.GetJSON(ctx, s.kv, kv.Key(subject.Key(), stateKey), &state); err != nil {
		if !kv.IsNotFound(err) {
			s.logger.WarnContext(ctx, "consent state unreadable, treating as absent",
				"subject", subject.String(),
				"error", err,
			)
		}
		return nil
	}
	state.Preferences = state.Preferences.Normalize()
	return &state
}

// GetPreferences returns the stored preferences regardless of validity, or nil.
func (s *Store) GetPreferences(ctx context.Context, subject id.Subject) *models.Preferences {
	state := s.State(ctx, subject)
	if state == nil {
		return nil
	}
	prefs := state.Preferences
	return &prefs
}

// SetPreferences records a full decision. Essential is forced on, the
// timestamp comes from the request clock, and an audit record is appended.
// It reports false when the decision could not be persisted.
func (s *Store) SetPreferences(ctx context.Context, subject id.Subject, prefs models.Preferences, action models.Action, region compliance.Region) bool {
	defer s.observe("set_preferences", time.Now())
	if subject.IsZero() {
		s.logger.ErrorContext(ctx, "refusing to save consent without a subject", "action", action)
		s.incrementNotSaved(action)
		return false
	}

	now := requestcontext.Now(ctx)
	state := models.State{
		Preferences: prefs.Normalize(),
		Timestamp:   now,
		Version:     s.version,
		Action:      action,
		Region:      region,
	}

	key := subject.Key()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	if err := kv.SetJSON(ctx, s.kv, kv.Key(key, stateKey), state, s.retention); err != nil {
		s.logger.ErrorContext(ctx, "failed to save consent preferences",
			"subject", subject.String(),
			"action", action,
			"error", err,
		)
		s.incrementNotSaved(action)
		return false
	}

	record := models.Record{
		Version:     s.version,
		Timestamp:   now,
		Action:      action,
		Region:      region,
		Preferences: state.Preferences,
		UserAgent:   requestcontext.UserAgent(ctx),
	}
	if subject.IsUser() {
		record.UserID = subject.User.String()
	} else {
		record.VisitorID = subject.Visitor.String()
	}
	s.appendHistory(ctx, subject, record)

	if s.metrics != nil {
		s.metrics.IncrementPreferencesSaved(string(action))
		for _, c := range state.Preferences.Granted() {
			s.metrics.IncrementCategoryGranted(string(c))
		}
	}
	s.logger.InfoContext(ctx, "consent preferences saved",
		"subject", subject.String(),
		"action", action,
		"region", region,
		"version", s.version,
	)
	return true
}

// appendHistory must be called with the subject lock held. A failure here
// does not undo the saved decision.
func (s *Store) appendHistory(ctx context.Context, subject id.Subject, record models.Record) {
	key := kv.Key(subject.Key(), historyKey)
	history := s.readHistory(ctx, subject)
	history = append(history, record)
	if len(history) > s.historyLimit {
		history = history[len(history)-s.historyLimit:]
	}
	if err := kv.SetJSON(ctx, s.kv, key, history, s.retention); err != nil {
		s.logger.WarnContext(ctx, "failed to append consent history",
			"subject", subject.String(),
			"error", err,
		)
	}
}

func (s *Store) readHistory(ctx context.Context, subject id.Subject) []models.Record {
	var history []models.Record
	if err := kv.GetJSON(ctx, s.kv, kv.Key(subject.Key(), historyKey), &history); err != nil {
		if !kv.IsNotFound(err) {
			s.logger.WarnContext(ctx, "consent history unreadable, starting fresh",
				"subject", subject.String(),
				"error", err,
			)
		}
		return nil
	}
	return history
}

// HasValidConsent reports whether the subject holds a decision recorded under
// the current version and still inside the region's expiry window. A
// withdrawal is recorded but does not count as consent.
func (s *Store) HasValidConsent(ctx context.Context, subject id.Subject, region compliance.Region) bool {
	state := s.State(ctx, subject)
	valid := state != nil &&
		state.Action != models.ActionWithdraw &&
		state.IsValid(requestcontext.Now(ctx), compliance.RulesFor(region), s.version)
	if s.metrics != nil {
		s.metrics.IncrementValidityCheck(valid)
	}
	return valid
}

// GetPreferencesForRegion returns the stored preferences when valid, and the
// region's defaults otherwise.
func (s *Store) GetPreferencesForRegion(ctx context.Context, subject id.Subject, region compliance.Region) models.Preferences {
	rule := compliance.RulesFor(region)
	state := s.State(ctx, subject)
	if state != nil && state.IsValid(requestcontext.Now(ctx), rule, s.version) {
		return state.Preferences
	}
	return models.DefaultsFor(rule)
}

// ExportAll bundles everything stored about the subject's consent.
func (s *Store) ExportAll(ctx context.Context, subject id.Subject) models.Export {
	export := models.Export{
		Version: s.version,
		History: s.History(ctx, subject),
	}
	if state := s.State(ctx, subject); state != nil {
		prefs := state.Preferences
		ts := state.Timestamp
		export.Preferences = &prefs
		export.Timestamp = &ts
		export.Version = state.Version
		export.Region = state.Region
	}
	return export
}

// History returns the audit ring, oldest first. Never nil.
func (s *Store) History(ctx context.Context, subject id.Subject) []models.Record {
	if subject.IsZero() {
		return []models.Record{}
	}
	history := s.readHistory(ctx, subject)
	if history == nil {
		return []models.Record{}
	}
	return history
}

// ClearCategory deletes the side values belonging to category. Essential
// values are never cleared.
func (s *Store) ClearCategory(ctx context.Context, subject id.Subject, category models.Category) bool {
	defer s.observe("clear_category", time.Now())
	if category.IsEssential() {
		s.logger.WarnContext(ctx, "refusing to clear essential category",
			"subject", subject.String(),
		)
		if s.metrics != nil {
			s.metrics.IncrementEssentialClearRefused()
		}
		return false
	}
	if !category.IsValid() || subject.IsZero() {
		return false
	}
	return s.deleteSideKeys(ctx, subject, category)
}

// ClearAllNonEssential deletes side values for every non-essential category.
func (s *Store) ClearAllNonEssential(ctx context.Context, subject id.Subject) bool {
	defer s.observe("clear_non_essential", time.Now())
	if subject.IsZero() {
		return false
	}
	var categories []models.Category
	for _, c := range models.Categories {
		if !c.IsEssential() {
			categories = append(categories, c)
		}
	}
	return s.deleteSideKeys(ctx, subject, categories...)
}

func (s *Store) deleteSideKeys(ctx context.Context, subject id.Subject, categories ...models.Category) bool {
	var keys []string
	for _, c := range categories {
		for _, name := range models.SideKeys[c] {
			keys = append(keys, kv.Key(subject.Key(), name))
		}
	}
	if len(keys) == 0 {
		return true
	}
	if err := s.kv.Delete(ctx, keys...); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear category data",
			"subject", subject.String(),
			"categories", categories,
			"error", err,
		)
		return false
	}
	s.logger.InfoContext(ctx, "category data cleared",
		"subject", subject.String(),
		"categories", categories,
	)
	return true
}

// ClearPreferences drops the stored decision. The audit ring is kept.
func (s *Store) ClearPreferences(ctx context.Context, subject id.Subject) bool {
	defer s.observe("clear_preferences", time.Now())
	if subject.IsZero() {
		return false
	}
	key := subject.Key()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)
	if err := s.kv.Delete(ctx, kv.Key(key, stateKey)); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear consent preferences",
			"subject", subject.String(),
			"error", err,
		)
		return false
	}
	return true
}

func (s *Store) incrementNotSaved(action models.Action) {
	if s.metrics != nil {
		s.metrics.IncrementPreferencesNotSaved(string(action))
	}
}

func (s *Store) observe(operation string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveStoreOperationLatency(operation, time.Since(start).Seconds())
	}
}
