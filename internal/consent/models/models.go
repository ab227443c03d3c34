package models

import (
	"time"

	compliance "consentd/internal/compliance/models"
)

// Preferences is the full per-category consent decision for one subject.
// It is a closed record: every category is always present.
type Preferences struct {
	Essential   bool `json:"essential"`
	Performance bool `json:"performance"`
	Functional  bool `json:"functional"`
	Marketing   bool `json:"marketing"`
}

// AllGranted returns preferences with every category on.
func AllGranted() Preferences {
	return Preferences{Essential: true, Performance: true, Functional: true, Marketing: true}
}

// EssentialOnly returns preferences with only the essential category on.
func EssentialOnly() Preferences {
	return Preferences{Essential: true}
}

// DefaultsFor returns the preferences a region applies before any user action:
// everything granted where default consent is allowed, essential-only otherwise.
func DefaultsFor(rule compliance.Rule) Preferences {
	if rule.DefaultConsent {
		return AllGranted()
	}
	return EssentialOnly()
}

// Allows reports whether the category is granted. Essential always is.
func (p Preferences) Allows(c Category) bool {
	switch c {
	case CategoryEssential:
		return true
	case CategoryPerformance:
		return p.Performance
	case CategoryFunctional:
		return p.Functional
	case CategoryMarketing:
		return p.Marketing
	}
	return false
}

// With returns a copy with category c set to granted. Attempts to switch
// essential off are ignored.
func (p Preferences) With(c Category, granted bool) Preferences {
	switch c {
	case CategoryPerformance:
		p.Performance = granted
	case CategoryFunctional:
		p.Functional = granted
	case CategoryMarketing:
		p.Marketing = granted
	}
	p.Essential = true
	return p
}

// Normalize re-asserts the essential invariant.
func (p Preferences) Normalize() Preferences {
	p.Essential = true
	return p
}

// Granted lists granted categories in display order.
func (p Preferences) Granted() []Category {
	out := make([]Category, 0, len(Categories))
	for _, c := range Categories {
		if p.Allows(c) {
			out = append(out, c)
		}
	}
	return out
}

// OptedOutOfSale infers the CCPA "do not sell or share" status. The rule
// (marketing and performance both off) is a business heuristic pending
// confirmation from compliance.
func (p Preferences) OptedOutOfSale() bool {
	return !p.Marketing && !p.Performance
}

// State is the stored consent document for one subject.
type State struct {
	Preferences Preferences       `json:"preferences"`
	Timestamp   time.Time         `json:"timestamp"`
	Version     string            `json:"version"`
	Action      Action            `json:"action"`
	Region      compliance.Region `json:"region"`
}

// IsValid applies the validity rule: consent must be recorded under the
// current version and be no older than the region's expiry window.
func (s State) IsValid(now time.Time, rule compliance.Rule, version string) bool {
	if s.Timestamp.IsZero() || s.Version != version {
		return false
	}
	return now.Sub(s.Timestamp) <= rule.ExpiryWindow()
}

// ExpiresAt returns when the state stops being valid under rule.
func (s State) ExpiresAt(rule compliance.Rule) time.Time {
	return s.Timestamp.Add(rule.ExpiryWindow())
}

// Record is one audit entry, appended on every successful preference write.
// Exactly one of UserID and VisitorID is set.
type Record struct {
	Version     string            `json:"version"`
	Timestamp   time.Time         `json:"timestamp"`
	Action      Action            `json:"action"`
	Region      compliance.Region `json:"region"`
	UserID      string            `json:"user_id,omitempty"`
	VisitorID   string            `json:"visitor_id,omitempty"`
	Preferences Preferences       `json:"preferences"`
	UserAgent   string            `json:"user_agent,omitempty"`
}

// Export is the data-portability bundle for one subject.
type Export struct {
	Preferences *Preferences      `json:"preferences"`
	Timestamp   *time.Time        `json:"timestamp"`
	Version     string            `json:"version"`
	Region      compliance.Region `json:"region,omitempty"`
	History     []Record          `json:"history"`
}
