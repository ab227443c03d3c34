package models

import (
	"fmt"
	"strings"

	"consentd/pkg/platform/sentinel"
)

// Category groups cookies and trackers by purpose. Essential is always granted.
type Category string

const (
	CategoryEssential   Category = "essential"
	CategoryPerformance Category = "performance"
	CategoryFunctional  Category = "functional"
	CategoryMarketing   Category = "marketing"
)

// Categories is the single source of truth for all consent categories, in display order.
var Categories = []Category{
	CategoryEssential,
	CategoryPerformance,
	CategoryFunctional,
	CategoryMarketing,
}

// IsValid checks if the category is one of the supported enum values.
func (c Category) IsValid() bool {
	switch c {
	case CategoryEssential, CategoryPerformance, CategoryFunctional, CategoryMarketing:
		return true
	}
	return false
}

// IsEssential reports whether the category is the non-togglable one.
func (c Category) IsEssential() bool {
	return c == CategoryEssential
}

// ParseCategory accepts a category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("unknown category %q: %w", s, sentinel.ErrInvalidInput)
	}
	return c, nil
}

// Action names the user decision that produced a consent record.
type Action string

const (
	ActionAcceptAll       Action = "accept_all"
	ActionRejectAll       Action = "reject_all"
	ActionSaveCustom      Action = "save_custom"
	ActionWithdraw        Action = "withdraw"
	ActionIdentityUpgrade Action = "identity_upgrade"

	// ActionReset is announced to listeners when stored consent is dropped
	// (region override switch, erasure). It is never persisted.
	ActionReset Action = "reset"
)

// IsValid checks if the action is one of the supported enum values.
func (a Action) IsValid() bool {
	switch a {
	case ActionAcceptAll, ActionRejectAll, ActionSaveCustom, ActionWithdraw, ActionIdentityUpgrade, ActionReset:
		return true
	}
	return false
}

// SideKeys lists, per category, the side-stored values (analytics ids,
// attribution, UI preferences) that must be forgotten when the category is
// cleared. Keys are relative to the subject namespace.
var SideKeys = map[Category][]string{
	CategoryPerformance: {SideKeyAnalyticsClientID, "analytics_session"},
	CategoryFunctional:  {"functional_locale", "functional_dashboard_layout"},
	CategoryMarketing:   {"marketing_click_id", "marketing_campaign"},
}

// SideKeyAnalyticsClientID holds the pseudonymous id attached to forwarded
// analytics events.
const SideKeyAnalyticsClientID = "analytics_client_id"
