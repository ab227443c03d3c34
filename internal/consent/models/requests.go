package models

import (
	"fmt"
	"sort"

	"consentd/pkg/platform/validation"
)

// Choices is a partial, user-supplied preference selection. Categories that
// are absent are filled from regional defaults when resolved.
type Choices map[Category]bool

// Resolve produces complete preferences: chosen values win, missing
// categories take the regional default, essential is forced on.
func (c Choices) Resolve(defaults Preferences) Preferences {
	out := defaults
	for category, granted := range c {
		out = out.With(category, granted)
	}
	return out.Normalize()
}

// ParseChoices sanitizes loosely-typed input (decoded JSON) into Choices.
// Unknown categories and non-boolean values are dropped; each drop is
// reported as a diagnostic. An attempt to switch essential off is reported
// and ignored.
func ParseChoices(raw map[string]any) (Choices, []string) {
	choices := make(Choices, len(raw))
	var issues []string

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		category, err := ParseCategory(key)
		if err != nil {
			issues = append(issues, fmt.Sprintf("unknown category %q dropped", key))
			continue
		}
		granted, ok := raw[key].(bool)
		if !ok {
			issues = append(issues, fmt.Sprintf("non-boolean value for %q dropped", key))
			continue
		}
		if category.IsEssential() {
			if !granted {
				issues = append(issues, "essential cannot be disabled")
			}
			continue
		}
		choices[category] = granted
	}
	return choices, issues
}

// SavePreferencesRequest is the body of PUT /consent/preferences.
type SavePreferencesRequest struct {
	Preferences map[string]any `json:"preferences"`
}

// Validate bounds the raw input; content problems are reported by ParseChoices.
func (r *SavePreferencesRequest) Validate() error {
	return validation.CheckKeys("preferences", r.Preferences, validation.MaxPreferenceEntries, validation.MaxPropertyKeyLength)
}
