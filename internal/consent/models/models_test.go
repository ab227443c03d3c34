package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	compliance "consentd/internal/compliance/models"
	"consentd/pkg/platform/sentinel"
)

func TestDefaultsFor(t *testing.T) {
	assert.Equal(t, EssentialOnly(), DefaultsFor(compliance.RulesFor(compliance.RegionEU)))
	assert.Equal(t, AllGranted(), DefaultsFor(compliance.RulesFor(compliance.RegionUSCalifornia)))
	assert.Equal(t, AllGranted(), DefaultsFor(compliance.RulesFor(compliance.RegionOther)))
}

func TestPreferences_EssentialCannotBeSwitchedOff(t *testing.T) {
	p := Preferences{}.With(CategoryEssential, false)
	assert.True(t, p.Essential)
	assert.True(t, Preferences{}.Allows(CategoryEssential))
	assert.True(t, Preferences{}.Normalize().Essential)
}

func TestPreferences_WithReturnsCopy(t *testing.T) {
	base := EssentialOnly()
	granted := base.With(CategoryMarketing, true)

	assert.False(t, base.Marketing)
	assert.True(t, granted.Marketing)
	assert.True(t, granted.Allows(CategoryMarketing))
	assert.False(t, granted.Allows(Category("unknown")))
}

func TestPreferences_Granted(t *testing.T) {
	p := EssentialOnly().With(CategoryFunctional, true)
	assert.Equal(t, []Category{CategoryEssential, CategoryFunctional}, p.Granted())
}

func TestPreferences_OptedOutOfSale(t *testing.T) {
	assert.True(t, EssentialOnly().OptedOutOfSale())
	assert.True(t, EssentialOnly().With(CategoryFunctional, true).OptedOutOfSale())
	assert.False(t, EssentialOnly().With(CategoryMarketing, true).OptedOutOfSale())
	assert.False(t, EssentialOnly().With(CategoryPerformance, true).OptedOutOfSale())
}

func TestState_IsValid(t *testing.T) {
	rule := compliance.RulesFor(compliance.RegionEU)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		state State
		want  bool
	}{
		{
			name:  "fresh and current version",
			state: State{Timestamp: now.Add(-24 * time.Hour), Version: "1.0"},
			want:  true,
		},
		{
			name:  "exactly at the expiry boundary",
			state: State{Timestamp: now.Add(-rule.ExpiryWindow()), Version: "1.0"},
			want:  true,
		},
		{
			name:  "one day past expiry",
			state: State{Timestamp: now.Add(-rule.ExpiryWindow() - 24*time.Hour), Version: "1.0"},
			want:  false,
		},
		{
			name:  "older version",
			state: State{Timestamp: now, Version: "0.9"},
			want:  false,
		},
		{
			name:  "missing timestamp",
			state: State{Version: "1.0"},
			want:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.IsValid(now, rule, "1.0"))
		})
	}
}

func TestParseChoices(t *testing.T) {
	choices, issues := ParseChoices(map[string]any{
		"performance": true,
		"marketing":   "yes",
		"tracking":    true,
		"essential":   false,
	})

	assert.Equal(t, Choices{CategoryPerformance: true}, choices)
	assert.ElementsMatch(t, []string{
		`unknown category "tracking" dropped`,
		`non-boolean value for "marketing" dropped`,
		"essential cannot be disabled",
	}, issues)
}

func TestChoices_ResolveBackfillsFromDefaults(t *testing.T) {
	got := Choices{CategoryMarketing: false}.Resolve(AllGranted())
	assert.Equal(t, Preferences{Essential: true, Performance: true, Functional: true}, got)

	got = Choices{CategoryPerformance: true}.Resolve(EssentialOnly())
	assert.Equal(t, Preferences{Essential: true, Performance: true}, got)
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("Marketing")
	require.NoError(t, err)
	assert.Equal(t, CategoryMarketing, c)

	_, err = ParseCategory("ads")
	assert.ErrorIs(t, err, sentinel.ErrInvalidInput)
}
