package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"consentd/pkg/platform/sentinel"
)

func TestRulesFor_EveryRegionHasARule(t *testing.T) {
	for _, region := range Regions {
		rule := RulesFor(region)
		assert.Equal(t, region, rule.Region)
		assert.Positive(t, rule.ConsentExpiryDays, region)
		assert.NotEmpty(t, rule.Regulation, region)
	}
}

func TestRulesFor_UnknownFallsBackToOther(t *testing.T) {
	rule := RulesFor(Region("atlantis"))
	assert.Equal(t, RegionOther, rule.Region)
	assert.Equal(t, RulesFor(RegionOther), rule)
}

func TestRulesFor_DefaultConsentByJurisdiction(t *testing.T) {
	assert.False(t, RulesFor(RegionEU).DefaultConsent, "GDPR requires opt-in")
	assert.False(t, RulesFor(RegionUK).DefaultConsent)
	assert.False(t, RulesFor(RegionCanada).DefaultConsent)
	assert.True(t, RulesFor(RegionUSCalifornia).DefaultConsent, "CCPA is opt-out")
	assert.True(t, RulesFor(RegionUSOther).DefaultConsent)
}

func TestRulesFor_ReturnsCopies(t *testing.T) {
	rule := RulesFor(RegionEU)
	require.NotEmpty(t, rule.RequiredDisclosures)
	rule.RequiredDisclosures[0] = "tampered"
	rule.DefaultConsent = true

	fresh := RulesFor(RegionEU)
	assert.Equal(t, "purposes_of_processing", fresh.RequiredDisclosures[0])
	assert.False(t, fresh.DefaultConsent)
}

func TestRule_ExpiryWindow(t *testing.T) {
	assert.Equal(t, 365*24*time.Hour, RulesFor(RegionEU).ExpiryWindow())
}

func TestParseRegion(t *testing.T) {
	r, err := ParseRegion(" US_CA ")
	require.NoError(t, err)
	assert.Equal(t, RegionUSCalifornia, r)

	_, err = ParseRegion("xx")
	assert.ErrorIs(t, err, sentinel.ErrInvalidInput)
}
