package models

import "time"

// Rule is the regulation metadata the consent engine applies for a region.
type Rule struct {
	Region                     Region   `json:"region"`
	Regulation                 string   `json:"regulation"`
	RequiresExplicitConsent    bool     `json:"requires_explicit_consent"`
	RequiresOptOut             bool     `json:"requires_opt_out"`
	RequiresGranularControl    bool     `json:"requires_granular_control"`
	RequiresConsentWithdrawal  bool     `json:"requires_consent_withdrawal"`
	RequiresDataPortability    bool     `json:"requires_data_portability"`
	RequiresRightToBeForgotten bool     `json:"requires_right_to_be_forgotten"`
	ConsentMustBeFreelyGiven   bool     `json:"consent_must_be_freely_given"`
	DefaultConsent             bool     `json:"default_consent"`
	ShowRejectAll              bool     `json:"show_reject_all"`
	ConsentExpiryDays          int      `json:"consent_expiry_days"`
	PrivacyPolicyRequired      bool     `json:"privacy_policy_required"`
	RequiredDisclosures        []string `json:"required_disclosures"`
}

// ExpiryWindow is how long a recorded consent stays valid.
func (r Rule) ExpiryWindow() time.Duration {
	return time.Duration(r.ConsentExpiryDays) * 24 * time.Hour
}

// rules is loaded once and never mutated; RulesFor hands out copies.
var rules = map[Region]Rule{
	RegionEU: {
		Regulation:                 "GDPR",
		RequiresExplicitConsent:    true,
		RequiresGranularControl:    true,
		RequiresConsentWithdrawal:  true,
		RequiresDataPortability:    true,
		RequiresRightToBeForgotten: true,
		ConsentMustBeFreelyGiven:   true,
		DefaultConsent:             false,
		ShowRejectAll:              true,
		ConsentExpiryDays:          365,
		PrivacyPolicyRequired:      true,
		RequiredDisclosures: []string{
			"purposes_of_processing",
			"data_controller_identity",
			"retention_period",
			"right_to_withdraw",
			"right_to_lodge_complaint",
		},
	},
	RegionUK: {
		Regulation:                 "UK GDPR / PECR",
		RequiresExplicitConsent:    true,
		RequiresGranularControl:    true,
		RequiresConsentWithdrawal:  true,
		RequiresDataPortability:    true,
		RequiresRightToBeForgotten: true,
		ConsentMustBeFreelyGiven:   true,
		DefaultConsent:             false,
		ShowRejectAll:              true,
		ConsentExpiryDays:          365,
		PrivacyPolicyRequired:      true,
		RequiredDisclosures: []string{
			"purposes_of_processing",
			"data_controller_identity",
			"retention_period",
			"right_to_withdraw",
		},
	},
	RegionUSCalifornia: {
		Regulation:                 "CCPA / CPRA",
		RequiresOptOut:             true,
		RequiresGranularControl:    true,
		RequiresConsentWithdrawal:  true,
		RequiresDataPortability:    true,
		RequiresRightToBeForgotten: true,
		DefaultConsent:             true,
		ShowRejectAll:              true,
		ConsentExpiryDays:          365,
		PrivacyPolicyRequired:      true,
		RequiredDisclosures: []string{
			"categories_collected",
			"do_not_sell_or_share",
			"right_to_know",
			"right_to_delete",
		},
	},
	RegionCanada: {
		Regulation:                "PIPEDA",
		RequiresExplicitConsent:   true,
		RequiresGranularControl:   true,
		RequiresConsentWithdrawal: true,
		ConsentMustBeFreelyGiven:  true,
		DefaultConsent:            false,
		ShowRejectAll:             true,
		ConsentExpiryDays:         365,
		PrivacyPolicyRequired:     true,
		RequiredDisclosures: []string{
			"purposes_of_processing",
			"right_to_withdraw",
		},
	},
	RegionUSOther: {
		Regulation:                "US state privacy laws",
		RequiresOptOut:            true,
		RequiresConsentWithdrawal: true,
		DefaultConsent:            true,
		ShowRejectAll:             false,
		ConsentExpiryDays:         365,
		PrivacyPolicyRequired:     true,
		RequiredDisclosures: []string{
			"categories_collected",
		},
	},
	RegionOther: {
		Regulation:                "none",
		RequiresConsentWithdrawal: true,
		DefaultConsent:            true,
		ShowRejectAll:             true,
		ConsentExpiryDays:         365,
		PrivacyPolicyRequired:     true,
	},
}

// RulesFor returns the compliance rule for region, falling back to the
// RegionOther entry for anything unrecognised.
func RulesFor(region Region) Rule {
	rule, ok := rules[region]
	if !ok {
		region = RegionOther
		rule = rules[RegionOther]
	}
	rule.Region = region
	rule.RequiredDisclosures = append([]string(nil), rule.RequiredDisclosures...)
	return rule
}
