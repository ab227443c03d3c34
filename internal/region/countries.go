package region

import (
	"strings"

	compliance "consentd/internal/compliance/models"
)

// gdprCountries holds the EU member states plus the EEA countries that apply
// GDPR (Iceland, Liechtenstein, Norway).
var gdprCountries = map[string]struct{}{
	"AT": {}, "BE": {}, "BG": {}, "HR": {}, "CY": {}, "CZ": {}, "DK": {},
	"EE": {}, "FI": {}, "FR": {}, "DE": {}, "GR": {}, "HU": {}, "IE": {},
	"IT": {}, "LV": {}, "LT": {}, "LU": {}, "MT": {}, "NL": {}, "PL": {},
	"PT": {}, "RO": {}, "SK": {}, "SI": {}, "ES": {}, "SE": {},
	"IS": {}, "LI": {}, "NO": {},
}

// FromCountry maps an ISO 3166-1 alpha-2 country code, and for the US a
// subdivision name or code, onto a compliance region.
func FromCountry(countryCode, subdivision string) compliance.Region {
	code := strings.ToUpper(strings.TrimSpace(countryCode))
	switch code {
	case "":
		return compliance.RegionOther
	case "GB", "UK":
		return compliance.RegionUK
	case "CA":
		return compliance.RegionCanada
	case "US":
		if isCalifornia(subdivision) {
			return compliance.RegionUSCalifornia
		}
		return compliance.RegionUSOther
	}
	if _, ok := gdprCountries[code]; ok {
		return compliance.RegionEU
	}
	return compliance.RegionOther
}

func isCalifornia(subdivision string) bool {
	s := strings.ToLower(strings.TrimSpace(subdivision))
	return s == "california" || s == "ca" || s == "us-ca"
}
