package geoip

import (
	"context"

	compliance "consentd/internal/compliance/models"
	"consentd/internal/region"
	"consentd/pkg/platform/privacy"
)

// Locator is what the strategy needs from a Client.
type Locator interface {
	Lookup(ctx context.Context, ip string) (*Location, error)
}

// Strategy is the geolocation detection step. Private and loopback addresses
// are not looked up.
type Strategy struct {
	locator Locator
}

func NewStrategy(locator Locator) *Strategy {
	return &Strategy{locator: locator}
}

func (s *Strategy) Name() string { return "geoip" }

func (s *Strategy) TryDetect(ctx context.Context, sig region.Signals) (compliance.Region, error) {
	if !privacy.IsPublicIP(sig.IP) {
		return compliance.RegionOther, nil
	}
	loc, err := s.locator.Lookup(ctx, sig.IP)
	if err != nil {
		return compliance.RegionOther, err
	}
	return region.FromCountry(loc.CountryCode, loc.Region), nil
}

var _ region.Strategy = (*Strategy)(nil)
