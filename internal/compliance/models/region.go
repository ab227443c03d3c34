package models

import (
	"fmt"
	"strings"

	"consentd/pkg/platform/sentinel"
)

// Region is the privacy jurisdiction a visitor is treated under.
type Region string

const (
	RegionEU           Region = "eu"
	RegionUK           Region = "uk"
	RegionUSCalifornia Region = "us_ca"
	RegionCanada       Region = "canada"
	RegionUSOther      Region = "us_other"
	RegionOther        Region = "other"
)

// Regions lists every region in a stable order.
var Regions = []Region{
	RegionEU,
	RegionUK,
	RegionUSCalifornia,
	RegionCanada,
	RegionUSOther,
	RegionOther,
}

// IsValid checks if the region is one of the supported enum values.
func (r Region) IsValid() bool {
	switch r {
	case RegionEU, RegionUK, RegionUSCalifornia, RegionCanada, RegionUSOther, RegionOther:
		return true
	}
	return false
}

func (r Region) String() string {
	return string(r)
}

// ParseRegion accepts a region code case-insensitively ("EU", "us_ca").
func ParseRegion(s string) (Region, error) {
	r := Region(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("unknown region %q: %w", s, sentinel.ErrInvalidInput)
	}
	return r, nil
}
