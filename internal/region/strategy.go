package region

import (
	"context"
	"strings"

	"github.com/mssola/useragent"
	"golang.org/x/text/language"

	compliance "consentd/internal/compliance/models"
	id "consentd/pkg/domain"
	"consentd/pkg/requestcontext"
)

// Signals are the per-request hints detection works from.
type Signals struct {
	Subject        id.Subject
	IP             string
	Timezone       string
	AcceptLanguage string
	UserAgent      string
	// Override is the raw test-override value (the region query parameter).
	Override string
}

// SignalsFrom builds Signals from the request context populated by the
// metadata middleware. override is the raw region query parameter.
func SignalsFrom(ctx context.Context, subject id.Subject, override string) Signals {
	md := requestcontext.Metadata(ctx)
	return Signals{
		Subject:        subject,
		IP:             md.IP,
		Timezone:       md.Timezone,
		AcceptLanguage: md.AcceptLanguage,
		UserAgent:      md.UserAgent,
		Override:       override,
	}
}

// Strategy is one detection source. Returning RegionOther means "no opinion";
// errors and panics are contained by the Detector.
type Strategy interface {
	Name() string
	TryDetect(ctx context.Context, sig Signals) (compliance.Region, error)
}

type funcStrategy struct {
	name string
	fn   func(ctx context.Context, sig Signals) (compliance.Region, error)
}

// StrategyFunc adapts a function into a named Strategy.
func StrategyFunc(name string, fn func(ctx context.Context, sig Signals) (compliance.Region, error)) Strategy {
	return funcStrategy{name: name, fn: fn}
}

func (f funcStrategy) Name() string { return f.name }

func (f funcStrategy) TryDetect(ctx context.Context, sig Signals) (compliance.Region, error) {
	return f.fn(ctx, sig)
}

// TimezoneStrategy maps IANA timezone names reported by the client.
type TimezoneStrategy struct{}

func (TimezoneStrategy) Name() string { return "timezone" }

var ukZones = map[string]struct{}{
	"Europe/London": {}, "Europe/Belfast": {}, "Europe/Guernsey": {},
	"Europe/Jersey": {}, "Europe/Isle_of_Man": {}, "GB": {}, "GB-Eire": {},
}

// nonGDPREurope lists Europe/* zones outside the EU and EEA.
var nonGDPREurope = map[string]struct{}{
	"Europe/Moscow": {}, "Europe/Istanbul": {}, "Europe/Minsk": {}, "Europe/Kiev": {},
	"Europe/Kyiv": {}, "Europe/Belgrade": {}, "Europe/Sarajevo": {}, "Europe/Skopje": {},
	"Europe/Podgorica": {}, "Europe/Tirane": {}, "Europe/Chisinau": {}, "Europe/Zurich": {},
	"Europe/Kaliningrad": {}, "Europe/Samara": {}, "Europe/Volgograd": {}, "Europe/Ulyanovsk": {},
	"Europe/Saratov": {}, "Europe/Astrakhan": {}, "Europe/Kirov": {}, "Europe/Simferopol": {},
}

var gdprAtlantic = map[string]struct{}{
	"Atlantic/Canary": {}, "Atlantic/Madeira": {}, "Atlantic/Azores": {},
	"Atlantic/Faroe": {}, "Atlantic/Reykjavik": {},
}

var canadaZones = map[string]struct{}{
	"America/Toronto": {}, "America/Vancouver": {}, "America/Edmonton": {}, "America/Winnipeg": {},
	"America/Halifax": {}, "America/St_Johns": {}, "America/Regina": {}, "America/Montreal": {},
	"America/Moncton": {}, "America/Glace_Bay": {}, "America/Goose_Bay": {}, "America/Whitehorse": {},
	"America/Dawson": {}, "America/Yellowknife": {}, "America/Iqaluit": {}, "America/Swift_Current": {},
}

var usZones = map[string]struct{}{
	"America/New_York": {}, "America/Chicago": {}, "America/Denver": {}, "America/Phoenix": {},
	"America/Anchorage": {}, "America/Detroit": {}, "America/Boise": {}, "America/Juneau": {},
	"America/Adak": {}, "America/Nome": {}, "America/Sitka": {}, "America/Menominee": {},
	"Pacific/Honolulu": {}, "US/Eastern": {}, "US/Central": {}, "US/Mountain": {},
	"US/Alaska": {}, "US/Hawaii": {}, "US/Arizona": {},
}

func (TimezoneStrategy) TryDetect(_ context.Context, sig Signals) (compliance.Region, error) {
	tz := strings.TrimSpace(sig.Timezone)
	if tz == "" {
		return compliance.RegionOther, nil
	}
	if _, ok := ukZones[tz]; ok {
		return compliance.RegionUK, nil
	}
	if _, ok := gdprAtlantic[tz]; ok {
		return compliance.RegionEU, nil
	}
	if strings.HasPrefix(tz, "Europe/") {
		if _, ok := nonGDPREurope[tz]; ok {
			return compliance.RegionOther, nil
		}
		return compliance.RegionEU, nil
	}
	// Pacific time is the closest zone-level proxy for California.
	if tz == "America/Los_Angeles" || tz == "US/Pacific" {
		return compliance.RegionUSCalifornia, nil
	}
	if _, ok := canadaZones[tz]; ok {
		return compliance.RegionCanada, nil
	}
	if _, ok := usZones[tz]; ok ||
		strings.HasPrefix(tz, "America/Indiana/") ||
		strings.HasPrefix(tz, "America/Kentucky/") ||
		strings.HasPrefix(tz, "America/North_Dakota/") {
		return compliance.RegionUSOther, nil
	}
	return compliance.RegionOther, nil
}

// LanguageStrategy reads explicit region subtags from Accept-Language
// ("fr-FR", "en-GB"). Bare languages carry no jurisdiction and are ignored.
type LanguageStrategy struct{}

func (LanguageStrategy) Name() string { return "language" }

func (LanguageStrategy) TryDetect(_ context.Context, sig Signals) (compliance.Region, error) {
	if strings.TrimSpace(sig.AcceptLanguage) == "" {
		return compliance.RegionOther, nil
	}
	tags, _, err := language.ParseAcceptLanguage(sig.AcceptLanguage)
	if err != nil {
		return compliance.RegionOther, err
	}
	for _, tag := range tags {
		if r := regionFromTag(tag); r != compliance.RegionOther {
			return r, nil
		}
	}
	return compliance.RegionOther, nil
}

func regionFromTag(tag language.Tag) compliance.Region {
	reg, confidence := tag.Region()
	if confidence != language.Exact {
		return compliance.RegionOther
	}
	return FromCountry(reg.String(), "")
}

// UserAgentStrategy looks for the locale token some browsers still embed in
// the User-Agent. Modern browsers omit it, so this almost always abstains.
type UserAgentStrategy struct{}

func (UserAgentStrategy) Name() string { return "user_agent" }

func (UserAgentStrategy) TryDetect(_ context.Context, sig Signals) (compliance.Region, error) {
	if sig.UserAgent == "" {
		return compliance.RegionOther, nil
	}
	locale := useragent.New(sig.UserAgent).Localization()
	if locale == "" {
		return compliance.RegionOther, nil
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return compliance.RegionOther, nil
	}
	return regionFromTag(tag), nil
}

var (
	_ Strategy = TimezoneStrategy{}
	_ Strategy = LanguageStrategy{}
	_ Strategy = UserAgentStrategy{}
)
