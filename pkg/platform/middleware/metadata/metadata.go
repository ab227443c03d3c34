package metadata

import (
	"fmt"
	"net/http"
	"net/netip"
	"strings"

	"consentd/pkg/requestcontext"
)

// MaxXFFHeaderLength bounds X-Forwarded-For before it is parsed.
const MaxXFFHeaderLength = 500

// TimezoneHeader carries the browser's IANA timezone
// (Intl.DateTimeFormat().resolvedOptions().timeZone), sent by the consent banner script.
const TimezoneHeader = "X-Client-Timezone"

const maxTimezoneLength = 64

// Config holds configuration for the metadata middleware.
type Config struct {
	// TrustedProxies lists prefixes allowed to set X-Forwarded-For / X-Real-IP.
	// If empty, forwarding headers are never trusted.
	TrustedProxies []netip.Prefix
}

// ParseTrustedProxies converts CIDR strings from configuration.
func ParseTrustedProxies(cidrs []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(cidrs))
	for _, raw := range cidrs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		prefix, err := netip.ParsePrefix(raw)
		if err != nil {
			return nil, fmt.Errorf("parse trusted proxy %q: %w", raw, err)
		}
		prefixes = append(prefixes, prefix)
	}
	return prefixes, nil
}

// Middleware extracts the client signals region detection relies on.
type Middleware struct {
	config Config
}

// NewMiddleware creates a new metadata middleware with the given config.
func NewMiddleware(cfg *Config) *Middleware {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Middleware{config: *cfg}
}

// Handler stores IP, User-Agent, Accept-Language and timezone in the request context.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		md := requestcontext.ClientMetadata{
			IP:             m.extractClientIP(r),
			UserAgent:      r.Header.Get("User-Agent"),
			AcceptLanguage: r.Header.Get("Accept-Language"),
			Timezone:       sanitizeTimezone(r.Header.Get(TimezoneHeader)),
		}
		ctx := requestcontext.WithClientMetadata(r.Context(), md)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) extractClientIP(r *http.Request) string {
	remoteIP := parseRemoteAddr(r.RemoteAddr)
	if remoteIP == "" {
		return "unknown"
	}
	if !m.isTrustedProxy(remoteIP) {
		return remoteIP
	}

	xff := r.Header.Get("X-Forwarded-For")
	if xff == "" {
		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" && len(xri) <= MaxXFFHeaderLength {
			if _, err := netip.ParseAddr(xri); err == nil {
				return xri
			}
		}
		return remoteIP
	}
	if len(xff) > MaxXFFHeaderLength {
		return remoteIP
	}

	first, _, _ := strings.Cut(xff, ",")
	clientIP := strings.TrimSpace(first)
	if _, err := netip.ParseAddr(clientIP); err != nil {
		return remoteIP
	}
	return clientIP
}

func (m *Middleware) isTrustedProxy(ip string) bool {
	if len(m.config.TrustedProxies) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	for _, prefix := range m.config.TrustedProxies {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

func parseRemoteAddr(remoteAddr string) string {
	if remoteAddr == "" {
		return ""
	}
	if addrPort, err := netip.ParseAddrPort(remoteAddr); err == nil {
		return addrPort.Addr().String()
	}
	if addr, err := netip.ParseAddr(strings.Trim(remoteAddr, "[]")); err == nil {
		return addr.String()
	}
	return remoteAddr
}

// sanitizeTimezone keeps only values shaped like IANA zone names ("Europe/Paris").
func sanitizeTimezone(tz string) string {
	tz = strings.TrimSpace(tz)
	if tz == "" || len(tz) > maxTimezoneLength {
		return ""
	}
	for _, r := range tz {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '/', r == '_', r == '-', r == '+':
		default:
			return ""
		}
	}
	return tz
}
