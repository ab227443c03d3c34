// Package privacy holds helpers that keep personal data out of logs, traces and
// audit records.
package privacy

import "net/netip"

// AnonymizeIP truncates an address before it is logged: IPv4 to its /24,
// IPv6 to its /48. Returns "unknown" for empty input and "invalid" when the
// value does not parse.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}
	addr = addr.Unmap()
	bits := 48
	if addr.Is4() {
		bits = 24
	}
	prefix, err := addr.Prefix(bits)
	if err != nil {
		return "invalid"
	}
	return prefix.Addr().String()
}

// IsPublicIP reports whether the address can meaningfully be geolocated.
// Loopback, private, link-local and unspecified addresses cannot.
func IsPublicIP(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	return !(addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast() ||
		addr.IsUnspecified() || addr.IsMulticast())
}
