// Package privacy reduces personal data before it reaches logs.
package privacy

import "net/netip"

const (
	ipv4KeepBits = 24
	ipv6KeepBits = 48
)

// AnonymizeIP keeps only the network part of an address: the /24 for IPv4
// (and IPv4-mapped IPv6) and the /48 for IPv6. Zones are dropped.
// Empty input and "unknown" yield "unknown"; anything unparseable yields
// "invalid".
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}
	addr = addr.WithZone("").Unmap()

	bits := ipv6KeepBits
	if addr.Is4() {
		bits = ipv4KeepBits
	}
	prefix, err := addr.Prefix(bits)
	if err != nil {
		return "invalid"
	}
	return prefix.Addr().String()
}
