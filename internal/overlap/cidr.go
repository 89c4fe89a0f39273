package overlap

import "firewall-policy-auditor/internal/netutil"

// CIDRContains reports whether candidate (an address or IPv4 CIDR) lies
// entirely inside container (an address or IPv4 CIDR). Containment is
// IPv4-only; malformed or IPv6 input reports false.
func CIDRContains(candidate, container string) bool {
	contAddr, contPrefix, ok := netutil.SplitCIDR(container)
	if !ok {
		return false
	}
	candAddr, candPrefix, ok := netutil.SplitCIDR(candidate)
	if !ok {
		return false
	}
	// A wider candidate block can never fit inside a narrower container.
	if candPrefix < contPrefix {
		return false
	}
	mask := netutil.Mask(contPrefix)
	return candAddr&mask == contAddr&mask
}

// ipsOverlap reports whether two address-or-CIDR strings can match a common
// address: exact match, a contains b, or b contains a.
func ipsOverlap(a, b string) bool {
	if a == b {
		return true
	}
	return CIDRContains(a, b) || CIDRContains(b, a)
}
