package netutil

import (
	"net"
	"strconv"
	"strings"
)

// ParseIPv4 parses a dotted-quad address into its uint32 value.
func ParseIPv4(s string) (uint32, bool) {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil {
		return 0, false
	}
	v4 := ip.To4()
	if v4 == nil {
		return 0, false
	}
	return uint32(v4[0])<<24 | uint32(v4[1])<<16 | uint32(v4[2])<<8 | uint32(v4[3]), true
}

// SplitCIDR splits "a.b.c.d/n" into its address and prefix length. A bare
// address is treated as /32. Malformed input reports ok=false.
func SplitCIDR(s string) (addr uint32, prefix int, ok bool) {
	s = strings.TrimSpace(s)
	host, suffix, found := strings.Cut(s, "/")
	prefix = 32
	if found {
		n, err := strconv.Atoi(suffix)
		if err != nil || n < 0 || n > 32 {
			return 0, 0, false
		}
		prefix = n
	}
	addr, ok = ParseIPv4(host)
	if !ok {
		return 0, 0, false
	}
	return addr, prefix, true
}

// Mask returns the IPv4 mask for an n-bit prefix.
func Mask(prefix int) uint32 {
	if prefix <= 0 {
		return 0
	}
	if prefix >= 32 {
		return ^uint32(0)
	}
	return ^uint32(0) << (32 - prefix)
}

// PrefixWidth returns the prefix length of "a.b.c.d/n", or 32 for a bare
// address. Malformed input reports ok=false.
func PrefixWidth(s string) (int, bool) {
	_, prefix, ok := SplitCIDR(s)
	if !ok {
		return 0, false
	}
	return prefix, true
}
