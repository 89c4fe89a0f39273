package overlap

import (
	"strconv"
	"strings"
)

// ExpandPorts expands a port specification into the set of ports it names.
// The grammar is comma-separated tokens, each a single integer or an
// inclusive "start-end" range. Invalid tokens are dropped silently; an
// empty or fully invalid specification expands to nil, meaning all ports.
func ExpandPorts(spec string) []int {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil
	}
	seen := make(map[int]bool)
	var ports []int
	add := func(p int) {
		if p < 0 || p > 65535 || seen[p] {
			return
		}
		seen[p] = true
		ports = append(ports, p)
	}
	for _, token := range strings.Split(spec, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if start, end, found := strings.Cut(token, "-"); found {
			lo, err1 := strconv.Atoi(strings.TrimSpace(start))
			hi, err2 := strconv.Atoi(strings.TrimSpace(end))
			if err1 != nil || err2 != nil || lo > hi {
				continue
			}
			for p := lo; p <= hi; p++ {
				add(p)
			}
			continue
		}
		p, err := strconv.Atoi(token)
		if err != nil {
			continue
		}
		add(p)
	}
	return ports
}

// PortSpecMatches reports whether a concrete port satisfies a specification
// with its inversion flag. An empty expansion matches every port.
func PortSpecMatches(spec string, inverted bool, port int) bool {
	ports := ExpandPorts(spec)
	if len(ports) == 0 {
		return true
	}
	listed := false
	for _, p := range ports {
		if p == port {
			listed = true
			break
		}
	}
	return listed != inverted
}
