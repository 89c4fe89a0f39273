package overlap

import (
	"strings"

	"firewall-policy-auditor/internal/model"
)

// RulesOverlap reports whether some hypothetical packet could match both
// rules. Every dimension must overlap; the check short-circuits in order:
// zones, protocol, source, destination, ports, ICMP type.
func RulesOverlap(a, b *model.Rule) bool {
	if !zonesOverlap(a.Source.Zone, b.Source.Zone) ||
		!zonesOverlap(a.Destination.Zone, b.Destination.Zone) {
		return false
	}
	if !ProtocolsOverlap(a.Protocol, a.ProtocolInverted, b.Protocol, b.ProtocolInverted) {
		return false
	}
	if !EndpointsOverlap(a.Source, b.Source) {
		return false
	}
	if !EndpointsOverlap(a.Destination, b.Destination) {
		return false
	}
	if !rulePortsOverlap(a, b) {
		return false
	}
	return icmpTypesOverlap(a, b)
}

// zonesOverlap: only two explicit, differing zones rule an overlap out.
// A missing zone is unconstrained.
func zonesOverlap(a, b model.Zone) bool {
	if a == "" || b == "" {
		return true
	}
	return a == b
}

// protocolSet expands a protocol tag into its subset of the protocol
// universe. Inversion complements within that universe.
func protocolSet(p model.Protocol, inverted bool) map[model.Protocol]bool {
	set := make(map[model.Protocol]bool, 3)
	switch p {
	case model.ProtoAll:
		set[model.ProtoTCP] = true
		set[model.ProtoUDP] = true
		set[model.ProtoICMP] = true
	case model.ProtoTCPUDP:
		set[model.ProtoTCP] = true
		set[model.ProtoUDP] = true
	case model.ProtoTCP, model.ProtoUDP, model.ProtoICMP:
		set[p] = true
	default:
		// Unknown tags behave like "all" so a sloppy config is never
		// silently unreachable.
		set[model.ProtoTCP] = true
		set[model.ProtoUDP] = true
		set[model.ProtoICMP] = true
	}
	if !inverted {
		return set
	}
	complement := make(map[model.Protocol]bool, 3)
	for _, member := range []model.Protocol{model.ProtoTCP, model.ProtoUDP, model.ProtoICMP} {
		if !set[member] {
			complement[member] = true
		}
	}
	return complement
}

// ProtocolsOverlap reports whether the two protocol selections can match a
// common packet.
func ProtocolsOverlap(a model.Protocol, aInverted bool, b model.Protocol, bInverted bool) bool {
	as := protocolSet(a, aInverted)
	bs := protocolSet(b, bInverted)
	for p := range as {
		if bs[p] {
			return true
		}
	}
	return false
}

// EndpointsOverlap reports whether two same-side endpoints can match a
// common host. ANY absorbs everything; differing match targets never
// overlap; same targets compare their identifier lists.
func EndpointsOverlap(a, b model.Endpoint) bool {
	if a.Target == model.TargetAny || b.Target == model.TargetAny {
		return true
	}
	if a.Target != b.Target {
		return false
	}
	switch a.Target {
	case model.TargetNetwork:
		return matchingOverlap(a.Networks, b.Networks, equalElems[string], equalElems[string])
	case model.TargetIP:
		return matchingOverlap(a.IPs, b.IPs, ipsOverlap, CIDRContains)
	case model.TargetClient:
		return stringListsIntersect(a.ClientMACs, b.ClientMACs, macsEqual)
	case model.TargetWeb:
		return stringListsIntersect(a.WebDomains, b.WebDomains, DomainsOverlap)
	case model.TargetApp:
		return intListsIntersect(a.AppIDs, b.AppIDs)
	case model.TargetAny:
		return true
	}
	return false
}

func stringListsIntersect(a, b []string, overlaps func(x, y string) bool) bool {
	if len(a) == 0 || len(b) == 0 {
		return true
	}
	for _, x := range a {
		for _, y := range b {
			if overlaps(x, y) {
				return true
			}
		}
	}
	return false
}

func intListsIntersect(a, b []int) bool {
	if len(a) == 0 || len(b) == 0 {
		return true
	}
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

func macsEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// DomainsOverlap reports whether two domain patterns can match a common
// hostname: exact match or either being a subdomain of the other.
func DomainsOverlap(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return true
	}
	return strings.HasSuffix(a, "."+b) || strings.HasSuffix(b, "."+a)
}

// rulePortsOverlap compares the source-port and destination-port
// specifications of both rules. Ports are irrelevant unless both rules use
// a port-bearing protocol; "all" on either side leaves ports unconstrained.
func rulePortsOverlap(a, b *model.Rule) bool {
	if a.Protocol == model.ProtoAll || b.Protocol == model.ProtoAll {
		return true
	}
	if !a.Protocol.PortBearing() || !b.Protocol.PortBearing() {
		return true
	}
	return portSpecsOverlap(a.Source.Port, a.Source.PortInverted, b.Source.Port, b.Source.PortInverted) &&
		portSpecsOverlap(a.Destination.Port, a.Destination.PortInverted, b.Destination.Port, b.Destination.PortInverted)
}

func portSpecsOverlap(aSpec string, aInverted bool, bSpec string, bInverted bool) bool {
	a := model.Matching[int]{Values: ExpandPorts(aSpec), Inverted: aInverted}
	b := model.Matching[int]{Values: ExpandPorts(bSpec), Inverted: bInverted}
	return matchingOverlap(a, b, equalElems[int], equalElems[int])
}

// icmpTypesOverlap applies only when one side matches icmp; an unset or
// "any" type name absorbs everything, otherwise type names must agree.
func icmpTypesOverlap(a, b *model.Rule) bool {
	if a.Protocol != model.ProtoICMP && b.Protocol != model.ProtoICMP {
		return true
	}
	at := strings.ToLower(strings.TrimSpace(a.ICMPTypeName))
	bt := strings.ToLower(strings.TrimSpace(b.ICMPTypeName))
	if at == "" || at == "any" || bt == "" || bt == "any" {
		return true
	}
	return at == bt
}
