package overlap

import (
	"strings"

	"firewall-policy-auditor/internal/model"
)

// Traffic is one concrete traffic pattern to evaluate against a rule set.
// Zero values leave a dimension unconstrained.
type Traffic struct {
	Protocol model.Protocol // tcp, udp or icmp; empty matches any
	SrcIP    string
	DstIP    string
	Port     int // destination port; 0 matches any
	ICMPType string

	// NewConnection marks the pattern as a connection attempt rather than
	// return traffic; the evaluator uses it to skip established-only
	// allow rules.
	NewConnection bool
}

// MatchesTraffic reports whether a rule could match the given pattern.
// Identifier classes that cannot be tested against a bare address
// (network ids, client MACs, web domains, app ids) are treated as
// matching, so the answer stays conservative.
func MatchesTraffic(r *model.Rule, t Traffic) bool {
	if !protocolMatchesTraffic(r, t.Protocol) {
		return false
	}
	if !endpointMatchesIP(r.Source, t.SrcIP) {
		return false
	}
	if !endpointMatchesIP(r.Destination, t.DstIP) {
		return false
	}
	if !portMatchesTraffic(r, t) {
		return false
	}
	return icmpMatchesTraffic(r, t)
}

func protocolMatchesTraffic(r *model.Rule, proto model.Protocol) bool {
	if proto == "" {
		return true
	}
	return protocolSet(r.Protocol, r.ProtocolInverted)[proto]
}

func endpointMatchesIP(e model.Endpoint, ip string) bool {
	if ip == "" || e.Target != model.TargetIP {
		return true
	}
	if len(e.IPs.Values) == 0 {
		return true
	}
	listed := false
	for _, v := range e.IPs.Values {
		if CIDRContains(ip, v) {
			listed = true
			break
		}
	}
	return listed != e.IPs.Inverted
}

func portMatchesTraffic(r *model.Rule, t Traffic) bool {
	if t.Port == 0 {
		return true
	}
	if r.Protocol != model.ProtoAll && !r.Protocol.PortBearing() {
		return true
	}
	return PortSpecMatches(r.Destination.Port, r.Destination.PortInverted, t.Port)
}

func icmpMatchesTraffic(r *model.Rule, t Traffic) bool {
	if r.Protocol != model.ProtoICMP || t.ICMPType == "" {
		return true
	}
	name := strings.ToLower(strings.TrimSpace(r.ICMPTypeName))
	if name == "" || name == "any" {
		return true
	}
	return name == strings.ToLower(strings.TrimSpace(t.ICMPType))
}
