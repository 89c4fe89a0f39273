package parser

import (
	"strings"

	"firewall-policy-auditor/internal/model"
)

// rulesetZones synthesizes source and destination zones from a legacy
// ruleset name such as WAN_IN, LAN_OUT or GUEST_LOCAL. The prefix names
// the near side (WAN is external, everything else internal); the suffix
// gives the traffic direction. Unrecognized names leave both zones unset.
func rulesetZones(ruleset string) (src, dst model.Zone) {
	name := strings.ToUpper(strings.TrimSpace(ruleset))
	cut := strings.LastIndex(name, "_")
	if cut < 0 {
		return "", ""
	}
	near := model.ZoneInternal
	if strings.HasPrefix(name, "WAN") {
		near = model.ZoneExternal
	}
	far := model.ZoneInternal
	if near == model.ZoneInternal {
		far = model.ZoneExternal
	}

	switch name[cut+1:] {
	case "IN":
		return near, far
	case "OUT":
		return far, near
	case "LOCAL":
		return near, model.ZoneGateway
	}
	return "", ""
}
