package parser

import (
	"strings"

	"firewall-policy-auditor/internal/model"
)

// LegacyRuleElement is the wire shape of a flat firewall rule as exported
// by the gateway's legacy configuration.
type LegacyRuleElement struct {
	ID                  string               `json:"_id"`
	RuleID              string               `json:"rule_id"`
	Name                string               `json:"name"`
	Enabled             *bool                `json:"enabled"`
	RuleIndex           int                  `json:"rule_index"`
	Action              string               `json:"action"`
	Protocol            string               `json:"protocol"`
	ProtocolExcepted    bool                 `json:"protocol_match_excepted"`
	SrcType             string               `json:"src_type"`
	SrcAddress          string               `json:"src_address"`
	SrcNetworkID        string               `json:"src_network_id"`
	SrcMACAddress       string               `json:"src_mac_address"`
	SrcPort             string               `json:"src_port"`
	SrcFirewallGroupIDs []string             `json:"src_firewallgroup_ids"`
	DstType             string               `json:"dst_type"`
	DstAddress          string               `json:"dst_address"`
	DstNetworkID        string               `json:"dst_network_id"`
	DstPort             string               `json:"dst_port"`
	DstFirewallGroupIDs []string             `json:"dst_firewallgroup_ids"`
	ICMPTypename        string               `json:"icmp_typename"`
	StateNew            bool                 `json:"state_new"`
	StateEstablished    bool                 `json:"state_established"`
	StateRelated        bool                 `json:"state_related"`
	StateInvalid        bool                 `json:"state_invalid"`
	HitCount            int                  `json:"hit_count"`
	Ruleset             string               `json:"ruleset"`
	Source              *LegacyEndpointExtra `json:"source"`
	Destination         *LegacyEndpointExtra `json:"destination"`
}

// LegacyEndpointExtra carries the optional nested arrays some exports
// attach to flat rules.
type LegacyEndpointExtra struct {
	NetworkIDs []string `json:"network_ids"`
	WebDomains []string `json:"web_domains"`
}

// ParseLegacyRule normalizes one flat element into a Rule. A malformed
// element reports ok=false and is meant to be skipped; parsing never
// panics and never emits a partial rule.
func ParseLegacyRule(el LegacyRuleElement, groups GroupTable) (*model.Rule, bool) {
	action, ok := parseAction(el.Action)
	if !ok {
		return nil, false
	}

	id := el.ID
	if id == "" {
		id = el.RuleID
	}
	if id == "" {
		id = generateRuleID()
	}

	srcZone, dstZone := rulesetZones(el.Ruleset)

	src := legacyEndpoint(legacySide{
		typ:       el.SrcType,
		address:   el.SrcAddress,
		networkID: el.SrcNetworkID,
		mac:       el.SrcMACAddress,
		port:      el.SrcPort,
		groupIDs:  el.SrcFirewallGroupIDs,
		extra:     el.Source,
	}, groups, srcZone)

	dst := legacyEndpoint(legacySide{
		typ:       el.DstType,
		address:   el.DstAddress,
		networkID: el.DstNetworkID,
		port:      el.DstPort,
		groupIDs:  el.DstFirewallGroupIDs,
		extra:     el.Destination,
	}, groups, dstZone)

	return &model.Rule{
		ID:               id,
		Name:             el.Name,
		Enabled:          el.Enabled == nil || *el.Enabled,
		Index:            el.RuleIndex,
		Action:           action,
		Protocol:         parseProtocol(el.Protocol),
		ProtocolInverted: el.ProtocolExcepted,
		EstablishedOnly:  establishedOnlyFromStates(el.StateNew, el.StateEstablished, el.StateRelated),
		Source:           src,
		Destination:      dst,
		ICMPTypeName:     el.ICMPTypename,
		Ruleset:          el.Ruleset,
		HitCount:         el.HitCount,
	}, true
}

type legacySide struct {
	typ       string
	address   string
	networkID string
	mac       string
	port      string
	groupIDs  []string
	extra     *LegacyEndpointExtra
}

func legacyEndpoint(side legacySide, groups GroupTable, zone model.Zone) model.Endpoint {
	ep := model.Endpoint{Zone: zone, Port: side.port}

	var networks, ips []string
	if side.networkID != "" {
		networks = append(networks, side.networkID)
	}
	if side.address != "" {
		ips = append(ips, side.address)
	}
	if side.extra != nil {
		networks = append(networks, side.extra.NetworkIDs...)
		ep.WebDomains = append(ep.WebDomains, side.extra.WebDomains...)
	}

	// Group references fold into the matching lists they resolve to; an
	// unresolvable id stays put as an opaque address value.
	for _, gid := range side.groupIDs {
		if members, ok := groups.Addresses(gid); ok {
			ips = append(ips, members...)
			continue
		}
		if spec, ok := groups.PortSpec(gid); ok {
			ep.Port = joinPortSpecs(ep.Port, spec)
			continue
		}
		ips = append(ips, gid)
	}

	ep.Networks = model.Matching[string]{Values: networks}
	ep.IPs = model.Matching[string]{Values: ips}
	if side.mac != "" {
		ep.ClientMACs = []string{side.mac}
	}

	ep.Target = legacyTarget(side.typ, ep)
	if ep.Target == model.TargetAny {
		// ANY never carries identifier lists.
		ep.Networks = model.Matching[string]{}
		ep.IPs = model.Matching[string]{}
		ep.ClientMACs = nil
		ep.WebDomains = nil
	}
	return ep
}

// legacyTarget maps the loose src_type/dst_type tag onto the closed match
// target union, inferring from populated fields when the tag is absent.
func legacyTarget(typ string, ep model.Endpoint) model.MatchTarget {
	switch strings.ToUpper(strings.TrimSpace(typ)) {
	case "NETWORK", "NETV4", "NETWORKV4":
		return model.TargetNetwork
	case "IP", "ADDRESS", "ADDRV4":
		return model.TargetIP
	case "CLIENT", "MAC":
		return model.TargetClient
	case "WEB":
		return model.TargetWeb
	case "ANY":
		return model.TargetAny
	}
	switch {
	case len(ep.WebDomains) > 0:
		return model.TargetWeb
	case len(ep.Networks.Values) > 0:
		return model.TargetNetwork
	case len(ep.IPs.Values) > 0:
		return model.TargetIP
	case len(ep.ClientMACs) > 0:
		return model.TargetClient
	}
	return model.TargetAny
}

// CombinedTrafficElement is the wire shape of a legacy app-based
// "combined traffic" rule.
type CombinedTrafficElement struct {
	ID               string `json:"_id"`
	Name             string `json:"name"`
	Enabled          *bool  `json:"enabled"`
	RuleIndex        int    `json:"rule_index"`
	Action           string `json:"action"`
	AppIDs           []int  `json:"app_ids"`
	AppCategoryIDs   []int  `json:"app_category_ids"`
	TrafficDirection string `json:"traffic_direction"`
	Ruleset          string `json:"ruleset"`
}

// ParseCombinedTrafficRule normalizes one app-based rule: the destination
// matches the listed applications, the source is unconstrained, and zones
// come from the traffic direction (TO runs internal to external, FROM the
// reverse) with ruleset-derived zones as the fallback.
func ParseCombinedTrafficRule(el CombinedTrafficElement, _ GroupTable) (*model.Rule, bool) {
	action, ok := parseAction(el.Action)
	if !ok {
		return nil, false
	}
	id := el.ID
	if id == "" {
		id = generateRuleID()
	}

	var srcZone, dstZone model.Zone
	switch strings.ToUpper(strings.TrimSpace(el.TrafficDirection)) {
	case "TO":
		srcZone, dstZone = model.ZoneInternal, model.ZoneExternal
	case "FROM":
		srcZone, dstZone = model.ZoneExternal, model.ZoneInternal
	default:
		srcZone, dstZone = rulesetZones(el.Ruleset)
	}

	appIDs := append([]int(nil), el.AppIDs...)
	appIDs = append(appIDs, el.AppCategoryIDs...)

	return &model.Rule{
		ID:       id,
		Name:     el.Name,
		Enabled:  el.Enabled == nil || *el.Enabled,
		Index:    el.RuleIndex,
		Action:   action,
		Protocol: model.ProtoAll,
		Source:   model.Endpoint{Target: model.TargetAny, Zone: srcZone},
		Destination: model.Endpoint{
			Target: model.TargetApp,
			AppIDs: appIDs,
			Zone:   dstZone,
		},
		Ruleset: el.Ruleset,
	}, true
}

func parseAction(s string) (model.Action, bool) {
	switch model.Action(strings.ToLower(strings.TrimSpace(s))) {
	case model.ActionAccept:
		return model.ActionAccept, true
	case model.ActionDrop:
		return model.ActionDrop, true
	case model.ActionReject:
		return model.ActionReject, true
	}
	return "", false
}

func parseProtocol(s string) model.Protocol {
	switch model.Protocol(strings.ToLower(strings.TrimSpace(s))) {
	case model.ProtoTCP:
		return model.ProtoTCP
	case model.ProtoUDP:
		return model.ProtoUDP
	case model.ProtoTCPUDP:
		return model.ProtoTCPUDP
	case model.ProtoICMP:
		return model.ProtoICMP
	}
	return model.ProtoAll
}

// establishedOnlyFromStates folds the legacy state flags into the
// established-only qualifier: a rule that matches established or related
// traffic but not new connections never fires on a connection attempt.
func establishedOnlyFromStates(stateNew, established, related bool) bool {
	return !stateNew && (established || related)
}

func joinPortSpecs(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + "," + b
}
