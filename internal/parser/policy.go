package parser

import (
	"strings"

	"firewall-policy-auditor/internal/model"
)

// PolicyElement is the wire shape of a v2 zone-based firewall policy.
type PolicyElement struct {
	ID                    string                `json:"_id"`
	Name                  string                `json:"name"`
	Enabled               *bool                 `json:"enabled"`
	Action                string                `json:"action"`
	Protocol              string                `json:"protocol"`
	MatchOppositeProtocol bool                  `json:"match_opposite_protocol"`
	Index                 int                   `json:"index"`
	Predefined            bool                  `json:"predefined"`
	ICMPTypename          string                `json:"icmp_typename"`
	ConnectionStateType   string                `json:"connection_state_type"`
	ConnectionStates      []string              `json:"connection_states"`
	Source                PolicyEndpointElement `json:"source"`
	Destination           PolicyEndpointElement `json:"destination"`
}

// PolicyEndpointElement is one side of a v2 policy.
type PolicyEndpointElement struct {
	MatchingTarget     string   `json:"matching_target"`
	MatchingTargetType string   `json:"matching_target_type"`
	NetworkIDs         []string `json:"network_ids"`
	IPs                []string `json:"ips"`
	IPGroupID          string   `json:"ip_group_id"`
	ClientMACs         []string `json:"client_macs"`
	WebDomains         []string `json:"web_domains"`
	AppIDs             []int    `json:"app_ids"`
	AppCategoryIDs     []int    `json:"app_category_ids"`
	Port               string   `json:"port"`
	PortMatchingType   string   `json:"port_matching_type"`
	PortGroupID        string   `json:"port_group_id"`
	ZoneID             string   `json:"zone_id"`
	MatchOppositeIPs   bool     `json:"match_opposite_ips"`
	MatchOppositeNets  bool     `json:"match_opposite_networks"`
	MatchOppositePorts bool     `json:"match_opposite_ports"`
}

// ParsePolicy normalizes one v2 policy element into a Rule. Malformed
// elements (unknown action, a matching target invalid for its side)
// report ok=false and are skipped.
func ParsePolicy(el PolicyElement, groups GroupTable) (*model.Rule, bool) {
	action, ok := parseAction(el.Action)
	if !ok {
		return nil, false
	}

	src, ok := policyEndpoint(el.Source, groups, false)
	if !ok {
		return nil, false
	}
	dst, ok := policyEndpoint(el.Destination, groups, true)
	if !ok {
		return nil, false
	}

	id := el.ID
	if id == "" {
		id = generateRuleID()
	}

	return &model.Rule{
		ID:               id,
		Name:             el.Name,
		Enabled:          el.Enabled == nil || *el.Enabled,
		Index:            el.Index,
		Predefined:       el.Predefined,
		Action:           action,
		Protocol:         parseProtocol(el.Protocol),
		ProtocolInverted: el.MatchOppositeProtocol,
		EstablishedOnly:  establishedOnlyFromPolicy(el.ConnectionStateType, el.ConnectionStates),
		Source:           src,
		Destination:      dst,
		ICMPTypeName:     el.ICMPTypename,
	}, true
}

func policyEndpoint(el PolicyEndpointElement, groups GroupTable, destination bool) (model.Endpoint, bool) {
	target, ok := policyTarget(el.MatchingTarget, destination)
	if !ok {
		return model.Endpoint{}, false
	}

	ep := model.Endpoint{
		Target: target,
		Zone:   model.Zone(el.ZoneID),
		Port:   el.Port,
	}

	switch target {
	case model.TargetNetwork:
		ep.Networks = model.Matching[string]{
			Values:   el.NetworkIDs,
			Inverted: el.MatchOppositeNets,
		}
	case model.TargetIP:
		ips := el.IPs
		if strings.EqualFold(el.MatchingTargetType, "OBJECT") && el.IPGroupID != "" {
			if members, resolved := groups.Addresses(el.IPGroupID); resolved {
				ips = members
			}
		}
		ep.IPs = model.Matching[string]{
			Values:   ips,
			Inverted: el.MatchOppositeIPs,
		}
	case model.TargetClient:
		ep.ClientMACs = el.ClientMACs
	case model.TargetWeb:
		ep.WebDomains = el.WebDomains
	case model.TargetApp:
		appIDs := append([]int(nil), el.AppIDs...)
		ep.AppIDs = append(appIDs, el.AppCategoryIDs...)
	case model.TargetAny:
		// ANY carries no identifier lists.
	}

	if strings.EqualFold(el.PortMatchingType, "OBJECT") && el.PortGroupID != "" {
		if spec, resolved := groups.PortSpec(el.PortGroupID); resolved {
			ep.Port = spec
		}
	}
	ep.PortInverted = el.MatchOppositePorts

	return ep, true
}

// policyTarget maps the matching_target tag onto the closed union,
// rejecting targets that are invalid for the element's side.
func policyTarget(tag string, destination bool) (model.MatchTarget, bool) {
	switch model.MatchTarget(strings.ToUpper(strings.TrimSpace(tag))) {
	case model.TargetAny, "":
		return model.TargetAny, true
	case model.TargetNetwork:
		return model.TargetNetwork, true
	case model.TargetIP:
		return model.TargetIP, true
	case model.TargetClient:
		return model.TargetClient, !destination
	case model.TargetWeb:
		return model.TargetWeb, destination
	case model.TargetApp:
		return model.TargetApp, destination
	}
	return "", false
}

// establishedOnlyFromPolicy folds the v2 connection-state qualifier into
// the established-only flag. RESPOND_ONLY licenses only return traffic;
// CUSTOM does too when its state list names established/related without
// NEW.
func establishedOnlyFromPolicy(stateType string, states []string) bool {
	switch strings.ToUpper(strings.TrimSpace(stateType)) {
	case "RESPOND_ONLY":
		return true
	case "CUSTOM":
		hasNew := false
		hasReturn := false
		for _, s := range states {
			switch strings.ToUpper(strings.TrimSpace(s)) {
			case "NEW":
				hasNew = true
			case "ESTABLISHED", "RELATED":
				hasReturn = true
			}
		}
		return hasReturn && !hasNew
	}
	return false
}
