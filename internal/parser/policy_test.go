package parser

import (
	"testing"

	"firewall-policy-auditor/internal/model"
)

func TestParsePolicy(t *testing.T) {
	enabled := false
	el := PolicyElement{
		ID:           "p1",
		Name:         "isolate iot",
		Enabled:      &enabled,
		Action:       "reject",
		Protocol:     "tcp_udp",
		Index:        10010,
		Predefined:   true,
		ICMPTypename: "",
		Source: PolicyEndpointElement{
			MatchingTarget: "NETWORK",
			NetworkIDs:     []string{"net-iot"},
			ZoneID:         "zone-iot",
		},
		Destination: PolicyEndpointElement{
			MatchingTarget:   "IP",
			IPs:              []string{"10.0.0.0/24", "172.16.1.1"},
			MatchOppositeIPs: true,
			Port:             "80,443",
			ZoneID:           "zone-lan",
		},
	}

	rule, ok := ParsePolicy(el, nil)
	if !ok {
		t.Fatalf("expected parse to succeed")
	}
	if rule.ID != "p1" || rule.Enabled || !rule.Predefined || rule.Index != 10010 {
		t.Errorf("identity fields not carried: %+v", rule)
	}
	if rule.Action != model.ActionReject || rule.Protocol != model.ProtoTCPUDP {
		t.Errorf("action fields not carried: %+v", rule)
	}
	if rule.Source.Target != model.TargetNetwork || rule.Source.Zone != "zone-iot" {
		t.Errorf("source endpoint wrong: %+v", rule.Source)
	}
	if rule.Destination.Target != model.TargetIP || !rule.Destination.IPs.Inverted {
		t.Errorf("destination inversion not carried: %+v", rule.Destination)
	}
	if rule.Destination.Port != "80,443" || rule.Destination.Zone != "zone-lan" {
		t.Errorf("destination port/zone wrong: %+v", rule.Destination)
	}
}

func TestParsePolicyObjectResolution(t *testing.T) {
	el := PolicyElement{
		ID:       "p1",
		Action:   "accept",
		Protocol: "tcp",
		Source: PolicyEndpointElement{
			MatchingTarget:     "IP",
			MatchingTargetType: "OBJECT",
			IPGroupID:          "grp-addrs",
		},
		Destination: PolicyEndpointElement{
			MatchingTarget:   "ANY",
			PortMatchingType: "OBJECT",
			PortGroupID:      "grp-ports",
		},
	}

	rule, ok := ParsePolicy(el, testGroups())
	if !ok {
		t.Fatalf("expected parse to succeed")
	}
	if len(rule.Source.IPs.Values) != 2 {
		t.Errorf("address group should expand into member list, got %v", rule.Source.IPs.Values)
	}
	if rule.Destination.Port != "80,443,8000-8005" {
		t.Errorf("port group should resolve to a comma-separated spec, got %q", rule.Destination.Port)
	}
}

func TestParsePolicyUnresolvableGroupKeepsOriginal(t *testing.T) {
	el := PolicyElement{
		ID:       "p1",
		Action:   "accept",
		Protocol: "tcp",
		Source: PolicyEndpointElement{
			MatchingTarget:     "IP",
			MatchingTargetType: "OBJECT",
			IPGroupID:          "grp-missing",
			IPs:                []string{"10.9.9.9"},
		},
		Destination: PolicyEndpointElement{
			MatchingTarget:   "ANY",
			PortMatchingType: "OBJECT",
			PortGroupID:      "grp-missing",
			Port:             "8080",
		},
	}

	rule, ok := ParsePolicy(el, testGroups())
	if !ok {
		t.Fatalf("expected parse to succeed")
	}
	if len(rule.Source.IPs.Values) != 1 || rule.Source.IPs.Values[0] != "10.9.9.9" {
		t.Errorf("unresolved address group must keep the original value, got %v", rule.Source.IPs.Values)
	}
	if rule.Destination.Port != "8080" {
		t.Errorf("unresolved port group must keep the original value, got %q", rule.Destination.Port)
	}
}

func TestParsePolicySideValidation(t *testing.T) {
	base := func() PolicyElement {
		return PolicyElement{
			ID:          "p1",
			Action:      "accept",
			Source:      PolicyEndpointElement{MatchingTarget: "ANY"},
			Destination: PolicyEndpointElement{MatchingTarget: "ANY"},
		}
	}

	el := base()
	el.Destination.MatchingTarget = "CLIENT"
	if _, ok := ParsePolicy(el, nil); ok {
		t.Errorf("CLIENT is source-only and must be rejected on the destination")
	}

	el = base()
	el.Source.MatchingTarget = "WEB"
	if _, ok := ParsePolicy(el, nil); ok {
		t.Errorf("WEB is destination-only and must be rejected on the source")
	}

	el = base()
	el.Source.MatchingTarget = "APP"
	if _, ok := ParsePolicy(el, nil); ok {
		t.Errorf("APP is destination-only and must be rejected on the source")
	}

	el = base()
	el.Source.MatchingTarget = "GIBBERISH"
	if _, ok := ParsePolicy(el, nil); ok {
		t.Errorf("unknown matching targets must be rejected")
	}
}

func TestParsePolicyConnectionStates(t *testing.T) {
	tests := []struct {
		name      string
		stateType string
		states    []string
		want      bool
	}{
		{"all", "ALL", nil, false},
		{"respond only", "RESPOND_ONLY", nil, true},
		{"custom return only", "CUSTOM", []string{"ESTABLISHED", "RELATED"}, true},
		{"custom with new", "CUSTOM", []string{"NEW", "ESTABLISHED"}, false},
		{"custom empty", "CUSTOM", nil, false},
		{"unset", "", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el := PolicyElement{
				ID:                  "p1",
				Action:              "accept",
				ConnectionStateType: tt.stateType,
				ConnectionStates:    tt.states,
				Source:              PolicyEndpointElement{MatchingTarget: "ANY"},
				Destination:         PolicyEndpointElement{MatchingTarget: "ANY"},
			}
			rule, ok := ParsePolicy(el, nil)
			if !ok {
				t.Fatalf("expected parse to succeed")
			}
			if rule.EstablishedOnly != tt.want {
				t.Errorf("EstablishedOnly = %v, want %v", rule.EstablishedOnly, tt.want)
			}
		})
	}
}

func TestParsePolicyGeneratesID(t *testing.T) {
	el := PolicyElement{
		Action:      "accept",
		Source:      PolicyEndpointElement{MatchingTarget: "ANY"},
		Destination: PolicyEndpointElement{MatchingTarget: "ANY"},
	}
	a, _ := ParsePolicy(el, nil)
	b, _ := ParsePolicy(el, nil)
	if a.ID == "" || b.ID == "" || a.ID == b.ID {
		t.Fatalf("expected distinct generated ids, got %q and %q", a.ID, b.ID)
	}
}
