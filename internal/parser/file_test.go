package parser

import (
	"strings"
	"testing"

	"firewall-policy-auditor/internal/model"
)

const sampleDump = `{
  "firewall_groups": [
    {"_id": "g1", "name": "web-ports", "group_type": "port-group", "group_members": ["80", "443"]},
    {"_id": "g2", "name": "servers", "group_type": "address-group", "group_members": ["10.0.10.0/24"]}
  ],
  "firewall_rules": [
    {
      "_id": "fr1", "name": "allow web", "enabled": true, "rule_index": 2000,
      "action": "accept", "protocol": "tcp", "ruleset": "LAN_IN",
      "dst_firewallgroup_ids": ["g1", "g2"]
    },
    {"_id": "fr2", "name": "broken", "action": "nonsense"}
  ],
  "firewall_policies": [
    {
      "_id": "pol1", "name": "block iot to lan", "action": "drop", "protocol": "all",
      "index": 10000,
      "source": {"matching_target": "NETWORK", "network_ids": ["net-iot"], "zone_id": "z-iot"},
      "destination": {"matching_target": "ANY", "zone_id": "z-lan"}
    }
  ],
  "combined_traffic_rules": [
    {"_id": "ct1", "name": "no streaming", "action": "drop", "app_ids": [55], "traffic_direction": "TO"}
  ]
}`

func TestLoadDumpAndRules(t *testing.T) {
	dump, err := LoadDump(strings.NewReader(sampleDump))
	if err != nil {
		t.Fatalf("expected dump to decode, got %v", err)
	}

	rules := dump.Rules()
	// fr2 is malformed and skipped.
	if len(rules) != 3 {
		t.Fatalf("expected 3 rules, got %d", len(rules))
	}

	byID := make(map[string]*model.Rule, len(rules))
	for _, r := range rules {
		byID[r.ID] = r
	}

	fr1, ok := byID["fr1"]
	if !ok {
		t.Fatalf("legacy rule fr1 missing")
	}
	if fr1.Destination.Port != "80,443" {
		t.Errorf("port group not resolved, got %q", fr1.Destination.Port)
	}
	if len(fr1.Destination.IPs.Values) != 1 || fr1.Destination.IPs.Values[0] != "10.0.10.0/24" {
		t.Errorf("address group not resolved, got %v", fr1.Destination.IPs.Values)
	}

	pol1, ok := byID["pol1"]
	if !ok {
		t.Fatalf("policy pol1 missing")
	}
	if pol1.Source.Zone != "z-iot" || pol1.Destination.Zone != "z-lan" {
		t.Errorf("policy zones not carried: %+v", pol1)
	}

	ct1, ok := byID["ct1"]
	if !ok {
		t.Fatalf("combined rule ct1 missing")
	}
	if ct1.Destination.Target != model.TargetApp {
		t.Errorf("combined rule should target apps, got %s", ct1.Destination.Target)
	}
}

func TestLoadDumpRejectsGarbage(t *testing.T) {
	if _, err := LoadDump(strings.NewReader("not json")); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestBuildGroupTable(t *testing.T) {
	table := BuildGroupTable([]GroupElement{
		{ID: "g1", Type: "port-group", Members: []string{"22"}},
		{ID: "", Type: "port-group", Members: []string{"23"}},
		{ID: "g2", Type: "mystery-group", Members: []string{"x"}},
		{ID: "g3", Type: "ipv6-address-group", Members: []string{"2001:db8::/32"}},
	})
	if len(table) != 2 {
		t.Fatalf("expected 2 usable groups, got %d", len(table))
	}
	if _, ok := table.PortSpec("g1"); !ok {
		t.Errorf("port group g1 should resolve")
	}
	if _, ok := table.PortSpec("g3"); ok {
		t.Errorf("an address group must not resolve as a port spec")
	}
	if members, ok := table.Addresses("g3"); !ok || len(members) != 1 {
		t.Errorf("ipv6 address group should resolve to its members")
	}
	if _, ok := table.Addresses("missing"); ok {
		t.Errorf("unknown ids must not resolve")
	}
}
