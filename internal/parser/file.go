package parser

import (
	"encoding/json"
	"fmt"
	"io"

	"firewall-policy-auditor/internal/model"
)

// ConfigDump is a gateway configuration export: flat rules, zone-based
// policies, app-based combined-traffic rules, and the group definitions
// they reference.
type ConfigDump struct {
	FirewallRules        []LegacyRuleElement      `json:"firewall_rules"`
	FirewallPolicies     []PolicyElement          `json:"firewall_policies"`
	CombinedTrafficRules []CombinedTrafficElement `json:"combined_traffic_rules"`
	FirewallGroups       []GroupElement           `json:"firewall_groups"`
}

// LoadDump decodes a configuration export.
func LoadDump(r io.Reader) (*ConfigDump, error) {
	var dump ConfigDump
	if err := json.NewDecoder(r).Decode(&dump); err != nil {
		return nil, fmt.Errorf("failed to decode configuration dump: %w", err)
	}
	return &dump, nil
}

// Rules canonicalizes every element in the dump. Malformed elements are
// skipped; the group table is built once and shared across the pass.
func (d *ConfigDump) Rules() []*model.Rule {
	groups := BuildGroupTable(d.FirewallGroups)
	var rules []*model.Rule
	for _, el := range d.FirewallRules {
		if r, ok := ParseLegacyRule(el, groups); ok {
			rules = append(rules, r)
		}
	}
	for _, el := range d.FirewallPolicies {
		if r, ok := ParsePolicy(el, groups); ok {
			rules = append(rules, r)
		}
	}
	for _, el := range d.CombinedTrafficRules {
		if r, ok := ParseCombinedTrafficRule(el, groups); ok {
			rules = append(rules, r)
		}
	}
	return rules
}
