package engine

import (
	"firewall-policy-auditor/internal/model"
	"firewall-policy-auditor/internal/overlap"
)

// ShadowFinding reports a legacy flat rule that an earlier, broader rule
// with the same action renders redundant.
type ShadowFinding struct {
	Rule       *model.Rule
	ShadowedBy *model.Rule
}

// FindShadowedRules runs the display-oriented shadow heuristic over legacy
// flat rules: a rule is shadowed when an earlier enabled rule in the same
// ruleset carries the same action and is at least as broad on both sides.
// This is intentionally cruder than the overlap engine; it is a quick
// report signal, not an exact reachability proof.
func FindShadowedRules(rules []*model.Rule) []ShadowFinding {
	ordered := matchingByIndex(rules, nil)
	var findings []ShadowFinding
	for i, later := range ordered {
		for _, earlier := range ordered[:i] {
			if earlier.Index >= later.Index {
				continue
			}
			if earlier.Ruleset != later.Ruleset || earlier.Action != later.Action {
				continue
			}
			if !overlap.IsNarrowerScope(later, earlier) {
				continue
			}
			findings = append(findings, ShadowFinding{Rule: later, ShadowedBy: earlier})
			break
		}
	}
	return findings
}
