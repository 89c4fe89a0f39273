package engine

import (
	"sort"

	"firewall-policy-auditor/internal/model"
)

// MatchFunc decides whether one rule matches the traffic being evaluated.
// Callers typically build it from the overlap package's traffic matching.
type MatchFunc func(*model.Rule) bool

// Evaluate determines which rule takes effect for traffic matched by the
// predicate, under strict ascending-index priority, and flags eclipsed
// rules. newConnection marks the traffic as a connection attempt: allow
// rules licensing only established/related traffic cannot make it the
// effective rule, and are skipped until a block rule or a genuine
// new-connection allow is found.
//
// The call is pure: it never mutates the rule list and retains no state.
func Evaluate(rules []*model.Rule, matches MatchFunc, newConnection bool) model.EvaluationResult {
	ordered := matchingByIndex(rules, matches)

	var effective *model.Rule
	for _, r := range ordered {
		if newConnection && r.Action == model.ActionAccept && r.EstablishedOnly {
			continue
		}
		effective = r
		break
	}

	result := model.EvaluationResult{Effective: effective}
	if effective == nil {
		// No rule qualifies; the device default policy (unmodeled here)
		// decides.
		return result
	}

	if effective.Action == model.ActionAccept {
		result.EclipsedBlock = firstAfter(ordered, effective, func(r *model.Rule) bool {
			return r.Action.Blocks() && !r.EstablishedOnly
		})
	} else {
		result.EclipsedAllow = firstAfter(ordered, effective, func(r *model.Rule) bool {
			return r.Action == model.ActionAccept && !r.EstablishedOnly
		})
	}
	return result
}

// matchingByIndex filters to enabled matching rules and sorts ascending by
// index, keeping original order for equal indexes.
func matchingByIndex(rules []*model.Rule, matches MatchFunc) []*model.Rule {
	var ordered []*model.Rule
	for _, r := range rules {
		if r == nil || !r.Enabled {
			continue
		}
		if matches != nil && !matches(r) {
			continue
		}
		ordered = append(ordered, r)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Index < ordered[j].Index
	})
	return ordered
}

// firstAfter returns the first rule with a strictly higher index than the
// effective rule that satisfies pred.
func firstAfter(ordered []*model.Rule, effective *model.Rule, pred func(*model.Rule) bool) *model.Rule {
	for _, r := range ordered {
		if r.Index <= effective.Index {
			continue
		}
		if pred(r) {
			return r
		}
	}
	return nil
}
