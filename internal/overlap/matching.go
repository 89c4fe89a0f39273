package overlap

import "firewall-policy-auditor/internal/model"

// matchingOverlap decides whether two value lists with inversion flags can
// match a common element. elemsOverlap reports whether two listed elements
// can name the same thing; contains reports whether elem lies entirely
// inside container (for plain identifiers this is equality, for IPs it is
// CIDR containment).
//
// An empty list matches everything regardless of its inversion flag, so it
// overlaps anything.
//
//   - both normal: some pair of elements overlaps.
//   - both inverted: always true. Two "everyone except a finite set"
//     predicates must share an element.
//   - one inverted: true unless every element of the normal list is
//     contained in the inverted list's exclusions.
func matchingOverlap[T comparable](
	a, b model.Matching[T],
	elemsOverlap func(x, y T) bool,
	contains func(elem, container T) bool,
) bool {
	if len(a.Values) == 0 || len(b.Values) == 0 {
		return true
	}
	switch {
	case !a.Inverted && !b.Inverted:
		for _, x := range a.Values {
			for _, y := range b.Values {
				if elemsOverlap(x, y) {
					return true
				}
			}
		}
		return false
	case a.Inverted && b.Inverted:
		return true
	default:
		normal, inverted := a, b
		if a.Inverted {
			normal, inverted = b, a
		}
		for _, n := range normal.Values {
			if !coveredBy(n, inverted.Values, contains) {
				return true
			}
		}
		return false
	}
}

func coveredBy[T comparable](elem T, exclusions []T, contains func(elem, container T) bool) bool {
	for _, ex := range exclusions {
		if contains(elem, ex) {
			return true
		}
	}
	return false
}

func equalElems[T comparable](x, y T) bool { return x == y }
