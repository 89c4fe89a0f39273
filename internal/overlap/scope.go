package overlap

import (
	"firewall-policy-auditor/internal/model"
	"firewall-policy-auditor/internal/netutil"
)

// Scope-narrowness scoring distinguishes an intentional narrow exception
// (a tight allow carved out before a broad deny) from a true shadowing
// conflict. Lower scores mean narrower matching.
//
// The constants are monotone by construction: a fully-bonused IP endpoint
// (1+1+1) still scores below NETWORK, and ANY is a fixed maximum above
// everything else.
const (
	scoreHost    = 0 // CLIENT, WEB, APP: individual hosts, domains, apps
	scoreIP      = 1
	scoreNetwork = 4
	scoreAny     = 6

	longIPListLen  = 4  // lists longer than this get a breadth bonus
	wideCIDRPrefix = 24 // prefixes shorter than this get a breadth bonus
)

// EndpointScore estimates how broadly one endpoint matches.
func EndpointScore(e model.Endpoint) int {
	switch e.Target {
	case model.TargetClient, model.TargetWeb, model.TargetApp:
		return scoreHost
	case model.TargetIP:
		score := scoreIP
		if len(e.IPs.Values) > longIPListLen {
			score++
		}
		if hasWideCIDR(e.IPs.Values) {
			score++
		}
		return score
	case model.TargetNetwork:
		return scoreNetwork
	case model.TargetAny:
		return scoreAny
	}
	return scoreAny
}

func hasWideCIDR(values []string) bool {
	for _, v := range values {
		if width, ok := netutil.PrefixWidth(v); ok && width < wideCIDRPrefix {
			return true
		}
	}
	return false
}

// IsNarrowerScope reports whether rule a matches meaningfully narrower
// traffic than rule b: either its combined score sits at least two points
// below b's, or one side is strictly narrower while the other is no
// broader.
func IsNarrowerScope(a, b *model.Rule) bool {
	aSrc, aDst := EndpointScore(a.Source), EndpointScore(a.Destination)
	bSrc, bDst := EndpointScore(b.Source), EndpointScore(b.Destination)
	if aSrc+aDst <= bSrc+bDst-2 {
		return true
	}
	if aSrc < bSrc && aDst <= bDst {
		return true
	}
	if aDst < bDst && aSrc <= bSrc {
		return true
	}
	return false
}
