package overlap

import (
	"testing"

	"firewall-policy-auditor/internal/model"
)

func TestEndpointScoreMonotone(t *testing.T) {
	client := model.Endpoint{Target: model.TargetClient, ClientMACs: []string{"aa:bb:cc:dd:ee:ff"}}
	ip := model.Endpoint{Target: model.TargetIP, IPs: model.Matching[string]{Values: []string{"10.0.0.5"}}}
	longIPs := model.Endpoint{Target: model.TargetIP, IPs: model.Matching[string]{
		Values: []string{"10.0.0.1", "10.0.0.2", "10.0.0.3", "10.0.0.4", "10.0.0.5"},
	}}
	wideCIDR := model.Endpoint{Target: model.TargetIP, IPs: model.Matching[string]{Values: []string{"10.0.0.0/8"}}}
	network := model.Endpoint{Target: model.TargetNetwork, Networks: model.Matching[string]{Values: []string{"n1"}}}
	any := model.Endpoint{Target: model.TargetAny}

	ladder := []struct {
		name string
		ep   model.Endpoint
	}{
		{"client", client},
		{"single ip", ip},
		{"long ip list", longIPs},
		{"network", network},
		{"any", any},
	}
	for i := 1; i < len(ladder); i++ {
		if EndpointScore(ladder[i-1].ep) >= EndpointScore(ladder[i].ep) {
			t.Errorf("expected %s (%d) to score below %s (%d)",
				ladder[i-1].name, EndpointScore(ladder[i-1].ep),
				ladder[i].name, EndpointScore(ladder[i].ep))
		}
	}

	if EndpointScore(wideCIDR) <= EndpointScore(ip) {
		t.Errorf("a /8 CIDR should score above a single host")
	}
	if EndpointScore(wideCIDR) >= EndpointScore(network) {
		t.Errorf("even a bonused IP endpoint should score below NETWORK")
	}
}

func TestIsNarrowerScope(t *testing.T) {
	narrow := &model.Rule{
		Source:      model.Endpoint{Target: model.TargetIP, IPs: model.Matching[string]{Values: []string{"10.0.0.5"}}},
		Destination: model.Endpoint{Target: model.TargetIP, IPs: model.Matching[string]{Values: []string{"192.168.1.10"}}},
	}
	broad := &model.Rule{
		Source:      model.Endpoint{Target: model.TargetAny},
		Destination: model.Endpoint{Target: model.TargetAny},
	}

	if !IsNarrowerScope(narrow, broad) {
		t.Fatalf("host-to-host rule should be narrower than any-to-any")
	}
	if IsNarrowerScope(broad, narrow) {
		t.Fatalf("any-to-any rule is not narrower than host-to-host")
	}
	if IsNarrowerScope(broad, broad) {
		t.Fatalf("a rule is not narrower than itself")
	}
}

func TestIsNarrowerScopeOneDimension(t *testing.T) {
	// Same destination breadth, strictly narrower source: still narrower.
	a := &model.Rule{
		Source:      model.Endpoint{Target: model.TargetIP, IPs: model.Matching[string]{Values: []string{"10.0.0.5"}}},
		Destination: model.Endpoint{Target: model.TargetAny},
	}
	b := &model.Rule{
		Source:      model.Endpoint{Target: model.TargetNetwork, Networks: model.Matching[string]{Values: []string{"n1"}}},
		Destination: model.Endpoint{Target: model.TargetAny},
	}
	if !IsNarrowerScope(a, b) {
		t.Fatalf("strictly narrower source with equal destination should qualify")
	}

	// Narrower source but broader destination: not narrower.
	c := &model.Rule{
		Source:      model.Endpoint{Target: model.TargetIP, IPs: model.Matching[string]{Values: []string{"10.0.0.5"}}},
		Destination: model.Endpoint{Target: model.TargetAny},
	}
	d := &model.Rule{
		Source:      model.Endpoint{Target: model.TargetAny},
		Destination: model.Endpoint{Target: model.TargetIP, IPs: model.Matching[string]{Values: []string{"192.168.1.10"}}},
	}
	if IsNarrowerScope(c, d) {
		t.Fatalf("trading one narrower side for one broader side is not narrower")
	}
}
