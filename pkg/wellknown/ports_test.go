package wellknown

import (
	"testing"

	"firewall-policy-auditor/internal/model"
)

func TestGetServiceReturnsDNSAliases(t *testing.T) {
	// This test ensures DNS aliases map to the expected port/protocol entries.
	entries, ok := GetService("dns")
	if !ok {
		t.Fatalf("expected dns to be present in well-known service registry")
	}
	if !containsPort(entries, 53, model.ProtoTCP) && !containsPort(entries, 53, model.ProtoUDP) {
		t.Fatalf("expected DNS to include port 53 over tcp or udp, got %#v", entries)
	}
}

func TestGetServiceIsCaseInsensitive(t *testing.T) {
	lower, okLower := GetService("https")
	upper, okUpper := GetService("HTTPS")
	if !okLower || !okUpper {
		t.Fatalf("expected https lookups to succeed regardless of case")
	}
	if len(lower) != len(upper) {
		t.Fatalf("case variants returned different entries")
	}
}

func TestGetServiceReturnsFalseForUnknown(t *testing.T) {
	if _, ok := GetService("definitely-not-a-service"); ok {
		t.Fatalf("expected unknown service to return ok=false")
	}
}

func TestLabelRoundTrip(t *testing.T) {
	label, ok := Label(443, model.ProtoTCP)
	if !ok || label != "https" {
		t.Fatalf("expected 443/tcp to label as https, got %q ok=%v", label, ok)
	}
	if _, ok := Label(49152, model.ProtoTCP); ok {
		t.Fatalf("expected an ephemeral port to have no label")
	}
}

func containsPort(entries []ServiceEntry, port int, protocol model.Protocol) bool {
	for _, entry := range entries {
		if entry.Port == port && entry.Protocol == protocol {
			return true
		}
	}
	return false
}
