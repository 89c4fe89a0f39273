package parser

import (
	"crypto/rand"
	"encoding/hex"
)

// generateRuleID synthesizes a unique id for elements that omit one. The
// parser stays stateless; uniqueness comes from randomness, not a counter.
func generateRuleID() string {
	var b [8]byte
	rand.Read(b[:])
	return "rule-" + hex.EncodeToString(b[:])
}
