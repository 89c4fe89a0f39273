package model

// Action is what a rule does with traffic it matches.
type Action string

const (
	ActionAccept Action = "accept"
	ActionDrop   Action = "drop"
	ActionReject Action = "reject"
)

// Blocks reports whether the action stops traffic.
func (a Action) Blocks() bool {
	return a == ActionDrop || a == ActionReject
}

// Protocol is the transport protocol a rule matches.
type Protocol string

const (
	ProtoTCP    Protocol = "tcp"
	ProtoUDP    Protocol = "udp"
	ProtoTCPUDP Protocol = "tcp_udp"
	ProtoICMP   Protocol = "icmp"
	ProtoAll    Protocol = "all"
)

// PortBearing reports whether the protocol carries port numbers.
func (p Protocol) PortBearing() bool {
	return p == ProtoTCP || p == ProtoUDP || p == ProtoTCPUDP
}

// MatchTarget selects how one side of a rule identifies traffic.
// CLIENT is valid only on the source side; WEB and APP only on the
// destination side.
type MatchTarget string

const (
	TargetAny     MatchTarget = "ANY"
	TargetNetwork MatchTarget = "NETWORK"
	TargetIP      MatchTarget = "IP"
	TargetClient  MatchTarget = "CLIENT"
	TargetWeb     MatchTarget = "WEB"
	TargetApp     MatchTarget = "APP"
)

// Zone is a coarse traffic-direction label. v2 policies carry explicit
// zone ids; legacy rules get one synthesized from the ruleset name.
type Zone string

const (
	ZoneInternal Zone = "internal"
	ZoneExternal Zone = "external"
	ZoneGateway  Zone = "gateway"
)

// Matching pairs a value list with its inversion flag. Inverted means the
// rule matches everything except the listed values. One representation is
// shared by network ids, IP lists, and expanded port sets so the
// inverted-overlap algorithm is written once.
type Matching[T comparable] struct {
	Values   []T
	Inverted bool
}

// Endpoint is one side (source or destination) of a rule.
type Endpoint struct {
	Target MatchTarget

	// Exactly one of these carries values, selected by Target. The zero
	// values of the others are harmless: matching code switches on Target.
	Networks   Matching[string] // NETWORK: network config ids
	IPs        Matching[string] // IP: addresses or IPv4 CIDRs
	ClientMACs []string         // CLIENT (source only)
	WebDomains []string         // WEB (destination only)
	AppIDs     []int            // APP (destination only)

	// Port is the raw port specification ("443", "80,443,8000-8005", "").
	// Empty means all ports.
	Port         string
	PortInverted bool

	Zone Zone
}

// Rule is the canonical record every layer above the parser consumes.
// Instances are built once and never mutated.
type Rule struct {
	ID         string
	Name       string
	Enabled    bool
	Index      int
	Predefined bool

	Action   Action
	Protocol Protocol
	// ProtocolInverted matches everything except Protocol.
	ProtocolInverted bool

	// EstablishedOnly marks rules that apply only to established/related
	// traffic, never to new connections.
	EstablishedOnly bool

	Source      Endpoint
	Destination Endpoint

	// ICMPTypeName is meaningful only when Protocol is icmp. Empty or
	// "any" matches every type.
	ICMPTypeName string

	// Ruleset is the legacy chain name (WAN_IN, LAN_LOCAL, ...). Used only
	// for zone synthesis and reporting.
	Ruleset string
	// HitCount is informational only.
	HitCount int
}

// EvaluationResult reports the outcome of evaluating one traffic pattern
// against an ordered rule set. Created per call; never persisted.
type EvaluationResult struct {
	// Effective is the rule that takes effect, nil when no rule matches
	// and the device default policy applies.
	Effective *Rule
	// EclipsedBlock is a later block rule that matches the same traffic
	// but never fires because Effective allows it first. Nil when none.
	EclipsedBlock *Rule
	// EclipsedAllow is the symmetric case: a later allow rule shadowed by
	// an effective block.
	EclipsedAllow *Rule
}
