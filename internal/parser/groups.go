package parser

import "strings"

// GroupType classifies a firewall group definition.
type GroupType string

const (
	GroupPort      GroupType = "port-group"
	GroupAddress   GroupType = "address-group"
	GroupAddressV6 GroupType = "ipv6-address-group"
)

// Group is one resolvable group definition.
type Group struct {
	Type    GroupType
	Members []string
}

// GroupTable maps group ids to their definitions. It is supplied by the
// caller and treated as a read-only snapshot during one parse pass; the
// parser never mutates it, so concurrent parses can share one table.
type GroupTable map[string]Group

// PortSpec resolves a port-group id into a comma-separated port
// specification. Unknown ids and non-port groups report ok=false.
func (t GroupTable) PortSpec(id string) (string, bool) {
	g, ok := t[id]
	if !ok || g.Type != GroupPort {
		return "", false
	}
	return strings.Join(g.Members, ","), true
}

// Addresses resolves an address-group id into its member IP/CIDR list.
// IPv6 address groups resolve too; their members simply never match by
// containment since CIDR arithmetic is IPv4-only.
func (t GroupTable) Addresses(id string) ([]string, bool) {
	g, ok := t[id]
	if !ok || (g.Type != GroupAddress && g.Type != GroupAddressV6) {
		return nil, false
	}
	return g.Members, true
}

// GroupElement is the wire shape of one firewall group definition.
type GroupElement struct {
	ID      string   `json:"_id"`
	Name    string   `json:"name"`
	Type    string   `json:"group_type"`
	Members []string `json:"group_members"`
}

// BuildGroupTable indexes group elements by id. Elements without an id or
// with an unknown type are skipped.
func BuildGroupTable(elements []GroupElement) GroupTable {
	table := make(GroupTable, len(elements))
	for _, el := range elements {
		if el.ID == "" {
			continue
		}
		switch GroupType(el.Type) {
		case GroupPort, GroupAddress, GroupAddressV6:
			table[el.ID] = Group{Type: GroupType(el.Type), Members: el.Members}
		}
	}
	return table
}
