package wellknown

import (
	"bytes"
	"encoding/csv"
	"io"
	"log"
	"strconv"
	"strings"

	_ "embed"

	"firewall-policy-auditor/internal/model"
)

//go:embed well_known_ports.csv
var wellKnownPortsData string

type ServiceEntry struct {
	Protocol model.Protocol
	Port     int
}

var (
	serviceRegistry map[string][]ServiceEntry
	labelRegistry   map[string]string
)

func init() {
	serviceRegistry = make(map[string][]ServiceEntry)
	labelRegistry = make(map[string]string)

	reader := csv.NewReader(bytes.NewBufferString(wellKnownPortsData))
	reader.TrimLeadingSpace = true
	// Skip header
	if _, err := reader.Read(); err != nil {
		log.Fatalf("Failed to read header from embedded well_known_ports.csv: %v", err)
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Failed to parse embedded well_known_ports.csv: %v", err)
		}
		if len(record) < 3 {
			continue
		}

		port, err := strconv.Atoi(record[0])
		if err != nil {
			continue
		}
		register(strings.TrimSpace(record[1]), model.ProtoTCP, port)
		register(strings.TrimSpace(record[2]), model.ProtoUDP, port)
	}
}

func register(name string, protocol model.Protocol, port int) {
	if name == "" || name == "N/A" {
		return
	}
	entry := ServiceEntry{Protocol: protocol, Port: port}
	serviceRegistry[strings.ToUpper(name)] = append(serviceRegistry[strings.ToUpper(name)], entry)
	labelRegistry[labelKey(port, protocol)] = name
	// Common alias for DNS
	if name == "domain" {
		serviceRegistry["DNS"] = append(serviceRegistry["DNS"], entry)
	}
}

// GetService returns the port and protocol entries for a well-known
// service name.
func GetService(name string) ([]ServiceEntry, bool) {
	entry, ok := serviceRegistry[strings.ToUpper(name)]
	return entry, ok
}

// Label returns the service name registered for a port and protocol, for
// report annotation.
func Label(port int, protocol model.Protocol) (string, bool) {
	name, ok := labelRegistry[labelKey(port, protocol)]
	return name, ok
}

func labelKey(port int, protocol model.Protocol) string {
	return string(protocol) + ":" + strconv.Itoa(port)
}
