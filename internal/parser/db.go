package parser

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"firewall-policy-auditor/internal/model"

	_ "github.com/go-sql-driver/mysql"
)

// MariaDBProvider loads a rule set from a MariaDB mirror of the gateway
// configuration. Each table stores one JSON document per row, in the same
// shape the file dump uses.
type MariaDBProvider struct {
	db   *sql.DB
	dump ConfigDump
}

func NewMariaDBProvider(dsn string) (*MariaDBProvider, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return &MariaDBProvider{db: db}, nil
}

func (p *MariaDBProvider) Close() {
	p.db.Close()
}

// Parse loads every configuration table. Rows whose documents do not
// decode are skipped, mirroring the parser's skip-on-malformed contract.
func (p *MariaDBProvider) Parse() error {
	if err := loadDocs(p.db, "cfg_firewall_group", &p.dump.FirewallGroups); err != nil {
		return fmt.Errorf("failed to load firewall groups: %w", err)
	}
	if err := loadDocs(p.db, "cfg_firewall_rule", &p.dump.FirewallRules); err != nil {
		return fmt.Errorf("failed to load firewall rules: %w", err)
	}
	if err := loadDocs(p.db, "cfg_firewall_policy", &p.dump.FirewallPolicies); err != nil {
		return fmt.Errorf("failed to load firewall policies: %w", err)
	}
	if err := loadDocs(p.db, "cfg_combined_rule", &p.dump.CombinedTrafficRules); err != nil {
		return fmt.Errorf("failed to load combined traffic rules: %w", err)
	}
	return nil
}

// Rules canonicalizes the loaded configuration.
func (p *MariaDBProvider) Rules() []*model.Rule {
	return p.dump.Rules()
}

func loadDocs[T any](db *sql.DB, table string, out *[]T) error {
	rows, err := db.Query("SELECT doc FROM " + table + " ORDER BY id ASC")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return err
		}
		var el T
		if err := json.Unmarshal([]byte(doc), &el); err != nil {
			continue
		}
		*out = append(*out, el)
	}
	return rows.Err()
}
