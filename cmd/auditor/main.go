package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"firewall-policy-auditor/internal/engine"
	"firewall-policy-auditor/internal/model"
	"firewall-policy-auditor/internal/overlap"
	"firewall-policy-auditor/internal/parser"
	"firewall-policy-auditor/pkg/wellknown"

	"github.com/spf13/cobra"
)

var (
	ruleProvider string
	rulesFile    string
	rulesDB      string
	outFile      string
	shadowFile   string
	workers      int
	logLevel     string
	logFile      string

	evalSrcIP    string
	evalDstIP    string
	evalPort     string
	evalProtocol string
	evalICMPType string
	established  bool
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "firewall-policy-auditor",
		Short: "A static firewall policy conflict auditor",
		Long: `firewall-policy-auditor loads a gateway's firewall configuration,
	canonicalizes legacy rules and zone-based policies into one representation,
	and reports overlapping, shadowed, and eclipsed rules.`,
		RunE: run,
	}

	rootCmd.Flags().StringVar(&ruleProvider, "provider", "file", "Rule provider type: 'file' or 'mariadb'")
	rootCmd.Flags().StringVar(&rulesFile, "rules", "", "Configuration dump JSON file (for 'file' provider)")
	rootCmd.Flags().StringVar(&rulesDB, "db", "", "Database connection string (for 'mariadb' provider)")
	rootCmd.Flags().StringVar(&outFile, "out", "overlaps.csv", "Output CSV file for overlapping rule pairs")
	rootCmd.Flags().StringVar(&shadowFile, "shadowed", "shadowed.csv", "Output CSV file for shadowed legacy rules")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", runtime.NumCPU(), "Number of concurrent workers")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "Log file path (default: stderr)")

	// Single-pattern evaluation flags
	rootCmd.Flags().StringVar(&evalSrcIP, "src-ip", "", "Source IP for single-pattern evaluation")
	rootCmd.Flags().StringVar(&evalDstIP, "dst-ip", "", "Destination IP for single-pattern evaluation")
	rootCmd.Flags().StringVar(&evalPort, "port", "", "Destination port or well-known service name")
	rootCmd.Flags().StringVar(&evalProtocol, "protocol", "", "Protocol for single-pattern evaluation (tcp, udp, icmp)")
	rootCmd.Flags().StringVar(&evalICMPType, "icmp-type", "", "ICMP type name for single-pattern evaluation")
	rootCmd.Flags().BoolVar(&established, "established", false, "Evaluate as established/related return traffic instead of a new connection")

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger := setupLogger(logLevel, logFile)
	slog.SetDefault(logger)

	slog.Info("Starting firewall policy auditor", "version", "1.0")

	slog.Info("Loading rule set...", "provider", ruleProvider)
	rules, err := loadRules(ruleProvider, rulesFile, rulesDB)
	if err != nil {
		slog.Error("Failed to load rule set", "error", err)
		return err
	}
	slog.Info("Successfully loaded rule set", "count", len(rules))

	if evalSrcIP != "" || evalDstIP != "" || evalPort != "" || evalProtocol != "" ||
		evalICMPType != "" || established {
		return runEvaluation(rules)
	}
	return runAnalysis(rules)
}

// runEvaluation answers which rule takes effect for one traffic pattern
// and whether a later rule is eclipsed by it.
func runEvaluation(rules []*model.Rule) error {
	traffic, err := trafficFromFlags()
	if err != nil {
		slog.Error("Invalid traffic pattern", "error", err)
		return err
	}

	result := engine.Evaluate(rules, func(r *model.Rule) bool {
		return overlap.MatchesTraffic(r, traffic)
	}, traffic.NewConnection)

	if label, ok := wellknown.Label(traffic.Port, traffic.Protocol); ok {
		slog.Info("Traffic pattern", "src_ip", traffic.SrcIP, "dst_ip", traffic.DstIP,
			"port", traffic.Port, "protocol", string(traffic.Protocol), "service", label)
	} else {
		slog.Info("Traffic pattern", "src_ip", traffic.SrcIP, "dst_ip", traffic.DstIP,
			"port", traffic.Port, "protocol", string(traffic.Protocol))
	}

	if result.Effective == nil {
		slog.Info("No rule takes effect; the device default policy decides")
		return nil
	}
	slog.Info("Effective rule", "id", result.Effective.ID, "name", result.Effective.Name,
		"index", result.Effective.Index, "action", string(result.Effective.Action))
	if result.EclipsedBlock != nil {
		slog.Warn("Eclipsed block rule", "id", result.EclipsedBlock.ID,
			"name", result.EclipsedBlock.Name, "index", result.EclipsedBlock.Index)
	}
	if result.EclipsedAllow != nil {
		slog.Warn("Eclipsed allow rule", "id", result.EclipsedAllow.ID,
			"name", result.EclipsedAllow.Name, "index", result.EclipsedAllow.Index)
	}
	return nil
}

type rulePair struct {
	a, b *model.Rule
}

type overlapFinding struct {
	a, b            *model.Rule
	narrowException bool
}

// runAnalysis enumerates rule pairs over a worker pool and writes the
// overlap and shadow reports.
func runAnalysis(rules []*model.Rule) error {
	startTime := time.Now()
	pairs := make(chan rulePair, workers*16)
	findings := make(chan overlapFinding, workers*16)
	var wg sync.WaitGroup

	slog.Info("Starting overlap workers", "count", workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go overlapWorker(&wg, pairs, findings)
	}

	var writerWg sync.WaitGroup
	writerWg.Add(1)
	var writerErr error
	go func() {
		defer writerWg.Done()
		writerErr = writeOverlaps(findings, outFile)
	}()

	go func() {
		for i := 0; i < len(rules); i++ {
			for j := i + 1; j < len(rules); j++ {
				pairs <- rulePair{a: rules[i], b: rules[j]}
			}
		}
		close(pairs)
	}()

	wg.Wait()
	close(findings)
	writerWg.Wait()
	if writerErr != nil {
		slog.Error("Failed to write overlap report", "error", writerErr)
		return writerErr
	}

	shadowed := engine.FindShadowedRules(rules)
	if err := writeShadowed(shadowed, shadowFile); err != nil {
		slog.Error("Failed to write shadow report", "error", err)
		return err
	}

	slog.Info("Analysis complete", "rules", len(rules), "shadowed", len(shadowed),
		"duration", time.Since(startTime))
	return nil
}

func overlapWorker(wg *sync.WaitGroup, pairs <-chan rulePair, findings chan<- overlapFinding) {
	defer wg.Done()
	for pair := range pairs {
		if !overlap.RulesOverlap(pair.a, pair.b) {
			continue
		}
		findings <- overlapFinding{
			a: pair.a,
			b: pair.b,
			narrowException: overlap.IsNarrowerScope(pair.a, pair.b) ||
				overlap.IsNarrowerScope(pair.b, pair.a),
		}
	}
}

func writeOverlaps(findings <-chan overlapFinding, path string) error {
	// Workers block sending on findings, so the channel must be drained
	// even when the report cannot be written.
	defer func() {
		for range findings {
		}
	}()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"rule_a_id", "rule_a_name", "rule_a_index", "rule_a_action",
		"rule_b_id", "rule_b_name", "rule_b_index", "rule_b_action", "narrow_exception"}
	if err := w.Write(header); err != nil {
		return err
	}

	count := 0
	for finding := range findings {
		record := []string{
			finding.a.ID, finding.a.Name, strconv.Itoa(finding.a.Index), string(finding.a.Action),
			finding.b.ID, finding.b.Name, strconv.Itoa(finding.b.Index), string(finding.b.Action),
			strconv.FormatBool(finding.narrowException),
		}
		if err := w.Write(record); err != nil {
			return err
		}
		count++
	}
	slog.Info("Overlap report written", "path", path, "overlapping_pairs", count)
	return nil
}

func writeShadowed(findings []engine.ShadowFinding, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"rule_id", "rule_name", "rule_index", "ruleset",
		"shadowed_by_id", "shadowed_by_name", "shadowed_by_index"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, finding := range findings {
		record := []string{
			finding.Rule.ID, finding.Rule.Name, strconv.Itoa(finding.Rule.Index), finding.Rule.Ruleset,
			finding.ShadowedBy.ID, finding.ShadowedBy.Name, strconv.Itoa(finding.ShadowedBy.Index),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	slog.Info("Shadow report written", "path", path, "shadowed_rules", len(findings))
	return nil
}

func trafficFromFlags() (overlap.Traffic, error) {
	traffic := overlap.Traffic{
		SrcIP:         evalSrcIP,
		DstIP:         evalDstIP,
		ICMPType:      evalICMPType,
		NewConnection: !established,
	}

	switch strings.ToLower(evalProtocol) {
	case "":
	case "tcp":
		traffic.Protocol = model.ProtoTCP
	case "udp":
		traffic.Protocol = model.ProtoUDP
	case "icmp":
		traffic.Protocol = model.ProtoICMP
	default:
		return traffic, fmt.Errorf("unknown protocol: %s", evalProtocol)
	}

	if evalPort != "" {
		port, err := strconv.Atoi(evalPort)
		if err != nil {
			entries, ok := wellknown.GetService(evalPort)
			if !ok || len(entries) == 0 {
				return traffic, fmt.Errorf("unknown port or service: %s", evalPort)
			}
			port = entries[0].Port
			if traffic.Protocol == "" {
				traffic.Protocol = entries[0].Protocol
			}
		}
		traffic.Port = port
	}
	return traffic, nil
}

func setupLogger(level, logFilePath string) *slog.Logger {
	var logWriter io.Writer = os.Stderr
	if logFilePath != "" {
		f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err == nil {
			logWriter = f
		}
		// The logger isn't set up yet, so a failure here just falls back
		// to stderr.
	}

	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "INFO":
		lvl = slog.LevelInfo
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(logWriter, &slog.HandlerOptions{Level: lvl}))
}

func loadRules(provider, rulesPath, dbConnStr string) ([]*model.Rule, error) {
	switch provider {
	case "file":
		if rulesPath == "" {
			return nil, fmt.Errorf("rules file path must be provided for file provider")
		}
		file, err := os.Open(rulesPath)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		dump, err := parser.LoadDump(file)
		if err != nil {
			return nil, err
		}
		return dump.Rules(), nil
	case "mariadb":
		if dbConnStr == "" {
			return nil, fmt.Errorf("database connection string must be provided for mariadb provider")
		}
		p, err := parser.NewMariaDBProvider(dbConnStr)
		if err != nil {
			return nil, err
		}
		defer p.Close()
		if err := p.Parse(); err != nil {
			return nil, err
		}
		return p.Rules(), nil
	default:
		return nil, fmt.Errorf("unknown rule provider: %s", provider)
	}
}
