package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/anvil-ai/cacheforge-skills/pkg/presenter"
	"github.com/anvil-ai/cacheforge-skills/pkg/promrules"
)

// RulesConfig holds configuration for the rules audit
type RulesConfig struct {
	Timeout    time.Duration
	JSONOutput bool
}

// NewRulesConfig creates a new RulesConfig with default values
func NewRulesConfig() *RulesConfig {
	return &RulesConfig{
		Timeout:    30 * time.Second,
		JSONOutput: false,
	}
}

var rulesCmd = &cobra.Command{
	Use:   "rules FILE...",
	Short: "Check rule files and inventory their groups",
	Long: `Run promtool check rules on each file and inventory the YAML: rule
groups, alerting vs recording rule counts, and alerts missing a summary
annotation.

Exits nonzero when any file fails the promtool check.

Example:
  prom-audit rules alerts.yml
  prom-audit rules rules/*.yml --json`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		config := getRulesConfigFromFlags(cmd)
		runRulesAudit(ctx, config, args)
	},
}

func init() {
	rulesDefaults := NewRulesConfig()
	rulesCmd.Flags().Duration("timeout", rulesDefaults.Timeout, "Timeout per promtool invocation")
	rulesCmd.Flags().Bool("json", rulesDefaults.JSONOutput, "Emit the audit as JSON instead of Markdown")
}

// getRulesConfigFromFlags extracts rules audit configuration from command flags
func getRulesConfigFromFlags(cmd *cobra.Command) *RulesConfig {
	config := NewRulesConfig()

	if timeout, err := cmd.Flags().GetDuration("timeout"); err == nil {
		config.Timeout = timeout
	}
	if jsonOutput, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSONOutput = jsonOutput
	}

	return config
}

func runRulesAudit(ctx context.Context, config *RulesConfig, paths []string) {
	audit, err := promrules.AuditRules(ctx, paths, config.Timeout)
	if audit == nil {
		presenter.Error(err, "Rules audit failed")
		os.Exit(1)
	}
	if err != nil {
		presenter.Warning(fmt.Sprintf("Some files could not be checked: %v", err))
	}

	printAudit(audit, config.JSONOutput)

	if err != nil || !audit.AllPassed() {
		os.Exit(1)
	}
}

func printAudit(audit *promrules.Audit, jsonOutput bool) {
	if jsonOutput {
		data, err := json.MarshalIndent(audit, "", "  ")
		if err != nil {
			presenter.Error(err, "Failed to encode audit")
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}
	fmt.Print(audit.Markdown())
}
