package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/anvil-ai/cacheforge-skills/pkg/presenter"
	"github.com/anvil-ai/cacheforge-skills/pkg/promrules"
)

var configCmd = &cobra.Command{
	Use:   "config FILE",
	Short: "Check a Prometheus config file",
	Long: `Run promtool check config on a prometheus.yml and report the result.

Example:
  prom-audit config prometheus.yml`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		timeout, _ := cmd.Flags().GetDuration("timeout")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		audit, err := promrules.AuditConfig(ctx, args[0], timeout)
		if err != nil {
			presenter.Error(err, "Config audit failed")
			os.Exit(1)
		}

		printAudit(audit, jsonOutput)

		if !audit.AllPassed() {
			os.Exit(1)
		}
	},
}

func init() {
	configCmd.Flags().Duration("timeout", 30*time.Second, "Timeout for the promtool invocation")
	configCmd.Flags().Bool("json", false, "Emit the audit as JSON instead of Markdown")
}
