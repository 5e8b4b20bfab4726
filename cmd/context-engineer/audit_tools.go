package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/anvil-ai/cacheforge-skills/pkg/contextscan"
	"github.com/anvil-ai/cacheforge-skills/pkg/openclaw"
	"github.com/anvil-ai/cacheforge-skills/pkg/presenter"
	"github.com/anvil-ai/cacheforge-skills/pkg/render"
)

var auditToolsCmd = &cobra.Command{
	Use:   "audit-tools",
	Short: "Audit tool definitions for token overhead",
	Long: `Parse the tool definitions from an agent config (top-level tools or
functions arrays, or mcpServers.*.tools), estimate each definition's token
weight, and flag heavy, verbose, and likely-overlapping tools.

Example:
  context-engineer audit-tools
  context-engineer audit-tools --config ~/.openclaw/openclaw.json --json`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		precise, _ := cmd.Flags().GetBool("precise")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		if configPath == "" {
			configPath = openclaw.ConfigPath("")
		}

		audit, err := contextscan.AuditTools(configPath, estimatorFor(precise))
		if err != nil {
			presenter.Error(err, "Tool audit failed")
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(audit)
			return
		}
		printToolAudit(audit)
	},
}

func init() {
	auditToolsCmd.Flags().String("config", "", "Agent config JSON (defaults to the OpenClaw config)")
	auditToolsCmd.Flags().Bool("precise", false, "Use the cl100k_base tokenizer instead of the heuristic")
	auditToolsCmd.Flags().Bool("json", false, "Emit the audit as JSON")
}

func printToolAudit(audit *contextscan.ToolAudit) {
	fmt.Println(render.Box("Tool Definition Audit",
		fmt.Sprintf("Config  %s", audit.Config),
		fmt.Sprintf("Tools   %d", len(audit.Tools)),
		fmt.Sprintf("Tokens  %s per request", render.FormatTokens(audit.TotalTokens)),
	))

	if len(audit.Tools) == 0 {
		presenter.Info("No tool definitions found.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TOOL\tSERVER\tTOKENS\tPARAMS")
	for _, tool := range audit.Tools {
		server := tool.Server
		if server == "" {
			server = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", tool.Name, server, tool.Tokens, len(tool.Params))
	}
	w.Flush()

	if heavy := audit.HeavyTools(); len(heavy) > 0 {
		fmt.Println()
		presenter.Section("Heavy Definitions")
		for _, tool := range heavy {
			presenter.Warning(fmt.Sprintf("%s weighs %d tokens (more than twice the average)", tool.Name, tool.Tokens))
		}
	}
	if verbose := audit.VerboseTools(); len(verbose) > 0 {
		fmt.Println()
		presenter.Section("Verbose Descriptions")
		for _, tool := range verbose {
			presenter.Info(fmt.Sprintf("%s has a %d-char description, consider trimming", tool.Name, len(tool.Description)))
		}
	}
	if len(audit.Overlaps) > 0 {
		fmt.Println()
		presenter.Section("Likely Overlaps")
		for _, overlap := range audit.Overlaps {
			presenter.Info(fmt.Sprintf("%s and %s: %s", overlap.A, overlap.B, overlap.Reason))
		}
	}
}
