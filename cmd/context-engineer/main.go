package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anvil-ai/cacheforge-skills/pkg/contextscan"
	"github.com/anvil-ai/cacheforge-skills/pkg/presenter"
	"github.com/anvil-ai/cacheforge-skills/pkg/skillcmd"
)

var rootCmd = skillcmd.NewRoot(
	"context-engineer",
	"Analyze and optimize an agent's context window usage",
	`Measure how much of an agent's context window its workspace consumes:
token estimates per file, redundancy findings, an efficiency score, tool
definition audits, and before/after comparisons.

Token counts use a ~4 chars/token heuristic; --precise switches to the
cl100k_base tokenizer.`,
)

func main() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(auditToolsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(compareCmd)

	skillcmd.Execute(rootCmd)
}

// budgetFor resolves the context budget: an explicit --budget wins, then the
// model's known context window, then the default.
func budgetFor(budget int, model string) int {
	if budget > 0 {
		return budget
	}
	if model != "" {
		return contextscan.ContextWindow(model)
	}
	return contextscan.DefaultBudget
}

func estimatorFor(precise bool) contextscan.Estimator {
	est, err := contextscan.NewEstimator(precise)
	if err != nil {
		presenter.Error(err, "Failed to load the precise tokenizer")
		os.Exit(1)
	}
	return est
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		presenter.Error(err, "Failed to encode output")
		os.Exit(1)
	}
	fmt.Println(string(data))
}

func workspaceFlag(cmd *cobra.Command) string {
	workspace, _ := cmd.Flags().GetString("workspace")
	if workspace == "" {
		workspace = contextscan.DefaultWorkspace()
	}
	return workspace
}
