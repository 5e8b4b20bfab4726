package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/anvil-ai/cacheforge-skills/pkg/chatbench"
	"github.com/anvil-ai/cacheforge-skills/pkg/presenter"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Re-render a saved run or comparison",
	Long: `Load a results file written by run or compare and render the report
again, without re-running anything.

Example:
  cacheforge-bench report --file bench-20250601T120000.json`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		file, _ := cmd.Flags().GetString("file")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		run, comparison, err := chatbench.LoadArtifact(file)
		if err != nil {
			presenter.Error(err, "Failed to load results")
			os.Exit(1)
		}

		switch {
		case comparison != nil && jsonOutput:
			printJSON(comparison)
		case comparison != nil:
			printComparison(comparison)
		case jsonOutput:
			printJSON(run)
		default:
			printRunResult(run)
		}
	},
}

func init() {
	reportCmd.Flags().String("file", "", "Results file from run or compare")
	reportCmd.MarkFlagRequired("file")
	reportCmd.Flags().Bool("json", false, "Print the raw JSON instead of the rendered report")
}
