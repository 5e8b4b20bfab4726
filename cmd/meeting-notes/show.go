package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anvil-ai/cacheforge-skills/pkg/presenter"
	"github.com/anvil-ai/cacheforge-skills/pkg/report"
)

var showCmd = &cobra.Command{
	Use:   "show RUN_ID",
	Short: "Re-render a saved run",
	Long: `Load a saved run by id and re-render its Markdown report without calling
the LLM again. Run ids come from 'meeting-notes history'.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		historyDir, _ := cmd.Flags().GetString("history-dir")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		store, err := storeFor(historyDir)
		if err != nil {
			presenter.Error(err, "Failed to open the history directory")
			os.Exit(1)
		}
		record, err := store.Load(args[0])
		if err != nil {
			presenter.Error(err, "Failed to load the run")
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(record)
			return
		}
		md, err := report.Meeting(record)
		if err != nil {
			presenter.Error(err, "Failed to render the report")
			os.Exit(1)
		}
		fmt.Print(md)
	},
}

func init() {
	showCmd.Flags().String("history-dir", "", "History directory (defaults to ~/.meeting-notes/history)")
	showCmd.Flags().Bool("json", false, "Emit the full run record as JSON")
}
