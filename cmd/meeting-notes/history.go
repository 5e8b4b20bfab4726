package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/anvil-ai/cacheforge-skills/pkg/presenter"
	"github.com/anvil-ai/cacheforge-skills/pkg/render"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved extraction runs",
	Long: `List saved runs newest first: id, when the run happened, which meeting,
the model used, and what the run cost.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		historyDir, _ := cmd.Flags().GetString("history-dir")
		limit, _ := cmd.Flags().GetInt("limit")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		store, err := storeFor(historyDir)
		if err != nil {
			presenter.Error(err, "Failed to open the history directory")
			os.Exit(1)
		}
		records, err := store.List()
		if err != nil {
			presenter.Error(err, "Failed to list runs")
			os.Exit(1)
		}
		if limit > 0 && len(records) > limit {
			records = records[:limit]
		}

		if jsonOutput {
			printJSON(records)
			return
		}
		if len(records) == 0 {
			presenter.Info("No saved runs. Run 'meeting-notes extract' first.")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tWHEN\tMEETING\tMODEL\tTOKENS\tCOST")
		for _, rec := range records {
			title := rec.Title
			if title == "" {
				title = rec.Source
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				rec.ID,
				rec.CreatedAt.Local().Format("2006-01-02 15:04"),
				title,
				rec.Model,
				render.FormatNumber(int64(rec.Usage.TotalTokens())),
				render.FormatCost(rec.Cost))
		}
		w.Flush()
	},
}

func init() {
	historyCmd.Flags().String("history-dir", "", "History directory (defaults to ~/.meeting-notes/history)")
	historyCmd.Flags().Int("limit", 0, "Show at most this many runs")
	historyCmd.Flags().Bool("json", false, "Emit the runs as JSON")
}
