package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/anvil-ai/cacheforge-skills/pkg/contextscan"
	"github.com/anvil-ai/cacheforge-skills/pkg/presenter"
	"github.com/anvil-ai/cacheforge-skills/pkg/render"
)

// CompareConfig holds configuration for the compare command
type CompareConfig struct {
	Baseline   string
	Workspace  string
	Budget     int
	Precise    bool
	JSONOutput bool
}

// NewCompareConfig returns the default compare configuration
func NewCompareConfig() *CompareConfig {
	return &CompareConfig{
		Baseline:   "",
		Workspace:  "",
		Budget:     0,
		Precise:    false,
		JSONOutput: false,
	}
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Diff the workspace against a saved snapshot",
	Long: `Load a snapshot saved with 'analyze --save', rescan the workspace, and
show what moved: total tokens, efficiency, issue counts, and per-file deltas.

Example:
  context-engineer analyze --save before.json
  ... trim your context files ...
  context-engineer compare --baseline before.json`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		config := getCompareConfigFromFlags(cmd)
		runCompare(ctx, config)
	},
}

func init() {
	compareDefaults := NewCompareConfig()
	compareCmd.Flags().String("baseline", compareDefaults.Baseline, "Snapshot file to compare against")
	compareCmd.Flags().String("workspace", compareDefaults.Workspace, "Workspace directory (defaults to the baseline's workspace)")
	compareCmd.Flags().Int("budget", compareDefaults.Budget, "Context budget in tokens (defaults to the baseline's budget)")
	compareCmd.Flags().Bool("precise", compareDefaults.Precise, "Use the cl100k_base tokenizer instead of the heuristic")
	compareCmd.Flags().Bool("json", compareDefaults.JSONOutput, "Emit the diff as JSON")
	compareCmd.MarkFlagRequired("baseline")
}

// getCompareConfigFromFlags extracts compare configuration from command flags
func getCompareConfigFromFlags(cmd *cobra.Command) *CompareConfig {
	config := NewCompareConfig()

	if baseline, err := cmd.Flags().GetString("baseline"); err == nil {
		config.Baseline = baseline
	}
	if workspace, err := cmd.Flags().GetString("workspace"); err == nil {
		config.Workspace = workspace
	}
	if budget, err := cmd.Flags().GetInt("budget"); err == nil {
		config.Budget = budget
	}
	if precise, err := cmd.Flags().GetBool("precise"); err == nil {
		config.Precise = precise
	}
	if jsonOutput, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSONOutput = jsonOutput
	}

	return config
}

func runCompare(ctx context.Context, config *CompareConfig) {
	baseline, err := contextscan.LoadSnapshot(config.Baseline)
	if err != nil {
		presenter.Error(err, "Failed to load the baseline snapshot")
		os.Exit(1)
	}

	// Rescan the workspace the baseline captured with the same budget so the
	// efficiency scores line up.
	workspace := config.Workspace
	if workspace == "" {
		workspace = baseline.Workspace
	}
	if workspace == "" {
		workspace = contextscan.DefaultWorkspace()
	}
	budget := config.Budget
	if budget <= 0 {
		budget = baseline.Budget
	}

	analysis := analyzeWorkspace(ctx, workspace, budget, config.Precise)
	diff := contextscan.DiffSnapshots(baseline, contextscan.NewSnapshot(analysis))

	if config.JSONOutput {
		printJSON(diff)
		return
	}
	printDiff(config.Baseline, baseline, diff)
}

func printDiff(baselinePath string, baseline *contextscan.Snapshot, diff *contextscan.SnapshotDiff) {
	baselineLine := fmt.Sprintf("Baseline    %s", baselinePath)
	if !baseline.CreatedAt.IsZero() {
		baselineLine += fmt.Sprintf(" (saved %s)", baseline.CreatedAt.Format("2006-01-02"))
	}
	changeLine := "Change      none"
	switch {
	case diff.TokensSaved > 0:
		changeLine = fmt.Sprintf("Saved       %s (%.1f%%)", render.FormatTokens(diff.TokensSaved), diff.SavedPct)
	case diff.TokensSaved < 0:
		changeLine = fmt.Sprintf("Added       %s (+%.1f%%)", render.FormatTokens(-diff.TokensSaved), -diff.SavedPct)
	}

	fmt.Println(render.Box("Context Comparison",
		baselineLine,
		fmt.Sprintf("Workspace   %s", baseline.Workspace),
		fmt.Sprintf("Before      %s tokens", render.FormatTokens(diff.TokensBefore)),
		fmt.Sprintf("After       %s tokens", render.FormatTokens(diff.TokensAfter)),
		changeLine,
	))

	afterLevel := render.GaugeGood
	if diff.TokensSaved < 0 {
		afterLevel = render.GaugeBad
	}
	maxTokens := float64(diff.TokensBefore)
	if float64(diff.TokensAfter) > maxTokens {
		maxTokens = float64(diff.TokensAfter)
	}
	fmt.Println()
	fmt.Printf("  Before  %s %s\n", render.Gauge(float64(diff.TokensBefore), maxTokens, 24, render.GaugeWarn), render.FormatTokens(diff.TokensBefore))
	fmt.Printf("  After   %s %s\n", render.Gauge(float64(diff.TokensAfter), maxTokens, 24, afterLevel), render.FormatTokens(diff.TokensAfter))

	fmt.Println()
	presenter.Section("Efficiency")
	fmt.Printf("  Before  %s (%.0f/100)\n", render.GradeStyled(diff.EfficiencyBefore), diff.EfficiencyBefore)
	fmt.Printf("  After   %s (%.0f/100)\n", render.GradeStyled(diff.EfficiencyAfter), diff.EfficiencyAfter)
	if gain := diff.EfficiencyAfter - diff.EfficiencyBefore; gain > 0 {
		presenter.Success(fmt.Sprintf("Efficiency improved by %.0f points", gain))
	}

	fmt.Println()
	presenter.Section("Issues")
	fmt.Printf("  Before  %d\n", diff.IssuesBefore)
	fmt.Printf("  After   %d\n", diff.IssuesAfter)
	if fixed := diff.IssuesBefore - diff.IssuesAfter; fixed > 0 {
		presenter.Success(fmt.Sprintf("%d issues resolved", fixed))
	}

	if len(diff.Files) == 0 {
		fmt.Println()
		presenter.Info("No per-file changes.")
		return
	}
	fmt.Println()
	presenter.Section("File Changes")
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tBEFORE\tAFTER\tCHANGE")
	for _, fd := range diff.Files {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", fd.Name, render.FormatTokens(fd.Before), render.FormatTokens(fd.After), fd.Change)
	}
	w.Flush()
}
