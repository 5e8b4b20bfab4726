package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/anvil-ai/cacheforge-skills/pkg/contextscan"
	"github.com/anvil-ai/cacheforge-skills/pkg/logger"
	"github.com/anvil-ai/cacheforge-skills/pkg/presenter"
	"github.com/anvil-ai/cacheforge-skills/pkg/render"
)

// AnalyzeConfig holds configuration for the analyze command
type AnalyzeConfig struct {
	Workspace  string
	Budget     int
	Model      string
	Save       string
	Precise    bool
	JSONOutput bool
}

// NewAnalyzeConfig creates a new AnalyzeConfig with default values
func NewAnalyzeConfig() *AnalyzeConfig {
	return &AnalyzeConfig{
		Workspace:  "",
		Budget:     0,
		Model:      "",
		Save:       "",
		Precise:    false,
		JSONOutput: false,
	}
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Scan workspace context files for token usage",
	Long: `Scan the workspace for the context files an agent loads (SKILL.md,
MEMORY.md, AGENTS.md, skills/*/SKILL.md, and friends), estimate tokens per
file, detect redundancy, and score the overall efficiency.

--model picks the budget from the model's known context window when
--budget is not given.

Example:
  context-engineer analyze
  context-engineer analyze --workspace ~/.openclaw/workspace --model gpt-4o
  context-engineer analyze --precise --save baseline.json`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		config := getAnalyzeConfigFromFlags(cmd)
		runAnalyze(ctx, config)
	},
}

func init() {
	analyzeDefaults := NewAnalyzeConfig()
	analyzeCmd.Flags().String("workspace", analyzeDefaults.Workspace, "Workspace directory (defaults to ~/.openclaw/workspace)")
	analyzeCmd.Flags().Int("budget", analyzeDefaults.Budget, "Context budget in tokens (defaults to the model's window or 200000)")
	analyzeCmd.Flags().String("model", analyzeDefaults.Model, "Model whose context window sets the budget")
	analyzeCmd.Flags().String("save", analyzeDefaults.Save, "Save a snapshot for later compare")
	analyzeCmd.Flags().Bool("precise", analyzeDefaults.Precise, "Use the cl100k_base tokenizer instead of the heuristic")
	analyzeCmd.Flags().Bool("json", analyzeDefaults.JSONOutput, "Emit the analysis as JSON")
}

// getAnalyzeConfigFromFlags extracts analyze configuration from command flags
func getAnalyzeConfigFromFlags(cmd *cobra.Command) *AnalyzeConfig {
	config := NewAnalyzeConfig()

	config.Workspace = workspaceFlag(cmd)
	if budget, err := cmd.Flags().GetInt("budget"); err == nil {
		config.Budget = budget
	}
	if model, err := cmd.Flags().GetString("model"); err == nil {
		config.Model = model
	}
	if save, err := cmd.Flags().GetString("save"); err == nil {
		config.Save = save
	}
	if precise, err := cmd.Flags().GetBool("precise"); err == nil {
		config.Precise = precise
	}
	if jsonOutput, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSONOutput = jsonOutput
	}

	return config
}

func runAnalyze(ctx context.Context, config *AnalyzeConfig) {
	analysis := analyzeWorkspace(ctx, config.Workspace, budgetFor(config.Budget, config.Model), config.Precise)

	if config.JSONOutput {
		printJSON(analysis)
	} else {
		printAnalysis(analysis, config.Precise)
	}

	if config.Save != "" {
		if err := contextscan.SaveSnapshot(config.Save, contextscan.NewSnapshot(analysis)); err != nil {
			presenter.Error(err, "Failed to save snapshot")
			os.Exit(1)
		}
		presenter.Info(fmt.Sprintf("Snapshot saved to %s", config.Save))
	}
}

// analyzeWorkspace runs the scan, treating partial read failures as warnings
// and everything else as fatal.
func analyzeWorkspace(ctx context.Context, workspace string, budget int, precise bool) *contextscan.Analysis {
	analysis, err := contextscan.Analyze(workspace, budget, estimatorFor(precise))
	if err != nil && analysis == nil {
		presenter.Error(err, "Analysis failed")
		os.Exit(1)
	}
	if err != nil {
		logger.G(ctx).WithError(err).Warn("some context files could not be read")
	}

	if len(analysis.Files) == 0 {
		presenter.Warning(fmt.Sprintf("No context files found in %s", workspace))
		presenter.Info("Looked for: " + strings.Join(contextscan.WorkspaceFiles, ", "))
		os.Exit(0)
	}
	return analysis
}

func printAnalysis(a *contextscan.Analysis, precise bool) {
	level := render.GaugeGood
	switch {
	case a.BudgetPct > 80:
		level = render.GaugeBad
	case a.BudgetPct > 50:
		level = render.GaugeWarn
	}

	fmt.Println(render.Box("Context Window Analysis",
		fmt.Sprintf("Workspace   %s", a.Workspace),
		fmt.Sprintf("Files       %d", len(a.Files)),
		fmt.Sprintf("Tokens      %s of %s budget", render.FormatTokens(a.TotalTokens), render.FormatTokens(a.Budget)),
		fmt.Sprintf("Budget      %s %.1f%%", render.Gauge(a.BudgetPct, 100, 24, level), a.BudgetPct),
		fmt.Sprintf("Efficiency  %s (%.0f/100)", render.GradeStyled(a.Efficiency), a.Efficiency),
	))

	sorted := make([]contextscan.ContextFile, len(a.Files))
	copy(sorted, a.Files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Tokens > sorted[j].Tokens })

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tTOKENS\tSHARE")
	for _, f := range sorted {
		share := 0.0
		if a.TotalTokens > 0 {
			share = float64(f.Tokens) / float64(a.TotalTokens) * 100
		}
		fmt.Fprintf(w, "%s\t%s\t%.0f%%\n", f.Name, render.FormatTokens(f.Tokens), share)
	}
	w.Flush()

	if len(a.Issues) > 0 {
		fmt.Println()
		presenter.Section("Optimization Opportunities")
		for _, fi := range a.Issues {
			presenter.Info(fi.Name)
			for i, issue := range fi.Issues {
				if i == 5 {
					presenter.Info(fmt.Sprintf("  ... and %d more", len(fi.Issues)-5))
					break
				}
				presenter.Info(fmt.Sprintf("  %s: %s", issue.Kind, issue.Detail))
			}
		}
	}

	fmt.Println()
	presenter.Section("Recommendations")
	printRecommendations(a.Recommendations)
	if !precise {
		presenter.Info("Token estimates are approximate (~4 chars/token); use --precise for exact counts.")
	}
}

func printRecommendations(recs []contextscan.Recommendation) {
	for i, rec := range recs {
		if i == 6 {
			break
		}
		line := fmt.Sprintf("%d. %s", i+1, rec.Text)
		if rec.Savings > 0 {
			line += fmt.Sprintf(" (~%s tokens)", render.FormatTokens(rec.Savings))
		}
		presenter.Info(line)
	}
}
