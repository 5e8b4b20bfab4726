package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anvil-ai/cacheforge-skills/pkg/contextscan"
	"github.com/anvil-ai/cacheforge-skills/pkg/logger"
	"github.com/anvil-ai/cacheforge-skills/pkg/openclaw"
	"github.com/anvil-ai/cacheforge-skills/pkg/presenter"
	"github.com/anvil-ai/cacheforge-skills/pkg/render"
)

// ReportConfig holds configuration for the report command
type ReportConfig struct {
	Workspace  string
	Config     string
	Budget     int
	Model      string
	Precise    bool
	JSONOutput bool
}

// NewReportConfig returns the default report configuration
func NewReportConfig() *ReportConfig {
	return &ReportConfig{
		Workspace:  "",
		Config:     "",
		Budget:     0,
		Model:      "",
		Precise:    false,
		JSONOutput: false,
	}
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Full context health report",
	Long: `Run the workspace analysis and the tool definition audit in one pass
and render a combined health report: efficiency grade, budget usage, token
distribution by category, memory file health, and tool overhead.

Example:
  context-engineer report
  context-engineer report --workspace ./agent --budget 128000`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		config := getReportConfigFromFlags(cmd)
		runReport(ctx, config)
	},
}

func init() {
	reportDefaults := NewReportConfig()
	reportCmd.Flags().String("workspace", reportDefaults.Workspace, "Workspace directory (defaults to ~/.openclaw/workspace)")
	reportCmd.Flags().String("config", reportDefaults.Config, "Agent config JSON for the tool audit (defaults to the OpenClaw config)")
	reportCmd.Flags().Int("budget", reportDefaults.Budget, "Context budget in tokens (defaults to the model's window or 200000)")
	reportCmd.Flags().String("model", reportDefaults.Model, "Model whose context window sets the budget")
	reportCmd.Flags().Bool("precise", reportDefaults.Precise, "Use the cl100k_base tokenizer instead of the heuristic")
	reportCmd.Flags().Bool("json", reportDefaults.JSONOutput, "Emit the report as JSON")
}

// getReportConfigFromFlags extracts report configuration from command flags
func getReportConfigFromFlags(cmd *cobra.Command) *ReportConfig {
	config := NewReportConfig()

	config.Workspace = workspaceFlag(cmd)
	if configPath, err := cmd.Flags().GetString("config"); err == nil {
		config.Config = configPath
	}
	if budget, err := cmd.Flags().GetInt("budget"); err == nil {
		config.Budget = budget
	}
	if model, err := cmd.Flags().GetString("model"); err == nil {
		config.Model = model
	}
	if precise, err := cmd.Flags().GetBool("precise"); err == nil {
		config.Precise = precise
	}
	if jsonOutput, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSONOutput = jsonOutput
	}

	return config
}

// contextReport bundles both audits for --json output.
type contextReport struct {
	Analysis *contextscan.Analysis  `json:"analysis"`
	Tools    *contextscan.ToolAudit `json:"tools,omitempty"`
}

func runReport(ctx context.Context, config *ReportConfig) {
	analysis := analyzeWorkspace(ctx, config.Workspace, budgetFor(config.Budget, config.Model), config.Precise)

	configPath := config.Config
	if configPath == "" {
		configPath = openclaw.ConfigPath("")
	}
	audit, err := contextscan.AuditTools(configPath, estimatorFor(config.Precise))
	if err != nil {
		// The agent config is optional for a report; cover what we can.
		logger.G(ctx).WithError(err).Debug("skipping tool audit")
		audit = nil
	}

	if config.JSONOutput {
		printJSON(contextReport{Analysis: analysis, Tools: audit})
		return
	}
	printReport(analysis, audit, config.Precise)
}

func printReport(a *contextscan.Analysis, audit *contextscan.ToolAudit, precise bool) {
	level := render.GaugeGood
	switch {
	case a.BudgetPct > 80:
		level = render.GaugeBad
	case a.BudgetPct > 50:
		level = render.GaugeWarn
	}

	lines := []string{
		fmt.Sprintf("Efficiency  %s (%.0f/100)", render.GradeStyled(a.Efficiency), a.Efficiency),
		fmt.Sprintf("Budget      %s %.1f%%", render.Gauge(a.BudgetPct, 100, 24, level), a.BudgetPct),
		fmt.Sprintf("Files       %d", len(a.Files)),
		fmt.Sprintf("Tokens      %s of %s", render.FormatTokens(a.TotalTokens), render.FormatTokens(a.Budget)),
		fmt.Sprintf("Issues      %d", a.IssueCount()),
	}
	if audit != nil {
		lines = append(lines, fmt.Sprintf("Tools       %d (%s tokens per request)", len(audit.Tools), render.FormatTokens(audit.TotalTokens)))
	}
	fmt.Println(render.Box("Context Engineering Report", lines...))

	printCategoryBreakdown(a)
	printMemoryHealth(a)
	if audit != nil {
		printToolOverhead(audit)
	}

	fmt.Println()
	presenter.Section("Recommendations")
	printRecommendations(a.Recommendations)
	if !precise {
		presenter.Info("Token estimates are approximate (~4 chars/token); use --precise for exact counts.")
	}
}

func printCategoryBreakdown(a *contextscan.Analysis) {
	byCategory := make(map[string][]contextscan.ContextFile)
	totals := make(map[string]int)
	maxTokens := 1
	for _, f := range a.Files {
		cat := contextscan.Category(f.Name)
		byCategory[cat] = append(byCategory[cat], f)
		totals[cat] += f.Tokens
		if totals[cat] > maxTokens {
			maxTokens = totals[cat]
		}
	}

	fmt.Println()
	presenter.Section("Token Distribution")
	for _, cat := range contextscan.Categories {
		files := byCategory[cat]
		if len(files) == 0 {
			continue
		}
		pct := 0.0
		if a.TotalTokens > 0 {
			pct = float64(totals[cat]) / float64(a.TotalTokens) * 100
		}
		fmt.Printf("  %-18s %s %6s (%.0f%%)\n",
			cat, render.Gauge(float64(totals[cat]), float64(maxTokens), 16, render.GaugeGood),
			render.FormatTokens(totals[cat]), pct)
		sort.Slice(files, func(i, j int) bool { return files[i].Tokens > files[j].Tokens })
		for _, f := range files {
			fmt.Printf("    %-28s %s\n", f.Name, render.FormatTokens(f.Tokens))
		}
	}
}

func printMemoryHealth(a *contextscan.Analysis) {
	for _, f := range a.Files {
		if f.Name != "MEMORY.md" {
			continue
		}
		memLines := strings.Split(f.Content, "\n")
		nonEmpty := 0
		for _, line := range memLines {
			if strings.TrimSpace(line) != "" {
				nonEmpty++
			}
		}

		fmt.Println()
		presenter.Section("Memory File")
		presenter.Info(fmt.Sprintf("MEMORY.md holds %s tokens across %d lines (%d%% non-empty)",
			render.FormatTokens(f.Tokens), len(memLines), nonEmpty*100/len(memLines)))
		switch {
		case f.Tokens > 5000:
			presenter.Warning("Memory file exceeds 5K tokens, a significant per-request overhead")
		case f.Tokens > 2000:
			presenter.Warning("Memory file is large, consider pruning stale entries")
		}
		return
	}
}

func printToolOverhead(audit *contextscan.ToolAudit) {
	fmt.Println()
	presenter.Section("Tool Definitions")
	presenter.Info(fmt.Sprintf("%d tools add %s tokens to every request", len(audit.Tools), render.FormatTokens(audit.TotalTokens)))
	if heavy := audit.HeavyTools(); len(heavy) > 0 {
		names := make([]string, 0, len(heavy))
		for _, tool := range heavy {
			names = append(names, tool.Name)
		}
		presenter.Warning("Heavy definitions: " + strings.Join(names, ", "))
	}
	if len(audit.Overlaps) > 0 {
		presenter.Warning(fmt.Sprintf("%d likely overlapping tool pairs, run audit-tools for details", len(audit.Overlaps)))
	}
}
