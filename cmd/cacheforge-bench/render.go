package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/anvil-ai/cacheforge-skills/pkg/chatbench"
	"github.com/anvil-ai/cacheforge-skills/pkg/presenter"
	"github.com/anvil-ai/cacheforge-skills/pkg/render"
)

func printRunResult(run *chatbench.RunResult) {
	fmt.Println(render.Box("CacheForge Benchmark: "+run.Label,
		fmt.Sprintf("Model      %s", run.Model),
		fmt.Sprintf("Endpoint   %s", run.Endpoint),
		fmt.Sprintf("Prompts    %d run, %d failed", run.PromptsRun, run.Errors),
		fmt.Sprintf("Tokens     %s (prompt %s, completion %s)",
			render.FormatTokens(run.TotalTokens),
			render.FormatTokens(run.TotalPromptTokens),
			render.FormatTokens(run.TotalCompletionTokens)),
		fmt.Sprintf("Latency    %.0f ms avg", run.AvgLatencyMS),
		fmt.Sprintf("Est. cost  %s", render.FormatCost(run.EstimatedTotalCostUSD)),
	))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CASE\tLATENCY\tPROMPT\tCOMPLETION\tCOST")
	for _, result := range run.Results {
		if !result.OK {
			fmt.Fprintf(w, "%s\tfailed: %s\t\t\t\n", result.Name, result.Error)
			continue
		}
		fmt.Fprintf(w, "%s\t%.0f ms\t%d\t%d\t%s\n",
			result.Name, result.LatencyMS, result.PromptTokens, result.CompletionTokens,
			render.FormatCost(result.EstimatedCostUSD))
	}
	w.Flush()
}

func printComparison(comparison *chatbench.Comparison) {
	direct := comparison.Direct
	proxied := comparison.Gateway
	savings := comparison.Savings()

	fmt.Println(render.Box("CacheForge A/B Comparison",
		fmt.Sprintf("Model       %s", comparison.Model),
		fmt.Sprintf("Direct      %s", direct.Endpoint),
		fmt.Sprintf("CacheForge  %s", proxied.Endpoint),
	))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\tDIRECT\tCACHEFORGE\tSAVED")
	fmt.Fprintf(w, "Tokens\t%s\t%s\t%s (%.1f%%)\n",
		render.FormatTokens(direct.TotalTokens),
		render.FormatTokens(proxied.TotalTokens),
		render.FormatTokens(savings.TokensSaved), savings.TokenPct)
	fmt.Fprintf(w, "Est. cost\t%s\t%s\t%s (%.1f%%)\n",
		render.FormatCost(direct.EstimatedTotalCostUSD),
		render.FormatCost(proxied.EstimatedTotalCostUSD),
		render.FormatCost(savings.CostSavedUSD), savings.CostPct)
	fmt.Fprintf(w, "Avg latency\t%.0f ms\t%.0f ms\t%.0f ms (%.1f%%)\n",
		direct.AvgLatencyMS, proxied.AvgLatencyMS,
		savings.LatencySavedMS, savings.LatencyPct)
	w.Flush()

	fmt.Println()
	fmt.Printf("Token savings  %s %.1f%%\n", savingsGauge(savings.TokenPct), savings.TokenPct)
	fmt.Printf("Cost savings   %s %.1f%%\n", savingsGauge(savings.CostPct), savings.CostPct)
	if savings.LatencyPct > 0 {
		fmt.Printf("Latency saved  %s %.1f%%\n", savingsGauge(savings.LatencyPct), savings.LatencyPct)
	}

	printPerPromptComparison(direct, proxied)
	presenter.Info("Results vary by provider, model, and workload.")
}

func savingsGauge(pct float64) string {
	level := render.GaugeWarn
	if pct > 0 {
		level = render.GaugeGood
	}
	if pct < 0 {
		pct = 0
	}
	return render.Gauge(pct, 100, 24, level)
}

func printPerPromptComparison(direct, proxied *chatbench.RunResult) {
	if len(direct.Results) != len(proxied.Results) {
		return
	}

	fmt.Println()
	presenter.Section("Per-Prompt Comparison")
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CASE\tTOKENS\tLATENCY\tCOST")
	for i, d := range direct.Results {
		p := proxied.Results[i]
		if !d.OK || !p.OK {
			fmt.Fprintf(w, "%s\tfailed\t\t\n", d.Name)
			continue
		}
		fmt.Fprintf(w, "%s\t%d -> %d\t%.0f -> %.0f ms\t%s -> %s\n",
			d.Name, d.TotalTokens, p.TotalTokens, d.LatencyMS, p.LatencyMS,
			render.FormatCost(d.EstimatedCostUSD), render.FormatCost(p.EstimatedCostUSD))
	}
	w.Flush()
}
