package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/anvil-ai/cacheforge-skills/pkg/chatbench"
	"github.com/anvil-ai/cacheforge-skills/pkg/presenter"
	"github.com/anvil-ai/cacheforge-skills/pkg/skillcmd"
)

var rootCmd = skillcmd.NewRoot(
	"cacheforge-bench",
	"Benchmark LLM endpoints with and without CacheForge",
	`Send a suite of chat prompts to an OpenAI-compatible endpoint, measure
latency, token usage, and estimated cost, and render the results.

The compare subcommand runs the same suite against a direct provider and
the CacheForge gateway back to back and reports the savings.`,
)

func main() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(reportCmd)

	skillcmd.Execute(rootCmd)
}

// resolveSuite picks the prompt cases: a custom suite file, a single inline
// message, or the built-in suite.
func resolveSuite(promptsPath, inline string) ([]chatbench.PromptCase, error) {
	if promptsPath != "" {
		return chatbench.LoadSuite(promptsPath)
	}
	if inline != "" {
		return chatbench.InlineSuite(inline), nil
	}
	return chatbench.BuiltinSuite(), nil
}

// progressLine reports each case as it completes.
func progressLine(i, n int, result chatbench.CaseResult) {
	if result.OK {
		presenter.Info(fmt.Sprintf("  [%d/%d] %s (%.0f ms, %d tokens)", i, n, result.Name, result.LatencyMS, result.TotalTokens))
		return
	}
	presenter.Warning(fmt.Sprintf("  [%d/%d] %s failed: %s", i, n, result.Name, result.Error))
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		presenter.Error(err, "Failed to encode output")
		os.Exit(1)
	}
	fmt.Println(string(data))
}
