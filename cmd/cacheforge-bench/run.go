package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/anvil-ai/cacheforge-skills/pkg/chatbench"
	"github.com/anvil-ai/cacheforge-skills/pkg/presenter"
)

// RunConfig holds configuration for the run command
type RunConfig struct {
	Provider   string
	Model      string
	Endpoint   string
	APIKey     string
	Label      string
	Prompts    string
	Inline     string
	MaxTokens  int
	Out        string
	JSONOutput bool
}

// NewRunConfig creates a new RunConfig with default values
func NewRunConfig() *RunConfig {
	return &RunConfig{
		Provider:   "openai",
		Model:      "gpt-4o-mini",
		Endpoint:   "",
		APIKey:     "",
		Label:      "",
		Prompts:    "",
		Inline:     "",
		MaxTokens:  chatbench.DefaultMaxTokens,
		Out:        "",
		JSONOutput: false,
	}
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the benchmark suite against one endpoint",
	Long: `Send each prompt case once to the endpoint's chat completions API,
measure wall-clock latency and token usage, and estimate the cost from the
pricing table. Results are rendered to the terminal and saved as JSON.

Without --prompts or --inline, the built-in six-case suite runs.

Example:
  cacheforge-bench run --provider openai --model gpt-4o-mini
  cacheforge-bench run --provider cacheforge --model gpt-4o-mini --label gateway
  cacheforge-bench run --prompts suite.json --endpoint https://api.example.com/v1 --api-key sk-...`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		config := getRunConfigFromFlags(cmd)
		runBench(ctx, config)
	},
}

func init() {
	runDefaults := NewRunConfig()
	runCmd.Flags().String("provider", runDefaults.Provider, "Provider preset (openai, anthropic, openrouter, cacheforge)")
	runCmd.Flags().String("model", runDefaults.Model, "Model to benchmark")
	runCmd.Flags().String("endpoint", runDefaults.Endpoint, "Endpoint base URL (overrides the provider preset)")
	runCmd.Flags().String("api-key", runDefaults.APIKey, "API key (defaults to the provider's environment variable)")
	runCmd.Flags().String("label", runDefaults.Label, "Label stored in the results (defaults to provider/model)")
	runCmd.Flags().String("prompts", runDefaults.Prompts, "Custom prompt suite JSON file")
	runCmd.Flags().String("inline", runDefaults.Inline, "Single inline prompt instead of a suite")
	runCmd.Flags().Int("max-tokens", runDefaults.MaxTokens, "Max tokens per completion")
	runCmd.Flags().String("out", runDefaults.Out, "Results file (defaults to a timestamped bench-*.json)")
	runCmd.Flags().Bool("json", runDefaults.JSONOutput, "Print the results JSON instead of the rendered report")
}

// getRunConfigFromFlags extracts run configuration from command flags
func getRunConfigFromFlags(cmd *cobra.Command) *RunConfig {
	config := NewRunConfig()

	if provider, err := cmd.Flags().GetString("provider"); err == nil {
		config.Provider = provider
	}
	if model, err := cmd.Flags().GetString("model"); err == nil {
		config.Model = model
	}
	if endpoint, err := cmd.Flags().GetString("endpoint"); err == nil {
		config.Endpoint = endpoint
	}
	if apiKey, err := cmd.Flags().GetString("api-key"); err == nil {
		config.APIKey = apiKey
	}
	if label, err := cmd.Flags().GetString("label"); err == nil {
		config.Label = label
	}
	if prompts, err := cmd.Flags().GetString("prompts"); err == nil {
		config.Prompts = prompts
	}
	if inline, err := cmd.Flags().GetString("inline"); err == nil {
		config.Inline = inline
	}
	if maxTokens, err := cmd.Flags().GetInt("max-tokens"); err == nil {
		config.MaxTokens = maxTokens
	}
	if out, err := cmd.Flags().GetString("out"); err == nil {
		config.Out = out
	}
	if jsonOutput, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSONOutput = jsonOutput
	}

	if config.Label == "" {
		config.Label = config.Provider + "/" + config.Model
	}

	return config
}

func runBench(ctx context.Context, config *RunConfig) {
	endpoint := chatbench.ResolveEndpoint(config.Provider, config.Endpoint)
	apiKey, err := chatbench.ResolveAPIKey(config.Provider, config.APIKey)
	if err != nil {
		presenter.Error(err, "No API key")
		os.Exit(1)
	}

	cases, err := resolveSuite(config.Prompts, config.Inline)
	if err != nil {
		presenter.Error(err, "Failed to load prompt suite")
		os.Exit(1)
	}

	presenter.Info(fmt.Sprintf("Benchmarking %s against %s (%d prompts)", config.Model, endpoint, len(cases)))
	runner := chatbench.NewRunner(endpoint, apiKey, config.Model, config.MaxTokens)
	result := runner.RunSuite(ctx, config.Label, cases, progressLine)

	if config.JSONOutput {
		printJSON(result)
	} else {
		printRunResult(result)
	}

	out := config.Out
	if out == "" {
		out = chatbench.RunArtifactName(time.Now())
	}
	if err := chatbench.SaveArtifact(out, result); err != nil {
		presenter.Error(err, "Failed to save results")
		os.Exit(1)
	}
	presenter.Info(fmt.Sprintf("Results saved to %s", out))
}
