package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/anvil-ai/cacheforge-skills/pkg/chatbench"
	"github.com/anvil-ai/cacheforge-skills/pkg/gateway"
	"github.com/anvil-ai/cacheforge-skills/pkg/presenter"
)

// CompareConfig holds configuration for the compare command
type CompareConfig struct {
	DirectEndpoint string
	DirectKey      string
	ProxyEndpoint  string
	ProxyKey       string
	Model          string
	Prompts        string
	Inline         string
	MaxTokens      int
	Out            string
	JSONOutput     bool
}

// NewCompareConfig creates a new CompareConfig with default values
func NewCompareConfig() *CompareConfig {
	return &CompareConfig{
		DirectEndpoint: "",
		DirectKey:      "",
		ProxyEndpoint:  "",
		ProxyKey:       "",
		Model:          "gpt-4o-mini",
		Prompts:        "",
		Inline:         "",
		MaxTokens:      chatbench.DefaultMaxTokens,
		Out:            "",
		JSONOutput:     false,
	}
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "A/B benchmark: direct provider vs the CacheForge gateway",
	Long: `Run the same prompt suite against the direct provider endpoint and
then through the CacheForge gateway, and report token, cost, and latency
savings side by side.

The proxy endpoint defaults to the hosted gateway (or CACHEFORGE_BASE_URL)
and the proxy key to CACHEFORGE_API_KEY.

Example:
  cacheforge-bench compare --direct-endpoint https://api.openai.com/v1 --direct-key $OPENAI_API_KEY --model gpt-4o-mini`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		config := getCompareConfigFromFlags(cmd)
		runCompare(ctx, config)
	},
}

func init() {
	compareDefaults := NewCompareConfig()
	compareCmd.Flags().String("direct-endpoint", compareDefaults.DirectEndpoint, "Direct provider base URL")
	compareCmd.Flags().String("direct-key", compareDefaults.DirectKey, "Direct provider API key")
	compareCmd.Flags().String("proxy-endpoint", compareDefaults.ProxyEndpoint, "CacheForge endpoint (defaults to the hosted gateway)")
	compareCmd.Flags().String("proxy-key", compareDefaults.ProxyKey, "CacheForge API key (defaults to CACHEFORGE_API_KEY)")
	compareCmd.Flags().String("model", compareDefaults.Model, "Model to benchmark on both endpoints")
	compareCmd.Flags().String("prompts", compareDefaults.Prompts, "Custom prompt suite JSON file")
	compareCmd.Flags().String("inline", compareDefaults.Inline, "Single inline prompt instead of a suite")
	compareCmd.Flags().Int("max-tokens", compareDefaults.MaxTokens, "Max tokens per completion")
	compareCmd.Flags().String("out", compareDefaults.Out, "Results file (defaults to a timestamped comparison-*.json)")
	compareCmd.Flags().Bool("json", compareDefaults.JSONOutput, "Print the comparison JSON instead of the rendered report")
}

// getCompareConfigFromFlags extracts compare configuration from command flags
func getCompareConfigFromFlags(cmd *cobra.Command) *CompareConfig {
	config := NewCompareConfig()

	if directEndpoint, err := cmd.Flags().GetString("direct-endpoint"); err == nil {
		config.DirectEndpoint = directEndpoint
	}
	if directKey, err := cmd.Flags().GetString("direct-key"); err == nil {
		config.DirectKey = directKey
	}
	if proxyEndpoint, err := cmd.Flags().GetString("proxy-endpoint"); err == nil {
		config.ProxyEndpoint = proxyEndpoint
	}
	if proxyKey, err := cmd.Flags().GetString("proxy-key"); err == nil {
		config.ProxyKey = proxyKey
	}
	if model, err := cmd.Flags().GetString("model"); err == nil {
		config.Model = model
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

	if config.DirectEndpoint == "" || config.DirectKey == "" {
		presenter.Error(errors.New("missing direct endpoint"), "--direct-endpoint and --direct-key are required")
		os.Exit(1)
	}

	return config
}

func runCompare(ctx context.Context, config *CompareConfig) {
	proxyEndpoint := chatbench.ResolveEndpoint("cacheforge", config.ProxyEndpoint)
	proxyKey := gateway.ResolveGatewayKey(config.ProxyKey)
	if proxyKey == "" {
		presenter.Error(errors.New("no gateway key"), "Pass --proxy-key or set CACHEFORGE_API_KEY")
		os.Exit(1)
	}

	cases, err := resolveSuite(config.Prompts, config.Inline)
	if err != nil {
		presenter.Error(err, "Failed to load prompt suite")
		os.Exit(1)
	}

	presenter.Info(fmt.Sprintf("A/B benchmark of %s over %d prompts", config.Model, len(cases)))

	presenter.Section("Direct Provider")
	direct := chatbench.NewRunner(config.DirectEndpoint, config.DirectKey, config.Model, config.MaxTokens).
		RunSuite(ctx, "Direct Provider", cases, progressLine)

	presenter.Section("CacheForge")
	proxied := chatbench.NewRunner(proxyEndpoint, proxyKey, config.Model, config.MaxTokens).
		RunSuite(ctx, "CacheForge", cases, progressLine)

	comparison := chatbench.NewComparison(config.Model, direct, proxied)

	if config.JSONOutput {
		printJSON(comparison)
	} else {
		printComparison(comparison)
	}

	out := config.Out
	if out == "" {
		out = chatbench.ComparisonArtifactName(time.Now())
	}
	if err := chatbench.SaveArtifact(out, comparison); err != nil {
		presenter.Error(err, "Failed to save comparison")
		os.Exit(1)
	}
	presenter.Info(fmt.Sprintf("Results saved to %s", out))
}
