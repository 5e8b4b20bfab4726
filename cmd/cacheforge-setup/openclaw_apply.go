package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/anvil-ai/cacheforge-skills/pkg/gateway"
	"github.com/anvil-ai/cacheforge-skills/pkg/openclaw"
	"github.com/anvil-ai/cacheforge-skills/pkg/presenter"
)

// OpenclawApplyConfig holds configuration for the openclaw-apply command
type OpenclawApplyConfig struct {
	APIKey     string
	ConfigPath string
	ModelID    string
	ModelName  string
	SetDefault bool
	Yes        bool
}

// NewOpenclawApplyConfig creates a new OpenclawApplyConfig with default values
func NewOpenclawApplyConfig() *OpenclawApplyConfig {
	return &OpenclawApplyConfig{
		APIKey:     "",
		ConfigPath: "",
		ModelID:    "",
		ModelName:  "",
		SetDefault: false,
		Yes:        false,
	}
}

var openclawApplyCmd = &cobra.Command{
	Use:   "openclaw-apply",
	Short: "Write the CacheForge provider into the OpenClaw config",
	Long: `Apply the provider block through 'openclaw config set' so JSON5
configs survive untouched. The existing config is backed up once to
<config>.cacheforge.bak.

A confirmation prompt is shown unless --yes is passed.

Example:
  cacheforge-setup openclaw-apply
  cacheforge-setup openclaw-apply --yes --set-default
  cacheforge-setup openclaw-apply --config ~/.openclaw/openclaw.json --model-id gpt-5.2`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		config := getOpenclawApplyConfigFromFlags(cmd)
		runOpenclawApply(ctx, baseURLFromFlags(cmd), config)
	},
}

func init() {
	applyDefaults := NewOpenclawApplyConfig()
	openclawApplyCmd.Flags().String("api-key", applyDefaults.APIKey, "CacheForge API key (cf_...)")
	openclawApplyCmd.Flags().String("config", applyDefaults.ConfigPath, "OpenClaw config path (defaults to OPENCLAW_CONFIG_PATH or ~/.openclaw/openclaw.json)")
	openclawApplyCmd.Flags().String("model-id", applyDefaults.ModelID, "Override the example model id")
	openclawApplyCmd.Flags().String("model-name", applyDefaults.ModelName, "Override the example model display name")
	openclawApplyCmd.Flags().Bool("set-default", applyDefaults.SetDefault, "Also set agents.defaults.model.primary to the CacheForge model")
	openclawApplyCmd.Flags().BoolP("yes", "y", applyDefaults.Yes, "Apply without the confirmation prompt")
}

// getOpenclawApplyConfigFromFlags extracts apply configuration from command flags
func getOpenclawApplyConfigFromFlags(cmd *cobra.Command) *OpenclawApplyConfig {
	config := NewOpenclawApplyConfig()

	if apiKey, err := cmd.Flags().GetString("api-key"); err == nil {
		config.APIKey = apiKey
	}
	if configPath, err := cmd.Flags().GetString("config"); err == nil {
		config.ConfigPath = configPath
	}
	if modelID, err := cmd.Flags().GetString("model-id"); err == nil {
		config.ModelID = modelID
	}
	if modelName, err := cmd.Flags().GetString("model-name"); err == nil {
		config.ModelName = modelName
	}
	if setDefault, err := cmd.Flags().GetBool("set-default"); err == nil {
		config.SetDefault = setDefault
	}
	if yes, err := cmd.Flags().GetBool("yes"); err == nil {
		config.Yes = yes
	}

	return config
}

func runOpenclawApply(ctx context.Context, baseURL string, config *OpenclawApplyConfig) {
	apiKey := gateway.ResolveGatewayKey(config.APIKey)
	if apiKey == "" {
		presenter.Error(errors.New("no API key found"), "Set CACHEFORGE_API_KEY (cf_...) or pass --api-key")
		os.Exit(1)
	}

	if err := openclaw.EnsureCLI(); err != nil {
		presenter.Error(err, "OpenClaw CLI not found")
		os.Exit(1)
	}

	configPath := openclaw.ConfigPath(config.ConfigPath)
	client := gateway.NewClient(baseURL, apiKey)
	models := resolveOpenclawModels(ctx, client, config.ModelID, config.ModelName)
	modelID := models[0].ID
	provider := openclaw.NewProvider(client.BaseURL(), models)

	presenter.Section("About to update OpenClaw config")
	presenter.Info(fmt.Sprintf("Config: %s", configPath))
	presenter.Info("Add provider: models.providers." + openclaw.ProviderName)
	if config.SetDefault {
		presenter.Info(fmt.Sprintf("Set default model: agents.defaults.model.primary = %s/%s", openclaw.ProviderName, modelID))
	} else {
		presenter.Info("Default model: (unchanged)")
	}

	if !config.Yes {
		resp := strings.ToLower(presenter.Prompt("Apply changes?", "y", "n"))
		if resp != "y" && resp != "yes" {
			presenter.Warning("Skipped. Use openclaw-snippet for manual paste.")
			return
		}
	}

	primaryModelID := ""
	if config.SetDefault {
		primaryModelID = modelID
	}
	if err := openclaw.Apply(ctx, configPath, provider, primaryModelID); err != nil {
		presenter.Error(err, "Failed to update OpenClaw config")
		os.Exit(1)
	}

	presenter.Success("OpenClaw config updated.")
	presenter.Info("Next, set your key and try an agent run:")
	fmt.Printf("  export CACHEFORGE_API_KEY=%s\n", apiKey)
	fmt.Printf("  openclaw agent --message \"hi\" --model %s/%s\n", openclaw.ProviderName, modelID)
}
