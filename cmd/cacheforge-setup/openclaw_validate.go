package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anvil-ai/cacheforge-skills/pkg/openclaw"
	"github.com/anvil-ai/cacheforge-skills/pkg/presenter"
)

var openclawValidateCmd = &cobra.Command{
	Use:   "openclaw-validate",
	Short: "Check the CacheForge provider is wired into OpenClaw",
	Long: `Check the OpenClaw config contains the CacheForge provider block.
With --agent-test, also send one message through the gateway-backed model
and print the agent's reply.

Example:
  cacheforge-setup openclaw-validate
  cacheforge-setup openclaw-validate --agent-test --model-id gpt-5.2`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		explicitPath, _ := cmd.Flags().GetString("config")
		agentTest, _ := cmd.Flags().GetBool("agent-test")
		modelID, _ := cmd.Flags().GetString("model-id")
		message, _ := cmd.Flags().GetString("message")

		if err := openclaw.EnsureCLI(); err != nil {
			presenter.Error(err, "OpenClaw CLI not found")
			os.Exit(1)
		}

		configPath := openclaw.ConfigPath(explicitPath)
		if err := openclaw.Validate(ctx, configPath); err != nil {
			presenter.Error(err, "Validation failed")
			os.Exit(1)
		}
		presenter.Success("OpenClaw is configured with CacheForge.")

		if !agentTest {
			return
		}
		out, err := openclaw.AgentTest(ctx, configPath, modelID, message)
		if err != nil {
			presenter.Error(err, "Agent test failed")
			if out != "" {
				fmt.Println(out)
			}
			os.Exit(1)
		}
		fmt.Println(out)
	},
}

func init() {
	openclawValidateCmd.Flags().String("config", "", "OpenClaw config path (defaults to OPENCLAW_CONFIG_PATH or ~/.openclaw/openclaw.json)")
	openclawValidateCmd.Flags().Bool("agent-test", false, "Send a one-shot agent message through the gateway")
	openclawValidateCmd.Flags().String("model-id", "", "Model for the agent test")
	openclawValidateCmd.Flags().String("message", "", "Message for the agent test")
}
