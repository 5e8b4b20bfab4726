package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/anvil-ai/cacheforge-skills/pkg/gateway"
	"github.com/anvil-ai/cacheforge-skills/pkg/presenter"
)

// AutoTopupConfig holds configuration for the auto-topup command
type AutoTopupConfig struct {
	Enable         bool
	Disable        bool
	ThresholdCents int
	AmountCents    int
	JSONOutput     bool
}

// NewAutoTopupConfig creates a new AutoTopupConfig with default values
func NewAutoTopupConfig() *AutoTopupConfig {
	return &AutoTopupConfig{
		Enable:         false,
		Disable:        false,
		ThresholdCents: 200,
		AmountCents:    1000,
		JSONOutput:     false,
	}
}

var autoTopupCmd = &cobra.Command{
	Use:   "auto-topup",
	Short: "Enable or disable automatic top-up",
	Long: `Configure automatic balance refills: when the balance drops below the
threshold, the gateway charges the default payment method for the refill
amount.

Example:
  cacheforge-ops auto-topup --enable
  cacheforge-ops auto-topup --enable --threshold-cents 500 --amount-cents 2000
  cacheforge-ops auto-topup --disable`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		config := getAutoTopupConfigFromFlags(cmd)
		client := gatewayClientFromFlags(cmd)

		settings := gateway.AutoTopupSettings{Enabled: config.Enable}
		if config.Enable {
			settings.ThresholdCents = config.ThresholdCents
			settings.AmountCents = config.AmountCents
		}

		if err := client.SetAutoTopup(ctx, settings); err != nil {
			presenter.Error(err, "Failed to update auto-topup")
			os.Exit(1)
		}

		if config.JSONOutput {
			printJSON(settings)
			return
		}

		if config.Enable {
			presenter.Success(fmt.Sprintf("Auto-topup enabled: below $%.2f, refill $%.2f",
				float64(config.ThresholdCents)/100, float64(config.AmountCents)/100))
		} else {
			presenter.Success("Auto-topup disabled")
		}
	},
}

func init() {
	autoTopupDefaults := NewAutoTopupConfig()
	autoTopupCmd.Flags().Bool("enable", autoTopupDefaults.Enable, "Enable automatic top-up")
	autoTopupCmd.Flags().Bool("disable", autoTopupDefaults.Disable, "Disable automatic top-up")
	autoTopupCmd.Flags().Int("threshold-cents", autoTopupDefaults.ThresholdCents, "Refill when the balance drops below this many cents")
	autoTopupCmd.Flags().Int("amount-cents", autoTopupDefaults.AmountCents, "Refill amount in cents")
	autoTopupCmd.Flags().Bool("json", autoTopupDefaults.JSONOutput, "Emit the applied settings as JSON")
}

// getAutoTopupConfigFromFlags extracts auto-topup configuration from command flags
func getAutoTopupConfigFromFlags(cmd *cobra.Command) *AutoTopupConfig {
	config := NewAutoTopupConfig()

	if enable, err := cmd.Flags().GetBool("enable"); err == nil {
		config.Enable = enable
	}
	if disable, err := cmd.Flags().GetBool("disable"); err == nil {
		config.Disable = disable
	}
	if threshold, err := cmd.Flags().GetInt("threshold-cents"); err == nil {
		config.ThresholdCents = threshold
	}
	if amount, err := cmd.Flags().GetInt("amount-cents"); err == nil {
		config.AmountCents = amount
	}
	if jsonOutput, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSONOutput = jsonOutput
	}

	if config.Enable == config.Disable {
		presenter.Error(errors.New("choose one"), "Pass exactly one of --enable or --disable")
		os.Exit(1)
	}
	if config.Enable && (config.ThresholdCents <= 0 || config.AmountCents <= 0) {
		presenter.Error(errors.New("invalid amounts"), "--threshold-cents and --amount-cents must be positive")
		os.Exit(1)
	}

	return config
}
