package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/anvil-ai/cacheforge-skills/pkg/presenter"
)

// TopupConfig holds configuration for the topup command
type TopupConfig struct {
	AmountUSD  int
	Method     string
	JSONOutput bool
}

// NewTopupConfig creates a new TopupConfig with default values
func NewTopupConfig() *TopupConfig {
	return &TopupConfig{
		AmountUSD:  0,
		Method:     "stripe",
		JSONOutput: false,
	}
}

var topupCmd = &cobra.Command{
	Use:   "topup",
	Short: "Create a one-time top-up payment link",
	Long: `Create a one-time payment link for the given amount and print it.
The link is opened in a browser by the user; the credit lands once the
payment settles.

Example:
  cacheforge-ops topup --amount 20
  cacheforge-ops topup --amount 50 --method crypto`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		config := getTopupConfigFromFlags(cmd)
		client := gatewayClientFromFlags(cmd)

		paymentURL, err := client.Topup(ctx, config.AmountUSD, config.Method)
		if err != nil {
			presenter.Error(err, "Failed to create top-up")
			os.Exit(1)
		}

		if config.JSONOutput {
			printJSON(map[string]any{"amountUsd": config.AmountUSD, "method": config.Method, "paymentUrl": paymentURL})
			return
		}

		presenter.Success(fmt.Sprintf("Top-up of $%d created via %s", config.AmountUSD, config.Method))
		presenter.Info("Complete the payment here:")
		fmt.Println(paymentURL)
	},
}

func init() {
	topupDefaults := NewTopupConfig()
	topupCmd.Flags().Int("amount", topupDefaults.AmountUSD, "Top-up amount in USD")
	topupCmd.Flags().String("method", topupDefaults.Method, "Payment method (stripe or crypto)")
	topupCmd.Flags().Bool("json", topupDefaults.JSONOutput, "Emit the payment link as JSON")
}

// getTopupConfigFromFlags extracts topup configuration from command flags
func getTopupConfigFromFlags(cmd *cobra.Command) *TopupConfig {
	config := NewTopupConfig()

	if amount, err := cmd.Flags().GetInt("amount"); err == nil {
		config.AmountUSD = amount
	}
	if method, err := cmd.Flags().GetString("method"); err == nil {
		config.Method = method
	}
	if jsonOutput, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSONOutput = jsonOutput
	}

	if config.AmountUSD <= 0 {
		presenter.Error(errors.New("amount is required"), "Pass a positive USD amount with --amount")
		os.Exit(1)
	}
	if config.Method != "stripe" && config.Method != "crypto" {
		presenter.Error(errors.Errorf("unknown payment method %q", config.Method), "Use --method stripe or --method crypto")
		os.Exit(1)
	}

	return config
}
