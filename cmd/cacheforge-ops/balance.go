package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anvil-ai/cacheforge-skills/pkg/presenter"
	"github.com/anvil-ai/cacheforge-skills/pkg/render"
)

// Balance thresholds in USD for the gauge color and the low-credit hint.
const (
	balanceHealthyUSD = 5.0
	balanceLowUSD     = 1.0
	balanceScaleUSD   = 50.0
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the credit balance and auto-topup state",
	Long: `Show the account's credit balance as a colored gauge, plus the
auto-topup configuration and whether a payment method is on file.

Example:
  cacheforge-ops balance
  cacheforge-ops balance --json`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		jsonOutput, _ := cmd.Flags().GetBool("json")
		client := gatewayClientFromFlags(cmd)

		billing, err := client.GetBilling(ctx)
		if err != nil {
			presenter.Error(err, "Failed to fetch billing")
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(billing)
			return
		}

		balance := billing.BalanceUSD()
		level := render.GaugeBad
		switch {
		case balance > balanceHealthyUSD:
			level = render.GaugeGood
		case balance > balanceLowUSD:
			level = render.GaugeWarn
		}

		lines := []string{
			fmt.Sprintf("Balance     %s %s", render.Gauge(balance, balanceScaleUSD, 24, level), render.FormatCost(balance)),
			fmt.Sprintf("Auto-topup  %s", enabledDisabled(billing.AutoTopupEnabled)),
		}
		if billing.AutoTopupEnabled {
			lines = append(lines, fmt.Sprintf("            below $%.2f, refill $%.2f",
				float64(billing.AutoTopupThresholdCents)/100, float64(billing.AutoTopupAmountCents)/100))
		}
		if billing.DefaultPaymentMethodSet {
			lines = append(lines, "Payment     method on file")
		} else {
			lines = append(lines, "Payment     no method on file")
		}
		fmt.Println(render.Box("CacheForge Balance", lines...))

		if balance <= balanceLowUSD {
			presenter.Warning("Balance is low. Top up with: cacheforge-ops topup --amount 20")
		}
	},
}

func init() {
	balanceCmd.Flags().Bool("json", false, "Emit the billing state as JSON")
}

func enabledDisabled(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}
