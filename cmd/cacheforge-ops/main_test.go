package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTopupTestCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test", Run: func(_ *cobra.Command, _ []string) {}}
	defaults := NewTopupConfig()
	cmd.Flags().Int("amount", defaults.AmountUSD, "")
	cmd.Flags().String("method", defaults.Method, "")
	cmd.Flags().Bool("json", defaults.JSONOutput, "")
	return cmd
}

func newAutoTopupTestCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test", Run: func(_ *cobra.Command, _ []string) {}}
	defaults := NewAutoTopupConfig()
	cmd.Flags().Bool("enable", defaults.Enable, "")
	cmd.Flags().Bool("disable", defaults.Disable, "")
	cmd.Flags().Int("threshold-cents", defaults.ThresholdCents, "")
	cmd.Flags().Int("amount-cents", defaults.AmountCents, "")
	cmd.Flags().Bool("json", defaults.JSONOutput, "")
	return cmd
}

func TestNewTopupConfig(t *testing.T) {
	config := NewTopupConfig()

	assert.Zero(t, config.AmountUSD)
	assert.Equal(t, "stripe", config.Method)
	assert.False(t, config.JSONOutput)
}

// The getters exit the process on invalid combinations, so the tables stay
// on the valid side.
func TestTopupConfigFromFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected *TopupConfig
	}{
		{
			name: "amount only",
			args: []string{"--amount", "20"},
			expected: &TopupConfig{
				AmountUSD: 20,
				Method:    "stripe",
			},
		},
		{
			name: "crypto with json",
			args: []string{"--amount", "50", "--method", "crypto", "--json"},
			expected: &TopupConfig{
				AmountUSD:  50,
				Method:     "crypto",
				JSONOutput: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newTopupTestCmd()
			require.NoError(t, cmd.ParseFlags(tt.args))
			assert.Equal(t, tt.expected, getTopupConfigFromFlags(cmd))
		})
	}
}

func TestNewAutoTopupConfig(t *testing.T) {
	config := NewAutoTopupConfig()

	assert.False(t, config.Enable)
	assert.False(t, config.Disable)
	assert.Equal(t, 200, config.ThresholdCents)
	assert.Equal(t, 1000, config.AmountCents)
}

func TestAutoTopupConfigFromFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected *AutoTopupConfig
	}{
		{
			name: "enable with default amounts",
			args: []string{"--enable"},
			expected: &AutoTopupConfig{
				Enable:         true,
				ThresholdCents: 200,
				AmountCents:    1000,
			},
		},
		{
			name: "enable with custom amounts",
			args: []string{"--enable", "--threshold-cents", "500", "--amount-cents", "2000"},
			expected: &AutoTopupConfig{
				Enable:         true,
				ThresholdCents: 500,
				AmountCents:    2000,
			},
		},
		{
			name: "disable",
			args: []string{"--disable", "--json"},
			expected: &AutoTopupConfig{
				Disable:        true,
				ThresholdCents: 200,
				AmountCents:    1000,
				JSONOutput:     true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newAutoTopupTestCmd()
			require.NoError(t, cmd.ParseFlags(tt.args))
			assert.Equal(t, tt.expected, getAutoTopupConfigFromFlags(cmd))
		})
	}
}
