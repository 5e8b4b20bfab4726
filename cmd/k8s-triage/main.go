package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/anvil-ai/cacheforge-skills/pkg/kubehealth"
	"github.com/anvil-ai/cacheforge-skills/pkg/presenter"
	"github.com/anvil-ai/cacheforge-skills/pkg/skillcmd"
)

// TriageConfig holds configuration for the triage run
type TriageConfig struct {
	Namespace   string
	Context     string
	Kubeconfig  string
	EventsSince time.Duration
	Timeout     time.Duration
	JSONOutput  bool
}

// NewTriageConfig creates a new TriageConfig with default values
func NewTriageConfig() *TriageConfig {
	return &TriageConfig{
		Namespace:   "",
		Context:     "",
		Kubeconfig:  "",
		EventsSince: time.Hour,
		Timeout:     30 * time.Second,
		JSONOutput:  false,
	}
}

var rootCmd = skillcmd.NewRoot(
	"k8s-triage",
	"One-shot Kubernetes cluster triage",
	`Snapshot cluster health with kubectl and print a Markdown triage report.

The report covers node readiness and pressure conditions, pods stuck outside
Running/Succeeded, crash loops and image pull failures, high restart counts,
and recent warning events. Findings never change the exit code; the command
exits nonzero only when kubectl itself fails.

Example:
  k8s-triage
  k8s-triage --namespace 'prod-*' --events-since 2h
  k8s-triage --context staging --kubeconfig ~/.kube/staging --json`,
)

func init() {
	defaults := NewTriageConfig()
	rootCmd.Args = cobra.NoArgs
	rootCmd.Flags().StringP("namespace", "n", defaults.Namespace, "Glob pattern filtering pod and event namespaces (empty for all)")
	rootCmd.Flags().String("context", defaults.Context, "Kubeconfig context to use")
	rootCmd.Flags().String("kubeconfig", defaults.Kubeconfig, "Path to the kubeconfig file")
	rootCmd.Flags().Duration("events-since", defaults.EventsSince, "Only count warning events newer than this")
	rootCmd.Flags().Duration("timeout", defaults.Timeout, "Timeout per kubectl invocation")
	rootCmd.Flags().Bool("json", defaults.JSONOutput, "Emit the raw report as JSON instead of Markdown")
	rootCmd.Run = func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		config := getTriageConfigFromFlags(cmd)
		runTriage(ctx, config)
	}
}

// getTriageConfigFromFlags extracts triage configuration from command flags
func getTriageConfigFromFlags(cmd *cobra.Command) *TriageConfig {
	config := NewTriageConfig()

	if namespace, err := cmd.Flags().GetString("namespace"); err == nil {
		config.Namespace = namespace
	}
	if kubeContext, err := cmd.Flags().GetString("context"); err == nil {
		config.Context = kubeContext
	}
	if kubeconfig, err := cmd.Flags().GetString("kubeconfig"); err == nil {
		config.Kubeconfig = kubeconfig
	}
	if eventsSince, err := cmd.Flags().GetDuration("events-since"); err == nil {
		config.EventsSince = eventsSince
	}
	if timeout, err := cmd.Flags().GetDuration("timeout"); err == nil {
		config.Timeout = timeout
	}
	if jsonOutput, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSONOutput = jsonOutput
	}

	return config
}

func runTriage(ctx context.Context, config *TriageConfig) {
	report, err := kubehealth.Run(ctx, kubehealth.Options{
		Namespace:   config.Namespace,
		Context:     config.Context,
		Kubeconfig:  config.Kubeconfig,
		EventsSince: config.EventsSince,
		Timeout:     config.Timeout,
	})
	if err != nil {
		presenter.Error(err, "Cluster triage failed")
		os.Exit(1)
	}

	if config.JSONOutput {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			presenter.Error(err, "Failed to encode report")
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	fmt.Print(report.Markdown())
}

func main() {
	skillcmd.Execute(rootCmd)
}
