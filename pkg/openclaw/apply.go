package openclaw

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/anvil-ai/cacheforge-skills/pkg/cmdexec"
	"github.com/anvil-ai/cacheforge-skills/pkg/logger"
)

const (
	binaryName   = "openclaw"
	applyTimeout = 30 * time.Second
	getTimeout   = 15 * time.Second
	agentTimeout = 120 * time.Second
)

// EnsureCLI checks the OpenClaw binary is installed.
func EnsureCLI() error {
	return cmdexec.EnsureBinary(binaryName, "install OpenClaw, or use openclaw-snippet for manual paste")
}

// BackupConfig copies the config to <path>.cacheforge.bak before the first
// apply. The first-known-good backup is never overwritten, and failures are
// non-fatal.
func BackupConfig(ctx context.Context, path string) {
	backup := path + ".cacheforge.bak"
	if _, err := os.Stat(backup); err == nil {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	if err := os.WriteFile(backup, data, 0o600); err != nil {
		logger.G(ctx).WithError(err).Warn("could not back up OpenClaw config")
		return
	}
	logger.G(ctx).WithField("backup", backup).Debug("backed up OpenClaw config")
}

func runOpenclaw(ctx context.Context, configPath string, timeout time.Duration, args ...string) (string, error) {
	env := []string{"OPENCLAW_CONFIG_PATH=" + configPath}
	return cmdexec.RunEnv(ctx, timeout, env, binaryName, args...)
}

// Apply writes the provider block into the config through `openclaw config
// set` so JSON5 configs survive untouched. An empty primaryModelID leaves the
// default model alone.
func Apply(ctx context.Context, configPath string, provider Provider, primaryModelID string) error {
	providerJSON, err := json.Marshal(provider)
	if err != nil {
		return errors.Wrap(err, "failed to encode provider config")
	}

	steps := [][]string{
		{"config", "set", "models.mode", "merge"},
		{"config", "set", "models.providers." + ProviderName, string(providerJSON), "--json"},
	}
	if primaryModelID != "" {
		steps = append(steps, []string{"config", "set", "agents.defaults.model.primary", ProviderName + "/" + primaryModelID})
	}

	BackupConfig(ctx, configPath)

	for _, step := range steps {
		if out, err := runOpenclaw(ctx, configPath, applyTimeout, step...); err != nil {
			return errors.Wrapf(err, "failed to %s (output: %s)", strings.Join(step[:3], " "), strings.TrimSpace(out))
		}
	}
	return nil
}

// Validate checks the provider block exists in the config.
func Validate(ctx context.Context, configPath string) error {
	out, err := runOpenclaw(ctx, configPath, getTimeout, "config", "get", "models.providers."+ProviderName)
	if err != nil {
		return errors.Wrap(err, "CacheForge provider not found in OpenClaw config, run openclaw-apply first")
	}
	if strings.TrimSpace(out) == "" {
		return errors.New("CacheForge provider not found in OpenClaw config, run openclaw-apply first")
	}
	return nil
}

// AgentTest sends one message through the gateway-backed model and returns
// the agent's output.
func AgentTest(ctx context.Context, configPath, modelID, message string) (string, error) {
	if modelID == "" {
		modelID = "gpt-5.2"
	}
	if message == "" {
		message = "CacheForge OpenClaw validation: reply with OK."
	}
	out, err := runOpenclaw(ctx, configPath, agentTimeout,
		"agent", "--message", message, "--model", ProviderName+"/"+modelID, "--thinking", "low")
	if err != nil {
		return out, errors.Wrap(err, "OpenClaw agent test failed")
	}
	return strings.TrimSpace(out), nil
}
