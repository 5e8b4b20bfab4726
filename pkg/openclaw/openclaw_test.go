package openclaw

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultModels(t *testing.T) {
	t.Run("fireworks custom upstream", func(t *testing.T) {
		models := DefaultModels("custom", "https://api.fireworks.ai/inference/v1", nil)
		require.Len(t, models, 1)
		assert.Equal(t, "accounts/fireworks/models/kimi-k2p5", models[0].ID)
	})

	t.Run("openrouter without discovery", func(t *testing.T) {
		models := DefaultModels("openrouter", "https://openrouter.ai/api/v1", nil)
		assert.Len(t, models, 4)
		assert.Equal(t, "anthropic/claude-opus-4.6", models[0].ID)
	})

	t.Run("openrouter filtered by available ids", func(t *testing.T) {
		models := DefaultModels("openrouter", "", []string{"openai/gpt-5.2", "something/else"})
		require.Len(t, models, 1)
		assert.Equal(t, "openai/gpt-5.2", models[0].ID)
	})

	t.Run("openrouter discovery matched nothing curated", func(t *testing.T) {
		models := DefaultModels("openrouter", "", []string{"meta/llama-x"})
		assert.Len(t, models, 2, "falls back to the top two curated entries")
	})

	t.Run("anthropic upstream", func(t *testing.T) {
		models := DefaultModels("anthropic", "https://api.anthropic.com", nil)
		require.Len(t, models, 1)
		assert.Equal(t, "claude-opus-4-6-latest", models[0].ID)
	})

	t.Run("unknown upstream", func(t *testing.T) {
		models := DefaultModels("", "", nil)
		require.Len(t, models, 1)
		assert.Equal(t, "gpt-5.2", models[0].ID)
	})
}

func TestBuildSnippet(t *testing.T) {
	models := []Model{{ID: "gpt-5.2", Name: "GPT-5.2"}}
	snippet := BuildSnippet("https://app.anvil-ai.io", models, "gpt-5.2")

	data, err := json.MarshalIndent(snippet, "", "  ")
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	modelsBlock := decoded["models"].(map[string]any)
	assert.Equal(t, "merge", modelsBlock["mode"])

	provider := modelsBlock["providers"].(map[string]any)["cacheforge"].(map[string]any)
	assert.Equal(t, "https://app.anvil-ai.io/v1", provider["baseUrl"])
	assert.Equal(t, "${CACHEFORGE_API_KEY}", provider["apiKey"], "secrets stay out of the config file")
	assert.Equal(t, "openai-completions", provider["api"])

	agents := decoded["agents"].(map[string]any)
	primary := agents["defaults"].(map[string]any)["model"].(map[string]any)["primary"]
	assert.Equal(t, "cacheforge/gpt-5.2", primary)
}

func TestConfigPath(t *testing.T) {
	t.Setenv("OPENCLAW_CONFIG_PATH", "")
	os.Unsetenv("OPENCLAW_CONFIG_PATH")

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".openclaw", "openclaw.json"), ConfigPath(""))

	t.Setenv("OPENCLAW_CONFIG_PATH", "/etc/openclaw.json")
	assert.Equal(t, "/etc/openclaw.json", ConfigPath(""))

	assert.Equal(t, "/tmp/custom.json", ConfigPath("/tmp/custom.json"))
	assert.Equal(t, filepath.Join(home, "oc.json"), ConfigPath("~/oc.json"))
}

func TestBackupConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "openclaw.json")
	backupPath := configPath + ".cacheforge.bak"
	ctx := context.Background()

	// Missing config: nothing to back up.
	BackupConfig(ctx, configPath)
	assert.NoFileExists(t, backupPath)

	require.NoError(t, os.WriteFile(configPath, []byte(`{"v":1}`), 0o644))
	BackupConfig(ctx, configPath)
	data, err := os.ReadFile(backupPath)
	require.NoError(t, err)
	assert.Equal(t, `{"v":1}`, string(data))

	// A later apply must not clobber the first-known-good backup.
	require.NoError(t, os.WriteFile(configPath, []byte(`{"v":2}`), 0o644))
	BackupConfig(ctx, configPath)
	data, err = os.ReadFile(backupPath)
	require.NoError(t, err)
	assert.Equal(t, `{"v":1}`, string(data))
}

func writeStubCLI(t *testing.T, script string) {
	t.Helper()
	binDir := t.TempDir()
	stub := filepath.Join(binDir, "openclaw")
	require.NoError(t, os.WriteFile(stub, []byte("#!/bin/sh\n"+script), 0o755))
	t.Setenv("PATH", binDir+":"+os.Getenv("PATH"))
}

func TestApply_RunsConfigSetSteps(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "calls.log")
	writeStubCLI(t, `echo "$@" >> `+logPath+`
exit 0`)

	configPath := filepath.Join(dir, "openclaw.json")
	require.NoError(t, os.WriteFile(configPath, []byte("{}"), 0o644))

	provider := NewProvider("https://app.anvil-ai.io", []Model{{ID: "gpt-5.2", Name: "GPT-5.2"}})
	require.NoError(t, Apply(context.Background(), configPath, provider, "gpt-5.2"))

	log, err := os.ReadFile(logPath)
	require.NoError(t, err)
	calls := string(log)
	assert.Contains(t, calls, "config set models.mode merge")
	assert.Contains(t, calls, "config set models.providers.cacheforge")
	assert.Contains(t, calls, "config set agents.defaults.model.primary cacheforge/gpt-5.2")
	assert.FileExists(t, configPath+".cacheforge.bak")
}

func TestApply_SkipsDefaultModelWhenUnset(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "calls.log")
	writeStubCLI(t, `echo "$@" >> `+logPath+`
exit 0`)

	provider := NewProvider("https://app.anvil-ai.io", []Model{{ID: "gpt-5.2", Name: "GPT-5.2"}})
	require.NoError(t, Apply(context.Background(), filepath.Join(dir, "openclaw.json"), provider, ""))

	log, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.NotContains(t, string(log), "agents.defaults.model.primary")
}

func TestApply_StepFailure(t *testing.T) {
	writeStubCLI(t, `echo "bad flag" >&2
exit 2`)

	provider := NewProvider("https://app.anvil-ai.io", nil)
	err := Apply(context.Background(), filepath.Join(t.TempDir(), "openclaw.json"), provider, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config set models.mode")
}

func TestValidate(t *testing.T) {
	t.Run("provider present", func(t *testing.T) {
		writeStubCLI(t, `echo '{"baseUrl":"https://app.anvil-ai.io/v1"}'
exit 0`)
		assert.NoError(t, Validate(context.Background(), "/tmp/openclaw.json"))
	})

	t.Run("empty output", func(t *testing.T) {
		writeStubCLI(t, `exit 0`)
		err := Validate(context.Background(), "/tmp/openclaw.json")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "provider not found")
	})

	t.Run("nonzero exit", func(t *testing.T) {
		writeStubCLI(t, `exit 1`)
		assert.Error(t, Validate(context.Background(), "/tmp/openclaw.json"))
	})
}

func TestAgentTest(t *testing.T) {
	writeStubCLI(t, `echo "OK"
exit 0`)

	out, err := AgentTest(context.Background(), "/tmp/openclaw.json", "", "")
	require.NoError(t, err)
	assert.Equal(t, "OK", out)
}
