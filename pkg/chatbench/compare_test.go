package chatbench

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavings(t *testing.T) {
	direct := &RunResult{
		TotalTokens:           1000,
		EstimatedTotalCostUSD: 0.010,
		AvgLatencyMS:          200,
	}
	gateway := &RunResult{
		TotalTokens:           800,
		EstimatedTotalCostUSD: 0.006,
		AvgLatencyMS:          150,
	}

	s := NewComparison("gpt-4o-mini", direct, gateway).Savings()
	assert.Equal(t, 200, s.TokensSaved)
	assert.InDelta(t, 20.0, s.TokenPct, 1e-9)
	assert.InDelta(t, 0.004, s.CostSavedUSD, 1e-12)
	assert.InDelta(t, 40.0, s.CostPct, 1e-9)
	assert.InDelta(t, 50.0, s.LatencySavedMS, 1e-9)
	assert.InDelta(t, 25.0, s.LatencyPct, 1e-9)
}

func TestSavings_GatewayCostsMore(t *testing.T) {
	direct := &RunResult{TotalTokens: 500, EstimatedTotalCostUSD: 0.002, AvgLatencyMS: 100}
	gateway := &RunResult{TotalTokens: 600, EstimatedTotalCostUSD: 0.003, AvgLatencyMS: 120}

	s := NewComparison("gpt-4o-mini", direct, gateway).Savings()
	assert.Equal(t, -100, s.TokensSaved)
	assert.InDelta(t, -20.0, s.TokenPct, 1e-9)
	assert.InDelta(t, -20.0, s.LatencyPct, 1e-9)
}

func TestSavings_ZeroDirectRun(t *testing.T) {
	s := NewComparison("gpt-4o-mini", &RunResult{}, &RunResult{}).Savings()
	assert.Zero(t, s.TokenPct)
	assert.Zero(t, s.CostPct)
	assert.Zero(t, s.LatencyPct)
}

func TestArtifactNames(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	assert.Equal(t, "bench-20250314T092653.json", RunArtifactName(now))
	assert.Equal(t, "comparison-20250314T092653.json", ComparisonArtifactName(now))
}

func TestArtifactRoundTrip_Run(t *testing.T) {
	run := &RunResult{
		Label:       "direct",
		Endpoint:    "https://api.openai.com/v1",
		Model:       "gpt-4o-mini",
		Timestamp:   time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC),
		PromptsRun:  1,
		TotalTokens: 30,
		Results:     []CaseResult{{Name: "Short Chat", OK: true, TotalTokens: 30}},
	}

	path := filepath.Join(t.TempDir(), "bench.json")
	require.NoError(t, SaveArtifact(path, run))

	loaded, comparison, err := LoadArtifact(path)
	require.NoError(t, err)
	assert.Nil(t, comparison)
	require.NotNil(t, loaded)
	assert.Equal(t, run.Label, loaded.Label)
	assert.Equal(t, run.TotalTokens, loaded.TotalTokens)
	require.Len(t, loaded.Results, 1)
	assert.Equal(t, "Short Chat", loaded.Results[0].Name)
}

func TestArtifactRoundTrip_Comparison(t *testing.T) {
	comparison := NewComparison("gpt-4o-mini",
		&RunResult{Label: "direct", TotalTokens: 1000},
		&RunResult{Label: "cacheforge", TotalTokens: 800},
	)

	path := filepath.Join(t.TempDir(), "comparison.json")
	require.NoError(t, SaveArtifact(path, comparison))

	run, loaded, err := LoadArtifact(path)
	require.NoError(t, err)
	assert.Nil(t, run)
	require.NotNil(t, loaded)
	assert.Equal(t, "comparison", loaded.Type)
	assert.Equal(t, 1000, loaded.Direct.TotalTokens)
	assert.Equal(t, 800, loaded.Gateway.TotalTokens)
}

func TestLoadArtifact_ComparisonMissingRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"type": "comparison", "direct": null}`), 0o644))

	_, _, err := LoadArtifact(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing the direct or cacheforge run")
}

func TestLoadArtifact_MissingFile(t *testing.T) {
	_, _, err := LoadArtifact(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read results file")
}
