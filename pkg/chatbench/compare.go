package chatbench

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// Comparison pairs a direct-provider run with a gateway run over the same
// suite. The JSON keys match the saved artifact format.
type Comparison struct {
	Type      string     `json:"type"`
	Timestamp time.Time  `json:"timestamp"`
	Model     string     `json:"model"`
	Direct    *RunResult `json:"direct"`
	Gateway   *RunResult `json:"cacheforge"`
}

// NewComparison assembles the comparison artifact.
func NewComparison(model string, direct, gateway *RunResult) *Comparison {
	return &Comparison{
		Type:      "comparison",
		Timestamp: time.Now().UTC(),
		Model:     model,
		Direct:    direct,
		Gateway:   gateway,
	}
}

// Savings summarizes what the gateway run saved relative to direct. Negative
// percentages mean the gateway run cost more.
type Savings struct {
	TokensSaved    int
	TokenPct       float64
	CostSavedUSD   float64
	CostPct        float64
	LatencySavedMS float64
	LatencyPct     float64
}

// Savings computes the deltas between the two runs.
func (c *Comparison) Savings() Savings {
	var s Savings
	s.TokensSaved = c.Direct.TotalTokens - c.Gateway.TotalTokens
	if c.Direct.TotalTokens > 0 {
		s.TokenPct = float64(s.TokensSaved) / float64(c.Direct.TotalTokens) * 100
	}
	s.CostSavedUSD = c.Direct.EstimatedTotalCostUSD - c.Gateway.EstimatedTotalCostUSD
	if c.Direct.EstimatedTotalCostUSD > 0 {
		s.CostPct = s.CostSavedUSD / c.Direct.EstimatedTotalCostUSD * 100
	}
	s.LatencySavedMS = c.Direct.AvgLatencyMS - c.Gateway.AvgLatencyMS
	if c.Direct.AvgLatencyMS > 0 {
		s.LatencyPct = s.LatencySavedMS / c.Direct.AvgLatencyMS * 100
	}
	return s
}

// RunArtifactName is the default output file for a single run.
func RunArtifactName(now time.Time) string {
	return "bench-" + now.UTC().Format("20060102T150405") + ".json"
}

// ComparisonArtifactName is the default output file for a comparison.
func ComparisonArtifactName(now time.Time) string {
	return "comparison-" + now.UTC().Format("20060102T150405") + ".json"
}

// SaveArtifact writes a run or comparison as pretty-printed JSON.
func SaveArtifact(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal results")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write results file")
	}
	return nil
}

// LoadArtifact reads a saved artifact, returning whichever of the two shapes
// the file holds.
func LoadArtifact(path string) (*RunResult, *Comparison, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to read results file")
	}

	if gjson.GetBytes(data, "type").String() == "comparison" {
		var comparison Comparison
		if err := json.Unmarshal(data, &comparison); err != nil {
			return nil, nil, errors.Wrapf(err, "%s is not a valid comparison file", path)
		}
		if comparison.Direct == nil || comparison.Gateway == nil {
			return nil, nil, errors.Errorf("%s is missing the direct or cacheforge run", path)
		}
		return nil, &comparison, nil
	}

	var run RunResult
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, nil, errors.Wrapf(err, "%s is not a valid results file", path)
	}
	return &run, nil, nil
}
