// Package pricing provides per-model cost estimation for token usage.
// Prices are USD per million tokens and intentionally coarse: they exist so
// benchmark and extraction reports can show an estimated spend, not to bill
// anyone.
package pricing

import "strings"

// ModelPricing holds per-million-token costs in USD.
type ModelPricing struct {
	InputPer1M  float64
	OutputPer1M float64
}

// DefaultPricing is used when no table entry matches the model.
var DefaultPricing = ModelPricing{InputPer1M: 3.00, OutputPer1M: 15.00}

// Known model pricing. Lookup is by substring so dated variants
// (claude-3-haiku-20240307-v2 and the like) still match.
var knownModels = map[string]ModelPricing{
	"gpt-4o":                     {2.50, 10.00},
	"gpt-4o-mini":                {0.15, 0.60},
	"gpt-4-turbo":                {10.00, 30.00},
	"gpt-3.5-turbo":              {0.50, 1.50},
	"claude-sonnet-4-6":          {3.00, 15.00},
	"claude-haiku-4-5-20251001":  {0.80, 4.00},
	"claude-3-5-sonnet-20241022": {3.00, 15.00},
	"claude-3-haiku-20240307":    {0.25, 1.25},
}

// Lookup returns the pricing for a model. The longest table key contained in
// the model name wins, so "gpt-4o-mini" is not shadowed by "gpt-4o". Unknown
// models fall back to DefaultPricing.
func Lookup(model string) ModelPricing {
	m := strings.ToLower(model)
	best := ""
	for key := range knownModels {
		if strings.Contains(m, key) && len(key) > len(best) {
			best = key
		}
	}
	if best == "" {
		return DefaultPricing
	}
	return knownModels[best]
}

// EstimateCost returns the estimated USD cost for the given token counts.
func EstimateCost(model string, inputTokens, outputTokens int) float64 {
	p := Lookup(model)
	return (float64(inputTokens)*p.InputPer1M + float64(outputTokens)*p.OutputPer1M) / 1_000_000
}
