package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup_LongestMatchWins(t *testing.T) {
	mini := Lookup("gpt-4o-mini")
	assert.Equal(t, 0.15, mini.InputPer1M)
	assert.Equal(t, 0.60, mini.OutputPer1M)

	full := Lookup("gpt-4o")
	assert.Equal(t, 2.50, full.InputPer1M)
}

func TestLookup_DatedVariants(t *testing.T) {
	p := Lookup("claude-3-haiku-20240307-preview")
	assert.Equal(t, 0.25, p.InputPer1M)
	assert.Equal(t, 1.25, p.OutputPer1M)
}

func TestLookup_CaseInsensitive(t *testing.T) {
	p := Lookup("GPT-4-Turbo")
	assert.Equal(t, 10.00, p.InputPer1M)
}

func TestLookup_UnknownFallsBack(t *testing.T) {
	p := Lookup("some-local-model")
	assert.Equal(t, DefaultPricing, p)
}

func TestEstimateCost(t *testing.T) {
	// 1M input + 1M output at gpt-4o rates
	cost := EstimateCost("gpt-4o", 1_000_000, 1_000_000)
	assert.InDelta(t, 12.50, cost, 1e-9)

	cost = EstimateCost("gpt-3.5-turbo", 2000, 1000)
	assert.InDelta(t, (2000*0.50+1000*1.50)/1_000_000, cost, 1e-12)

	assert.Zero(t, EstimateCost("gpt-4o", 0, 0))
}
