package contextscan

import (
	"github.com/pkg/errors"
	"github.com/pkoukk/tiktoken-go"
)

// DefaultBudget is the context window assumed when no model or budget is given.
const DefaultBudget = 200_000

var modelContextWindows = map[string]int{
	"claude-3-opus":     200_000,
	"claude-3.5-sonnet": 200_000,
	"claude-3-haiku":    200_000,
	"gpt-4-turbo":       128_000,
	"gpt-4o":            128_000,
	"gpt-4":             8_192,
	"gpt-3.5-turbo":     16_385,
}

// ContextWindow returns the context window for a known model, or
// DefaultBudget for anything unrecognized.
func ContextWindow(model string) int {
	if window, ok := modelContextWindows[model]; ok {
		return window
	}
	return DefaultBudget
}

// Estimator counts the tokens in a piece of text.
type Estimator interface {
	Count(text string) int
}

// HeuristicEstimator approximates tokens at roughly 4 characters each. It is
// fast, needs no encoding data, and is accurate enough for budget planning.
type HeuristicEstimator struct{}

// Count returns max(1, runes/4).
func (HeuristicEstimator) Count(text string) int {
	n := len([]rune(text)) / 4
	if n < 1 {
		n = 1
	}
	return n
}

// TiktokenEstimator counts tokens with the cl100k_base encoding.
type TiktokenEstimator struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenEstimator loads the cl100k_base encoding.
func NewTiktokenEstimator() (*TiktokenEstimator, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, errors.Wrap(err, "failed to load cl100k_base encoding")
	}
	return &TiktokenEstimator{enc: enc}, nil
}

// Count returns the exact cl100k_base token count.
func (e *TiktokenEstimator) Count(text string) int {
	return len(e.enc.Encode(text, nil, nil))
}

// NewEstimator picks the token counter for a run. The heuristic never fails;
// precise counting requires the tiktoken encoding data to be loadable.
func NewEstimator(precise bool) (Estimator, error) {
	if !precise {
		return HeuristicEstimator{}, nil
	}
	return NewTiktokenEstimator()
}
