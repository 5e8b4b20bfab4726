package insights

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/pkg/errors"
)

// DecodeFacts parses a model response into Facts. Models are told to return
// bare JSON but in practice wrap it in fences or prose, or truncate the tail,
// so this strips fences, isolates the outermost object, and finally runs a
// repair pass before giving up.
func DecodeFacts(raw string) (*Facts, error) {
	candidate := extractJSONBlock(raw)
	if candidate == "" {
		return nil, errors.New("model response contained no JSON object")
	}

	var facts Facts
	if err := json.Unmarshal([]byte(candidate), &facts); err == nil {
		return &facts, nil
	}

	repaired, err := jsonrepair.JSONRepair(candidate)
	if err != nil {
		return nil, errors.Wrap(err, "model returned malformed JSON and repair failed")
	}
	if err := json.Unmarshal([]byte(repaired), &facts); err != nil {
		return nil, errors.Wrap(err, "model returned malformed JSON")
	}
	return &facts, nil
}

// extractJSONBlock isolates the most plausible JSON object from a free-text
// response: fenced block first, otherwise the span from the first '{' to the
// last '}', otherwise from the first '{' to end of input (truncated output).
func extractJSONBlock(raw string) string {
	s := strings.TrimSpace(raw)

	if idx := strings.Index(s, "```"); idx >= 0 {
		rest := s[idx+3:]
		// Tolerate a language tag on the fence line.
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[nl+1:]
		}
		if end := strings.Index(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		s = strings.TrimSpace(rest)
	}

	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	end := strings.LastIndexByte(s, '}')
	if end > start {
		return s[start : end+1]
	}
	// No closing brace: hand the truncated tail to the repair pass.
	return s[start:]
}
