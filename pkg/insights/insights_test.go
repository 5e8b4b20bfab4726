package insights

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anvil-ai/cacheforge-skills/pkg/llm"
	"github.com/anvil-ai/cacheforge-skills/pkg/transcript"
)

// fakeClient returns scripted responses in order and records the requests.
type fakeClient struct {
	responses []string
	errs      []error
	requests  []llm.Request
}

func (f *fakeClient) Complete(_ context.Context, req llm.Request) (string, llm.Usage, error) {
	i := len(f.requests)
	f.requests = append(f.requests, req)
	if i < len(f.errs) && f.errs[i] != nil {
		return "", llm.Usage{}, f.errs[i]
	}
	return f.responses[i], llm.Usage{InputTokens: 100, OutputTokens: 50}, nil
}

func (f *fakeClient) Model() string { return "fake-model" }

func testTranscript(t *testing.T) *transcript.Transcript {
	t.Helper()
	tr, err := transcript.Parse(
		"Alice: We agreed to ship the gateway on Friday.\n"+
			"Bob: I will update the pricing table before then.\n",
		transcript.FormatText,
	)
	require.NoError(t, err)
	return tr
}

const factsResponse = `{
  "keyPoints": ["Gateway launch timing"],
  "decisions": ["Ship the gateway on Friday"],
  "actionItems": [{"description": "Update the pricing table", "owner": "Bob", "due": "Friday"}],
  "risks": [],
  "openQuestions": [],
  "participants": ["Alice", "Bob"]
}`

func TestExtract(t *testing.T) {
	client := &fakeClient{
		responses: []string{factsResponse, "The team committed to a Friday gateway launch."},
	}
	extractor := NewExtractor(client)

	result, usage, err := extractor.Extract(context.Background(), testTranscript(t))
	require.NoError(t, err)

	assert.Equal(t, "The team committed to a Friday gateway launch.", result.Summary)
	assert.Equal(t, []string{"Ship the gateway on Friday"}, result.Decisions)
	require.Len(t, result.ActionItems, 1)
	assert.Equal(t, "Bob", result.ActionItems[0].Owner)
	assert.Equal(t, []string{"Alice", "Bob"}, result.Participants)

	// both stages counted
	assert.Equal(t, 200, usage.InputTokens)
	assert.Equal(t, 100, usage.OutputTokens)
	assert.Equal(t, 300, usage.TotalTokens())
}

func TestExtract_SummaryUsesFactsNotTranscript(t *testing.T) {
	client := &fakeClient{
		responses: []string{factsResponse, "Summary."},
	}

	_, _, err := NewExtractor(client).Extract(context.Background(), testTranscript(t))
	require.NoError(t, err)
	require.Len(t, client.requests, 2)

	first := client.requests[0].Prompt
	assert.Contains(t, first, "We agreed to ship the gateway on Friday.")
	assert.Contains(t, first, `"keyPoints"`, "extraction prompt should embed the schema")

	second := client.requests[1].Prompt
	assert.Contains(t, second, "Update the pricing table")
	assert.NotContains(t, second, "We agreed to ship the gateway on Friday.",
		"summary stage must work from extracted facts, not the raw transcript")
}

func TestExtract_RecoversFencedResponse(t *testing.T) {
	client := &fakeClient{
		responses: []string{
			"Here are the facts:\n```json\n" + factsResponse + "\n```",
			"Summary.",
		},
	}

	result, _, err := NewExtractor(client).Extract(context.Background(), testTranscript(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"Gateway launch timing"}, result.KeyPoints)
}

func TestExtract_ExtractionCallFails(t *testing.T) {
	client := &fakeClient{
		responses: []string{""},
		errs:      []error{assert.AnError},
	}

	_, usage, err := NewExtractor(client).Extract(context.Background(), testTranscript(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fact extraction call failed")
	assert.Equal(t, 0, usage.TotalTokens())
}

func TestExtract_SummaryCallFails(t *testing.T) {
	client := &fakeClient{
		responses: []string{factsResponse, ""},
		errs:      []error{nil, assert.AnError},
	}

	_, usage, err := NewExtractor(client).Extract(context.Background(), testTranscript(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "summary call failed")
	// first stage usage is still reported
	assert.Equal(t, 150, usage.TotalTokens())
}

func TestExtract_GarbageResponse(t *testing.T) {
	client := &fakeClient{
		responses: []string{"I could not process the transcript, sorry."},
	}

	_, _, err := NewExtractor(client).Extract(context.Background(), testTranscript(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no JSON object")
}

func TestExtractionPrompt_IncludesRoster(t *testing.T) {
	tr := testTranscript(t)
	tr.Duration = 90 * time.Second

	prompt := extractionPrompt(tr)
	assert.Contains(t, prompt, "2 speakers: Alice, Bob")
	assert.Contains(t, prompt, "00:01:30")
	assert.True(t, strings.Contains(prompt, `"additionalProperties": false`) ||
		strings.Contains(prompt, `"additionalProperties":false`))
}
