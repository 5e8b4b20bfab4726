// Package insights runs the two-stage extraction pipeline over a parsed
// transcript: stage one pulls structured facts (decisions, action items,
// risks, open questions) as JSON, stage two writes an executive summary from
// those facts rather than from the raw transcript. Keeping the summary off
// the raw transcript keeps it anchored to facts the first stage committed to.
package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"

	"github.com/anvil-ai/cacheforge-skills/pkg/llm"
	"github.com/anvil-ai/cacheforge-skills/pkg/logger"
	"github.com/anvil-ai/cacheforge-skills/pkg/transcript"
)

// ActionItem is a single follow-up extracted from the meeting.
type ActionItem struct {
	Description string `json:"description" jsonschema_description:"What needs to be done"`
	Owner       string `json:"owner,omitempty" jsonschema_description:"Who committed to it, if stated"`
	Due         string `json:"due,omitempty" jsonschema_description:"Due date or timeframe, if stated"`
}

// Facts is the stage-one extraction target. Every field must be grounded in
// the transcript; the model is told to leave lists empty rather than invent.
type Facts struct {
	KeyPoints     []string     `json:"keyPoints" jsonschema_description:"Main topics discussed, at most 8"`
	Decisions     []string     `json:"decisions" jsonschema_description:"Decisions that were made"`
	ActionItems   []ActionItem `json:"actionItems" jsonschema_description:"Committed follow-ups"`
	Risks         []string     `json:"risks" jsonschema_description:"Risks or blockers raised"`
	OpenQuestions []string     `json:"openQuestions" jsonschema_description:"Questions left unanswered"`
	Participants  []string     `json:"participants" jsonschema_description:"People who spoke or were mentioned as attending"`
}

// Insights is the complete pipeline output.
type Insights struct {
	Summary string `json:"summary"`
	Facts
}

// Extractor drives the two LLM calls.
type Extractor struct {
	client llm.Client
}

// NewExtractor returns an Extractor backed by the given client.
func NewExtractor(client llm.Client) *Extractor {
	return &Extractor{client: client}
}

// Extract runs both stages and returns the insights with accumulated usage.
func (e *Extractor) Extract(ctx context.Context, tr *transcript.Transcript) (*Insights, llm.Usage, error) {
	var total llm.Usage

	log := logger.G(ctx).WithField("model", e.client.Model())
	log.WithField("segments", len(tr.Segments)).Debug("starting fact extraction")

	raw, usage, err := e.client.Complete(ctx, llm.Request{
		System: extractionSystemPrompt,
		Prompt: extractionPrompt(tr),
	})
	total.Add(usage)
	if err != nil {
		return nil, total, errors.Wrap(err, "fact extraction call failed")
	}

	facts, err := DecodeFacts(raw)
	if err != nil {
		return nil, total, err
	}

	factsJSON, err := json.MarshalIndent(facts, "", "  ")
	if err != nil {
		return nil, total, errors.Wrap(err, "failed to re-encode extracted facts")
	}

	log.Debug("starting summary pass")
	summary, usage, err := e.client.Complete(ctx, llm.Request{
		System: summarySystemPrompt,
		Prompt: summaryPrompt(string(factsJSON), tr),
	})
	total.Add(usage)
	if err != nil {
		return nil, total, errors.Wrap(err, "summary call failed")
	}

	return &Insights{
		Summary: strings.TrimSpace(summary),
		Facts:   *facts,
	}, total, nil
}

const extractionSystemPrompt = `You extract structured facts from meeting transcripts. ` +
	`Respond with a single JSON object and nothing else: no prose, no markdown fences. ` +
	`Only include facts supported by the transcript; leave lists empty instead of guessing.`

const summarySystemPrompt = `You write executive meeting summaries. ` +
	`Respond with plain prose, no headings and no lists.`

// factsSchema is generated once from the Facts struct and embedded in the
// extraction prompt so the model sees the exact shape expected back.
var factsSchema = func() string {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema, err := json.MarshalIndent(reflector.Reflect(&Facts{}), "", "  ")
	if err != nil {
		panic(err)
	}
	return string(schema)
}()

func extractionPrompt(tr *transcript.Transcript) string {
	var sb strings.Builder
	sb.WriteString("Extract the facts from this meeting transcript as JSON matching this schema:\n\n")
	sb.WriteString(factsSchema)
	sb.WriteString("\n\nTranscript")
	if len(tr.Speakers) > 0 {
		fmt.Fprintf(&sb, " (%d speakers: %s)", len(tr.Speakers), strings.Join(tr.Speakers, ", "))
	}
	if tr.Duration > 0 {
		fmt.Fprintf(&sb, " (duration %s)", transcript.FormatClock(tr.Duration))
	}
	sb.WriteString(":\n\n")
	sb.WriteString(tr.Text())
	return sb.String()
}

func summaryPrompt(factsJSON string, tr *transcript.Transcript) string {
	var sb strings.Builder
	sb.WriteString("Write an executive summary of a meeting, at most 200 words, ")
	sb.WriteString("based only on these extracted facts:\n\n")
	sb.WriteString(factsJSON)
	if len(tr.Speakers) > 0 {
		fmt.Fprintf(&sb, "\n\nThe participants were: %s.", strings.Join(tr.Speakers, ", "))
	}
	return sb.String()
}
