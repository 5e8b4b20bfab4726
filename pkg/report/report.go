// Package report renders the meeting-notes Markdown report from a run
// record. The template ships embedded so the binary stays self-contained.
package report

import (
	"bytes"
	"embed"
	"strings"
	"text/template"

	"github.com/pkg/errors"

	"github.com/anvil-ai/cacheforge-skills/pkg/history"
	"github.com/anvil-ai/cacheforge-skills/pkg/render"
)

//go:embed templates/*
var templateFS embed.FS

const meetingTemplate = "templates/meeting.md.tmpl"

// actionRow is one pre-formatted action item table row.
type actionRow struct {
	N      int
	Action string
	Owner  string
	Due    string
}

// meetingView is the template's data. Everything is pre-formatted here so
// the template itself stays free of logic.
type meetingView struct {
	Title         string
	Summary       string
	KeyPoints     []string
	Decisions     []string
	ActionItems   []actionRow
	Risks         []string
	OpenQuestions []string
	Participants  []string
	Source        string
	Format        string
	Segments      int
	Speakers      int
	Model         string
	InputTokens   string
	OutputTokens  string
	Cost          string
	RunID         string
	When          string
}

// Meeting renders the Markdown report for one extraction run.
func Meeting(rec *history.Record) (string, error) {
	if rec.Insights == nil {
		return "", errors.New("run record has no insights to render")
	}

	view := meetingView{
		Title:         rec.Title,
		Summary:       strings.TrimSpace(rec.Insights.Summary),
		KeyPoints:     rec.Insights.KeyPoints,
		Decisions:     rec.Insights.Decisions,
		Risks:         rec.Insights.Risks,
		OpenQuestions: rec.Insights.OpenQuestions,
		Participants:  rec.Insights.Participants,
		Source:        rec.Source,
		Format:        rec.Format,
		Segments:      rec.Segments,
		Speakers:      rec.Speakers,
		Model:         rec.Model,
		InputTokens:   render.FormatNumber(int64(rec.Usage.InputTokens)),
		OutputTokens:  render.FormatNumber(int64(rec.Usage.OutputTokens)),
		Cost:          render.FormatCost(rec.Cost),
		RunID:         rec.ID,
	}
	if !rec.CreatedAt.IsZero() {
		view.When = rec.CreatedAt.UTC().Format("2006-01-02 15:04 UTC")
	}
	for i, item := range rec.Insights.ActionItems {
		view.ActionItems = append(view.ActionItems, actionRow{
			N:      i + 1,
			Action: cell(item.Description),
			Owner:  cellOr(item.Owner),
			Due:    cellOr(item.Due),
		})
	}

	tmplContent, err := templateFS.ReadFile(meetingTemplate)
	if err != nil {
		return "", errors.Wrap(err, "failed to read report template")
	}
	tmpl, err := template.New("meeting").Parse(string(tmplContent))
	if err != nil {
		return "", errors.Wrap(err, "failed to parse report template")
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return "", errors.Wrap(err, "failed to render report")
	}
	return buf.String(), nil
}

// cell makes a string safe inside a Markdown table row.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.TrimSpace(s)
}

func cellOr(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return cell(s)
}
