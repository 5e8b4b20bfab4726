// Package transcript parses meeting transcripts in WebVTT, SubRip (SRT), and
// plain "Speaker: line" form into a normalized segment list. Detection is
// content-based so callers can accept any of the three without asking the
// user which one they have.
package transcript

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Format identifies a supported transcript format.
type Format string

const (
	// FormatAuto lets Parse detect the format from the content.
	FormatAuto Format = "auto"
	// FormatVTT is WebVTT.
	FormatVTT Format = "vtt"
	// FormatSRT is SubRip.
	FormatSRT Format = "srt"
	// FormatText is plain "Speaker: line" text.
	FormatText Format = "text"
)

// Segment is one normalized utterance.
type Segment struct {
	Index   int           `json:"index"`
	Speaker string        `json:"speaker,omitempty"`
	Start   time.Duration `json:"start"`
	End     time.Duration `json:"end"`
	Text    string        `json:"text"`
}

// Transcript is the parsed and normalized document.
type Transcript struct {
	Format   Format        `json:"format"`
	Segments []Segment     `json:"segments"`
	Speakers []string      `json:"speakers"`
	Duration time.Duration `json:"duration"`
}

var srtTimingRe = regexp.MustCompile(`^\d{1,2}:\d{2}:\d{2}[,.]\d{3}\s+-->`)

// Detect inspects the content and returns the most likely format.
func Detect(content string) Format {
	body := strings.TrimPrefix(content, "﻿")

	lines := strings.Split(body, "\n")
	var first string
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			first = strings.TrimSpace(line)
			break
		}
	}

	if strings.HasPrefix(first, "WEBVTT") {
		return FormatVTT
	}

	// SRT starts with a numeric cue index followed by a timing line.
	if isDigits(first) {
		for i, line := range lines {
			if strings.TrimSpace(line) == first {
				for _, next := range lines[i+1:] {
					if strings.TrimSpace(next) == "" {
						continue
					}
					if srtTimingRe.MatchString(strings.TrimSpace(next)) {
						return FormatSRT
					}
					break
				}
				break
			}
		}
	}

	return FormatText
}

// Parse parses content into a normalized transcript. An empty or auto format
// triggers detection.
func Parse(content string, format Format) (*Transcript, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errors.New("transcript is empty")
	}

	if format == "" || format == FormatAuto {
		format = Detect(content)
	}

	var (
		segments []Segment
		err      error
	)
	switch format {
	case FormatVTT:
		segments, err = parseVTT(content)
	case FormatSRT:
		segments, err = parseSRT(content)
	case FormatText:
		segments = parsePlain(content)
	default:
		return nil, errors.Errorf("unsupported transcript format %q", format)
	}
	if err != nil {
		return nil, err
	}

	segments = normalize(segments)
	if len(segments) == 0 {
		return nil, errors.Errorf("no usable segments found in %s transcript", format)
	}

	t := &Transcript{
		Format:   format,
		Segments: segments,
		Speakers: speakerRoster(segments),
	}
	for _, s := range segments {
		if s.End > t.Duration {
			t.Duration = s.End
		}
	}
	return t, nil
}

// Text flattens the transcript into "Speaker: line" form for LLM prompts.
func (t *Transcript) Text() string {
	var sb strings.Builder
	for _, s := range t.Segments {
		if s.Speaker != "" {
			sb.WriteString(s.Speaker)
			sb.WriteString(": ")
		}
		sb.WriteString(s.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}

// mergeGap is the largest silence between consecutive same-speaker segments
// that still merges them into one utterance.
const mergeGap = 5 * time.Second

// normalize drops empty segments, collapses whitespace, merges consecutive
// same-speaker segments, and reindexes.
func normalize(segments []Segment) []Segment {
	var out []Segment
	for _, seg := range segments {
		seg.Text = strings.Join(strings.Fields(seg.Text), " ")
		if seg.Text == "" {
			continue
		}

		if len(out) > 0 {
			prev := &out[len(out)-1]
			if prev.Speaker == seg.Speaker && mergeable(*prev, seg) {
				prev.Text += " " + seg.Text
				if seg.End > prev.End {
					prev.End = seg.End
				}
				continue
			}
		}
		out = append(out, seg)
	}

	for i := range out {
		out[i].Index = i + 1
	}
	return out
}

func mergeable(prev, next Segment) bool {
	// Untimed segments (plain text) merge on speaker alone.
	if prev.End == 0 && next.Start == 0 {
		return true
	}
	return next.Start-prev.End <= mergeGap
}

func speakerRoster(segments []Segment) []string {
	seen := make(map[string]bool)
	var roster []string
	for _, s := range segments {
		if s.Speaker == "" || seen[s.Speaker] {
			continue
		}
		seen[s.Speaker] = true
		roster = append(roster, s.Speaker)
	}
	return roster
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// parseClock parses HH:MM:SS.mmm or MM:SS.mmm timestamps; SRT's comma
// millisecond separator is accepted too.
func parseClock(s string) (time.Duration, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	parts := strings.Split(s, ":")

	var h, m int
	var sec float64
	switch len(parts) {
	case 3:
		if _, err := fmt.Sscanf(s, "%d:%d:%f", &h, &m, &sec); err != nil {
			return 0, errors.Errorf("invalid timestamp %q", s)
		}
	case 2:
		if _, err := fmt.Sscanf(s, "%d:%f", &m, &sec); err != nil {
			return 0, errors.Errorf("invalid timestamp %q", s)
		}
	default:
		return 0, errors.Errorf("invalid timestamp %q", s)
	}

	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(sec*float64(time.Second)), nil
}

// FormatClock renders a duration as HH:MM:SS for reports.
func FormatClock(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
