package transcript

import (
	"regexp"
	"strings"
)

var (
	vttVoiceRe  = regexp.MustCompile(`<v(?:\.[^ >]*)?\s+([^>]+)>`)
	vttTagRe    = regexp.MustCompile(`</?[^>]+>`)
	vttTimingRe = regexp.MustCompile(`^((?:\d{1,2}:)?\d{2}:\d{2}\.\d{3})\s+-->\s+((?:\d{1,2}:)?\d{2}:\d{2}\.\d{3})`)
)

// parseVTT parses a WebVTT document. Cue identifiers, NOTE/STYLE/REGION
// blocks, and cue settings after the timing line are discarded; voice spans
// become the segment speaker.
func parseVTT(content string) ([]Segment, error) {
	body := strings.TrimPrefix(content, "﻿")
	blocks := splitBlocks(body)

	var segments []Segment
	for _, block := range blocks {
		if len(block) == 0 {
			continue
		}
		head := strings.TrimSpace(block[0])
		if strings.HasPrefix(head, "WEBVTT") ||
			strings.HasPrefix(head, "NOTE") ||
			strings.HasPrefix(head, "STYLE") ||
			strings.HasPrefix(head, "REGION") {
			continue
		}

		// Optional cue identifier line before the timing line.
		timingIdx := -1
		for i, line := range block {
			if vttTimingRe.MatchString(strings.TrimSpace(line)) {
				timingIdx = i
				break
			}
		}
		if timingIdx == -1 || timingIdx > 1 {
			continue
		}

		match := vttTimingRe.FindStringSubmatch(strings.TrimSpace(block[timingIdx]))
		start, err := parseClock(match[1])
		if err != nil {
			continue
		}
		end, err := parseClock(match[2])
		if err != nil {
			continue
		}

		speaker, text := extractVoice(strings.Join(block[timingIdx+1:], " "))
		segments = append(segments, Segment{
			Speaker: speaker,
			Start:   start,
			End:     end,
			Text:    text,
		})
	}

	return segments, nil
}

// extractVoice pulls the speaker out of a <v Name> span and strips all of
// the remaining inline markup.
func extractVoice(line string) (speaker, text string) {
	if match := vttVoiceRe.FindStringSubmatch(line); match != nil {
		speaker = strings.TrimSpace(match[1])
	}
	text = vttTagRe.ReplaceAllString(line, "")
	return speaker, strings.TrimSpace(text)
}

// splitBlocks splits a cue file into blank-line separated blocks.
func splitBlocks(content string) [][]string {
	var blocks [][]string
	var current []string
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				blocks = append(blocks, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks
}
