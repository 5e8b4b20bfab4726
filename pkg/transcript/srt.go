package transcript

import (
	"regexp"
	"strings"
)

var (
	srtBlockTimingRe = regexp.MustCompile(`^(\d{1,2}:\d{2}:\d{2}[,.]\d{3})\s+-->\s+(\d{1,2}:\d{2}:\d{2}[,.]\d{3})`)
	srtSpeakerRe     = regexp.MustCompile(`^([A-Z][A-Za-z .'-]{0,40}):\s*(.+)$`)
)

// parseSRT parses a SubRip document: numeric index, timing line with comma
// millisecond separators, then text lines. A leading "NAME:" in the text is
// treated as the speaker, which is how most meeting tools export SRT.
func parseSRT(content string) ([]Segment, error) {
	body := strings.TrimPrefix(content, "﻿")

	var segments []Segment
	for _, block := range splitBlocks(body) {
		timingIdx := -1
		for i, line := range block {
			if srtBlockTimingRe.MatchString(strings.TrimSpace(line)) {
				timingIdx = i
				break
			}
		}
		// The index line is optional in the wild; tolerate its absence but
		// not timing lines buried deeper in the block.
		if timingIdx == -1 || timingIdx > 1 {
			continue
		}

		match := srtBlockTimingRe.FindStringSubmatch(strings.TrimSpace(block[timingIdx]))
		start, err := parseClock(match[1])
		if err != nil {
			continue
		}
		end, err := parseClock(match[2])
		if err != nil {
			continue
		}

		text := strings.Join(block[timingIdx+1:], " ")
		text = vttTagRe.ReplaceAllString(text, "")
		text = strings.TrimSpace(text)

		var speaker string
		if m := srtSpeakerRe.FindStringSubmatch(text); m != nil {
			speaker = strings.TrimSpace(m[1])
			text = strings.TrimSpace(m[2])
		}

		segments = append(segments, Segment{
			Speaker: speaker,
			Start:   start,
			End:     end,
			Text:    text,
		})
	}

	return segments, nil
}
