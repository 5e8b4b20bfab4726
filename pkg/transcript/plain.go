package transcript

import (
	"regexp"
	"strings"
)

var (
	plainStampRe   = regexp.MustCompile(`^[\[(](\d{1,2}:\d{2}(?::\d{2})?)[\])]\s*`)
	plainSpeakerRe = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9 .'_-]{0,40}?):\s+(.*)$`)
)

// parsePlain parses free-form "Speaker: line" text. Optional leading
// [HH:MM:SS] stamps become the segment start time; lines without a speaker
// prefix continue the previous utterance.
func parsePlain(content string) []Segment {
	var segments []Segment

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		var seg Segment
		if m := plainStampRe.FindStringSubmatch(line); m != nil {
			if start, err := parseClock(m[1]); err == nil {
				seg.Start = start
				seg.End = start
			}
			line = strings.TrimSpace(line[len(m[0]):])
		}

		if m := plainSpeakerRe.FindStringSubmatch(line); m != nil {
			seg.Speaker = strings.TrimSpace(m[1])
			seg.Text = m[2]
			segments = append(segments, seg)
			continue
		}

		// Continuation of the previous speaker's line, or narration.
		if len(segments) > 0 && seg.Start == 0 {
			segments[len(segments)-1].Text += " " + line
			continue
		}
		seg.Text = line
		segments = append(segments, seg)
	}

	return segments
}
