package contextscan

import (
	"fmt"
	"sort"
	"strings"
)

// Issue is one redundancy finding inside a context file.
type Issue struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// DetectRedundancy flags compressible patterns in a context file: duplicate
// lines, repeated phrases, excessive blank lines, and very long lines.
func DetectRedundancy(text string) []Issue {
	var issues []Issue
	lines := strings.Split(text, "\n")

	seen := make(map[string]int)
	for i, line := range lines {
		stripped := strings.TrimSpace(line)
		if len(stripped) <= 20 {
			continue
		}
		if first, ok := seen[stripped]; ok {
			issues = append(issues, Issue{
				Kind:   "Duplicate line",
				Detail: fmt.Sprintf("Line %d duplicates line %d", i+1, first+1),
			})
		} else {
			seen[stripped] = i
		}
	}

	// Word trigrams longer than 15 chars appearing 3+ times. The phrase scan
	// stops once the finding list reaches 10 entries.
	words := strings.Fields(strings.ToLower(text))
	counts := make(map[string]int)
	for i := 0; i+2 < len(words); i++ {
		tri := strings.Join(words[i:i+3], " ")
		if len(tri) > 15 {
			counts[tri]++
		}
	}
	type phrase struct {
		text  string
		count int
	}
	var phrases []phrase
	for tri, count := range counts {
		if count >= 3 {
			phrases = append(phrases, phrase{tri, count})
		}
	}
	sort.Slice(phrases, func(i, j int) bool {
		if phrases[i].count != phrases[j].count {
			return phrases[i].count > phrases[j].count
		}
		return phrases[i].text < phrases[j].text
	})
	for _, p := range phrases {
		issues = append(issues, Issue{
			Kind:   "Repeated phrase",
			Detail: fmt.Sprintf("%q appears %d times", p.text, p.count),
		})
		if len(issues) >= 10 {
			break
		}
	}

	blanks := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blanks++
		}
	}
	if float64(blanks) > float64(len(lines))*0.3 && blanks > 5 {
		issues = append(issues, Issue{
			Kind:   "Excessive whitespace",
			Detail: fmt.Sprintf("%d blank lines (%d%% of file)", blanks, blanks*100/len(lines)),
		})
	}

	longLines := 0
	for _, line := range lines {
		if len(line) > 200 {
			longLines++
		}
	}
	if longLines > 3 {
		issues = append(issues, Issue{
			Kind:   "Long lines",
			Detail: fmt.Sprintf("%d lines exceed 200 chars, consider splitting them", longLines),
		})
	}

	return issues
}
