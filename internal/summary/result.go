package summary

import (
	"strings"
	"time"
)

// Section is one heading of a summary and the text under it.
type Section struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// Result is a generated summary.
//
// Complete is false when a required heading is missing, out of order, or when
// the reply carries anything besides the three sections. Such results are
// still returned so the caller can decide whether to show them.
type Result struct {
	RequestID   string    `json:"request_id"`
	Title       string    `json:"title"`
	Category    string    `json:"category,omitempty"`
	Model       string    `json:"model"`
	Markdown    string    `json:"markdown"`
	Sections    []Section `json:"sections"`
	Complete    bool      `json:"complete"`
	Missing     []string  `json:"missing,omitempty"`
	Unexpected  []string  `json:"unexpected,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// preambleNote is reported in Result.Unexpected for text before the first heading.
const preambleNote = "text before first heading"

// parseSections splits markdown at level-two headings and returns the
// trimmed text that precedes the first one separately.
func parseSections(markdown string) (preamble string, sections []Section) {
	var (
		current *Section
		body    strings.Builder
		lead    strings.Builder
	)
	flush := func() {
		if current != nil {
			current.Body = strings.TrimSpace(body.String())
			sections = append(sections, *current)
		}
		body.Reset()
	}

	for line := range strings.Lines(markdown) {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "## ") {
			flush()
			current = &Section{Heading: trimmed}
			continue
		}
		if current != nil {
			body.WriteString(line)
		} else {
			lead.WriteString(line)
		}
	}
	flush()
	return strings.TrimSpace(lead.String()), sections
}

// checkSections compares the reply layout with Headings.
//
// missing lists required headings that never appear. unexpected lists a
// non-empty preamble, headings outside Headings, and required headings that
// repeat or follow a heading that belongs after them.
func checkSections(preamble string, sections []Section) (missing, unexpected []string) {
	if preamble != "" {
		unexpected = append(unexpected, preambleNote)
	}

	required := make(map[string]int, len(Headings))
	for i, h := range Headings {
		required[normalizeHeading(h)] = i
	}

	seen := make(map[int]bool, len(Headings))
	next := 0
	for _, s := range sections {
		idx, ok := required[normalizeHeading(s.Heading)]
		switch {
		case !ok:
			unexpected = append(unexpected, "unexpected section: "+s.Heading)
		case seen[idx]:
			unexpected = append(unexpected, "repeated section: "+s.Heading)
		case idx < next:
			seen[idx] = true
			unexpected = append(unexpected, "out of order: "+s.Heading)
		default:
			seen[idx] = true
			next = idx + 1
		}
	}

	for i, h := range Headings {
		if !seen[i] {
			missing = append(missing, h)
		}
	}
	return missing, unexpected
}

func normalizeHeading(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}
