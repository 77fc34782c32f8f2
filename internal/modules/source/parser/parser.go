package parser

import (
	"strings"

	"github.com/reshetovitsme/rss-catalog/internal/modules/source/domain"
)

// URLPrefix marks a line as a feed URL. Anything else is a label.
const URLPrefix = "http"

// Result holds the records found in a block and the lines that were discarded.
type Result struct {
	Sources []domain.Source
	Dropped []domain.Fragment
}

type pendingLabel struct {
	text string
	line int
}

// Scan splits a block of alternating label and URL lines into sources.
//
// Blank lines are ignored. A URL line pairs with the most recent label line
// and consumes it. URL lines without a label, labels replaced by a later
// label, and a trailing label are discarded and reported in Dropped.
func Scan(text string) Result {
	result := Result{Sources: []domain.Source{}}
	var pending *pendingLabel

	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if !strings.HasPrefix(line, URLPrefix) {
			if pending != nil {
				result.Dropped = append(result.Dropped, domain.Fragment{
					Line: pending.line, Text: pending.text, Reason: domain.DropLabelOverwritten,
				})
			}
			pending = &pendingLabel{text: line, line: i + 1}
			continue
		}

		if pending == nil {
			result.Dropped = append(result.Dropped, domain.Fragment{
				Line: i + 1, Text: line, Reason: domain.DropURLWithoutLabel,
			})
			continue
		}

		result.Sources = append(result.Sources, domain.Source{Name: pending.text, URL: line})
		pending = nil
	}

	if pending != nil {
		result.Dropped = append(result.Dropped, domain.Fragment{
			Line: pending.line, Text: pending.text, Reason: domain.DropLabelWithoutURL,
		})
	}

	return result
}

// Parse returns the sources of a block in text order. It never fails.
func Parse(text string) []domain.Source {
	return Scan(text).Sources
}
