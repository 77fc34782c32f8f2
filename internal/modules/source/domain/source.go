package domain

import (
	"encoding/json"

	"github.com/reshetovitsme/rss-catalog/internal/shared/jsondoc"
)

// Source is one RSS feed source: a human-readable label and its feed URL.
// Two sources are the same source when their URLs are byte-identical.
type Source struct {
	Name string `json:"name"`
	URL  string `json:"url"`

	// Extra holds stored members other than name and url, written back untouched
	Extra map[string]json.RawMessage `json:"-"`
}

func (s *Source) UnmarshalJSON(data []byte) error {
	if jsondoc.IsNull(data) {
		return nil
	}

	type plain Source
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	extra, err := jsondoc.Extra(data, "name", "url")
	if err != nil {
		return err
	}
	p.Extra = extra

	*s = Source(p)
	return nil
}

func (s Source) MarshalJSON() ([]byte, error) {
	return jsondoc.Marshal(s.Extra, map[string]any{
		"name": s.Name,
		"url":  s.URL,
	})
}

// DropReason explains why a line of a text block produced no Source.
type DropReason string

const (
	DropURLWithoutLabel  DropReason = "url_without_label"
	DropLabelOverwritten DropReason = "label_overwritten"
	DropLabelWithoutURL  DropReason = "label_without_url"
)

// Fragment is a line of a text block that was discarded by the parser.
// Line is 1-based and counts every line of the input, blank ones included.
type Fragment struct {
	Line   int        `json:"line"`
	Text   string     `json:"text"`
	Reason DropReason `json:"reason"`
}
