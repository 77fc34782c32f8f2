package domain

import (
	sourceDomain "github.com/reshetovitsme/rss-catalog/internal/modules/source/domain"
)

// CategoryReport counts what one page contributed to its category.
// Existing is Parsed minus Added, so repeats inside the block count as existing.
type CategoryReport struct {
	Key      string                  `json:"key"`
	Name     string                  `json:"name"`
	Parsed   int                     `json:"parsed"`
	Added    int                     `json:"added"`
	Existing int                     `json:"existing"`
	Dropped  []sourceDomain.Fragment `json:"dropped,omitempty"`
}

// Report is the outcome of an import run. On failure it holds the
// categories that were committed before the failing one.
type Report struct {
	CatalogPath string           `json:"catalog_path"`
	Categories  []CategoryReport `json:"categories"`
	TotalAdded  int              `json:"total_added"`
}

// Add records a committed category
func (r *Report) Add(c CategoryReport) {
	r.Categories = append(r.Categories, c)
	r.TotalAdded += c.Added
}
