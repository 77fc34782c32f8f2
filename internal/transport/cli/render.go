package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	catalogDomain "github.com/reshetovitsme/rss-catalog/internal/modules/catalog/domain"
	importerDomain "github.com/reshetovitsme/rss-catalog/internal/modules/importer/domain"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

var outputs = []string{outputTable, outputJSON}

func checkOutput(output string) error {
	if !lo.Contains(outputs, output) {
		return oops.With("output", output).Errorf("unknown output %q, want one of %v", output, outputs)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

// renderReport prints the per-category counts of an import run
func renderReport(w io.Writer, report *importerDomain.Report, output string) error {
	if output == outputJSON {
		return writeJSON(w, report)
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Category", "Name", "Found", "Added", "Existing", "Dropped"})

	var parsed, existing, dropped int
	for _, c := range report.Categories {
		t.AppendRow(table.Row{c.Key, c.Name, c.Parsed, c.Added, c.Existing, len(c.Dropped)})
		parsed += c.Parsed
		existing += c.Existing
		dropped += len(c.Dropped)
	}

	t.AppendFooter(table.Row{"Total", "", parsed, report.TotalAdded, existing, dropped})
	t.Render()

	_, err := fmt.Fprintf(w, "%d sources added to %s\n", report.TotalAdded, report.CatalogPath)
	return err
}

// renderSummaries prints one row per category
func renderSummaries(w io.Writer, summaries []catalogDomain.Summary, output string) error {
	if output == outputJSON {
		return writeJSON(w, summaries)
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Key", "Name", "Description", "Sources"})
	for _, s := range summaries {
		t.AppendRow(table.Row{s.Key, s.Name, s.Description, s.Sources})
	}
	t.AppendFooter(table.Row{"", "", "Total", lo.SumBy(summaries, func(s catalogDomain.Summary) int {
		return s.Sources
	})})
	t.Render()
	return nil
}

// renderCategory prints the sources of one category in catalog order
func renderCategory(w io.Writer, category *catalogDomain.Category, output string) error {
	if output == outputJSON {
		return writeJSON(w, category)
	}

	t := newTable(w)
	t.SetTitle(category.Name)
	t.AppendHeader(table.Row{"#", "Name", "URL"})
	for i, src := range category.Sources {
		t.AppendRow(table.Row{i + 1, src.Name, src.URL})
	}
	t.Render()
	return nil
}
