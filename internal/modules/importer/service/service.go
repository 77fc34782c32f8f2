package service

import (
	"context"
	"log/slog"

	catalogService "github.com/reshetovitsme/rss-catalog/internal/modules/catalog/service"
	"github.com/reshetovitsme/rss-catalog/internal/modules/importer/domain"
	pageDomain "github.com/reshetovitsme/rss-catalog/internal/modules/page/domain"
	pageRepo "github.com/reshetovitsme/rss-catalog/internal/modules/page/repository"
	sourceDomain "github.com/reshetovitsme/rss-catalog/internal/modules/source/domain"
	"github.com/reshetovitsme/rss-catalog/internal/modules/source/parser"
	"github.com/reshetovitsme/rss-catalog/internal/shared/errors"
	"github.com/samber/oops"
)

// Merger is the part of the catalog service the importer needs
type Merger interface {
	Merge(categoryKey, categoryName string, sources []sourceDomain.Source) (int, error)
	Path() string
}

// Service runs the parse-then-merge loop over an import table
type Service struct {
	merger   Merger
	pageRepo pageRepo.Repository
	strict   bool
	logger   *slog.Logger
}

// New creates a new import service
func New(merger Merger, pageRepo pageRepo.Repository, strict bool) *Service {
	return &Service{
		merger:   merger,
		pageRepo: pageRepo,
		strict:   strict,
		logger:   slog.Default(),
	}
}

// SetLogger sets the logger
func (s *Service) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// ImportTable imports every page of the configured table
func (s *Service) ImportTable(ctx context.Context) (*domain.Report, error) {
	pages, err := s.pageRepo.GetPages()
	if err != nil {
		report := &domain.Report{CatalogPath: s.merger.Path(), Categories: []domain.CategoryReport{}}
		return report, oops.In("import").With("step", "load pages").Wrap(err)
	}

	return s.Run(ctx, pages)
}

// Run imports pages one at a time, in order. Each category is read, merged
// and written before the next one starts. The first failure stops the run;
// categories already written stay written and are listed in the report.
func (s *Service) Run(ctx context.Context, pages []pageDomain.Page) (*domain.Report, error) {
	report := &domain.Report{
		CatalogPath: s.merger.Path(),
		Categories:  []domain.CategoryReport{},
	}

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return report, oops.In("import").With("category", page.Key).Wrap(err)
		}

		result, err := s.importPage(page)
		if err != nil {
			return report, err
		}
		report.Add(result)
	}

	s.logger.Info("Import finished",
		"categories", len(report.Categories),
		"total_added", report.TotalAdded,
		"catalog", report.CatalogPath,
	)

	return report, nil
}

func (s *Service) importPage(page pageDomain.Page) (domain.CategoryReport, error) {
	logger := s.logger.With("category", page.Key)
	parsed := parser.Scan(page.Text)

	for _, fragment := range parsed.Dropped {
		logger.Debug("Fragment dropped", "line", fragment.Line, "text", fragment.Text, "reason", fragment.Reason)
	}

	if s.strict && len(parsed.Dropped) > 0 {
		return domain.CategoryReport{}, oops.In("import").With("category", page.Key, "step", "parse").Wrap(
			&errors.ParseInputError{Category: page.Key, Fragments: parsed.Dropped},
		)
	}

	added, err := s.merger.Merge(page.Key, page.DisplayName(), parsed.Sources)
	if err != nil {
		return domain.CategoryReport{}, oops.In("import").With("category", page.Key, "step", "merge").Wrap(err)
	}

	result := domain.CategoryReport{
		Key:      page.Key,
		Name:     page.DisplayName(),
		Parsed:   len(parsed.Sources),
		Added:    added,
		Existing: len(parsed.Sources) - added,
		Dropped:  parsed.Dropped,
	}

	logger.Info("Category processed",
		"parsed", result.Parsed,
		"added", result.Added,
		"existing", result.Existing,
		"dropped", len(result.Dropped),
	)

	return result, nil
}

var _ Merger = (*catalogService.Service)(nil)
