package service

import (
	"log/slog"
	"sort"

	"github.com/reshetovitsme/rss-catalog/internal/modules/catalog/domain"
	"github.com/reshetovitsme/rss-catalog/internal/modules/catalog/repository"
	sourceDomain "github.com/reshetovitsme/rss-catalog/internal/modules/source/domain"
	"github.com/reshetovitsme/rss-catalog/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// Service merges sources into the catalog and answers read-only queries on it
type Service struct {
	repo   repository.Repository
	logger *slog.Logger
}

// New creates a new catalog service
func New(repo repository.Repository) *Service {
	return &Service{
		repo:   repo,
		logger: slog.Default(),
	}
}

// SetLogger sets the logger
func (s *Service) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Merge appends the sources whose URL is not yet in the category and
// persists the whole catalog. The category is created when missing. Stored
// sources are never reordered, renamed or removed. It returns how many
// sources were appended.
func (s *Service) Merge(categoryKey, categoryName string, sources []sourceDomain.Source) (int, error) {
	catalog, err := s.repo.Load()
	if err != nil {
		return 0, oops.In("merge").With("category", categoryKey).Wrap(err)
	}

	category, ok := catalog.Categories[categoryKey]
	if !ok {
		category = domain.NewCategory(categoryName)
		catalog.Categories[categoryKey] = category
		s.logger.Debug("Category created", "category", categoryKey, "name", categoryName)
	}

	existing := lo.SliceToMap(category.Sources, func(src sourceDomain.Source) (string, struct{}) {
		return src.URL, struct{}{}
	})

	added := 0
	for _, src := range sources {
		if _, found := existing[src.URL]; found {
			continue
		}
		category.Sources = append(category.Sources, src)
		existing[src.URL] = struct{}{}
		added++
	}

	if err := s.repo.Save(catalog); err != nil {
		return 0, oops.In("merge").With("category", categoryKey).Wrap(err)
	}

	return added, nil
}

// Catalog returns the whole stored catalog
func (s *Service) Catalog() (*domain.Catalog, error) {
	return s.repo.Load()
}

// Categories lists every category, sorted by key
func (s *Service) Categories() ([]domain.Summary, error) {
	catalog, err := s.repo.Load()
	if err != nil {
		return nil, err
	}

	keys := lo.Keys(catalog.Categories)
	sort.Strings(keys)

	return lo.Map(keys, func(key string, _ int) domain.Summary {
		return catalog.Categories[key].Summarize(key)
	}), nil
}

// Category returns one category by key
func (s *Service) Category(key string) (*domain.Category, error) {
	catalog, err := s.repo.Load()
	if err != nil {
		return nil, err
	}

	category, ok := catalog.Categories[key]
	if !ok {
		return nil, oops.In("catalog").With("category", key).Wrap(errors.ErrCategoryNotFound)
	}

	return category, nil
}

// Init creates an empty catalog file
func (s *Service) Init() error {
	return s.repo.Create()
}

// Path returns the location of the catalog
func (s *Service) Path() string {
	return s.repo.Path()
}
