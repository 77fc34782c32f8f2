package repository

import (
	"github.com/reshetovitsme/rss-catalog/internal/modules/catalog/domain"
)

// Repository defines whole-document persistence for the catalog.
// Every Load returns a fresh copy; every Save replaces the stored document.
type Repository interface {
	Load() (*domain.Catalog, error)
	Save(catalog *domain.Catalog) error
	Create() error
	Path() string
}
