package repository

import (
	"github.com/reshetovitsme/rss-catalog/internal/modules/page/domain"
)

// Repository supplies the ordered import table
type Repository interface {
	GetPages() ([]domain.Page, error)
}
