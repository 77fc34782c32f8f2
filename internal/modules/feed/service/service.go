package service

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	catalogDomain "github.com/reshetovitsme/rss-catalog/internal/modules/catalog/domain"
	"github.com/reshetovitsme/rss-catalog/internal/modules/feed/domain"
	sourceDomain "github.com/reshetovitsme/rss-catalog/internal/modules/source/domain"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// CategoryReader looks up a category by key
type CategoryReader interface {
	Category(key string) (*catalogDomain.Category, error)
}

// Service renders a category's sources as a syndication feed
type Service struct {
	catalog CategoryReader
	now     func() time.Time
}

// New creates a new feed service
func New(catalog CategoryReader) *Service {
	return &Service{
		catalog: catalog,
		now:     time.Now,
	}
}

// SetClock replaces the time source used for the feed timestamp
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// GenerateFeed builds a feed with one item per source of the category, in catalog order
func (s *Service) GenerateFeed(categoryKey string, baseURL string) (*feeds.Feed, error) {
	category, err := s.catalog.Category(categoryKey)
	if err != nil {
		return nil, oops.In("feed").With("category", categoryKey).Wrap(err)
	}

	now := s.now()
	feed := &feeds.Feed{
		Title:       category.Name,
		Link:        &feeds.Link{Href: CategoryURL(baseURL, categoryKey)},
		Description: category.Description,
		Id:          CategoryURL(baseURL, categoryKey),
		Created:     now,
		Updated:     now,
	}

	feed.Items = lo.Map(category.Sources, func(src sourceDomain.Source, _ int) *feeds.Item {
		return sourceToFeedItem(src)
	})

	return feed, nil
}

// Render generates the category feed and serializes it in format
func (s *Service) Render(categoryKey string, baseURL string, format domain.Format) (string, error) {
	feed, err := s.GenerateFeed(categoryKey, baseURL)
	if err != nil {
		return "", err
	}

	var out string
	switch format {
	case domain.FormatRss:
		out, err = feed.ToRss()
	case domain.FormatAtom:
		out, err = feed.ToAtom()
	case domain.FormatJson:
		out, err = feed.ToJSON()
	default:
		return "", oops.In("feed").With("format", format).Wrap(domain.ErrInvalidFormat)
	}
	if err != nil {
		return "", oops.In("feed").With("category", categoryKey, "format", format).Wrap(err)
	}

	return out, nil
}

// CategoryURL is where the viewer serves a category
func CategoryURL(baseURL, categoryKey string) string {
	return fmt.Sprintf("%s/categories/%s", strings.TrimSuffix(baseURL, "/"), url.PathEscape(categoryKey))
}

func sourceToFeedItem(src sourceDomain.Source) *feeds.Item {
	return &feeds.Item{
		Title:       src.Name,
		Link:        &feeds.Link{Href: src.URL},
		Description: src.URL,
		Id:          src.URL,
	}
}
