package domain

import (
	"encoding/json"
	"strings"

	sourceDomain "github.com/reshetovitsme/rss-catalog/internal/modules/source/domain"
	"github.com/reshetovitsme/rss-catalog/internal/shared/jsondoc"
)

// Catalog is the whole feed source document, keyed by category key.
type Catalog struct {
	Categories map[string]*Category `json:"categories"`

	// Extra holds top-level members other than categories
	Extra map[string]json.RawMessage `json:"-"`
}

// Category groups sources under a display name. Sources keep insertion order.
type Category struct {
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Sources     []sourceDomain.Source `json:"sources"`

	// Extra holds stored members other than name, description and sources
	Extra map[string]json.RawMessage `json:"-"`
}

func (c *Catalog) UnmarshalJSON(data []byte) error {
	if jsondoc.IsNull(data) {
		return nil
	}

	type plain Catalog
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	extra, err := jsondoc.Extra(data, "categories")
	if err != nil {
		return err
	}
	p.Extra = extra

	*c = Catalog(p)
	return nil
}

func (c Catalog) MarshalJSON() ([]byte, error) {
	categories := c.Categories
	if categories == nil {
		categories = map[string]*Category{}
	}
	return jsondoc.Marshal(c.Extra, map[string]any{"categories": categories})
}

func (c *Category) UnmarshalJSON(data []byte) error {
	if jsondoc.IsNull(data) {
		return nil
	}

	type plain Category
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	extra, err := jsondoc.Extra(data, "name", "description", "sources")
	if err != nil {
		return err
	}
	p.Extra = extra

	*c = Category(p)
	return nil
}

func (c Category) MarshalJSON() ([]byte, error) {
	sources := c.Sources
	if sources == nil {
		sources = []sourceDomain.Source{}
	}
	return jsondoc.Marshal(c.Extra, map[string]any{
		"name":        c.Name,
		"description": c.Description,
		"sources":     sources,
	})
}

// Summary is a category without its sources, used for listings.
type Summary struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Sources     int    `json:"sources"`
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{Categories: map[string]*Category{}}
}

// NewCategory returns an empty category whose description derives from its name.
func NewCategory(name string) *Category {
	return &Category{
		Name:        name,
		Description: "Sources " + strings.ToLower(name),
		Sources:     []sourceDomain.Source{},
	}
}

// Summarize returns the listing view of c under key.
func (c *Category) Summarize(key string) Summary {
	return Summary{
		Key:         key,
		Name:        c.Name,
		Description: c.Description,
		Sources:     len(c.Sources),
	}
}
