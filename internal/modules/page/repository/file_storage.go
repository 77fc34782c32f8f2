package repository

import (
	"io"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/reshetovitsme/rss-catalog/internal/modules/page/domain"
	"github.com/reshetovitsme/rss-catalog/internal/shared/config"
	"github.com/reshetovitsme/rss-catalog/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

const pagesKey = "pages"

// FileStorage reads the import table from a YAML, JSON or TOML file
type FileStorage struct {
	path string
}

// NewFileStorage creates a page repository for the table at path
func NewFileStorage(path string) Repository {
	return &FileStorage{path: path}
}

// GetPages returns the table entries in file order with every File block
// read into Text. Relative File paths resolve against the table's directory.
func (s *FileStorage) GetPages() ([]domain.Page, error) {
	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return nil, oops.In("pages").With("path", s.path).Wrap(errors.ErrPagesNotFound)
		}
		return nil, oops.In("pages").With("path", s.path).Wrap(err)
	}

	parser, err := config.ParserFor(s.path)
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(s.path), parser); err != nil {
		return nil, oops.In("pages").With("path", s.path, "context", "failed to parse page table").Wrap(err)
	}

	var pages []domain.Page
	if err := k.Unmarshal(pagesKey, &pages); err != nil {
		return nil, oops.In("pages").With("path", s.path, "context", "failed to unmarshal pages").Wrap(err)
	}

	baseDir := filepath.Dir(s.path)
	for i := range pages {
		if err := s.resolve(&pages[i], i, baseDir); err != nil {
			return nil, err
		}
	}

	if dup := lo.FindDuplicatesBy(pages, func(p domain.Page) string { return p.Key }); len(dup) > 0 {
		return nil, oops.In("pages").With("path", s.path, "key", dup[0].Key).
			Wrapf(errors.ErrInvalidPage, "duplicate key %q", dup[0].Key)
	}

	return pages, nil
}

func (s *FileStorage) resolve(page *domain.Page, index int, baseDir string) error {
	builder := oops.In("pages").With("path", s.path, "index", index, "key", page.Key)

	if page.Key == "" {
		return builder.Wrapf(errors.ErrInvalidPage, "entry %d has no key", index)
	}

	switch {
	case page.Text != "" && page.File != "":
		return builder.Wrapf(errors.ErrInvalidPage, "entry %q sets both text and file", page.Key)
	case page.File != "":
		path := page.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return builder.With("file", path).Wrap(err)
		}
		page.Text = string(data)
	case page.Text == "":
		return builder.Wrapf(errors.ErrInvalidPage, "entry %q has neither text nor file", page.Key)
	}

	return nil
}

// ReadBlock reads a single text block from path, or from stdin when path is "-"
func ReadBlock(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", oops.In("pages").With("path", "stdin").Wrap(err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", oops.In("pages").With("path", path).Wrap(err)
	}
	return string(data), nil
}
