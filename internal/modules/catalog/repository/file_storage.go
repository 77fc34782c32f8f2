package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"unicode/utf8"

	"github.com/reshetovitsme/rss-catalog/internal/modules/catalog/domain"
	sourceDomain "github.com/reshetovitsme/rss-catalog/internal/modules/source/domain"
	"github.com/reshetovitsme/rss-catalog/internal/shared/errors"
	"github.com/reshetovitsme/rss-catalog/internal/shared/jsondoc"
	"github.com/samber/oops"
)

const (
	categoriesField = "categories"
	sourcesField    = "sources"
)

// FileStorage implements Repository on a single JSON file
type FileStorage struct {
	path string
	mu   sync.Mutex
}

// NewFileStorage creates a catalog repository bound to path. The file itself
// is not touched until Load, Save or Create is called.
func NewFileStorage(path string) (Repository, error) {
	if path == "" {
		return nil, oops.In("catalog").Errorf("catalog path is empty")
	}

	return &FileStorage{path: path}, nil
}

func (s *FileStorage) Path() string {
	return s.path
}

func (s *FileStorage) Load() (*domain.Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, s.storageError("read", err)
	}

	if !utf8.Valid(data) {
		return nil, s.storageError("decode", oops.Errorf("file is not valid UTF-8"))
	}

	if !json.Valid(data) {
		return nil, s.storageError("decode", oops.Errorf("file is not valid JSON"))
	}

	if reason := shapeProblem(data); reason != "" {
		return nil, s.schemaError(reason)
	}

	var catalog domain.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, s.schemaError("categories do not match the catalog layout: " + err.Error())
	}

	for _, category := range catalog.Categories {
		if category.Sources == nil {
			category.Sources = []sourceDomain.Source{}
		}
	}

	return &catalog, nil
}

// shapeProblem describes the first structural defect of a catalog document,
// or returns "" when categories, each category and each source are objects.
func shapeProblem(data []byte) string {
	members, err := jsondoc.Members(data)
	if err != nil {
		return "top-level value is not an object"
	}

	raw, ok := members[categoriesField]
	if !ok || jsondoc.IsNull(raw) {
		return "missing categories object"
	}

	categories, err := jsondoc.Members(raw)
	if err != nil {
		return "categories is not an object of categories"
	}

	for key, rawCategory := range categories {
		category, err := jsondoc.Members(rawCategory)
		if err != nil {
			return fmt.Sprintf("category %q is not an object", key)
		}

		rawSources, ok := category[sourcesField]
		if !ok || jsondoc.IsNull(rawSources) {
			continue
		}

		var sources []json.RawMessage
		if err := json.Unmarshal(rawSources, &sources); err != nil {
			return fmt.Sprintf("sources of category %q is not an array", key)
		}
		for i, src := range sources {
			if _, err := jsondoc.Members(src); err != nil {
				return fmt.Sprintf("source %d of category %q is not an object", i, key)
			}
		}
	}

	return ""
}

func (s *FileStorage) Save(catalog *domain.Catalog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.encode(catalog)
	if err != nil {
		return s.storageError("encode", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return s.storageError("write", err)
	}

	return nil
}

// Create writes an empty catalog. It never overwrites an existing file.
func (s *FileStorage) Create() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return s.storageError("create", err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return oops.In("catalog").With("path", s.path).Wrap(errors.ErrCatalogExists)
		}
		return s.storageError("create", err)
	}
	defer f.Close()

	data, err := s.encode(domain.New())
	if err != nil {
		return s.storageError("encode", err)
	}

	if _, err := f.Write(data); err != nil {
		return s.storageError("write", err)
	}

	return nil
}

// encode renders the document with sorted keys, two-space indentation and
// literal non-ASCII and HTML characters.
func (s *FileStorage) encode(catalog *domain.Catalog) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(catalog); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (s *FileStorage) storageError(op string, err error) error {
	return oops.In("catalog").With("path", s.path, "op", op).Wrap(
		&errors.StorageError{Op: op, Path: s.path, Err: err},
	)
}

func (s *FileStorage) schemaError(reason string) error {
	return oops.In("catalog").With("path", s.path).Wrap(
		&errors.SchemaError{Path: s.path, Reason: reason},
	)
}
