package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reshetovitsme/rss-catalog/internal/modules/source/domain"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCatalogExists    = errors.New("catalog file already exists")
	ErrPagesNotFound    = errors.New("page table not found")
	ErrInvalidPage      = errors.New("invalid page entry")
	ErrInvalidLogLevel  = errors.New("invalid log level")
)

// StorageError reports a catalog file that could not be read, decoded or written.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("catalog %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// SchemaError reports a catalog that is valid JSON but lacks the categories object.
type SchemaError struct {
	Path   string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("catalog %s: %s", e.Path, e.Reason)
}

// ParseInputError is raised only in strict mode, when a block contains fragments
// the permissive parser would have dropped.
type ParseInputError struct {
	Category  string
	Fragments []domain.Fragment
}

func (e *ParseInputError) Error() string {
	parts := make([]string, 0, len(e.Fragments))
	for _, f := range e.Fragments {
		parts = append(parts, fmt.Sprintf("line %d (%s): %q", f.Line, f.Reason, f.Text))
	}
	return fmt.Sprintf("category %s: %d malformed fragment(s): %s", e.Category, len(e.Fragments), strings.Join(parts, "; "))
}

// IsStorage reports whether err is, or wraps, a StorageError.
func IsStorage(err error) bool {
	var target *StorageError
	return errors.As(err, &target)
}

// IsSchema reports whether err is, or wraps, a SchemaError.
func IsSchema(err error) bool {
	var target *SchemaError
	return errors.As(err, &target)
}

// IsParseInput reports whether err is, or wraps, a ParseInputError.
func IsParseInput(err error) bool {
	var target *ParseInputError
	return errors.As(err, &target)
}
