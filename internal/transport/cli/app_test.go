package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	catalogDomain "github.com/reshetovitsme/rss-catalog/internal/modules/catalog/domain"
	importerDomain "github.com/reshetovitsme/rss-catalog/internal/modules/importer/domain"
	errs "github.com/reshetovitsme/rss-catalog/internal/shared/errors"
	"github.com/reshetovitsme/rss-catalog/internal/transport/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cuisineCatalog = `{
  "categories": {
    "cuisine": {
      "name": "Cuisine",
      "description": "Sources cuisine",
      "sources": [{"name": "Chef Nini", "url": "https://www.chefnini.com/feed/"}]
    }
  }
}`

const pageTable = `pages:
  - key: cuisine
    name: Cuisine
    text: |
      Chef Nini
      https://www.chefnini.com/feed/

      Cuisine Land
      https://cuisine.land/rss.xml
  - key: humour
    name: Humour
    text: |
      Legorafi
      http://www.legorafi.fr/feed/
`

// workspace moves into an empty directory so no config file is picked up
func workspace(t *testing.T, catalog string) string {
	t.Helper()

	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "catalog.json")
	if catalog != "" {
		require.NoError(t, os.WriteFile(path, []byte(catalog), 0644))
	}
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app := cli.App()
	app.Writer = &out
	app.ErrWriter = io.Discard
	app.Reader = strings.NewReader(stdin)

	err := app.Run(append([]string{"rss-catalog"}, args...))
	return out.String(), err
}

func loadCatalog(t *testing.T, path string) catalogDomain.Catalog {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var catalog catalogDomain.Catalog
	require.NoError(t, json.Unmarshal(data, &catalog))
	return catalog
}

func TestInit(t *testing.T) {
	path := workspace(t, "")

	out, err := run(t, "", "--catalog", path, "init")
	require.NoError(t, err)
	assert.Contains(t, out, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"categories": {}}`, string(data))

	_, err = run(t, "", "--catalog", path, "init")
	assert.True(t, errors.Is(err, errs.ErrCatalogExists))
}

func TestImportTable(t *testing.T) {
	path := workspace(t, cuisineCatalog)
	require.NoError(t, os.WriteFile("pages.yaml", []byte(pageTable), 0644))

	out, err := run(t, "", "--catalog", path, "import", "--output", "json")
	require.NoError(t, err)

	var report importerDomain.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Categories, 2)
	assert.Equal(t, "cuisine", report.Categories[0].Key)
	assert.Equal(t, 2, report.Categories[0].Parsed)
	assert.Equal(t, 1, report.Categories[0].Added)
	assert.Equal(t, 1, report.Categories[0].Existing)
	assert.Equal(t, 1, report.Categories[1].Added)
	assert.Equal(t, 2, report.TotalAdded)

	catalog := loadCatalog(t, path)
	assert.Len(t, catalog.Categories["cuisine"].Sources, 2)
	assert.Equal(t, "Sources humour", catalog.Categories["humour"].Description)

	// a second run finds everything already present
	out, err = run(t, "", "--catalog", path, "import", "--output", "json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 0, report.TotalAdded)
}

func TestImportTableAsTable(t *testing.T) {
	path := workspace(t, cuisineCatalog)
	tablePath := filepath.Join(t.TempDir(), "table.yaml")
	require.NoError(t, os.WriteFile(tablePath, []byte(pageTable), 0644))

	out, err := run(t, "", "--catalog", path, "import", "--pages", tablePath)
	require.NoError(t, err)
	assert.Contains(t, out, "cuisine")
	assert.Contains(t, out, "humour")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "2 sources added to "+path)
}

func TestImportStopsWhenCancelled(t *testing.T) {
	path := workspace(t, cuisineCatalog)
	require.NoError(t, os.WriteFile("pages.yaml", []byte(pageTable), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	app := cli.App()
	app.Writer = io.Discard
	app.ErrWriter = io.Discard

	err := app.RunContext(ctx, []string{"rss-catalog", "--catalog", path, "import"})
	assert.True(t, errors.Is(err, context.Canceled))

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, cuisineCatalog, string(data))
}

func TestImportMissingPageTable(t *testing.T) {
	path := workspace(t, cuisineCatalog)

	_, err := run(t, "", "--catalog", path, "import")
	assert.True(t, errors.Is(err, errs.ErrPagesNotFound))
}

func TestImportBlockFromStdin(t *testing.T) {
	path := workspace(t, cuisineCatalog)

	block := "Elle\nhttps://www.elle.fr/rss\nMadame Figaro\nhttps://madame.lefigaro.fr/rss.xml\n"
	_, err := run(t, block, "--catalog", path, "import", "--category", "feminin", "--name", "Féminin", "--block", "-")
	require.NoError(t, err)

	catalog := loadCatalog(t, path)
	feminin := catalog.Categories["feminin"]
	require.NotNil(t, feminin)
	assert.Equal(t, "Féminin", feminin.Name)
	assert.Len(t, feminin.Sources, 2)
	assert.Len(t, catalog.Categories["cuisine"].Sources, 1)
}

func TestImportBlockNeedsCategory(t *testing.T) {
	path := workspace(t, cuisineCatalog)

	_, err := run(t, "", "--catalog", path, "import", "--block", "-")
	assert.Error(t, err)
}

func TestImportStrict(t *testing.T) {
	path := workspace(t, cuisineCatalog)

	block := "https://cuisine.land/rss.xml\nYuka\nhttps://yuka.io/feed/\n"

	_, err := run(t, block, "--catalog", path, "import", "--category", "cuisine", "--block", "-", "--strict")
	require.Error(t, err)
	assert.True(t, errs.IsParseInput(err))
	assert.Len(t, loadCatalog(t, path).Categories["cuisine"].Sources, 1)

	// permissive mode drops the label-less URL and keeps going
	_, err = run(t, block, "--catalog", path, "import", "--category", "cuisine", "--block", "-")
	require.NoError(t, err)
	assert.Len(t, loadCatalog(t, path).Categories["cuisine"].Sources, 2)
}

func TestImportSchemaError(t *testing.T) {
	path := workspace(t, `{"sources": []}`)

	_, err := run(t, "A\nhttps://a.example/feed\n", "--catalog", path, "import", "--category", "cuisine", "--block", "-")
	assert.True(t, errs.IsSchema(err))
}

func TestList(t *testing.T) {
	path := workspace(t, cuisineCatalog)

	out, err := run(t, "", "--catalog", path, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "cuisine")
	assert.Contains(t, out, "Sources cuisine")

	out, err = run(t, "", "--catalog", path, "list", "--output", "json", "cuisine")
	require.NoError(t, err)
	var category catalogDomain.Category
	require.NoError(t, json.Unmarshal([]byte(out), &category))
	assert.Equal(t, "https://www.chefnini.com/feed/", category.Sources[0].URL)

	_, err = run(t, "", "--catalog", path, "list", "sport")
	assert.True(t, errors.Is(err, errs.ErrCategoryNotFound))
}

func TestListUnknownOutput(t *testing.T) {
	path := workspace(t, cuisineCatalog)

	_, err := run(t, "", "--catalog", path, "list", "--output", "yaml")
	assert.Error(t, err)
}

func TestExport(t *testing.T) {
	path := workspace(t, cuisineCatalog)

	out, err := run(t, "", "--catalog", path, "export", "cuisine")
	require.NoError(t, err)
	assert.Contains(t, out, "<rss")
	assert.Contains(t, out, "<title>Chef Nini</title>")

	outFile := filepath.Join(t.TempDir(), "cuisine.atom")
	out, err = run(t, "", "--catalog", path, "export", "--format", "atom", "--out", outFile, "cuisine")
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<feed")

	_, err = run(t, "", "--catalog", path, "export", "--format", "opml", "cuisine")
	assert.Error(t, err)

	_, err = run(t, "", "--catalog", path, "export")
	assert.Error(t, err)
}

func TestInvalidLogLevel(t *testing.T) {
	path := workspace(t, cuisineCatalog)

	_, err := run(t, "", "--catalog", path, "--log-level", "loud", "list")
	assert.Error(t, err)
}
