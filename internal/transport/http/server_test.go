package http_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	catalogDomain "github.com/reshetovitsme/rss-catalog/internal/modules/catalog/domain"
	catalogRepo "github.com/reshetovitsme/rss-catalog/internal/modules/catalog/repository"
	catalogService "github.com/reshetovitsme/rss-catalog/internal/modules/catalog/service"
	feedService "github.com/reshetovitsme/rss-catalog/internal/modules/feed/service"
	"github.com/reshetovitsme/rss-catalog/internal/shared/config"
	httpServer "github.com/reshetovitsme/rss-catalog/internal/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogJSON = `{"categories": {
	"cuisine": {"name": "Cuisine", "description": "Sources cuisine", "sources": [
		{"name": "Chef Nini", "url": "https://www.chefnini.com/feed/"},
		{"name": "Yuka", "url": "https://yuka.io/feed/"}
	]},
	"arts": {"name": "Arts", "description": "Sources arts", "sources": []}
}}`

func newServer(t *testing.T, content string) *httptest.Server {
	t.Helper()

	path := filepath.Join(t.TempDir(), "catalog.json")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	repo, err := catalogRepo.NewFileStorage(path)
	require.NoError(t, err)
	catalog := catalogService.New(repo)

	server := httpServer.New(&config.Config{CatalogPath: path, HTTPPort: "0"}, catalog, feedService.New(catalog))
	server.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestHealth(t *testing.T) {
	ts := newServer(t, catalogJSON)

	resp, body := get(t, ts.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}

func TestCatalog(t *testing.T) {
	ts := newServer(t, catalogJSON)

	resp, body := get(t, ts.URL+"/catalog")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var catalog catalogDomain.Catalog
	require.NoError(t, json.Unmarshal([]byte(body), &catalog))
	assert.Len(t, catalog.Categories, 2)
	assert.Len(t, catalog.Categories["cuisine"].Sources, 2)
}

func TestCatalogServesStoredMembers(t *testing.T) {
	ts := newServer(t, `{"version": "2.1", "categories": {
		"cuisine": {"name": "Cuisine", "description": "d", "icon": "fork", "sources": [
			{"name": "A", "url": "https://a", "language": "fr"}
		]}
	}}`)

	resp, body := get(t, ts.URL+"/catalog")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"version": "2.1", "categories": {
		"cuisine": {"name": "Cuisine", "description": "d", "icon": "fork", "sources": [
			{"name": "A", "url": "https://a", "language": "fr"}
		]}
	}}`, body)
}

func TestCategories(t *testing.T) {
	ts := newServer(t, catalogJSON)

	resp, body := get(t, ts.URL+"/categories")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[
		{"key": "arts", "name": "Arts", "description": "Sources arts", "sources": 0},
		{"key": "cuisine", "name": "Cuisine", "description": "Sources cuisine", "sources": 2}
	]`, body)
}

func TestCategory(t *testing.T) {
	ts := newServer(t, catalogJSON)

	resp, body := get(t, ts.URL+"/categories/cuisine")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var category catalogDomain.Category
	require.NoError(t, json.Unmarshal([]byte(body), &category))
	assert.Equal(t, "Chef Nini", category.Sources[0].Name)

	resp, _ = get(t, ts.URL+"/categories/sport")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFeed(t *testing.T) {
	ts := newServer(t, catalogJSON)

	resp, body := get(t, ts.URL+"/categories/cuisine/feed")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/rss+xml; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, body, "<title>Chef Nini</title>")
	assert.Contains(t, body, ts.URL+"/categories/cuisine")

	resp, body = get(t, ts.URL+"/categories/cuisine/feed?format=atom")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/atom+xml; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, body, "<feed")

	resp, _ = get(t, ts.URL+"/categories/cuisine/feed?format=opml")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = get(t, ts.URL+"/categories/sport/feed")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBrokenCatalogIsServerError(t *testing.T) {
	ts := newServer(t, `{"categories": `)

	for _, path := range []string{"/catalog", "/categories", "/categories/cuisine", "/categories/cuisine/feed"} {
		resp, _ := get(t, ts.URL+path)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode, path)
	}
}
