package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photoshare-app/photoshare/internal/catalog"
	"github.com/photoshare-app/photoshare/internal/naming"
	"github.com/photoshare-app/photoshare/internal/storage"
)

type fakeLister struct {
	infos []storage.ObjectInfo
	err   error
}

func (f *fakeLister) List(_ context.Context, _ string) ([]storage.ObjectInfo, error) {
	return f.infos, f.err
}

// newTestServer swaps the package-level catalog for one backed by the fake
// lister and returns the same handler chain main() builds.
func newTestServer(t *testing.T, lister *fakeLister) http.Handler {
	t.Helper()
	prev := cat
	cat = catalog.New(lister, naming.NewMapper(naming.DefaultPrefix, ""), "gallery", "eu-west-1")
	t.Cleanup(func() { cat = prev })

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", handleHealth)
	mux.HandleFunc("/api/images", handleImages)
	return withCORS(mux)
}

func TestImagesEndpoint(t *testing.T) {
	taken := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	h := newTestServer(t, &fakeLister{infos: []storage.ObjectInfo{
		{Key: "albums/cat.jpg", Size: 2048, LastModified: taken},
		{Key: "thumb-albums/cat.jpg", Size: 128, LastModified: taken},
	}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/images", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var body struct {
		Images []catalog.Image `json:"images"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Images, 1)
	assert.Equal(t, "cat.jpg", body.Images[0].Name)
	assert.Equal(t, "https://gallery.s3.eu-west-1.amazonaws.com/albums/cat.jpg", body.Images[0].URL)
}

func TestImagesEndpointStoreFailure(t *testing.T) {
	h := newTestServer(t, &fakeLister{err: errors.New("boom")})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/images", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "failed to list images", body["error"])
}

func TestImagesEndpointRejectsPost(t *testing.T) {
	h := newTestServer(t, &fakeLister{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/images", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPreflightShortCircuits(t *testing.T) {
	h := newTestServer(t, &fakeLister{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/images", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Body.String())
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestServer(t, &fakeLister{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
