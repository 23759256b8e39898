package web

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/premrelay/internal/common"
	"github.com/dmitrijs2005/premrelay/internal/logging"
	"github.com/dmitrijs2005/premrelay/internal/server/files"
)

type fakeFileRepo struct {
	byHash map[string]*files.StoredFile
}

func (r *fakeFileRepo) Upsert(ctx context.Context, file *files.StoredFile) error { return nil }

func (r *fakeFileRepo) GetByHash(ctx context.Context, hash string) (*files.StoredFile, error) {
	f, ok := r.byHash[hash]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return f, nil
}

func (r *fakeFileRepo) GetByHashes(ctx context.Context, hashes []string) ([]*files.StoredFile, error) {
	var result []*files.StoredFile
	for _, h := range hashes {
		if f, ok := r.byHash[h]; ok {
			result = append(result, f)
		}
	}
	return result, nil
}

func (r *fakeFileRepo) SetThumbnail(ctx context.Context, hash, thumbnailPath string) error {
	return nil
}

func newTestServer(t *testing.T, repo files.Repository) *Server {
	t.Helper()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewServer(":0", repo, logger)
}

func TestWelcome(t *testing.T) {
	server := newTestServer(t, &fakeFileRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	server.router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message": "Welcome to the API"}`, w.Body.String())
}

func TestDownload(t *testing.T) {

	dir := t.TempDir()
	path := filepath.Join(dir, "abc123")
	require.NoError(t, os.WriteFile(path, []byte("file body"), 0o644))

	repo := &fakeFileRepo{byHash: map[string]*files.StoredFile{
		"abc123": {Hash: "abc123", Path: path, OriginalFilename: "report.pdf"},
		"gone":   {Hash: "gone", Path: filepath.Join(dir, "missing")},
	}}
	server := newTestServer(t, repo)

	tests := []struct {
		name       string
		hash       string
		wantStatus int
		wantBody   string
	}{
		{"existing file", "abc123", http.StatusOK, "file body"},
		{"unknown hash", "nosuch", http.StatusNotFound, `{"detail": "File not found"}`},
		{"record without file on disk", "gone", http.StatusNotFound, `{"detail": "File not found"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/download/"+tt.hash, nil)
			server.router().ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantBody, w.Body.String())
				assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="report.pdf"`)
			} else {
				assert.JSONEq(t, tt.wantBody, w.Body.String())
			}
		})
	}
}
