package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/earth-sol/onefilellm/config"
	"github.com/earth-sol/onefilellm/internal/artifact"
	"github.com/earth-sol/onefilellm/internal/crawl"
	"github.com/earth-sol/onefilellm/internal/dispatch"
	"github.com/earth-sol/onefilellm/internal/normalize"
)

func testOutputConfig(dir string) config.OutputConfig {
	return config.OutputConfig{
		Dir:              dir,
		UncompressedFile: "uncompressed_output.txt",
		CompressedFile:   "compressed_output.txt",
		URLListFile:      "processed_urls.txt",
	}
}

func wordCount(text string) int { return len(strings.Fields(text)) }

func newTestApp(t *testing.T, backends dispatch.Backends) (*echo.Echo, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := testOutputConfig(dir)

	writer := artifact.NewWriter(cfg, normalize.File, wordCount)
	gatekeeper := artifact.NewGatekeeper(cfg)
	h := NewHandler(dispatch.New(backends), writer, gatekeeper, cfg)

	e := echo.New()
	e.HideBanner = true
	h.Register(e)
	return e, dir
}

func postInput(e *echo.Echo, input string) *httptest.ResponseRecorder {
	form := url.Values{"input_path": {input}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestProcessRepositoryWritesArtifacts(t *testing.T) {
	e, dir := newTestApp(t, dispatch.Backends{
		Repository: func(ctx context.Context, ref string) (string, error) {
			return "# File: README.md\n\nThe quick brown fox jumps over the lazy dog.\n", nil
		},
	})

	rec := postInput(e, "https://github.com/example/repo")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "The quick brown fox") {
		t.Fatalf("processed text missing from page:\n%s", body)
	}
	if !strings.Contains(body, "Uncompressed Tokens:") || !strings.Contains(body, "Compressed Tokens:") {
		t.Fatalf("token counts missing from page:\n%s", body)
	}
	if !strings.Contains(body, "/download?filename=uncompressed_output.txt") {
		t.Fatalf("download link missing from page:\n%s", body)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "uncompressed_output.txt"))
	if err != nil {
		t.Fatalf("uncompressed artifact not written: %v", err)
	}
	if !strings.Contains(string(raw), "quick brown fox") {
		t.Fatalf("uncompressed artifact content = %q", raw)
	}
	if _, err := os.Stat(filepath.Join(dir, "compressed_output.txt")); err != nil {
		t.Fatalf("compressed artifact not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "processed_urls.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("url listing should only exist for crawl results")
	}
}

func TestProcessBlocksMetadataEndpoint(t *testing.T) {
	fetched := false
	e, dir := newTestApp(t, dispatch.Backends{
		Web: func(ctx context.Context, seed string) (crawl.Result, error) {
			fetched = true
			return crawl.Result{}, nil
		},
	})

	rec := postInput(e, "http://169.254.169.254/latest/meta-data/")
	if fetched {
		t.Fatal("no fetch may happen for a rejected address")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Error: URL rejected by security policy.") {
		t.Fatalf("security rejection message missing:\n%s", rec.Body.String())
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("no artifacts should be written on rejection, found %d entries", len(entries))
	}
}

func TestProcessRejectsNonDispatchableInput(t *testing.T) {
	e, _ := newTestApp(t, dispatch.Backends{})

	rec := postInput(e, "/etc/passwd")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Error:") {
		t.Fatalf("rejection message missing:\n%s", rec.Body.String())
	}
}

func TestProcessSurfacesBackendFailure(t *testing.T) {
	e, _ := newTestApp(t, dispatch.Backends{
		Repository: func(ctx context.Context, ref string) (string, error) {
			return "", errors.New("GET https://api.github.com: status 403")
		},
	})

	rec := postInput(e, "https://github.com/example/repo")
	if !strings.Contains(rec.Body.String(), "Error: GET https://api.github.com: status 403") {
		t.Fatalf("backend error should surface verbatim:\n%s", rec.Body.String())
	}
}

func TestDownloadEndpoint(t *testing.T) {
	e, dir := newTestApp(t, dispatch.Backends{})
	if err := os.WriteFile(filepath.Join(dir, "uncompressed_output.txt"), []byte("artifact bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		filename string
		wantCode int
	}{
		{name: "allowed and present", filename: "uncompressed_output.txt", wantCode: http.StatusOK},
		{name: "allowed but absent", filename: "compressed_output.txt", wantCode: http.StatusNotFound},
		{name: "traversal", filename: "../../etc/passwd", wantCode: http.StatusForbidden},
		{name: "unlisted", filename: "secrets.txt", wantCode: http.StatusForbidden},
		{name: "sidecar not downloadable", filename: "processed_urls.txt", wantCode: http.StatusForbidden},
		{name: "empty", filename: "", wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/download?filename="+url.QueryEscape(tt.filename), nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Fatalf("filename %q: status = %d, want %d", tt.filename, rec.Code, tt.wantCode)
			}
			if tt.wantCode == http.StatusOK && rec.Body.String() != "artifact bytes" {
				t.Fatalf("body = %q", rec.Body.String())
			}
		})
	}
}

func TestIndexRendersForm(t *testing.T) {
	e, _ := newTestApp(t, dispatch.Backends{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `name="input_path"`) {
		t.Fatalf("form input missing:\n%s", rec.Body.String())
	}
}
