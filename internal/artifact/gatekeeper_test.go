package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestGatekeeperResolve(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg := testOutputConfig(dir)
	existing := filepath.Join(dir, cfg.UncompressedFile)
	if err := os.WriteFile(existing, []byte("artifact bytes"), 0o644); err != nil {
		t.Fatalf("seed artifact: %v", err)
	}
	g := NewGatekeeper(cfg)

	tests := []struct {
		name    string
		request string
		wantErr error
	}{
		{name: "existing allowed file", request: cfg.UncompressedFile, wantErr: nil},
		{name: "allowed but absent file", request: cfg.CompressedFile, wantErr: ErrNotFound},
		{name: "empty name", request: "", wantErr: ErrNotFound},
		{name: "traversal attempt", request: "../../etc/passwd", wantErr: ErrForbidden},
		{name: "separator in name", request: "sub/" + cfg.UncompressedFile, wantErr: ErrForbidden},
		{name: "backslash separator", request: `..\` + cfg.UncompressedFile, wantErr: ErrForbidden},
		{name: "unlisted name", request: "config.yaml", wantErr: ErrForbidden},
		{name: "sidecar not downloadable", request: cfg.URLListFile, wantErr: ErrForbidden},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			path, err := g.Resolve(tt.request)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Resolve(%q) error = %v, want %v", tt.request, err, tt.wantErr)
			}
			if tt.wantErr == nil && path != existing {
				t.Fatalf("Resolve(%q) = %q, want %q", tt.request, path, existing)
			}
		})
	}
}

func TestGatekeeperNeverEscapesOutputDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	g := NewGatekeeper(testOutputConfig(dir))

	// A file with an allow-listed basename outside the output dir must
	// stay unreachable.
	outside := filepath.Join(t.TempDir(), "uncompressed_output.txt")
	if err := os.WriteFile(outside, []byte("secret"), 0o644); err != nil {
		t.Fatalf("seed outside file: %v", err)
	}
	if _, err := g.Resolve(outside); !errors.Is(err, ErrForbidden) {
		t.Fatalf("absolute path should be forbidden, got %v", err)
	}
}
