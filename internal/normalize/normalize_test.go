package normalize

import (
	"os"
	"path/filepath"
	"testing"
)

func TestText(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercases", in: "Hello WORLD", want: "hello world"},
		{name: "collapses whitespace", in: "a  lot\n\nof\t space", want: "lot space"},
		{name: "drops stopwords", in: "the cat and the hat", want: "cat hat"},
		{name: "keeps stopwords inside words", in: "thesis androids", want: "thesis androids"},
		{name: "empty", in: "", want: ""},
		{name: "only stopwords", in: "the of and", want: ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.in); got != tt.want {
				t.Fatalf("Text(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.txt")
	if err := os.WriteFile(in, []byte("The  Quick Brown FOX"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	if err := File(in, out); err != nil {
		t.Fatalf("File: %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(got) != "quick brown fox" {
		t.Fatalf("output = %q, want %q", got, "quick brown fox")
	}
}

func TestFileMissingInput(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	if err := File(filepath.Join(dir, "absent.txt"), filepath.Join(dir, "out.txt")); err == nil {
		t.Fatal("expected error for missing input file")
	}
}
