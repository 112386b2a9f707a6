package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/chunkgrep/chunkgrep/internal/extract"
	"github.com/chunkgrep/chunkgrep/internal/model"
	"github.com/chunkgrep/chunkgrep/internal/walk"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRunRoutesAndSortsByPath(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.go"), "package b\n\nfunc Bravo() {}\n")
	writeFile(t, filepath.Join(root, "a.go"), "package a\n\nfunc Alpha() {}\n")
	writeFile(t, filepath.Join(root, "readme.md"), "not code\n")

	m, err := model.Lookup("no-op")
	if err != nil {
		t.Fatalf("model.Lookup: %v", err)
	}
	chooser, err := extract.NewChooser([]extract.Target{
		{Lang: "go", Pattern: "(function_declaration name: (identifier) @fn)"},
	}, m)
	if err != nil {
		t.Fatalf("NewChooser: %v", err)
	}

	files, err := Run(context.Background(), []string{root}, walk.Options{NoGitignore: true}, chooser, Options{Workers: 2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 matched files, got %d: %+v", len(files), files)
	}
	if filepath.Base(files[0].Path) != "a.go" || filepath.Base(files[1].Path) != "b.go" {
		t.Fatalf("expected sorted [a.go, b.go], got [%s, %s]", files[0].Path, files[1].Path)
	}
}

func TestRunNoMatchesYieldsEmptyResult(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "empty.go"), "package empty\n")

	m, err := model.Lookup("no-op")
	if err != nil {
		t.Fatalf("model.Lookup: %v", err)
	}
	chooser, err := extract.NewChooser([]extract.Target{
		{Lang: "go", Pattern: "(function_declaration name: (identifier) @fn)"},
	}, m)
	if err != nil {
		t.Fatalf("NewChooser: %v", err)
	}

	files, err := Run(context.Background(), []string{root}, walk.Options{NoGitignore: true}, chooser, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected no matches, got %d", len(files))
	}
}
