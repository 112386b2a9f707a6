package walk

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
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

func TestWalkHonorsGitignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gitignore"), "*.log\nbuild/\n")
	writeFile(t, filepath.Join(root, "main.go"), "package main\n")
	writeFile(t, filepath.Join(root, "debug.log"), "noise\n")
	writeFile(t, filepath.Join(root, "build", "out.go"), "package build\n")

	var seen []string
	err := Walk([]string{root}, Options{}, func(f File) error {
		rel, _ := filepath.Rel(root, f.Path)
		seen = append(seen, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	sort.Strings(seen)

	want := []string{".gitignore", "main.go"}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("seen = %v, want %v", seen, want)
		}
	}
}

func TestWalkNoGitignoreSeesEverything(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gitignore"), "*.log\n")
	writeFile(t, filepath.Join(root, "debug.log"), "noise\n")

	var seen []string
	err := Walk([]string{root}, Options{NoGitignore: true}, func(f File) error {
		seen = append(seen, f.Path)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(seen) != 2 {
		t.Fatalf("expected 2 files with gitignore disabled, got %d: %v", len(seen), seen)
	}
}

func TestWalkContinuesPastUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root: permission bits don't block reads")
	}

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.go"), "package a\n")
	blocked := filepath.Join(root, "blocked.go")
	writeFile(t, blocked, "package blocked\n")
	if err := os.Chmod(blocked, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(blocked, 0o644) })
	writeFile(t, filepath.Join(root, "z.go"), "package z\n")

	var seen []string
	err := Walk([]string{root}, Options{NoGitignore: true}, func(f File) error {
		seen = append(seen, filepath.Base(f.Path))
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	sort.Strings(seen)
	want := []string{"a.go", "z.go"}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v, want %v (unreadable file should be skipped, not abort the walk)", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("seen = %v, want %v", seen, want)
		}
	}
}

func TestWalkIncludeExcludeGlobs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.go"), "package a\n")
	writeFile(t, filepath.Join(root, "a_test.go"), "package a\n")
	writeFile(t, filepath.Join(root, "b.py"), "x = 1\n")

	var seen []string
	err := Walk([]string{root}, Options{
		NoGitignore: true,
		Include:     []string{"**/*.go"},
		Exclude:     []string{"**/*_test.go"},
	}, func(f File) error {
		seen = append(seen, filepath.Base(f.Path))
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(seen) != 1 || seen[0] != "a.go" {
		t.Fatalf("seen = %v, want [a.go]", seen)
	}
}
