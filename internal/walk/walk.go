// Package walk implements the file-tree walker: it discovers files under
// one or more root paths, honoring .gitignore files (closest directory
// wins) unless disabled, plus caller-supplied doublestar include/exclude
// globs.
package walk

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/chunkgrep/chunkgrep/internal/diagnostics"
)

// File is one discovered file: its path (as given, relative or absolute
// per the root it was found under) and its contents.
type File struct {
	Path  string
	Bytes []byte
}

// Options configures a walk.
type Options struct {
	NoGitignore bool
	Include     []string
	Exclude     []string

	// OnFileError, if set, is called whenever a regular file fails to
	// stat or read; the entry is skipped and the walk continues
	// regardless. Lets a caller (e.g. the driver) track whether any file
	// failed, beyond the diagnostics warning every such failure also
	// produces.
	OnFileError func(path string, err error)
}

func (opts Options) reportFileError(path string, err error) {
	diagnostics.Warnf("could not read %s: %v", path, err)
	if opts.OnFileError != nil {
		opts.OnFileError(path, err)
	}
}

// Walk visits every regular file reachable from roots, calling visit with
// its path and contents. Symlinks are not followed. Directories (and the
// files within them) matching an active .gitignore pattern, or an
// Exclude glob, are skipped; when Include is non-empty only files
// matching at least one Include glob are visited.
//
// A failure to stat or read one file (or list one directory) is logged as
// a diagnostic warning and that entry is skipped; it never aborts the
// walk of remaining roots, siblings, or directories. Only an error
// returned by visit itself (the caller's own abort signal, e.g. a
// cancelled context) stops the walk early and is returned to the caller.
func Walk(roots []string, opts Options, visit func(File) error) error {
	for _, root := range roots {
		info, err := os.Lstat(root)
		if err != nil {
			opts.reportFileError(root, err)
			continue
		}
		if !info.IsDir() {
			if !included(root, opts) {
				continue
			}
			b, err := os.ReadFile(root)
			if err != nil {
				opts.reportFileError(root, err)
				continue
			}
			if err := visit(File{Path: root, Bytes: b}); err != nil {
				return err
			}
			continue
		}
		if err := walkDir(root, opts, nil, visit); err != nil {
			return err
		}
	}
	return nil
}

// loadedIgnore pairs a gitignore set with the directory it was loaded
// from, so matches can be resolved relative to the right root.
type loadedIgnore struct {
	dir string
	set *gitignoreSet
}

// dirIgnores is a stack of gitignore sets, root-most first, used to
// resolve closest-file-wins: later (deeper) entries take precedence.
func walkDir(dir string, opts Options, dirIgnores []loadedIgnore, visit func(File) error) error {
	if !opts.NoGitignore {
		set, err := loadGitignore(dir)
		if err != nil {
			diagnostics.Warnf("could not read .gitignore in %s: %v", dir, err)
			set = &gitignoreSet{}
		}
		dirIgnores = append(dirIgnores, loadedIgnore{dir: dir, set: set})
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		diagnostics.Warnf("could not list %s: %v", dir, err)
		return nil
	}

	for _, entry := range entries {
		if entry.Type()&fs.ModeSymlink != 0 {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if entry.Name() == ".git" && entry.IsDir() {
			continue
		}

		if !opts.NoGitignore && ignoredByAnySet(dirIgnores, path, entry.IsDir()) {
			continue
		}

		if entry.IsDir() {
			if excluded(path, opts) {
				continue
			}
			if err := walkDir(path, opts, dirIgnores, visit); err != nil {
				return err
			}
			continue
		}

		if !included(path, opts) || excluded(path, opts) {
			continue
		}

		b, err := os.ReadFile(path)
		if err != nil {
			opts.reportFileError(path, err)
			continue
		}
		if err := visit(File{Path: path, Bytes: b}); err != nil {
			return err
		}
	}
	return nil
}

// ignoredByAnySet checks path against every loaded gitignore set, closest
// (last pushed) first, returning on the first set with an opinion — a
// deeper .gitignore always overrides a shallower one for paths under it.
func ignoredByAnySet(sets []loadedIgnore, path string, isDir bool) bool {
	for i := len(sets) - 1; i >= 0; i-- {
		rel, err := filepath.Rel(sets[i].dir, path)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		matched, ignored := false, false
		for _, p := range sets[i].set.patterns {
			if matchesGitignore(p, rel, isDir) {
				matched = true
				ignored = !p.negate
			}
		}
		if matched {
			return ignored
		}
	}
	return false
}

func included(path string, opts Options) bool {
	if len(opts.Include) == 0 {
		return true
	}
	for _, pat := range opts.Include {
		if ok, _ := doublestar.Match(pat, filepath.ToSlash(path)); ok {
			return true
		}
	}
	return false
}

func excluded(path string, opts Options) bool {
	for _, pat := range opts.Exclude {
		if ok, _ := doublestar.Match(pat, filepath.ToSlash(path)); ok {
			return true
		}
	}
	return false
}
