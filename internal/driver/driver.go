// Package driver runs a chooser over a stream of discovered files using a
// bounded worker pool, one tree_sitter.Parser per worker, and gathers
// resulting file records through a single collecting goroutine; the
// records are then sorted by file path, so the returned order is
// deterministic while extraction itself proceeds out of order.
package driver

import (
	"context"
	"runtime"
	"sort"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/chunkgrep/chunkgrep/internal/diagnostics"
	"github.com/chunkgrep/chunkgrep/internal/extract"
	cerrors "github.com/chunkgrep/chunkgrep/internal/errors"
	"github.com/chunkgrep/chunkgrep/internal/records"
	"github.com/chunkgrep/chunkgrep/internal/walk"

	"golang.org/x/sync/errgroup"
)

// Options configures a Run.
type Options struct {
	// Workers bounds pool size. Zero means runtime.GOMAXPROCS(0).
	Workers int
}

// Run walks roots, routes every discovered file through chooser, and
// returns the resulting file records sorted by path. A file the chooser
// has no extractor for, or that produced no matches, is silently absent
// from the result. An I/O error reading one file is logged as a
// diagnostic warning and does not abort the walk; if every file fails to
// read, Run returns a non-nil *errors.IOError for the last failure so the
// caller can choose an appropriate exit code.
func Run(ctx context.Context, roots []string, walkOpts walk.Options, chooser *extract.Chooser, opts Options) ([]*records.File, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	type job struct {
		path  string
		bytes []byte
	}

	jobs := make(chan job)
	results := make(chan *records.File)

	g, ctx := errgroup.WithContext(ctx)

	// One parser per worker; parsers are not safe to share across
	// goroutines.
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			parser := tree_sitter.NewParser()
			defer parser.Close()

			for {
				select {
				case <-ctx.Done():
					return nil
				case j, ok := <-jobs:
					if !ok {
						return nil
					}
					ext := extOf(j.path)
					extractor, ok := chooser.Route(ext)
					if !ok {
						continue
					}
					file, err := extractor.Extract(parser, j.path, j.bytes)
					if err != nil {
						return cerrors.NewParseError(j.path, err)
					}
					if file == nil {
						continue
					}
					select {
					case results <- file:
					case <-ctx.Done():
						return nil
					}
				}
			}
		})
	}

	var collected []*records.File
	var collectWG sync.WaitGroup
	collectWG.Add(1)
	go func() {
		defer collectWG.Done()
		for f := range results {
			collected = append(collected, f)
		}
	}()

	var ioErr error
	readOK := 0
	walkOpts.OnFileError = func(path string, err error) {
		ioErr = cerrors.NewIOError(path, err)
	}

	walkDone := make(chan struct{})
	go func() {
		defer close(walkDone)
		err := walk.Walk(roots, walkOpts, func(f walk.File) error {
			readOK++
			select {
			case jobs <- job{path: f.Path, bytes: f.Bytes}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil && ioErr == nil {
			ioErr = cerrors.NewIOError("", err)
			diagnostics.Warnf("walk: %v", err)
		}
	}()

	<-walkDone
	close(jobs)

	err := g.Wait()
	close(results)
	collectWG.Wait()

	if err != nil {
		return nil, err
	}

	sort.Slice(collected, func(i, j int) bool { return collected[i].Path < collected[j].Path })

	if readOK == 0 && ioErr != nil {
		return nil, ioErr
	}
	return collected, nil
}

func extOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[i:]
		}
		if path[i] == '/' || path[i] == '\\' {
			break
		}
	}
	return ""
}
