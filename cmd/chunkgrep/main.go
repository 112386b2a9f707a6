// Command chunkgrep parses source trees with tree-sitter grammars,
// extracts regions matching user-supplied syntactic patterns, and emits
// them as fixed-size token windows suitable for downstream embedding.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/chunkgrep/chunkgrep/internal/config"
	"github.com/chunkgrep/chunkgrep/internal/driver"
	cerrors "github.com/chunkgrep/chunkgrep/internal/errors"
	"github.com/chunkgrep/chunkgrep/internal/extract"
	"github.com/chunkgrep/chunkgrep/internal/langset"
	"github.com/chunkgrep/chunkgrep/internal/model"
	"github.com/chunkgrep/chunkgrep/internal/output"
	"github.com/chunkgrep/chunkgrep/internal/treeprint"
	"github.com/chunkgrep/chunkgrep/internal/version"
	"github.com/chunkgrep/chunkgrep/internal/walk"
)

const (
	exitOK = iota
	exitArgError
	exitPatternError
	exitIOError
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	app := buildApp(os.Stdout)

	if err := app.Run(args); err != nil {
		if code, ok := err.(exitCoder); ok {
			fmt.Fprintln(os.Stderr, err)
			return code.ExitCode()
		}
		fmt.Fprintln(os.Stderr, err)
		return exitArgError
	}
	return exitOK
}

// buildApp wires up the CLI's flags and dispatch, writing normal output to
// w. Split out from run so tests can capture output without touching
// os.Stdout.
func buildApp(w io.Writer) *cli.App {
	return &cli.App{
		Name:    "chunkgrep",
		Usage:   "extract and chunk syntactic regions from a source tree",
		Version: version.Version,
		Writer:  w,
		// codedError satisfies cli.ExitCoder; a no-op handler stops the
		// library from calling os.Exit so run can return the code itself.
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "target",
				Aliases: []string{"t"},
				Usage:   "LANG PATTERN pair; repeatable. Encode as --target=lang:pattern.",
			},
			&cli.StringFlag{
				Name:    "model",
				Aliases: []string{"m"},
				Usage:   "model descriptor (codebert, minilm, no-op)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "output format: lines, json, json-lines, pretty-json (default: lines)",
			},
			&cli.BoolFlag{
				Name:  "no-gitignore",
				Usage: "disable .gitignore filtering in the file walker",
			},
			&cli.BoolFlag{
				Name:  "languages",
				Usage: "print the closed set of known language tags and exit",
			},
			&cli.StringFlag{
				Name:  "show-tree",
				Usage: "print the parse tree of the single given path, parsed with this language tag",
			},
		},
		Action: func(c *cli.Context) error {
			return dispatch(c)
		},
	}
}

// exitCoder lets dispatch attach a specific exit code to an error that run
// reads back. It has the same method set as urfave/cli's ExitCoder, which
// is why buildApp installs a no-op ExitErrHandler.
type exitCoder interface {
	error
	ExitCode() int
}

type codedError struct {
	error
	code int
}

func (e codedError) ExitCode() int { return e.code }

func fail(code int, format string, args ...any) error {
	return codedError{error: fmt.Errorf(format, args...), code: code}
}

func dispatch(c *cli.Context) error {
	if c.Bool("languages") {
		for _, tag := range langset.Tags() {
			fmt.Fprintln(c.App.Writer, tag)
		}
		return nil
	}

	if showTreeLang := c.String("show-tree"); showTreeLang != "" {
		return showTree(c, langset.Tag(showTreeLang))
	}

	targets, err := parseTargets(c.StringSlice("target"))
	if err != nil {
		return fail(exitArgError, "chunkgrep: %v", err)
	}
	if len(targets) == 0 {
		return fail(exitArgError, "chunkgrep: at least one --target LANG:PATTERN is required unless --languages or --show-tree is given")
	}

	modelName := c.String("model")
	if modelName == "" {
		return fail(exitArgError, "chunkgrep: --model is required")
	}
	m, err := model.Lookup(modelName)
	if err != nil {
		return fail(exitArgError, "chunkgrep: %v", err)
	}

	paths := c.Args().Slice()
	if len(paths) == 0 {
		paths = []string{"."}
	}

	cfg := &config.Config{
		Targets:     targets,
		Model:       modelName,
		NoGitignore: c.Bool("no-gitignore"),
	}
	if c.IsSet("format") {
		cfg.Format = c.String("format")
	}
	fileCfg, err := config.LoadKDL(paths[0])
	if err != nil {
		return fail(exitArgError, "chunkgrep: %v", err)
	}
	cfg.Merge(fileCfg)
	if cfg.Format == "" {
		cfg.Format = string(output.Lines)
	}

	chooser, err := extract.NewChooser(cfg.Targets, m)
	if err != nil {
		return fail(exitPatternError, "chunkgrep: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	walkOpts := walk.Options{
		NoGitignore: cfg.NoGitignore,
		Include:     cfg.Include,
		Exclude:     cfg.Exclude,
	}

	files, err := driver.Run(ctx, paths, walkOpts, chooser, driver.Options{})
	if err != nil {
		if _, ok := err.(*cerrors.ParseError); ok {
			return fail(exitPatternError, "chunkgrep: %v", err)
		}
		return fail(exitIOError, "chunkgrep: %v", err)
	}

	w, err := output.New(c.App.Writer, output.Format(cfg.Format), paths[0])
	if err != nil {
		return fail(exitArgError, "chunkgrep: %v", err)
	}
	if err := w.Begin(); err != nil {
		return fail(exitIOError, "chunkgrep: %v", err)
	}
	for _, f := range files {
		if err := w.WriteFile(f); err != nil {
			return fail(exitIOError, "chunkgrep: %v", err)
		}
	}
	if err := w.End(); err != nil {
		return fail(exitIOError, "chunkgrep: %v", err)
	}
	return nil
}

func parseTargets(raw []string) ([]extract.Target, error) {
	out := make([]extract.Target, 0, len(raw))
	for _, r := range raw {
		lang, pattern, ok := strings.Cut(r, ":")
		if !ok {
			return nil, fmt.Errorf("malformed --target %q, expected LANG:PATTERN", r)
		}
		out = append(out, extract.Target{Lang: langset.Tag(lang), Pattern: pattern})
	}
	return out, nil
}

func showTree(c *cli.Context, tag langset.Tag) error {
	paths := c.Args().Slice()
	if len(paths) != 1 {
		return fail(exitArgError, "chunkgrep: --show-tree requires exactly one path argument")
	}

	lang, err := langset.Lookup(tag)
	if err != nil {
		return fail(exitArgError, "chunkgrep: %v", err)
	}

	source, err := os.ReadFile(paths[0])
	if err != nil {
		return fail(exitIOError, "chunkgrep: %v", err)
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(lang.Grammar); err != nil {
		return fail(exitArgError, "chunkgrep: %v", err)
	}
	tree := parser.Parse(source, nil)
	if tree == nil {
		return fail(exitPatternError, "chunkgrep: internal error: could not parse %s", paths[0])
	}
	root := tree.RootNode()
	if err := treeprint.Print(c.App.Writer, &root); err != nil {
		return fail(exitIOError, "chunkgrep: %v", err)
	}
	return nil
}
