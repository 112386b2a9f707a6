package extract

import (
	"testing"

	"github.com/chunkgrep/chunkgrep/internal/langset"
)

// TestNewChooserFusesPatternsPerLanguage is scenario S5 / testable
// property 6 ("fusion equivalence"): multiple --target patterns for one
// language are combined into a single compiled query and matched in one
// parse, not run as independent passes. A captureless pattern among them
// gets a literal "@query" capture appended so it still reports a match.
func TestNewChooserFusesPatternsPerLanguage(t *testing.T) {
	targets := []Target{
		{Lang: langset.Go, Pattern: `(function_declaration name: (identifier) @fn)`},
		{Lang: langset.Go, Pattern: `(import_spec path: (interpreted_string_literal))`},
	}

	chooser, err := NewChooser(targets, mustModel(t))
	if err != nil {
		t.Fatalf("NewChooser: %v", err)
	}

	ex, ok := chooser.Route(".go")
	if !ok {
		t.Fatal("expected .go to route to a built extractor")
	}

	source := []byte("package main\n\nimport \"fmt\"\n\nfunc Hello() {}\n")
	rec, err := ex.Extract(newParser(t), "main.go", source)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if rec == nil {
		t.Fatal("expected a file record")
	}
	if len(rec.Matches) != 2 {
		t.Fatalf("expected one match per fused pattern, got %d: %+v", len(rec.Matches), rec.Matches)
	}

	var sawFn, sawQuery bool
	for _, m := range rec.Matches {
		switch m.Label {
		case "fn":
			sawFn = true
			if m.Text != "Hello" {
				t.Errorf("fn match text = %q, want %q", m.Text, "Hello")
			}
		case "query":
			sawQuery = true
			if m.Text != `"fmt"` {
				t.Errorf("query match text = %q, want %q", m.Text, `"fmt"`)
			}
		default:
			t.Errorf("unexpected capture label %q", m.Label)
		}
	}
	if !sawFn {
		t.Error("missing match from the declared-capture pattern (label \"fn\")")
	}
	if !sawQuery {
		t.Error("missing match from the captureless pattern (auto-appended \"@query\" label)")
	}
}

// TestNewChooserBuildsOneExtractorPerLanguage checks that distinct
// languages get independent extractors, each reached by routing one of
// its own extensions.
func TestNewChooserBuildsOneExtractorPerLanguage(t *testing.T) {
	targets := []Target{
		{Lang: langset.Go, Pattern: `(function_declaration name: (identifier) @fn)`},
		{Lang: langset.Python, Pattern: `(function_definition name: (identifier) @fn)`},
	}

	chooser, err := NewChooser(targets, mustModel(t))
	if err != nil {
		t.Fatalf("NewChooser: %v", err)
	}

	goEx, ok := chooser.Route(".go")
	if !ok {
		t.Fatal("expected .go to route")
	}
	if goEx.Lang != langset.Go {
		t.Fatalf("routed extractor language = %q, want %q", goEx.Lang, langset.Go)
	}

	pyEx, ok := chooser.Route(".PY")
	if !ok {
		t.Fatal("expected .PY to route case-insensitively")
	}
	if pyEx.Lang != langset.Python {
		t.Fatalf("routed extractor language = %q, want %q", pyEx.Lang, langset.Python)
	}
}

func TestChooserRouteUnknownExtension(t *testing.T) {
	chooser, err := NewChooser(nil, mustModel(t))
	if err != nil {
		t.Fatalf("NewChooser: %v", err)
	}
	if _, ok := chooser.Route(".cobol"); ok {
		t.Fatal("expected no extractor for an unrecognized extension")
	}
}
