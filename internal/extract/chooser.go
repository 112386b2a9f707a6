package extract

import (
	"fmt"

	"github.com/chunkgrep/chunkgrep/internal/langset"
	"github.com/chunkgrep/chunkgrep/internal/model"
	"github.com/chunkgrep/chunkgrep/internal/pattern"
)

// Target is a (language tag, raw pattern text) pair as supplied by the
// caller, e.g. via repeated -t/--target flags or a config file's target
// entries.
type Target struct {
	Lang    langset.Tag
	Pattern string
}

// Chooser routes a discovered file to the extractor built for its
// language, after fusing every user-supplied pattern targeting that
// language into one compiled query.
type Chooser struct {
	byLang map[langset.Tag]*Extractor
}

// NewChooser buckets targets by language (preserving insertion order
// within a bucket), compile-validates each pattern, appends a literal
// "@query" capture to any pattern with zero declared captures, fuses each
// bucket's pattern texts into one disjunctive pattern, and builds one
// extractor per language from the shared model.
func NewChooser(targets []Target, m model.Descriptor) (*Chooser, error) {
	order := make([]langset.Tag, 0)
	buckets := make(map[langset.Tag][]string)
	for _, t := range targets {
		if _, seen := buckets[t.Lang]; !seen {
			order = append(order, t.Lang)
		}
		buckets[t.Lang] = append(buckets[t.Lang], t.Pattern)
	}

	byLang := make(map[langset.Tag]*Extractor, len(order))
	for _, tag := range order {
		lang, err := langset.Lookup(tag)
		if err != nil {
			return nil, err
		}

		var fused string
		for _, raw := range buckets[tag] {
			validated, err := pattern.Compile(lang.Grammar, raw)
			if err != nil {
				return nil, fmt.Errorf("chooser: could not parse query: %w", err)
			}
			text := raw
			if len(validated.Captures) == 0 {
				text = raw + " @query"
			}
			fused += text
		}

		compiled, err := pattern.Compile(lang.Grammar, fused)
		if err != nil {
			return nil, fmt.Errorf("chooser: could not parse combined query: %w", err)
		}

		byLang[tag] = New(lang, compiled, m)
	}

	return &Chooser{byLang: byLang}, nil
}

// Route returns the extractor bound to the language routed from ext (a
// file extension including the leading dot), or ok=false if the extension
// is unrecognized or no extractor was built for its language.
func (c *Chooser) Route(ext string) (*Extractor, bool) {
	tag, ok := langset.ForExtension(ext)
	if !ok {
		return nil, false
	}
	e, ok := c.byLang[tag]
	return e, ok
}
