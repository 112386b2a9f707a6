// Package extract binds a language, a compiled pattern, and a model into
// an extractor that parses source buffers, locates matches, invokes the
// chunker per match, and assembles per-file result records. It also holds
// the extractor chooser, which fuses a user's (language, pattern) list
// into one extractor per language.
package extract

import (
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/chunkgrep/chunkgrep/internal/chunk"
	"github.com/chunkgrep/chunkgrep/internal/diagnostics"
	"github.com/chunkgrep/chunkgrep/internal/langset"
	"github.com/chunkgrep/chunkgrep/internal/model"
	"github.com/chunkgrep/chunkgrep/internal/pattern"
	"github.com/chunkgrep/chunkgrep/internal/records"
)

// Extractor is an immutable binding of (language, compiled pattern, model,
// chunker). Safe to share by reference across goroutines; Extract itself
// needs a caller-provided *tree_sitter.Parser per call (parsers are not
// safe to share concurrently).
type Extractor struct {
	Lang       langset.Tag
	grammar    *tree_sitter.Language
	compiled   *pattern.Compiled
	chunker    *chunk.Chunker
	structural map[uint32]bool
}

// New binds language, compiled pattern and model together, precomputing
// the structural (underscore-prefixed) capture index set. If every
// declared capture label is structural, it emits a warning to the
// diagnostic stream immediately: the extractor is guaranteed to never
// report a match.
func New(lang *langset.Language, compiled *pattern.Compiled, m model.Descriptor) *Extractor {
	structural := make(map[uint32]bool, len(compiled.Captures))
	for i, name := range compiled.Captures {
		if strings.HasPrefix(name, "_") {
			structural[uint32(i)] = true
		}
	}
	if len(structural) == len(compiled.Captures) {
		diagnostics.Warnf("query only has ignored captures. No results will be printed.")
	}
	return &Extractor{
		Lang:       lang.Tag,
		grammar:    lang.Grammar,
		compiled:   compiled,
		chunker:    chunk.New(m),
		structural: structural,
	}
}

// Extract configures parser for the bound language, parses source, runs
// the bound pattern, and assembles a file record. path is stored as the
// record's Path and named in diagnostic messages (where an empty path is
// shown as "stdin"). Returns (nil, nil) when no match records were
// produced ("no result").
func (e *Extractor) Extract(parser *tree_sitter.Parser, path string, source []byte) (*records.File, error) {
	if err := parser.SetLanguage(e.grammar); err != nil {
		return nil, fmt.Errorf("extract: could not set language: %w", err)
	}
	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("extract: could not parse to a tree (internal error)")
	}
	root := tree.RootNode()

	qc := tree_sitter.NewQueryCursor()
	defer qc.Close()
	matches := qc.Matches(e.compiled.Query, root, source)

	displayPath := path
	if displayPath == "" {
		displayPath = "stdin"
	}

	var out []records.Match
	for {
		m := matches.Next()
		if m == nil {
			break
		}
		if !e.compiled.MatchSatisfiesPredicates(m, source) {
			continue
		}
		for _, cap := range m.Captures {
			if e.structural[cap.Index] {
				continue
			}
			node := cap.Node
			label := e.compiled.Captures[cap.Index]
			nodeSource := source[node.StartByte():node.EndByte()]

			chunks, err := e.chunker.ChunkNode(nodeSource, &node)
			if err != nil {
				diagnostics.Warnf("tokenization for %s failed: %v", displayPath, err)
				continue
			}

			out = append(out, records.Match{
				Kind:   node.Kind(),
				Label:  label,
				Text:   string(nodeSource),
				Start:  position(node.StartPosition()),
				End:    position(node.EndPosition()),
				Chunks: toRecordChunks(chunks),
			})
		}
	}

	if len(out) == 0 {
		return nil, nil
	}
	return &records.File{
		Path:     path,
		Language: string(e.Lang),
		Matches:  out,
	}, nil
}

func position(p tree_sitter.Point) records.Position {
	return records.Position{Row: int(p.Row) + 1, Column: int(p.Column) + 1}
}

func toRecordChunks(chunks []chunk.Chunk) []records.Chunk {
	out := make([]records.Chunk, len(chunks))
	for i, c := range chunks {
		out[i] = records.Chunk{IDs: c.IDs, StartByte: c.StartByte, EndByte: c.EndByte}
	}
	return out
}
