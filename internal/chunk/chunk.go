// Package chunk implements the sliding-window chunker: it splits a matched
// syntactic region into overlapping, model-sized token windows, preferring
// split points at source lines where many syntactic subtrees terminate.
package chunk

import (
	"fmt"
	"math/bits"
	"unicode/utf8"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/chunkgrep/chunkgrep/internal/model"
)

// Chunk is one framed, fixed-length token window together with the byte
// range of the match text it was derived from.
type Chunk struct {
	IDs       []int
	StartByte int
	EndByte   int
}

// Chunker is bound to a single model descriptor and retains no state
// between calls; it is immutable and safe to share across goroutines.
type Chunker struct {
	m model.Descriptor
}

// New builds a chunker bound to m.
func New(m model.Descriptor) *Chunker {
	return &Chunker{m: m}
}

// ChunkNode splits source (the exact byte range of node n) into chunks
// according to n's subtree shape. node's rows are treated relative to its
// own start row; its byte offsets are not consulted — every byte position
// used here is 0-based within source itself.
func (c *Chunker) ChunkNode(source []byte, n *tree_sitter.Node) ([]Chunk, error) {
	if !utf8.Valid(source) {
		return nil, fmt.Errorf("chunk: invalid UTF-8 in match text")
	}

	enc, err := model.Encode(c.m.Tokenizer(), string(source))
	if err != nil {
		return nil, fmt.Errorf("chunk: could not encode source: %w", err)
	}
	L := enc.Len()
	F := c.m.F()
	W := c.m.W()

	if L+F <= W {
		ids := c.m.Frame(make([]int, 0, W), enc.IDs())
		return []Chunk{{IDs: ids, StartByte: 0, EndByte: len(source)}}, nil
	}

	O := c.m.O()
	startRow := int(n.StartPosition().Row)

	lineCount := 0
	for _, b := range source {
		if b == '\n' {
			lineCount++
		}
	}

	term := make([]int, lineCount+1)
	var walk func(node *tree_sitter.Node)
	walk = func(node *tree_sitter.Node) {
		cnt := node.ChildCount()
		for i := uint(0); i < cnt; i++ {
			child := node.Child(i)
			if child == nil {
				continue
			}
			sRow := int(child.StartPosition().Row)
			eRow := int(child.EndPosition().Row)
			if sRow != eRow {
				idx := eRow - startRow
				if idx >= 0 && idx < len(term) {
					term[idx]++
				}
			}
			walk(child)
		}
	}
	walk(n)

	nl := make([]int, 1, lineCount+1)
	nl[0] = 0
	innerLimit := W - 2*O - F
	for i, b := range source {
		if b != '\n' {
			continue
		}
		tok := enc.CharToToken(i)
		if tok-nl[len(nl)-1] > innerLimit {
			return nil, fmt.Errorf("chunk: line too long")
		}
		nl = append(nl, tok)
	}

	ids := enc.IDs()
	chunkLineStart := 0
	chunkLineEnd := 0
	first := 1
	lookbehind := int(bits.Len(uint(W))) - 1
	if lookbehind < 0 {
		lookbehind = 0
	}

	var chunks []Chunk

	for chunkLineEnd < lineCount {
		chunkLineEnd++
		if nl[chunkLineEnd]-nl[chunkLineStart] > W-O-first*O {
			lookback := chunkLineEnd - lookbehind
			if chunkLineStart > lookback {
				lookback = chunkLineStart
			}
			bestIdx := lookback
			bestVal := -1
			for i := lookback; i < chunkLineEnd; i++ {
				if term[i] > bestVal {
					bestVal = term[i]
					bestIdx = i
				}
			}
			closedLineEnd := bestIdx

			tokStart := nl[chunkLineStart] + 1 - O
			if tokStart < 0 {
				tokStart = 0
			}
			tokEnd := nl[closedLineEnd] + O
			if tokEnd > L-1 {
				tokEnd = L - 1
			}

			body := ids[tokStart:tokEnd]
			framed := c.m.Frame(make([]int, 0, W), body)
			sb, _ := enc.TokenToChars(tokStart)
			eb, _ := enc.TokenToChars(tokEnd)
			chunks = append(chunks, Chunk{IDs: framed, StartByte: sb, EndByte: eb})

			chunkLineStart = closedLineEnd
			first = 0
			chunkLineEnd = closedLineEnd
		}
	}

	tokStart := nl[chunkLineStart] + 1 - O
	if tokStart < 0 {
		tokStart = 0
	}
	tokEnd := L - 1
	body := ids[tokStart:tokEnd]
	framed := c.m.Frame(make([]int, 0, W), body)
	sb, _ := enc.TokenToChars(tokStart)
	eb, _ := enc.TokenToChars(tokEnd)
	chunks = append(chunks, Chunk{IDs: framed, StartByte: sb, EndByte: eb})

	return chunks, nil
}
