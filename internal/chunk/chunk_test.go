package chunk

import (
	"strings"
	"testing"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"

	"github.com/chunkgrep/chunkgrep/internal/model"
)

func parseGo(t *testing.T, src []byte) *tree_sitter.Node {
	t.Helper()
	parser := tree_sitter.NewParser()
	defer parser.Close()
	lang := tree_sitter.NewLanguage(tree_sitter_go.Language())
	if err := parser.SetLanguage(lang); err != nil {
		t.Fatalf("SetLanguage: %v", err)
	}
	tree := parser.Parse(src, nil)
	if tree == nil {
		t.Fatal("parse returned nil tree")
	}
	return tree.RootNode()
}

func TestFastPathSingleChunk(t *testing.T) {
	src := []byte("package main\n\nfunc main() {}\n")
	root := parseGo(t, src)

	noop, err := model.Lookup("no-op")
	if err != nil {
		t.Fatal(err)
	}
	c := New(noop)
	chunks, err := c.ChunkNode(src, root)
	if err != nil {
		t.Fatalf("ChunkNode: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected exactly one chunk on short input, got %d", len(chunks))
	}
	if chunks[0].StartByte != 0 || chunks[0].EndByte != len(src) {
		t.Fatalf("chunk range = [%d,%d), want [0,%d)", chunks[0].StartByte, chunks[0].EndByte, len(src))
	}
}

func TestGeneralPathMonotoneAndCoversStart(t *testing.T) {
	var b strings.Builder
	b.WriteString("package main\n\n")
	for i := 0; i < 400; i++ {
		b.WriteString("func f")
		b.WriteString(strings.Repeat("x", i%5+1))
		b.WriteString("() {\n\tvar y = 1\n\t_ = y\n}\n\n")
	}
	src := []byte(b.String())
	root := parseGo(t, src)

	mdl, err := model.Lookup("minilm")
	if err != nil {
		t.Fatal(err)
	}
	c := New(mdl)
	chunks, err := c.ChunkNode(src, root)
	if err != nil {
		t.Fatalf("ChunkNode: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks for long input, got %d", len(chunks))
	}
	for _, ch := range chunks {
		if len(ch.IDs) != mdl.W() {
			t.Errorf("chunk length = %d, want %d", len(ch.IDs), mdl.W())
		}
	}
	if chunks[0].StartByte != 0 {
		t.Errorf("first chunk start = %d, want 0", chunks[0].StartByte)
	}
	for i := 1; i < len(chunks); i++ {
		if chunks[i].StartByte < chunks[i-1].StartByte {
			t.Errorf("chunk start not monotone at %d", i)
		}
		if chunks[i].EndByte < chunks[i-1].EndByte {
			t.Errorf("chunk end not monotone at %d", i)
		}
	}
}
