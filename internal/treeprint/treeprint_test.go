package treeprint

import (
	"strings"
	"testing"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
)

func TestPrintIncludesRootAndChildKinds(t *testing.T) {
	parser := tree_sitter.NewParser()
	defer parser.Close()
	lang := tree_sitter.NewLanguage(tree_sitter_go.Language())
	if err := parser.SetLanguage(lang); err != nil {
		t.Fatalf("SetLanguage: %v", err)
	}

	source := []byte("package main\n\nfunc main() {}\n")
	tree := parser.Parse(source, nil)
	if tree == nil {
		t.Fatal("Parse returned nil")
	}
	root := tree.RootNode()

	var sb strings.Builder
	if err := Print(&sb, &root); err != nil {
		t.Fatalf("Print: %v", err)
	}

	out := sb.String()
	if !strings.Contains(out, "source_file") {
		t.Fatalf("expected root kind source_file in output, got:\n%s", out)
	}
	if !strings.Contains(out, "function_declaration") {
		t.Fatalf("expected function_declaration in output, got:\n%s", out)
	}
	if !strings.Contains(out, "[0,") {
		t.Fatalf("expected byte range annotation, got:\n%s", out)
	}
}
