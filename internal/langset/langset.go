// Package langset holds the closed set of languages chunkgrep understands:
// a tag, its tree-sitter grammar, and the file extensions routed to it.
package langset

import (
	"fmt"
	"sort"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
	tree_sitter_zig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"
)

// Tag identifies one of the eleven languages chunkgrep can parse.
type Tag string

const (
	Go         Tag = "go"
	JavaScript Tag = "javascript"
	TypeScript Tag = "typescript"
	TSX        Tag = "tsx"
	Python     Tag = "python"
	Java       Tag = "java"
	Rust       Tag = "rust"
	CSharp     Tag = "csharp"
	Cpp        Tag = "cpp"
	PHP        Tag = "php"
	Zig        Tag = "zig"
)

// Language bundles a tag with its grammar handle and routed extensions.
type Language struct {
	Tag        Tag
	Grammar    *tree_sitter.Language
	Extensions []string
}

var registry map[Tag]*Language
var byExtension map[string]Tag
var ordered []Tag

func register(tag Tag, grammar *tree_sitter.Language, exts ...string) {
	l := &Language{Tag: tag, Grammar: grammar, Extensions: exts}
	registry[tag] = l
	for _, e := range exts {
		byExtension[normalizeExt(e)] = tag
	}
	ordered = append(ordered, tag)
}

// normalizeExt lowercases ext and strips a leading dot, so registration and
// lookup agree on one canonical key regardless of how either spells it.
func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

func init() {
	registry = make(map[Tag]*Language)
	byExtension = make(map[string]Tag)

	register(Go, tree_sitter.NewLanguage(tree_sitter_go.Language()), ".go")
	register(JavaScript, tree_sitter.NewLanguage(tree_sitter_javascript.Language()), ".js", ".jsx", ".mjs", ".cjs")
	register(TypeScript, tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()), ".ts", ".mts", ".cts")
	register(TSX, tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX()), ".tsx")
	register(Python, tree_sitter.NewLanguage(tree_sitter_python.Language()), ".py", ".pyi")
	register(Java, tree_sitter.NewLanguage(tree_sitter_java.Language()), ".java")
	register(Rust, tree_sitter.NewLanguage(tree_sitter_rust.Language()), ".rs")
	register(CSharp, tree_sitter.NewLanguage(tree_sitter_csharp.Language()), ".cs")
	register(Cpp, tree_sitter.NewLanguage(tree_sitter_cpp.Language()), ".cc", ".cpp", ".cxx", ".hpp", ".hh", ".h")
	register(PHP, tree_sitter.NewLanguage(tree_sitter_php.LanguagePHP()), ".php")
	register(Zig, tree_sitter.NewLanguage(tree_sitter_zig.Language()), ".zig")

	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })
}

// Lookup returns the Language registered under tag, or an error if the tag
// is not one of the eleven recognized languages.
func Lookup(tag Tag) (*Language, error) {
	l, ok := registry[tag]
	if !ok {
		return nil, fmt.Errorf("langset: unrecognized language %q (valid: %v)", tag, Tags())
	}
	return l, nil
}

// ForExtension maps a file extension (with or without a leading dot) to
// its language tag, case-insensitively. ok is false when no registered
// language claims ext.
func ForExtension(ext string) (Tag, bool) {
	tag, ok := byExtension[normalizeExt(ext)]
	return tag, ok
}

// Tags returns every recognized language tag, sorted.
func Tags() []Tag {
	out := make([]Tag, len(ordered))
	copy(out, ordered)
	return out
}

// All returns every recognized Language, sorted by tag.
func All() []*Language {
	out := make([]*Language, 0, len(ordered))
	for _, t := range ordered {
		out = append(out, registry[t])
	}
	return out
}
