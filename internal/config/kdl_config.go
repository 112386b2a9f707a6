package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/chunkgrep/chunkgrep/internal/extract"
	"github.com/chunkgrep/chunkgrep/internal/langset"
)

// fileName is the project config file this loader looks for in a walk
// root.
const fileName = ".chunkgrep.kdl"

// LoadKDL loads .chunkgrep.kdl from projectRoot, if present. A missing
// file is not an error (returns nil, nil); a malformed one is.
func LoadKDL(projectRoot string) (*Config, error) {
	path := filepath.Join(projectRoot, fileName)
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: could not read %s: %w", fileName, err)
	}
	return parseKDL(string(content))
}

func parseKDL(content string) (*Config, error) {
	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("config: could not parse %s: %w", fileName, err)
	}

	cfg := &Config{}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "target":
			lang, pat, ok := targetArgs(n)
			if !ok {
				return nil, fmt.Errorf("config: target node requires (language, pattern) arguments")
			}
			cfg.Targets = append(cfg.Targets, extract.Target{Lang: langset.Tag(lang), Pattern: pat})
		case "model":
			if s, ok := firstStringArg(n); ok {
				cfg.Model = s
			}
		case "format":
			if s, ok := firstStringArg(n); ok {
				cfg.Format = s
			}
		case "include":
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			cfg.Exclude = append(cfg.Exclude, collectStringArgs(n)...)
		case "gitignore":
			if b, ok := firstBoolArg(n); ok {
				cfg.NoGitignore = !b
			}
		}
	}

	return cfg, nil
}

func targetArgs(n *document.Node) (lang, pattern string, ok bool) {
	if len(n.Arguments) < 2 {
		return "", "", false
	}
	l, lok := n.Arguments[0].Value.(string)
	p, pok := n.Arguments[1].Value.(string)
	if !lok || !pok {
		return "", "", false
	}
	return l, p, true
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	s, ok := n.Arguments[0].Value.(string)
	return s, ok
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	b, ok := n.Arguments[0].Value.(bool)
	return b, ok
}

func collectStringArgs(n *document.Node) []string {
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
