package walk

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// gitignorePattern is one parsed, compiled line from a .gitignore file.
type gitignorePattern struct {
	raw       string
	negate    bool
	directory bool
	absolute  bool
	compiled  *regexp.Regexp
}

// gitignoreSet holds the patterns discovered for one directory level; sets
// closer to a given path take precedence over ancestor sets (closest-file-
// wins), mirroring git's own override behavior.
type gitignoreSet struct {
	patterns []gitignorePattern
}

func loadGitignore(dir string) (*gitignoreSet, error) {
	f, err := os.Open(filepath.Join(dir, ".gitignore"))
	if err != nil {
		if os.IsNotExist(err) {
			return &gitignoreSet{}, nil
		}
		return nil, err
	}
	defer f.Close()

	set := &gitignoreSet{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		set.patterns = append(set.patterns, parseGitignoreLine(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return set, nil
}

func parseGitignoreLine(line string) gitignorePattern {
	p := gitignorePattern{}
	if strings.HasPrefix(line, "!") {
		p.negate = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.directory = true
		line = strings.TrimSuffix(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		p.absolute = true
		line = line[1:]
	}
	p.raw = line
	p.compiled = regexp.MustCompile(globToRegex(line))
	return p
}

// globToRegex converts a gitignore glob (supporting *, ?, and [...]
// character classes) to an anchored regular expression.
func globToRegex(pattern string) string {
	var b strings.Builder
	b.WriteString("^")
	inClass := false
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c == '*':
			b.WriteString(".*")
		case c == '?':
			b.WriteString(".")
		case c == '[':
			inClass = true
			b.WriteByte(c)
		case c == ']':
			inClass = false
			b.WriteByte(c)
		case inClass:
			b.WriteByte(c)
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteString("$")
	return b.String()
}

// shouldIgnore reports whether relPath (slash-separated, relative to the
// directory this set was loaded from) is ignored, applying negation in
// declaration order (later patterns win, matching git's own semantics).
func (s *gitignoreSet) shouldIgnore(relPath string, isDir bool) bool {
	ignored := false
	for _, p := range s.patterns {
		if matchesGitignore(p, relPath, isDir) {
			ignored = !p.negate
		}
	}
	return ignored
}

func matchesGitignore(p gitignorePattern, path string, isDir bool) bool {
	if p.directory && !isDir {
		// a directory-only pattern still matches files nested inside the
		// ignored directory
		if strings.HasPrefix(path, p.raw+"/") || p.compiled.MatchString(filepath.Dir(path)) {
			return true
		}
	}

	if p.absolute {
		return p.compiled.MatchString(path)
	}

	if p.compiled.MatchString(path) {
		return true
	}
	parts := strings.Split(path, "/")
	for i := 1; i < len(parts); i++ {
		if p.compiled.MatchString(strings.Join(parts[i:], "/")) {
			return true
		}
	}
	return false
}
