// Package pattern compiles user-supplied syntactic pattern text against a
// grammar and evaluates the textual predicates (#eq?, #not-eq?, #match?,
// #not-match?) tree-sitter's query engine reports but does not itself
// filter on.
package pattern

import (
	"fmt"
	"regexp"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Compiled wraps a validated tree-sitter query together with its
// precomputed predicate list, one per pattern alternative in the query.
type Compiled struct {
	Query      *tree_sitter.Query
	Captures   []string
	predicates [][]predicate
}

type predicateKind int

const (
	predEq predicateKind = iota
	predNotEq
	predMatch
	predNotMatch
)

// predicate is one #eq?/#not-eq?/#match?/#not-match? clause attached to a
// single pattern alternative within a compiled query.
type predicate struct {
	kind     predicateKind
	captureA uint32
	// exactly one of literalB (a plain string operand) or isCaptureB set
	literalB   string
	captureB   uint32
	isCaptureB bool
	re         *regexp.Regexp
}

// Compile validates raw pattern text against grammar, building the
// predicate table for every alternative. It fails with "could not parse
// query" wrapping the underlying grammar error.
func Compile(grammar *tree_sitter.Language, text string) (*Compiled, error) {
	q, err := tree_sitter.NewQuery(grammar, text)
	if err != nil {
		return nil, fmt.Errorf("pattern: could not parse query: %w", err)
	}
	names := q.CaptureNames()

	patternCount := q.PatternCount()
	preds := make([][]predicate, patternCount)
	for pi := uint(0); pi < patternCount; pi++ {
		steps := q.PredicatesForPattern(pi)
		built, err := buildPredicates(q, steps)
		if err != nil {
			return nil, fmt.Errorf("pattern: invalid predicate: %w", err)
		}
		preds[pi] = built
	}

	return &Compiled{Query: q, Captures: names, predicates: preds}, nil
}

// buildPredicates walks the flat step list for one pattern, splitting on
// QueryPredicateStepTypeDone boundaries, and recognizes the four textual
// predicates this system supports. Unrecognized predicate names are
// ignored (tree-sitter's query engine already validated their shape; a
// predicate this package doesn't know about is simply never applied).
func buildPredicates(q *tree_sitter.Query, steps []tree_sitter.QueryPredicateStep) ([]predicate, error) {
	var out []predicate
	var clause []tree_sitter.QueryPredicateStep
	flush := func() error {
		if len(clause) == 0 {
			return nil
		}
		p, ok, err := parseClause(q, clause)
		if err != nil {
			return err
		}
		if ok {
			out = append(out, p)
		}
		clause = nil
		return nil
	}
	for _, s := range steps {
		if s.Type == tree_sitter.QueryPredicateStepTypeDone {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		clause = append(clause, s)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseClause(q *tree_sitter.Query, steps []tree_sitter.QueryPredicateStep) (predicate, bool, error) {
	if len(steps) == 0 || steps[0].Type != tree_sitter.QueryPredicateStepTypeString {
		return predicate{}, false, nil
	}
	op := q.StringValueForId(steps[0].ValueId)

	var kind predicateKind
	switch op {
	case "eq?":
		kind = predEq
	case "not-eq?":
		kind = predNotEq
	case "match?":
		kind = predMatch
	case "not-match?":
		kind = predNotMatch
	default:
		return predicate{}, false, nil
	}

	if len(steps) != 3 || steps[1].Type != tree_sitter.QueryPredicateStepTypeCapture {
		return predicate{}, false, fmt.Errorf("%s expects (capture, string|capture)", op)
	}

	p := predicate{kind: kind, captureA: steps[1].ValueId}

	switch kind {
	case predEq, predNotEq:
		switch steps[2].Type {
		case tree_sitter.QueryPredicateStepTypeCapture:
			p.isCaptureB = true
			p.captureB = steps[2].ValueId
		case tree_sitter.QueryPredicateStepTypeString:
			p.literalB = q.StringValueForId(steps[2].ValueId)
		default:
			return predicate{}, false, fmt.Errorf("%s: malformed operand", op)
		}
	case predMatch, predNotMatch:
		if steps[2].Type != tree_sitter.QueryPredicateStepTypeString {
			return predicate{}, false, fmt.Errorf("%s expects a string regex operand", op)
		}
		pat := q.StringValueForId(steps[2].ValueId)
		re, err := regexp.Compile(pat)
		if err != nil {
			return predicate{}, false, fmt.Errorf("%s: invalid regex %q: %w", op, pat, err)
		}
		p.re = re
	}

	return p, true, nil
}

// MatchSatisfiesPredicates evaluates every predicate attached to the
// pattern alternative m.PatternIndex against m's captures, using source to
// read capture text. A match failing any attached predicate should be
// dropped before its captures are reported.
func (c *Compiled) MatchSatisfiesPredicates(m *tree_sitter.QueryMatch, source []byte) bool {
	preds := c.predicates[m.PatternIndex]
	if len(preds) == 0 {
		return true
	}
	for _, p := range preds {
		textA, ok := captureText(m, p.captureA, source)
		if !ok {
			return false
		}
		switch p.kind {
		case predEq, predNotEq:
			var textB string
			if p.isCaptureB {
				tb, ok := captureText(m, p.captureB, source)
				if !ok {
					return false
				}
				textB = tb
			} else {
				textB = p.literalB
			}
			equal := textA == textB
			if p.kind == predEq && !equal {
				return false
			}
			if p.kind == predNotEq && equal {
				return false
			}
		case predMatch, predNotMatch:
			matched := p.re.MatchString(textA)
			if p.kind == predMatch && !matched {
				return false
			}
			if p.kind == predNotMatch && matched {
				return false
			}
		}
	}
	return true
}

func captureText(m *tree_sitter.QueryMatch, captureIndex uint32, source []byte) (string, bool) {
	for _, c := range m.Captures {
		if c.Index == captureIndex {
			return string(source[c.Node.StartByte():c.Node.EndByte()]), true
		}
	}
	return "", false
}
