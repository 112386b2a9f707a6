// Package treeprint implements the --show-tree rendering: an indented
// ASCII dump of a parsed tree's node kinds and byte ranges.
package treeprint

import (
	"fmt"
	"io"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Print writes an indented dump of root to w, one line per node:
// "kind [startByte,endByte)" with branch characters showing tree shape.
func Print(w io.Writer, root *tree_sitter.Node) error {
	return printNode(w, root, "", true, true)
}

func printNode(w io.Writer, n *tree_sitter.Node, prefix string, isLast, isRoot bool) error {
	if n == nil {
		return nil
	}

	var branch string
	switch {
	case isRoot:
		branch = ""
	case isLast:
		branch = "└─ "
	default:
		branch = "├─ "
	}

	if _, err := fmt.Fprintf(w, "%s%s%s [%d,%d)\n", prefix, branch, n.Kind(), n.StartByte(), n.EndByte()); err != nil {
		return err
	}

	childPrefix := prefix
	if !isRoot {
		if isLast {
			childPrefix += "   "
		} else {
			childPrefix += "│  "
		}
	}

	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		child := n.Child(uint(i))
		if err := printNode(w, child, childPrefix, i == count-1, false); err != nil {
			return err
		}
	}
	return nil
}
