package tregex

import (
	"github.com/gnolang/tregex/tree"
)

// Iterator yields candidate nodes one at a time and nil once drained.
// Each call to Relation.Search returns a fresh iterator with its own cursor.
type Iterator func() *tree.Node

func emptyIter() Iterator {
	return func() *tree.Node { return nil }
}

func singleIter(n *tree.Node) Iterator {
	return func() *tree.Node {
		next := n
		n = nil
		return next
	}
}

func sliceIter(nodes []*tree.Node) Iterator {
	i := 0
	return func() *tree.Node {
		if i >= len(nodes) {
			return nil
		}
		i++
		return nodes[i-1]
	}
}

// chainIter follows step from start (exclusive) until step returns nil.
func chainIter(start *tree.Node, step func(*tree.Node) *tree.Node) Iterator {
	cur := start
	return func() *tree.Node {
		if cur == nil {
			return nil
		}
		cur = step(cur)
		return cur
	}
}

// nodeStack is the explicit stack behind the depth-first relations.
type nodeStack []*tree.Node

func (s *nodeStack) push(n *tree.Node) { *s = append(*s, n) }

func (s *nodeStack) pushChildrenReversed(n *tree.Node) {
	for i := n.NumChildren() - 1; i >= 0; i-- {
		s.push(n.Children[i])
	}
}

func (s *nodeStack) pop() *tree.Node {
	if len(*s) == 0 {
		return nil
	}
	n := (*s)[len(*s)-1]
	*s = (*s)[:len(*s)-1]
	return n
}

// Collect drains it into a slice.
func Collect(it Iterator) []*tree.Node {
	var out []*tree.Node
	for n := it(); n != nil; n = it() {
		out = append(out, n)
	}
	return out
}
