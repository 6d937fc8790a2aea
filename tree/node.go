package tree

import (
	"strings"
)

// Node is a labeled, ordered tree node. A node does not know its parent;
// parents are computed relative to a root (see Parent and Index).
type Node struct {
	Label    string
	Children []*Node
}

// HeadFinder picks the head daughter of a phrasal node.
type HeadFinder interface {
	DetermineHead(n *Node) *Node
}

// New creates a node with the given label and children.
func New(label string, children ...*Node) *Node {
	return &Node{Label: label, Children: children}
}

// Leaf creates a node with no children.
func Leaf(label string) *Node {
	return &Node{Label: label}
}

func (n *Node) NumChildren() int {
	if n == nil {
		return 0
	}
	return len(n.Children)
}

// Child returns the i-th child, or nil when out of range.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

func (n *Node) FirstChild() *Node { return n.Child(0) }

func (n *Node) LastChild() *Node { return n.Child(n.NumChildren() - 1) }

func (n *Node) IsLeaf() bool { return n.NumChildren() == 0 }

// IsPreTerminal reports whether n has exactly one child and that child is a leaf.
func (n *Node) IsPreTerminal() bool {
	return n.NumChildren() == 1 && n.Children[0].IsLeaf()
}

// Value returns the label. The boolean is false when the label is absent.
func (n *Node) Value() (string, bool) {
	if n == nil || n.Label == "" {
		return "", false
	}
	return n.Label, true
}

// IndexOf returns the position of child among n's children by identity, or -1.
func (n *Node) IndexOf(child *Node) int {
	if n == nil {
		return -1
	}
	for i, c := range n.Children {
		if c == child {
			return i
		}
	}
	return -1
}

// Dominates reports whether other is n itself or one of its descendants.
func (n *Node) Dominates(other *Node) bool {
	if n == nil || other == nil {
		return false
	}
	if n == other {
		return true
	}
	for _, c := range n.Children {
		if c.Dominates(other) {
			return true
		}
	}
	return false
}

// Parent finds the parent of n inside root. It returns nil for root itself
// and for nodes that root does not dominate.
func (n *Node) Parent(root *Node) *Node {
	if root == nil || n == nil || root == n {
		return nil
	}
	for _, c := range root.Children {
		if c == n {
			return root
		}
		if p := n.Parent(c); p != nil {
			return p
		}
	}
	return nil
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the subtree below the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Preorder lists n and all its descendants in pre-order.
func (n *Node) Preorder() []*Node {
	var out []*Node
	n.Walk(func(x *Node) bool {
		out = append(out, x)
		return true
	})
	return out
}

// Leaves lists the leaves under n from left to right.
func (n *Node) Leaves() []*Node {
	var out []*Node
	n.Walk(func(x *Node) bool {
		if x.IsLeaf() {
			out = append(out, x)
		}
		return true
	})
	return out
}

// Yield returns the labels of the leaves under n.
func (n *Node) Yield() []string {
	leaves := n.Leaves()
	words := make([]string, len(leaves))
	for i, l := range leaves {
		words[i] = l.Label
	}
	return words
}

// LeftEdge is the number of leaves of root that precede n.
// It returns -1 when root does not dominate n.
func (n *Node) LeftEdge(root *Node) int {
	count := 0
	if leftEdge(n, root, &count) {
		return count
	}
	return -1
}

func leftEdge(n, t *Node, count *int) bool {
	if n == t {
		return true
	}
	if t.IsLeaf() {
		*count++
		return false
	}
	for _, c := range t.Children {
		if leftEdge(n, c, count) {
			return true
		}
	}
	return false
}

// RightEdge is LeftEdge plus the number of leaves under n.
func (n *Node) RightEdge(root *Node) int {
	left := n.LeftEdge(root)
	if left < 0 {
		return -1
	}
	return left + len(n.Leaves())
}

// String renders n in bracketed notation.
func (n *Node) String() string {
	if n == nil {
		return "()"
	}
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder) {
	if n.IsLeaf() {
		sb.WriteString(n.Label)
		return
	}
	sb.WriteByte('(')
	sb.WriteString(n.Label)
	for _, c := range n.Children {
		sb.WriteByte(' ')
		c.write(sb)
	}
	sb.WriteByte(')')
}
