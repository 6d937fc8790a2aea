package tree

// Index caches parent links and leaf spans for every node under a root.
// It is built with one walk and answers Parent, LeftEdge and RightEdge in
// constant time. An Index is read-only after construction.
type Index struct {
	root    *Node
	parents map[*Node]*Node
	left    map[*Node]int
	right   map[*Node]int
}

// NewIndex walks root and records parents and spans.
func NewIndex(root *Node) *Index {
	idx := &Index{
		root:    root,
		parents: make(map[*Node]*Node),
		left:    make(map[*Node]int),
		right:   make(map[*Node]int),
	}
	if root != nil {
		leaves := 0
		idx.build(root, nil, &leaves)
	}
	return idx
}

func (idx *Index) build(n, parent *Node, leaves *int) {
	idx.parents[n] = parent
	idx.left[n] = *leaves
	if n.IsLeaf() {
		*leaves++
	}
	for _, c := range n.Children {
		idx.build(c, n, leaves)
	}
	idx.right[n] = *leaves
}

func (idx *Index) Root() *Node { return idx.root }

// Contains reports whether n is under the indexed root.
func (idx *Index) Contains(n *Node) bool {
	_, ok := idx.parents[n]
	return ok
}

// Parent returns the parent of n, nil for the root or unknown nodes.
func (idx *Index) Parent(n *Node) *Node {
	return idx.parents[n]
}

// LeftEdge returns the number of leaves before n, or -1 for unknown nodes.
func (idx *Index) LeftEdge(n *Node) int {
	if v, ok := idx.left[n]; ok {
		return v
	}
	return -1
}

// RightEdge returns LeftEdge plus the leaf count of n, or -1 for unknown nodes.
func (idx *Index) RightEdge(n *Node) int {
	if v, ok := idx.right[n]; ok {
		return v
	}
	return -1
}
