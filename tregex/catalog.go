package tregex

import (
	"github.com/gnolang/tregex/tree"
)

// Satisfies reports whether t2 stands in relation r to t1, e.g. for
// RelParentOf whether t2 is a child of t1. Both nodes are taken relative to
// the root env was built for.
func (r Relation) Satisfies(t1, t2 *tree.Node, env *Env) bool {
	if t1 == nil || t2 == nil {
		return false
	}
	switch r.Kind {
	case RelRoot, RelEquals:
		return t1 == t2
	case RelPatternSplitter:
		return env.idx.Contains(t1) && env.idx.Contains(t2)
	case RelDominates:
		return t1 != t2 && t1.Dominates(t2)
	case RelDominatedBy:
		return t1 != t2 && t2.Dominates(t1)
	case RelParentOf:
		return env.parent(t2) == t1
	case RelChildOf:
		return env.parent(t1) == t2
	case RelHasIthChild:
		return ithChild(t1, r.Index) == t2
	case RelIthChildOf:
		return ithChild(t2, r.Index) == t1
	case RelOnlyChild:
		return t1.NumChildren() == 1 && t1.Children[0] == t2
	case RelOnlyChildOf:
		return t2.NumChildren() == 1 && t2.Children[0] == t1
	case RelPrecedes:
		return inTree(env, t1, t2) && env.idx.RightEdge(t1) <= env.idx.LeftEdge(t2)
	case RelFollows:
		return inTree(env, t1, t2) && env.idx.RightEdge(t2) <= env.idx.LeftEdge(t1)
	case RelImmediatelyPrecedes:
		return inTree(env, t1, t2) && env.idx.RightEdge(t1) == env.idx.LeftEdge(t2)
	case RelImmediatelyFollows:
		return inTree(env, t1, t2) && env.idx.RightEdge(t2) == env.idx.LeftEdge(t1)
	case RelSisterOf, RelLeftSisterOf, RelRightSisterOf, RelImmediateLeftSisterOf, RelImmediateRightSisterOf:
		return r.sisters(t1, t2, env)
	case RelImmediatelyHeadedBy:
		return env.head(t1) == t2
	case RelImmediatelyHeads:
		return env.head(t2) == t1
	default:
		return contains(r.Search(t1, env), t2)
	}
}

func inTree(env *Env, nodes ...*tree.Node) bool {
	for _, n := range nodes {
		if !env.idx.Contains(n) {
			return false
		}
	}
	return true
}

func (r Relation) sisters(t1, t2 *tree.Node, env *Env) bool {
	p := env.parent(t1)
	if p == nil || t1 == t2 || env.parent(t2) != p {
		return false
	}
	i, j := p.IndexOf(t1), p.IndexOf(t2)
	switch r.Kind {
	case RelLeftSisterOf:
		return i < j
	case RelRightSisterOf:
		return i > j
	case RelImmediateLeftSisterOf:
		return j == i+1
	case RelImmediateRightSisterOf:
		return j == i-1
	}
	return true
}

func contains(it Iterator, target *tree.Node) bool {
	for n := it(); n != nil; n = it() {
		if n == target {
			return true
		}
	}
	return false
}

// Search enumerates, lazily and in the relation's fixed order, every node
// that stands in relation r to t.
func (r Relation) Search(t *tree.Node, env *Env) Iterator {
	if t == nil {
		return emptyIter()
	}
	switch r.Kind {
	case RelRoot, RelEquals:
		return singleIter(t)
	case RelPatternSplitter:
		return sliceIter(env.Root().Preorder())
	case RelDominates:
		return dominatesIter(t, nil, env)
	case RelDominatedBy:
		return chainIter(t, env.parent)
	case RelParentOf:
		return sliceIter(t.Children)
	case RelChildOf:
		return singleIter(env.parent(t))
	case RelHasIthChild:
		return singleIter(ithChild(t, r.Index))
	case RelIthChildOf:
		if p := env.parent(t); p != nil && ithChild(p, r.Index) == t {
			return singleIter(p)
		}
		return emptyIter()
	case RelOnlyChild:
		if t.NumChildren() == 1 {
			return singleIter(t.Children[0])
		}
		return emptyIter()
	case RelOnlyChildOf:
		if p := env.parent(t); p.NumChildren() == 1 {
			return singleIter(p)
		}
		return emptyIter()
	case RelLeftmostDescendant:
		return chainIter(t, (*tree.Node).FirstChild)
	case RelRightmostDescendant:
		return chainIter(t, (*tree.Node).LastChild)
	case RelLeftmostDescendantOf:
		return chainIter(t, func(n *tree.Node) *tree.Node {
			if p := env.parent(n); p.FirstChild() == n {
				return p
			}
			return nil
		})
	case RelRightmostDescendantOf:
		return chainIter(t, func(n *tree.Node) *tree.Node {
			if p := env.parent(n); p.LastChild() == n {
				return p
			}
			return nil
		})
	case RelUnaryPathDescendant:
		return chainIter(t, func(n *tree.Node) *tree.Node {
			if n.NumChildren() == 1 {
				return n.Children[0]
			}
			return nil
		})
	case RelUnaryPathAncestor:
		return chainIter(t, func(n *tree.Node) *tree.Node {
			if p := env.parent(n); p.NumChildren() == 1 {
				return p
			}
			return nil
		})
	case RelPrecedes:
		return precedesIter(t, env, true)
	case RelFollows:
		return precedesIter(t, env, false)
	case RelImmediatelyPrecedes:
		return adjacentIter(t, env, true)
	case RelImmediatelyFollows:
		return adjacentIter(t, env, false)
	case RelSisterOf, RelLeftSisterOf, RelRightSisterOf, RelImmediateLeftSisterOf, RelImmediateRightSisterOf:
		return r.sisterIter(t, env)
	case RelHeadedBy:
		return chainIter(t, env.head)
	case RelHeads:
		return chainIter(t, func(n *tree.Node) *tree.Node {
			if p := env.parent(n); p != nil && env.head(p) == n {
				return p
			}
			return nil
		})
	case RelImmediatelyHeadedBy:
		return singleIter(env.head(t))
	case RelImmediatelyHeads:
		if p := env.parent(t); p != nil && env.head(p) == t {
			return singleIter(p)
		}
		return emptyIter()
	case RelUnbrokenDominates:
		return dominatesIter(t, r.Arg, env)
	case RelUnbrokenDominatedBy:
		return unbrokenAncestorIter(t, r.Arg, env)
	case RelUnbrokenPrecedes:
		return unbrokenPrecedesIter(t, r.Arg, env, true)
	case RelUnbrokenFollows:
		return unbrokenPrecedesIter(t, r.Arg, env, false)
	}
	return emptyIter()
}

// dominatesIter is a pre-order walk below t. With a category argument, only
// nodes that match it are expanded.
func dominatesIter(t *tree.Node, arg *CategoryArg, env *Env) Iterator {
	var stack nodeStack
	stack.pushChildrenReversed(t)
	return func() *tree.Node {
		n := stack.pop()
		if n != nil && (arg == nil || arg.matches(n, env)) {
			stack.pushChildrenReversed(n)
		}
		return n
	}
}

func unbrokenAncestorIter(t *tree.Node, arg *CategoryArg, env *Env) Iterator {
	cur := env.parent(t)
	return func() *tree.Node {
		n := cur
		if n == nil {
			return nil
		}
		cur = nil
		if arg.matches(n, env) {
			cur = env.parent(n)
		}
		return n
	}
}

// precedesIter seeds a stack, walking up from t, with the siblings on the
// far side of each ancestor, then walks each popped node's subtree.
// Siblings of higher ancestors are pushed later and so come out first.
func precedesIter(t *tree.Node, env *Env, forward bool) Iterator {
	var stack nodeStack
	for cur := t; cur != env.Root(); {
		p := env.parent(cur)
		if p == nil {
			break
		}
		if forward {
			for i := p.NumChildren() - 1; p.Children[i] != cur; i-- {
				stack.push(p.Children[i])
			}
		} else {
			for i := 0; p.Children[i] != cur; i++ {
				stack.push(p.Children[i])
			}
		}
		cur = p
	}
	return func() *tree.Node {
		n := stack.pop()
		if n != nil {
			stack.pushChildrenReversed(n)
		}
		return n
	}
}

// neighbor climbs from t until some ancestor-or-self has a sibling on the
// requested side and returns that sibling.
func neighbor(t *tree.Node, env *Env, forward bool) *tree.Node {
	for cur := t; cur != env.Root(); {
		p := env.parent(cur)
		if p == nil {
			return nil
		}
		i := p.IndexOf(cur)
		if forward && i < p.NumChildren()-1 {
			return p.Children[i+1]
		}
		if !forward && i > 0 {
			return p.Children[i-1]
		}
		cur = p
	}
	return nil
}

// adjacentIter yields the neighbor of t and then its first-child (or
// last-child) chain down to a leaf.
func adjacentIter(t *tree.Node, env *Env, forward bool) Iterator {
	next := neighbor(t, env, forward)
	return func() *tree.Node {
		n := next
		if n == nil {
			return nil
		}
		if forward {
			next = n.FirstChild()
		} else {
			next = n.LastChild()
		}
		return n
	}
}

// unbrokenPrecedesIter follows adjacency, continuing past a node only when
// it matches the category argument. A node reachable along several chains
// is yielded once.
func unbrokenPrecedesIter(t *tree.Node, arg *CategoryArg, env *Env, forward bool) Iterator {
	var stack nodeStack
	seed := func(from *tree.Node) {
		for n := neighbor(from, env, forward); n != nil; {
			stack.push(n)
			if forward {
				n = n.FirstChild()
			} else {
				n = n.LastChild()
			}
		}
	}
	seed(t)
	seen := make(map[*tree.Node]bool)
	return func() *tree.Node {
		for {
			n := stack.pop()
			if n == nil {
				return nil
			}
			if seen[n] {
				continue
			}
			seen[n] = true
			if arg.matches(n, env) {
				seed(n)
			}
			return n
		}
	}
}

func (r Relation) sisterIter(t *tree.Node, env *Env) Iterator {
	p := env.parent(t)
	if p == nil {
		return emptyIter()
	}
	i := p.IndexOf(t)
	kids := p.Children
	switch r.Kind {
	case RelSisterOf:
		j := 0
		return func() *tree.Node {
			if j == i {
				j++
			}
			if j >= len(kids) {
				return nil
			}
			j++
			return kids[j-1]
		}
	case RelLeftSisterOf:
		// right sisters of t, farthest first
		j := len(kids) - 1
		return func() *tree.Node {
			if j <= i {
				return nil
			}
			j--
			return kids[j+1]
		}
	case RelRightSisterOf:
		// left sisters of t, farthest first
		j := 0
		return func() *tree.Node {
			if j >= i {
				return nil
			}
			j++
			return kids[j-1]
		}
	case RelImmediateLeftSisterOf:
		return singleIter(p.Child(i + 1))
	case RelImmediateRightSisterOf:
		return singleIter(p.Child(i - 1))
	}
	return emptyIter()
}
