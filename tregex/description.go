package tregex

import (
	"github.com/gnolang/tregex/tree"
)

// nodeMatcher is the mutable counterpart of a pattern node.
type nodeMatcher interface {
	// matches reports whether the node holds at its anchor. Calling it again
	// after success backtracks to the next way it can hold.
	matches() bool
	// resetAt clears all state and re-anchors the matcher at t.
	resetAt(t *tree.Node)
	// release drops every binding held by the matcher and its children.
	release()
	// node returns the node bound by the last success, if the matcher binds one.
	node() *tree.Node
}

func newNodeMatcher(n Node, s *session) nodeMatcher {
	switch n := n.(type) {
	case Root:
		return &rootMatcher{}
	case *Description:
		m := &descMatcher{d: n, s: s, bind: binding{names: s.names, vars: s.vars}}
		if n.Child != nil {
			m.child = newNodeMatcher(n.Child, s)
		}
		return m
	case *Coordination:
		m := &coordMatcher{c: n, s: s, considerAll: n.Conj != n.Negated}
		m.children = make([]nodeMatcher, len(n.Children))
		for i, child := range n.Children {
			m.children[i] = newNodeMatcher(child, s)
		}
		return m
	}
	panic("tregex: unknown pattern node type")
}

type rootMatcher struct {
	anchor *tree.Node
	done   bool
}

func (m *rootMatcher) matches() bool {
	if m.done || m.anchor == nil {
		return false
	}
	m.done = true
	return true
}

func (m *rootMatcher) resetAt(t *tree.Node) {
	m.anchor = t
	m.done = false
}

func (m *rootMatcher) release() {}

func (m *rootMatcher) node() *tree.Node { return m.anchor }

// descMatcher walks the candidates of one Description.
//
// States: fresh (it == nil), searching, matched (cur != nil after a true
// return) and exhausted (finished).
type descMatcher struct {
	d     *Description
	s     *session
	child nodeMatcher

	anchor   *tree.Node
	it       Iterator
	cur      *tree.Node
	reported bool // childless description already returned cur
	finished bool
	vacuous  bool // succeeded without a candidate
	bind     binding
}

func (m *descMatcher) resetAt(t *tree.Node) {
	m.release()
	m.anchor = t
	m.it = nil
	m.finished = false
	m.vacuous = false
}

func (m *descMatcher) release() {
	m.bind.release()
	m.cur = nil
	m.reported = false
	if m.child != nil {
		m.child.release()
	}
}

// node returns the bound candidate. A pattern root that held without one
// reports its anchor.
func (m *descMatcher) node() *tree.Node {
	if m.cur == nil && m.vacuous && m.d.Relation.Kind == RelRoot {
		return m.anchor
	}
	return m.cur
}

func (m *descMatcher) matches() bool {
	m.vacuous = false
	if m.finished {
		m.release()
		return false
	}
	if m.d.Negated {
		// a negated description is decided once per reset
		m.finished = true
		found := m.search()
		m.release()
		if m.s.stopped() {
			return false
		}
		m.vacuous = !found || m.d.Optional
		return m.vacuous
	}
	if m.search() {
		if m.d.Optional {
			m.finished = true
		}
		return true
	}
	m.finished = true
	m.release()
	m.vacuous = m.d.Optional && !m.s.stopped()
	return m.vacuous
}

// search finds the next (candidate, child match) combination.
func (m *descMatcher) search() bool {
	for {
		if m.cur != nil && m.matchChild() {
			return true
		}
		if !m.advance() {
			return false
		}
	}
}

func (m *descMatcher) matchChild() bool {
	if m.child == nil {
		if m.reported {
			return false
		}
		m.reported = true
		return true
	}
	return m.child.matches()
}

// advance moves to the next acceptable candidate and commits it.
func (m *descMatcher) advance() bool {
	m.release()
	if m.it == nil {
		if m.anchor == nil {
			return false
		}
		m.it = m.d.Relation.Search(m.anchor, m.s.env)
	}
	for c := m.it(); c != nil; c = m.it() {
		if !m.s.tick() {
			return false
		}
		groups, ok := m.accept(c)
		if !ok {
			continue
		}
		m.commit(c, groups)
		if m.child != nil {
			m.child.resetAt(c)
		}
		return true
	}
	return false
}

func (m *descMatcher) label(n *tree.Node) string {
	if m.d.BasicCat {
		return m.s.env.category(n.Label)
	}
	return n.Label
}

func (m *descMatcher) accept(c *tree.Node) ([]string, bool) {
	d := m.d
	if d.Label == nil {
		bound := m.s.names.Get(d.Name)
		if bound == nil {
			return nil, false
		}
		if d.IsLink {
			return nil, m.label(bound) == m.label(c)
		}
		return nil, bound == c
	}

	groups, ok := d.Label.Match(m.label(c))
	if !ok {
		return nil, false
	}
	for _, g := range d.VarGroups {
		if g.Group >= len(groups) {
			return nil, false
		}
		if v, set := m.s.vars.Get(g.Var); set && v != groups[g.Group] {
			return nil, false
		}
	}
	if d.Name != "" {
		// a name already bound elsewhere must be matched by an equal label
		if bound := m.s.names.Get(d.Name); bound != nil && bound != c && m.label(bound) != m.label(c) {
			return nil, false
		}
	}
	return groups, true
}

func (m *descMatcher) commit(c *tree.Node, groups []string) {
	m.cur = c
	m.reported = false
	if m.d.Label == nil {
		return
	}
	if m.d.Name != "" && m.s.names.Get(m.d.Name) == nil {
		m.bind.bindName(m.d.Name, c)
	}
	for _, g := range m.d.VarGroups {
		m.bind.setVar(g.Var, groups[g.Group])
	}
}
