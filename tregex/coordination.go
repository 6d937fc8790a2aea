package tregex

import (
	"github.com/gnolang/tregex/tree"
)

// coordMatcher combines child matchers anchored at the same node.
//
// considerAll is Conj XOR Negated: a conjunction, or a negated disjunction,
// needs every child to hold under the coordination's polarity. Otherwise one
// child suffices.
type coordMatcher struct {
	c           *Coordination
	s           *session
	children    []nodeMatcher
	considerAll bool

	anchor  *tree.Node
	cur     int
	vacuous bool // some success was reported, so no empty success is owed
}

func (m *coordMatcher) resetAt(t *tree.Node) {
	m.anchor = t
	for _, child := range m.children {
		child.resetAt(t)
	}
	m.cur = 0
	m.vacuous = false
}

func (m *coordMatcher) release() {
	for _, child := range m.children {
		child.release()
	}
}

// node is the shared anchor. Only a coordination of top-level alternatives
// has a meaningful one; Matcher.Match enforces that.
func (m *coordMatcher) node() *tree.Node { return m.anchor }

func (m *coordMatcher) holds(i int) bool {
	return m.children[i].matches() != m.c.Negated
}

func (m *coordMatcher) matches() bool {
	if m.considerAll {
		return m.matchAll()
	}
	return m.matchAny()
}

func (m *coordMatcher) matchAll() bool {
	if m.cur < 0 {
		// the last call failed, or a negated coordination already succeeded
		return m.optional()
	}
	if m.cur == len(m.children) {
		// backtrack into the last child for its next match
		m.cur--
	}
	for {
		if m.holds(m.cur) {
			m.cur++
			if m.cur == len(m.children) {
				if m.c.Negated {
					m.cur = -1
				}
				m.vacuous = true
				return true
			}
			continue
		}
		m.children[m.cur].resetAt(m.anchor)
		if m.c.Negated {
			// children that held did so by not matching; they have no
			// further alternatives to backtrack into
			m.cur = -1
			m.release()
			return m.optional()
		}
		m.cur--
		if m.cur < 0 {
			return m.optional()
		}
	}
}

func (m *coordMatcher) matchAny() bool {
	for ; m.cur < len(m.children); m.cur++ {
		if m.holds(m.cur) {
			if m.c.Negated {
				m.cur = len(m.children)
				m.release()
			}
			m.vacuous = true
			return true
		}
		if m.c.Negated {
			// the child matched, so its bindings must not survive
			m.children[m.cur].release()
		}
	}
	for i := range m.children {
		m.children[i].resetAt(m.anchor)
	}
	return m.optional()
}

// optional grants an optional coordination that never matched its single
// empty success. A stopped search grants nothing.
func (m *coordMatcher) optional() bool {
	if !m.c.Optional || m.vacuous || m.s.stopped() {
		return false
	}
	m.vacuous = true
	return true
}
