package tregex

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gnolang/tregex/tree"
)

// MatchOption configures a Matcher.
type MatchOption func(*session)

// WithContext stops the search once ctx is done; Err then returns ctx.Err().
func WithContext(ctx context.Context) MatchOption {
	return func(s *session) { s.ctx = ctx }
}

// WithStepLimit stops the search after n candidate nodes have been examined.
// Zero means no limit.
func WithStepLimit(n int) MatchOption {
	return func(s *session) { s.limit = n }
}

func WithLogger(logger *zap.Logger) MatchOption {
	return func(s *session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Matcher runs a Pattern over one tree. It is not safe for concurrent use;
// create one Matcher per goroutine.
type Matcher struct {
	pattern *Pattern
	root    *tree.Node
	anchor  *tree.Node
	s       *session
	m       nodeMatcher

	preorder []*tree.Node // find state, nil until the first Find
	findPos  int
	matched  bool
}

// Matcher returns a matcher for the pattern over the tree rooted at root,
// anchored at anchor for Matches. anchor must be root or a node below it.
func (p *Pattern) Matcher(root, anchor *tree.Node, opts ...MatchOption) *Matcher {
	s := &session{
		env:    NewEnv(root, p.cfg),
		names:  NewNamesToNodes(),
		vars:   NewVariableStrings(),
		logger: p.cfg.logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	m := &Matcher{
		pattern: p,
		root:    root,
		anchor:  anchor,
		s:       s,
		m:       newNodeMatcher(p.root, s),
	}
	m.m.resetAt(anchor)
	return m
}

// Matches reports whether the pattern matches at the anchor. After a
// success, calling it again looks for the next way to match there.
func (m *Matcher) Matches() bool {
	m.matched = m.m.matches()
	return m.matched
}

// MatchesAt re-anchors the matcher at n, discarding all bindings, and
// reports whether the pattern matches there. The step budget is shared
// with earlier calls until Reset.
func (m *Matcher) MatchesAt(n *tree.Node) bool {
	m.preorder = nil
	m.restart(n)
	return m.Matches()
}

// Find looks for the next match anywhere in the tree. Anchors are tried in
// pre-order, and every match at one anchor is produced before moving on.
func (m *Matcher) Find() bool {
	if m.preorder == nil {
		m.preorder = m.root.Preorder()
		m.findPos = 0
		if len(m.preorder) > 0 {
			m.restart(m.preorder[0])
		}
	}
	for m.findPos < len(m.preorder) {
		if m.s.stopped() {
			m.matched = false
			return false
		}
		if m.Matches() {
			return true
		}
		m.findPos++
		if m.findPos < len(m.preorder) {
			m.restart(m.preorder[m.findPos])
		}
	}
	return false
}

// FindNextMatchingNode is Find, except that it skips matches whose matched
// node is the one returned by the previous match.
func (m *Matcher) FindNextMatchingNode() bool {
	var last *tree.Node
	if m.matched {
		last = m.Match()
	}
	for m.Find() {
		if m.Match() != last {
			return true
		}
	}
	return false
}

// Match returns the node matched by the pattern root after a successful
// Matches or Find, or nil. It panics if the pattern root is a coordination
// that is not made of top-level alternatives, since no single node is
// matched then.
func (m *Matcher) Match() *tree.Node {
	if c, ok := m.pattern.root.(*Coordination); ok && !isTopLevel(c) {
		panic("tregex: Match called on a pattern rooted at a coordination")
	}
	if !m.matched {
		return nil
	}
	return m.m.node()
}

// Node returns the node bound to name by the current match. It panics if
// the pattern never declares name.
func (m *Matcher) Node(name string) (*tree.Node, bool) {
	if !m.pattern.declares(name) {
		panic(fmt.Sprintf("tregex: pattern %q has no node named %q", m.pattern.src, name))
	}
	n := m.s.names.Get(name)
	return n, n != nil
}

// NodeNames returns the names bound by the current match, sorted.
func (m *Matcher) NodeNames() []string {
	return m.s.names.Names()
}

// Variable returns the value of a variable group in the current match.
func (m *Matcher) Variable(name string) (string, bool) {
	return m.s.vars.Get(name)
}

// Reset returns the matcher to its initial state at the original anchor,
// including the step and context budget.
func (m *Matcher) Reset() {
	m.preorder = nil
	m.s.resetBudget()
	m.restart(m.anchor)
}

// Err reports why the search stopped early, if it did.
func (m *Matcher) Err() error {
	return m.s.err
}

func (m *Matcher) restart(anchor *tree.Node) {
	m.m.release()
	m.s.clearBindings()
	m.matched = false
	m.m.resetAt(anchor)
}

func (m *Matcher) captures() map[string]*tree.Node {
	names := m.s.names.Names()
	if len(names) == 0 {
		return nil
	}
	out := make(map[string]*tree.Node, len(names))
	for _, name := range names {
		out[name] = m.s.names.Get(name)
	}
	return out
}

// Result is one match found by Search.
type Result struct {
	Node     *tree.Node
	Captures map[string]*tree.Node
}

// Search collects the distinct matched nodes of the pattern in root, in
// the order FindNextMatchingNode produces them. The error is non-nil when
// ctx or a step limit cut the search short; the results found so far are
// returned with it.
func (p *Pattern) Search(ctx context.Context, root *tree.Node, opts ...MatchOption) ([]Result, error) {
	opts = append([]MatchOption{WithContext(ctx)}, opts...)
	m := p.Matcher(root, root, opts...)
	var results []Result
	for m.FindNextMatchingNode() {
		results = append(results, Result{Node: m.Match(), Captures: m.captures()})
	}
	return results, m.Err()
}
