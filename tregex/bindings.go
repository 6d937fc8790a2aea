package tregex

import (
	"fmt"
	"sort"

	"github.com/gnolang/tregex/tree"
)

// VariableStrings holds the values of variable groups during one match.
// A variable may be set by several descriptions at once; it stays bound
// until every one of them has unset it.
type VariableStrings struct {
	vars map[string]*variable
}

type variable struct {
	value string
	refs  int
}

func NewVariableStrings() *VariableStrings {
	return &VariableStrings{vars: make(map[string]*variable)}
}

// Set binds name to value, or adds a reference if it is already bound to
// value. Binding it to a different value is a bug in the caller, which
// must check Get first, so Set panics.
func (vs *VariableStrings) Set(name, value string) {
	v, ok := vs.vars[name]
	if !ok {
		vs.vars[name] = &variable{value: value, refs: 1}
		return
	}
	if v.value != value {
		panic(fmt.Sprintf("tregex: variable %q is %q, cannot set it to %q", name, v.value, value))
	}
	v.refs++
}

func (vs *VariableStrings) Get(name string) (string, bool) {
	v, ok := vs.vars[name]
	if !ok {
		return "", false
	}
	return v.value, true
}

// Unset drops one reference to name and clears it when none remain.
func (vs *VariableStrings) Unset(name string) {
	v, ok := vs.vars[name]
	if !ok {
		return
	}
	v.refs--
	if v.refs <= 0 {
		delete(vs.vars, name)
	}
}

func (vs *VariableStrings) Reset() {
	clear(vs.vars)
}

// NamesToNodes maps capture names to the nodes they are bound to.
type NamesToNodes struct {
	nodes map[string]*tree.Node
}

func NewNamesToNodes() *NamesToNodes {
	return &NamesToNodes{nodes: make(map[string]*tree.Node)}
}

// Get returns the node bound to name, or nil.
func (nn *NamesToNodes) Get(name string) *tree.Node {
	return nn.nodes[name]
}

func (nn *NamesToNodes) Bind(name string, n *tree.Node) {
	nn.nodes[name] = n
}

func (nn *NamesToNodes) Unbind(name string) {
	delete(nn.nodes, name)
}

func (nn *NamesToNodes) Reset() {
	clear(nn.nodes)
}

// Names returns the bound names in sorted order.
func (nn *NamesToNodes) Names() []string {
	names := make([]string, 0, len(nn.nodes))
	for name := range nn.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// binding is what one description has committed for its current candidate:
// possibly a capture name it introduced, and the variables it set. Every
// path that abandons the candidate calls release, which is idempotent.
type binding struct {
	names *NamesToNodes
	vars  *VariableStrings
	name  string
	set   []string
}

func (b *binding) bindName(name string, n *tree.Node) {
	b.names.Bind(name, n)
	b.name = name
}

func (b *binding) setVar(name, value string) {
	b.vars.Set(name, value)
	b.set = append(b.set, name)
}

func (b *binding) release() {
	if b.name != "" {
		b.names.Unbind(b.name)
		b.name = ""
	}
	for _, v := range b.set {
		b.vars.Unset(v)
	}
	b.set = b.set[:0]
}
