package tregex

import (
	"fmt"
	"slices"
	"strings"

	"github.com/coregx/coregex"
)

// Node is a compiled pattern node: Root, *Description or *Coordination.
type Node interface {
	isNode()
	String() string
}

// Root matches only the node it is invoked on.
type Root struct{}

// Description pairs a relation with a test on the candidate node.
// A nil Label makes it a reference node: a back-reference to Name, or, with
// IsLink, a test that the candidate's label equals the label bound to Name.
type Description struct {
	Relation  Relation
	Negated   bool
	Optional  bool
	Label     LabelMatcher
	BasicCat  bool
	Name      string
	IsLink    bool
	VarGroups []VarGroup
	Child     Node // nil, *Description or *Coordination
}

// Coordination is the conjunction or disjunction of its children.
type Coordination struct {
	Conj     bool
	Negated  bool
	Optional bool
	Children []Node
}

// VarGroup binds regex capture group Group to the pattern variable Var.
type VarGroup struct {
	Group int
	Var   string
}

func (Root) isNode()          {}
func (*Description) isNode()  {}
func (*Coordination) isNode() {}

func (Root) String() string { return "Root" }

func (d *Description) String() string {
	var sb strings.Builder
	if d.Negated {
		sb.WriteByte('!')
	}
	if d.Optional {
		sb.WriteByte('?')
	}
	if d.Relation.Kind != RelRoot {
		sb.WriteString(d.Relation.String())
		sb.WriteByte(' ')
	}
	nested := d.Relation.Kind != RelRoot && d.Child != nil
	if nested {
		sb.WriteByte('(')
	}
	if d.BasicCat {
		sb.WriteByte('@')
	}
	switch {
	case d.Label != nil:
		sb.WriteString(d.Label.String())
		for _, g := range d.VarGroups {
			fmt.Fprintf(&sb, "#%d%%%s", g.Group, g.Var)
		}
		if d.Name != "" {
			sb.WriteString("=" + d.Name)
		}
	case d.IsLink:
		sb.WriteString("~" + d.Name)
	default:
		sb.WriteString("=" + d.Name)
	}
	if d.Child != nil {
		sb.WriteByte(' ')
		sb.WriteString(d.Child.String())
	}
	if nested {
		sb.WriteByte(')')
	}
	return sb.String()
}

func (c *Coordination) String() string {
	sep := " | "
	if c.Conj {
		sep = " & "
	}
	parts := make([]string, len(c.Children))
	for i, child := range c.Children {
		parts[i] = child.String()
	}
	var sb strings.Builder
	if c.Negated {
		sb.WriteByte('!')
	}
	if c.Optional {
		sb.WriteByte('?')
	}
	sb.WriteString("[" + strings.Join(parts, sep) + "]")
	return sb.String()
}

// LabelMatcher tests a node label. Match also returns the regex submatches,
// if any, for variable groups.
type LabelMatcher interface {
	Match(label string) (groups []string, ok bool)
	String() string
}

var (
	_ LabelMatcher = Wildcard{}
	_ LabelMatcher = Literal{}
	_ LabelMatcher = (*Regex)(nil)
)

// Wildcard matches every node, including ones without a label.
type Wildcard struct{}

func (Wildcard) Match(string) ([]string, bool) { return nil, true }
func (Wildcard) String() string                 { return "__" }

// Literal matches labels equal to one of Values.
type Literal struct {
	Values []string
}

func (l Literal) Match(label string) ([]string, bool) {
	return nil, label != "" && slices.Contains(l.Values, label)
}

func (l Literal) String() string { return strings.Join(l.Values, "|") }

// Regex matches labels containing a match of the expression. Matching is
// leftmost-longest, so /^(a|ab)/ captures "ab" from the label "abc".
type Regex struct {
	re *coregex.Regexp
}

// NewRegex compiles expr.
func NewRegex(expr string) (*Regex, error) {
	re, err := coregex.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &Regex{re: re}, nil
}

func (r *Regex) Match(label string) ([]string, bool) {
	if label == "" {
		return nil, false
	}
	m := r.re.FindStringSubmatch(label)
	return m, m != nil
}

// NumSubexp returns the number of parenthesized groups, not counting the
// whole match.
func (r *Regex) NumSubexp() int { return len(r.re.SubexpNames()) - 1 }

func (r *Regex) String() string {
	return "/" + strings.ReplaceAll(r.re.String(), "/", `\/`) + "/"
}
