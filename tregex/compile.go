package tregex

import (
	"fmt"
	"slices"
	"sort"

	"go.uber.org/zap"

	"github.com/gnolang/tregex/tregex/query"
)

// Pattern is a compiled tree pattern. It is immutable and may be shared by
// any number of goroutines, each using its own Matcher.
type Pattern struct {
	root  Node
	src   string
	cfg   Config
	names []string
}

// Compile parses and compiles pattern source. Syntax errors are returned as
// *query.Error and all other construction errors as *CompileError.
func Compile(src string, cfg Config) (*Pattern, error) {
	logger := cfg.logger()
	expanded := expandMacros(src, cfg.Macros)
	if expanded != src {
		logger.Debug("expanded macros", zap.String("source", src), zap.String("expanded", expanded))
	}
	syntax, err := query.Parse(expanded)
	if err != nil {
		return nil, err
	}
	c := &compiler{cfg: cfg, pos: make(map[Node]int)}
	root, err := c.lower(syntax)
	if err != nil {
		return nil, err
	}
	p, err := c.finish(root, src)
	if err != nil {
		return nil, err
	}
	logger.Debug("compiled pattern", zap.String("source", src), zap.Stringer("pattern", p))
	return p, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(src string, cfg Config) *Pattern {
	p, err := Compile(src, cfg)
	if err != nil {
		panic(fmt.Sprintf("tregex: Compile(%q): %v", src, err))
	}
	return p
}

// New validates a hand-built pattern tree and wraps it as a Pattern.
func New(root Node, cfg Config) (*Pattern, error) {
	c := &compiler{cfg: cfg, pos: make(map[Node]int)}
	return c.finish(root, root.String())
}

func (p *Pattern) Root() Node { return p.root }

func (p *Pattern) Source() string { return p.src }

func (p *Pattern) Config() Config { return p.cfg }

// Names returns the capture names the pattern declares, sorted.
func (p *Pattern) Names() []string { return slices.Clone(p.names) }

func (p *Pattern) String() string { return p.root.String() }

func (p *Pattern) declares(name string) bool {
	_, ok := slices.BinarySearch(p.names, name)
	return ok
}

// isTopLevel reports whether c only combines descriptions anchored at the
// match root, so that all its alternatives bind the same node.
func isTopLevel(c *Coordination) bool {
	for _, child := range c.Children {
		switch child := child.(type) {
		case *Description:
			if child.Relation.Kind != RelRoot {
				return false
			}
		case *Coordination:
			if !isTopLevel(child) {
				return false
			}
		case Root:
		default:
			return false
		}
	}
	return true
}

type compiler struct {
	cfg      Config
	pos      map[Node]int
	declared map[string]bool
}

func (c *compiler) lower(n query.Node) (Node, error) {
	switch n := n.(type) {
	case *query.RelationNode:
		rel := Relation{Kind: RelRoot}
		if n.Symbol != "" {
			var err error
			rel, err = parseRelation(n.Symbol)
			if err != nil {
				return nil, compileErrorf(err, n.Position(), "%q", n.Symbol)
			}
		}
		if n.Arg != nil {
			arg, err := c.categoryArg(n.Arg)
			if err != nil {
				return nil, err
			}
			rel.Arg = arg
		}
		d, err := c.description(n.Child, rel)
		if err != nil {
			return nil, err
		}
		d.Negated = n.Negated
		d.Optional = n.Optional
		c.pos[d] = n.Position()
		return d, nil
	case *query.CoordNode:
		coord := &Coordination{Conj: n.Conj, Negated: n.Negated, Optional: n.Optional}
		for _, child := range n.Children {
			lowered, err := c.lower(child)
			if err != nil {
				return nil, err
			}
			coord.Children = append(coord.Children, lowered)
		}
		c.pos[coord] = n.Position()
		return coord, nil
	}
	return nil, compileErrorf(ErrBadRelationArg, n.Position(), "unexpected %s in relation position", n)
}

func (c *compiler) description(n *query.DescNode, rel Relation) (*Description, error) {
	d := &Description{Relation: rel, BasicCat: n.BasicCat, Name: n.Name}
	switch n.Kind {
	case query.DescLink:
		d.IsLink = true
	case query.DescBackref:
	default:
		label, err := labelMatcher(n)
		if err != nil {
			return nil, err
		}
		d.Label = label
	}
	for _, g := range n.VarGroups {
		d.VarGroups = append(d.VarGroups, VarGroup{Group: g.Group, Var: g.Var})
	}
	if n.Relations != nil {
		child, err := c.lower(n.Relations)
		if err != nil {
			return nil, err
		}
		d.Child = child
	}
	return d, nil
}

func (c *compiler) categoryArg(a *query.CategoryArg) (*CategoryArg, error) {
	label, err := labelMatcher(a.Desc)
	if err != nil {
		return nil, err
	}
	if len(a.Desc.VarGroups) > 0 {
		return nil, compileErrorf(ErrBadRelationArg, a.Desc.Position(), "category argument cannot bind variables")
	}
	return &CategoryArg{Negated: a.Negated, BasicCat: a.Desc.BasicCat, Label: label}, nil
}

func labelMatcher(n *query.DescNode) (LabelMatcher, error) {
	switch n.Kind {
	case query.DescWildcard:
		return Wildcard{}, nil
	case query.DescLiteral:
		return Literal{Values: n.Values}, nil
	case query.DescRegex:
		re, err := NewRegex(n.Regex)
		if err != nil {
			return nil, compileErrorf(ErrBadRegex, n.Position(), "/%s/: %v", n.Regex, err)
		}
		return re, nil
	}
	return nil, compileErrorf(ErrBadRelationArg, n.Position(), "%s is not a label test", n)
}

// finish validates the lowered tree against the configuration and builds
// the Pattern.
func (c *compiler) finish(root Node, src string) (*Pattern, error) {
	c.declared = make(map[string]bool)
	c.collectNames(root)
	if err := c.validate(root); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(c.declared))
	for name := range c.declared {
		names = append(names, name)
	}
	sort.Strings(names)
	return &Pattern{root: root, src: src, cfg: c.cfg, names: names}, nil
}

func (c *compiler) collectNames(n Node) {
	switch n := n.(type) {
	case *Description:
		if n.Label != nil && n.Name != "" {
			c.declared[n.Name] = true
		}
		if n.Child != nil {
			c.collectNames(n.Child)
		}
	case *Coordination:
		for _, child := range n.Children {
			c.collectNames(child)
		}
	}
}

func (c *compiler) validate(n Node) error {
	switch n := n.(type) {
	case Root:
		return nil
	case *Coordination:
		if len(n.Children) < 2 {
			return compileErrorf(ErrBadCoordination, c.pos[n], "%s", n)
		}
		for _, child := range n.Children {
			if err := c.validate(child); err != nil {
				return err
			}
		}
		return nil
	case *Description:
		if err := c.validateDescription(n); err != nil {
			return err
		}
		if n.Child != nil {
			return c.validate(n.Child)
		}
		return nil
	}
	return fmt.Errorf("tregex: unknown pattern node %T", n)
}

func (c *compiler) validateDescription(d *Description) error {
	pos := c.pos[d]
	rel := d.Relation
	if rel.needsHeadFinder() && c.cfg.HeadFinder == nil {
		return compileErrorf(ErrNoHeadFinder, pos, "%s", rel)
	}
	if rel.isCategory() != (rel.Arg != nil) {
		return compileErrorf(ErrBadRelationArg, pos, "%s", rel)
	}
	if (rel.Kind == RelHasIthChild || rel.Kind == RelIthChildOf) && rel.Index == 0 {
		return compileErrorf(ErrBadRelationArg, pos, "child positions start at 1")
	}
	if c.cfg.BasicCategory == nil && (d.BasicCat || (rel.Arg != nil && rel.Arg.BasicCat)) {
		return compileErrorf(ErrNoBasicCategory, pos, "%s", d)
	}
	if d.Label == nil {
		if d.Name == "" {
			return compileErrorf(ErrUndefinedName, pos, "reference without a name")
		}
		if !c.declared[d.Name] {
			return compileErrorf(ErrUndefinedName, pos, "%q", d.Name)
		}
		if len(d.VarGroups) > 0 {
			return compileErrorf(ErrVariableGroup, pos, "a reference cannot bind variables")
		}
		return nil
	}
	return validateVarGroups(d, pos)
}

func validateVarGroups(d *Description, pos int) error {
	if len(d.VarGroups) == 0 {
		return nil
	}
	re, ok := d.Label.(*Regex)
	if !ok {
		return compileErrorf(ErrVariableGroup, pos, "variable groups need a regex")
	}
	groups := make(map[string]int, len(d.VarGroups))
	for _, g := range d.VarGroups {
		if g.Group < 0 || g.Group > re.NumSubexp() {
			return compileErrorf(ErrVariableGroup, pos, "%s has no group %d", re, g.Group)
		}
		if prev, seen := groups[g.Var]; seen && prev != g.Group {
			return compileErrorf(ErrVariableGroup, pos, "variable %q bound to groups %d and %d", g.Var, prev, g.Group)
		}
		groups[g.Var] = g.Group
	}
	return nil
}
