package query

import (
	"fmt"
	"strings"
)

// TokenType defines different types of tokens that can be produced by the lexer.
type TokenType int

const (
	TokenEOF      TokenType = iota
	TokenWord               // label text, names, numbers, "__"
	TokenRegex              // /.../ (value holds the body)
	TokenRelation           // relation symbol such as "<<" or "<-2"
	TokenLParen             // '('
	TokenRParen             // ')'
	TokenLBracket           // '['
	TokenRBracket           // ']'
	TokenBang               // '!'
	TokenQuestion           // '?'
	TokenAt                 // '@'
	TokenEquals             // '=' introducing a name
	TokenTilde              // '~' introducing a link
	TokenPipe               // '|'
	TokenAmp                // '&'
	TokenHash               // '#' introducing a variable group
	TokenPercent            // '%'
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenWord:
		return "word"
	case TokenRegex:
		return "regex"
	case TokenRelation:
		return "relation"
	case TokenLParen:
		return "'('"
	case TokenRParen:
		return "')'"
	case TokenLBracket:
		return "'['"
	case TokenRBracket:
		return "']'"
	case TokenBang:
		return "'!'"
	case TokenQuestion:
		return "'?'"
	case TokenAt:
		return "'@'"
	case TokenEquals:
		return "'='"
	case TokenTilde:
		return "'~'"
	case TokenPipe:
		return "'|'"
	case TokenAmp:
		return "'&'"
	case TokenHash:
		return "'#'"
	case TokenPercent:
		return "'%'"
	default:
		return "unknown"
	}
}

// Token represents a single lexical token with type, value, and position.
type Token struct {
	Type        TokenType
	Value       string
	Position    int  // byte offset in the input
	SpaceBefore bool // whitespace separates this token from the previous one
}

// Error is a syntax error in pattern source.
type Error struct {
	Pos int
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("pattern syntax error at position %d: %s", e.Pos, e.Msg)
}

func errorf(pos int, format string, args ...any) *Error {
	return &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// NodeType defines the syntax tree node kinds.
type NodeType int

const (
	NodeDesc NodeType = iota
	NodeRelation
	NodeCoord
)

// Node is implemented by every syntax tree node.
type Node interface {
	Type() NodeType
	String() string
	Position() int
}

var (
	_ Node = (*DescNode)(nil)
	_ Node = (*RelationNode)(nil)
	_ Node = (*CoordNode)(nil)
)

// DescKind says how a node description matches labels.
type DescKind int

const (
	DescWildcard DescKind = iota // __
	DescLiteral                  // NP or NP|VP
	DescRegex                    // /regex/
	DescBackref                  // =name
	DescLink                     // ~name
)

// VarGroup promotes a regex capture group to a pattern variable.
type VarGroup struct {
	Group int
	Var   string
}

// DescNode describes a tree node and the relations it must satisfy.
type DescNode struct {
	Kind      DescKind
	Values    []string // DescLiteral alternatives
	Regex     string   // DescRegex body
	BasicCat  bool     // '@' prefix
	Name      string   // capture name, or the referenced name for back-references and links
	VarGroups []VarGroup
	Relations Node // nil, *RelationNode or *CoordNode
	pos       int
}

func (d *DescNode) Type() NodeType { return NodeDesc }
func (d *DescNode) Position() int  { return d.pos }

func (d *DescNode) String() string {
	var sb strings.Builder
	if d.BasicCat {
		sb.WriteByte('@')
	}
	switch d.Kind {
	case DescWildcard:
		sb.WriteString("__")
	case DescLiteral:
		sb.WriteString(strings.Join(d.Values, "|"))
	case DescRegex:
		sb.WriteString("/" + d.Regex + "/")
		for _, g := range d.VarGroups {
			fmt.Fprintf(&sb, "#%d%%%s", g.Group, g.Var)
		}
	case DescBackref:
		sb.WriteString("=" + d.Name)
	case DescLink:
		sb.WriteString("~" + d.Name)
	}
	if d.Name != "" && d.Kind != DescBackref && d.Kind != DescLink {
		sb.WriteString("=" + d.Name)
	}
	if d.Relations != nil {
		sb.WriteByte(' ')
		sb.WriteString(d.Relations.String())
	}
	return sb.String()
}

// CategoryArg is the argument of the unbroken-category relations, e.g. the
// "!@NP" in "<+(!@NP)".
type CategoryArg struct {
	Negated bool
	Desc    *DescNode
}

func (a *CategoryArg) String() string {
	if a.Negated {
		return "!" + a.Desc.String()
	}
	return a.Desc.String()
}

// RelationNode pairs a relation symbol with the description it leads to.
// An empty Symbol marks a top-level description anchored at the match root.
type RelationNode struct {
	Symbol   string
	Arg      *CategoryArg
	Negated  bool
	Optional bool
	Child    *DescNode
	pos      int
}

func (r *RelationNode) Type() NodeType { return NodeRelation }
func (r *RelationNode) Position() int  { return r.pos }

func (r *RelationNode) String() string {
	var sb strings.Builder
	if r.Negated {
		sb.WriteByte('!')
	}
	if r.Optional {
		sb.WriteByte('?')
	}
	if r.Symbol != "" {
		sb.WriteString(r.Symbol)
		if r.Arg != nil {
			sb.WriteString("(" + r.Arg.String() + ")")
		}
		sb.WriteByte(' ')
	}
	child := r.Child.String()
	if r.Symbol != "" && r.Child.Relations != nil {
		child = "(" + child + ")"
	}
	sb.WriteString(child)
	return sb.String()
}

// CoordNode combines relations (or top-level patterns) with AND or OR.
type CoordNode struct {
	Conj     bool
	Negated  bool
	Optional bool
	Children []Node
	pos      int
}

func (c *CoordNode) Type() NodeType { return NodeCoord }
func (c *CoordNode) Position() int  { return c.pos }

func (c *CoordNode) String() string {
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
