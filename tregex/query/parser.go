package query

import (
	"strconv"
)

// Parser consumes tokens produced by the lexer and builds the syntax tree.
//
// The result of Parse is either a *RelationNode with an empty Symbol (a
// single top-level description) or a *CoordNode whose leaves are such nodes.
type Parser struct {
	tokens  []Token
	current int
}

// NewParser creates a new Parser instance
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse lexes and parses pattern source in one step.
func Parse(src string) (Node, error) {
	tokens, err := NewLexer(src).Tokenize()
	if err != nil {
		return nil, err
	}
	return NewParser(tokens).Parse()
}

// Parse processes all tokens and builds the syntax tree.
func (p *Parser) Parse() (Node, error) {
	if p.peek().Type == TokenEOF {
		return nil, errorf(0, "empty pattern")
	}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Type != TokenEOF {
		return nil, errorf(tok.Position, "unexpected %s %q", tok.Type, tok.Value)
	}
	return node, nil
}

// parseOr: and ( '|' and )*
func (p *Parser) parseOr() (Node, error) {
	return p.parseTopList(TokenPipe, false, p.parseAnd)
}

// parseAnd: top ( '&' top )*
func (p *Parser) parseAnd() (Node, error) {
	return p.parseTopList(TokenAmp, true, p.parseTop)
}

func (p *Parser) parseTopList(sep TokenType, conj bool, next func() (Node, error)) (Node, error) {
	pos := p.peek().Position
	first, err := next()
	if err != nil {
		return nil, err
	}
	nodes := []Node{first}
	for p.peek().Type == sep {
		p.advance()
		n, err := next()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if len(nodes) == 1 {
		return first, nil
	}
	return &CoordNode{Conj: conj, Children: nodes, pos: pos}, nil
}

// parseTop: '!' top | '?' top | '(' or ')' relations? | node relations?
func (p *Parser) parseTop() (Node, error) {
	tok := p.peek()
	switch tok.Type {
	case TokenBang, TokenQuestion:
		p.advance()
		n, err := p.parseTop()
		if err != nil {
			return nil, err
		}
		applyModifier(n, tok.Type)
		return n, nil
	case TokenLParen:
		p.advance()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		if !p.startsRelation() {
			return inner, nil
		}
		top, ok := inner.(*RelationNode)
		if !ok || top.Negated || top.Optional {
			return nil, errorf(p.peek().Position, "relations cannot follow a combined pattern group")
		}
		if err := p.appendRelations(top.Child); err != nil {
			return nil, err
		}
		return top, nil
	}
	desc, err := p.parseDesc()
	if err != nil {
		return nil, err
	}
	if err := p.appendRelations(desc); err != nil {
		return nil, err
	}
	return &RelationNode{Child: desc, pos: tok.Position}, nil
}

func applyModifier(n Node, t TokenType) {
	switch v := n.(type) {
	case *RelationNode:
		if t == TokenBang {
			v.Negated = !v.Negated
		} else {
			v.Optional = true
		}
	case *CoordNode:
		if t == TokenBang {
			v.Negated = !v.Negated
		} else {
			v.Optional = true
		}
	}
}

// appendRelations parses relations following desc, if any, and conjoins
// them with relations desc already has.
func (p *Parser) appendRelations(desc *DescNode) error {
	if !p.startsRelation() {
		return nil
	}
	rels, err := p.parseRelations()
	if err != nil {
		return err
	}
	if desc.Relations == nil {
		desc.Relations = rels
		return nil
	}
	desc.Relations = &CoordNode{Conj: true, Children: []Node{desc.Relations, rels}, pos: rels.Position()}
	return nil
}

// startsRelation looks past '!' and '?' modifiers for a relation or '['.
func (p *Parser) startsRelation() bool {
	for i := p.current; i < len(p.tokens); i++ {
		switch p.tokens[i].Type {
		case TokenBang, TokenQuestion:
			continue
		case TokenRelation, TokenLBracket:
			return true
		default:
			return false
		}
	}
	return false
}

// parseRelations: conj ( '|' conj )*
func (p *Parser) parseRelations() (Node, error) {
	pos := p.peek().Position
	first, err := p.parseRelConj()
	if err != nil {
		return nil, err
	}
	nodes := []Node{first}
	for p.peek().Type == TokenPipe && p.startsRelationAt(p.current+1) {
		p.advance()
		n, err := p.parseRelConj()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if len(nodes) == 1 {
		return first, nil
	}
	return &CoordNode{Children: nodes, pos: pos}, nil
}

// parseRelConj: rel ( '&'? rel )*
func (p *Parser) parseRelConj() (Node, error) {
	pos := p.peek().Position
	first, err := p.parseRel()
	if err != nil {
		return nil, err
	}
	nodes := []Node{first}
	for {
		if p.peek().Type == TokenAmp && p.startsRelationAt(p.current+1) {
			p.advance()
		} else if !p.startsRelation() {
			break
		}
		n, err := p.parseRel()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if len(nodes) == 1 {
		return first, nil
	}
	return &CoordNode{Conj: true, Children: nodes, pos: pos}, nil
}

func (p *Parser) startsRelationAt(i int) bool {
	saved := p.current
	p.current = i
	ok := p.startsRelation()
	p.current = saved
	return ok
}

// parseRel: '!' rel | '?' rel | '[' relations ']' | REL arg? child
func (p *Parser) parseRel() (Node, error) {
	tok := p.peek()
	switch tok.Type {
	case TokenBang, TokenQuestion:
		p.advance()
		n, err := p.parseRel()
		if err != nil {
			return nil, err
		}
		applyModifier(n, tok.Type)
		return n, nil
	case TokenLBracket:
		p.advance()
		inner, err := p.parseRelations()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenRBracket); err != nil {
			return nil, err
		}
		return inner, nil
	case TokenRelation:
		p.advance()
		rel := &RelationNode{Symbol: tok.Value, pos: tok.Position}
		if isCategoryRelation(tok.Value) {
			arg, err := p.parseCategoryArg()
			if err != nil {
				return nil, err
			}
			rel.Arg = arg
		}
		child, err := p.parseChild()
		if err != nil {
			return nil, err
		}
		rel.Child = child
		return rel, nil
	default:
		return nil, errorf(tok.Position, "expected relation but found %s %q", tok.Type, tok.Value)
	}
}

func isCategoryRelation(sym string) bool {
	switch sym {
	case "<+", ">+", ".+", ",+":
		return true
	}
	return false
}

// parseCategoryArg: '(' '!'? desc ')'
func (p *Parser) parseCategoryArg() (*CategoryArg, error) {
	if err := p.expect(TokenLParen); err != nil {
		return nil, err
	}
	arg := &CategoryArg{}
	if p.peek().Type == TokenBang {
		p.advance()
		arg.Negated = true
	}
	desc, err := p.parseDesc()
	if err != nil {
		return nil, err
	}
	if desc.Kind == DescBackref || desc.Kind == DescLink || desc.Name != "" {
		return nil, errorf(desc.pos, "category argument cannot name or reference nodes")
	}
	arg.Desc = desc
	if err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return arg, nil
}

// parseChild: '(' desc relations? ')' | desc
func (p *Parser) parseChild() (*DescNode, error) {
	if p.peek().Type != TokenLParen {
		return p.parseDesc()
	}
	p.advance()
	desc, err := p.parseDesc()
	if err != nil {
		return nil, err
	}
	if err := p.appendRelations(desc); err != nil {
		return nil, err
	}
	if err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return desc, nil
}

// parseDesc parses a node description:
//
//	'@'? ( '__' | WORD ('|' WORD)* | /regex/ ('#' N '%' NAME)* ) ( '=' NAME | '~' NAME )?
//	'@'? '~' NAME
//	'=' NAME
func (p *Parser) parseDesc() (*DescNode, error) {
	tok := p.peek()
	desc := &DescNode{pos: tok.Position}
	if tok.Type == TokenAt {
		p.advance()
		desc.BasicCat = true
		tok = p.peek()
	}

	switch tok.Type {
	case TokenEquals:
		if desc.BasicCat {
			return nil, errorf(tok.Position, "'@' cannot apply to a back-reference")
		}
		p.advance()
		name, err := p.parseName()
		if err != nil {
			return nil, err
		}
		desc.Kind = DescBackref
		desc.Name = name
		return desc, nil
	case TokenTilde:
		p.advance()
		name, err := p.parseName()
		if err != nil {
			return nil, err
		}
		desc.Kind = DescLink
		desc.Name = name
		return desc, nil
	case TokenRegex:
		p.advance()
		desc.Kind = DescRegex
		desc.Regex = tok.Value
		for p.peek().Type == TokenHash {
			g, err := p.parseVarGroup()
			if err != nil {
				return nil, err
			}
			desc.VarGroups = append(desc.VarGroups, g)
		}
	case TokenWord:
		p.advance()
		if tok.Value == "__" {
			desc.Kind = DescWildcard
			break
		}
		desc.Kind = DescLiteral
		desc.Values = []string{tok.Value}
		// NP|VP: alternatives are written without surrounding whitespace
		for p.peek().Type == TokenPipe && !p.peek().SpaceBefore &&
			p.peekAt(1).Type == TokenWord && !p.peekAt(1).SpaceBefore {
			p.advance()
			desc.Values = append(desc.Values, p.advance().Value)
		}
	default:
		return nil, errorf(tok.Position, "expected node description but found %s %q", tok.Type, tok.Value)
	}

	if p.peek().Type == TokenEquals {
		p.advance()
		name, err := p.parseName()
		if err != nil {
			return nil, err
		}
		desc.Name = name
	}
	return desc, nil
}

// parseVarGroup: '#' N '%' NAME
func (p *Parser) parseVarGroup() (VarGroup, error) {
	hash := p.advance()
	num := p.peek()
	n, err := strconv.Atoi(num.Value)
	if num.Type != TokenWord || err != nil || n < 0 {
		return VarGroup{}, errorf(hash.Position, "variable group needs a group number after '#'")
	}
	p.advance()
	if err := p.expect(TokenPercent); err != nil {
		return VarGroup{}, err
	}
	name, err := p.parseName()
	if err != nil {
		return VarGroup{}, err
	}
	return VarGroup{Group: n, Var: name}, nil
}

func (p *Parser) parseName() (string, error) {
	tok := p.peek()
	if tok.Type != TokenWord || tok.SpaceBefore || !isName(tok.Value) {
		return "", errorf(tok.Position, "expected name but found %s %q", tok.Type, tok.Value)
	}
	p.advance()
	return tok.Value, nil
}

func isName(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		letter := c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		if !letter && (i == 0 || c < '0' || c > '9') {
			return false
		}
	}
	return true
}

func (p *Parser) expect(t TokenType) error {
	tok := p.peek()
	if tok.Type != t {
		return errorf(tok.Position, "expected %s but found %s %q", t, tok.Type, tok.Value)
	}
	p.advance()
	return nil
}

func (p *Parser) peek() Token {
	return p.peekAt(0)
}

func (p *Parser) peekAt(n int) Token {
	if p.current+n >= len(p.tokens) {
		pos := 0
		if len(p.tokens) > 0 {
			pos = p.tokens[len(p.tokens)-1].Position
		}
		return Token{Type: TokenEOF, Position: pos}
	}
	return p.tokens[p.current+n]
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if p.current < len(p.tokens) {
		p.current++
	}
	return tok
}
