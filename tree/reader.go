package tree

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// SyntaxError reports malformed bracketed input.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d col %d: %s", e.Line, e.Col, e.Msg)
}

// Reader reads successive bracketed trees such as
//
//	(S (NP (DT the) (NN dog)) (VP (VBZ barks)))
//
// Trees may span several lines and several trees may share a line.
type Reader struct {
	r    *bufio.Reader
	line int
	col  int
	peek rune
	has  bool
}

// NewReader returns a Reader that parses trees from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r), line: 1}
}

// Parse reads exactly one tree from s.
func Parse(s string) (*Node, error) {
	rd := NewReader(strings.NewReader(s))
	t, err := rd.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &SyntaxError{Line: 1, Col: 1, Msg: "no tree in input"}
		}
		return nil, err
	}
	rd.skipSpace()
	if _, err := rd.read(); err == nil {
		return nil, rd.errorf("unexpected input after tree")
	}
	return t, nil
}

// MustParse is like Parse but panics on malformed input.
func MustParse(s string) *Node {
	t, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("tree: Parse(%q): %v", s, err))
	}
	return t
}

// ReadAll parses every tree in r.
func ReadAll(r io.Reader) ([]*Node, error) {
	rd := NewReader(r)
	var trees []*Node
	for {
		t, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return trees, nil
		}
		if err != nil {
			return trees, err
		}
		trees = append(trees, t)
	}
}

// Next returns the next tree, or io.EOF when the input is exhausted.
func (rd *Reader) Next() (*Node, error) {
	rd.skipSpace()
	c, err := rd.read()
	if err != nil {
		return nil, err
	}
	if c != '(' {
		return nil, rd.errorf("expected '(' but found %q", c)
	}
	return rd.readNode()
}

// readNode parses the remainder of a node whose '(' was consumed.
func (rd *Reader) readNode() (*Node, error) {
	n := &Node{}
	rd.skipSpace()
	c, err := rd.peekRune()
	if err != nil {
		return nil, rd.errorf("unterminated tree")
	}
	if c != '(' && c != ')' {
		n.Label = rd.readToken()
	}
	for {
		rd.skipSpace()
		c, err := rd.read()
		if err != nil {
			return nil, rd.errorf("unterminated tree")
		}
		switch c {
		case ')':
			return n, nil
		case '(':
			child, err := rd.readNode()
			if err != nil {
				return nil, err
			}
			n.Children = append(n.Children, child)
		default:
			rd.unread(c)
			n.Children = append(n.Children, Leaf(rd.readToken()))
		}
	}
}

func (rd *Reader) readToken() string {
	var sb strings.Builder
	for {
		c, err := rd.peekRune()
		if err != nil || c == '(' || c == ')' || unicode.IsSpace(c) {
			return sb.String()
		}
		rd.has = false
		sb.WriteRune(c)
	}
}

func (rd *Reader) skipSpace() {
	for {
		c, err := rd.peekRune()
		if err != nil || !unicode.IsSpace(c) {
			return
		}
		rd.has = false
	}
}

func (rd *Reader) peekRune() (rune, error) {
	if rd.has {
		return rd.peek, nil
	}
	c, err := rd.read()
	if err != nil {
		return 0, err
	}
	rd.unread(c)
	return c, nil
}

func (rd *Reader) read() (rune, error) {
	if rd.has {
		rd.has = false
		return rd.peek, nil
	}
	c, _, err := rd.r.ReadRune()
	if err != nil {
		return 0, err
	}
	if c == '\n' {
		rd.line++
		rd.col = 0
	} else {
		rd.col++
	}
	return c, nil
}

func (rd *Reader) unread(c rune) {
	rd.peek = c
	rd.has = true
}

func (rd *Reader) errorf(format string, args ...any) error {
	return &SyntaxError{Line: rd.line, Col: rd.col, Msg: fmt.Sprintf(format, args...)}
}
