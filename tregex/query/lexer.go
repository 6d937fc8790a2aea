package query

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// relationSymbols lists the fixed relation spellings, longest first so that
// the lexer always takes the longest match.
var relationSymbols = []string{
	"<<#", ">>#", "<<,", "<<-", ">>,", ">>-", "<<:", ">>:",
	"$++", "$--", "$..", "$,,",
	"<<", ">>", "<#", ">#", "<,", "<-", "<`", ">,", ">-", ">`", "<:", ">:", "<+", ">+",
	"$+", "$-", "$.", "$,",
	"..", ",,", ".+", ",+", "==",
	"<", ">", "$", ".", ",", ":",
}

// Lexer is responsible for scanning the input string and producing tokens.
type Lexer struct {
	input    string // the entire input to tokenize
	position int    // current reading position in input
	tokens   []Token
	space    bool // whitespace seen since the last token
}

// NewLexer returns a new Lexer with the given input and initializes state.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		tokens: make([]Token, 0),
	}
}

// Tokenize processes the entire input and produces the list of tokens.
func (l *Lexer) Tokenize() ([]Token, error) {
	for l.position < len(l.input) {
		start := l.position
		c := l.input[l.position]
		switch {
		case isWhitespace(c):
			l.position++
			l.space = true
			continue
		case c == '(':
			l.single(TokenLParen)
		case c == ')':
			l.single(TokenRParen)
		case c == '[':
			l.single(TokenLBracket)
		case c == ']':
			l.single(TokenRBracket)
		case c == '!':
			l.single(TokenBang)
		case c == '?':
			l.single(TokenQuestion)
		case c == '@':
			l.single(TokenAt)
		case c == '~':
			l.single(TokenTilde)
		case c == '|':
			l.single(TokenPipe)
		case c == '&':
			l.single(TokenAmp)
		case c == '#':
			l.single(TokenHash)
		case c == '%':
			l.single(TokenPercent)
		case c == '/':
			if err := l.lexRegex(); err != nil {
				return nil, err
			}
		case c == '=' && !strings.HasPrefix(l.input[l.position:], "=="):
			l.single(TokenEquals)
		case isRelationStart(c):
			if !l.lexRelation() {
				return nil, errorf(start, "unknown relation starting with %q", c)
			}
		case isWordChar(c):
			l.lexWord()
		default:
			r, _ := utf8.DecodeRuneInString(l.input[l.position:])
			return nil, errorf(start, "unexpected character %q", r)
		}
	}
	l.addToken(TokenEOF, "", l.position)
	return l.tokens, nil
}

func (l *Lexer) single(t TokenType) {
	l.addToken(t, l.input[l.position:l.position+1], l.position)
	l.position++
}

// lexRegex scans /.../, where "\/" stands for a literal slash.
func (l *Lexer) lexRegex() error {
	start := l.position
	var sb strings.Builder
	for i := start + 1; i < len(l.input); i++ {
		c := l.input[i]
		if c == '\\' && i+1 < len(l.input) && l.input[i+1] == '/' {
			sb.WriteByte('/')
			i++
			continue
		}
		if c == '/' {
			l.addToken(TokenRegex, sb.String(), start)
			l.position = i + 1
			return nil
		}
		sb.WriteByte(c)
	}
	return errorf(start, "regex is not terminated")
}

// lexRelation scans a relation symbol, including the numbered child forms
// "<2", "<-2", ">1" and ">-1".
func (l *Lexer) lexRelation() bool {
	rest := l.input[l.position:]
	if rest[0] == '<' || rest[0] == '>' {
		i := 1
		if i < len(rest) && rest[i] == '-' {
			i++
		}
		j := i
		for j < len(rest) && rest[j] >= '0' && rest[j] <= '9' {
			j++
		}
		if j > i {
			l.addToken(TokenRelation, rest[:j], l.position)
			l.position += j
			return true
		}
	}
	for _, sym := range relationSymbols {
		if strings.HasPrefix(rest, sym) {
			l.addToken(TokenRelation, sym, l.position)
			l.position += len(sym)
			return true
		}
	}
	return false
}

// lexWord scans label text. '$' may appear inside a word (PRP$) but not at its start.
func (l *Lexer) lexWord() {
	start := l.position
	for l.position < len(l.input) {
		c := l.input[l.position]
		if !isWordChar(c) && c != '$' {
			break
		}
		l.position++
	}
	l.addToken(TokenWord, l.input[start:l.position], start)
}

// addToken is a helper to append a new token to the lexer's token list.
func (l *Lexer) addToken(tokenType TokenType, value string, pos int) {
	l.tokens = append(l.tokens, Token{
		Type:        tokenType,
		Value:       value,
		Position:    pos,
		SpaceBefore: l.space,
	})
	l.space = false
}

// isWhitespace checks if the given byte is a space, tab, newline, etc. using unicode.IsSpace.
func isWhitespace(c byte) bool {
	return unicode.IsSpace(rune(c))
}

func isRelationStart(c byte) bool {
	switch c {
	case '<', '>', '$', '.', ',', '=', ':':
		return true
	}
	return false
}

func isWordChar(c byte) bool {
	if c >= utf8.RuneSelf {
		return true
	}
	if isWhitespace(c) {
		return false
	}
	return !strings.ContainsRune(`()[]/|@!#%&=?<>~$.,:;{}"`, rune(c))
}
