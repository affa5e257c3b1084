package selector

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"fortio.org/safecast"
)

type lexer struct {
	src  string
	off  int
	line int
	col  int
}

// Tokenize splits src into tokens, ending with an EOF token.
func Tokenize(src string) ([]Token, error) {
	lx := &lexer{src: src, line: 1, col: 1}

	var toks []Token
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}

		toks = append(toks, tok)
		if tok.Kind == EOF {
			return toks, nil
		}
	}
}

func (lx *lexer) pos() (Pos, error) {
	off, err := safecast.Conv[uint32](lx.off)
	if err != nil {
		return Pos{}, &SyntaxError{Msg: "selection too large"}
	}

	line, err := safecast.Conv[uint32](lx.line)
	if err != nil {
		return Pos{}, &SyntaxError{Msg: "selection too large"}
	}

	col, err := safecast.Conv[uint32](lx.col)
	if err != nil {
		return Pos{}, &SyntaxError{Msg: "selection too large"}
	}

	return Pos{Offset: off, Line: line, Col: col}, nil
}

func (lx *lexer) peek(n int) byte {
	if lx.off+n >= len(lx.src) {
		return 0
	}

	return lx.src[lx.off+n]
}

func (lx *lexer) advance(n int) {
	for range n {
		if lx.off >= len(lx.src) {
			return
		}

		if lx.src[lx.off] == '\n' {
			lx.line++
			lx.col = 1
		} else {
			lx.col++
		}
		lx.off++
	}
}

func (lx *lexer) skipSpace() {
	for lx.off < len(lx.src) {
		switch ch := lx.src[lx.off]; {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			lx.advance(1)
		case ch == '/' && lx.peek(1) == '/':
			for lx.off < len(lx.src) && lx.src[lx.off] != '\n' {
				lx.advance(1)
			}
		default:
			return
		}
	}
}

func (lx *lexer) next() (Token, error) {
	lx.skipSpace()

	pos, err := lx.pos()
	if err != nil {
		return Token{}, err
	}

	if lx.off >= len(lx.src) {
		return Token{Kind: EOF, Pos: pos}, nil
	}

	start := lx.off
	ch := lx.src[lx.off]

	switch {
	case isIdentStart(lx.src[lx.off:]):
		for lx.off < len(lx.src) && isIdentPart(lx.src[lx.off:]) {
			_, size := utf8.DecodeRuneInString(lx.src[lx.off:])
			lx.advance(size)
		}

		text := lx.src[start:lx.off]
		if kw, ok := keywords[text]; ok {
			return Token{Kind: kw, Text: text, Pos: pos}, nil
		}

		return Token{Kind: Identifier, Text: text, Pos: pos}, nil

	case isDigit(ch):
		return lx.scanNumber(pos), nil

	case ch == '"':
		return lx.scanQuoted(pos, '"', Str)

	case ch == '\'':
		return lx.scanQuoted(pos, '\'', Char)
	}

	kind, size := lx.scanOperator()
	if size == 0 {
		return Token{}, &SyntaxError{Pos: pos, Msg: fmt.Sprintf("unexpected character %q", ch)}
	}

	lx.advance(size)

	return Token{Kind: kind, Text: lx.src[start:lx.off], Pos: pos}, nil
}

func (lx *lexer) scanNumber(pos Pos) Token {
	start := lx.off
	kind := Int

	for isDigit(lx.peek(0)) || lx.peek(0) == '_' {
		lx.advance(1)
	}

	if lx.peek(0) == '.' && isDigit(lx.peek(1)) {
		kind = Float
		lx.advance(1)

		for isDigit(lx.peek(0)) {
			lx.advance(1)
		}
	}

	return Token{Kind: kind, Text: lx.src[start:lx.off], Pos: pos}
}

func (lx *lexer) scanQuoted(pos Pos, quote byte, kind Kind) (Token, error) {
	start := lx.off
	lx.advance(1)

	for {
		switch ch := lx.peek(0); {
		case lx.off >= len(lx.src) || ch == '\n':
			return Token{}, &SyntaxError{Pos: pos, Msg: "unterminated " + kind.String() + " literal"}
		case ch == '\\':
			lx.advance(2)
		case ch == quote:
			lx.advance(1)

			text := lx.src[start:lx.off]
			if _, err := Unquote(text); err != nil {
				return Token{}, &SyntaxError{Pos: pos, Msg: fmt.Sprintf("invalid %s literal %s", kind, text)}
			}

			return Token{Kind: kind, Text: text, Pos: pos}, nil
		default:
			lx.advance(1)
		}
	}
}

// scanOperator returns the operator at the cursor and its length, or size 0.
func (lx *lexer) scanOperator() (Kind, int) {
	c0, c1 := lx.peek(0), lx.peek(1)

	switch c0 {
	case '{':
		return LBrace, 1
	case '}':
		return RBrace, 1
	case '(':
		return LParen, 1
	case ')':
		return RParen, 1
	case '[':
		return LBrack, 1
	case ']':
		return RBrack, 1
	case ',':
		return Comma, 1
	case '.':
		return Dot, 1
	case ':':
		return Colon, 1
	case '+':
		return Plus, 1
	case '-':
		return Minus, 1
	case '*':
		return Star, 1
	case '/':
		return Slash, 1
	case '%':
		return Percent, 1
	case '?':
		switch {
		case c1 == '.' && !isDigit(lx.peek(2)):
			return QDot, 2
		case c1 == '?':
			return QQ, 2
		}
		return Question, 1
	case '=':
		switch c1 {
		case '>':
			return Arrow, 2
		case '=':
			return Eq, 2
		}
		return Assign, 1
	case '!':
		if c1 == '=' {
			return Ne, 2
		}
		return Not, 1
	case '<':
		if c1 == '=' {
			return Le, 2
		}
		return Lt, 1
	case '>':
		if c1 == '=' {
			return Ge, 2
		}
		return Gt, 1
	case '&':
		if c1 == '&' {
			return AndAnd, 2
		}
	case '|':
		if c1 == '|' {
			return OrOr, 2
		}
	}

	return EOF, 0
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Unquote returns the value of a quoted string or char literal. Selections
// may spell the null character as \0, which Go does not accept. A char
// literal must hold exactly one character.
func Unquote(lit string) (string, error) {
	s, err := strconv.Unquote(lit)
	if err != nil && strings.Contains(lit, `\0`) {
		s, err = strconv.Unquote(strings.ReplaceAll(lit, `\0`, `\x00`))
	}

	return s, err
}
