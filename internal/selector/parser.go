package selector

import (
	"fmt"
)

type parser struct {
	toks []Token
	i    int
}

// Parse parses a single selection expression.
func Parse(src string) (Expr, error) {
	toks, err := Tokenize(src)
	if err != nil {
		return nil, err
	}

	p := &parser{toks: toks}

	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if tok := p.peek(0); tok.Kind != EOF {
		return nil, p.errorf(tok, "unexpected %s after expression", describe(tok))
	}

	return x, nil
}

// ParseSelection parses a selection body. Both "x => new { ... }" and a
// bare "new { ... }" / "{ ... }" are accepted; param names the selection
// parameter when the body carries none. The returned lambda is never nil.
func ParseSelection(src, param string) (*Lambda, error) {
	x, err := Parse(src)
	if err != nil {
		return nil, err
	}

	if lam, ok := x.(*Lambda); ok {
		if param != "" && lam.Param != param {
			return nil, &SyntaxError{
				Pos: lam.ParamPos,
				Msg: fmt.Sprintf("selection parameter %q does not match declared parameter %q", lam.Param, param),
			}
		}

		return lam, nil
	}

	if param == "" {
		return nil, &SyntaxError{Pos: x.Pos(), Msg: "selection has no parameter"}
	}

	return &Lambda{ParamPos: x.Pos(), Param: param, Body: x}, nil
}

func (p *parser) peek(n int) Token {
	if p.i+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}

	return p.toks[p.i+n]
}

func (p *parser) next() Token {
	tok := p.peek(0)
	if p.i < len(p.toks)-1 {
		p.i++
	}

	return tok
}

func (p *parser) expect(kind Kind) (Token, error) {
	tok := p.next()
	if tok.Kind != kind {
		return tok, p.errorf(tok, "expected %s, found %s", kind, describe(tok))
	}

	return tok, nil
}

func (p *parser) errorf(tok Token, format string, args ...any) error {
	return &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf(format, args...)}
}

func describe(tok Token) string {
	switch tok.Kind {
	case EOF:
		return "end of input"
	case Identifier, Int, Float, Str, Char:
		return fmt.Sprintf("%s %s", tok.Kind, tok.Text)
	default:
		return fmt.Sprintf("%q", tok.Text)
	}
}

func (p *parser) parseExpr() (Expr, error) {
	if lam, ok, err := p.tryLambda(); ok || err != nil {
		return lam, err
	}

	return p.parseConditional()
}

// tryLambda parses "p => body" and "(p) => body".
func (p *parser) tryLambda() (Expr, bool, error) {
	var param Token

	switch {
	case p.peek(0).Kind == Identifier && p.peek(1).Kind == Arrow:
		param = p.next()
		p.next()
	case p.peek(0).Kind == LParen && p.peek(1).Kind == Identifier && p.peek(2).Kind == RParen && p.peek(3).Kind == Arrow:
		p.next()
		param = p.next()
		p.next()
		p.next()
	default:
		return nil, false, nil
	}

	body, err := p.parseExpr()
	if err != nil {
		return nil, true, err
	}

	return &Lambda{ParamPos: param.Pos, Param: param.Text, Body: body}, true, nil
}

func (p *parser) parseConditional() (Expr, error) {
	cond, err := p.parseCoalesce()
	if err != nil {
		return nil, err
	}

	if p.peek(0).Kind != Question {
		return cond, nil
	}

	q := p.next()

	then, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(Colon); err != nil {
		return nil, err
	}

	els, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	return &Cond{Cond: cond, Question: q.Pos, Then: then, Else: els}, nil
}

func (p *parser) parseCoalesce() (Expr, error) {
	x, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}

	if p.peek(0).Kind != QQ {
		return x, nil
	}

	op := p.next()

	y, err := p.parseCoalesce()
	if err != nil {
		return nil, err
	}

	return &Binary{X: x, OpPos: op.Pos, Op: QQ, Y: y}, nil
}

// binaryLevels lists binary operators from lowest to highest precedence.
var binaryLevels = [][]Kind{
	{OrOr},
	{AndAnd},
	{Eq, Ne},
	{Lt, Le, Gt, Ge},
	{Plus, Minus},
	{Star, Slash, Percent},
}

func (p *parser) parseBinary(level int) (Expr, error) {
	if level == len(binaryLevels) {
		return p.parseUnary()
	}

	x, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}

	for {
		op := p.peek(0)
		if !containsKind(binaryLevels[level], op.Kind) {
			return x, nil
		}

		p.next()

		y, err := p.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}

		x = &Binary{X: x, OpPos: op.Pos, Op: op.Kind, Y: y}
	}
}

func containsKind(kinds []Kind, k Kind) bool {
	for _, kind := range kinds {
		if kind == k {
			return true
		}
	}

	return false
}

func (p *parser) parseUnary() (Expr, error) {
	switch tok := p.peek(0); tok.Kind {
	case Not, Minus:
		p.next()

		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return &Unary{OpPos: tok.Pos, Op: tok.Kind, X: x}, nil
	}

	return p.parsePostfix()
}

func (p *parser) parsePostfix() (Expr, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch tok := p.peek(0); tok.Kind {
		case Dot, QDot:
			p.next()

			name, err := p.expect(Identifier)
			if err != nil {
				return nil, err
			}

			x = &Member{X: x, Dot: tok.Pos, Name: name.Text, Optional: tok.Kind == QDot}

		case LParen:
			p.next()

			args, err := p.parseList(RParen, p.parseExpr)
			if err != nil {
				return nil, err
			}

			x = &Call{Fun: x, Lparen: tok.Pos, Args: args}

		case LBrack:
			p.next()

			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}

			if _, err := p.expect(RBrack); err != nil {
				return nil, err
			}

			x = &Index{X: x, Lbrack: tok.Pos, Index: idx}

		default:
			return x, nil
		}
	}
}

// parseList parses comma separated items up to and including end. A
// trailing comma is accepted.
func (p *parser) parseList(end Kind, item func() (Expr, error)) ([]Expr, error) {
	var items []Expr

	for p.peek(0).Kind != end {
		x, err := item()
		if err != nil {
			return nil, err
		}

		items = append(items, x)

		if p.peek(0).Kind != Comma {
			break
		}

		p.next()
	}

	if _, err := p.expect(end); err != nil {
		return nil, err
	}

	return items, nil
}

func (p *parser) parsePrimary() (Expr, error) {
	tok := p.next()

	switch tok.Kind {
	case Identifier:
		return &Ident{NamePos: tok.Pos, Name: tok.Text}, nil
	case Int:
		return &Literal{ValuePos: tok.Pos, Kind: LitInt, Value: tok.Text}, nil
	case Float:
		return &Literal{ValuePos: tok.Pos, Kind: LitFloat, Value: tok.Text}, nil
	case Str:
		return &Literal{ValuePos: tok.Pos, Kind: LitString, Value: tok.Text}, nil
	case Char:
		return &Literal{ValuePos: tok.Pos, Kind: LitChar, Value: tok.Text}, nil
	case KwTrue, KwFalse:
		return &Literal{ValuePos: tok.Pos, Kind: LitBool, Value: tok.Text}, nil
	case KwNull:
		return &Literal{ValuePos: tok.Pos, Kind: LitNull, Value: tok.Text}, nil
	case LParen:
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(RParen); err != nil {
			return nil, err
		}

		return x, nil
	case LBrace:
		return p.parseInits(tok.Pos, nil)
	case KwNew:
		return p.parseNew(tok)
	}

	return nil, p.errorf(tok, "unexpected %s", describe(tok))
}

func (p *parser) parseNew(newTok Token) (Expr, error) {
	if p.peek(0).Kind == LBrace {
		p.next()
		return p.parseInits(newTok.Pos, nil)
	}

	name, err := p.expect(Identifier)
	if err != nil {
		return nil, err
	}

	var typ Expr = &Ident{NamePos: name.Pos, Name: name.Text}
	for p.peek(0).Kind == Dot {
		dot := p.next()

		sel, err := p.expect(Identifier)
		if err != nil {
			return nil, err
		}

		typ = &Member{X: typ, Dot: dot.Pos, Name: sel.Text}
	}

	if _, err := p.expect(LBrace); err != nil {
		return nil, err
	}

	return p.parseInits(newTok.Pos, typ)
}

// parseInits parses member initializers after the opening brace.
func (p *parser) parseInits(pos Pos, typ Expr) (Expr, error) {
	n := &New{NewPos: pos, Type: typ}

	_, err := p.parseList(RBrace, func() (Expr, error) {
		init := &Init{NamePos: p.peek(0).Pos}

		if p.peek(0).Kind == Identifier && p.peek(1).Kind == Assign {
			init.Name = p.next().Text
			p.next()
		}

		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		init.Value = value
		n.Inits = append(n.Inits, init)

		return value, nil
	})
	if err != nil {
		return nil, err
	}

	return n, nil
}
