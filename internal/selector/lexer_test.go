package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}

	return out
}

func TestTokenize_Operators(t *testing.T) {
	toks, err := Tokenize(`a?.b ?? c ? d : e => f == g != h <= i >= j && k || !l`)
	require.NoError(t, err)

	assert.Equal(t, []Kind{
		Identifier, QDot, Identifier, QQ, Identifier, Question, Identifier, Colon, Identifier, Arrow,
		Identifier, Eq, Identifier, Ne, Identifier, Le, Identifier, Ge, Identifier, AndAnd, Identifier, OrOr, Not, Identifier, EOF,
	}, kinds(toks))
}

func TestTokenize_Literals(t *testing.T) {
	toks, err := Tokenize(`42 3.5 "a \"q\"" 'c' true null new`)
	require.NoError(t, err)

	assert.Equal(t, []Kind{Int, Float, Str, Char, KwTrue, KwNull, KwNew, EOF}, kinds(toks))
	assert.Equal(t, `"a \"q\""`, toks[2].Text)
	assert.Equal(t, "3.5", toks[1].Text)
}

func TestTokenize_QuestionBeforeNumber(t *testing.T) {
	toks, err := Tokenize(`a ?.5 : 1`)
	require.NoError(t, err)

	// "?." followed by a digit is a conditional, not an optional access.
	assert.Equal(t, Question, toks[1].Kind)
}

func TestTokenize_Positions(t *testing.T) {
	toks, err := Tokenize("new {\n  Id = x.ID // comment\n}")
	require.NoError(t, err)

	id := toks[2]
	assert.Equal(t, "Id", id.Text)
	assert.Equal(t, Pos{Offset: 8, Line: 2, Col: 3}, id.Pos)
	assert.Equal(t, "2:3", id.Pos.String())
	assert.Equal(t, RBrace, toks[len(toks)-2].Kind)
}

func TestTokenize_Errors(t *testing.T) {
	tests := []struct {
		src string
		msg string
	}{
		{`x # y`, `1:3: unexpected character '#'`},
		{`"open`, `1:1: unterminated string literal`},
		{`a & b`, `1:3: unexpected character '&'`},
		{`A = ''`, `1:5: invalid char literal ''`},
		{`A = 'ab'`, `1:5: invalid char literal 'ab'`},
		{`A = "\q"`, `1:5: invalid string literal "\q"`},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := Tokenize(tt.src)
			require.Error(t, err)

			var syn *SyntaxError
			require.ErrorAs(t, err, &syn)
			assert.Equal(t, tt.msg, err.Error())
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "?.", QDot.String())
	assert.Equal(t, "identifier", Identifier.String())
	assert.Equal(t, "token(999)", Kind(999).String())
}

func TestUnquote(t *testing.T) {
	s, err := Unquote(`"a\0b"`)
	require.NoError(t, err)
	assert.Equal(t, "a\x00b", s)

	s, err = Unquote(`'\0'`)
	require.NoError(t, err)
	assert.Equal(t, "\x00", s)

	s, err = Unquote(`'é'`)
	require.NoError(t, err)
	assert.Equal(t, "é", s)

	_, err = Unquote(`"bad\q"`)
	assert.Error(t, err)

	_, err = Unquote(`''`)
	assert.Error(t, err)
}
