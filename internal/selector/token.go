package selector

import "fmt"

// Kind identifies a lexical token.
type Kind int

const (
	EOF Kind = iota
	Identifier
	Int
	Float
	Str
	Char

	LBrace   // {
	RBrace   // }
	LParen   // (
	RParen   // )
	LBrack   // [
	RBrack   // ]
	Comma    // ,
	Dot      // .
	QDot     // ?.
	Arrow    // =>
	Assign   // =
	Question // ?
	Colon    // :
	QQ       // ??

	Not     // !
	Plus    // +
	Minus   // -
	Star    // *
	Slash   // /
	Percent // %
	Lt      // <
	Le      // <=
	Gt      // >
	Ge      // >=
	Eq      // ==
	Ne      // !=
	AndAnd  // &&
	OrOr    // ||

	KwNew
	KwTrue
	KwFalse
	KwNull
)

var kindNames = map[Kind]string{
	EOF: "end of input", Identifier: "identifier", Int: "integer", Float: "float",
	Str: "string", Char: "char",
	LBrace: "{", RBrace: "}", LParen: "(", RParen: ")", LBrack: "[", RBrack: "]",
	Comma: ",", Dot: ".", QDot: "?.", Arrow: "=>", Assign: "=", Question: "?",
	Colon: ":", QQ: "??",
	Not: "!", Plus: "+", Minus: "-", Star: "*", Slash: "/", Percent: "%",
	Lt: "<", Le: "<=", Gt: ">", Ge: ">=", Eq: "==", Ne: "!=", AndAnd: "&&", OrOr: "||",
	KwNew: "new", KwTrue: "true", KwFalse: "false", KwNull: "null",
}

var keywords = map[string]Kind{
	"new":   KwNew,
	"true":  KwTrue,
	"false": KwFalse,
	"null":  KwNull,
}

// String returns the spelling of operator tokens and a description otherwise.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}

	return fmt.Sprintf("token(%d)", int(k))
}

// Pos is a position in a selection source.
type Pos struct {
	Offset uint32 // byte offset, 0-based
	Line   uint32 // 1-based
	Col    uint32 // 1-based, in bytes
}

// String renders the position as line:col.
func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Token is a lexical token with its source text.
type Token struct {
	Kind Kind
	Text string
	Pos  Pos
}

// SyntaxError is returned for malformed selections.
type SyntaxError struct {
	Pos Pos
	Msg string
}

func (e *SyntaxError) Error() string {
	return e.Pos.String() + ": " + e.Msg
}
