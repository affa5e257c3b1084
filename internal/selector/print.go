package selector

import (
	"strings"

	"projgen/internal/common"
)

// String renders x in selection syntax. Synthesized nodes print in an
// equivalent readable form, e.g. a guard prints as a conditional.
func String(x Expr) string {
	var b strings.Builder
	write(&b, x)

	return b.String()
}

func write(b *strings.Builder, x Expr) {
	switch x := x.(type) {
	case nil:
		b.WriteString("<nil>")
	case *Ident:
		b.WriteString(x.Name)
	case *Literal:
		b.WriteString(x.Value)
	case *Member:
		write(b, x.X)
		if x.Optional {
			b.WriteString("?.")
		} else {
			b.WriteString(".")
		}
		b.WriteString(x.Name)
	case *Call:
		write(b, x.Fun)
		b.WriteString("(")
		writeList(b, x.Args)
		b.WriteString(")")
	case *Index:
		write(b, x.X)
		b.WriteString("[")
		write(b, x.Index)
		b.WriteString("]")
	case *Unary:
		b.WriteString(x.Op.String())
		write(b, x.X)
	case *Binary:
		write(b, x.X)
		b.WriteString(" " + x.Op.String() + " ")
		write(b, x.Y)
	case *Cond:
		write(b, x.Cond)
		b.WriteString(" ? ")
		write(b, x.Then)
		b.WriteString(" : ")
		write(b, x.Else)
	case *Lambda:
		b.WriteString(x.Param + " => ")
		write(b, x.Body)
	case *New:
		b.WriteString("new ")
		if x.Type != nil {
			write(b, x.Type)
			b.WriteString(" ")
		}
		b.WriteString("{ ")
		for i, init := range x.Inits {
			if i > 0 {
				b.WriteString(", ")
			}
			if init.Name != "" {
				b.WriteString(init.Name + " = ")
			}
			write(b, init.Value)
		}
		b.WriteString(" }")
	case *Query:
		write(b, x.Source)
		for _, op := range x.Ops {
			b.WriteString("." + op.Kind.String() + "(")
			if op.Body != nil {
				b.WriteString(op.Param + " => ")
				write(b, op.Body)
			}
			b.WriteString(")")
		}
		switch x.Shape {
		case ShapeList:
			b.WriteString(".ToList()")
		case ShapeArray:
			b.WriteString(".ToArray()")
		}
	case *Guard:
		for i, check := range x.Checks {
			if i > 0 {
				b.WriteString(" && ")
			}
			write(b, check)
			b.WriteString(" != null")
		}
		b.WriteString(" ? ")
		write(b, x.Value)
		b.WriteString(" : ")
		writeFallback(b, x.Fallback)
	case *Coalesce:
		write(b, x.X)
		b.WriteString(" ?? ")
		write(b, x.Y)
	case *Lift:
		b.WriteString("&(")
		write(b, x.X)
		b.WriteString(")")
	case *Unwrap:
		b.WriteString("*(")
		write(b, x.X)
		b.WriteString(")")
	case *Qualified:
		b.WriteString(common.PkgAlias(x.PkgPath) + "." + x.Name)
	}
}

func writeList(b *strings.Builder, xs []Expr) {
	for i, x := range xs {
		if i > 0 {
			b.WriteString(", ")
		}
		write(b, x)
	}
}

func writeFallback(b *strings.Builder, f Fallback) {
	switch f.Kind {
	case FallbackNil:
		b.WriteString("null")
	case FallbackFalse:
		b.WriteString("false")
	case FallbackNullChar:
		b.WriteString(`'\0'`)
	case FallbackEmptyText:
		b.WriteString(`""`)
	case FallbackEmptyCollection:
		b.WriteString("empty<" + f.Shape.String() + ">")
	default:
		b.WriteString("default")
	}
}
