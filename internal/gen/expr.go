package gen

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/dave/jennifer/jen"

	"projgen/internal/analyze"
	"projgen/internal/selector"
	"projgen/internal/structure"
)

// funcEmitter renders the projection function of one unit.
type funcEmitter struct {
	*typeWriter

	unit   Unit
	byPath map[string]*structure.Structure
	taken  map[string]bool
}

func newFuncEmitter(w *typeWriter, u Unit) *funcEmitter {
	e := &funcEmitter{
		typeWriter: w,
		unit:       u,
		byPath:     make(map[string]*structure.Structure),
		taken:      map[string]bool{u.Param: true},
	}

	for _, c := range u.Captures {
		e.taken[c.Name] = true
	}

	u.Root.Walk(func(s *structure.Structure) {
		e.byPath[s.Path] = s
		for _, f := range s.Fields {
			e.reserve(f.Value)
		}
	})

	return e
}

// reserve keeps every name written in x away from temporaries.
func (e *funcEmitter) reserve(x selector.Expr) {
	selector.Inspect(x, func(n selector.Expr) bool {
		switch n := n.(type) {
		case *selector.Ident:
			e.taken[n.Name] = true
		case *selector.Lambda:
			e.taken[n.Param] = true
		case *selector.Query:
			for _, op := range n.Ops {
				e.taken[op.Param] = true
			}
		}

		return true
	})
}

// fresh returns a temporary name not used by the unit.
func (e *funcEmitter) fresh(base string) string {
	name := base
	for i := 1; e.taken[name]; i++ {
		name = base + strconv.Itoa(i)
	}

	e.taken[name] = true

	return name
}

func (e *funcEmitter) firstErr() error {
	return e.err
}

// recordName is the type name a structure is emitted as.
func (e *funcEmitter) recordName(s *structure.Structure) string {
	if s.Target != nil {
		return s.Target.Deref().ID.Name
	}

	if entry := e.unit.Binding[s.Path]; entry != nil {
		return entry.Name
	}

	return s.HintName
}

func (e *funcEmitter) recordType(s *structure.Structure) *jen.Statement {
	if s.Target != nil {
		return e.typ(s.Target)
	}

	if entry := e.unit.Binding[s.Path]; entry != nil {
		return e.named(entry.Name)
	}

	e.fail(fmt.Errorf("record %q is not stored", s.Path))

	return jen.Id("any")
}

// function renders the projection function: every member is assigned on a
// zero-valued record in selection order.
func (e *funcEmitter) function(name string) *jen.Statement {
	root := e.unit.Root
	out := e.fresh("out")

	body := []jen.Code{jen.Var().Id(out).Add(e.recordType(root))}
	for _, f := range root.Fields {
		body = append(body, jen.Id(out).Dot(f.Name).Op("=").Add(e.expr(f.Value)))
	}

	body = append(body, jen.Return(jen.Id(out)))

	params := []jen.Code{jen.Id(e.unit.Param).Add(e.typ(e.unit.Source))}
	for _, c := range e.unit.Captures {
		params = append(params, jen.Id(c.Name).Add(e.typ(c.Type)))
	}

	return jen.Func().Id(name).Params(params...).Add(e.recordType(root)).Block(body...)
}

func (e *funcEmitter) expr(x selector.Expr) *jen.Statement {
	switch x := x.(type) {
	case *selector.Ident:
		return jen.Id(x.Name)
	case *selector.Qualified:
		return jen.Qual(x.PkgPath, x.Name)
	case *selector.Literal:
		return e.literal(x)
	case *selector.Member:
		return e.operand(x.X).Dot(x.Name)
	case *selector.Call:
		return e.call(x)
	case *selector.Index:
		return e.operand(x.X).Index(e.expr(x.Index))
	case *selector.Unary:
		return jen.Op(x.Op.String()).Add(e.operand(x.X))
	case *selector.Binary:
		return e.operand(x.X).Op(x.Op.String()).Add(e.operand(x.Y))
	case *selector.Cond:
		return iife(e.typ(x.Type),
			jen.If(e.expr(x.Cond)).Block(jen.Return(e.expr(x.Then))),
			jen.Return(e.expr(x.Else)),
		)
	case *selector.New:
		return e.record(x)
	case *selector.Query:
		return e.query(x)
	case *selector.Guard:
		return e.guard(x)
	case *selector.Coalesce:
		return e.coalesce(x)
	case *selector.Lift:
		v := e.fresh("v")
		return iife(e.typ(x.Type),
			jen.Id(v).Op(":=").Add(e.expr(x.X)),
			jen.Return(jen.Op("&").Id(v)),
		)
	case *selector.Unwrap:
		return e.deref(x.X, x.Type, e.zero(x.Type))
	default:
		e.fail(fmt.Errorf("cannot render %s", selector.String(x)))
		return jen.Nil()
	}
}

// operand renders x where it binds tighter than any operator.
func (e *funcEmitter) operand(x selector.Expr) *jen.Statement {
	switch x.(type) {
	case *selector.Binary, *selector.Unary:
		return jen.Parens(e.expr(x))
	default:
		return e.expr(x)
	}
}

func (e *funcEmitter) call(x *selector.Call) *jen.Statement {
	args := make([]jen.Code, 0, len(x.Args))
	for _, a := range x.Args {
		args = append(args, e.expr(a))
	}

	return e.operand(x.Fun).Call(args...)
}

func (e *funcEmitter) literal(x *selector.Literal) *jen.Statement {
	switch x.Kind {
	case selector.LitInt, selector.LitFloat:
		return jen.Op(x.Value)
	case selector.LitBool:
		if x.Value == "true" {
			return jen.True()
		}

		return jen.False()
	case selector.LitNull:
		return jen.Nil()
	case selector.LitString:
		s, err := selector.Unquote(x.Value)
		if err != nil {
			e.fail(fmt.Errorf("string literal %s: %w", x.Value, err))
		}

		return jen.Lit(s)
	case selector.LitChar:
		s, err := selector.Unquote(x.Value)
		if err != nil || utf8.RuneCountInString(s) != 1 {
			e.fail(fmt.Errorf("invalid char literal %s", x.Value))
			return jen.LitRune(0)
		}

		r, _ := utf8.DecodeRuneInString(s)

		return jen.LitRune(r)
	default:
		e.fail(fmt.Errorf("unknown literal %s", x.Value))
		return jen.Nil()
	}
}

// record renders a nested record as a composite literal. Generated members
// of a target embedding its companion go through the companion's literal.
func (e *funcEmitter) record(x *selector.New) *jen.Statement {
	s := e.byPath[x.Key]
	if s == nil {
		e.fail(fmt.Errorf("record %s has no structure", selector.String(x)))
		return jen.Nil()
	}

	split := s.Target != nil && structure.HasCompanion(s.Target)

	var items, generated []jen.Code

	for _, f := range s.Fields {
		item := jen.Id(f.Name).Op(":").Add(e.expr(f.Value))
		if split && !f.IsDeclared() {
			generated = append(generated, item)
			continue
		}

		items = append(items, item)
	}

	if len(generated) > 0 {
		t := s.Target.Deref()
		name := structure.CompanionName(t.ID.Name)
		items = append([]jen.Code{jen.Id(name).Op(":").Qual(t.ID.PkgPath, name).Values(generated...)}, items...)
	}

	if s.Target != nil && s.Target.Kind == analyze.TypeKindPointer {
		return jen.Op("&").Add(e.typ(s.Target.Deref())).Values(items...)
	}

	return e.recordType(s).Values(items...)
}

// keyRecord renders an anonymous grouping key of type t.
func (e *funcEmitter) keyRecord(x *selector.New, t *analyze.TypeInfo) *jen.Statement {
	items := make([]jen.Code, 0, len(x.Inits))
	for _, init := range x.Inits {
		items = append(items, jen.Id(init.Name).Op(":").Add(e.expr(init.Value)))
	}

	return e.typ(t).Values(items...)
}

func (e *funcEmitter) guard(x *selector.Guard) *jen.Statement {
	var cond *jen.Statement

	for _, c := range x.Checks {
		check := e.operand(c).Op("!=").Nil()
		if cond == nil {
			cond = check
			continue
		}

		cond = cond.Op("&&").Add(check)
	}

	return iife(e.typ(x.Type),
		jen.If(cond).Block(jen.Return(e.expr(x.Value))),
		jen.Return(e.fallback(x.Fallback, x.Type)),
	)
}

func (e *funcEmitter) fallback(fb selector.Fallback, result *analyze.TypeInfo) *jen.Statement {
	t := fb.Type
	if t == nil {
		t = result
	}

	switch fb.Kind {
	case selector.FallbackNil:
		return jen.Nil()
	case selector.FallbackFalse:
		return jen.False()
	case selector.FallbackNullChar:
		return jen.LitRune(0)
	case selector.FallbackEmptyText:
		return jen.Lit("")
	case selector.FallbackEmptyCollection:
		return e.empty(fb.Shape, t)
	default:
		return e.zero(t)
	}
}

// empty spells an empty collection of shape and type t.
func (e *funcEmitter) empty(shape selector.Shape, t *analyze.TypeInfo) *jen.Statement {
	switch shape {
	case selector.ShapeArray:
		return jen.Make(e.typ(t), jen.Lit(0))
	case selector.ShapeSeq:
		elem := t.Collection().ElemType
		return jen.Func().Params(jen.Id("yield").Func().Params(e.typ(elem)).Bool()).Block()
	default:
		return e.typ(t).Values()
	}
}

func (e *funcEmitter) coalesce(x *selector.Coalesce) *jen.Statement {
	if x.Deref {
		return e.deref(x.X, x.Type, e.expr(x.Y))
	}

	v := e.fresh("v")

	return iife(e.typ(x.Type),
		jen.If(jen.Id(v).Op(":=").Add(e.expr(x.X)), jen.Id(v).Op("!=").Nil()).Block(jen.Return(jen.Id(v))),
		jen.Return(e.expr(x.Y)),
	)
}

// deref renders *x of type t, or otherwise when x is nil.
func (e *funcEmitter) deref(x selector.Expr, t *analyze.TypeInfo, otherwise jen.Code) *jen.Statement {
	v := e.fresh("v")

	return iife(e.typ(t),
		jen.If(jen.Id(v).Op(":=").Add(e.expr(x)), jen.Id(v).Op("!=").Nil()).Block(jen.Return(jen.Op("*").Id(v))),
		jen.Return(otherwise),
	)
}

// iife renders an immediately invoked function literal returning result.
func iife(result jen.Code, body ...jen.Code) *jen.Statement {
	return jen.Func().Params().Add(result).Block(body...).Call()
}
