package gen

import (
	"github.com/dave/jennifer/jen"

	"projgen/internal/analyze"
	"projgen/internal/selector"
)

// pipe carries the accumulator names of one query rendering.
type pipe struct {
	acc  string // result slice, count or yield function
	sink func(cur string) []jen.Code

	// keys and groups are set while rendering the stage ending in GroupBy.
	keys   string
	groups string
}

// query renders q as a loop producing its result. Lazy queries become an
// iter.Seq that runs the loop on iteration.
func (e *funcEmitter) query(q *selector.Query) *jen.Statement {
	src := e.expr(q.Source)

	switch q.Shape {
	case selector.ShapeSeq:
		elem := q.Type.Collection().ElemType
		yield := e.fresh("yield")
		p := &pipe{acc: yield}
		p.sink = func(cur string) []jen.Code {
			return []jen.Code{jen.If(jen.Op("!").Id(yield).Call(jen.Id(cur))).Block(jen.Return())}
		}

		return jen.Qual("iter", "Seq").Types(e.typ(elem)).Call(
			jen.Func().Params(jen.Id(yield).Func().Params(e.typ(elem)).Bool()).Block(
				e.pipeline(p, src, q.Over, q.Ops, true)...,
			),
		)

	case selector.ShapeScalar:
		last := q.Ops[len(q.Ops)-1]
		if last.Kind == selector.OpAny {
			p := &pipe{}
			body := append(e.pipeline(p, src, q.Over, q.Ops, false), jen.Return(jen.False()))

			return iife(jen.Bool(), body...)
		}

		n := e.fresh("n")
		p := &pipe{acc: n}
		body := []jen.Code{jen.Id(n).Op(":=").Lit(0)}
		body = append(body, e.pipeline(p, src, q.Over, q.Ops, false)...)
		body = append(body, jen.Return(jen.Id(n)))

		return iife(jen.Int(), body...)

	default:
		out := e.fresh("out")
		p := &pipe{acc: out}
		p.sink = func(cur string) []jen.Code {
			return []jen.Code{jen.Id(out).Op("=").Append(jen.Id(out), jen.Id(cur))}
		}

		body := []jen.Code{jen.Id(out).Op(":=").Add(e.empty(q.Shape, q.Type))}
		body = append(body, e.pipeline(p, src, q.Over, q.Ops, true)...)
		body = append(body, jen.Return(jen.Id(out)))

		return iife(e.typ(q.Type), body...)
	}
}

// pipeline renders the loops applying ops to the elements of src. Every
// GroupBy ends a loop: its groups are collected in first-seen key order and
// the remaining operators run over them.
func (e *funcEmitter) pipeline(p *pipe, src *jen.Statement, over *analyze.TypeInfo, ops []*selector.QueryOp, sinks bool) []jen.Code {
	k := -1
	for i, op := range ops {
		if op.Kind == selector.OpGroupBy {
			k = i
			break
		}
	}

	if k < 0 {
		return []jen.Code{e.loop(p, src, over, ops, sinks)}
	}

	g := ops[k]
	key, elem := g.Result.KeyType, g.ParamType

	stage := *p
	stage.keys, stage.groups = e.fresh("keys"), e.fresh("groups")
	groups := e.fresh("grouped")
	each := e.fresh("key")

	out := []jen.Code{
		jen.Var().Id(stage.keys).Index().Add(e.typ(key)),
		jen.Id(stage.groups).Op(":=").Map(e.typ(key)).Index().Add(e.typ(elem)).Values(),
		e.loop(&stage, src, over, ops[:k+1], false),
		jen.Id(groups).Op(":=").Make(jen.Index().Add(e.typ(g.Result)), jen.Lit(0), jen.Len(jen.Id(stage.keys))),
		jen.For(jen.List(jen.Id("_"), jen.Id(each)).Op(":=").Range().Id(stage.keys)).Block(
			jen.Id(groups).Op("=").Append(jen.Id(groups), e.typ(g.Result).Values(
				jen.Id("Key").Op(":").Id(each),
				jen.Id("Items").Op(":").Id(stage.groups).Index(jen.Id(each)),
			)),
		),
	}

	return append(out, e.pipeline(p, jen.Id(groups), analyze.NewSlice(g.Result), ops[k+1:], sinks)...)
}

// loop renders one range loop over src running ops and then the sink.
func (e *funcEmitter) loop(p *pipe, src *jen.Statement, over *analyze.TypeInfo, ops []*selector.QueryOp, sinks bool) jen.Code {
	v := ""
	if len(ops) > 0 && ops[0].Body != nil && e.mentions(ops[0].Body, ops[0].Param) {
		v = ops[0].Param
	} else if e.consumed(ops, sinks) {
		v = e.fresh("v")
	}

	if over != nil && over.Kind == analyze.TypeKindGroup {
		src = src.Dot("Items")
	}

	body := e.steps(p, ops, v, map[string]bool{}, sinks)

	switch {
	case v == "":
		return jen.For(jen.Range().Add(src)).Block(body...)
	case over != nil && over.Collection() != nil && over.Collection().Kind == analyze.TypeKindSeq:
		return jen.For(jen.Id(v).Op(":=").Range().Add(src)).Block(body...)
	default:
		return jen.For(jen.List(jen.Id("_"), jen.Id(v)).Op(":=").Range().Add(src)).Block(body...)
	}
}

// steps renders ops applied to the element held in cur. A lambda parameter
// naming the element is declared when its body uses it; redeclaring a name
// opens a new block.
func (e *funcEmitter) steps(p *pipe, ops []*selector.QueryOp, cur string, declared map[string]bool, sinks bool) []jen.Code {
	if len(ops) == 0 {
		if sinks && p.sink != nil {
			return p.sink(cur)
		}

		return nil
	}

	op, rest := ops[0], ops[1:]

	if op.Body != nil && op.Param != cur && e.mentions(op.Body, op.Param) {
		if declared[op.Param] {
			return []jen.Code{jen.Block(e.steps(p, ops, cur, map[string]bool{}, sinks)...)}
		}

		declared[op.Param] = true
		bind := jen.Id(op.Param).Op(":=").Id(cur)

		return append([]jen.Code{bind}, e.steps(p, ops, op.Param, declared, sinks)...)
	}

	switch op.Kind {
	case selector.OpWhere:
		skip := jen.If(jen.Op("!").Parens(e.expr(op.Body))).Block(jen.Continue())
		return append([]jen.Code{skip}, e.steps(p, rest, cur, declared, sinks)...)

	case selector.OpSelect:
		if !e.consumed(rest, sinks) {
			return e.steps(p, rest, cur, declared, sinks)
		}

		name := e.fresh("s")
		declared[name] = true
		sel := jen.Id(name).Op(":=").Add(e.value(op.Body, op.Result))

		return append([]jen.Code{sel}, e.steps(p, rest, name, declared, sinks)...)

	case selector.OpGroupBy:
		k := e.fresh("k")
		seen := e.fresh("seen")

		return []jen.Code{
			jen.Id(k).Op(":=").Add(e.value(op.Body, op.Result.KeyType)),
			jen.If(jen.List(jen.Id("_"), jen.Id(seen)).Op(":=").Id(p.groups).Index(jen.Id(k)), jen.Op("!").Id(seen)).Block(
				jen.Id(p.keys).Op("=").Append(jen.Id(p.keys), jen.Id(k)),
			),
			jen.Id(p.groups).Index(jen.Id(k)).Op("=").Append(jen.Id(p.groups).Index(jen.Id(k)), jen.Id(cur)),
		}

	case selector.OpCount:
		inc := jen.Id(p.acc).Op("++")
		if op.Body == nil {
			return []jen.Code{inc}
		}

		return []jen.Code{jen.If(e.expr(op.Body)).Block(inc)}

	case selector.OpAny:
		found := jen.Return(jen.True())
		if op.Body == nil {
			return []jen.Code{found}
		}

		return []jen.Code{jen.If(e.expr(op.Body)).Block(found)}
	}

	return nil
}

// value renders an operator body producing t; anonymous records take t as
// their type.
func (e *funcEmitter) value(body selector.Expr, t *analyze.TypeInfo) *jen.Statement {
	if n, ok := body.(*selector.New); ok && n.Key == "" {
		return e.keyRecord(n, t)
	}

	return e.expr(body)
}

// consumed reports whether the element flowing into ops is read by them or
// by the sink.
func (e *funcEmitter) consumed(ops []*selector.QueryOp, sinks bool) bool {
	if len(ops) == 0 {
		return sinks
	}

	op := ops[0]
	uses := op.Body != nil && e.mentions(op.Body, op.Param)

	switch op.Kind {
	case selector.OpWhere:
		return uses || e.consumed(ops[1:], sinks)
	case selector.OpGroupBy:
		return true
	default:
		return uses
	}
}

// mentions reports whether name occurs free in x, including in the members
// of nested records built by x.
func (e *funcEmitter) mentions(x selector.Expr, name string) bool {
	for _, id := range selector.FreeIdents(x) {
		if id.Name == name {
			return true
		}
	}

	found := false
	selector.Inspect(x, func(n selector.Expr) bool {
		rec, ok := n.(*selector.New)
		if !ok || rec.Key == "" {
			return !found
		}

		if s := e.byPath[rec.Key]; s != nil {
			for _, f := range s.Fields {
				found = found || e.mentions(f.Value, name)
			}
		}

		return false
	})

	return found
}
