package resolve

import (
	"slices"

	"projgen/internal/analyze"
	"projgen/internal/diagnostic"
	"projgen/internal/selector"
)

var queryOps = map[string]bool{
	"Where":   true,
	"Select":  true,
	"GroupBy": true,
	"Count":   true,
	"Any":     true,
	"ToList":  true,
	"ToArray": true,
}

func isQueryOp(name string) bool {
	return queryOps[name]
}

// isQueryable reports whether collection operators apply to x.
func isQueryable(x selector.Expr, t *analyze.TypeInfo) bool {
	if q, ok := x.(*selector.Query); ok && q.Shape == selector.ShapeSeq {
		return true
	}

	return elemOf(t) != nil
}

// elemOf returns the element type of a collection or group, or nil.
func elemOf(t *analyze.TypeInfo) *analyze.TypeInfo {
	if c := t.Collection(); c != nil {
		return c.ElemType
	}

	if t != nil && t.Kind == analyze.TypeKindGroup {
		return t.ElemType
	}

	return nil
}

// query appends the operator fun names to the query src is, or starts a
// new query over src. Without a terminal operator the query stays a lazy
// sequence.
func (r *resolver) query(x *selector.Call, fun *selector.Member, src selector.Expr, srcType *analyze.TypeInfo) (selector.Expr, *analyze.TypeInfo) {
	var q *selector.Query
	if prev, ok := src.(*selector.Query); ok && prev.Shape == selector.ShapeSeq {
		c := *prev
		c.Ops = slices.Clone(prev.Ops)
		q = &c
	} else {
		q = &selector.Query{Source: src, Over: srcType, Elem: elemOf(srcType), Shape: selector.ShapeSeq}
	}

	elem := q.Elem
	if n := len(q.Ops); n > 0 {
		elem = q.Ops[n-1].Result
	}

	switch fun.Name {
	case "ToList", "ToArray":
		if len(x.Args) != 0 {
			r.errorf(diagnostic.CodeUnsupported, "%s takes no arguments", fun.Name)
			return q, nil
		}

		q.Shape = selector.ShapeList
		if fun.Name == "ToArray" {
			q.Shape = selector.ShapeArray
		}

		q.Type = analyze.NewSlice(elem)

		return q, q.Type

	case "Count", "Any":
		op := &selector.QueryOp{OpPos: fun.Dot, Kind: selector.OpCount, ParamType: elem, Result: elem}
		q.Type = analyze.Int
		if fun.Name == "Any" {
			op.Kind = selector.OpAny
			q.Type = analyze.Bool
		}

		if len(x.Args) > 0 {
			param, body, bt := r.lambda(fun.Name, x.Args, elem)
			if bt == nil {
				return q, nil
			}

			if bt.BasicName() != "bool" {
				r.errorf(diagnostic.CodeUnsupported, "%s predicate must be a bool, got %s", fun.Name, bt)
				return q, nil
			}

			op.Param, op.Body = param, body
		}

		q.Ops = append(q.Ops, op)
		q.Shape = selector.ShapeScalar

		return q, q.Type
	}

	param, body, bt := r.lambda(fun.Name, x.Args, elem)
	if bt == nil {
		return q, nil
	}

	op := &selector.QueryOp{OpPos: fun.Dot, Param: param, ParamType: elem, Body: body}

	switch fun.Name {
	case "Where":
		if bt.BasicName() != "bool" {
			r.errorf(diagnostic.CodeUnsupported, "Where predicate must be a bool, got %s", bt)
			return q, nil
		}

		op.Kind, op.Result = selector.OpWhere, elem

	case "Select":
		if bt == untypedNil {
			r.errorf(diagnostic.CodeUnsupported, "the element type of %s cannot be inferred", selector.String(x))
			return q, nil
		}

		op.Kind, op.Result = selector.OpSelect, bt

	case "GroupBy":
		op.Kind, op.Result = selector.OpGroupBy, analyze.NewGroup(bt, elem)
	}

	q.Ops = append(q.Ops, op)
	q.Type = analyze.NewSeq(op.Result)

	return q, q.Type
}

// lambda resolves the single lambda argument of a query operator with its
// parameter bound to elem.
func (r *resolver) lambda(op string, args []selector.Expr, elem *analyze.TypeInfo) (string, selector.Expr, *analyze.TypeInfo) {
	if len(args) != 1 {
		r.errorf(diagnostic.CodeUnsupported, "%s takes one lambda argument, got %d arguments", op, len(args))
		return "", nil, nil
	}

	lam, ok := args[0].(*selector.Lambda)
	if !ok {
		r.errorf(diagnostic.CodeUnsupported, "%s takes a lambda, got %s", op, selector.String(args[0]))
		return "", nil, nil
	}

	r.push(lam.Param, elem)
	body, bt := r.expr(lam.Body)
	r.pop()

	return lam.Param, body, bt
}
