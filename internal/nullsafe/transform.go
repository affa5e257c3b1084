package nullsafe

import (
	"slices"

	"projgen/internal/analyze"
	"projgen/internal/resolve"
	"projgen/internal/selector"
	"projgen/internal/structure"
)

// Options tune the values guards fall back to.
type Options struct {
	// EmptyCollections makes a guarded collection built by a per-element
	// nested projection fall back to an empty collection instead of nil.
	EmptyCollections bool
}

// Apply returns a copy of root whose member values, nested structures
// included, carry no optional access. root is not modified.
func Apply(root *structure.Structure, info *resolve.Info, opts Options) *structure.Structure {
	t := &transformer{info: info, opts: opts}
	return t.structure(root)
}

type transformer struct {
	info *resolve.Info
	opts Options
}

func (t *transformer) structure(in *structure.Structure) *structure.Structure {
	s := *in
	s.Fields = slices.Clone(in.Fields)

	for i := range s.Fields {
		f := &s.Fields[i]
		if f.Nested != nil {
			f.Nested = t.structure(f.Nested)
		}

		f.Value = t.value(f)
	}

	return &s
}

// value rewrites a member's whole value. A nullable member of a value type
// receives a pointer.
func (t *transformer) value(f *structure.Field) selector.Expr {
	want := f.GoType()

	out, typ := t.top(f.Value, want)
	if isPointer(want) && typ != nil && !typ.IsNilable() {
		return &selector.Lift{X: out, Type: want}
	}

	return out
}

// top rewrites x where its result is assigned to a want-typed destination.
func (t *transformer) top(x selector.Expr, want *analyze.TypeInfo) (selector.Expr, *analyze.TypeInfo) {
	if isLink(x) && hasOptional(x) {
		g := t.guard(x, want)
		return g, typeOfGuard(g)
	}

	return t.rewrite(x), t.info.TypeOf(x)
}

func (t *transformer) rewrite(x selector.Expr) selector.Expr {
	return selector.Rewrite(x, t.visit)
}

func (t *transformer) visit(e selector.Expr) (selector.Expr, bool) {
	switch e := e.(type) {
	case *selector.New:
		// Keyed records are rewritten with their own structure.
		if e.Key != "" {
			return e, true
		}
	case *selector.Coalesce:
		return t.coalesce(e), true
	case *selector.Lift:
		if isLink(e.X) && hasOptional(e.X) && !t.info.TypeOf(e.X).IsNilable() {
			return t.guard(e.X, e.Type), true
		}
	case *selector.Member, *selector.Call, *selector.Index, *selector.Query:
		if hasOptional(e) {
			return t.guard(e, nil), true
		}
	}

	return nil, false
}

// coalesce makes the left operand of ?? a pointer when it is an optional
// chain of a value type, so a missing value can reach the right operand.
func (t *transformer) coalesce(c *selector.Coalesce) selector.Expr {
	out := *c

	if c.Deref && !isPointer(t.info.TypeOf(c.X)) {
		out.X, _ = t.top(c.X, analyze.NewPointer(c.Type))
	} else {
		out.X = t.rewrite(c.X)
	}

	out.Y = t.rewrite(c.Y)

	return &out
}

// guard rewrites the maximal chain x. want is the type the chain is
// assigned to, nil inside a larger expression.
func (t *transformer) guard(x selector.Expr, want *analyze.TypeInfo) selector.Expr {
	var checks []selector.Expr

	value := t.unchain(x, &checks)
	typ := t.info.TypeOf(x)

	lift := isPointer(want) && typ != nil && !typ.IsNilable()
	if lift {
		value = &selector.Lift{X: value, Type: want}
		typ = want
	}

	if len(checks) == 0 {
		return value
	}

	g := &selector.Guard{Checks: checks, Value: value, Type: typ}

	switch {
	case t.emptyCollection(x):
		q := x.(*selector.Query)
		g.Fallback = selector.Fallback{Kind: selector.FallbackEmptyCollection, Type: typ, Shape: q.Shape}
	case want != nil && !lift:
		g.Fallback = zero(want)
	default:
		g.Fallback = zero(typ)
	}

	return g
}

// unchain returns x with every optional access made plain, appending the
// operands that must be non-nil to checks, innermost first.
func (t *transformer) unchain(x selector.Expr, checks *[]selector.Expr) selector.Expr {
	if !hasOptional(x) {
		return t.rewrite(x)
	}

	switch x := x.(type) {
	case *selector.Member:
		inner := t.unchain(x.X, checks)
		if x.Optional && t.info.TypeOf(x.X).IsNilable() {
			*checks = append(*checks, inner)
		}

		return &selector.Member{X: inner, Dot: x.Dot, Name: x.Name}

	case *selector.Call:
		out := *x
		out.Fun = t.unchain(x.Fun, checks)
		out.Args = make([]selector.Expr, len(x.Args))
		for i, a := range x.Args {
			out.Args[i] = t.rewrite(a)
		}

		return &out

	case *selector.Index:
		out := *x
		out.X = t.unchain(x.X, checks)
		out.Index = t.rewrite(x.Index)

		return &out

	case *selector.Query:
		out := *x
		out.Source = t.unchain(x.Source, checks)
		out.Ops = make([]*selector.QueryOp, len(x.Ops))
		for i, op := range x.Ops {
			cop := *op
			cop.Body = t.rewrite(op.Body)
			out.Ops[i] = &cop
		}

		return &out

	default:
		return t.rewrite(x)
	}
}

// emptyCollection reports whether a guarded x falls back to an empty
// collection: x builds a collection with a per-element nested projection.
func (t *transformer) emptyCollection(x selector.Expr) bool {
	if !t.opts.EmptyCollections {
		return false
	}

	q, ok := x.(*selector.Query)
	if !ok || q.Shape == selector.ShapeScalar || len(q.Ops) == 0 {
		return false
	}

	last := q.Ops[len(q.Ops)-1]
	n, ok := last.Body.(*selector.New)

	return ok && last.Kind == selector.OpSelect && n.Key != ""
}

// zero returns the fallback holding the zero value of typ.
func zero(typ *analyze.TypeInfo) selector.Fallback {
	f := selector.Fallback{Kind: selector.FallbackZero, Type: typ}

	switch {
	case typ.IsNilable():
		f.Kind = selector.FallbackNil
	case typ.BasicName() == "bool":
		f.Kind = selector.FallbackFalse
	case typ.BasicName() == "rune" || typ.BasicName() == "int32":
		f.Kind = selector.FallbackNullChar
	case typ.BasicName() == "string":
		f.Kind = selector.FallbackEmptyText
	}

	return f
}

// isLink reports whether x is a postfix operation continuing a chain.
func isLink(x selector.Expr) bool {
	switch x.(type) {
	case *selector.Member, *selector.Call, *selector.Index, *selector.Query:
		return true
	default:
		return false
	}
}

// hasOptional reports whether the chain ending in x has an optional access.
func hasOptional(x selector.Expr) bool {
	switch x := x.(type) {
	case *selector.Member:
		return x.Optional || hasOptional(x.X)
	case *selector.Call:
		return hasOptional(x.Fun)
	case *selector.Index:
		return hasOptional(x.X)
	case *selector.Query:
		return hasOptional(x.Source)
	default:
		return false
	}
}

func typeOfGuard(x selector.Expr) *analyze.TypeInfo {
	switch x := x.(type) {
	case *selector.Guard:
		return x.Type
	case *selector.Lift:
		return x.Type
	default:
		return nil
	}
}

func isPointer(t *analyze.TypeInfo) bool {
	return t != nil && t.Kind == analyze.TypeKindPointer
}
