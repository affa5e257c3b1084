package resolve

import (
	"projgen/internal/analyze"
	"projgen/internal/common"
	"projgen/internal/diagnostic"
	"projgen/internal/fieldmodel"
	"projgen/internal/match"
	"projgen/internal/selector"
)

// untypedNil is the type of the null literal until context gives it one.
var untypedNil = &analyze.TypeInfo{Kind: analyze.TypeKindUnknown}

// expr resolves x and returns its resolved form and type. The type is nil
// when x could not be resolved; the problem has been reported.
func (r *resolver) expr(x selector.Expr) (selector.Expr, *analyze.TypeInfo) {
	out, t := r.resolveExpr(x)
	if out != nil && t != nil {
		r.info.Types[out] = t
	}

	return out, t
}

func (r *resolver) resolveExpr(x selector.Expr) (selector.Expr, *analyze.TypeInfo) {
	switch x := x.(type) {
	case *selector.Ident:
		return r.ident(x)
	case *selector.Literal:
		return x, literalType(x)
	case *selector.Member:
		return r.member(x)
	case *selector.Call:
		return r.call(x)
	case *selector.Index:
		return r.index(x)
	case *selector.Unary:
		return r.unary(x)
	case *selector.Binary:
		if x.Op == selector.QQ {
			return r.coalesce(x)
		}

		return r.binary(x)
	case *selector.Cond:
		return r.cond(x)
	case *selector.New:
		return r.record(x)
	case *selector.Lambda:
		r.errorf(diagnostic.CodeUnsupported, "lambda %s is only allowed as a query operator argument", selector.String(x))
		return x, nil
	default:
		r.errorf(diagnostic.CodeUnsupported, "unsupported expression %s", selector.String(x))
		return x, nil
	}
}

func literalType(x *selector.Literal) *analyze.TypeInfo {
	switch x.Kind {
	case selector.LitInt:
		return analyze.Int
	case selector.LitFloat:
		return analyze.Float64
	case selector.LitString:
		return analyze.String
	case selector.LitChar:
		return analyze.Rune
	case selector.LitBool:
		return analyze.Bool
	default:
		return untypedNil
	}
}

func (r *resolver) ident(x *selector.Ident) (selector.Expr, *analyze.TypeInfo) {
	b := r.lookup(x.Name)
	r.info.Uses[x] = b

	if b.Object != nil {
		r.info.Objects[x] = b.Object
	}

	if !b.IsValue() {
		r.errorf(diagnostic.CodeUnsupported, "%s %s is not a value", b.Kind, x.Name)
		return x, nil
	}

	return x, b.Type
}

// pkgQualifier returns the package x names when x is an identifier bound
// to a package qualifier.
func (r *resolver) pkgQualifier(x selector.Expr) *analyze.PackageInfo {
	id, ok := x.(*selector.Ident)
	if !ok {
		return nil
	}

	b := r.lookup(id.Name)
	if b.Kind != BindPackage {
		return nil
	}

	r.info.Uses[id] = b

	return b.Package
}

// qualified resolves pkg.Name to a package-level declaration.
func (r *resolver) qualified(x *selector.Member, pkg *analyze.PackageInfo) (*selector.Member, *analyze.ObjectInfo) {
	out := *x

	obj := pkg.Objects[x.Name]
	if obj == nil {
		r.unresolved(x.Name, common.SortedKeys(pkg.Objects), "package %s has no declaration %s", pkg.Name, x.Name)
		return &out, nil
	}

	if !common.IsExported(obj.Name) && obj.PkgPath != r.cfg.OutputPackage {
		r.errorf(diagnostic.CodeUnresolved, "%s.%s is not exported", pkg.Name, x.Name)
		return &out, nil
	}

	r.info.Objects[&out] = obj

	return &out, obj
}

func (r *resolver) member(x *selector.Member) (selector.Expr, *analyze.TypeInfo) {
	return r.memberOf(x, false)
}

// memberOf resolves x. keyOperand is set when x is itself the operand of
// a member access, where an anonymous grouping key may be drilled into.
func (r *resolver) memberOf(x *selector.Member, keyOperand bool) (selector.Expr, *analyze.TypeInfo) {
	if pkg := r.pkgQualifier(x.X); pkg != nil {
		out, obj := r.qualified(x, pkg)
		if obj == nil {
			return out, nil
		}

		if b := objectBinding(obj); !b.IsValue() {
			r.errorf(diagnostic.CodeUnsupported, "%s %s.%s is not a value", b.Kind, pkg.Name, x.Name)
			return out, nil
		}

		return out, obj.Type
	}

	nx, xt := r.operand(x.X)
	out := &selector.Member{X: nx, Dot: x.Dot, Name: x.Name, Optional: x.Optional}

	if xt == nil {
		return out, nil
	}

	if xt.Kind == analyze.TypeKindGroup {
		if x.Name != "Key" {
			r.unresolved(x.Name, []string{"Key"}, "a group has no member %s", x.Name)
			return out, nil
		}

		if r.anonKeys[xt.KeyType] && !keyOperand {
			r.diags.Add(diagnostic.AmbiguousGroupKey(r.cfg.Location, r.path))
		}

		return out, xt.KeyType
	}

	f := xt.Field(x.Name)
	if f == nil {
		if xt.Method(x.Name) != nil {
			r.errorf(diagnostic.CodeUnsupported, "method %s must be called", x.Name)
			return out, nil
		}

		r.unresolved(x.Name, xt.MemberNames(), "%s has no member %s", xt, x.Name)

		return out, nil
	}

	if !f.Exported && xt.Deref().ID.PkgPath != r.cfg.OutputPackage {
		r.errorf(diagnostic.CodeUnresolved, "member %s of %s is not exported", x.Name, xt)
		return out, nil
	}

	return out, f.Type
}

// operand resolves the operand of a member access.
func (r *resolver) operand(x selector.Expr) (selector.Expr, *analyze.TypeInfo) {
	m, ok := x.(*selector.Member)
	if !ok {
		return r.expr(x)
	}

	out, t := r.memberOf(m, true)
	if out != nil && t != nil {
		r.info.Types[out] = t
	}

	return out, t
}

func (r *resolver) call(x *selector.Call) (selector.Expr, *analyze.TypeInfo) {
	switch fun := x.Fun.(type) {
	case *selector.Ident:
		b := r.lookup(fun.Name)
		r.info.Uses[fun] = b

		switch b.Kind {
		case BindBuiltin:
			return r.builtin(x, fun)
		case BindFunc:
			r.info.Objects[fun] = b.Object
			return r.funcCall(x, fun, b.Object)
		default:
			r.errorf(diagnostic.CodeUnsupported, "%s %s cannot be called", b.Kind, fun.Name)
			return x, nil
		}

	case *selector.Member:
		if pkg := r.pkgQualifier(fun.X); pkg != nil {
			m, obj := r.qualified(fun, pkg)
			if obj == nil {
				return &selector.Call{Fun: m, Lparen: x.Lparen, Args: x.Args}, nil
			}

			if obj.Kind != analyze.ObjectFunc {
				r.errorf(diagnostic.CodeUnsupported, "%s %s.%s cannot be called", obj.Kind, pkg.Name, fun.Name)
				return &selector.Call{Fun: m, Lparen: x.Lparen, Args: x.Args}, nil
			}

			return r.funcCall(x, m, obj)
		}

		nx, xt := r.expr(fun.X)
		if xt != nil && isQueryOp(fun.Name) && isQueryable(nx, xt) {
			return r.query(x, fun, nx, xt)
		}

		return r.methodCall(x, fun, nx, xt)

	default:
		r.errorf(diagnostic.CodeUnsupported, "%s cannot be called", selector.String(x.Fun))
		return x, nil
	}
}

func (r *resolver) args(args []selector.Expr) ([]selector.Expr, bool) {
	out := make([]selector.Expr, len(args))
	ok := true

	for i, a := range args {
		var t *analyze.TypeInfo

		out[i], t = r.expr(a)
		ok = ok && t != nil
	}

	return out, ok
}

func (r *resolver) funcCall(x *selector.Call, fun selector.Expr, obj *analyze.ObjectInfo) (selector.Expr, *analyze.TypeInfo) {
	args, ok := r.args(x.Args)
	out := &selector.Call{Fun: fun, Lparen: x.Lparen, Args: args}

	switch {
	case !ok:
		return out, nil
	case len(args) != len(obj.Params):
		r.errorf(diagnostic.CodeUnsupported, "%s takes %d arguments, got %d", obj.Name, len(obj.Params), len(args))
		return out, nil
	case obj.Type == nil:
		r.errorf(diagnostic.CodeUnsupported, "%s has no result", obj.Name)
		return out, nil
	}

	return out, obj.Type
}

func (r *resolver) builtin(x *selector.Call, fun *selector.Ident) (selector.Expr, *analyze.TypeInfo) {
	args, ok := r.args(x.Args)
	out := &selector.Call{Fun: fun, Lparen: x.Lparen, Args: args}

	if !ok {
		return out, nil
	}

	if len(args) != 1 {
		r.errorf(diagnostic.CodeUnsupported, "len takes 1 argument, got %d", len(args))
		return out, nil
	}

	t := r.info.Types[args[0]]
	if t.Collection() == nil && t.BasicName() != "string" && t.Kind != analyze.TypeKindMap {
		r.errorf(diagnostic.CodeUnsupported, "invalid argument to len: %s", t)
		return out, nil
	}

	return out, analyze.Int
}

func (r *resolver) methodCall(x *selector.Call, fun *selector.Member, nx selector.Expr, xt *analyze.TypeInfo) (selector.Expr, *analyze.TypeInfo) {
	m := &selector.Member{X: nx, Dot: fun.Dot, Name: fun.Name, Optional: fun.Optional}
	args, ok := r.args(x.Args)
	out := &selector.Call{Fun: m, Lparen: x.Lparen, Args: args}

	if xt == nil || !ok {
		return out, nil
	}

	method := xt.Method(fun.Name)
	if method == nil {
		r.unresolved(fun.Name, xt.MemberNames(), "%s has no method %s", xt, fun.Name)
		return out, nil
	}

	switch {
	case !common.IsExported(method.Name) && xt.Deref().ID.PkgPath != r.cfg.OutputPackage:
		r.errorf(diagnostic.CodeUnresolved, "method %s of %s is not exported", fun.Name, xt)
		return out, nil
	case len(args) != len(method.Params):
		r.errorf(diagnostic.CodeUnsupported, "%s takes %d arguments, got %d", fun.Name, len(method.Params), len(args))
		return out, nil
	case method.Result == nil:
		r.errorf(diagnostic.CodeUnsupported, "method %s has no result", fun.Name)
		return out, nil
	}

	return out, method.Result
}

func (r *resolver) index(x *selector.Index) (selector.Expr, *analyze.TypeInfo) {
	nx, xt := r.expr(x.X)
	ni, it := r.expr(x.Index)
	out := &selector.Index{X: nx, Lbrack: x.Lbrack, Index: ni}

	if xt == nil || it == nil {
		return out, nil
	}

	if c := xt.Collection(); c != nil && c.Kind != analyze.TypeKindSeq {
		return out, c.ElemType
	}

	switch u := underlying(xt); {
	case u.Kind == analyze.TypeKindMap:
		return out, u.ElemType
	case u.BasicName() == "string":
		return out, analyze.Basic("byte")
	}

	r.errorf(diagnostic.CodeUnsupported, "%s cannot be indexed", xt)

	return out, nil
}

func underlying(t *analyze.TypeInfo) *analyze.TypeInfo {
	for t != nil && t.Kind == analyze.TypeKindAlias {
		t = t.Underlying
	}

	return t
}

func (r *resolver) unary(x *selector.Unary) (selector.Expr, *analyze.TypeInfo) {
	nx, xt := r.expr(x.X)
	out := &selector.Unary{OpPos: x.OpPos, Op: x.Op, X: nx}

	if xt == nil {
		return out, nil
	}

	if x.Op == selector.Not {
		if xt.BasicName() != "bool" {
			r.errorf(diagnostic.CodeUnsupported, "operator ! needs a bool, got %s", xt)
			return out, nil
		}

		return out, analyze.Bool
	}

	return out, xt
}

func (r *resolver) binary(x *selector.Binary) (selector.Expr, *analyze.TypeInfo) {
	nx, xt := r.expr(x.X)
	ny, yt := r.expr(x.Y)
	out := &selector.Binary{X: nx, OpPos: x.OpPos, Op: x.Op, Y: ny}

	if xt == nil || yt == nil {
		return out, nil
	}

	switch x.Op {
	case selector.Eq, selector.Ne:
		if (xt == untypedNil && !yt.IsNilable()) || (yt == untypedNil && !xt.IsNilable()) {
			r.errorf(diagnostic.CodeUnsupported, "%s can never be null", selector.String(x))
			return out, nil
		}

		return out, analyze.Bool

	case selector.Lt, selector.Le, selector.Gt, selector.Ge:
		return out, analyze.Bool

	case selector.AndAnd, selector.OrOr:
		if xt.BasicName() != "bool" || yt.BasicName() != "bool" {
			r.errorf(diagnostic.CodeUnsupported, "operator %s needs bool operands", x.Op)
			return out, nil
		}

		return out, analyze.Bool
	}

	numeric := match.IsNumericType(xt) && match.IsNumericType(yt)
	concat := x.Op == selector.Plus && match.IsStringType(xt) && match.IsStringType(yt)
	if !numeric && !concat {
		r.errorf(diagnostic.CodeUnsupported, "operator %s cannot combine %s and %s", x.Op, xt, yt)
		return out, nil
	}

	// Arithmetic takes the type of the operand that is not a literal, so
	// constants adapt as they do in Go.
	if _, lit := nx.(*selector.Literal); lit {
		return out, yt
	}

	return out, xt
}

func (r *resolver) coalesce(x *selector.Binary) (selector.Expr, *analyze.TypeInfo) {
	nx, xt := r.expr(x.X)
	ny, yt := r.expr(x.Y)

	if xt == nil || yt == nil {
		return &selector.Binary{X: nx, OpPos: x.OpPos, Op: x.Op, Y: ny}, nil
	}

	var out *selector.Coalesce

	switch {
	case yt == untypedNil:
		if !xt.IsNilable() && !selector.ContainsOptional(x.X) {
			r.errorf(diagnostic.CodeUnsupported, "%s can never be null", selector.String(x.X))
			return &selector.Binary{X: nx, OpPos: x.OpPos, Op: x.Op, Y: ny}, nil
		}

		// A null fallback keeps the operand as it is.
		return nx, xt
	case isPointer(xt) && !isPointer(yt):
		out = &selector.Coalesce{X: nx, Y: ny, Type: xt.ElemType, Deref: true}
	case xt.IsNilable():
		out = &selector.Coalesce{X: nx, Y: ny, Type: xt}
	case selector.ContainsOptional(x.X):
		// The chain is lifted to a pointer when null-safety is applied.
		out = &selector.Coalesce{X: nx, Y: ny, Type: xt, Deref: true}
	default:
		return nx, xt
	}

	if !fallbackFits(ny, yt, out.Type) {
		r.errorf(diagnostic.CodeUnsupported, "%s cannot fall back to %s of type %s",
			selector.String(x.X), selector.String(x.Y), yt)
		return out, nil
	}

	return out, out.Type
}

// fallbackFits reports whether y, of type yt, can stand in for a value of
// type want. Literals are untyped constants and fit any type of their class.
func fallbackFits(y selector.Expr, yt, want *analyze.TypeInfo) bool {
	if lit, ok := y.(*selector.Literal); ok {
		switch lit.Kind {
		case selector.LitInt, selector.LitChar:
			return match.IsNumericType(want)
		case selector.LitFloat:
			return match.IsNumericType(want) && !match.IsIntegerType(want)
		case selector.LitString:
			return match.IsStringType(want)
		}
	}

	switch match.ScoreTypeCompatibility(yt, want).Compatibility {
	case match.TypeIdentical, match.TypeAssignable:
		return true
	default:
		return false
	}
}

func (r *resolver) cond(x *selector.Cond) (selector.Expr, *analyze.TypeInfo) {
	nc, ct := r.expr(x.Cond)
	nt, tt := r.expr(x.Then)
	ne, et := r.expr(x.Else)
	out := &selector.Cond{Cond: nc, Question: x.Question, Then: nt, Else: ne}

	if ct == nil || tt == nil || et == nil {
		return out, nil
	}

	if ct.BasicName() != "bool" {
		r.errorf(diagnostic.CodeUnsupported, "condition %s is not a bool", selector.String(x.Cond))
		return out, nil
	}

	switch {
	case tt == untypedNil && et == untypedNil:
		r.errorf(diagnostic.CodeUnsupported, "the type of %s cannot be inferred", selector.String(x))
		return out, nil
	case tt == untypedNil:
		out.Type, out.Else = r.nullable(ne, et)
	case et == untypedNil:
		out.Type, out.Then = r.nullable(nt, tt)
	case isPointer(tt) && !isPointer(et) && analyze.SameType(tt.ElemType, et):
		out.Type, out.Else = r.nullable(ne, et)
	case isPointer(et) && !isPointer(tt) && analyze.SameType(et.ElemType, tt):
		out.Type, out.Then = r.nullable(nt, tt)
	default:
		out.Type = tt
	}

	return out, out.Type
}

// nullable returns the type able to hold x or null, lifting x when its
// own type cannot.
func (r *resolver) nullable(x selector.Expr, t *analyze.TypeInfo) (*analyze.TypeInfo, selector.Expr) {
	if t.IsNilable() {
		return t, x
	}

	pt := analyze.NewPointer(t)

	return pt, r.typed(&selector.Lift{X: x, Type: pt}, pt)
}

// record resolves a record construction: a keyed one builds the nested
// structure of that path, an unkeyed one is a grouping key.
func (r *resolver) record(x *selector.New) (selector.Expr, *analyze.TypeInfo) {
	if x.Key == "" {
		return r.anonymousKey(x)
	}

	in, ok := r.nested[x.Key]
	if !ok {
		r.errorf(diagnostic.CodeUnsupported, "record %s belongs to no member", selector.String(x))
		return x, nil
	}

	if r.active[x.Key] {
		r.diags.Add(diagnostic.StructuralConflict(r.cfg.Location, r.path,
			"record "+x.Key+" refers back to its own shape"))

		return x, nil
	}

	s := r.structure(in, r.adopt[x.Key])

	out := &selector.New{NewPos: x.NewPos, Type: x.Type, Key: x.Key}
	for _, f := range s.Fields {
		out.Inits = append(out.Inits, &selector.Init{NamePos: f.Pos, Name: f.Name, Value: f.Value})
	}

	return out, s.Type
}

// anonymousKey types new { ... } used as a grouping key. Such a key has no
// name and so cannot be a member value.
func (r *resolver) anonymousKey(x *selector.New) (selector.Expr, *analyze.TypeInfo) {
	t := &analyze.TypeInfo{Kind: analyze.TypeKindStruct, IsGenerated: true}
	out := &selector.New{NewPos: x.NewPos, Type: x.Type}
	ok := true

	for _, init := range x.Inits {
		name := init.Name
		if name == "" {
			name = fieldmodel.ImpliedName(init.Value)
		}

		value, vt := r.expr(init.Value)
		if name == "" {
			r.errorf(diagnostic.CodeUnsupported, "grouping key member %s needs a name", selector.String(init.Value))
			ok = false

			continue
		}

		ok = ok && vt != nil
		if vt == untypedNil {
			r.errorf(diagnostic.CodeUnsupported, "the type of grouping key member %s cannot be inferred", name)
			ok = false

			continue
		}

		out.Inits = append(out.Inits, &selector.Init{NamePos: init.NamePos, Name: name, Value: value})
		t.Fields = append(t.Fields, analyze.FieldInfo{
			Name:     name,
			Exported: common.IsExported(name),
			Type:     vt,
			Index:    len(t.Fields),
		})
	}

	if !ok {
		return out, nil
	}

	r.anonKeys[t] = true

	return out, t
}
