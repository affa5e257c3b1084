package selector

// Inspect traverses x depth-first, calling f for each node. Children of a
// node are skipped when f returns false.
func Inspect(x Expr, f func(Expr) bool) {
	if x == nil || !f(x) {
		return
	}

	for _, c := range children(x) {
		Inspect(c, f)
	}
}

func children(x Expr) []Expr {
	switch x := x.(type) {
	case *Member:
		return []Expr{x.X}
	case *Call:
		return append([]Expr{x.Fun}, x.Args...)
	case *Index:
		return []Expr{x.X, x.Index}
	case *Unary:
		return []Expr{x.X}
	case *Binary:
		return []Expr{x.X, x.Y}
	case *Cond:
		return []Expr{x.Cond, x.Then, x.Else}
	case *Lambda:
		return []Expr{x.Body}
	case *New:
		out := make([]Expr, 0, len(x.Inits))
		for _, init := range x.Inits {
			out = append(out, init.Value)
		}
		return out
	case *Query:
		out := []Expr{x.Source}
		for _, op := range x.Ops {
			if op.Body != nil {
				out = append(out, op.Body)
			}
		}
		return out
	case *Guard:
		return append(append([]Expr{}, x.Checks...), x.Value)
	case *Coalesce:
		return []Expr{x.X, x.Y}
	case *Lift:
		return []Expr{x.X}
	case *Unwrap:
		return []Expr{x.X}
	default:
		return nil
	}
}

// Rewrite returns x with every node for which f reports a replacement
// substituted. Replaced subtrees are not descended into. Nodes whose
// children are unchanged are returned as is, and changed nodes are copied,
// so x is never modified.
func Rewrite(x Expr, f func(Expr) (Expr, bool)) Expr {
	if x == nil {
		return nil
	}

	if repl, ok := f(x); ok {
		return repl
	}

	rw := func(e Expr) Expr { return Rewrite(e, f) }

	switch x := x.(type) {
	case *Member:
		if nx := rw(x.X); nx != x.X {
			c := *x
			c.X = nx
			return &c
		}
	case *Call:
		fun, args := rw(x.Fun), rewriteAll(x.Args, rw)
		if fun != x.Fun || !sameExprs(args, x.Args) {
			c := *x
			c.Fun, c.Args = fun, args
			return &c
		}
	case *Index:
		nx, ni := rw(x.X), rw(x.Index)
		if nx != x.X || ni != x.Index {
			c := *x
			c.X, c.Index = nx, ni
			return &c
		}
	case *Unary:
		if nx := rw(x.X); nx != x.X {
			c := *x
			c.X = nx
			return &c
		}
	case *Binary:
		nx, ny := rw(x.X), rw(x.Y)
		if nx != x.X || ny != x.Y {
			c := *x
			c.X, c.Y = nx, ny
			return &c
		}
	case *Cond:
		nc, nt, ne := rw(x.Cond), rw(x.Then), rw(x.Else)
		if nc != x.Cond || nt != x.Then || ne != x.Else {
			c := *x
			c.Cond, c.Then, c.Else = nc, nt, ne
			return &c
		}
	case *Lambda:
		if nb := rw(x.Body); nb != x.Body {
			c := *x
			c.Body = nb
			return &c
		}
	case *New:
		changed := false
		inits := make([]*Init, len(x.Inits))
		for i, init := range x.Inits {
			inits[i] = init
			if nv := rw(init.Value); nv != init.Value {
				ci := *init
				ci.Value = nv
				inits[i] = &ci
				changed = true
			}
		}
		if changed {
			c := *x
			c.Inits = inits
			return &c
		}
	case *Query:
		changed := false
		src := rw(x.Source)
		ops := make([]*QueryOp, len(x.Ops))
		for i, op := range x.Ops {
			ops[i] = op
			if nb := rw(op.Body); nb != op.Body {
				cop := *op
				cop.Body = nb
				ops[i] = &cop
				changed = true
			}
		}
		if changed || src != x.Source {
			c := *x
			c.Source, c.Ops = src, ops
			return &c
		}
	case *Guard:
		checks, value := rewriteAll(x.Checks, rw), rw(x.Value)
		if value != x.Value || !sameExprs(checks, x.Checks) {
			c := *x
			c.Checks, c.Value = checks, value
			return &c
		}
	case *Coalesce:
		nx, ny := rw(x.X), rw(x.Y)
		if nx != x.X || ny != x.Y {
			c := *x
			c.X, c.Y = nx, ny
			return &c
		}
	case *Lift:
		if nx := rw(x.X); nx != x.X {
			c := *x
			c.X = nx
			return &c
		}
	case *Unwrap:
		if nx := rw(x.X); nx != x.X {
			c := *x
			c.X = nx
			return &c
		}
	}

	return x
}

func rewriteAll(xs []Expr, rw func(Expr) Expr) []Expr {
	if xs == nil {
		return nil
	}

	out := make([]Expr, len(xs))
	for i, x := range xs {
		out[i] = rw(x)
	}

	return out
}

func sameExprs(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

// ContainsOptional reports whether x contains an optional member access
// outside of any lambda body and any keyed nested record.
func ContainsOptional(x Expr) bool {
	found := false
	Inspect(x, func(e Expr) bool {
		switch e := e.(type) {
		case *Lambda:
			return false
		case *New:
			if e.Key != "" {
				return false
			}
		case *Query:
			// Only the source is outside lambdas.
			found = found || ContainsOptional(e.Source)
			return false
		case *Member:
			if e.Optional {
				found = true
			}
		}

		return !found
	})

	return found
}

// FreeIdents returns the identifiers in x that are not bound by an
// enclosing lambda or query operator, in order of first appearance.
func FreeIdents(x Expr) []*Ident {
	var out []*Ident
	collectFree(x, map[string]int{}, &out)

	return out
}

func collectFree(x Expr, bound map[string]int, out *[]*Ident) {
	switch x := x.(type) {
	case nil:
	case *Ident:
		if bound[x.Name] == 0 {
			*out = append(*out, x)
		}
	case *Lambda:
		bound[x.Param]++
		collectFree(x.Body, bound, out)
		bound[x.Param]--
	case *Query:
		collectFree(x.Source, bound, out)
		for _, op := range x.Ops {
			if op.Body == nil {
				continue
			}
			bound[op.Param]++
			collectFree(op.Body, bound, out)
			bound[op.Param]--
		}
	case *New:
		// The record type name is not a value reference.
		for _, init := range x.Inits {
			collectFree(init.Value, bound, out)
		}
	case *Member:
		// Only the operand can be free; the selector is a member name.
		collectFree(x.X, bound, out)
	default:
		for _, c := range children(x) {
			collectFree(c, bound, out)
		}
	}
}
