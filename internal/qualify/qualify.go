package qualify

import (
	"slices"

	"projgen/internal/analyze"
	"projgen/internal/capture"
	"projgen/internal/resolve"
	"projgen/internal/selector"
	"projgen/internal/structure"
)

// Apply returns a copy of root in which functions, constants and enum
// members are selector.Qualified nodes and captured package variables are
// plain identifiers naming their capture parameter. Records of an existing
// type get the type qualified. root is not modified.
func Apply(root *structure.Structure, info *resolve.Info, captures []capture.Reference) *structure.Structure {
	q := &qualifier{info: info, captured: make(map[*analyze.ObjectInfo]string)}
	for _, c := range captures {
		if c.Object != nil {
			q.captured[c.Object] = c.Name
		}
	}

	return q.structure(root)
}

type qualifier struct {
	info     *resolve.Info
	captured map[*analyze.ObjectInfo]string
	targets  map[string]*analyze.TypeInfo
}

func (q *qualifier) structure(in *structure.Structure) *structure.Structure {
	if q.targets == nil {
		q.targets = make(map[string]*analyze.TypeInfo)
		in.Walk(func(s *structure.Structure) {
			if s.Target != nil {
				q.targets[s.Path] = s.Target
			}
		})
	}

	s := *in
	s.Fields = slices.Clone(in.Fields)

	for i := range s.Fields {
		f := &s.Fields[i]
		if f.Nested != nil {
			f.Nested = q.structure(f.Nested)
		}

		f.Value = selector.Rewrite(f.Value, q.visit)
	}

	return &s
}

func (q *qualifier) visit(e selector.Expr) (selector.Expr, bool) {
	switch e := e.(type) {
	case *selector.New:
		if e.Key == "" {
			return nil, false
		}

		t := q.targets[e.Key]
		if t == nil || !t.IsNamed() {
			return e, true
		}

		out := *e
		out.Type = &selector.Qualified{NamePos: e.NewPos, PkgPath: t.ID.PkgPath, Name: t.ID.Name}

		return &out, true

	case *selector.Ident:
		if obj := q.info.Objects[e]; obj != nil {
			return q.object(e.NamePos, obj), true
		}

	case *selector.Member:
		if obj := q.info.Objects[e]; obj != nil {
			return q.object(e.Dot, obj), true
		}
	}

	return nil, false
}

func (q *qualifier) object(pos selector.Pos, obj *analyze.ObjectInfo) selector.Expr {
	if name, ok := q.captured[obj]; ok {
		return &selector.Ident{NamePos: pos, Name: name}
	}

	return &selector.Qualified{NamePos: pos, PkgPath: obj.PkgPath, Name: obj.Name}
}
