package fieldmodel

import (
	"fmt"

	"projgen/internal/analyze"
	"projgen/internal/diagnostic"
	"projgen/internal/selector"
	"projgen/internal/structure"
)

// Parse builds the unresolved field model of a selection. The returned
// structure is nil when the body does not construct a record.
func Parse(lam *selector.Lambda, location, hint string) (*structure.Structure, diagnostic.Diagnostics) {
	p := &parser{location: location}

	n, ok := lam.Body.(*selector.New)
	if !ok {
		p.diags.AddError(diagnostic.CodeUnsupported,
			fmt.Sprintf("selection body %s does not construct a record", selector.String(lam.Body)),
			location, "")

		return nil, p.diags
	}

	root, _ := p.structure(n, "", analyze.NewTypePath(rootName(hint)))
	root.HintName = hint

	return root, p.diags
}

func rootName(hint string) string {
	if hint == "" {
		return "selection"
	}

	return hint
}

type parser struct {
	location string
	diags    diagnostic.Diagnostics
}

// structure builds the structure for n and returns it with a copy of n
// whose key and initializer values are set.
func (p *parser) structure(n *selector.New, key string, path *analyze.TypePath) (*structure.Structure, *selector.New) {
	s := &structure.Structure{Path: key}
	if n.Type != nil {
		s.TypeName = selector.String(n.Type)
	}

	out := &selector.New{NewPos: n.NewPos, Type: n.Type, Key: key}

	for _, init := range n.Inits {
		name := init.Name
		if name == "" {
			name = ImpliedName(init.Value)
		}

		if name == "" {
			p.diags.AddInfo(diagnostic.CodeSkippedField,
				fmt.Sprintf("no member name can be derived from %s; name it explicitly to project it", selector.String(init.Value)),
				p.location, path.String())

			continue
		}

		fieldPath := path.Field(name)
		if s.Field(name) != nil {
			p.diags.AddError(diagnostic.CodeDuplicateField,
				fmt.Sprintf("member %s is projected more than once", name),
				p.location, fieldPath.String())

			continue
		}

		value, nested := p.nested(init.Value, structure.ChildPath(key, name), fieldPath)

		s.Fields = append(s.Fields, structure.Field{
			Name:   name,
			Pos:    init.NamePos,
			Source: value,
			Nested: nested,
		})

		out.Inits = append(out.Inits, &selector.Init{NamePos: init.NamePos, Name: name, Value: value})
	}

	return s, out
}

// nested keys the record construction inside a member value. A member
// builds at most one nested record. Grouping keys are left unkeyed: they
// shape the grouping, not the member.
func (p *parser) nested(value selector.Expr, key string, path *analyze.TypePath) (selector.Expr, *structure.Structure) {
	var (
		found *structure.Structure
		visit func(selector.Expr) (selector.Expr, bool)
	)

	visit = func(e selector.Expr) (selector.Expr, bool) {
		switch e := e.(type) {
		case *selector.Call:
			m, ok := e.Fun.(*selector.Member)
			if !ok || m.Name != "GroupBy" {
				return nil, false
			}

			x := selector.Rewrite(m.X, visit)
			if x == m.X {
				return e, true
			}

			fun := *m
			fun.X = x
			call := *e
			call.Fun = &fun

			return &call, true

		case *selector.New:
			if found != nil {
				p.diags.Add(diagnostic.StructuralConflict(p.location, path.String(),
					"member builds more than one nested record"))

				return e, true
			}

			child, keyed := p.structure(e, key, path)
			found = child

			return keyed, true
		}

		return nil, false
	}

	return selector.Rewrite(value, visit), found
}

// ImpliedName returns the member name implied by an expression: the final
// segment of a (possibly optional) member access, or a bare identifier.
// It returns "" for calls, literals, operators and anything else.
func ImpliedName(x selector.Expr) string {
	switch x := x.(type) {
	case *selector.Member:
		return x.Name
	case *selector.Ident:
		return x.Name
	default:
		return ""
	}
}
