package resolve

import (
	"fmt"

	"projgen/internal/analyze"
	"projgen/internal/common"
	"projgen/internal/diagnostic"
	"projgen/internal/match"
	"projgen/internal/selector"
	"projgen/internal/structure"
)

// Config holds what a resolution runs against.
type Config struct {
	// Graph holds the loaded packages.
	Graph *analyze.TypeGraph
	// Scope is the call site's environment.
	Scope Scope
	// OutputPackage is the import path generated code is written to.
	// Unexported members of other packages are unreachable from it.
	OutputPackage string
	// Location is the call-site token attached to diagnostics.
	Location string
}

// Selection is one parsed call site.
type Selection struct {
	// Root is the unresolved field model.
	Root *structure.Structure
	// Param names the selection parameter.
	Param string
	// Source is the type of the selection parameter.
	Source *analyze.TypeInfo
	// Target is the existing type the root fills, nil for a generated one.
	Target *analyze.TypeInfo
}

// Info records what resolution learned about the resolved expression trees.
type Info struct {
	// Types maps resolved expressions to their types.
	Types map[selector.Expr]*analyze.TypeInfo
	// Uses maps identifiers to what they denote.
	Uses map[*selector.Ident]Binding
	// Objects maps identifiers and pkg.Name selectors that denote
	// package-level declarations to the declaration.
	Objects map[selector.Expr]*analyze.ObjectInfo
	// Structures maps structure paths to resolved structures.
	Structures map[string]*structure.Structure
}

// TypeOf returns the type recorded for x, or nil.
func (i *Info) TypeOf(x selector.Expr) *analyze.TypeInfo {
	return i.Types[x]
}

// Resolve types sel. The returned root is nil only when the selection
// parameter has no type; otherwise it is returned even when diagnostics
// carry errors, with unresolvable members left untyped.
func Resolve(sel Selection, cfg Config) (*structure.Structure, *Info, diagnostic.Diagnostics) {
	r := &resolver{
		cfg: cfg,
		info: &Info{
			Types:      make(map[selector.Expr]*analyze.TypeInfo),
			Uses:       make(map[*selector.Ident]Binding),
			Objects:    make(map[selector.Expr]*analyze.ObjectInfo),
			Structures: make(map[string]*structure.Structure),
		},
		nested:   make(map[string]*structure.Structure),
		adopt:    make(map[string]*analyze.TypeInfo),
		active:   make(map[string]bool),
		anonKeys: make(map[*analyze.TypeInfo]bool),
	}

	if sel.Source == nil {
		r.diags.AddError(diagnostic.CodeUnresolved, "selection source type is unknown", cfg.Location, "")
		return nil, r.info, r.diags
	}

	sel.Root.Walk(func(s *structure.Structure) { r.nested[s.Path] = s })

	r.push(sel.Param, sel.Source)
	root := r.structure(sel.Root, sel.Target)
	r.pop()

	return root, r.info, r.diags
}

type resolver struct {
	cfg   Config
	info  *Info
	diags diagnostic.Diagnostics

	env []param
	// nested holds the unresolved structures by path.
	nested map[string]*structure.Structure
	// adopt holds named types nested anonymous records take on because the
	// member they build is declared with that type.
	adopt map[string]*analyze.TypeInfo
	// active holds the paths of structures being resolved.
	active map[string]bool
	// anonKeys holds grouping key types built from anonymous records.
	anonKeys map[*analyze.TypeInfo]bool
	// path is the member being resolved, for diagnostics.
	path string
}

func (r *resolver) errorf(code, format string, args ...any) {
	r.diags.AddError(code, fmt.Sprintf(format, args...), r.cfg.Location, r.path)
}

func (r *resolver) unresolved(name string, known []string, format string, args ...any) {
	r.diags.Add(diagnostic.Diagnostic{
		Severity:    diagnostic.DiagnosticError,
		Code:        diagnostic.CodeUnresolved,
		Message:     fmt.Sprintf(format, args...),
		Location:    r.cfg.Location,
		FieldPath:   r.path,
		Names:       []string{name},
		Suggestions: match.Suggest(name, known, 3),
	})
}

// structure resolves in against the innermost parameter. target is the
// type the structure fills, nil to generate one.
func (r *resolver) structure(in *structure.Structure, target *analyze.TypeInfo) *structure.Structure {
	s := *in
	s.SourceType = r.current()
	s.Fields = make([]structure.Field, 0, len(in.Fields))

	if target == nil && in.TypeName != "" {
		target = r.namedTarget(in.TypeName)
	}

	s.Target = target
	if target != nil {
		s.Type = target
	} else {
		s.Type = &analyze.TypeInfo{Kind: analyze.TypeKindStruct, IsGenerated: true}
	}

	r.active[s.Path] = true
	defer delete(r.active, s.Path)

	saved := r.path
	defer func() { r.path = saved }()

	for _, f := range in.Fields {
		r.path = structure.ChildPath(s.Path, f.Name)
		s.Fields = append(s.Fields, r.field(f, target))
	}

	if s.Type.IsGenerated {
		for _, f := range s.Fields {
			s.Type.Fields = append(s.Type.Fields, analyze.FieldInfo{
				Name:     f.Name,
				Exported: common.IsExported(f.Name),
				Type:     f.GoType(),
				Index:    len(s.Type.Fields),
			})
		}
	}

	out := &s
	r.info.Structures[s.Path] = out

	return out
}

// namedTarget resolves the record type of new T { ... }. Unknown names
// produce a generated type of that name.
func (r *resolver) namedTarget(name string) *analyze.TypeInfo {
	qualifier, short := common.SplitQualified(name)

	var t *analyze.TypeInfo
	if qualifier == "" {
		if obj := r.cfg.Graph.Lookup(r.cfg.Scope.Package, short); obj != nil && obj.Kind == analyze.ObjectType {
			t = obj.Type
		}
	} else {
		t = r.cfg.Graph.ResolveTypeName(name)
	}

	switch {
	case t == nil:
		return nil
	case t.Kind != analyze.TypeKindStruct:
		r.errorf(diagnostic.CodeUnsupported, "%s is a %s, not a record type", name, t.Kind)
		return nil
	case !common.IsExported(t.ID.Name) && t.ID.PkgPath != r.cfg.OutputPackage:
		r.errorf(diagnostic.CodeUnresolved, "record type %s is not exported", name)
		return nil
	}

	return t
}

// field resolves one member. The type declared by target wins over the
// inferred one; nullability is forced by a top-level optional chain.
func (r *resolver) field(f structure.Field, target *analyze.TypeInfo) structure.Field {
	var declared *analyze.FieldInfo
	if target != nil {
		declared = structure.DeclaredField(target, f.Name)
	}

	if declared != nil && f.Nested != nil && f.Nested.TypeName == "" {
		if named := recordOf(declared.Type); named != nil {
			r.adopt[f.Nested.Path] = named
		}
	}

	value, inferred := r.expr(f.Source)

	optional := selector.ContainsOptional(f.Source) && !absorbsNull(value)
	f.Value = value
	f.Nullable = optional || isPointer(inferred)
	f.Type = inferred

	if f.Nested != nil {
		f.Nested = r.info.Structures[f.Nested.Path]
		f.FromNamedType = f.Nested != nil && f.Nested.Target != nil
	}

	switch {
	case inferred == nil:
		return f
	case inferred == untypedNil && declared == nil:
		r.errorf(diagnostic.CodeUnsupported, "the type of null cannot be inferred; declare %s on a target type", f.Name)
		f.Type = nil
		return f
	case declared == nil:
		return f
	}

	return r.declared(f, declared.Type, optional)
}

// declared fits a member value to the type its target declares.
func (r *resolver) declared(f structure.Field, want *analyze.TypeInfo, optional bool) structure.Field {
	have := f.GoType()
	if f.Type == untypedNil {
		have = want
		if !want.IsNilable() {
			r.errorf(diagnostic.CodeStructuralConflict, "%s is declared as %s, which cannot be null", f.Name, want)
		}
	}

	compat := match.ScoreTypeCompatibility(have, want)

	switch compat.Compatibility {
	case match.TypeIdentical, match.TypeAssignable:
	case match.TypeNeedsLift:
		f.Value = r.typed(&selector.Lift{X: f.Value, Type: want}, want)
	case match.TypeNeedsUnwrap:
		if !optional || isPointer(f.Type) {
			f.Value = r.typed(&selector.Unwrap{X: f.Value, Type: want}, want)
		}
	default:
		r.diags.Add(diagnostic.StructuralConflict(r.cfg.Location, r.path,
			fmt.Sprintf("%s is declared as %s but the selection produces %s (%s)",
				f.Name, want, have, compat.Compatibility)))
	}

	f.Type = want
	f.Nullable = isPointer(want)

	return f
}

// absorbsNull reports whether x is a coalescing whose result is never null.
func absorbsNull(x selector.Expr) bool {
	c, ok := x.(*selector.Coalesce)
	return ok && !c.Type.IsNilable()
}

// recordOf returns the named record type behind pointers and collections.
func recordOf(t *analyze.TypeInfo) *analyze.TypeInfo {
	t = t.Deref()
	if c := t.Collection(); c != nil {
		t = c.ElemType.Deref()
	}

	if t != nil && t.Kind == analyze.TypeKindStruct && t.IsNamed() {
		return t
	}

	return nil
}

func isPointer(t *analyze.TypeInfo) bool {
	return t != nil && t.Kind == analyze.TypeKindPointer
}

func (r *resolver) typed(x selector.Expr, t *analyze.TypeInfo) selector.Expr {
	r.info.Types[x] = t
	return x
}
