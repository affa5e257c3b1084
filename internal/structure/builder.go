package structure

import (
	"fmt"

	"projgen/internal/analyze"
	"projgen/internal/common"
	"projgen/internal/diagnostic"
)

// BuildOptions configures Build.
type BuildOptions struct {
	// Location is the call-site token attached to diagnostics.
	Location string
	// Accessibility of generated types.
	Accessibility Accessibility
	// OutputPackage is the import path the projection functions are
	// generated into. When set, unexported declared members of targets in
	// other packages are reported since they cannot be assigned.
	OutputPackage string
	// Declared marks members as declared outside generated code, keyed by
	// member path ("Total", "Lines.Sku"). A marker takes precedence over
	// the target type's own declaration.
	Declared map[string]Accessibility
}

// Build finalizes a resolved structure tree: it flags declared members,
// applies the accessibility rules and computes identities leaves first.
// The input is not modified.
func Build(root *Structure, opts BuildOptions) (*Structure, diagnostic.Diagnostics) {
	b := &builder{opts: opts, placeholders: make(map[*analyze.TypeInfo]Identity)}
	out := b.build(root)

	b.checkMarkers(out)

	return out, b.diags
}

type builder struct {
	opts         BuildOptions
	diags        diagnostic.Diagnostics
	placeholders map[*analyze.TypeInfo]Identity
}

func (b *builder) build(in *Structure) *Structure {
	s := *in
	s.Fields = make([]Field, len(in.Fields))
	copy(s.Fields, in.Fields)

	for i := range s.Fields {
		if n := s.Fields[i].Nested; n != nil {
			s.Fields[i].Nested = b.build(n)
		}
	}

	s.Accessibility = b.opts.Accessibility
	if s.Target != nil {
		s.Accessibility = accessOf(s.Target.ID.Name)
	}

	companion := s.Target != nil && HasCompanion(s.Target)

	for i := range s.Fields {
		f := &s.Fields[i]
		path := ChildPath(s.Path, f.Name)

		f.Declared = nil
		if s.Target != nil {
			if df := DeclaredField(s.Target, f.Name); df != nil {
				acc := accessOf(df.Name)
				f.Declared = &acc
			}
		}

		if acc, ok := b.opts.Declared[path]; ok {
			f.Declared = &acc
		}

		if f.Declared == nil && s.Target != nil && !companion {
			b.diags.Add(diagnostic.StructuralConflict(b.opts.Location, path,
				fmt.Sprintf("%s declares no member %s and does not embed %s",
					s.Target.ID.Name, f.Name, CompanionName(s.Target.ID.Name))))
		}

		if f.Declared != nil && s.Target != nil && !common.IsExported(f.Name) &&
			b.opts.OutputPackage != "" && s.Target.Deref().ID.PkgPath != b.opts.OutputPackage {
			b.diags.Add(diagnostic.StructuralConflict(b.opts.Location, path,
				fmt.Sprintf("member %s of %s cannot be assigned from %s", f.Name, s.Target.ID.Name, b.opts.OutputPackage)))
		}

		f.Accessibility = accessOf(f.Name)
		f.Required = !f.IsDeclared() && !f.Nullable && f.Accessibility.AtLeast(s.Accessibility)
	}

	id, err := ComputeIdentity(&s, b.typeName)
	if err != nil {
		b.diags.AddError(diagnostic.CodeStructuralConflict, err.Error(), b.opts.Location, s.Path)
	}

	s.Identity = id
	if s.Type != nil {
		b.placeholders[s.Type] = id
	}

	return &s
}

func (b *builder) typeName(t *analyze.TypeInfo) (string, bool) {
	id, ok := b.placeholders[t]
	if !ok {
		return "", false
	}

	return "projection:" + id.String(), true
}

// checkMarkers reports declared markers that name no member, and markers on
// generated records, which have no declaration outside generated code.
func (b *builder) checkMarkers(root *Structure) {
	for _, path := range common.SortedKeys(b.opts.Declared) {
		owner, name := common.SplitQualified(path)

		var s *Structure
		root.Walk(func(c *Structure) {
			if c.Path == owner {
				s = c
			}
		})

		switch {
		case s == nil || s.Field(name) == nil:
			b.diags.AddWarning(diagnostic.CodeUnresolved,
				fmt.Sprintf("declared marker names no projected member %s", path),
				b.opts.Location, path)
		case s.Target == nil:
			b.diags.Add(diagnostic.StructuralConflict(b.opts.Location, path,
				"member is marked declared but its record is generated"))
		}
	}
}

// HasCompanion reports whether target embeds its generated companion.
func HasCompanion(target *analyze.TypeInfo) bool {
	t := target.Deref()
	if t == nil {
		return false
	}

	name := CompanionName(t.ID.Name)
	for _, f := range t.Fields {
		if f.Embedded && f.Name == name {
			return true
		}
	}

	return false
}

// DeclaredField looks up a member declared on target outside its generated
// companion, descending into other embedded structs.
func DeclaredField(target *analyze.TypeInfo, name string) *analyze.FieldInfo {
	t := target.Deref()
	if t == nil {
		return nil
	}

	companion := CompanionName(t.ID.Name)

	for i := range t.Fields {
		f := &t.Fields[i]
		if f.Name == name && !(f.Embedded && f.Name == companion) {
			return f
		}
	}

	for i := range t.Fields {
		f := &t.Fields[i]
		if !f.Embedded || f.Name == companion {
			continue
		}

		if found := f.Type.Field(name); found != nil {
			return found
		}
	}

	return nil
}

func accessOf(name string) Accessibility {
	if common.IsExported(name) {
		return AccessPublic
	}

	return AccessPackage
}
