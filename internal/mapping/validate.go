package mapping

import (
	"fmt"
	"go/token"

	"projgen/internal/analyze"
	"projgen/internal/common"
	"projgen/internal/diagnostic"
	"projgen/internal/match"
	"projgen/internal/structure"
)

// Validate checks a manifest against the given type graph. It checks the
// shape of every call site and that every named type exists; selections
// themselves are checked when they are compiled.
func Validate(m *Manifest, graph *analyze.TypeGraph) diagnostic.Diagnostics {
	var res diagnostic.Diagnostics

	if m == nil {
		res.AddError(diagnostic.CodeInvalidManifest, "manifest is nil", "", "")
		return res
	}

	if graph == nil {
		res.AddError(diagnostic.CodeInvalidManifest, "type graph is nil", "", "")
		return res
	}

	if !token.IsIdentifier(m.Package) {
		res.AddError(diagnostic.CodeInvalidManifest,
			fmt.Sprintf("package %q is not a valid package name", m.Package), "", "package")
	}

	if _, err := structure.ParseAccessibility(m.Options.Accessibility); err != nil {
		res.AddError(diagnostic.CodeInvalidManifest, err.Error(), "", "options.accessibility")
	}

	if len(m.CallSites) == 0 {
		res.AddWarning(diagnostic.CodeInvalidManifest, "manifest lists no call sites", "", "call_sites")
	}

	v := &validator{res: &res, graph: graph, known: typeNames(graph)}

	seen := make(map[string]bool, len(m.CallSites))
	for i := range m.CallSites {
		cs := &m.CallSites[i]

		if cs.Location == "" {
			res.AddError(diagnostic.CodeInvalidManifest,
				fmt.Sprintf("call site %d has no location", i), "", "location")

			continue
		}

		if seen[cs.Location] {
			res.AddError(diagnostic.CodeInvalidManifest, "duplicate call-site location", cs.Location, "location")
			continue
		}

		seen[cs.Location] = true

		v.callSite(m, cs)
	}

	return res
}

type validator struct {
	res   *diagnostic.Diagnostics
	graph *analyze.TypeGraph
	known []string
}

func (v *validator) callSite(m *Manifest, cs *CallSite) {
	loc := cs.Location

	if cs.Body == "" {
		v.res.AddError(diagnostic.CodeInvalidManifest, "call site has no body", loc, "body")
	}

	if cs.Source == "" {
		v.res.AddError(diagnostic.CodeInvalidManifest, "call site has no source type", loc, "source")
	} else {
		v.typeName(loc, "source", cs.Source)
	}

	if cs.Target != "" {
		if t := v.typeName(loc, "target", cs.Target); t != nil && t.Deref().Kind != analyze.TypeKindStruct {
			v.res.AddError(diagnostic.CodeInvalidManifest,
				fmt.Sprintf("target %s is not a struct type", cs.Target), loc, "target")
		}
	}

	v.ident(loc, "param", cs.Param)
	v.ident(loc, "hint", cs.Hint)

	if _, err := m.AccessibilityOf(cs); err != nil {
		v.res.AddError(diagnostic.CodeInvalidManifest, err.Error(), loc, "accessibility")
	}

	for _, path := range common.SortedKeys(cs.Declared) {
		if _, err := ParsePath(path); err != nil {
			v.res.AddError(diagnostic.CodeInvalidManifest, err.Error(), loc, "declared."+path)
		}

		if _, err := structure.ParseAccessibility(cs.Declared[path]); err != nil {
			v.res.AddError(diagnostic.CodeInvalidManifest, err.Error(), loc, "declared."+path)
		}
	}

	v.scope(loc, &cs.Scope)
	v.captures(loc, cs.Capture)
}

func (v *validator) scope(loc string, s *ScopeDef) {
	for _, name := range common.SortedKeys(s.Locals) {
		v.ident(loc, "scope.locals", name)
		v.typeName(loc, "scope.locals."+name, s.Locals[name])
	}

	for _, name := range common.SortedKeys(s.Parameters) {
		v.ident(loc, "scope.parameters", name)
		v.typeName(loc, "scope.parameters."+name, s.Parameters[name])
	}

	if r := s.Receiver; r != nil {
		if r.Name == "" {
			v.res.AddError(diagnostic.CodeInvalidManifest, "receiver has no name", loc, "scope.receiver")
		}

		v.ident(loc, "scope.receiver", r.Name)
		v.typeName(loc, "scope.receiver.type", r.Type)
	}
}

func (v *validator) captures(loc string, captures CaptureList) {
	seen := make(map[string]bool, len(captures))

	for _, c := range captures {
		if !token.IsIdentifier(c.Name) {
			v.res.AddError(diagnostic.CodeInvalidManifest,
				fmt.Sprintf("capture %q is not an identifier", c.Name), loc, "capture")

			continue
		}

		if seen[c.Name] {
			v.res.AddWarning(diagnostic.CodeInvalidManifest,
				fmt.Sprintf("capture %s listed more than once", c.Name), loc, "capture")
		}

		seen[c.Name] = true

		if c.Type != "" {
			v.typeName(loc, "capture."+c.Name, c.Type)
		}
	}
}

// ident reports a non-empty name that is not a Go identifier.
func (v *validator) ident(loc, field, name string) {
	if name != "" && !token.IsIdentifier(name) {
		v.res.AddError(diagnostic.CodeInvalidManifest,
			fmt.Sprintf("%q is not an identifier", name), loc, field)
	}
}

// typeName resolves name and reports it when no loaded type matches.
func (v *validator) typeName(loc, field, name string) *analyze.TypeInfo {
	if t := ResolveType(name, v.graph); t != nil {
		return t
	}

	v.res.Add(diagnostic.Diagnostic{
		Severity:    diagnostic.DiagnosticError,
		Code:        diagnostic.CodeUnresolved,
		Message:     fmt.Sprintf("type %q not found", name),
		Location:    loc,
		FieldPath:   field,
		Suggestions: match.Suggest(name, v.known, 3),
	})

	return nil
}

// typeNames lists "pkg.Name" for every loaded named type.
func typeNames(graph *analyze.TypeGraph) []string {
	var names []string

	for _, path := range common.SortedKeys(graph.Packages) {
		pkg := graph.Packages[path]
		for _, id := range pkg.Types {
			names = append(names, pkg.Name+"."+id.Name)
		}
	}

	return names
}
