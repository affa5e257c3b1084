package plan

import (
	"fmt"

	"projgen/internal/analyze"
	"projgen/internal/diagnostic"
	"projgen/internal/mapping"
)

// ConfigFromManifest derives a compilation configuration from the
// manifest-wide settings of m, starting from base.
func ConfigFromManifest(m *mapping.Manifest, base Config) Config {
	cfg := base
	cfg.EmptyCollections = m.Options.EmptyCollectionsOrDefault()

	if m.Package != "" {
		cfg.Generator.PackageName = m.Package
	}

	if m.PackagePath != "" {
		cfg.Generator.PackagePath = m.PackagePath
	}

	if m.Output != "" {
		cfg.Generator.OutputDir = m.Output
	}

	return cfg
}

// SitesFromManifest resolves the call sites of a validated manifest. A call
// site whose types cannot be resolved is left out and reported.
func SitesFromManifest(m *mapping.Manifest, graph *analyze.TypeGraph) ([]CallSite, diagnostic.Diagnostics) {
	var (
		sites []CallSite
		diags diagnostic.Diagnostics
	)

	for i := range m.CallSites {
		site, err := siteFromManifest(m, &m.CallSites[i], graph)
		if err != nil {
			diags.AddError(diagnostic.CodeInvalidManifest, err.Error(), m.CallSites[i].Location, "")
			continue
		}

		sites = append(sites, site)
	}

	return sites, diags
}

func siteFromManifest(m *mapping.Manifest, cs *mapping.CallSite, graph *analyze.TypeGraph) (CallSite, error) {
	source := mapping.ResolveType(cs.Source, graph)
	if source == nil {
		return CallSite{}, fmt.Errorf("source type %q not found", cs.Source)
	}

	var target *analyze.TypeInfo
	if cs.Target != "" {
		target = mapping.ResolveType(cs.Target, graph)
		if target == nil {
			return CallSite{}, fmt.Errorf("target type %q not found", cs.Target)
		}
	}

	scope, err := cs.BuildScope(graph)
	if err != nil {
		return CallSite{}, err
	}

	acc, err := m.AccessibilityOf(cs)
	if err != nil {
		return CallSite{}, err
	}

	declared, err := cs.DeclaredMarkers()
	if err != nil {
		return CallSite{}, err
	}

	return CallSite{
		Location:      cs.Location,
		Param:         cs.Param,
		Body:          cs.Body,
		Hint:          cs.Hint,
		Source:        source,
		Target:        target,
		Scope:         scope,
		Captures:      cs.Capture.Names(),
		Declared:      declared,
		Accessibility: acc,
	}, nil
}
