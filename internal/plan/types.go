package plan

import (
	"projgen/internal/analyze"
	"projgen/internal/capture"
	"projgen/internal/diagnostic"
	"projgen/internal/gen"
	"projgen/internal/resolve"
	"projgen/internal/structure"
)

// CallSite describes one selection to compile.
type CallSite struct {
	// Location is a stable token identifying the call site.
	Location string
	// Param names the selection parameter. Empty means the body declares it
	// as a lambda, or DefaultParam.
	Param string
	// Body is the selection text.
	Body string
	// Hint names the generated root record.
	Hint string
	// Source is the type of the selection parameter.
	Source *analyze.TypeInfo
	// Target is an existing type the projection fills, nil to generate one.
	Target *analyze.TypeInfo
	// Scope is the environment the selection is written in.
	Scope resolve.Scope
	// Captures lists the outer names supplied by the call site.
	Captures []string
	// Declared marks members as declared outside generated code.
	Declared map[string]structure.Accessibility
	// Accessibility of the generated types.
	Accessibility structure.Accessibility
}

// SiteResult is the outcome of one call site.
type SiteResult struct {
	Location string
	// Unit is nil when the call site failed.
	Unit *gen.Unit
	// Captures are the references the selection needs, sorted by name.
	Captures []capture.Reference
	// Diagnostics of this call site only.
	Diagnostics diagnostic.Diagnostics
}

// Failed reports whether the call site was skipped.
func (r *SiteResult) Failed() bool {
	return r.Unit == nil
}

// Result is the outcome of a compilation.
type Result struct {
	// Sites holds one result per call site, in input order.
	Sites []SiteResult
	// Entries are the stored record shapes, in registration order.
	Entries []*structure.Entry
	// Output is the generated code, nil when no call site compiled.
	Output *gen.Result
	// Diagnostics of every call site, sorted.
	Diagnostics diagnostic.Diagnostics
}

// Compiled returns the number of call sites that compiled.
func (r *Result) Compiled() int {
	n := 0

	for i := range r.Sites {
		if !r.Sites[i].Failed() {
			n++
		}
	}

	return n
}
