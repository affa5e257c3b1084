package mapping

import (
	"fmt"

	"projgen/internal/common"
	"projgen/internal/structure"
)

// Manifest represents the root of a YAML call-site manifest.
type Manifest struct {
	// Version of the manifest schema (for future compatibility).
	Version string `yaml:"version,omitempty"`

	// Package is the name of the generated package.
	Package string `yaml:"package"`

	// PackagePath is the import path of the generated package. Types of
	// that package are referenced unqualified by generated code.
	PackagePath string `yaml:"package_path,omitempty"`

	// Output is the directory the projection file is written to.
	Output string `yaml:"output,omitempty"`

	// Packages lists the package patterns to load source and target types from.
	Packages StringArray `yaml:"packages"`

	// Options apply to every call site.
	Options Options `yaml:"options,omitempty"`

	// CallSites lists the selections to compile, in compilation order.
	CallSites []CallSite `yaml:"call_sites"`
}

// Options holds manifest-wide compiler options.
type Options struct {
	// EmptyCollections substitutes empty collections for missing
	// collection values instead of nil.
	EmptyCollections *bool `yaml:"empty_collections,omitempty"`

	// Accessibility is the default accessibility of generated types.
	Accessibility string `yaml:"accessibility,omitempty"`
}

// CallSite is one selection to compile.
type CallSite struct {
	// Location is the call-site token, unique within the manifest.
	Location string `yaml:"location"`

	// Source is the type of the selection parameter.
	Source string `yaml:"source"`

	// Param names the selection parameter. A body written as a lambda may
	// declare it itself.
	Param string `yaml:"param,omitempty"`

	// Hint names the generated root record.
	Hint string `yaml:"hint,omitempty"`

	// Target is an existing type the projection fills. Empty means a
	// record type is generated.
	Target string `yaml:"target,omitempty"`

	// Body is the selection text.
	Body string `yaml:"body"`

	// Capture lists the outer names the call site supplies.
	Capture CaptureList `yaml:"capture,omitempty"`

	// Scope is the environment the selection is written in.
	Scope ScopeDef `yaml:"scope,omitempty"`

	// Declared marks members of the target as declared outside generated
	// code, with their accessibility.
	Declared map[string]string `yaml:"declared,omitempty"`

	// Accessibility overrides Options.Accessibility for this call site.
	Accessibility string `yaml:"accessibility,omitempty"`
}

// ScopeDef describes the locals, parameters and receiver visible at a
// call site. Values are type names.
type ScopeDef struct {
	// Package is the import path of the call site's package.
	Package    string            `yaml:"package,omitempty"`
	Locals     map[string]string `yaml:"locals,omitempty"`
	Parameters map[string]string `yaml:"parameters,omitempty"`
	Receiver   *ReceiverDef      `yaml:"receiver,omitempty"`
}

// ReceiverDef is the enclosing method's receiver.
type ReceiverDef struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Capture is one supplied outer name with an optional type.
type Capture struct {
	Name string
	Type string
}

// CaptureList is a list of captures.
// YAML formats supported:
//   - Single string: "minTotal"
//   - List: [minTotal, limit]
//   - Typed items: [{minTotal: int64}, limit]
type CaptureList []Capture

// Names returns the captured names in order.
func (c CaptureList) Names() []string {
	names := make([]string, len(c))
	for i, capture := range c {
		names[i] = capture.Name
	}

	return names
}

// StringArray is a list of strings that can be written as a single string.
type StringArray []string

// EmptyCollectionsOrDefault reports the effective empty-collections option.
// It defaults to true.
func (o Options) EmptyCollectionsOrDefault() bool {
	if o.EmptyCollections == nil {
		return true
	}

	return *o.EmptyCollections
}

// AccessibilityOf returns the accessibility generated types of cs get.
func (m *Manifest) AccessibilityOf(cs *CallSite) (structure.Accessibility, error) {
	acc := cs.Accessibility
	if acc == "" {
		acc = m.Options.Accessibility
	}

	return structure.ParseAccessibility(acc)
}

// DeclaredMarkers parses the declared map of cs.
func (cs *CallSite) DeclaredMarkers() (map[string]structure.Accessibility, error) {
	if len(cs.Declared) == 0 {
		return nil, nil
	}

	out := make(map[string]structure.Accessibility, len(cs.Declared))
	for _, path := range common.SortedKeys(cs.Declared) {
		a, err := structure.ParseAccessibility(cs.Declared[path])
		if err != nil {
			return nil, fmt.Errorf("declared member %s: %w", path, err)
		}

		out[path] = a
	}

	return out, nil
}
