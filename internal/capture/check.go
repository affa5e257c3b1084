package capture

import (
	"slices"

	"projgen/internal/common"
	"projgen/internal/diagnostic"
	"projgen/internal/match"
)

// Check compares the references a selection needs with the captures its
// call site supplies. Every required name must be supplied; supplied names
// that are never referenced are reported without failing the call site.
func Check(location string, required []Reference, supplied []string) diagnostic.Diagnostics {
	var (
		diags   diagnostic.Diagnostics
		missing []string
		unused  []string
	)

	need := make(map[string]bool, len(required))
	for _, r := range required {
		need[r.Name] = true
		if !slices.Contains(supplied, r.Name) {
			missing = append(missing, r.Name)
		}
	}

	for _, name := range common.Dedupe(supplied) {
		if !need[name] {
			unused = append(unused, name)
		}
	}

	if len(missing) > 0 {
		d := diagnostic.MissingCapture(location, missing)
		for _, name := range d.Names {
			d.Suggestions = append(d.Suggestions, match.Suggest(name, unused, 1)...)
		}

		diags.Add(d)
	}

	if len(unused) > 0 {
		diags.Add(diagnostic.UnusedCapture(location, unused))
	}

	return diags
}
