package plan

import (
	"fmt"
	"strings"

	"projgen/internal/capture"
)

// CompileReport is a human-readable summary of a compilation.
type CompileReport struct {
	Sites []SiteReport
	// Types is the number of generated type declarations.
	Types int
}

// SiteReport summarizes one call site.
type SiteReport struct {
	Location string
	Function string
	// Record is the generated record or filled target of the root.
	Record    string
	Captures  []string
	Generated int
	Declared  int
	Failed    bool
	Errors    int
	Warnings  int
}

// GenerateReport creates a report from a compilation result.
func GenerateReport(res *Result) *CompileReport {
	report := &CompileReport{}

	funcs := make(map[string]string)
	if res.Output != nil {
		report.Types = len(res.Output.Types)
		for _, fd := range res.Output.Funcs {
			funcs[fd.Location] = fd.Name
		}
	}

	for i := range res.Sites {
		sr := &res.Sites[i]
		rep := SiteReport{
			Location: sr.Location,
			Function: funcs[sr.Location],
			Captures: capture.Names(sr.Captures),
			Failed:   sr.Failed(),
			Errors:   len(sr.Diagnostics.Errors),
			Warnings: len(sr.Diagnostics.Warnings),
		}

		if u := sr.Unit; u != nil {
			root := u.Root
			switch {
			case root.Target != nil:
				rep.Record = root.Target.String()
			case u.Binding[root.Path] != nil:
				rep.Record = u.Binding[root.Path].Name
			}

			rep.Generated = len(root.Generated())
			rep.Declared = len(root.Fields) - rep.Generated
		}

		report.Sites = append(report.Sites, rep)
	}

	return report
}

// FormatReport formats a compile report as human-readable text.
func FormatReport(report *CompileReport) string {
	var sb strings.Builder

	for _, s := range report.Sites {
		fmt.Fprintf(&sb, "\n=== %s ===\n", s.Location)

		if s.Failed {
			fmt.Fprintf(&sb, "✗ skipped: %d errors, %d warnings\n", s.Errors, s.Warnings)
			continue
		}

		fmt.Fprintf(&sb, "Function: %s\n", s.Function)
		fmt.Fprintf(&sb, "Record: %s (generated: %d, declared: %d)\n", s.Record, s.Generated, s.Declared)

		if len(s.Captures) > 0 {
			fmt.Fprintf(&sb, "Captures: %s\n", strings.Join(s.Captures, ", "))
		}

		if s.Warnings > 0 {
			fmt.Fprintf(&sb, "⚠ %d warnings\n", s.Warnings)
		} else {
			sb.WriteString("✓ compiled\n")
		}
	}

	fmt.Fprintf(&sb, "\n%d types generated\n", report.Types)

	return sb.String()
}
