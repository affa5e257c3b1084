package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"projgen/internal/diagnostic"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	codeColor    = color.New(color.Faint)
	hintColor    = color.New(color.FgGreen)
)

// PrintDiagnostics writes one line per diagnostic, errors first, each
// group in the order held by d. Colouring follows color.NoColor.
func PrintDiagnostics(w io.Writer, d diagnostic.Diagnostics) {
	for _, diag := range d.All() {
		printDiagnostic(w, diag)
	}
}

func printDiagnostic(w io.Writer, d diagnostic.Diagnostic) {
	label := severityColor(d.Severity).Sprint(d.Severity.String())

	where := d.Location
	if d.FieldPath != "" {
		if where != "" {
			where += " "
		}

		where += d.FieldPath
	}

	if where != "" {
		where += ": "
	}

	fmt.Fprintf(w, "%s%s: %s", where, label, d.Message)

	if d.Code != "" {
		fmt.Fprintf(w, " %s", codeColor.Sprintf("[%s]", d.Code))
	}

	fmt.Fprintln(w)

	for _, s := range d.Suggestions {
		fmt.Fprintf(w, "    %s %s\n", hintColor.Sprint("did you mean"), s)
	}
}

func severityColor(s diagnostic.DiagnosticSeverity) *color.Color {
	switch s {
	case diagnostic.DiagnosticError:
		return errorColor
	case diagnostic.DiagnosticWarning:
		return warningColor
	default:
		return infoColor
	}
}

// Summary returns a one-line count of d, "2 errors, 1 warning".
func Summary(d diagnostic.Diagnostics) string {
	return fmt.Sprintf("%s, %s",
		count(len(d.Errors), "error"), count(len(d.Warnings), "warning"))
}

func count(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}

	return fmt.Sprintf("%d %ss", n, noun)
}
