package output

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"projgen/internal/diagnostic"
)

func TestSetupLogging_Levels(t *testing.T) {
	tests := []struct {
		name string
		cfg  LogConfig
		want log.Level
	}{
		{"default", LogConfig{}, log.InfoLevel},
		{"verbose", LogConfig{Verbose: true}, log.DebugLevel},
		{"quiet", LogConfig{Quiet: true}, log.WarnLevel},
		{"verbose wins", LogConfig{Verbose: true, Quiet: true}, log.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetupLogging(tt.cfg)
			assert.Equal(t, tt.want, Logger().GetLevel())
		})
	}
}

func TestSetupLogging_Writer(t *testing.T) {
	var buf bytes.Buffer
	SetupLogging(LogConfig{Writer: &buf})
	defer SetupLogging(LogConfig{})

	Debug("hidden")
	Info("compiled", "sites", 2)
	Warn("skipped")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "compiled")
	assert.Contains(t, out, "sites=2")
	assert.Contains(t, out, "skipped")
}

func TestSiteLogger_HasPrefix(t *testing.T) {
	var buf bytes.Buffer
	SetupLogging(LogConfig{Writer: &buf})
	defer SetupLogging(LogConfig{})

	l := SiteLogger("orders.go:3:1")
	assert.Equal(t, "orders.go:3:1", l.GetPrefix())

	l.Info("compiled")
	assert.Contains(t, buf.String(), "orders.go:3:1")
}

func TestPrintDiagnostics(t *testing.T) {
	color.NoColor = true

	var d diagnostic.Diagnostics
	d.AddInfo(diagnostic.CodeSkippedField, "selection has no name", "a.go:1:1", "")
	d.Add(diagnostic.Diagnostic{
		Severity:    diagnostic.DiagnosticError,
		Code:        diagnostic.CodeUnresolved,
		Message:     "x has no member Totl",
		Location:    "a.go:1:1",
		FieldPath:   "Total",
		Suggestions: []string{"Total"},
	})

	var buf bytes.Buffer
	PrintDiagnostics(&buf, d)

	assert.Equal(t,
		"a.go:1:1 Total: error: x has no member Totl [UnresolvedReference]\n"+
			"    did you mean Total\n"+
			"a.go:1:1: info: selection has no name [SkippedField]\n",
		buf.String())
}

func TestSummary(t *testing.T) {
	var d diagnostic.Diagnostics
	assert.Equal(t, "0 errors, 0 warnings", Summary(d))

	d.AddError("c", "m", "", "")
	d.AddWarning("c", "m", "", "")
	d.AddWarning("c", "m", "", "")
	assert.Equal(t, "1 error, 2 warnings", Summary(d))
}
