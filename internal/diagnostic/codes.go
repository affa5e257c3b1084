package diagnostic

import (
	"fmt"
	"strings"

	"projgen/internal/common"
)

// Diagnostic codes.
const (
	CodeMissingCapture     = "MissingCapture"
	CodeUnusedCapture      = "UnusedCapture"
	CodeAmbiguousGroupKey  = "AmbiguousGroupKey"
	CodeStructuralConflict = "StructuralConflict"
	CodeSkippedField       = "SkippedField"
	CodeDuplicateField     = "DuplicateField"
	CodeSyntax             = "SyntaxError"
	CodeUnresolved         = "UnresolvedReference"
	CodeUnsupported        = "UnsupportedExpression"
	CodeUntypedCapture     = "UntypedCapture"
	CodeInvalidManifest    = "InvalidManifest"
	CodeGeneration         = "GenerationFailed"
)

// MissingCapture reports outer references that were not supplied through
// the capture list. Names are sorted and deduplicated.
func MissingCapture(location string, names []string) Diagnostic {
	names = common.Dedupe(names)

	return Diagnostic{
		Severity: DiagnosticError,
		Code:     CodeMissingCapture,
		Message: fmt.Sprintf("selection references %s without capturing %s",
			strings.Join(names, ", "), plural(len(names), "it", "them")),
		Location: location,
		Names:    names,
	}
}

// UnusedCapture reports captured names the selection never references.
func UnusedCapture(location string, names []string) Diagnostic {
	names = common.Dedupe(names)

	return Diagnostic{
		Severity: DiagnosticWarning,
		Code:     CodeUnusedCapture,
		Message:  fmt.Sprintf("captured %s never referenced", strings.Join(names, ", ")),
		Location: location,
		Names:    names,
	}
}

// AmbiguousGroupKey reports an anonymous grouping key used as a field value.
func AmbiguousGroupKey(location, fieldPath string) Diagnostic {
	return Diagnostic{
		Severity:  DiagnosticError,
		Code:      CodeAmbiguousGroupKey,
		Message:   "grouping key is an anonymous shape and cannot be named; group by a named type or project its members",
		Location:  location,
		FieldPath: fieldPath,
	}
}

// StructuralConflict reports a shape that cannot be generated.
func StructuralConflict(location, fieldPath, message string) Diagnostic {
	return Diagnostic{
		Severity:  DiagnosticError,
		Code:      CodeStructuralConflict,
		Message:   message,
		Location:  location,
		FieldPath: fieldPath,
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}

	return many
}
