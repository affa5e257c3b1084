package match

import (
	"go/types"

	"projgen/internal/analyze"
)

// TypeCompatibility represents the level of compatibility between two types.
type TypeCompatibility int

const (
	// TypeIncompatible means the types cannot be converted.
	TypeIncompatible TypeCompatibility = iota
	// TypeNeedsLift means the declared type is a pointer to the inferred one.
	TypeNeedsLift
	// TypeNeedsUnwrap means the inferred type is a pointer to the declared one.
	TypeNeedsUnwrap
	// TypeConvertible means an explicit Go conversion would be required.
	TypeConvertible
	// TypeAssignable means the inferred type can be assigned as is.
	TypeAssignable
	// TypeIdentical means the types are exactly the same.
	TypeIdentical
)

const (
	VerdictIdentical    = "identical"
	VerdictAssignable   = "assignable"
	VerdictConvertible  = "convertible"
	VerdictNeedsLift    = "needs_lift"
	VerdictNeedsUnwrap  = "needs_unwrap"
	VerdictIncompatible = "incompatible"
)

// String returns a human-readable name for the compatibility level.
func (c TypeCompatibility) String() string {
	switch c {
	case TypeIdentical:
		return VerdictIdentical
	case TypeAssignable:
		return VerdictAssignable
	case TypeConvertible:
		return VerdictConvertible
	case TypeNeedsLift:
		return VerdictNeedsLift
	case TypeNeedsUnwrap:
		return VerdictNeedsUnwrap
	case TypeIncompatible:
		return VerdictIncompatible
	default:
		return "unknown"
	}
}

// Accepted reports whether a projection may assign the inferred value,
// possibly through a pointer lift or unwrap. Conversions are refused:
// values are never coerced silently.
func (c TypeCompatibility) Accepted() bool {
	return c != TypeIncompatible && c != TypeConvertible
}

// TypeCompatibilityResult contains detailed information about type compatibility.
type TypeCompatibilityResult struct {
	Compatibility TypeCompatibility
	Reason        string // Human-readable explanation
	SourceType    string // String representation of the inferred type
	TargetType    string // String representation of the declared type
}

// ScoreTypeCompatibility scores an inferred source type against the type a
// member is declared with. go/types decides when both types were loaded;
// otherwise the canonical spellings are compared.
func ScoreTypeCompatibility(source, target *analyze.TypeInfo) TypeCompatibilityResult {
	result := TypeCompatibilityResult{
		SourceType: source.String(),
		TargetType: target.String(),
	}

	result.Compatibility, result.Reason = score(source, target)
	if result.Compatibility >= TypeConvertible || source == nil || target == nil {
		return result
	}

	if target.Kind == analyze.TypeKindPointer {
		if c, _ := score(source, target.ElemType); c >= TypeAssignable {
			result.Compatibility, result.Reason = TypeNeedsLift, "requires taking address"
			return result
		}
	}

	if source.Kind == analyze.TypeKindPointer {
		if c, _ := score(source.ElemType, target); c >= TypeAssignable {
			result.Compatibility, result.Reason = TypeNeedsUnwrap, "requires pointer dereference"
			return result
		}
	}

	return result
}

func score(source, target *analyze.TypeInfo) (TypeCompatibility, string) {
	if source == nil || target == nil {
		return TypeIncompatible, "type information unavailable"
	}

	if source.GoType != nil && target.GoType != nil {
		return scoreGoTypes(source.GoType, target.GoType)
	}

	if source.String() == target.String() {
		return TypeIdentical, "types are identical"
	}

	return TypeIncompatible, "types are not compatible"
}

func scoreGoTypes(source, target types.Type) (TypeCompatibility, string) {
	switch {
	case types.Identical(source, target):
		return TypeIdentical, "types are identical"
	case types.AssignableTo(source, target):
		return TypeAssignable, "source is assignable to target"
	case types.ConvertibleTo(source, target):
		return TypeConvertible, "source is convertible to target"
	default:
		return TypeIncompatible, "types are not compatible"
	}
}

// IsNumericType returns true if the type is a numeric basic type.
func IsNumericType(t *analyze.TypeInfo) bool {
	if t == nil || t.GoType == nil {
		return false
	}

	basic, ok := t.GoType.Underlying().(*types.Basic)

	return ok && basic.Info()&types.IsNumeric != 0
}

// IsIntegerType returns true if the type is an integer basic type.
func IsIntegerType(t *analyze.TypeInfo) bool {
	if t == nil || t.GoType == nil {
		return false
	}

	basic, ok := t.GoType.Underlying().(*types.Basic)

	return ok && basic.Info()&types.IsInteger != 0
}

// IsStringType returns true if the type is a string.
func IsStringType(t *analyze.TypeInfo) bool {
	if t == nil || t.GoType == nil {
		return false
	}

	basic, ok := t.GoType.Underlying().(*types.Basic)

	return ok && basic.Info()&types.IsString != 0
}
