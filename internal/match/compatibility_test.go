package match

import (
	"go/types"
	"testing"

	"projgen/internal/analyze"
)

func TestTypeCompatibility_String(t *testing.T) {
	tests := []struct {
		compat   TypeCompatibility
		expected string
	}{
		{TypeIdentical, "identical"},
		{TypeAssignable, "assignable"},
		{TypeConvertible, "convertible"},
		{TypeNeedsLift, "needs_lift"},
		{TypeNeedsUnwrap, "needs_unwrap"},
		{TypeIncompatible, "incompatible"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.compat.String(); got != tt.expected {
				t.Errorf("TypeCompatibility.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestTypeCompatibility_Accepted(t *testing.T) {
	for _, c := range []TypeCompatibility{TypeIdentical, TypeAssignable, TypeNeedsLift, TypeNeedsUnwrap} {
		if !c.Accepted() {
			t.Errorf("%s should be accepted", c)
		}
	}

	for _, c := range []TypeCompatibility{TypeConvertible, TypeIncompatible} {
		if c.Accepted() {
			t.Errorf("%s should be refused", c)
		}
	}
}

func TestScoreTypeCompatibility(t *testing.T) {
	status := types.NewNamed(types.NewTypeName(0, types.NewPackage("projgen/store", "store"), "OrderStatus", nil),
		types.Typ[types.String], nil)
	statusInfo := &analyze.TypeInfo{
		ID:         analyze.TypeID{PkgPath: "projgen/store", Name: "OrderStatus"},
		Kind:       analyze.TypeKindAlias,
		Underlying: analyze.String,
		GoType:     status,
	}
	anyInfo := analyze.Any

	generated := &analyze.TypeInfo{Kind: analyze.TypeKindStruct, IsGenerated: true}

	tests := []struct {
		name     string
		source   *analyze.TypeInfo
		target   *analyze.TypeInfo
		expected TypeCompatibility
	}{
		{"identical", analyze.Int64, analyze.Int64, TypeIdentical},
		{"assignable to interface", analyze.String, anyInfo, TypeAssignable},
		{"convertible numbers", analyze.Int, analyze.Int64, TypeConvertible},
		{"convertible named", statusInfo, analyze.String, TypeConvertible},
		{"lift", analyze.String, analyze.NewPointer(analyze.String), TypeNeedsLift},
		{"unwrap", analyze.NewPointer(analyze.Int64), analyze.Int64, TypeNeedsUnwrap},
		{"incompatible", analyze.String, analyze.Int, TypeIncompatible},
		{"lift needs same element", analyze.Int, analyze.NewPointer(analyze.Int64), TypeIncompatible},
		{"unloaded identical", generated, generated, TypeIdentical},
		{"unloaded different", generated, analyze.Int, TypeIncompatible},
		{"missing", nil, analyze.Int, TypeIncompatible},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ScoreTypeCompatibility(tt.source, tt.target)
			if result.Compatibility != tt.expected {
				t.Errorf("ScoreTypeCompatibility(%s, %s) = %v (%s), want %v",
					tt.source, tt.target, result.Compatibility, result.Reason, tt.expected)
			}
		})
	}
}

func TestIsNumericAndString(t *testing.T) {
	if !IsNumericType(analyze.Int64) || IsNumericType(analyze.String) {
		t.Error("IsNumericType misclassifies basic types")
	}

	if !IsIntegerType(analyze.Rune) || IsIntegerType(analyze.Float64) {
		t.Error("IsIntegerType misclassifies basic types")
	}

	if !IsStringType(analyze.String) || IsStringType(analyze.Bool) {
		t.Error("IsStringType misclassifies basic types")
	}

	if IsNumericType(nil) || IsStringType(&analyze.TypeInfo{}) {
		t.Error("types without go/types information are neither numeric nor text")
	}
}
