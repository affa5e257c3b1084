package analyze

import (
	"go/types"

	"projgen/internal/common"
)

var basics = predeclared()

func predeclared() map[string]*TypeInfo {
	basics := make(map[string]*TypeInfo)
	for _, name := range []string{
		"bool", "string", "int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64", "uintptr",
		"float32", "float64", "complex64", "complex128", "byte", "rune",
	} {
		basics[name] = &TypeInfo{
			ID:     TypeID{Name: name},
			Kind:   TypeKindBasic,
			GoType: types.Universe.Lookup(name).Type(),
		}
	}

	basics["any"] = &TypeInfo{
		Kind:   TypeKindInterface,
		GoType: types.Universe.Lookup("any").Type(),
	}

	return basics
}

// Basic returns the shared TypeInfo for a predeclared type name, or nil.
func Basic(name string) *TypeInfo {
	return basics[name]
}

// Predeclared type shortcuts.
var (
	Bool    = Basic("bool")
	String  = Basic("string")
	Int     = Basic("int")
	Int64   = Basic("int64")
	Float64 = Basic("float64")
	Rune    = Basic("rune")
	Any     = Basic("any")
)

// NewPointer returns a pointer type to elem.
func NewPointer(elem *TypeInfo) *TypeInfo {
	info := &TypeInfo{Kind: TypeKindPointer, ElemType: elem}
	if elem.GoType != nil {
		info.GoType = types.NewPointer(elem.GoType)
	}

	return info
}

// NewSlice returns a slice type of elem.
func NewSlice(elem *TypeInfo) *TypeInfo {
	info := &TypeInfo{Kind: TypeKindSlice, ElemType: elem}
	if elem.GoType != nil {
		info.GoType = types.NewSlice(elem.GoType)
	}

	return info
}

// NewSeq returns a lazy sequence type of elem.
func NewSeq(elem *TypeInfo) *TypeInfo {
	return &TypeInfo{Kind: TypeKindSeq, ElemType: elem}
}

// NewGroup returns the grouping type with the given key and element types.
func NewGroup(key, elem *TypeInfo) *TypeInfo {
	return &TypeInfo{Kind: TypeKindGroup, KeyType: key, ElemType: elem}
}

// NewStruct returns a named struct type with the given fields. Field indexes
// and export flags are derived.
func NewStruct(id TypeID, fields ...FieldInfo) *TypeInfo {
	info := &TypeInfo{ID: id, Kind: TypeKindStruct}
	for i := range fields {
		fields[i].Index = i
		fields[i].Exported = common.IsExported(fields[i].Name)
	}

	info.Fields = fields

	return info
}

// NewAlias returns a named type over underlying.
func NewAlias(id TypeID, underlying *TypeInfo) *TypeInfo {
	return &TypeInfo{ID: id, Kind: TypeKindAlias, Underlying: underlying}
}

// SameType reports whether a and b denote the same type.
func SameType(a, b *TypeInfo) bool {
	if a == b {
		return true
	}

	if a == nil || b == nil {
		return false
	}

	if a.GoType != nil && b.GoType != nil {
		return types.Identical(a.GoType, b.GoType)
	}

	return a.String() == b.String()
}
