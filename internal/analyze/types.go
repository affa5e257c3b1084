package analyze

import (
	"go/types"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"projgen/internal/common"
)

// TypeID uniquely identifies a type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "projgen/store"
	Name    string // e.g., "Order"
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// TypeKind represents the kind of a type.
type TypeKind int

const (
	TypeKindUnknown   TypeKind = iota
	TypeKindBasic              // int, string, bool, etc.
	TypeKindStruct             // struct type
	TypeKindPointer            // pointer to another type
	TypeKindSlice              // slice of another type
	TypeKindArray              // array of another type
	TypeKindAlias              // named type wrapping a non-struct type
	TypeKindExternal           // external/opaque type (e.g., time.Time)
	TypeKindMap                // map type
	TypeKindInterface          // interface type
	TypeKindSeq                // lazy sequence (iter.Seq)
	TypeKindGroup              // key plus elements produced by grouping
)

// String returns a human-readable representation of the TypeKind.
func (k TypeKind) String() string {
	switch k {
	case TypeKindBasic:
		return "basic"
	case TypeKindStruct:
		return "struct"
	case TypeKindPointer:
		return "pointer"
	case TypeKindSlice:
		return "slice"
	case TypeKindArray:
		return "array"
	case TypeKindAlias:
		return "alias"
	case TypeKindExternal:
		return "external"
	case TypeKindMap:
		return "map"
	case TypeKindInterface:
		return "interface"
	case TypeKindSeq:
		return "seq"
	case TypeKindGroup:
		return "group"
	default:
		return common.UnknownStr
	}
}

// TypeInfo describes a Go type in the type graph.
type TypeInfo struct {
	ID          TypeID       // Unique identifier (empty for unnamed types like *T or []T)
	Kind        TypeKind     // Kind of type
	Underlying  *TypeInfo    // For named types, the underlying type
	ElemType    *TypeInfo    // For pointers, slices, arrays, maps, sequences and groups, the element type
	KeyType     *TypeInfo    // For maps and groups, the key type
	ArrayLen    int64        // For arrays, the length
	Fields      []FieldInfo  // For structs, the list of fields
	Methods     []MethodInfo // Methods in the method set of T or *T
	GoType      types.Type   // The original go/types.Type (for compatibility checks)
	IsGenerated bool         // True if the type is produced by projection rather than loaded
}

// IsNamed returns true if this type has a name (TypeID is set).
func (t *TypeInfo) IsNamed() bool {
	return t.ID.Name != ""
}

// IsNilable reports whether the zero value of t is nil.
func (t *TypeInfo) IsNilable() bool {
	if t == nil {
		return false
	}

	switch t.Kind {
	case TypeKindPointer, TypeKindSlice, TypeKindMap, TypeKindInterface, TypeKindSeq:
		return true
	case TypeKindAlias:
		return t.Underlying.IsNilable()
	default:
		return false
	}
}

// IsCollection reports whether t can be ranged over element by element.
func (t *TypeInfo) IsCollection() bool {
	return t.Collection() != nil
}

// Collection returns the slice, array or sequence type behind t (following
// aliases), or nil when t is not a collection.
func (t *TypeInfo) Collection() *TypeInfo {
	if t == nil {
		return nil
	}

	switch t.Kind {
	case TypeKindSlice, TypeKindArray, TypeKindSeq:
		return t
	case TypeKindAlias:
		return t.Underlying.Collection()
	default:
		return nil
	}
}

// Deref strips any pointer indirections from t.
func (t *TypeInfo) Deref() *TypeInfo {
	for t != nil && t.Kind == TypeKindPointer {
		t = t.ElemType
	}

	return t
}

// BasicName returns the name of the basic type behind t, following aliases,
// or "" when t is not basic.
func (t *TypeInfo) BasicName() string {
	switch {
	case t == nil:
		return ""
	case t.Kind == TypeKindBasic:
		return t.ID.Name
	case t.Kind == TypeKindAlias:
		return t.Underlying.BasicName()
	default:
		return ""
	}
}

// Field looks up a field by name, descending into embedded structs.
func (t *TypeInfo) Field(name string) *FieldInfo {
	return t.field(name, map[*TypeInfo]bool{})
}

func (t *TypeInfo) field(name string, seen map[*TypeInfo]bool) *FieldInfo {
	t = t.Deref()
	if t == nil || t.Kind != TypeKindStruct || seen[t] {
		return nil
	}

	seen[t] = true

	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return &t.Fields[i]
		}
	}

	for i := range t.Fields {
		if !t.Fields[i].Embedded {
			continue
		}

		if f := t.Fields[i].Type.field(name, seen); f != nil {
			return f
		}
	}

	return nil
}

// Method looks up a method by name.
func (t *TypeInfo) Method(name string) *MethodInfo {
	for ; t != nil; t = t.ElemType {
		for i := range t.Methods {
			if t.Methods[i].Name == name {
				return &t.Methods[i]
			}
		}

		if t.Kind != TypeKindPointer {
			break
		}
	}

	return nil
}

// MemberNames lists field and method names reachable on t, sorted.
func (t *TypeInfo) MemberNames() []string {
	t = t.Deref()
	if t == nil {
		return nil
	}

	var names []string
	for _, f := range t.Fields {
		names = append(names, f.Name)
	}

	for _, m := range t.Methods {
		names = append(names, m.Name)
	}

	return common.Dedupe(names)
}

// String returns the canonical spelling of t, fully qualified by package path.
func (t *TypeInfo) String() string {
	if t == nil {
		return "<nil>"
	}

	if t.IsNamed() {
		return t.ID.String()
	}

	switch t.Kind {
	case TypeKindPointer:
		return "*" + t.ElemType.String()
	case TypeKindSlice:
		return "[]" + t.ElemType.String()
	case TypeKindArray:
		return "[" + strconv.FormatInt(t.ArrayLen, 10) + "]" + t.ElemType.String()
	case TypeKindMap:
		return "map[" + t.KeyType.String() + "]" + t.ElemType.String()
	case TypeKindSeq:
		return "iter.Seq[" + t.ElemType.String() + "]"
	case TypeKindGroup:
		return "group[" + t.KeyType.String() + "]" + t.ElemType.String()
	case TypeKindInterface:
		return common.AnyTypeStr
	case TypeKindStruct:
		var b strings.Builder
		b.WriteString("struct{")
		for i, f := range t.Fields {
			if i > 0 {
				b.WriteString("; ")
			}
			b.WriteString(f.Name + " " + f.Type.String())
		}
		b.WriteString("}")
		return b.String()
	default:
		if t.GoType != nil {
			return t.GoType.String()
		}

		return common.UnknownStr
	}
}

// FieldInfo describes a struct field.
type FieldInfo struct {
	Name     string            // Go field name
	Exported bool              // Whether the field is exported
	Type     *TypeInfo         // Field type
	Tag      reflect.StructTag // Raw struct tag
	Embedded bool              // Whether the field is embedded (anonymous)
	Index    int               // Field index in the struct
}

// JSONName returns the JSON tag name if present, otherwise the field name.
func (f *FieldInfo) JSONName() string {
	if tag := f.Tag.Get("json"); tag != "" && tag != "-" {
		name, _, _ := strings.Cut(tag, ",")
		return name
	}

	return f.Name
}

// HasTag returns true if the field has the specified tag.
func (f *FieldInfo) HasTag(key string) bool {
	return f.Tag.Get(key) != ""
}

// MethodInfo describes a method with at most one meaningful result.
type MethodInfo struct {
	Name   string
	Params []*TypeInfo
	Result *TypeInfo // nil for methods without results
}

// ObjectKind classifies package-level objects.
type ObjectKind int

const (
	ObjectConst ObjectKind = iota
	ObjectVar
	ObjectFunc
	ObjectType
)

// String returns a human-readable object kind.
func (k ObjectKind) String() string {
	switch k {
	case ObjectConst:
		return "const"
	case ObjectVar:
		return "var"
	case ObjectFunc:
		return "func"
	case ObjectType:
		return "type"
	default:
		return common.UnknownStr
	}
}

// ObjectInfo describes a package-level declaration.
type ObjectInfo struct {
	PkgPath string
	Name    string
	Kind    ObjectKind
	// Type is the declared type for consts and vars, the result type for
	// funcs (nil when the func has no result) and the type itself for types.
	Type   *TypeInfo
	Params []*TypeInfo // For funcs
	Value  string      // For consts, the exact constant value
}

// IsEnumMember reports whether o is a constant of a named package type.
func (o *ObjectInfo) IsEnumMember() bool {
	return o.Kind == ObjectConst && o.Type != nil && o.Type.IsNamed() && o.Type.ID.PkgPath != ""
}

// TypeGraph holds all analyzed types from loaded packages.
type TypeGraph struct {
	// Types maps TypeID to TypeInfo for all named types.
	Types map[TypeID]*TypeInfo
	// Packages maps package paths to their package info.
	Packages map[string]*PackageInfo
}

// NewTypeGraph creates a new empty TypeGraph.
func NewTypeGraph() *TypeGraph {
	return &TypeGraph{
		Types:    make(map[TypeID]*TypeInfo),
		Packages: make(map[string]*PackageInfo),
	}
}

// GetType returns the TypeInfo for a given TypeID, or nil if not found.
func (g *TypeGraph) GetType(id TypeID) *TypeInfo {
	return g.Types[id]
}

// Package returns the package info for path, creating it when missing.
func (g *TypeGraph) Package(path string) *PackageInfo {
	pkg, ok := g.Packages[path]
	if !ok {
		pkg = &PackageInfo{
			Path:    path,
			Name:    common.PkgAlias(path),
			Objects: make(map[string]*ObjectInfo),
		}
		g.Packages[path] = pkg
	}

	return pkg
}

// AddType registers a named type and its type object.
func (g *TypeGraph) AddType(info *TypeInfo) *TypeInfo {
	g.Types[info.ID] = info

	pkg := g.Package(info.ID.PkgPath)
	if !slices.Contains(pkg.Types, info.ID) {
		pkg.Types = append(pkg.Types, info.ID)
	}

	pkg.Objects[info.ID.Name] = &ObjectInfo{
		PkgPath: info.ID.PkgPath,
		Name:    info.ID.Name,
		Kind:    ObjectType,
		Type:    info,
	}

	return info
}

// AddObject registers a package-level object.
func (g *TypeGraph) AddObject(obj *ObjectInfo) {
	g.Package(obj.PkgPath).Objects[obj.Name] = obj
}

// Lookup returns the package-level object pkgPath.name, or nil.
func (g *TypeGraph) Lookup(pkgPath, name string) *ObjectInfo {
	pkg, ok := g.Packages[pkgPath]
	if !ok {
		return nil
	}

	return pkg.Objects[name]
}

// PackageByName resolves a package qualifier: either a full import path or
// a package name. Ambiguous names resolve to the lexically smallest path.
func (g *TypeGraph) PackageByName(name string) *PackageInfo {
	if pkg, ok := g.Packages[name]; ok {
		return pkg
	}

	for _, path := range common.SortedKeys(g.Packages) {
		if g.Packages[path].Name == name {
			return g.Packages[path]
		}
	}

	return nil
}

// ResolveTypeName resolves "pkg.Name", "import/path.Name" or a predeclared
// type name such as "int64". Pointer and slice prefixes are honoured.
func (g *TypeGraph) ResolveTypeName(s string) *TypeInfo {
	s = strings.TrimSpace(s)

	switch {
	case strings.HasPrefix(s, "*"):
		if elem := g.ResolveTypeName(s[1:]); elem != nil {
			return NewPointer(elem)
		}

		return nil
	case strings.HasPrefix(s, "[]"):
		if elem := g.ResolveTypeName(s[2:]); elem != nil {
			return NewSlice(elem)
		}

		return nil
	}

	qualifier, name := common.SplitQualified(s)
	if qualifier == "" {
		return Basic(name)
	}

	pkg := g.PackageByName(qualifier)
	if pkg == nil {
		return nil
	}

	return g.GetType(TypeID{PkgPath: pkg.Path, Name: name})
}

// PackageInfo holds information about a loaded package.
type PackageInfo struct {
	Path    string                 // Import path
	Name    string                 // Package name
	Dir     string                 // Directory on disk, when loaded from source
	Types   []TypeID               // Named types defined in this package
	Objects map[string]*ObjectInfo // Package-level declarations by name
}
