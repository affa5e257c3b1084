package structure

import (
	"fmt"
	"strings"

	"projgen/internal/analyze"
	"projgen/internal/selector"
)

// Accessibility is the visibility of a generated type or member.
type Accessibility int

const (
	// AccessPackage is visible inside the declaring package only.
	AccessPackage Accessibility = iota
	// AccessPublic is exported.
	AccessPublic
)

// String returns the accessibility keyword.
func (a Accessibility) String() string {
	if a == AccessPublic {
		return "public"
	}

	return "package"
}

// AtLeast reports whether a is at least as visible as b.
func (a Accessibility) AtLeast(b Accessibility) bool {
	return a >= b
}

// ParseAccessibility parses "public"/"exported" and "package"/"internal"/"unexported".
func ParseAccessibility(s string) (Accessibility, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "public", "exported":
		return AccessPublic, nil
	case "package", "internal", "unexported", "private":
		return AccessPackage, nil
	default:
		return AccessPackage, fmt.Errorf("unknown accessibility %q", s)
	}
}

// Field is one member of a projection.
type Field struct {
	// Name is the member name, unique within its structure.
	Name string
	// Pos is where the member is written in the selection.
	Pos selector.Pos
	// Source is the member's selection expression as written.
	Source selector.Expr
	// Value is the expression the projection function assigns. It starts
	// as the resolved form of Source and is rewritten by later stages.
	Value selector.Expr
	// Type is the resolved result type. For nullable value types this is
	// the value type; see GoType for the declared member type.
	Type *analyze.TypeInfo
	// Nullable reports whether the member may hold no value.
	Nullable bool
	// Nested is the structure built per element (or once) by this member.
	Nested *Structure
	// FromNamedType is set when Nested reuses an existing named type.
	FromNamedType bool
	// Declared is set when the member is declared outside generated code.
	Declared *Accessibility
	// Accessibility of the generated member.
	Accessibility Accessibility
	// Required marks a generated member as mandatory.
	Required bool
}

// GoType returns the type the member is declared with: Type itself when it
// is already nil-able or the member is not nullable, else a pointer to it.
func (f *Field) GoType() *analyze.TypeInfo {
	if f.Type == nil || !f.Nullable || f.Type.IsNilable() {
		return f.Type
	}

	return analyze.NewPointer(f.Type)
}

// IsDeclared reports whether the member is excluded from generation.
func (f *Field) IsDeclared() bool {
	return f.Declared != nil
}

// Structure is a projection record: the ordered members built from one
// source type. Structures are immutable once their identity is computed.
type Structure struct {
	// SourceType is the type the members read from.
	SourceType *analyze.TypeInfo
	// Fields are the members in selection order.
	Fields []Field
	// HintName is the preferred name of a generated type.
	HintName string
	// Identity is the content hash of the shape, zero until built.
	Identity Identity
	// Path locates the structure within its call site ("" for the root).
	Path string
	// TypeName is the record type as written for new T { ... }.
	TypeName string
	// Target is the existing type the structure fills, nil when generated.
	Target *analyze.TypeInfo
	// Accessibility of a generated type.
	Accessibility Accessibility
	// Type stands for this structure in resolved member types until the
	// generated type is named.
	Type *analyze.TypeInfo
}

// Field returns the member with the given name, or nil.
func (s *Structure) Field(name string) *Field {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i]
		}
	}

	return nil
}

// Generated returns the members that must be emitted in generated code.
func (s *Structure) Generated() []Field {
	var out []Field
	for _, f := range s.Fields {
		if !f.IsDeclared() {
			out = append(out, f)
		}
	}

	return out
}

// Walk visits s and its nested structures, children before parents.
func (s *Structure) Walk(visit func(*Structure)) {
	for i := range s.Fields {
		if n := s.Fields[i].Nested; n != nil {
			n.Walk(visit)
		}
	}

	visit(s)
}

// ChildPath returns the path of the structure nested under member name.
func ChildPath(parent, name string) string {
	if parent == "" {
		return name
	}

	return parent + "." + name
}
