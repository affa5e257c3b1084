package analyze

import (
	"strings"
)

// TypePath builds a readable path string through a projection.
// Examples:
//   - "OrderSummary" for a root structure
//   - "OrderSummary.Lines" for a field
//   - "OrderSummary.Lines[]" for the elements of a collection field
//   - "OrderSummary.Lines[].Sku" for a field within collection elements
type TypePath struct {
	parts []string
}

// NewTypePath creates a new TypePath from a root name.
func NewTypePath(root string) *TypePath {
	return &TypePath{
		parts: []string{root},
	}
}

// Field appends a field name to the path.
func (p *TypePath) Field(name string) *TypePath {
	return &TypePath{
		parts: append(append([]string{}, p.parts...), name),
	}
}

// Slice marks the last segment as iterating collection elements.
func (p *TypePath) Slice() *TypePath {
	if len(p.parts) == 0 {
		return &TypePath{parts: []string{"[]"}}
	}
	newParts := make([]string, len(p.parts))
	copy(newParts, p.parts)
	newParts[len(newParts)-1] += "[]"
	return &TypePath{parts: newParts}
}

// Root returns the first segment.
func (p *TypePath) Root() string {
	if len(p.parts) == 0 {
		return ""
	}

	return p.parts[0]
}

// Tail returns the path without its root segment.
func (p *TypePath) Tail() string {
	if len(p.parts) < 2 {
		return ""
	}

	return strings.Join(p.parts[1:], ".")
}

// String returns the full path string.
func (p *TypePath) String() string {
	return strings.Join(p.parts, ".")
}
