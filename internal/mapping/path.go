package mapping

import (
	"errors"
	"fmt"
	"go/token"
	"strings"
)

// MemberPath is a dotted path to a projected member: "Total", "Lines.Sku".
type MemberPath []string

// ParsePath parses a dotted member path.
func ParsePath(path string) (MemberPath, error) {
	if path == "" {
		return nil, errors.New("empty path")
	}

	var segments MemberPath

	for part := range strings.SplitSeq(path, ".") {
		if part == "" {
			return nil, fmt.Errorf("invalid path %q: empty segment", path)
		}

		if !token.IsIdentifier(part) {
			return nil, fmt.Errorf("invalid path %q: invalid identifier %q", path, part)
		}

		segments = append(segments, part)
	}

	return segments, nil
}

// Member returns the last segment.
func (p MemberPath) Member() string {
	if len(p) == 0 {
		return ""
	}

	return p[len(p)-1]
}

// String joins the path back with dots.
func (p MemberPath) String() string {
	return strings.Join(p, ".")
}
