package common

import (
	"path"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// UnknownStr is the fallback spelling for enum values without a name.
	UnknownStr = "unknown"
	// AnyTypeStr is the spelling of the empty interface used for untyped captures.
	AnyTypeStr = "any"
)

// PkgAlias returns the package alias (last element of path) for a given package path.
// Returns empty string if pkgPath is empty.
func PkgAlias(pkgPath string) string {
	if pkgPath == "" {
		return ""
	}

	return path.Base(pkgPath)
}

// SplitQualified splits "pkg.Name" into its qualifier and name.
// A bare "Name" yields an empty qualifier.
func SplitQualified(s string) (qualifier, name string) {
	i := strings.LastIndex(s, ".")
	if i < 0 {
		return "", s
	}

	return s[:i], s[i+1:]
}

// IsExported reports whether name starts with an upper-case letter.
func IsExported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

// UpperFirst returns name with its first rune upper-cased.
func UpperFirst(name string) string {
	if name == "" {
		return name
	}

	r, size := utf8.DecodeRuneInString(name)

	return string(unicode.ToUpper(r)) + name[size:]
}

// LowerFirst returns name with its first rune lower-cased.
func LowerFirst(name string) string {
	if name == "" {
		return name
	}

	r, size := utf8.DecodeRuneInString(name)

	return string(unicode.ToLower(r)) + name[size:]
}
