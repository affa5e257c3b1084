package match

import (
	"strings"
	"unicode"
)

// NormalizeIdent folds an identifier for fuzzy matching by dropping word
// separators and case: "CustomerName", "customer_name" and "customer-name"
// all become "customername".
func NormalizeIdent(s string) string {
	return strings.ToLower(strings.Join(tokenizeCamelCase(s), ""))
}

// suffixes are stripped by NormalizeIdentWithSuffixStrip, longest first.
var suffixes = []string{"timestamp", "cents", "ids", "utc", "id", "at"}

// NormalizeIdentWithSuffixStrip normalizes s and strips one common suffix
// such as "id", "at" or "cents", unless nothing would be left.
func NormalizeIdentWithSuffixStrip(s string) string {
	normalized := NormalizeIdent(s)

	for _, suffix := range suffixes {
		if strings.HasSuffix(normalized, suffix) && len(normalized) > len(suffix) {
			normalized = strings.TrimSuffix(normalized, suffix)

			break
		}
	}

	return normalized
}

// tokenizeCamelCase splits an identifier into words at separators, at
// lower-to-upper transitions and before the last capital of an acronym
// followed by a lower-case letter: "ShipToURL" -> ["Ship", "To", "URL"],
// "HTMLBody" -> ["HTML", "Body"].
func tokenizeCamelCase(s string) []string {
	var tokens []string

	runes := []rune(s)
	start := -1

	flush := func(end int) {
		if start >= 0 && end > start {
			tokens = append(tokens, string(runes[start:end]))
		}

		start = -1
	}

	for i, r := range runes {
		if isSeparator(r) {
			flush(i)
			continue
		}

		if start >= 0 && wordBoundary(runes, i) {
			flush(i)
		}

		if start < 0 {
			start = i
		}
	}

	flush(len(runes))

	return tokens
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' '
}

// wordBoundary reports whether a new word starts at runes[i], i > 0.
func wordBoundary(runes []rune, i int) bool {
	if !unicode.IsUpper(runes[i]) {
		return false
	}

	if !unicode.IsUpper(runes[i-1]) {
		return true
	}

	return i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
