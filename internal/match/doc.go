// Package match provides the fuzzy name matching behind "did you mean"
// suggestions and the type compatibility check applied where a selection
// assigns into a member an existing type already declares.
//
// Key functions:
//   - NormalizeIdent: normalizes identifiers for fuzzy matching
//   - Levenshtein: computes edit distance between strings
//   - Suggest: ranks known names against a misspelled one
//   - ScoreTypeCompatibility: scores an inferred type against a declared one
package match
