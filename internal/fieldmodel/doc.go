// Package fieldmodel turns a parsed selection into the ordered field model
// of its projection structures.
//
// Every member initializer of the selection's record construction becomes
// a field. Explicitly named members keep their name, implicit members take
// the last segment of their member path, and members whose name cannot be
// derived are skipped with an advisory diagnostic. Record constructions
// inside a member value become nested structures, recursively.
package fieldmodel
