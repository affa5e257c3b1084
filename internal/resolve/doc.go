// Package resolve types a parsed selection against the loaded type graph.
//
// It assigns every member its result type and nullability, preferring what
// an existing target type declares over what the expression infers,
// normalizes collection operators into typed queries and binds every
// identifier to what it denotes: a lambda parameter, something from the
// call site's scope or a package-level declaration. The bindings are
// recorded in Info for the capture, null-safety and qualification stages.
package resolve
