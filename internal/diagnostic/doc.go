// Package diagnostic provides structured errors, warnings and advisory
// notes produced while compiling projection call sites.
//
// Every diagnostic carries the location token of the call site it belongs
// to so that drivers can report it at the right place. Key codes:
//   - MissingCapture / UnusedCapture for outer references
//   - StructuralConflict for shapes that cannot be generated
//   - AmbiguousGroupKey for un-nameable grouping keys
//   - SkippedField for selections without a derivable name
package diagnostic
