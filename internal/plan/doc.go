// Package plan drives the compilation of projection call sites.
//
// Compilation pipeline:
//  1. Analyze packages → type graph
//  2. Load the manifest → validate → call sites
//  3. For each call site, concurrently:
//     - parse the selection into a field model
//     - resolve types and nullability against the graph
//     - analyze and check captures
//     - rewrite optional chains and qualify package references
//     - build the structure tree and its identities
//  4. Register structures in call-site order so names are deterministic
//  5. Generate record types and projection functions
//
// A call site that fails is skipped with its diagnostics; the others are
// still compiled and generated.
package plan
