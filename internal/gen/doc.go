// Package gen renders compiled call sites as Go source.
//
// Code is built with jennifer, which owns import management and formatting.
// One file is produced for the output package, holding the generated record
// types and one projection function per call site. Targets that embed their
// generated companion get that companion declared in a file of their own
// package.
//
// Codegen patterns:
//   - Member assignment into a zero-valued target
//   - Composite literals for nested records
//   - Nil guards, coalescing, lifting and unwrapping as immediately invoked
//     function literals
//   - Queries as loops over the source, grouping through an ordered map
package gen
