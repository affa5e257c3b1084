// Package analyze provides package loading and type graph extraction.
//
// It uses golang.org/x/tools/go/packages with go/types to build a canonical
// in-memory model of the records a projection reads from and writes to.
//
// Key types:
//   - TypeID: package import path + type name
//   - TypeInfo: describes kind (struct/basic/alias/pointer/slice/map/seq/...)
//   - FieldInfo: describes field name, type, tags, and embedding
//   - ObjectInfo: package-level consts, vars, funcs and types, which decide
//     whether an identifier in a selection is captured or qualified
package analyze
