package mapping

import (
	"strings"

	"projgen/internal/analyze"
	"projgen/internal/common"
)

// ResolveType resolves a type name like:
// - "store.Order" (short)
// - "projgen/store.Order" (full)
// - "int64", "any" (predeclared)
// - "*store.Order", "[]string" (pointer and slice forms)
// - "Order" (name only, first match in import path order).
func ResolveType(name string, graph *analyze.TypeGraph) *analyze.TypeInfo {
	if graph == nil {
		return nil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	if t := graph.ResolveTypeName(name); t != nil {
		return t
	}

	switch {
	case strings.HasPrefix(name, "*"):
		if elem := ResolveType(name[1:], graph); elem != nil {
			return analyze.NewPointer(elem)
		}

		return nil
	case strings.HasPrefix(name, "[]"):
		if elem := ResolveType(name[2:], graph); elem != nil {
			return analyze.NewSlice(elem)
		}

		return nil
	case strings.Contains(name, "."):
		return resolveSuffix(name, graph)
	}

	// Name-only: best-effort match by type name.
	for _, path := range common.SortedKeys(graph.Packages) {
		if t := graph.GetType(analyze.TypeID{PkgPath: path, Name: name}); t != nil {
			return t
		}
	}

	return nil
}

// resolveSuffix matches a qualifier against the tail of import paths, for
// forms like "app/store.Order" against "example.com/app/store".
func resolveSuffix(name string, graph *analyze.TypeGraph) *analyze.TypeInfo {
	qualifier, typeName := common.SplitQualified(name)
	if qualifier == "" || typeName == "" {
		return nil
	}

	for _, path := range common.SortedKeys(graph.Packages) {
		if path != qualifier && !strings.HasSuffix(path, "/"+qualifier) {
			continue
		}

		if t := graph.GetType(analyze.TypeID{PkgPath: path, Name: typeName}); t != nil {
			return t
		}
	}

	return nil
}
