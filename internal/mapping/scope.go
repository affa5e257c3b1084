package mapping

import (
	"fmt"

	"projgen/internal/analyze"
	"projgen/internal/common"
	"projgen/internal/resolve"
)

// BuildScope resolves the scope of cs against graph. Typed captures the
// scope does not declare become locals.
func (cs *CallSite) BuildScope(graph *analyze.TypeGraph) (resolve.Scope, error) {
	scope := resolve.Scope{
		Package:    cs.Scope.Package,
		Locals:     make(map[string]*analyze.TypeInfo, len(cs.Scope.Locals)),
		Parameters: make(map[string]*analyze.TypeInfo, len(cs.Scope.Parameters)),
	}

	for _, name := range common.SortedKeys(cs.Scope.Locals) {
		t, err := resolveNamed(graph, "local "+name, cs.Scope.Locals[name])
		if err != nil {
			return resolve.Scope{}, err
		}

		scope.Locals[name] = t
	}

	for _, name := range common.SortedKeys(cs.Scope.Parameters) {
		t, err := resolveNamed(graph, "parameter "+name, cs.Scope.Parameters[name])
		if err != nil {
			return resolve.Scope{}, err
		}

		scope.Parameters[name] = t
	}

	if r := cs.Scope.Receiver; r != nil {
		t, err := resolveNamed(graph, "receiver "+r.Name, r.Type)
		if err != nil {
			return resolve.Scope{}, err
		}

		scope.Receiver = &resolve.Receiver{Name: r.Name, Type: t}
	}

	for _, c := range cs.Capture {
		if c.Type == "" || declares(scope, c.Name) {
			continue
		}

		t, err := resolveNamed(graph, "capture "+c.Name, c.Type)
		if err != nil {
			return resolve.Scope{}, err
		}

		scope.Locals[c.Name] = t
	}

	return scope, nil
}

func declares(scope resolve.Scope, name string) bool {
	if _, ok := scope.Locals[name]; ok {
		return true
	}

	if _, ok := scope.Parameters[name]; ok {
		return true
	}

	return scope.Receiver != nil && scope.Receiver.Name == name
}

func resolveNamed(graph *analyze.TypeGraph, what, name string) (*analyze.TypeInfo, error) {
	t := ResolveType(name, graph)
	if t == nil {
		return nil, fmt.Errorf("type %q of %s not found", name, what)
	}

	return t, nil
}
