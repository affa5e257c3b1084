package capture

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"

	"projgen/internal/analyze"
	"projgen/internal/common"
	"projgen/internal/diagnostic"
	"projgen/internal/resolve"
	"projgen/internal/selector"
	"projgen/internal/structure"
)

// Kind classifies a captured binding.
type Kind int

const (
	KindLocal Kind = iota
	KindParameter
	KindInstanceMember
	KindStaticMember
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindLocal:
		return "local"
	case KindParameter:
		return "parameter"
	case KindInstanceMember:
		return "instanceMember"
	case KindStaticMember:
		return "staticMember"
	default:
		return "kind?"
	}
}

// Reference is an outer binding the projection function takes as a
// parameter.
type Reference struct {
	Name string
	Kind Kind
	// Type is the binding's type, any when the scope does not declare it.
	Type *analyze.TypeInfo
	// Object is the package variable a static member refers to.
	Object *analyze.ObjectInfo
	// Untyped is set when the scope does not declare the binding.
	Untyped bool
}

// Analyze returns the references of root and its nested structures,
// sorted by name, each binding once. Bindings the scope does not declare
// are reported as info diagnostics.
//
// A package variable is named after its declaration unless that name is
// taken by another reference or a lambda parameter; it is then prefixed
// with its package name ("storeDefaultCurrency").
func Analyze(root *structure.Structure, info *resolve.Info, location string) ([]Reference, diagnostic.Diagnostics) {
	a := &analyzer{info: info, location: location, seen: make(map[string]bool), params: make(map[string]bool)}

	root.Walk(func(s *structure.Structure) {
		for _, f := range s.Fields {
			a.path = structure.ChildPath(s.Path, f.Name)
			a.expr(f.Value)
		}
	})

	a.rename()

	slices.SortFunc(a.refs, func(x, y Reference) int { return cmp.Compare(x.Name, y.Name) })

	return a.refs, a.diags
}

type analyzer struct {
	info     *resolve.Info
	location string
	path     string
	seen     map[string]bool
	params   map[string]bool
	refs     []Reference
	diags    diagnostic.Diagnostics
}

// key identifies the binding behind ref.
func key(ref Reference) string {
	if ref.Object != nil {
		return "object " + ref.Object.PkgPath + "." + ref.Object.Name
	}

	return "scope " + ref.Name
}

// rename gives package variables whose name is shared a qualified name.
func (a *analyzer) rename() {
	owners := make(map[string]map[string]bool)
	for _, r := range a.refs {
		if owners[r.Name] == nil {
			owners[r.Name] = make(map[string]bool)
		}

		owners[r.Name][key(r)] = true
	}

	taken := make(map[string]bool, len(a.refs))

	var renamed []int

	for i, r := range a.refs {
		if r.Object != nil && (len(owners[r.Name]) > 1 || a.params[r.Name]) {
			renamed = append(renamed, i)
			continue
		}

		taken[r.Name] = true
	}

	slices.SortFunc(renamed, func(i, j int) int { return cmp.Compare(key(a.refs[i]), key(a.refs[j])) })

	for _, i := range renamed {
		obj := a.refs[i].Object
		base := common.PkgAlias(obj.PkgPath) + common.UpperFirst(obj.Name)

		name := base
		for n := 2; taken[name] || a.params[name]; n++ {
			name = base + strconv.Itoa(n)
		}

		taken[name] = true
		a.refs[i].Name = name
	}
}

// expr collects the references in x. Keyed records are skipped: their
// members are visited with their own structure.
func (a *analyzer) expr(x selector.Expr) {
	selector.Inspect(x, func(e selector.Expr) bool {
		switch e := e.(type) {
		case *selector.New:
			return e.Key == ""
		case *selector.Member:
			if obj := a.info.Objects[e]; obj != nil {
				if obj.Kind == analyze.ObjectVar {
					a.add(Reference{Name: obj.Name, Kind: KindStaticMember, Type: obj.Type, Object: obj})
				}

				return false
			}
		case *selector.Ident:
			if b, ok := a.info.Uses[e]; ok {
				a.binding(e.Name, b)
			}
		case *selector.Lambda:
			a.params[e.Param] = true
		case *selector.Query:
			for _, op := range e.Ops {
				a.params[op.Param] = true
			}
		}

		return true
	})
}

func (a *analyzer) binding(name string, b resolve.Binding) {
	ref := Reference{Name: name, Type: b.Type, Object: b.Object, Untyped: b.Untyped}

	switch b.Kind {
	case resolve.BindLocal:
		ref.Kind = KindLocal
	case resolve.BindParameter:
		ref.Kind = KindParameter
	case resolve.BindReceiver, resolve.BindReceiverField:
		ref.Kind = KindInstanceMember
	case resolve.BindParam:
		a.params[name] = true
		return
	case resolve.BindPackageVar:
		ref.Kind = KindStaticMember
	default:
		return
	}

	a.add(ref)
}

func (a *analyzer) add(ref Reference) {
	if a.seen[key(ref)] {
		return
	}

	a.seen[key(ref)] = true

	if ref.Untyped {
		ref.Type = analyze.Any
		a.diags.AddInfo(diagnostic.CodeUntypedCapture,
			fmt.Sprintf("the type of captured %s %s is not declared; it is passed as any", ref.Kind, ref.Name),
			a.location, a.path)
	}

	a.refs = append(a.refs, ref)
}

// Names returns the names of refs in order.
func Names(refs []Reference) []string {
	names := make([]string, len(refs))
	for i, r := range refs {
		names[i] = r.Name
	}

	return names
}
