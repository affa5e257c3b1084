package resolve

import (
	"projgen/internal/analyze"
)

// Scope is the environment a call site's selection is written in.
type Scope struct {
	// Package is the import path of the call site's package. Unqualified
	// package-level names resolve there.
	Package string
	// Locals are local variables visible at the call site.
	Locals map[string]*analyze.TypeInfo
	// Parameters are parameters of the enclosing function.
	Parameters map[string]*analyze.TypeInfo
	// Receiver is the enclosing method's receiver, if any.
	Receiver *Receiver
}

// Receiver is a method receiver: its name and type.
type Receiver struct {
	Name string
	Type *analyze.TypeInfo
}

// BindingKind classifies what an identifier denotes.
type BindingKind int

const (
	BindUnknown       BindingKind = iota
	BindParam                     // the selection or a lambda parameter
	BindLocal                     // local variable of the call site
	BindParameter                 // parameter of the enclosing function
	BindReceiver                  // the method receiver itself
	BindReceiverField             // field of the method receiver
	BindPackageVar                // package-level variable
	BindConst                     // constant
	BindFunc                      // package-level function
	BindType                      // named type
	BindPackage                   // package qualifier
	BindBuiltin                   // predeclared function
)

var bindingKindNames = [...]string{
	BindUnknown:       "unknown",
	BindParam:         "param",
	BindLocal:         "local",
	BindParameter:     "parameter",
	BindReceiver:      "receiver",
	BindReceiverField: "receiver field",
	BindPackageVar:    "package var",
	BindConst:         "const",
	BindFunc:          "func",
	BindType:          "type",
	BindPackage:       "package",
	BindBuiltin:       "builtin",
}

// String returns the binding kind name.
func (k BindingKind) String() string {
	if k < 0 || int(k) >= len(bindingKindNames) {
		return "unknown"
	}

	return bindingKindNames[k]
}

// Binding is what an identifier resolved to.
type Binding struct {
	Kind BindingKind
	// Type of the value the identifier denotes, nil for packages.
	Type *analyze.TypeInfo
	// Object is set for package-level declarations.
	Object *analyze.ObjectInfo
	// Package is set for package qualifiers.
	Package *analyze.PackageInfo
	// Untyped is set when nothing in scope declares the identifier; Type is
	// then any.
	Untyped bool
}

// IsValue reports whether the binding can be used as an expression value.
func (b Binding) IsValue() bool {
	switch b.Kind {
	case BindFunc, BindType, BindPackage, BindBuiltin:
		return false
	default:
		return true
	}
}

type param struct {
	name string
	typ  *analyze.TypeInfo
}

// lookup binds name: lambda parameters first (innermost wins), then the
// call site's locals, parameters and receiver, then package-level names of
// the call site's package, then package qualifiers and builtins. Anything
// else is taken for an undeclared local.
func (r *resolver) lookup(name string) Binding {
	for i := len(r.env) - 1; i >= 0; i-- {
		if r.env[i].name == name {
			return Binding{Kind: BindParam, Type: r.env[i].typ}
		}
	}

	scope := r.cfg.Scope
	if t, ok := scope.Locals[name]; ok {
		return typedOrAny(BindLocal, t)
	}

	if t, ok := scope.Parameters[name]; ok {
		return typedOrAny(BindParameter, t)
	}

	if recv := scope.Receiver; recv != nil {
		if recv.Name == name {
			return typedOrAny(BindReceiver, recv.Type)
		}

		if f := recv.Type.Field(name); f != nil {
			return Binding{Kind: BindReceiverField, Type: f.Type}
		}
	}

	if obj := r.cfg.Graph.Lookup(scope.Package, name); obj != nil {
		return objectBinding(obj)
	}

	if pkg := r.cfg.Graph.PackageByName(name); pkg != nil {
		return Binding{Kind: BindPackage, Package: pkg}
	}

	if name == "len" {
		return Binding{Kind: BindBuiltin, Type: analyze.Int}
	}

	return Binding{Kind: BindLocal, Type: analyze.Any, Untyped: true}
}

func typedOrAny(kind BindingKind, t *analyze.TypeInfo) Binding {
	if t == nil {
		return Binding{Kind: kind, Type: analyze.Any, Untyped: true}
	}

	return Binding{Kind: kind, Type: t}
}

func objectBinding(obj *analyze.ObjectInfo) Binding {
	b := Binding{Object: obj, Type: obj.Type}

	switch obj.Kind {
	case analyze.ObjectConst:
		b.Kind = BindConst
	case analyze.ObjectVar:
		b.Kind = BindPackageVar
	case analyze.ObjectFunc:
		b.Kind = BindFunc
	case analyze.ObjectType:
		b.Kind = BindType
	}

	return b
}

func (r *resolver) push(name string, t *analyze.TypeInfo) {
	r.env = append(r.env, param{name: name, typ: t})
}

func (r *resolver) pop() {
	r.env = r.env[:len(r.env)-1]
}

// current returns the type of the innermost parameter in scope.
func (r *resolver) current() *analyze.TypeInfo {
	return r.env[len(r.env)-1].typ
}
