package analyze

import (
	"errors"
	"fmt"
	"go/types"
	"path/filepath"
	"reflect"

	"golang.org/x/tools/go/packages"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// Analyzer loads Go packages and builds a type graph.
type Analyzer struct {
	// Dir is the working directory for package resolution ("" for the
	// process working directory).
	Dir string
	// Tolerant keeps loading when packages have type errors. This is how a
	// target type embedding a not-yet-generated companion can be analyzed.
	Tolerant bool
	// PackageErrors collects errors tolerated during loading.
	PackageErrors []error

	graph     *TypeGraph
	typeCache map[types.Type]*TypeInfo // Cache to handle recursive types
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		graph:     NewTypeGraph(),
		typeCache: make(map[types.Type]*TypeInfo),
	}
}

// LoadPackages loads the specified packages and builds the type graph.
// Patterns are standard Go package patterns (e.g., "./store", "projgen/warehouse").
func (a *Analyzer) LoadPackages(patterns ...string) (*TypeGraph, error) {
	cfg := &packages.Config{
		Mode: LoadMode,
		Dir:  a.Dir,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	var errs []error
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	}

	if len(errs) > 0 {
		if !a.Tolerant {
			return nil, fmt.Errorf("package errors: %w", errors.Join(errs...))
		}

		a.PackageErrors = append(a.PackageErrors, errs...)
	}

	// Register every package first so isExternalPackage sees the full set.
	for _, pkg := range pkgs {
		if pkg.Types == nil {
			continue
		}

		info := a.graph.Package(pkg.PkgPath)
		info.Name = pkg.Name
		if len(pkg.GoFiles) > 0 {
			info.Dir = filepath.Dir(pkg.GoFiles[0])
		}
	}

	for _, pkg := range pkgs {
		if pkg.Types == nil {
			continue
		}

		a.processPackage(pkg.Types)
	}

	return a.graph, nil
}

// Graph returns the current type graph.
func (a *Analyzer) Graph() *TypeGraph {
	return a.graph
}

// processPackage extracts types and package-level objects from a loaded package.
func (a *Analyzer) processPackage(pkg *types.Package) {
	scope := pkg.Scope()
	for _, name := range scope.Names() {
		switch obj := scope.Lookup(name).(type) {
		case *types.TypeName:
			typeInfo := a.analyzeType(obj.Type())
			typeInfo.ID = TypeID{PkgPath: pkg.Path(), Name: name}
			a.graph.AddType(typeInfo)

		case *types.Const:
			a.graph.AddObject(&ObjectInfo{
				PkgPath: pkg.Path(),
				Name:    name,
				Kind:    ObjectConst,
				Type:    a.analyzeType(types.Default(obj.Type())),
				Value:   obj.Val().ExactString(),
			})

		case *types.Var:
			a.graph.AddObject(&ObjectInfo{
				PkgPath: pkg.Path(),
				Name:    name,
				Kind:    ObjectVar,
				Type:    a.analyzeType(obj.Type()),
			})

		case *types.Func:
			sig, ok := obj.Type().(*types.Signature)
			if !ok {
				continue
			}

			params, result := a.analyzeSignature(sig)
			a.graph.AddObject(&ObjectInfo{
				PkgPath: pkg.Path(),
				Name:    name,
				Kind:    ObjectFunc,
				Type:    result,
				Params:  params,
			})
		}
	}
}

// analyzeType recursively analyzes a go/types.Type and returns a TypeInfo.
func (a *Analyzer) analyzeType(t types.Type) *TypeInfo {
	// Check cache to handle recursive types
	if cached, ok := a.typeCache[t]; ok {
		return cached
	}

	info := &TypeInfo{
		GoType: t,
	}

	// Pre-cache to handle recursive types (we'll fill in details)
	a.typeCache[t] = info

	switch tt := t.(type) {
	case *types.Alias:
		resolved := a.analyzeType(types.Unalias(tt))
		*info = *resolved
		info.GoType = t

	case *types.Named:
		a.analyzeNamedType(tt, info)

	case *types.Basic:
		if tt.Kind() == types.Invalid {
			info.Kind = TypeKindUnknown
			break
		}

		info.Kind = TypeKindBasic
		info.ID = TypeID{Name: tt.Name()}

	case *types.Pointer:
		info.Kind = TypeKindPointer
		info.ElemType = a.analyzeType(tt.Elem())

	case *types.Slice:
		info.Kind = TypeKindSlice
		info.ElemType = a.analyzeType(tt.Elem())

	case *types.Array:
		info.Kind = TypeKindArray
		info.ArrayLen = tt.Len()
		info.ElemType = a.analyzeType(tt.Elem())

	case *types.Map:
		info.Kind = TypeKindMap
		info.KeyType = a.analyzeType(tt.Key())
		info.ElemType = a.analyzeType(tt.Elem())

	case *types.Interface:
		info.Kind = TypeKindInterface

	case *types.Struct:
		info.Kind = TypeKindStruct
		a.analyzeStructFields(tt, info)

	default:
		// Channels, signatures, etc. are marked as unknown (unsupported)
		info.Kind = TypeKindUnknown
	}

	return info
}

// analyzeNamedType analyzes a named type.
func (a *Analyzer) analyzeNamedType(named *types.Named, info *TypeInfo) {
	obj := named.Obj()

	pkgPath := ""
	if obj.Pkg() != nil {
		pkgPath = obj.Pkg().Path()
	}

	info.ID = TypeID{
		PkgPath: pkgPath,
		Name:    obj.Name(),
	}

	underlying := named.Underlying()

	switch ut := underlying.(type) {
	case *types.Struct:
		if a.isExternalPackage(pkgPath) {
			info.Kind = TypeKindExternal
		} else {
			info.Kind = TypeKindStruct
			a.analyzeStructFields(ut, info)
		}

	case *types.Interface:
		info.Kind = TypeKindInterface

	default:
		// Named non-struct types (e.g., type OrderStatus string) keep their
		// underlying shape, including those from external packages.
		info.Kind = TypeKindAlias
		info.Underlying = a.analyzeType(ut)
	}

	if !a.isExternalPackage(pkgPath) {
		info.Methods = a.analyzeMethods(named)
	}
}

// analyzeMethods collects methods of *T, which include those of T.
func (a *Analyzer) analyzeMethods(named *types.Named) []MethodInfo {
	mset := types.NewMethodSet(types.NewPointer(named))

	methods := make([]MethodInfo, 0, mset.Len())
	for i := range mset.Len() {
		fn, ok := mset.At(i).Obj().(*types.Func)
		if !ok {
			continue
		}

		sig, ok := fn.Type().(*types.Signature)
		if !ok {
			continue
		}

		params, result := a.analyzeSignature(sig)
		methods = append(methods, MethodInfo{
			Name:   fn.Name(),
			Params: params,
			Result: result,
		})
	}

	return methods
}

func (a *Analyzer) analyzeSignature(sig *types.Signature) ([]*TypeInfo, *TypeInfo) {
	var params []*TypeInfo
	for i := range sig.Params().Len() {
		params = append(params, a.analyzeType(sig.Params().At(i).Type()))
	}

	var result *TypeInfo
	if sig.Results().Len() > 0 {
		result = a.analyzeType(sig.Results().At(0).Type())
	}

	return params, result
}

// isExternalPackage returns true if the package is not in our analyzed set.
func (a *Analyzer) isExternalPackage(pkgPath string) bool {
	_, ok := a.graph.Packages[pkgPath]
	return !ok
}

// analyzeStructFields extracts fields from a struct type. Unexported fields
// are kept so selections compiled into the same package can reach them.
func (a *Analyzer) analyzeStructFields(st *types.Struct, info *TypeInfo) {
	for i := 0; i < st.NumFields(); i++ {
		field := st.Field(i)

		info.Fields = append(info.Fields, FieldInfo{
			Name:     field.Name(),
			Exported: field.Exported(),
			Type:     a.analyzeType(field.Type()),
			Tag:      reflect.StructTag(st.Tag(i)),
			Embedded: field.Embedded(),
			Index:    i,
		})
	}
}

// GetStruct returns the TypeInfo for a named struct by its package path and name.
func (a *Analyzer) GetStruct(pkgPath, typeName string) (*TypeInfo, error) {
	id := TypeID{PkgPath: pkgPath, Name: typeName}
	info := a.graph.GetType(id)
	if info == nil {
		return nil, fmt.Errorf("type %s not found", id)
	}
	if info.Kind != TypeKindStruct {
		return nil, fmt.Errorf("type %s is not a struct (kind: %s)", id, info.Kind)
	}
	return info, nil
}
