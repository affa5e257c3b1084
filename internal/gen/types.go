package gen

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/dave/jennifer/jen"

	"projgen/internal/analyze"
	"projgen/internal/structure"
)

// groupType is the generic record grouping queries produce.
const groupType = "projectionGroup"

func groupDecl() *jen.Statement {
	return jen.Type().Id(groupType).Types(jen.Id("K").Id("comparable"), jen.Id("E").Id("any")).Struct(
		jen.Id("Key").Id("K"),
		jen.Id("Items").Index().Id("E"),
	)
}

// typeWriter spells types. Structure placeholders are spelled with the name
// of the entry they were stored as.
type typeWriter struct {
	pkgPath   string
	names     map[*analyze.TypeInfo]string
	groupUsed bool
	err       error
}

// bind names the placeholder of every stored structure.
func (w *typeWriter) bind(entries []*structure.Entry, units []Unit) {
	for _, e := range entries {
		if !e.Companion && e.Structure.Type != nil {
			w.names[e.Structure.Type] = e.Name
		}
	}

	for _, u := range units {
		u.Root.Walk(func(s *structure.Structure) {
			if e := u.Binding[s.Path]; e != nil && !e.Companion && s.Type != nil {
				w.names[s.Type] = e.Name
			}
		})
	}
}

func (w *typeWriter) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *typeWriter) named(name string) *jen.Statement {
	if w.pkgPath == "" {
		return jen.Id(name)
	}

	return jen.Qual(w.pkgPath, name)
}

// typ spells t. Every call returns a fresh statement.
func (w *typeWriter) typ(t *analyze.TypeInfo) *jen.Statement {
	if t == nil {
		w.fail(errors.New("missing type"))
		return jen.Id("any")
	}

	if name, ok := w.names[t]; ok {
		return w.named(name)
	}

	if t.IsNamed() {
		if t.ID.PkgPath == "" {
			return jen.Id(t.ID.Name)
		}

		return jen.Qual(t.ID.PkgPath, t.ID.Name)
	}

	switch t.Kind {
	case analyze.TypeKindPointer:
		return jen.Op("*").Add(w.typ(t.ElemType))
	case analyze.TypeKindSlice:
		return jen.Index().Add(w.typ(t.ElemType))
	case analyze.TypeKindArray:
		return jen.Index(jen.Op(strconv.FormatInt(t.ArrayLen, 10))).Add(w.typ(t.ElemType))
	case analyze.TypeKindMap:
		return jen.Map(w.typ(t.KeyType)).Add(w.typ(t.ElemType))
	case analyze.TypeKindSeq:
		return jen.Qual("iter", "Seq").Types(w.typ(t.ElemType))
	case analyze.TypeKindGroup:
		w.groupUsed = true
		return jen.Id(groupType).Types(w.typ(t.KeyType), w.typ(t.ElemType))
	case analyze.TypeKindInterface:
		return jen.Id("any")
	case analyze.TypeKindStruct:
		if t.IsGenerated && len(t.Fields) == 0 {
			w.fail(errors.New("a projected record has no generated type"))
		}

		fields := make([]jen.Code, 0, len(t.Fields))
		for _, f := range t.Fields {
			fields = append(fields, jen.Id(f.Name).Add(w.typ(f.Type)))
		}

		return jen.Struct(fields...)
	default:
		w.fail(fmt.Errorf("cannot spell type %s", t))
		return jen.Id("any")
	}
}

// local reports whether t refers to a type that exists only in the output
// package.
func (w *typeWriter) local(t *analyze.TypeInfo) bool {
	switch {
	case t == nil:
		return false
	case w.names[t] != "", t.Kind == analyze.TypeKindGroup:
		return true
	case t.IsNamed():
		return false
	}

	if w.local(t.ElemType) || w.local(t.KeyType) {
		return true
	}

	for _, f := range t.Fields {
		if w.local(f.Type) {
			return true
		}
	}

	return false
}

// zero spells the zero value of t.
func (w *typeWriter) zero(t *analyze.TypeInfo) *jen.Statement {
	if t == nil || t.IsNilable() {
		return jen.Nil()
	}

	switch name := t.BasicName(); name {
	case "":
	case "bool":
		return jen.False()
	case "string":
		return jen.Lit("")
	default:
		return jen.Lit(0)
	}

	switch t.Kind {
	case analyze.TypeKindStruct, analyze.TypeKindArray, analyze.TypeKindGroup:
		return w.typ(t).Values()
	default:
		return jen.Op("*").New(w.typ(t))
	}
}

// declOrder orders entries so that every type follows the types its
// members refer to, keeping registration order otherwise.
func declOrder(entries []*structure.Entry, w *typeWriter) ([]int, error) {
	index := make(map[string]int, len(entries))
	for i, e := range entries {
		if !e.Companion {
			index[e.Name] = i
		}
	}

	return topoSort(len(entries), func(i int) []int {
		var deps []int
		for _, f := range entries[i].Structure.Generated() {
			for _, name := range w.refs(f.GoType()) {
				if j, ok := index[name]; ok && j != i {
					deps = append(deps, j)
				}
			}
		}

		return deps
	})
}

// refs lists the generated type names t refers to.
func (w *typeWriter) refs(t *analyze.TypeInfo) []string {
	if t == nil {
		return nil
	}

	if name, ok := w.names[t]; ok {
		return []string{name}
	}

	if t.IsNamed() {
		return nil
	}

	out := append(w.refs(t.ElemType), w.refs(t.KeyType)...)
	for _, f := range t.Fields {
		out = append(out, w.refs(f.Type)...)
	}

	return out
}
