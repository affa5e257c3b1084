package gen

import (
	"bytes"
	"errors"
	"fmt"
	"go/parser"
	"go/token"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"

	"projgen/internal/analyze"
	"projgen/internal/capture"
	"projgen/internal/common"
	"projgen/internal/structure"
)

const headerComment = "Code generated by projgen. DO NOT EDIT."

// GeneratorConfig holds configuration for code generation.
type GeneratorConfig struct {
	// PackageName is the name of the generated package.
	PackageName string
	// PackagePath is the import path of the generated package. Types of
	// that package are referenced unqualified.
	PackagePath string
	// OutputDir is the directory the projection file is written to.
	OutputDir string
	// GenerateComments enables doc comments on generated declarations.
	GenerateComments bool
}

// DefaultGeneratorConfig returns the default generator configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		PackageName:      "projections",
		OutputDir:        "./projections",
		GenerateComments: true,
	}
}

// Generator renders stored structures and compiled call sites.
type Generator struct {
	config GeneratorConfig
	graph  *analyze.TypeGraph
}

// NewGenerator creates a generator. graph supplies package names and
// directories of companion targets and may be nil.
func NewGenerator(config GeneratorConfig, graph *analyze.TypeGraph) *Generator {
	return &Generator{config: config, graph: graph}
}

// Unit is one compiled call site ready for emission.
type Unit struct {
	// Location is the call-site token.
	Location string
	// Param is the selection's parameter name.
	Param string
	// Source is the parameter type.
	Source *analyze.TypeInfo
	// Root is the finished structure tree: null-safe, qualified and built.
	Root *structure.Structure
	// Binding maps the structures of Root to their stored entries.
	Binding structure.Binding
	// Captures become trailing parameters, in order.
	Captures []capture.Reference
}

// TypeDecl is one emitted record type.
type TypeDecl struct {
	Package       string // import path of the declaring package
	Name          string
	Accessibility structure.Accessibility
	Fields        []structure.Field
	Companion     bool
	Code          string
}

// FuncDecl is the projection function of one call site.
type FuncDecl struct {
	Location string
	Name     string
	Captures []capture.Reference
	Code     string
}

// SiteError reports a declaration that could not be rendered, with the
// call sites depending on it.
type SiteError struct {
	Locations []string
	Err       error
}

func (e *SiteError) Error() string {
	return e.Err.Error()
}

func (e *SiteError) Unwrap() error {
	return e.Err
}

// Generate renders entries, in dependency order, and one function per unit.
// Every structure of every unit must be bound to an entry or fill an
// existing type. A declaration that cannot be rendered yields a *SiteError.
func (g *Generator) Generate(entries []*structure.Entry, units []Unit) (*Result, error) {
	res := newResult()
	out := res.file(g.config.PackagePath, g.config.PackageName, g.config.OutputDir, g.outputFilename())

	w := &typeWriter{pkgPath: g.config.PackagePath, names: make(map[*analyze.TypeInfo]string)}
	w.bind(entries, units)

	order, err := declOrder(entries, w)
	if err != nil {
		return nil, fmt.Errorf("ordering types: %w", err)
	}

	for _, i := range order {
		e := entries[i]

		decl, err := g.typeDecl(w, e)
		if err != nil {
			return nil, &SiteError{Locations: e.Locations, Err: fmt.Errorf("generating %s: %w", e.Name, err)}
		}

		f := out
		if e.Companion {
			pkg := e.Structure.Target.Deref().ID.PkgPath
			f = res.file(pkg, g.packageName(pkg), g.packageDir(pkg), companionFilename(g.packageName(pkg)))
		}

		f.add(g.typeComment(e), decl.stmt)
		res.Types = append(res.Types, decl.TypeDecl)
	}

	var funcs []*jen.Statement

	taken := make(map[string]bool)
	for _, u := range units {
		fd, stmt, err := g.funcDecl(w, u, taken)
		if err != nil {
			return nil, &SiteError{Locations: []string{u.Location}, Err: fmt.Errorf("generating %s: %w", u.Location, err)}
		}

		funcs = append(funcs, stmt)
		res.Funcs = append(res.Funcs, fd)
	}

	if w.groupUsed {
		out.add(g.comment("%s is one group of a grouping query.", groupType), groupDecl())
	}

	for i, stmt := range funcs {
		out.add(g.funcComment(res.Funcs[i]), stmt)
	}

	return res, nil
}

func (g *Generator) outputFilename() string {
	return g.config.PackageName + "_projections.go"
}

func companionFilename(pkgName string) string {
	return pkgName + "_projgen.go"
}

func (g *Generator) packageName(pkgPath string) string {
	if pkgPath == g.config.PackagePath {
		return g.config.PackageName
	}

	if g.graph != nil {
		if p := g.graph.Packages[pkgPath]; p != nil && p.Name != "" {
			return p.Name
		}
	}

	return common.PkgAlias(pkgPath)
}

func (g *Generator) packageDir(pkgPath string) string {
	if pkgPath == g.config.PackagePath {
		return g.config.OutputDir
	}

	if g.graph != nil {
		if p := g.graph.Packages[pkgPath]; p != nil {
			return p.Dir
		}
	}

	return ""
}

type renderedType struct {
	TypeDecl
	stmt *jen.Statement
}

func (g *Generator) typeDecl(w *typeWriter, e *structure.Entry) (*renderedType, error) {
	s := e.Structure
	fields := s.Generated()

	pkg := g.config.PackagePath
	if e.Companion {
		pkg = s.Target.Deref().ID.PkgPath
		if pkg != g.config.PackagePath {
			for _, f := range fields {
				if w.local(f.GoType()) {
					return nil, fmt.Errorf("member %s of %s refers to a type generated into %s",
						f.Name, e.Name, g.config.PackagePath)
				}
			}
		}
	}

	members := make([]jen.Code, 0, len(fields))
	for _, f := range fields {
		tags := map[string]string{"json": jsonName(f.Name)}
		if f.Required {
			tags["projgen"] = "required"
		}

		members = append(members, jen.Id(f.Name).Add(w.typ(f.GoType())).Tag(tags))
	}

	stmt := jen.Type().Id(e.Name).Struct(members...)
	if err := w.err; err != nil {
		return nil, err
	}

	code, err := render(pkg, g.packageName(pkg), stmt)
	if err != nil {
		return nil, err
	}

	return &renderedType{
		TypeDecl: TypeDecl{
			Package:       pkg,
			Name:          e.Name,
			Accessibility: s.Accessibility,
			Fields:        fields,
			Companion:     e.Companion,
			Code:          code,
		},
		stmt: stmt,
	}, nil
}

func (g *Generator) funcDecl(w *typeWriter, u Unit, taken map[string]bool) (FuncDecl, *jen.Statement, error) {
	e := newFuncEmitter(w, u)

	name := funcName(e.recordName(u.Root), u.Root.Accessibility, taken)
	stmt := e.function(name)

	if err := e.firstErr(); err != nil {
		return FuncDecl{}, nil, err
	}

	code, err := render(g.config.PackagePath, g.config.PackageName, stmt)
	if err != nil {
		return FuncDecl{}, nil, err
	}

	return FuncDecl{Location: u.Location, Name: name, Captures: u.Captures, Code: code}, stmt, nil
}

// funcName derives a unique projection function name from the record name.
func funcName(record string, acc structure.Accessibility, taken map[string]bool) string {
	base := "project" + common.UpperFirst(record)
	if acc == structure.AccessPublic {
		base = common.UpperFirst(base)
	}

	name := base
	for i := 2; taken[name]; i++ {
		name = fmt.Sprintf("%s%d", base, i)
	}

	taken[name] = true

	return name
}

func (g *Generator) comment(format string, args ...any) string {
	if !g.config.GenerateComments {
		return ""
	}

	return fmt.Sprintf(format, args...)
}

func (g *Generator) typeComment(e *structure.Entry) string {
	if e.Companion {
		return g.comment("%s holds the generated members of %s.", e.Name, e.Structure.Target.ID.Name)
	}

	src := "its source"
	if t := e.Structure.SourceType; t != nil {
		src = t.String()
	}

	return g.comment("%s is projected from %s for %s.", e.Name, src, strings.Join(e.Locations, ", "))
}

func (g *Generator) funcComment(fd FuncDecl) string {
	return g.comment("%s is the projection at %s.", fd.Name, fd.Location)
}

// jsonName lower-cases the leading word of a member name, keeping the
// first letter of a following word: "ID" → "id", "URLPath" → "urlPath".
func jsonName(name string) string {
	runes := []rune(name)

	n := 0
	for n < len(runes) && unicode.IsUpper(runes[n]) {
		n++
	}

	if n > 1 && n < len(runes) {
		n--
	}

	for i := range n {
		runes[i] = unicode.ToLower(runes[i])
	}

	return string(runes)
}

// render formats one declaration as it reads inside package pkgPath: types
// of that package are unqualified and others use the file's import names.
func render(pkgPath, pkgName string, stmt *jen.Statement) (string, error) {
	f := jen.NewFilePathName(pkgPath, pkgName)
	f.Add(stmt)

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return "", fmt.Errorf("formatting code: %w", err)
	}

	src := buf.Bytes()

	fset := token.NewFileSet()

	file, err := parser.ParseFile(fset, "", src, parser.SkipObjectResolution)
	if err != nil {
		return "", fmt.Errorf("formatting code: %w", err)
	}

	if len(file.Decls) == 0 {
		return "", errors.New("formatting code: no declaration rendered")
	}

	start := fset.Position(file.Decls[len(file.Decls)-1].Pos()).Offset

	return strings.TrimSpace(string(src[start:])), nil
}
