package gen

import (
	"bytes"
	"fmt"

	"github.com/dave/jennifer/jen"
)

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	// Package is the import path of the file's package.
	Package string
	// Dir is the directory the file belongs in.
	Dir string
	// Filename is the name of the file (e.g., "dto_projections.go").
	Filename string
	// Content is the formatted Go source code.
	Content []byte
}

// Result holds the declarations of one generation run.
type Result struct {
	Types []TypeDecl
	Funcs []FuncDecl

	files map[string]*pkgFile
	order []string
}

type pkgFile struct {
	path     string
	dir      string
	filename string
	file     *jen.File
}

func newResult() *Result {
	return &Result{files: make(map[string]*pkgFile)}
}

// file returns the file collecting declarations of pkgPath, creating it on
// first use.
func (r *Result) file(pkgPath, pkgName, dir, filename string) *pkgFile {
	if f, ok := r.files[pkgPath]; ok {
		return f
	}

	jf := jen.NewFile(pkgName)
	if pkgPath != "" {
		jf = jen.NewFilePathName(pkgPath, pkgName)
	}

	jf.HeaderComment(headerComment)

	f := &pkgFile{path: pkgPath, dir: dir, filename: filename, file: jf}
	r.files[pkgPath] = f
	r.order = append(r.order, pkgPath)

	return f
}

func (f *pkgFile) add(comment string, decl jen.Code) {
	if comment != "" {
		f.file.Comment(comment)
	}

	f.file.Add(decl)
	f.file.Line()
}

// Packages lists the import paths that receive a file, output package first.
func (r *Result) Packages() []string {
	return append([]string(nil), r.order...)
}

// RenderFile renders the declarations of pkgPath as one formatted file.
// When formatting fails the unformatted source is written next to the
// intended output for inspection.
func (r *Result) RenderFile(pkgPath string) (GeneratedFile, error) {
	f, ok := r.files[pkgPath]
	if !ok {
		return GeneratedFile{}, fmt.Errorf("no declarations for package %q", pkgPath)
	}

	out := GeneratedFile{Package: f.path, Dir: f.dir, Filename: f.filename}

	var buf bytes.Buffer
	if err := f.file.Render(&buf); err != nil {
		f.file.NoFormat = true

		var raw bytes.Buffer
		if f.file.Render(&raw) == nil {
			_ = writeDebugUnformatted(f.dir, f.filename, raw.Bytes())
		}

		f.file.NoFormat = false

		return out, fmt.Errorf("rendering %s: %w", f.filename, err)
	}

	out.Content = buf.Bytes()

	return out, nil
}

// Files renders every package file in order.
func (r *Result) Files() ([]GeneratedFile, error) {
	files := make([]GeneratedFile, 0, len(r.order))
	for _, pkg := range r.order {
		f, err := r.RenderFile(pkg)
		if err != nil {
			return nil, err
		}

		files = append(files, f)
	}

	return files, nil
}
