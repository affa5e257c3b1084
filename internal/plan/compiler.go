package plan

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"projgen/internal/analyze"
	"projgen/internal/capture"
	"projgen/internal/diagnostic"
	"projgen/internal/fieldmodel"
	"projgen/internal/gen"
	"projgen/internal/nullsafe"
	"projgen/internal/output"
	"projgen/internal/qualify"
	"projgen/internal/resolve"
	"projgen/internal/selector"
	"projgen/internal/structure"
)

// DefaultParam names the selection parameter of a body that is not a
// lambda when the call site does not name one.
const DefaultParam = "x"

// Config holds configuration for a compilation.
type Config struct {
	// Jobs bounds the number of call sites compiled concurrently
	// (0 = GOMAXPROCS).
	Jobs int
	// EmptyCollections makes missing collections produced by a nested
	// projection fall back to an empty collection instead of nil.
	EmptyCollections bool
	// Generator configures code generation. Its PackagePath is the
	// package generated code lives in.
	Generator gen.GeneratorConfig
	// Dump logs every built structure tree at debug level.
	Dump bool
}

// DefaultConfig returns the default compilation configuration.
func DefaultConfig() Config {
	return Config{
		EmptyCollections: true,
		Generator:        gen.DefaultGeneratorConfig(),
	}
}

// Compiler compiles call sites against a type graph. A Compiler holds the
// structure store shared by every call site it compiles.
type Compiler struct {
	graph  *analyze.TypeGraph
	config Config
	store  *structure.Store
}

// NewCompiler creates a new Compiler.
func NewCompiler(graph *analyze.TypeGraph, config Config) *Compiler {
	return &Compiler{
		graph:  graph,
		config: config,
		store:  structure.NewStore(),
	}
}

// Store returns the compiler's structure store.
func (c *Compiler) Store() *structure.Store {
	return c.store
}

// front is the outcome of compiling one call site up to registration.
type front struct {
	param string
	built *structure.Structure
	refs  []capture.Reference
	diags diagnostic.Diagnostics
}

// CompileAll compiles sites concurrently, registers their structures in
// input order and generates code for those that compiled. The returned
// error is reserved for cancellation and generator failures; call-site
// problems are reported through diagnostics.
func (c *Compiler) CompileAll(ctx context.Context, sites []CallSite) (*Result, error) {
	fronts := make([]front, len(sites))

	jobs := c.config.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(sites))))

	for i := range sites {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			// Index i is owned by this goroutine.
			fronts[i] = c.compile(&sites[i])

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compiling call sites: %w", err)
	}

	res := &Result{Sites: make([]SiteResult, len(sites))}

	var units []gen.Unit

	for i := range sites {
		site := &sites[i]
		sr := c.register(site, fronts[i])
		res.Sites[i] = sr
		res.Diagnostics.Merge(sr.Diagnostics)

		if sr.Failed() {
			output.SiteLogger(site.Location).Warn("call site skipped", "errors", len(sr.Diagnostics.Errors))
			continue
		}

		units = append(units, *sr.Unit)
	}

	res.Entries = c.store.Entries()

	if len(units) == 0 {
		res.Diagnostics.Sort()

		return res, nil
	}

	out, err := c.generate(res, units)
	if err != nil {
		return res, fmt.Errorf("generating code: %w", err)
	}

	res.Output = out
	res.Diagnostics.Sort()

	if out != nil {
		output.Debug("compiled call sites", "sites", len(sites), "compiled", res.Compiled(), "types", len(out.Types))
	}

	return res, nil
}

// generate renders units. A call site whose code cannot be rendered is
// marked failed and generation is retried without it, so one bad site
// never drops the others.
func (c *Compiler) generate(res *Result, units []gen.Unit) (*gen.Result, error) {
	entries := res.Entries

	for len(units) > 0 {
		out, err := gen.NewGenerator(c.config.Generator, c.graph).Generate(entries, units)

		var siteErr *gen.SiteError
		if err == nil || !errors.As(err, &siteErr) {
			return out, err
		}

		failed := make(map[string]bool, len(siteErr.Locations))
		for _, loc := range siteErr.Locations {
			failed[loc] = true
		}

		var kept []gen.Unit
		for _, u := range units {
			if !failed[u.Location] {
				kept = append(kept, u)
				continue
			}

			failSite(res, u.Location, siteErr.Err)
		}

		if len(kept) == len(units) {
			return nil, err
		}

		units = kept
		entries = liveEntries(res.Entries, units)
	}

	return nil, nil
}

// failSite marks the call site at location as skipped after a generation error.
func failSite(res *Result, location string, err error) {
	for i := range res.Sites {
		sr := &res.Sites[i]
		if sr.Location != location || sr.Failed() {
			continue
		}

		sr.Unit = nil
		sr.Diagnostics.AddError(diagnostic.CodeGeneration, err.Error(), location, "")
		res.Diagnostics.AddError(diagnostic.CodeGeneration, err.Error(), location, "")

		output.SiteLogger(location).Warn("call site skipped", "error", err)
	}
}

// liveEntries returns the entries used by at least one of units.
func liveEntries(entries []*structure.Entry, units []gen.Unit) []*structure.Entry {
	live := make(map[string]bool, len(units))
	for _, u := range units {
		live[u.Location] = true
	}

	var out []*structure.Entry

	for _, e := range entries {
		for _, loc := range e.Locations {
			if live[loc] {
				out = append(out, e)
				break
			}
		}
	}

	return out
}

// Compile compiles a single call site with the compiler's store.
func (c *Compiler) Compile(site CallSite) (*Result, error) {
	return c.CompileAll(context.Background(), []CallSite{site})
}

// compile runs the per-call-site pipeline up to the built structure tree.
// It touches no shared state.
func (c *Compiler) compile(site *CallSite) front {
	var f front

	logger := output.SiteLogger(site.Location)

	lam, err := parseSelection(site.Body, site.Param)
	if err != nil {
		f.diags.AddError(diagnostic.CodeSyntax, err.Error(), site.Location, "")
		return f
	}

	root, diags := fieldmodel.Parse(lam, site.Location, site.Hint)
	f.diags.Merge(diags)

	if root == nil || f.diags.HasErrors() {
		return f
	}

	resolved, info, diags := resolve.Resolve(resolve.Selection{
		Root:   root,
		Param:  lam.Param,
		Source: site.Source,
		Target: site.Target,
	}, resolve.Config{
		Graph:         c.graph,
		Scope:         site.Scope,
		OutputPackage: c.config.Generator.PackagePath,
		Location:      site.Location,
	})
	f.diags.Merge(diags)

	if resolved == nil || f.diags.HasErrors() {
		return f
	}

	refs, diags := capture.Analyze(resolved, info, site.Location)
	f.diags.Merge(diags)
	f.diags.Merge(capture.Check(site.Location, refs, site.Captures))

	if f.diags.HasErrors() {
		return f
	}

	safe := nullsafe.Apply(resolved, info, nullsafe.Options{EmptyCollections: c.config.EmptyCollections})
	qualified := qualify.Apply(safe, info, refs)

	built, diags := structure.Build(qualified, structure.BuildOptions{
		Location:      site.Location,
		Accessibility: site.Accessibility,
		OutputPackage: c.config.Generator.PackagePath,
		Declared:      site.Declared,
	})
	f.diags.Merge(diags)

	if f.diags.HasErrors() {
		return f
	}

	if c.config.Dump && logger.GetLevel() <= log.DebugLevel {
		logger.Debug("built structure", "dump", dump(built))
	}

	f.param = lam.Param
	f.built = built
	f.refs = refs

	return f
}

// register stores a compiled call site. Registration happens in input
// order so generated names do not depend on scheduling.
func (c *Compiler) register(site *CallSite, f front) SiteResult {
	sr := SiteResult{Location: site.Location, Captures: f.refs, Diagnostics: f.diags}
	if f.built == nil {
		return sr
	}

	binding, err := c.store.Register(f.built, site.Location)
	if err != nil {
		var conflict *structure.NameConflictError
		if !errors.As(err, &conflict) {
			sr.Diagnostics.AddError(diagnostic.CodeStructuralConflict, err.Error(), site.Location, "")
			return sr
		}

		sr.Diagnostics.Add(diagnostic.StructuralConflict(site.Location, conflict.Path, conflict.Error()))

		return sr
	}

	sr.Unit = &gen.Unit{
		Location: site.Location,
		Param:    f.param,
		Source:   site.Source,
		Root:     f.built,
		Binding:  binding,
		Captures: f.refs,
	}

	return sr
}

// parseSelection parses body. A body that is not a lambda takes param, or
// DefaultParam when param is empty.
func parseSelection(body, param string) (*selector.Lambda, error) {
	if param != "" {
		return selector.ParseSelection(body, param)
	}

	x, err := selector.Parse(body)
	if err != nil {
		return nil, err
	}

	if lam, ok := x.(*selector.Lambda); ok {
		return lam, nil
	}

	return &selector.Lambda{ParamPos: x.Pos(), Param: DefaultParam, Body: x}, nil
}
