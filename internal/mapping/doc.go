// Package mapping provides the YAML manifest that lists the call sites
// projgen compiles, together with parsing, defaults and validation.
//
// A manifest pins everything the compiler cannot see on its own: which
// packages to load, where each selection is written, what it projects
// from and into, and the environment it was written in.
//
// # Schema Overview
//
//	version: "1"
//	package: dto
//	package_path: example.com/app/dto
//	packages: [example.com/app/store, example.com/app/warehouse]
//	options:
//	  empty_collections: true
//	  accessibility: public
//	call_sites:
//	  - location: orders.go:42:7
//	    source: store.Order
//	    param: x
//	    hint: OrderSummary
//	    target: warehouse.OrderSummary
//	    body: "new { Id = x.ID, CustomerName = x.Customer?.Name }"
//	    capture: [minTotal]
//	    scope:
//	      package: example.com/app
//	      locals: {minTotal: int64}
//	      receiver: {name: s, type: app.Service}
//	    declared: {Total: public}
//
// # Captures
//
// The capture list accepts a single name, a list of names, or a list
// mixing names and {name: type} maps. Typed captures declare a local of
// that type unless the scope already declares the name.
//
// # Type names
//
// Types are written as "pkg.Name", "import/path.Name" or a predeclared
// name, optionally prefixed by "*" or "[]". A bare name that is not
// predeclared is looked up across all loaded packages.
//
// # Declared markers
//
// The declared map marks members of a target as declared outside
// generated code, keyed by member path ("Total", "Lines.Sku").
package mapping
