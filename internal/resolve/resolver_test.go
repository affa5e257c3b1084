package resolve

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projgen/internal/analyze"
	"projgen/internal/diagnostic"
	"projgen/internal/fieldmodel"
	"projgen/internal/selector"
	"projgen/internal/structure"
)

const (
	storePkg     = "projgen/store"
	warehousePkg = "projgen/warehouse"
	location     = "orders.go:12:9"
)

var fixtures = sync.OnceValues(func() (*analyze.TypeGraph, error) {
	return analyze.NewAnalyzer().LoadPackages(storePkg, warehousePkg)
})

func loadGraph(t *testing.T) *analyze.TypeGraph {
	t.Helper()

	graph, err := fixtures()
	require.NoError(t, err)

	return graph
}

type option func(*Selection, *Config)

func withTarget(pkg, name string) option {
	return func(sel *Selection, cfg *Config) {
		sel.Target = cfg.Graph.GetType(analyze.TypeID{PkgPath: pkg, Name: name})
	}
}

func withOutput(pkg string) option {
	return func(_ *Selection, cfg *Config) { cfg.OutputPackage = pkg }
}

func withScope(scope Scope) option {
	return func(_ *Selection, cfg *Config) { cfg.Scope = scope }
}

func resolveSrc(t *testing.T, src string, opts ...option) (*structure.Structure, *Info, diagnostic.Diagnostics) {
	t.Helper()

	graph := loadGraph(t)

	lam, err := selector.ParseSelection(src, "x")
	require.NoError(t, err)

	root, diags := fieldmodel.Parse(lam, location, "OrderView")
	require.NoError(t, diags.Error())

	sel := Selection{
		Root:   root,
		Param:  lam.Param,
		Source: graph.GetType(analyze.TypeID{PkgPath: storePkg, Name: "Order"}),
	}
	cfg := Config{
		Graph:         graph,
		Scope:         Scope{Package: "projgen/app"},
		OutputPackage: "projgen/app",
		Location:      location,
	}

	for _, o := range opts {
		o(&sel, &cfg)
	}

	out, info, rdiags := Resolve(sel, cfg)
	require.NotNil(t, out)

	return out, info, rdiags
}

func useOf(info *Info, name string) (Binding, bool) {
	for id, b := range info.Uses {
		if id.Name == name {
			return b, true
		}
	}

	return Binding{}, false
}

func objectNamed(info *Info, name string) *analyze.ObjectInfo {
	for _, obj := range info.Objects {
		if obj.Name == name {
			return obj
		}
	}

	return nil
}

func TestResolve_InferredTypes(t *testing.T) {
	s, info, diags := resolveSrc(t, "new { Id = x.ID, Email = x.Customer?.Email, x.TotalCents, x.Priority, x.Status }")
	require.True(t, diags.IsValid(), diags.Error())

	assert.Equal(t, "projgen/store.Order", s.SourceType.String())
	assert.Nil(t, s.Target)
	assert.True(t, s.Type.IsGenerated)
	require.Len(t, s.Type.Fields, 5)

	id := s.Field("Id")
	assert.Equal(t, "int64", id.Type.String())
	assert.False(t, id.Nullable)

	email := s.Field("Email")
	assert.Equal(t, "string", email.Type.String())
	assert.True(t, email.Nullable)
	assert.Equal(t, "*string", email.GoType().String())

	prio := s.Field("Priority")
	assert.True(t, prio.Nullable)
	assert.Equal(t, "*int", prio.GoType().String())

	assert.Equal(t, "projgen/store.OrderStatus", s.Field("Status").Type.String())
	assert.Equal(t, "*string", s.Type.Fields[1].Type.String())

	for _, f := range s.Fields {
		assert.Same(t, f.Type, info.TypeOf(f.Value), f.Name)
	}
}

func TestResolve_UnknownMemberSuggests(t *testing.T) {
	s, _, diags := resolveSrc(t, "new { Buyer = x.Custmer.Email }")

	errs := diags.ByCode(diagnostic.CodeUnresolved)
	require.Len(t, errs, 1)
	assert.Equal(t, []string{"Custmer"}, errs[0].Names)
	assert.Contains(t, errs[0].Suggestions, "Customer")
	assert.Equal(t, "Buyer", errs[0].FieldPath)
	assert.Nil(t, s.Field("Buyer").Type)
}

func TestResolve_UnexportedMembers(t *testing.T) {
	_, _, diags := resolveSrc(t, "new { N = x.note }")
	require.False(t, diags.IsValid())
	assert.Contains(t, diags.Errors[0].Message, "not exported")

	s, _, diags := resolveSrc(t, "new { N = x.note }", withOutput(storePkg))
	require.True(t, diags.IsValid(), diags.Error())
	assert.Equal(t, "string", s.Field("N").Type.String())
}

func TestResolve_MethodCalls(t *testing.T) {
	s, _, diags := resolveSrc(t, "new { Count = x.ItemCount(), Note = x.Note() }")
	require.True(t, diags.IsValid(), diags.Error())

	assert.Equal(t, "int", s.Field("Count").Type.String())
	assert.Equal(t, "string", s.Field("Note").Type.String())

	_, _, diags = resolveSrc(t, "new { Count = x.ItemCount }")
	require.Len(t, diags.ByCode(diagnostic.CodeUnsupported), 1)

	_, _, diags = resolveSrc(t, "new { Count = x.ItemCount(1) }")
	require.Len(t, diags.ByCode(diagnostic.CodeUnsupported), 1)
}

func TestResolve_PackageLevelReferences(t *testing.T) {
	s, info, diags := resolveSrc(t, `new {
		Paid = x.Status == store.StatusPaid,
		Total = store.FormatCents(x.TotalCents),
		Max = store.MaxItems,
		Currency = store.DefaultCurrency,
	}`)
	require.True(t, diags.IsValid(), diags.Error())

	assert.Equal(t, "bool", s.Field("Paid").Type.String())
	assert.Equal(t, "string", s.Field("Total").Type.String())
	assert.Equal(t, "int", s.Field("Max").Type.String())
	assert.Equal(t, "string", s.Field("Currency").Type.String())

	for _, name := range []string{"StatusPaid", "FormatCents", "MaxItems", "DefaultCurrency"} {
		obj := objectNamed(info, name)
		require.NotNil(t, obj, name)
		assert.Equal(t, storePkg, obj.PkgPath)
	}

	b, ok := useOf(info, "store")
	require.True(t, ok)
	assert.Equal(t, BindPackage, b.Kind)
}

func TestResolve_UnqualifiedPackageNames(t *testing.T) {
	s, info, diags := resolveSrc(t, "new { Max = MaxItems, Text = FormatCents(x.TotalCents) }",
		withScope(Scope{Package: storePkg}))
	require.True(t, diags.IsValid(), diags.Error())

	assert.Equal(t, "int", s.Field("Max").Type.String())
	assert.Equal(t, "string", s.Field("Text").Type.String())

	b, ok := useOf(info, "MaxItems")
	require.True(t, ok)
	assert.Equal(t, BindConst, b.Kind)

	b, ok = useOf(info, "FormatCents")
	require.True(t, ok)
	assert.Equal(t, BindFunc, b.Kind)

	_, _, diags = resolveSrc(t, "new { F = FormatCents }", withScope(Scope{Package: storePkg}))
	assert.Len(t, diags.ByCode(diagnostic.CodeUnsupported), 1)
}

func TestResolve_ScopeBindings(t *testing.T) {
	svc := analyze.NewStruct(analyze.TypeID{PkgPath: "projgen/app", Name: "Service"},
		analyze.FieldInfo{Name: "Threshold", Type: analyze.Int})

	scope := Scope{
		Package:    "projgen/app",
		Locals:     map[string]*analyze.TypeInfo{"minQty": analyze.Int},
		Parameters: map[string]*analyze.TypeInfo{"label": analyze.String},
		Receiver:   &Receiver{Name: "svc", Type: svc},
	}

	s, info, diags := resolveSrc(t, `new {
		Big = x.Items.Where(i => i.Quantity > minQty).Count(),
		Over = x.Items.Where(i => i.Quantity > Threshold).Count(),
		Limit = svc.Threshold,
		Label = label,
		Tag = tag,
	}`, withScope(scope))
	require.True(t, diags.IsValid(), diags.Error())

	kinds := map[string]BindingKind{
		"minQty":    BindLocal,
		"Threshold": BindReceiverField,
		"svc":       BindReceiver,
		"label":     BindParameter,
		"tag":       BindLocal,
		"i":         BindParam,
	}
	for name, kind := range kinds {
		b, ok := useOf(info, name)
		require.True(t, ok, name)
		assert.Equal(t, kind, b.Kind, name)
	}

	tag, _ := useOf(info, "tag")
	assert.True(t, tag.Untyped)
	assert.Equal(t, "any", s.Field("Tag").Type.String())
	assert.Equal(t, "int", s.Field("Limit").Type.String())
}

func TestResolve_LambdaShadowsOuterParameter(t *testing.T) {
	s, _, diags := resolveSrc(t, "new { N = x.Items.Where(x => x.Quantity > 1).Count() }")
	require.True(t, diags.IsValid(), diags.Error())
	assert.Equal(t, "int", s.Field("N").Type.String())
}

func TestResolve_QueryShapes(t *testing.T) {
	s, _, diags := resolveSrc(t, `new {
		Lines = x.Items.Where(i => i.Quantity > 0).Select(i => new { i.Name, i.Quantity }).ToList(),
		Names = x.Items.Select(i => i.Name),
		Qty = x.Items.Select(i => i.Quantity).ToArray(),
		HasBig = x.Items.Any(i => i.Quantity > 10),
		Count = x.Items.Count(),
	}`)
	require.True(t, diags.IsValid(), diags.Error())

	lines := s.Field("Lines")
	q, ok := lines.Value.(*selector.Query)
	require.True(t, ok)
	require.Len(t, q.Ops, 2)
	assert.Equal(t, selector.OpWhere, q.Ops[0].Kind)
	assert.Equal(t, selector.OpSelect, q.Ops[1].Kind)
	assert.Equal(t, selector.ShapeList, q.Shape)
	assert.Equal(t, "projgen/store.OrderItem", q.Elem.String())

	require.NotNil(t, lines.Nested)
	assert.Equal(t, "Lines", lines.Nested.Path)
	assert.Equal(t, "projgen/store.OrderItem", lines.Nested.SourceType.String())
	assert.Equal(t, analyze.TypeKindSlice, lines.Type.Kind)
	assert.Same(t, lines.Nested.Type, lines.Type.ElemType)
	assert.Equal(t, "string", lines.Nested.Field("Name").Type.String())
	assert.Equal(t, "int", lines.Nested.Field("Quantity").Type.String())

	names := s.Field("Names")
	assert.Equal(t, analyze.TypeKindSeq, names.Type.Kind)
	assert.Equal(t, selector.ShapeSeq, names.Value.(*selector.Query).Shape)

	qty := s.Field("Qty")
	assert.Equal(t, "[]int", qty.Type.String())
	assert.Equal(t, selector.ShapeArray, qty.Value.(*selector.Query).Shape)

	hasBig := s.Field("HasBig")
	assert.Equal(t, "bool", hasBig.Type.String())
	assert.Equal(t, selector.ShapeScalar, hasBig.Value.(*selector.Query).Shape)

	count := s.Field("Count").Value.(*selector.Query)
	require.Len(t, count.Ops, 1)
	assert.Nil(t, count.Ops[0].Body)
}

func TestResolve_QueryErrors(t *testing.T) {
	_, _, diags := resolveSrc(t, "new { N = x.Items.Where(i => i.Name).Count() }")
	assert.Len(t, diags.ByCode(diagnostic.CodeUnsupported), 1)

	_, _, diags = resolveSrc(t, "new { N = x.Items.Select(i.Name) }")
	assert.False(t, diags.IsValid())

	_, _, diags = resolveSrc(t, "new { N = x.Items.ToList(1) }")
	assert.Len(t, diags.ByCode(diagnostic.CodeUnsupported), 1)
}

func TestResolve_GroupBy(t *testing.T) {
	s, _, diags := resolveSrc(t,
		"new { Groups = x.Items.GroupBy(i => i.Category).Select(g => new { Category = g.Key, Count = g.Count() }).ToList() }")
	require.True(t, diags.IsValid(), diags.Error())

	groups := s.Field("Groups")
	require.NotNil(t, groups.Nested)
	assert.Equal(t, analyze.TypeKindGroup, groups.Nested.SourceType.Kind)
	assert.Equal(t, "string", groups.Nested.Field("Category").Type.String())
	assert.Equal(t, "int", groups.Nested.Field("Count").Type.String())
}

func TestResolve_AnonymousGroupKey(t *testing.T) {
	_, _, diags := resolveSrc(t,
		"new { Groups = x.Items.GroupBy(i => new { i.Category }).Select(g => new { Key = g.Key }).ToList() }")
	errs := diags.ByCode(diagnostic.CodeAmbiguousGroupKey)
	require.Len(t, errs, 1)
	assert.Equal(t, "Groups.Key", errs[0].FieldPath)

	s, _, diags := resolveSrc(t,
		"new { Groups = x.Items.GroupBy(i => new { i.Category }).Select(g => new { Category = g.Key.Category }).ToList() }")
	require.True(t, diags.IsValid(), diags.Error())
	assert.Equal(t, "string", s.Field("Groups").Nested.Field("Category").Type.String())
}

func TestResolve_Coalesce(t *testing.T) {
	s, _, diags := resolveSrc(t, `new {
		Name = x.Customer?.FullName ?? "anon",
		Prio = x.Priority ?? 0,
		Buyer = x.Customer ?? x.Customer,
	}`)
	require.True(t, diags.IsValid(), diags.Error())

	name := s.Field("Name")
	c, ok := name.Value.(*selector.Coalesce)
	require.True(t, ok)
	assert.True(t, c.Deref)
	assert.Equal(t, "string", name.Type.String())
	assert.False(t, name.Nullable)

	prio := s.Field("Prio")
	c, ok = prio.Value.(*selector.Coalesce)
	require.True(t, ok)
	assert.True(t, c.Deref)
	assert.Equal(t, "int", prio.Type.String())
	assert.False(t, prio.Nullable)

	buyer := s.Field("Buyer")
	c, ok = buyer.Value.(*selector.Coalesce)
	require.True(t, ok)
	assert.False(t, c.Deref)
	assert.Equal(t, "*projgen/store.Customer", buyer.Type.String())
}

func TestResolve_CoalesceWithNull(t *testing.T) {
	s, _, diags := resolveSrc(t, "new { Buyer = x.Customer ?? null, Nick = x.Customer?.FullName ?? null }")
	require.True(t, diags.IsValid(), diags.Error())

	buyer := s.Field("Buyer")
	assert.Equal(t, "*projgen/store.Customer", buyer.Type.String())
	assert.True(t, buyer.Nullable)
	assert.NotContains(t, selector.String(buyer.Value), "??")

	_, _, diags = resolveSrc(t, "new { Total = x.TotalCents ?? null }")
	assert.Len(t, diags.ByCode(diagnostic.CodeUnsupported), 1)
}

func TestResolve_CoalesceFallbackType(t *testing.T) {
	tests := []struct {
		name string
		src  string
		ok   bool
	}{
		{"int literal into int", "new { P = x.Priority ?? 3 }", true},
		{"string into int", `new { P = x.Priority ?? "a" }`, false},
		{"float into int", "new { P = x.Priority ?? 1.5 }", false},
		{"int64 into int", "new { P = x.Priority ?? x.TotalCents }", false},
		{"char into string", "new { N = x.Customer?.FullName ?? 'a' }", false},
		{"string into string", `new { S = x.Customer?.Email ?? "none" }`, true},
		{"package var", "new { S = x.Customer?.Email ?? store.DefaultCurrency }", true},
		{"untyped constant", "new { P = x.Priority ?? store.MaxItems }", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, diags := resolveSrc(t, tt.src)
			if tt.ok {
				assert.True(t, diags.IsValid(), diags.Error())
				return
			}

			assert.Len(t, diags.ByCode(diagnostic.CodeUnsupported), 1, diags.Error())
		})
	}
}

func TestResolve_ArithmeticOperands(t *testing.T) {
	s, _, diags := resolveSrc(t, `new { Double = x.TotalCents * 2, Label = x.Customer.FullName + "!" }`)
	require.True(t, diags.IsValid(), diags.Error())
	assert.Equal(t, "int64", s.Field("Double").Type.String())
	assert.Equal(t, "string", s.Field("Label").Type.String())

	_, _, diags = resolveSrc(t, "new { Bad = x.Customer.FullName + 1 }")
	assert.Len(t, diags.ByCode(diagnostic.CodeUnsupported), 1)

	_, _, diags = resolveSrc(t, `new { Bad = x.Customer.FullName - "a" }`)
	assert.Len(t, diags.ByCode(diagnostic.CodeUnsupported), 1)
}

func TestResolve_ConditionalWithNull(t *testing.T) {
	s, _, diags := resolveSrc(t, "new { Nick = x.Customer != null ? x.Customer.FullName : null }")
	require.True(t, diags.IsValid(), diags.Error())

	nick := s.Field("Nick")
	assert.Equal(t, "*string", nick.Type.String())
	assert.True(t, nick.Nullable)

	cond, ok := nick.Value.(*selector.Cond)
	require.True(t, ok)
	assert.IsType(t, &selector.Lift{}, cond.Then)
	assert.Equal(t, "*string", cond.Type.String())
}

func TestResolve_NullNeedsDeclaredType(t *testing.T) {
	_, _, diags := resolveSrc(t, "new { Gone = null }")
	require.Len(t, diags.ByCode(diagnostic.CodeUnsupported), 1)

	_, _, diags = resolveSrc(t, "new { Paid = x.TotalCents == null }")
	require.Len(t, diags.ByCode(diagnostic.CodeUnsupported), 1)

	_, _, diags = resolveSrc(t, "new { Total = null }", withTarget(warehousePkg, "OrderSummary"),
		withOutput(warehousePkg))
	assert.Len(t, diags.ByCode(diagnostic.CodeStructuralConflict), 1)

	s, _, diags := resolveSrc(t, "new { Amount = null }", withTarget(warehousePkg, "OrderSummary"),
		withOutput(warehousePkg))
	require.True(t, diags.IsValid(), diags.Error())
	assert.Equal(t, "*int64", s.Field("Amount").Type.String())
}

func TestResolve_DeclaredTarget(t *testing.T) {
	s, _, diags := resolveSrc(t, `new {
		ID = x.ID,
		CustomerName = x.Customer?.FullName,
		Total = x.TotalCents,
		Amount = x.TotalCents,
		Priority = x.Priority,
		label = x.Customer?.Email,
		Lines = x.Items.Select(i => new { Sku = i.Name, Qty = i.Quantity }).ToList(),
	}`, withTarget(warehousePkg, "OrderSummary"), withOutput(warehousePkg))
	require.True(t, diags.IsValid(), diags.Error())

	assert.Equal(t, "projgen/warehouse.OrderSummary", s.Type.String())
	assert.Same(t, s.Target, s.Type)

	// Members promoted from the generated companion keep their inferred type.
	name := s.Field("CustomerName")
	assert.Equal(t, "string", name.Type.String())
	assert.True(t, name.Nullable)

	amount := s.Field("Amount")
	assert.IsType(t, &selector.Lift{}, amount.Value)
	assert.Equal(t, "*int64", amount.Type.String())
	assert.True(t, amount.Nullable)

	prio := s.Field("Priority")
	assert.IsType(t, &selector.Unwrap{}, prio.Value)
	assert.Equal(t, "int", prio.Type.String())
	assert.False(t, prio.Nullable)

	// An optional chain into a value member is left for null-safety.
	label := s.Field("label")
	assert.IsType(t, &selector.Member{}, label.Value)
	assert.Equal(t, "string", label.Type.String())
	assert.False(t, label.Nullable)

	lines := s.Field("Lines")
	require.NotNil(t, lines.Nested)
	assert.True(t, lines.FromNamedType)
	assert.Equal(t, "projgen/warehouse.LineView", lines.Nested.Target.String())
	assert.Equal(t, "[]projgen/warehouse.LineView", lines.Type.String())
}

func TestResolve_DeclaredTypeConflict(t *testing.T) {
	_, _, diags := resolveSrc(t, "new { Total = x.Customer.FullName }",
		withTarget(warehousePkg, "OrderSummary"), withOutput(warehousePkg))

	errs := diags.ByCode(diagnostic.CodeStructuralConflict)
	require.Len(t, errs, 1)
	assert.Equal(t, "Total", errs[0].FieldPath)
	assert.Contains(t, errs[0].Message, "int64")
}

func TestResolve_NamedNestedRecord(t *testing.T) {
	s, _, diags := resolveSrc(t,
		"new { Line = new warehouse.LineView { Sku = x.Customer.Email, Qty = x.ItemCount() }, Buyer = new { x.Customer.Email } }")
	require.True(t, diags.IsValid(), diags.Error())

	line := s.Field("Line")
	require.NotNil(t, line.Nested)
	assert.True(t, line.FromNamedType)
	assert.Equal(t, "projgen/warehouse.LineView", line.Type.String())

	buyer := s.Field("Buyer")
	require.NotNil(t, buyer.Nested)
	assert.False(t, buyer.FromNamedType)
	assert.Equal(t, "projgen/store.Order", buyer.Nested.SourceType.String())
	assert.Same(t, buyer.Nested.Type, buyer.Type)

	_, _, diags = resolveSrc(t, "new { S = new store.OrderStatus { x.ID } }")
	assert.Len(t, diags.ByCode(diagnostic.CodeUnsupported), 1)
}

func TestResolve_RecursiveShape(t *testing.T) {
	graph := loadGraph(t)
	order := graph.GetType(analyze.TypeID{PkgPath: storePkg, Name: "Order"})

	child := &structure.Structure{
		Path:   "A",
		Fields: []structure.Field{{Name: "B", Source: &selector.New{Key: "A"}}},
	}
	root := &structure.Structure{
		Fields: []structure.Field{{Name: "A", Source: &selector.New{Key: "A"}, Nested: child}},
	}

	_, _, diags := Resolve(Selection{Root: root, Param: "x", Source: order}, Config{Graph: graph, Location: location})

	errs := diags.ByCode(diagnostic.CodeStructuralConflict)
	require.Len(t, errs, 1)
	assert.Equal(t, "A.B", errs[0].FieldPath)
}

func TestResolve_MissingSource(t *testing.T) {
	out, _, diags := Resolve(Selection{Root: &structure.Structure{}, Param: "x"}, Config{Graph: loadGraph(t)})
	assert.Nil(t, out)
	assert.False(t, diags.IsValid())
}

func TestBindingKind_String(t *testing.T) {
	assert.Equal(t, "receiver field", BindReceiverField.String())
	assert.Equal(t, "unknown", BindingKind(99).String())
	assert.True(t, Binding{Kind: BindConst}.IsValue())
	assert.False(t, Binding{Kind: BindPackage}.IsValue())
}
