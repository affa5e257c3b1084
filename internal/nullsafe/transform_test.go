package nullsafe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projgen/internal/analyze"
	"projgen/internal/fieldmodel"
	"projgen/internal/resolve"
	"projgen/internal/selector"
	"projgen/internal/structure"
)

const (
	storePkg     = "projgen/store"
	warehousePkg = "projgen/warehouse"
)

func resolveSrc(t *testing.T, src string, target string) (*structure.Structure, *resolve.Info) {
	t.Helper()

	graph, err := analyze.NewAnalyzer().LoadPackages(storePkg, warehousePkg)
	require.NoError(t, err)

	lam, err := selector.ParseSelection(src, "x")
	require.NoError(t, err)

	root, diags := fieldmodel.Parse(lam, "site", "")
	require.NoError(t, diags.Error())

	sel := resolve.Selection{
		Root:   root,
		Param:  lam.Param,
		Source: graph.GetType(analyze.TypeID{PkgPath: storePkg, Name: "Order"}),
	}
	if target != "" {
		sel.Target = graph.GetType(analyze.TypeID{PkgPath: warehousePkg, Name: target})
	}

	resolved, info, diags := resolve.Resolve(sel, resolve.Config{Graph: graph, OutputPackage: warehousePkg, Location: "site"})
	require.NoError(t, diags.Error())

	return resolved, info
}

func apply(t *testing.T, src string, opts Options) *structure.Structure {
	t.Helper()

	root, info := resolveSrc(t, src, "")

	return Apply(root, info, opts)
}

func TestApply_TopLevelChains(t *testing.T) {
	s := apply(t, "new { Email = x.Customer?.Email, City = x.Customer?.Address?.City, x.ID }", Options{})

	tests := []struct {
		field string
		want  string
	}{
		{"Email", "x.Customer != null ? &(x.Customer.Email) : null"},
		{"City", "x.Customer != null && x.Customer.Address != null ? &(x.Customer.Address.City) : null"},
		{"ID", "x.ID"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.want, selector.String(s.Field(tt.field).Value))
		})
	}

	g, ok := s.Field("Email").Value.(*selector.Guard)
	require.True(t, ok)
	assert.Equal(t, "*string", g.Type.String())
	assert.Equal(t, selector.FallbackNil, g.Fallback.Kind)
}

func TestApply_ChainInsideExpression(t *testing.T) {
	s := apply(t, `new {
		Text = store.FormatCents(x.Customer?.ID),
		Initial = x.Customer?.Initial == 'a',
		Inactive = !x.Customer?.IsActive,
	}`, Options{})

	text := s.Field("Text")
	assert.Equal(t, "&(store.FormatCents(x.Customer != null ? x.Customer.ID : default))", selector.String(text.Value))

	lift, ok := s.Field("Initial").Value.(*selector.Lift)
	require.True(t, ok)
	cmp, ok := lift.X.(*selector.Binary)
	require.True(t, ok)
	g, ok := cmp.X.(*selector.Guard)
	require.True(t, ok)
	assert.Equal(t, selector.FallbackNullChar, g.Fallback.Kind)

	lift, ok = s.Field("Inactive").Value.(*selector.Lift)
	require.True(t, ok)
	not, ok := lift.X.(*selector.Unary)
	require.True(t, ok)
	g, ok = not.X.(*selector.Guard)
	require.True(t, ok)
	assert.Equal(t, selector.FallbackFalse, g.Fallback.Kind)
	assert.Equal(t, "bool", g.Type.String())
}

func TestApply_DeclaredValueMember(t *testing.T) {
	root, info := resolveSrc(t, "new { label = x.Customer?.Email, Total = x.TotalCents }", "OrderSummary")
	s := Apply(root, info, Options{})

	label := s.Field("label")
	assert.Equal(t, `x.Customer != null ? x.Customer.Email : ""`, selector.String(label.Value))
	assert.Equal(t, selector.FallbackEmptyText, label.Value.(*selector.Guard).Fallback.Kind)
}

func TestApply_Coalesce(t *testing.T) {
	s := apply(t, `new { Name = x.Customer?.FullName ?? "anon", Prio = x.Priority ?? 0 }`, Options{})

	assert.Equal(t, `x.Customer != null ? &(x.Customer.FullName) : null ?? "anon"`, selector.String(s.Field("Name").Value))
	assert.Equal(t, "x.Priority ?? 0", selector.String(s.Field("Prio").Value))

	c, ok := s.Field("Name").Value.(*selector.Coalesce)
	require.True(t, ok)
	assert.True(t, c.Deref)
	assert.Equal(t, "*string", c.X.(*selector.Guard).Type.String())
}

func TestApply_LambdaBodies(t *testing.T) {
	s := apply(t, `new { N = x.Items.Where(i => i.Product?.Name == "x").Count() }`, Options{})

	n := s.Field("N")
	q, ok := n.Value.(*selector.Query)
	require.True(t, ok)

	body, ok := q.Ops[0].Body.(*selector.Binary)
	require.True(t, ok)
	g, ok := body.X.(*selector.Guard)
	require.True(t, ok)
	assert.Equal(t, "i.Product != null ? i.Product.Name : \"\"", selector.String(g))
}

func TestApply_EmptyCollections(t *testing.T) {
	const src = "new { Lines = x.Items.Select(i => new { Tags = i.Product?.Tags.Select(t => new { Value = t }).ToList() }).ToList() }"

	tests := []struct {
		name string
		opts Options
		want selector.FallbackKind
	}{
		{"enabled", Options{EmptyCollections: true}, selector.FallbackEmptyCollection},
		{"disabled", Options{}, selector.FallbackNil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, info := resolveSrc(t, src, "")
			s := Apply(root, info, tt.opts)

			lines := s.Field("Lines")
			assert.Same(t, root.Field("Lines").Value, lines.Value)

			tags := lines.Nested.Field("Tags")
			g, ok := tags.Value.(*selector.Guard)
			require.True(t, ok)
			assert.Equal(t, tt.want, g.Fallback.Kind)
			assert.Equal(t, selector.ShapeList, g.Value.(*selector.Query).Shape)
			assert.Equal(t, "i.Product", selector.String(g.Checks[0]))
		})
	}
}

func TestApply_LeavesInputUntouched(t *testing.T) {
	root, info := resolveSrc(t, "new { Email = x.Customer?.Email, Buyer = new { x.Customer?.FullName } }", "")
	before := root.Field("Email").Value

	s := Apply(root, info, Options{})

	assert.Same(t, before, root.Field("Email").Value)
	m, ok := before.(*selector.Member)
	require.True(t, ok)
	assert.True(t, m.Optional)

	assert.NotSame(t, root.Field("Buyer").Nested, s.Field("Buyer").Nested)
	assert.IsType(t, &selector.Guard{}, s.Field("Buyer").Nested.Field("FullName").Value)
	assert.IsType(t, &selector.Member{}, root.Field("Buyer").Nested.Field("FullName").Value)
}
