package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	storePkg     = "projgen/store"
	warehousePkg = "projgen/warehouse"
)

func loadFixtures(t *testing.T) *TypeGraph {
	t.Helper()

	graph, err := NewAnalyzer().LoadPackages(storePkg, warehousePkg)
	require.NoError(t, err)
	require.NotNil(t, graph)

	return graph
}

func TestAnalyzer_LoadPackages(t *testing.T) {
	graph := loadFixtures(t)

	assert.Contains(t, graph.Packages, storePkg)
	assert.Contains(t, graph.Packages, warehousePkg)
	assert.Equal(t, "store", graph.Packages[storePkg].Name)
	assert.NotEmpty(t, graph.Packages[storePkg].Dir)

	assert.Contains(t, graph.Types, TypeID{PkgPath: storePkg, Name: "Order"})
	assert.Contains(t, graph.Types, TypeID{PkgPath: warehousePkg, Name: "OrderSummary"})
}

func TestAnalyzer_StoreOrderFields(t *testing.T) {
	graph := loadFixtures(t)

	order := graph.GetType(TypeID{PkgPath: storePkg, Name: "Order"})
	require.NotNil(t, order)
	assert.Equal(t, TypeKindStruct, order.Kind)

	for _, name := range []string{"ID", "Customer", "Status", "TotalCents", "Items", "Priority", "OrderedAt"} {
		assert.NotNil(t, order.Field(name), "Order should have %s field", name)
	}

	note := order.Field("note")
	require.NotNil(t, note)
	assert.False(t, note.Exported)
}

func TestAnalyzer_FieldKinds(t *testing.T) {
	graph := loadFixtures(t)
	order := graph.GetType(TypeID{PkgPath: storePkg, Name: "Order"})
	require.NotNil(t, order)

	items := order.Field("Items")
	require.NotNil(t, items)
	assert.Equal(t, TypeKindSlice, items.Type.Kind)
	assert.Equal(t, TypeKindStruct, items.Type.ElemType.Kind)
	assert.True(t, items.Type.IsCollection())

	customer := order.Field("Customer")
	require.NotNil(t, customer)
	assert.Equal(t, TypeKindPointer, customer.Type.Kind)
	assert.True(t, customer.Type.IsNilable())
	assert.Equal(t, "projgen/store.Customer", customer.Type.Deref().String())

	orderedAt := order.Field("OrderedAt")
	require.NotNil(t, orderedAt)
	assert.Equal(t, TypeKindExternal, orderedAt.Type.Kind)
	assert.Equal(t, "time.Time", orderedAt.Type.String())

	status := order.Field("Status")
	require.NotNil(t, status)
	assert.Equal(t, TypeKindAlias, status.Type.Kind)
	assert.Equal(t, "string", status.Type.BasicName())
}

func TestAnalyzer_FieldTags(t *testing.T) {
	graph := loadFixtures(t)

	product := graph.GetType(TypeID{PkgPath: storePkg, Name: "Product"})
	require.NotNil(t, product)

	sku := product.Field("SKU")
	require.NotNil(t, sku)
	assert.Equal(t, "sku", sku.JSONName())
	assert.True(t, sku.HasTag("json"))
}

func TestAnalyzer_PackageObjects(t *testing.T) {
	graph := loadFixtures(t)

	maxItems := graph.Lookup(storePkg, "MaxItems")
	require.NotNil(t, maxItems)
	assert.Equal(t, ObjectConst, maxItems.Kind)
	assert.Equal(t, "50", maxItems.Value)
	assert.Equal(t, "int", maxItems.Type.String())
	assert.False(t, maxItems.IsEnumMember())

	paid := graph.Lookup(storePkg, "StatusPaid")
	require.NotNil(t, paid)
	assert.True(t, paid.IsEnumMember())

	currency := graph.Lookup(storePkg, "DefaultCurrency")
	require.NotNil(t, currency)
	assert.Equal(t, ObjectVar, currency.Kind)

	format := graph.Lookup(storePkg, "FormatCents")
	require.NotNil(t, format)
	assert.Equal(t, ObjectFunc, format.Kind)
	assert.Equal(t, "string", format.Type.String())
	require.Len(t, format.Params, 1)
	assert.Equal(t, "int64", format.Params[0].String())
}

func TestAnalyzer_Methods(t *testing.T) {
	graph := loadFixtures(t)
	order := graph.GetType(TypeID{PkgPath: storePkg, Name: "Order"})
	require.NotNil(t, order)

	count := order.Method("ItemCount")
	require.NotNil(t, count)
	assert.Equal(t, "int", count.Result.String())

	// Pointer-receiver methods are part of the analyzed set.
	assert.NotNil(t, order.Method("Note"))
	assert.Contains(t, order.MemberNames(), "ItemCount")
}

func TestAnalyzer_EmbeddedCompanion(t *testing.T) {
	graph := loadFixtures(t)

	summary := graph.GetType(TypeID{PkgPath: warehousePkg, Name: "OrderSummary"})
	require.NotNil(t, summary)
	require.NotEmpty(t, summary.Fields)
	assert.True(t, summary.Fields[0].Embedded)
	assert.Equal(t, "OrderSummaryGenerated", summary.Fields[0].Name)

	// Promoted through the embedded companion.
	name := summary.Field("CustomerName")
	require.NotNil(t, name)
	assert.Equal(t, "*string", name.Type.String())

	lines := summary.Field("Lines")
	require.NotNil(t, lines)
	assert.Equal(t, "[]projgen/warehouse.LineView", lines.Type.String())
}

func TestAnalyzer_GetStruct(t *testing.T) {
	a := NewAnalyzer()
	_, err := a.LoadPackages(storePkg)
	require.NoError(t, err)

	order, err := a.GetStruct(storePkg, "Order")
	require.NoError(t, err)
	assert.Equal(t, "Order", order.ID.Name)

	_, err = a.GetStruct(storePkg, "OrderStatus")
	require.Error(t, err)

	_, err = a.GetStruct(storePkg, "Missing")
	require.Error(t, err)
}
