package mapping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projgen/internal/structure"
)

func TestParse(t *testing.T) {
	yaml := `
version: "1"
package: dto
package_path: example.com/app/dto
packages: [example.com/app/store, example.com/app/warehouse]
options:
  empty_collections: false
call_sites:
  - location: orders.go:42:7
    source: store.Order
    param: x
    hint: OrderSummary
    target: warehouse.OrderSummary
    body: "new { Id = x.ID, CustomerName = x.Customer?.Name }"
    capture: [minTotal, {limit: int}]
    scope:
      locals: {minTotal: int64}
      receiver: {name: s, type: app.Service}
    declared: {Total: public}
    accessibility: package
`

	m, err := Parse([]byte(yaml))
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.Equal(t, "1", m.Version)
	assert.Equal(t, "dto", m.Package)
	assert.Equal(t, StringArray{"example.com/app/store", "example.com/app/warehouse"}, m.Packages)
	assert.False(t, m.Options.EmptyCollectionsOrDefault())
	require.Len(t, m.CallSites, 1)

	cs := m.CallSites[0]
	assert.Equal(t, "orders.go:42:7", cs.Location)
	assert.Equal(t, "store.Order", cs.Source)
	assert.Equal(t, "warehouse.OrderSummary", cs.Target)
	assert.Equal(t, CaptureList{{Name: "minTotal"}, {Name: "limit", Type: "int"}}, cs.Capture)
	assert.Equal(t, []string{"minTotal", "limit"}, cs.Capture.Names())
	assert.Equal(t, "int64", cs.Scope.Locals["minTotal"])
	require.NotNil(t, cs.Scope.Receiver)
	assert.Equal(t, "s", cs.Scope.Receiver.Name)

	// Scope package defaults to the generated package.
	assert.Equal(t, "example.com/app/dto", cs.Scope.Package)

	acc, err := m.AccessibilityOf(&cs)
	require.NoError(t, err)
	assert.Equal(t, structure.AccessPackage, acc)

	declared, err := cs.DeclaredMarkers()
	require.NoError(t, err)
	assert.Equal(t, map[string]structure.Accessibility{"Total": structure.AccessPublic}, declared)
}

func TestParse_Defaults(t *testing.T) {
	m, err := Parse([]byte("package: dto\n"))
	require.NoError(t, err)

	assert.Equal(t, "1", m.Version)
	assert.Equal(t, DefaultAccessibility, m.Options.Accessibility)
	assert.True(t, m.Options.EmptyCollectionsOrDefault())
	assert.Empty(t, m.CallSites)
}

func TestParse_Empty(t *testing.T) {
	m, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, "1", m.Version)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte("package: dto\ncallsites: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "callsites")
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("package: [dto"))
	require.Error(t, err)
}

func TestCaptureList_Forms(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want CaptureList
	}{
		{
			name: "single string",
			yaml: "capture: minTotal",
			want: CaptureList{{Name: "minTotal"}},
		},
		{
			name: "list of strings",
			yaml: "capture: [a, b]",
			want: CaptureList{{Name: "a"}, {Name: "b"}},
		},
		{
			name: "typed map keeps document order",
			yaml: "capture: {b: string, a: int}",
			want: CaptureList{{Name: "b", Type: "string"}, {Name: "a", Type: "int"}},
		},
		{
			name: "mixed list",
			yaml: "capture:\n  - a\n  - b: '[]string'\n",
			want: CaptureList{{Name: "a"}, {Name: "b", Type: "[]string"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse([]byte("call_sites:\n  - location: l\n    " + indent(tt.yaml)))
			require.NoError(t, err)
			require.Len(t, m.CallSites, 1)
			assert.Equal(t, tt.want, m.CallSites[0].Capture)
		})
	}
}

func TestCaptureList_Invalid(t *testing.T) {
	_, err := Parse([]byte("call_sites:\n  - location: l\n    capture: [[a]]\n"))
	require.Error(t, err)
}

func TestCaptureList_MarshalYAML(t *testing.T) {
	single, err := CaptureList{{Name: "a"}}.MarshalYAML()
	require.NoError(t, err)
	assert.Equal(t, "a", single)

	list, err := CaptureList{{Name: "a"}, {Name: "b", Type: "int"}}.MarshalYAML()
	require.NoError(t, err)
	assert.Equal(t, []any{"a", map[string]string{"b": "int"}}, list)

	empty, err := CaptureList(nil).MarshalYAML()
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestWriteFile_LoadFile(t *testing.T) {
	m := &Manifest{
		Version:  "1",
		Package:  "dto",
		Packages: StringArray{"projgen/store"},
		CallSites: []CallSite{{
			Location: "a.go:1:1",
			Source:   "store.Order",
			Body:     "new { x.ID }",
			Capture:  CaptureList{{Name: "limit", Type: "int"}},
		}},
	}

	path := filepath.Join(t.TempDir(), "projgen.yaml")
	require.NoError(t, WriteFile(m, path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, m.CallSites[0].Capture, loaded.CallSites[0].Capture)
	assert.Equal(t, "new { x.ID }", loaded.CallSites[0].Body)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDeclaredMarkers_Invalid(t *testing.T) {
	cs := CallSite{Declared: map[string]string{"Total": "protected"}}

	_, err := cs.DeclaredMarkers()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Total")
}

func indent(s string) string {
	out := ""
	for i, r := range s {
		out += string(r)
		if r == '\n' && i < len(s)-1 {
			out += "    "
		}
	}

	return out
}
