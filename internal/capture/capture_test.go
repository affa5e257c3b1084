package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projgen/internal/analyze"
	"projgen/internal/diagnostic"
	"projgen/internal/fieldmodel"
	"projgen/internal/resolve"
	"projgen/internal/selector"
)

const storePkg = "projgen/store"

func analyzeSrc(t *testing.T, src string, scope resolve.Scope) ([]Reference, diagnostic.Diagnostics) {
	t.Helper()

	graph, err := analyze.NewAnalyzer().LoadPackages(storePkg)
	require.NoError(t, err)

	lam, err := selector.ParseSelection(src, "x")
	require.NoError(t, err)

	root, diags := fieldmodel.Parse(lam, "site", "")
	require.NoError(t, diags.Error())

	resolved, info, diags := resolve.Resolve(resolve.Selection{
		Root:   root,
		Param:  lam.Param,
		Source: graph.GetType(analyze.TypeID{PkgPath: storePkg, Name: "Order"}),
	}, resolve.Config{Graph: graph, Scope: scope, OutputPackage: "projgen/app", Location: "site"})
	require.NoError(t, diags.Error())

	return Analyze(resolved, info, "site")
}

func TestAnalyze_ClassifiesOuterBindings(t *testing.T) {
	svc := analyze.NewStruct(analyze.TypeID{PkgPath: "projgen/app", Name: "Service"},
		analyze.FieldInfo{Name: "Threshold", Type: analyze.Int})

	scope := resolve.Scope{
		Package:    storePkg,
		Locals:     map[string]*analyze.TypeInfo{"minQty": analyze.Int},
		Parameters: map[string]*analyze.TypeInfo{"label": analyze.String},
		Receiver:   &resolve.Receiver{Name: "svc", Type: svc},
	}

	refs, diags := analyzeSrc(t, `new {
		Big = x.Items.Where(i => i.Quantity > minQty).Count(),
		Over = x.Items.Where(i => i.Quantity > Threshold).Count(),
		L = label,
		C = DefaultCurrency,
		Q = store.DefaultCurrency,
		M = MaxItems,
		P = x.Status == StatusPaid,
		T = FormatCents(x.TotalCents),
		Lines = x.Items.Select(i => new { i.Name, Min = minQty }).ToList(),
	}`, scope)
	assert.Zero(t, diags.Len())

	assert.Equal(t, []string{"DefaultCurrency", "Threshold", "label", "minQty"}, Names(refs))

	kinds := []Kind{KindStaticMember, KindInstanceMember, KindParameter, KindLocal}
	for i, ref := range refs {
		assert.Equal(t, kinds[i], ref.Kind, ref.Name)
		assert.False(t, ref.Untyped, ref.Name)
	}

	assert.Equal(t, "string", refs[0].Type.String())
	require.NotNil(t, refs[0].Object)
	assert.Equal(t, storePkg, refs[0].Object.PkgPath)
}

func TestAnalyze_LocalShadowingPackageVar(t *testing.T) {
	scope := resolve.Scope{Locals: map[string]*analyze.TypeInfo{"DefaultCurrency": analyze.Int}}

	for _, body := range []string{
		"new { B = store.DefaultCurrency, A = DefaultCurrency }",
		"new { A = DefaultCurrency, B = store.DefaultCurrency }",
	} {
		t.Run(body, func(t *testing.T) {
			refs, diags := analyzeSrc(t, body, scope)
			assert.Zero(t, diags.Len())

			require.Equal(t, []string{"DefaultCurrency", "storeDefaultCurrency"}, Names(refs))

			assert.Equal(t, KindLocal, refs[0].Kind)
			assert.Equal(t, "int", refs[0].Type.String())
			assert.Nil(t, refs[0].Object)

			assert.Equal(t, KindStaticMember, refs[1].Kind)
			assert.Equal(t, "string", refs[1].Type.String())
			require.NotNil(t, refs[1].Object)
			assert.Equal(t, "DefaultCurrency", refs[1].Object.Name)
		})
	}
}

func TestAnalyze_PackageVarNamedLikeLambdaParameter(t *testing.T) {
	refs, _ := analyzeSrc(t,
		"new { C = store.DefaultCurrency, N = x.Items.Count(DefaultCurrency => DefaultCurrency.Quantity > 1) }",
		resolve.Scope{})

	assert.Equal(t, []string{"storeDefaultCurrency"}, Names(refs))
}

func TestAnalyze_ParameterAndLambdaAreNotCaptured(t *testing.T) {
	refs, diags := analyzeSrc(t, "new { N = x.Items.Where(i => i.Quantity > 1).Count(), x.ID }", resolve.Scope{})
	assert.Empty(t, refs)
	assert.Zero(t, diags.Len())
}

func TestAnalyze_UntypedCapture(t *testing.T) {
	refs, diags := analyzeSrc(t, "new { T = tag, U = tag }", resolve.Scope{})
	require.Len(t, refs, 1)

	assert.Equal(t, "tag", refs[0].Name)
	assert.Equal(t, KindLocal, refs[0].Kind)
	assert.True(t, refs[0].Untyped)
	assert.Equal(t, "any", refs[0].Type.String())

	infos := diags.ByCode(diagnostic.CodeUntypedCapture)
	require.Len(t, infos, 1)
	assert.Equal(t, diagnostic.DiagnosticInfo, infos[0].Severity)
	assert.Equal(t, "T", infos[0].FieldPath)
}

func TestCheck(t *testing.T) {
	required := []Reference{{Name: "m", Kind: KindLocal}}

	tests := []struct {
		name     string
		required []Reference
		supplied []string
		missing  []string
		unused   []string
	}{
		{name: "not supplied", required: required, missing: []string{"m"}},
		{name: "supplied", required: required, supplied: []string{"m"}},
		{name: "extra", required: required, supplied: []string{"z", "m", "z"}, unused: []string{"z"}},
		{name: "nothing needed", supplied: []string{"b", "a"}, unused: []string{"a", "b"}},
		{
			name:     "several missing",
			required: []Reference{{Name: "b"}, {Name: "a"}},
			missing:  []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := Check("site", tt.required, tt.supplied)

			missing := diags.ByCode(diagnostic.CodeMissingCapture)
			if tt.missing == nil {
				assert.Empty(t, missing)
			} else {
				require.Len(t, missing, 1)
				assert.Equal(t, tt.missing, missing[0].Names)
				assert.Equal(t, diagnostic.DiagnosticError, missing[0].Severity)
				assert.Equal(t, "site", missing[0].Location)
			}

			unused := diags.ByCode(diagnostic.CodeUnusedCapture)
			if tt.unused == nil {
				assert.Empty(t, unused)
			} else {
				require.Len(t, unused, 1)
				assert.Equal(t, tt.unused, unused[0].Names)
				assert.NotEqual(t, diagnostic.DiagnosticError, unused[0].Severity)
			}
		})
	}
}

func TestCheck_SuggestsMisspelledCapture(t *testing.T) {
	diags := Check("site", []Reference{{Name: "minQty"}}, []string{"minQt"})

	missing := diags.ByCode(diagnostic.CodeMissingCapture)
	require.Len(t, missing, 1)
	assert.Equal(t, []string{"minQt"}, missing[0].Suggestions)
	assert.Len(t, diags.ByCode(diagnostic.CodeUnusedCapture), 1)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "instanceMember", KindInstanceMember.String())
	assert.Equal(t, "staticMember", KindStaticMember.String())
	assert.Equal(t, "kind?", Kind(42).String())
}
