package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitQualified(t *testing.T) {
	q, n := SplitQualified("example.com/app/store.Order")
	assert.Equal(t, "example.com/app/store", q)
	assert.Equal(t, "Order", n)

	q, n = SplitQualified("Order")
	assert.Empty(t, q)
	assert.Equal(t, "Order", n)
}

func TestCaseHelpers(t *testing.T) {
	assert.True(t, IsExported("Name"))
	assert.False(t, IsExported("name"))
	assert.False(t, IsExported(""))
	assert.Equal(t, "Name", UpperFirst("name"))
	assert.Equal(t, "name", LowerFirst("Name"))
	assert.Empty(t, UpperFirst(""))
}

func TestSliceHelpers(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SortedKeys(map[string]int{"b": 1, "a": 2}))
	assert.Equal(t, []string{"m", "q"}, Dedupe([]string{"q", "m", "q"}))
	assert.Equal(t, "store", PkgAlias("example.com/app/store"))
}
