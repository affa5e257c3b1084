package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypePath(t *testing.T) {
	p1 := NewTypePath("OrderSummary")
	assert.Equal(t, "OrderSummary", p1.String())

	p2 := p1.Field("Lines")
	assert.Equal(t, "OrderSummary.Lines", p2.String())

	p3 := p2.Slice()
	assert.Equal(t, "OrderSummary.Lines[]", p3.String())

	p4 := p3.Field("Sku")
	assert.Equal(t, "OrderSummary.Lines[].Sku", p4.String())
	assert.Equal(t, "OrderSummary", p4.Root())
	assert.Equal(t, "Lines[].Sku", p4.Tail())

	// Derived paths never alias their parent.
	assert.Equal(t, "OrderSummary.Lines", p2.String())
}
