// Package warehouse declares projection targets that are partly written by
// hand and partly completed by projgen.
package warehouse

// OrderSummary is the list view of an order. Members not declared here are
// generated into the embedded OrderSummaryGenerated.
type OrderSummary struct {
	OrderSummaryGenerated

	Total    int64      `json:"total"`
	Lines    []LineView `json:"lines"`
	Priority int        `json:"priority"`
	Amount   *int64     `json:"amount"`
	label    string
}

// Label returns the display label assigned by the projection.
func (s OrderSummary) Label() string {
	return s.label
}

// LineView is a fully hand-written nested projection target.
type LineView struct {
	Sku string `json:"sku"`
	Qty int    `json:"qty"`
}
