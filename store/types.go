// Package store holds the source records used by the projgen fixtures.
package store

import (
	"fmt"
	"time"
)

// Product is an individual item available for sale.
type Product struct {
	ID         int64     `json:"id"`
	SKU        string    `json:"sku"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"created_at"`
}

// Address is an optional part of a customer.
type Address struct {
	Street string  `json:"street"`
	City   string  `json:"city"`
	Zip    *string `json:"zip"`
}

// Customer places orders.
type Customer struct {
	ID       int64    `json:"id"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Address  *Address `json:"address"`
	IsActive bool     `json:"is_active"`
	Initial  rune     `json:"initial"`
}

// Order is a transaction made by a customer.
type Order struct {
	ID         int64       `json:"id"`
	Customer   *Customer   `json:"customer"`
	Status     OrderStatus `json:"status"`
	TotalCents int64       `json:"total_cents"`
	Items      []OrderItem `json:"items"`
	Priority   *int        `json:"priority"`
	OrderedAt  time.Time   `json:"ordered_at"`

	note string
}

// Note returns the internal order note.
func (o *Order) Note() string {
	return o.note
}

// ItemCount returns the number of line items.
func (o Order) ItemCount() int {
	return len(o.Items)
}

// OrderItem is a product line within an order.
type OrderItem struct {
	ProductID int64    `json:"product_id"`
	Name      string   `json:"name"`
	Category  string   `json:"category"`
	Quantity  int      `json:"quantity"`
	UnitPrice int64    `json:"unit_price"`
	Product   *Product `json:"product"`
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPaid      OrderStatus = "PAID"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// MaxItems bounds the number of lines in an order.
const MaxItems = 50

// DefaultCurrency is the currency used when a price has none.
var DefaultCurrency = "EUR"

// FormatCents renders an amount of cents as a decimal string.
func FormatCents(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
