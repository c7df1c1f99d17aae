// =============================================================================
// Sales Batch Processor - Shared Types
// =============================================================================
//
// This package contains the data model shared by the validator, the
// aggregator, the anomaly detector and the processor. Keeping it here avoids
// import cycles between those packages.
//
// PRESENCE:
//   Every field of an input record is decoded into a pointer. A nil pointer
//   means the key was absent (or explicitly null) in the input document, which
//   is what the required-field check needs to observe. Code outside this
//   package reads fields through the accessor functions below rather than
//   dereferencing pointers directly.
//
// =============================================================================

package types

import (
	"bytes"
	"encoding/json"
)

// =============================================================================
// DEFAULT LABELS
// =============================================================================

const (
	// Unknown is the label used for absent names in breakdowns and rankings.
	Unknown = "Unknown"

	// UnknownLower is the label used for absent identifiers and statuses.
	UnknownLower = "unknown"

	// StatusCompleted is the only status that contributes revenue.
	StatusCompleted = "completed"
)

// =============================================================================
// INPUT DOCUMENT
// =============================================================================

// Batch is the envelope delivered to the processor.
//
// Transactions are kept as raw JSON so a single malformed record can be
// reported as invalid without failing the whole batch. The identity fields
// are raw too: a non-string batch_id is echoed as its JSON text.
type Batch struct {
	// BatchID identifies the batch. Defaults to "unknown" when absent.
	BatchID json.RawMessage `json:"batch_id"`

	// GeneratedAt is the generator's timestamp. Defaults to "unknown" when absent.
	GeneratedAt json.RawMessage `json:"generated_at"`

	// Transactions holds one raw JSON document per transaction, in input order.
	Transactions []json.RawMessage `json:"transactions"`
}

// ID returns the batch id, or "unknown" when it is absent or null.
func (b *Batch) ID() string {
	return label(b.BatchID, UnknownLower)
}

// GeneratedAtOr returns the generator's timestamp, or def when it is absent.
func (b *Batch) GeneratedAtOr(def string) string {
	return label(b.GeneratedAt, def)
}

// label renders a raw JSON value as a string: strings are unquoted, other
// values keep their JSON text.
func label(raw json.RawMessage, def string) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return def
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	return string(trimmed)
}

// Customer identifies the buyer of a transaction.
type Customer struct {
	CustomerID *string `json:"customer_id,omitempty" yaml:"customer_id,omitempty"`
	Name       *string `json:"name,omitempty" yaml:"name,omitempty"`
	Email      *string `json:"email,omitempty" yaml:"email,omitempty"`
	Country    *string `json:"country,omitempty" yaml:"country,omitempty"`
	State      *string `json:"state,omitempty" yaml:"state,omitempty"`
}

// LineItem is one product line of a transaction.
type LineItem struct {
	ProductID   *string  `json:"product_id,omitempty" yaml:"product_id,omitempty"`
	ProductName *string  `json:"product_name,omitempty" yaml:"product_name,omitempty"`
	Category    *string  `json:"category,omitempty" yaml:"category,omitempty"`
	Quantity    *int     `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	UnitPrice   *float64 `json:"unit_price,omitempty" yaml:"unit_price,omitempty"`
	Discount    *float64 `json:"discount,omitempty" yaml:"discount,omitempty"`
	Subtotal    *float64 `json:"subtotal,omitempty" yaml:"subtotal,omitempty"`
}

// Transaction is the unit of work.
//
// LineItems is nil when the key is absent or null, and a non-nil empty slice
// when the input carries an empty array.
type Transaction struct {
	TransactionID  *string    `json:"transaction_id,omitempty" yaml:"transaction_id,omitempty"`
	Timestamp      *string    `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Customer       *Customer  `json:"customer,omitempty" yaml:"customer,omitempty"`
	LineItems      []LineItem `json:"line_items" yaml:"line_items"`
	Subtotal       *float64   `json:"subtotal,omitempty" yaml:"subtotal,omitempty"`
	Tax            *float64   `json:"tax,omitempty" yaml:"tax,omitempty"`
	ShippingCost   *float64   `json:"shipping_cost,omitempty" yaml:"shipping_cost,omitempty"`
	Total          *float64   `json:"total,omitempty" yaml:"total,omitempty"`
	PaymentMethod  *string    `json:"payment_method,omitempty" yaml:"payment_method,omitempty"`
	ShippingMethod *string    `json:"shipping_method,omitempty" yaml:"shipping_method,omitempty"`
	Status         *string    `json:"status,omitempty" yaml:"status,omitempty"`
}

// =============================================================================
// ACCESSORS
// =============================================================================
// Each accessor is a total function: it returns the field value when present
// and the given default otherwise.

// ValueOr returns *p, or def when p is nil.
func ValueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

// Ptr returns a pointer to v. Used by builders and tests.
func Ptr[T any](v T) *T {
	return &v
}

// IDOr returns the transaction id, or def when it is absent.
func (t *Transaction) IDOr(def string) string {
	return ValueOr(t.TransactionID, def)
}

// TimestampOr returns the raw timestamp string, or def when it is absent.
func (t *Transaction) TimestampOr(def string) string {
	return ValueOr(t.Timestamp, def)
}

// TotalOrZero returns the transaction total, or 0 when it is absent.
func (t *Transaction) TotalOrZero() float64 {
	return ValueOr(t.Total, 0)
}

// TaxOrZero returns the tax amount, or 0 when it is absent.
func (t *Transaction) TaxOrZero() float64 {
	return ValueOr(t.Tax, 0)
}

// ShippingCostOrZero returns the shipping cost, or 0 when it is absent.
func (t *Transaction) ShippingCostOrZero() float64 {
	return ValueOr(t.ShippingCost, 0)
}

// StatusOr returns the status, or def when it is absent.
func (t *Transaction) StatusOr(def string) string {
	return ValueOr(t.Status, def)
}

// PaymentMethodOr returns the payment method, or def when it is absent.
func (t *Transaction) PaymentMethodOr(def string) string {
	return ValueOr(t.PaymentMethod, def)
}

// ShippingMethodOr returns the shipping method, or def when it is absent.
func (t *Transaction) ShippingMethodOr(def string) string {
	return ValueOr(t.ShippingMethod, def)
}

// CustomerID returns the customer id and whether it is usable as a grouping
// key. Absent customers, absent ids and empty ids are all reported as false.
func (t *Transaction) CustomerID() (string, bool) {
	if t.Customer == nil || t.Customer.CustomerID == nil || *t.Customer.CustomerID == "" {
		return "", false
	}
	return *t.Customer.CustomerID, true
}

// CustomerIDPtr returns the customer id as found in the input, nil when the
// customer or its id is absent.
func (t *Transaction) CustomerIDPtr() *string {
	if t.Customer == nil {
		return nil
	}
	return t.Customer.CustomerID
}

// QuantityOrZero returns the quantity, or 0 when it is absent.
func (li LineItem) QuantityOrZero() int {
	return ValueOr(li.Quantity, 0)
}

// UnitPriceOrZero returns the unit price, or 0 when it is absent.
func (li LineItem) UnitPriceOrZero() float64 {
	return ValueOr(li.UnitPrice, 0)
}

// SubtotalOrZero returns the line subtotal, or 0 when it is absent.
func (li LineItem) SubtotalOrZero() float64 {
	return ValueOr(li.Subtotal, 0)
}

// CategoryOr returns the category, or def when it is absent.
func (li LineItem) CategoryOr(def string) string {
	return ValueOr(li.Category, def)
}

// ProductNameOr returns the product name, or def when it is absent.
func (li LineItem) ProductNameOr(def string) string {
	return ValueOr(li.ProductName, def)
}
