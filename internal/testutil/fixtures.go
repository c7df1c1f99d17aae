// Package testutil builds transaction fixtures for tests.
package testutil

import (
	"encoding/json"

	"github.com/ginjaninja78/sales-batch-processor/internal/types"
)

// TxOption customizes a fixture transaction.
type TxOption func(tx *types.Transaction)

// Item returns a line item with the given product, category, quantity and
// subtotal. The unit price is derived from the subtotal.
func Item(product, category string, quantity int, subtotal float64) types.LineItem {
	unit := 0.0
	if quantity > 0 {
		unit = subtotal / float64(quantity)
	}
	return types.LineItem{
		ProductID:   types.Ptr("P-" + product),
		ProductName: types.Ptr(product),
		Category:    types.Ptr(category),
		Quantity:    types.Ptr(quantity),
		UnitPrice:   types.Ptr(unit),
		Discount:    types.Ptr(0.0),
		Subtotal:    types.Ptr(subtotal),
	}
}

// Tx returns a valid completed transaction with one line item whose subtotal
// equals total.
func Tx(id, customerID string, total float64, opts ...TxOption) *types.Transaction {
	tx := &types.Transaction{
		TransactionID: types.Ptr(id),
		Timestamp:     types.Ptr("2024-01-15T10:30:00Z"),
		Customer: &types.Customer{
			CustomerID: types.Ptr(customerID),
			Email:      types.Ptr(customerID + "@example.com"),
			Country:    types.Ptr("US"),
		},
		LineItems:      []types.LineItem{Item("Widget", "Tools", 1, total)},
		Subtotal:       types.Ptr(total),
		Tax:            types.Ptr(0.0),
		ShippingCost:   types.Ptr(0.0),
		Total:          types.Ptr(total),
		PaymentMethod:  types.Ptr("credit_card"),
		ShippingMethod: types.Ptr("standard"),
		Status:         types.Ptr(types.StatusCompleted),
	}
	for _, opt := range opts {
		opt(tx)
	}
	return tx
}

// WithStatus sets the status.
func WithStatus(status string) TxOption {
	return func(tx *types.Transaction) { tx.Status = types.Ptr(status) }
}

// WithItems replaces the line items.
func WithItems(items ...types.LineItem) TxOption {
	return func(tx *types.Transaction) { tx.LineItems = items }
}

// WithTaxAndShipping sets tax and shipping cost.
func WithTaxAndShipping(tax, shipping float64) TxOption {
	return func(tx *types.Transaction) {
		tx.Tax = types.Ptr(tax)
		tx.ShippingCost = types.Ptr(shipping)
	}
}

// WithPayment sets payment and shipping methods. An empty value removes the field.
func WithPayment(payment, shipping string) TxOption {
	return func(tx *types.Transaction) {
		tx.PaymentMethod = nilIfEmpty(payment)
		tx.ShippingMethod = nilIfEmpty(shipping)
	}
}

// WithTimestamp sets the raw timestamp.
func WithTimestamp(ts string) TxOption {
	return func(tx *types.Transaction) { tx.Timestamp = types.Ptr(ts) }
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Batch encodes a batch envelope around the given transactions.
func Batch(batchID string, txs ...*types.Transaction) []byte {
	doc := map[string]any{
		"batch_id":     batchID,
		"generated_at": "2024-01-15T00:00:00Z",
		"transactions": txs,
	}
	if txs == nil {
		doc["transactions"] = []any{}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return data
}
