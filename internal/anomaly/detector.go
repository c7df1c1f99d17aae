// =============================================================================
// Sales Batch Processor - Anomaly Detector
// =============================================================================
//
// This module scans a set of already validated transactions for suspicious
// individual transactions and patterns:
//   - High value transactions (total above Threshold)
//   - Repeated transaction ids
//   - Line items with an unusually high quantity
//   - Customers with many transactions in one batch
//
// REPORTING:
//   Each report carries the true count of findings. The high value and
//   pattern lists are truncated to MaxListed entries; the frequent customer
//   list is not.
//
//   Duplicate id and high quantity findings share one pattern list in scan
//   order (per transaction, then per line item), so a truncated list can mix
//   both kinds.
//
// =============================================================================

package anomaly

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/ginjaninja78/sales-batch-processor/internal/logging"
	"github.com/ginjaninja78/sales-batch-processor/internal/types"
)

const (
	// Threshold is the total above which a transaction is high value.
	Threshold = 5000.0

	// HighQuantity is the line item quantity above which a pattern is reported.
	HighQuantity = 20

	// FrequentCustomerMin is the transaction count a customer must exceed to be
	// reported as frequent.
	FrequentCustomerMin = 10

	// MaxListed caps the high value and pattern lists.
	MaxListed = 20
)

// customerActivity tracks one customer's transactions within the batch.
type customerActivity struct {
	count      int
	totalSpent float64
}

// Detect scans the transactions and returns the anomaly report.
//
// The transactions are expected to have passed validation; Detect does not
// re-validate them. A record that panics during the scan is logged and
// skipped without affecting the others.
func Detect(txs []*types.Transaction) *types.Anomalies {
	logging.Infow("Detecting anomalies", "transactions", len(txs))

	var (
		highValue []types.HighValueTransaction
		patterns  []types.SuspiciousPattern
		seen      = make(map[string]struct{})
		customers = orderedmap.New[string, *customerActivity]()
	)

	for i, tx := range txs {
		func() {
			defer logging.RecoverAndLog("detect_anomalies", "index", i)

			id := tx.IDOr("")
			total := tx.TotalOrZero()

			if total > Threshold {
				highValue = append(highValue, types.HighValueTransaction{
					TransactionID: id,
					Total:         total,
					Timestamp:     tx.TimestampOr(""),
					CustomerID:    tx.CustomerIDPtr(),
				})
			}

			if _, dup := seen[id]; dup {
				patterns = append(patterns, types.SuspiciousPattern{
					Type:          types.PatternDuplicateID,
					TransactionID: id,
					Description:   "Transaction ID appears multiple times",
				})
			}
			seen[id] = struct{}{}

			if customerID, ok := tx.CustomerID(); ok {
				activity, found := customers.Get(customerID)
				if !found {
					activity = &customerActivity{}
					customers.Set(customerID, activity)
				}
				activity.count++
				activity.totalSpent += total
			}

			for _, item := range tx.LineItems {
				qty := item.QuantityOrZero()
				if qty > HighQuantity {
					patterns = append(patterns, types.SuspiciousPattern{
						Type:          types.PatternHighQuantity,
						TransactionID: id,
						Product:       item.ProductName,
						Quantity:      types.Ptr(qty),
						Description:   fmt.Sprintf("Unusually high quantity: %d", qty),
					})
				}
			}
		}()
	}

	frequent := make([]types.FrequentCustomer, 0)
	for p := customers.Oldest(); p != nil; p = p.Next() {
		if p.Value.count > FrequentCustomerMin {
			frequent = append(frequent, types.FrequentCustomer{
				CustomerID:       p.Key,
				TransactionCount: p.Value.count,
				TotalSpent:       p.Value.totalSpent,
			})
		}
	}

	return &types.Anomalies{
		HighValueTransactions: types.HighValueReport{
			Count:        len(highValue),
			Threshold:    Threshold,
			Transactions: capList(highValue),
		},
		SuspiciousPatterns: types.PatternReport{
			Count:    len(patterns),
			Patterns: capList(patterns),
		},
		FrequentCustomers: types.FrequentCustomerReport{
			Count:     len(frequent),
			Customers: frequent,
		},
	}
}

// capList returns at most MaxListed leading entries, never nil.
func capList[T any](list []T) []T {
	if len(list) > MaxListed {
		list = list[:MaxListed]
	}
	out := make([]T, len(list))
	copy(out, list)
	return out
}
