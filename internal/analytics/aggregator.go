// =============================================================================
// Sales Batch Processor - Aggregator
// =============================================================================
//
// This module computes summary statistics, breakdowns and rankings over a set
// of transactions.
//
// INPUT CONTRACT:
//   Aggregate re-validates every transaction and silently skips the ones that
//   fail, so a record included by mistake is never counted.
//
// REVENUE:
//   Only transactions with status "completed" contribute revenue, tax,
//   shipping, customer and product figures. Status, payment method and
//   shipping method tallies count every valid transaction.
//
// ORDERING:
//   Every ranking is a stable sort, descending by its metric, so ties keep
//   the order in which names were first seen.
//
// =============================================================================

package analytics

import (
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/ginjaninja78/sales-batch-processor/internal/logging"
	"github.com/ginjaninja78/sales-batch-processor/internal/types"
	"github.com/ginjaninja78/sales-batch-processor/internal/validation"
)

// TopN is the length of every ranking list.
const TopN = 10

// =============================================================================
// ACCUMULATOR
// =============================================================================

// accumulator holds the running totals of one Aggregate call.
type accumulator struct {
	transactionCount int
	completedCount   int
	totalRevenue     float64
	totalTax         float64
	totalShipping    float64

	statusCounts    *types.Tally
	paymentMethods  *types.Tally
	shippingMethods *types.Tally

	categoryRevenue  *types.Amounts
	productRevenue   *types.Amounts
	productQuantity  *types.Tally
	customerRevenue  *types.Amounts
	customerOrderCnt *types.Tally
}

func newAccumulator() *accumulator {
	return &accumulator{
		statusCounts:     types.NewTally(),
		paymentMethods:   types.NewTally(),
		shippingMethods:  types.NewTally(),
		categoryRevenue:  types.NewAmounts(),
		productRevenue:   types.NewAmounts(),
		productQuantity:  types.NewTally(),
		customerRevenue:  types.NewAmounts(),
		customerOrderCnt: types.NewTally(),
	}
}

func addCount(m *types.Tally, key string, n int) {
	cur, _ := m.Get(key)
	m.Set(key, cur+n)
}

func addAmount(m *types.Amounts, key string, v float64) {
	cur, _ := m.Get(key)
	m.Set(key, cur+v)
}

// add folds one valid transaction into the totals.
func (a *accumulator) add(tx *types.Transaction) {
	a.transactionCount++
	status := tx.StatusOr(types.UnknownLower)
	addCount(a.statusCounts, status, 1)

	if status == types.StatusCompleted {
		a.completedCount++
		total := tx.TotalOrZero()
		a.totalRevenue += total
		a.totalTax += tx.TaxOrZero()
		a.totalShipping += tx.ShippingCostOrZero()

		if customerID, ok := tx.CustomerID(); ok {
			addAmount(a.customerRevenue, customerID, total)
			addCount(a.customerOrderCnt, customerID, 1)
		}

		for _, item := range tx.LineItems {
			product := item.ProductNameOr(types.Unknown)
			subtotal := item.SubtotalOrZero()
			addAmount(a.categoryRevenue, item.CategoryOr(types.Unknown), subtotal)
			addAmount(a.productRevenue, product, subtotal)
			addCount(a.productQuantity, product, item.QuantityOrZero())
		}
	}

	addCount(a.paymentMethods, tx.PaymentMethodOr(types.Unknown), 1)
	addCount(a.shippingMethods, tx.ShippingMethodOr(types.Unknown), 1)
}

// =============================================================================
// MAIN AGGREGATION FUNCTION
// =============================================================================

// Aggregate computes the analytics document for the given transactions.
//
// PARAMETERS:
//   - txs: Transactions in input order. Invalid and nil entries are skipped.
//
// RETURNS:
//   - A fully initialized Analytics document. Calling Aggregate twice on the
//     same input yields equal documents.
func Aggregate(txs []*types.Transaction) *types.Analytics {
	logging.Infow("Calculating aggregates", "transactions", len(txs))

	acc := newAccumulator()
	for i, tx := range txs {
		func() {
			defer logging.RecoverAndLog("aggregate", "index", i)
			if valid, _ := validation.ValidateTransaction(tx); !valid {
				return
			}
			acc.add(tx)
		}()
	}

	return acc.result()
}

// result derives averages and rankings from the accumulated totals.
func (a *accumulator) result() *types.Analytics {
	out := types.NewAnalytics()

	out.Summary = types.Summary{
		TotalTransactions:     a.transactionCount,
		CompletedTransactions: a.completedCount,
		TotalRevenue:          Round2(a.totalRevenue),
		TotalTax:              Round2(a.totalTax),
		TotalShipping:         Round2(a.totalShipping),
		AverageOrderValue:     Round2(average(a.totalRevenue, a.completedCount)),
		AverageTax:            Round2(average(a.totalTax, a.completedCount)),
		AverageShipping:       Round2(average(a.totalShipping, a.completedCount)),
	}

	out.StatusBreakdown = a.statusCounts
	out.PaymentMethods = a.paymentMethods
	out.ShippingMethods = a.shippingMethods

	for _, e := range rank(a.categoryRevenue) {
		out.RevenueByCategory.Set(e.key, Round2(e.value))
	}

	for _, e := range top(rank(a.customerRevenue)) {
		orders, _ := a.customerOrderCnt.Get(e.key)
		out.TopCustomers = append(out.TopCustomers, types.CustomerRanking{
			CustomerID:   e.key,
			TotalRevenue: Round2(e.value),
			OrderCount:   orders,
		})
	}

	for _, e := range top(rank(a.productRevenue)) {
		qty, _ := a.productQuantity.Get(e.key)
		out.TopProductsByRevenue = append(out.TopProductsByRevenue, types.ProductRanking{
			Product:      e.key,
			Revenue:      Round2(e.value),
			QuantitySold: qty,
		})
	}

	for _, e := range top(rank(a.productQuantity)) {
		rev, _ := a.productRevenue.Get(e.key)
		out.TopProductsByQuantity = append(out.TopProductsByQuantity, types.ProductRanking{
			Product:      e.key,
			Revenue:      Round2(rev),
			QuantitySold: e.value,
		})
	}

	return out
}

func average(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// =============================================================================
// RANKING
// =============================================================================

type entry[V int | float64] struct {
	key   string
	value V
}

// rank returns the entries of m sorted by value descending, ties in
// insertion order.
func rank[V int | float64](m *orderedmap.OrderedMap[string, V]) []entry[V] {
	entries := make([]entry[V], 0, m.Len())
	for p := m.Oldest(); p != nil; p = p.Next() {
		entries = append(entries, entry[V]{key: p.Key, value: p.Value})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].value > entries[j].value
	})
	return entries
}

func top[V int | float64](entries []entry[V]) []entry[V] {
	if len(entries) > TopN {
		return entries[:TopN]
	}
	return entries
}
