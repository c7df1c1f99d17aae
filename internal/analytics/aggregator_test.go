package analytics_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/sales-batch-processor/internal/analytics"
	"github.com/ginjaninja78/sales-batch-processor/internal/testutil"
	"github.com/ginjaninja78/sales-batch-processor/internal/types"
	"github.com/ginjaninja78/sales-batch-processor/internal/validation"
)

func tallyKeys(m *types.Tally) []string {
	out := make([]string, 0, m.Len())
	for p := m.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Key)
	}
	return out
}

func amountKeys(m *types.Amounts) []string {
	out := make([]string, 0, m.Len())
	for p := m.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Key)
	}
	return out
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{in: 100.005, want: 100.00},
		{in: 0.125, want: 0.13},
		{in: -0.125, want: -0.13},
		{in: 2.675, want: 2.67},
		{in: 33.335, want: 33.34},
		{in: 10.0 / 3, want: 3.33},
		{in: 150, want: 150},
		{in: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, analytics.Round2(tt.in))
		})
	}
}

func TestAggregate_Empty(t *testing.T) {
	out := analytics.Aggregate(nil)

	assert.Equal(t, types.Summary{}, out.Summary)
	assert.Equal(t, 0, out.StatusBreakdown.Len())
	assert.Empty(t, out.TopCustomers)

	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status_breakdown":{}`)
	assert.Contains(t, string(data), `"top_customers":[]`)
}

func TestAggregate_SingleCompleted(t *testing.T) {
	tx := testutil.Tx("T1", "C1", 150.00, testutil.WithTaxAndShipping(10, 20))

	out := analytics.Aggregate([]*types.Transaction{tx})

	assert.Equal(t, types.Summary{
		TotalTransactions:     1,
		CompletedTransactions: 1,
		TotalRevenue:          150,
		TotalTax:              10,
		TotalShipping:         20,
		AverageOrderValue:     150,
		AverageTax:            10,
		AverageShipping:       20,
	}, out.Summary)
	require.Len(t, out.TopCustomers, 1)
	assert.Equal(t, types.CustomerRanking{CustomerID: "C1", TotalRevenue: 150, OrderCount: 1}, out.TopCustomers[0])
	require.Len(t, out.TopProductsByRevenue, 1)
	assert.Equal(t, types.ProductRanking{Product: "Widget", Revenue: 150, QuantitySold: 1}, out.TopProductsByRevenue[0])
}

func TestAggregate_RoundsSummedRevenue(t *testing.T) {
	out := analytics.Aggregate([]*types.Transaction{testutil.Tx("T1", "C1", 100.005)})

	assert.Equal(t, 100.00, out.Summary.TotalRevenue)
	assert.Equal(t, 100.00, out.Summary.AverageOrderValue)
}

func TestAggregate_StatusHandling(t *testing.T) {
	txs := []*types.Transaction{
		testutil.Tx("T1", "C1", 100, testutil.WithStatus("pending")),
		testutil.Tx("T2", "C1", 200),
		testutil.Tx("T3", "C2", 300, testutil.WithStatus("refunded"), testutil.WithPayment("paypal", "")),
		testutil.Tx("T4", "C2", 50, testutil.WithStatus("pending")),
	}

	out := analytics.Aggregate(txs)

	assert.Equal(t, 4, out.Summary.TotalTransactions)
	assert.Equal(t, 1, out.Summary.CompletedTransactions)
	assert.Equal(t, 200.0, out.Summary.TotalRevenue)

	assert.Equal(t, []string{"pending", "completed", "refunded"}, tallyKeys(out.StatusBreakdown))
	pending, _ := out.StatusBreakdown.Get("pending")
	assert.Equal(t, 2, pending)

	card, _ := out.PaymentMethods.Get("credit_card")
	paypal, _ := out.PaymentMethods.Get("paypal")
	assert.Equal(t, 3, card)
	assert.Equal(t, 1, paypal)

	unknown, ok := out.ShippingMethods.Get(types.Unknown)
	assert.True(t, ok)
	assert.Equal(t, 1, unknown)

	require.Len(t, out.TopCustomers, 1)
	assert.Equal(t, "C1", out.TopCustomers[0].CustomerID)
}

func TestAggregate_SkipsInvalid(t *testing.T) {
	invalid := testutil.Tx("T2", "C2", 999999, testutil.WithItems(testutil.Item("Widget", "Tools", 100, 9999)))
	valid, errs := validation.ValidateTransaction(invalid)
	require.False(t, valid)
	require.Equal(t, []string{"Total amount exceeds maximum: 999999"}, errs)

	out := analytics.Aggregate([]*types.Transaction{testutil.Tx("T1", "C1", 150), invalid, nil})

	assert.Equal(t, 1, out.Summary.TotalTransactions)
	assert.Equal(t, 150.0, out.Summary.TotalRevenue)
	card, _ := out.PaymentMethods.Get("credit_card")
	assert.Equal(t, 1, card)
}

func TestAggregate_RankingStability(t *testing.T) {
	txs := []*types.Transaction{
		testutil.Tx("T1", "C-B", 100),
		testutil.Tx("T2", "C-A", 300),
		testutil.Tx("T3", "C-C", 100),
		testutil.Tx("T4", "C-D", 100),
	}

	out := analytics.Aggregate(txs)

	got := make([]string, 0, len(out.TopCustomers))
	for _, c := range out.TopCustomers {
		got = append(got, c.CustomerID)
	}
	assert.Equal(t, []string{"C-A", "C-B", "C-C", "C-D"}, got)
}

func TestAggregate_TopTenCaps(t *testing.T) {
	var txs []*types.Transaction
	for i := 0; i < 15; i++ {
		product := fmt.Sprintf("Product-%02d", i)
		txs = append(txs, testutil.Tx(
			fmt.Sprintf("T%02d", i),
			fmt.Sprintf("C%02d", i),
			float64(100+i),
			testutil.WithItems(testutil.Item(product, fmt.Sprintf("Cat-%02d", i), 15-i, float64(100+i))),
		))
	}

	out := analytics.Aggregate(txs)

	assert.Len(t, out.TopCustomers, analytics.TopN)
	assert.Len(t, out.TopProductsByRevenue, analytics.TopN)
	assert.Len(t, out.TopProductsByQuantity, analytics.TopN)
	assert.Equal(t, 15, out.RevenueByCategory.Len())

	assert.Equal(t, "C14", out.TopCustomers[0].CustomerID)
	assert.Equal(t, "Product-14", out.TopProductsByRevenue[0].Product)
	assert.Equal(t, 1, out.TopProductsByRevenue[0].QuantitySold)
	assert.Equal(t, "Product-00", out.TopProductsByQuantity[0].Product)
	assert.Equal(t, 15, out.TopProductsByQuantity[0].QuantitySold)
	assert.Equal(t, 100.0, out.TopProductsByQuantity[0].Revenue)

	categories := amountKeys(out.RevenueByCategory)
	assert.Equal(t, "Cat-14", categories[0])
	assert.Equal(t, "Cat-00", categories[14])
}

func TestAggregate_CategoryDefaultsAndOrder(t *testing.T) {
	noCategory := testutil.Item("Mystery", "", 2, 40)
	noCategory.Category = nil
	noName := testutil.Item("", "Books", 1, 60)
	noName.ProductName = nil

	txs := []*types.Transaction{
		testutil.Tx("T1", "C1", 100, testutil.WithItems(noCategory, noName)),
		testutil.Tx("T2", "C2", 75, testutil.WithItems(testutil.Item("Novel", "Books", 1, 75))),
	}

	out := analytics.Aggregate(txs)

	assert.Equal(t, []string{"Books", types.Unknown}, amountKeys(out.RevenueByCategory))
	books, _ := out.RevenueByCategory.Get("Books")
	assert.Equal(t, 135.0, books)

	products := make([]string, 0)
	for _, p := range out.TopProductsByRevenue {
		products = append(products, p.Product)
	}
	assert.Equal(t, []string{"Novel", types.Unknown, "Mystery"}, products)
}

func TestAggregate_Idempotent(t *testing.T) {
	txs := []*types.Transaction{
		testutil.Tx("T1", "C1", 19.99),
		testutil.Tx("T2", "C2", 5.01, testutil.WithStatus("pending")),
		testutil.Tx("T3", "C1", 0.335),
	}

	first, err := json.Marshal(analytics.Aggregate(txs))
	require.NoError(t, err)
	second, err := json.Marshal(analytics.Aggregate(txs))
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))
	assert.Equal(t, string(first), string(second))
}

func TestAggregate_JSONKeepsCategoryOrder(t *testing.T) {
	txs := []*types.Transaction{
		testutil.Tx("T1", "C1", 10, testutil.WithItems(testutil.Item("A", "Small", 1, 10))),
		testutil.Tx("T2", "C2", 90, testutil.WithItems(testutil.Item("B", "Large", 1, 90))),
	}

	data, err := json.Marshal(analytics.Aggregate(txs).RevenueByCategory)
	require.NoError(t, err)

	assert.Equal(t, `{"Large":90,"Small":10}`, string(data))
}
