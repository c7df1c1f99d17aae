package generator_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/sales-batch-processor/internal/analytics"
	"github.com/ginjaninja78/sales-batch-processor/internal/generator"
	"github.com/ginjaninja78/sales-batch-processor/internal/processor"
	"github.com/ginjaninja78/sales-batch-processor/internal/validation"
)

var fixedNow = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func TestGenerate_Reproducible(t *testing.T) {
	a, err := generator.New(42, clock).Generate(20)
	require.NoError(t, err)
	b, err := generator.New(42, clock).Generate(20)
	require.NoError(t, err)

	aj, err := json.Marshal(a)
	require.NoError(t, err)
	bj, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, string(aj), string(bj))

	c, err := generator.New(43, clock).Generate(20)
	require.NoError(t, err)
	assert.NotEqual(t, a.BatchID, c.BatchID)
}

func TestGenerate_Envelope(t *testing.T) {
	batch, err := generator.New(7, clock).Generate(5)
	require.NoError(t, err)

	assert.Len(t, batch.BatchID, 36)
	assert.Equal(t, "2024-06-01T09:30:00Z", batch.GeneratedAt)
	assert.Equal(t, 5, batch.TransactionCount)
	assert.Equal(t, "2024-05-02T09:30:00Z", batch.DateRange.Start)
	assert.Len(t, batch.Transactions, 5)
}

func TestGenerate_RecordsAreConsistent(t *testing.T) {
	batch, err := generator.New(1234, clock).Generate(300)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for i, rec := range batch.Transactions {
		tx := rec.Transaction

		assert.False(t, seen[*tx.TransactionID], "duplicate id at %d", i)
		seen[*tx.TransactionID] = true

		if *tx.Customer.Country == "USA" {
			assert.NotNil(t, tx.Customer.State)
		} else {
			assert.Nil(t, tx.Customer.State)
		}

		sum := 0.0
		for _, item := range tx.LineItems {
			assert.GreaterOrEqual(t, *item.Quantity, 1)
			assert.LessOrEqual(t, *item.Quantity, 5)
			sum += *item.Subtotal
		}
		assert.Equal(t, analytics.Round2(sum), *tx.Subtotal)

		if rec.SyntheticAnomaly {
			continue
		}
		assert.Equal(t, analytics.Round2(*tx.Subtotal+*tx.Tax+*tx.ShippingCost), *tx.Total)

		ok, errs := validation.ValidateTransaction(&tx)
		assert.True(t, ok, "record %d: %v", i, errs)
	}
}

func TestGenerate_OutputProcesses(t *testing.T) {
	batch, err := generator.New(99, clock).Generate(100)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "nested", generator.FileName(fixedNow, 1))
	require.NoError(t, generator.Save(batch, path))
	assert.Equal(t, "sales_batch_20240601_093000_001.json", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	out := processor.New().Process(data)
	require.True(t, out.OK())
	assert.Equal(t, batch.BatchID, out.Result.BatchID)
	assert.Equal(t, 100, out.Counters.TotalTransactions)

	anomalies := 0
	for _, rec := range batch.Transactions {
		if rec.SyntheticAnomaly {
			anomalies++
		}
	}
	assert.GreaterOrEqual(t, out.Counters.ValidTransactions, 100-anomalies)
}

func TestGenerate_NegativeCount(t *testing.T) {
	_, err := generator.New(1, clock).Generate(-1)
	assert.Error(t, err)
}
