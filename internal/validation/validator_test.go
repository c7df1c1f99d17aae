package validation_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/sales-batch-processor/internal/types"
	"github.com/ginjaninja78/sales-batch-processor/internal/validation"
)

const validRecord = `{
	"transaction_id": "TXN-001",
	"timestamp": "2024-01-15T10:30:00Z",
	"customer": {"customer_id": "CUST-1", "email": "a@example.com", "country": "US"},
	"line_items": [
		{"product_id": "P1", "product_name": "Laptop", "category": "Electronics",
		 "quantity": 1, "unit_price": 120.0, "discount": 0, "subtotal": 120.0}
	],
	"subtotal": 120.0,
	"tax": 10.0,
	"shipping_cost": 20.0,
	"total": 150.0,
	"payment_method": "credit_card",
	"shipping_method": "standard",
	"status": "completed"
}`

func decode(t *testing.T, raw string) *types.Transaction {
	t.Helper()
	var tx types.Transaction
	require.NoError(t, json.Unmarshal([]byte(raw), &tx))
	return &tx
}

// mutate decodes validRecord into a generic map, applies fn, and returns the
// resulting transaction.
func mutate(t *testing.T, fn func(m map[string]any)) *types.Transaction {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(validRecord), &m))
	fn(m)
	data, err := json.Marshal(m)
	require.NoError(t, err)
	return decode(t, string(data))
}

func item(m map[string]any, idx int) map[string]any {
	return m["line_items"].([]any)[idx].(map[string]any)
}

func TestValidateTransaction_Valid(t *testing.T) {
	valid, errs := validation.ValidateTransaction(decode(t, validRecord))

	assert.True(t, valid)
	assert.Empty(t, errs)
}

func TestValidateTransaction_MissingFields(t *testing.T) {
	tests := []struct {
		name    string
		remove  []string
		wantErr []string
	}{
		{
			name:    "single field",
			remove:  []string{"tax"},
			wantErr: []string{"Missing required field: tax"},
		},
		{
			name:   "several fields keep required order",
			remove: []string{"status", "customer", "transaction_id"},
			wantErr: []string{
				"Missing required field: transaction_id",
				"Missing required field: customer",
				"Missing required field: status",
			},
		},
		{
			name:    "missing field short-circuits later rules",
			remove:  []string{"payment_method", "timestamp"},
			wantErr: []string{"Missing required field: timestamp", "Missing required field: payment_method"},
		},
		{
			name:    "optional shipping fields are not required",
			remove:  []string{"shipping_cost", "shipping_method"},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := mutate(t, func(m map[string]any) {
				for _, field := range tt.remove {
					delete(m, field)
				}
				// Later rules would fail too if they ran.
				m["total"] = 999999.0
			})

			valid, errs := validation.ValidateTransaction(tx)

			if tt.wantErr == nil {
				assert.False(t, valid)
				assert.Equal(t, []string{"Total amount exceeds maximum: 999999"}, errs)
				return
			}
			assert.False(t, valid)
			assert.Equal(t, tt.wantErr, errs)
		})
	}
}

func TestValidateTransaction_NullCountsAsMissing(t *testing.T) {
	tx := mutate(t, func(m map[string]any) {
		m["line_items"] = nil
	})

	valid, errs := validation.ValidateTransaction(tx)

	assert.False(t, valid)
	assert.Equal(t, []string{"Missing required field: line_items"}, errs)
}

func TestValidateTransaction_NilReportsAllFields(t *testing.T) {
	valid, errs := validation.ValidateTransaction(nil)

	assert.False(t, valid)
	assert.Len(t, errs, len(validation.RequiredFields))
}

func TestValidateTransaction_Rules(t *testing.T) {
	tests := []struct {
		name    string
		fn      func(m map[string]any)
		wantErr []string
	}{
		{
			name: "empty customer id and email",
			fn: func(m map[string]any) {
				m["customer"] = map[string]any{"customer_id": "", "country": "US"}
			},
			wantErr: []string{"Missing customer_id", "Missing customer email"},
		},
		{
			name:    "empty line items",
			fn:      func(m map[string]any) { m["line_items"] = []any{} },
			wantErr: []string{"No line items in transaction"},
		},
		{
			name:    "zero quantity",
			fn:      func(m map[string]any) { item(m, 0)["quantity"] = 0 },
			wantErr: []string{"Line item 0: invalid quantity"},
		},
		{
			name:    "quantity above maximum",
			fn:      func(m map[string]any) { item(m, 0)["quantity"] = 101 },
			wantErr: []string{"Line item 0: quantity exceeds maximum"},
		},
		{
			name:    "quantity at maximum is accepted",
			fn:      func(m map[string]any) { item(m, 0)["quantity"] = 100 },
			wantErr: []string{},
		},
		{
			name:    "missing quantity counts as zero",
			fn:      func(m map[string]any) { delete(item(m, 0), "quantity") },
			wantErr: []string{"Line item 0: invalid quantity"},
		},
		{
			name: "every offending item is reported",
			fn: func(m map[string]any) {
				items := m["line_items"].([]any)
				second := map[string]any{"quantity": 0, "unit_price": 10000.01}
				third := map[string]any{"quantity": 500}
				m["line_items"] = append(items, second, third)
			},
			wantErr: []string{
				"Line item 1: unit_price exceeds maximum",
				"Line item 1: invalid quantity",
				"Line item 2: quantity exceeds maximum",
			},
		},
		{
			name:    "total above maximum",
			fn:      func(m map[string]any) { m["total"] = 999999 },
			wantErr: []string{"Total amount exceeds maximum: 999999"},
		},
		{
			name:    "fractional total keeps its digits",
			fn:      func(m map[string]any) { m["total"] = 100000.5 },
			wantErr: []string{"Total amount exceeds maximum: 100000.5"},
		},
		{
			name:    "zero total",
			fn:      func(m map[string]any) { m["total"] = 0 },
			wantErr: []string{"Invalid total amount: 0"},
		},
		{
			name:    "negative total",
			fn:      func(m map[string]any) { m["total"] = -12.5 },
			wantErr: []string{"Invalid total amount: -12.5"},
		},
		{
			name:    "unparsable timestamp",
			fn:      func(m map[string]any) { m["timestamp"] = "15/01/2024 10:30" },
			wantErr: []string{"Invalid timestamp format"},
		},
		{
			name: "rules accumulate in order",
			fn: func(m map[string]any) {
				m["customer"] = map[string]any{"customer_id": "C1"}
				m["line_items"] = []any{}
				m["total"] = 0
				m["timestamp"] = "yesterday"
			},
			wantErr: []string{
				"Missing customer email",
				"No line items in transaction",
				"Invalid total amount: 0",
				"Invalid timestamp format",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, errs := validation.ValidateTransaction(mutate(t, tt.fn))

			assert.Equal(t, len(tt.wantErr) == 0, valid)
			if len(tt.wantErr) == 0 {
				assert.Empty(t, errs)
				return
			}
			assert.Equal(t, tt.wantErr, errs)
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		value string
		ok    bool
	}{
		{"2024-01-15T10:30:00Z", true},
		{"2024-01-15T10:30:00.123456Z", true},
		{"2024-01-15T10:30:00+05:30", true},
		{"2024-01-15T10:30:00-0800", true},
		{"2024-01-15 10:30:00", true},
		{"2024-01-15T10:30", true},
		{"2024-01-15", true},
		{"2024-01-15T10:30:00ZZ", false},
		{"2024-13-01", false},
		{"", false},
		{"not a date", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			_, err := validation.ParseTimestamp(tt.value)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestParseTimestamp_UTCOffset(t *testing.T) {
	ts, err := validation.ParseTimestamp("2024-01-15T10:30:00Z")
	require.NoError(t, err)

	_, offset := ts.Zone()
	assert.Equal(t, 0, offset)
	assert.Equal(t, 10, ts.Hour())
}

func TestValidateRaw(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantValid bool
		wantTx    bool
		wantErr   string
	}{
		{name: "valid record", raw: validRecord, wantValid: true, wantTx: true},
		{name: "not an object", raw: `42`, wantErr: "Malformed transaction: expected a JSON object, got number"},
		{name: "wrong field type", raw: `{"total": "150.00"}`, wantErr: "Malformed transaction: field total: expected float64, got string"},
		{name: "empty object", raw: `{}`, wantTx: true, wantErr: "Missing required field: transaction_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, valid, errs := validation.ValidateRaw(json.RawMessage(tt.raw))

			assert.Equal(t, tt.wantValid, valid)
			assert.Equal(t, tt.wantTx, tx != nil)
			if tt.wantErr != "" {
				require.NotEmpty(t, errs)
				assert.Equal(t, tt.wantErr, errs[0])
			}
		})
	}
}

func TestValidateRaw_TotalKeepsLiteralForm(t *testing.T) {
	tests := []struct {
		name    string
		total   string
		wantErr string
	}{
		{name: "integer literal", total: `999999`, wantErr: "Total amount exceeds maximum: 999999"},
		{name: "whole decimal literal", total: `999999.0`, wantErr: "Total amount exceeds maximum: 999999.0"},
		{name: "exponent literal", total: `1e6`, wantErr: "Total amount exceeds maximum: 1000000.0"},
		{name: "fractional literal", total: `100000.50`, wantErr: "Total amount exceeds maximum: 100000.5"},
		{name: "zero decimal literal", total: `0.0`, wantErr: "Invalid total amount: 0.0"},
		{name: "negative integer literal", total: `-5`, wantErr: "Invalid total amount: -5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m map[string]json.RawMessage
			require.NoError(t, json.Unmarshal([]byte(validRecord), &m))
			m["total"] = json.RawMessage(tt.total)
			raw, err := json.Marshal(m)
			require.NoError(t, err)

			_, valid, errs := validation.ValidateRaw(raw)

			assert.False(t, valid)
			assert.Equal(t, []string{tt.wantErr}, errs)
		})
	}
}

func TestTransactionIDOf(t *testing.T) {
	assert.Equal(t, "TXN-9", validation.TransactionIDOf(json.RawMessage(`{"transaction_id":"TXN-9","total":"x"}`), "unknown"))
	assert.Equal(t, "unknown", validation.TransactionIDOf(json.RawMessage(`{"total":1}`), "unknown"))
	assert.Equal(t, "unknown", validation.TransactionIDOf(json.RawMessage(`[1,2]`), "unknown"))
}

func TestWriteErrorLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.log")
	records := []types.ValidationError{
		{TransactionIndex: 3, TransactionID: "TXN-4", Errors: []string{"Missing customer_id", "Invalid timestamp format"}},
	}

	require.NoError(t, validation.WriteErrorLog(records, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "1 rejected transaction(s)")
	assert.Contains(t, string(data), "[index 3] TXN-4: Missing customer_id; Invalid timestamp format")
}

func TestFormatErrors_Empty(t *testing.T) {
	assert.Equal(t, "No validation errors.", validation.FormatErrors(nil))
}
