// =============================================================================
// Sales Batch Processor - Transaction Validator
// =============================================================================
//
// This module checks a single transaction record against the structural and
// business-rule constraints of the pipeline. It is the innermost stage and is
// reused by the processor, the aggregator and the synthetic data generator.
//
// VALIDATION STRATEGY:
//   Rules are evaluated in a fixed order:
//   1. Required fields: every missing field produces one error and the
//      remaining rules are skipped.
//   2. Customer: customer_id and email must be non-empty.
//   3. Line items: must be non-empty; each item is range-checked by index.
//   4. Total: must be positive and below the maximum.
//   5. Timestamp: must parse as ISO-8601.
//
// ERROR HANDLING:
//   - Errors are collected, not returned as Go errors.
//   - Error strings are part of the output document and must stay stable.
//   - Validation is pure; counters belong to the caller.
//
// =============================================================================

package validation

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ginjaninja78/sales-batch-processor/internal/errors"
	"github.com/ginjaninja78/sales-batch-processor/internal/types"
)

// =============================================================================
// THRESHOLDS
// =============================================================================

const (
	// MaxUnitPrice is the highest unit price accepted on a line item.
	MaxUnitPrice = 10000.0

	// MaxQuantity is the highest quantity accepted on a line item.
	MaxQuantity = 100

	// MaxTotal is the highest transaction total accepted.
	MaxTotal = 100000.0
)

// RequiredFields lists the transaction keys that must be present, in the
// order their absence is reported.
var RequiredFields = []string{
	"transaction_id",
	"timestamp",
	"customer",
	"line_items",
	"subtotal",
	"tax",
	"total",
	"payment_method",
	"status",
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// ValidateTransaction validates a single transaction.
//
// PARAMETERS:
//   - tx: The decoded transaction. A nil transaction reports every required
//     field as missing.
//
// RETURNS:
//   - true when no rule was violated.
//   - The ordered list of error messages (empty, never nil, when valid).
func ValidateTransaction(tx *types.Transaction) (bool, []string) {
	return validate(tx, nil)
}

// validate runs every rule. totalLiteral is the total as written in the
// input, when known; it only affects how the total is printed in errors.
func validate(tx *types.Transaction, totalLiteral json.RawMessage) (bool, []string) {
	if tx == nil {
		tx = &types.Transaction{}
	}

	errs := missingFields(tx)
	if len(errs) > 0 {
		return false, errs
	}

	errs = append(errs, validateCustomer(tx.Customer)...)
	errs = append(errs, validateLineItems(tx.LineItems)...)
	errs = append(errs, validateTotal(tx.TotalOrZero(), totalLiteral)...)

	if _, err := ParseTimestamp(tx.TimestampOr("")); err != nil {
		errs = append(errs, "Invalid timestamp format")
	}

	return len(errs) == 0, errs
}

// ValidateRaw decodes one transaction record and validates it.
//
// A record that cannot be decoded (not a JSON object, or a field of the wrong
// JSON type) is reported invalid with a single "Malformed transaction" error
// and a nil transaction.
func ValidateRaw(raw json.RawMessage) (*types.Transaction, bool, []string) {
	var tx types.Transaction
	if err := json.Unmarshal(raw, &tx); err != nil {
		return nil, false, []string{"Malformed transaction: " + describeDecodeError(err)}
	}

	var literal struct {
		Total json.RawMessage `json:"total"`
	}
	_ = json.Unmarshal(raw, &literal)

	valid, errs := validate(&tx, literal.Total)
	return &tx, valid, errs
}

// TransactionIDOf extracts a string transaction_id from a raw record, even when
// the rest of the record does not decode. Returns def when there is none.
func TransactionIDOf(raw json.RawMessage, def string) string {
	var probe struct {
		TransactionID *string `json:"transaction_id"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return def
	}
	return types.ValueOr(probe.TransactionID, def)
}

// =============================================================================
// RULES
// =============================================================================

// missingFields reports every required field that is absent.
func missingFields(tx *types.Transaction) []string {
	present := map[string]bool{
		"transaction_id": tx.TransactionID != nil,
		"timestamp":      tx.Timestamp != nil,
		"customer":       tx.Customer != nil,
		"line_items":     tx.LineItems != nil,
		"subtotal":       tx.Subtotal != nil,
		"tax":            tx.Tax != nil,
		"total":          tx.Total != nil,
		"payment_method": tx.PaymentMethod != nil,
		"status":         tx.Status != nil,
	}

	errs := make([]string, 0)
	for _, field := range RequiredFields {
		if !present[field] {
			errs = append(errs, "Missing required field: "+field)
		}
	}
	return errs
}

func validateCustomer(c *types.Customer) []string {
	var errs []string
	if types.ValueOr(c.CustomerID, "") == "" {
		errs = append(errs, "Missing customer_id")
	}
	if types.ValueOr(c.Email, "") == "" {
		errs = append(errs, "Missing customer email")
	}
	return errs
}

// validateLineItems checks every item; violations do not stop the scan.
func validateLineItems(items []types.LineItem) []string {
	var errs []string
	if len(items) == 0 {
		errs = append(errs, "No line items in transaction")
	}

	for idx, item := range items {
		if item.UnitPriceOrZero() > MaxUnitPrice {
			errs = append(errs, fmt.Sprintf("Line item %d: unit_price exceeds maximum", idx))
		}
		qty := item.QuantityOrZero()
		if qty > MaxQuantity {
			errs = append(errs, fmt.Sprintf("Line item %d: quantity exceeds maximum", idx))
		}
		if qty <= 0 {
			errs = append(errs, fmt.Sprintf("Line item %d: invalid quantity", idx))
		}
	}
	return errs
}

func validateTotal(total float64, literal json.RawMessage) []string {
	var errs []string
	if total > MaxTotal {
		errs = append(errs, "Total amount exceeds maximum: "+amountText(total, literal))
	}
	if total <= 0 {
		errs = append(errs, "Invalid total amount: "+amountText(total, literal))
	}
	return errs
}

// FormatAmount renders a number the shortest way that round-trips.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// amountText renders v for an error message. A whole number written as a
// decimal or exponent literal ("999999.0", "1e6") keeps a ".0" suffix.
func amountText(v float64, literal json.RawMessage) string {
	text := FormatAmount(v)
	if bytes.ContainsAny(bytes.TrimSpace(literal), ".eE") && !strings.Contains(text, ".") {
		text += ".0"
	}
	return text
}

// =============================================================================
// TIMESTAMPS
// =============================================================================

// timestampLayouts are the ISO-8601 shapes accepted after "Z" has been
// rewritten to "+00:00". Fractional seconds are accepted by time.Parse after
// any layout ending in seconds.
var timestampLayouts = buildTimestampLayouts()

func buildTimestampLayouts() []string {
	layouts := []string{"2006-01-02"}
	for _, sep := range []string{"T", " "} {
		for _, clock := range []string{"15", "15:04", "15:04:05"} {
			for _, zone := range []string{"", "-07:00", "-0700", "-07"} {
				layouts = append(layouts, "2006-01-02"+sep+clock+zone)
			}
		}
	}
	return layouts
}

// ParseTimestamp parses an ISO-8601 timestamp. Every "Z" is treated as the
// UTC offset "+00:00" before parsing.
func ParseTimestamp(value string) (time.Time, error) {
	normalized := strings.ReplaceAll(value, "Z", "+00:00")
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, normalized); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Newf("invalid ISO-8601 timestamp %q", value)
}

// describeDecodeError turns a json decode error into a short, stable detail.
func describeDecodeError(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field == "" {
			return "expected a JSON object, got " + typeErr.Value
		}
		return fmt.Sprintf("field %s: expected %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value)
	}
	return err.Error()
}

// =============================================================================
// REPORTING
// =============================================================================

// FormatErrors formats validation errors for display or logging.
//
// PARAMETERS:
//   - validationErrors: The validation errors to format.
//
// RETURNS:
//   - A formatted string containing all errors.
func FormatErrors(validationErrors []types.ValidationError) string {
	if len(validationErrors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Validation completed with %d rejected transaction(s):\n\n", len(validationErrors)))

	for i, ve := range validationErrors {
		builder.WriteString(fmt.Sprintf("%d. [index %d] %s: %s\n",
			i+1, ve.TransactionIndex, ve.TransactionID, strings.Join(ve.Errors, "; ")))
	}

	return builder.String()
}

// WriteErrorLog writes validation errors to a plain text log file.
//
// PARAMETERS:
//   - validationErrors: The validation errors to write.
//   - filePath: The path to the output file.
//
// RETURNS:
//   - An error if writing fails.
func WriteErrorLog(validationErrors []types.ValidationError, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return errors.Wrapf(err, "failed to create error log %s", filePath)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if _, err := writer.WriteString(FormatErrors(validationErrors)); err != nil {
		return errors.Wrap(err, "failed to write error log")
	}
	if err := writer.Flush(); err != nil {
		return errors.Wrap(err, "failed to flush error log")
	}
	return nil
}
