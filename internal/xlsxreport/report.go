// =============================================================================
// Sales Batch Processor - XLSX Report Writer
// =============================================================================
//
// This module renders a processing Result as an Excel workbook for people who
// review batches outside the JSON tooling. The workbook is a re-encoding of
// the result document; it carries no data the document does not.
//
// WORKBOOK STRUCTURE:
//   | Sheet             | Content                                          |
//   |-------------------|--------------------------------------------------|
//   | Summary           | Batch identity, validation counts, totals        |
//   | Categories        | revenue_by_category in report order              |
//   | Top Customers     | top_customers                                    |
//   | Top Products      | top products by revenue, then by quantity        |
//   | Anomalies         | high value transactions, patterns, frequent      |
//   |                   | customers                                        |
//   | Validation Errors | one row per listed rejection                     |
//
// Every sheet starts with a bold header row.
//
// =============================================================================

package xlsxreport

import (
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sales-batch-processor/internal/errors"
	"github.com/ginjaninja78/sales-batch-processor/internal/types"
)

// Sheet names, in workbook order.
const (
	SheetSummary          = "Summary"
	SheetCategories       = "Categories"
	SheetTopCustomers     = "Top Customers"
	SheetTopProducts      = "Top Products"
	SheetAnomalies        = "Anomalies"
	SheetValidationErrors = "Validation Errors"
)

// Sheets lists the sheet names in workbook order.
var Sheets = []string{
	SheetSummary,
	SheetCategories,
	SheetTopCustomers,
	SheetTopProducts,
	SheetAnomalies,
	SheetValidationErrors,
}

// writer accumulates rows per sheet.
type writer struct {
	f      *excelize.File
	header int
	next   map[string]int
}

// Write renders result to an .xlsx file at path.
func Write(result *types.Result, path string) error {
	if result == nil {
		return errors.New("no result to render")
	}

	f, err := Build(result)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "failed to save workbook %s", path)
	}
	return nil
}

// Build renders result into a new in-memory workbook. The caller closes it.
func Build(result *types.Result) (*excelize.File, error) {
	f := excelize.NewFile()

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "failed to create header style")
	}

	w := &writer{f: f, header: style, next: make(map[string]int)}

	// A new workbook has one sheet; rename it rather than leave it empty.
	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "failed to name summary sheet")
	}
	for _, name := range Sheets[1:] {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "failed to add sheet %s", name)
		}
	}

	steps := []func(*types.Result) error{
		w.summary,
		w.categories,
		w.topCustomers,
		w.topProducts,
		w.anomalies,
		w.validationErrors,
	}
	for _, step := range steps {
		if err := step(result); err != nil {
			f.Close()
			return nil, err
		}
	}

	for _, name := range Sheets {
		if err := f.SetColWidth(name, "A", "F", 22); err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "failed to size sheet %s", name)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// =============================================================================
// SHEETS
// =============================================================================

func (w *writer) summary(r *types.Result) error {
	if err := w.headerRow(SheetSummary, "Field", "Value"); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"Batch ID", r.BatchID},
		{"Processed At", r.ProcessedAt},
		{"Processing Time (s)", r.ProcessingTimeSeconds},
		{"Input Transactions", r.InputTransactionCount},
		{"Valid Transactions", r.Validation.ValidTransactions},
		{"Invalid Transactions", r.Validation.InvalidTransactions},
	}
	if a := r.Analytics; a != nil {
		rows = append(rows,
			[]interface{}{"Completed Transactions", a.Summary.CompletedTransactions},
			[]interface{}{"Total Revenue", a.Summary.TotalRevenue},
			[]interface{}{"Total Tax", a.Summary.TotalTax},
			[]interface{}{"Total Shipping", a.Summary.TotalShipping},
			[]interface{}{"Average Order Value", a.Summary.AverageOrderValue},
		)
	}
	rows = append(rows,
		[]interface{}{"Processor Version", r.Metadata.ProcessorVersion},
		[]interface{}{"Original Generated At", r.Metadata.OriginalGeneratedAt},
	)
	return w.rows(SheetSummary, rows)
}

func (w *writer) categories(r *types.Result) error {
	if err := w.headerRow(SheetCategories, "Category", "Revenue"); err != nil {
		return err
	}
	if r.Analytics == nil || r.Analytics.RevenueByCategory == nil {
		return nil
	}
	for p := r.Analytics.RevenueByCategory.Oldest(); p != nil; p = p.Next() {
		if err := w.row(SheetCategories, p.Key, p.Value); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) topCustomers(r *types.Result) error {
	if err := w.headerRow(SheetTopCustomers, "Rank", "Customer ID", "Total Revenue", "Orders"); err != nil {
		return err
	}
	if r.Analytics == nil {
		return nil
	}
	for i, c := range r.Analytics.TopCustomers {
		if err := w.row(SheetTopCustomers, i+1, c.CustomerID, c.TotalRevenue, c.OrderCount); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) topProducts(r *types.Result) error {
	if err := w.headerRow(SheetTopProducts, "Ranking", "Rank", "Product", "Revenue", "Quantity Sold"); err != nil {
		return err
	}
	if r.Analytics == nil {
		return nil
	}
	lists := []struct {
		name     string
		products []types.ProductRanking
	}{
		{"By Revenue", r.Analytics.TopProductsByRevenue},
		{"By Quantity", r.Analytics.TopProductsByQuantity},
	}
	for _, list := range lists {
		for i, p := range list.products {
			if err := w.row(SheetTopProducts, list.name, i+1, p.Product, p.Revenue, p.QuantitySold); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *writer) anomalies(r *types.Result) error {
	if err := w.headerRow(SheetAnomalies, "Kind", "Transaction ID", "Customer ID", "Amount", "Detail"); err != nil {
		return err
	}
	a := r.Anomalies
	if a == nil {
		return nil
	}

	for _, hv := range a.HighValueTransactions.Transactions {
		if err := w.row(SheetAnomalies, "high_value", hv.TransactionID, types.ValueOr(hv.CustomerID, ""), hv.Total, hv.Timestamp); err != nil {
			return err
		}
	}
	for _, p := range a.SuspiciousPatterns.Patterns {
		amount := interface{}("")
		if p.Quantity != nil {
			amount = *p.Quantity
		}
		if err := w.row(SheetAnomalies, p.Type, p.TransactionID, "", amount, p.Description); err != nil {
			return err
		}
	}
	for _, c := range a.FrequentCustomers.Customers {
		if err := w.row(SheetAnomalies, "frequent_customer", "", c.CustomerID, c.TotalSpent, c.TransactionCount); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) validationErrors(r *types.Result) error {
	if err := w.headerRow(SheetValidationErrors, "Index", "Transaction ID", "Errors"); err != nil {
		return err
	}
	for _, ve := range r.Validation.ValidationErrors {
		if err := w.row(SheetValidationErrors, ve.TransactionIndex, ve.TransactionID, strings.Join(ve.Errors, "; ")); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (w *writer) headerRow(sheet string, titles ...interface{}) error {
	if err := w.row(sheet, titles...); err != nil {
		return err
	}
	if err := w.f.SetRowStyle(sheet, 1, 1, w.header); err != nil {
		return errors.Wrapf(err, "failed to style header of %s", sheet)
	}
	return nil
}

func (w *writer) rows(sheet string, rows [][]interface{}) error {
	for _, r := range rows {
		if err := w.row(sheet, r...); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) row(sheet string, values ...interface{}) error {
	w.next[sheet]++
	cell, err := excelize.CoordinatesToCellName(1, w.next[sheet])
	if err != nil {
		return errors.Wrap(err, "failed to address row")
	}
	if err := w.f.SetSheetRow(sheet, cell, &values); err != nil {
		return errors.Wrapf(err, "failed to write %s row %d", sheet, w.next[sheet])
	}
	return nil
}
