package xlsxreport_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sales-batch-processor/internal/processor"
	"github.com/ginjaninja78/sales-batch-processor/internal/testutil"
	"github.com/ginjaninja78/sales-batch-processor/internal/types"
	"github.com/ginjaninja78/sales-batch-processor/internal/xlsxreport"
)

func sampleResult(t *testing.T) *types.Result {
	t.Helper()
	data := testutil.Batch("B-7",
		testutil.Tx("T1", "C1", 10, testutil.WithItems(testutil.Item("Pen", "Small", 1, 10))),
		testutil.Tx("T2", "C2", 6000, testutil.WithItems(testutil.Item("Desk", "Large", 30, 6000))),
		testutil.Tx("T3", "", 5),
	)
	out := processor.New().Process(data)
	require.True(t, out.OK())
	return out.Result
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, xlsxreport.Write(sampleResult(t), path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, xlsxreport.Sheets, f.GetSheetList())

	summary, err := f.GetRows(xlsxreport.SheetSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"Field", "Value"}, summary[0])
	assert.Equal(t, []string{"Batch ID", "B-7"}, summary[1])
	assert.Equal(t, []string{"Input Transactions", "3"}, summary[4])
	assert.Equal(t, []string{"Valid Transactions", "2"}, summary[5])
	assert.Equal(t, []string{"Invalid Transactions", "1"}, summary[6])

	categories, err := f.GetRows(xlsxreport.SheetCategories)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Category", "Revenue"},
		{"Large", "6000"},
		{"Small", "10"},
	}, categories)

	customers, err := f.GetRows(xlsxreport.SheetTopCustomers)
	require.NoError(t, err)
	require.Len(t, customers, 3)
	assert.Equal(t, []string{"1", "C2", "6000", "1"}, customers[1])

	anomalies, err := f.GetRows(xlsxreport.SheetAnomalies)
	require.NoError(t, err)
	require.Len(t, anomalies, 3)
	assert.Equal(t, "high_value", anomalies[1][0])
	assert.Equal(t, types.PatternHighQuantity, anomalies[2][0])
	assert.Equal(t, "30", anomalies[2][3])

	rejected, err := f.GetRows(xlsxreport.SheetValidationErrors)
	require.NoError(t, err)
	require.Len(t, rejected, 2)
	assert.Equal(t, []string{"2", "T3", "Missing customer_id"}, rejected[1])
}

func TestBuild_EmptyResult(t *testing.T) {
	out := processor.New().Process(testutil.Batch("empty"))
	require.True(t, out.OK())

	f, err := xlsxreport.Build(out.Result)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(xlsxreport.SheetCategories)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Category", "Revenue"}}, rows)
}

func TestWrite_NilResult(t *testing.T) {
	assert.Error(t, xlsxreport.Write(nil, filepath.Join(t.TempDir(), "x.xlsx")))
}
