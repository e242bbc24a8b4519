package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gastos/internal/core"
)

func sampleSummaries() []core.Summary {
	top := "Alimentação"
	return []core.Summary{
		{
			ID: 1, UserName: "Alice", Period: core.Period{Year: 2025, Month: 12},
			MonthlyAggregate: core.MonthlyAggregate{
				TotalSpent:       core.MustParseAmount("44.25"),
				TotalBudgeted:    core.MustParseAmount("200"),
				TransactionCount: 2,
				TopCategory:      &top,
			},
		},
		{ID: 2, UserName: "Bob, Jr.", Period: core.Period{Year: 2025, Month: 11}},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleSummaries()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Equal(t, [][]string{
		header,
		{"1", "Alice", "2025", "12", "44.25", "200.00", "2", "Alimentação"},
		{"2", "Bob, Jr.", "2025", "11", "0.00", "0.00", "0", ""},
	}, records)
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	require.Equal(t, "id,user,year,month,total_spent,total_budgeted,transactions,top_category\n", buf.String())
}

func TestWriteXLSX_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleSummaries()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, header, rows[0])
	require.Equal(t, []string{"1", "Alice", "2025", "12", "44.25", "200", "2", "Alimentação"}, rows[1])
	require.Equal(t, "Bob, Jr.", rows[2][1])
	require.Equal(t, "0", rows[2][4])
}
