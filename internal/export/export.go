// Package export renders stored summaries as CSV or XLSX downloads.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"gastos/internal/core"
)

const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	sheetName = "Resumos"
)

var header = []string{"id", "user", "year", "month", "total_spent", "total_budgeted", "transactions", "top_category"}

func topCategory(s core.Summary) string {
	if s.TopCategory == nil {
		return ""
	}
	return *s.TopCategory
}

// WriteCSV writes a header row followed by one row per summary.
func WriteCSV(w io.Writer, summaries []core.Summary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, s := range summaries {
		record := []string{
			strconv.FormatInt(s.ID, 10),
			s.UserName,
			strconv.Itoa(s.Period.Year),
			strconv.Itoa(s.Period.Month),
			s.TotalSpent.String(),
			s.TotalBudgeted.String(),
			strconv.Itoa(s.TransactionCount),
			topCategory(s),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row for summary %d: %w", s.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a single-sheet workbook with the same columns as WriteCSV.
// Amounts are numeric cells with a two-decimal format.
func WriteXLSX(w io.Writer, summaries []core.Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("create money style: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}
	for i, s := range summaries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			s.ID,
			s.UserName,
			s.Period.Year,
			s.Period.Month,
			s.TotalSpent.Decimal().InexactFloat64(),
			s.TotalBudgeted.Decimal().InexactFloat64(),
			s.TransactionCount,
			topCategory(s),
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write xlsx row for summary %d: %w", s.ID, err)
		}
	}
	if len(summaries) > 0 {
		last := strconv.Itoa(len(summaries) + 1)
		if err := f.SetCellStyle(sheetName, "E2", "F"+last, money); err != nil {
			return fmt.Errorf("style amounts: %w", err)
		}
	}

	_ = f.SetColWidth(sheetName, "B", "B", 20)
	_ = f.SetColWidth(sheetName, "E", "F", 14)
	_ = f.SetColWidth(sheetName, "H", "H", 20)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
