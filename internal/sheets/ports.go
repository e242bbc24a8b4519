package sheets

import (
	"context"
	"time"

	"gastos/internal/core"
)

// SummaryWriter appends refreshed summaries to an external spreadsheet.
type SummaryWriter interface {
	AppendSummary(ctx context.Context, s core.Summary) (rowRef string, err error)
}

// Header names the columns written by SummaryRow.
var Header = []string{
	"Usuário", "Ano", "Mês", "Total gasto", "Total orçado", "Transações", "Categoria principal", "Atualizado em",
}

// SummaryRow renders s in Header order. Amounts are plain decimal strings so
// the sheet parses them as numbers.
func SummaryRow(s core.Summary) []any {
	top := ""
	if s.TopCategory != nil {
		top = *s.TopCategory
	}
	refreshed := s.UpdatedAt
	if refreshed.IsZero() {
		refreshed = s.CreatedAt
	}
	return []any{
		s.UserName,
		s.Period.Year,
		s.Period.Month,
		s.TotalSpent.String(),
		s.TotalBudgeted.String(),
		s.TransactionCount,
		top,
		refreshed.UTC().Format(time.RFC3339),
	}
}
