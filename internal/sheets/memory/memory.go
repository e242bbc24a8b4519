package memory

import (
	"context"
	"fmt"
	"sync"

	"gastos/internal/core"
	ports "gastos/internal/sheets"
)

// Sheet records appended summary rows in memory.
type Sheet struct {
	mu   sync.Mutex
	rows [][]any
}

var _ ports.SummaryWriter = (*Sheet)(nil)

func New() *Sheet {
	return &Sheet{}
}

// AppendSummary stores the row and returns a synthetic row reference.
func (s *Sheet) AppendSummary(_ context.Context, sum core.Summary) (string, error) {
	if err := sum.Period.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, ports.SummaryRow(sum))
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (s *Sheet) Rows() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]any(nil), s.rows...)
}
