package memory

import (
	"context"
	"testing"

	"gastos/internal/core"
)

func TestSheetAppendSummary(t *testing.T) {
	s := New()

	ref, err := s.AppendSummary(context.Background(), core.Summary{
		UserName: "Alice",
		Period:   core.Period{Year: 2025, Month: 12},
	})
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}

	rows := s.Rows()
	if len(rows) != 1 || rows[0][0] != "Alice" || rows[0][6] != "" {
		t.Fatalf("unexpected rows: %v", rows)
	}

	if _, err := s.AppendSummary(context.Background(), core.Summary{Period: core.Period{Year: 2025, Month: 13}}); err == nil {
		t.Fatal("expected invalid period to be rejected")
	}
	if len(s.Rows()) != 1 {
		t.Fatal("rejected summary must not be appended")
	}
}
