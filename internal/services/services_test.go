package services

import (
	"context"
	"path/filepath"
	"testing"

	"gastos/internal/core"
	"gastos/internal/storage"

	"github.com/stretchr/testify/require"
)

// testStores returns a fresh store per backend.
func testStores(t *testing.T) map[string]storage.Store {
	t.Helper()

	sqlite, err := storage.NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "gastos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	memory, err := storage.NewMemoryStore("")
	require.NoError(t, err)
	t.Cleanup(func() { memory.Close() })

	return map[string]storage.Store{"sqlite": sqlite, "memory": memory}
}

func forEachStore(t *testing.T, fn func(t *testing.T, store storage.Store)) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) { fn(t, store) })
	}
}

// categoryID finds a seeded category by name.
func categoryID(t *testing.T, store storage.Store, name string) int64 {
	t.Helper()
	cats, err := store.ListCategories(context.Background())
	require.NoError(t, err)
	for _, c := range cats {
		if c.Name == name {
			return c.ID
		}
	}
	t.Fatalf("category %q not seeded", name)
	return 0
}

type ledgerFixture struct {
	ledger *LedgerService
	userID int64
	cardID int64
}

func newLedgerFixture(t *testing.T, store storage.Store, userName string) ledgerFixture {
	t.Helper()
	ctx := context.Background()
	ledger := NewLedgerService(store, nil)

	u, err := ledger.CreateUser(ctx, core.User{Name: userName})
	require.NoError(t, err)
	c, err := ledger.CreateCard(ctx, core.Card{Name: userName + " card", UserID: u.ID})
	require.NoError(t, err)

	return ledgerFixture{ledger: ledger, userID: u.ID, cardID: c.ID}
}

func (f ledgerFixture) spend(t *testing.T, amount string, categoryID *int64, date core.Date) core.Expense {
	t.Helper()
	e, err := f.ledger.CreateExpense(context.Background(), core.Expense{
		Description: "gasto " + amount,
		Amount:      core.MustParseAmount(amount),
		CardID:      f.cardID,
		CategoryID:  categoryID,
		Date:        date,
	})
	require.NoError(t, err)
	return e
}

func (f ledgerFixture) budget(t *testing.T, categoryID int64, p core.Period, limit string) {
	t.Helper()
	_, err := f.ledger.CreateBudget(context.Background(), core.Budget{
		UserID: f.userID, CategoryID: categoryID, Period: p, Limit: core.MustParseAmount(limit),
	})
	require.NoError(t, err)
}

func ptr[T any](v T) *T { return &v }

var december = core.Period{Year: 2025, Month: 12}
