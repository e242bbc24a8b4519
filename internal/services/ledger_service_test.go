package services

import (
	"context"
	"testing"
	"time"

	"gastos/internal/cache"
	"gastos/internal/core"
	"gastos/internal/storage"

	"github.com/stretchr/testify/require"
)

func TestLedger_CardDefaults(t *testing.T) {
	forEachStore(t, func(t *testing.T, store storage.Store) {
		ctx := context.Background()
		ledger := NewLedgerService(store, nil)
		u, err := ledger.CreateUser(ctx, core.User{Name: "  Alice  ", Email: " alice@example.com "})
		require.NoError(t, err)
		require.Equal(t, "Alice", u.Name)
		require.Equal(t, "alice@example.com", u.Email)

		c, err := ledger.CreateCard(ctx, core.Card{Name: "Nubank", UserID: u.ID})
		require.NoError(t, err)
		require.Equal(t, core.DefaultCardLimit, c.Limit)

		c2, err := ledger.CreateCard(ctx, core.Card{Name: "Itaú", UserID: u.ID, Limit: core.MustParseAmount("1200")})
		require.NoError(t, err)
		require.Equal(t, "1200.00", c2.Limit.String())

		_, err = ledger.CreateCard(ctx, core.Card{Name: "Orphan", UserID: 9999})
		require.ErrorIs(t, err, core.ErrForeignKeyViolation)
	})
}

func TestLedger_ExpenseOwnerComesFromCard(t *testing.T) {
	forEachStore(t, func(t *testing.T, store storage.Store) {
		ctx := context.Background()
		alice := newLedgerFixture(t, store, "Alice")
		bob := newLedgerFixture(t, store, "Bob")

		e, err := alice.ledger.CreateExpense(ctx, core.Expense{
			Description: "Mercado",
			Amount:      core.MustParseAmount("25,50"),
			CardID:      alice.cardID,
			UserID:      bob.userID,
			Date:        core.NewDate(2025, 12, 3),
		})
		require.NoError(t, err)
		require.Equal(t, alice.userID, e.UserID)
		require.Equal(t, "25.50", e.Amount.String())

		e.CardID = bob.cardID
		moved, err := alice.ledger.UpdateExpense(ctx, e)
		require.NoError(t, err)
		require.Equal(t, bob.userID, moved.UserID)

		_, err = alice.ledger.CreateExpense(ctx, core.Expense{Description: "x", CardID: 9999, Date: core.NewDate(2025, 1, 1)})
		require.ErrorIs(t, err, core.ErrForeignKeyViolation)

		e.ID = 9999
		_, err = alice.ledger.UpdateExpense(ctx, e)
		require.ErrorIs(t, err, core.ErrNotFound)
	})
}

func TestLedger_ExpenseDateDefaultsToToday(t *testing.T) {
	store, err := storage.NewMemoryStore("")
	require.NoError(t, err)
	f := newLedgerFixture(t, store, "Alice")
	f.ledger.now = func() time.Time { return time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC) }

	e, err := f.ledger.CreateExpense(context.Background(), core.Expense{
		Description: "Padaria", Amount: core.MustParseAmount("4.20"), CardID: f.cardID,
	})
	require.NoError(t, err)
	require.Equal(t, "2025-12-31", e.Date.String())
}

func TestLedger_Validation(t *testing.T) {
	store, err := storage.NewMemoryStore("")
	require.NoError(t, err)
	f := newLedgerFixture(t, store, "Alice")
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"blank user", func() error { _, err := f.ledger.CreateUser(ctx, core.User{Name: "   "}); return err }},
		{"blank card", func() error { _, err := f.ledger.CreateCard(ctx, core.Card{UserID: f.userID}); return err }},
		{"blank category", func() error { _, err := f.ledger.CreateCategory(ctx, core.Category{}); return err }},
		{"blank description", func() error {
			_, err := f.ledger.CreateExpense(ctx, core.Expense{CardID: f.cardID, Date: core.NewDate(2025, 1, 1)})
			return err
		}},
		{"budget month", func() error {
			_, err := f.ledger.CreateBudget(ctx, core.Budget{UserID: f.userID, CategoryID: 1, Period: core.Period{Year: 2025, Month: 0}})
			return err
		}},
		{"expense filter month", func() error {
			_, err := f.ledger.ListExpenses(ctx, storage.ExpenseFilter{Period: &core.Period{Year: 2025, Month: 13}})
			return err
		}},
		{"budget filter month", func() error {
			_, err := f.ledger.ListBudgets(ctx, storage.BudgetFilter{Period: &core.Period{Year: 2025, Month: 13}})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.ErrorIs(t, err, core.ErrValidation)
			require.Equal(t, core.KindValidation, core.KindOf(err))
		})
	}
}

func TestLedger_BudgetUniquePerPeriod(t *testing.T) {
	forEachStore(t, func(t *testing.T, store storage.Store) {
		f := newLedgerFixture(t, store, "Alice")
		food := categoryID(t, store, "Alimentação")
		f.budget(t, food, december, "200")

		_, err := f.ledger.CreateBudget(context.Background(), core.Budget{
			UserID: f.userID, CategoryID: food, Period: december, Limit: core.MustParseAmount("300"),
		})
		require.ErrorIs(t, err, core.ErrUniqueViolation)
	})
}

func TestLedger_CategoryCache(t *testing.T) {
	store, err := storage.NewMemoryStore("")
	require.NoError(t, err)
	ctx := context.Background()
	lru := cache.NewLRUCache[[]core.Category](4, time.Minute)
	ledger := NewLedgerService(store, lru)

	cats, err := ledger.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, len(core.SeedCategories))
	require.Equal(t, 1, lru.Size())

	c, err := ledger.CreateCategory(ctx, core.Category{Name: "Viagem"})
	require.NoError(t, err)
	require.Equal(t, core.DefaultCategoryColor, c.Color)
	require.Zero(t, lru.Size())

	cats, err = ledger.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, len(core.SeedCategories)+1)

	c.Color = "#000000"
	_, err = ledger.UpdateCategory(ctx, c)
	require.NoError(t, err)
	require.Zero(t, lru.Size())

	_, err = ledger.ListCategories(ctx)
	require.NoError(t, err)
	require.NoError(t, ledger.DeleteCategory(ctx, c.ID))
	require.Zero(t, lru.Size())

	cats, err = ledger.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, len(core.SeedCategories))
}

func TestLedger_DeleteCategoryUncategorizesExpenses(t *testing.T) {
	forEachStore(t, func(t *testing.T, store storage.Store) {
		ctx := context.Background()
		f := newLedgerFixture(t, store, "Alice")
		cat, err := f.ledger.CreateCategory(ctx, core.Category{Name: "Pets"})
		require.NoError(t, err)
		e := f.spend(t, "30.00", ptr(cat.ID), core.NewDate(2025, 12, 1))
		f.budget(t, cat.ID, december, "100")

		require.NoError(t, f.ledger.DeleteCategory(ctx, cat.ID))

		got, err := f.ledger.GetExpense(ctx, e.ID)
		require.NoError(t, err)
		require.Nil(t, got.CategoryID)
		budgets, err := f.ledger.ListBudgets(ctx, storage.BudgetFilter{UserID: f.userID})
		require.NoError(t, err)
		require.Empty(t, budgets)
	})
}

func TestLedger_UpdateExpenseKeepsDateWhenOmitted(t *testing.T) {
	forEachStore(t, func(t *testing.T, store storage.Store) {
		ctx := context.Background()
		f := newLedgerFixture(t, store, "Alice")
		f.ledger.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }
		e := f.spend(t, "30.00", nil, core.NewDate(2025, 12, 3))

		updated, err := f.ledger.UpdateExpense(ctx, core.Expense{
			ID: e.ID, Description: "Mercado", Amount: core.MustParseAmount("31.00"), CardID: f.cardID,
		})
		require.NoError(t, err)
		require.Equal(t, "2025-12-03", updated.Date.String())
		require.Equal(t, "31.00", updated.Amount.String())

		moved, err := f.ledger.UpdateExpense(ctx, core.Expense{
			ID: e.ID, Description: "Mercado", Amount: core.MustParseAmount("31.00"), CardID: f.cardID,
			Date: core.NewDate(2026, 1, 2),
		})
		require.NoError(t, err)
		require.Equal(t, "2026-01-02", moved.Date.String())
	})
}

func TestLedger_ListCategoriesDoesNotExposeCache(t *testing.T) {
	store, err := storage.NewMemoryStore("")
	require.NoError(t, err)
	ctx := context.Background()
	ledger := NewLedgerService(store, cache.NewLRUCache[[]core.Category](4, time.Minute))

	for range 2 {
		cats, err := ledger.ListCategories(ctx)
		require.NoError(t, err)
		cats[0].Name = "changed"
	}

	cats, err := ledger.ListCategories(ctx)
	require.NoError(t, err)
	require.NotEqual(t, "changed", cats[0].Name)
}
