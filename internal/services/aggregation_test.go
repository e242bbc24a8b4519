package services

import (
	"context"
	"testing"

	"gastos/internal/core"
	"gastos/internal/storage"

	"github.com/stretchr/testify/require"
)

func TestComputeMonthlySummary_AliceDecember(t *testing.T) {
	forEachStore(t, func(t *testing.T, store storage.Store) {
		ctx := context.Background()
		alice := newLedgerFixture(t, store, "Alice")
		food := categoryID(t, store, "Alimentação")
		transport := categoryID(t, store, "Transporte")

		alice.spend(t, "25.50", &food, core.NewDate(2025, 12, 3))
		alice.spend(t, "18.75", &transport, core.NewDate(2025, 12, 2))
		alice.budget(t, food, december, "200.00")

		// Outside the month or owned by someone else: ignored.
		alice.spend(t, "999.99", &food, core.NewDate(2025, 11, 30))
		alice.spend(t, "999.99", &food, core.NewDate(2026, 1, 1))
		bob := newLedgerFixture(t, store, "Bob")
		bob.spend(t, "500.00", &transport, core.NewDate(2025, 12, 10))
		bob.budget(t, transport, december, "50")

		got, err := NewAggregator(store).ComputeMonthlySummary(ctx, alice.userID, december)
		require.NoError(t, err)
		require.Equal(t, "44.25", got.TotalSpent.String())
		require.Equal(t, "200.00", got.TotalBudgeted.String())
		require.Equal(t, 2, got.TransactionCount)
		require.NotNil(t, got.TopCategory)
		require.Equal(t, "Alimentação", *got.TopCategory)
	})
}

func TestComputeMonthlySummary_NoExpenses(t *testing.T) {
	forEachStore(t, func(t *testing.T, store storage.Store) {
		alice := newLedgerFixture(t, store, "Alice")
		alice.budget(t, categoryID(t, store, "Saúde"), december, "120.00")

		got, err := NewAggregator(store).ComputeMonthlySummary(context.Background(), alice.userID, december)
		require.NoError(t, err)
		require.True(t, got.TotalSpent.IsZero())
		require.Equal(t, 0, got.TransactionCount)
		require.Nil(t, got.TopCategory)
		require.Equal(t, "120.00", got.TotalBudgeted.String())
	})
}

func TestComputeMonthlySummary_NoBudgets(t *testing.T) {
	forEachStore(t, func(t *testing.T, store storage.Store) {
		alice := newLedgerFixture(t, store, "Alice")
		alice.spend(t, "10.00", nil, core.NewDate(2025, 12, 1))

		got, err := NewAggregator(store).ComputeMonthlySummary(context.Background(), alice.userID, december)
		require.NoError(t, err)
		require.True(t, got.TotalBudgeted.IsZero())
		require.Equal(t, "10.00", got.TotalSpent.String())
		require.Nil(t, got.TopCategory, "uncategorized expenses never name a top category")
	})
}

// Unknown users are not an error: the aggregate is simply empty.
func TestComputeMonthlySummary_UnknownUser(t *testing.T) {
	forEachStore(t, func(t *testing.T, store storage.Store) {
		newLedgerFixture(t, store, "Alice").spend(t, "10.00", nil, core.NewDate(2025, 12, 1))

		for _, id := range []int64{0, 424242} {
			got, err := NewAggregator(store).ComputeMonthlySummary(context.Background(), id, december)
			require.NoError(t, err)
			require.Equal(t, core.MonthlyAggregate{}, got)
		}
	})
}

func TestComputeMonthlySummary_RejectsInvalidMonth(t *testing.T) {
	store, err := storage.NewMemoryStore("")
	require.NoError(t, err)

	for _, month := range []int{0, 13, -1} {
		_, err := NewAggregator(store).ComputeMonthlySummary(context.Background(), 1, core.Period{Year: 2025, Month: month})
		require.ErrorIs(t, err, core.ErrInvalidMonth)
		require.ErrorIs(t, err, core.ErrValidation)
	}
}

func TestAggregate_OrderIndependent(t *testing.T) {
	food, transport := int64(1), int64(2)
	expenses := []core.Expense{
		{Amount: core.MustParseAmount("0.10"), CategoryID: &food, CategoryName: "Alimentação"},
		{Amount: core.MustParseAmount("0.20"), CategoryID: &transport, CategoryName: "Transporte"},
		{Amount: core.MustParseAmount("0.30")},
		{Amount: core.MustParseAmount("-0.05"), CategoryID: &transport, CategoryName: "Transporte"},
		{Amount: core.MustParseAmount("1234567.89"), CategoryID: &food, CategoryName: "Alimentação"},
	}
	want, err := aggregate(expenses, nil)
	require.NoError(t, err)
	require.Equal(t, "1234568.34", want.TotalSpent.String())

	reversed := make([]core.Expense, len(expenses))
	for i, e := range expenses {
		reversed[len(expenses)-1-i] = e
	}
	rotated := append(append([]core.Expense{}, expenses[2:]...), expenses[:2]...)

	for _, in := range [][]core.Expense{reversed, rotated} {
		got, err := aggregate(in, nil)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestAggregate_TieGoesToLowestCategoryID(t *testing.T) {
	low, high := int64(3), int64(7)
	expenses := []core.Expense{
		{Amount: core.MustParseAmount("20"), CategoryID: &high, CategoryName: "Transporte"},
		{Amount: core.MustParseAmount("20"), CategoryID: &low, CategoryName: "Saúde"},
	}

	for _, in := range [][]core.Expense{expenses, {expenses[1], expenses[0]}} {
		got, err := aggregate(in, nil)
		require.NoError(t, err)
		require.NotNil(t, got.TopCategory)
		require.Equal(t, "Saúde", *got.TopCategory)
	}
}

func TestComputeMonthlySummary_LastSupportedMonth(t *testing.T) {
	forEachStore(t, func(t *testing.T, store storage.Store) {
		alice := newLedgerFixture(t, store, "Alice")
		alice.spend(t, "10.00", nil, core.NewDate(9999, 12, 5))
		alice.spend(t, "2.50", nil, core.NewDate(9999, 12, 31))
		alice.spend(t, "99.00", nil, core.NewDate(9999, 11, 30))

		got, err := NewAggregator(store).ComputeMonthlySummary(context.Background(), alice.userID, core.Period{Year: 9999, Month: 12})
		require.NoError(t, err)
		require.Equal(t, "12.50", got.TotalSpent.String())
		require.Equal(t, 2, got.TransactionCount)
	})
}

func TestComputeMonthlySummary_OverflowIsAnError(t *testing.T) {
	forEachStore(t, func(t *testing.T, store storage.Store) {
		alice := newLedgerFixture(t, store, "Alice")
		for range 100 {
			alice.spend(t, "999999999999999", nil, core.NewDate(2025, 12, 1))
		}

		_, err := NewAggregator(store).ComputeMonthlySummary(context.Background(), alice.userID, december)
		require.ErrorIs(t, err, core.ErrAmountOverflow)
		require.ErrorIs(t, err, core.ErrValidation)
	})
}

func TestAggregate_OverflowPerCategoryAndBudget(t *testing.T) {
	food := int64(1)
	huge := core.Money{Cents: 1<<62 + 1<<61}

	_, err := aggregate([]core.Expense{
		{Amount: huge, CategoryID: &food},
		{Amount: huge, CategoryID: &food},
	}, nil)
	require.ErrorIs(t, err, core.ErrAmountOverflow)

	_, err = aggregate(nil, []core.Budget{{Limit: huge}, {Limit: huge}})
	require.ErrorIs(t, err, core.ErrAmountOverflow)
}
