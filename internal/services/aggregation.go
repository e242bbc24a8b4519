package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"gastos/internal/core"
	"gastos/internal/storage"
)

// Aggregator derives monthly figures from the ledger. It only reads.
type Aggregator struct {
	store storage.Store
}

func NewAggregator(store storage.Store) *Aggregator {
	return &Aggregator{store: store}
}

// ComputeMonthlySummary totals a user's expenses and budgets for one calendar
// month. The user is not looked up: an unknown user yields an empty aggregate.
func (a *Aggregator) ComputeMonthlySummary(ctx context.Context, userID int64, p core.Period) (core.MonthlyAggregate, error) {
	if err := p.Validate(); err != nil {
		return core.MonthlyAggregate{}, err
	}
	if userID <= 0 {
		return core.MonthlyAggregate{}, nil
	}

	var (
		expenses []core.Expense
		budgets  []core.Budget
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = a.store.ListExpenses(gctx, storage.ExpenseFilter{UserID: userID, Period: &p})
		if err != nil {
			return fmt.Errorf("read expenses: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		budgets, err = a.store.ListBudgets(gctx, storage.BudgetFilter{UserID: userID, Period: &p})
		if err != nil {
			return fmt.Errorf("read budgets: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.MonthlyAggregate{}, fmt.Errorf("compute summary for user %d in %s: %w", userID, p, err)
	}

	agg, err := aggregate(expenses, budgets)
	if err != nil {
		return core.MonthlyAggregate{}, fmt.Errorf("compute summary for user %d in %s: %w", userID, p, err)
	}
	return agg, nil
}

// aggregate is the pure part of ComputeMonthlySummary. It does not depend on
// the order of its inputs. A sum outside the cents range is core.ErrAmountOverflow.
func aggregate(expenses []core.Expense, budgets []core.Budget) (core.MonthlyAggregate, error) {
	var (
		out core.MonthlyAggregate
		err error
	)

	byCategory := map[int64]core.Money{}
	names := map[int64]string{}
	for _, e := range expenses {
		if out.TotalSpent, err = out.TotalSpent.Add(e.Amount); err != nil {
			return core.MonthlyAggregate{}, fmt.Errorf("total spent: %w", err)
		}
		out.TransactionCount++
		if e.CategoryID != nil {
			id := *e.CategoryID
			if byCategory[id], err = byCategory[id].Add(e.Amount); err != nil {
				return core.MonthlyAggregate{}, fmt.Errorf("category %d total: %w", id, err)
			}
			names[id] = e.CategoryName
		}
	}
	for _, b := range budgets {
		if out.TotalBudgeted, err = out.TotalBudgeted.Add(b.Limit); err != nil {
			return core.MonthlyAggregate{}, fmt.Errorf("total budgeted: %w", err)
		}
	}

	// Highest total wins; equal totals go to the lowest category id.
	var (
		topID    int64
		topTotal int64
		found    bool
	)
	for id, total := range byCategory {
		if !found || total.Cents > topTotal || (total.Cents == topTotal && id < topID) {
			topID, topTotal, found = id, total.Cents, true
		}
	}
	if found {
		name := names[topID]
		out.TopCategory = &name
	}
	return out, nil
}
