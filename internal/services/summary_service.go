package services

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/storage"
)

// UncategorizedLabel names the dashboard bucket for expenses without a category.
const UncategorizedLabel = "Sem categoria"

// SummaryPublisher announces refreshed summaries to other processes.
type SummaryPublisher interface {
	PublishSummaryRefreshed(ctx context.Context, s core.Summary) error
}

type summaryKey struct {
	userID int64
	period core.Period
}

// SummaryService computes, stores and reports monthly summaries.
type SummaryService struct {
	store      storage.Store
	aggregator *Aggregator
	publisher  SummaryPublisher
	locks      *keyedMutex[summaryKey]
	logger     *log.Logger
}

// NewSummaryService wires the service. publisher may be nil.
func NewSummaryService(store storage.Store, publisher SummaryPublisher) *SummaryService {
	return &SummaryService{
		store:      store,
		aggregator: NewAggregator(store),
		publisher:  publisher,
		locks:      newKeyedMutex[summaryKey](),
		logger:     log.New(log.DefaultConfig()).WithComponent(log.ComponentSummary),
	}
}

// WithLogger replaces the service logger.
func (s *SummaryService) WithLogger(l *log.Logger) *SummaryService {
	s.logger = l.WithComponent(log.ComponentSummary)
	return s
}

// Preview computes the aggregate without storing it.
func (s *SummaryService) Preview(ctx context.Context, userID int64, p core.Period) (core.MonthlyAggregate, error) {
	return s.aggregator.ComputeMonthlySummary(ctx, userID, p)
}

// UpsertSummary recomputes the summary for (user, period) and stores it,
// replacing the existing row in place. Calls for the same key are serialized.
func (s *SummaryService) UpsertSummary(ctx context.Context, userID int64, p core.Period) (core.Summary, error) {
	if err := p.Validate(); err != nil {
		return core.Summary{}, err
	}
	if userID <= 0 {
		return core.Summary{}, core.ErrMissingUser
	}

	unlock := s.locks.Lock(summaryKey{userID: userID, period: p})
	defer unlock()

	agg, err := s.aggregator.ComputeMonthlySummary(ctx, userID, p)
	if err != nil {
		return core.Summary{}, err
	}

	id, err := s.store.UpsertSummary(ctx, core.Summary{UserID: userID, Period: p, MonthlyAggregate: agg})
	if err != nil {
		return core.Summary{}, fmt.Errorf("store summary: %w", err)
	}

	summary, err := s.store.GetSummary(ctx, id)
	if err != nil {
		return core.Summary{}, fmt.Errorf("reload summary %d: %w", id, err)
	}

	fields := log.NewFields().
		WithOperation(log.OpUpsert).
		WithSummary(summary.ID, userID, p.String(), summary.TotalSpent.String(), summary.TotalBudgeted.String(),
			summary.TransactionCount, summary.TopCategory)
	s.logger.InfoContext(ctx, "Summary refreshed", fields.ToSlice()...)

	s.publish(ctx, summary)
	return summary, nil
}

// publish never fails the caller: the summary is already stored.
func (s *SummaryService) publish(ctx context.Context, summary core.Summary) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping summary event", "summary_id", summary.ID)
		return
	}
	if err := s.publisher.PublishSummaryRefreshed(ctx, summary); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish summary event",
			log.FieldSummaryID, summary.ID,
			log.FieldOperation, log.OpPublish,
			log.FieldError, err)
	}
}

// ListSummaries returns stored summaries, newest period first. userID 0 lists all.
func (s *SummaryService) ListSummaries(ctx context.Context, userID int64) ([]core.Summary, error) {
	return s.store.ListSummaries(ctx, storage.SummaryFilter{UserID: userID})
}

func (s *SummaryService) GetSummary(ctx context.Context, id int64) (core.Summary, error) {
	return s.store.GetSummary(ctx, id)
}

func (s *SummaryService) DeleteSummary(ctx context.Context, id int64) error {
	return s.store.DeleteSummary(ctx, id)
}

// Dashboard gathers the landing page figures for period.
func (s *SummaryService) Dashboard(ctx context.Context, p core.Period) (core.Dashboard, error) {
	if err := p.Validate(); err != nil {
		return core.Dashboard{}, err
	}

	var (
		users      []core.User
		cards      []core.Card
		categories []core.Category
		expenses   int
		periodExp  []core.Expense
		budgets    []core.Budget
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { users, err = s.store.ListUsers(gctx); return })
	g.Go(func() (err error) { cards, err = s.store.ListCards(gctx, storage.CardFilter{}); return })
	g.Go(func() (err error) { categories, err = s.store.ListCategories(gctx); return })
	g.Go(func() (err error) { expenses, err = s.store.CountExpenses(gctx); return })
	g.Go(func() (err error) {
		periodExp, err = s.store.ListExpenses(gctx, storage.ExpenseFilter{Period: &p})
		return
	})
	g.Go(func() (err error) {
		budgets, err = s.store.ListBudgets(gctx, storage.BudgetFilter{Period: &p})
		return
	})
	if err := g.Wait(); err != nil {
		return core.Dashboard{}, fmt.Errorf("load dashboard for %s: %w", p, err)
	}

	d := core.Dashboard{
		Period:        p,
		Users:         len(users),
		Cards:         len(cards),
		Categories:    len(categories),
		Expenses:      expenses,
		PeriodBudgets: budgets,
	}

	var err error
	byName := map[string]core.Money{}
	for _, e := range periodExp {
		if d.PeriodSpent, err = d.PeriodSpent.Add(e.Amount); err != nil {
			return core.Dashboard{}, fmt.Errorf("dashboard for %s: %w", p, err)
		}
		name := e.CategoryName
		if e.CategoryID == nil {
			name = UncategorizedLabel
		}
		if byName[name], err = byName[name].Add(e.Amount); err != nil {
			return core.Dashboard{}, fmt.Errorf("dashboard for %s: %w", p, err)
		}
	}
	for name, amount := range byName {
		d.SpentByCategory = append(d.SpentByCategory, core.CategoryAmount{Name: name, Amount: amount})
	}
	slices.SortFunc(d.SpentByCategory, func(a, b core.CategoryAmount) int {
		return cmp.Or(cmp.Compare(b.Amount.Cents, a.Amount.Cents), cmp.Compare(a.Name, b.Name))
	})

	return d, nil
}
