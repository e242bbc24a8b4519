package storage

import (
	"context"

	"gastos/internal/core"
)

// Store is the persistent store shared by every component. Implementations
// enforce uniqueness, referential integrity and the cascade rules on their own:
// deleting a user removes its cards, expenses, budgets and summaries; deleting
// a card removes its expenses; deleting a category uncategorizes its expenses
// and removes its budgets.
type Store interface {
	CreateUser(ctx context.Context, u core.User) (int64, error)
	UpdateUser(ctx context.Context, u core.User) error
	DeleteUser(ctx context.Context, id int64) error
	GetUser(ctx context.Context, id int64) (core.User, error)
	ListUsers(ctx context.Context) ([]core.User, error)

	CreateCard(ctx context.Context, c core.Card) (int64, error)
	UpdateCard(ctx context.Context, c core.Card) error
	DeleteCard(ctx context.Context, id int64) error
	GetCard(ctx context.Context, id int64) (core.Card, error)
	ListCards(ctx context.Context, f CardFilter) ([]core.Card, error)

	CreateCategory(ctx context.Context, c core.Category) (int64, error)
	UpdateCategory(ctx context.Context, c core.Category) error
	DeleteCategory(ctx context.Context, id int64) error
	GetCategory(ctx context.Context, id int64) (core.Category, error)
	ListCategories(ctx context.Context) ([]core.Category, error)

	CreateExpense(ctx context.Context, e core.Expense) (int64, error)
	UpdateExpense(ctx context.Context, e core.Expense) error
	DeleteExpense(ctx context.Context, id int64) error
	GetExpense(ctx context.Context, id int64) (core.Expense, error)
	ListExpenses(ctx context.Context, f ExpenseFilter) ([]core.Expense, error)
	CountExpenses(ctx context.Context) (int, error)

	CreateBudget(ctx context.Context, b core.Budget) (int64, error)
	UpdateBudget(ctx context.Context, b core.Budget) error
	DeleteBudget(ctx context.Context, id int64) error
	GetBudget(ctx context.Context, id int64) (core.Budget, error)
	ListBudgets(ctx context.Context, f BudgetFilter) ([]core.Budget, error)

	// UpsertSummary inserts the summary or overwrites the derived fields of the
	// existing row for (UserID, Period), preserving its id. It is atomic.
	UpsertSummary(ctx context.Context, s core.Summary) (int64, error)
	DeleteSummary(ctx context.Context, id int64) error
	GetSummary(ctx context.Context, id int64) (core.Summary, error)
	FindSummary(ctx context.Context, userID int64, p core.Period) (core.Summary, error)
	ListSummaries(ctx context.Context, f SummaryFilter) ([]core.Summary, error)

	Ping(ctx context.Context) error
	Close() error
}

// Filters select a subset of a list. Zero values mean "no restriction".
type (
	CardFilter struct {
		UserID int64
	}

	ExpenseFilter struct {
		UserID int64
		CardID int64
		Period *core.Period
	}

	BudgetFilter struct {
		UserID int64
		Period *core.Period
	}

	SummaryFilter struct {
		UserID int64
	}
)
