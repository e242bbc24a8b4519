package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"gastos/internal/cache"
	"gastos/internal/core"
	"gastos/internal/storage"
)

const categoriesCacheKey = "categories"

// LedgerService validates and applies changes to users, cards, categories,
// expenses and budgets before they reach the store.
type LedgerService struct {
	store      storage.Store
	categories cache.Cache[[]core.Category]
	now        func() time.Time
}

// NewLedgerService wires the service. categories may be nil to disable caching.
func NewLedgerService(store storage.Store, categories cache.Cache[[]core.Category]) *LedgerService {
	return &LedgerService{
		store:      store,
		categories: categories,
		now:        time.Now,
	}
}

// Users

func (s *LedgerService) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	u.Name, u.Email = strings.TrimSpace(u.Name), strings.TrimSpace(u.Email)
	if err := u.Validate(); err != nil {
		return core.User{}, err
	}
	id, err := s.store.CreateUser(ctx, u)
	if err != nil {
		return core.User{}, err
	}
	return s.store.GetUser(ctx, id)
}

func (s *LedgerService) UpdateUser(ctx context.Context, u core.User) (core.User, error) {
	u.Name, u.Email = strings.TrimSpace(u.Name), strings.TrimSpace(u.Email)
	if err := u.Validate(); err != nil {
		return core.User{}, err
	}
	if err := s.store.UpdateUser(ctx, u); err != nil {
		return core.User{}, err
	}
	return s.store.GetUser(ctx, u.ID)
}

// DeleteUser also removes the user's cards, expenses, budgets and summaries.
func (s *LedgerService) DeleteUser(ctx context.Context, id int64) error {
	return s.store.DeleteUser(ctx, id)
}

func (s *LedgerService) GetUser(ctx context.Context, id int64) (core.User, error) {
	return s.store.GetUser(ctx, id)
}

func (s *LedgerService) ListUsers(ctx context.Context) ([]core.User, error) {
	return s.store.ListUsers(ctx)
}

// Cards

// CreateCard assigns core.DefaultCardLimit when no limit is given.
func (s *LedgerService) CreateCard(ctx context.Context, c core.Card) (core.Card, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Limit.IsZero() {
		c.Limit = core.DefaultCardLimit
	}
	if err := c.Validate(); err != nil {
		return core.Card{}, err
	}
	id, err := s.store.CreateCard(ctx, c)
	if err != nil {
		return core.Card{}, err
	}
	return s.store.GetCard(ctx, id)
}

func (s *LedgerService) UpdateCard(ctx context.Context, c core.Card) (core.Card, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return core.Card{}, err
	}
	if err := s.store.UpdateCard(ctx, c); err != nil {
		return core.Card{}, err
	}
	return s.store.GetCard(ctx, c.ID)
}

func (s *LedgerService) DeleteCard(ctx context.Context, id int64) error {
	return s.store.DeleteCard(ctx, id)
}

func (s *LedgerService) GetCard(ctx context.Context, id int64) (core.Card, error) {
	return s.store.GetCard(ctx, id)
}

func (s *LedgerService) ListCards(ctx context.Context, f storage.CardFilter) ([]core.Card, error) {
	return s.store.ListCards(ctx, f)
}

// Categories

func (s *LedgerService) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c = normalizeCategory(c)
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	id, err := s.store.CreateCategory(ctx, c)
	if err != nil {
		return core.Category{}, err
	}
	s.invalidateCategories()
	return s.store.GetCategory(ctx, id)
}

func (s *LedgerService) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c = normalizeCategory(c)
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return core.Category{}, err
	}
	s.invalidateCategories()
	return s.store.GetCategory(ctx, c.ID)
}

// DeleteCategory leaves the category's expenses in place, uncategorized.
func (s *LedgerService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.invalidateCategories()
	return nil
}

func (s *LedgerService) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	return s.store.GetCategory(ctx, id)
}

// ListCategories serves from the cache when possible.
func (s *LedgerService) ListCategories(ctx context.Context) ([]core.Category, error) {
	if s.categories != nil {
		if cats, ok := s.categories.Get(categoriesCacheKey); ok {
			return slices.Clone(cats), nil
		}
	}
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if s.categories != nil {
		s.categories.Set(categoriesCacheKey, slices.Clone(cats))
	}
	return cats, nil
}

func (s *LedgerService) invalidateCategories() {
	if s.categories != nil {
		s.categories.Purge()
	}
}

func normalizeCategory(c core.Category) core.Category {
	c.Name = strings.TrimSpace(c.Name)
	c.Description = strings.TrimSpace(c.Description)
	c.Color = strings.TrimSpace(c.Color)
	if c.Color == "" {
		c.Color = core.DefaultCategoryColor
	}
	return c
}

// Expenses

// prepareExpense fills the date and derives the owner from the card.
func (s *LedgerService) prepareExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.Description = strings.TrimSpace(e.Description)
	if e.Date.IsZero() {
		e.Date = core.Today(s.now())
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	card, err := s.store.GetCard(ctx, e.CardID)
	if errors.Is(err, core.ErrNotFound) {
		return core.Expense{}, fmt.Errorf("%w: card %d", core.ErrForeignKeyViolation, e.CardID)
	}
	if err != nil {
		return core.Expense{}, err
	}
	e.UserID = card.UserID
	return e, nil
}

func (s *LedgerService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e, err := s.prepareExpense(ctx, e)
	if err != nil {
		return core.Expense{}, err
	}
	id, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, err
	}
	return s.store.GetExpense(ctx, id)
}

// UpdateExpense keeps the stored date when e carries none.
func (s *LedgerService) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	current, err := s.store.GetExpense(ctx, e.ID)
	if err != nil {
		return core.Expense{}, err
	}
	if e.Date.IsZero() {
		e.Date = current.Date
	}
	e, err = s.prepareExpense(ctx, e)
	if err != nil {
		return core.Expense{}, err
	}
	if err := s.store.UpdateExpense(ctx, e); err != nil {
		return core.Expense{}, err
	}
	return s.store.GetExpense(ctx, e.ID)
}

func (s *LedgerService) DeleteExpense(ctx context.Context, id int64) error {
	return s.store.DeleteExpense(ctx, id)
}

func (s *LedgerService) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	return s.store.GetExpense(ctx, id)
}

func (s *LedgerService) ListExpenses(ctx context.Context, f storage.ExpenseFilter) ([]core.Expense, error) {
	if f.Period != nil {
		if err := f.Period.Validate(); err != nil {
			return nil, err
		}
	}
	return s.store.ListExpenses(ctx, f)
}

// Budgets

func (s *LedgerService) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	id, err := s.store.CreateBudget(ctx, b)
	if err != nil {
		return core.Budget{}, err
	}
	return s.store.GetBudget(ctx, id)
}

func (s *LedgerService) UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	if err := s.store.UpdateBudget(ctx, b); err != nil {
		return core.Budget{}, err
	}
	return s.store.GetBudget(ctx, b.ID)
}

func (s *LedgerService) DeleteBudget(ctx context.Context, id int64) error {
	return s.store.DeleteBudget(ctx, id)
}

func (s *LedgerService) GetBudget(ctx context.Context, id int64) (core.Budget, error) {
	return s.store.GetBudget(ctx, id)
}

func (s *LedgerService) ListBudgets(ctx context.Context, f storage.BudgetFilter) ([]core.Budget, error) {
	if f.Period != nil {
		if err := f.Period.Validate(); err != nil {
			return nil, err
		}
	}
	return s.store.ListBudgets(ctx, f)
}

// Ping reports whether the store is reachable.
func (s *LedgerService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
