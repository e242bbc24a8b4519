package storage

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"gastos/internal/core"
)

// memoryData is the whole database. It is also the snapshot file format.
type memoryData struct {
	Seq        map[string]int64        `json:"seq"`
	Users      map[int64]core.User     `json:"users"`
	Cards      map[int64]core.Card     `json:"cards"`
	Categories map[int64]core.Category `json:"categories"`
	Expenses   map[int64]core.Expense  `json:"expenses"`
	Budgets    map[int64]core.Budget   `json:"budgets"`
	Summaries  map[int64]core.Summary  `json:"summaries"`
}

func newMemoryData() *memoryData {
	return &memoryData{
		Seq:        map[string]int64{},
		Users:      map[int64]core.User{},
		Cards:      map[int64]core.Card{},
		Categories: map[int64]core.Category{},
		Expenses:   map[int64]core.Expense{},
		Budgets:    map[int64]core.Budget{},
		Summaries:  map[int64]core.Summary{},
	}
}

func (d *memoryData) clone() *memoryData {
	return &memoryData{
		Seq:        maps.Clone(d.Seq),
		Users:      maps.Clone(d.Users),
		Cards:      maps.Clone(d.Cards),
		Categories: maps.Clone(d.Categories),
		Expenses:   maps.Clone(d.Expenses),
		Budgets:    maps.Clone(d.Budgets),
		Summaries:  maps.Clone(d.Summaries),
	}
}

// ensure fills maps that an older or hand-edited snapshot may lack.
func (d *memoryData) ensure() {
	if d.Seq == nil {
		d.Seq = map[string]int64{}
	}
	if d.Users == nil {
		d.Users = map[int64]core.User{}
	}
	if d.Cards == nil {
		d.Cards = map[int64]core.Card{}
	}
	if d.Categories == nil {
		d.Categories = map[int64]core.Category{}
	}
	if d.Expenses == nil {
		d.Expenses = map[int64]core.Expense{}
	}
	if d.Budgets == nil {
		d.Budgets = map[int64]core.Budget{}
	}
	if d.Summaries == nil {
		d.Summaries = map[int64]core.Summary{}
	}
}

// next returns the next id for table. Ids are never reused, even after deletes.
func (d *memoryData) next(table string) int64 {
	d.Seq[table]++
	return d.Seq[table]
}

// MemoryStore keeps every table in process memory and writes a full JSON
// snapshot to disk after each mutation. With an empty path nothing is persisted.
type MemoryStore struct {
	mu     sync.RWMutex
	data   *memoryData
	path   string
	closed bool
	now    func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore loads the snapshot at path if it exists and seeds the
// default categories when none are present.
func NewMemoryStore(path string) (*MemoryStore, error) {
	s := &MemoryStore{
		data: newMemoryData(),
		path: path,
		now:  func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}

	if path != "" {
		if err := s.load(); err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrStoreUnavailable, err)
		}
	}

	if len(s.data.Categories) == 0 {
		err := s.mutate(func(d *memoryData) error {
			for _, c := range core.SeedCategories {
				c.ID = d.next("categories")
				c.CreatedAt = s.now()
				d.Categories[c.ID] = c
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("%w: seed categories: %w", core.ErrStoreUnavailable, err)
		}
		slog.Info("Seeded default categories", "count", len(core.SeedCategories))
	}

	return s, nil
}

func (s *MemoryStore) load() error {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	d := newMemoryData()
	if err := json.Unmarshal(raw, d); err != nil {
		return fmt.Errorf("decode snapshot %s: %w", s.path, err)
	}
	d.ensure()
	s.data = d

	slog.Info("Loaded memory snapshot",
		"path", s.path,
		"users", len(d.Users),
		"expenses", len(d.Expenses))
	return nil
}

// persist replaces the snapshot file atomically: temp file, fsync, rename.
func (s *MemoryStore) persist(d *memoryData) error {
	if s.path == "" {
		return nil
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".gastos-snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// mutate applies fn to a copy of the data, persists the copy and only then
// makes it visible. A failing fn or snapshot write leaves the store unchanged.
func (s *MemoryStore) mutate(fn func(d *memoryData) error) error {
	if s.closed {
		return core.ErrStoreUnavailable
	}
	next := s.data.clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := s.persist(next); err != nil {
		return fmt.Errorf("%w: %w", core.ErrStoreUnavailable, err)
	}
	s.data = next
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return core.ErrStoreUnavailable
	}
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Users

func (s *MemoryStore) CreateUser(ctx context.Context, u core.User) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.mutate(func(d *memoryData) error {
		if userNameTaken(d, u.Name, 0) {
			return fmt.Errorf("%w: users.name %q", core.ErrUniqueViolation, u.Name)
		}
		u.ID = d.next("users")
		u.CreatedAt = s.now()
		d.Users[u.ID] = u
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}
	slog.InfoContext(ctx, "User saved to memory store", "id", u.ID, "name", u.Name)
	return u.ID, nil
}

func (s *MemoryStore) UpdateUser(ctx context.Context, u core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.mutate(func(d *memoryData) error {
		cur, ok := d.Users[u.ID]
		if !ok {
			return core.ErrNotFound
		}
		if userNameTaken(d, u.Name, u.ID) {
			return fmt.Errorf("%w: users.name %q", core.ErrUniqueViolation, u.Name)
		}
		cur.Name, cur.Email = u.Name, u.Email
		d.Users[u.ID] = cur
		return nil
	})
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (s *MemoryStore) DeleteUser(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.mutate(func(d *memoryData) error {
		deleteWhere(d.Summaries, func(v core.Summary) bool { return v.UserID == id })
		deleteWhere(d.Budgets, func(v core.Budget) bool { return v.UserID == id })
		deleteWhere(d.Expenses, func(v core.Expense) bool { return v.UserID == id })
		for cid, c := range d.Cards {
			if c.UserID == id {
				deleteWhere(d.Expenses, func(v core.Expense) bool { return v.CardID == cid })
				delete(d.Cards, cid)
			}
		}
		delete(d.Users, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	slog.InfoContext(ctx, "Record deleted", "operation", "delete user", "id", id)
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id int64) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.data.Users[id]
	if !ok {
		return core.User{}, fmt.Errorf("get user %d: %w", id, core.ErrNotFound)
	}
	return u, nil
}

func (s *MemoryStore) ListUsers(ctx context.Context) ([]core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := slices.Collect(maps.Values(s.data.Users))
	slices.SortFunc(out, func(a, b core.User) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return nonNil(out), nil
}

// Cards

func (s *MemoryStore) CreateCard(ctx context.Context, c core.Card) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.mutate(func(d *memoryData) error {
		if _, ok := d.Users[c.UserID]; !ok {
			return fmt.Errorf("%w: cards.user_id %d", core.ErrForeignKeyViolation, c.UserID)
		}
		c.ID = d.next("cards")
		c.CreatedAt = s.now()
		c.UserName = ""
		d.Cards[c.ID] = c
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("create card: %w", err)
	}
	return c.ID, nil
}

func (s *MemoryStore) UpdateCard(ctx context.Context, c core.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.mutate(func(d *memoryData) error {
		cur, ok := d.Cards[c.ID]
		if !ok {
			return core.ErrNotFound
		}
		if _, ok := d.Users[c.UserID]; !ok {
			return fmt.Errorf("%w: cards.user_id %d", core.ErrForeignKeyViolation, c.UserID)
		}
		cur.Name, cur.UserID, cur.Limit = c.Name, c.UserID, c.Limit
		d.Cards[c.ID] = cur
		return nil
	})
	if err != nil {
		return fmt.Errorf("update card: %w", err)
	}
	return nil
}

func (s *MemoryStore) DeleteCard(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.mutate(func(d *memoryData) error {
		deleteWhere(d.Expenses, func(v core.Expense) bool { return v.CardID == id })
		delete(d.Cards, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	slog.InfoContext(ctx, "Record deleted", "operation", "delete card", "id", id)
	return nil
}

func (s *MemoryStore) enrichCard(c core.Card) core.Card {
	c.UserName = s.data.Users[c.UserID].Name
	return c
}

func (s *MemoryStore) GetCard(ctx context.Context, id int64) (core.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.data.Cards[id]
	if !ok {
		return core.Card{}, fmt.Errorf("get card %d: %w", id, core.ErrNotFound)
	}
	return s.enrichCard(c), nil
}

func (s *MemoryStore) ListCards(ctx context.Context, f CardFilter) ([]core.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Card
	for _, c := range s.data.Cards {
		if f.UserID > 0 && c.UserID != f.UserID {
			continue
		}
		out = append(out, s.enrichCard(c))
	}
	slices.SortFunc(out, func(a, b core.Card) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return nonNil(out), nil
}

// Categories

func (s *MemoryStore) CreateCategory(ctx context.Context, c core.Category) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.mutate(func(d *memoryData) error {
		if categoryNameTaken(d, c.Name, 0) {
			return fmt.Errorf("%w: categories.name %q", core.ErrUniqueViolation, c.Name)
		}
		c.ID = d.next("categories")
		c.CreatedAt = s.now()
		d.Categories[c.ID] = c
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("create category: %w", err)
	}
	return c.ID, nil
}

func (s *MemoryStore) UpdateCategory(ctx context.Context, c core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.mutate(func(d *memoryData) error {
		cur, ok := d.Categories[c.ID]
		if !ok {
			return core.ErrNotFound
		}
		if categoryNameTaken(d, c.Name, c.ID) {
			return fmt.Errorf("%w: categories.name %q", core.ErrUniqueViolation, c.Name)
		}
		cur.Name, cur.Description, cur.Color = c.Name, c.Description, c.Color
		d.Categories[c.ID] = cur
		return nil
	})
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// DeleteCategory uncategorizes the category's expenses and removes its budgets.
func (s *MemoryStore) DeleteCategory(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.mutate(func(d *memoryData) error {
		for eid, e := range d.Expenses {
			if e.CategoryID != nil && *e.CategoryID == id {
				e.CategoryID = nil
				d.Expenses[eid] = e
			}
		}
		deleteWhere(d.Budgets, func(v core.Budget) bool { return v.CategoryID == id })
		delete(d.Categories, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	slog.InfoContext(ctx, "Record deleted", "operation", "delete category", "id", id)
	return nil
}

func (s *MemoryStore) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.data.Categories[id]
	if !ok {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, core.ErrNotFound)
	}
	return c, nil
}

func (s *MemoryStore) ListCategories(ctx context.Context) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := slices.Collect(maps.Values(s.data.Categories))
	slices.SortFunc(out, func(a, b core.Category) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return nonNil(out), nil
}

// Expenses

func checkExpenseRefs(d *memoryData, e core.Expense) error {
	if _, ok := d.Cards[e.CardID]; !ok {
		return fmt.Errorf("%w: expenses.card_id %d", core.ErrForeignKeyViolation, e.CardID)
	}
	if _, ok := d.Users[e.UserID]; !ok {
		return fmt.Errorf("%w: expenses.user_id %d", core.ErrForeignKeyViolation, e.UserID)
	}
	if e.CategoryID != nil {
		if _, ok := d.Categories[*e.CategoryID]; !ok {
			return fmt.Errorf("%w: expenses.category_id %d", core.ErrForeignKeyViolation, *e.CategoryID)
		}
	}
	return nil
}

func (s *MemoryStore) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.mutate(func(d *memoryData) error {
		if err := checkExpenseRefs(d, e); err != nil {
			return err
		}
		e.ID = d.next("expenses")
		e.CreatedAt = s.now()
		e.CardName, e.CategoryName = "", ""
		d.Expenses[e.ID] = e
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("create expense: %w", err)
	}
	slog.InfoContext(ctx, "Expense saved to memory store",
		"id", e.ID,
		"description", e.Description,
		"amount_cents", e.Amount.Cents,
		"date", e.Date.String())
	return e.ID, nil
}

func (s *MemoryStore) UpdateExpense(ctx context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.mutate(func(d *memoryData) error {
		cur, ok := d.Expenses[e.ID]
		if !ok {
			return core.ErrNotFound
		}
		if err := checkExpenseRefs(d, e); err != nil {
			return err
		}
		cur.Description, cur.Amount, cur.Date = e.Description, e.Amount, e.Date
		cur.CardID, cur.UserID, cur.CategoryID = e.CardID, e.UserID, e.CategoryID
		d.Expenses[e.ID] = cur
		return nil
	})
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return nil
}

func (s *MemoryStore) DeleteExpense(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.mutate(func(d *memoryData) error {
		delete(d.Expenses, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}

func (s *MemoryStore) enrichExpense(e core.Expense) core.Expense {
	e.CardName = s.data.Cards[e.CardID].Name
	e.CategoryName = ""
	if e.CategoryID != nil {
		e.CategoryName = s.data.Categories[*e.CategoryID].Name
	}
	return e
}

func (s *MemoryStore) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data.Expenses[id]
	if !ok {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, core.ErrNotFound)
	}
	return s.enrichExpense(e), nil
}

func (s *MemoryStore) ListExpenses(ctx context.Context, f ExpenseFilter) ([]core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Expense
	for _, e := range s.data.Expenses {
		if f.UserID > 0 && e.UserID != f.UserID {
			continue
		}
		if f.CardID > 0 && e.CardID != f.CardID {
			continue
		}
		if f.Period != nil && !f.Period.Contains(e.Date) {
			continue
		}
		out = append(out, s.enrichExpense(e))
	}
	slices.SortFunc(out, func(a, b core.Expense) int {
		return cmp.Or(b.Date.Compare(a.Date.Time), cmp.Compare(b.ID, a.ID))
	})
	return nonNil(out), nil
}

func (s *MemoryStore) CountExpenses(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data.Expenses), nil
}

// Budgets

func checkBudget(d *memoryData, b core.Budget) error {
	if err := b.Period.Validate(); err != nil {
		return err
	}
	if _, ok := d.Users[b.UserID]; !ok {
		return fmt.Errorf("%w: budgets.user_id %d", core.ErrForeignKeyViolation, b.UserID)
	}
	if _, ok := d.Categories[b.CategoryID]; !ok {
		return fmt.Errorf("%w: budgets.category_id %d", core.ErrForeignKeyViolation, b.CategoryID)
	}
	for _, o := range d.Budgets {
		if o.ID != b.ID && o.UserID == b.UserID && o.CategoryID == b.CategoryID && o.Period == b.Period {
			return fmt.Errorf("%w: budget for user %d, category %d in %s",
				core.ErrUniqueViolation, b.UserID, b.CategoryID, b.Period)
		}
	}
	return nil
}

func (s *MemoryStore) CreateBudget(ctx context.Context, b core.Budget) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.mutate(func(d *memoryData) error {
		b.ID = 0
		if err := checkBudget(d, b); err != nil {
			return err
		}
		b.ID = d.next("budgets")
		b.CreatedAt = s.now()
		b.UserName, b.CategoryName = "", ""
		d.Budgets[b.ID] = b
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("create budget: %w", err)
	}
	slog.InfoContext(ctx, "Budget saved to memory store",
		"id", b.ID, "user_id", b.UserID, "category_id", b.CategoryID, "period", b.Period.String())
	return b.ID, nil
}

func (s *MemoryStore) UpdateBudget(ctx context.Context, b core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.mutate(func(d *memoryData) error {
		cur, ok := d.Budgets[b.ID]
		if !ok {
			return core.ErrNotFound
		}
		if err := checkBudget(d, b); err != nil {
			return err
		}
		cur.UserID, cur.CategoryID, cur.Period, cur.Limit = b.UserID, b.CategoryID, b.Period, b.Limit
		d.Budgets[b.ID] = cur
		return nil
	})
	if err != nil {
		return fmt.Errorf("update budget: %w", err)
	}
	return nil
}

func (s *MemoryStore) DeleteBudget(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.mutate(func(d *memoryData) error {
		delete(d.Budgets, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return nil
}

func (s *MemoryStore) enrichBudget(b core.Budget) core.Budget {
	b.UserName = s.data.Users[b.UserID].Name
	b.CategoryName = s.data.Categories[b.CategoryID].Name
	return b
}

func (s *MemoryStore) GetBudget(ctx context.Context, id int64) (core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.data.Budgets[id]
	if !ok {
		return core.Budget{}, fmt.Errorf("get budget %d: %w", id, core.ErrNotFound)
	}
	return s.enrichBudget(b), nil
}

func (s *MemoryStore) ListBudgets(ctx context.Context, f BudgetFilter) ([]core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Budget
	for _, b := range s.data.Budgets {
		if f.UserID > 0 && b.UserID != f.UserID {
			continue
		}
		if f.Period != nil && b.Period != *f.Period {
			continue
		}
		out = append(out, s.enrichBudget(b))
	}
	slices.SortFunc(out, func(a, b core.Budget) int {
		return cmp.Or(
			cmp.Compare(b.Period.Year, a.Period.Year),
			cmp.Compare(b.Period.Month, a.Period.Month),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return nonNil(out), nil
}

// Summaries

// UpsertSummary finds the row for (user, period) and overwrites its derived
// fields, or inserts a new row. The lookup and the write happen under one lock.
func (s *MemoryStore) UpsertSummary(ctx context.Context, sum core.Summary) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id int64
	err := s.mutate(func(d *memoryData) error {
		if err := sum.Period.Validate(); err != nil {
			return err
		}
		if _, ok := d.Users[sum.UserID]; !ok {
			return fmt.Errorf("%w: summaries.user_id %d", core.ErrForeignKeyViolation, sum.UserID)
		}
		now := s.now()
		for _, cur := range d.Summaries {
			if cur.UserID == sum.UserID && cur.Period == sum.Period {
				cur.MonthlyAggregate = sum.MonthlyAggregate
				cur.UpdatedAt = now
				d.Summaries[cur.ID] = cur
				id = cur.ID
				return nil
			}
		}
		sum.ID = d.next("summaries")
		sum.CreatedAt, sum.UpdatedAt = now, now
		sum.UserName = ""
		d.Summaries[sum.ID] = sum
		id = sum.ID
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("upsert summary: %w", err)
	}
	slog.InfoContext(ctx, "Summary upserted",
		"id", id,
		"user_id", sum.UserID,
		"period", sum.Period.String(),
		"total_spent_cents", sum.TotalSpent.Cents,
		"transactions", sum.TransactionCount)
	return id, nil
}

func (s *MemoryStore) DeleteSummary(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.mutate(func(d *memoryData) error {
		delete(d.Summaries, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete summary: %w", err)
	}
	return nil
}

func (s *MemoryStore) enrichSummary(sum core.Summary) core.Summary {
	sum.UserName = s.data.Users[sum.UserID].Name
	return sum
}

func (s *MemoryStore) GetSummary(ctx context.Context, id int64) (core.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum, ok := s.data.Summaries[id]
	if !ok {
		return core.Summary{}, fmt.Errorf("get summary %d: %w", id, core.ErrNotFound)
	}
	return s.enrichSummary(sum), nil
}

func (s *MemoryStore) FindSummary(ctx context.Context, userID int64, p core.Period) (core.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sum := range s.data.Summaries {
		if sum.UserID == userID && sum.Period == p {
			return s.enrichSummary(sum), nil
		}
	}
	return core.Summary{}, fmt.Errorf("find summary for user %d in %s: %w", userID, p, core.ErrNotFound)
}

func (s *MemoryStore) ListSummaries(ctx context.Context, f SummaryFilter) ([]core.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Summary
	for _, sum := range s.data.Summaries {
		if f.UserID > 0 && sum.UserID != f.UserID {
			continue
		}
		out = append(out, s.enrichSummary(sum))
	}
	slices.SortFunc(out, func(a, b core.Summary) int {
		return cmp.Or(
			cmp.Compare(b.Period.Year, a.Period.Year),
			cmp.Compare(b.Period.Month, a.Period.Month),
			cmp.Compare(a.UserName, b.UserName),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return nonNil(out), nil
}

// helpers

func userNameTaken(d *memoryData, name string, except int64) bool {
	for _, u := range d.Users {
		if u.ID != except && u.Name == name {
			return true
		}
	}
	return false
}

func categoryNameTaken(d *memoryData, name string, except int64) bool {
	for _, c := range d.Categories {
		if c.ID != except && c.Name == name {
			return true
		}
	}
	return false
}

func deleteWhere[V any](m map[int64]V, match func(V) bool) {
	maps.DeleteFunc(m, func(_ int64, v V) bool { return match(v) })
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
