package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gastos/internal/core"

	_ "modernc.org/sqlite"
)

// Pragmas applied to every pooled connection.
const sqlitePragmas = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database file, migrates it and seeds
// the default categories. Any failure is reported as core.ErrStoreUnavailable.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("%w: create db directory: %w", core.ErrStoreUnavailable, err)
	}

	db, err := sql.Open("sqlite", dbPath+sqlitePragmas)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite database: %w", core.ErrStoreUnavailable, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping database: %w", core.ErrStoreUnavailable, err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", core.ErrStoreUnavailable, err)
	}

	s := &SQLiteStore{db: db}
	if err := s.seedCategories(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: seed categories: %w", core.ErrStoreUnavailable, err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", core.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *SQLiteStore) seedCategories(ctx context.Context) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		for _, c := range core.SeedCategories {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO categories (name, description, color) VALUES (?, ?, ?)`,
				c.Name, c.Description, c.Color); err != nil {
				return err
			}
		}
		slog.InfoContext(ctx, "Seeded default categories", "count", len(core.SeedCategories))
		return nil
	})
}

// withTx runs fn in a transaction, committing only if fn succeeds.
func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) insert(ctx context.Context, op, query string, args ...any) (int64, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, translateError(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: last insert id: %w", op, err)
	}
	return id, nil
}

func (s *SQLiteStore) update(ctx context.Context, op, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, translateError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	return nil
}

// deleteAll executes the statements in order within one transaction.
func (s *SQLiteStore) deleteAll(ctx context.Context, op string, id int64, stmts ...string) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, q := range stmts {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return translateError(err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	slog.InfoContext(ctx, "Record deleted", "operation", op, "id", id)
	return nil
}

// Users

func (s *SQLiteStore) CreateUser(ctx context.Context, u core.User) (int64, error) {
	id, err := s.insert(ctx, "create user",
		`INSERT INTO users (name, email) VALUES (?, ?)`, u.Name, u.Email)
	if err != nil {
		return 0, err
	}
	slog.InfoContext(ctx, "User saved to SQLite", "id", id, "name", u.Name)
	return id, nil
}

func (s *SQLiteStore) UpdateUser(ctx context.Context, u core.User) error {
	return s.update(ctx, "update user",
		`UPDATE users SET name = ?, email = ? WHERE id = ?`, u.Name, u.Email, u.ID)
}

func (s *SQLiteStore) DeleteUser(ctx context.Context, id int64) error {
	return s.deleteAll(ctx, "delete user", id,
		`DELETE FROM summaries WHERE user_id = ?`,
		`DELETE FROM budgets WHERE user_id = ?`,
		`DELETE FROM expenses WHERE user_id = ?`,
		`DELETE FROM cards WHERE user_id = ?`,
		`DELETE FROM users WHERE id = ?`,
	)
}

const selectUser = `SELECT id, name, email, created_at FROM users`

func scanUser(row scanner) (core.User, error) {
	var (
		u       core.User
		created string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &created); err != nil {
		return core.User{}, err
	}
	u.CreatedAt = parseTimestamp(created)
	return u, nil
}

func (s *SQLiteStore) GetUser(ctx context.Context, id int64) (core.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, selectUser+` WHERE id = ?`, id))
	if err != nil {
		return core.User{}, fmt.Errorf("get user %d: %w", id, notFound(err))
	}
	return u, nil
}

func (s *SQLiteStore) ListUsers(ctx context.Context) ([]core.User, error) {
	return queryAll(ctx, s.db, "list users", scanUser, selectUser+` ORDER BY name, id`)
}

// Cards

func (s *SQLiteStore) CreateCard(ctx context.Context, c core.Card) (int64, error) {
	return s.insert(ctx, "create card",
		`INSERT INTO cards (name, user_id, limit_cents) VALUES (?, ?, ?)`,
		c.Name, c.UserID, c.Limit.Cents)
}

func (s *SQLiteStore) UpdateCard(ctx context.Context, c core.Card) error {
	return s.update(ctx, "update card",
		`UPDATE cards SET name = ?, user_id = ?, limit_cents = ? WHERE id = ?`,
		c.Name, c.UserID, c.Limit.Cents, c.ID)
}

func (s *SQLiteStore) DeleteCard(ctx context.Context, id int64) error {
	return s.deleteAll(ctx, "delete card", id,
		`DELETE FROM expenses WHERE card_id = ?`,
		`DELETE FROM cards WHERE id = ?`,
	)
}

const selectCard = `SELECT c.id, c.name, c.user_id, c.limit_cents, c.created_at, u.name
FROM cards c JOIN users u ON u.id = c.user_id`

func scanCard(row scanner) (core.Card, error) {
	var (
		c       core.Card
		created string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.UserID, &c.Limit.Cents, &created, &c.UserName); err != nil {
		return core.Card{}, err
	}
	c.CreatedAt = parseTimestamp(created)
	return c, nil
}

func (s *SQLiteStore) GetCard(ctx context.Context, id int64) (core.Card, error) {
	c, err := scanCard(s.db.QueryRowContext(ctx, selectCard+` WHERE c.id = ?`, id))
	if err != nil {
		return core.Card{}, fmt.Errorf("get card %d: %w", id, notFound(err))
	}
	return c, nil
}

func (s *SQLiteStore) ListCards(ctx context.Context, f CardFilter) ([]core.Card, error) {
	var w where
	if f.UserID > 0 {
		w.add("c.user_id = ?", f.UserID)
	}
	return queryAll(ctx, s.db, "list cards", scanCard, selectCard+w.String()+` ORDER BY c.name, c.id`, w.args...)
}

// Categories

func (s *SQLiteStore) CreateCategory(ctx context.Context, c core.Category) (int64, error) {
	return s.insert(ctx, "create category",
		`INSERT INTO categories (name, description, color) VALUES (?, ?, ?)`,
		c.Name, c.Description, c.Color)
}

func (s *SQLiteStore) UpdateCategory(ctx context.Context, c core.Category) error {
	return s.update(ctx, "update category",
		`UPDATE categories SET name = ?, description = ?, color = ? WHERE id = ?`,
		c.Name, c.Description, c.Color, c.ID)
}

// DeleteCategory never removes expenses: they become uncategorized. The
// nulling is explicit so it does not depend on the schema's ON DELETE rule.
func (s *SQLiteStore) DeleteCategory(ctx context.Context, id int64) error {
	return s.deleteAll(ctx, "delete category", id,
		`UPDATE expenses SET category_id = NULL WHERE category_id = ?`,
		`DELETE FROM budgets WHERE category_id = ?`,
		`DELETE FROM categories WHERE id = ?`,
	)
}

const selectCategory = `SELECT id, name, description, color, created_at FROM categories`

func scanCategory(row scanner) (core.Category, error) {
	var (
		c       core.Category
		created string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Color, &created); err != nil {
		return core.Category{}, err
	}
	c.CreatedAt = parseTimestamp(created)
	return c, nil
}

func (s *SQLiteStore) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx, selectCategory+` WHERE id = ?`, id))
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, notFound(err))
	}
	return c, nil
}

func (s *SQLiteStore) ListCategories(ctx context.Context) ([]core.Category, error) {
	return queryAll(ctx, s.db, "list categories", scanCategory, selectCategory+` ORDER BY name, id`)
}

// Expenses

func (s *SQLiteStore) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	id, err := s.insert(ctx, "create expense",
		`INSERT INTO expenses (description, amount_cents, card_id, user_id, category_id, expense_date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.Description, e.Amount.Cents, e.CardID, e.UserID, nullableID(e.CategoryID), e.Date.String())
	if err != nil {
		return 0, err
	}
	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", id,
		"description", e.Description,
		"amount_cents", e.Amount.Cents,
		"date", e.Date.String())
	return id, nil
}

func (s *SQLiteStore) UpdateExpense(ctx context.Context, e core.Expense) error {
	return s.update(ctx, "update expense",
		`UPDATE expenses SET description = ?, amount_cents = ?, card_id = ?, user_id = ?, category_id = ?, expense_date = ?
		 WHERE id = ?`,
		e.Description, e.Amount.Cents, e.CardID, e.UserID, nullableID(e.CategoryID), e.Date.String(), e.ID)
}

func (s *SQLiteStore) DeleteExpense(ctx context.Context, id int64) error {
	return s.deleteAll(ctx, "delete expense", id, `DELETE FROM expenses WHERE id = ?`)
}

const selectExpense = `SELECT e.id, e.description, e.amount_cents, e.card_id, e.user_id, e.category_id,
       e.expense_date, e.created_at, c.name, COALESCE(cat.name, '')
FROM expenses e
JOIN cards c ON c.id = e.card_id
LEFT JOIN categories cat ON cat.id = e.category_id`

func scanExpense(row scanner) (core.Expense, error) {
	var (
		e        core.Expense
		category sql.NullInt64
		date     string
		created  string
	)
	if err := row.Scan(&e.ID, &e.Description, &e.Amount.Cents, &e.CardID, &e.UserID, &category,
		&date, &created, &e.CardName, &e.CategoryName); err != nil {
		return core.Expense{}, err
	}
	if category.Valid {
		id := category.Int64
		e.CategoryID = &id
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %d has malformed date %q", e.ID, date)
	}
	e.Date = d
	e.CreatedAt = parseTimestamp(created)
	return e, nil
}

func (s *SQLiteStore) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	e, err := scanExpense(s.db.QueryRowContext(ctx, selectExpense+` WHERE e.id = ?`, id))
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, notFound(err))
	}
	return e, nil
}

func (s *SQLiteStore) ListExpenses(ctx context.Context, f ExpenseFilter) ([]core.Expense, error) {
	var w where
	if f.UserID > 0 {
		w.add("e.user_id = ?", f.UserID)
	}
	if f.CardID > 0 {
		w.add("e.card_id = ?", f.CardID)
	}
	if f.Period != nil {
		first, last := f.Period.Bounds()
		w.add("e.expense_date BETWEEN ? AND ?", first.String(), last.String())
	}
	return queryAll(ctx, s.db, "list expenses", scanExpense,
		selectExpense+w.String()+` ORDER BY e.expense_date DESC, e.id DESC`, w.args...)
}

func (s *SQLiteStore) CountExpenses(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM expenses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count expenses: %w", err)
	}
	return n, nil
}

// Budgets

func (s *SQLiteStore) CreateBudget(ctx context.Context, b core.Budget) (int64, error) {
	id, err := s.insert(ctx, "create budget",
		`INSERT INTO budgets (user_id, category_id, month, year, limit_cents) VALUES (?, ?, ?, ?, ?)`,
		b.UserID, b.CategoryID, b.Period.Month, b.Period.Year, b.Limit.Cents)
	if err != nil {
		return 0, err
	}
	slog.InfoContext(ctx, "Budget saved to SQLite",
		"id", id, "user_id", b.UserID, "category_id", b.CategoryID, "period", b.Period.String())
	return id, nil
}

func (s *SQLiteStore) UpdateBudget(ctx context.Context, b core.Budget) error {
	return s.update(ctx, "update budget",
		`UPDATE budgets SET user_id = ?, category_id = ?, month = ?, year = ?, limit_cents = ? WHERE id = ?`,
		b.UserID, b.CategoryID, b.Period.Month, b.Period.Year, b.Limit.Cents, b.ID)
}

func (s *SQLiteStore) DeleteBudget(ctx context.Context, id int64) error {
	return s.deleteAll(ctx, "delete budget", id, `DELETE FROM budgets WHERE id = ?`)
}

const selectBudget = `SELECT b.id, b.user_id, b.category_id, b.month, b.year, b.limit_cents, b.created_at,
       u.name, cat.name
FROM budgets b
JOIN users u ON u.id = b.user_id
JOIN categories cat ON cat.id = b.category_id`

func scanBudget(row scanner) (core.Budget, error) {
	var (
		b       core.Budget
		created string
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Period.Month, &b.Period.Year, &b.Limit.Cents,
		&created, &b.UserName, &b.CategoryName); err != nil {
		return core.Budget{}, err
	}
	b.CreatedAt = parseTimestamp(created)
	return b, nil
}

func (s *SQLiteStore) GetBudget(ctx context.Context, id int64) (core.Budget, error) {
	b, err := scanBudget(s.db.QueryRowContext(ctx, selectBudget+` WHERE b.id = ?`, id))
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget %d: %w", id, notFound(err))
	}
	return b, nil
}

func (s *SQLiteStore) ListBudgets(ctx context.Context, f BudgetFilter) ([]core.Budget, error) {
	var w where
	if f.UserID > 0 {
		w.add("b.user_id = ?", f.UserID)
	}
	if f.Period != nil {
		w.add("b.month = ? AND b.year = ?", f.Period.Month, f.Period.Year)
	}
	return queryAll(ctx, s.db, "list budgets", scanBudget,
		selectBudget+w.String()+` ORDER BY b.year DESC, b.month DESC, b.id`, w.args...)
}

// Summaries

func (s *SQLiteStore) UpsertSummary(ctx context.Context, sum core.Summary) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO summaries (user_id, month, year, total_spent_cents, total_budgeted_cents, transaction_count, top_category)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, month, year) DO UPDATE SET
			total_spent_cents = excluded.total_spent_cents,
			total_budgeted_cents = excluded.total_budgeted_cents,
			transaction_count = excluded.transaction_count,
			top_category = excluded.top_category,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id`,
		sum.UserID, sum.Period.Month, sum.Period.Year,
		sum.TotalSpent.Cents, sum.TotalBudgeted.Cents, sum.TransactionCount, nullableString(sum.TopCategory),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert summary: %w", translateError(err))
	}
	slog.InfoContext(ctx, "Summary upserted",
		"id", id,
		"user_id", sum.UserID,
		"period", sum.Period.String(),
		"total_spent_cents", sum.TotalSpent.Cents,
		"transactions", sum.TransactionCount)
	return id, nil
}

func (s *SQLiteStore) DeleteSummary(ctx context.Context, id int64) error {
	return s.deleteAll(ctx, "delete summary", id, `DELETE FROM summaries WHERE id = ?`)
}

const selectSummary = `SELECT s.id, s.user_id, s.month, s.year, s.total_spent_cents, s.total_budgeted_cents,
       s.transaction_count, s.top_category, s.created_at, s.updated_at, u.name
FROM summaries s
JOIN users u ON u.id = s.user_id`

func scanSummary(row scanner) (core.Summary, error) {
	var (
		sum              core.Summary
		top              sql.NullString
		created, updated string
	)
	if err := row.Scan(&sum.ID, &sum.UserID, &sum.Period.Month, &sum.Period.Year,
		&sum.TotalSpent.Cents, &sum.TotalBudgeted.Cents, &sum.TransactionCount, &top,
		&created, &updated, &sum.UserName); err != nil {
		return core.Summary{}, err
	}
	if top.Valid {
		name := top.String
		sum.TopCategory = &name
	}
	sum.CreatedAt = parseTimestamp(created)
	sum.UpdatedAt = parseTimestamp(updated)
	return sum, nil
}

func (s *SQLiteStore) GetSummary(ctx context.Context, id int64) (core.Summary, error) {
	sum, err := scanSummary(s.db.QueryRowContext(ctx, selectSummary+` WHERE s.id = ?`, id))
	if err != nil {
		return core.Summary{}, fmt.Errorf("get summary %d: %w", id, notFound(err))
	}
	return sum, nil
}

func (s *SQLiteStore) FindSummary(ctx context.Context, userID int64, p core.Period) (core.Summary, error) {
	sum, err := scanSummary(s.db.QueryRowContext(ctx,
		selectSummary+` WHERE s.user_id = ? AND s.month = ? AND s.year = ?`, userID, p.Month, p.Year))
	if err != nil {
		return core.Summary{}, fmt.Errorf("find summary for user %d in %s: %w", userID, p, notFound(err))
	}
	return sum, nil
}

func (s *SQLiteStore) ListSummaries(ctx context.Context, f SummaryFilter) ([]core.Summary, error) {
	var w where
	if f.UserID > 0 {
		w.add("s.user_id = ?", f.UserID)
	}
	return queryAll(ctx, s.db, "list summaries", scanSummary,
		selectSummary+w.String()+` ORDER BY s.year DESC, s.month DESC, u.name, s.id`, w.args...)
}

// Query helpers

type scanner interface {
	Scan(dest ...any) error
}

func queryAll[T any](ctx context.Context, db *sql.DB, op string, scan func(scanner) (T, error), query string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// where accumulates AND-ed conditions.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, args ...any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	return err
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
}

// parseTimestamp accepts CURRENT_TIMESTAMP text and driver-formatted times.
func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
