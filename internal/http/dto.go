package http

import (
	"strings"
	"time"

	"gastos/internal/core"
)

// Request bodies

type userRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (r userRequest) toCore(id int64) core.User {
	return core.User{ID: id, Name: r.Name, Email: r.Email}
}

type cardRequest struct {
	Name   string     `json:"name"`
	UserID int64      `json:"user_id"`
	Limit  core.Money `json:"limit"`
}

func (r cardRequest) toCore(id int64) core.Card {
	return core.Card{ID: id, Name: r.Name, UserID: r.UserID, Limit: r.Limit}
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

func (r categoryRequest) toCore(id int64) core.Category {
	return core.Category{ID: id, Name: r.Name, Description: r.Description, Color: r.Color}
}

type expenseRequest struct {
	Description string     `json:"description"`
	Amount      core.Money `json:"amount"`
	CardID      int64      `json:"card_id"`
	CategoryID  *int64     `json:"category_id"`
	Date        string     `json:"date"`
}

// toCore leaves Date zero when absent: create applies today, update keeps the stored date.
func (r expenseRequest) toCore(id int64) (core.Expense, error) {
	e := core.Expense{
		ID:          id,
		Description: r.Description,
		Amount:      r.Amount,
		CardID:      r.CardID,
		CategoryID:  r.CategoryID,
	}
	if strings.TrimSpace(r.Date) != "" {
		d, err := core.ParseDate(r.Date)
		if err != nil {
			return core.Expense{}, err
		}
		e.Date = d
	}
	return e, nil
}

type budgetRequest struct {
	UserID     int64      `json:"user_id"`
	CategoryID int64      `json:"category_id"`
	Year       int        `json:"year"`
	Month      int        `json:"month"`
	Limit      core.Money `json:"limit"`
}

func (r budgetRequest) toCore(id int64) core.Budget {
	return core.Budget{
		ID:         id,
		UserID:     r.UserID,
		CategoryID: r.CategoryID,
		Period:     core.Period{Year: r.Year, Month: r.Month},
		Limit:      r.Limit,
	}
}

type summaryRequest struct {
	UserID int64 `json:"user_id"`
	Year   int   `json:"year"`
	Month  int   `json:"month"`
}

// Responses

type userResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(u core.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

type cardResponse struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	UserID    int64      `json:"user_id"`
	UserName  string     `json:"user_name"`
	Limit     core.Money `json:"limit"`
	CreatedAt time.Time  `json:"created_at"`
}

func newCardResponse(c core.Card) cardResponse {
	return cardResponse{ID: c.ID, Name: c.Name, UserID: c.UserID, UserName: c.UserName, Limit: c.Limit, CreatedAt: c.CreatedAt}
}

type categoryResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"created_at"`
}

func newCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, Description: c.Description, Color: c.Color, CreatedAt: c.CreatedAt}
}

type expenseResponse struct {
	ID           int64      `json:"id"`
	Description  string     `json:"description"`
	Amount       core.Money `json:"amount"`
	CardID       int64      `json:"card_id"`
	CardName     string     `json:"card_name"`
	UserID       int64      `json:"user_id"`
	CategoryID   *int64     `json:"category_id"`
	CategoryName string     `json:"category_name"`
	Date         string     `json:"date"`
	CreatedAt    time.Time  `json:"created_at"`
}

func newExpenseResponse(e core.Expense) expenseResponse {
	return expenseResponse{
		ID:           e.ID,
		Description:  e.Description,
		Amount:       e.Amount,
		CardID:       e.CardID,
		CardName:     e.CardName,
		UserID:       e.UserID,
		CategoryID:   e.CategoryID,
		CategoryName: e.CategoryName,
		Date:         e.Date.String(),
		CreatedAt:    e.CreatedAt,
	}
}

type budgetResponse struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	UserName     string     `json:"user_name"`
	CategoryID   int64      `json:"category_id"`
	CategoryName string     `json:"category_name"`
	Year         int        `json:"year"`
	Month        int        `json:"month"`
	Limit        core.Money `json:"limit"`
	CreatedAt    time.Time  `json:"created_at"`
}

func newBudgetResponse(b core.Budget) budgetResponse {
	return budgetResponse{
		ID:           b.ID,
		UserID:       b.UserID,
		UserName:     b.UserName,
		CategoryID:   b.CategoryID,
		CategoryName: b.CategoryName,
		Year:         b.Period.Year,
		Month:        b.Period.Month,
		Limit:        b.Limit,
		CreatedAt:    b.CreatedAt,
	}
}

type aggregateResponse struct {
	TotalSpent       core.Money `json:"total_spent"`
	TotalBudgeted    core.Money `json:"total_budgeted"`
	TransactionCount int        `json:"transaction_count"`
	TopCategory      *string    `json:"top_category"`
}

func newAggregateResponse(a core.MonthlyAggregate) aggregateResponse {
	return aggregateResponse{
		TotalSpent:       a.TotalSpent,
		TotalBudgeted:    a.TotalBudgeted,
		TransactionCount: a.TransactionCount,
		TopCategory:      a.TopCategory,
	}
}

type previewResponse struct {
	UserID int64 `json:"user_id"`
	Year   int   `json:"year"`
	Month  int   `json:"month"`
	aggregateResponse
}

type summaryResponse struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"user_id"`
	UserName string `json:"user_name"`
	Year     int    `json:"year"`
	Month    int    `json:"month"`
	aggregateResponse
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newSummaryResponse(s core.Summary) summaryResponse {
	return summaryResponse{
		ID:                s.ID,
		UserID:            s.UserID,
		UserName:          s.UserName,
		Year:              s.Period.Year,
		Month:             s.Period.Month,
		aggregateResponse: newAggregateResponse(s.MonthlyAggregate),
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

type categoryAmountResponse struct {
	Name   string     `json:"name"`
	Amount core.Money `json:"amount"`
}

type dashboardResponse struct {
	Year            int                      `json:"year"`
	Month           int                      `json:"month"`
	Users           int                      `json:"users"`
	Cards           int                      `json:"cards"`
	Categories      int                      `json:"categories"`
	Expenses        int                      `json:"expenses"`
	PeriodSpent     core.Money               `json:"period_spent"`
	PeriodBudgets   []budgetResponse         `json:"period_budgets"`
	SpentByCategory []categoryAmountResponse `json:"spent_by_category"`
}

func newDashboardResponse(d core.Dashboard) dashboardResponse {
	out := dashboardResponse{
		Year:            d.Period.Year,
		Month:           d.Period.Month,
		Users:           d.Users,
		Cards:           d.Cards,
		Categories:      d.Categories,
		Expenses:        d.Expenses,
		PeriodSpent:     d.PeriodSpent,
		PeriodBudgets:   mapSlice(d.PeriodBudgets, newBudgetResponse),
		SpentByCategory: make([]categoryAmountResponse, 0, len(d.SpentByCategory)),
	}
	for _, c := range d.SpentByCategory {
		out.SpentByCategory = append(out.SpentByCategory, categoryAmountResponse{Name: c.Name, Amount: c.Amount})
	}
	return out
}

// mapSlice never returns nil so empty lists encode as [].
func mapSlice[T, R any](in []T, fn func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
