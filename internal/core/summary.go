package core

import (
	"fmt"
	"time"
)

// Period is a calendar month of a given year.
type Period struct {
	Year  int
	Month int // 1-12
}

// NewPeriod validates and builds a Period.
func NewPeriod(year, month int) (Period, error) {
	p := Period{Year: year, Month: month}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// CurrentPeriod returns the period containing now.
func CurrentPeriod(now time.Time) Period {
	return Period{Year: now.Year(), Month: int(now.Month())}
}

// Validate rejects months outside 1-12; they are never clamped.
func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return ErrInvalidMonth
	}
	if p.Year < 1 || p.Year > 9999 {
		return ErrInvalidYear
	}
	return nil
}

// Bounds returns the first and the last day of the period, both inclusive.
// Both stay inside the period so their YYYY-MM-DD forms compare correctly as text.
func (p Period) Bounds() (first, last Date) {
	start := time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
	return Date{Time: start}, Date{Time: start.AddDate(0, 1, -1)}
}

// Contains reports whether d falls in the period's calendar month.
func (p Period) Contains(d Date) bool {
	return d.Year() == p.Year && int(d.Month()) == p.Month
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// MonthlyAggregate holds the values derived for one user and period.
type MonthlyAggregate struct {
	TotalSpent       Money
	TotalBudgeted    Money
	TransactionCount int
	TopCategory      *string // nil when no expense has a category
}

// Summary is the stored form of a MonthlyAggregate. It is a cache: it goes
// stale when expenses or budgets change and is only refreshed on request.
type Summary struct {
	ID     int64
	UserID int64
	Period Period
	MonthlyAggregate
	CreatedAt time.Time
	UpdatedAt time.Time

	UserName string // read-only
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// Dashboard is the overview shown on the landing page.
type Dashboard struct {
	Period          Period
	Users           int
	Cards           int
	Categories      int
	Expenses        int
	PeriodSpent     Money
	PeriodBudgets   []Budget
	SpentByCategory []CategoryAmount
}
