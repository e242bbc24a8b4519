package core

import (
	"strings"
	"time"
)

const (
	// DefaultCategoryColor is used when a category is created without a color.
	DefaultCategoryColor = "#743014"

	// DateLayout is the storage and wire format of expense dates.
	DateLayout = "2006-01-02"
)

// DefaultCardLimit is the credit limit assigned to cards created without one.
var DefaultCardLimit = Money{Cents: 500000}

type (
	Date struct {
		time.Time
	}

	User struct {
		ID        int64
		Name      string
		Email     string
		CreatedAt time.Time
	}

	Card struct {
		ID        int64
		Name      string
		UserID    int64
		Limit     Money
		CreatedAt time.Time

		UserName string // read-only, filled by list queries
	}

	Category struct {
		ID          int64
		Name        string
		Description string
		Color       string
		CreatedAt   time.Time
	}

	Expense struct {
		ID          int64
		Description string
		Amount      Money
		CardID      int64
		UserID      int64
		CategoryID  *int64 // nil when uncategorized
		Date        Date
		CreatedAt   time.Time

		CardName     string // read-only
		CategoryName string // read-only, empty when uncategorized
	}

	Budget struct {
		ID         int64
		UserID     int64
		CategoryID int64
		Period     Period
		Limit      Money
		CreatedAt  time.Time

		UserName     string // read-only
		CategoryName string // read-only
	}
)

// SeedCategories is the fixed set created on first run when no category exists.
var SeedCategories = []Category{
	{Name: "Alimentação", Description: "Gastos com comida e bebida", Color: "#FF6B6B"},
	{Name: "Transporte", Description: "Combustível, táxi, metrô", Color: "#4ECDC4"},
	{Name: "Saúde", Description: "Medicamentos, consultas, academia", Color: "#45B7D1"},
	{Name: "Entretenimento", Description: "Lazer, cinema, games", Color: "#96CEB4"},
	{Name: "Educação", Description: "Cursos, livros, mensalidade", Color: "#FFEAA7"},
	{Name: "Compras", Description: "Roupas, eletrônicos, diversos", Color: "#DDA0DD"},
	{Name: "Utilidades", Description: "Contas, internet, telefone", Color: "#87CEEB"},
	{Name: "Outros", Description: "Despesas diversas", Color: "#D3D3D3"},
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// Today returns the current calendar date in UTC.
func Today(now time.Time) Date {
	y, m, d := now.Date()
	return NewDate(y, int(m), d)
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// Period returns the calendar month the date falls in.
func (d Date) Period() Period {
	return Period{Year: d.Year(), Month: int(d.Month())}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (u User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (c Card) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.UserID <= 0 {
		return ErrMissingUser
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if e.CardID <= 0 {
		return ErrMissingCard
	}
	if e.CategoryID != nil && *e.CategoryID <= 0 {
		return ErrMissingCategory
	}
	return e.Date.Validate()
}

func (b Budget) Validate() error {
	if b.UserID <= 0 {
		return ErrMissingUser
	}
	if b.CategoryID <= 0 {
		return ErrMissingCategory
	}
	return b.Period.Validate()
}
