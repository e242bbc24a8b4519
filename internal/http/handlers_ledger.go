package http

import (
	"context"
	"net/http"

	"gastos/internal/storage"
)

// Users

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.ledger.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, err, "/users")
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(users, newUserResponse))
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, "/users")
		return
	}
	u, err := s.ledger.CreateUser(r.Context(), req.toCore(0))
	if err != nil {
		writeError(w, r, err, "/users")
		return
	}
	writeJSON(w, http.StatusCreated, newUserResponse(u))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, "/users")
		return
	}
	u, err := s.ledger.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "/users")
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(u))
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, "/users")
		return
	}
	var req userRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, "/users")
		return
	}
	u, err := s.ledger.UpdateUser(r.Context(), req.toCore(id))
	if err != nil {
		writeError(w, r, err, "/users")
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(u))
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, "/users", s.ledger.DeleteUser)
}

// Cards

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	userID, err := queryID(r.URL.Query(), "user_id")
	if err != nil {
		writeError(w, r, err, "/cards")
		return
	}
	cards, err := s.ledger.ListCards(r.Context(), storage.CardFilter{UserID: userID})
	if err != nil {
		writeError(w, r, err, "/cards")
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(cards, newCardResponse))
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, "/cards")
		return
	}
	c, err := s.ledger.CreateCard(r.Context(), req.toCore(0))
	if err != nil {
		writeError(w, r, err, "/cards")
		return
	}
	writeJSON(w, http.StatusCreated, newCardResponse(c))
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, "/cards")
		return
	}
	c, err := s.ledger.GetCard(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "/cards")
		return
	}
	writeJSON(w, http.StatusOK, newCardResponse(c))
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, "/cards")
		return
	}
	var req cardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, "/cards")
		return
	}
	c, err := s.ledger.UpdateCard(r.Context(), req.toCore(id))
	if err != nil {
		writeError(w, r, err, "/cards")
		return
	}
	writeJSON(w, http.StatusOK, newCardResponse(c))
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, "/cards", s.ledger.DeleteCard)
}

// Categories

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.ledger.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err, "/categories")
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(cats, newCategoryResponse))
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, "/categories")
		return
	}
	c, err := s.ledger.CreateCategory(r.Context(), req.toCore(0))
	if err != nil {
		writeError(w, r, err, "/categories")
		return
	}
	writeJSON(w, http.StatusCreated, newCategoryResponse(c))
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, "/categories")
		return
	}
	c, err := s.ledger.GetCategory(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "/categories")
		return
	}
	writeJSON(w, http.StatusOK, newCategoryResponse(c))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, "/categories")
		return
	}
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, "/categories")
		return
	}
	c, err := s.ledger.UpdateCategory(r.Context(), req.toCore(id))
	if err != nil {
		writeError(w, r, err, "/categories")
		return
	}
	writeJSON(w, http.StatusOK, newCategoryResponse(c))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, "/categories", s.ledger.DeleteCategory)
}

// Expenses

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		f   storage.ExpenseFilter
		err error
	)
	if f.UserID, err = queryID(q, "user_id"); err == nil {
		if f.CardID, err = queryID(q, "card_id"); err == nil {
			f.Period, err = parseOptionalPeriod(q, s.now())
		}
	}
	if err != nil {
		writeError(w, r, err, "/expenses")
		return
	}

	expenses, err := s.ledger.ListExpenses(r.Context(), f)
	if err != nil {
		writeError(w, r, err, "/expenses")
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(expenses, newExpenseResponse))
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, "/expenses")
		return
	}
	e, err := req.toCore(0)
	if err == nil {
		e, err = s.ledger.CreateExpense(r.Context(), e)
	}
	if err != nil {
		writeError(w, r, err, "/expenses")
		return
	}
	writeJSON(w, http.StatusCreated, newExpenseResponse(e))
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, "/expenses")
		return
	}
	e, err := s.ledger.GetExpense(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "/expenses")
		return
	}
	writeJSON(w, http.StatusOK, newExpenseResponse(e))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, "/expenses")
		return
	}
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, "/expenses")
		return
	}
	e, err := req.toCore(id)
	if err == nil {
		e, err = s.ledger.UpdateExpense(r.Context(), e)
	}
	if err != nil {
		writeError(w, r, err, "/expenses")
		return
	}
	writeJSON(w, http.StatusOK, newExpenseResponse(e))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, "/expenses", s.ledger.DeleteExpense)
}

// Budgets

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		f   storage.BudgetFilter
		err error
	)
	if f.UserID, err = queryID(q, "user_id"); err == nil {
		f.Period, err = parseOptionalPeriod(q, s.now())
	}
	if err != nil {
		writeError(w, r, err, "/budgets")
		return
	}

	budgets, err := s.ledger.ListBudgets(r.Context(), f)
	if err != nil {
		writeError(w, r, err, "/budgets")
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(budgets, newBudgetResponse))
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, "/budgets")
		return
	}
	b, err := s.ledger.CreateBudget(r.Context(), req.toCore(0))
	if err != nil {
		writeError(w, r, err, "/budgets")
		return
	}
	writeJSON(w, http.StatusCreated, newBudgetResponse(b))
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, "/budgets")
		return
	}
	b, err := s.ledger.GetBudget(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "/budgets")
		return
	}
	writeJSON(w, http.StatusOK, newBudgetResponse(b))
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, "/budgets")
		return
	}
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, "/budgets")
		return
	}
	b, err := s.ledger.UpdateBudget(r.Context(), req.toCore(id))
	if err != nil {
		writeError(w, r, err, "/budgets")
		return
	}
	writeJSON(w, http.StatusOK, newBudgetResponse(b))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, "/budgets", s.ledger.DeleteBudget)
}

// handleDelete answers 204 whether or not the record existed.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, recovery string, del func(ctx context.Context, id int64) error) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, recovery)
		return
	}
	if err := del(r.Context(), id); err != nil {
		writeError(w, r, err, recovery)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
