package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/fintrack/internal/adapter/http/dto"
	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/usecase"
)

// TransactionService defines the transaction operations the handler needs.
type TransactionService interface {
	Create(ctx context.Context, input usecase.CreateTransactionInput) (*domain.Transaction, error)
	Update(ctx context.Context, input usecase.UpdateTransactionInput) (*domain.Transaction, error)
	Delete(ctx context.Context, ownerID, id string) error
	Get(ctx context.Context, ownerID, id string) (*domain.Transaction, error)
	List(ctx context.Context, ownerID string) ([]*domain.Transaction, error)
}

// TransactionHandler handles transaction HTTP requests.
type TransactionHandler struct {
	transactions TransactionService
	loc          *time.Location
}

// NewTransactionHandler creates a new TransactionHandler. Filter dates are
// read as calendar days in loc.
func NewTransactionHandler(transactions TransactionService, loc *time.Location) *TransactionHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &TransactionHandler{transactions: transactions, loc: loc}
}

// Create handles POST /transactions.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.TransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToCreateInput(user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	tx, err := h.transactions.Create(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(tx))
}

// Get handles GET /transactions/{id}.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	tx, err := h.transactions.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(tx))
}

// Update handles PUT /transactions/{id}.
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dto.TransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.ToUpdateInput(user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	tx, err := h.transactions.Update(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(tx))
}

// Delete handles DELETE /transactions/{id}.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.transactions.Delete(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /transactions with the dashboard filters.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	criteria, err := dto.FilterFromQuery(r.URL.Query()).ToCriteria(h.loc)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	all, err := h.transactions.List(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	filtered := domain.Filter(all, criteria.Effective())
	resp := dto.TransactionListResponse{
		Transactions: dto.TransactionsFromDomain(filtered),
		Count:        len(filtered),
	}
	if warning := criteria.Validate(); warning != nil {
		resp.Warning = warning.Error()
	}

	writeJSON(w, http.StatusOK, resp)
}
