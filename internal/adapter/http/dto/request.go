package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/usecase"
)

// RegisterRequest represents a request to create an account holder.
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// ToUseCaseInput converts to use case input.
func (r *RegisterRequest) ToUseCaseInput() usecase.RegisterInput {
	return usecase.RegisterInput{
		Email:    r.Email,
		Name:     r.Name,
		Password: r.Password,
	}
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ToUseCaseInput converts to use case input.
func (r *LoginRequest) ToUseCaseInput() usecase.AuthenticateInput {
	return usecase.AuthenticateInput{
		Email:    r.Email,
		Password: r.Password,
	}
}

// Amount is a decimal amount sent either as a JSON number or as a string.
// Strings may use a comma as the decimal separator.
type Amount string

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}
	*a = Amount(b)
	return nil
}

// TransactionRequest represents a create or update of a transaction.
type TransactionRequest struct {
	Type     string `json:"type"`
	Category string `json:"category"`
	Amount   Amount `json:"amount"`
}

// ToDraft validates the wire fields and converts them to a draft.
func (r *TransactionRequest) ToDraft() (usecase.TransactionDraft, error) {
	t, err := domain.ParseTransactionType(r.Type)
	if err != nil {
		return usecase.TransactionDraft{}, err
	}

	amount, err := domain.ParseAmount(string(r.Amount))
	if err != nil {
		return usecase.TransactionDraft{}, err
	}

	return usecase.TransactionDraft{
		Type:     t,
		Category: r.Category,
		Amount:   amount,
	}, nil
}

// ToCreateInput converts to use case input for ownerID.
func (r *TransactionRequest) ToCreateInput(ownerID string) (usecase.CreateTransactionInput, error) {
	d, err := r.ToDraft()
	if err != nil {
		return usecase.CreateTransactionInput{}, err
	}
	return usecase.CreateTransactionInput{
		OwnerID:  ownerID,
		Type:     d.Type,
		Category: d.Category,
		Amount:   d.Amount,
	}, nil
}

// ToUpdateInput converts to use case input for transaction id of ownerID.
func (r *TransactionRequest) ToUpdateInput(ownerID, id string) (usecase.UpdateTransactionInput, error) {
	d, err := r.ToDraft()
	if err != nil {
		return usecase.UpdateTransactionInput{}, err
	}
	return usecase.UpdateTransactionInput{
		OwnerID:  ownerID,
		ID:       id,
		Type:     d.Type,
		Category: d.Category,
		Amount:   d.Amount,
	}, nil
}

// FilterRequest carries the dashboard filters as sent on the wire.
type FilterRequest struct {
	Type     string `json:"type,omitempty"`
	Category string `json:"category,omitempty"`
	Start    string `json:"start,omitempty"`
	End      string `json:"end,omitempty"`
}

// FilterFromQuery reads the filter query parameters.
func FilterFromQuery(q url.Values) FilterRequest {
	return FilterRequest{
		Type:     q.Get("type"),
		Category: q.Get("category"),
		Start:    q.Get("start"),
		End:      q.Get("end"),
	}
}

// ToCriteria parses the filters with calendar dates interpreted in loc.
// An inverted range is not an error here; the summary reports it.
func (r FilterRequest) ToCriteria(loc *time.Location) (domain.Criteria, error) {
	typ, err := domain.ParseTypeFilter(r.Type)
	if err != nil {
		return domain.Criteria{}, err
	}

	start, err := domain.ParseDate(r.Start, loc)
	if err != nil {
		return domain.Criteria{}, fmt.Errorf("start: %w", err)
	}

	end, err := domain.ParseDate(r.End, loc)
	if err != nil {
		return domain.Criteria{}, fmt.Errorf("end: %w", err)
	}

	return domain.Criteria{
		DateStart: start,
		DateEnd:   end,
		Location:  loc,
		Type:      typ,
		Category:  domain.ParseCategoryFilter(r.Category),
	}, nil
}

// LiveCommand is a client frame on the live dashboard socket.
type LiveCommand struct {
	Action      string              `json:"action"`
	ID          string              `json:"id,omitempty"`
	Filter      FilterRequest       `json:"filter"`
	Transaction *TransactionRequest `json:"transaction,omitempty"`
}

// Live dashboard actions.
const (
	ActionFilter = "filter"
	ActionClear  = "clear"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)
