package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/fintrack/internal/domain"
)

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Category  string          `json:"category"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// TransactionFromDomain converts domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:        t.ID,
		Type:      string(t.Type),
		Category:  t.Category,
		Amount:    t.Amount,
		CreatedAt: t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(transactions []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(transactions))
	for i, t := range transactions {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// UserResponse represents a profile in API responses.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// UserFromDomain converts domain user to response.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      *UserResponse `json:"user"`
}

// TotalsResponse represents income, expense and balance.
type TotalsResponse struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// MonthlyResponse is one point of the monthly series.
type MonthlyResponse struct {
	Month   string          `json:"month"`
	Period  string          `json:"period"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// CategoryAmountResponse is one row of the category breakdown.
type CategoryAmountResponse struct {
	Category string          `json:"category"`
	Type     string          `json:"type"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

// CriteriaResponse echoes the criteria a summary was computed with.
type CriteriaResponse struct {
	Type     string `json:"type"`
	Category string `json:"category"`
	Start    string `json:"start,omitempty"`
	End      string `json:"end,omitempty"`
}

// SummaryResponse represents the dashboard in API responses.
type SummaryResponse struct {
	Criteria            CriteriaResponse         `json:"criteria"`
	Warning             string                   `json:"warning,omitempty"`
	Totals              TotalsResponse           `json:"totals"`
	Monthly             []MonthlyResponse        `json:"monthly"`
	Categories          []CategoryAmountResponse `json:"categories"`
	AvailableCategories []string                 `json:"available_categories"`
	Transactions        []*TransactionResponse   `json:"transactions"`
	Count               int                      `json:"count"`
}

// SummaryFromDomain converts a domain summary to response.
func SummaryFromDomain(s domain.Summary) *SummaryResponse {
	resp := &SummaryResponse{
		Criteria: criteriaFromDomain(s.Criteria),
		Totals: TotalsResponse{
			Income:  s.Totals.Income,
			Expense: s.Totals.Expense,
			Balance: s.Totals.Balance,
		},
		Monthly:             make([]MonthlyResponse, len(s.Monthly)),
		Categories:          make([]CategoryAmountResponse, len(s.Categories)),
		AvailableCategories: s.AvailableCategories,
		Transactions:        TransactionsFromDomain(s.Transactions),
		Count:               s.Count,
	}
	if s.Warning != nil {
		resp.Warning = s.Warning.Error()
	}
	if resp.AvailableCategories == nil {
		resp.AvailableCategories = []string{}
	}

	for i, p := range s.Monthly {
		resp.Monthly[i] = MonthlyResponse{
			Month:   p.Month.Format("2006-01"),
			Period:  p.Period,
			Income:  p.Income,
			Expense: p.Expense,
		}
	}
	for i, c := range s.Categories {
		resp.Categories[i] = CategoryAmountResponse{
			Category: c.Category,
			Type:     string(c.Type),
			Total:    c.Total,
			Count:    c.Count,
		}
	}
	return resp
}

func criteriaFromDomain(c domain.Criteria) CriteriaResponse {
	resp := CriteriaResponse{
		Type:     string(c.Type),
		Category: c.Category,
	}
	if resp.Type == "" {
		resp.Type = domain.FilterAll
	}
	if resp.Category == "" {
		resp.Category = domain.FilterAll
	}
	if c.DateStart != nil {
		resp.Start = c.DateStart.Format(domain.DateLayout)
	}
	if c.DateEnd != nil {
		resp.End = c.DateEnd.Format(domain.DateLayout)
	}
	return resp
}

// CategoriesResponse lists the categories offered for a type filter.
type CategoriesResponse struct {
	Type       string   `json:"type"`
	Categories []string `json:"categories"`
}

// Live dashboard server events.
const (
	EventSummary      = "summary"
	EventNotification = "notification"

	LevelSuccess = "success"
	LevelError   = "error"
)

// LiveEvent is a server frame on the live dashboard socket.
type LiveEvent struct {
	Event   string           `json:"event"`
	Data    *SummaryResponse `json:"data,omitempty"`
	Level   string           `json:"level,omitempty"`
	Message string           `json:"message,omitempty"`
}

// SummaryEvent wraps s in a summary frame.
func SummaryEvent(s domain.Summary) LiveEvent {
	return LiveEvent{Event: EventSummary, Data: SummaryFromDomain(s)}
}

// NotificationEvent builds a transient notification frame.
func NotificationEvent(level, message string) LiveEvent {
	return LiveEvent{Event: EventNotification, Level: level, Message: message}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// TransactionListResponse is a filtered list of transactions.
type TransactionListResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Count        int                    `json:"count"`
	Warning      string                 `json:"warning,omitempty"`
}
