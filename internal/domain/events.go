package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeTransactionCreated = "transaction.created"
	EventTypeTransactionUpdated = "transaction.updated"
	EventTypeTransactionDeleted = "transaction.deleted"
)

// TransactionEvent records a successful write to a transaction.
type TransactionEvent struct {
	OccurredAt    time.Time       `json:"occurred_at"`
	ID            string          `json:"id"`
	EventType     string          `json:"event_type"`
	OwnerID       string          `json:"owner_id"`
	TransactionID string          `json:"transaction_id"`
	Type          TransactionType `json:"type"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
}

// NewTransactionEvent captures t as it was when eventType happened.
func NewTransactionEvent(id, eventType string, t *Transaction, at time.Time) *TransactionEvent {
	return &TransactionEvent{
		OccurredAt:    at.UTC(),
		ID:            id,
		EventType:     eventType,
		OwnerID:       t.OwnerID,
		TransactionID: t.ID,
		Type:          t.Type,
		Category:      t.Category,
		Amount:        t.Amount,
	}
}
