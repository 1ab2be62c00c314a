package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a transaction as money coming in or going out.
type TransactionType string

const (
	// TransactionTypeIncome adds to the balance.
	TransactionTypeIncome TransactionType = "income"

	// TransactionTypeExpense subtracts from the balance.
	TransactionTypeExpense TransactionType = "expense"
)

// Legacy labels written by the first version of the app.
const (
	legacyIncomeLabel  = "ganho"
	legacyExpenseLabel = "gasto"
)

// ParseTransactionType normalizes user input into a TransactionType.
// The legacy pt-BR labels are accepted as aliases.
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(TransactionTypeIncome), legacyIncomeLabel:
		return TransactionTypeIncome, nil
	case string(TransactionTypeExpense), legacyExpenseLabel:
		return TransactionTypeExpense, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTransactionType, s)
	}
}

// NormalizeStoredType maps a persisted type to its canonical value,
// folding legacy labels. Values that are not recognised are kept verbatim.
func NormalizeStoredType(raw string) TransactionType {
	if t, err := ParseTransactionType(raw); err == nil {
		return t
	}
	return TransactionType(raw)
}

// IsValid reports whether t drives aggregation math.
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Label returns the pt-BR label used in exports. Unknown values are
// returned as stored.
func (t TransactionType) Label() string {
	switch t {
	case TransactionTypeIncome:
		return legacyIncomeLabel
	case TransactionTypeExpense:
		return legacyExpenseLabel
	default:
		return string(t)
	}
}

// Transaction is a single owner-scoped income or expense record.
type Transaction struct {
	CreatedAt time.Time
	ID        string
	OwnerID   string
	Category  string
	Type      TransactionType
	Amount    decimal.Decimal
}

// SignedAmount returns the contribution of t to the balance.
func (t *Transaction) SignedAmount() decimal.Decimal {
	switch t.Type {
	case TransactionTypeIncome:
		return t.Amount
	case TransactionTypeExpense:
		return t.Amount.Neg()
	default:
		return decimal.Zero
	}
}

// ParseAmount reads a decimal amount, accepting either a dot or a comma as
// the decimal separator.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}
