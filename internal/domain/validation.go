package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrAmountTooLarge  = errors.New("amount exceeds maximum allowed")
	ErrAmountTooSmall  = errors.New("amount below minimum allowed")
	ErrInvalidEmail    = errors.New("invalid email format")
	ErrPasswordTooWeak = errors.New("password does not meet requirements")
	ErrInvalidName     = errors.New("invalid name")
)

// Validation constants
const (
	MaxCategoryLength = 120
	MaxNameLength     = 255
	MaxAmount         = "1000000000000" // 1 trillion
	MinAmount         = "0.01"
	MinPasswordLength = 8
	MaxPasswordLength = 128
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	hasUpper   = regexp.MustCompile(`[A-Z]`)
	hasLower   = regexp.MustCompile(`[a-z]`)
	hasNumber  = regexp.MustCompile(`[0-9]`)

	minAmount = decimal.RequireFromString(MinAmount)
	maxAmount = decimal.RequireFromString(MaxAmount)
)

// ValidateAmount validates a transaction amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if amount.LessThan(minAmount) {
		return fmt.Errorf("%w: minimum amount is %s", ErrAmountTooSmall, MinAmount)
	}

	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxAmount)
	}

	return nil
}

// ValidateCategory requires a non-blank label. Labels outside the catalog
// are allowed.
func ValidateCategory(category string) error {
	category = strings.TrimSpace(category)

	if category == "" {
		return ErrEmptyCategory
	}

	if utf8.RuneCountInString(category) > MaxCategoryLength {
		return fmt.Errorf("%w: %d characters max", ErrCategoryTooLong, MaxCategoryLength)
	}

	return nil
}

// ValidateTransaction checks the user-supplied fields of t.
func ValidateTransaction(t *Transaction) error {
	if !t.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidTransactionType, t.Type)
	}
	if err := ValidateCategory(t.Category); err != nil {
		return err
	}
	return ValidateAmount(t.Amount)
}

// ValidateName validates a display name.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}

	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, MaxNameLength)
	}

	return nil
}

// ValidateEmail validates email format
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}

	return nil
}

// NormalizeEmail lower-cases and trims an address.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// ValidatePassword validates password strength
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrPasswordTooWeak, MinPasswordLength)
	}

	if len(password) > MaxPasswordLength {
		return fmt.Errorf("%w: must not exceed %d characters", ErrPasswordTooWeak, MaxPasswordLength)
	}

	if !hasUpper.MatchString(password) || !hasLower.MatchString(password) || !hasNumber.MatchString(password) {
		return fmt.Errorf("%w: must contain uppercase, lowercase, and numbers", ErrPasswordTooWeak)
	}

	return nil
}
