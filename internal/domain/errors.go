package domain

import "errors"

var (
	// Transaction errors
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrInvalidTransactionType = errors.New("transaction type must be income or expense")
	ErrEmptyCategory          = errors.New("category is required")
	ErrCategoryTooLong        = errors.New("category exceeds maximum length")

	// Filter errors
	ErrInvertedDateRange = errors.New("start date cannot be after end date")
	ErrInvalidDate       = errors.New("invalid date, expected YYYY-MM-DD")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
