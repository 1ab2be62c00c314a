package domain

import (
	"errors"
	"time"
)

// User is an account holder. Every transaction belongs to exactly one user.
type User struct {
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ID             string
	Email          string
	Name           string
	HashedPassword string
}

// Authentication errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)
