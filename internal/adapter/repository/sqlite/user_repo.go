package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iho/fintrack/internal/domain"
)

type userRow struct {
	ID             string `db:"id"`
	Email          string `db:"email"`
	Name           string `db:"name"`
	HashedPassword string `db:"hashed_password"`
	CreatedAt      int64  `db:"created_at"`
	UpdatedAt      int64  `db:"updated_at"`
}

// UserRepository implements usecase.UserRepository.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
		INSERT INTO users (id, email, name, hashed_password, created_at, updated_at)
		VALUES (:id, :email, :name, :hashed_password, :created_at, :updated_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, userRow{
		ID:             user.ID,
		Email:          user.Email,
		Name:           user.Name,
		HashedPassword: user.HashedPassword,
		CreatedAt:      user.CreatedAt.UnixMilli(),
		UpdatedAt:      user.UpdatedAt.UnixMilli(),
	})
	if isConstraintViolation(err) {
		return domain.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT * FROM users WHERE id = ?`, id)
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT * FROM users WHERE email = ?`, email)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg string) (*domain.User, error) {
	var row userRow
	if err := r.db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &domain.User{
		ID:             row.ID,
		Email:          row.Email,
		Name:           row.Name,
		HashedPassword: row.HashedPassword,
		CreatedAt:      time.UnixMilli(row.CreatedAt).UTC(),
		UpdatedAt:      time.UnixMilli(row.UpdatedAt).UTC(),
	}, nil
}
