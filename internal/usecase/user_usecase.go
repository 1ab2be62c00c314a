package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/iho/fintrack/internal/domain"
)

// ErrCacheMiss is returned by a Cache for an absent key.
var ErrCacheMiss = errors.New("cache miss")

// UserUseCase handles registration, credential checks and profile lookup.
type UserUseCase struct {
	userRepo UserRepository
	idGen    IDGenerator
	cache    Cache
	cacheTTL time.Duration
	metrics  Recorder
	logger   zerolog.Logger
}

// UserUseCaseConfig wires a UserUseCase. Cache and Metrics are optional.
type UserUseCaseConfig struct {
	Repo     UserRepository
	IDGen    IDGenerator
	Cache    Cache
	CacheTTL time.Duration
	Metrics  Recorder
	Logger   zerolog.Logger
}

// NewUserUseCase creates a new user use case
func NewUserUseCase(cfg UserUseCaseConfig) *UserUseCase {
	if cfg.Metrics == nil {
		cfg.Metrics = NopRecorder{}
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultProfileCacheTTL
	}
	return &UserUseCase{
		userRepo: cfg.Repo,
		idGen:    cfg.IDGen,
		cache:    cfg.Cache,
		cacheTTL: cfg.CacheTTL,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
	}
}

// RegisterInput represents input for creating a user
type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// Register creates a new user with hashed password
func (uc *UserUseCase) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := domain.NormalizeEmail(input.Email)

	if err := domain.ValidateEmail(email); err != nil {
		uc.metrics.AuthAttempt("register", StatusFailure)
		return nil, err
	}
	if err := domain.ValidateName(input.Name); err != nil {
		uc.metrics.AuthAttempt("register", StatusFailure)
		return nil, err
	}
	if err := domain.ValidatePassword(input.Password); err != nil {
		uc.metrics.AuthAttempt("register", StatusFailure)
		return nil, err
	}

	existing, err := uc.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		uc.metrics.AuthAttempt("register", StatusFailure)
		return nil, domain.ErrEmailTaken
	case err != nil && !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hashedPassword, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:             uc.idGen.Generate(),
		Email:          email,
		Name:           input.Name,
		HashedPassword: hashedPassword,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		uc.metrics.AuthAttempt("register", StatusFailure)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	uc.metrics.AuthAttempt("register", StatusSuccess)

	// Don't return hashed password
	user.HashedPassword = ""
	return user, nil
}

// AuthenticateInput represents authentication input
type AuthenticateInput struct {
	Email    string
	Password string
}

// Authenticate verifies user credentials
func (uc *UserUseCase) Authenticate(ctx context.Context, input AuthenticateInput) (*domain.User, error) {
	user, err := uc.userRepo.GetByEmail(ctx, domain.NormalizeEmail(input.Email))
	if err != nil {
		uc.metrics.AuthAttempt("login", StatusFailure)
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := verifyPassword(user.HashedPassword, input.Password); err != nil {
		uc.metrics.AuthAttempt("login", StatusFailure)
		return nil, domain.ErrInvalidCredentials
	}

	uc.metrics.AuthAttempt("login", StatusSuccess)

	user.HashedPassword = ""
	return user, nil
}

// GetProfile retrieves a user by ID, through the profile cache when one is
// configured.
func (uc *UserUseCase) GetProfile(ctx context.Context, id string) (*domain.User, error) {
	if cached, ok := uc.cachedProfile(ctx, id); ok {
		return cached, nil
	}

	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	user.HashedPassword = ""

	uc.storeProfile(ctx, user)
	return user, nil
}

type cachedUser struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
}

func profileKey(id string) string {
	return "profile:" + id
}

func (uc *UserUseCase) cachedProfile(ctx context.Context, id string) (*domain.User, bool) {
	if uc.cache == nil {
		return nil, false
	}

	raw, err := uc.cache.Get(ctx, profileKey(id))
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			uc.logger.Warn().Err(err).Str("user_id", id).Msg("profile cache read failed")
		}
		return nil, false
	}

	var c cachedUser
	if err := json.Unmarshal(raw, &c); err != nil {
		uc.logger.Warn().Err(err).Str("user_id", id).Msg("discarding corrupt cached profile")
		return nil, false
	}
	return &domain.User{
		ID:        c.ID,
		Email:     c.Email,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}, true
}

func (uc *UserUseCase) storeProfile(ctx context.Context, user *domain.User) {
	if uc.cache == nil {
		return
	}

	raw, err := json.Marshal(cachedUser{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	})
	if err != nil {
		return
	}
	if err := uc.cache.Set(ctx, profileKey(user.ID), raw, uc.cacheTTL); err != nil {
		uc.logger.Warn().Err(err).Str("user_id", user.ID).Msg("profile cache write failed")
	}
}

// hashPassword hashes a password using bcrypt
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// verifyPassword verifies a password against a hash
func verifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
