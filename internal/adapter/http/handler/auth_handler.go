package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/fintrack/internal/adapter/http/dto"
	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/usecase"
)

// UserService defines the user operations the handler needs.
type UserService interface {
	Register(ctx context.Context, input usecase.RegisterInput) (*domain.User, error)
	Authenticate(ctx context.Context, input usecase.AuthenticateInput) (*domain.User, error)
	GetProfile(ctx context.Context, id string) (*domain.User, error)
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Generate(user *domain.User) (string, error)
	TokenDuration() time.Duration
}

// AuthRecorder counts authentication attempts.
type AuthRecorder interface {
	AuthAttempt(kind, status string)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	users   UserService
	tokens  TokenIssuer
	metrics AuthRecorder
	logger  zerolog.Logger
	now     func() time.Time
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users UserService, tokens TokenIssuer, metrics AuthRecorder, logger zerolog.Logger) *AuthHandler {
	if metrics == nil {
		metrics = usecase.NopRecorder{}
	}
	return &AuthHandler{
		users:   users,
		tokens:  tokens,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		h.metrics.AuthAttempt("register", "invalid")
		return
	}

	user, err := h.users.Register(r.Context(), req.ToUseCaseInput())
	if err != nil {
		h.metrics.AuthAttempt("register", "failure")
		writeDomainError(w, err)
		return
	}

	h.issue(w, "register", http.StatusCreated, user)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		h.metrics.AuthAttempt("login", "invalid")
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.ToUseCaseInput())
	if err != nil {
		h.metrics.AuthAttempt("login", "failure")
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials", "")
			return
		}
		writeDomainError(w, err)
		return
	}

	h.issue(w, "login", http.StatusOK, user)
}

// Me returns the profile of the current authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	profile, err := h.users.GetProfile(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.UserFromDomain(profile))
}

func (h *AuthHandler) issue(w http.ResponseWriter, kind string, status int, user *domain.User) {
	token, err := h.tokens.Generate(user)
	if err != nil {
		h.metrics.AuthAttempt(kind, "failure")
		h.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to sign token")
		writeError(w, http.StatusInternalServerError, "failed to generate token", err.Error())
		return
	}

	h.metrics.AuthAttempt(kind, "success")
	writeJSON(w, status, dto.AuthResponse{
		Token:     token,
		ExpiresAt: h.now().Add(h.tokens.TokenDuration()).UTC(),
		User:      dto.UserFromDomain(user),
	})
}
