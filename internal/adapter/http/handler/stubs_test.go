package handler

import (
	"context"
	"time"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/usecase"
)

type transactionServiceStub struct {
	createFn func(ctx context.Context, input usecase.CreateTransactionInput) (*domain.Transaction, error)
	updateFn func(ctx context.Context, input usecase.UpdateTransactionInput) (*domain.Transaction, error)
	deleteFn func(ctx context.Context, ownerID, id string) error
	getFn    func(ctx context.Context, ownerID, id string) (*domain.Transaction, error)
	listFn   func(ctx context.Context, ownerID string) ([]*domain.Transaction, error)
}

func (s *transactionServiceStub) Create(ctx context.Context, input usecase.CreateTransactionInput) (*domain.Transaction, error) {
	return s.createFn(ctx, input)
}

func (s *transactionServiceStub) Update(ctx context.Context, input usecase.UpdateTransactionInput) (*domain.Transaction, error) {
	return s.updateFn(ctx, input)
}

func (s *transactionServiceStub) Delete(ctx context.Context, ownerID, id string) error {
	return s.deleteFn(ctx, ownerID, id)
}

func (s *transactionServiceStub) Get(ctx context.Context, ownerID, id string) (*domain.Transaction, error) {
	return s.getFn(ctx, ownerID, id)
}

func (s *transactionServiceStub) List(ctx context.Context, ownerID string) ([]*domain.Transaction, error) {
	return s.listFn(ctx, ownerID)
}

type dashboardServiceStub struct {
	summaryFn    func(ctx context.Context, ownerID string, c domain.Criteria) (domain.Summary, error)
	categoriesFn func(ctx context.Context, ownerID string, filter domain.TypeFilter) ([]string, error)
	exports      []string
}

func (s *dashboardServiceStub) Location() *time.Location { return time.UTC }

func (s *dashboardServiceStub) Summary(ctx context.Context, ownerID string, c domain.Criteria) (domain.Summary, error) {
	return s.summaryFn(ctx, ownerID, c)
}

func (s *dashboardServiceStub) Categories(ctx context.Context, ownerID string, filter domain.TypeFilter) ([]string, error) {
	return s.categoriesFn(ctx, ownerID, filter)
}

func (s *dashboardServiceStub) RecordExport(format string) {
	s.exports = append(s.exports, format)
}

type userServiceStub struct {
	registerFn     func(ctx context.Context, input usecase.RegisterInput) (*domain.User, error)
	authenticateFn func(ctx context.Context, input usecase.AuthenticateInput) (*domain.User, error)
	profileFn      func(ctx context.Context, id string) (*domain.User, error)
}

func (s *userServiceStub) Register(ctx context.Context, input usecase.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, input)
}

func (s *userServiceStub) Authenticate(ctx context.Context, input usecase.AuthenticateInput) (*domain.User, error) {
	return s.authenticateFn(ctx, input)
}

func (s *userServiceStub) GetProfile(ctx context.Context, id string) (*domain.User, error) {
	return s.profileFn(ctx, id)
}

type tokenIssuerStub struct {
	err error
}

func (s tokenIssuerStub) Generate(user *domain.User) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "token-" + user.ID, nil
}

func (tokenIssuerStub) TokenDuration() time.Duration { return time.Hour }

type authRecorderStub struct {
	attempts []string
}

func (r *authRecorderStub) AuthAttempt(kind, status string) {
	r.attempts = append(r.attempts, kind+":"+status)
}
