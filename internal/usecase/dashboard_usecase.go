package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/fintrack/internal/domain"
)

// DashboardUseCase computes summaries for request/response callers.
type DashboardUseCase struct {
	repo    TransactionRepository
	metrics Recorder
	loc     *time.Location
}

// NewDashboardUseCase creates a new DashboardUseCase. Criteria without a
// location are evaluated in loc.
func NewDashboardUseCase(repo TransactionRepository, metrics Recorder, loc *time.Location) *DashboardUseCase {
	if metrics == nil {
		metrics = NopRecorder{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardUseCase{repo: repo, metrics: metrics, loc: loc}
}

// Location returns the default evaluation time zone.
func (uc *DashboardUseCase) Location() *time.Location {
	return uc.loc
}

// Summary loads the owner's snapshot and summarizes it under c.
func (uc *DashboardUseCase) Summary(ctx context.Context, ownerID string, c domain.Criteria) (domain.Summary, error) {
	if ownerID == "" {
		return domain.Summary{}, domain.ErrUnauthorized
	}

	snapshot, err := uc.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("failed to load snapshot: %w", err)
	}

	if c.Location == nil {
		c.Location = uc.loc
	}

	start := time.Now()
	s := domain.Summarize(snapshot, c)
	uc.metrics.SummaryComputed(time.Since(start))
	return s, nil
}

// Categories returns the category options for a type filter.
func (uc *DashboardUseCase) Categories(ctx context.Context, ownerID string, filter domain.TypeFilter) ([]string, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}

	snapshot, err := uc.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return domain.AvailableCategories(snapshot, filter), nil
}

// RecordExport counts a generated export file.
func (uc *DashboardUseCase) RecordExport(format string) {
	uc.metrics.ExportGenerated(format)
}
