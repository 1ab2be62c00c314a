package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/fintrack/internal/adapter/http/dto"
	"github.com/iho/fintrack/internal/domain"
)

func summaryStub() *dashboardServiceStub {
	return &dashboardServiceStub{
		summaryFn: func(_ context.Context, _ string, c domain.Criteria) (domain.Summary, error) {
			snapshot := []*domain.Transaction{
				{ID: "a", Type: domain.TransactionTypeIncome, Category: "Salário", Amount: decimal.NewFromInt(100), CreatedAt: time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)},
				{ID: "b", Type: domain.TransactionTypeExpense, Category: "", Amount: decimal.NewFromInt(40), CreatedAt: time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)},
			}
			return domain.Summarize(snapshot, c), nil
		},
	}
}

func TestDashboardHandler_Summary(t *testing.T) {
	h := NewDashboardHandler(summaryStub(), zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Summary(rec, withUser(httptest.NewRequest(http.MethodGet, "/dashboard?type=income", nil), "u"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.SummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 1 || !resp.Totals.Balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected summary %+v", resp)
	}
	if resp.Criteria.Type != "income" {
		t.Fatalf("expected criteria echo, got %+v", resp.Criteria)
	}
}

func TestDashboardHandler_SummaryWarningAndErrors(t *testing.T) {
	h := NewDashboardHandler(summaryStub(), zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Summary(rec, withUser(httptest.NewRequest(http.MethodGet, "/dashboard?start=2024-03-01&end=2024-01-01", nil), "u"))
	if rec.Code != http.StatusOK {
		t.Fatalf("inverted range must not fail, got %d", rec.Code)
	}
	var resp dto.SummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Warning == "" || resp.Count != 2 {
		t.Fatalf("expected unbounded view with a warning, got %+v", resp)
	}

	rec = httptest.NewRecorder()
	h.Summary(rec, withUser(httptest.NewRequest(http.MethodGet, "/dashboard?type=refund", nil), "u"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a bad type, got %d", rec.Code)
	}

	failing := NewDashboardHandler(&dashboardServiceStub{
		summaryFn: func(context.Context, string, domain.Criteria) (domain.Summary, error) {
			return domain.Summary{}, errors.New("store offline")
		},
	}, zerolog.Nop())
	rec = httptest.NewRecorder()
	failing.Summary(rec, withUser(httptest.NewRequest(http.MethodGet, "/dashboard", nil), "u"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestDashboardHandler_ExportCSV(t *testing.T) {
	svc := summaryStub()
	h := NewDashboardHandler(svc, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.ExportCSV(rec, withUser(httptest.NewRequest(http.MethodGet, "/dashboard/export.csv?type=expense", nil), "u"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type %s", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="transacoes.csv"` {
		t.Fatalf("unexpected disposition %s", cd)
	}

	want := "Tipo;Categoria;Valor;Data\ngasto;-;40.00;01/02/2024\n"
	if rec.Body.String() != want {
		t.Fatalf("unexpected csv %q", rec.Body.String())
	}
	if len(svc.exports) != 1 || svc.exports[0] != "csv" {
		t.Fatalf("expected export to be recorded, got %v", svc.exports)
	}
}

func TestDashboardHandler_ExportPDF(t *testing.T) {
	svc := summaryStub()
	h := NewDashboardHandler(svc, zerolog.Nop())
	h.now = func() time.Time { return time.Date(2024, 5, 1, 13, 45, 7, 123e6, time.UTC) }

	rec := httptest.NewRecorder()
	h.ExportPDF(rec, withUser(httptest.NewRequest(http.MethodGet, "/dashboard/export.pdf", nil), "u"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="transacoes_2024-05-01T13-45-07-123Z.pdf"` {
		t.Fatalf("unexpected disposition %s", cd)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Fatal("expected a PDF document")
	}
	if len(svc.exports) != 1 || svc.exports[0] != "pdf" {
		t.Fatalf("expected export to be recorded, got %v", svc.exports)
	}
}

func TestCategoryHandler_List(t *testing.T) {
	var gotFilter domain.TypeFilter
	h := NewCategoryHandler(&dashboardServiceStub{
		categoriesFn: func(_ context.Context, _ string, filter domain.TypeFilter) ([]string, error) {
			gotFilter = filter
			return []string{"Salário"}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.List(rec, withUser(httptest.NewRequest(http.MethodGet, "/categories?type=ganho", nil), "u"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotFilter != domain.TypeFilter(domain.TransactionTypeIncome) {
		t.Fatalf("expected legacy label to map to income, got %q", gotFilter)
	}

	var resp dto.CategoriesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Type != "income" || len(resp.Categories) != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}

	rec = httptest.NewRecorder()
	h.List(rec, withUser(httptest.NewRequest(http.MethodGet, "/categories?type=refund", nil), "u"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	ok := HealthCheck{Name: "store", Ping: func(context.Context) error { return nil }}
	down := HealthCheck{Name: "redis", Ping: func(context.Context) error { return errors.New("refused") }}

	rec := httptest.NewRecorder()
	NewHealthHandler(ok).Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"store":"ok"`) {
		t.Fatalf("expected ready, got %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	NewHealthHandler(ok, down).Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "redis unhealthy") {
		t.Fatalf("expected 503, got %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	NewHealthHandler(down).Liveness(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("liveness must not ping dependencies, got %d", rec.Code)
	}
}
