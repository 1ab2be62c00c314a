package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/fintrack/internal/adapter/export"
	"github.com/iho/fintrack/internal/adapter/http/dto"
	"github.com/iho/fintrack/internal/domain"
)

// DashboardService defines the read side the dashboard handlers need.
type DashboardService interface {
	Location() *time.Location
	Summary(ctx context.Context, ownerID string, c domain.Criteria) (domain.Summary, error)
	Categories(ctx context.Context, ownerID string, filter domain.TypeFilter) ([]string, error)
	RecordExport(format string)
}

// DashboardHandler serves the dashboard summary and its exports.
type DashboardHandler struct {
	dashboard DashboardService
	logger    zerolog.Logger
	now       func() time.Time
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboard DashboardService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		logger:    logger,
		now:       time.Now,
	}
}

// Summary handles GET /dashboard.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.summary(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, dto.SummaryFromDomain(summary))
}

// ExportCSV handles GET /dashboard/export.csv. The filtered view is
// exported, not the whole history.
func (h *DashboardHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.summary(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, summary.Transactions, summary.Criteria.Loc()); err != nil {
		h.logger.Error().Err(err).Msg("csv export failed")
		writeError(w, http.StatusInternalServerError, "export failed", err.Error())
		return
	}

	h.dashboard.RecordExport(string(export.FormatCSV))
	writeAttachment(w, export.ContentTypeCSV, export.CSVFileName, buf.Bytes())
}

// ExportPDF handles GET /dashboard/export.pdf.
func (h *DashboardHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.summary(w, r)
	if !ok {
		return
	}

	now := h.now()
	report := export.BuildReport(summary.Transactions, summary.Criteria.Loc(), now)

	var buf bytes.Buffer
	if err := export.WritePDF(&buf, report); err != nil {
		h.logger.Error().Err(err).Msg("pdf export failed")
		writeError(w, http.StatusInternalServerError, "export failed", err.Error())
		return
	}

	h.dashboard.RecordExport(string(export.FormatPDF))
	writeAttachment(w, export.ContentTypePDF, export.ReportFileName(now), buf.Bytes())
}

func (h *DashboardHandler) summary(w http.ResponseWriter, r *http.Request) (domain.Summary, bool) {
	user, ok := currentUser(w, r)
	if !ok {
		return domain.Summary{}, false
	}

	criteria, err := dto.FilterFromQuery(r.URL.Query()).ToCriteria(h.dashboard.Location())
	if err != nil {
		writeDomainError(w, err)
		return domain.Summary{}, false
	}

	summary, err := h.dashboard.Summary(r.Context(), user.ID, criteria)
	if err != nil {
		writeDomainError(w, err)
		return domain.Summary{}, false
	}
	return summary, true
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
