package handler

import (
	"net/http"

	"github.com/iho/fintrack/internal/adapter/http/dto"
	"github.com/iho/fintrack/internal/domain"
)

// CategoryHandler serves the category options of the filter and the
// transaction form.
type CategoryHandler struct {
	dashboard DashboardService
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(dashboard DashboardService) *CategoryHandler {
	return &CategoryHandler{dashboard: dashboard}
}

// List handles GET /categories?type=.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	filter, err := domain.ParseTypeFilter(r.URL.Query().Get("type"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	categories, err := h.dashboard.Categories(r.Context(), user.ID, filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CategoriesResponse{
		Type:       string(filter),
		Categories: categories,
	})
}
