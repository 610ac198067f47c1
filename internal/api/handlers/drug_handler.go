package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/drugreco/drugreco/backend/internal/domain/entities"
)

// DrugSuggester defines the handler dependency for name suggestions.
type DrugSuggester interface {
	Suggest(ctx context.Context, query string, limit int) ([]*entities.Drug, error)
}

// DrugHandler handles drug catalog requests
type DrugHandler struct {
	suggester DrugSuggester
}

// NewDrugHandler creates a new drug handler
func NewDrugHandler(suggester DrugSuggester) *DrugHandler {
	return &DrugHandler{suggester: suggester}
}

// SuggestDrugs handles GET /api/clinical/drugs/suggest
func (h *DrugHandler) SuggestDrugs(w http.ResponseWriter, r *http.Request) {
	if h.suggester == nil {
		respondWithError(w, http.StatusServiceUnavailable, "drug suggestions are not configured")
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 50 {
			respondWithError(w, http.StatusBadRequest, "limit must be between 1 and 50")
			return
		}
		limit = parsed
	}

	drugs, err := h.suggester.Suggest(r.Context(), query, limit)
	if err != nil {
		respondWithAppError(w, err, "failed to suggest drugs")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": drugs,
		"count":       len(drugs),
	})
}
