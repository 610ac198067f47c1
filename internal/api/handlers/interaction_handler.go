package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/drugreco/drugreco/backend/internal/application/services"
)

// InteractionQuerier defines the handler dependency for interaction checks.
type InteractionQuerier interface {
	CheckInteractions(ctx context.Context, drugIDs []string, memberID string) (*services.CheckResult, error)
	RealtimeCheck(ctx context.Context, drug1ID, drug2ID string) (*services.RealtimeResult, error)
	CheckAlerts(ctx context.Context, drugNames []string) (*services.AlertCheckResult, error)
	Stats(ctx context.Context) (*services.StatsResult, error)
}

// InteractionHandler handles clinical interaction requests
type InteractionHandler struct {
	querier InteractionQuerier
}

// NewInteractionHandler creates a new interaction handler
func NewInteractionHandler(querier InteractionQuerier) *InteractionHandler {
	return &InteractionHandler{querier: querier}
}

type checkInteractionsRequest struct {
	DrugIDs  []string `json:"drugIds"`
	MemberID string   `json:"memberId,omitempty"`
}

type checkAlertsRequest struct {
	DrugNames []string `json:"drugNames"`
}

// CheckInteractions handles POST /api/clinical/interactions/check
func (h *InteractionHandler) CheckInteractions(w http.ResponseWriter, r *http.Request) {
	var req checkInteractionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.DrugIDs) == 0 {
		respondWithError(w, http.StatusBadRequest, "drugIds array is required")
		return
	}

	result, err := h.querier.CheckInteractions(r.Context(), req.DrugIDs, req.MemberID)
	if err != nil {
		respondWithAppError(w, err, "failed to check drug interactions")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// RealtimeCheck handles GET /api/clinical/interactions/realtime/{drug1Id}/{drug2Id}
func (h *InteractionHandler) RealtimeCheck(w http.ResponseWriter, r *http.Request) {
	drug1ID := r.PathValue("drug1Id")
	drug2ID := r.PathValue("drug2Id")
	if drug1ID == "" || drug2ID == "" {
		respondWithError(w, http.StatusBadRequest, "both drug IDs are required")
		return
	}

	result, err := h.querier.RealtimeCheck(r.Context(), drug1ID, drug2ID)
	if err != nil {
		respondWithAppError(w, err, "failed to perform realtime interaction check")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// CheckAlerts handles POST /api/clinical/alerts/check
func (h *InteractionHandler) CheckAlerts(w http.ResponseWriter, r *http.Request) {
	var req checkAlertsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DrugNames == nil {
		respondWithError(w, http.StatusBadRequest, "drugNames array is required")
		return
	}

	result, err := h.querier.CheckAlerts(r.Context(), req.DrugNames)
	if err != nil {
		respondWithAppError(w, err, "failed to check safety alerts")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// GetStats handles GET /api/clinical/stats
func (h *InteractionHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	result, err := h.querier.Stats(r.Context())
	if err != nil {
		respondWithAppError(w, err, "failed to load clinical statistics")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
