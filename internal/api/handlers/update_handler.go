package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/drugreco/drugreco/backend/internal/application/services"
	"github.com/drugreco/drugreco/backend/internal/domain/entities"
	"github.com/drugreco/drugreco/backend/internal/domain/repositories"
	"github.com/drugreco/drugreco/backend/internal/infrastructure/clients/rxnav"
)

// triggerTimeout bounds a manually triggered pipeline run.
const triggerTimeout = 30 * time.Minute

// UpdateManager defines the handler dependency for pipeline control.
type UpdateManager interface {
	RunPipeline(ctx context.Context, triggerType string) (*entities.UpdateSession, error)
	Status() *services.UpdateStatus
	RecentSessions(ctx context.Context, limit int) ([]*entities.UpdateSession, error)
}

// UpdateHandler handles update pipeline requests
type UpdateHandler struct {
	manager    UpdateManager
	sourceRepo repositories.DataSourceRepository
	client     rxnav.Client
}

// NewUpdateHandler creates a new update handler
func NewUpdateHandler(manager UpdateManager, sourceRepo repositories.DataSourceRepository, client rxnav.Client) *UpdateHandler {
	return &UpdateHandler{
		manager:    manager,
		sourceRepo: sourceRepo,
		client:     client,
	}
}

// TriggerUpdate handles POST /api/clinical/update/trigger. The run happens in
// the background; the response only acknowledges acceptance.
func (h *UpdateHandler) TriggerUpdate(w http.ResponseWriter, r *http.Request) {
	if h.manager.Status().IsRunning {
		respondWithError(w, http.StatusConflict, "update already in progress")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), triggerTimeout)
		defer cancel()
		if _, err := h.manager.RunPipeline(ctx, entities.TriggerManual); err != nil {
			log.Error().Err(err).Msg("manually triggered update failed")
		}
	}()

	respondWithJSON(w, http.StatusAccepted, map[string]interface{}{
		"status":  "accepted",
		"message": "clinical data update initiated",
	})
}

// GetStatus handles GET /api/clinical/status
func (h *UpdateHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status := h.manager.Status()

	sessions, err := h.manager.RecentSessions(r.Context(), 5)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load recent update sessions")
		sessions = []*entities.UpdateSession{}
	}

	sources, err := h.sourceRepo.ListActive(r.Context())
	if err != nil {
		log.Warn().Err(err).Msg("failed to load data sources")
		sources = []*entities.DataSource{}
	}

	systemHealth := "healthy"
	if health, err := h.client.HealthCheck(r.Context()); err != nil || health.Status != "healthy" {
		systemHealth = "degraded"
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"manager":        status,
		"recentSessions": sessions,
		"dataSources":    sources,
		"systemHealth":   systemHealth,
	})
}
