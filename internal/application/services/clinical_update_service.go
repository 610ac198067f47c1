package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/drugreco/drugreco/backend/internal/domain/entities"
	"github.com/drugreco/drugreco/backend/internal/domain/providers"
	"github.com/drugreco/drugreco/backend/internal/domain/repositories"
	apperrors "github.com/drugreco/drugreco/backend/pkg/errors"
)

// EventChannelClinical is the pub/sub channel for pipeline lifecycle events.
const EventChannelClinical = "clinical.events"

// ConceptReconciler is the pipeline's first stage.
type ConceptReconciler interface {
	ReconcileMappings(ctx context.Context) (*MappingStats, error)
}

// InteractionSynchronizer is the pipeline's second stage.
type InteractionSynchronizer interface {
	SyncInteractions(ctx context.Context) (*SyncStats, error)
}

// ConsensusValidator is the pipeline's third stage.
type ConsensusValidator interface {
	ValidateRecent(ctx context.Context) (*ValidationStats, error)
}

// DrugIndexer refreshes the suggestion index after a successful run.
type DrugIndexer interface {
	IndexActiveDrugs(ctx context.Context) (int, error)
}

// UpdateStatus is the externally visible pipeline state.
type UpdateStatus struct {
	IsRunning   bool       `json:"isRunning"`
	Schedule    string     `json:"schedule"`
	LastRunAt   *time.Time `json:"lastRunAt,omitempty"`
	LastChecked time.Time  `json:"lastChecked"`
}

// pipelineSummary is the JSON report persisted on the session row.
type pipelineSummary struct {
	Mapping    *MappingStats    `json:"mapping,omitempty"`
	Sync       *SyncStats       `json:"sync,omitempty"`
	Validation *ValidationStats `json:"validation,omitempty"`
	Touched    int              `json:"interactionsTouched"`
	Indexed    int              `json:"drugsIndexed,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// ClinicalUpdateService orchestrates the batch update pipeline and tracks
// each run in an audit session. Stages share no transaction; a failed run
// keeps whatever progress earlier stages committed, with the session row
// recording how far it got.
type ClinicalUpdateService struct {
	reconciler   ConceptReconciler
	synchronizer InteractionSynchronizer
	validator    ConsensusValidator
	indexer      DrugIndexer
	sessionRepo  repositories.UpdateSessionRepository
	interactions repositories.InteractionRepository
	guard        *RunGuard
	eventBus     providers.EventBus
	schedule     string
	now          func() time.Time

	mu      sync.Mutex
	lastRun *time.Time
}

// NewClinicalUpdateService creates a new clinical update service. The event
// bus and indexer are optional.
func NewClinicalUpdateService(
	reconciler ConceptReconciler,
	synchronizer InteractionSynchronizer,
	validator ConsensusValidator,
	indexer DrugIndexer,
	sessionRepo repositories.UpdateSessionRepository,
	interactions repositories.InteractionRepository,
	guard *RunGuard,
	eventBus providers.EventBus,
	schedule string,
) *ClinicalUpdateService {
	return &ClinicalUpdateService{
		reconciler:   reconciler,
		synchronizer: synchronizer,
		validator:    validator,
		indexer:      indexer,
		sessionRepo:  sessionRepo,
		interactions: interactions,
		guard:        guard,
		eventBus:     eventBus,
		schedule:     schedule,
		now:          time.Now,
	}
}

// RunPipeline executes one full update run. A second concurrent trigger
// gets a conflict error; the guard is released on every exit path.
func (s *ClinicalUpdateService) RunPipeline(ctx context.Context, triggerType string) (*entities.UpdateSession, error) {
	if !s.guard.TryAcquire() {
		return nil, apperrors.NewConflictError("update already in progress")
	}
	defer s.guard.Release()

	start := s.now()
	session := &entities.UpdateSession{
		ID:          uuid.New().String(),
		SessionType: "full_update",
		TriggerType: triggerType,
		TriggeredBy: triggerType,
		StartTime:   start,
		Status:      entities.SessionStatusRunning,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	log.Info().
		Str("session_id", session.ID).
		Str("trigger", triggerType).
		Msg("clinical update pipeline started")

	summary := &pipelineSummary{}
	err := s.runStages(ctx, session, summary)

	end := s.now()
	session.EndTime = &end
	if err != nil {
		summary.Error = err.Error()
		session.Status = entities.SessionStatusFailed
		session.SuccessRate = 0
	} else {
		session.Status = entities.SessionStatusCompleted
		session.SuccessRate = 100
	}
	if report, marshalErr := json.Marshal(summary); marshalErr == nil {
		session.SummaryReport = report
	}

	if updateErr := s.sessionRepo.Update(ctx, session); updateErr != nil {
		log.Error().Str("session_id", session.ID).Err(updateErr).Msg("failed to persist session outcome")
	}
	s.mu.Lock()
	s.lastRun = &end
	s.mu.Unlock()

	s.publishOutcome(session, err)

	if err != nil {
		log.Error().Str("session_id", session.ID).Err(err).Msg("clinical update pipeline failed")
		return session, err
	}

	log.Info().
		Str("session_id", session.ID).
		Int("records_added", session.RecordsAdded).
		Int("records_updated", session.RecordsUpdated).
		Int("api_calls", session.TotalAPICalls).
		Dur("duration", end.Sub(start)).
		Msg("clinical update pipeline completed")

	return session, nil
}

func (s *ClinicalUpdateService) runStages(ctx context.Context, session *entities.UpdateSession, summary *pipelineSummary) error {
	mappingStats, err := s.reconciler.ReconcileMappings(ctx)
	if err != nil {
		return err
	}
	summary.Mapping = mappingStats
	session.RecordsAdded += mappingStats.MappingsAdded
	session.RecordsUpdated += mappingStats.MappingsUpdated
	session.TotalAPICalls += mappingStats.APICalls

	if err := ctx.Err(); err != nil {
		return err
	}

	syncStats, err := s.synchronizer.SyncInteractions(ctx)
	if err != nil {
		return err
	}
	summary.Sync = syncStats
	session.RecordsAdded += syncStats.InteractionsAdded
	session.RecordsUpdated += syncStats.InteractionsUpdated
	session.TotalAPICalls += syncStats.APICalls

	if err := ctx.Err(); err != nil {
		return err
	}

	validationStats, err := s.validator.ValidateRecent(ctx)
	if err != nil {
		return err
	}
	summary.Validation = validationStats

	// Apply pass: bump updatedAt on everything verified this window so
	// downstream consumers see the refresh.
	touched, err := s.interactions.TouchVerifiedSince(ctx, s.now().Add(-validationWindow))
	if err != nil {
		return err
	}
	summary.Touched = touched

	if s.indexer != nil {
		indexed, err := s.indexer.IndexActiveDrugs(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("failed to refresh drug suggestion index")
		} else {
			summary.Indexed = indexed
		}
	}

	return nil
}

func (s *ClinicalUpdateService) publishOutcome(session *entities.UpdateSession, runErr error) {
	if s.eventBus == nil {
		return
	}

	eventType := entities.EventSessionCompleted
	if runErr != nil {
		eventType = entities.EventSessionFailed
	}

	event := &entities.ClinicalEvent{
		ID:        uuid.New().String(),
		EventType: eventType,
		Payload: map[string]interface{}{
			"sessionId":      session.ID,
			"triggerType":    session.TriggerType,
			"recordsAdded":   session.RecordsAdded,
			"recordsUpdated": session.RecordsUpdated,
		},
		Timestamp: s.now(),
	}
	if runErr != nil {
		event.Payload["error"] = runErr.Error()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.eventBus.Publish(ctx, EventChannelClinical, event); err != nil {
		log.Warn().Err(err).Msg("failed to publish session event")
	}
}

// Status reports whether a run is active plus scheduling context.
func (s *ClinicalUpdateService) Status() *UpdateStatus {
	s.mu.Lock()
	lastRun := s.lastRun
	s.mu.Unlock()

	return &UpdateStatus{
		IsRunning:   s.guard.IsHeld(),
		Schedule:    s.schedule,
		LastRunAt:   lastRun,
		LastChecked: s.now(),
	}
}

// RecentSessions returns the latest audit sessions.
func (s *ClinicalUpdateService) RecentSessions(ctx context.Context, limit int) ([]*entities.UpdateSession, error) {
	return s.sessionRepo.ListRecent(ctx, limit)
}
