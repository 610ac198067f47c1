package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/drugreco/drugreco/backend/internal/domain/entities"
	apperrors "github.com/drugreco/drugreco/backend/pkg/errors"
)

func newPipelineFixture() (*MockReconciler, *MockSynchronizer, *MockValidator, *MockUpdateSessionRepo, *MockInteractionRepo) {
	return new(MockReconciler), new(MockSynchronizer), new(MockValidator), new(MockUpdateSessionRepo), new(MockInteractionRepo)
}

func TestRunPipelineCompletesAndAggregates(t *testing.T) {
	ctx := context.Background()
	reconciler, synchronizer, validator, sessionRepo, interactionRepo := newPipelineFixture()
	eventBus := new(MockEventBus)

	sessionRepo.On("Create", ctx, mock.MatchedBy(func(s *entities.UpdateSession) bool {
		return s.Status == entities.SessionStatusRunning && s.TriggerType == entities.TriggerManual
	})).Return(nil)
	reconciler.On("ReconcileMappings", ctx).Return(&MappingStats{
		TotalDrugs: 10, MappingsAdded: 3, MappingsUpdated: 1, APICalls: 10,
	}, nil)
	synchronizer.On("SyncInteractions", ctx).Return(&SyncStats{
		DrugPairsChecked: 45, InteractionsAdded: 5, InteractionsUpdated: 2, APICalls: 45,
	}, nil)
	validator.On("ValidateRecent", ctx).Return(&ValidationStats{
		TotalInteractions: 7, ValidationsCompleted: 7, ValidationsPassed: 6, PassRate: 85.7,
	}, nil)
	interactionRepo.On("TouchVerifiedSince", ctx, mock.Anything).Return(7, nil)
	sessionRepo.On("Update", ctx, mock.MatchedBy(func(s *entities.UpdateSession) bool {
		return s.Status == entities.SessionStatusCompleted &&
			s.RecordsAdded == 8 &&
			s.RecordsUpdated == 3 &&
			s.TotalAPICalls == 55 &&
			s.EndTime != nil
	})).Return(nil)
	eventBus.On("Publish", mock.Anything, EventChannelClinical, mock.MatchedBy(func(e *entities.ClinicalEvent) bool {
		return e.EventType == entities.EventSessionCompleted
	})).Return(nil)

	service := NewClinicalUpdateService(
		reconciler, synchronizer, validator, nil,
		sessionRepo, interactionRepo, NewRunGuard(), eventBus, ScheduleDescription,
	)

	session, err := service.RunPipeline(ctx, entities.TriggerManual)

	require.NoError(t, err)
	assert.Equal(t, entities.SessionStatusCompleted, session.Status)
	assert.Equal(t, float64(100), session.SuccessRate)

	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal(session.SummaryReport, &summary))
	assert.Contains(t, summary, "mapping")
	assert.Contains(t, summary, "sync")
	assert.Contains(t, summary, "validation")

	sessionRepo.AssertExpectations(t)
	eventBus.AssertExpectations(t)
}

func TestRunPipelineConflictWhileRunning(t *testing.T) {
	ctx := context.Background()
	reconciler, synchronizer, validator, sessionRepo, interactionRepo := newPipelineFixture()

	guard := NewRunGuard()
	require.True(t, guard.TryAcquire())

	service := NewClinicalUpdateService(
		reconciler, synchronizer, validator, nil,
		sessionRepo, interactionRepo, guard, nil, ScheduleDescription,
	)

	_, err := service.RunPipeline(ctx, entities.TriggerManual)

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
	sessionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRunPipelineStageFailureMarksSessionFailed(t *testing.T) {
	ctx := context.Background()
	reconciler, synchronizer, validator, sessionRepo, interactionRepo := newPipelineFixture()
	eventBus := new(MockEventBus)

	sessionRepo.On("Create", ctx, mock.Anything).Return(nil)
	reconciler.On("ReconcileMappings", ctx).Return(&MappingStats{MappingsAdded: 2, APICalls: 4}, nil)
	synchronizer.On("SyncInteractions", ctx).Return(nil, errors.New("upstream unavailable"))
	sessionRepo.On("Update", ctx, mock.MatchedBy(func(s *entities.UpdateSession) bool {
		// Partial progress from the first stage is kept on the session
		return s.Status == entities.SessionStatusFailed &&
			s.RecordsAdded == 2 &&
			s.SuccessRate == 0
	})).Return(nil)
	eventBus.On("Publish", mock.Anything, EventChannelClinical, mock.MatchedBy(func(e *entities.ClinicalEvent) bool {
		return e.EventType == entities.EventSessionFailed && e.Payload["error"] != nil
	})).Return(nil)

	guard := NewRunGuard()
	service := NewClinicalUpdateService(
		reconciler, synchronizer, validator, nil,
		sessionRepo, interactionRepo, guard, eventBus, ScheduleDescription,
	)

	session, err := service.RunPipeline(ctx, entities.TriggerScheduled)

	assert.Error(t, err)
	assert.Equal(t, entities.SessionStatusFailed, session.Status)
	validator.AssertNotCalled(t, "ValidateRecent", mock.Anything)

	// Guard must be released even after a failed run
	assert.True(t, guard.TryAcquire())
}

func TestRunPipelineIndexerFailureDoesNotFailRun(t *testing.T) {
	ctx := context.Background()
	reconciler, synchronizer, validator, sessionRepo, interactionRepo := newPipelineFixture()
	indexer := new(mockIndexer)

	sessionRepo.On("Create", ctx, mock.Anything).Return(nil)
	reconciler.On("ReconcileMappings", ctx).Return(&MappingStats{}, nil)
	synchronizer.On("SyncInteractions", ctx).Return(&SyncStats{}, nil)
	validator.On("ValidateRecent", ctx).Return(&ValidationStats{}, nil)
	interactionRepo.On("TouchVerifiedSince", ctx, mock.Anything).Return(0, nil)
	indexer.On("IndexActiveDrugs", ctx).Return(0, errors.New("typesense down"))
	sessionRepo.On("Update", ctx, mock.MatchedBy(func(s *entities.UpdateSession) bool {
		return s.Status == entities.SessionStatusCompleted
	})).Return(nil)

	service := NewClinicalUpdateService(
		reconciler, synchronizer, validator, indexer,
		sessionRepo, interactionRepo, NewRunGuard(), nil, ScheduleDescription,
	)

	_, err := service.RunPipeline(ctx, entities.TriggerManual)
	assert.NoError(t, err)
}

func TestStatusReflectsGuardAndLastRun(t *testing.T) {
	ctx := context.Background()
	reconciler, synchronizer, validator, sessionRepo, interactionRepo := newPipelineFixture()

	sessionRepo.On("Create", ctx, mock.Anything).Return(nil)
	reconciler.On("ReconcileMappings", ctx).Return(&MappingStats{}, nil)
	synchronizer.On("SyncInteractions", ctx).Return(&SyncStats{}, nil)
	validator.On("ValidateRecent", ctx).Return(&ValidationStats{}, nil)
	interactionRepo.On("TouchVerifiedSince", ctx, mock.Anything).Return(0, nil)
	sessionRepo.On("Update", ctx, mock.Anything).Return(nil)

	service := NewClinicalUpdateService(
		reconciler, synchronizer, validator, nil,
		sessionRepo, interactionRepo, NewRunGuard(), nil, ScheduleDescription,
	)

	status := service.Status()
	assert.False(t, status.IsRunning)
	assert.Nil(t, status.LastRunAt)
	assert.Equal(t, ScheduleDescription, status.Schedule)

	_, err := service.RunPipeline(ctx, entities.TriggerManual)
	require.NoError(t, err)

	status = service.Status()
	assert.False(t, status.IsRunning)
	assert.NotNil(t, status.LastRunAt)
	assert.WithinDuration(t, time.Now(), *status.LastRunAt, time.Minute)
}

type mockIndexer struct {
	mock.Mock
}

func (m *mockIndexer) IndexActiveDrugs(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
