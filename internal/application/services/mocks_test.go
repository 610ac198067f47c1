package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/drugreco/drugreco/backend/internal/domain/entities"
	"github.com/drugreco/drugreco/backend/internal/infrastructure/clients/rxnav"
)

// Mocks shared by the service tests.

type MockDrugRepo struct {
	mock.Mock
}

func (m *MockDrugRepo) GetByID(ctx context.Context, id string) (*entities.Drug, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Drug), args.Error(1)
}

func (m *MockDrugRepo) GetByIDs(ctx context.Context, ids []string) ([]*entities.Drug, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Drug), args.Error(1)
}

func (m *MockDrugRepo) ListActive(ctx context.Context) ([]*entities.Drug, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Drug), args.Error(1)
}

type MockConceptMappingRepo struct {
	mock.Mock
}

func (m *MockConceptMappingRepo) Create(ctx context.Context, mapping *entities.ConceptMapping) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

func (m *MockConceptMappingRepo) Update(ctx context.Context, mapping *entities.ConceptMapping) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

func (m *MockConceptMappingRepo) FindByDrugAndRxcui(ctx context.Context, drugID, rxcui string) (*entities.ConceptMapping, error) {
	args := m.Called(ctx, drugID, rxcui)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ConceptMapping), args.Error(1)
}

func (m *MockConceptMappingRepo) ListByDrug(ctx context.Context, drugID string) ([]*entities.ConceptMapping, error) {
	args := m.Called(ctx, drugID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ConceptMapping), args.Error(1)
}

func (m *MockConceptMappingRepo) ListVerified(ctx context.Context, minConfidence float64) ([]*entities.ConceptMapping, error) {
	args := m.Called(ctx, minConfidence)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ConceptMapping), args.Error(1)
}

func (m *MockConceptMappingRepo) BestVerifiedByDrugs(ctx context.Context, drugIDs []string) (map[string]*entities.ConceptMapping, error) {
	args := m.Called(ctx, drugIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*entities.ConceptMapping), args.Error(1)
}

func (m *MockConceptMappingRepo) CountVerified(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockInteractionRepo struct {
	mock.Mock
}

func (m *MockInteractionRepo) Create(ctx context.Context, interaction *entities.Interaction) error {
	args := m.Called(ctx, interaction)
	return args.Error(0)
}

func (m *MockInteractionRepo) Update(ctx context.Context, interaction *entities.Interaction) error {
	args := m.Called(ctx, interaction)
	return args.Error(0)
}

func (m *MockInteractionRepo) FindByPairAndSource(ctx context.Context, drug1ID, drug2ID, sourceID string) (*entities.Interaction, error) {
	args := m.Called(ctx, drug1ID, drug2ID, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Interaction), args.Error(1)
}

func (m *MockInteractionRepo) FindByPair(ctx context.Context, drug1ID, drug2ID string) (*entities.Interaction, error) {
	args := m.Called(ctx, drug1ID, drug2ID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Interaction), args.Error(1)
}

func (m *MockInteractionRepo) ListByDrugSet(ctx context.Context, drugIDs []string) ([]*entities.Interaction, error) {
	args := m.Called(ctx, drugIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Interaction), args.Error(1)
}

func (m *MockInteractionRepo) ListVerifiedSince(ctx context.Context, since time.Time) ([]*entities.Interaction, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Interaction), args.Error(1)
}

func (m *MockInteractionRepo) TouchVerifiedSince(ctx context.Context, since time.Time) (int, error) {
	args := m.Called(ctx, since)
	return args.Int(0), args.Error(1)
}

func (m *MockInteractionRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockInteractionRepo) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	args := m.Called(ctx, since)
	return args.Int(0), args.Error(1)
}

func (m *MockInteractionRepo) CountBySeverity(ctx context.Context) (map[entities.Severity]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[entities.Severity]int), args.Error(1)
}

type MockDataSourceRepo struct {
	mock.Mock
}

func (m *MockDataSourceRepo) GetByID(ctx context.Context, id string) (*entities.DataSource, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DataSource), args.Error(1)
}

func (m *MockDataSourceRepo) FindByName(ctx context.Context, name string) (*entities.DataSource, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DataSource), args.Error(1)
}

func (m *MockDataSourceRepo) ListActive(ctx context.Context) ([]*entities.DataSource, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.DataSource), args.Error(1)
}

type MockUpdateSessionRepo struct {
	mock.Mock
}

func (m *MockUpdateSessionRepo) Create(ctx context.Context, session *entities.UpdateSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockUpdateSessionRepo) Update(ctx context.Context, session *entities.UpdateSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockUpdateSessionRepo) GetByID(ctx context.Context, id string) (*entities.UpdateSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.UpdateSession), args.Error(1)
}

func (m *MockUpdateSessionRepo) ListRecent(ctx context.Context, limit int) ([]*entities.UpdateSession, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.UpdateSession), args.Error(1)
}

type MockValidationLogRepo struct {
	mock.Mock
}

func (m *MockValidationLogRepo) Create(ctx context.Context, entry *entities.ValidationLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockValidationLogRepo) HasRecentValidation(ctx context.Context, interactionID string, since time.Time) (bool, error) {
	args := m.Called(ctx, interactionID, since)
	return args.Bool(0), args.Error(1)
}

func (m *MockValidationLogRepo) ListByInteraction(ctx context.Context, interactionID string) ([]*entities.ValidationLog, error) {
	args := m.Called(ctx, interactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ValidationLog), args.Error(1)
}

type MockClinicalAlertRepo struct {
	mock.Mock
}

func (m *MockClinicalAlertRepo) ListActiveByDrugNames(ctx context.Context, drugNames []string) ([]*entities.ClinicalAlert, error) {
	args := m.Called(ctx, drugNames)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ClinicalAlert), args.Error(1)
}

func (m *MockClinicalAlertRepo) ListActiveBySeverity(ctx context.Context, severity entities.Severity) ([]*entities.ClinicalAlert, error) {
	args := m.Called(ctx, severity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ClinicalAlert), args.Error(1)
}

func (m *MockClinicalAlertRepo) CountActive(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockRxNavClient struct {
	mock.Mock
}

func (m *MockRxNavClient) SearchDrugs(ctx context.Context, name string, maxEntries int) ([]rxnav.Concept, error) {
	args := m.Called(ctx, name, maxEntries)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]rxnav.Concept), args.Error(1)
}

func (m *MockRxNavClient) FindExactConcept(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

func (m *MockRxNavClient) GetInteractionsForConcept(ctx context.Context, rxcui string) ([]rxnav.UpstreamInteraction, error) {
	args := m.Called(ctx, rxcui)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]rxnav.UpstreamInteraction), args.Error(1)
}

func (m *MockRxNavClient) CheckInteractionBetween(ctx context.Context, rxcui1, rxcui2 string) ([]rxnav.UpstreamInteraction, error) {
	args := m.Called(ctx, rxcui1, rxcui2)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]rxnav.UpstreamInteraction), args.Error(1)
}

func (m *MockRxNavClient) GetRelatedConcepts(ctx context.Context, rxcui string, termTypes []string) ([]rxnav.Concept, error) {
	args := m.Called(ctx, rxcui, termTypes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]rxnav.Concept), args.Error(1)
}

func (m *MockRxNavClient) HealthCheck(ctx context.Context) (*rxnav.HealthStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rxnav.HealthStatus), args.Error(1)
}

type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.ClinicalEvent) error {
	args := m.Called(ctx, channel, event)
	return args.Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.ClinicalEvent, error) {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan *entities.ClinicalEvent), args.Error(1)
}

func (m *MockEventBus) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockDrugIndexProvider struct {
	mock.Mock
}

func (m *MockDrugIndexProvider) Index(ctx context.Context, drug *entities.Drug) error {
	args := m.Called(ctx, drug)
	return args.Error(0)
}

func (m *MockDrugIndexProvider) IndexBatch(ctx context.Context, drugs []*entities.Drug) error {
	args := m.Called(ctx, drugs)
	return args.Error(0)
}

func (m *MockDrugIndexProvider) Suggest(ctx context.Context, query string, limit int) ([]*entities.Drug, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Drug), args.Error(1)
}

// Pipeline stage mocks.

type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) ReconcileMappings(ctx context.Context) (*MappingStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*MappingStats), args.Error(1)
}

type MockSynchronizer struct {
	mock.Mock
}

func (m *MockSynchronizer) SyncInteractions(ctx context.Context) (*SyncStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SyncStats), args.Error(1)
}

type MockValidator struct {
	mock.Mock
}

func (m *MockValidator) ValidateRecent(ctx context.Context) (*ValidationStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ValidationStats), args.Error(1)
}
