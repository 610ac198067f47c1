package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/drugreco/drugreco/backend/internal/domain/entities"
	"github.com/drugreco/drugreco/backend/internal/infrastructure/clients/rxnav"
	apperrors "github.com/drugreco/drugreco/backend/pkg/errors"
)

func TestReconcileMappingsCreatesVerifiedExactMatch(t *testing.T) {
	ctx := context.Background()
	drugRepo := new(MockDrugRepo)
	mappingRepo := new(MockConceptMappingRepo)
	client := new(MockRxNavClient)

	drugRepo.On("ListActive", ctx).Return([]*entities.Drug{
		{ID: "drug-1", Name: "Aspirin", IsActive: true},
	}, nil)
	mappingRepo.On("ListByDrug", ctx, "drug-1").Return([]*entities.ConceptMapping{}, nil)
	client.On("SearchDrugs", ctx, "Aspirin", 5).Return([]rxnav.Concept{
		{Rxcui: "1191", Name: "aspirin", TermType: "IN"},
	}, nil)
	mappingRepo.On("FindByDrugAndRxcui", ctx, "drug-1", "1191").
		Return(nil, apperrors.NewNotFoundError("not found"))
	mappingRepo.On("Create", ctx, mock.MatchedBy(func(m *entities.ConceptMapping) bool {
		return m.DrugID == "drug-1" &&
			m.Rxcui == "1191" &&
			m.Source == "rxnav_auto" &&
			m.ConfidenceScore == 1.0 &&
			m.Verified
	})).Return(nil)

	service := NewConceptMappingService(drugRepo, mappingRepo, client, 0)
	stats, err := service.ReconcileMappings(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 1, stats.TotalDrugs)
	assert.Equal(t, 1, stats.MappingsAdded)
	assert.Equal(t, 0, stats.MappingsUpdated)
	assert.Equal(t, 1, stats.APICalls)
	mappingRepo.AssertExpectations(t)
}

func TestReconcileMappingsSkipsVerifiedDrugs(t *testing.T) {
	ctx := context.Background()
	drugRepo := new(MockDrugRepo)
	mappingRepo := new(MockConceptMappingRepo)
	client := new(MockRxNavClient)

	drugRepo.On("ListActive", ctx).Return([]*entities.Drug{
		{ID: "drug-1", Name: "Warfarin"},
	}, nil)
	mappingRepo.On("ListByDrug", ctx, "drug-1").Return([]*entities.ConceptMapping{
		{ID: "map-1", DrugID: "drug-1", Rxcui: "11289", Verified: true},
	}, nil)

	service := NewConceptMappingService(drugRepo, mappingRepo, client, 0)
	stats, err := service.ReconcileMappings(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 0, stats.APICalls)
	client.AssertNotCalled(t, "SearchDrugs", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcileMappingsUpdatesExistingCandidate(t *testing.T) {
	ctx := context.Background()
	drugRepo := new(MockDrugRepo)
	mappingRepo := new(MockConceptMappingRepo)
	client := new(MockRxNavClient)

	drugRepo.On("ListActive", ctx).Return([]*entities.Drug{
		{ID: "drug-1", Name: "Metformin"},
	}, nil)
	mappingRepo.On("ListByDrug", ctx, "drug-1").Return([]*entities.ConceptMapping{
		{ID: "map-1", DrugID: "drug-1", Rxcui: "6809", Verified: false, ConfidenceScore: 0.5},
	}, nil)
	client.On("SearchDrugs", ctx, "Metformin", 5).Return([]rxnav.Concept{
		{Rxcui: "6809", Name: "metformin hydrochloride", TermType: "PIN"},
	}, nil)
	mappingRepo.On("FindByDrugAndRxcui", ctx, "drug-1", "6809").
		Return(&entities.ConceptMapping{ID: "map-1", DrugID: "drug-1", Rxcui: "6809"}, nil)
	mappingRepo.On("Update", ctx, mock.MatchedBy(func(m *entities.ConceptMapping) bool {
		// "metformin" is a substring of the concept name
		return m.ID == "map-1" && m.ConfidenceScore == 0.9 && m.Verified
	})).Return(nil)

	service := NewConceptMappingService(drugRepo, mappingRepo, client, 0)
	stats, err := service.ReconcileMappings(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 1, stats.MappingsUpdated)
	assert.Equal(t, 0, stats.MappingsAdded)
	mappingRepo.AssertExpectations(t)
}

func TestReconcileMappingsSkipsFailedDrug(t *testing.T) {
	ctx := context.Background()
	drugRepo := new(MockDrugRepo)
	mappingRepo := new(MockConceptMappingRepo)
	client := new(MockRxNavClient)

	drugRepo.On("ListActive", ctx).Return([]*entities.Drug{
		{ID: "drug-1", Name: "Badname"},
		{ID: "drug-2", Name: "Lisinopril"},
	}, nil)
	mappingRepo.On("ListByDrug", ctx, "drug-1").Return([]*entities.ConceptMapping{}, nil)
	mappingRepo.On("ListByDrug", ctx, "drug-2").Return([]*entities.ConceptMapping{}, nil)
	client.On("SearchDrugs", ctx, "Badname", 5).Return(nil, errors.New("upstream 502"))
	client.On("SearchDrugs", ctx, "Lisinopril", 5).Return([]rxnav.Concept{
		{Rxcui: "29046", Name: "lisinopril", TermType: "IN"},
	}, nil)
	mappingRepo.On("FindByDrugAndRxcui", ctx, "drug-2", "29046").
		Return(nil, apperrors.NewNotFoundError("not found"))
	mappingRepo.On("Create", ctx, mock.Anything).Return(nil)

	service := NewConceptMappingService(drugRepo, mappingRepo, client, 0)
	stats, err := service.ReconcileMappings(ctx)

	// One failure must not abort the pass
	assert.NoError(t, err)
	assert.Equal(t, 2, stats.APICalls)
	assert.Equal(t, 1, stats.MappingsAdded)
}

func TestReconcileMappingsNoCandidates(t *testing.T) {
	ctx := context.Background()
	drugRepo := new(MockDrugRepo)
	mappingRepo := new(MockConceptMappingRepo)
	client := new(MockRxNavClient)

	drugRepo.On("ListActive", ctx).Return([]*entities.Drug{
		{ID: "drug-1", Name: "Obscure Remedy"},
	}, nil)
	mappingRepo.On("ListByDrug", ctx, "drug-1").Return([]*entities.ConceptMapping{}, nil)
	client.On("SearchDrugs", ctx, "Obscure Remedy", 5).Return([]rxnav.Concept{}, nil)

	service := NewConceptMappingService(drugRepo, mappingRepo, client, 0)
	stats, err := service.ReconcileMappings(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 1, stats.APICalls)
	assert.Equal(t, 0, stats.MappingsAdded)
	mappingRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReconcileMappingsStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	drugRepo := new(MockDrugRepo)
	mappingRepo := new(MockConceptMappingRepo)
	client := new(MockRxNavClient)

	drugRepo.On("ListActive", ctx).Return([]*entities.Drug{
		{ID: "drug-1", Name: "Aspirin"},
	}, nil)

	service := NewConceptMappingService(drugRepo, mappingRepo, client, 0)
	_, err := service.ReconcileMappings(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}
