package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/drugreco/drugreco/backend/internal/domain/entities"
	"github.com/drugreco/drugreco/backend/internal/domain/repositories"
	"github.com/drugreco/drugreco/backend/internal/infrastructure/clients/rxnav"
	apperrors "github.com/drugreco/drugreco/backend/pkg/errors"
	"github.com/drugreco/drugreco/backend/pkg/ratelimit"
	"github.com/drugreco/drugreco/backend/pkg/utils"
)

const (
	mappingSource = "rxnav_auto"

	// Mappings at or above this confidence are trusted without manual
	// review. Exact and substring name matches clear it, fuzzy ones don't.
	autoVerifyThreshold = 0.9

	searchCandidates = 5
)

// MappingStats summarizes one reconciliation pass.
type MappingStats struct {
	TotalDrugs      int `json:"totalDrugs"`
	MappingsAdded   int `json:"mappingsAdded"`
	MappingsUpdated int `json:"mappingsUpdated"`
	APICalls        int `json:"apiCalls"`
}

// ConceptMappingService reconciles local drug records against RxNorm
// concepts so downstream interaction checks can use upstream identifiers.
type ConceptMappingService struct {
	drugRepo    repositories.DrugRepository
	mappingRepo repositories.ConceptMappingRepository
	client      rxnav.Client
	pace        time.Duration
	now         func() time.Time
}

// NewConceptMappingService creates a new concept mapping service
func NewConceptMappingService(
	drugRepo repositories.DrugRepository,
	mappingRepo repositories.ConceptMappingRepository,
	client rxnav.Client,
	pace time.Duration,
) *ConceptMappingService {
	return &ConceptMappingService{
		drugRepo:    drugRepo,
		mappingRepo: mappingRepo,
		client:      client,
		pace:        pace,
		now:         time.Now,
	}
}

// ReconcileMappings maps every active drug that lacks a verified mapping to
// its best RxNorm concept. Per-drug failures are logged and skipped so one
// bad record never aborts the pass.
func (s *ConceptMappingService) ReconcileMappings(ctx context.Context) (*MappingStats, error) {
	drugs, err := s.drugRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	stats := &MappingStats{TotalDrugs: len(drugs)}
	pacer := ratelimit.NewPacer(s.pace)

	for _, drug := range drugs {
		if err := pacer.Wait(ctx); err != nil {
			return stats, err
		}

		if err := s.reconcileDrug(ctx, drug, stats); err != nil {
			log.Warn().
				Str("drug_id", drug.ID).
				Str("drug_name", drug.Name).
				Err(err).
				Msg("failed to map drug, skipping")
		}
	}

	log.Info().
		Int("total_drugs", stats.TotalDrugs).
		Int("added", stats.MappingsAdded).
		Int("updated", stats.MappingsUpdated).
		Int("api_calls", stats.APICalls).
		Msg("concept mapping pass complete")

	return stats, nil
}

func (s *ConceptMappingService) reconcileDrug(ctx context.Context, drug *entities.Drug, stats *MappingStats) error {
	existing, err := s.mappingRepo.ListByDrug(ctx, drug.ID)
	if err != nil {
		return err
	}
	for _, mapping := range existing {
		if mapping.Verified {
			return nil
		}
	}

	stats.APICalls++
	candidates, err := s.client.SearchDrugs(ctx, drug.Name, searchCandidates)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		log.Debug().Str("drug_name", drug.Name).Msg("no rxnorm candidates found")
		return nil
	}

	best := candidates[0]
	confidence := utils.MappingConfidence(drug.Name, best.Name)
	now := s.now()

	current, err := s.mappingRepo.FindByDrugAndRxcui(ctx, drug.ID, best.Rxcui)
	if err != nil && !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		return err
	}

	if current != nil {
		current.ConceptName = best.Name
		current.TermType = best.TermType
		current.Source = mappingSource
		current.ConfidenceScore = confidence
		current.Verified = confidence >= autoVerifyThreshold
		current.UpdatedAt = now
		if err := s.mappingRepo.Update(ctx, current); err != nil {
			return err
		}
		stats.MappingsUpdated++
		return nil
	}

	mapping := &entities.ConceptMapping{
		ID:              uuid.New().String(),
		DrugID:          drug.ID,
		Rxcui:           best.Rxcui,
		ConceptName:     best.Name,
		TermType:        best.TermType,
		Source:          mappingSource,
		ConfidenceScore: confidence,
		Verified:        confidence >= autoVerifyThreshold,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.mappingRepo.Create(ctx, mapping); err != nil {
		return err
	}
	stats.MappingsAdded++
	return nil
}
