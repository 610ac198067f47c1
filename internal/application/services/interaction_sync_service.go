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
)

const rxnavSourceName = "RxNav"

// SyncStats summarizes one interaction synchronization pass.
type SyncStats struct {
	DrugPairsChecked    int `json:"drugPairsChecked"`
	InteractionsAdded   int `json:"interactionsAdded"`
	InteractionsUpdated int `json:"interactionsUpdated"`
	APICalls            int `json:"apiCalls"`
}

// InteractionSyncService refreshes stored interactions from the upstream
// source for every pair of confidently mapped drugs.
type InteractionSyncService struct {
	mappingRepo     repositories.ConceptMappingRepository
	interactionRepo repositories.InteractionRepository
	sourceRepo      repositories.DataSourceRepository
	client          rxnav.Client
	minConfidence   float64
	pace            time.Duration
	now             func() time.Time
}

// NewInteractionSyncService creates a new interaction sync service
func NewInteractionSyncService(
	mappingRepo repositories.ConceptMappingRepository,
	interactionRepo repositories.InteractionRepository,
	sourceRepo repositories.DataSourceRepository,
	client rxnav.Client,
	minConfidence float64,
	pace time.Duration,
) *InteractionSyncService {
	return &InteractionSyncService{
		mappingRepo:     mappingRepo,
		interactionRepo: interactionRepo,
		sourceRepo:      sourceRepo,
		client:          client,
		minConfidence:   minConfidence,
		pace:            pace,
		now:             time.Now,
	}
}

// SyncInteractions checks every unordered pair of verified mappings against
// the upstream source and upserts the results keyed by (pair, source).
// Pair-level failures are logged and skipped; a missing source registry row
// fails the whole pass since results could not be attributed.
func (s *InteractionSyncService) SyncInteractions(ctx context.Context) (*SyncStats, error) {
	mappings, err := s.mappingRepo.ListVerified(ctx, s.minConfidence)
	if err != nil {
		return nil, err
	}

	source, err := s.sourceRepo.FindByName(ctx, rxnavSourceName)
	if err != nil {
		return nil, err
	}

	stats := &SyncStats{
		DrugPairsChecked: len(mappings) * (len(mappings) - 1) / 2,
	}
	pacer := ratelimit.NewPacer(s.pace)

	for i := 0; i < len(mappings); i++ {
		for j := i + 1; j < len(mappings); j++ {
			if err := pacer.Wait(ctx); err != nil {
				return stats, err
			}

			if err := s.syncPair(ctx, mappings[i], mappings[j], source, stats); err != nil {
				log.Warn().
					Str("drug1_id", mappings[i].DrugID).
					Str("drug2_id", mappings[j].DrugID).
					Err(err).
					Msg("failed to check drug pair, skipping")
			}
		}
	}

	log.Info().
		Int("pairs_checked", stats.DrugPairsChecked).
		Int("added", stats.InteractionsAdded).
		Int("updated", stats.InteractionsUpdated).
		Int("api_calls", stats.APICalls).
		Msg("interaction sync pass complete")

	return stats, nil
}

func (s *InteractionSyncService) syncPair(
	ctx context.Context,
	mapping1, mapping2 *entities.ConceptMapping,
	source *entities.DataSource,
	stats *SyncStats,
) error {
	stats.APICalls++
	upstream, err := s.client.CheckInteractionBetween(ctx, mapping1.Rxcui, mapping2.Rxcui)
	if err != nil {
		return err
	}

	for _, found := range upstream {
		if err := s.upsertInteraction(ctx, mapping1, mapping2, source, found, stats); err != nil {
			return err
		}
	}

	return nil
}

func (s *InteractionSyncService) upsertInteraction(
	ctx context.Context,
	mapping1, mapping2 *entities.ConceptMapping,
	source *entities.DataSource,
	found rxnav.UpstreamInteraction,
	stats *SyncStats,
) error {
	drug1ID, drug2ID := entities.OrderedPair(mapping1.DrugID, mapping2.DrugID)
	drug1Rxcui, drug2Rxcui := mapping1.Rxcui, mapping2.Rxcui
	if drug1ID != mapping1.DrugID {
		drug1Rxcui, drug2Rxcui = mapping2.Rxcui, mapping1.Rxcui
	}

	confidence := found.Confidence
	if confidence == 0 {
		confidence = 0.90
	}
	now := s.now()

	existing, err := s.interactionRepo.FindByPairAndSource(ctx, drug1ID, drug2ID, source.ID)
	if err != nil && !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		return err
	}

	if existing != nil {
		existing.Drug1Rxcui = drug1Rxcui
		existing.Drug2Rxcui = drug2Rxcui
		existing.Severity = found.Severity
		existing.Mechanism = found.Description
		existing.ClinicalSignificance = found.Description
		existing.ManagementRecommendation = "Consult healthcare provider"
		existing.EvidenceLevel = "B"
		existing.ConfidenceScore = confidence
		existing.InteractionType = "drug-drug"
		existing.LastVerified = now
		if err := s.interactionRepo.Update(ctx, existing); err != nil {
			return err
		}
		stats.InteractionsUpdated++
		return nil
	}

	interaction := &entities.Interaction{
		ID:                       uuid.New().String(),
		Drug1ID:                  drug1ID,
		Drug2ID:                  drug2ID,
		Drug1Rxcui:               drug1Rxcui,
		Drug2Rxcui:               drug2Rxcui,
		Severity:                 found.Severity,
		Mechanism:                found.Description,
		ClinicalSignificance:     found.Description,
		ManagementRecommendation: "Consult healthcare provider",
		EvidenceLevel:            "B",
		SourceID:                 source.ID,
		ConfidenceScore:          confidence,
		InteractionType:          "drug-drug",
		LastVerified:             now,
		CreatedAt:                now,
		UpdatedAt:                now,
	}
	if err := s.interactionRepo.Create(ctx, interaction); err != nil {
		return err
	}
	stats.InteractionsAdded++
	return nil
}
