package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/drugreco/drugreco/backend/internal/domain/entities"
	"github.com/drugreco/drugreco/backend/internal/domain/providers"
	"github.com/drugreco/drugreco/backend/internal/domain/repositories"
)

// DrugIndexService keeps the suggestion index in sync with the drug catalog
// and serves name suggestions to callers building check requests.
type DrugIndexService struct {
	drugRepo repositories.DrugRepository
	index    providers.DrugIndexProvider
}

// NewDrugIndexService creates a new drug index service
func NewDrugIndexService(drugRepo repositories.DrugRepository, index providers.DrugIndexProvider) *DrugIndexService {
	return &DrugIndexService{
		drugRepo: drugRepo,
		index:    index,
	}
}

// IndexActiveDrugs reindexes the active drug catalog and returns the number
// of documents written.
func (s *DrugIndexService) IndexActiveDrugs(ctx context.Context) (int, error) {
	drugs, err := s.drugRepo.ListActive(ctx)
	if err != nil {
		return 0, err
	}
	if len(drugs) == 0 {
		return 0, nil
	}

	if err := s.index.IndexBatch(ctx, drugs); err != nil {
		return 0, err
	}

	log.Info().Int("count", len(drugs)).Msg("drug suggestion index refreshed")
	return len(drugs), nil
}

// Suggest returns active drugs matching the given name prefix.
func (s *DrugIndexService) Suggest(ctx context.Context, query string, limit int) ([]*entities.Drug, error) {
	return s.index.Suggest(ctx, query, limit)
}
