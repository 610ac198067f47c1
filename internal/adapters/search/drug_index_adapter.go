package search

import (
	"context"
	"fmt"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/drugreco/drugreco/backend/internal/domain/entities"
	"github.com/drugreco/drugreco/backend/internal/domain/providers"
	tsclient "github.com/drugreco/drugreco/backend/internal/infrastructure/clients/typesense"
)

// DrugIndexAdapter implements drug name suggestions using Typesense
type DrugIndexAdapter struct {
	client *tsclient.Client
}

// Ensure DrugIndexAdapter implements DrugIndexProvider
var _ providers.DrugIndexProvider = (*DrugIndexAdapter)(nil)

// NewDrugIndexAdapter creates a new Typesense drug index adapter
func NewDrugIndexAdapter(client *tsclient.Client) *DrugIndexAdapter {
	return &DrugIndexAdapter{client: client}
}

// Index upserts a drug document into the index
func (a *DrugIndexAdapter) Index(ctx context.Context, drug *entities.Drug) error {
	_, err := a.client.Client().Collection(tsclient.DrugsCollection).Documents().Upsert(ctx, drugDocument(drug))
	if err != nil {
		return fmt.Errorf("failed to index drug: %w", err)
	}

	return nil
}

// IndexBatch upserts multiple drug documents
func (a *DrugIndexAdapter) IndexBatch(ctx context.Context, drugs []*entities.Drug) error {
	if len(drugs) == 0 {
		return nil
	}

	documents := make([]interface{}, 0, len(drugs))
	for _, drug := range drugs {
		documents = append(documents, drugDocument(drug))
	}

	params := &api.ImportDocumentsParams{
		Action:    pointer.String(string(api.Upsert)),
		BatchSize: pointer.Int(len(documents)),
	}

	_, err := a.client.Client().Collection(tsclient.DrugsCollection).Documents().Import(ctx, documents, params)
	if err != nil {
		return fmt.Errorf("failed to batch index drugs: %w", err)
	}

	return nil
}

// Suggest returns active drugs matching the given name prefix
func (a *DrugIndexAdapter) Suggest(ctx context.Context, query string, limit int) ([]*entities.Drug, error) {
	if limit <= 0 {
		limit = 10
	}

	searchParams := &api.SearchCollectionParams{
		Q:        pointer.String(query),
		QueryBy:  pointer.String("name"),
		FilterBy: pointer.String("is_active:=true"),
		PerPage:  pointer.Int(limit),
	}

	result, err := a.client.Client().Collection(tsclient.DrugsCollection).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search drugs: %w", err)
	}

	drugs := []*entities.Drug{}
	if result.Hits == nil {
		return drugs, nil
	}

	for _, hit := range *result.Hits {
		doc := *hit.Document

		drug := &entities.Drug{
			ID:       doc["id"].(string),
			Name:     doc["name"].(string),
			IsActive: doc["is_active"].(bool),
		}
		if val, ok := doc["category"].(string); ok {
			drug.Category = val
		}
		if val, ok := doc["manufacturer"].(string); ok {
			drug.Manufacturer = val
		}

		drugs = append(drugs, drug)
	}

	return drugs, nil
}

func drugDocument(drug *entities.Drug) map[string]interface{} {
	return map[string]interface{}{
		"id":           drug.ID,
		"name":         drug.Name,
		"category":     drug.Category,
		"manufacturer": drug.Manufacturer,
		"is_active":    drug.IsActive,
	}
}
