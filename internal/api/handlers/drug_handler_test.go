package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/drugreco/drugreco/backend/internal/domain/entities"
)

type mockSuggester struct {
	mock.Mock
}

func (m *mockSuggester) Suggest(ctx context.Context, query string, limit int) ([]*entities.Drug, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Drug), args.Error(1)
}

func TestSuggestDrugsHandler(t *testing.T) {
	suggester := new(mockSuggester)
	handler := NewDrugHandler(suggester)

	suggester.On("Suggest", mock.Anything, "asp", 10).Return([]*entities.Drug{
		{ID: "drug-1", Name: "Aspirin"},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/clinical/drugs/suggest?q=asp", nil)
	rec := httptest.NewRecorder()

	handler.SuggestDrugs(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["count"])
}

func TestSuggestDrugsHandlerRequiresQuery(t *testing.T) {
	handler := NewDrugHandler(new(mockSuggester))

	req := httptest.NewRequest(http.MethodGet, "/api/clinical/drugs/suggest", nil)
	rec := httptest.NewRecorder()

	handler.SuggestDrugs(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSuggestDrugsHandlerLimitBounds(t *testing.T) {
	handler := NewDrugHandler(new(mockSuggester))

	req := httptest.NewRequest(http.MethodGet, "/api/clinical/drugs/suggest?q=asp&limit=500", nil)
	rec := httptest.NewRecorder()

	handler.SuggestDrugs(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSuggestDrugsHandlerCustomLimit(t *testing.T) {
	suggester := new(mockSuggester)
	handler := NewDrugHandler(suggester)

	suggester.On("Suggest", mock.Anything, "war", 5).Return([]*entities.Drug{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/clinical/drugs/suggest?q=war&limit=5", nil)
	rec := httptest.NewRecorder()

	handler.SuggestDrugs(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	suggester.AssertExpectations(t)
}
