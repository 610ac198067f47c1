package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/drugreco/drugreco/backend/internal/application/services"
	apperrors "github.com/drugreco/drugreco/backend/pkg/errors"
)

type mockQuerier struct {
	mock.Mock
}

func (m *mockQuerier) CheckInteractions(ctx context.Context, drugIDs []string, memberID string) (*services.CheckResult, error) {
	args := m.Called(ctx, drugIDs, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.CheckResult), args.Error(1)
}

func (m *mockQuerier) RealtimeCheck(ctx context.Context, drug1ID, drug2ID string) (*services.RealtimeResult, error) {
	args := m.Called(ctx, drug1ID, drug2ID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.RealtimeResult), args.Error(1)
}

func (m *mockQuerier) CheckAlerts(ctx context.Context, drugNames []string) (*services.AlertCheckResult, error) {
	args := m.Called(ctx, drugNames)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AlertCheckResult), args.Error(1)
}

func (m *mockQuerier) Stats(ctx context.Context) (*services.StatsResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.StatsResult), args.Error(1)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestCheckInteractionsHandler(t *testing.T) {
	querier := new(mockQuerier)
	handler := NewInteractionHandler(querier)

	result := &services.CheckResult{
		Interactions: []services.InteractionView{{Drug1: "Aspirin", Drug2: "Warfarin"}},
		Summary:      services.CheckSummary{TotalInteractions: 1, DataSource: services.DataSourceCombined},
	}
	querier.On("CheckInteractions", mock.Anything, []string{"drug-1", "drug-2"}, "member-7").
		Return(result, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/clinical/interactions/check",
		strings.NewReader(`{"drugIds":["drug-1","drug-2"],"memberId":"member-7"}`))
	rec := httptest.NewRecorder()

	handler.CheckInteractions(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, true, body["success"])
	assert.NotNil(t, body["data"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestCheckInteractionsHandlerRequiresDrugIDs(t *testing.T) {
	handler := NewInteractionHandler(new(mockQuerier))

	req := httptest.NewRequest(http.MethodPost, "/api/clinical/interactions/check",
		strings.NewReader(`{"drugIds":[]}`))
	rec := httptest.NewRecorder()

	handler.CheckInteractions(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, false, body["success"])
}

func TestCheckInteractionsHandlerInvalidBody(t *testing.T) {
	handler := NewInteractionHandler(new(mockQuerier))

	req := httptest.NewRequest(http.MethodPost, "/api/clinical/interactions/check",
		strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()

	handler.CheckInteractions(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckInteractionsHandlerNotFound(t *testing.T) {
	querier := new(mockQuerier)
	handler := NewInteractionHandler(querier)

	querier.On("CheckInteractions", mock.Anything, []string{"ghost"}, "").
		Return(nil, apperrors.NewNotFoundError("no drugs found"))

	req := httptest.NewRequest(http.MethodPost, "/api/clinical/interactions/check",
		strings.NewReader(`{"drugIds":["ghost"]}`))
	rec := httptest.NewRecorder()

	handler.CheckInteractions(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRealtimeCheckHandler(t *testing.T) {
	querier := new(mockQuerier)
	handler := NewInteractionHandler(querier)

	querier.On("RealtimeCheck", mock.Anything, "drug-1", "drug-2").
		Return(&services.RealtimeResult{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/clinical/interactions/realtime/drug-1/drug-2", nil)
	req.SetPathValue("drug1Id", "drug-1")
	req.SetPathValue("drug2Id", "drug-2")
	rec := httptest.NewRecorder()

	handler.RealtimeCheck(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRealtimeCheckHandlerMissingID(t *testing.T) {
	handler := NewInteractionHandler(new(mockQuerier))

	req := httptest.NewRequest(http.MethodGet, "/api/clinical/interactions/realtime/drug-1/", nil)
	req.SetPathValue("drug1Id", "drug-1")
	rec := httptest.NewRecorder()

	handler.RealtimeCheck(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckAlertsHandler(t *testing.T) {
	querier := new(mockQuerier)
	handler := NewInteractionHandler(querier)

	querier.On("CheckAlerts", mock.Anything, []string{"Warfarin"}).
		Return(&services.AlertCheckResult{Summary: services.AlertSummary{TotalAlerts: 1}}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/clinical/alerts/check",
		strings.NewReader(`{"drugNames":["Warfarin"]}`))
	rec := httptest.NewRecorder()

	handler.CheckAlerts(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCheckAlertsHandlerRequiresNames(t *testing.T) {
	handler := NewInteractionHandler(new(mockQuerier))

	req := httptest.NewRequest(http.MethodPost, "/api/clinical/alerts/check",
		strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	handler.CheckAlerts(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetStatsHandler(t *testing.T) {
	querier := new(mockQuerier)
	handler := NewInteractionHandler(querier)

	querier.On("Stats", mock.Anything).Return(&services.StatsResult{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/clinical/stats", nil)
	rec := httptest.NewRecorder()

	handler.GetStats(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, true, body["success"])
}
