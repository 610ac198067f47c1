package services

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/drugreco/drugreco/backend/internal/domain/entities"
	"github.com/drugreco/drugreco/backend/internal/domain/repositories"
	"github.com/drugreco/drugreco/backend/internal/infrastructure/clients/rxnav"
	apperrors "github.com/drugreco/drugreco/backend/pkg/errors"
)

// Provenance values reported in check summaries. When a live lookup fails
// the response degrades to stored data and says so instead of erroring.
const (
	DataSourceCombined     = "clinical_database_and_rxnav"
	DataSourceDatabaseOnly = "clinical_database_only"
)

// InteractionView is one interaction in a check response, flattened to drug
// names for clinical display.
type InteractionView struct {
	ID             string            `json:"id,omitempty"`
	Severity       entities.Severity `json:"severity"`
	Drug1          string            `json:"drug1"`
	Drug2          string            `json:"drug2"`
	Description    string            `json:"description,omitempty"`
	Recommendation string            `json:"recommendation,omitempty"`
	Source         string            `json:"source"`
	EvidenceLevel  string            `json:"evidenceLevel,omitempty"`
	Confidence     float64           `json:"confidence"`
	LastVerified   time.Time         `json:"lastVerified"`
	Type           string            `json:"type"`
}

// DrugCheckView identifies one checked drug and its mapping state.
type DrugCheckView struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	HasRxNormMapping bool   `json:"hasRxNormMapping"`
}

// CheckSummary aggregates one interaction check.
type CheckSummary struct {
	TotalInteractions    int       `json:"totalInteractions"`
	CriticalInteractions int       `json:"criticalInteractions"`
	HighInteractions     int       `json:"highInteractions"`
	PairsTested          int       `json:"pairsTested"`
	ProcessingTimeMs     int64     `json:"processingTimeMs"`
	DataSource           string    `json:"dataSource"`
	LastUpdated          time.Time `json:"lastUpdated"`
}

// CheckResult is the full response of CheckInteractions.
type CheckResult struct {
	Interactions []InteractionView         `json:"interactions"`
	SafetyAlerts []*entities.ClinicalAlert `json:"safetyAlerts"`
	DrugsChecked []DrugCheckView           `json:"drugsChecked"`
	Summary      CheckSummary              `json:"summary"`
}

// RealtimeResult is the response of RealtimeCheck for one drug pair.
type RealtimeResult struct {
	Drug1                DrugCheckView               `json:"drug1"`
	Drug2                DrugCheckView               `json:"drug2"`
	RealTimeInteractions []rxnav.UpstreamInteraction `json:"realTimeInteractions"`
	ClinicalInteraction  *entities.Interaction       `json:"clinicalInteraction,omitempty"`
	Timestamp            time.Time                   `json:"timestamp"`
}

// AlertCheckResult is the response of CheckAlerts.
type AlertCheckResult struct {
	Alerts  []*entities.ClinicalAlert `json:"alerts"`
	Summary AlertSummary              `json:"summary"`
}

// AlertSummary aggregates an alert check.
type AlertSummary struct {
	TotalAlerts    int      `json:"totalAlerts"`
	CriticalAlerts int      `json:"criticalAlerts"`
	HighAlerts     int      `json:"highAlerts"`
	DrugsChecked   []string `json:"drugsChecked"`
}

// StatsResult is the response of Stats.
type StatsResult struct {
	Overview struct {
		TotalInteractions  int `json:"totalInteractions"`
		TotalAlerts        int `json:"totalAlerts"`
		TotalMappings      int `json:"totalMappings"`
		RecentInteractions int `json:"recentInteractions"`
	} `json:"overview"`
	SeverityBreakdown map[string]int `json:"severityBreakdown"`
	Timestamp         time.Time      `json:"timestamp"`
}

// InteractionQueryService is the read path: it combines stored interactions
// with live upstream lookups and standing safety alerts.
type InteractionQueryService struct {
	drugRepo        repositories.DrugRepository
	mappingRepo     repositories.ConceptMappingRepository
	interactionRepo repositories.InteractionRepository
	alertRepo       repositories.ClinicalAlertRepository
	sourceRepo      repositories.DataSourceRepository
	client          rxnav.Client
	liveLookups     bool
	now             func() time.Time
}

// NewInteractionQueryService creates a new interaction query service
func NewInteractionQueryService(
	drugRepo repositories.DrugRepository,
	mappingRepo repositories.ConceptMappingRepository,
	interactionRepo repositories.InteractionRepository,
	alertRepo repositories.ClinicalAlertRepository,
	sourceRepo repositories.DataSourceRepository,
	client rxnav.Client,
	liveLookups bool,
) *InteractionQueryService {
	return &InteractionQueryService{
		drugRepo:        drugRepo,
		mappingRepo:     mappingRepo,
		interactionRepo: interactionRepo,
		alertRepo:       alertRepo,
		sourceRepo:      sourceRepo,
		client:          client,
		liveLookups:     liveLookups,
		now:             time.Now,
	}
}

// CheckInteractions checks every pair within the given drug set against the
// stored knowledge base and, where mappings allow, the live upstream source.
func (s *InteractionQueryService) CheckInteractions(ctx context.Context, drugIDs []string, memberID string) (*CheckResult, error) {
	if len(drugIDs) == 0 {
		return nil, apperrors.NewValidationError("drug IDs array is required")
	}

	start := s.now()

	drugs, err := s.drugRepo.GetByIDs(ctx, drugIDs)
	if err != nil {
		return nil, err
	}
	if len(drugs) == 0 {
		return nil, apperrors.NewNotFoundError("no drugs found")
	}

	mappings, err := s.mappingRepo.BestVerifiedByDrugs(ctx, drugIDs)
	if err != nil {
		return nil, err
	}

	stored, err := s.storedInteractionViews(ctx, drugs)
	if err != nil {
		return nil, err
	}

	live, pairsTested, liveFailed := s.liveInteractionViews(ctx, drugs, mappings)

	merged := mergeInteractionViews(append(stored, live...))

	drugNames := make([]string, 0, len(drugs))
	for _, drug := range drugs {
		drugNames = append(drugNames, drug.Name)
	}
	alerts, err := s.alertRepo.ListActiveByDrugNames(ctx, drugNames)
	if err != nil {
		return nil, err
	}

	dataSource := DataSourceCombined
	if liveFailed {
		dataSource = DataSourceDatabaseOnly
	}

	result := &CheckResult{
		Interactions: merged,
		SafetyAlerts: alerts,
		DrugsChecked: make([]DrugCheckView, 0, len(drugs)),
		Summary: CheckSummary{
			TotalInteractions: len(merged),
			PairsTested:       pairsTested,
			ProcessingTimeMs:  s.now().Sub(start).Milliseconds(),
			DataSource:        dataSource,
			LastUpdated:       s.now().UTC(),
		},
	}
	for _, view := range merged {
		switch view.Severity {
		case entities.SeverityCritical:
			result.Summary.CriticalInteractions++
		case entities.SeverityHigh:
			result.Summary.HighInteractions++
		}
	}
	for _, drug := range drugs {
		_, hasMapping := mappings[drug.ID]
		result.DrugsChecked = append(result.DrugsChecked, DrugCheckView{
			ID:               drug.ID,
			Name:             drug.Name,
			HasRxNormMapping: hasMapping,
		})
	}

	logEvent := log.Info().
		Int("drug_count", len(drugs)).
		Int("interactions_found", len(merged)).
		Int("alerts_found", len(alerts)).
		Int64("processing_ms", result.Summary.ProcessingTimeMs)
	if memberID != "" {
		logEvent = logEvent.Str("member_id", memberID)
	}
	logEvent.Msg("clinical interaction check complete")

	return result, nil
}

// RealtimeCheck performs a live pair lookup plus a stored-database lookup
// for one drug pair.
func (s *InteractionQueryService) RealtimeCheck(ctx context.Context, drug1ID, drug2ID string) (*RealtimeResult, error) {
	drug1, err := s.drugRepo.GetByID(ctx, drug1ID)
	if err != nil {
		return nil, err
	}
	drug2, err := s.drugRepo.GetByID(ctx, drug2ID)
	if err != nil {
		return nil, err
	}

	mappings, err := s.mappingRepo.BestVerifiedByDrugs(ctx, []string{drug1ID, drug2ID})
	if err != nil {
		return nil, err
	}
	mapping1, has1 := mappings[drug1ID]
	mapping2, has2 := mappings[drug2ID]

	result := &RealtimeResult{
		Drug1:                DrugCheckView{ID: drug1.ID, Name: drug1.Name, HasRxNormMapping: has1},
		Drug2:                DrugCheckView{ID: drug2.ID, Name: drug2.Name, HasRxNormMapping: has2},
		RealTimeInteractions: []rxnav.UpstreamInteraction{},
		Timestamp:            s.now().UTC(),
	}

	if has1 && has2 {
		upstream, err := s.client.CheckInteractionBetween(ctx, mapping1.Rxcui, mapping2.Rxcui)
		if err != nil {
			log.Warn().
				Str("drug1_id", drug1ID).
				Str("drug2_id", drug2ID).
				Err(err).
				Msg("live interaction lookup failed")
		} else {
			result.RealTimeInteractions = upstream
		}
	}

	stored, err := s.interactionRepo.FindByPair(ctx, drug1ID, drug2ID)
	if err != nil && !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
		return nil, err
	}
	result.ClinicalInteraction = stored

	return result, nil
}

// CheckAlerts returns active safety alerts whose affected-drug sets
// intersect the given names.
func (s *InteractionQueryService) CheckAlerts(ctx context.Context, drugNames []string) (*AlertCheckResult, error) {
	if drugNames == nil {
		return nil, apperrors.NewValidationError("drug names array is required")
	}

	alerts, err := s.alertRepo.ListActiveByDrugNames(ctx, drugNames)
	if err != nil {
		return nil, err
	}

	result := &AlertCheckResult{
		Alerts: alerts,
		Summary: AlertSummary{
			TotalAlerts:  len(alerts),
			DrugsChecked: drugNames,
		},
	}
	for _, alert := range alerts {
		switch alert.Severity {
		case entities.SeverityCritical:
			result.Summary.CriticalAlerts++
		case entities.SeverityHigh:
			result.Summary.HighAlerts++
		}
	}

	return result, nil
}

// Stats returns knowledge-base totals and a severity breakdown.
func (s *InteractionQueryService) Stats(ctx context.Context) (*StatsResult, error) {
	result := &StatsResult{
		SeverityBreakdown: map[string]int{},
		Timestamp:         s.now().UTC(),
	}

	total, err := s.interactionRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	result.Overview.TotalInteractions = total

	alerts, err := s.alertRepo.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	result.Overview.TotalAlerts = alerts

	mappings, err := s.mappingRepo.CountVerified(ctx)
	if err != nil {
		return nil, err
	}
	result.Overview.TotalMappings = mappings

	recent, err := s.interactionRepo.CountCreatedSince(ctx, s.now().Add(-7*24*time.Hour))
	if err != nil {
		return nil, err
	}
	result.Overview.RecentInteractions = recent

	bySeverity, err := s.interactionRepo.CountBySeverity(ctx)
	if err != nil {
		return nil, err
	}
	for severity, count := range bySeverity {
		result.SeverityBreakdown[string(severity)] = count
	}

	return result, nil
}

func (s *InteractionQueryService) storedInteractionViews(ctx context.Context, drugs []*entities.Drug) ([]InteractionView, error) {
	drugIDs := make([]string, 0, len(drugs))
	namesByID := make(map[string]string, len(drugs))
	for _, drug := range drugs {
		drugIDs = append(drugIDs, drug.ID)
		namesByID[drug.ID] = drug.Name
	}

	interactions, err := s.interactionRepo.ListByDrugSet(ctx, drugIDs)
	if err != nil {
		return nil, err
	}

	sourceNames := map[string]string{}
	views := make([]InteractionView, 0, len(interactions))
	for _, interaction := range interactions {
		sourceName, ok := sourceNames[interaction.SourceID]
		if !ok {
			source, err := s.sourceRepo.GetByID(ctx, interaction.SourceID)
			if err != nil {
				sourceName = "unknown"
			} else {
				sourceName = source.Name
			}
			sourceNames[interaction.SourceID] = sourceName
		}

		description := interaction.Mechanism
		if description == "" {
			description = interaction.ClinicalSignificance
		}

		confidence := interaction.ConfidenceScore
		if confidence == 0 {
			confidence = 0.8
		}

		views = append(views, InteractionView{
			ID:             interaction.ID,
			Severity:       interaction.Severity,
			Drug1:          namesByID[interaction.Drug1ID],
			Drug2:          namesByID[interaction.Drug2ID],
			Description:    description,
			Recommendation: interaction.ManagementRecommendation,
			Source:         sourceName,
			EvidenceLevel:  interaction.EvidenceLevel,
			Confidence:     confidence,
			LastVerified:   interaction.LastVerified,
			Type:           "clinical_database",
		})
	}

	return views, nil
}

// liveInteractionViews checks each mapped pair against the upstream source.
// Failures degrade gracefully: the pair is skipped and the caller is told
// via the returned flag.
func (s *InteractionQueryService) liveInteractionViews(
	ctx context.Context,
	drugs []*entities.Drug,
	mappings map[string]*entities.ConceptMapping,
) ([]InteractionView, int, bool) {
	var mapped []*entities.Drug
	for _, drug := range drugs {
		if _, ok := mappings[drug.ID]; ok {
			mapped = append(mapped, drug)
		}
	}

	if !s.liveLookups {
		return nil, 0, false
	}

	var views []InteractionView
	pairsTested := 0
	anyFailed := false

	for i := 0; i < len(mapped); i++ {
		for j := i + 1; j < len(mapped); j++ {
			pairsTested++
			upstream, err := s.client.CheckInteractionBetween(ctx, mappings[mapped[i].ID].Rxcui, mappings[mapped[j].ID].Rxcui)
			if err != nil {
				anyFailed = true
				log.Warn().
					Str("drug1", mapped[i].Name).
					Str("drug2", mapped[j].Name).
					Err(err).
					Msg("live interaction lookup failed, using stored data")
				continue
			}

			for _, found := range upstream {
				views = append(views, InteractionView{
					Severity:       found.Severity,
					Drug1:          mapped[i].Name,
					Drug2:          mapped[j].Name,
					Description:    found.Description,
					Recommendation: "Consult healthcare provider",
					Source:         found.Source,
					EvidenceLevel:  "B",
					Confidence:     found.Confidence,
					LastVerified:   found.RetrievedAt,
					Type:           "rxnav_realtime",
				})
			}
		}
	}

	return views, pairsTested, anyFailed
}

// mergeInteractionViews deduplicates by unordered drug pair and severity,
// keeping first occurrence (stored results win over live ones), then sorts
// by severity rank and drug names.
func mergeInteractionViews(views []InteractionView) []InteractionView {
	type dedupKey struct {
		drug1, drug2 string
		severity     entities.Severity
	}

	seen := make(map[dedupKey]struct{}, len(views))
	merged := make([]InteractionView, 0, len(views))

	for _, view := range views {
		d1, d2 := view.Drug1, view.Drug2
		if d2 < d1 {
			d1, d2 = d2, d1
		}
		key := dedupKey{drug1: d1, drug2: d2, severity: view.Severity}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, view)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Severity.Rank() != merged[j].Severity.Rank() {
			return merged[i].Severity.Rank() < merged[j].Severity.Rank()
		}
		if merged[i].Drug1 != merged[j].Drug1 {
			return merged[i].Drug1 < merged[j].Drug1
		}
		return merged[i].Drug2 < merged[j].Drug2
	})

	return merged
}
