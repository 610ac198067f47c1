package rxnav

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/drugreco/drugreco/backend/internal/domain/entities"
	"github.com/drugreco/drugreco/backend/pkg/config"
	"github.com/drugreco/drugreco/backend/pkg/retry"
)

const (
	sourceName = "RxNav/NIH"
	userAgent  = "DrugReco/1.0 (Healthcare Application)"
)

// Client is the upstream drug-interaction knowledge API. The NIH RxNav
// service is free and unauthenticated; all operations are plain GETs.
type Client interface {
	SearchDrugs(ctx context.Context, name string, maxEntries int) ([]Concept, error)
	FindExactConcept(ctx context.Context, name string) (string, error)
	GetInteractionsForConcept(ctx context.Context, rxcui string) ([]UpstreamInteraction, error)
	CheckInteractionBetween(ctx context.Context, rxcui1, rxcui2 string) ([]UpstreamInteraction, error)
	GetRelatedConcepts(ctx context.Context, rxcui string, termTypes []string) ([]Concept, error)
	HealthCheck(ctx context.Context) (*HealthStatus, error)
}

// Concept is an RxNorm drug concept returned by search endpoints.
type Concept struct {
	Rxcui    string `json:"rxcui"`
	Name     string `json:"name"`
	Synonym  string `json:"synonym,omitempty"`
	TermType string `json:"tty,omitempty"`
	Language string `json:"language,omitempty"`
}

// UpstreamInteraction is one pairwise interaction reported by the upstream
// service, with the free-text severity already mapped to the local scale.
type UpstreamInteraction struct {
	Severity    entities.Severity `json:"severity"`
	Drug1Rxcui  string            `json:"drug1_rxcui"`
	Drug1Name   string            `json:"drug1_name"`
	Drug2Rxcui  string            `json:"drug2_rxcui"`
	Drug2Name   string            `json:"drug2_name"`
	Description string            `json:"description"`
	Source      string            `json:"source"`
	Confidence  float64           `json:"confidence"`
	RetrievedAt time.Time         `json:"retrieved_at"`
}

// HealthStatus is the result of an upstream health probe.
type HealthStatus struct {
	Status         string    `json:"status"`
	ResponseTimeMs int64     `json:"response_time_ms"`
	Service        string    `json:"service"`
	Error          string    `json:"error,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// HTTPClient implements Client against the RxNav REST endpoint with bounded
// linear-backoff retries.
type HTTPClient struct {
	baseURL        string
	httpClient     *http.Client
	retryCfg       retry.Config
	severityMapper SeverityMapper
}

var _ Client = (*HTTPClient)(nil)

// NewClient creates an RxNav client from configuration.
func NewClient(cfg *config.RxNavConfig) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		retryCfg:       retry.LinearConfig(cfg.RetryAttempts, cfg.RetryBaseDelay),
		severityMapper: DefaultSeverityMapper,
	}
}

// SetSeverityMapper replaces the severity mapping used for upstream results.
func (c *HTTPClient) SetSeverityMapper(mapper SeverityMapper) {
	c.severityMapper = mapper
}

// Upstream wire shapes. RxNav nests results two to three levels deep; the
// decoder types stay private and the flattened results are returned.

type conceptProperties struct {
	Rxcui    string `json:"rxcui"`
	Name     string `json:"name"`
	Synonym  string `json:"synonym"`
	TTY      string `json:"tty"`
	Language string `json:"language"`
}

type drugSearchResponse struct {
	DrugGroup struct {
		ConceptGroup []struct {
			TTY               string              `json:"tty"`
			ConceptProperties []conceptProperties `json:"conceptProperties"`
		} `json:"conceptGroup"`
	} `json:"drugGroup"`
}

type exactConceptResponse struct {
	IDGroup struct {
		RxnormID []string `json:"rxnormId"`
	} `json:"idGroup"`
}

type relatedConceptsResponse struct {
	RelatedGroup struct {
		ConceptGroup []struct {
			TTY               string              `json:"tty"`
			ConceptProperties []conceptProperties `json:"conceptProperties"`
		} `json:"conceptGroup"`
	} `json:"relatedGroup"`
}

type minConceptItem struct {
	Rxcui string `json:"rxcui"`
	Name  string `json:"name"`
}

type interactionPair struct {
	InteractionConcept []struct {
		MinConceptItem minConceptItem `json:"minConceptItem"`
	} `json:"interactionConcept"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

type conceptInteractionsResponse struct {
	InteractionTypeGroup []struct {
		InteractionType []struct {
			InteractionPair []interactionPair `json:"interactionPair"`
		} `json:"interactionType"`
	} `json:"interactionTypeGroup"`
}

type pairInteractionsResponse struct {
	FullInteractionTypeGroup []struct {
		FullInteractionType []struct {
			InteractionPair []interactionPair `json:"interactionPair"`
		} `json:"fullInteractionType"`
	} `json:"fullInteractionTypeGroup"`
}

// SearchDrugs searches for drug concepts by name.
func (c *HTTPClient) SearchDrugs(ctx context.Context, name string, maxEntries int) ([]Concept, error) {
	params := url.Values{}
	params.Set("name", name)
	if maxEntries > 0 {
		params.Set("maxEntries", fmt.Sprintf("%d", maxEntries))
	}

	var resp drugSearchResponse
	if err := c.getJSON(ctx, "/drugs.json", params, &resp); err != nil {
		return nil, err
	}

	var results []Concept
	for _, group := range resp.DrugGroup.ConceptGroup {
		for _, concept := range group.ConceptProperties {
			results = append(results, Concept{
				Rxcui:    concept.Rxcui,
				Name:     concept.Name,
				Synonym:  concept.Synonym,
				TermType: concept.TTY,
				Language: concept.Language,
			})
		}
	}

	log.Debug().Str("drug", name).Int("results", len(results)).Msg("rxnav drug search complete")
	return results, nil
}

// FindExactConcept finds the RxNorm concept id for an exact drug name, or
// returns the empty string when no exact match exists.
func (c *HTTPClient) FindExactConcept(ctx context.Context, name string) (string, error) {
	params := url.Values{}
	params.Set("name", name)
	params.Set("search", "0") // exact match

	var resp exactConceptResponse
	if err := c.getJSON(ctx, "/rxcui.json", params, &resp); err != nil {
		return "", err
	}

	if len(resp.IDGroup.RxnormID) == 0 {
		return "", nil
	}
	return resp.IDGroup.RxnormID[0], nil
}

// GetInteractionsForConcept retrieves all known interactions for one concept.
func (c *HTTPClient) GetInteractionsForConcept(ctx context.Context, rxcui string) ([]UpstreamInteraction, error) {
	params := url.Values{}
	params.Set("rxcui", rxcui)

	var resp conceptInteractionsResponse
	if err := c.getJSON(ctx, "/interaction/interaction.json", params, &resp); err != nil {
		return nil, err
	}

	var interactions []UpstreamInteraction
	for _, group := range resp.InteractionTypeGroup {
		for _, intType := range group.InteractionType {
			for _, pair := range intType.InteractionPair {
				interactions = append(interactions, c.buildInteraction(pair))
			}
		}
	}

	log.Debug().Str("rxcui", rxcui).Int("interactions", len(interactions)).Msg("rxnav concept interactions complete")
	return interactions, nil
}

// CheckInteractionBetween retrieves interactions between two concepts.
func (c *HTTPClient) CheckInteractionBetween(ctx context.Context, rxcui1, rxcui2 string) ([]UpstreamInteraction, error) {
	params := url.Values{}
	params.Set("rxcuis", fmt.Sprintf("%s+%s", rxcui1, rxcui2))

	var resp pairInteractionsResponse
	if err := c.getJSON(ctx, "/interaction/list.json", params, &resp); err != nil {
		return nil, err
	}

	var interactions []UpstreamInteraction
	for _, group := range resp.FullInteractionTypeGroup {
		for _, intType := range group.FullInteractionType {
			for _, pair := range intType.InteractionPair {
				interactions = append(interactions, c.buildInteraction(pair))
			}
		}
	}

	log.Debug().
		Str("rxcui1", rxcui1).
		Str("rxcui2", rxcui2).
		Int("interactions", len(interactions)).
		Msg("rxnav pair interaction check complete")
	return interactions, nil
}

// GetRelatedConcepts retrieves related concepts (generics, brands, packs).
func (c *HTTPClient) GetRelatedConcepts(ctx context.Context, rxcui string, termTypes []string) ([]Concept, error) {
	if len(termTypes) == 0 {
		termTypes = []string{"SCD", "SBD", "GPCK", "BPCK"}
	}

	params := url.Values{}
	params.Set("tty", strings.Join(termTypes, "+"))

	var resp relatedConceptsResponse
	endpoint := fmt.Sprintf("/rxcui/%s/related.json", url.PathEscape(rxcui))
	if err := c.getJSON(ctx, endpoint, params, &resp); err != nil {
		return nil, err
	}

	var related []Concept
	for _, group := range resp.RelatedGroup.ConceptGroup {
		for _, concept := range group.ConceptProperties {
			related = append(related, Concept{
				Rxcui:    concept.Rxcui,
				Name:     concept.Name,
				TermType: concept.TTY,
			})
		}
	}
	return related, nil
}

// HealthCheck probes the upstream service with a minimal search.
func (c *HTTPClient) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	start := time.Now()

	params := url.Values{}
	params.Set("name", "aspirin")
	params.Set("maxEntries", "1")

	var resp drugSearchResponse
	err := c.getJSON(ctx, "/drugs.json", params, &resp)
	elapsed := time.Since(start)

	if err != nil {
		return &HealthStatus{
			Status:         "unhealthy",
			ResponseTimeMs: elapsed.Milliseconds(),
			Service:        sourceName,
			Error:          err.Error(),
			Timestamp:      time.Now().UTC(),
		}, nil
	}

	return &HealthStatus{
		Status:         "healthy",
		ResponseTimeMs: elapsed.Milliseconds(),
		Service:        sourceName,
		Timestamp:      time.Now().UTC(),
	}, nil
}

func (c *HTTPClient) buildInteraction(pair interactionPair) UpstreamInteraction {
	interaction := UpstreamInteraction{
		Severity:    c.severityMapper(pair.Severity),
		Description: pair.Description,
		Source:      sourceName,
		Confidence:  0.90, // upstream data is authoritative
		RetrievedAt: time.Now().UTC(),
	}
	if len(pair.InteractionConcept) > 0 {
		interaction.Drug1Rxcui = pair.InteractionConcept[0].MinConceptItem.Rxcui
		interaction.Drug1Name = pair.InteractionConcept[0].MinConceptItem.Name
	}
	if len(pair.InteractionConcept) > 1 {
		interaction.Drug2Rxcui = pair.InteractionConcept[1].MinConceptItem.Rxcui
		interaction.Drug2Name = pair.InteractionConcept[1].MinConceptItem.Name
	}
	return interaction
}

// getJSON performs a GET with bounded retries. On exhaustion the last error
// is surfaced to the caller, never swallowed.
func (c *HTTPClient) getJSON(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	fullURL := c.baseURL + endpoint
	if len(params) > 0 {
		fullURL = fullURL + "?" + params.Encode()
	}

	return retry.DoWithLog(ctx, c.retryCfg, "RxNav",
		func() error {
			return c.doRequest(ctx, fullURL, out)
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Warn().
				Int("attempt", attempt).
				Dur("next_delay", nextDelay).
				Err(err).
				Str("endpoint", endpoint).
				Msg("rxnav request attempt failed")
		},
	)
}

func (c *HTTPClient) doRequest(ctx context.Context, fullURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("rxnav returned status %d: %s", resp.StatusCode, resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
