package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/cloo-solutions/draftwise/internal/domain"
	"github.com/cloo-solutions/draftwise/internal/ranking"
	"github.com/cloo-solutions/draftwise/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

// KnowledgeRetriever ranks entries against a query.
type KnowledgeRetriever interface {
	Retrieve(ctx context.Context, input RetrieveInput) ([]domain.ScoredResult, error)
}

// StakeholderReader loads a stakeholder.
type StakeholderReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Stakeholder, error)
}

// SearchSettings holds the tunable thresholds, weights and limits.
type SearchSettings struct {
	SemanticThreshold       float64
	PriorityThreshold       float64
	HybridSemanticThreshold float64
	Weights                 ranking.Weights
	DefaultLimit            int
	MaxLimit                int
}

// DefaultSearchSettings mirrors the shipped configuration defaults.
func DefaultSearchSettings() SearchSettings {
	return SearchSettings{
		SemanticThreshold:       0.3,
		PriorityThreshold:       0.2,
		HybridSemanticThreshold: 0.2,
		Weights:                 ranking.DefaultWeights,
		DefaultLimit:            5,
		MaxLimit:                50,
	}
}

// SearchService answers semantic, stakeholder-priority and hybrid searches.
type SearchService struct {
	retriever    KnowledgeRetriever
	stakeholders StakeholderReader
	settings     SearchSettings
	logger       *slog.Logger
}

func NewSearchService(retriever KnowledgeRetriever, stakeholders StakeholderReader, settings SearchSettings) *SearchService {
	return &SearchService{
		retriever:    retriever,
		stakeholders: stakeholders,
		settings:     settings,
		logger:       slog.Default().With("component", "search"),
	}
}

type SemanticSearchInput struct {
	Query     string
	ClientID  *int64
	Limit     int
	Threshold *float64
}

type SemanticSearchOutput struct {
	Query      string                `json:"query"`
	Results    []domain.ScoredResult `json:"results"`
	TotalFound int                   `json:"total_found"`
}

type PrioritySearchInput struct {
	StakeholderID int64
	Limit         int
}

type PrioritySearchOutput struct {
	StakeholderID   int64                 `json:"stakeholder_id"`
	StakeholderName string                `json:"stakeholder_name"`
	PrioritiesText  string                `json:"priorities_text"`
	Results         []domain.ScoredResult `json:"results"`
	TotalFound      int                   `json:"total_found"`
}

type HybridSearchInput struct {
	Query         string
	ClientID      *int64
	StakeholderID *int64
	Limit         int
}

type HybridSearchOutput struct {
	Query         string                `json:"query"`
	StakeholderID *int64                `json:"stakeholder_id"`
	Results       []domain.HybridResult `json:"results"`
	TotalFound    int                   `json:"total_found"`
}

// Semantic ranks entries by similarity to the free-text query. Scores at or
// above the threshold are kept.
func (s *SearchService) Semantic(ctx context.Context, input SemanticSearchInput) (*SemanticSearchOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "SearchService.Semantic", telemetry.SpanAttributes{
		ClientID:  derefID(input.ClientID),
		Operation: "search",
	})
	defer span.End()

	if strings.TrimSpace(input.Query) == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "query is required")
	}

	threshold := s.settings.SemanticThreshold
	if input.Threshold != nil {
		threshold = *input.Threshold
	}

	results, err := s.retriever.Retrieve(ctx, RetrieveInput{
		Query:     input.Query,
		Scope:     domain.Scope{ClientID: input.ClientID},
		TopK:      s.limit(input.Limit),
		MinScore:  threshold,
		Threshold: ranking.Inclusive,
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	span.SetCount("results", len(results))
	return &SemanticSearchOutput{
		Query:      input.Query,
		Results:    nonNilResults(results),
		TotalFound: len(results),
	}, nil
}

// ByStakeholderPriority ranks the stakeholder's client knowledge against the
// stakeholder's priority signal. Scores strictly above the threshold are kept.
func (s *SearchService) ByStakeholderPriority(ctx context.Context, input PrioritySearchInput) (*PrioritySearchOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "SearchService.ByStakeholderPriority", telemetry.SpanAttributes{
		StakeholderID: input.StakeholderID,
		Operation:     "search",
	})
	defer span.End()

	st, err := s.stakeholders.GetByID(ctx, input.StakeholderID)
	if err != nil {
		return nil, err
	}

	signal := st.PrioritySignal()
	if signal == "" {
		return nil, domain.ErrNoPrioritiesDefined
	}

	results, err := s.rankByPriorities(ctx, st, s.limit(input.Limit))
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	span.SetCount("results", len(results))
	return &PrioritySearchOutput{
		StakeholderID:   st.ID,
		StakeholderName: st.Name,
		PrioritiesText:  signal,
		Results:         nonNilResults(results),
		TotalFound:      len(results),
	}, nil
}

// rankByPriorities scores the stakeholder's client knowledge against its priority signal.
func (s *SearchService) rankByPriorities(ctx context.Context, st *domain.Stakeholder, limit int) ([]domain.ScoredResult, error) {
	signal := st.PrioritySignal()
	if signal == "" {
		return nil, domain.ErrNoPrioritiesDefined
	}

	clientID := st.ClientID
	return s.retriever.Retrieve(ctx, RetrieveInput{
		Query:     signal,
		Scope:     domain.Scope{ClientID: &clientID},
		TopK:      limit,
		MinScore:  s.settings.PriorityThreshold,
		Threshold: ranking.Exclusive,
	})
}

// Hybrid runs the semantic and priority searches concurrently and merges them
// with the configured weights. A failing priority leg counts as empty. A
// stakeholder of another client than the requested one is rejected.
func (s *SearchService) Hybrid(ctx context.Context, input HybridSearchInput) (*HybridSearchOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "SearchService.Hybrid", telemetry.SpanAttributes{
		ClientID:      derefID(input.ClientID),
		StakeholderID: derefID(input.StakeholderID),
		Operation:     "search",
	})
	defer span.End()

	if strings.TrimSpace(input.Query) == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "query is required")
	}

	limit := s.limit(input.Limit)

	var stakeholder *domain.Stakeholder
	if input.StakeholderID != nil {
		st, err := s.stakeholders.GetByID(ctx, *input.StakeholderID)
		switch {
		case err != nil:
			s.logger.Warn("priority leg of hybrid search skipped", "stakeholder_id", *input.StakeholderID, "err", err)
		case input.ClientID != nil && st.ClientID != *input.ClientID:
			return nil, domain.ErrStakeholderOtherClient
		default:
			stakeholder = st
		}
	}

	var semantic, priority []domain.ScoredResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		semantic, err = s.retriever.Retrieve(gctx, RetrieveInput{
			Query:     input.Query,
			Scope:     domain.Scope{ClientID: input.ClientID},
			TopK:      limit,
			MinScore:  s.settings.HybridSemanticThreshold,
			Threshold: ranking.Inclusive,
		})
		return err
	})
	if stakeholder != nil {
		g.Go(func() error {
			results, err := s.rankByPriorities(gctx, stakeholder, limit)
			if err != nil {
				s.logger.Warn("priority leg of hybrid search failed", "stakeholder_id", stakeholder.ID, "err", err)
				return nil
			}
			priority = inClient(results, input.ClientID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.SetError(err)
		return nil, err
	}

	results := ranking.Combine(semantic, priority, s.settings.Weights, limit)
	if results == nil {
		results = []domain.HybridResult{}
	}

	span.SetCount("results", len(results))
	return &HybridSearchOutput{
		Query:         input.Query,
		StakeholderID: input.StakeholderID,
		Results:       results,
		TotalFound:    len(results),
	}, nil
}

func (s *SearchService) limit(requested int) int {
	if requested <= 0 {
		return s.settings.DefaultLimit
	}
	if s.settings.MaxLimit > 0 && requested > s.settings.MaxLimit {
		return s.settings.MaxLimit
	}
	return requested
}

// inClient drops results outside clientID. A nil clientID keeps everything.
func inClient(results []domain.ScoredResult, clientID *int64) []domain.ScoredResult {
	if clientID == nil {
		return results
	}
	kept := results[:0:0]
	for _, r := range results {
		if r.ClientID == *clientID {
			kept = append(kept, r)
		}
	}
	return kept
}

func nonNilResults(r []domain.ScoredResult) []domain.ScoredResult {
	if r == nil {
		return []domain.ScoredResult{}
	}
	return r
}

func derefID(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}
