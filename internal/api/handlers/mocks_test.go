package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloo-solutions/draftwise/internal/domain"
	"github.com/cloo-solutions/draftwise/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockKnowledgeService struct {
	mock.Mock
}

func (m *MockKnowledgeService) Create(ctx context.Context, input service.CreateInput) (*domain.KnowledgeEntry, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KnowledgeEntry), args.Error(1)
}

func (m *MockKnowledgeService) Ingest(ctx context.Context, input service.CreateInput, embed bool) (*service.IngestOutput, error) {
	args := m.Called(ctx, input, embed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.IngestOutput), args.Error(1)
}

func (m *MockKnowledgeService) GetByID(ctx context.Context, id int64) (*domain.KnowledgeEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KnowledgeEntry), args.Error(1)
}

func (m *MockKnowledgeService) List(ctx context.Context, input service.ListKnowledgeInput) (*service.ListKnowledgeOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListKnowledgeOutput), args.Error(1)
}

func (m *MockKnowledgeService) Update(ctx context.Context, input service.UpdateInput) (*domain.KnowledgeEntry, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KnowledgeEntry), args.Error(1)
}

func (m *MockKnowledgeService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockEmbeddingService struct {
	mock.Mock
}

func (m *MockEmbeddingService) EmbedEntry(ctx context.Context, entryID int64) (*service.EmbedResult, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EmbedResult), args.Error(1)
}

func (m *MockEmbeddingService) Regenerate(ctx context.Context, entryID int64) (*service.EmbedResult, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EmbedResult), args.Error(1)
}

type MockBackfillService struct {
	mock.Mock
}

func (m *MockBackfillService) Run(ctx context.Context, input service.BackfillInput) (*service.BackfillResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BackfillResult), args.Error(1)
}

type MockSearchService struct {
	mock.Mock
}

func (m *MockSearchService) Semantic(ctx context.Context, input service.SemanticSearchInput) (*service.SemanticSearchOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SemanticSearchOutput), args.Error(1)
}

func (m *MockSearchService) ByStakeholderPriority(ctx context.Context, input service.PrioritySearchInput) (*service.PrioritySearchOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PrioritySearchOutput), args.Error(1)
}

func (m *MockSearchService) Hybrid(ctx context.Context, input service.HybridSearchInput) (*service.HybridSearchOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.HybridSearchOutput), args.Error(1)
}

type MockContentAssembler struct {
	mock.Mock
}

func (m *MockContentAssembler) Generate(ctx context.Context, input service.GenerateInput) (*service.GenerateOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.GenerateOutput), args.Error(1)
}

func (m *MockContentAssembler) Approve(ctx context.Context, input service.ApproveInput) (*service.ApproveOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ApproveOutput), args.Error(1)
}

type MockDeliverableService struct {
	mock.Mock
}

func (m *MockDeliverableService) Get(ctx context.Context, id int64) (*domain.Deliverable, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deliverable), args.Error(1)
}

func (m *MockDeliverableService) List(ctx context.Context, clientID *int64) ([]*domain.Deliverable, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Deliverable), args.Error(1)
}

func (m *MockDeliverableService) Update(ctx context.Context, input service.UpdateDeliverableInput) (*domain.Deliverable, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deliverable), args.Error(1)
}

func (m *MockDeliverableService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockDeliverableService) ArchiveURL(ctx context.Context, id int64) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

type MockClientService struct {
	mock.Mock
}

func (m *MockClientService) CreateClient(ctx context.Context, input service.ClientInput) (*domain.Client, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientService) GetClient(ctx context.Context, id int64) (*domain.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientService) ListClients(ctx context.Context) ([]*domain.Client, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Client), args.Error(1)
}

func (m *MockClientService) UpdateClient(ctx context.Context, id int64, input service.ClientInput) (*domain.Client, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientService) DeleteClient(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockClientService) CreateStakeholder(ctx context.Context, input service.StakeholderInput) (*domain.Stakeholder, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Stakeholder), args.Error(1)
}

func (m *MockClientService) GetStakeholder(ctx context.Context, id int64) (*domain.Stakeholder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Stakeholder), args.Error(1)
}

func (m *MockClientService) ListStakeholders(ctx context.Context, clientID int64) ([]*domain.Stakeholder, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Stakeholder), args.Error(1)
}

func (m *MockClientService) UpdateStakeholder(ctx context.Context, id int64, input service.StakeholderInput) (*domain.Stakeholder, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Stakeholder), args.Error(1)
}

func (m *MockClientService) DeleteStakeholder(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockClientService) CreateEngagement(ctx context.Context, input service.EngagementInput) (*domain.Engagement, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Engagement), args.Error(1)
}

func (m *MockClientService) GetEngagement(ctx context.Context, id int64) (*domain.Engagement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Engagement), args.Error(1)
}

func (m *MockClientService) ListEngagements(ctx context.Context, clientID int64) ([]*domain.Engagement, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Engagement), args.Error(1)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %s", w.Body.String())
	return data
}
