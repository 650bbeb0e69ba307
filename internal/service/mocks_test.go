package service

import (
	"context"
	"time"

	"github.com/cloo-solutions/draftwise/internal/domain"
	"github.com/cloo-solutions/draftwise/internal/pagination"
	"github.com/stretchr/testify/mock"
)

// MockKnowledgeRepository is a mock implementation of KnowledgeRepositoryInterface
type MockKnowledgeRepository struct {
	mock.Mock
}

func (m *MockKnowledgeRepository) Create(ctx context.Context, k *domain.KnowledgeEntry) error {
	args := m.Called(ctx, k)
	return args.Error(0)
}

func (m *MockKnowledgeRepository) GetByID(ctx context.Context, id int64) (*domain.KnowledgeEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KnowledgeEntry), args.Error(1)
}

func (m *MockKnowledgeRepository) ListWithCursor(ctx context.Context, filter KnowledgeFilter, cursor *pagination.Cursor, limit int) (*KnowledgePageResult, error) {
	args := m.Called(ctx, filter, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*KnowledgePageResult), args.Error(1)
}

func (m *MockKnowledgeRepository) ListRecent(ctx context.Context, scope domain.Scope, limit int) ([]*domain.KnowledgeEntry, error) {
	args := m.Called(ctx, scope, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.KnowledgeEntry), args.Error(1)
}

func (m *MockKnowledgeRepository) Update(ctx context.Context, k *domain.KnowledgeEntry) error {
	args := m.Called(ctx, k)
	return args.Error(0)
}

func (m *MockKnowledgeRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockEmbeddingStore is a mock implementation of EmbeddingStoreInterface
type MockEmbeddingStore struct {
	mock.Mock
}

func (m *MockEmbeddingStore) HasEmbedding(ctx context.Context, entryID int64) (bool, error) {
	args := m.Called(ctx, entryID)
	return args.Bool(0), args.Error(1)
}

func (m *MockEmbeddingStore) Get(ctx context.Context, entryID int64) (*domain.Embedding, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Embedding), args.Error(1)
}

func (m *MockEmbeddingStore) Put(ctx context.Context, e *domain.Embedding) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEmbeddingStore) Delete(ctx context.Context, entryID int64) error {
	args := m.Called(ctx, entryID)
	return args.Error(0)
}

func (m *MockEmbeddingStore) ListMissing(ctx context.Context, clientID *int64, limit int) ([]domain.MissingEmbedding, error) {
	args := m.Called(ctx, clientID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MissingEmbedding), args.Error(1)
}

func (m *MockEmbeddingStore) ListCandidates(ctx context.Context, scope domain.Scope) ([]domain.Candidate, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Candidate), args.Error(1)
}

// MockVectorizer is a mock implementation of Vectorizer
type MockVectorizer struct {
	mock.Mock
}

func (m *MockVectorizer) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockVectorizer) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if fn, ok := args.Get(0).(func(context.Context, []string) [][]float32); ok {
		return fn(ctx, texts), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func (m *MockVectorizer) Dimensions() int {
	return m.Called().Int(0)
}

func (m *MockVectorizer) Model() string {
	return m.Called().String(0)
}

// MockEntryEmbedder is a mock implementation of EntryEmbedder
type MockEntryEmbedder struct {
	mock.Mock
}

func (m *MockEntryEmbedder) EmbedEntry(ctx context.Context, entryID int64) (*EmbedResult, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*EmbedResult), args.Error(1)
}

// MockClientRepository is a mock implementation of ClientRepositoryInterface
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) Create(ctx context.Context, c *domain.Client) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockClientRepository) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Client), args.Error(1)
}

func (m *MockClientRepository) List(ctx context.Context) ([]*domain.Client, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Client), args.Error(1)
}

func (m *MockClientRepository) Update(ctx context.Context, c *domain.Client) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockClientRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockStakeholderRepository is a mock implementation of StakeholderRepositoryInterface
type MockStakeholderRepository struct {
	mock.Mock
}

func (m *MockStakeholderRepository) Create(ctx context.Context, s *domain.Stakeholder) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockStakeholderRepository) GetByID(ctx context.Context, id int64) (*domain.Stakeholder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Stakeholder), args.Error(1)
}

func (m *MockStakeholderRepository) ListByClient(ctx context.Context, clientID int64) ([]*domain.Stakeholder, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Stakeholder), args.Error(1)
}

func (m *MockStakeholderRepository) Update(ctx context.Context, s *domain.Stakeholder) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockStakeholderRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockEngagementRepository is a mock implementation of EngagementRepositoryInterface
type MockEngagementRepository struct {
	mock.Mock
}

func (m *MockEngagementRepository) Create(ctx context.Context, e *domain.Engagement) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEngagementRepository) GetByID(ctx context.Context, id int64) (*domain.Engagement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Engagement), args.Error(1)
}

func (m *MockEngagementRepository) ListByClient(ctx context.Context, clientID int64) ([]*domain.Engagement, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Engagement), args.Error(1)
}

// MockDeliverableRepository is a mock implementation of DeliverableRepositoryInterface
type MockDeliverableRepository struct {
	mock.Mock
}

func (m *MockDeliverableRepository) Create(ctx context.Context, d *domain.Deliverable) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDeliverableRepository) GetByID(ctx context.Context, id int64) (*domain.Deliverable, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deliverable), args.Error(1)
}

func (m *MockDeliverableRepository) ListByClient(ctx context.Context, clientID *int64) ([]*domain.Deliverable, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Deliverable), args.Error(1)
}

func (m *MockDeliverableRepository) Update(ctx context.Context, d *domain.Deliverable) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDeliverableRepository) Approve(ctx context.Context, d *domain.Deliverable) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDeliverableRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAuditRepository is a mock implementation of AuditRepositoryInterface
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) ListByRecord(ctx context.Context, tableName string, recordID int64) ([]*domain.AuditEntry, error) {
	args := m.Called(ctx, tableName, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AuditEntry), args.Error(1)
}

// MockGenerator is a mock implementation of Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockGenerator) Name() string {
	return "mock-model"
}

// MockArchiver is a mock implementation of Archiver
type MockArchiver struct {
	mock.Mock
}

func (m *MockArchiver) PutObject(ctx context.Context, key, contentType string, body []byte) error {
	args := m.Called(ctx, key, contentType, body)
	return args.Error(0)
}

func (m *MockArchiver) ObjectExists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockArchiver) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockArchiver) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockRetriever is a mock for KnowledgeRetriever and GenerationRetriever
type MockRetriever struct {
	mock.Mock
}

func (m *MockRetriever) Retrieve(ctx context.Context, input RetrieveInput) ([]domain.ScoredResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScoredResult), args.Error(1)
}

func (m *MockRetriever) RetrieveForGeneration(ctx context.Context, input RetrieveInput) (*Retrieval, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Retrieval), args.Error(1)
}

func int64Ptr(v int64) *int64 {
	return &v
}

func fixedNow() time.Time {
	return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
}
