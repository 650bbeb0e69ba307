package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cloo-solutions/draftwise/internal/domain"
	"github.com/cloo-solutions/draftwise/internal/ranking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type assemblerFixture struct {
	clients      *MockClientRepository
	stakeholders *MockStakeholderRepository
	engagements  *MockEngagementRepository
	retriever    *MockRetriever
	generator    *MockGenerator
	deliverables *MockDeliverableRepository
	knowledge    *MockKnowledgeRepository
	audit        *MockAuditRepository
	embedder     *MockEntryEmbedder
	tx           *testTxRunner
}

func newAssemblerFixture() *assemblerFixture {
	f := &assemblerFixture{
		clients:      new(MockClientRepository),
		stakeholders: new(MockStakeholderRepository),
		engagements:  new(MockEngagementRepository),
		retriever:    new(MockRetriever),
		generator:    new(MockGenerator),
		deliverables: new(MockDeliverableRepository),
		knowledge:    new(MockKnowledgeRepository),
		audit:        new(MockAuditRepository),
		embedder:     new(MockEntryEmbedder),
	}
	f.tx = &testTxRunner{repos: &testTxRepos{
		knowledge:    f.knowledge,
		deliverables: f.deliverables,
		audit:        f.audit,
	}}
	return f
}

func (f *assemblerFixture) deps(gen Generator) AssemblerDeps {
	return AssemblerDeps{
		Clients:      f.clients,
		Stakeholders: f.stakeholders,
		Engagements:  f.engagements,
		Retriever:    f.retriever,
		Generator:    gen,
		Deliverables: f.deliverables,
		Tx:           f.tx,
		Embedder:     f.embedder,
	}
}

func (f *assemblerFixture) assembler(opts ...AssemblerOption) *ContentAssembler {
	a := NewContentAssembler(f.deps(f.generator), opts...)
	a.now = fixedNow
	return a
}

// expectPersist stubs the generate transaction and assigns an ID.
func (f *assemblerFixture) expectPersist() {
	f.deliverables.On("Create", mock.Anything, mock.AnythingOfType("*domain.Deliverable")).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Deliverable).ID = 42 }).
		Return(nil)
	f.audit.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.AuditEntry) bool {
		return e.Action == domain.AuditDeliverableGenerated && e.RecordID == 42
	})).Return(nil)
}

func acmeClient() *domain.Client {
	return &domain.Client{ID: 1, Name: "Acme", Industry: "Manufacturing", Description: "Widgets"}
}

func cfoStakeholder() *domain.Stakeholder {
	return &domain.Stakeholder{
		ID: 7, ClientID: 1, Name: "Dana", Role: "CFO", Tone: domain.ToneDirect,
		Priority1: "Cost", Priority2: "Speed",
	}
}

func retrievalOf(entries ...*domain.KnowledgeEntry) *Retrieval {
	out := &Retrieval{}
	for i, e := range entries {
		out.Entries = append(out.Entries, RetrievedEntry{Entry: e, Score: 0.9 - float64(i)*0.1})
	}
	return out
}

func TestContentAssembler_Generate_FillsMissingSections(t *testing.T) {
	f := newAssemblerFixture()
	f.clients.On("GetByID", mock.Anything, int64(1)).Return(acmeClient(), nil)
	f.stakeholders.On("GetByID", mock.Anything, int64(7)).Return(cfoStakeholder(), nil)
	f.retriever.On("RetrieveForGeneration", mock.Anything, mock.MatchedBy(func(in RetrieveInput) bool {
		return in.Query == "Cost Speed" && *in.Scope.ClientID == 1 &&
			in.TopK == 5 && in.MinScore == 0.3 && in.Threshold == ranking.Exclusive
	})).Return(retrievalOf(&domain.KnowledgeEntry{ID: 3, ClientID: 1, Type: domain.EntryTypeNote, Title: "Budget", Content: "Cut cost"}), nil)
	f.generator.On("Generate", mock.Anything, mock.AnythingOfType("string")).
		Return(`{"executive_summary": "Acme should cut cost."}`, nil)
	f.expectPersist()

	out, err := f.assembler().Generate(context.Background(), GenerateInput{
		ClientID:        1,
		StakeholderID:   int64Ptr(7),
		DeliverableType: "proposal",
		Sections:        []string{"executive_summary", "risks"},
	})

	require.NoError(t, err)
	assert.Len(t, out.Sections, 2)
	assert.Equal(t, "Acme should cut cost.", out.Sections["executive_summary"])
	assert.Equal(t, "[Risks content to be generated]", out.Sections["risks"])
	assert.Equal(t, domain.SectionSourceJSON, out.SectionSources["executive_summary"])
	assert.Equal(t, domain.SectionSourcePlaceholder, out.SectionSources["risks"])
	assert.True(t, out.Malformed)
	assert.False(t, out.FallbackUsed)

	assert.Equal(t, int64(42), out.Deliverable.ID)
	assert.Equal(t, domain.DeliverableStatusDraft, out.Deliverable.Status)
	assert.Equal(t, "Proposal for Acme", out.Deliverable.Title)
	require.Len(t, out.KnowledgeUsed, 1)
	assert.Equal(t, int64(3), out.KnowledgeUsed[0].ID)
	assert.True(t, f.tx.called)
	f.audit.AssertExpectations(t)
}

func TestContentAssembler_Generate_KeySetMatchesRequest(t *testing.T) {
	outputs := []string{
		"",
		"not json at all",
		`{"unrelated": "x", "executive_summary": 3}`,
		`{"executive_summary": "a", "analysis": "b", "extra": "c"}`,
		"Executive Summary\nFirst.\nNext Steps\nSecond.",
	}
	sections := []string{"executive_summary", "next_steps", "analysis"}

	for _, raw := range outputs {
		f := newAssemblerFixture()
		f.clients.On("GetByID", mock.Anything, int64(1)).Return(acmeClient(), nil)
		f.retriever.On("RetrieveForGeneration", mock.Anything, mock.Anything).Return(&Retrieval{}, nil)
		f.generator.On("Generate", mock.Anything, mock.Anything).Return(raw, nil)
		f.expectPersist()

		out, err := f.assembler().Generate(context.Background(), GenerateInput{
			ClientID: 1, DeliverableType: "report", Sections: sections,
		})
		require.NoError(t, err, raw)

		keys := make([]string, 0, len(out.Sections))
		for k := range out.Sections {
			keys = append(keys, k)
		}
		assert.ElementsMatch(t, sections, keys, raw)
		assert.Len(t, out.SectionSources, len(sections), raw)
	}
}

func TestContentAssembler_Generate_DefaultPersonaAndSections(t *testing.T) {
	f := newAssemblerFixture()
	f.clients.On("GetByID", mock.Anything, int64(1)).Return(acmeClient(), nil)
	f.retriever.On("RetrieveForGeneration", mock.Anything, mock.MatchedBy(func(in RetrieveInput) bool {
		return in.Query == "Efficiency Cost Optimization Quality"
	})).Return(&Retrieval{Recency: true}, nil)
	f.generator.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return containsAll(p, "General Stakeholder", "Decision Maker", `"key_recommendations"`)
	})).Return(`{"executive_summary": "s", "key_recommendations": "r"}`, nil)
	f.expectPersist()

	out, err := f.assembler().Generate(context.Background(), GenerateInput{ClientID: 1, DeliverableType: "report", Title: " Q3 Review "})

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"executive_summary": "s", "key_recommendations": "r"}, out.Sections)
	assert.False(t, out.Malformed)
	assert.True(t, out.RecencyFallback)
	assert.Equal(t, "Q3 Review", out.Deliverable.Title)
}

func TestContentAssembler_Generate_FallbackOnError(t *testing.T) {
	fallback, err := NewFallbackContent()
	require.NoError(t, err)

	f := newAssemblerFixture()
	f.clients.On("GetByID", mock.Anything, int64(1)).Return(acmeClient(), nil)
	f.stakeholders.On("GetByID", mock.Anything, int64(7)).Return(cfoStakeholder(), nil)
	f.retriever.On("RetrieveForGeneration", mock.Anything, mock.Anything).Return(&Retrieval{}, nil)
	f.generator.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("rate limited"))
	f.expectPersist()

	out, err := f.assembler(WithFallback(fallback)).Generate(context.Background(), GenerateInput{
		ClientID: 1, StakeholderID: int64Ptr(7), DeliverableType: "report",
		Sections: []string{"executive_summary", "risks"},
	})

	require.NoError(t, err)
	assert.True(t, out.FallbackUsed)
	assert.Equal(t, domain.SectionSourceFallback, out.SectionSources["executive_summary"])
	assert.Contains(t, out.Sections["executive_summary"], "Acme")
	assert.Contains(t, out.Sections["executive_summary"], "we identified")
	assert.NotContains(t, out.Sections["executive_summary"], "we have identified")
	assert.Equal(t, "[Risks content to be generated]", out.Sections["risks"])
}

func TestContentAssembler_Generate_UnavailableWithoutFallback(t *testing.T) {
	f := newAssemblerFixture()
	f.clients.On("GetByID", mock.Anything, int64(1)).Return(acmeClient(), nil)
	f.retriever.On("RetrieveForGeneration", mock.Anything, mock.Anything).Return(&Retrieval{}, nil)
	f.generator.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("connection refused"))

	out, err := f.assembler().Generate(context.Background(), GenerateInput{ClientID: 1, DeliverableType: "report"})

	assert.Nil(t, out)
	assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
	assert.False(t, f.tx.called)
}

func TestContentAssembler_Generate_Timeout(t *testing.T) {
	f := newAssemblerFixture()
	f.clients.On("GetByID", mock.Anything, int64(1)).Return(acmeClient(), nil)
	f.retriever.On("RetrieveForGeneration", mock.Anything, mock.Anything).Return(&Retrieval{}, nil)
	f.generator.On("Generate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { <-args.Get(0).(context.Context).Done() }).
		Return("", context.DeadlineExceeded)

	_, err := f.assembler(WithGenerationTimeout(10*time.Millisecond)).
		Generate(context.Background(), GenerateInput{ClientID: 1, DeliverableType: "report"})

	assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestContentAssembler_Generate_NoGeneratorUsesFallback(t *testing.T) {
	fallback, err := NewFallbackContent()
	require.NoError(t, err)

	f := newAssemblerFixture()
	f.clients.On("GetByID", mock.Anything, int64(1)).Return(acmeClient(), nil)
	f.retriever.On("RetrieveForGeneration", mock.Anything, mock.Anything).Return(&Retrieval{}, nil)
	f.expectPersist()

	a := NewContentAssembler(f.deps(nil), WithFallback(fallback))
	out, err := a.Generate(context.Background(), GenerateInput{ClientID: 1, DeliverableType: "report"})

	require.NoError(t, err)
	assert.True(t, out.FallbackUsed)
	assert.Len(t, out.Sections, 2)
}

func TestContentAssembler_Generate_Errors(t *testing.T) {
	t.Run("client not found", func(t *testing.T) {
		f := newAssemblerFixture()
		f.clients.On("GetByID", mock.Anything, int64(9)).Return(nil, domain.ErrClientNotFound)

		_, err := f.assembler().Generate(context.Background(), GenerateInput{ClientID: 9, DeliverableType: "report"})
		assert.ErrorIs(t, err, domain.ErrClientNotFound)
	})

	t.Run("stakeholder not found", func(t *testing.T) {
		f := newAssemblerFixture()
		f.clients.On("GetByID", mock.Anything, int64(1)).Return(acmeClient(), nil)
		f.stakeholders.On("GetByID", mock.Anything, int64(8)).Return(nil, domain.ErrStakeholderNotFound)

		_, err := f.assembler().Generate(context.Background(), GenerateInput{ClientID: 1, StakeholderID: int64Ptr(8), DeliverableType: "report"})
		assert.ErrorIs(t, err, domain.ErrStakeholderNotFound)
	})

	t.Run("stakeholder of another client", func(t *testing.T) {
		f := newAssemblerFixture()
		other := cfoStakeholder()
		other.ClientID = 2
		f.clients.On("GetByID", mock.Anything, int64(1)).Return(acmeClient(), nil)
		f.stakeholders.On("GetByID", mock.Anything, int64(7)).Return(other, nil)

		_, err := f.assembler().Generate(context.Background(), GenerateInput{ClientID: 1, StakeholderID: int64Ptr(7), DeliverableType: "report"})
		var de *domain.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, domain.ErrCodeValidation, de.Code)
	})

	t.Run("missing type", func(t *testing.T) {
		f := newAssemblerFixture()
		_, err := f.assembler().Generate(context.Background(), GenerateInput{ClientID: 1})
		assert.Error(t, err)
		f.clients.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

func draftDeliverable() *domain.Deliverable {
	return &domain.Deliverable{
		ID:               42,
		ClientID:         1,
		EngagementID:     int64Ptr(5),
		Title:            "Proposal for Acme",
		Type:             "proposal",
		Status:           domain.DeliverableStatusDraft,
		GeneratedContent: map[string]string{"executive_summary": "draft"},
	}
}

func (f *assemblerFixture) expectApproveTx() {
	f.deliverables.On("Approve", mock.Anything, mock.MatchedBy(func(d *domain.Deliverable) bool {
		return d.Status == domain.DeliverableStatusApproved && d.ApprovedAt != nil
	})).Return(nil)
	f.knowledge.On("Create", mock.Anything, mock.MatchedBy(func(k *domain.KnowledgeEntry) bool {
		return k.Title == "Approved proposal: Proposal for Acme" &&
			k.Type == domain.EntryTypeDocument &&
			k.SourceURL == "deliverable_id:42" &&
			k.Content == "Final text" &&
			*k.EngagementID == 5
	})).Run(func(args mock.Arguments) { args.Get(1).(*domain.KnowledgeEntry).ID = 100 }).Return(nil)
	f.audit.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.AuditEntry) bool {
		return e.Action == domain.AuditDeliverableApproved && e.NewValues["knowledge_entry_id"] == int64(100)
	})).Return(nil)
}

func TestContentAssembler_Approve(t *testing.T) {
	f := newAssemblerFixture()
	f.deliverables.On("GetByID", mock.Anything, int64(42)).Return(draftDeliverable(), nil)
	f.expectApproveTx()
	f.embedder.On("EmbedEntry", mock.Anything, int64(100)).Return(&EmbedResult{EntryID: 100, Created: true}, nil)

	out, err := f.assembler().Approve(context.Background(), ApproveInput{DeliverableID: 42, FinalContent: "Final text"})

	require.NoError(t, err)
	assert.Equal(t, int64(100), out.KnowledgeEntryID)
	assert.True(t, out.Embedded)
	assert.Equal(t, domain.DeliverableStatusApproved, out.Deliverable.Status)
	assert.Equal(t, fixedNow(), *out.Deliverable.ApprovedAt)
	f.knowledge.AssertExpectations(t)
	f.audit.AssertExpectations(t)
}

func TestContentAssembler_Approve_EmbeddingFailureIsSwallowed(t *testing.T) {
	f := newAssemblerFixture()
	f.deliverables.On("GetByID", mock.Anything, int64(42)).Return(draftDeliverable(), nil)
	f.expectApproveTx()
	f.embedder.On("EmbedEntry", mock.Anything, int64(100)).Return(nil, domain.ErrModelUnavailable)

	out, err := f.assembler().Approve(context.Background(), ApproveInput{DeliverableID: 42, FinalContent: "Final text"})

	require.NoError(t, err)
	assert.False(t, out.Embedded)
	assert.Equal(t, int64(100), out.KnowledgeEntryID)
}

func TestContentAssembler_Approve_Archives(t *testing.T) {
	f := newAssemblerFixture()
	archiver := new(MockArchiver)
	f.deliverables.On("GetByID", mock.Anything, int64(42)).Return(draftDeliverable(), nil)
	f.expectApproveTx()
	f.embedder.On("EmbedEntry", mock.Anything, int64(100)).Return(&EmbedResult{EntryID: 100, Created: true}, nil)
	archiver.On("PutObject", mock.Anything, "deliverables/1/42.json", "application/json", mock.Anything).Return(nil)

	out, err := f.assembler(WithArchiver(archiver)).Approve(context.Background(), ApproveInput{DeliverableID: 42, FinalContent: "Final text"})

	require.NoError(t, err)
	assert.Equal(t, "deliverables/1/42.json", out.Deliverable.ArchiveKey)
	archiver.AssertExpectations(t)
	f.deliverables.AssertNumberOfCalls(t, "Approve", 1)
	f.deliverables.AssertNumberOfCalls(t, "Update", 1)
}

func TestContentAssembler_Approve_ArchiveFailureIsSwallowed(t *testing.T) {
	f := newAssemblerFixture()
	archiver := new(MockArchiver)
	f.deliverables.On("GetByID", mock.Anything, int64(42)).Return(draftDeliverable(), nil)
	f.expectApproveTx()
	f.embedder.On("EmbedEntry", mock.Anything, int64(100)).Return(&EmbedResult{EntryID: 100, Created: true}, nil)
	archiver.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("bucket gone"))

	out, err := f.assembler(WithArchiver(archiver)).Approve(context.Background(), ApproveInput{DeliverableID: 42, FinalContent: "Final text"})

	require.NoError(t, err)
	assert.Empty(t, out.Deliverable.ArchiveKey)
	f.deliverables.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestContentAssembler_Approve_Errors(t *testing.T) {
	t.Run("empty content", func(t *testing.T) {
		f := newAssemblerFixture()
		_, err := f.assembler().Approve(context.Background(), ApproveInput{DeliverableID: 42, FinalContent: "  "})
		assert.ErrorIs(t, err, domain.ErrEmptyContent)
	})

	t.Run("not found", func(t *testing.T) {
		f := newAssemblerFixture()
		f.deliverables.On("GetByID", mock.Anything, int64(42)).Return(nil, domain.ErrDeliverableNotFound)
		_, err := f.assembler().Approve(context.Background(), ApproveInput{DeliverableID: 42, FinalContent: "x"})
		assert.ErrorIs(t, err, domain.ErrDeliverableNotFound)
	})

	t.Run("already approved", func(t *testing.T) {
		f := newAssemblerFixture()
		d := draftDeliverable()
		d.Status = domain.DeliverableStatusApproved
		f.deliverables.On("GetByID", mock.Anything, int64(42)).Return(d, nil)
		_, err := f.assembler().Approve(context.Background(), ApproveInput{DeliverableID: 42, FinalContent: "x"})
		assert.ErrorIs(t, err, domain.ErrDeliverableAlreadyApproved)
		assert.False(t, f.tx.called)
	})

	t.Run("approved concurrently", func(t *testing.T) {
		f := newAssemblerFixture()
		f.deliverables.On("GetByID", mock.Anything, int64(42)).Return(draftDeliverable(), nil)
		f.deliverables.On("Approve", mock.Anything, mock.Anything).Return(domain.ErrDeliverableAlreadyApproved)
		_, err := f.assembler().Approve(context.Background(), ApproveInput{DeliverableID: 42, FinalContent: "x"})
		assert.ErrorIs(t, err, domain.ErrDeliverableAlreadyApproved)
		f.knowledge.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.embedder.AssertNotCalled(t, "EmbedEntry", mock.Anything, mock.Anything)
	})

	t.Run("transaction failure", func(t *testing.T) {
		f := newAssemblerFixture()
		f.tx.err = errors.New("serialization failure")
		f.deliverables.On("GetByID", mock.Anything, int64(42)).Return(draftDeliverable(), nil)
		_, err := f.assembler().Approve(context.Background(), ApproveInput{DeliverableID: 42, FinalContent: "x"})
		assert.EqualError(t, err, "serialization failure")
		f.embedder.AssertNotCalled(t, "EmbedEntry", mock.Anything, mock.Anything)
	})
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
