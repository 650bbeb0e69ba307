package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cloo-solutions/draftwise/internal/domain"
	"github.com/cloo-solutions/draftwise/internal/ranking"
	"github.com/cloo-solutions/draftwise/internal/telemetry"
)

// Generator turns a prompt into raw model output.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// ClientReader loads a client.
type ClientReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Client, error)
}

// EngagementReader loads an engagement.
type EngagementReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Engagement, error)
}

// GenerationRetriever supplies knowledge context for a draft.
type GenerationRetriever interface {
	RetrieveForGeneration(ctx context.Context, input RetrieveInput) (*Retrieval, error)
}

const (
	defaultGenerationTimeout = 60 * time.Second
	generationTopK           = 5
	generationMinScore       = 0.3
)

// AssemblerDeps are the collaborators of a ContentAssembler. Generator may
// be nil, in which case every draft is treated as a generation failure.
type AssemblerDeps struct {
	Clients      ClientReader
	Stakeholders StakeholderReader
	Engagements  EngagementReader
	Retriever    GenerationRetriever
	Generator    Generator
	Deliverables DeliverableRepositoryInterface
	Tx           TxRunner
	Embedder     EntryEmbedder
}

// AssemblerOption configures a ContentAssembler.
type AssemblerOption func(*ContentAssembler)

// WithFallback enables templated content when generation fails.
func WithFallback(f *FallbackContent) AssemblerOption {
	return func(a *ContentAssembler) { a.fallback = f }
}

// WithArchiver enables archiving approved deliverables.
func WithArchiver(archiver Archiver) AssemblerOption {
	return func(a *ContentAssembler) { a.archiver = archiver }
}

// WithGenerationTimeout bounds a single generator call.
func WithGenerationTimeout(d time.Duration) AssemblerOption {
	return func(a *ContentAssembler) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithAssemblerLogger sets the logger.
func WithAssemblerLogger(logger *slog.Logger) AssemblerOption {
	return func(a *ContentAssembler) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// ContentAssembler drafts deliverables from retrieved knowledge and feeds
// approved ones back into the corpus.
type ContentAssembler struct {
	deps     AssemblerDeps
	fallback *FallbackContent
	archiver Archiver
	timeout  time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

func NewContentAssembler(deps AssemblerDeps, opts ...AssemblerOption) *ContentAssembler {
	a := &ContentAssembler{
		deps:    deps,
		timeout: defaultGenerationTimeout,
		logger:  slog.Default().With("component", "assembler"),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type GenerateInput struct {
	ClientID        int64
	EngagementID    *int64
	StakeholderID   *int64
	Title           string
	DeliverableType string
	Sections        []string
}

// KnowledgeRef identifies an entry used as generation context.
type KnowledgeRef struct {
	ID    int64            `json:"id"`
	Title string           `json:"title"`
	Type  domain.EntryType `json:"entry_type"`
	Score float64          `json:"similarity_score"`
}

type GenerateOutput struct {
	Deliverable     *domain.Deliverable
	Sections        map[string]string
	SectionSources  map[string]domain.SectionSource
	KnowledgeUsed   []KnowledgeRef
	FallbackUsed    bool
	Malformed       bool
	RecencyFallback bool
}

// Generate drafts and stores a deliverable. The returned section map always
// has exactly the requested keys.
func (a *ContentAssembler) Generate(ctx context.Context, input GenerateInput) (*GenerateOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "ContentAssembler.Generate", telemetry.SpanAttributes{
		ClientID:      input.ClientID,
		StakeholderID: derefID(input.StakeholderID),
		Operation:     "generate",
	})
	defer span.End()

	deliverableType := strings.TrimSpace(input.DeliverableType)
	if deliverableType == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "deliverable type is required")
	}

	client, err := a.deps.Clients.GetByID(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}

	persona := domain.DefaultPersona()
	if input.StakeholderID != nil {
		sh, err := a.deps.Stakeholders.GetByID(ctx, *input.StakeholderID)
		if err != nil {
			return nil, err
		}
		if sh.ClientID != client.ID {
			return nil, domain.ErrStakeholderOtherClient
		}
		persona = sh.Persona()
	}

	var phase domain.Phase
	if input.EngagementID != nil {
		eng, err := a.deps.Engagements.GetByID(ctx, *input.EngagementID)
		if err != nil {
			return nil, err
		}
		if eng.ClientID != client.ID {
			return nil, domain.NewDomainError(domain.ErrCodeValidation, "engagement does not belong to client")
		}
		phase = eng.Phase
	}

	signal := persona.PrioritySignal()
	if signal == "" {
		signal = domain.DefaultPersona().PrioritySignal()
	}
	sections := NormalizeSections(input.Sections)

	retrieval, err := a.deps.Retriever.RetrieveForGeneration(ctx, RetrieveInput{
		Query:     signal,
		Scope:     domain.Scope{ClientID: &client.ID, EngagementID: input.EngagementID},
		TopK:      generationTopK,
		MinScore:  generationMinScore,
		Threshold: ranking.Exclusive,
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	prompt := BuildPrompt(PromptInput{
		Client:          client.Info(),
		Persona:         persona,
		Phase:           phase,
		Knowledge:       retrieval.Entries,
		DeliverableType: deliverableType,
		Sections:        sections,
	})

	content, fallbackUsed, err := a.draft(ctx, prompt, client.Info(), persona.Tone, sections)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	now := a.now()
	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = fmt.Sprintf("%s for %s", domain.SectionTitle(deliverableType), client.Name)
	}
	d := &domain.Deliverable{
		ClientID:         client.ID,
		EngagementID:     input.EngagementID,
		StakeholderID:    input.StakeholderID,
		Title:            title,
		Type:             deliverableType,
		Status:           domain.DeliverableStatusDraft,
		GeneratedContent: content.Sections,
		SectionSources:   content.Sources,
		GeneratedAt:      now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := domain.ValidateDeliverable(d); err != nil {
		return nil, err
	}

	err = a.deps.Tx.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Deliverables().Create(ctx, d); err != nil {
			return err
		}
		return repos.Audit().Create(ctx, newAuditEntry(ctx, domain.AuditDeliverableGenerated, "deliverables", d.ID, nil, map[string]any{
			"status":        string(d.Status),
			"sections":      sections,
			"fallback_used": fallbackUsed,
			"malformed":     content.Malformed,
		}, now))
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	if content.Malformed {
		a.logger.Warn("generated content missing sections, placeholders used",
			"deliverable_id", d.ID, "err", domain.ErrMalformedGeneratedContent)
	}

	used := make([]KnowledgeRef, len(retrieval.Entries))
	for i, e := range retrieval.Entries {
		used[i] = KnowledgeRef{ID: e.Entry.ID, Title: e.Entry.Title, Type: e.Entry.Type, Score: e.Score}
	}

	return &GenerateOutput{
		Deliverable:     d,
		Sections:        content.Sections,
		SectionSources:  content.Sources,
		KnowledgeUsed:   used,
		FallbackUsed:    fallbackUsed,
		Malformed:       content.Malformed,
		RecencyFallback: retrieval.Recency,
	}, nil
}

// draft calls the generator and parses its output. When the generator is
// unavailable it returns templated content if fallback is enabled.
func (a *ContentAssembler) draft(ctx context.Context, prompt string, client domain.ClientInfo, tone domain.Tone, sections []string) (ParsedContent, bool, error) {
	raw, err := a.generate(ctx, prompt)
	if err == nil {
		return ParseGenerated(raw, sections), false, nil
	}

	if a.fallback == nil {
		return ParsedContent{}, false, err
	}

	a.logger.Warn("content generation unavailable, using fallback content", "err", err)
	telemetry.AddBreadcrumb(ctx, "generation", "fallback content used")
	return a.fallback.Render(client, tone, sections), true, nil
}

func (a *ContentAssembler) generate(ctx context.Context, prompt string) (string, error) {
	if a.deps.Generator == nil {
		return "", domain.ErrGenerationUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	raw, err := a.deps.Generator.Generate(ctx, prompt)
	if err != nil {
		return "", domain.ErrGenerationUnavailable.WithCause(err)
	}
	a.logger.Debug("content generated", "model", a.deps.Generator.Name(), "duration_ms", time.Since(start).Milliseconds())
	return raw, nil
}

type ApproveInput struct {
	DeliverableID int64
	FinalContent  string
}

type ApproveOutput struct {
	Deliverable      *domain.Deliverable
	KnowledgeEntryID int64
	Embedded         bool
}

// Approve finalizes a deliverable and stores its text as a new knowledge
// entry. Embedding and archiving happen after the commit and never fail the
// approval.
func (a *ContentAssembler) Approve(ctx context.Context, input ApproveInput) (*ApproveOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "ContentAssembler.Approve", telemetry.SpanAttributes{
		DeliverableID: input.DeliverableID,
		Operation:     "approve",
	})
	defer span.End()

	if strings.TrimSpace(input.FinalContent) == "" {
		return nil, domain.ErrEmptyContent
	}

	d, err := a.deps.Deliverables.GetByID(ctx, input.DeliverableID)
	if err != nil {
		return nil, err
	}
	if d.Status == domain.DeliverableStatusApproved {
		return nil, domain.ErrDeliverableAlreadyApproved
	}

	now := a.now()
	previous := string(d.Status)
	d.Status = domain.DeliverableStatusApproved
	d.FinalContent = input.FinalContent
	d.ApprovedAt = &now
	d.UpdatedAt = now

	entry := domain.NewKnowledgeEntry(d.ClientID, domain.EntryTypeDocument, d.EnrichmentTitle(), d.FinalContent, now)
	entry.EngagementID = d.EngagementID
	entry.SourceURL = d.EnrichmentSource()
	if err := domain.ValidateKnowledgeEntry(entry); err != nil {
		return nil, err
	}

	err = a.deps.Tx.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Deliverables().Approve(ctx, d); err != nil {
			return err
		}
		if err := repos.Knowledge().Create(ctx, entry); err != nil {
			return err
		}
		return repos.Audit().Create(ctx, newAuditEntry(ctx, domain.AuditDeliverableApproved, "deliverables", d.ID,
			map[string]any{"status": previous},
			map[string]any{"status": string(d.Status), "knowledge_entry_id": entry.ID},
			now))
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	out := &ApproveOutput{Deliverable: d, KnowledgeEntryID: entry.ID}

	if _, err := a.deps.Embedder.EmbedEntry(ctx, entry.ID); err != nil {
		a.logger.Warn("failed to embed approved deliverable", "deliverable_id", d.ID, "entry_id", entry.ID, "err", err)
		telemetry.CaptureError(ctx, err)
	} else {
		out.Embedded = true
	}

	if a.archiver != nil {
		a.archive(ctx, d)
	}

	return out, nil
}

func (a *ContentAssembler) archive(ctx context.Context, d *domain.Deliverable) {
	key, err := archiveDeliverable(ctx, a.archiver, d)
	if err != nil {
		a.logger.Warn("failed to archive deliverable", "deliverable_id", d.ID, "err", err)
		return
	}

	d.ArchiveKey = key
	if err := a.deps.Deliverables.Update(ctx, d); err != nil {
		a.logger.Warn("failed to record archive key", "deliverable_id", d.ID, "key", key, "err", err)
	}
}
