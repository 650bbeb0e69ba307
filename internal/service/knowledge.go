package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/cloo-solutions/draftwise/internal/domain"
	"github.com/cloo-solutions/draftwise/internal/pagination"
	"github.com/cloo-solutions/draftwise/internal/telemetry"
)

// KnowledgeRepositoryInterface defines the repository interface for knowledge persistence
type KnowledgeRepositoryInterface interface {
	Create(ctx context.Context, k *domain.KnowledgeEntry) error
	GetByID(ctx context.Context, id int64) (*domain.KnowledgeEntry, error)
	ListWithCursor(ctx context.Context, filter KnowledgeFilter, cursor *pagination.Cursor, limit int) (*KnowledgePageResult, error)
	ListRecent(ctx context.Context, scope domain.Scope, limit int) ([]*domain.KnowledgeEntry, error)
	Update(ctx context.Context, k *domain.KnowledgeEntry) error
	Delete(ctx context.Context, id int64) error
}

// KnowledgeFilter narrows a knowledge listing.
type KnowledgeFilter struct {
	ClientID     *int64
	EngagementID *int64
	Type         domain.EntryType
}

type KnowledgePageResult struct {
	Items      []*domain.KnowledgeEntry
	NextCursor string
	HasMore    bool
}

// EntryEmbedder embeds a single stored entry.
type EntryEmbedder interface {
	EmbedEntry(ctx context.Context, entryID int64) (*EmbedResult, error)
}

// KnowledgeService handles business logic for knowledge entries
type KnowledgeService struct {
	knowledgeRepo KnowledgeRepositoryInterface
	embedder      EntryEmbedder
	logger        *slog.Logger
	now           func() time.Time
}

// NewKnowledgeService creates a new KnowledgeService instance
func NewKnowledgeService(knowledgeRepo KnowledgeRepositoryInterface, embedder EntryEmbedder) *KnowledgeService {
	return &KnowledgeService{
		knowledgeRepo: knowledgeRepo,
		embedder:      embedder,
		logger:        slog.Default().With("component", "knowledge"),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// CreateInput represents the input for creating a knowledge entry
type CreateInput struct {
	ClientID      int64
	EngagementID  *int64
	StakeholderID *int64
	Type          domain.EntryType
	Title         string
	Content       string
	SourceURL     string
	MeetingDate   *time.Time
}

// UpdateInput represents the input for updating a knowledge entry
type UpdateInput struct {
	EntryID     int64
	Type        domain.EntryType
	Title       string
	Content     string
	SourceURL   string
	MeetingDate *time.Time
}

type ListKnowledgeInput struct {
	Filter KnowledgeFilter
	Cursor string
	Limit  int
}

type ListKnowledgeOutput struct {
	Items   []*domain.KnowledgeEntry
	Cursor  string
	HasMore bool
}

// IngestOutput reports the stored entry and whether it was embedded.
type IngestOutput struct {
	Entry    *domain.KnowledgeEntry
	Embedded bool
}

// Create stores a new knowledge entry without embedding it.
func (s *KnowledgeService) Create(ctx context.Context, input CreateInput) (*domain.KnowledgeEntry, error) {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.Create", telemetry.SpanAttributes{
		ClientID:  input.ClientID,
		Operation: "create",
	})
	defer span.End()

	entry := domain.NewKnowledgeEntry(input.ClientID, input.Type, strings.TrimSpace(input.Title), input.Content, s.now())
	entry.EngagementID = input.EngagementID
	entry.StakeholderID = input.StakeholderID
	entry.SourceURL = input.SourceURL
	entry.MeetingDate = input.MeetingDate

	if err := domain.ValidateKnowledgeEntry(entry); err != nil {
		return nil, err
	}

	if err := s.knowledgeRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// Ingest stores an entry and, when embed is set, embeds it right away. An
// embedding failure leaves the entry stored and unembedded for backfill.
func (s *KnowledgeService) Ingest(ctx context.Context, input CreateInput, embed bool) (*IngestOutput, error) {
	entry, err := s.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	out := &IngestOutput{Entry: entry}
	if !embed || s.embedder == nil {
		return out, nil
	}

	res, err := s.embedder.EmbedEntry(ctx, entry.ID)
	if err != nil {
		s.logger.Warn("ingested entry left unembedded", "entry_id", entry.ID, "err", err)
		telemetry.CaptureError(ctx, err)
		return out, nil
	}

	out.Embedded = res != nil
	entry.HasEmbedding = out.Embedded
	return out, nil
}

// GetByID retrieves a knowledge entry by ID
func (s *KnowledgeService) GetByID(ctx context.Context, id int64) (*domain.KnowledgeEntry, error) {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.GetByID", telemetry.SpanAttributes{
		EntryID:   id,
		Operation: "get",
	})
	defer span.End()

	return s.knowledgeRepo.GetByID(ctx, id)
}

// List returns a page of entries, newest first.
func (s *KnowledgeService) List(ctx context.Context, input ListKnowledgeInput) (*ListKnowledgeOutput, error) {
	cursor, err := pagination.DecodeCursor(input.Cursor)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}

	page, err := s.knowledgeRepo.ListWithCursor(ctx, input.Filter, cursor, pagination.ClampLimit(input.Limit))
	if err != nil {
		return nil, err
	}

	return &ListKnowledgeOutput{
		Items:   page.Items,
		Cursor:  page.NextCursor,
		HasMore: page.HasMore,
	}, nil
}

// Update modifies an entry. Changing the content does not touch the stored
// embedding; callers regenerate explicitly.
func (s *KnowledgeService) Update(ctx context.Context, input UpdateInput) (*domain.KnowledgeEntry, error) {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.Update", telemetry.SpanAttributes{
		EntryID:   input.EntryID,
		Operation: "update",
	})
	defer span.End()

	entry, err := s.knowledgeRepo.GetByID(ctx, input.EntryID)
	if err != nil {
		return nil, err
	}

	if input.Type != "" {
		entry.Type = input.Type
	}
	if input.Title != "" {
		entry.Title = strings.TrimSpace(input.Title)
	}
	if input.Content != "" {
		entry.Content = input.Content
	}
	if input.SourceURL != "" {
		entry.SourceURL = input.SourceURL
	}
	if input.MeetingDate != nil {
		entry.MeetingDate = input.MeetingDate
	}
	entry.UpdatedAt = s.now()

	if err := domain.ValidateKnowledgeEntry(entry); err != nil {
		return nil, err
	}

	if err := s.knowledgeRepo.Update(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// Delete removes an entry and, through the cascade, its embedding.
func (s *KnowledgeService) Delete(ctx context.Context, id int64) error {
	ctx, span := telemetry.StartSpan(ctx, "KnowledgeService.Delete", telemetry.SpanAttributes{
		EntryID:   id,
		Operation: "delete",
	})
	defer span.End()

	return s.knowledgeRepo.Delete(ctx, id)
}
