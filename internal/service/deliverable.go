package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cloo-solutions/draftwise/internal/domain"
	"github.com/cloo-solutions/draftwise/internal/telemetry"
)

// DeliverableRepositoryInterface defines the repository interface for deliverable persistence
type DeliverableRepositoryInterface interface {
	Create(ctx context.Context, d *domain.Deliverable) error
	GetByID(ctx context.Context, id int64) (*domain.Deliverable, error)
	ListByClient(ctx context.Context, clientID *int64) ([]*domain.Deliverable, error)
	Update(ctx context.Context, d *domain.Deliverable) error
	Approve(ctx context.Context, d *domain.Deliverable) error
	Delete(ctx context.Context, id int64) error
}

// Archiver stores approved deliverables in object storage.
type Archiver interface {
	PutObject(ctx context.Context, key, contentType string, body []byte) error
	ObjectExists(ctx context.Context, key string) (bool, error)
	GenerateDownloadURL(ctx context.Context, key string) (string, error)
	DeleteObject(ctx context.Context, key string) error
}

// archiveRecord is the JSON document written for an approved deliverable.
type archiveRecord struct {
	ID               int64                           `json:"id"`
	ClientID         int64                           `json:"client_id"`
	EngagementID     *int64                          `json:"engagement_id,omitempty"`
	StakeholderID    *int64                          `json:"stakeholder_id,omitempty"`
	Title            string                          `json:"title"`
	Type             string                          `json:"deliverable_type"`
	GeneratedContent map[string]string               `json:"ai_generated_content"`
	SectionSources   map[string]domain.SectionSource `json:"section_sources"`
	FinalContent     string                          `json:"final_content"`
	GeneratedAt      time.Time                       `json:"generated_at"`
	ApprovedAt       *time.Time                      `json:"approved_at"`
}

// ArchiveKey is the object key of an approved deliverable.
func ArchiveKey(d *domain.Deliverable) string {
	return fmt.Sprintf("deliverables/%d/%d.json", d.ClientID, d.ID)
}

// archiveDeliverable uploads d and returns its key.
func archiveDeliverable(ctx context.Context, archiver Archiver, d *domain.Deliverable) (string, error) {
	body, err := json.Marshal(archiveRecord{
		ID:               d.ID,
		ClientID:         d.ClientID,
		EngagementID:     d.EngagementID,
		StakeholderID:    d.StakeholderID,
		Title:            d.Title,
		Type:             d.Type,
		GeneratedContent: d.GeneratedContent,
		SectionSources:   d.SectionSources,
		FinalContent:     d.FinalContent,
		GeneratedAt:      d.GeneratedAt,
		ApprovedAt:       d.ApprovedAt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode archive: %w", err)
	}

	key := ArchiveKey(d)
	if err := archiver.PutObject(ctx, key, "application/json", body); err != nil {
		return "", err
	}
	return key, nil
}

// DeliverableService manages stored deliverables. Generation and approval
// live on ContentAssembler.
type DeliverableService struct {
	repo     DeliverableRepositoryInterface
	archiver Archiver
	logger   *slog.Logger
	now      func() time.Time
}

// NewDeliverableService creates a DeliverableService. archiver may be nil
// when object storage is not configured.
func NewDeliverableService(repo DeliverableRepositoryInterface, archiver Archiver) *DeliverableService {
	return &DeliverableService{
		repo:     repo,
		archiver: archiver,
		logger:   slog.Default().With("component", "deliverables"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// UpdateDeliverableInput carries the editable fields. Nil fields are left
// unchanged.
type UpdateDeliverableInput struct {
	ID           int64
	Title        *string
	Type         *string
	Status       *domain.DeliverableStatus
	FinalContent *string
}

func (s *DeliverableService) Get(ctx context.Context, id int64) (*domain.Deliverable, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *DeliverableService) List(ctx context.Context, clientID *int64) ([]*domain.Deliverable, error) {
	ctx, span := telemetry.StartSpan(ctx, "DeliverableService.List", telemetry.SpanAttributes{
		ClientID:  derefID(clientID),
		Operation: "list",
	})
	defer span.End()

	return s.repo.ListByClient(ctx, clientID)
}

func (s *DeliverableService) Update(ctx context.Context, input UpdateDeliverableInput) (*domain.Deliverable, error) {
	ctx, span := telemetry.StartSpan(ctx, "DeliverableService.Update", telemetry.SpanAttributes{
		DeliverableID: input.ID,
		Operation:     "update",
	})
	defer span.End()

	d, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if err := checkEditable(d, input); err != nil {
		return nil, err
	}

	if input.Title != nil {
		d.Title = strings.TrimSpace(*input.Title)
	}
	if input.Type != nil {
		d.Type = strings.TrimSpace(*input.Type)
	}
	if input.Status != nil {
		d.Status = *input.Status
	}
	if input.FinalContent != nil {
		d.FinalContent = *input.FinalContent
	}
	d.UpdatedAt = s.now()

	if err := domain.ValidateDeliverable(d); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, d); err != nil {
		span.SetError(err)
		return nil, err
	}
	return d, nil
}

// checkEditable keeps approval on its own path. Once approved, the only
// allowed edit is the move to final.
func checkEditable(d *domain.Deliverable, input UpdateDeliverableInput) error {
	if input.Status != nil && *input.Status == domain.DeliverableStatusApproved && d.Status != domain.DeliverableStatusApproved {
		return domain.ErrApprovalRequired
	}
	if d.Status != domain.DeliverableStatusApproved && d.Status != domain.DeliverableStatusFinal {
		return nil
	}
	if input.Title != nil || input.Type != nil || input.FinalContent != nil {
		return domain.ErrDeliverableLocked
	}
	if input.Status != nil && *input.Status != domain.DeliverableStatusFinal && *input.Status != d.Status {
		return domain.ErrDeliverableLocked
	}
	return nil
}

// Delete removes the deliverable and, best effort, its archived copy.
func (s *DeliverableService) Delete(ctx context.Context, id int64) error {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if d.ArchiveKey != "" && s.archiver != nil {
		if err := s.archiver.DeleteObject(ctx, d.ArchiveKey); err != nil {
			s.logger.Warn("failed to delete archived deliverable", "deliverable_id", id, "key", d.ArchiveKey, "err", err)
		}
	}
	return nil
}

// ArchiveURL returns a presigned download URL for an approved deliverable.
func (s *DeliverableService) ArchiveURL(ctx context.Context, id int64) (string, error) {
	if s.archiver == nil {
		return "", domain.ErrStorageUnavailable
	}

	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if d.ArchiveKey == "" {
		return "", domain.ErrArchiveNotFound
	}

	exists, err := s.archiver.ObjectExists(ctx, d.ArchiveKey)
	if err != nil {
		return "", domain.ErrStorageUnavailable.WithCause(err)
	}
	if !exists {
		s.logger.Warn("archive key recorded but object missing", "deliverable_id", id, "key", d.ArchiveKey)
		return "", domain.ErrArchiveNotFound
	}
	return s.archiver.GenerateDownloadURL(ctx, d.ArchiveKey)
}
