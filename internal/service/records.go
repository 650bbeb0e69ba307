package service

import (
	"context"
	"strings"
	"time"

	"github.com/cloo-solutions/draftwise/internal/domain"
	"github.com/cloo-solutions/draftwise/internal/telemetry"
)

// ClientRepositoryInterface defines the repository interface for client persistence
type ClientRepositoryInterface interface {
	Create(ctx context.Context, c *domain.Client) error
	GetByID(ctx context.Context, id int64) (*domain.Client, error)
	List(ctx context.Context) ([]*domain.Client, error)
	Update(ctx context.Context, c *domain.Client) error
	Delete(ctx context.Context, id int64) error
}

// StakeholderRepositoryInterface defines the repository interface for stakeholder persistence
type StakeholderRepositoryInterface interface {
	Create(ctx context.Context, s *domain.Stakeholder) error
	GetByID(ctx context.Context, id int64) (*domain.Stakeholder, error)
	ListByClient(ctx context.Context, clientID int64) ([]*domain.Stakeholder, error)
	Update(ctx context.Context, s *domain.Stakeholder) error
	Delete(ctx context.Context, id int64) error
}

// EngagementRepositoryInterface defines the repository interface for engagement persistence
type EngagementRepositoryInterface interface {
	Create(ctx context.Context, e *domain.Engagement) error
	GetByID(ctx context.Context, id int64) (*domain.Engagement, error)
	ListByClient(ctx context.Context, clientID int64) ([]*domain.Engagement, error)
}

// ClientService manages clients, their stakeholders and engagements.
type ClientService struct {
	clients      ClientRepositoryInterface
	stakeholders StakeholderRepositoryInterface
	engagements  EngagementRepositoryInterface
	now          func() time.Time
}

func NewClientService(
	clients ClientRepositoryInterface,
	stakeholders StakeholderRepositoryInterface,
	engagements EngagementRepositoryInterface,
) *ClientService {
	return &ClientService{
		clients:      clients,
		stakeholders: stakeholders,
		engagements:  engagements,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

type ClientInput struct {
	Name        string
	Industry    string
	Description string
}

func (s *ClientService) CreateClient(ctx context.Context, input ClientInput) (*domain.Client, error) {
	ctx, span := telemetry.StartSpan(ctx, "ClientService.CreateClient", telemetry.SpanAttributes{Operation: "create"})
	defer span.End()

	c := domain.NewClient(input.Name, input.Industry, input.Description, s.now())
	if err := domain.ValidateClient(c); err != nil {
		return nil, err
	}
	if err := s.clients.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ClientService) GetClient(ctx context.Context, id int64) (*domain.Client, error) {
	return s.clients.GetByID(ctx, id)
}

func (s *ClientService) ListClients(ctx context.Context) ([]*domain.Client, error) {
	return s.clients.List(ctx)
}

func (s *ClientService) UpdateClient(ctx context.Context, id int64, input ClientInput) (*domain.Client, error) {
	ctx, span := telemetry.StartSpan(ctx, "ClientService.UpdateClient", telemetry.SpanAttributes{ClientID: id, Operation: "update"})
	defer span.End()

	c, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != "" {
		c.Name = strings.TrimSpace(input.Name)
	}
	if input.Industry != "" {
		c.Industry = input.Industry
	}
	if input.Description != "" {
		c.Description = input.Description
	}
	c.UpdatedAt = s.now()

	if err := domain.ValidateClient(c); err != nil {
		return nil, err
	}
	if err := s.clients.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteClient removes a client; its stakeholders, engagements, entries and
// deliverables cascade.
func (s *ClientService) DeleteClient(ctx context.Context, id int64) error {
	ctx, span := telemetry.StartSpan(ctx, "ClientService.DeleteClient", telemetry.SpanAttributes{ClientID: id, Operation: "delete"})
	defer span.End()

	return s.clients.Delete(ctx, id)
}

type StakeholderInput struct {
	ClientID  int64
	Name      string
	Role      string
	Tone      domain.Tone
	Priority1 string
	Priority2 string
	Priority3 string
	Email     string
	Phone     string
}

func (s *ClientService) CreateStakeholder(ctx context.Context, input StakeholderInput) (*domain.Stakeholder, error) {
	ctx, span := telemetry.StartSpan(ctx, "ClientService.CreateStakeholder", telemetry.SpanAttributes{
		ClientID:  input.ClientID,
		Operation: "create",
	})
	defer span.End()

	if _, err := s.clients.GetByID(ctx, input.ClientID); err != nil {
		return nil, err
	}

	now := s.now()
	st := &domain.Stakeholder{
		ClientID:  input.ClientID,
		Name:      strings.TrimSpace(input.Name),
		Role:      strings.TrimSpace(input.Role),
		Tone:      input.Tone,
		Priority1: strings.TrimSpace(input.Priority1),
		Priority2: strings.TrimSpace(input.Priority2),
		Priority3: strings.TrimSpace(input.Priority3),
		Email:     input.Email,
		Phone:     input.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := domain.ValidateStakeholder(st); err != nil {
		return nil, err
	}
	if err := s.stakeholders.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *ClientService) GetStakeholder(ctx context.Context, id int64) (*domain.Stakeholder, error) {
	return s.stakeholders.GetByID(ctx, id)
}

func (s *ClientService) ListStakeholders(ctx context.Context, clientID int64) ([]*domain.Stakeholder, error) {
	if _, err := s.clients.GetByID(ctx, clientID); err != nil {
		return nil, err
	}
	return s.stakeholders.ListByClient(ctx, clientID)
}

// UpdateStakeholder replaces the mutable fields. Priorities are replaced as a
// set so a priority can be cleared.
func (s *ClientService) UpdateStakeholder(ctx context.Context, id int64, input StakeholderInput) (*domain.Stakeholder, error) {
	ctx, span := telemetry.StartSpan(ctx, "ClientService.UpdateStakeholder", telemetry.SpanAttributes{
		StakeholderID: id,
		Operation:     "update",
	})
	defer span.End()

	st, err := s.stakeholders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != "" {
		st.Name = strings.TrimSpace(input.Name)
	}
	if input.Role != "" {
		st.Role = strings.TrimSpace(input.Role)
	}
	if input.Tone != "" {
		st.Tone = input.Tone
	}
	st.Priority1 = strings.TrimSpace(input.Priority1)
	st.Priority2 = strings.TrimSpace(input.Priority2)
	st.Priority3 = strings.TrimSpace(input.Priority3)
	if input.Email != "" {
		st.Email = input.Email
	}
	if input.Phone != "" {
		st.Phone = input.Phone
	}
	st.UpdatedAt = s.now()

	if err := domain.ValidateStakeholder(st); err != nil {
		return nil, err
	}
	if err := s.stakeholders.Update(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *ClientService) DeleteStakeholder(ctx context.Context, id int64) error {
	return s.stakeholders.Delete(ctx, id)
}

type EngagementInput struct {
	ClientID    int64
	Name        string
	Description string
	Status      string
	StartDate   *time.Time
	EndDate     *time.Time
	Phase       domain.Phase
}

func (s *ClientService) CreateEngagement(ctx context.Context, input EngagementInput) (*domain.Engagement, error) {
	ctx, span := telemetry.StartSpan(ctx, "ClientService.CreateEngagement", telemetry.SpanAttributes{
		ClientID:  input.ClientID,
		Operation: "create",
	})
	defer span.End()

	if _, err := s.clients.GetByID(ctx, input.ClientID); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = "active"
	}
	now := s.now()
	e := &domain.Engagement{
		ClientID:    input.ClientID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Status:      status,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Phase:       input.Phase,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := domain.ValidateEngagement(e); err != nil {
		return nil, err
	}
	if err := s.engagements.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *ClientService) GetEngagement(ctx context.Context, id int64) (*domain.Engagement, error) {
	return s.engagements.GetByID(ctx, id)
}

func (s *ClientService) ListEngagements(ctx context.Context, clientID int64) ([]*domain.Engagement, error) {
	if _, err := s.clients.GetByID(ctx, clientID); err != nil {
		return nil, err
	}
	return s.engagements.ListByClient(ctx, clientID)
}
