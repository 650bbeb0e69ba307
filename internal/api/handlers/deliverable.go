package handlers

import (
	"context"
	"net/http"

	"github.com/cloo-solutions/draftwise/internal/api"
	"github.com/cloo-solutions/draftwise/internal/domain"
	"github.com/cloo-solutions/draftwise/internal/service"
)

type ContentAssembler interface {
	Generate(ctx context.Context, input service.GenerateInput) (*service.GenerateOutput, error)
	Approve(ctx context.Context, input service.ApproveInput) (*service.ApproveOutput, error)
}

type DeliverableService interface {
	Get(ctx context.Context, id int64) (*domain.Deliverable, error)
	List(ctx context.Context, clientID *int64) ([]*domain.Deliverable, error)
	Update(ctx context.Context, input service.UpdateDeliverableInput) (*domain.Deliverable, error)
	Delete(ctx context.Context, id int64) error
	ArchiveURL(ctx context.Context, id int64) (string, error)
}

type DeliverableHandler struct {
	assembler ContentAssembler
	svc       DeliverableService
}

func NewDeliverableHandler(assembler ContentAssembler, svc DeliverableService) *DeliverableHandler {
	return &DeliverableHandler{assembler: assembler, svc: svc}
}

type GenerateRequest struct {
	ClientID        int64    `json:"client_id"`
	EngagementID    *int64   `json:"engagement_id"`
	StakeholderID   *int64   `json:"stakeholder_id"`
	Title           string   `json:"title"`
	DeliverableType string   `json:"deliverable_type"`
	Sections        []string `json:"sections"`
}

type ApproveRequest struct {
	FinalContent string `json:"final_content"`
}

type UpdateDeliverableRequest struct {
	Title           *string `json:"title"`
	DeliverableType *string `json:"deliverable_type"`
	Status          *string `json:"status"`
	FinalContent    *string `json:"final_content"`
}

type DeliverableResponse struct {
	ID               int64                           `json:"id"`
	ClientID         int64                           `json:"client_id"`
	EngagementID     *int64                          `json:"engagement_id,omitempty"`
	StakeholderID    *int64                          `json:"stakeholder_id,omitempty"`
	Title            string                          `json:"title"`
	DeliverableType  string                          `json:"deliverable_type"`
	Status           string                          `json:"status"`
	GeneratedContent map[string]string               `json:"ai_generated_content"`
	SectionSources   map[string]domain.SectionSource `json:"section_sources"`
	FinalContent     string                          `json:"final_content,omitempty"`
	Archived         bool                            `json:"archived"`
	GeneratedAt      string                          `json:"generated_at"`
	ApprovedAt       *string                         `json:"approved_at,omitempty"`
	CreatedAt        string                          `json:"created_at"`
	UpdatedAt        string                          `json:"updated_at"`
}

func deliverableToResponse(d *domain.Deliverable) *DeliverableResponse {
	return &DeliverableResponse{
		ID:               d.ID,
		ClientID:         d.ClientID,
		EngagementID:     d.EngagementID,
		StakeholderID:    d.StakeholderID,
		Title:            d.Title,
		DeliverableType:  d.Type,
		Status:           string(d.Status),
		GeneratedContent: d.GeneratedContent,
		SectionSources:   d.SectionSources,
		FinalContent:     d.FinalContent,
		Archived:         d.ArchiveKey != "",
		GeneratedAt:      formatTime(d.GeneratedAt),
		ApprovedAt:       formatTimePtr(d.ApprovedAt),
		CreatedAt:        formatTime(d.CreatedAt),
		UpdatedAt:        formatTime(d.UpdatedAt),
	}
}

type GenerateResponse struct {
	Deliverable     *DeliverableResponse            `json:"deliverable"`
	Sections        map[string]string               `json:"sections"`
	SectionSources  map[string]domain.SectionSource `json:"section_sources"`
	KnowledgeUsed   []service.KnowledgeRef          `json:"knowledge_used"`
	FallbackUsed    bool                            `json:"fallback_used"`
	Malformed       bool                            `json:"malformed"`
	RecencyFallback bool                            `json:"recency_fallback"`
}

type ApproveResponse struct {
	Deliverable      *DeliverableResponse `json:"deliverable"`
	KnowledgeEntryID int64                `json:"knowledge_entry_id"`
	Embedded         bool                 `json:"embedded"`
}

// Generate serves POST /deliverables/generate.
func (h *DeliverableHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := decodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ClientID <= 0 {
		api.Error(w, http.StatusBadRequest, "client_id is required")
		return
	}

	out, err := h.assembler.Generate(r.Context(), service.GenerateInput{
		ClientID:        req.ClientID,
		EngagementID:    req.EngagementID,
		StakeholderID:   req.StakeholderID,
		Title:           req.Title,
		DeliverableType: req.DeliverableType,
		Sections:        req.Sections,
	})
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	used := out.KnowledgeUsed
	if used == nil {
		used = []service.KnowledgeRef{}
	}
	api.Success(w, http.StatusCreated, GenerateResponse{
		Deliverable:     deliverableToResponse(out.Deliverable),
		Sections:        out.Sections,
		SectionSources:  out.SectionSources,
		KnowledgeUsed:   used,
		FallbackUsed:    out.FallbackUsed,
		Malformed:       out.Malformed,
		RecencyFallback: out.RecencyFallback,
	})
}

// Approve serves POST /deliverables/{id}/approve.
func (h *DeliverableHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	var req ApproveRequest
	if err := decodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.assembler.Approve(r.Context(), service.ApproveInput{DeliverableID: id, FinalContent: req.FinalContent})
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, ApproveResponse{
		Deliverable:      deliverableToResponse(out.Deliverable),
		KnowledgeEntryID: out.KnowledgeEntryID,
		Embedded:         out.Embedded,
	})
}

func (h *DeliverableHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	d, err := h.svc.Get(r.Context(), id)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, deliverableToResponse(d))
}

func (h *DeliverableHandler) List(w http.ResponseWriter, r *http.Request) {
	clientID, err := queryID(r, "client_id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.svc.List(r.Context(), clientID)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	out := make([]*DeliverableResponse, len(items))
	for i, d := range items {
		out[i] = deliverableToResponse(d)
	}
	api.Success(w, http.StatusOK, out)
}

func (h *DeliverableHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	var req UpdateDeliverableRequest
	if err := decodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	input := service.UpdateDeliverableInput{
		ID:           id,
		Title:        req.Title,
		Type:         req.DeliverableType,
		FinalContent: req.FinalContent,
	}
	if req.Status != nil {
		status := domain.DeliverableStatus(*req.Status)
		input.Status = &status
	}

	d, err := h.svc.Update(r.Context(), input)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, deliverableToResponse(d))
}

func (h *DeliverableHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		api.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Archive returns a presigned download URL for the archived JSON.
func (h *DeliverableHandler) Archive(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	url, err := h.svc.ArchiveURL(r.Context(), id)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]string{"download_url": url})
}
