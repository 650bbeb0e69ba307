package handlers

import (
	"context"
	"net/http"

	"github.com/cloo-solutions/draftwise/internal/api"
	"github.com/cloo-solutions/draftwise/internal/domain"
	"github.com/cloo-solutions/draftwise/internal/service"
)

type KnowledgeService interface {
	Create(ctx context.Context, input service.CreateInput) (*domain.KnowledgeEntry, error)
	Ingest(ctx context.Context, input service.CreateInput, embed bool) (*service.IngestOutput, error)
	GetByID(ctx context.Context, id int64) (*domain.KnowledgeEntry, error)
	List(ctx context.Context, input service.ListKnowledgeInput) (*service.ListKnowledgeOutput, error)
	Update(ctx context.Context, input service.UpdateInput) (*domain.KnowledgeEntry, error)
	Delete(ctx context.Context, id int64) error
}

type EmbeddingService interface {
	EmbedEntry(ctx context.Context, entryID int64) (*service.EmbedResult, error)
	Regenerate(ctx context.Context, entryID int64) (*service.EmbedResult, error)
}

type BackfillService interface {
	Run(ctx context.Context, input service.BackfillInput) (*service.BackfillResult, error)
}

type KnowledgeHandler struct {
	svc        KnowledgeService
	embeddings EmbeddingService
	backfill   BackfillService
}

func NewKnowledgeHandler(svc KnowledgeService, embeddings EmbeddingService, backfill BackfillService) *KnowledgeHandler {
	return &KnowledgeHandler{svc: svc, embeddings: embeddings, backfill: backfill}
}

type KnowledgeRequest struct {
	ClientID      int64  `json:"client_id"`
	EngagementID  *int64 `json:"engagement_id"`
	StakeholderID *int64 `json:"stakeholder_id"`
	Type          string `json:"entry_type"`
	Title         string `json:"title"`
	Content       string `json:"content"`
	SourceURL     string `json:"source_url"`
	MeetingDate   string `json:"meeting_date"`
}

type KnowledgeResponse struct {
	ID            int64   `json:"id"`
	ClientID      int64   `json:"client_id"`
	EngagementID  *int64  `json:"engagement_id,omitempty"`
	StakeholderID *int64  `json:"stakeholder_id,omitempty"`
	Type          string  `json:"entry_type"`
	Title         string  `json:"title"`
	Content       string  `json:"content"`
	SourceURL     string  `json:"source_url,omitempty"`
	MeetingDate   *string `json:"meeting_date,omitempty"`
	HasEmbedding  bool    `json:"has_embedding"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

func knowledgeToResponse(k *domain.KnowledgeEntry) *KnowledgeResponse {
	return &KnowledgeResponse{
		ID:            k.ID,
		ClientID:      k.ClientID,
		EngagementID:  k.EngagementID,
		StakeholderID: k.StakeholderID,
		Type:          string(k.Type),
		Title:         k.Title,
		Content:       k.Content,
		SourceURL:     k.SourceURL,
		MeetingDate:   formatTimePtr(k.MeetingDate),
		HasEmbedding:  k.HasEmbedding,
		CreatedAt:     formatTime(k.CreatedAt),
		UpdatedAt:     formatTime(k.UpdatedAt),
	}
}

type IngestResponse struct {
	Entry    *KnowledgeResponse `json:"entry"`
	Embedded bool               `json:"embedded"`
}

type KnowledgeListResponse struct {
	Items   []*KnowledgeResponse `json:"items"`
	Cursor  string               `json:"cursor,omitempty"`
	HasMore bool                 `json:"has_more"`
}

func (req KnowledgeRequest) createInput() (service.CreateInput, error) {
	meeting, err := parseDate(req.MeetingDate)
	if err != nil {
		return service.CreateInput{}, err
	}
	return service.CreateInput{
		ClientID:      req.ClientID,
		EngagementID:  req.EngagementID,
		StakeholderID: req.StakeholderID,
		Type:          domain.EntryType(req.Type),
		Title:         req.Title,
		Content:       req.Content,
		SourceURL:     req.SourceURL,
		MeetingDate:   meeting,
	}, nil
}

func (h *KnowledgeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req KnowledgeRequest
	if err := decodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	input, err := req.createInput()
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.svc.Create(r.Context(), input)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.Success(w, http.StatusCreated, knowledgeToResponse(entry))
}

// Ingest stores an entry and, unless embed=false, embeds it right away.
func (h *KnowledgeHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req KnowledgeRequest
	if err := decodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	input, err := req.createInput()
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.svc.Ingest(r.Context(), input, queryBool(r, "embed", true))
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.Success(w, http.StatusCreated, IngestResponse{
		Entry:    knowledgeToResponse(out.Entry),
		Embedded: out.Embedded,
	})
}

func (h *KnowledgeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, knowledgeToResponse(entry))
}

func (h *KnowledgeHandler) List(w http.ResponseWriter, r *http.Request) {
	clientID, err := queryID(r, "client_id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	engagementID, err := queryID(r, "engagement_id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := queryInt(r, "limit", 20)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	output, err := h.svc.List(r.Context(), service.ListKnowledgeInput{
		Filter: service.KnowledgeFilter{
			ClientID:     clientID,
			EngagementID: engagementID,
			Type:         domain.EntryType(r.URL.Query().Get("entry_type")),
		},
		Cursor: r.URL.Query().Get("cursor"),
		Limit:  limit,
	})
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	responses := make([]*KnowledgeResponse, len(output.Items))
	for i, k := range output.Items {
		responses[i] = knowledgeToResponse(k)
	}

	api.Success(w, http.StatusOK, KnowledgeListResponse{
		Items:   responses,
		Cursor:  output.Cursor,
		HasMore: output.HasMore,
	})
}

func (h *KnowledgeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	var req KnowledgeRequest
	if err := decodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	meeting, err := parseDate(req.MeetingDate)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.svc.Update(r.Context(), service.UpdateInput{
		EntryID:     id,
		Type:        domain.EntryType(req.Type),
		Title:       req.Title,
		Content:     req.Content,
		SourceURL:   req.SourceURL,
		MeetingDate: meeting,
	})
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, knowledgeToResponse(entry))
}

func (h *KnowledgeHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// Embed computes the entry's embedding. It is idempotent unless regenerate=true.
func (h *KnowledgeHandler) Embed(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	embed := h.embeddings.EmbedEntry
	if queryBool(r, "regenerate", false) {
		embed = h.embeddings.Regenerate
	}

	result, err := embed(r.Context(), id)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, result)
}

func (h *KnowledgeHandler) Backfill(w http.ResponseWriter, r *http.Request) {
	clientID, err := queryID(r, "client_id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.backfill.Run(r.Context(), service.BackfillInput{ClientID: clientID, Limit: limit})
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, result)
}
