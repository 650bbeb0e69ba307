package handlers

import (
	"context"
	"net/http"

	"github.com/cloo-solutions/draftwise/internal/api"
	"github.com/cloo-solutions/draftwise/internal/domain"
	"github.com/cloo-solutions/draftwise/internal/service"
)

type ClientService interface {
	CreateClient(ctx context.Context, input service.ClientInput) (*domain.Client, error)
	GetClient(ctx context.Context, id int64) (*domain.Client, error)
	ListClients(ctx context.Context) ([]*domain.Client, error)
	UpdateClient(ctx context.Context, id int64, input service.ClientInput) (*domain.Client, error)
	DeleteClient(ctx context.Context, id int64) error

	CreateStakeholder(ctx context.Context, input service.StakeholderInput) (*domain.Stakeholder, error)
	GetStakeholder(ctx context.Context, id int64) (*domain.Stakeholder, error)
	ListStakeholders(ctx context.Context, clientID int64) ([]*domain.Stakeholder, error)
	UpdateStakeholder(ctx context.Context, id int64, input service.StakeholderInput) (*domain.Stakeholder, error)
	DeleteStakeholder(ctx context.Context, id int64) error

	CreateEngagement(ctx context.Context, input service.EngagementInput) (*domain.Engagement, error)
	GetEngagement(ctx context.Context, id int64) (*domain.Engagement, error)
	ListEngagements(ctx context.Context, clientID int64) ([]*domain.Engagement, error)
}

// ClientHandler serves clients, stakeholders and engagements.
type ClientHandler struct {
	svc ClientService
}

func NewClientHandler(svc ClientService) *ClientHandler {
	return &ClientHandler{svc: svc}
}

type ClientRequest struct {
	Name        string `json:"name"`
	Industry    string `json:"industry"`
	Description string `json:"description"`
}

type ClientResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Industry    string `json:"industry,omitempty"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func clientToResponse(c *domain.Client) *ClientResponse {
	return &ClientResponse{
		ID:          c.ID,
		Name:        c.Name,
		Industry:    c.Industry,
		Description: c.Description,
		CreatedAt:   formatTime(c.CreatedAt),
		UpdatedAt:   formatTime(c.UpdatedAt),
	}
}

type StakeholderRequest struct {
	ClientID  int64  `json:"client_id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Tone      string `json:"communication_tone"`
	Priority1 string `json:"priority_1"`
	Priority2 string `json:"priority_2"`
	Priority3 string `json:"priority_3"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type StakeholderResponse struct {
	ID        int64  `json:"id"`
	ClientID  int64  `json:"client_id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Tone      string `json:"communication_tone"`
	Priority1 string `json:"priority_1,omitempty"`
	Priority2 string `json:"priority_2,omitempty"`
	Priority3 string `json:"priority_3,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func stakeholderToResponse(s *domain.Stakeholder) *StakeholderResponse {
	return &StakeholderResponse{
		ID:        s.ID,
		ClientID:  s.ClientID,
		Name:      s.Name,
		Role:      s.Role,
		Tone:      string(s.Tone),
		Priority1: s.Priority1,
		Priority2: s.Priority2,
		Priority3: s.Priority3,
		Email:     s.Email,
		Phone:     s.Phone,
		CreatedAt: formatTime(s.CreatedAt),
		UpdatedAt: formatTime(s.UpdatedAt),
	}
}

type EngagementRequest struct {
	ClientID    int64  `json:"client_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Phase       string `json:"daaeg_phase"`
}

type EngagementResponse struct {
	ID          int64   `json:"id"`
	ClientID    int64   `json:"client_id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status"`
	StartDate   *string `json:"start_date,omitempty"`
	EndDate     *string `json:"end_date,omitempty"`
	Phase       string  `json:"daaeg_phase,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func engagementToResponse(e *domain.Engagement) *EngagementResponse {
	return &EngagementResponse{
		ID:          e.ID,
		ClientID:    e.ClientID,
		Name:        e.Name,
		Description: e.Description,
		Status:      e.Status,
		StartDate:   formatTimePtr(e.StartDate),
		EndDate:     formatTimePtr(e.EndDate),
		Phase:       string(e.Phase),
		CreatedAt:   formatTime(e.CreatedAt),
		UpdatedAt:   formatTime(e.UpdatedAt),
	}
}

func (h *ClientHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req ClientRequest
	if err := decodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.svc.CreateClient(r.Context(), service.ClientInput(req))
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.Success(w, http.StatusCreated, clientToResponse(c))
}

func (h *ClientHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.svc.GetClient(r.Context(), id)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, clientToResponse(c))
}

func (h *ClientHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.svc.ListClients(r.Context())
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	out := make([]*ClientResponse, len(clients))
	for i, c := range clients {
		out[i] = clientToResponse(c)
	}
	api.Success(w, http.StatusOK, out)
}

func (h *ClientHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	var req ClientRequest
	if err := decodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.svc.UpdateClient(r.Context(), id, service.ClientInput(req))
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, clientToResponse(c))
}

func (h *ClientHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.DeleteClient(r.Context(), id); err != nil {
		api.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ClientHandler) ListClientStakeholders(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	stakeholders, err := h.svc.ListStakeholders(r.Context(), id)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	out := make([]*StakeholderResponse, len(stakeholders))
	for i, s := range stakeholders {
		out[i] = stakeholderToResponse(s)
	}
	api.Success(w, http.StatusOK, out)
}

func (r StakeholderRequest) input() service.StakeholderInput {
	return service.StakeholderInput{
		ClientID:  r.ClientID,
		Name:      r.Name,
		Role:      r.Role,
		Tone:      domain.Tone(r.Tone),
		Priority1: r.Priority1,
		Priority2: r.Priority2,
		Priority3: r.Priority3,
		Email:     r.Email,
		Phone:     r.Phone,
	}
}

func (h *ClientHandler) CreateStakeholder(w http.ResponseWriter, r *http.Request) {
	var req StakeholderRequest
	if err := decodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	s, err := h.svc.CreateStakeholder(r.Context(), req.input())
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.Success(w, http.StatusCreated, stakeholderToResponse(s))
}

func (h *ClientHandler) GetStakeholder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	s, err := h.svc.GetStakeholder(r.Context(), id)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, stakeholderToResponse(s))
}

func (h *ClientHandler) UpdateStakeholder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	var req StakeholderRequest
	if err := decodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	s, err := h.svc.UpdateStakeholder(r.Context(), id, req.input())
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, stakeholderToResponse(s))
}

func (h *ClientHandler) DeleteStakeholder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.DeleteStakeholder(r.Context(), id); err != nil {
		api.HandleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ClientHandler) CreateEngagement(w http.ResponseWriter, r *http.Request) {
	var req EngagementRequest
	if err := decodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	e, err := h.svc.CreateEngagement(r.Context(), service.EngagementInput{
		ClientID:    req.ClientID,
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		StartDate:   start,
		EndDate:     end,
		Phase:       domain.Phase(req.Phase),
	})
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.Success(w, http.StatusCreated, engagementToResponse(e))
}

func (h *ClientHandler) GetEngagement(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	e, err := h.svc.GetEngagement(r.Context(), id)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, engagementToResponse(e))
}

func (h *ClientHandler) ListEngagements(w http.ResponseWriter, r *http.Request) {
	clientID, err := queryID(r, "client_id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if clientID == nil {
		api.Error(w, http.StatusBadRequest, "client_id is required")
		return
	}

	engagements, err := h.svc.ListEngagements(r.Context(), *clientID)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	out := make([]*EngagementResponse, len(engagements))
	for i, e := range engagements {
		out[i] = engagementToResponse(e)
	}
	api.Success(w, http.StatusOK, out)
}
