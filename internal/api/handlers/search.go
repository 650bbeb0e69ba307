package handlers

import (
	"context"
	"net/http"

	"github.com/cloo-solutions/draftwise/internal/api"
	"github.com/cloo-solutions/draftwise/internal/service"
)

type SearchService interface {
	Semantic(ctx context.Context, input service.SemanticSearchInput) (*service.SemanticSearchOutput, error)
	ByStakeholderPriority(ctx context.Context, input service.PrioritySearchInput) (*service.PrioritySearchOutput, error)
	Hybrid(ctx context.Context, input service.HybridSearchInput) (*service.HybridSearchOutput, error)
}

type SearchHandler struct {
	svc SearchService
}

func NewSearchHandler(svc SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

// Semantic serves GET /search/semantic?query&client_id&limit&threshold.
func (h *SearchHandler) Semantic(w http.ResponseWriter, r *http.Request) {
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
	threshold, err := queryFloat(r, "threshold")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.svc.Semantic(r.Context(), service.SemanticSearchInput{
		Query:     r.URL.Query().Get("query"),
		ClientID:  clientID,
		Limit:     limit,
		Threshold: threshold,
	})
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, out)
}

// ByStakeholderPriority serves GET /search/by-stakeholder-priority?stakeholder_id&limit.
func (h *SearchHandler) ByStakeholderPriority(w http.ResponseWriter, r *http.Request) {
	stakeholderID, err := queryID(r, "stakeholder_id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if stakeholderID == nil {
		api.Error(w, http.StatusBadRequest, "stakeholder_id is required")
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.svc.ByStakeholderPriority(r.Context(), service.PrioritySearchInput{
		StakeholderID: *stakeholderID,
		Limit:         limit,
	})
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, out)
}

// Hybrid serves GET /search/hybrid?query&client_id&stakeholder_id&limit.
func (h *SearchHandler) Hybrid(w http.ResponseWriter, r *http.Request) {
	clientID, err := queryID(r, "client_id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	stakeholderID, err := queryID(r, "stakeholder_id")
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.svc.Hybrid(r.Context(), service.HybridSearchInput{
		Query:         r.URL.Query().Get("query"),
		ClientID:      clientID,
		StakeholderID: stakeholderID,
		Limit:         limit,
	})
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, out)
}
