package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cloo-solutions/draftwise/internal/domain"
	"github.com/cloo-solutions/draftwise/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var recordTime = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

func TestClientHandler_CreateClient(t *testing.T) {
	svc := new(MockClientService)
	handler := NewClientHandler(svc)

	svc.On("CreateClient", mock.Anything, service.ClientInput{Name: "Acme", Industry: "Manufacturing"}).
		Return(&domain.Client{ID: 7, Name: "Acme", Industry: "Manufacturing", CreatedAt: recordTime, UpdatedAt: recordTime}, nil)

	req := httptest.NewRequest(http.MethodPost, "/clients", strings.NewReader(`{"name":"Acme","industry":"Manufacturing"}`))
	w := httptest.NewRecorder()

	handler.CreateClient(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, float64(7), data["id"])
	assert.Equal(t, "2026-01-15T12:00:00Z", data["created_at"])
	svc.AssertExpectations(t)
}

func TestClientHandler_CreateClient_MissingName(t *testing.T) {
	svc := new(MockClientService)
	handler := NewClientHandler(svc)

	svc.On("CreateClient", mock.Anything, mock.Anything).Return(nil, domain.ErrMissingRequiredField)

	req := httptest.NewRequest(http.MethodPost, "/clients", strings.NewReader(`{}`))
	w := httptest.NewRecorder()

	handler.CreateClient(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClientHandler_ListClients(t *testing.T) {
	svc := new(MockClientService)
	handler := NewClientHandler(svc)

	svc.On("ListClients", mock.Anything).Return([]*domain.Client{
		{ID: 1, Name: "Acme"},
		{ID: 2, Name: "Globex"},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/clients", nil)
	w := httptest.NewRecorder()

	handler.ListClients(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Globex"`)
}

func TestClientHandler_DeleteClient_NotFound(t *testing.T) {
	svc := new(MockClientService)
	handler := NewClientHandler(svc)

	svc.On("DeleteClient", mock.Anything, int64(8)).Return(domain.ErrClientNotFound)

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/clients/8", nil), "id", "8")
	w := httptest.NewRecorder()

	handler.DeleteClient(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClientHandler_ListClientStakeholders(t *testing.T) {
	svc := new(MockClientService)
	handler := NewClientHandler(svc)

	svc.On("ListStakeholders", mock.Anything, int64(7)).Return([]*domain.Stakeholder{
		{ID: 3, ClientID: 7, Name: "Dana", Role: "CFO", Tone: domain.ToneAnalytical, Priority1: "Cost reduction"},
	}, nil)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/clients/7/stakeholders", nil), "id", "7")
	w := httptest.NewRecorder()

	handler.ListClientStakeholders(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"communication_tone":"analytical"`)
	assert.Contains(t, w.Body.String(), `"priority_1":"Cost reduction"`)
}

func TestClientHandler_CreateStakeholder(t *testing.T) {
	svc := new(MockClientService)
	handler := NewClientHandler(svc)

	svc.On("CreateStakeholder", mock.Anything, mock.MatchedBy(func(input service.StakeholderInput) bool {
		return input.ClientID == 7 && input.Tone == domain.ToneDirect && input.Priority2 == "Security"
	})).Return(&domain.Stakeholder{ID: 3, ClientID: 7, Name: "Dana", Tone: domain.ToneDirect}, nil)

	body := `{"client_id":7,"name":"Dana","role":"CFO","communication_tone":"direct","priority_2":"Security"}`
	req := httptest.NewRequest(http.MethodPost, "/stakeholders", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.CreateStakeholder(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestClientHandler_CreateStakeholder_UnknownClient(t *testing.T) {
	svc := new(MockClientService)
	handler := NewClientHandler(svc)

	svc.On("CreateStakeholder", mock.Anything, mock.Anything).Return(nil, domain.ErrClientNotFound)

	req := httptest.NewRequest(http.MethodPost, "/stakeholders", strings.NewReader(`{"client_id":99,"name":"Dana"}`))
	w := httptest.NewRecorder()

	handler.CreateStakeholder(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClientHandler_UpdateStakeholder(t *testing.T) {
	svc := new(MockClientService)
	handler := NewClientHandler(svc)

	svc.On("UpdateStakeholder", mock.Anything, int64(3), mock.MatchedBy(func(input service.StakeholderInput) bool {
		return input.Priority1 == "Growth"
	})).Return(&domain.Stakeholder{ID: 3, ClientID: 7, Name: "Dana", Priority1: "Growth"}, nil)

	req := withURLParam(httptest.NewRequest(http.MethodPut, "/stakeholders/3", strings.NewReader(`{"name":"Dana","priority_1":"Growth"}`)), "id", "3")
	w := httptest.NewRecorder()

	handler.UpdateStakeholder(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Growth", decodeData(t, w)["priority_1"])
}

func TestClientHandler_CreateEngagement(t *testing.T) {
	svc := new(MockClientService)
	handler := NewClientHandler(svc)

	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	svc.On("CreateEngagement", mock.Anything, mock.MatchedBy(func(input service.EngagementInput) bool {
		return input.ClientID == 7 &&
			input.Phase == domain.PhaseAssess &&
			input.StartDate != nil && input.StartDate.Equal(start) &&
			input.EndDate == nil
	})).Return(&domain.Engagement{ID: 4, ClientID: 7, Name: "Platform review", Phase: domain.PhaseAssess, StartDate: &start}, nil)

	body := `{"client_id":7,"name":"Platform review","daaeg_phase":"assess","start_date":"2026-02-01"}`
	req := httptest.NewRequest(http.MethodPost, "/engagements", strings.NewReader(body))
	w := httptest.NewRecorder()

	handler.CreateEngagement(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, "assess", data["daaeg_phase"])
	assert.Equal(t, "2026-02-01T00:00:00Z", data["start_date"])
	svc.AssertExpectations(t)
}

func TestClientHandler_CreateEngagement_InvalidPhase(t *testing.T) {
	svc := new(MockClientService)
	handler := NewClientHandler(svc)

	svc.On("CreateEngagement", mock.Anything, mock.Anything).Return(nil, domain.ErrInvalidPhase)

	req := httptest.NewRequest(http.MethodPost, "/engagements", strings.NewReader(`{"client_id":7,"name":"x","daaeg_phase":"deploy"}`))
	w := httptest.NewRecorder()

	handler.CreateEngagement(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid engagement phase")
}

func TestClientHandler_ListEngagements_RequiresClient(t *testing.T) {
	svc := new(MockClientService)
	handler := NewClientHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/engagements", nil)
	w := httptest.NewRecorder()

	handler.ListEngagements(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "ListEngagements", mock.Anything, mock.Anything)
}
