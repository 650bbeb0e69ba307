package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cloo-solutions/draftwise/internal/domain"
	"github.com/cloo-solutions/draftwise/internal/telemetry"
)

// StatusClientClosedRequest is used when the caller went away before we answered.
const StatusClientClosedRequest = 499

// SuccessResponse wraps successful API responses
type SuccessResponse struct {
	Data any `json:"data"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// JSON writes data with the given status. A nil data writes headers only.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("failed to write response body", "status", status, "error", err)
	}
}

// Success writes a successful JSON response
func Success(w http.ResponseWriter, status int, data any) {
	JSON(w, status, SuccessResponse{Data: data})
}

// Error writes an error JSON response
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// DomainErrorToHTTP maps an error, wrapped or not, to an HTTP status.
func DomainErrorToHTTP(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, context.Canceled) {
		return StatusClientClosedRequest
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}

	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) {
		return http.StatusInternalServerError
	}

	switch domainErr.Code {
	case domain.ErrCodeValidation:
		return http.StatusBadRequest
	case domain.ErrCodeNotFound:
		return http.StatusNotFound
	case domain.ErrCodeAlreadyExists, domain.ErrCodeInvalidOperation:
		return http.StatusConflict
	case domain.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// HandleError writes the error response for err. Domain errors are shown as
// "[CODE] message". Server errors are reported to Sentry, their text is
// replaced and the request ID is attached so operators can find the event.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	status := DomainErrorToHTTP(err)

	switch {
	case status == StatusClientClosedRequest:
		Error(w, status, "request cancelled")
	case status == http.StatusGatewayTimeout:
		telemetry.CaptureError(r.Context(), err)
		JSON(w, status, ErrorResponse{Error: "request timed out", RequestID: telemetry.RequestID(r.Context())})
	case status == http.StatusInternalServerError:
		telemetry.CaptureError(r.Context(), err)
		JSON(w, status, ErrorResponse{Error: "internal server error", RequestID: telemetry.RequestID(r.Context())})
	case status == http.StatusServiceUnavailable:
		telemetry.CaptureError(r.Context(), err)
		var domainErr *domain.DomainError
		errors.As(err, &domainErr)
		Error(w, status, domain.NewDomainError(domainErr.Code, domainErr.Message).Error())
	default:
		Error(w, status, err.Error())
	}
}
