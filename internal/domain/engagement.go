package domain

import (
	"strings"
	"time"
)

// Phase is a stage of the DAAEG engagement framework.
type Phase string

const (
	PhaseDiscover Phase = "discover"
	PhaseAssess   Phase = "assess"
	PhaseAnalyze  Phase = "analyze"
	PhaseExecute  Phase = "execute"
	PhaseGovern   Phase = "govern"
)

// IsValidPhase reports whether p is a known phase. Empty is allowed.
func IsValidPhase(p Phase) bool {
	switch p {
	case "", PhaseDiscover, PhaseAssess, PhaseAnalyze, PhaseExecute, PhaseGovern:
		return true
	}
	return false
}

// Engagement is a scoped piece of work for a client.
type Engagement struct {
	ID          int64
	ClientID    int64
	Name        string
	Description string
	Status      string
	StartDate   *time.Time
	EndDate     *time.Time
	Phase       Phase
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidateEngagement validates an Engagement instance
func ValidateEngagement(e *Engagement) error {
	if e == nil {
		return NewDomainError(ErrCodeValidation, "engagement cannot be nil")
	}
	if e.ClientID <= 0 {
		return NewDomainError(ErrCodeValidation, "engagement client_id is required")
	}
	if strings.TrimSpace(e.Name) == "" {
		return NewDomainError(ErrCodeValidation, "engagement name is required")
	}
	if !IsValidPhase(e.Phase) {
		return ErrInvalidPhase
	}
	if e.StartDate != nil && e.EndDate != nil && e.EndDate.Before(*e.StartDate) {
		return NewDomainError(ErrCodeValidation, "engagement end_date is before start_date")
	}
	return nil
}
