package domain

import (
	"strings"
	"time"
)

// Tone is a stakeholder's preferred communication register.
type Tone string

const (
	ToneDirect        Tone = "direct"
	ToneCollaborative Tone = "collaborative"
	ToneAnalytical    Tone = "analytical"
	ToneStrategic     Tone = "strategic"

	// ToneProfessional is only used by the default persona and is never stored.
	ToneProfessional Tone = "professional"
)

// IsValidTone reports whether t may be stored on a stakeholder.
func IsValidTone(t Tone) bool {
	switch t {
	case ToneDirect, ToneCollaborative, ToneAnalytical, ToneStrategic:
		return true
	}
	return false
}

// Stakeholder is a person at a client whose priorities steer retrieval.
type Stakeholder struct {
	ID        int64
	ClientID  int64
	Name      string
	Role      string
	Tone      Tone
	Priority1 string
	Priority2 string
	Priority3 string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateStakeholder validates a Stakeholder instance
func ValidateStakeholder(s *Stakeholder) error {
	if s == nil {
		return NewDomainError(ErrCodeValidation, "stakeholder cannot be nil")
	}
	if s.ClientID <= 0 {
		return NewDomainError(ErrCodeValidation, "stakeholder client_id is required")
	}
	if strings.TrimSpace(s.Name) == "" {
		return NewDomainError(ErrCodeValidation, "stakeholder name is required")
	}
	if strings.TrimSpace(s.Role) == "" {
		return NewDomainError(ErrCodeValidation, "stakeholder role is required")
	}
	if !IsValidTone(s.Tone) {
		return ErrInvalidTone
	}
	return nil
}

// Priorities returns the ranked, non-blank priority strings.
func (s *Stakeholder) Priorities() []string {
	return nonBlank(s.Priority1, s.Priority2, s.Priority3)
}

// PrioritySignal joins the non-blank priorities with a single space.
// An empty result means no priority retrieval is possible.
func (s *Stakeholder) PrioritySignal() string {
	return strings.Join(s.Priorities(), " ")
}

// Persona returns the stakeholder as generation context.
func (s *Stakeholder) Persona() StakeholderInfo {
	return StakeholderInfo{
		Name:      s.Name,
		Role:      s.Role,
		Tone:      s.Tone,
		Priority1: s.Priority1,
		Priority2: s.Priority2,
		Priority3: s.Priority3,
	}
}

// StakeholderInfo is the audience framing handed to content generation.
type StakeholderInfo struct {
	Name      string
	Role      string
	Tone      Tone
	Priority1 string
	Priority2 string
	Priority3 string
}

// DefaultPersona is used when no target stakeholder is given.
func DefaultPersona() StakeholderInfo {
	return StakeholderInfo{
		Name:      "General Stakeholder",
		Role:      "Decision Maker",
		Tone:      ToneProfessional,
		Priority1: "Efficiency",
		Priority2: "Cost Optimization",
		Priority3: "Quality",
	}
}

// PrioritySignal joins the non-blank priorities with a single space.
func (p StakeholderInfo) PrioritySignal() string {
	return strings.Join(nonBlank(p.Priority1, p.Priority2, p.Priority3), " ")
}

func nonBlank(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
