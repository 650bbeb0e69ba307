package domain

import (
	"fmt"
	"strings"
	"time"
)

// DeliverableStatus tracks a deliverable through review.
type DeliverableStatus string

const (
	DeliverableStatusDraft    DeliverableStatus = "draft"
	DeliverableStatusReview   DeliverableStatus = "review"
	DeliverableStatusApproved DeliverableStatus = "approved"
	DeliverableStatusFinal    DeliverableStatus = "final"
)

// IsValidDeliverableStatus reports whether s is a known status.
func IsValidDeliverableStatus(s DeliverableStatus) bool {
	switch s {
	case DeliverableStatusDraft, DeliverableStatusReview, DeliverableStatusApproved, DeliverableStatusFinal:
		return true
	}
	return false
}

// SectionSource records how a generated section was obtained.
type SectionSource string

const (
	SectionSourceJSON        SectionSource = "parsed_json"
	SectionSourceHeuristic   SectionSource = "parsed_heuristic"
	SectionSourcePlaceholder SectionSource = "placeholder"
	SectionSourceFallback    SectionSource = "fallback"
)

// DefaultSections are generated when a request names none.
var DefaultSections = []string{"executive_summary", "key_recommendations"}

// SectionPlaceholder is the text used for a section the generator did not produce.
func SectionPlaceholder(section string) string {
	return fmt.Sprintf("[%s content to be generated]", SectionTitle(section))
}

// SectionTitle turns "key_recommendations" into "Key Recommendations".
func SectionTitle(section string) string {
	words := strings.Fields(strings.ReplaceAll(section, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// Deliverable is a generated business document and its review state.
type Deliverable struct {
	ID               int64
	ClientID         int64
	EngagementID     *int64
	StakeholderID    *int64
	Title            string
	Type             string
	Status           DeliverableStatus
	GeneratedContent map[string]string
	SectionSources   map[string]SectionSource
	FinalContent     string
	ArchiveKey       string
	GeneratedAt      time.Time
	ApprovedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ValidateDeliverable validates a Deliverable instance
func ValidateDeliverable(d *Deliverable) error {
	if d == nil {
		return NewDomainError(ErrCodeValidation, "deliverable cannot be nil")
	}
	if d.ClientID <= 0 {
		return NewDomainError(ErrCodeValidation, "deliverable client_id is required")
	}
	if strings.TrimSpace(d.Title) == "" {
		return NewDomainError(ErrCodeValidation, "deliverable title is required")
	}
	if strings.TrimSpace(d.Type) == "" {
		return NewDomainError(ErrCodeValidation, "deliverable type is required")
	}
	if !IsValidDeliverableStatus(d.Status) {
		return ErrInvalidDeliverableStatus
	}
	return nil
}

// EnrichmentTitle is the title of the knowledge entry created on approval.
func (d *Deliverable) EnrichmentTitle() string {
	return fmt.Sprintf("Approved %s: %s", d.Type, d.Title)
}

// EnrichmentSource is the source locator of the knowledge entry created on approval.
func (d *Deliverable) EnrichmentSource() string {
	return fmt.Sprintf("deliverable_id:%d", d.ID)
}
