package domain

import (
	"fmt"
	"strings"
	"time"
)

// EntryType represents the kind of source a knowledge entry came from
type EntryType string

const (
	EntryTypeMeetingTranscript EntryType = "meeting_transcript"
	EntryTypeEmail             EntryType = "email"
	EntryTypeDocument          EntryType = "document"
	EntryTypeNote              EntryType = "note"
)

// IsValidEntryType reports whether t is one of the closed set of entry types.
func IsValidEntryType(t EntryType) bool {
	switch t {
	case EntryTypeMeetingTranscript, EntryTypeEmail, EntryTypeDocument, EntryTypeNote:
		return true
	}
	return false
}

// KnowledgeEntry is a unit of client knowledge that can be retrieved.
type KnowledgeEntry struct {
	ID            int64
	ClientID      int64
	EngagementID  *int64
	StakeholderID *int64
	Type          EntryType
	Title         string
	Content       string
	SourceURL     string
	MeetingDate   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// HasEmbedding is populated by list queries only.
	HasEmbedding bool
}

// NewKnowledgeEntry creates a new KnowledgeEntry instance
func NewKnowledgeEntry(clientID int64, entryType EntryType, title, content string, now time.Time) *KnowledgeEntry {
	return &KnowledgeEntry{
		ClientID:  clientID,
		Type:      entryType,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ValidateKnowledgeEntry validates a KnowledgeEntry instance
func ValidateKnowledgeEntry(k *KnowledgeEntry) error {
	if k == nil {
		return NewDomainError(ErrCodeValidation, "knowledge entry cannot be nil")
	}
	if k.ClientID <= 0 {
		return NewDomainError(ErrCodeValidation, "knowledge entry client_id is required")
	}
	if !IsValidEntryType(k.Type) {
		return ErrInvalidEntryType.WithCause(fmt.Errorf("got %q", k.Type))
	}
	if strings.TrimSpace(k.Title) == "" {
		return NewDomainError(ErrCodeValidation, "knowledge entry title is required")
	}
	if strings.TrimSpace(k.Content) == "" {
		return ErrEmptyContent
	}
	return nil
}

// Scope restricts retrieval to a client and optionally one engagement.
type Scope struct {
	ClientID     *int64
	EngagementID *int64
}

// Contains reports whether the entry falls inside the scope.
func (s Scope) Contains(k *KnowledgeEntry) bool {
	if s.ClientID != nil && k.ClientID != *s.ClientID {
		return false
	}
	if s.EngagementID != nil && (k.EngagementID == nil || *k.EngagementID != *s.EngagementID) {
		return false
	}
	return true
}
