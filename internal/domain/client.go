package domain

import (
	"strings"
	"time"
)

// Client is an organisation the practice produces deliverables for.
type Client struct {
	ID          int64
	Name        string
	Industry    string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewClient creates a new Client instance
func NewClient(name, industry, description string, now time.Time) *Client {
	return &Client{
		Name:        strings.TrimSpace(name),
		Industry:    industry,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ValidateClient validates a Client instance
func ValidateClient(c *Client) error {
	if c == nil {
		return NewDomainError(ErrCodeValidation, "client cannot be nil")
	}
	if strings.TrimSpace(c.Name) == "" {
		return NewDomainError(ErrCodeValidation, "client name is required")
	}
	return nil
}

// Info returns the value passed to prompt construction.
func (c *Client) Info() ClientInfo {
	return ClientInfo{
		Name:        c.Name,
		Industry:    c.Industry,
		Description: c.Description,
	}
}

// ClientInfo is the client context handed to content generation.
type ClientInfo struct {
	Name        string
	Industry    string
	Description string
}
