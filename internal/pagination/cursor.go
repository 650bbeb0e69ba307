// Package pagination implements keyset cursors over (created_at, id).
package pagination

import (
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ErrInvalidCursor is returned for cursors that were not produced by EncodeCursor.
var ErrInvalidCursor = errors.New("invalid cursor format")

// Cursor marks the last row of the previous page.
type Cursor struct {
	CreatedAt time.Time
	LastID    int64
}

// PageResult is one page plus the cursor for the next one.
type PageResult[T any] struct {
	Items   []T    `json:"items"`
	Cursor  string `json:"cursor,omitempty"`
	HasMore bool   `json:"has_more"`
}

// ClampLimit maps a non-positive limit to DefaultLimit and caps it at MaxLimit.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}

// EncodeCursor returns an opaque URL-safe token, or "" when there is no row.
func EncodeCursor(lastID int64, createdAt time.Time) string {
	if lastID <= 0 {
		return ""
	}
	raw := createdAt.UTC().Format(time.RFC3339Nano) + "|" + strconv.FormatInt(lastID, 10)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a token from EncodeCursor. An empty token means the first page.
func DecodeCursor(cursor string) (*Cursor, error) {
	if cursor == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	ts, id, ok := strings.Cut(string(decoded), "|")
	if !ok {
		return nil, ErrInvalidCursor
	}

	createdAt, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	lastID, err := strconv.ParseInt(id, 10, 64)
	if err != nil || lastID <= 0 {
		return nil, ErrInvalidCursor
	}

	return &Cursor{CreatedAt: createdAt, LastID: lastID}, nil
}

// Page trims a limit+1 result set to limit and builds the next cursor from
// the last kept item.
func Page[T any](items []T, limit int, getID func(T) int64, getCreatedAt func(T) time.Time) PageResult[T] {
	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var next string
	if hasMore && len(items) > 0 {
		last := items[len(items)-1]
		next = EncodeCursor(getID(last), getCreatedAt(last))
	}

	return PageResult[T]{Items: items, Cursor: next, HasMore: hasMore}
}
