package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloo-solutions/draftwise/internal/domain"
	"github.com/cloo-solutions/draftwise/internal/pagination"
	"github.com/cloo-solutions/draftwise/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const knowledgeColumns = `k.id, k.client_id, k.engagement_id, k.stakeholder_id, k.entry_type, k.title, k.content,
	k.source_url, k.meeting_date, k.created_at, k.updated_at`

var knowledgeForeignKeys = map[string]error{
	"client_id":      domain.ErrClientNotFound,
	"engagement_id":  domain.ErrEngagementNotFound,
	"stakeholder_id": domain.ErrStakeholderNotFound,
}

type KnowledgeRepository struct {
	db dbtx
}

func NewKnowledgeRepository(pool *pgxpool.Pool) *KnowledgeRepository {
	return &KnowledgeRepository{db: pool}
}

func NewKnowledgeRepositoryWithTx(tx pgx.Tx) *KnowledgeRepository {
	return &KnowledgeRepository{db: tx}
}

func (r *KnowledgeRepository) Create(ctx context.Context, k *domain.KnowledgeEntry) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO knowledge_entries (client_id, engagement_id, stakeholder_id, entry_type, title, content, source_url, meeting_date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id`,
		k.ClientID, k.EngagementID, k.StakeholderID, string(k.Type), k.Title, k.Content,
		nullableString(k.SourceURL), k.MeetingDate, k.CreatedAt, k.UpdatedAt,
	).Scan(&k.ID)
	return foreignKeyError(err, knowledgeForeignKeys)
}

func (r *KnowledgeRepository) GetByID(ctx context.Context, id int64) (*domain.KnowledgeEntry, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+knowledgeColumns+`,
		        EXISTS (SELECT 1 FROM knowledge_embeddings e WHERE e.knowledge_entry_id = k.id)
		 FROM knowledge_entries k WHERE k.id = $1`,
		id,
	)
	k, err := scanKnowledge(row, true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrKnowledgeEntryNotFound
		}
		return nil, err
	}
	return k, nil
}

// ListWithCursor pages through entries newest first. The cursor holds the
// created_at and id of the last item on the previous page.
func (r *KnowledgeRepository) ListWithCursor(ctx context.Context, filter service.KnowledgeFilter, cursor *pagination.Cursor, limit int) (*service.KnowledgePageResult, error) {
	limit = pagination.ClampLimit(limit)

	var conditions []string
	var args []interface{}
	argN := 1

	if filter.ClientID != nil {
		conditions = append(conditions, fmt.Sprintf("k.client_id = $%d", argN))
		args = append(args, *filter.ClientID)
		argN++
	}
	if filter.EngagementID != nil {
		conditions = append(conditions, fmt.Sprintf("k.engagement_id = $%d", argN))
		args = append(args, *filter.EngagementID)
		argN++
	}
	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("k.entry_type = $%d", argN))
		args = append(args, string(filter.Type))
		argN++
	}
	if cursor != nil {
		conditions = append(conditions, fmt.Sprintf("(k.created_at, k.id) < ($%d, $%d)", argN, argN+1))
		args = append(args, cursor.CreatedAt, cursor.LastID)
		argN += 2
	}

	query := `SELECT ` + knowledgeColumns + `,
	        EXISTS (SELECT 1 FROM knowledge_embeddings e WHERE e.knowledge_entry_id = k.id)
	 FROM knowledge_entries k`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY k.created_at DESC, k.id DESC LIMIT $%d", argN)
	args = append(args, limit+1)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanKnowledgeRows(rows, true)
	if err != nil {
		return nil, err
	}

	page := pagination.Page(items, limit,
		func(k *domain.KnowledgeEntry) int64 { return k.ID },
		func(k *domain.KnowledgeEntry) time.Time { return k.CreatedAt })

	return &service.KnowledgePageResult{
		Items:      page.Items,
		NextCursor: page.Cursor,
		HasMore:    page.HasMore,
	}, nil
}

// ListRecent returns the newest entries in scope, embedded or not.
func (r *KnowledgeRepository) ListRecent(ctx context.Context, scope domain.Scope, limit int) ([]*domain.KnowledgeEntry, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+knowledgeColumns+`
		 FROM knowledge_entries k
		 WHERE ($1::bigint IS NULL OR k.client_id = $1)
		   AND ($2::bigint IS NULL OR k.engagement_id = $2)
		 ORDER BY k.created_at DESC, k.id DESC
		 LIMIT $3`,
		scope.ClientID, scope.EngagementID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanKnowledgeRows(rows, false)
}

func (r *KnowledgeRepository) Update(ctx context.Context, k *domain.KnowledgeEntry) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE knowledge_entries
		 SET engagement_id = $1, stakeholder_id = $2, entry_type = $3, title = $4, content = $5,
		     source_url = $6, meeting_date = $7, updated_at = $8
		 WHERE id = $9`,
		k.EngagementID, k.StakeholderID, string(k.Type), k.Title, k.Content,
		nullableString(k.SourceURL), k.MeetingDate, k.UpdatedAt, k.ID,
	)
	if err != nil {
		return foreignKeyError(err, knowledgeForeignKeys)
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrKnowledgeEntryNotFound
	}
	return nil
}

func (r *KnowledgeRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM knowledge_entries WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrKnowledgeEntryNotFound
	}
	return nil
}

func scanKnowledgeRows(rows pgx.Rows, withEmbeddingFlag bool) ([]*domain.KnowledgeEntry, error) {
	var results []*domain.KnowledgeEntry
	for rows.Next() {
		k, err := scanKnowledge(rows, withEmbeddingFlag)
		if err != nil {
			return nil, err
		}
		results = append(results, k)
	}
	return results, rows.Err()
}

func scanKnowledge(row pgx.Row, withEmbeddingFlag bool) (*domain.KnowledgeEntry, error) {
	var k domain.KnowledgeEntry
	var entryType string
	var sourceURL *string
	dest := []any{
		&k.ID, &k.ClientID, &k.EngagementID, &k.StakeholderID, &entryType, &k.Title, &k.Content,
		&sourceURL, &k.MeetingDate, &k.CreatedAt, &k.UpdatedAt,
	}
	if withEmbeddingFlag {
		dest = append(dest, &k.HasEmbedding)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	k.Type = domain.EntryType(entryType)
	k.SourceURL = stringOrEmpty(sourceURL)
	return &k, nil
}
