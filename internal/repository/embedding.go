package repository

import (
	"context"
	"errors"

	"github.com/cloo-solutions/draftwise/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// EmbeddingRepository stores one pgvector embedding per knowledge entry.
type EmbeddingRepository struct {
	db dbtx
}

func NewEmbeddingRepository(pool *pgxpool.Pool) *EmbeddingRepository {
	return &EmbeddingRepository{db: pool}
}

func NewEmbeddingRepositoryWithTx(tx pgx.Tx) *EmbeddingRepository {
	return &EmbeddingRepository{db: tx}
}

func (r *EmbeddingRepository) HasEmbedding(ctx context.Context, entryID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM knowledge_embeddings WHERE knowledge_entry_id = $1)`,
		entryID,
	).Scan(&exists)
	return exists, err
}

func (r *EmbeddingRepository) Get(ctx context.Context, entryID int64) (*domain.Embedding, error) {
	var e domain.Embedding
	var vec pgvector.Vector
	err := r.db.QueryRow(ctx,
		`SELECT id, knowledge_entry_id, embedding, model, created_at
		 FROM knowledge_embeddings WHERE knowledge_entry_id = $1`,
		entryID,
	).Scan(&e.ID, &e.KnowledgeEntryID, &vec, &e.Model, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEmbeddingNotFound
		}
		return nil, err
	}
	e.Vector = vec.Slice()
	return &e, nil
}

// Put inserts the embedding unless the entry already has one, in which case
// the stored row is left as it is and ErrEmbeddingAlreadyExists is returned.
func (r *EmbeddingRepository) Put(ctx context.Context, e *domain.Embedding) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO knowledge_embeddings (knowledge_entry_id, embedding, model, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (knowledge_entry_id) DO NOTHING
		 RETURNING id`,
		e.KnowledgeEntryID, pgvector.NewVector(e.Vector), e.Model, e.CreatedAt,
	).Scan(&e.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrEmbeddingAlreadyExists
	}
	return foreignKeyError(err, map[string]error{"knowledge_entry_id": domain.ErrKnowledgeEntryNotFound})
}

func (r *EmbeddingRepository) Delete(ctx context.Context, entryID int64) error {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM knowledge_embeddings WHERE knowledge_entry_id = $1`,
		entryID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrEmbeddingNotFound
	}
	return nil
}

// ListMissing returns entries without an embedding, oldest first.
func (r *EmbeddingRepository) ListMissing(ctx context.Context, clientID *int64, limit int) ([]domain.MissingEmbedding, error) {
	rows, err := r.db.Query(ctx,
		`SELECT k.id, k.content
		 FROM knowledge_entries k
		 LEFT JOIN knowledge_embeddings e ON e.knowledge_entry_id = k.id
		 WHERE e.id IS NULL
		   AND ($1::bigint IS NULL OR k.client_id = $1)
		 ORDER BY k.id
		 LIMIT $2`,
		clientID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.MissingEmbedding
	for rows.Next() {
		var m domain.MissingEmbedding
		if err := rows.Scan(&m.EntryID, &m.Text); err != nil {
			return nil, err
		}
		results = append(results, m)
	}
	return results, rows.Err()
}

// ListCandidates loads every embedded entry in scope with its vector.
func (r *EmbeddingRepository) ListCandidates(ctx context.Context, scope domain.Scope) ([]domain.Candidate, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+knowledgeColumns+`, e.embedding
		 FROM knowledge_entries k
		 JOIN knowledge_embeddings e ON e.knowledge_entry_id = k.id
		 WHERE ($1::bigint IS NULL OR k.client_id = $1)
		   AND ($2::bigint IS NULL OR k.engagement_id = $2)
		 ORDER BY k.id`,
		scope.ClientID, scope.EngagementID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Candidate
	for rows.Next() {
		var k domain.KnowledgeEntry
		var entryType string
		var sourceURL *string
		var vec pgvector.Vector
		if err := rows.Scan(
			&k.ID, &k.ClientID, &k.EngagementID, &k.StakeholderID, &entryType, &k.Title, &k.Content,
			&sourceURL, &k.MeetingDate, &k.CreatedAt, &k.UpdatedAt, &vec,
		); err != nil {
			return nil, err
		}
		k.Type = domain.EntryType(entryType)
		k.SourceURL = stringOrEmpty(sourceURL)
		k.HasEmbedding = true
		results = append(results, domain.Candidate{Entry: &k, Vector: vec.Slice()})
	}
	return results, rows.Err()
}
