package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cloo-solutions/draftwise/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const deliverableColumns = `id, client_id, engagement_id, stakeholder_id, title, deliverable_type, status,
	ai_generated_content, section_sources, final_content, archive_key, generated_at, approved_at, created_at, updated_at`

var deliverableForeignKeys = map[string]error{
	"client_id":      domain.ErrClientNotFound,
	"engagement_id":  domain.ErrEngagementNotFound,
	"stakeholder_id": domain.ErrStakeholderNotFound,
}

type DeliverableRepository struct {
	db dbtx
}

func NewDeliverableRepository(pool *pgxpool.Pool) *DeliverableRepository {
	return &DeliverableRepository{db: pool}
}

func NewDeliverableRepositoryWithTx(tx pgx.Tx) *DeliverableRepository {
	return &DeliverableRepository{db: tx}
}

func (r *DeliverableRepository) Create(ctx context.Context, d *domain.Deliverable) error {
	content, sources, err := marshalSections(d)
	if err != nil {
		return err
	}
	err = r.db.QueryRow(ctx,
		`INSERT INTO deliverables (client_id, engagement_id, stakeholder_id, title, deliverable_type, status,
		     ai_generated_content, section_sources, final_content, archive_key, generated_at, approved_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING id`,
		d.ClientID, d.EngagementID, d.StakeholderID, d.Title, d.Type, string(d.Status),
		content, sources, nullableString(d.FinalContent), nullableString(d.ArchiveKey),
		d.GeneratedAt, d.ApprovedAt, d.CreatedAt, d.UpdatedAt,
	).Scan(&d.ID)
	return foreignKeyError(err, deliverableForeignKeys)
}

func (r *DeliverableRepository) GetByID(ctx context.Context, id int64) (*domain.Deliverable, error) {
	d, err := scanDeliverable(r.db.QueryRow(ctx,
		`SELECT `+deliverableColumns+` FROM deliverables WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDeliverableNotFound
		}
		return nil, err
	}
	return d, nil
}

// ListByClient lists deliverables newest first. A nil clientID lists all of them.
func (r *DeliverableRepository) ListByClient(ctx context.Context, clientID *int64) ([]*domain.Deliverable, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+deliverableColumns+`
		 FROM deliverables
		 WHERE ($1::bigint IS NULL OR client_id = $1)
		 ORDER BY created_at DESC, id DESC`,
		clientID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.Deliverable
	for rows.Next() {
		d, err := scanDeliverable(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, d)
	}
	return results, rows.Err()
}

func (r *DeliverableRepository) Update(ctx context.Context, d *domain.Deliverable) error {
	content, sources, err := marshalSections(d)
	if err != nil {
		return err
	}
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE deliverables
		 SET title = $1, deliverable_type = $2, status = $3, ai_generated_content = $4, section_sources = $5,
		     final_content = $6, archive_key = $7, approved_at = $8, updated_at = $9
		 WHERE id = $10`,
		d.Title, d.Type, string(d.Status), content, sources,
		nullableString(d.FinalContent), nullableString(d.ArchiveKey), d.ApprovedAt, d.UpdatedAt, d.ID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDeliverableNotFound
	}
	return nil
}

// Approve moves a deliverable to approved. It only succeeds once per row, so two
// concurrent approvals cannot both create a knowledge entry.
func (r *DeliverableRepository) Approve(ctx context.Context, d *domain.Deliverable) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE deliverables
		 SET status = 'approved', final_content = $1, approved_at = $2, updated_at = $3
		 WHERE id = $4 AND status <> 'approved'`,
		d.FinalContent, d.ApprovedAt, d.UpdatedAt, d.ID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM deliverables WHERE id = $1)`, d.ID).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return domain.ErrDeliverableAlreadyApproved
	}
	return domain.ErrDeliverableNotFound
}

func (r *DeliverableRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM deliverables WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDeliverableNotFound
	}
	return nil
}

func marshalSections(d *domain.Deliverable) ([]byte, []byte, error) {
	content := d.GeneratedContent
	if content == nil {
		content = map[string]string{}
	}
	sources := d.SectionSources
	if sources == nil {
		sources = map[string]domain.SectionSource{}
	}
	contentJSON, err := json.Marshal(content)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal generated content: %w", err)
	}
	sourcesJSON, err := json.Marshal(sources)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal section sources: %w", err)
	}
	return contentJSON, sourcesJSON, nil
}

func scanDeliverable(row pgx.Row) (*domain.Deliverable, error) {
	var d domain.Deliverable
	var status string
	var contentJSON, sourcesJSON []byte
	var finalContent, archiveKey *string
	if err := row.Scan(
		&d.ID, &d.ClientID, &d.EngagementID, &d.StakeholderID, &d.Title, &d.Type, &status,
		&contentJSON, &sourcesJSON, &finalContent, &archiveKey, &d.GeneratedAt, &d.ApprovedAt, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	d.Status = domain.DeliverableStatus(status)
	d.FinalContent = stringOrEmpty(finalContent)
	d.ArchiveKey = stringOrEmpty(archiveKey)
	if err := json.Unmarshal(contentJSON, &d.GeneratedContent); err != nil {
		return nil, fmt.Errorf("decode generated content: %w", err)
	}
	if err := json.Unmarshal(sourcesJSON, &d.SectionSources); err != nil {
		return nil, fmt.Errorf("decode section sources: %w", err)
	}
	return &d, nil
}
