package repository

import (
	"context"
	"errors"

	"github.com/cloo-solutions/draftwise/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const engagementColumns = `id, client_id, name, description, status, start_date, end_date, daaeg_phase, created_at, updated_at`

type EngagementRepository struct {
	db dbtx
}

func NewEngagementRepository(pool *pgxpool.Pool) *EngagementRepository {
	return &EngagementRepository{db: pool}
}

func (r *EngagementRepository) Create(ctx context.Context, e *domain.Engagement) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO engagements (client_id, name, description, status, start_date, end_date, daaeg_phase, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		e.ClientID, e.Name, nullableString(e.Description), e.Status, e.StartDate, e.EndDate,
		nullableString(string(e.Phase)), e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	return foreignKeyError(err, map[string]error{"client_id": domain.ErrClientNotFound})
}

func (r *EngagementRepository) GetByID(ctx context.Context, id int64) (*domain.Engagement, error) {
	e, err := scanEngagement(r.db.QueryRow(ctx,
		`SELECT `+engagementColumns+` FROM engagements WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEngagementNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *EngagementRepository) ListByClient(ctx context.Context, clientID int64) ([]*domain.Engagement, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+engagementColumns+` FROM engagements WHERE client_id = $1 ORDER BY created_at DESC, id DESC`,
		clientID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.Engagement
	for rows.Next() {
		e, err := scanEngagement(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	return results, rows.Err()
}

func scanEngagement(row pgx.Row) (*domain.Engagement, error) {
	var e domain.Engagement
	var description, phase *string
	if err := row.Scan(&e.ID, &e.ClientID, &e.Name, &description, &e.Status, &e.StartDate, &e.EndDate, &phase, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Description = stringOrEmpty(description)
	e.Phase = domain.Phase(stringOrEmpty(phase))
	return &e, nil
}
