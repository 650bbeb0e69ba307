package repository

import (
	"context"
	"errors"

	"github.com/cloo-solutions/draftwise/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const stakeholderColumns = `id, client_id, name, role, tone, priority_1, priority_2, priority_3, email, phone, created_at, updated_at`

type StakeholderRepository struct {
	db dbtx
}

func NewStakeholderRepository(pool *pgxpool.Pool) *StakeholderRepository {
	return &StakeholderRepository{db: pool}
}

func (r *StakeholderRepository) Create(ctx context.Context, s *domain.Stakeholder) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO stakeholders (client_id, name, role, tone, priority_1, priority_2, priority_3, email, phone, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id`,
		s.ClientID, s.Name, s.Role, string(s.Tone),
		nullableString(s.Priority1), nullableString(s.Priority2), nullableString(s.Priority3),
		nullableString(s.Email), nullableString(s.Phone), s.CreatedAt, s.UpdatedAt,
	).Scan(&s.ID)
	return foreignKeyError(err, map[string]error{"client_id": domain.ErrClientNotFound})
}

func (r *StakeholderRepository) GetByID(ctx context.Context, id int64) (*domain.Stakeholder, error) {
	s, err := scanStakeholder(r.db.QueryRow(ctx,
		`SELECT `+stakeholderColumns+` FROM stakeholders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStakeholderNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *StakeholderRepository) ListByClient(ctx context.Context, clientID int64) ([]*domain.Stakeholder, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+stakeholderColumns+` FROM stakeholders WHERE client_id = $1 ORDER BY name, id`,
		clientID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.Stakeholder
	for rows.Next() {
		s, err := scanStakeholder(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, s)
	}
	return results, rows.Err()
}

func (r *StakeholderRepository) Update(ctx context.Context, s *domain.Stakeholder) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE stakeholders
		 SET name = $1, role = $2, tone = $3, priority_1 = $4, priority_2 = $5, priority_3 = $6,
		     email = $7, phone = $8, updated_at = $9
		 WHERE id = $10`,
		s.Name, s.Role, string(s.Tone),
		nullableString(s.Priority1), nullableString(s.Priority2), nullableString(s.Priority3),
		nullableString(s.Email), nullableString(s.Phone), s.UpdatedAt, s.ID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrStakeholderNotFound
	}
	return nil
}

func (r *StakeholderRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM stakeholders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrStakeholderNotFound
	}
	return nil
}

func scanStakeholder(row pgx.Row) (*domain.Stakeholder, error) {
	var s domain.Stakeholder
	var tone string
	var p1, p2, p3, email, phone *string
	if err := row.Scan(&s.ID, &s.ClientID, &s.Name, &s.Role, &tone, &p1, &p2, &p3, &email, &phone, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.Tone = domain.Tone(tone)
	s.Priority1 = stringOrEmpty(p1)
	s.Priority2 = stringOrEmpty(p2)
	s.Priority3 = stringOrEmpty(p3)
	s.Email = stringOrEmpty(email)
	s.Phone = stringOrEmpty(phone)
	return &s, nil
}
