package repository

import (
	"context"
	"errors"

	"github.com/cloo-solutions/draftwise/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ClientRepository struct {
	db dbtx
}

func NewClientRepository(pool *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{db: pool}
}

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO clients (name, industry, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		c.Name, nullableString(c.Industry), nullableString(c.Description), c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
}

func (r *ClientRepository) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	var c domain.Client
	var industry, description *string
	err := r.db.QueryRow(ctx,
		`SELECT id, name, industry, description, created_at, updated_at
		 FROM clients WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Name, &industry, &description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrClientNotFound
		}
		return nil, err
	}
	c.Industry = stringOrEmpty(industry)
	c.Description = stringOrEmpty(description)
	return &c, nil
}

func (r *ClientRepository) List(ctx context.Context) ([]*domain.Client, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, industry, description, created_at, updated_at
		 FROM clients ORDER BY name, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.Client
	for rows.Next() {
		var c domain.Client
		var industry, description *string
		if err := rows.Scan(&c.ID, &c.Name, &industry, &description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		c.Industry = stringOrEmpty(industry)
		c.Description = stringOrEmpty(description)
		results = append(results, &c)
	}
	return results, rows.Err()
}

func (r *ClientRepository) Update(ctx context.Context, c *domain.Client) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE clients SET name = $1, industry = $2, description = $3, updated_at = $4
		 WHERE id = $5`,
		c.Name, nullableString(c.Industry), nullableString(c.Description), c.UpdatedAt, c.ID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

func (r *ClientRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}
