package testutil

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

// InsertClient adds a client row and returns its ID.
func InsertClient(ctx context.Context, t *testing.T, pool *pgxpool.Pool, name string) int64 {
	t.Helper()
	var id int64
	if err := pool.QueryRow(ctx,
		`INSERT INTO clients (name, industry) VALUES ($1, 'Manufacturing') RETURNING id`, name,
	).Scan(&id); err != nil {
		t.Fatalf("failed to insert client: %v", err)
	}
	return id
}

// InsertStakeholder adds a stakeholder with the given priorities and returns its ID.
func InsertStakeholder(ctx context.Context, t *testing.T, pool *pgxpool.Pool, clientID int64, name string, priorities ...string) int64 {
	t.Helper()
	p := make([]*string, 3)
	for i := 0; i < len(priorities) && i < 3; i++ {
		v := priorities[i]
		p[i] = &v
	}
	var id int64
	if err := pool.QueryRow(ctx,
		`INSERT INTO stakeholders (client_id, name, role, tone, priority_1, priority_2, priority_3)
		 VALUES ($1, $2, 'CFO', 'direct', $3, $4, $5) RETURNING id`,
		clientID, name, p[0], p[1], p[2],
	).Scan(&id); err != nil {
		t.Fatalf("failed to insert stakeholder: %v", err)
	}
	return id
}

// InsertEngagement adds an engagement in the given phase and returns its ID.
func InsertEngagement(ctx context.Context, t *testing.T, pool *pgxpool.Pool, clientID int64, name, phase string) int64 {
	t.Helper()
	var id int64
	if err := pool.QueryRow(ctx,
		`INSERT INTO engagements (client_id, name, daaeg_phase) VALUES ($1, $2, NULLIF($3, '')) RETURNING id`,
		clientID, name, phase,
	).Scan(&id); err != nil {
		t.Fatalf("failed to insert engagement: %v", err)
	}
	return id
}

// InsertEntry adds a note entry and returns its ID.
func InsertEntry(ctx context.Context, t *testing.T, pool *pgxpool.Pool, clientID int64, title, content string) int64 {
	t.Helper()
	var id int64
	if err := pool.QueryRow(ctx,
		`INSERT INTO knowledge_entries (client_id, entry_type, title, content) VALUES ($1, 'note', $2, $3) RETURNING id`,
		clientID, title, content,
	).Scan(&id); err != nil {
		t.Fatalf("failed to insert knowledge entry: %v", err)
	}
	return id
}
