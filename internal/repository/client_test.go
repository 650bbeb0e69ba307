//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/cloo-solutions/draftwise/internal/domain"
	"github.com/cloo-solutions/draftwise/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	repo := NewClientRepository(pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	c := domain.NewClient("Acme Corp", "Manufacturing", "", now)
	require.NoError(t, repo.Create(ctx, c))

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", got.Name)
	assert.Equal(t, "Manufacturing", got.Industry)
	assert.Empty(t, got.Description)

	c.Description = "Industrial parts supplier"
	require.NoError(t, repo.Update(ctx, c))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Industrial parts supplier", list[0].Description)

	require.NoError(t, repo.Delete(ctx, c.ID))
	_, err = repo.GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrClientNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, c.ID), domain.ErrClientNotFound)
}

func TestStakeholderRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	repo := NewStakeholderRepository(pool)

	clientID := testutil.InsertClient(ctx, t, pool, "Acme")
	now := time.Now().UTC()
	s := &domain.Stakeholder{
		ClientID:  clientID,
		Name:      "Dana",
		Role:      "CFO",
		Tone:      domain.ToneAnalytical,
		Priority1: "cost reduction",
		Priority3: "vendor consolidation",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.Create(ctx, s))

	got, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ToneAnalytical, got.Tone)
	assert.Equal(t, "cost reduction", got.Priority1)
	assert.Empty(t, got.Priority2)
	assert.Equal(t, "cost reduction vendor consolidation", got.PrioritySignal())

	s.Priority2 = "cash flow"
	require.NoError(t, repo.Update(ctx, s))

	list, err := repo.ListByClient(ctx, clientID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "cash flow", list[0].Priority2)

	require.NoError(t, repo.Delete(ctx, s.ID))
	_, err = repo.GetByID(ctx, s.ID)
	assert.ErrorIs(t, err, domain.ErrStakeholderNotFound)
}

func TestStakeholderRepository_Create_UnknownClient(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	repo := NewStakeholderRepository(pool)

	err := repo.Create(ctx, &domain.Stakeholder{ClientID: 777, Name: "Dana", Role: "CFO", Tone: domain.ToneDirect})
	assert.ErrorIs(t, err, domain.ErrClientNotFound)
}

func TestEngagementRepository_CreateAndList(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	repo := NewEngagementRepository(pool)

	clientID := testutil.InsertClient(ctx, t, pool, "Acme")
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()

	e := &domain.Engagement{
		ClientID:  clientID,
		Name:      "Cost program",
		Status:    "active",
		StartDate: &start,
		Phase:     domain.PhaseAnalyze,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.Create(ctx, e))

	noPhase := &domain.Engagement{ClientID: clientID, Name: "Scoping", Status: "active", CreatedAt: now.Add(time.Minute), UpdatedAt: now}
	require.NoError(t, repo.Create(ctx, noPhase))

	got, err := repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseAnalyze, got.Phase)
	assert.True(t, start.Equal(*got.StartDate))
	assert.Nil(t, got.EndDate)

	list, err := repo.ListByClient(ctx, clientID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, noPhase.ID, list[0].ID)
	assert.Equal(t, domain.Phase(""), list[0].Phase)

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrEngagementNotFound)
}
