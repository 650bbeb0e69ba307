//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/cloo-solutions/draftwise/internal/domain"
	"github.com/cloo-solutions/draftwise/internal/service"
	"github.com/cloo-solutions/draftwise/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDeliverable(clientID int64, now time.Time) *domain.Deliverable {
	return &domain.Deliverable{
		ClientID: clientID,
		Title:    "Assessment for Acme",
		Type:     "assessment",
		Status:   domain.DeliverableStatusDraft,
		GeneratedContent: map[string]string{
			"executive_summary":   "Costs are rising.",
			"key_recommendations": "[Key Recommendations content to be generated]",
		},
		SectionSources: map[string]domain.SectionSource{
			"executive_summary":   domain.SectionSourceJSON,
			"key_recommendations": domain.SectionSourcePlaceholder,
		},
		GeneratedAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestDeliverableRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	repo := NewDeliverableRepository(pool)

	clientID := testutil.InsertClient(ctx, t, pool, "Acme")
	stakeholderID := testutil.InsertStakeholder(ctx, t, pool, clientID, "Dana", "cost reduction")

	d := newDeliverable(clientID, time.Now().UTC().Truncate(time.Microsecond))
	d.StakeholderID = &stakeholderID
	require.NoError(t, repo.Create(ctx, d))
	assert.NotZero(t, d.ID)

	got, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.GeneratedContent, got.GeneratedContent)
	assert.Equal(t, d.SectionSources, got.SectionSources)
	assert.Equal(t, stakeholderID, *got.StakeholderID)
	assert.Nil(t, got.EngagementID)
	assert.Nil(t, got.ApprovedAt)
	assert.Empty(t, got.FinalContent)
	assert.Empty(t, got.ArchiveKey)
}

func TestDeliverableRepository_Create_UnknownStakeholder(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	repo := NewDeliverableRepository(pool)

	clientID := testutil.InsertClient(ctx, t, pool, "Acme")
	d := newDeliverable(clientID, time.Now().UTC())
	missing := int64(404)
	d.StakeholderID = &missing

	assert.ErrorIs(t, repo.Create(ctx, d), domain.ErrStakeholderNotFound)
}

func TestDeliverableRepository_UpdateApproval(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	repo := NewDeliverableRepository(pool)

	clientID := testutil.InsertClient(ctx, t, pool, "Acme")
	d := newDeliverable(clientID, time.Now().UTC())
	require.NoError(t, repo.Create(ctx, d))

	approvedAt := time.Now().UTC().Truncate(time.Microsecond)
	d.Status = domain.DeliverableStatusApproved
	d.FinalContent = "Final reviewed text."
	d.ApprovedAt = &approvedAt
	d.ArchiveKey = service.ArchiveKey(d)
	d.UpdatedAt = approvedAt
	require.NoError(t, repo.Update(ctx, d))

	got, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliverableStatusApproved, got.Status)
	assert.Equal(t, "Final reviewed text.", got.FinalContent)
	assert.True(t, approvedAt.Equal(*got.ApprovedAt))
	assert.Equal(t, d.ArchiveKey, got.ArchiveKey)
}

func TestDeliverableRepository_ApproveOnce(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	repo := NewDeliverableRepository(pool)

	clientID := testutil.InsertClient(ctx, t, pool, "Acme")
	d := newDeliverable(clientID, time.Now().UTC())
	require.NoError(t, repo.Create(ctx, d))

	approvedAt := time.Now().UTC().Truncate(time.Microsecond)
	d.FinalContent = "Final reviewed text."
	d.ApprovedAt = &approvedAt
	d.UpdatedAt = approvedAt

	require.NoError(t, repo.Approve(ctx, d))
	assert.ErrorIs(t, repo.Approve(ctx, d), domain.ErrDeliverableAlreadyApproved)

	got, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliverableStatusApproved, got.Status)
	assert.Equal(t, "Final reviewed text.", got.FinalContent)

	d.ID = 999999
	assert.ErrorIs(t, repo.Approve(ctx, d), domain.ErrDeliverableNotFound)
}

func TestDeliverableRepository_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	pool := setupPool(ctx, t)
	repo := NewDeliverableRepository(pool)

	acme := testutil.InsertClient(ctx, t, pool, "Acme")
	globex := testutil.InsertClient(ctx, t, pool, "Globex")
	now := time.Now().UTC()

	first := newDeliverable(acme, now)
	second := newDeliverable(acme, now.Add(time.Minute))
	third := newDeliverable(globex, now)
	for _, d := range []*domain.Deliverable{first, second, third} {
		require.NoError(t, repo.Create(ctx, d))
	}

	scoped, err := repo.ListByClient(ctx, &acme)
	require.NoError(t, err)
	require.Len(t, scoped, 2)
	assert.Equal(t, second.ID, scoped[0].ID)

	all, err := repo.ListByClient(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, repo.Delete(ctx, third.ID))
	assert.ErrorIs(t, repo.Delete(ctx, third.ID), domain.ErrDeliverableNotFound)
	_, err = repo.GetByID(ctx, third.ID)
	assert.ErrorIs(t, err, domain.ErrDeliverableNotFound)
}
