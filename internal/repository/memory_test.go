package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"solar_estimator/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLeadRepo_SaveAndGet(t *testing.T) {
	repo := NewMemoryLeadRepo()
	ctx := context.Background()

	lead := &domain.Lead{
		ID:        "lead-1",
		Contact:   domain.Contact{Email: "jo@example.com"},
		CreatedAt: time.Now(),
	}
	require.NoError(t, repo.Save(ctx, lead))

	got, err := repo.Get(ctx, "lead-1")
	require.NoError(t, err)
	assert.Equal(t, lead, got)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMemoryLeadRepo_GetMissing(t *testing.T) {
	repo := NewMemoryLeadRepo()

	_, err := repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrLeadNotFound)
}

func TestMemoryLeadRepo_ListNewestFirst(t *testing.T) {
	repo := NewMemoryLeadRepo()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Save(ctx, &domain.Lead{ID: fmt.Sprintf("lead-%d", i)}))
	}

	leads, err := repo.List(ctx, 3, 0)
	require.NoError(t, err)
	require.Len(t, leads, 3)
	assert.Equal(t, "lead-4", leads[0].ID)
	assert.Equal(t, "lead-3", leads[1].ID)

	paged, err := repo.List(ctx, 3, 3)
	require.NoError(t, err)
	require.Len(t, paged, 2)
	assert.Equal(t, "lead-1", paged[0].ID)
}

func TestMemoryLeadRepo_SaveIsUpsert(t *testing.T) {
	repo := NewMemoryLeadRepo()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &domain.Lead{ID: "lead-1"}))
	require.NoError(t, repo.Save(ctx, &domain.Lead{ID: "lead-1", Postcode: "SW1A 1AA"}))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := repo.Get(ctx, "lead-1")
	require.NoError(t, err)
	assert.Equal(t, "SW1A 1AA", got.Postcode)
}
