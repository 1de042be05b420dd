//go:build integration

package postgres

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/order-saga/internal/order/domain"
	"github.com/dmehra2102/order-saga/internal/testenv"
	"github.com/dmehra2102/order-saga/pkg/migrate"
)

func TestRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	pool := testenv.Postgres(t)
	require.NoError(t, migrate.Up(ctx, log, pool, Migrations))
	repo := NewRepository(log, pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	created, err := repo.Create(ctx, domain.NewOrder(1, "widget", 3, 9.99, now))
	require.NoError(t, err)
	assert.Positive(t, created.ID)

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 29.97, got.TotalAmount)
	assert.Equal(t, domain.StatusValidated, got.Status)

	stale := got
	require.NoError(t, got.TransitionTo(domain.StatusCancelled, now.Add(time.Second)))
	require.NoError(t, repo.Update(ctx, got, domain.StatusValidated))

	stale.Quantity = 7
	assert.ErrorIs(t, repo.Update(ctx, stale, domain.StatusValidated), domain.ErrStatusChanged)
	assert.ErrorIs(t, repo.Delete(ctx, created.ID, domain.StatusValidated), domain.ErrStatusChanged)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.StatusCancelled, list[0].Status)

	require.NoError(t, repo.Delete(ctx, created.ID, domain.StatusCancelled))
	_, err = repo.Get(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, created.ID, domain.StatusCancelled), domain.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, got, domain.StatusCancelled), domain.ErrNotFound)
}
