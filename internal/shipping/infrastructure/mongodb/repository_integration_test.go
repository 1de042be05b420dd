//go:build integration

package mongodb

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/order-saga/internal/shipping/domain"
	"github.com/dmehra2102/order-saga/internal/testenv"
)

func TestRepository_UniqueOrderID(t *testing.T) {
	ctx := context.Background()
	repo, err := NewRepository(ctx, slog.New(slog.NewTextHandler(io.Discard, nil)), testenv.Mongo(t))
	require.NoError(t, err)

	_, err = repo.FindByOrderID(ctx, 4)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	now := time.Now().UTC()
	first, created, err := repo.Create(ctx, domain.NewShipment(4, "", now))
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := repo.Create(ctx, domain.NewShipment(4, "", now))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.TrackingNumber, second.TrackingNumber)
}
