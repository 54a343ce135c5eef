package composables

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/semi-catalog/pkg/constants"
)

func TestRequestStart(t *testing.T) {
	_, ok := UseRequestStart(context.Background())
	assert.False(t, ok)

	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	got, ok := UseRequestStart(WithRequestStart(context.Background(), start))
	require.True(t, ok)
	assert.Equal(t, start, got)
}

func TestUsePool_TypedNil(t *testing.T) {
	var pool *pgxpool.Pool
	ctx := context.WithValue(context.Background(), constants.PoolKey, pool)
	_, err := UsePool(ctx)
	require.ErrorIs(t, err, ErrNoPool)

	_, err = UseTxOr(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoPool)
}
