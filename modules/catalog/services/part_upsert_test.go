package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/semi-catalog/modules/catalog/domain/entities/part"
	"github.com/iota-uz/semi-catalog/modules/catalog/infrastructure/persistence"
)

func reconcile(t *testing.T, store Store, rows []Row) SubCategoryIDs {
	t.Helper()
	ctx := context.Background()
	categories, _, err := NewCategoryReconciler(store).Reconcile(ctx, rows)
	require.NoError(t, err)
	ids, _, err := NewSubCategoryReconciler(store).Reconcile(ctx, rows, categories)
	require.NoError(t, err)
	return ids
}

func TestPartUpserter_ChunksAndProgress(t *testing.T) {
	store := persistence.NewMemoryStore()
	var rows []Row
	for i := 0; i < 5; i++ {
		rows = append(rows, row("MOSFET", "N-Channel", fmt.Sprintf("P%d", i)))
	}
	ids := reconcile(t, store, rows)

	var calls [][3]int
	u := NewPartUpserter(store, 2)
	res, err := u.Upsert(context.Background(), rows, ids, func(chunk, total, n int) {
		calls = append(calls, [3]int{chunk, total, n})
	})
	require.NoError(t, err)
	require.Equal(t, UpsertResult{Created: 5, Chunks: 3}, res)
	require.Equal(t, [][3]int{{1, 3, 2}, {2, 3, 2}, {3, 3, 1}}, calls)
}

func TestPartUpserter_DefaultChunkSize(t *testing.T) {
	u := NewPartUpserter(persistence.NewMemoryStore(), 0)
	require.Equal(t, DefaultChunkSize, u.ChunkSize())
	require.Equal(t, 0, u.ChunkCount(0))
	require.Equal(t, 1, u.ChunkCount(50))
	require.Equal(t, 2, u.ChunkCount(51))
}

func TestPartUpserter_FailedChunkKeepsEarlierChunks(t *testing.T) {
	store := persistence.NewMemoryStore()
	rows := []Row{
		row("MOSFET", "N-Channel", "A"),
		row("MOSFET", "N-Channel", "B"),
		row("MOSFET", "N-Channel", "C"),
		row("MOSFET", "N-Channel", "BAD"),
		row("MOSFET", "N-Channel", "E"),
	}
	ids := reconcile(t, store, rows)
	boom := errors.New("write failed")
	store.OnPartWrite(func(p part.Part) error {
		if p.PartNumber == "BAD" {
			return boom
		}
		return nil
	})

	res, err := NewPartUpserter(store, 2).Upsert(context.Background(), rows, ids, nil)
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, res.Chunks)
	require.Equal(t, 2, res.Created)

	listed, err := store.Parts().List(context.Background(), nil)
	require.NoError(t, err)
	numbers := make([]string, 0, len(listed))
	for _, l := range listed {
		numbers = append(numbers, l.PartNumber)
	}
	require.Equal(t, []string{"A", "B"}, numbers)
}

func TestPartUpserter_DuplicatePartNumberLastRowWins(t *testing.T) {
	store := persistence.NewMemoryStore()
	first := row("MOSFET", "N-Channel", "DUP")
	first.Specs[0] = "10"
	middle := row("MOSFET", "N-Channel", "OTHER")
	last := row("MOSFET", "P-Channel", "DUP")
	last.Specs[0] = "20"
	rows := []Row{first, middle, last}
	ids := reconcile(t, store, rows)

	for _, size := range []int{1, 50} {
		res, err := NewPartUpserter(store, size).Upsert(context.Background(), rows, ids, nil)
		require.NoError(t, err)
		require.Equal(t, 3, res.Created+res.Updated)
	}

	found, err := store.Parts().FindByPartNumbers(context.Background(), []string{"DUP"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, 20.0, *found[0].Specification.Vdss.Value)
	require.Equal(t, ids[SubCategoryRef{Category: "MOSFET", SubCategory: "P-Channel"}], found[0].SubCategoryID)
}

func TestPartUpserter_UnresolvedSubCategory(t *testing.T) {
	store := persistence.NewMemoryStore()
	_, err := NewPartUpserter(store, 50).Upsert(context.Background(), []Row{row("X", "Y", "Z")}, SubCategoryIDs{}, nil)
	require.ErrorIs(t, err, ErrUnresolvedSubCategory)
}
