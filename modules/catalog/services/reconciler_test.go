package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/semi-catalog/modules/catalog/infrastructure/persistence"
)

func row(category, subCategory, partNumber string) Row {
	return Row{
		CategoryName:    category,
		SubCategoryName: subCategory,
		PartNumber:      partNumber,
		Specs:           make([]string, len(SpecHeaders)),
	}
}

func TestCategoryReconciler_CreatesOnlyMissing(t *testing.T) {
	store := persistence.NewMemoryStore()
	ctx := context.Background()
	existing, err := store.Categories().Create(ctx, "Diodes")
	require.NoError(t, err)

	rows := []Row{
		row("MOSFET", "N-Channel", "A"),
		row("MOSFET", "P-Channel", "B"),
		row("Diodes", "Schottky", "C"),
		row("MOSFET", "N-Channel", "D"),
	}
	ids, created, err := NewCategoryReconciler(store).Reconcile(ctx, rows)
	require.NoError(t, err)
	require.Equal(t, 1, created)
	require.Len(t, ids, 2)
	require.Equal(t, existing.ID, ids["Diodes"])

	all, err := store.Categories().List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	_, created, err = NewCategoryReconciler(store).Reconcile(ctx, rows)
	require.NoError(t, err)
	require.Zero(t, created)
}

func TestSubCategoryReconciler_SameCategoryTwoSubCategories(t *testing.T) {
	store := persistence.NewMemoryStore()
	ctx := context.Background()
	rows := []Row{row("MOSFET", "N-Channel", "A"), row("MOSFET", "P-Channel", "B")}

	categories, _, err := NewCategoryReconciler(store).Reconcile(ctx, rows)
	require.NoError(t, err)
	ids, created, err := NewSubCategoryReconciler(store).Reconcile(ctx, rows, categories)
	require.NoError(t, err)
	require.Equal(t, 2, created)
	require.Len(t, ids, 2)

	cats, _ := store.Categories().List(ctx)
	subs, _ := store.SubCategories().List(ctx)
	require.Len(t, cats, 1)
	require.Len(t, subs, 2)
}

func TestSubCategoryReconciler_SameNameUnderTwoCategories(t *testing.T) {
	store := persistence.NewMemoryStore()
	ctx := context.Background()
	rows := []Row{row("MOSFET", "General", "A"), row("Diodes", "General", "B")}

	categories, _, err := NewCategoryReconciler(store).Reconcile(ctx, rows)
	require.NoError(t, err)
	ids, _, err := NewSubCategoryReconciler(store).Reconcile(ctx, rows, categories)
	require.NoError(t, err)

	a := ids[SubCategoryRef{Category: "MOSFET", SubCategory: "General"}]
	b := ids[SubCategoryRef{Category: "Diodes", SubCategory: "General"}]
	require.NotZero(t, a)
	require.NotZero(t, b)
	require.NotEqual(t, a, b)
}

func TestSubCategoryReconciler_ColonInNamesDoesNotCollide(t *testing.T) {
	store := persistence.NewMemoryStore()
	ctx := context.Background()
	rows := []Row{row("A:B", "C", "1"), row("A", "B:C", "2")}

	categories, _, err := NewCategoryReconciler(store).Reconcile(ctx, rows)
	require.NoError(t, err)
	ids, created, err := NewSubCategoryReconciler(store).Reconcile(ctx, rows, categories)
	require.NoError(t, err)
	require.Equal(t, 2, created)
	require.Len(t, ids, 2)
}

func TestSubCategoryReconciler_ReusesExisting(t *testing.T) {
	store := persistence.NewMemoryStore()
	ctx := context.Background()
	rows := []Row{row("MOSFET", "N-Channel", "A")}

	categories, _, err := NewCategoryReconciler(store).Reconcile(ctx, rows)
	require.NoError(t, err)
	first, _, err := NewSubCategoryReconciler(store).Reconcile(ctx, rows, categories)
	require.NoError(t, err)
	second, created, err := NewSubCategoryReconciler(store).Reconcile(ctx, rows, categories)
	require.NoError(t, err)
	require.Zero(t, created)
	require.Equal(t, first, second)
}

func TestSubCategoryReconciler_RequiresReconciledCategories(t *testing.T) {
	store := persistence.NewMemoryStore()
	_, _, err := NewSubCategoryReconciler(store).Reconcile(context.Background(), []Row{row("MOSFET", "N-Channel", "A")}, CategoryIDs{})
	require.ErrorIs(t, err, ErrUnresolvedCategory)
}
