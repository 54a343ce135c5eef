package services

import (
	"context"

	"github.com/iota-uz/semi-catalog/modules/catalog/domain/entities/category"
)

// CategoryIDs maps a category name to its id.
type CategoryIDs map[string]uint

type CategoryReconciler struct {
	store Store
}

func NewCategoryReconciler(store Store) *CategoryReconciler {
	return &CategoryReconciler{store: store}
}

// DistinctCategories returns the category names of rows in first-seen order.
func DistinctCategories(rows []Row) []string {
	seen := make(map[string]struct{}, len(rows))
	var names []string
	for _, r := range rows {
		if _, ok := seen[r.CategoryName]; ok {
			continue
		}
		seen[r.CategoryName] = struct{}{}
		names = append(names, r.CategoryName)
	}
	return names
}

// Reconcile resolves every category referenced by rows, creating the missing ones in
// a single transaction. It returns the complete id map and the number of
// categories created.
func (r *CategoryReconciler) Reconcile(ctx context.Context, rows []Row) (CategoryIDs, int, error) {
	names := DistinctCategories(rows)
	ids := make(CategoryIDs, len(names))
	if len(names) == 0 {
		return ids, 0, nil
	}

	existing, err := r.store.Categories().FindByNames(ctx, names)
	if err != nil {
		return nil, 0, err
	}
	for _, c := range existing {
		ids[c.Name] = c.ID
	}

	var missing []string
	for _, name := range names {
		if _, ok := ids[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return ids, 0, nil
	}

	created := make([]category.Category, 0, len(missing))
	err = r.store.InTx(ctx, func(txCtx context.Context) error {
		for _, name := range missing {
			c, err := r.store.Categories().Create(txCtx, name)
			if err != nil {
				return err
			}
			created = append(created, c)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	for _, c := range created {
		ids[c.Name] = c.ID
	}
	return ids, len(created), nil
}
