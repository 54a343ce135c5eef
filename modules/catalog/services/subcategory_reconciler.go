package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/iota-uz/semi-catalog/modules/catalog/domain/entities/subcategory"
)

var ErrUnresolvedCategory = errors.New("category was not reconciled")

// SubCategoryRef names a subcategory by its category name. It is the in-memory key
// of SubCategoryIDs; names may contain any character.
type SubCategoryRef struct {
	Category    string
	SubCategory string
}

func (r SubCategoryRef) String() string {
	return r.Category + ":" + r.SubCategory
}

type SubCategoryIDs map[SubCategoryRef]uint

type SubCategoryReconciler struct {
	store Store
}

func NewSubCategoryReconciler(store Store) *SubCategoryReconciler {
	return &SubCategoryReconciler{store: store}
}

// DistinctSubCategories returns the (category, subcategory) pairs of rows in
// first-seen order.
func DistinctSubCategories(rows []Row) []SubCategoryRef {
	seen := make(map[SubCategoryRef]struct{}, len(rows))
	var refs []SubCategoryRef
	for _, r := range rows {
		ref := r.subCategoryRef()
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}
	return refs
}

// Reconcile resolves every subcategory referenced by rows. categories must already
// hold every category of rows. It returns the id map and the number of
// subcategories created.
func (r *SubCategoryReconciler) Reconcile(ctx context.Context, rows []Row, categories CategoryIDs) (SubCategoryIDs, int, error) {
	refs := DistinctSubCategories(rows)
	ids := make(SubCategoryIDs, len(refs))
	if len(refs) == 0 {
		return ids, 0, nil
	}

	names := make(map[uint]string, len(categories))
	for name, id := range categories {
		names[id] = name
	}

	keys := make([]subcategory.Key, 0, len(refs))
	for _, ref := range refs {
		categoryID, ok := categories[ref.Category]
		if !ok {
			return nil, 0, fmt.Errorf("%w: %q", ErrUnresolvedCategory, ref.Category)
		}
		keys = append(keys, subcategory.Key{Name: ref.SubCategory, CategoryID: categoryID})
	}

	existing, err := r.store.SubCategories().FindByKeys(ctx, keys)
	if err != nil {
		return nil, 0, err
	}
	for _, sc := range existing {
		ids[SubCategoryRef{Category: names[sc.CategoryID], SubCategory: sc.Name}] = sc.ID
	}

	var missing []subcategory.Key
	for i, ref := range refs {
		if _, ok := ids[ref]; !ok {
			missing = append(missing, keys[i])
		}
	}
	if len(missing) == 0 {
		return ids, 0, nil
	}

	created := make([]subcategory.SubCategory, 0, len(missing))
	err = r.store.InTx(ctx, func(txCtx context.Context) error {
		for _, k := range missing {
			sc, err := r.store.SubCategories().Create(txCtx, k.Name, k.CategoryID)
			if err != nil {
				return err
			}
			created = append(created, sc)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	for _, sc := range created {
		ids[SubCategoryRef{Category: names[sc.CategoryID], SubCategory: sc.Name}] = sc.ID
	}
	return ids, len(created), nil
}
