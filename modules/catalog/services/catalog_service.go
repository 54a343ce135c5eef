package services

import (
	"context"

	"github.com/iota-uz/semi-catalog/modules/catalog/domain/entities/category"
	"github.com/iota-uz/semi-catalog/modules/catalog/domain/entities/part"
	"github.com/iota-uz/semi-catalog/modules/catalog/domain/entities/subcategory"
)

// CategoryTree is a category with its subcategories.
type CategoryTree struct {
	Category      category.Category
	SubCategories []subcategory.SubCategory
}

type CatalogService struct {
	store Store
}

func NewCatalogService(store Store) *CatalogService {
	return &CatalogService{store: store}
}

// ListProducts returns the parts matching every non-empty filter in params.
func (s *CatalogService) ListProducts(ctx context.Context, params *part.FindParams) ([]part.Listing, error) {
	if params == nil {
		params = &part.FindParams{}
	}
	return s.store.Parts().List(ctx, params)
}

func (s *CatalogService) Categories(ctx context.Context) ([]CategoryTree, error) {
	categories, err := s.store.Categories().List(ctx)
	if err != nil {
		return nil, err
	}
	subCategories, err := s.store.SubCategories().List(ctx)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[uint][]subcategory.SubCategory, len(categories))
	for _, sc := range subCategories {
		byCategory[sc.CategoryID] = append(byCategory[sc.CategoryID], sc)
	}
	out := make([]CategoryTree, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategoryTree{Category: c, SubCategories: byCategory[c.ID]})
	}
	return out, nil
}
