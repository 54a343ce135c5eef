package mappers

import (
	"math"

	"github.com/iota-uz/semi-catalog/modules/catalog/domain/entities/part"
	"github.com/iota-uz/semi-catalog/modules/catalog/presentation/viewmodels"
	"github.com/iota-uz/semi-catalog/modules/catalog/services"
)

// jsonNumber drops values JSON cannot carry.
func jsonNumber(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	out := *v
	return &out
}

func SpecificationToViewModel(s *part.Specification) *viewmodels.Specification {
	if s == nil {
		return nil
	}
	return &viewmodels.Specification{
		ID:             s.ID,
		PartID:         s.PartID,
		Vdss:           jsonNumber(s.Vdss.Value),
		Vgs:            jsonNumber(s.Vgs.Value),
		VthMin:         jsonNumber(s.VthMin.Value),
		VthMax:         jsonNumber(s.VthMax.Value),
		IDAt25:         jsonNumber(s.IDAt25.Value),
		VthMaxValue:    jsonNumber(s.VthMaxValue.Value),
		Ron4_5V:        jsonNumber(s.Ron4_5V.Value),
		Ron10V:         jsonNumber(s.Ron10V.Value),
		HasVdss:        s.Vdss.Has,
		HasVgs:         s.Vgs.Has,
		HasVthMin:      s.VthMin.Has,
		HasVthMax:      s.VthMax.Has,
		HasIDAt25:      s.IDAt25.Has,
		HasVthMaxValue: s.VthMaxValue.Has,
		HasRon4_5V:     s.Ron4_5V.Has,
		HasRon10V:      s.Ron10V.Has,
	}
}

func ListingToViewModel(l part.Listing) *viewmodels.Product {
	return &viewmodels.Product{
		ID:            l.ID,
		PartNumber:    l.PartNumber,
		DatasheetLink: l.DatasheetLink,
		SubCategoryID: l.SubCategoryID,
		SubCategory: viewmodels.SubCategory{
			ID:         l.SubCategory.ID,
			Name:       l.SubCategory.Name,
			CategoryID: l.SubCategory.CategoryID,
			Category: &viewmodels.Category{
				ID:   l.Category.ID,
				Name: l.Category.Name,
			},
		},
		Specifications: SpecificationToViewModel(l.Specification),
	}
}

func ListingsToViewModels(listings []part.Listing) []*viewmodels.Product {
	out := make([]*viewmodels.Product, 0, len(listings))
	for _, l := range listings {
		out = append(out, ListingToViewModel(l))
	}
	return out
}

func CategoryTreesToViewModels(trees []services.CategoryTree) []*viewmodels.CategoryTree {
	out := make([]*viewmodels.CategoryTree, 0, len(trees))
	for _, t := range trees {
		subs := make([]viewmodels.SubCategory, 0, len(t.SubCategories))
		for _, sc := range t.SubCategories {
			subs = append(subs, viewmodels.SubCategory{ID: sc.ID, Name: sc.Name, CategoryID: sc.CategoryID})
		}
		out = append(out, &viewmodels.CategoryTree{ID: t.Category.ID, Name: t.Category.Name, SubCategories: subs})
	}
	return out
}
