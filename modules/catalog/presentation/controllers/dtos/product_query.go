package dtos

import (
	"github.com/iota-uz/semi-catalog/modules/catalog/domain/entities/part"
)

// ProductQuery holds the exact-match filters of the product list. Empty fields do
// not filter.
type ProductQuery struct {
	Category    string `form:"category"`
	SubCategory string `form:"subcategory"`
	PartNumber  string `form:"partNumber"`
}

func (q *ProductQuery) FindParams() *part.FindParams {
	return &part.FindParams{
		Category:    q.Category,
		SubCategory: q.SubCategory,
		PartNumber:  q.PartNumber,
	}
}
