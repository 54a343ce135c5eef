package subcategory

import (
	"context"
	"errors"
)

var ErrCategoryMissing = errors.New("subcategory references a missing category")

// SubCategory names are unique per category, not globally.
type SubCategory struct {
	ID         uint
	Name       string
	CategoryID uint
}

func (s SubCategory) Key() Key {
	return Key{Name: s.Name, CategoryID: s.CategoryID}
}

// Key is the natural key of a subcategory.
type Key struct {
	Name       string
	CategoryID uint
}

type Repository interface {
	FindByKeys(ctx context.Context, keys []Key) ([]SubCategory, error)
	// Create inserts the (name, categoryID) pair unless it exists and returns the stored row.
	Create(ctx context.Context, name string, categoryID uint) (SubCategory, error)
	List(ctx context.Context) ([]SubCategory, error)
}
