package services

import (
	"context"

	"github.com/iota-uz/semi-catalog/modules/catalog/domain/entities/category"
	"github.com/iota-uz/semi-catalog/modules/catalog/domain/entities/part"
	"github.com/iota-uz/semi-catalog/modules/catalog/domain/entities/subcategory"
)

// Store is the persistence capability the catalog services run against.
// Repository calls made with the ctx handed to InTx's fn join that transaction.
type Store interface {
	Categories() category.Repository
	SubCategories() subcategory.Repository
	Parts() part.Repository
	InTx(ctx context.Context, fn func(context.Context) error) error
}
