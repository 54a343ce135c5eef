package persistence

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iota-uz/semi-catalog/modules/catalog/domain/entities/category"
	"github.com/iota-uz/semi-catalog/modules/catalog/domain/entities/part"
	"github.com/iota-uz/semi-catalog/modules/catalog/domain/entities/subcategory"
	"github.com/iota-uz/semi-catalog/pkg/composables"
)

// Store is the Postgres-backed catalog persistence. It owns no connection state
// beyond the pool it was built with; the caller closes the pool.
type Store struct {
	pool          *pgxpool.Pool
	categories    category.Repository
	subCategories subcategory.Repository
	parts         part.Repository
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:          pool,
		categories:    NewCategoryRepository(pool),
		subCategories: NewSubCategoryRepository(pool),
		parts:         NewPartRepository(pool),
	}
}

func (s *Store) Categories() category.Repository       { return s.categories }
func (s *Store) SubCategories() subcategory.Repository { return s.subCategories }
func (s *Store) Parts() part.Repository                { return s.parts }

// InTx runs fn in a new transaction; repositories called with the ctx passed to fn
// join it.
func (s *Store) InTx(ctx context.Context, fn func(context.Context) error) error {
	return composables.InTx(ctx, s.pool, fn)
}
