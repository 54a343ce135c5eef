package persistence

import (
	"context"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iota-uz/semi-catalog/modules/catalog/domain/entities/category"
)

const (
	selectCategoriesByNameQuery = `SELECT id, name FROM categories WHERE name = ANY($1::text[]) ORDER BY id`
	listCategoriesQuery         = `SELECT id, name FROM categories ORDER BY name`
	insertCategoryQuery         = `
		INSERT INTO categories (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name`
)

type CategoryRepository struct {
	pool *pgxpool.Pool
}

func NewCategoryRepository(pool *pgxpool.Pool) category.Repository {
	return &CategoryRepository{pool: pool}
}

func (r *CategoryRepository) FindByNames(ctx context.Context, names []string) ([]category.Category, error) {
	if len(names) == 0 {
		return nil, nil
	}
	return r.query(ctx, selectCategoriesByNameQuery, names)
}

func (r *CategoryRepository) List(ctx context.Context) ([]category.Category, error) {
	return r.query(ctx, listCategoriesQuery)
}

func (r *CategoryRepository) Create(ctx context.Context, name string) (category.Category, error) {
	tx, err := conn(ctx, r.pool)
	if err != nil {
		return category.Category{}, err
	}
	var c category.Category
	if err := tx.QueryRow(ctx, insertCategoryQuery, name).Scan(&c.ID, &c.Name); err != nil {
		return category.Category{}, gerrors.Wrapf(err, "insert category %q", name)
	}
	return c, nil
}

func (r *CategoryRepository) query(ctx context.Context, sql string, args ...any) ([]category.Category, error) {
	tx, err := conn(ctx, r.pool)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, gerrors.Wrap(err, "select categories")
	}
	defer rows.Close()

	var out []category.Category
	for rows.Next() {
		var c category.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, gerrors.Wrap(err, "scan category")
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, gerrors.Wrap(err, "select categories")
	}
	return out, nil
}
