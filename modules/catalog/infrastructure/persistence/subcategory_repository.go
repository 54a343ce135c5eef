package persistence

import (
	"context"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iota-uz/semi-catalog/modules/catalog/domain/entities/subcategory"
)

const (
	selectSubCategoriesByKeyQuery = `
		SELECT sc.id, sc.name, sc.category_id
		FROM sub_categories sc
		JOIN unnest($1::text[], $2::int8[]) AS k(name, category_id)
		  ON sc.name = k.name AND sc.category_id = k.category_id
		ORDER BY sc.id`
	listSubCategoriesQuery = `SELECT id, name, category_id FROM sub_categories ORDER BY category_id, name`
	insertSubCategoryQuery = `
		INSERT INTO sub_categories (name, category_id) VALUES ($1, $2)
		ON CONFLICT (name, category_id) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, category_id`
)

type SubCategoryRepository struct {
	pool *pgxpool.Pool
}

func NewSubCategoryRepository(pool *pgxpool.Pool) subcategory.Repository {
	return &SubCategoryRepository{pool: pool}
}

func (r *SubCategoryRepository) FindByKeys(ctx context.Context, keys []subcategory.Key) ([]subcategory.SubCategory, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	names := make([]string, len(keys))
	ids := make([]uint, len(keys))
	for i, k := range keys {
		names[i] = k.Name
		ids[i] = k.CategoryID
	}
	return r.query(ctx, selectSubCategoriesByKeyQuery, names, toInt64s(ids))
}

func (r *SubCategoryRepository) List(ctx context.Context) ([]subcategory.SubCategory, error) {
	return r.query(ctx, listSubCategoriesQuery)
}

func (r *SubCategoryRepository) Create(ctx context.Context, name string, categoryID uint) (subcategory.SubCategory, error) {
	tx, err := conn(ctx, r.pool)
	if err != nil {
		return subcategory.SubCategory{}, err
	}
	var s subcategory.SubCategory
	if err := tx.QueryRow(ctx, insertSubCategoryQuery, name, int64(categoryID)).Scan(&s.ID, &s.Name, &s.CategoryID); err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return subcategory.SubCategory{}, gerrors.Wrapf(subcategory.ErrCategoryMissing, "category %d", categoryID)
		}
		return subcategory.SubCategory{}, gerrors.Wrapf(err, "insert subcategory %q", name)
	}
	return s, nil
}

func (r *SubCategoryRepository) query(ctx context.Context, sql string, args ...any) ([]subcategory.SubCategory, error) {
	tx, err := conn(ctx, r.pool)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, gerrors.Wrap(err, "select subcategories")
	}
	defer rows.Close()

	var out []subcategory.SubCategory
	for rows.Next() {
		var s subcategory.SubCategory
		if err := rows.Scan(&s.ID, &s.Name, &s.CategoryID); err != nil {
			return nil, gerrors.Wrap(err, "scan subcategory")
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, gerrors.Wrap(err, "select subcategories")
	}
	return out, nil
}
