package persistence

import (
	"context"
	"fmt"
	"strings"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iota-uz/semi-catalog/modules/catalog/domain/entities/part"
	"github.com/iota-uz/semi-catalog/pkg/repo"
)

var (
	selectPartsByNumberQuery = `
		SELECT p.id, p.part_number, p.datasheet_link, p.sub_category_id, ` + specColumnList("s") + `
		FROM parts p
		LEFT JOIN specifications s ON s.part_id = p.id
		WHERE p.part_number = ANY($1::text[])
		ORDER BY p.id`

	listPartsQuery = `
		SELECT p.id, p.part_number, p.datasheet_link, p.sub_category_id,
		       sc.id, sc.name, sc.category_id, c.id, c.name, ` + specColumnList("s") + `
		FROM parts p
		JOIN sub_categories sc ON sc.id = p.sub_category_id
		JOIN categories c ON c.id = sc.category_id
		LEFT JOIN specifications s ON s.part_id = p.id`

	upsertSpecificationQuery = buildUpsertSpecificationQuery()
)

const (
	insertPartQuery = `
		INSERT INTO parts (part_number, datasheet_link, sub_category_id)
		VALUES ($1, $2, $3)
		RETURNING id`
	updatePartQuery = `
		UPDATE parts
		SET datasheet_link = COALESCE($2, datasheet_link), sub_category_id = $3
		WHERE id = $1
		RETURNING datasheet_link`
)

func buildUpsertSpecificationQuery() string {
	cols := make([]string, 0, 2*len(specColumns))
	updates := make([]string, 0, 2*len(specColumns))
	for _, c := range specColumns {
		for _, col := range c {
			cols = append(cols, col)
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		}
	}
	return fmt.Sprintf(`
		INSERT INTO specifications (part_id, %s)
		VALUES ($1, %s)
		ON CONFLICT (part_id) DO UPDATE SET %s
		RETURNING id`,
		strings.Join(cols, ", "),
		repo.Placeholders(2, len(cols)),
		strings.Join(updates, ", "),
	)
}

type PartRepository struct {
	pool *pgxpool.Pool
}

func NewPartRepository(pool *pgxpool.Pool) part.Repository {
	return &PartRepository{pool: pool}
}

func (r *PartRepository) FindByPartNumbers(ctx context.Context, partNumbers []string) ([]part.Part, error) {
	if len(partNumbers) == 0 {
		return nil, nil
	}
	tx, err := conn(ctx, r.pool)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, selectPartsByNumberQuery, partNumbers)
	if err != nil {
		return nil, gerrors.Wrap(err, "select parts")
	}
	defer rows.Close()

	var out []part.Part
	for rows.Next() {
		var p part.Part
		var spec specRow
		dest := append([]any{&p.ID, &p.PartNumber, &p.DatasheetLink, &p.SubCategoryID}, spec.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, gerrors.Wrap(err, "scan part")
		}
		p.Specification = spec.toDomain()
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, gerrors.Wrap(err, "select parts")
	}
	return out, nil
}

func (r *PartRepository) Create(ctx context.Context, p part.Part) (part.Part, error) {
	tx, err := conn(ctx, r.pool)
	if err != nil {
		return part.Part{}, err
	}
	if err := tx.QueryRow(ctx, insertPartQuery, p.PartNumber, p.DatasheetLink, int64(p.SubCategoryID)).Scan(&p.ID); err != nil {
		switch pgErrorCode(err) {
		case pgUniqueViolation:
			return part.Part{}, gerrors.Wrapf(part.ErrPartNumberTaken, "part %q", p.PartNumber)
		case pgForeignKeyViolation:
			return part.Part{}, gerrors.Wrapf(part.ErrSubCategoryMissing, "part %q", p.PartNumber)
		}
		return part.Part{}, gerrors.Wrapf(err, "insert part %q", p.PartNumber)
	}
	spec, err := r.upsertSpecification(ctx, tx, p.ID, p.Specification)
	if err != nil {
		return part.Part{}, err
	}
	p.Specification = spec
	return p, nil
}

func (r *PartRepository) Update(ctx context.Context, p part.Part) (part.Part, error) {
	tx, err := conn(ctx, r.pool)
	if err != nil {
		return part.Part{}, err
	}
	var link *string
	if err := tx.QueryRow(ctx, updatePartQuery, int64(p.ID), p.DatasheetLink, int64(p.SubCategoryID)).Scan(&link); err != nil {
		if isNoRows(err) {
			return part.Part{}, gerrors.Wrapf(part.ErrNotFound, "part %d", p.ID)
		}
		if pgErrorCode(err) == pgForeignKeyViolation {
			return part.Part{}, gerrors.Wrapf(part.ErrSubCategoryMissing, "part %q", p.PartNumber)
		}
		return part.Part{}, gerrors.Wrapf(err, "update part %q", p.PartNumber)
	}
	p.DatasheetLink = link
	spec, err := r.upsertSpecification(ctx, tx, p.ID, p.Specification)
	if err != nil {
		return part.Part{}, err
	}
	p.Specification = spec
	return p, nil
}

func (r *PartRepository) upsertSpecification(ctx context.Context, tx repo.Tx, partID uint, spec *part.Specification) (*part.Specification, error) {
	out := spec.Clone()
	if out == nil {
		out = &part.Specification{}
	}
	out.PartID = partID
	args := append([]any{int64(partID)}, specArgs(out)...)
	if err := tx.QueryRow(ctx, upsertSpecificationQuery, args...).Scan(&out.ID); err != nil {
		return nil, gerrors.Wrapf(err, "upsert specification for part %d", partID)
	}
	return out, nil
}

func buildPartFilters(params *part.FindParams) ([]string, []any) {
	var where []string
	var args []any
	if params == nil {
		return where, args
	}
	if params.Category != "" {
		args = append(args, params.Category)
		where = append(where, fmt.Sprintf("c.name = $%d", len(args)))
	}
	if params.SubCategory != "" {
		args = append(args, params.SubCategory)
		where = append(where, fmt.Sprintf("sc.name = $%d", len(args)))
	}
	if params.PartNumber != "" {
		args = append(args, params.PartNumber)
		where = append(where, fmt.Sprintf("p.part_number = $%d", len(args)))
	}
	return where, args
}

func (r *PartRepository) List(ctx context.Context, params *part.FindParams) ([]part.Listing, error) {
	tx, err := conn(ctx, r.pool)
	if err != nil {
		return nil, err
	}
	where, args := buildPartFilters(params)
	query := listPartsQuery
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\t\tORDER BY p.id"

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, gerrors.Wrap(err, "list parts")
	}
	defer rows.Close()

	var out []part.Listing
	for rows.Next() {
		var l part.Listing
		var spec specRow
		dest := []any{
			&l.ID, &l.PartNumber, &l.DatasheetLink, &l.SubCategoryID,
			&l.SubCategory.ID, &l.SubCategory.Name, &l.SubCategory.CategoryID,
			&l.Category.ID, &l.Category.Name,
		}
		if err := rows.Scan(append(dest, spec.dest()...)...); err != nil {
			return nil, gerrors.Wrap(err, "scan part listing")
		}
		l.Specification = spec.toDomain()
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, gerrors.Wrap(err, "list parts")
	}
	return out, nil
}
