package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iota-uz/semi-catalog/modules/catalog/domain/entities/part"
	"github.com/iota-uz/semi-catalog/pkg/composables"
	"github.com/iota-uz/semi-catalog/pkg/repo"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// specColumns pairs each value column with its flag column, in part.FieldNames order.
var specColumns = [][2]string{
	{"vdss", "has_vdss"},
	{"vgs", "has_vgs"},
	{"vth_min", "has_vth_min"},
	{"vth_max", "has_vth_max"},
	{"id_at_25", "has_id_at_25"},
	{"vth_max_value", "has_vth_max_value"},
	{"ron_4_5v", "has_ron_4_5v"},
	{"ron_10v", "has_ron_10v"},
}

func specColumnList(alias string) string {
	cols := make([]string, 0, 2+2*len(specColumns))
	cols = append(cols, alias+".id", alias+".part_id")
	for _, c := range specColumns {
		cols = append(cols, alias+"."+c[0], alias+"."+c[1])
	}
	return strings.Join(cols, ", ")
}

// specRow scans a possibly-absent specification from a LEFT JOIN.
type specRow struct {
	id     *uint
	partID *uint
	values [8]*float64
	has    [8]*bool
}

func (r *specRow) dest() []any {
	d := make([]any, 0, 2+2*len(r.values))
	d = append(d, &r.id, &r.partID)
	for i := range r.values {
		d = append(d, &r.values[i], &r.has[i])
	}
	return d
}

func (r *specRow) toDomain() *part.Specification {
	if r.id == nil {
		return nil
	}
	s := &part.Specification{ID: *r.id}
	if r.partID != nil {
		s.PartID = *r.partID
	}
	for i, m := range s.Fields() {
		m.Value = r.values[i]
		m.Has = r.has[i] != nil && *r.has[i]
	}
	return s
}

// specArgs returns value/flag arguments in specColumns order.
func specArgs(s *part.Specification) []any {
	if s == nil {
		s = &part.Specification{}
	}
	args := make([]any, 0, 2*len(specColumns))
	for _, m := range s.Fields() {
		args = append(args, m.Value, m.Has)
	}
	return args
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func conn(ctx context.Context, pool *pgxpool.Pool) (repo.Tx, error) {
	return composables.UseTxOr(ctx, pool)
}

func toInt64s(ids []uint) []int64 {
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
