package part

import (
	"context"
	"errors"
	"math"

	"github.com/iota-uz/semi-catalog/modules/catalog/domain/entities/category"
	"github.com/iota-uz/semi-catalog/modules/catalog/domain/entities/subcategory"
)

var (
	ErrNotFound           = errors.New("part not found")
	ErrPartNumberTaken    = errors.New("part number already exists")
	ErrSubCategoryMissing = errors.New("part references a missing subcategory")
)

type Part struct {
	ID            uint
	PartNumber    string
	DatasheetLink *string
	SubCategoryID uint
	Specification *Specification
}

// Listing is a part joined with its subcategory and category.
type Listing struct {
	Part
	SubCategory subcategory.SubCategory
	Category    category.Category
}

type FindParams struct {
	Category    string
	SubCategory string
	PartNumber  string
}

type Repository interface {
	FindByPartNumbers(ctx context.Context, partNumbers []string) ([]Part, error)
	// Create stores the part and its specification.
	Create(ctx context.Context, p Part) (Part, error)
	// Update rewrites subcategory and datasheet link (nil keeps the stored link) and
	// upserts the specification.
	Update(ctx context.Context, p Part) (Part, error)
	// List applies every non-empty filter of params.
	List(ctx context.Context, params *FindParams) ([]Listing, error)
}

// Measurement is one electrical value. Has is set when the source marked the value
// not applicable; Value may be NaN when the source was not numeric.
type Measurement struct {
	Value *float64
	Has   bool
}

func (m Measurement) IsNaN() bool {
	return m.Value != nil && math.IsNaN(*m.Value)
}

type Specification struct {
	ID          uint
	PartID      uint
	Vdss        Measurement
	Vgs         Measurement
	VthMin      Measurement
	VthMax      Measurement
	IDAt25      Measurement
	VthMaxValue Measurement
	Ron4_5V     Measurement
	Ron10V      Measurement
}

// Field names in the order used by Fields, the CSV columns and the database columns.
const (
	FieldVdss        = "vdss"
	FieldVgs         = "vgs"
	FieldVthMin      = "vthMin"
	FieldVthMax      = "vthMax"
	FieldIDAt25      = "idAt25"
	FieldVthMaxValue = "vthMaxValue"
	FieldRon4_5V     = "ron4_5v"
	FieldRon10V      = "ron10v"
)

var FieldNames = []string{
	FieldVdss, FieldVgs, FieldVthMin, FieldVthMax,
	FieldIDAt25, FieldVthMaxValue, FieldRon4_5V, FieldRon10V,
}

// Fields returns pointers to the measurements in FieldNames order.
func (s *Specification) Fields() []*Measurement {
	return []*Measurement{
		&s.Vdss, &s.Vgs, &s.VthMin, &s.VthMax,
		&s.IDAt25, &s.VthMaxValue, &s.Ron4_5V, &s.Ron10V,
	}
}

func (s *Specification) Clone() *Specification {
	if s == nil {
		return nil
	}
	out := *s
	for _, m := range out.Fields() {
		if m.Value != nil {
			v := *m.Value
			m.Value = &v
		}
	}
	return &out
}

func (p Part) Clone() Part {
	out := p
	if p.DatasheetLink != nil {
		link := *p.DatasheetLink
		out.DatasheetLink = &link
	}
	out.Specification = p.Specification.Clone()
	return out
}
