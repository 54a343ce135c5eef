package services

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/iota-uz/semi-catalog/modules/catalog/domain/entities/part"
)

const (
	exportSheet       = "Parts"
	XLSXContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportColumnWidth = 18
)

// ExportService writes the catalog as a workbook that imports back to the same
// parts.
type ExportService struct {
	catalog *CatalogService
}

func NewExportService(catalog *CatalogService) *ExportService {
	return &ExportService{catalog: catalog}
}

func (s *ExportService) WriteXLSX(ctx context.Context, w io.Writer, params *part.FindParams) (int, error) {
	listings, err := s.catalog.ListProducts(ctx, params)
	if err != nil {
		return 0, err
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return 0, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return 0, err
	}
	for i, h := range Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellStr(exportSheet, cell, h); err != nil {
			return 0, err
		}
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(Headers), 1)
	if err := f.SetCellStyle(exportSheet, "A1", lastHeader, headerStyle); err != nil {
		return 0, err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(Headers))
	if err := f.SetColWidth(exportSheet, "A", lastCol, exportColumnWidth); err != nil {
		return 0, err
	}

	for i, l := range listings {
		if err := writeListing(f, i+2, l); err != nil {
			return 0, err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return 0, fmt.Errorf("write workbook: %w", err)
	}
	return len(listings), nil
}

func writeListing(f *excelize.File, rowNum int, l part.Listing) error {
	link := ""
	if l.DatasheetLink != nil {
		link = *l.DatasheetLink
	}
	cells := []string{l.Category.Name, l.SubCategory.Name, l.PartNumber, link}
	for i, v := range cells {
		cell, _ := excelize.CoordinatesToCellName(i+1, rowNum)
		if err := f.SetCellStr(exportSheet, cell, v); err != nil {
			return err
		}
	}

	spec := l.Specification
	if spec == nil {
		return nil
	}
	for i, m := range spec.Fields() {
		cell, _ := excelize.CoordinatesToCellName(len(cells)+i+1, rowNum)
		if err := writeMeasurement(f, cell, *m); err != nil {
			return err
		}
	}
	return nil
}

// writeMeasurement writes the cell text that ParseMeasurement reads back to m.
func writeMeasurement(f *excelize.File, cell string, m part.Measurement) error {
	switch {
	case m.Value == nil && m.Has:
		return f.SetCellStr(exportSheet, cell, NotApplicable)
	case m.Value == nil:
		return nil
	case math.IsNaN(*m.Value):
		return f.SetCellStr(exportSheet, cell, "NaN")
	case math.IsInf(*m.Value, 1):
		return f.SetCellStr(exportSheet, cell, "Infinity")
	case math.IsInf(*m.Value, -1):
		return f.SetCellStr(exportSheet, cell, "-Infinity")
	}
	return f.SetCellFloat(exportSheet, cell, *m.Value, -1, 64)
}
