package services

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Import column headers. Line breaks are part of the header text.
const (
	HeaderCategory      = "Category"
	HeaderSubCategory   = "Sub-category"
	HeaderPartNumber    = "Part No."
	HeaderDatasheetLink = "Datasheet Link (PDF)"
	HeaderVdss          = "VDSS\nV"
	HeaderVgs           = "VGS\nV"
	HeaderVthMin        = "VTH\nMin\nV"
	HeaderVthMax        = "VTH\nMax\nV"
	HeaderIDAt25        = "ID(A) / TA=25"
	HeaderVthMaxValue   = "VTH(V) Max."
	HeaderRon4_5V       = "Ron 4.5v\n(mΩ)Max."
	HeaderRon10V        = "Ron 10v\n(mΩ)Max."
)

// SpecHeaders lists the measurement columns in part.FieldNames order.
var SpecHeaders = []string{
	HeaderVdss, HeaderVgs, HeaderVthMin, HeaderVthMax,
	HeaderIDAt25, HeaderVthMaxValue, HeaderRon4_5V, HeaderRon10V,
}

// Headers is the full column contract in export order.
var Headers = append([]string{
	HeaderCategory, HeaderSubCategory, HeaderPartNumber, HeaderDatasheetLink,
}, SpecHeaders...)

// Row is a normalized import record. Specs keeps the raw measurement cells in
// SpecHeaders order; they are parsed when parts are written.
type Row struct {
	PartNumber      string
	CategoryName    string
	SubCategoryName string
	// DatasheetLink is nil when the column is missing from the file.
	DatasheetLink *string
	Specs         []string
}

func (r Row) subCategoryRef() SubCategoryRef {
	return SubCategoryRef{Category: r.CategoryName, SubCategory: r.SubCategoryName}
}

// NormalizeRow trims the identifying cells of rec. ok is false when category,
// subcategory or part number is empty.
func NormalizeRow(rec RawRecord) (Row, bool) {
	row := Row{
		CategoryName:    strings.TrimSpace(rec[HeaderCategory]),
		SubCategoryName: strings.TrimSpace(rec[HeaderSubCategory]),
		PartNumber:      strings.TrimSpace(rec[HeaderPartNumber]),
		Specs:           make([]string, len(SpecHeaders)),
	}
	if row.CategoryName == "" || row.SubCategoryName == "" || row.PartNumber == "" {
		return Row{}, false
	}
	if link, ok := rec[HeaderDatasheetLink]; ok {
		link = strings.TrimSpace(link)
		row.DatasheetLink = &link
	}
	for i, h := range SpecHeaders {
		row.Specs[i] = rec[h]
	}
	return row, true
}

// NormalizeRows normalizes every record, logging and dropping incomplete ones.
func NormalizeRows(records []RawRecord, logger *logrus.Entry) ([]Row, int) {
	rows := make([]Row, 0, len(records))
	skipped := 0
	for i, rec := range records {
		row, ok := NormalizeRow(rec)
		if !ok {
			skipped++
			logger.WithFields(logrus.Fields{
				"row":         i + 1,
				"category":    rec[HeaderCategory],
				"subcategory": rec[HeaderSubCategory],
				"part_number": rec[HeaderPartNumber],
			}).Warn("Skipping row with missing required data")
			continue
		}
		rows = append(rows, row)
	}
	return rows, skipped
}
