package services

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RawRecord maps a header cell to the row's cell under it. Columns the row does not
// reach are absent.
type RawRecord map[string]string

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var ErrUnsupportedFormat = errors.New("unsupported import format")

// FormatFromName picks the format from a file extension. Anything that is not a
// workbook is read as CSV.
func FormatFromName(name string) Format {
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}

func ReadRecords(r io.Reader, format Format) ([]RawRecord, error) {
	switch format {
	case FormatCSV, "":
		return readCSV(r)
	case FormatXLSX:
		return readXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func readCSV(r io.Reader) ([]RawRecord, error) {
	cr := csv.NewReader(stripUTF8BOM(bufio.NewReader(r)))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	header = cleanHeader(header)

	var out []RawRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		out = append(out, toRecord(header, row))
	}
}

func readXLSX(r io.Reader) ([]RawRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("open workbook: no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := cleanHeader(rows[0])
	out := make([]RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		// GetRows drops trailing empty cells; a CSV row keeps them.
		out = append(out, toRecord(header, padRow(row, len(header))))
	}
	return out, nil
}

func stripUTF8BOM(r *bufio.Reader) *bufio.Reader {
	b, err := r.Peek(3)
	if err == nil && len(b) == 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}
	return r
}

// cleanHeader trims the outer whitespace of header cells and normalises CRLF line
// breaks inside them, so "VDSS\r\nV" matches "VDSS\nV".
func cleanHeader(h []string) []string {
	out := make([]string, len(h))
	for i, name := range h {
		out[i] = strings.TrimSpace(strings.ReplaceAll(name, "\r\n", "\n"))
	}
	return out
}

func toRecord(header, row []string) RawRecord {
	rec := make(RawRecord, len(header))
	for i, name := range header {
		if i >= len(row) {
			break
		}
		rec[name] = row[i]
	}
	return rec
}

func padRow(row []string, n int) []string {
	if len(row) >= n {
		return row
	}
	padded := make([]string, n)
	copy(padded, row)
	return padded
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
