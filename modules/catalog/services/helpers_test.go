package services

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// csvOf renders header and rows as CSV, quoting the multi-line headers.
func csvOf(t *testing.T, header []string, rows ...[]string) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	require.NoError(t, w.Write(header))
	for _, r := range rows {
		require.NoError(t, w.Write(r))
	}
	w.Flush()
	require.NoError(t, w.Error())
	return buf.Bytes()
}

func xlsxOf(t *testing.T, header []string, rows ...[]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	all := append([][]string{header}, rows...)
	for i, r := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		values := make([]any, len(r))
		for j, v := range r {
			values[j] = v
		}
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &values))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

// fullRow builds a row in Headers order.
func fullRow(category, subCategory, partNumber, link string, specs ...string) []string {
	row := []string{category, subCategory, partNumber, link}
	for i := range SpecHeaders {
		v := ""
		if i < len(specs) {
			v = specs[i]
		}
		row = append(row, v)
	}
	return row
}
