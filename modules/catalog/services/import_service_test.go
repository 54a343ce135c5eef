package services

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/semi-catalog/modules/catalog/domain/entities/part"
	"github.com/iota-uz/semi-catalog/modules/catalog/infrastructure/persistence"
	"github.com/iota-uz/semi-catalog/modules/catalog/infrastructure/storage"
	"github.com/iota-uz/semi-catalog/pkg/eventbus"
)

type importFixture struct {
	store     *persistence.MemoryStore
	artifacts *storage.FileStore
	service   *ImportService
	dir       string
	events    []*ImportFinishedEvent
}

func newImportFixture(t *testing.T) *importFixture {
	t.Helper()
	dir := t.TempDir()
	artifacts, err := storage.NewFileStore(dir)
	require.NoError(t, err)
	store := persistence.NewMemoryStore()
	f := &importFixture{
		store:     store,
		artifacts: artifacts,
		dir:       dir,
	}
	bus := eventbus.NewEventPublisher(logrus.New())
	bus.Subscribe(func(e *ImportFinishedEvent) {
		f.events = append(f.events, e)
	})
	f.service = NewImportService(store, artifacts, bus, DefaultChunkSize)
	return f
}

func (f *importFixture) importCSV(t *testing.T, rows ...[]string) *ImportSummary {
	t.Helper()
	summary, err := f.service.ImportUpload(context.Background(), "parts.csv", FormatCSV, bytes.NewReader(csvOf(t, Headers, rows...)))
	require.NoError(t, err)
	return summary
}

func (f *importFixture) counts(t *testing.T) (int, int, int) {
	t.Helper()
	ctx := context.Background()
	cats, err := f.store.Categories().List(ctx)
	require.NoError(t, err)
	subs, err := f.store.SubCategories().List(ctx)
	require.NoError(t, err)
	parts, err := f.store.Parts().List(ctx, nil)
	require.NoError(t, err)
	return len(cats), len(subs), len(parts)
}

func (f *importFixture) part(t *testing.T, number string) part.Part {
	t.Helper()
	found, err := f.store.Parts().FindByPartNumbers(context.Background(), []string{number})
	require.NoError(t, err)
	require.Len(t, found, 1)
	return found[0]
}

func (f *importFixture) artifactsLeft(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(f.dir)
	require.NoError(t, err)
	return len(entries)
}

func TestImport_ExampleRowIntoEmptyStore(t *testing.T) {
	f := newImportFixture(t)
	summary := f.importCSV(t, fullRow("MOSFET", "N-Channel", "ABC123", "", "30"))

	require.Equal(t, 1, summary.CategoriesCreated)
	require.Equal(t, 1, summary.SubCategoriesCreated)
	require.Equal(t, 1, summary.PartsCreated)
	require.Equal(t, 1, summary.Chunks)

	cats, err := f.store.Categories().List(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 1)
	require.Equal(t, "MOSFET", cats[0].Name)
	require.Equal(t, uint(1), cats[0].ID)

	subs, err := f.store.SubCategories().List(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 1)
	require.Equal(t, "N-Channel", subs[0].Name)
	require.Equal(t, uint(1), subs[0].CategoryID)

	p := f.part(t, "ABC123")
	require.Equal(t, 30.0, *p.Specification.Vdss.Value)
	require.False(t, p.Specification.Vdss.Has)
	require.Equal(t, 0, f.artifactsLeft(t))
}

func TestImport_IsIdempotent(t *testing.T) {
	f := newImportFixture(t)
	rows := [][]string{
		fullRow("MOSFET", "N-Channel", "A", "https://example.com/a.pdf", "30", "-", "1"),
		fullRow("MOSFET", "P-Channel", "B", "", "", "20"),
		fullRow("Diodes", "Schottky", "C", "", "abc"),
	}
	f.importCSV(t, rows...)
	c1, s1, p1 := f.counts(t)
	before, err := f.store.Parts().List(context.Background(), nil)
	require.NoError(t, err)

	summary := f.importCSV(t, rows...)
	require.Zero(t, summary.CategoriesCreated)
	require.Zero(t, summary.SubCategoriesCreated)
	require.Zero(t, summary.PartsCreated)
	require.Equal(t, 3, summary.PartsUpdated)

	c2, s2, p2 := f.counts(t)
	require.Equal(t, []int{c1, s1, p1}, []int{c2, s2, p2})
	require.Equal(t, []int{2, 3, 3}, []int{c2, s2, p2})

	after, err := f.store.Parts().List(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, after, len(before))
	for i := range before {
		require.Equal(t, before[i].ID, after[i].ID)
		require.Equal(t, before[i].DatasheetLink, after[i].DatasheetLink)
		require.Equal(t, before[i].Specification.ID, after[i].Specification.ID)
		require.Equal(t, before[i].Specification.Vdss.Has, after[i].Specification.Vdss.Has)
		require.Equal(t, before[i].Specification.Vdss.IsNaN(), after[i].Specification.Vdss.IsNaN())
	}
}

func TestImport_SentinelAndEmptyCells(t *testing.T) {
	f := newImportFixture(t)
	f.importCSV(t,
		fullRow("MOSFET", "N-Channel", "SENT", "", "-"),
		fullRow("MOSFET", "N-Channel", "EMPTY", "", ""),
	)

	sent := f.part(t, "SENT").Specification
	require.Nil(t, sent.Vdss.Value)
	require.True(t, sent.Vdss.Has)

	empty := f.part(t, "EMPTY").Specification
	require.Nil(t, empty.Vdss.Value)
	require.False(t, empty.Vdss.Has)
}

func TestImport_RowWithoutPartNumberHasNoSideEffects(t *testing.T) {
	f := newImportFixture(t)
	summary := f.importCSV(t,
		fullRow("MOSFET", "N-Channel", "A", ""),
		fullRow("Brand New", "Also New", "", ""),
	)
	require.Equal(t, 1, summary.Skipped)

	cats, subs, parts := f.counts(t)
	require.Equal(t, []int{1, 1, 1}, []int{cats, subs, parts})
}

func TestImport_DatasheetChangeUpdatesInPlace(t *testing.T) {
	f := newImportFixture(t)
	f.importCSV(t,
		fullRow("MOSFET", "N-Channel", "A", "https://example.com/old.pdf", "30"),
		fullRow("MOSFET", "N-Channel", "B", "https://example.com/b.pdf", "40"),
	)
	a := f.part(t, "A")
	b := f.part(t, "B")

	f.importCSV(t,
		fullRow("MOSFET", "N-Channel", "A", "https://example.com/new.pdf", "31"),
		fullRow("MOSFET", "N-Channel", "B", "https://example.com/b.pdf", "40"),
	)
	a2 := f.part(t, "A")
	require.Equal(t, a.ID, a2.ID)
	require.Equal(t, "https://example.com/new.pdf", *a2.DatasheetLink)
	require.Equal(t, 31.0, *a2.Specification.Vdss.Value)
	require.Equal(t, a.Specification.ID, a2.Specification.ID)
	require.Equal(t, b, f.part(t, "B"))
}

func TestImport_MissingLinkColumnKeepsStoredLink(t *testing.T) {
	f := newImportFixture(t)
	f.importCSV(t, fullRow("MOSFET", "N-Channel", "A", "https://example.com/a.pdf"))

	header := []string{HeaderCategory, HeaderSubCategory, HeaderPartNumber, HeaderVdss}
	_, err := f.service.ImportUpload(context.Background(), "parts.csv", FormatCSV,
		bytes.NewReader(csvOf(t, header, []string{"MOSFET", "N-Channel", "A", "12"})))
	require.NoError(t, err)

	p := f.part(t, "A")
	require.Equal(t, "https://example.com/a.pdf", *p.DatasheetLink)
	require.Equal(t, 12.0, *p.Specification.Vdss.Value)
}

func TestImport_ReadFailureRemovesArtifact(t *testing.T) {
	f := newImportFixture(t)
	_, err := f.service.ImportUpload(context.Background(), "parts.xlsx", FormatXLSX, bytes.NewReader([]byte("not a workbook")))
	require.Error(t, err)
	require.Equal(t, 0, f.artifactsLeft(t))
}

func TestImport_WriteFailureKeepsArtifactAndCommittedChunks(t *testing.T) {
	dir := t.TempDir()
	artifacts, err := storage.NewFileStore(dir)
	require.NoError(t, err)
	store := persistence.NewMemoryStore()
	service := NewImportService(store, artifacts, nil, 1)

	boom := errors.New("connection reset")
	store.OnPartWrite(func(p part.Part) error {
		if p.PartNumber == "B" {
			return boom
		}
		return nil
	})

	_, err = service.ImportUpload(context.Background(), "parts.csv", FormatCSV, bytes.NewReader(csvOf(t, Headers,
		fullRow("MOSFET", "N-Channel", "A", ""),
		fullRow("MOSFET", "N-Channel", "B", ""),
		fullRow("MOSFET", "N-Channel", "C", ""),
	)))
	require.ErrorIs(t, err, boom)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, ".csv", filepath.Ext(entries[0].Name()))

	listed, err := store.Parts().List(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "A", listed[0].PartNumber)
}

func TestImport_XLSXUpload(t *testing.T) {
	f := newImportFixture(t)
	data := xlsxOf(t, Headers, fullRow("MOSFET", "N-Channel", "X1", "", "-", "12"))
	summary, err := f.service.ImportUpload(context.Background(), "parts.xlsx", FormatXLSX, bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 1, summary.PartsCreated)

	p := f.part(t, "X1")
	require.True(t, p.Specification.Vdss.Has)
	require.Equal(t, 12.0, *p.Specification.Vgs.Value)
}

func TestImport_Preview(t *testing.T) {
	f := newImportFixture(t)
	summary := f.service.Preview(context.Background(), []RawRecord{
		{HeaderCategory: "MOSFET", HeaderSubCategory: "N-Channel", HeaderPartNumber: "A"},
		{HeaderCategory: "MOSFET", HeaderSubCategory: "P-Channel", HeaderPartNumber: "B"},
		{HeaderCategory: "MOSFET"},
	})
	require.Equal(t, 3, summary.Rows)
	require.Equal(t, 1, summary.Skipped)
	require.Equal(t, 1, summary.Categories)
	require.Equal(t, 2, summary.SubCategories)
	require.Equal(t, 1, summary.Chunks)

	cats, _, _ := f.counts(t)
	require.Zero(t, cats)
}

func TestImport_PublishesFinishedEvent(t *testing.T) {
	f := newImportFixture(t)
	f.importCSV(t, fullRow("MOSFET", "N-Channel", "AO3400", ""))
	require.Len(t, f.events, 1)
	require.True(t, f.events[0].Succeeded())
	require.Equal(t, 1, f.events[0].Summary.PartsCreated)

	_, err := f.service.ImportUpload(context.Background(), "parts.xlsx", FormatXLSX, bytes.NewReader([]byte("not a workbook")))
	require.Error(t, err)
	require.Len(t, f.events, 2)
	require.False(t, f.events[1].Succeeded())
	require.Nil(t, f.events[1].Summary)
}

func TestImport_XLSXEmptyLinkClearsStoredLink(t *testing.T) {
	f := newImportFixture(t)
	f.importCSV(t, fullRow("MOSFET", "N-Channel", "AO3400", "https://example.com/a.pdf", "30"))

	data := xlsxOf(t, Headers, fullRow("MOSFET", "N-Channel", "AO3400", ""))
	_, err := f.service.ImportUpload(context.Background(), "parts.xlsx", FormatXLSX, bytes.NewReader(data))
	require.NoError(t, err)

	p := f.part(t, "AO3400")
	require.NotNil(t, p.DatasheetLink)
	require.Empty(t, *p.DatasheetLink)
}
