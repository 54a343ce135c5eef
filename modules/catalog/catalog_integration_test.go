package catalog_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/semi-catalog/modules/catalog"
	"github.com/iota-uz/semi-catalog/modules/catalog/domain/entities/part"
	"github.com/iota-uz/semi-catalog/modules/catalog/infrastructure/persistence"
	"github.com/iota-uz/semi-catalog/modules/catalog/services"
	"github.com/iota-uz/semi-catalog/pkg/application"
)

// setupCatalogDB migrates the catalog schema into a throwaway Postgres schema and
// returns a pool whose search_path points at it.
func setupCatalogDB(tb testing.TB) (context.Context, *pgxpool.Pool) {
	tb.Helper()

	url := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if url == "" {
		tb.Skip("DATABASE_URL is not set; skipping catalog integration test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	tb.Cleanup(cancel)

	admin, err := pgxpool.New(ctx, url)
	require.NoError(tb, err)
	tb.Cleanup(admin.Close)

	schema := "catalog_it_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	_, err = admin.Exec(ctx, "CREATE SCHEMA "+schema)
	require.NoError(tb, err)
	tb.Cleanup(func() {
		_, _ = admin.Exec(context.Background(), "DROP SCHEMA IF EXISTS "+schema+" CASCADE")
	})

	cfg, err := pgxpool.ParseConfig(url)
	require.NoError(tb, err)
	cfg.ConnConfig.RuntimeParams["search_path"] = schema
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(tb, err)
	tb.Cleanup(pool.Close)

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	migrations := application.NewMigrationManager(pool, logger)
	fsys, err := catalog.MigrationSchema()
	require.NoError(tb, err)
	migrations.RegisterSchema("catalog", fsys)
	require.NoError(tb, migrations.Run(ctx))

	return ctx, pool
}

func record(category, subCategory, partNumber, link, vdss, vgs string) services.RawRecord {
	return services.RawRecord{
		services.HeaderCategory:      category,
		services.HeaderSubCategory:   subCategory,
		services.HeaderPartNumber:    partNumber,
		services.HeaderDatasheetLink: link,
		services.HeaderVdss:          vdss,
		services.HeaderVgs:           vgs,
	}
}

func countRows(tb testing.TB, ctx context.Context, pool *pgxpool.Pool, table string) int {
	tb.Helper()
	var n int
	require.NoError(tb, pool.QueryRow(ctx, "SELECT count(*) FROM "+table).Scan(&n))
	return n
}

func partIDs(tb testing.TB, ctx context.Context, pool *pgxpool.Pool) map[string][2]int64 {
	tb.Helper()
	rows, err := pool.Query(ctx, `
		SELECT p.part_number, p.id, s.id
		FROM parts p JOIN specifications s ON s.part_id = p.id`)
	require.NoError(tb, err)
	defer rows.Close()

	out := map[string][2]int64{}
	for rows.Next() {
		var number string
		var partID, specID int64
		require.NoError(tb, rows.Scan(&number, &partID, &specID))
		out[number] = [2]int64{partID, specID}
	}
	require.NoError(tb, rows.Err())
	return out
}

func TestCatalogPostgres_ReimportIsIdempotent(t *testing.T) {
	ctx, pool := setupCatalogDB(t)
	store := persistence.NewStore(pool)
	importer := services.NewImportService(store, nil, nil, 2)

	records := []services.RawRecord{
		record("MOSFET", "Shared", "AO3400", "https://example.com/ao3400.pdf", "30", "12"),
		record("Diodes", "Shared", "1N5819", "https://example.com/1n5819.pdf", "-", "junk"),
		record("MOSFET", "P-Channel", "AO3401", "", "-30", ""),
		record("MOSFET", "Shared", "AO3400", "https://example.com/ao3400-rev2.pdf", "31", "12"),
		record("", "Shared", "SKIPPED", "", "1", "1"),
	}

	first, err := importer.ImportRecords(ctx, records)
	require.NoError(t, err)
	require.Equal(t, 1, first.Skipped)
	require.Equal(t, 2, first.CategoriesCreated)
	require.Equal(t, 3, first.SubCategoriesCreated)
	require.Equal(t, 2, first.Chunks)
	before := partIDs(t, ctx, pool)
	require.Len(t, before, 3)

	second, err := importer.ImportRecords(ctx, records)
	require.NoError(t, err)
	require.Zero(t, second.CategoriesCreated)
	require.Zero(t, second.SubCategoriesCreated)
	require.Zero(t, second.PartsCreated)

	require.Equal(t, 2, countRows(t, ctx, pool, "categories"))
	require.Equal(t, 3, countRows(t, ctx, pool, "sub_categories"))
	require.Equal(t, 3, countRows(t, ctx, pool, "parts"))
	require.Equal(t, 3, countRows(t, ctx, pool, "specifications"))
	require.Equal(t, before, partIDs(t, ctx, pool))

	var link string
	require.NoError(t, pool.QueryRow(ctx, `SELECT datasheet_link FROM parts WHERE part_number = 'AO3400'`).Scan(&link))
	require.Equal(t, "https://example.com/ao3400-rev2.pdf", link)
}

func TestCatalogPostgres_SentinelAndUnparsableCells(t *testing.T) {
	ctx, pool := setupCatalogDB(t)
	importer := services.NewImportService(persistence.NewStore(pool), nil, nil, services.DefaultChunkSize)

	_, err := importer.ImportRecords(ctx, []services.RawRecord{
		record("Diodes", "Schottky", "1N5819", "", "-", "junk"),
	})
	require.NoError(t, err)

	var hasVdss, vdssNull, hasVgs, vgsNaN, vthNull bool
	require.NoError(t, pool.QueryRow(ctx, `
		SELECT s.has_vdss, s.vdss IS NULL, s.has_vgs, s.vgs = 'NaN'::float8, s.vth_min IS NULL
		FROM specifications s JOIN parts p ON p.id = s.part_id
		WHERE p.part_number = '1N5819'`).Scan(&hasVdss, &vdssNull, &hasVgs, &vgsNaN, &vthNull))
	require.True(t, hasVdss)
	require.True(t, vdssNull)
	require.False(t, hasVgs)
	require.True(t, vgsNaN)
	require.True(t, vthNull)
}

func TestCatalogPostgres_DatasheetChangeKeepsPart(t *testing.T) {
	ctx, pool := setupCatalogDB(t)
	store := persistence.NewStore(pool)
	importer := services.NewImportService(store, nil, nil, services.DefaultChunkSize)

	_, err := importer.ImportRecords(ctx, []services.RawRecord{
		record("MOSFET", "N-Channel", "IRF540", "https://example.com/old.pdf", "100", ""),
	})
	require.NoError(t, err)
	before := partIDs(t, ctx, pool)

	_, err = importer.ImportRecords(ctx, []services.RawRecord{
		record("MOSFET", "N-Channel", "IRF540", "https://example.com/new.pdf", "100", ""),
	})
	require.NoError(t, err)

	// No datasheet column at all: the stored link survives.
	_, err = importer.ImportRecords(ctx, []services.RawRecord{{
		services.HeaderCategory:    "MOSFET",
		services.HeaderSubCategory: "N-Channel",
		services.HeaderPartNumber:  "IRF540",
		services.HeaderVdss:        "101",
	}})
	require.NoError(t, err)
	require.Equal(t, before, partIDs(t, ctx, pool))

	listings, err := services.NewCatalogService(store).ListProducts(ctx, &part.FindParams{
		Category:    "MOSFET",
		SubCategory: "N-Channel",
		PartNumber:  "IRF540",
	})
	require.NoError(t, err)
	require.Len(t, listings, 1)
	got := listings[0]
	require.Equal(t, uint(before["IRF540"][0]), got.ID)
	require.NotNil(t, got.DatasheetLink)
	require.Equal(t, "https://example.com/new.pdf", *got.DatasheetLink)
	require.Equal(t, 101.0, *got.Specification.Vdss.Value)
	require.Equal(t, "N-Channel", got.SubCategory.Name)
	require.Equal(t, "MOSFET", got.Category.Name)
}

func TestCatalogPostgres_SubCategoryNameUnderTwoCategories(t *testing.T) {
	ctx, pool := setupCatalogDB(t)
	store := persistence.NewStore(pool)
	importer := services.NewImportService(store, nil, nil, services.DefaultChunkSize)

	_, err := importer.ImportRecords(ctx, []services.RawRecord{
		record("MOSFET", "General", "A1", "", "1", ""),
		record("Diodes", "General", "D1", "", "2", ""),
	})
	require.NoError(t, err)
	require.Equal(t, 2, countRows(t, ctx, pool, "sub_categories"))

	catalogService := services.NewCatalogService(store)
	diodes, err := catalogService.ListProducts(ctx, &part.FindParams{Category: "Diodes", SubCategory: "General"})
	require.NoError(t, err)
	require.Len(t, diodes, 1)
	require.Equal(t, "D1", diodes[0].PartNumber)

	trees, err := catalogService.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, trees, 2)
	for _, tree := range trees {
		require.Len(t, tree.SubCategories, 1)
		require.Equal(t, "General", tree.SubCategories[0].Name)
	}
}
