package application

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
	"github.com/sirupsen/logrus"
)

var ErrNoDatabase = errors.New("migrations: no database pool configured")

type schema struct {
	name string
	fsys fs.FS
}

// NewMigrationManager runs goose migrations per module. Each module keeps its own
// version table so module versions never collide.
func NewMigrationManager(pool *pgxpool.Pool, logger *logrus.Logger) MigrationManager {
	return &migrationManager{pool: pool, logger: logger}
}

type migrationManager struct {
	pool    *pgxpool.Pool
	logger  *logrus.Logger
	schemas []schema
}

func (m *migrationManager) RegisterSchema(name string, fsys fs.FS) {
	m.schemas = append(m.schemas, schema{name: name, fsys: fsys})
}

func versionTable(module string) string {
	return "goose_db_version_" + module
}

func (m *migrationManager) provider(db *sql.DB, s schema) (*goose.Provider, error) {
	store, err := database.NewStore(database.DialectPostgres, versionTable(s.name))
	if err != nil {
		return nil, err
	}
	return goose.NewProvider("", db, s.fsys, goose.WithStore(store))
}

func (m *migrationManager) Run(ctx context.Context) error {
	if m.pool == nil {
		return ErrNoDatabase
	}
	db := stdlib.OpenDBFromPool(m.pool)
	defer db.Close()

	for _, s := range m.schemas {
		p, err := m.provider(db, s)
		if err != nil {
			return fmt.Errorf("migrations %s: %w", s.name, err)
		}
		results, err := p.Up(ctx)
		if err != nil {
			return fmt.Errorf("migrations %s: %w", s.name, err)
		}
		for _, r := range results {
			m.logger.WithFields(logrus.Fields{
				"module":   s.name,
				"version":  r.Source.Version,
				"duration": r.Duration,
			}).Info("migration applied")
		}
	}
	return nil
}

func (m *migrationManager) Status(ctx context.Context) ([]MigrationStatus, error) {
	if m.pool == nil {
		return nil, ErrNoDatabase
	}
	db := stdlib.OpenDBFromPool(m.pool)
	defer db.Close()

	var out []MigrationStatus
	for _, s := range m.schemas {
		p, err := m.provider(db, s)
		if err != nil {
			return nil, fmt.Errorf("migrations %s: %w", s.name, err)
		}
		statuses, err := p.Status(ctx)
		if err != nil {
			return nil, fmt.Errorf("migrations %s: %w", s.name, err)
		}
		for _, st := range statuses {
			out = append(out, MigrationStatus{
				Module:  s.name,
				Version: st.Source.Version,
				Source:  st.Source.Path,
				Applied: st.State == goose.StateApplied,
			})
		}
	}
	return out, nil
}
