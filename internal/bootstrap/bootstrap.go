// Package bootstrap opens the catalog backends selected by configuration.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iota-uz/semi-catalog/modules/catalog/infrastructure/persistence"
	"github.com/iota-uz/semi-catalog/modules/catalog/services"
	"github.com/iota-uz/semi-catalog/pkg/configuration"
)

const connectTimeout = 5 * time.Second

type Catalog struct {
	// Pool is nil for the in-memory store.
	Pool  *pgxpool.Pool
	Store services.Store
}

func (c *Catalog) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// OpenCatalog connects to Postgres unless CATALOG_STORE selects the in-memory store.
func OpenCatalog(ctx context.Context, conf *configuration.Configuration) (*Catalog, error) {
	if conf.Import.StoreDriver == configuration.StoreDriverMemory {
		return &Catalog{Store: persistence.NewMemoryStore()}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Catalog{Pool: pool, Store: persistence.NewStore(pool)}, nil
}
