package composables

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iota-uz/semi-catalog/pkg/constants"
	"github.com/iota-uz/semi-catalog/pkg/repo"
)

var ErrNoPool = errors.New("no database pool found in context")

func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, constants.TxKey, tx)
}

// UseTxOr returns the transaction bound to ctx, or fallback when none is bound.
func UseTxOr(ctx context.Context, fallback *pgxpool.Pool) (repo.Tx, error) {
	if tx := ctx.Value(constants.TxKey); tx != nil {
		return tx.(repo.Tx), nil
	}
	if fallback != nil {
		return fallback, nil
	}
	return UsePool(ctx)
}

func UsePool(ctx context.Context) (*pgxpool.Pool, error) {
	pool, ok := ctx.Value(constants.PoolKey).(*pgxpool.Pool)
	if !ok || pool == nil {
		return nil, ErrNoPool
	}
	return pool, nil
}

// InTx runs fn in a new transaction on pool. The transaction is committed when fn
// returns nil and rolled back otherwise.
func InTx(ctx context.Context, pool *pgxpool.Pool, fn func(context.Context) error) error {
	if pool == nil {
		var err error
		if pool, err = UsePool(ctx); err != nil {
			return err
		}
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}

	if err := fn(WithTx(ctx, tx)); err != nil {
		if rErr := tx.Rollback(ctx); rErr != nil {
			return errors.Join(err, rErr)
		}
		return err
	}
	return tx.Commit(ctx)
}
