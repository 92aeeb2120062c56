package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/iho/subledger/internal/infrastructure/postgres/generated"
)

// pgxPool is the part of *pgxpool.Pool the repositories use.
type pgxPool interface {
	generated.DBTX
	Begin(context.Context) (pgx.Tx, error)
}

// TxManager runs query batches in a single transaction, retrying the whole
// batch on deadlocks and serialization failures.
type TxManager struct {
	pool    pgxPool
	retrier *Retrier
}

func newTxManager(pool pgxPool, retrier *Retrier) *TxManager {
	if retrier == nil {
		retrier = NewRetrier()
	}
	return &TxManager{pool: pool, retrier: retrier}
}

// RunInTx begins a transaction, runs fn with queries bound to it and
// commits. Any error rolls the transaction back.
func (m *TxManager) RunInTx(ctx context.Context, fn func(q *generated.Queries) error) error {
	return m.retrier.Retry(ctx, func() error {
		tx, err := m.pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if err := fn(generated.New(tx)); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
}
