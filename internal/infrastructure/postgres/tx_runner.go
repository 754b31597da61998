package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/inventory"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool             *pgxpool.Pool
	lockTimeout      time.Duration
	statementTimeout time.Duration
}

// NewTxRunner construye el runner con el pool. lockTimeout acota la espera por filas
// bloqueadas por otra operación; statementTimeout acota cada sentencia. Cero = sin límite.
func NewTxRunner(pool *pgxpool.Pool, lockTimeout, statementTimeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, lockTimeout: lockTimeout, statementTimeout: statementTimeout}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Los errores de Postgres se traducen a sentinelas de dominio (ver classify).
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return classify(fmt.Errorf("begin transaction: %w", err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := r.applyTimeouts(ctx, tx); err != nil {
		return err
	}
	if err := fn(ctx, NewRepos(tx)); err != nil {
		return classify(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return classify(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// applyTimeouts fija los límites solo para esta transacción (is_local = true).
func (r *TxRunner) applyTimeouts(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx,
		`SELECT set_config('lock_timeout', $1, true), set_config('statement_timeout', $2, true)`,
		timeoutSetting(r.lockTimeout), timeoutSetting(r.statementTimeout),
	)
	if err != nil {
		return classify(fmt.Errorf("set timeouts: %w", err))
	}
	return nil
}

func timeoutSetting(d time.Duration) string {
	if d <= 0 {
		return "0"
	}
	return fmt.Sprintf("%dms", d.Milliseconds())
}
