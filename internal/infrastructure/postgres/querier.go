package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/application/inventory"
)

// Querier es lo común entre *pgxpool.Pool y pgx.Tx; los repositorios funcionan con ambos.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	_ Querier = (*pgxpool.Pool)(nil)
	_ Querier = (pgx.Tx)(nil)
)

// NewReadRepos repositorios de lectura sobre el pool, con los errores de Postgres ya
// traducidos a sentinelas de dominio (ej. un ID mal formado es ErrInvalidInput, no un 500).
func NewReadRepos(pool *pgxpool.Pool) inventory.Repos {
	return NewRepos(classifyingQuerier{q: pool})
}

// classifyingQuerier aplica classify a cada error devuelto por q.
type classifyingQuerier struct {
	q Querier
}

func (c classifyingQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	tag, err := c.q.Exec(ctx, sql, args...)
	return tag, classify(err)
}

func (c classifyingQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	rows, err := c.q.Query(ctx, sql, args...)
	return rows, classify(err)
}

func (c classifyingQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return classifyingRow{row: c.q.QueryRow(ctx, sql, args...)}
}

type classifyingRow struct {
	row pgx.Row
}

func (r classifyingRow) Scan(dest ...any) error {
	return classify(r.row.Scan(dest...))
}

// NewRepos construye todos los repositorios sobre q (pool para lecturas, tx dentro de TxRunner).
func NewRepos(q Querier) inventory.Repos {
	return inventory.Repos{
		Lots:        NewLotRepository(q),
		Movements:   NewMovementRepository(q),
		Transfers:   NewTransferRepository(q),
		Adjustments: NewAdjustmentRepository(q),
		Warehouses:  NewWarehouseRepository(q),
		Products:    NewProductRepository(q),
	}
}
