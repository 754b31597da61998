package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/entity"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

const lotColumns = `id, product_id, warehouse_id, received_quantity, remaining_quantity, unit_cost,
	received_date, expiry_date, is_expired, source_lot_id, created_at, updated_at`

// fefoOrder primero vence, primero sale; sin vencimiento al final.
const fefoOrder = `ORDER BY expiry_date ASC NULLS LAST, received_date ASC, created_at ASC, id ASC`

// LotRepo implementación de LotRepository sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

func scanLot(row pgx.Row, extra ...any) (*entity.Lot, error) {
	var (
		l      entity.Lot
		source *string
	)
	dest := append([]any{
		&l.ID, &l.ProductID, &l.WarehouseID, &l.ReceivedQuantity, &l.RemainingQuantity, &l.UnitCost,
		&l.ReceivedDate, &l.ExpiryDate, &l.Expired, &source, &l.CreatedAt, &l.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if source != nil {
		l.SourceLotID = *source
	}
	return &l, nil
}

func collectLots(rows pgx.Rows) ([]*entity.Lot, error) {
	defer rows.Close()
	var list []*entity.Lot
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Create persiste un lote nuevo.
func (r *LotRepo) Create(ctx context.Context, lot *entity.Lot) error {
	query := `
		INSERT INTO stock_lots (` + lotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		lot.ID, lot.ProductID, lot.WarehouseID, lot.ReceivedQuantity, lot.RemainingQuantity, lot.UnitCost,
		lot.ReceivedDate, lot.ExpiryDate, lot.Expired, nullable(lot.SourceLotID), lot.CreatedAt, lot.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

func (r *LotRepo) get(ctx context.Context, id, suffix string) (*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM stock_lots WHERE id = $1` + suffix
	l, err := scanLot(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return l, nil
}

// GetByID obtiene un lote por ID.
func (r *LotRepo) GetByID(ctx context.Context, id string) (*entity.Lot, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate obtiene el lote y bloquea la fila (SELECT FOR UPDATE).
func (r *LotRepo) GetForUpdate(ctx context.Context, id string) (*entity.Lot, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

// GetWithLedgerSum devuelve el lote junto con la suma de sus movimientos. Ambos valores
// salen de la misma sentencia, por lo tanto del mismo snapshot.
func (r *LotRepo) GetWithLedgerSum(ctx context.Context, id string) (*entity.Lot, decimal.Decimal, error) {
	query := `
		SELECT ` + lotColumns + `,
			COALESCE((SELECT SUM(m.delta) FROM stock_movements m WHERE m.lot_id = stock_lots.id), 0)
		FROM stock_lots
		WHERE id = $1`
	var sum decimal.Decimal
	l, err := scanLot(r.q.QueryRow(ctx, query, id), &sum)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, decimal.Zero, nil
		}
		return nil, decimal.Zero, fmt.Errorf("get lot with ledger sum: %w", err)
	}
	return l, sum, nil
}

// ListUsableForUpdate bloquea, en orden FEFO, los lotes utilizables del producto en la bodega.
// El orden de bloqueo es el mismo para todas las operaciones, lo que evita deadlocks entre consumos.
func (r *LotRepo) ListUsableForUpdate(ctx context.Context, productID, warehouseID string) ([]*entity.Lot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM stock_lots
		WHERE product_id = $1 AND warehouse_id = $2 AND NOT is_expired AND remaining_quantity > 0
		` + fefoOrder + `
		FOR UPDATE`
	rows, err := r.q.Query(ctx, query, productID, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("list usable lots: %w", err)
	}
	return collectLots(rows)
}

// List lista lotes con filtros, en orden FEFO.
func (r *LotRepo) List(ctx context.Context, f repository.LotFilter) ([]*entity.Lot, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.ProductID != "" {
		add("product_id = $%d", f.ProductID)
	}
	if f.WarehouseID != "" {
		add("warehouse_id = $%d", f.WarehouseID)
	}
	if !f.IncludeExpired {
		where = append(where, "NOT is_expired")
	}
	if !f.IncludeEmpty {
		where = append(where, "remaining_quantity > 0")
	}
	if f.WithExpiryOnly {
		where = append(where, "expiry_date IS NOT NULL")
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + lotColumns + ` FROM stock_lots`)
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	b.WriteString(" " + fefoOrder)
	if f.Limit > 0 {
		args = append(args, f.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		fmt.Fprintf(&b, " OFFSET $%d", len(args))
	}

	rows, err := r.q.Query(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	return collectLots(rows)
}

// UpdateRemaining fija la existencia del lote. El CHECK de la tabla impide valores negativos.
func (r *LotRepo) UpdateRemaining(ctx context.Context, id string, remaining decimal.Decimal, at time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE stock_lots SET remaining_quantity = $2, updated_at = $3 WHERE id = $1`,
		id, remaining, at,
	)
	if err != nil {
		return fmt.Errorf("update lot: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: lote %s", domain.ErrNotFound, id)
	}
	return nil
}

// FindMergeTargetForUpdate busca y bloquea un lote compatible para acreditar un traslado.
func (r *LotRepo) FindMergeTargetForUpdate(ctx context.Context, key repository.LotMergeKey) (*entity.Lot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM stock_lots
		WHERE product_id = $1 AND warehouse_id = $2 AND NOT is_expired
		  AND received_date = $3
		  AND expiry_date IS NOT DISTINCT FROM $4
		  AND unit_cost = $5
		` + fefoOrder + `
		LIMIT 1
		FOR UPDATE`
	l, err := scanLot(r.q.QueryRow(ctx, query,
		key.ProductID, key.WarehouseID, entity.DateOnly(key.ReceivedDate), key.ExpiryDate, key.UnitCost,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find merge target: %w", err)
	}
	return l, nil
}

// ListExpirableForUpdate bloquea los lotes no marcados con vencimiento anterior a asOf.
func (r *LotRepo) ListExpirableForUpdate(ctx context.Context, asOf time.Time) ([]*entity.Lot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM stock_lots
		WHERE NOT is_expired AND expiry_date IS NOT NULL AND expiry_date < $1
		` + fefoOrder + `
		FOR UPDATE`
	rows, err := r.q.Query(ctx, query, entity.DateOnly(asOf))
	if err != nil {
		return nil, fmt.Errorf("list expirable lots: %w", err)
	}
	return collectLots(rows)
}

// MarkExpired marca el lote como vencido. La existencia no cambia.
func (r *LotRepo) MarkExpired(ctx context.Context, id string, at time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE stock_lots SET is_expired = TRUE, updated_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("mark lot expired: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: lote %s", domain.ErrNotFound, id)
	}
	return nil
}
