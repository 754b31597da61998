package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/entity"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/repository"
)

var (
	_ repository.TransferRepository   = (*TransferRepo)(nil)
	_ repository.AdjustmentRepository = (*AdjustmentRepo)(nil)
)

// requestQuery arma WHERE/LIMIT/OFFSET comunes a los listados de solicitudes.
// warehouseCond recibe el número de parámetro de la bodega.
func requestQuery(base, alias string, f repository.RequestFilter, warehouseCond string) (string, []any) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("%s.status = $%d", alias, len(args)))
	}
	if f.LotID != "" {
		args = append(args, f.LotID)
		where = append(where, fmt.Sprintf("%s.lot_id = $%d", alias, len(args)))
	}
	if f.WarehouseID != "" {
		args = append(args, f.WarehouseID)
		where = append(where, strings.ReplaceAll(warehouseCond, "$N", fmt.Sprintf("$%d", len(args))))
	}
	var b strings.Builder
	b.WriteString(base)
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	fmt.Fprintf(&b, " ORDER BY %s.created_at DESC, %s.id DESC", alias, alias)
	if f.Limit > 0 {
		args = append(args, f.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		fmt.Fprintf(&b, " OFFSET $%d", len(args))
	}
	return b.String(), args
}

// ──────────────────────────────────────────────────────────────────────────────
// Traslados
// ──────────────────────────────────────────────────────────────────────────────

const transferColumns = `t.id, t.lot_id, t.from_warehouse_id, t.to_warehouse_id, t.quantity, t.status, t.notes,
	t.requested_by, t.resolved_by, t.resolution_notes, t.rejection_reason, t.destination_lot_id,
	t.created_at, t.resolved_at`

// TransferRepo solicitudes de traslado sobre PostgreSQL.
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

func scanTransfer(row pgx.Row) (*entity.TransferRequest, error) {
	var (
		t      entity.TransferRequest
		status string
		dest   *string
	)
	if err := row.Scan(&t.ID, &t.LotID, &t.FromWarehouseID, &t.ToWarehouseID, &t.Quantity, &status, &t.Notes,
		&t.RequestedBy, &t.ResolvedBy, &t.ResolutionNotes, &t.RejectionReason, &dest,
		&t.CreatedAt, &t.ResolvedAt); err != nil {
		return nil, err
	}
	t.Status = entity.RequestStatus(status)
	if dest != nil {
		t.DestinationLotID = *dest
	}
	return &t, nil
}

// Create persiste una solicitud. Una solicitud pendiente idéntica viola el índice único parcial.
func (r *TransferRepo) Create(ctx context.Context, t *entity.TransferRequest) error {
	query := `
		INSERT INTO transfer_requests (id, lot_id, from_warehouse_id, to_warehouse_id, quantity, status,
			notes, requested_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.LotID, t.FromWarehouseID, t.ToWarehouseID, t.Quantity, string(t.Status),
		t.Notes, t.RequestedBy, t.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: traslado pendiente", domain.ErrDuplicateRequest)
		}
		return fmt.Errorf("insert transfer: %w", err)
	}
	return nil
}

func (r *TransferRepo) get(ctx context.Context, id, suffix string) (*entity.TransferRequest, error) {
	query := `SELECT ` + transferColumns + ` FROM transfer_requests t WHERE t.id = $1` + suffix
	t, err := scanTransfer(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	return t, nil
}

// GetByID obtiene una solicitud por ID.
func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.TransferRequest, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate obtiene y bloquea la solicitud.
func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.TransferRequest, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

// Update guarda la resolución de la solicitud.
func (r *TransferRepo) Update(ctx context.Context, t *entity.TransferRequest) error {
	query := `
		UPDATE transfer_requests
		SET status = $2, resolved_by = $3, resolution_notes = $4, rejection_reason = $5,
			destination_lot_id = $6, resolved_at = $7
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		t.ID, string(t.Status), t.ResolvedBy, t.ResolutionNotes, t.RejectionReason,
		nullable(t.DestinationLotID), t.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("update transfer: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: traslado %s", domain.ErrNotFound, t.ID)
	}
	return nil
}

// FindPendingDuplicate busca una solicitud pendiente idéntica del mismo usuario.
func (r *TransferRepo) FindPendingDuplicate(ctx context.Context, lotID, requestedBy, toWarehouseID string, qty decimal.Decimal) (*entity.TransferRequest, error) {
	query := `
		SELECT ` + transferColumns + `
		FROM transfer_requests t
		WHERE t.status = 'PENDING' AND t.lot_id = $1 AND t.requested_by = $2
		  AND t.to_warehouse_id = $3 AND t.quantity = $4
		LIMIT 1`
	t, err := scanTransfer(r.q.QueryRow(ctx, query, lotID, requestedBy, toWarehouseID, qty))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find duplicate transfer: %w", err)
	}
	return t, nil
}

// List lista solicitudes, más recientes primero. WarehouseID filtra por origen o destino.
func (r *TransferRepo) List(ctx context.Context, f repository.RequestFilter) ([]*entity.TransferRequest, error) {
	query, args := requestQuery(`SELECT `+transferColumns+` FROM transfer_requests t`, "t", f,
		"(t.from_warehouse_id = $N OR t.to_warehouse_id = $N)")
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()
	var list []*entity.TransferRequest
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// ──────────────────────────────────────────────────────────────────────────────
// Ajustes
// ──────────────────────────────────────────────────────────────────────────────

const adjustmentColumns = `a.id, a.lot_id, a.quantity_before, a.quantity_after, a.applied_delta, a.reason, a.status,
	a.created_by, a.approved_by, a.rejected_by, a.resolution_notes, a.rejection_reason, a.created_at, a.resolved_at`

// AdjustmentRepo solicitudes de ajuste sobre PostgreSQL.
type AdjustmentRepo struct {
	q Querier
}

// NewAdjustmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAdjustmentRepository(q Querier) *AdjustmentRepo {
	return &AdjustmentRepo{q: q}
}

func scanAdjustment(row pgx.Row) (*entity.AdjustmentRequest, error) {
	var (
		a      entity.AdjustmentRequest
		status string
	)
	if err := row.Scan(&a.ID, &a.LotID, &a.QuantityBefore, &a.QuantityAfter, &a.AppliedDelta, &a.Reason, &status,
		&a.CreatedBy, &a.ApprovedBy, &a.RejectedBy, &a.ResolutionNotes, &a.RejectionReason,
		&a.CreatedAt, &a.ResolvedAt); err != nil {
		return nil, err
	}
	a.Status = entity.RequestStatus(status)
	return &a, nil
}

// Create persiste una solicitud de ajuste.
func (r *AdjustmentRepo) Create(ctx context.Context, a *entity.AdjustmentRequest) error {
	query := `
		INSERT INTO adjustment_requests (id, lot_id, quantity_before, quantity_after, reason, status,
			created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.LotID, a.QuantityBefore, a.QuantityAfter, a.Reason, string(a.Status), a.CreatedBy, a.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: ajuste pendiente", domain.ErrDuplicateRequest)
		}
		return fmt.Errorf("insert adjustment: %w", err)
	}
	return nil
}

func (r *AdjustmentRepo) get(ctx context.Context, id, suffix string) (*entity.AdjustmentRequest, error) {
	query := `SELECT ` + adjustmentColumns + ` FROM adjustment_requests a WHERE a.id = $1` + suffix
	a, err := scanAdjustment(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get adjustment: %w", err)
	}
	return a, nil
}

// GetByID obtiene una solicitud por ID.
func (r *AdjustmentRepo) GetByID(ctx context.Context, id string) (*entity.AdjustmentRequest, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate obtiene y bloquea la solicitud.
func (r *AdjustmentRepo) GetForUpdate(ctx context.Context, id string) (*entity.AdjustmentRequest, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

// Update guarda la resolución de la solicitud.
func (r *AdjustmentRepo) Update(ctx context.Context, a *entity.AdjustmentRequest) error {
	query := `
		UPDATE adjustment_requests
		SET status = $2, applied_delta = $3, approved_by = $4, rejected_by = $5,
			resolution_notes = $6, rejection_reason = $7, resolved_at = $8
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		a.ID, string(a.Status), a.AppliedDelta, a.ApprovedBy, a.RejectedBy,
		a.ResolutionNotes, a.RejectionReason, a.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("update adjustment: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: ajuste %s", domain.ErrNotFound, a.ID)
	}
	return nil
}

// FindPendingDuplicate busca una solicitud pendiente idéntica del mismo usuario.
func (r *AdjustmentRepo) FindPendingDuplicate(ctx context.Context, lotID, createdBy string, quantityAfter decimal.Decimal) (*entity.AdjustmentRequest, error) {
	query := `
		SELECT ` + adjustmentColumns + `
		FROM adjustment_requests a
		WHERE a.status = 'PENDING' AND a.lot_id = $1 AND a.created_by = $2 AND a.quantity_after = $3
		LIMIT 1`
	a, err := scanAdjustment(r.q.QueryRow(ctx, query, lotID, createdBy, quantityAfter))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find duplicate adjustment: %w", err)
	}
	return a, nil
}

// List lista solicitudes, más recientes primero. WarehouseID filtra por la bodega del lote.
func (r *AdjustmentRepo) List(ctx context.Context, f repository.RequestFilter) ([]*entity.AdjustmentRequest, error) {
	query, args := requestQuery(
		`SELECT `+adjustmentColumns+` FROM adjustment_requests a JOIN stock_lots l ON l.id = a.lot_id`, "a", f,
		"l.warehouse_id = $N")
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list adjustments: %w", err)
	}
	defer rows.Close()
	var list []*entity.AdjustmentRequest
	for rows.Next() {
		a, err := scanAdjustment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan adjustment: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
