package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/entity"
	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo libro de movimientos sobre PostgreSQL. Solo inserta; nunca actualiza ni borra.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create registra un movimiento.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO stock_movements (id, transaction_id, lot_id, movement_type, delta, notes,
			requesting_department, recipient_organization, reference_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.TransactionID, m.LotID, string(m.Type), m.Delta, m.Notes,
		m.RequestingDepartment, m.RecipientOrganization, m.ReferenceID, m.CreatedBy, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// List historial filtrado, más reciente primero.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.LotID != "" {
		add("lot_id = $%d", f.LotID)
	}
	if f.Type != "" {
		add("movement_type = $%d", string(f.Type))
	}
	if f.TransactionID != "" {
		add("transaction_id = $%d", f.TransactionID)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}

	var b strings.Builder
	b.WriteString(`
		SELECT id, transaction_id, lot_id, movement_type, delta, notes, requesting_department,
			recipient_organization, reference_id, created_by, created_at
		FROM stock_movements`)
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY seq DESC")
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
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		var (
			m   entity.Movement
			typ string
		)
		if err := rows.Scan(&m.ID, &m.TransactionID, &m.LotID, &typ, &m.Delta, &m.Notes,
			&m.RequestingDepartment, &m.RecipientOrganization, &m.ReferenceID, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		m.Type = entity.MovementType(typ)
		list = append(list, &m)
	}
	return list, rows.Err()
}
