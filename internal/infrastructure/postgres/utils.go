package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain"
)

// Códigos SQLSTATE que el libro traduce a errores de dominio.
const (
	codeUniqueViolation      = "23505"
	codeCheckViolation       = "23514"
	codeInvalidText          = "22P02"
	codeNumericOutOfRange    = "22003"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeQueryCanceled        = "57014"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUniqueViolation
	}
	return strings.Contains(err.Error(), codeUniqueViolation)
}

// classify traduce errores de PostgreSQL a sentinelas de dominio. Los errores que ya son
// de dominio (o no vienen de Postgres) se devuelven sin cambios.
//
// Esperas de bloqueo agotadas, deadlocks y fallas de serialización se reportan como
// ErrTransient: el cliente puede reintentar la operación completa.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || alreadyClassified(err) {
		return err
	}
	switch pgErr.Code {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable, codeQueryCanceled:
		return fmt.Errorf("%w: %w", domain.ErrTransient, err)
	case codeUniqueViolation:
		return fmt.Errorf("%w: %w", domain.ErrDuplicateRequest, err)
	case codeCheckViolation:
		return fmt.Errorf("%w: %w", checkSentinel(pgErr.ConstraintName), err)
	case codeNumericOutOfRange:
		return fmt.Errorf("%w: %w", domain.ErrInvalidQuantity, err)
	case codeInvalidText:
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	return err
}

// checkSentinel asocia cada CHECK de las migraciones con su error de dominio.
func checkSentinel(constraint string) error {
	switch constraint {
	case "chk_stock_lots_remaining":
		return domain.ErrInsufficientStock
	case "chk_adjustment_approver":
		return domain.ErrSelfApprovalForbidden
	case "chk_stock_lots_received", "chk_transfer_quantity", "chk_adjustment_after":
		return domain.ErrInvalidQuantity
	}
	return domain.ErrInvalidInput
}

func alreadyClassified(err error) bool {
	for _, sentinel := range []error{
		domain.ErrTransient, domain.ErrDuplicateRequest, domain.ErrInsufficientStock,
		domain.ErrInvalidInput, domain.ErrInvalidQuantity, domain.ErrSelfApprovalForbidden,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
