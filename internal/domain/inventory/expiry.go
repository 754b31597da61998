package inventory

import (
	"time"

	"github.com/bryramirezp/gestion-inventario-la-gran-familia-sub000/internal/domain/entity"
)

// ExpiryStatus clasificación de un lote según su fecha de vencimiento.
type ExpiryStatus string

const (
	ExpiryExpired      ExpiryStatus = "EXPIRED"
	ExpiryExpiringSoon ExpiryStatus = "EXPIRING_SOON"
	ExpiryOK           ExpiryStatus = "OK"
)

// ClassifyExpiry devuelve el estado y los días que faltan para vencer (negativo si ya venció).
// Un lote marcado como vencido por el barrido siempre es EXPIRED. Sin fecha de vencimiento: OK y ok=false.
func ClassifyExpiry(l *entity.Lot, today time.Time, soonDays int) (status ExpiryStatus, days int, ok bool) {
	if l.ExpiryDate == nil {
		if l.Expired {
			return ExpiryExpired, 0, false
		}
		return ExpiryOK, 0, false
	}
	days = int(entity.DateOnly(*l.ExpiryDate).Sub(entity.DateOnly(today)).Hours() / 24)
	switch {
	case l.Expired || days < 0:
		return ExpiryExpired, days, true
	case days <= soonDays:
		return ExpiryExpiringSoon, days, true
	default:
		return ExpiryOK, days, true
	}
}
