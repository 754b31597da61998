package entity

import "time"

// Warehouse representa una bodega o almacén donde se guardan lotes.
type Warehouse struct {
	ID        string
	Name      string
	Location  string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
