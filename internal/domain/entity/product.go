package entity

import "time"

// Product referencia mínima a un producto del catálogo.
// El catálogo (categorías, marcas, unidades) se administra fuera del libro de lotes.
type Product struct {
	ID          string
	Name        string
	UnitMeasure string
	CreatedAt   time.Time
}
