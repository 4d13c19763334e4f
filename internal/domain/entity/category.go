package entity

import "time"

// Category representa una categoría de productos (concentrados, medicamentos,
// herramientas, etc.).
type Category struct {
	ID          string
	Name        string
	Description string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
