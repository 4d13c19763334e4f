package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del catálogo de la agroveterinaria.
// Stock es decimal (venta por peso permite fracciones) y SOLO se modifica vía
// el libro de movimientos; nunca por asignación directa.
type Product struct {
	ID             string
	SKU            string // código único
	Name           string
	Description    string
	CategoryID     string
	PurchasePrice  decimal.Decimal // precio de compra
	SalePrice      decimal.Decimal // precio de venta
	Stock          decimal.Decimal // invariante: >= 0, mantenido por el ledger
	MinStock       decimal.Decimal // umbral de bajo stock
	UnitMeasure    string          // unidad, kg, litro, bulto...
	SoldByWeight   bool
	PricePerKilo   *decimal.Decimal // solo productos vendidos por peso
	Active         bool
	ExpirationDate *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsLowStock indica si el producto está en o por debajo de su umbral mínimo.
func (p *Product) IsLowStock() bool {
	return p.Stock.LessThanOrEqual(p.MinStock)
}
