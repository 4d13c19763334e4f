package entity

import "github.com/shopspring/decimal"

// SaleDetail es una línea de venta. Inmutable una vez completada la venta.
type SaleDetail struct {
	ID        string
	SaleID    string
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal // Quantity * UnitPrice
}
