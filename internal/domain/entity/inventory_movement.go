package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario. Son exactamente estos tres literales.
const (
	MovementTypeEntry      = "entry"      // entrada
	MovementTypeExit       = "exit"       // salida
	MovementTypeAdjustment = "adjustment" // ajuste manual (con signo)
)

// InventoryMovement es el registro de auditoría inmutable de un cambio de
// stock. Quantity se guarda sin signo; el sentido lo da Type. PreviousStock y
// NewStock son el snapshot al momento de la escritura.
type InventoryMovement struct {
	ID            string
	ProductID     string
	Type          string
	Quantity      decimal.Decimal // valor absoluto
	PreviousStock decimal.Decimal
	NewStock      decimal.Decimal
	Reason        string // texto libre, máx. 255
	UserID        string
	SaleID        string // vacío si no viene de una venta
	CreatedAt     time.Time
}
