package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de Sale. La única transición es completed → cancelled (terminal).
const (
	SaleStatusCompleted = "completed"
	SaleStatusCancelled = "cancelled"
)

// Métodos de pago aceptados.
const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentTransfer = "transfer"
	PaymentCredit   = "credit"
)

// Sale representa una venta de mostrador. Number es el consecutivo diario
// YYYYMMDD + secuencia de 4 dígitos (ej: 202602020001).
type Sale struct {
	ID            string
	Number        string
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal // el modelo actual no cobra impuesto; queda en 0
	Total         decimal.Decimal
	PaymentMethod string
	Status        string // completed, cancelled
	UserID        string
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsValidPaymentMethod valida el método de pago.
func IsValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentCredit:
		return true
	}
	return false
}
