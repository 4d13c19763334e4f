package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
// Para adjustment la cantidad puede traer signo; para entry/exit es positiva.
type RegisterMovementRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Type      string          `json:"type" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reason    string          `json:"reason" validate:"max=255"`
}

// MovementResponse salida de un movimiento registrado.
type MovementResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	Type          string          `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	PreviousStock decimal.Decimal `json:"previous_stock"`
	NewStock      decimal.Decimal `json:"new_stock"`
	Reason        string          `json:"reason,omitempty"`
	UserID        string          `json:"user_id"`
	SaleID        string          `json:"sale_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
