package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItemRequest línea de venta en el request.
type SaleItemRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	// UnitPrice opcional: cero usa el precio de venta vigente del producto.
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateSaleRequest body para POST /api/sales.
type CreateSaleRequest struct {
	Items         []SaleItemRequest `json:"items" validate:"required,min=1"`
	PaymentMethod string            `json:"payment_method" validate:"required"`
	Notes         string            `json:"notes" validate:"max=255"`
}

// SaleDetailResponse línea de venta en la respuesta.
type SaleDetailResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SaleResponse salida de una venta con su detalle.
type SaleResponse struct {
	ID            string               `json:"id"`
	Number        string               `json:"number"`
	Subtotal      decimal.Decimal      `json:"subtotal"`
	Tax           decimal.Decimal      `json:"tax"`
	Total         decimal.Decimal      `json:"total"`
	PaymentMethod string               `json:"payment_method"`
	Status        string               `json:"status"`
	UserID        string               `json:"user_id"`
	Notes         string               `json:"notes,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	Details       []SaleDetailResponse `json:"details"`
}

// SaleListResponse lista paginada de ventas.
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
