package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. InitialStock > 0
// genera un movimiento entry de stock inicial en la misma transacción.
type CreateProductRequest struct {
	SKU            string           `json:"sku" validate:"required,min=1,max=100"`
	Name           string           `json:"name" validate:"required,min=1,max=200"`
	Description    string           `json:"description"`
	CategoryID     string           `json:"category_id" validate:"required"`
	PurchasePrice  decimal.Decimal  `json:"purchase_price"`
	SalePrice      decimal.Decimal  `json:"sale_price"`
	InitialStock   decimal.Decimal  `json:"initial_stock"`
	MinStock       decimal.Decimal  `json:"min_stock"`
	UnitMeasure    string           `json:"unit_measure" validate:"required"`
	SoldByWeight   bool             `json:"sold_by_weight"`
	PricePerKilo   *decimal.Decimal `json:"price_per_kilo,omitempty"`
	ExpirationDate *time.Time       `json:"expiration_date,omitempty"`
}

// UpdateProductRequest entrada para actualizar un producto. Stock no se toca
// aquí: se maneja vía movimientos.
type UpdateProductRequest struct {
	Name           *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description    *string          `json:"description"`
	CategoryID     *string          `json:"category_id"`
	PurchasePrice  *decimal.Decimal `json:"purchase_price"`
	SalePrice      *decimal.Decimal `json:"sale_price"`
	MinStock       *decimal.Decimal `json:"min_stock"`
	UnitMeasure    *string          `json:"unit_measure"`
	SoldByWeight   *bool            `json:"sold_by_weight"`
	PricePerKilo   *decimal.Decimal `json:"price_per_kilo"`
	Active         *bool            `json:"active"`
	ExpirationDate *time.Time       `json:"expiration_date"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID             string           `json:"id"`
	SKU            string           `json:"sku"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	CategoryID     string           `json:"category_id"`
	PurchasePrice  decimal.Decimal  `json:"purchase_price"`
	SalePrice      decimal.Decimal  `json:"sale_price"`
	Stock          decimal.Decimal  `json:"stock"`
	MinStock       decimal.Decimal  `json:"min_stock"`
	UnitMeasure    string           `json:"unit_measure"`
	SoldByWeight   bool             `json:"sold_by_weight"`
	PricePerKilo   *decimal.Decimal `json:"price_per_kilo,omitempty"`
	Active         bool             `json:"active"`
	LowStock       bool             `json:"low_stock"`
	ExpirationDate *time.Time       `json:"expiration_date,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
