package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TopProductResult fila del ranking de productos más vendidos.
type TopProductResult struct {
	ProductID string
	SKU       string
	Name      string
	UnitsSold decimal.Decimal
	Revenue   decimal.Decimal
}

// SalesDayResult total vendido en un día (serie para el reporte de ventas).
type SalesDayResult struct {
	Day       time.Time
	SaleCount int
	Total     decimal.Decimal
}

// ReportRepository consultas read-only para dashboard y reportes.
// Solo considera ventas en estado completed.
type ReportRepository interface {
	// GetSalesMetrics devuelve ingreso bruto y costo (qty × precio de compra)
	// de las ventas completadas del período.
	GetSalesMetrics(ctx context.Context, from, to time.Time) (revenue, cost decimal.Decimal, count int, err error)
	GetTopProducts(ctx context.Context, from, to time.Time, limit int) ([]TopProductResult, error)
	GetSalesByDay(ctx context.Context, from, to time.Time) ([]SalesDayResult, error)
	CountLowStockProducts(ctx context.Context) (int, error)
}
