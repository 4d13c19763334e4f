package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TopProductDTO fila del ranking de productos más vendidos.
type TopProductDTO struct {
	ProductID string          `json:"product_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	UnitsSold decimal.Decimal `json:"units_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// DashboardSummaryDTO resumen del día y del mes para el dashboard.
type DashboardSummaryDTO struct {
	TodaySales     decimal.Decimal `json:"today_sales"`
	TodaySaleCount int             `json:"today_sale_count"`
	TodayMargin    decimal.Decimal `json:"today_margin"`
	MonthlySales   decimal.Decimal `json:"monthly_sales"`
	MonthlyMargin  decimal.Decimal `json:"monthly_margin"`
	LowStockCount  int             `json:"low_stock_count"`
	TopProducts    []TopProductDTO `json:"top_products"`
	DateLabel      string          `json:"date_label"`
}

// SalesReportRowDTO total vendido por día dentro del rango del reporte.
type SalesReportRowDTO struct {
	Day       time.Time       `json:"day"`
	SaleCount int             `json:"sale_count"`
	Total     decimal.Decimal `json:"total"`
}

// SalesReportDTO reporte de ventas por rango de fechas.
type SalesReportDTO struct {
	From      time.Time           `json:"from"`
	To        time.Time           `json:"to"`
	SaleCount int                 `json:"sale_count"`
	Revenue   decimal.Decimal     `json:"revenue"`
	Cost      decimal.Decimal     `json:"cost"`
	Margin    decimal.Decimal     `json:"margin"`
	ByDay     []SalesReportRowDTO `json:"by_day"`
}
