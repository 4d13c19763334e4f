package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/agropos-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas agregadas read-only para dashboard y reportes.
// Siempre va directo al pool: nunca participa en transacciones.
type ReportRepo struct {
	pool *pgxpool.Pool
}

func NewReportRepository(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

// GetSalesMetrics ingreso, costo y cantidad de ventas completadas del período.
// El costo usa el precio de compra vigente del producto, no el histórico.
func (r *ReportRepo) GetSalesMetrics(ctx context.Context, from, to time.Time) (revenue, cost decimal.Decimal, count int, err error) {
	query := `
		SELECT
			COALESCE(SUM(sd.subtotal), 0),
			COALESCE(SUM(sd.quantity * p.purchase_price), 0),
			COUNT(DISTINCT s.id)
		FROM sales s
		JOIN sale_details sd ON sd.sale_id = s.id
		JOIN products p ON p.id = sd.product_id
		WHERE s.status = 'completed' AND s.created_at >= $1 AND s.created_at <= $2`
	if err = r.pool.QueryRow(ctx, query, from, to).Scan(&revenue, &cost, &count); err != nil {
		err = fmt.Errorf("sales metrics: %w", err)
		return
	}
	return
}

// GetTopProducts productos más vendidos por unidades en el período.
func (r *ReportRepo) GetTopProducts(ctx context.Context, from, to time.Time, limit int) ([]repository.TopProductResult, error) {
	query := `
		SELECT p.id, p.sku, p.name, SUM(sd.quantity) AS units, SUM(sd.subtotal) AS revenue
		FROM sales s
		JOIN sale_details sd ON sd.sale_id = s.id
		JOIN products p ON p.id = sd.product_id
		WHERE s.status = 'completed' AND s.created_at >= $1 AND s.created_at <= $2
		GROUP BY p.id, p.sku, p.name
		ORDER BY units DESC
		LIMIT $3`
	rows, err := r.pool.Query(ctx, query, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	defer rows.Close()
	var list []repository.TopProductResult
	for rows.Next() {
		var t repository.TopProductResult
		if err := rows.Scan(&t.ProductID, &t.SKU, &t.Name, &t.UnitsSold, &t.Revenue); err != nil {
			return nil, fmt.Errorf("scan top product: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

// GetSalesByDay serie diaria de ventas completadas del período.
func (r *ReportRepo) GetSalesByDay(ctx context.Context, from, to time.Time) ([]repository.SalesDayResult, error) {
	query := `
		SELECT date_trunc('day', s.created_at) AS day, COUNT(*), COALESCE(SUM(s.total), 0)
		FROM sales s
		WHERE s.status = 'completed' AND s.created_at >= $1 AND s.created_at <= $2
		GROUP BY day
		ORDER BY day`
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("sales by day: %w", err)
	}
	defer rows.Close()
	var list []repository.SalesDayResult
	for rows.Next() {
		var d repository.SalesDayResult
		if err := rows.Scan(&d.Day, &d.SaleCount, &d.Total); err != nil {
			return nil, fmt.Errorf("scan sales day: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

// CountLowStockProducts productos activos con stock en o bajo el mínimo.
func (r *ReportRepo) CountLowStockProducts(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM products WHERE active = true AND stock <= min_stock`,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count low stock: %w", err)
	}
	return n, nil
}
