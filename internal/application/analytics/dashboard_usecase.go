// Package analytics contiene los casos de uso read-only del dashboard y los
// reportes de ventas.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/agropos-api/internal/application/dto"
	"github.com/jhoicas/agropos-api/internal/domain"
	"github.com/jhoicas/agropos-api/internal/domain/repository"
)

const dashboardTopProducts = 5 // productos en el widget del dashboard

// DashboardUseCase genera el resumen del día y del mes en curso.
//
// Fuente de datos: ReportRepository (consultas read-only sobre ventas
// completadas). No toca las tablas directamente.
type DashboardUseCase struct {
	reportRepo repository.ReportRepository
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(reportRepo repository.ReportRepository) *DashboardUseCase {
	return &DashboardUseCase{reportRepo: reportRepo}
}

// GetSummary construye el DashboardSummaryDTO.
//
// Cuatro llamadas en paralelo:
//  1. GetSalesMetrics(hoy)        → TodaySales + TodayMargin + conteo
//  2. GetSalesMetrics(mes)        → MonthlySales + MonthlyMargin
//  3. GetTopProducts(mes, top 5)  → TopProducts
//  4. CountLowStockProducts      → LowStockCount
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	now := time.Now()

	// Hoy: 00:00:00.000 – 23:59:59.999; mes: día 1 hasta fin de hoy
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayEnd := todayStart.Add(24*time.Hour - time.Nanosecond)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	type metricsResult struct {
		revenue decimal.Decimal
		cost    decimal.Decimal
		count   int
		err     error
	}
	type topResult struct {
		rows []repository.TopProductResult
		err  error
	}
	type lowStockResult struct {
		count int
		err   error
	}

	todayCh := make(chan metricsResult, 1)
	monthCh := make(chan metricsResult, 1)
	topCh := make(chan topResult, 1)
	lowCh := make(chan lowStockResult, 1)

	go func() {
		rev, cost, count, err := uc.reportRepo.GetSalesMetrics(ctx, todayStart, todayEnd)
		todayCh <- metricsResult{rev, cost, count, err}
	}()
	go func() {
		rev, cost, count, err := uc.reportRepo.GetSalesMetrics(ctx, monthStart, todayEnd)
		monthCh <- metricsResult{rev, cost, count, err}
	}()
	go func() {
		rows, err := uc.reportRepo.GetTopProducts(ctx, monthStart, todayEnd, dashboardTopProducts)
		topCh <- topResult{rows, err}
	}()
	go func() {
		count, err := uc.reportRepo.CountLowStockProducts(ctx)
		lowCh <- lowStockResult{count, err}
	}()

	today := <-todayCh
	month := <-monthCh
	top := <-topCh
	low := <-lowCh

	if today.err != nil {
		return nil, fmt.Errorf("dashboard: métricas de hoy: %w", today.err)
	}
	if month.err != nil {
		return nil, fmt.Errorf("dashboard: métricas del mes: %w", month.err)
	}
	if top.err != nil {
		return nil, fmt.Errorf("dashboard: top productos: %w", top.err)
	}
	if low.err != nil {
		return nil, fmt.Errorf("dashboard: bajo stock: %w", low.err)
	}

	topDTOs := make([]dto.TopProductDTO, 0, len(top.rows))
	for _, r := range top.rows {
		topDTOs = append(topDTOs, dto.TopProductDTO{
			ProductID: r.ProductID,
			SKU:       r.SKU,
			Name:      r.Name,
			UnitsSold: r.UnitsSold,
			Revenue:   r.Revenue,
		})
	}

	return &dto.DashboardSummaryDTO{
		TodaySales:     today.revenue.Round(2),
		TodaySaleCount: today.count,
		TodayMargin:    today.revenue.Sub(today.cost).Round(2),
		MonthlySales:   month.revenue.Round(2),
		MonthlyMargin:  month.revenue.Sub(month.cost).Round(2),
		LowStockCount:  low.count,
		TopProducts:    topDTOs,
		DateLabel:      monthLabel(now),
	}, nil
}

// GetSalesReport construye el reporte de ventas por rango de fechas.
func (uc *DashboardUseCase) GetSalesReport(ctx context.Context, from, to time.Time) (*dto.SalesReportDTO, error) {
	if to.Before(from) {
		return nil, domain.ErrInvalidInput
	}
	revenue, cost, count, err := uc.reportRepo.GetSalesMetrics(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("reporte de ventas: métricas: %w", err)
	}
	byDay, err := uc.reportRepo.GetSalesByDay(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("reporte de ventas: serie diaria: %w", err)
	}
	rows := make([]dto.SalesReportRowDTO, 0, len(byDay))
	for _, d := range byDay {
		rows = append(rows, dto.SalesReportRowDTO{Day: d.Day, SaleCount: d.SaleCount, Total: d.Total})
	}
	return &dto.SalesReportDTO{
		From:      from,
		To:        to,
		SaleCount: count,
		Revenue:   revenue.Round(2),
		Cost:      cost.Round(2),
		Margin:    revenue.Sub(cost).Round(2),
		ByDay:     rows,
	}, nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
