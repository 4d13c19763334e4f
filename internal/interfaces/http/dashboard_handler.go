package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/agropos-api/internal/application/analytics"
	"github.com/jhoicas/agropos-api/internal/application/dto"
	"github.com/jhoicas/agropos-api/internal/domain"
)

// DashboardHandler maneja los endpoints del módulo de Dashboard y reportes.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary devuelve el resumen financiero del día y del mes en curso.
// GET /api/dashboard/summary
//
// Respuesta: DashboardSummaryDTO (today_sales, today_margin, monthly_sales,
// monthly_margin, low_stock_count, top_products[5], date_label).
// No requiere parámetros; las fechas se calculan automáticamente en el servidor.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code: "INTERNAL", Message: err.Error(),
		})
	}
	return c.JSON(summary)
}

// GetSalesReport devuelve el reporte de ventas de un rango de fechas.
// GET /api/reports/sales?from=2026-08-01&to=2026-08-31
func (h *DashboardHandler) GetSalesReport(c *fiber.Ctx) error {
	from, err := parseTimeQuery(c, "from")
	if err != nil || from == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Message: "from es requerido (RFC3339 o YYYY-MM-DD)",
		})
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Message: "to inválido (RFC3339 o YYYY-MM-DD)",
		})
	}
	end := time.Now()
	if to != nil {
		// Incluir el día completo cuando viene como fecha
		end = to.Add(24*time.Hour - time.Second)
	}
	report, err := h.uc.GetSalesReport(c.Context(), *from, end)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Code: "VALIDATION", Message: "rango de fechas inválido",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code: "INTERNAL", Message: err.Error(),
		})
	}
	return c.JSON(report)
}
