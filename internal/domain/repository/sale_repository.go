package repository

import (
	"time"

	"github.com/jhoicas/agropos-api/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para ventas y sus detalles.
type SaleRepository interface {
	Create(sale *entity.Sale) error
	CreateDetail(detail *entity.SaleDetail) error
	GetByID(id string) (*entity.Sale, error)
	GetDetailsBySaleID(saleID string) ([]*entity.SaleDetail, error)
	// UpdateStatus cambia el estado de la venta (completed → cancelled). Si la
	// venta ya está en ese estado no toca filas y devuelve ErrConflict, de modo
	// que la transición es de una sola vía incluso bajo concurrencia.
	UpdateStatus(saleID, status string, updatedAt time.Time) error
	// LastNumberOfDay devuelve el mayor número de venta con el prefijo del día
	// (YYYYMMDD), o "" si aún no hay ventas ese día.
	LastNumberOfDay(dayPrefix string) (string, error)
	List(from, to *time.Time, limit, offset int) ([]*entity.Sale, error)
}
