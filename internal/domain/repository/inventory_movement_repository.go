package repository

import (
	"time"

	"github.com/jhoicas/agropos-api/internal/domain/entity"
)

// InventoryMovementRepository define el puerto de persistencia para el libro
// de movimientos. Solo hay Create y lecturas: los movimientos son inmutables.
type InventoryMovementRepository interface {
	Create(movement *entity.InventoryMovement) error
	GetByID(id string) (*entity.InventoryMovement, error)
	ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error)
	ListRecent(limit int) ([]*entity.InventoryMovement, error)
}
