package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/agropos-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// UpdateStock y GetForUpdate son de uso exclusivo del ledger dentro de una tx.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetBySKU(sku string) (*entity.Product, error)
	Update(product *entity.Product) error
	// GetForUpdate obtiene el producto y bloquea la fila (SELECT FOR UPDATE).
	GetForUpdate(id string) (*entity.Product, error)
	// UpdateStock actualiza solo la columna stock (usado por el ledger).
	UpdateStock(productID string, stock decimal.Decimal) error
	List(onlyActive bool, limit, offset int) ([]*entity.Product, error)
	ListLowStock() ([]*entity.Product, error)
	Delete(id string) error
}
