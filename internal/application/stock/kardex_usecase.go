package stock

import (
	"context"
	"time"

	"github.com/jhoicas/agropos-api/internal/application/dto"
	"github.com/jhoicas/agropos-api/internal/domain"
	"github.com/jhoicas/agropos-api/internal/domain/entity"
	"github.com/jhoicas/agropos-api/internal/domain/repository"
)

// KardexUseCase consultas read-only sobre el libro de movimientos.
// Usa repositorios respaldados por el pool; nunca abre transacciones.
type KardexUseCase struct {
	movRepo     repository.InventoryMovementRepository
	productRepo repository.ProductRepository
}

// NewKardexUseCase construye el caso de uso.
func NewKardexUseCase(
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
) *KardexUseCase {
	return &KardexUseCase{movRepo: movRepo, productRepo: productRepo}
}

// ListByProduct devuelve el kardex de un producto (recientes primero) con
// filtros opcionales de fecha.
func (uc *KardexUseCase) ListByProduct(
	ctx context.Context,
	productID string,
	from, to *time.Time,
	limit, offset int,
) ([]dto.MovementResponse, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	movs, err := uc.movRepo.ListByProduct(productID, from, to, limit, offset)
	if err != nil {
		return nil, err
	}
	return toMovementResponses(movs), nil
}

// ListRecent devuelve los últimos movimientos de todos los productos.
func (uc *KardexUseCase) ListRecent(ctx context.Context, limit int) ([]dto.MovementResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	movs, err := uc.movRepo.ListRecent(limit)
	if err != nil {
		return nil, err
	}
	return toMovementResponses(movs), nil
}

func toMovementResponses(movs []*entity.InventoryMovement) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, ToMovementResponse(m))
	}
	return out
}

// ToMovementResponse mapea un movimiento a su DTO de salida.
func ToMovementResponse(m *entity.InventoryMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:            m.ID,
		ProductID:     m.ProductID,
		Type:          m.Type,
		Quantity:      m.Quantity,
		PreviousStock: m.PreviousStock,
		NewStock:      m.NewStock,
		Reason:        m.Reason,
		UserID:        m.UserID,
		SaleID:        m.SaleID,
		CreatedAt:     m.CreatedAt,
	}
}
