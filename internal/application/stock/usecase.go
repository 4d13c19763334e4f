package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/agropos-api/internal/domain"
	"github.com/jhoicas/agropos-api/internal/domain/entity"
	"github.com/jhoicas/agropos-api/internal/domain/repository"
	"github.com/jhoicas/agropos-api/internal/domain/stock"
)

const maxReasonLen = 255

// LedgerUseCase es la única vía sancionada para mutar products.stock: aplica
// un delta validado y escribe el movimiento auditable, de forma transaccional
// con bloqueo de fila (SELECT FOR UPDATE) y Commit/Rollback.
type LedgerUseCase struct {
	txRunner TxRunner
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(txRunner TxRunner) *LedgerUseCase {
	return &LedgerUseCase{txRunner: txRunner}
}

// MovementInputDTO entrada para aplicar un movimiento.
// Type ∈ {entry, exit, adjustment}; para adjustment Quantity trae el signo.
type MovementInputDTO struct {
	ProductID string
	Type      string
	Quantity  decimal.Decimal
	Reason    string
	UserID    string
	SaleID    string // vacío salvo movimientos originados por una venta
}

// ApplyMovement inicia una transacción, bloquea la fila del producto, aplica
// el delta según tipo y hace Commit o Rollback. Devuelve el movimiento
// escrito (con snapshot previous/new stock).
func (uc *LedgerUseCase) ApplyMovement(ctx context.Context, input MovementInputDTO) (*entity.InventoryMovement, error) {
	if input.ProductID == "" {
		return nil, fmt.Errorf("product_id es requerido: %w", domain.ErrInvalidInput)
	}
	if input.UserID == "" {
		return nil, fmt.Errorf("user_id es requerido: %w", domain.ErrInvalidInput)
	}
	if len(input.Reason) > maxReasonLen {
		return nil, fmt.Errorf("reason supera los %d caracteres: %w", maxReasonLen, domain.ErrInvalidInput)
	}
	// Validar tipo y cantidad antes de abrir la tx
	if _, err := stock.ResolveDelta(input.Type, input.Quantity); err != nil {
		return nil, err
	}

	now := time.Now()
	var mov *entity.InventoryMovement
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
	) error {
		m, err := uc.ApplyInTx(movRepo, productRepo, input, now)
		if err != nil {
			return err
		}
		mov = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// ApplyInTx ejecuta el movimiento usando los repositorios del caller (misma
// transacción). Lo usan ApplyMovement y el caso de uso de ventas para que la
// venta completa (cabecera, detalles y salidas) sea una sola tx.
//
// Secuencia: bloquear fila del producto, resolver delta, verificar que el
// stock resultante no sea negativo, actualizar stock y escribir el movimiento
// con snapshot previous/new. La cantidad se persiste sin signo.
func (uc *LedgerUseCase) ApplyInTx(
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
	input MovementInputDTO,
	now time.Time,
) (*entity.InventoryMovement, error) {
	delta, err := stock.ResolveDelta(input.Type, input.Quantity)
	if err != nil {
		return nil, err
	}

	// Bloquea la fila en products (SELECT FOR UPDATE) para cerrar la carrera
	// entre lectura de stock y escritura bajo peticiones concurrentes.
	product, err := productRepo.GetForUpdate(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	newStock, err := stock.Apply(product.Stock, delta)
	if err != nil {
		return nil, err
	}

	if err := productRepo.UpdateStock(product.ID, newStock); err != nil {
		return nil, err
	}
	mov := &entity.InventoryMovement{
		ID:            uuid.New().String(),
		ProductID:     product.ID,
		Type:          input.Type,
		Quantity:      delta.Abs(),
		PreviousStock: product.Stock,
		NewStock:      newStock,
		Reason:        input.Reason,
		UserID:        input.UserID,
		SaleID:        input.SaleID,
		CreatedAt:     now,
	}
	if err := movRepo.Create(mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// ExitInTx registra una salida (venta) usando los repositorios del caller.
func (uc *LedgerUseCase) ExitInTx(
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
	productID string,
	quantity decimal.Decimal,
	reason, userID, saleID string,
	now time.Time,
) (*entity.InventoryMovement, error) {
	return uc.ApplyInTx(movRepo, productRepo, MovementInputDTO{
		ProductID: productID,
		Type:      entity.MovementTypeExit,
		Quantity:  quantity,
		Reason:    reason,
		UserID:    userID,
		SaleID:    saleID,
	}, now)
}

// EntryInTx registra una entrada (cancelación de venta) usando los
// repositorios del caller.
func (uc *LedgerUseCase) EntryInTx(
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
	productID string,
	quantity decimal.Decimal,
	reason, userID, saleID string,
	now time.Time,
) (*entity.InventoryMovement, error) {
	return uc.ApplyInTx(movRepo, productRepo, MovementInputDTO{
		ProductID: productID,
		Type:      entity.MovementTypeEntry,
		Quantity:  quantity,
		Reason:    reason,
		UserID:    userID,
		SaleID:    saleID,
	}, now)
}

// InitialEntryInTx sintetiza el movimiento de stock inicial al crear un
// producto: previous_stock 0 → new_stock = stock declarado. Valor confiable,
// sin pre-chequeo; el producto ya se insertó con ese stock en la misma tx.
func (uc *LedgerUseCase) InitialEntryInTx(
	movRepo repository.InventoryMovementRepository,
	product *entity.Product,
	userID string,
	now time.Time,
) error {
	if !product.Stock.GreaterThan(decimal.Zero) {
		return nil
	}
	mov := &entity.InventoryMovement{
		ID:            uuid.New().String(),
		ProductID:     product.ID,
		Type:          entity.MovementTypeEntry,
		Quantity:      product.Stock,
		PreviousStock: decimal.Zero,
		NewStock:      product.Stock,
		Reason:        "Stock inicial al crear el producto",
		UserID:        userID,
		CreatedAt:     now,
	}
	return movRepo.Create(mov)
}
