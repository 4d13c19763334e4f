package sales

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/agropos-api/internal/domain/entity"
	"github.com/jhoicas/agropos-api/internal/domain/repository"
)

// SaleTxRunner ejecuta una función dentro de una transacción que incluye los
// repos de inventario y ventas (cabecera + detalles + salidas de stock en una
// sola tx).
type SaleTxRunner interface {
	RunSale(ctx context.Context, fn func(
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
	) error) error
}

// StockLedger es la integración ventas-inventario. ExitInTx/EntryInTx
// ejecutan el movimiento con los repositorios del caller (misma transacción);
// si retornan error (ej: ErrInsufficientStock) el caller debe hacer rollback.
type StockLedger interface {
	ExitInTx(
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
		productID string,
		quantity decimal.Decimal,
		reason, userID, saleID string,
		now time.Time,
	) (*entity.InventoryMovement, error)
	EntryInTx(
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
		productID string,
		quantity decimal.Decimal,
		reason, userID, saleID string,
		now time.Time,
	) (*entity.InventoryMovement, error)
}

// ReceiptLine línea del recibo con los datos de producto ya resueltos.
type ReceiptLine struct {
	Detail      *entity.SaleDetail
	ProductName string
	UnitMeasure string
}

// ReceiptPDFGenerator genera la tirilla/recibo de una venta.
type ReceiptPDFGenerator interface {
	GenerateReceiptPDF(ctx context.Context, sale *entity.Sale, lines []ReceiptLine) ([]byte, error)
}
