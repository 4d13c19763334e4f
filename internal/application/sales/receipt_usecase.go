package sales

import (
	"context"

	"github.com/jhoicas/agropos-api/internal/domain"
	"github.com/jhoicas/agropos-api/internal/domain/repository"
)

// ReceiptUseCase genera el recibo PDF de una venta (tirilla de mostrador).
type ReceiptUseCase struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	generator   ReceiptPDFGenerator
}

// NewReceiptUseCase construye el caso de uso.
func NewReceiptUseCase(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	generator ReceiptPDFGenerator,
) *ReceiptUseCase {
	return &ReceiptUseCase{saleRepo: saleRepo, productRepo: productRepo, generator: generator}
}

// GetReceiptPDF resuelve venta, detalles y nombres de producto, y delega la
// generación del PDF.
func (uc *ReceiptUseCase) GetReceiptPDF(ctx context.Context, saleID string) ([]byte, error) {
	sale, err := uc.saleRepo.GetByID(saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	details, err := uc.saleRepo.GetDetailsBySaleID(saleID)
	if err != nil {
		return nil, err
	}

	lines := make([]ReceiptLine, 0, len(details))
	for _, d := range details {
		line := ReceiptLine{Detail: d}
		if p, err := uc.productRepo.GetByID(d.ProductID); err == nil && p != nil {
			line.ProductName = p.Name
			line.UnitMeasure = p.UnitMeasure
		}
		lines = append(lines, line)
	}
	return uc.generator.GenerateReceiptPDF(ctx, sale, lines)
}
