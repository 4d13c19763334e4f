package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/agropos-api/internal/application/dto"
	"github.com/jhoicas/agropos-api/internal/domain"
	"github.com/jhoicas/agropos-api/internal/domain/entity"
	"github.com/jhoicas/agropos-api/internal/domain/repository"
)

// SaleUseCase crea y cancela ventas descontando/restituyendo inventario, todo
// dentro de una sola transacción por operación.
type SaleUseCase struct {
	txRunner    SaleTxRunner
	ledger      StockLedger
	productRepo repository.ProductRepository
	saleRepo    repository.SaleRepository
}

// NewSaleUseCase construye el caso de uso.
func NewSaleUseCase(
	txRunner SaleTxRunner,
	ledger StockLedger,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
) *SaleUseCase {
	return &SaleUseCase{
		txRunner:    txRunner,
		ledger:      ledger,
		productRepo: productRepo,
		saleRepo:    saleRepo,
	}
}

// RecordSale registra una venta: pre-chequea stock por línea (fuera de la tx,
// solo lectura, abortando todo si alguna línea no alcanza), y en la fase de
// commit genera el consecutivo, crea la cabecera completed, los detalles y una
// salida del ledger por línea con referencia a la venta. Cualquier fallo en la
// fase de commit revierte todos los escritos.
func (uc *SaleUseCase) RecordSale(ctx context.Context, userID string, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if userID == "" || len(in.Items) == 0 || len(in.Notes) > 255 {
		return nil, domain.ErrInvalidInput
	}
	if !entity.IsValidPaymentMethod(in.PaymentMethod) {
		return nil, domain.ErrInvalidInput
	}

	// Pre-chequeo por línea: producto existe, activo y con stock suficiente.
	// El bloqueo FOR UPDATE dentro de la tx re-verifica; esto corta temprano
	// con un mensaje que nombra el producto ofensor.
	productsByID := make(map[string]*entity.Product)
	for i := range in.Items {
		item := &in.Items[i]
		if item.ProductID == "" || !item.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		product, err := uc.productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		if !product.Active {
			return nil, fmt.Errorf("producto %q inactivo: %w", product.Name, domain.ErrInvalidInput)
		}
		if product.Stock.LessThan(item.Quantity) {
			return nil, fmt.Errorf("producto %q: %w", product.Name, domain.ErrInsufficientStock)
		}
		if item.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		if item.UnitPrice.IsZero() {
			in.Items[i].UnitPrice = product.SalePrice
		}
		productsByID[item.ProductID] = product
	}

	now := time.Now()
	saleID := uuid.New().String()
	var sale *entity.Sale
	var details []*entity.SaleDetail

	err := uc.txRunner.RunSale(ctx, func(
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
	) error {
		// 1) Consecutivo diario, dentro de la tx (mayor número del día + 1)
		last, err := saleRepo.LastNumberOfDay(DayPrefix(now))
		if err != nil {
			return err
		}
		number, err := NextNumber(now, last)
		if err != nil {
			return err
		}

		// 2) Totales: subtotal = Σ(qty × precio); sin impuesto, total = subtotal
		var subtotal decimal.Decimal
		for _, item := range in.Items {
			subtotal = subtotal.Add(item.Quantity.Mul(item.UnitPrice))
		}

		sale = &entity.Sale{
			ID:            saleID,
			Number:        number,
			Subtotal:      subtotal,
			Tax:           decimal.Zero,
			Total:         subtotal,
			PaymentMethod: in.PaymentMethod,
			Status:        entity.SaleStatusCompleted,
			UserID:        userID,
			Notes:         in.Notes,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := saleRepo.Create(sale); err != nil {
			return err
		}

		// 3) Detalle + salida del ledger por cada línea. Si el ledger falla
		// (ej: sin stock bajo concurrencia), rollback de toda la venta.
		reason := "Venta #" + number
		for _, item := range in.Items {
			detail := &entity.SaleDetail{
				ID:        uuid.New().String(),
				SaleID:    saleID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				Subtotal:  item.Quantity.Mul(item.UnitPrice),
			}
			if err := saleRepo.CreateDetail(detail); err != nil {
				return err
			}
			details = append(details, detail)

			if _, err := uc.ledger.ExitInTx(
				movRepo, productRepo,
				item.ProductID, item.Quantity,
				reason, userID, saleID, now,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return uc.toResponse(sale, details, productsByID), nil
}

// CancelSale cancela una venta completada: una entrada del ledger por cada
// detalle (restituye el stock exacto) y el estado pasa a cancelled, todo en
// una tx. Cancelar dos veces falla con ErrConflict y no toca el stock.
func (uc *SaleUseCase) CancelSale(ctx context.Context, saleID, userID string) (*dto.SaleResponse, error) {
	if saleID == "" || userID == "" {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	var sale *entity.Sale
	var details []*entity.SaleDetail

	err := uc.txRunner.RunSale(ctx, func(
		movRepo repository.InventoryMovementRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
	) error {
		s, err := saleRepo.GetByID(saleID)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.ErrNotFound
		}
		if s.Status == entity.SaleStatusCancelled {
			return domain.ErrConflict
		}

		// El cambio de estado va primero y es condicional (status <> cancelled):
		// si otra transacción canceló la misma venta entre la lectura y este
		// punto, el UPDATE toca cero filas y todo se revierte sin restituir
		// stock dos veces.
		if err := saleRepo.UpdateStatus(saleID, entity.SaleStatusCancelled, now); err != nil {
			return err
		}

		ds, err := saleRepo.GetDetailsBySaleID(saleID)
		if err != nil {
			return err
		}

		// Las entradas no pueden dejar stock negativo: la restitución siempre
		// procede salvo error de storage.
		reason := "Cancelación de venta #" + s.Number
		for _, d := range ds {
			if _, err := uc.ledger.EntryInTx(
				movRepo, productRepo,
				d.ProductID, d.Quantity,
				reason, userID, saleID, now,
			); err != nil {
				return err
			}
		}

		s.Status = entity.SaleStatusCancelled
		s.UpdatedAt = now
		sale = s
		details = ds
		return nil
	})
	if err != nil {
		return nil, err
	}

	return uc.toResponse(sale, details, nil), nil
}

// GetSale obtiene una venta por ID con su detalle completo.
func (uc *SaleUseCase) GetSale(ctx context.Context, id string) (*dto.SaleResponse, error) {
	sale, err := uc.saleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	details, err := uc.saleRepo.GetDetailsBySaleID(id)
	if err != nil {
		return nil, err
	}
	return uc.toResponse(sale, details, nil), nil
}

// List lista ventas por rango de fechas con paginación (solo cabeceras).
func (uc *SaleUseCase) List(ctx context.Context, from, to *time.Time, limit, offset int) (*dto.SaleListResponse, error) {
	list, err := uc.saleRepo.List(from, to, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *uc.toResponse(s, nil, nil))
	}
	return &dto.SaleListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func (uc *SaleUseCase) toResponse(sale *entity.Sale, details []*entity.SaleDetail, productsByID map[string]*entity.Product) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:            sale.ID,
		Number:        sale.Number,
		Subtotal:      sale.Subtotal,
		Tax:           sale.Tax,
		Total:         sale.Total,
		PaymentMethod: sale.PaymentMethod,
		Status:        sale.Status,
		UserID:        sale.UserID,
		Notes:         sale.Notes,
		CreatedAt:     sale.CreatedAt,
		Details:       make([]dto.SaleDetailResponse, 0, len(details)),
	}
	for _, d := range details {
		name := ""
		if productsByID != nil {
			if p := productsByID[d.ProductID]; p != nil {
				name = p.Name
			}
		} else if p, err := uc.productRepo.GetByID(d.ProductID); err == nil && p != nil {
			name = p.Name
		}
		resp.Details = append(resp.Details, dto.SaleDetailResponse{
			ID:          d.ID,
			ProductID:   d.ProductID,
			ProductName: name,
			Quantity:    d.Quantity,
			UnitPrice:   d.UnitPrice,
			Subtotal:    d.Subtotal,
		})
	}
	return resp
}
