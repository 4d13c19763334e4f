package sales_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agropos-api/internal/application/dto"
	appsales "github.com/jhoicas/agropos-api/internal/application/sales"
	appstock "github.com/jhoicas/agropos-api/internal/application/stock"
	"github.com/jhoicas/agropos-api/internal/domain"
	"github.com/jhoicas/agropos-api/internal/domain/entity"
	"github.com/jhoicas/agropos-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria (productos, movimientos, ventas) + tx runner con rollback
// ──────────────────────────────────────────────────────────────────────────────

type saleStore struct {
	products  map[string]*entity.Product
	movements []*entity.InventoryMovement
	sales     map[string]*entity.Sale
	details   map[string][]*entity.SaleDetail

	failDetailCreate bool // simula fallo de storage al escribir un detalle

	// cancelAfterRead emula una cancelación concurrente que comitea entre la
	// lectura de la venta y el cambio de estado: tras devolver la copia
	// completed, la venta almacenada queda cancelled.
	cancelAfterRead bool
}

func newSaleStore(products ...*entity.Product) *saleStore {
	s := &saleStore{
		products: make(map[string]*entity.Product),
		sales:    make(map[string]*entity.Sale),
		details:  make(map[string][]*entity.SaleDetail),
	}
	for _, p := range products {
		cp := *p
		s.products[p.ID] = &cp
	}
	return s
}

func (s *saleStore) snapshot() *saleStore {
	cp := newSaleStore()
	for id, p := range s.products {
		c := *p
		cp.products[id] = &c
	}
	cp.movements = append([]*entity.InventoryMovement(nil), s.movements...)
	for id, sale := range s.sales {
		c := *sale
		cp.sales[id] = &c
	}
	for id, ds := range s.details {
		cp.details[id] = append([]*entity.SaleDetail(nil), ds...)
	}
	return cp
}

func (s *saleStore) restore(snap *saleStore) {
	s.products = snap.products
	s.movements = snap.movements
	s.sales = snap.sales
	s.details = snap.details
}

type fakeProductRepo struct{ s *saleStore }

func (r *fakeProductRepo) Create(p *entity.Product) error { r.s.products[p.ID] = p; return nil }
func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}
func (r *fakeProductRepo) GetBySKU(sku string) (*entity.Product, error) { return nil, nil }
func (r *fakeProductRepo) Update(p *entity.Product) error               { r.s.products[p.ID] = p; return nil }
func (r *fakeProductRepo) GetForUpdate(id string) (*entity.Product, error) {
	return r.GetByID(id)
}
func (r *fakeProductRepo) UpdateStock(productID string, stock decimal.Decimal) error {
	p, ok := r.s.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Stock = stock
	return nil
}
func (r *fakeProductRepo) List(onlyActive bool, limit, offset int) ([]*entity.Product, error) {
	return nil, nil
}
func (r *fakeProductRepo) ListLowStock() ([]*entity.Product, error) { return nil, nil }
func (r *fakeProductRepo) Delete(id string) error                   { return nil }

type fakeMovementRepo struct{ s *saleStore }

func (r *fakeMovementRepo) Create(m *entity.InventoryMovement) error {
	r.s.movements = append(r.s.movements, m)
	return nil
}
func (r *fakeMovementRepo) GetByID(id string) (*entity.InventoryMovement, error) { return nil, nil }
func (r *fakeMovementRepo) ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	return nil, nil
}
func (r *fakeMovementRepo) ListRecent(limit int) ([]*entity.InventoryMovement, error) {
	return r.s.movements, nil
}

type fakeSaleRepo struct{ s *saleStore }

func (r *fakeSaleRepo) Create(sale *entity.Sale) error {
	cp := *sale
	r.s.sales[sale.ID] = &cp
	return nil
}
func (r *fakeSaleRepo) CreateDetail(d *entity.SaleDetail) error {
	if r.s.failDetailCreate {
		return errors.New("storage caído")
	}
	r.s.details[d.SaleID] = append(r.s.details[d.SaleID], d)
	return nil
}
func (r *fakeSaleRepo) GetByID(id string) (*entity.Sale, error) {
	sale, ok := r.s.sales[id]
	if !ok {
		return nil, nil
	}
	cp := *sale
	if r.s.cancelAfterRead && sale.Status == entity.SaleStatusCompleted {
		sale.Status = entity.SaleStatusCancelled
	}
	return &cp, nil
}
func (r *fakeSaleRepo) GetDetailsBySaleID(saleID string) ([]*entity.SaleDetail, error) {
	return r.s.details[saleID], nil
}
func (r *fakeSaleRepo) UpdateStatus(saleID, status string, updatedAt time.Time) error {
	sale, ok := r.s.sales[saleID]
	if !ok || sale.Status == status {
		return domain.ErrConflict
	}
	sale.Status = status
	sale.UpdatedAt = updatedAt
	return nil
}
func (r *fakeSaleRepo) LastNumberOfDay(dayPrefix string) (string, error) {
	last := ""
	for _, s := range r.s.sales {
		if strings.HasPrefix(s.Number, dayPrefix) && s.Number > last {
			last = s.Number
		}
	}
	return last, nil
}
func (r *fakeSaleRepo) List(from, to *time.Time, limit, offset int) ([]*entity.Sale, error) {
	var out []*entity.Sale
	for _, s := range r.s.sales {
		out = append(out, s)
	}
	return out, nil
}

// fakeSaleTxRunner clona el estado antes de fn y lo restaura si fn falla.
type fakeSaleTxRunner struct{ s *saleStore }

func (t *fakeSaleTxRunner) RunSale(ctx context.Context, fn func(
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
) error) error {
	snap := t.s.snapshot()
	if err := fn(&fakeMovementRepo{s: t.s}, &fakeProductRepo{s: t.s}, &fakeSaleRepo{s: t.s}); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

func newSaleUseCase(store *saleStore) *appsales.SaleUseCase {
	ledger := appstock.NewLedgerUseCase(nil) // en los tests siempre se usa la vía *InTx
	return appsales.NewSaleUseCase(
		&fakeSaleTxRunner{s: store},
		ledger,
		&fakeProductRepo{s: store},
		&fakeSaleRepo{s: store},
	)
}

func catalogProduct(id, name, price, stock string) *entity.Product {
	return &entity.Product{
		ID:        id,
		SKU:       "SKU-" + id,
		Name:      name,
		SalePrice: decimal.RequireFromString(price),
		Stock:     decimal.RequireFromString(stock),
		Active:    true,
	}
}

const sellerID = "vendedor-1"

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// Tests RecordSale
// ──────────────────────────────────────────────────────────────────────────────

// Venta de dos líneas: totales correctos, una salida del ledger por línea y
// stock descontado.
func TestRecordSale_DosLineas(t *testing.T) {
	store := newSaleStore(
		catalogProduct("p1", "Concentrado", "10.00", "8"),
		catalogProduct("p2", "Ivermectina", "2.50", "20"),
	)
	uc := newSaleUseCase(store)

	out, err := uc.RecordSale(context.Background(), sellerID, dto.CreateSaleRequest{
		Items: []dto.SaleItemRequest{
			{ProductID: "p1", Quantity: dec("2")},
			{ProductID: "p2", Quantity: dec("2")},
		},
		PaymentMethod: entity.PaymentCash,
	})
	require.NoError(t, err)

	assert.True(t, out.Subtotal.Equal(dec("25.00")), "subtotal = 2×10 + 2×2.50")
	assert.True(t, out.Total.Equal(dec("25.00")), "sin impuesto, total = subtotal")
	assert.True(t, out.Tax.IsZero())
	assert.Equal(t, entity.SaleStatusCompleted, out.Status)
	assert.Len(t, out.Details, 2)
	assert.Equal(t, "Concentrado", out.Details[0].ProductName)

	// Formato del consecutivo: prefijo del día + 0001
	assert.Equal(t, appsales.DayPrefix(time.Now())+"0001", out.Number)

	// Stock descontado y dos salidas del ledger referenciando la venta
	assert.True(t, store.products["p1"].Stock.Equal(dec("6")))
	assert.True(t, store.products["p2"].Stock.Equal(dec("18")))
	require.Len(t, store.movements, 2)
	for _, m := range store.movements {
		assert.Equal(t, entity.MovementTypeExit, m.Type)
		assert.Equal(t, out.ID, m.SaleID)
		assert.Equal(t, "Venta #"+out.Number, m.Reason)
	}
}

// El consecutivo incrementa dentro del día por cada venta.
func TestRecordSale_ConsecutivoIncrementa(t *testing.T) {
	store := newSaleStore(catalogProduct("p1", "Concentrado", "10.00", "50"))
	uc := newSaleUseCase(store)

	sell := func() *dto.SaleResponse {
		out, err := uc.RecordSale(context.Background(), sellerID, dto.CreateSaleRequest{
			Items:         []dto.SaleItemRequest{{ProductID: "p1", Quantity: dec("1")}},
			PaymentMethod: entity.PaymentCash,
		})
		require.NoError(t, err)
		return out
	}

	first := sell()
	second := sell()
	prefix := appsales.DayPrefix(time.Now())
	assert.Equal(t, prefix+"0001", first.Number)
	assert.Equal(t, prefix+"0002", second.Number)
}

// Precio explícito en la línea prevalece sobre el precio de catálogo.
func TestRecordSale_PrecioExplicito(t *testing.T) {
	store := newSaleStore(catalogProduct("p1", "Concentrado", "10.00", "10"))
	uc := newSaleUseCase(store)

	out, err := uc.RecordSale(context.Background(), sellerID, dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{{ProductID: "p1", Quantity: dec("3"), UnitPrice: dec("9.50")}},
		PaymentMethod: entity.PaymentCard,
	})
	require.NoError(t, err)
	assert.True(t, out.Total.Equal(dec("28.50")))
}

// Una línea sin stock suficiente aborta toda la venta: nada persiste y el
// error nombra el producto ofensor.
func TestRecordSale_StockInsuficienteAbortaTodo(t *testing.T) {
	store := newSaleStore(
		catalogProduct("p1", "Concentrado", "10.00", "8"),
		catalogProduct("p2", "Ivermectina", "2.50", "1"),
	)
	uc := newSaleUseCase(store)

	_, err := uc.RecordSale(context.Background(), sellerID, dto.CreateSaleRequest{
		Items: []dto.SaleItemRequest{
			{ProductID: "p1", Quantity: dec("2")},
			{ProductID: "p2", Quantity: dec("5")},
		},
		PaymentMethod: entity.PaymentCash,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "Ivermectina", "el error debe nombrar el producto sin stock")

	assert.Empty(t, store.sales, "no debe quedar venta")
	assert.Empty(t, store.movements, "no debe quedar movimiento")
	assert.True(t, store.products["p1"].Stock.Equal(dec("8")), "el stock no debe cambiar")
	assert.True(t, store.products["p2"].Stock.Equal(dec("1")))
}

// Fallo de storage a mitad de la fase de commit: rollback total.
func TestRecordSale_FalloDeStorageRevierteTodo(t *testing.T) {
	store := newSaleStore(catalogProduct("p1", "Concentrado", "10.00", "8"))
	store.failDetailCreate = true
	uc := newSaleUseCase(store)

	_, err := uc.RecordSale(context.Background(), sellerID, dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{{ProductID: "p1", Quantity: dec("2")}},
		PaymentMethod: entity.PaymentCash,
	})
	require.Error(t, err)

	assert.Empty(t, store.sales)
	assert.Empty(t, store.movements)
	assert.True(t, store.products["p1"].Stock.Equal(dec("8")))
}

// Validaciones: sin líneas, medio de pago inválido, cantidad no positiva,
// producto inactivo.
func TestRecordSale_EntradasInvalidas(t *testing.T) {
	inactive := catalogProduct("p9", "Descontinuado", "5.00", "10")
	inactive.Active = false
	store := newSaleStore(catalogProduct("p1", "Concentrado", "10.00", "8"), inactive)
	uc := newSaleUseCase(store)

	cases := []struct {
		name string
		in   dto.CreateSaleRequest
	}{
		{"sin items", dto.CreateSaleRequest{PaymentMethod: entity.PaymentCash}},
		{"pago inválido", dto.CreateSaleRequest{
			Items:         []dto.SaleItemRequest{{ProductID: "p1", Quantity: dec("1")}},
			PaymentMethod: "bitcoin",
		}},
		{"cantidad cero", dto.CreateSaleRequest{
			Items:         []dto.SaleItemRequest{{ProductID: "p1", Quantity: decimal.Zero}},
			PaymentMethod: entity.PaymentCash,
		}},
		{"producto inactivo", dto.CreateSaleRequest{
			Items:         []dto.SaleItemRequest{{ProductID: "p9", Quantity: dec("1")}},
			PaymentMethod: entity.PaymentCash,
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.RecordSale(context.Background(), sellerID, tc.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Empty(t, store.sales)
}

func TestRecordSale_ProductoInexistente(t *testing.T) {
	store := newSaleStore()
	uc := newSaleUseCase(store)

	_, err := uc.RecordSale(context.Background(), sellerID, dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{{ProductID: "fantasma", Quantity: dec("1")}},
		PaymentMethod: entity.PaymentCash,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests CancelSale
// ──────────────────────────────────────────────────────────────────────────────

// Cancelar restituye el stock exacto con entradas del ledger y marca cancelled.
func TestCancelSale_RestituyeStock(t *testing.T) {
	store := newSaleStore(
		catalogProduct("p1", "Concentrado", "10.00", "8"),
		catalogProduct("p2", "Ivermectina", "2.50", "20"),
	)
	uc := newSaleUseCase(store)

	sale, err := uc.RecordSale(context.Background(), sellerID, dto.CreateSaleRequest{
		Items: []dto.SaleItemRequest{
			{ProductID: "p1", Quantity: dec("3")},
			{ProductID: "p2", Quantity: dec("4")},
		},
		PaymentMethod: entity.PaymentTransfer,
	})
	require.NoError(t, err)
	require.True(t, store.products["p1"].Stock.Equal(dec("5")))

	out, err := uc.CancelSale(context.Background(), sale.ID, sellerID)
	require.NoError(t, err)

	assert.Equal(t, entity.SaleStatusCancelled, out.Status)
	assert.True(t, store.products["p1"].Stock.Equal(dec("8")), "stock de p1 restituido")
	assert.True(t, store.products["p2"].Stock.Equal(dec("20")), "stock de p2 restituido")

	// 2 salidas de la venta + 2 entradas de la cancelación; el ledger nunca
	// borra filas
	require.Len(t, store.movements, 4)
	entries := 0
	for _, m := range store.movements {
		if m.Type == entity.MovementTypeEntry {
			entries++
			assert.Equal(t, sale.ID, m.SaleID)
			assert.Equal(t, "Cancelación de venta #"+sale.Number, m.Reason)
		}
	}
	assert.Equal(t, 2, entries)
}

// Cancelar dos veces: la segunda falla con ErrConflict y no duplica entradas.
func TestCancelSale_DobleCancelacion(t *testing.T) {
	store := newSaleStore(catalogProduct("p1", "Concentrado", "10.00", "8"))
	uc := newSaleUseCase(store)

	sale, err := uc.RecordSale(context.Background(), sellerID, dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{{ProductID: "p1", Quantity: dec("2")}},
		PaymentMethod: entity.PaymentCash,
	})
	require.NoError(t, err)

	_, err = uc.CancelSale(context.Background(), sale.ID, sellerID)
	require.NoError(t, err)

	_, err = uc.CancelSale(context.Background(), sale.ID, sellerID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	assert.True(t, store.products["p1"].Stock.Equal(dec("8")),
		"la doble cancelación no debe tocar el stock")
	assert.Len(t, store.movements, 2, "sin movimientos extra por el reintento")
}

// Dos cancelaciones en carrera: la que llega segunda lee la venta todavía
// completed, pero el cambio de estado condicional toca cero filas y su
// transacción completa se revierte — el stock se restituye una sola vez.
func TestCancelSale_CancelacionConcurrenteNoRestituyeDoble(t *testing.T) {
	store := newSaleStore(catalogProduct("p1", "Concentrado", "10.00", "8"))
	uc := newSaleUseCase(store)

	sale, err := uc.RecordSale(context.Background(), sellerID, dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{{ProductID: "p1", Quantity: dec("2")}},
		PaymentMethod: entity.PaymentCash,
	})
	require.NoError(t, err)
	require.True(t, store.products["p1"].Stock.Equal(dec("6")))

	// La otra cancelación comitea entre nuestra lectura y el UPDATE de estado
	store.cancelAfterRead = true
	_, err = uc.CancelSale(context.Background(), sale.ID, sellerID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	assert.True(t, store.products["p1"].Stock.Equal(dec("6")),
		"la cancelación perdedora no debe tocar el stock")
	assert.Len(t, store.movements, 2, "solo las salidas de la venta original")
}

func TestCancelSale_VentaInexistente(t *testing.T) {
	store := newSaleStore()
	uc := newSaleUseCase(store)

	_, err := uc.CancelSale(context.Background(), "no-existe", sellerID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Ciclo completo venta → cancelación: el producto vuelve exactamente a su
// stock original aunque haya habido ventas intermedias de otros productos.
func TestVentaYCancelacion_RoundTrip(t *testing.T) {
	store := newSaleStore(
		catalogProduct("p1", "Concentrado", "10.00", "15"),
		catalogProduct("p2", "Urea", "4.00", "30"),
	)
	uc := newSaleUseCase(store)

	first, err := uc.RecordSale(context.Background(), sellerID, dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{{ProductID: "p1", Quantity: dec("5")}},
		PaymentMethod: entity.PaymentCash,
	})
	require.NoError(t, err)

	_, err = uc.RecordSale(context.Background(), sellerID, dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{{ProductID: "p2", Quantity: dec("10")}},
		PaymentMethod: entity.PaymentCash,
	})
	require.NoError(t, err)

	_, err = uc.CancelSale(context.Background(), first.ID, sellerID)
	require.NoError(t, err)

	assert.True(t, store.products["p1"].Stock.Equal(dec("15")), "p1 vuelve a su stock original")
	assert.True(t, store.products["p2"].Stock.Equal(dec("20")), "p2 conserva su venta")
}
