package stock_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appstock "github.com/jhoicas/agropos-api/internal/application/stock"
	"github.com/jhoicas/agropos-api/internal/domain"
	"github.com/jhoicas/agropos-api/internal/domain/entity"
	"github.com/jhoicas/agropos-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria: repos + tx runner con snapshot/rollback
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	products  map[string]*entity.Product
	movements []*entity.InventoryMovement

	failMovementCreate bool // simula fallo de storage al escribir el movimiento
}

func newMemStore(products ...*entity.Product) *memStore {
	s := &memStore{products: make(map[string]*entity.Product)}
	for _, p := range products {
		cp := *p
		s.products[p.ID] = &cp
	}
	return s
}

func (s *memStore) snapshot() *memStore {
	cp := newMemStore()
	for id, p := range s.products {
		c := *p
		cp.products[id] = &c
	}
	cp.movements = append([]*entity.InventoryMovement(nil), s.movements...)
	return cp
}

func (s *memStore) restore(snap *memStore) {
	s.products = snap.products
	s.movements = snap.movements
}

type memProductRepo struct{ s *memStore }

func (r *memProductRepo) Create(p *entity.Product) error { r.s.products[p.ID] = p; return nil }
func (r *memProductRepo) GetByID(id string) (*entity.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}
func (r *memProductRepo) GetBySKU(sku string) (*entity.Product, error) {
	for _, p := range r.s.products {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}
func (r *memProductRepo) Update(p *entity.Product) error { r.s.products[p.ID] = p; return nil }
func (r *memProductRepo) GetForUpdate(id string) (*entity.Product, error) {
	return r.GetByID(id)
}
func (r *memProductRepo) UpdateStock(productID string, stock decimal.Decimal) error {
	p, ok := r.s.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Stock = stock
	return nil
}
func (r *memProductRepo) List(onlyActive bool, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.s.products {
		if onlyActive && !p.Active {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
func (r *memProductRepo) ListLowStock() ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.s.products {
		if p.Active && p.IsLowStock() {
			out = append(out, p)
		}
	}
	return out, nil
}
func (r *memProductRepo) Delete(id string) error {
	p, ok := r.s.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Active = false
	return nil
}

type memMovementRepo struct{ s *memStore }

func (r *memMovementRepo) Create(m *entity.InventoryMovement) error {
	if r.s.failMovementCreate {
		return errors.New("storage caído")
	}
	r.s.movements = append(r.s.movements, m)
	return nil
}
func (r *memMovementRepo) GetByID(id string) (*entity.InventoryMovement, error) {
	for _, m := range r.s.movements {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, nil
}
func (r *memMovementRepo) ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	for _, m := range r.s.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}
func (r *memMovementRepo) ListRecent(limit int) ([]*entity.InventoryMovement, error) {
	return r.s.movements, nil
}

// memTxRunner clona el estado antes de ejecutar fn y lo restaura si fn falla,
// emulando el commit/rollback del runner real.
type memTxRunner struct{ s *memStore }

func (t *memTxRunner) Run(ctx context.Context, fn func(
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	snap := t.s.snapshot()
	if err := fn(&memMovementRepo{s: t.s}, &memProductRepo{s: t.s}); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

func testProduct(id string, stock string) *entity.Product {
	return &entity.Product{
		ID:       id,
		SKU:      "SKU-" + id,
		Name:     "Producto " + id,
		Stock:    decimal.RequireFromString(stock),
		MinStock: decimal.RequireFromString("2"),
		Active:   true,
	}
}

const testUserID = "user-1"

// ──────────────────────────────────────────────────────────────────────────────
// Tests ApplyMovement
// ──────────────────────────────────────────────────────────────────────────────

// Entrada: suma la cantidad y deja snapshot previous/new coherente.
func TestApplyMovement_EntrySumaStock(t *testing.T) {
	store := newMemStore(testProduct("p1", "10"))
	uc := appstock.NewLedgerUseCase(&memTxRunner{s: store})

	mov, err := uc.ApplyMovement(context.Background(), appstock.MovementInputDTO{
		ProductID: "p1",
		Type:      entity.MovementTypeEntry,
		Quantity:  decimal.RequireFromString("5"),
		Reason:    "Compra a proveedor",
		UserID:    testUserID,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.MovementTypeEntry, mov.Type)
	assert.True(t, mov.Quantity.Equal(decimal.RequireFromString("5")))
	assert.True(t, mov.PreviousStock.Equal(decimal.RequireFromString("10")))
	assert.True(t, mov.NewStock.Equal(decimal.RequireFromString("15")))
	assert.True(t, store.products["p1"].Stock.Equal(decimal.RequireFromString("15")),
		"el stock del producto debe coincidir con new_stock del movimiento")
	assert.Len(t, store.movements, 1)
}

// Salida con stock suficiente: resta y registra con cantidad sin signo.
func TestApplyMovement_ExitRestaStock(t *testing.T) {
	store := newMemStore(testProduct("p1", "10"))
	uc := appstock.NewLedgerUseCase(&memTxRunner{s: store})

	mov, err := uc.ApplyMovement(context.Background(), appstock.MovementInputDTO{
		ProductID: "p1",
		Type:      entity.MovementTypeExit,
		Quantity:  decimal.RequireFromString("4"),
		Reason:    "Merma",
		UserID:    testUserID,
	})
	require.NoError(t, err)

	assert.True(t, mov.Quantity.Equal(decimal.RequireFromString("4")), "la cantidad se guarda sin signo")
	assert.True(t, mov.NewStock.Equal(decimal.RequireFromString("6")))
	assert.True(t, store.products["p1"].Stock.Equal(decimal.RequireFromString("6")))
}

// Escenario: dos salidas concurrentes secuencializadas por el lock de fila.
// La primera pasa, la segunda falla y el stock queda exactamente en 2.
func TestApplyMovement_SalidasSecuenciales_SegundaSinStock(t *testing.T) {
	store := newMemStore(testProduct("p1", "10"))
	uc := appstock.NewLedgerUseCase(&memTxRunner{s: store})

	exit := func(qty string) (*entity.InventoryMovement, error) {
		return uc.ApplyMovement(context.Background(), appstock.MovementInputDTO{
			ProductID: "p1",
			Type:      entity.MovementTypeExit,
			Quantity:  decimal.RequireFromString(qty),
			UserID:    testUserID,
		})
	}

	_, err := exit("8")
	require.NoError(t, err)

	_, err = exit("5")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.True(t, store.products["p1"].Stock.Equal(decimal.RequireFromString("2")),
		"la salida fallida no debe modificar el stock")
	assert.Len(t, store.movements, 1, "la salida fallida no debe dejar movimiento")
}

// Ajuste negativo que dejaría stock < 0: falla y no persiste nada.
func TestApplyMovement_AjusteNegativoInsuficiente(t *testing.T) {
	store := newMemStore(testProduct("p1", "3"))
	uc := appstock.NewLedgerUseCase(&memTxRunner{s: store})

	_, err := uc.ApplyMovement(context.Background(), appstock.MovementInputDTO{
		ProductID: "p1",
		Type:      entity.MovementTypeAdjustment,
		Quantity:  decimal.RequireFromString("-5"),
		Reason:    "Conteo físico",
		UserID:    testUserID,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, store.products["p1"].Stock.Equal(decimal.RequireFromString("3")))
	assert.Empty(t, store.movements)
}

// Ajuste que deja el stock exactamente en cero: permitido.
func TestApplyMovement_AjusteHastaCero(t *testing.T) {
	store := newMemStore(testProduct("p1", "3"))
	uc := appstock.NewLedgerUseCase(&memTxRunner{s: store})

	mov, err := uc.ApplyMovement(context.Background(), appstock.MovementInputDTO{
		ProductID: "p1",
		Type:      entity.MovementTypeAdjustment,
		Quantity:  decimal.RequireFromString("-3"),
		Reason:    "Conteo físico",
		UserID:    testUserID,
	})
	require.NoError(t, err)
	assert.True(t, mov.NewStock.IsZero())
	assert.True(t, store.products["p1"].Stock.IsZero())
}

// Producto inexistente → ErrNotFound.
func TestApplyMovement_ProductoInexistente(t *testing.T) {
	store := newMemStore()
	uc := appstock.NewLedgerUseCase(&memTxRunner{s: store})

	_, err := uc.ApplyMovement(context.Background(), appstock.MovementInputDTO{
		ProductID: "no-existe",
		Type:      entity.MovementTypeEntry,
		Quantity:  decimal.RequireFromString("1"),
		UserID:    testUserID,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Validaciones de entrada: tipo desconocido, cantidad inválida, campos vacíos.
func TestApplyMovement_EntradasInvalidas(t *testing.T) {
	store := newMemStore(testProduct("p1", "10"))
	uc := appstock.NewLedgerUseCase(&memTxRunner{s: store})

	cases := []struct {
		name  string
		input appstock.MovementInputDTO
	}{
		{"tipo desconocido", appstock.MovementInputDTO{
			ProductID: "p1", Type: "transfer", Quantity: decimal.RequireFromString("1"), UserID: testUserID,
		}},
		{"entry cantidad cero", appstock.MovementInputDTO{
			ProductID: "p1", Type: entity.MovementTypeEntry, Quantity: decimal.Zero, UserID: testUserID,
		}},
		{"exit cantidad negativa", appstock.MovementInputDTO{
			ProductID: "p1", Type: entity.MovementTypeExit, Quantity: decimal.RequireFromString("-2"), UserID: testUserID,
		}},
		{"adjustment cantidad cero", appstock.MovementInputDTO{
			ProductID: "p1", Type: entity.MovementTypeAdjustment, Quantity: decimal.Zero, UserID: testUserID,
		}},
		{"sin product_id", appstock.MovementInputDTO{
			Type: entity.MovementTypeEntry, Quantity: decimal.RequireFromString("1"), UserID: testUserID,
		}},
		{"sin user_id", appstock.MovementInputDTO{
			ProductID: "p1", Type: entity.MovementTypeEntry, Quantity: decimal.RequireFromString("1"),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.ApplyMovement(context.Background(), tc.input)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Empty(t, store.movements, "ninguna entrada inválida debe dejar movimiento")
	assert.True(t, store.products["p1"].Stock.Equal(decimal.RequireFromString("10")))
}

// Los errores de validación describen la restricción que falló, no solo el
// sentinela: el caller HTTP propaga el mensaje tal cual.
func TestApplyMovement_ErrorDeValidacionNombraLaRestriccion(t *testing.T) {
	store := newMemStore(testProduct("p1", "10"))
	uc := appstock.NewLedgerUseCase(&memTxRunner{s: store})

	cases := []struct {
		name     string
		input    appstock.MovementInputDTO
		contains string
	}{
		{"sin product_id", appstock.MovementInputDTO{
			Type: entity.MovementTypeEntry, Quantity: decimal.RequireFromString("1"), UserID: testUserID,
		}, "product_id"},
		{"sin user_id", appstock.MovementInputDTO{
			ProductID: "p1", Type: entity.MovementTypeEntry, Quantity: decimal.RequireFromString("1"),
		}, "user_id"},
		{"reason demasiado largo", appstock.MovementInputDTO{
			ProductID: "p1", Type: entity.MovementTypeEntry, Quantity: decimal.RequireFromString("1"),
			UserID: testUserID, Reason: strings.Repeat("x", 256),
		}, "reason"},
		{"tipo desconocido", appstock.MovementInputDTO{
			ProductID: "p1", Type: "transfer", Quantity: decimal.RequireFromString("1"), UserID: testUserID,
		}, "transfer"},
		{"exit cantidad negativa", appstock.MovementInputDTO{
			ProductID: "p1", Type: entity.MovementTypeExit, Quantity: decimal.RequireFromString("-2"), UserID: testUserID,
		}, "exit"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.ApplyMovement(context.Background(), tc.input)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Contains(t, err.Error(), tc.contains)
		})
	}
}

// Si falla la escritura del movimiento, el stock ya actualizado se revierte:
// stock y ledger comprometen juntos o ninguno.
func TestApplyMovement_RollbackSiFallaElMovimiento(t *testing.T) {
	store := newMemStore(testProduct("p1", "10"))
	store.failMovementCreate = true
	uc := appstock.NewLedgerUseCase(&memTxRunner{s: store})

	_, err := uc.ApplyMovement(context.Background(), appstock.MovementInputDTO{
		ProductID: "p1",
		Type:      entity.MovementTypeEntry,
		Quantity:  decimal.RequireFromString("5"),
		UserID:    testUserID,
	})
	require.Error(t, err)

	assert.True(t, store.products["p1"].Stock.Equal(decimal.RequireFromString("10")),
		"el stock debe revertirse si el movimiento no se pudo escribir")
	assert.Empty(t, store.movements)
}

// Invariante: tras una secuencia de movimientos, stock == suma con signo de
// los movimientos partiendo del inicial.
func TestApplyMovement_StockIgualASumaDeMovimientos(t *testing.T) {
	store := newMemStore(testProduct("p1", "0"))
	uc := appstock.NewLedgerUseCase(&memTxRunner{s: store})

	seq := []appstock.MovementInputDTO{
		{ProductID: "p1", Type: entity.MovementTypeEntry, Quantity: decimal.RequireFromString("20"), UserID: testUserID},
		{ProductID: "p1", Type: entity.MovementTypeExit, Quantity: decimal.RequireFromString("7.5"), UserID: testUserID},
		{ProductID: "p1", Type: entity.MovementTypeAdjustment, Quantity: decimal.RequireFromString("-2"), UserID: testUserID},
		{ProductID: "p1", Type: entity.MovementTypeEntry, Quantity: decimal.RequireFromString("1.25"), UserID: testUserID},
	}
	for _, in := range seq {
		_, err := uc.ApplyMovement(context.Background(), in)
		require.NoError(t, err)
	}

	sum := decimal.Zero
	for _, m := range store.movements {
		switch m.Type {
		case entity.MovementTypeEntry:
			sum = sum.Add(m.Quantity)
		case entity.MovementTypeExit:
			sum = sum.Sub(m.Quantity)
		case entity.MovementTypeAdjustment:
			// en el ledger la cantidad queda sin signo; el signo se reconstruye
			// con previous/new
			sum = sum.Add(m.NewStock.Sub(m.PreviousStock))
		}
	}
	assert.True(t, store.products["p1"].Stock.Equal(sum),
		"stock %s != suma de movimientos %s", store.products["p1"].Stock, sum)

	// Encadenamiento de snapshots: previous de cada movimiento == new del anterior
	for i := 1; i < len(store.movements); i++ {
		assert.True(t, store.movements[i].PreviousStock.Equal(store.movements[i-1].NewStock))
	}
}
