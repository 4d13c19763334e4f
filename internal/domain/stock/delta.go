// Package stock contiene la regla pura del libro de inventario: qué signo
// aplica cada tipo de movimiento y qué cantidades son válidas. No toca
// persistencia para que sea testeable en aislamiento.
package stock

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/agropos-api/internal/domain"
	"github.com/jhoicas/agropos-api/internal/domain/entity"
)

// ResolveDelta valida la cantidad según el tipo de movimiento y devuelve el
// delta con signo a aplicar sobre el stock:
//
//	entry      → +quantity (quantity > 0 estricto)
//	exit       → -quantity (quantity > 0 estricto)
//	adjustment → quantity tal cual (el caller trae el signo; cero inválido)
func ResolveDelta(movementType string, quantity decimal.Decimal) (decimal.Decimal, error) {
	switch movementType {
	case entity.MovementTypeEntry:
		if !quantity.GreaterThan(decimal.Zero) {
			return decimal.Zero, fmt.Errorf("entry requiere cantidad > 0: %w", domain.ErrInvalidInput)
		}
		return quantity, nil
	case entity.MovementTypeExit:
		if !quantity.GreaterThan(decimal.Zero) {
			return decimal.Zero, fmt.Errorf("exit requiere cantidad > 0: %w", domain.ErrInvalidInput)
		}
		return quantity.Neg(), nil
	case entity.MovementTypeAdjustment:
		if quantity.IsZero() {
			return decimal.Zero, fmt.Errorf("adjustment requiere cantidad distinta de cero: %w", domain.ErrInvalidInput)
		}
		return quantity, nil
	default:
		return decimal.Zero, fmt.Errorf("tipo de movimiento %q desconocido: %w", movementType, domain.ErrInvalidInput)
	}
}

// Apply calcula el stock resultante de aplicar un delta. Falla con
// ErrInsufficientStock si el resultado sería negativo.
func Apply(current, delta decimal.Decimal) (decimal.Decimal, error) {
	newStock := current.Add(delta)
	if newStock.IsNegative() {
		return decimal.Zero, domain.ErrInsufficientStock
	}
	return newStock, nil
}
