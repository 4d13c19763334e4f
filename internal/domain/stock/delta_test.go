package stock_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agropos-api/internal/domain"
	"github.com/jhoicas/agropos-api/internal/domain/entity"
	"github.com/jhoicas/agropos-api/internal/domain/stock"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

// entry suma, exit resta, adjustment respeta el signo del caller.
func TestResolveDelta_Signos(t *testing.T) {
	d, err := stock.ResolveDelta(entity.MovementTypeEntry, dec("5"))
	require.NoError(t, err)
	assert.True(t, d.Equal(dec("5")), "entry debe dar delta +5")

	d, err = stock.ResolveDelta(entity.MovementTypeExit, dec("3.5"))
	require.NoError(t, err)
	assert.True(t, d.Equal(dec("-3.5")), "exit debe dar delta -3.5")

	d, err = stock.ResolveDelta(entity.MovementTypeAdjustment, dec("-3"))
	require.NoError(t, err)
	assert.True(t, d.Equal(dec("-3")), "adjustment conserva el signo del caller")

	d, err = stock.ResolveDelta(entity.MovementTypeAdjustment, dec("2"))
	require.NoError(t, err)
	assert.True(t, d.Equal(dec("2")))
}

func TestResolveDelta_CantidadesInvalidas(t *testing.T) {
	cases := []struct {
		name     string
		movType  string
		quantity string
	}{
		{"entry cero", entity.MovementTypeEntry, "0"},
		{"entry negativa", entity.MovementTypeEntry, "-1"},
		{"exit cero", entity.MovementTypeExit, "0"},
		{"exit negativa", entity.MovementTypeExit, "-2"},
		{"adjustment cero", entity.MovementTypeAdjustment, "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := stock.ResolveDelta(tc.movType, dec(tc.quantity))
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestResolveDelta_TipoDesconocido(t *testing.T) {
	_, err := stock.ResolveDelta("transfer", dec("1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApply_NuncaNegativo(t *testing.T) {
	s, err := stock.Apply(dec("10"), dec("-10"))
	require.NoError(t, err)
	assert.True(t, s.IsZero(), "10 - 10 debe dejar stock exactamente en 0")

	_, err = stock.Apply(dec("0"), dec("-1"))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	s, err = stock.Apply(dec("5"), dec("-3"))
	require.NoError(t, err)
	assert.True(t, s.Equal(dec("2")))
}
