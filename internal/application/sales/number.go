package sales

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/agropos-api/internal/domain"
)

// Formato del consecutivo de venta: YYYYMMDD + secuencia diaria de 4 dígitos
// con ceros a la izquierda (ej: 202602020001). La secuencia arranca en 1 cada
// día, a partir del mayor número existente con el prefijo del día.
const (
	saleSeqDigits = 4
	maxDailySeq   = 9999
)

// DayPrefix devuelve el prefijo YYYYMMDD del consecutivo para la fecha dada.
func DayPrefix(t time.Time) string {
	return t.Format("20060102")
}

// NextNumber calcula el siguiente consecutivo a partir del último número del
// día (vacío si aún no hay ventas). Un último número de otro día o malformado
// reinicia la secuencia en 1. Si la secuencia del día ya llegó a 9999 falla
// con ErrConflict: un número más ancho rompería el MAX sobre el prefijo y
// chocaría con el UNIQUE de sales.number.
func NextNumber(now time.Time, lastNumber string) (string, error) {
	prefix := DayPrefix(now)
	seq := 1
	if strings.HasPrefix(lastNumber, prefix) && len(lastNumber) == len(prefix)+saleSeqDigits {
		if n, err := strconv.Atoi(lastNumber[len(prefix):]); err == nil {
			seq = n + 1
		}
	}
	if seq > maxDailySeq {
		return "", fmt.Errorf("consecutivo diario agotado para %s: %w", prefix, domain.ErrConflict)
	}
	return fmt.Sprintf("%s%0*d", prefix, saleSeqDigits, seq), nil
}
