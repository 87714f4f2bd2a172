package cierre

import "errors"

// Structural errors abort the computation immediately — no partial Resultado
// is ever produced for malformed input. Business-rule anomalies (negative
// efectivo neto, negative retiro, registradora mismatch) are NOT errors:
// they surface as Advertencias on the Resultado so the operator can still
// print and record an abnormal closing.
var (
	// ErrConteoInvalido: a denomination count is negative or names an
	// unknown face value.
	ErrConteoInvalido = errors.New("conteo de denominaciones inválido")

	// ErrEsquemaEntrada: an entry's variant does not match the Libro's category.
	ErrEsquemaEntrada = errors.New("la entrada no corresponde al esquema de la categoría")

	// ErrCanalDesconocido: an amount was supplied for a channel that is not
	// in the configured list.
	ErrCanalDesconocido = errors.New("canal de pago desconocido")

	// ErrCanalFaltante: a configured channel has no amount recorded.
	ErrCanalFaltante = errors.New("falta el total de un canal de pago")

	// ErrMontoNegativo: a figure that must be non-negative (balanza, floats,
	// channel totals) came in negative.
	ErrMontoNegativo = errors.New("monto negativo no permitido")

	// ErrIndiceEntrada: Actualizar/Quitar received an out-of-range index.
	ErrIndiceEntrada = errors.New("índice de entrada fuera de rango")
)

// EsErrorEstructural reports whether err wraps one of the structural input
// errors above.
func EsErrorEstructural(err error) bool {
	for _, e := range []error{
		ErrConteoInvalido, ErrEsquemaEntrada, ErrCanalDesconocido,
		ErrCanalFaltante, ErrMontoNegativo, ErrIndiceEntrada,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// Advertencia flags a business-rule anomaly attached to a Resultado.
type Advertencia string

const (
	// Physical count came out below the carried-over float — prior-day error
	// or theft; the closing still computes.
	AdvEfectivoNetoNegativo Advertencia = "efectivo_neto_negativo"
	// Operator chose to retain more than was counted.
	AdvRetiroNegativo Advertencia = "retiro_negativo"
	// Fiscal printer tally disagrees with the digital channel sum.
	AdvDiferenciaRegistradora Advertencia = "diferencia_registradora"
)
