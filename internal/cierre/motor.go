package cierre

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ReglaActivacion gates the descuentos category to a configured weekday set
// ("SOMOS A" runs Mondays and Wednesdays). It is evaluated once, when the
// EstadoDia is built — the engine only ever sees the resolved flag.
type ReglaActivacion struct {
	dias map[time.Weekday]bool
}

var nombresDias = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday,
	"domingo": time.Sunday, "lunes": time.Monday, "martes": time.Tuesday,
	"miercoles": time.Wednesday, "jueves": time.Thursday,
	"viernes": time.Friday, "sabado": time.Saturday,
}

// NuevaReglaActivacion parses weekday names (English or Spanish, case
// insensitive).
func NuevaReglaActivacion(dias []string) (ReglaActivacion, error) {
	r := ReglaActivacion{dias: make(map[time.Weekday]bool, len(dias))}
	for _, d := range dias {
		wd, ok := nombresDias[strings.ToLower(strings.TrimSpace(d))]
		if !ok {
			return ReglaActivacion{}, fmt.Errorf("día %q desconocido", d)
		}
		r.dias[wd] = true
	}
	return r, nil
}

func (r ReglaActivacion) ActivaEn(fecha time.Time) bool { return r.dias[fecha.Weekday()] }

// EstadoDia is the full input of one closing. Owned by the calling session;
// the engine takes it read-only and returns a fresh Resultado.
type EstadoDia struct {
	Fecha  time.Time
	Caja   string
	Cajero string

	// Balanza is the declared revenue from the scale/register subsystem —
	// the reconciliation target.
	Balanza decimal.Decimal
	// Registradora is the fiscal printer tally, cross-check only.
	Registradora decimal.Decimal
	// CambioAyer is yesterday's retained float (carry-over input);
	// CambioManana is what the operator chose to retain for tomorrow.
	CambioAyer   decimal.Decimal
	CambioManana decimal.Decimal

	Canales        *Canales
	Denominaciones TablaDenominaciones
	Conteo         Conteo
	Libros         map[Categoria]*Libro

	// DescuentosActivos is the resolved ReglaActivacion for Fecha.
	DescuentosActivos bool
}

// Libro returns the table for cat, creating an empty one on first use so
// callers building a day can treat absent categories as empty.
func (e *EstadoDia) Libro(cat Categoria) *Libro {
	if e.Libros == nil {
		e.Libros = make(map[Categoria]*Libro)
	}
	l, ok := e.Libros[cat]
	if !ok {
		l = NuevoLibro(cat)
		e.Libros[cat] = l
	}
	return l
}

// Consultar is the read-only counterpart of Libro: an absent category reads
// as an empty table and the EstadoDia is left untouched, so the engine and
// the report assembler can share a day across goroutines.
func (e *EstadoDia) Consultar(cat Categoria) *Libro {
	if l, ok := e.Libros[cat]; ok {
		return l
	}
	return NuevoLibro(cat)
}

// EstadoCierre is the three-way outcome every closing has.
type EstadoCierre string

const (
	EstadoCuadrada EstadoCierre = "cuadrada" // within tolerance
	EstadoFaltante EstadoCierre = "faltante" // declared revenue not fully justified
	EstadoSobrante EstadoCierre = "sobrante" // more money than declared
)

// Resultado is the immutable outcome of one Calcular call.
type Resultado struct {
	TotalEfectivo    decimal.Decimal // physical count (bills + coins)
	EfectivoNeto     decimal.Decimal // count minus yesterday's float
	TotalDigital     decimal.Decimal
	TotalJustificado decimal.Decimal
	Diferencia       decimal.Decimal // balanza − justificado; >0 faltante
	ARetirar         decimal.Decimal // count minus tomorrow's float
	DifRegistradora  decimal.Decimal // registradora − digital, informational
	Estado           EstadoCierre
	Advertencias     []Advertencia
}

// Advertida reports whether a given warning flag is set.
func (r *Resultado) Advertida(a Advertencia) bool {
	for _, x := range r.Advertencias {
		if x == a {
			return true
		}
	}
	return false
}

// Motor computes closings. Stateless and reentrant: every Calcular call works
// only on its arguments, so one Motor can serve concurrent closings.
type Motor struct {
	// Tolerancia absorbs rounding when classifying the diferencia.
	Tolerancia decimal.Decimal
}

// ToleranciaDefecto is one cent.
var ToleranciaDefecto = decimal.NewFromFloat(0.01)

func NuevoMotor() *Motor { return &Motor{Tolerancia: ToleranciaDefecto} }

// Calcular runs the canonical reconciliation over an EstadoDia.
// Structural problems fail fast; business anomalies become Advertencias.
func (m *Motor) Calcular(e *EstadoDia) (*Resultado, error) {
	if err := m.validar(e); err != nil {
		return nil, err
	}

	totalEfectivo, err := e.Denominaciones.Total(e.Conteo)
	if err != nil {
		return nil, err
	}

	r := &Resultado{TotalEfectivo: totalEfectivo}

	r.EfectivoNeto = totalEfectivo.Sub(e.CambioAyer)
	if r.EfectivoNeto.IsNegative() {
		r.Advertencias = append(r.Advertencias, AdvEfectivoNetoNegativo)
	}

	r.TotalDigital = e.Canales.Total()

	justificado := r.TotalDigital.
		Add(r.EfectivoNeto).
		Add(e.Consultar(CategoriaTransferencias).Total()).
		Add(e.Consultar(CategoriaSalidas).Total()).
		Add(e.Consultar(CategoriaProveedores).TotalProveedoresEfectivo()).
		Add(e.Consultar(CategoriaErrores).Total()).
		Add(e.Consultar(CategoriaVales).Total())
	if e.DescuentosActivos {
		justificado = justificado.Add(e.Consultar(CategoriaDescuentos).Total())
	}
	r.TotalJustificado = justificado

	r.Diferencia = e.Balanza.Sub(justificado)
	r.Estado = m.clasificar(r.Diferencia)

	r.ARetirar = totalEfectivo.Sub(e.CambioManana)
	if r.ARetirar.IsNegative() {
		r.Advertencias = append(r.Advertencias, AdvRetiroNegativo)
	}

	r.DifRegistradora = e.Registradora.Sub(r.TotalDigital)
	if !r.DifRegistradora.IsZero() {
		r.Advertencias = append(r.Advertencias, AdvDiferenciaRegistradora)
	}

	return r, nil
}

// clasificar maps the diferencia onto the three-way status.
func (m *Motor) clasificar(dif decimal.Decimal) EstadoCierre {
	tol := m.Tolerancia
	if tol.IsNegative() {
		tol = ToleranciaDefecto
	}
	switch {
	case dif.Abs().LessThanOrEqual(tol):
		return EstadoCuadrada
	case dif.IsPositive():
		return EstadoFaltante
	default:
		return EstadoSobrante
	}
}

func (m *Motor) validar(e *EstadoDia) error {
	if e.Canales == nil {
		return ErrCanalFaltante
	}
	if err := e.Canales.Validar(); err != nil {
		return err
	}
	for campo, monto := range map[string]decimal.Decimal{
		"balanza":       e.Balanza,
		"registradora":  e.Registradora,
		"cambio_ayer":   e.CambioAyer,
		"cambio_manana": e.CambioManana,
	} {
		if monto.IsNegative() {
			return fmt.Errorf("%s: %w", campo, ErrMontoNegativo)
		}
	}
	return nil
}
