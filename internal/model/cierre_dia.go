package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BayaslianSantiago/cierre-caja-esf/internal/cierre"
)

// CierreDia is the flattened, persisted record of one finalized closing.
// One closing per (fecha, caja) — the carry-over chain depends on it.
// Immutable after creation: a wrong closing is corrected by a new one the
// following day, never by editing history.
type CierreDia struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Fecha     time.Time `gorm:"type:date;not null;uniqueIndex:idx_cierre_fecha_caja"`
	Caja      string    `gorm:"type:varchar(60);not null;uniqueIndex:idx_cierre_fecha_caja"`
	UsuarioID uuid.UUID `gorm:"type:uuid;not null"`
	Cajero    string    `gorm:"not null"`

	// Inputs
	Balanza      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Registradora decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CambioAyer   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CambioManana decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Monedas      decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	// Derived (duplicated from the engine so history queries never recompute)
	TotalEfectivo    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	EfectivoNeto     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalDigital     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalJustificado decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Diferencia       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ARetirar         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DifRegistradora  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Estado: "cuadrada" | "faltante" | "sobrante"
	Estado string `gorm:"type:varchar(20);not null;index"`
	// Advertencias: comma-joined warning flags, empty when the day was clean
	Advertencias string

	// DescuentosActivos records the resolved weekday rule for Fecha, so the
	// report can be regenerated identically even if the config changes later.
	DescuentosActivos bool `gorm:"not null"`

	Canales []CanalCierre   `gorm:"foreignKey:CierreDiaID"`
	Conteo  []ConteoBillete `gorm:"foreignKey:CierreDiaID"`
	Ajustes []AjusteCierre  `gorm:"foreignKey:CierreDiaID"`

	PDFPath   *string
	CreatedAt time.Time
}

func (CierreDia) TableName() string { return "cierres_dia" }

// CanalCierre is one digital channel total within a closing.
type CanalCierre struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CierreDiaID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Posicion    int             `gorm:"not null"`
	Nombre      string          `gorm:"type:varchar(40);not null"`
	Monto       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

func (CanalCierre) TableName() string { return "cierre_canales" }

// ConteoBillete is one denomination line of the physical count.
type ConteoBillete struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CierreDiaID  uuid.UUID `gorm:"type:uuid;index;not null"`
	Denominacion string    `gorm:"type:varchar(20);not null"`
	Cantidad     int       `gorm:"not null"`
}

func (ConteoBillete) TableName() string { return "cierre_conteos" }

// AjusteCierre is one ledger entry row, flattened across the three variants.
// Posicion preserves the operator's insertion order per category.
type AjusteCierre struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CierreDiaID uuid.UUID `gorm:"type:uuid;index;not null"`
	Categoria   string    `gorm:"type:varchar(20);not null"`
	Posicion    int       `gorm:"not null"`
	Descripcion string
	Proveedor   string
	// MetodoPago: "efectivo" | "otro" — only set for categoria proveedores
	MetodoPago string `gorm:"type:varchar(20)"`
	Factura    string
	Monto      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

func (AjusteCierre) TableName() string { return "cierre_ajustes" }

// ListaAdvertencias splits the stored flags back into typed values.
func (c *CierreDia) ListaAdvertencias() []cierre.Advertencia {
	if c.Advertencias == "" {
		return nil
	}
	parts := strings.Split(c.Advertencias, ",")
	out := make([]cierre.Advertencia, 0, len(parts))
	for _, p := range parts {
		out = append(out, cierre.Advertencia(p))
	}
	return out
}

// Reconstruir rebuilds the pure EstadoDia and Resultado from the persisted
// record, so a report can be re-assembled and re-rendered at any time. The
// denomination table is re-created from the stored count lines — a closing
// stays renderable even after the configured table changes.
func (c *CierreDia) Reconstruir() (*cierre.EstadoDia, *cierre.Resultado, error) {
	nombres := make([]string, len(c.Canales))
	for _, cc := range c.Canales {
		nombres[cc.Posicion] = cc.Nombre
	}
	canales := cierre.NuevosCanales(nombres)
	for _, cc := range c.Canales {
		if err := canales.Fijar(cc.Nombre, cc.Monto); err != nil {
			return nil, nil, err
		}
	}

	cantidades := make(map[string]int, len(c.Conteo))
	valores := make([]string, 0, len(c.Conteo))
	for _, b := range c.Conteo {
		cantidades[b.Denominacion] = b.Cantidad
		valores = append(valores, b.Denominacion)
	}
	tabla, err := cierre.NuevaTablaDenominaciones(valores)
	if err != nil {
		return nil, nil, err
	}

	estado := &cierre.EstadoDia{
		Fecha:             c.Fecha,
		Caja:              c.Caja,
		Cajero:            c.Cajero,
		Balanza:           c.Balanza,
		Registradora:      c.Registradora,
		CambioAyer:        c.CambioAyer,
		CambioManana:      c.CambioManana,
		Canales:           canales,
		Denominaciones:    tabla,
		Conteo:            cierre.Conteo{Cantidades: cantidades, Monedas: c.Monedas},
		DescuentosActivos: c.DescuentosActivos,
	}

	for _, a := range c.Ajustes {
		cat := cierre.Categoria(a.Categoria)
		var entrada cierre.Entrada
		switch cat {
		case cierre.CategoriaSalidas, cierre.CategoriaVales:
			entrada = cierre.EntradaDetallada{Descripcion: a.Descripcion, Monto: a.Monto}
		case cierre.CategoriaProveedores:
			entrada = cierre.PagoProveedor{
				Proveedor: a.Proveedor,
				Metodo:    cierre.MetodoPago(a.MetodoPago),
				Factura:   a.Factura,
				Monto:     a.Monto,
			}
		default:
			entrada = cierre.EntradaSimple{Monto: a.Monto}
		}
		if err := estado.Libro(cat).Agregar(entrada); err != nil {
			return nil, nil, err
		}
	}

	resultado := &cierre.Resultado{
		TotalEfectivo:    c.TotalEfectivo,
		EfectivoNeto:     c.EfectivoNeto,
		TotalDigital:     c.TotalDigital,
		TotalJustificado: c.TotalJustificado,
		Diferencia:       c.Diferencia,
		ARetirar:         c.ARetirar,
		DifRegistradora:  c.DifRegistradora,
		Estado:           cierre.EstadoCierre(c.Estado),
		Advertencias:     c.ListaAdvertencias(),
	}
	return estado, resultado, nil
}
