package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AjusteDetalladoRequest struct {
	Descripcion string          `json:"descripcion" validate:"required,min=2"`
	Monto       decimal.Decimal `json:"monto"`
}

type AjusteSimpleRequest struct {
	Monto decimal.Decimal `json:"monto"`
}

type PagoProveedorRequest struct {
	Proveedor string          `json:"proveedor" validate:"required,min=2"`
	Metodo    string          `json:"metodo"    validate:"required,oneof=efectivo otro"`
	Factura   string          `json:"factura"`
	Monto     decimal.Decimal `json:"monto"`
}

// CierreRequest carries every input of one closing. cambio_ayer may be
// omitted: the service then resolves it from the previous closing of the
// same caja (carry-over contract).
type CierreRequest struct {
	Fecha        string           `json:"fecha"         validate:"required,datetime=2006-01-02"`
	Caja         string           `json:"caja"          validate:"required,min=1,max=60"`
	Balanza      decimal.Decimal  `json:"balanza"       validate:"min=0"`
	Registradora decimal.Decimal  `json:"registradora"  validate:"min=0"`
	CambioAyer   *decimal.Decimal `json:"cambio_ayer"   validate:"omitempty,min=0"`
	CambioManana decimal.Decimal  `json:"cambio_manana" validate:"min=0"`

	// Canales: total per configured digital channel; every channel required,
	// zero is a valid total.
	Canales map[string]decimal.Decimal `json:"canales" validate:"required"`

	// Conteo: bill quantities per denomination label, plus loose coins.
	Conteo  map[string]int  `json:"conteo"`
	Monedas decimal.Decimal `json:"monedas" validate:"min=0"`

	Salidas        []AjusteDetalladoRequest `json:"salidas"        validate:"dive"`
	Vales          []AjusteDetalladoRequest `json:"vales"          validate:"dive"`
	Transferencias []AjusteSimpleRequest    `json:"transferencias" validate:"dive"`
	Errores        []AjusteSimpleRequest    `json:"errores"        validate:"dive"`
	Descuentos     []AjusteSimpleRequest    `json:"descuentos"     validate:"dive"`
	Proveedores    []PagoProveedorRequest   `json:"proveedores"    validate:"dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ResultadoCierreResponse struct {
	TotalEfectivo    decimal.Decimal `json:"total_efectivo"`
	EfectivoNeto     decimal.Decimal `json:"efectivo_neto"`
	TotalDigital     decimal.Decimal `json:"total_digital"`
	TotalJustificado decimal.Decimal `json:"total_justificado"`
	Diferencia       decimal.Decimal `json:"diferencia"`
	ARetirar         decimal.Decimal `json:"a_retirar"`
	DifRegistradora  decimal.Decimal `json:"dif_registradora"`
	Estado           string          `json:"estado"`          // cuadrada | faltante | sobrante
	EtiquetaEstado   string          `json:"etiqueta_estado"` // CAJA PERFECTA / FALTAN $… / SOBRAN $…
	Advertencias     []string        `json:"advertencias"`
}

type CierreResponse struct {
	ID           string                  `json:"id,omitempty"` // empty on simulations
	Fecha        string                  `json:"fecha"`
	Caja         string                  `json:"caja"`
	Cajero       string                  `json:"cajero"`
	CambioAyer   decimal.Decimal         `json:"cambio_ayer"`
	CambioManana decimal.Decimal         `json:"cambio_manana"`
	Resultado    ResultadoCierreResponse `json:"resultado"`
}

// CierreResumenResponse is one row of the closings history list.
type CierreResumenResponse struct {
	ID         string          `json:"id"`
	Fecha      string          `json:"fecha"`
	Caja       string          `json:"caja"`
	Cajero     string          `json:"cajero"`
	Balanza    decimal.Decimal `json:"balanza"`
	Diferencia decimal.Decimal `json:"diferencia"`
	Estado     string          `json:"estado"`
}

type UltimoCambioResponse struct {
	Caja   string          `json:"caja"`
	Cambio decimal.Decimal `json:"cambio"`
	// Fecha of the closing the float comes from; empty when no prior closing
	// exists and the returned cambio is zero.
	Fecha string `json:"fecha,omitempty"`
}
