package cierre

// reporte.go — assembles a finalized closing into a renderer-agnostic report
// document. The Documento is plain data: binding it to PDF, CSV or anything
// else is the renderer's problem, the same way the POS ticket layout lives in
// infra and not here.

import (
	"github.com/shopspring/decimal"
)

// Fila is one printable row: a label and an amount.
type Fila struct {
	Etiqueta string          `json:"etiqueta"`
	Monto    decimal.Decimal `json:"monto"`
}

// Seccion groups ordered rows under a title with the section total.
type Seccion struct {
	Titulo string          `json:"titulo"`
	Total  decimal.Decimal `json:"total"`
	Filas  []Fila          `json:"filas"`
}

// Documento is the full report, sections in render order. The summary
// section is always last.
type Documento struct {
	Fecha     string    `json:"fecha"` // dd/mm/yyyy, the operator-facing format
	Caja      string    `json:"caja"`
	Cajero    string    `json:"cajero"`
	Estado    string    `json:"estado"`
	Secciones []Seccion `json:"secciones"`
}

var titulosCategorias = map[Categoria]string{
	CategoriaSalidas:        "Salidas de Caja",
	CategoriaVales:          "Vales",
	CategoriaTransferencias: "Transferencias",
	CategoriaErrores:        "Errores de Facturación",
	CategoriaDescuentos:     "Descuentos (SOMOS A)",
	CategoriaProveedores:    "Pagos a Proveedores",
}

// ArmarReporte builds the Documento for a computed closing.
//
// Section order: payment channels, cash count, one section per ledger
// category, closing summary last. Categories with a zero total are omitted,
// as is descuentos when the rule is inactive for the day.
func ArmarReporte(e *EstadoDia, r *Resultado) *Documento {
	doc := &Documento{
		Fecha:  e.Fecha.Format("02/01/2006"),
		Caja:   e.Caja,
		Cajero: e.Cajero,
		Estado: string(r.Estado),
	}

	canales := Seccion{Titulo: "Pagos Digitales", Total: r.TotalDigital}
	for _, nombre := range e.Canales.Nombres() {
		canales.Filas = append(canales.Filas, Fila{Etiqueta: nombre, Monto: e.Canales.Monto(nombre)})
	}
	doc.Secciones = append(doc.Secciones, canales)

	doc.Secciones = append(doc.Secciones, Seccion{
		Titulo: "Efectivo",
		Total:  r.EfectivoNeto,
		Filas: []Fila{
			{Etiqueta: "Efectivo contado", Monto: r.TotalEfectivo},
			{Etiqueta: "Cambio de ayer", Monto: e.CambioAyer.Neg()},
		},
	})

	for _, cat := range Categorias {
		if cat == CategoriaDescuentos && !e.DescuentosActivos {
			continue
		}
		libro := e.Consultar(cat)
		total := libro.Total()
		if total.IsZero() {
			continue
		}
		sec := Seccion{Titulo: titulosCategorias[cat], Total: total}
		for _, entrada := range libro.Incluidas() {
			etiqueta := entrada.Etiqueta()
			if etiqueta == "" {
				etiqueta = titulosCategorias[cat]
			}
			sec.Filas = append(sec.Filas, Fila{Etiqueta: etiqueta, Monto: entrada.Importe()})
		}
		doc.Secciones = append(doc.Secciones, sec)
	}

	doc.Secciones = append(doc.Secciones, Seccion{
		Titulo: "Resultado del Cierre",
		Total:  r.Diferencia,
		Filas: []Fila{
			{Etiqueta: "Balanza (facturado)", Monto: e.Balanza},
			{Etiqueta: "Total justificado", Monto: r.TotalJustificado},
			{Etiqueta: "Diferencia", Monto: r.Diferencia},
			{Etiqueta: "Diferencia registradora", Monto: r.DifRegistradora},
			{Etiqueta: "A retirar hoy", Monto: r.ARetirar},
			{Etiqueta: "Cambio para mañana", Monto: e.CambioManana},
		},
	})

	return doc
}

// EtiquetaEstado is the operator-facing label for each closing status,
// phrased the way the register staff reads it.
func EtiquetaEstado(estado EstadoCierre, dif decimal.Decimal) string {
	switch estado {
	case EstadoCuadrada:
		return "CAJA PERFECTA"
	case EstadoFaltante:
		return "FALTAN $" + dif.StringFixed(2)
	case EstadoSobrante:
		return "SOBRAN $" + dif.Abs().StringFixed(2)
	}
	return string(estado)
}
