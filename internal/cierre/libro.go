package cierre

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Categoria identifies one class of adjustment entries in the closing.
type Categoria string

const (
	CategoriaSalidas        Categoria = "salidas"        // outflows (compras, gastos)
	CategoriaVales          Categoria = "vales"          // vouchers / IOUs
	CategoriaTransferencias Categoria = "transferencias" // incoming bank transfers
	CategoriaErrores        Categoria = "errores"        // billing errors of the day
	CategoriaDescuentos     Categoria = "descuentos"     // weekday-gated promo discounts
	CategoriaProveedores    Categoria = "proveedores"    // supplier payments
)

// Categorias lists every category in report order.
var Categorias = []Categoria{
	CategoriaSalidas,
	CategoriaVales,
	CategoriaTransferencias,
	CategoriaErrores,
	CategoriaDescuentos,
	CategoriaProveedores,
}

// MetodoPago for a supplier payment. Only cash payments come out of the
// drawer and therefore enter the justified total.
type MetodoPago string

const (
	MetodoEfectivo MetodoPago = "efectivo"
	MetodoOtro     MetodoPago = "otro"
)

// Entrada is one adjustment row. Each category admits exactly one concrete
// variant, enforced at Agregar/Actualizar — required fields are a matter of
// construction, not convention.
type Entrada interface {
	Importe() decimal.Decimal
	Etiqueta() string
}

// EntradaDetallada carries free text: salidas de caja, vales.
type EntradaDetallada struct {
	Descripcion string
	Monto       decimal.Decimal
}

func (e EntradaDetallada) Importe() decimal.Decimal { return e.Monto }
func (e EntradaDetallada) Etiqueta() string         { return e.Descripcion }

// EntradaSimple is a bare amount: transferencias, errores, descuentos.
type EntradaSimple struct {
	Monto decimal.Decimal
}

func (e EntradaSimple) Importe() decimal.Decimal { return e.Monto }
func (e EntradaSimple) Etiqueta() string         { return "" }

// PagoProveedor records a payment to a supplier. Factura is optional.
type PagoProveedor struct {
	Proveedor string
	Metodo    MetodoPago
	Factura   string
	Monto     decimal.Decimal
}

func (e PagoProveedor) Importe() decimal.Decimal { return e.Monto }

// Etiqueta composes supplier, payment method and invoice reference into the
// row label shown on reports.
func (e PagoProveedor) Etiqueta() string {
	s := fmt.Sprintf("%s (%s)", e.Proveedor, e.Metodo)
	if e.Factura != "" {
		s += " Fact. " + e.Factura
	}
	return s
}

// Libro is an ordered table of adjustment entries of a single category.
// Entries keep insertion order — operators expect to see rows in the order
// they typed them. Entries with monto ≤ 0 stay in the table as drafts but
// never count toward the total nor appear on reports.
type Libro struct {
	categoria Categoria
	entradas  []Entrada
}

func NuevoLibro(cat Categoria) *Libro { return &Libro{categoria: cat} }

func (l *Libro) Categoria() Categoria { return l.categoria }

// Agregar appends an entry. Fails with ErrEsquemaEntrada when the entry's
// variant does not match the category.
func (l *Libro) Agregar(e Entrada) error {
	if !l.admite(e) {
		return fmt.Errorf("%s: %w", l.categoria, ErrEsquemaEntrada)
	}
	l.entradas = append(l.entradas, e)
	return nil
}

// Actualizar replaces the entry at i in place, keeping its position.
func (l *Libro) Actualizar(i int, e Entrada) error {
	if i < 0 || i >= len(l.entradas) {
		return ErrIndiceEntrada
	}
	if !l.admite(e) {
		return fmt.Errorf("%s: %w", l.categoria, ErrEsquemaEntrada)
	}
	l.entradas[i] = e
	return nil
}

// Quitar removes the entry at i, preserving the order of the rest.
func (l *Libro) Quitar(i int) error {
	if i < 0 || i >= len(l.entradas) {
		return ErrIndiceEntrada
	}
	l.entradas = append(l.entradas[:i], l.entradas[i+1:]...)
	return nil
}

// Entradas returns every entry, drafts included.
func (l *Libro) Entradas() []Entrada {
	out := make([]Entrada, len(l.entradas))
	copy(out, l.entradas)
	return out
}

// Incluidas returns the entries that count: monto > 0, in insertion order.
func (l *Libro) Incluidas() []Entrada {
	var out []Entrada
	for _, e := range l.entradas {
		if e.Importe().IsPositive() {
			out = append(out, e)
		}
	}
	return out
}

// Total sums included entries only. Idempotent with respect to zero or
// negative rows left behind by interactive editing.
func (l *Libro) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range l.Incluidas() {
		total = total.Add(e.Importe())
	}
	return total
}

// TotalProveedoresEfectivo sums only cash supplier payments — the portion
// that left the physical drawer. Zero for any other category.
func (l *Libro) TotalProveedoresEfectivo() decimal.Decimal {
	total := decimal.Zero
	if l.categoria != CategoriaProveedores {
		return total
	}
	for _, e := range l.Incluidas() {
		if p, ok := e.(PagoProveedor); ok && p.Metodo == MetodoEfectivo {
			total = total.Add(p.Monto)
		}
	}
	return total
}

func (l *Libro) admite(e Entrada) bool {
	switch l.categoria {
	case CategoriaSalidas, CategoriaVales:
		_, ok := e.(EntradaDetallada)
		return ok
	case CategoriaTransferencias, CategoriaErrores, CategoriaDescuentos:
		_, ok := e.(EntradaSimple)
		return ok
	case CategoriaProveedores:
		_, ok := e.(PagoProveedor)
		return ok
	}
	return false
}
