package cierre

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// TablaDenominaciones maps a denomination label (its printed face value,
// e.g. "1000") to its decimal value. The table is configuration, not code:
// adding a new bill or switching currency never touches the algorithm.
type TablaDenominaciones map[string]decimal.Decimal

// NuevaTablaDenominaciones builds a table from face-value strings
// ("20000", "500", "0.50"…). Duplicates and non-positive values are rejected.
func NuevaTablaDenominaciones(valores []string) (TablaDenominaciones, error) {
	t := make(TablaDenominaciones, len(valores))
	for _, v := range valores {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("denominación %q inválida: %w", v, err)
		}
		if !d.IsPositive() {
			return nil, fmt.Errorf("denominación %q: %w", v, ErrMontoNegativo)
		}
		if _, dup := t[v]; dup {
			return nil, fmt.Errorf("denominación %q duplicada", v)
		}
		t[v] = d
	}
	return t, nil
}

// Etiquetas returns the denomination labels in descending face-value order,
// the order a cashier counts bills in.
func (t TablaDenominaciones) Etiquetas() []string {
	out := make([]string, 0, len(t))
	for k := range t {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return t[out[i]].GreaterThan(t[out[j]]) })
	return out
}

// Conteo is one physical cash count: bill quantities per denomination plus a
// lump "monedas" amount for coins counted by weight or estimate.
// Created fresh per closing session and never mutated by the engine.
type Conteo struct {
	Cantidades map[string]int
	Monedas    decimal.Decimal
}

// Total converts the count into the physical cash total:
// Σ(cantidad × valor) + monedas. Pure — fails with ErrConteoInvalido when a
// quantity is negative or a denomination is not in the table.
func (t TablaDenominaciones) Total(c Conteo) (decimal.Decimal, error) {
	if c.Monedas.IsNegative() {
		return decimal.Zero, fmt.Errorf("monedas: %w", ErrConteoInvalido)
	}
	total := c.Monedas
	for etiqueta, cantidad := range c.Cantidades {
		valor, ok := t[etiqueta]
		if !ok {
			return decimal.Zero, fmt.Errorf("denominación %q: %w", etiqueta, ErrConteoInvalido)
		}
		if cantidad < 0 {
			return decimal.Zero, fmt.Errorf("denominación %q con cantidad %d: %w", etiqueta, cantidad, ErrConteoInvalido)
		}
		total = total.Add(valor.Mul(decimal.NewFromInt(int64(cantidad))))
	}
	return total, nil
}
