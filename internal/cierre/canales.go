package cierre

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Canales holds the day's totals per digital payment channel. The channel
// list is configuration (mercado_pago, getnet, clover out of the box); every
// configured channel must be recorded — zero is a valid amount, absence is a
// structural error. The registradora (fiscal printer) tally is NOT a channel:
// it lives on EstadoDia and only feeds the secondary cross-check.
type Canales struct {
	nombres []string
	montos  map[string]decimal.Decimal
}

func NuevosCanales(nombres []string) *Canales {
	n := make([]string, len(nombres))
	copy(n, nombres)
	return &Canales{nombres: n, montos: make(map[string]decimal.Decimal, len(n))}
}

// Fijar records a channel total. Unknown channel or negative amount fails.
func (c *Canales) Fijar(nombre string, monto decimal.Decimal) error {
	if !c.declarado(nombre) {
		return fmt.Errorf("%q: %w", nombre, ErrCanalDesconocido)
	}
	if monto.IsNegative() {
		return fmt.Errorf("canal %q: %w", nombre, ErrMontoNegativo)
	}
	c.montos[nombre] = monto
	return nil
}

// Validar fails with ErrCanalFaltante unless every configured channel has an
// amount recorded.
func (c *Canales) Validar() error {
	for _, n := range c.nombres {
		if _, ok := c.montos[n]; !ok {
			return fmt.Errorf("%q: %w", n, ErrCanalFaltante)
		}
	}
	return nil
}

// Nombres returns the configured channels in declaration order.
func (c *Canales) Nombres() []string {
	out := make([]string, len(c.nombres))
	copy(out, c.nombres)
	return out
}

func (c *Canales) Monto(nombre string) decimal.Decimal { return c.montos[nombre] }

func (c *Canales) Total() decimal.Decimal {
	total := decimal.Zero
	for _, n := range c.nombres {
		total = total.Add(c.montos[n])
	}
	return total
}

func (c *Canales) declarado(nombre string) bool {
	for _, n := range c.nombres {
		if n == nombre {
			return true
		}
	}
	return false
}
