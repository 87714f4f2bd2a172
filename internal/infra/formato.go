package infra

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatearMonto renders a monetary amount for report output: two decimals
// and a dot as thousands separator ("1.234.567,89"), the way the register
// staff reads amounts.
func FormatearMonto(d decimal.Decimal) string {
	s := d.StringFixed(2)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	entero, dec, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range entero {
		if i > 0 && (len(entero)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := b.String() + "," + dec
	if neg {
		out = "-" + out
	}
	return out
}
