package infra

import (
	"encoding/csv"
	"io"

	"github.com/BayaslianSantiago/cierre-caja-esf/internal/model"
)

// WriteHistorialCSV streams the closings history as CSV, one row per
// closing, amounts with plain decimal points so spreadsheets parse them.
func WriteHistorialCSV(w io.Writer, cierres []model.CierreDia) error {
	cw := csv.NewWriter(w)

	header := []string{
		"fecha", "caja", "cajero", "balanza", "registradora",
		"total_efectivo", "efectivo_neto", "total_digital", "total_justificado",
		"diferencia", "a_retirar", "cambio_manana", "estado", "advertencias",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, c := range cierres {
		row := []string{
			c.Fecha.Format("2006-01-02"),
			c.Caja,
			c.Cajero,
			c.Balanza.StringFixed(2),
			c.Registradora.StringFixed(2),
			c.TotalEfectivo.StringFixed(2),
			c.EfectivoNeto.StringFixed(2),
			c.TotalDigital.StringFixed(2),
			c.TotalJustificado.StringFixed(2),
			c.Diferencia.StringFixed(2),
			c.ARetirar.StringFixed(2),
			c.CambioManana.StringFixed(2),
			c.Estado,
			c.Advertencias,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
