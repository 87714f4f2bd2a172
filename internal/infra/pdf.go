package infra

// pdf.go — renders the closing report Documento with go-pdf/fpdf.
// Letter-size portrait, one section per block:
//   - Header with date, register and operator
//   - One table per report section (rows + section total)
//   - Status banner (CAJA PERFECTA / FALTAN / SOBRAN) at the end
//
// The output file is saved to storagePath/cierre_{caja}_{fecha}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/BayaslianSantiago/cierre-caja-esf/internal/cierre"
)

// GenerateCierrePDF renders the assembled report and returns the absolute
// path to the generated file. storagePath is created if needed.
func GenerateCierrePDF(doc *cierre.Documento, resultado *cierre.Resultado, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fecha := strings.ReplaceAll(doc.Fecha, "/", "-")
	caja := strings.ReplaceAll(doc.Caja, " ", "_")
	fileName := fmt.Sprintf("cierre_%s_%s.pdf", caja, fecha)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(18, 16, 18)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 36

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "Cierre de Caja", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, fmt.Sprintf("%s  —  %s", doc.Fecha, doc.Caja), "", 1, "C", false, 0, "")
	if doc.Cajero != "" {
		pdf.CellFormat(contentW, 5, "Cajero: "+doc.Cajero, "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	colLabel := contentW * 0.68
	colMonto := contentW * 0.32

	// ── Sections ─────────────────────────────────────────────────────────────
	for _, sec := range doc.Secciones {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetFillColor(235, 235, 235)
		pdf.CellFormat(contentW, 7, sec.Titulo, "1", 1, "L", true, 0, "")

		pdf.SetFont("Helvetica", "", 10)
		for _, fila := range sec.Filas {
			pdf.CellFormat(colLabel, 6, acortarEtiqueta(fila.Etiqueta), "LB", 0, "L", false, 0, "")
			pdf.CellFormat(colMonto, 6, "$ "+FormatearMonto(fila.Monto), "RB", 1, "R", false, 0, "")
		}

		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(colLabel, 6, "Total "+sec.Titulo, "LB", 0, "L", false, 0, "")
		pdf.CellFormat(colMonto, 6, "$ "+FormatearMonto(sec.Total), "RB", 1, "R", false, 0, "")
		pdf.Ln(4)
	}

	// ── Status banner ────────────────────────────────────────────────────────
	banner := cierre.EtiquetaEstado(resultado.Estado, resultado.Diferencia)
	switch resultado.Estado {
	case cierre.EstadoCuadrada:
		pdf.SetFillColor(214, 240, 214)
	case cierre.EstadoFaltante:
		pdf.SetFillColor(246, 214, 214)
	default:
		pdf.SetFillColor(252, 240, 208)
	}
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 10, banner, "1", 1, "C", true, 0, "")

	if len(resultado.Advertencias) > 0 {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "I", 9)
		for _, adv := range resultado.Advertencias {
			pdf.CellFormat(contentW, 5, "Advertencia: "+string(adv), "", 1, "L", false, 0, "")
		}
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}

// acortarEtiqueta caps a row label at 60 characters so it fits the label
// column. Rune-based: supplier names carry accents.
func acortarEtiqueta(s string) string {
	runes := []rune(s)
	if len(runes) <= 60 {
		return s
	}
	return string(runes[:59]) + "…"
}
