package worker

// reporte_worker.go
// Processes closing-report jobs from QueueReporte: loads the persisted
// closing, re-assembles its report document, renders the PDF, records the
// file path, and chains an email job so the supervisor receives the PDF.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/BayaslianSantiago/cierre-caja-esf/internal/cierre"
	"github.com/BayaslianSantiago/cierre-caja-esf/internal/infra"
	"github.com/BayaslianSantiago/cierre-caja-esf/internal/repository"
)

// ReporteJobPayload is the job envelope sent to QueueReporte.
type ReporteJobPayload struct {
	CierreID string `json:"cierre_id"`
}

type ReporteWorker struct {
	repo            repository.CierreRepository
	dispatcher      *Dispatcher
	storagePath     string
	supervisorEmail string
}

func NewReporteWorker(repo repository.CierreRepository, dispatcher *Dispatcher, storagePath, supervisorEmail string) *ReporteWorker {
	return &ReporteWorker{
		repo:            repo,
		dispatcher:      dispatcher,
		storagePath:     storagePath,
		supervisorEmail: supervisorEmail,
	}
}

// Process renders the PDF for one closing. Returns an error so the pool can
// retry and eventually dead-letter the job.
func (w *ReporteWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReporteJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("reporte_worker: invalid payload")
		return nil // malformed payloads are not retriable
	}
	id, err := uuid.Parse(payload.CierreID)
	if err != nil {
		log.Error().Str("cierre_id", payload.CierreID).Msg("reporte_worker: invalid cierre_id")
		return nil
	}

	registro, err := w.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("reporte_worker: load cierre %s: %w", id, err)
	}

	estado, resultado, err := registro.Reconstruir()
	if err != nil {
		return fmt.Errorf("reporte_worker: rebuild cierre %s: %w", id, err)
	}
	doc := cierre.ArmarReporte(estado, resultado)

	pdfPath, err := infra.GenerateCierrePDF(doc, resultado, w.storagePath)
	if err != nil {
		return fmt.Errorf("reporte_worker: render pdf: %w", err)
	}
	if err := w.repo.SetPDFPath(ctx, id, pdfPath); err != nil {
		return fmt.Errorf("reporte_worker: record pdf path: %w", err)
	}
	log.Info().Str("cierre_id", id.String()).Str("pdf", pdfPath).Msg("reporte_worker: pdf generated")

	if w.supervisorEmail == "" {
		return nil
	}
	emailJob := EmailJobPayload{
		ToEmail: w.supervisorEmail,
		Subject: fmt.Sprintf("Cierre de Caja %s — %s", doc.Caja, doc.Fecha),
		Body: fmt.Sprintf("Cierre de caja %s del %s por %s: %s",
			doc.Caja, doc.Fecha, doc.Cajero,
			cierre.EtiquetaEstado(resultado.Estado, resultado.Diferencia)),
		PDFPath: pdfPath,
	}
	if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
		return fmt.Errorf("reporte_worker: enqueue email: %w", err)
	}
	return nil
}
