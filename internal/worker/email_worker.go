package worker

// email_worker.go
// Processes email jobs from QueueEmail: sends the closing report PDF to the
// supervisor. SMTP calls go through the circuit breaker so a downed mail
// server fast-fails instead of blocking the pool.

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/BayaslianSantiago/cierre-caja-esf/internal/infra"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	PDFPath string `json:"pdf_path"`
}

type EmailWorker struct {
	mailer *infra.Mailer
	cb     *infra.CircuitBreaker
}

func NewEmailWorker(mailer *infra.Mailer, cb *infra.CircuitBreaker) *EmailWorker {
	return &EmailWorker{mailer: mailer, cb: cb}
}

// Process sends one email with the closing PDF attached.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return nil
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email — skipping")
		return nil
	}

	err := w.cb.Execute(func() error {
		return w.mailer.SendReporte(payload.ToEmail, payload.Subject, payload.Body, payload.PDFPath)
	})
	if err != nil {
		log.Error().Err(err).Str("to", payload.ToEmail).Msg("email_worker: failed to send email")
		return err
	}
	log.Info().Str("to", payload.ToEmail).Msg("email_worker: reporte sent")
	return nil
}
