package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueReporte = "jobs:reporte"
	QueueEmail   = "jobs:email"
)

const maxAttempts = 3

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher { return &Dispatcher{rdb: rdb} }

// EnqueueReporte pushes a closing-report rendering job.
func (d *Dispatcher) EnqueueReporte(ctx context.Context, payload interface{}) error {
	return d.enqueue(ctx, QueueReporte, "reporte", payload)
}

// EnqueueEmail pushes an email job.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload interface{}) error {
	return d.enqueue(ctx, QueueEmail, "email", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// WorkerHandlers wires one processor per queue. Handlers are constructed in
// main (composition root) with full access to infrastructure.
type WorkerHandlers struct {
	Reporte *ReporteWorker
	Email   *EmailWorker
}

// StartWorkerPool launches numWorkers goroutines consuming both queues.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, id int) {
	queues := []string{QueueReporte, QueueEmail}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	var err error
	switch queue {
	case QueueReporte:
		err = handlers.Reporte.Process(ctx, job.Payload)
	case QueueEmail:
		err = handlers.Email.Process(ctx, job.Payload)
	default:
		log.Warn().Str("queue", queue).Msg("job from unknown queue dropped")
		return
	}
	if err == nil {
		return
	}

	job.Attempts++
	log.Error().Err(err).Str("queue", queue).Int("attempts", job.Attempts).Msg("job failed")
	if job.Attempts >= maxAttempts {
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
		return
	}
	// Requeue at the head so other jobs are not starved behind a retry loop.
	if encoded, mErr := json.Marshal(job); mErr == nil {
		if pushErr := rdb.LPush(ctx, queue, encoded).Err(); pushErr != nil {
			log.Error().Err(pushErr).Str("queue", queue).Msg("failed to requeue job")
		}
	}
}
