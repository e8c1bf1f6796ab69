package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueEmail         = "jobs:email"
	QueueMantenimiento = "jobs:mantenimiento"

	JobEmailTicket     = "email_ticket"
	JobRevisarVencidos = "revisar_vencidos"
)

// Ticket kinds carried by EmailTicketPayload.Tipo.
const (
	TicketVenta    = "venta"
	TicketApartado = "apartado"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// EmailTicketPayload asks the email worker to mail the ticket of a sale or apartado.
type EmailTicketPayload struct {
	Tipo     string `json:"tipo"` // venta | apartado
	ID       string `json:"id"`
	TiendaID string `json:"tienda_id"`
	Email    string `json:"email"`
}

// VencimientoChecker expires overdue apartados. The apartado service implements it.
type VencimientoChecker interface {
	RevisarVencidos(ctx context.Context, tiendaID *uuid.UUID) (int, error)
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

func (d *Dispatcher) EnqueueEmailTicket(ctx context.Context, p EmailTicketPayload) error {
	return d.enqueue(ctx, QueueEmail, JobEmailTicket, p)
}

func (d *Dispatcher) EnqueueRevisarVencidos(ctx context.Context) error {
	return d.enqueue(ctx, QueueMantenimiento, JobRevisarVencidos, struct{}{})
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Handlers are the job processors the pool dispatches to. A nil handler drops its jobs.
type Handlers struct {
	Email        *EmailWorker
	Vencimientos VencimientoChecker
}

// Pool consumes every queue with a fixed number of goroutines.
type Pool struct {
	rdb      *redis.Client
	handlers Handlers
	dlq      func(ctx context.Context, queue, jobType string, payload json.RawMessage, reason string, attempts int)
}

func NewPool(rdb *redis.Client, h Handlers) *Pool {
	return &Pool{
		rdb:      rdb,
		handlers: h,
		dlq: func(ctx context.Context, queue, jobType string, payload json.RawMessage, reason string, attempts int) {
			SendToDLQ(ctx, rdb, queue, jobType, payload, reason, attempts)
		},
	}
}

// Start launches numWorkers goroutines. Each blocks on BRPOP, zero CPU when idle.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go p.run(ctx, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func (p *Pool) run(ctx context.Context, id int) {
	queues := []string{QueueEmail, QueueMantenimiento}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop, waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					log.Warn().Err(err).Int("worker", id).Msg("brpop failed")
					time.Sleep(time.Second)
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			p.process(ctx, result[0], result[1])
		}
	}
}

func (p *Pool) process(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		quoted, _ := json.Marshal(raw)
		p.dlq(ctx, queue, "unknown", quoted, "invalid envelope: "+err.Error(), 0)
		return
	}

	var err error
	attempts := 1
	switch job.Type {
	case JobEmailTicket:
		if p.handlers.Email == nil {
			log.Warn().Msg("email job dropped: no email worker configured")
			return
		}
		attempts = emailMaxAttempts
		err = p.handlers.Email.Process(ctx, job.Payload)
	case JobRevisarVencidos:
		if p.handlers.Vencimientos == nil {
			return
		}
		var n int
		n, err = p.handlers.Vencimientos.RevisarVencidos(ctx, nil)
		if err == nil {
			log.Info().Int("vencidos", n).Msg("revision de apartados completada")
		}
	default:
		err = fmt.Errorf("unknown job type %q", job.Type)
	}

	if err != nil {
		log.Error().Err(err).Str("type", job.Type).Str("queue", queue).Msg("job failed")
		p.dlq(ctx, queue, job.Type, job.Payload, err.Error(), attempts)
	}
}
