package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"fleamarket/internal/format"
	"fleamarket/internal/infra"
	"fleamarket/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const emailMaxAttempts = 3

// TicketSender delivers one ticket email. *infra.Mailer implements it.
type TicketSender interface {
	SendTicket(to, subject, body, filename string, pdf []byte) error
}

// EmailWorker renders a ticket (text body plus PDF attachment) and mails it.
// Sends go through the circuit breaker and are retried with backoff; what
// still fails is returned so the pool can park it in the DLQ.
type EmailWorker struct {
	sender    TicketSender
	cb        *infra.CircuitBreaker
	ventas    repository.VentaRepository
	apartados repository.ApartadoRepository
	tiendas   repository.TiendaRepository
}

func NewEmailWorker(sender TicketSender, cb *infra.CircuitBreaker, ventas repository.VentaRepository, apartados repository.ApartadoRepository, tiendas repository.TiendaRepository) *EmailWorker {
	return &EmailWorker{sender: sender, cb: cb, ventas: ventas, apartados: apartados, tiendas: tiendas}
}

type ticketEmail struct {
	subject  string
	texto    string
	filename string
}

func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var p EmailTicketPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("email_worker: invalid payload: %w", err)
	}
	if p.Email == "" {
		log.Warn().Str("id", p.ID).Msg("email_worker: empty email, skipping")
		return nil
	}

	msg, err := w.render(ctx, p)
	if err != nil {
		return err
	}
	pdf, err := infra.TicketPDF(msg.texto)
	if err != nil {
		return err
	}

	if w.cb.State() == infra.CBOpen {
		return infra.ErrCircuitOpen
	}
	err = withRetry(ctx, emailMaxAttempts, func(attempt int) error {
		err := w.cb.Execute(func() error {
			return w.sender.SendTicket(p.Email, msg.subject, msg.texto, msg.filename, pdf)
		})
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).Str("to", p.Email).Msg("email_worker: send failed")
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("email_worker: %d attempts failed: %w", emailMaxAttempts, err)
	}
	log.Info().Str("to", p.Email).Str("tipo", p.Tipo).Str("id", p.ID).Msg("email_worker: ticket sent")
	return nil
}

func (w *EmailWorker) render(ctx context.Context, p EmailTicketPayload) (*ticketEmail, error) {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return nil, fmt.Errorf("email_worker: invalid id %q", p.ID)
	}
	tiendaID, err := uuid.Parse(p.TiendaID)
	if err != nil {
		return nil, fmt.Errorf("email_worker: invalid tienda_id %q", p.TiendaID)
	}
	tienda, err := w.tiendas.FindByID(ctx, tiendaID)
	if err != nil {
		return nil, fmt.Errorf("email_worker: tienda: %w", err)
	}

	switch p.Tipo {
	case TicketVenta:
		v, err := w.ventas.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("email_worker: venta: %w", err)
		}
		return &ticketEmail{
			subject:  fmt.Sprintf("%s - Ticket #%06d", tienda.Nombre, v.NumeroTicket),
			texto:    format.TicketVenta(tienda, v),
			filename: fmt.Sprintf("ticket_%06d.pdf", v.NumeroTicket),
		}, nil
	case TicketApartado:
		a, err := w.apartados.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("email_worker: apartado: %w", err)
		}
		return &ticketEmail{
			subject:  fmt.Sprintf("%s - Apartado %s", tienda.Nombre, a.Numero),
			texto:    format.TicketApartado(tienda, a),
			filename: fmt.Sprintf("apartado_%s.pdf", a.Numero),
		}, nil
	default:
		return nil, errors.New("email_worker: unknown ticket tipo " + p.Tipo)
	}
}
