package service

import (
	"context"
	"errors"
	"fmt"

	"fleamarket/internal/dto"
	"fleamarket/internal/format"
	"fleamarket/internal/model"
	"fleamarket/internal/repository"
	"fleamarket/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// TicketNotifier queues ticket emails. *worker.Dispatcher implements it.
type TicketNotifier interface {
	EnqueueEmailTicket(ctx context.Context, p worker.EmailTicketPayload) error
}

type VentaService interface {
	Cotizar(ctx context.Context, actor Actor, tiendaID uuid.UUID, req dto.CotizarRequest) (*dto.CotizacionResponse, error)
	RegistrarVenta(ctx context.Context, actor Actor, tiendaID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	DevolverVenta(ctx context.Context, actor Actor, tiendaID, id uuid.UUID) (*dto.VentaResponse, error)
	ListarVentas(ctx context.Context, actor Actor, tiendaID uuid.UUID, filter dto.RangoFilter) ([]dto.VentaResponse, error)
	ObtenerVenta(ctx context.Context, actor Actor, tiendaID, id uuid.UUID) (*dto.VentaResponse, error)
	Ticket(ctx context.Context, tiendaID, id uuid.UUID) (string, error)
}

type ventaService struct {
	repo     repository.VentaRepository
	tiendas  repository.TiendaRepository
	clientes repository.ClienteRepository
	stock    stockMover
	compras  *ComprasMensuales
	cot      *cotizador
	notifier TicketNotifier
	reloj    Reloj
}

func NewVentaService(
	repo repository.VentaRepository,
	tiendas repository.TiendaRepository,
	clientes repository.ClienteRepository,
	productos repository.ProductoRepository,
	promos repository.PromocionRepository,
	movimientos repository.MovimientoStockRepository,
	compras *ComprasMensuales,
	notifier TicketNotifier,
	reloj Reloj,
) VentaService {
	return &ventaService{
		repo:     repo,
		tiendas:  tiendas,
		clientes: clientes,
		stock:    stockMover{productos: productos, movimientos: movimientos},
		compras:  compras,
		cot:      &cotizador{productos: productos, promos: promos, compras: compras, reloj: reloj},
		notifier: notifier,
		reloj:    reloj,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Cotizar ──────────────────────────────────────────────────────────────────

func (s *ventaService) Cotizar(ctx context.Context, actor Actor, tiendaID uuid.UUID, req dto.CotizarRequest) (*dto.CotizacionResponse, error) {
	if !actor.PuedeOperar(tiendaID) {
		return nil, ErrSinPermiso
	}
	cliente, err := buscarCliente(ctx, s.clientes, req.ClienteID)
	if err != nil {
		return nil, err
	}
	carrito, _, err := s.cot.cotizar(ctx, tiendaID, req.Items, cliente, req.MetodoPago)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ItemVentaResponse, 0, len(carrito.Items))
	for _, it := range carrito.Items {
		items = append(items, itemVentaResponse(it))
	}
	return &dto.CotizacionResponse{
		Items:          items,
		Subtotal:       carrito.Subtotal,
		DescuentoPromo: carrito.DescuentoPromo,
		DescuentoVIP:   carrito.DescuentoVIP,
		Total:          carrito.Total,
		EsVIP:          carrito.EsVIP,
		AnticipoMinimo: AnticipoMinimo(carrito.Total),
	}, nil
}

// ── RegistrarVenta ───────────────────────────────────────────────────────────
// One transaction: ticket number, venta + items, stock decrement with its
// movimientos, and the client's purchase record. Email goes out afterwards.

func (s *ventaService) RegistrarVenta(ctx context.Context, actor Actor, tiendaID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	if !actor.PuedeOperar(tiendaID) {
		return nil, ErrSinPermiso
	}
	tienda, err := operativa(ctx, s.tiendas, tiendaID, req.MetodoPago)
	if err != nil {
		return nil, err
	}
	cliente, err := buscarCliente(ctx, s.clientes, req.ClienteID)
	if err != nil {
		return nil, err
	}
	carrito, lineas, err := s.cot.cotizar(ctx, tiendaID, req.Items, cliente, req.MetodoPago)
	if err != nil {
		return nil, err
	}

	now := s.reloj.Ahora()
	venta := model.Venta{
		TiendaID:        tiendaID,
		UsuarioID:       actor.UsuarioID,
		UsuarioNombre:   actor.Nombre,
		Subtotal:        carrito.Subtotal,
		DescuentoPromo:  carrito.DescuentoPromo,
		DescuentoVIP:    carrito.DescuentoVIP,
		Total:           carrito.Total,
		MetodoPago:      req.MetodoPago,
		ComisionTarjeta: carrito.ComisionTarjeta,
		Estado:          model.VentaNormal,
		CreatedAt:       now,
		Items:           carrito.Items,
	}
	if cliente != nil {
		venta.ClienteID = &cliente.ID
		venta.ClienteNombre = cliente.Nombre
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ticket, err := s.repo.NextTicketNumber(ctx, tx)
		if err != nil {
			return err
		}
		venta.NumeroTicket = ticket
		if err := s.repo.Create(ctx, tx, &venta); err != nil {
			return err
		}
		motivo := fmt.Sprintf("Venta #%06d", ticket)
		for _, l := range lineas {
			if err := s.stock.mover(ctx, tx, l.Producto.ID, -l.Cantidad, model.MovVenta, motivo, &venta.ID, now); err != nil {
				return err
			}
		}
		if cliente == nil {
			return nil
		}
		return s.clientes.CreateCompraTx(ctx, tx, &model.CompraCliente{
			ClienteID: cliente.ID,
			VentaID:   &venta.ID,
			TiendaID:  tiendaID,
			Monto:     venta.Total,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	if cliente != nil {
		s.compras.Invalidar(ctx, cliente.ID)
		if req.EnviarTicket {
			s.enviarTicket(ctx, worker.TicketVenta, venta.ID, tiendaID, cliente.Email)
		}
	}

	log.Info().
		Int("ticket", venta.NumeroTicket).
		Str("tienda_id", tiendaID.String()).
		Str("total", venta.Total.StringFixed(2)).
		Str("metodo", venta.MetodoPago).
		Msg("venta registrada")

	resp := ventaResponse(&venta, actor.EsAdmin())
	resp.Ticket = format.TicketVenta(tienda, &venta)
	return &resp, nil
}

// enviarTicket is best-effort: a failed enqueue never fails the sale.
func (s *ventaService) enviarTicket(ctx context.Context, tipo string, id, tiendaID uuid.UUID, email string) {
	if s.notifier == nil || email == "" {
		return
	}
	err := s.notifier.EnqueueEmailTicket(ctx, worker.EmailTicketPayload{
		Tipo:     tipo,
		ID:       id.String(),
		TiendaID: tiendaID.String(),
		Email:    email,
	})
	if err != nil {
		log.Warn().Err(err).Str("id", id.String()).Msg("no se pudo encolar el ticket por email")
	}
}

// ── DevolverVenta ────────────────────────────────────────────────────────────
// Admin only. Restores stock and removes the purchase from the client's month.

func (s *ventaService) DevolverVenta(ctx context.Context, actor Actor, tiendaID, id uuid.UUID) (*dto.VentaResponse, error) {
	if !actor.EsAdmin() {
		return nil, ErrSinPermiso
	}
	venta, err := s.cargar(ctx, tiendaID, id)
	if err != nil {
		return nil, err
	}
	if venta.Estado == model.VentaDevuelta {
		return nil, ErrVentaYaDevuelta
	}

	now := s.reloj.Ahora()
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateEstado(ctx, tx, venta.ID, model.VentaNormal, model.VentaDevuelta); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVentaYaDevuelta
			}
			return err
		}
		motivo := fmt.Sprintf("Devolucion venta #%06d", venta.NumeroTicket)
		for _, it := range venta.Items {
			if err := s.stock.mover(ctx, tx, it.ProductoID, it.Cantidad, model.MovDevolucion, motivo, &venta.ID, now); err != nil {
				return err
			}
		}
		if venta.ClienteID == nil {
			return nil
		}
		return s.clientes.DeleteCompraPorVentaTx(ctx, tx, venta.ID)
	})
	if err != nil {
		return nil, err
	}
	if venta.ClienteID != nil {
		s.compras.Invalidar(ctx, *venta.ClienteID)
	}

	venta.Estado = model.VentaDevuelta
	log.Info().Int("ticket", venta.NumeroTicket).Str("admin", actor.Nombre).Msg("venta devuelta")
	resp := ventaResponse(venta, true)
	return &resp, nil
}

// ── Reads ────────────────────────────────────────────────────────────────────

func (s *ventaService) ListarVentas(ctx context.Context, actor Actor, tiendaID uuid.UUID, filter dto.RangoFilter) ([]dto.VentaResponse, error) {
	if !actor.PuedeOperar(tiendaID) {
		return nil, ErrSinPermiso
	}
	desde, hasta, err := s.reloj.Rango(filter.Desde, filter.Hasta)
	if err != nil {
		return nil, err
	}
	ventas, err := s.repo.ListRango(ctx, repository.VentaRango{TiendaID: &tiendaID, Desde: desde, Hasta: hasta})
	if err != nil {
		return nil, err
	}
	out := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		out = append(out, ventaResponse(&ventas[i], actor.EsAdmin()))
	}
	return out, nil
}

func (s *ventaService) ObtenerVenta(ctx context.Context, actor Actor, tiendaID, id uuid.UUID) (*dto.VentaResponse, error) {
	if !actor.PuedeOperar(tiendaID) {
		return nil, ErrSinPermiso
	}
	venta, err := s.cargar(ctx, tiendaID, id)
	if err != nil {
		return nil, err
	}
	resp := ventaResponse(venta, actor.EsAdmin())
	return &resp, nil
}

func (s *ventaService) Ticket(ctx context.Context, tiendaID, id uuid.UUID) (string, error) {
	venta, err := s.cargar(ctx, tiendaID, id)
	if err != nil {
		return "", err
	}
	tienda, err := s.tiendas.FindByID(ctx, tiendaID)
	if err != nil {
		return "", noEncontrado(err, "tienda")
	}
	return format.TicketVenta(tienda, venta), nil
}

// cargar scopes a sale to its store; a sale of another store reads as not found.
func (s *ventaService) cargar(ctx context.Context, tiendaID, id uuid.UUID) (*model.Venta, error) {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "venta")
	}
	if venta.TiendaID != tiendaID {
		return nil, fmt.Errorf("%w: venta", ErrNoEncontrado)
	}
	return venta, nil
}
