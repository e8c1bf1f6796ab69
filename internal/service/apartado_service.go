package service

import (
	"context"
	"fmt"
	"time"

	"fleamarket/internal/dto"
	"fleamarket/internal/format"
	"fleamarket/internal/model"
	"fleamarket/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DiasApartado is how long a client has to pay off an apartado.
const DiasApartado = 15

type ApartadoService interface {
	Crear(ctx context.Context, actor Actor, tiendaID uuid.UUID, req dto.CrearApartadoRequest) (*dto.ApartadoResponse, error)
	AgregarPago(ctx context.Context, actor Actor, tiendaID, id uuid.UUID, req dto.PagoApartadoRequest) (*dto.ApartadoResponse, error)
	Cancelar(ctx context.Context, actor Actor, tiendaID, id uuid.UUID, motivo string) (*dto.ApartadoResponse, error)
	Completar(ctx context.Context, actor Actor, tiendaID, id uuid.UUID) (*dto.ApartadoResponse, error)
	Obtener(ctx context.Context, tiendaID, id uuid.UUID) (*dto.ApartadoResponse, error)
	Listar(ctx context.Context, tiendaID uuid.UUID, filter dto.ApartadoFilter) ([]dto.ApartadoResponse, error)
	ListarPorCliente(ctx context.Context, clienteID uuid.UUID, estado string) ([]model.Apartado, error)
	// RevisarVencidos expires every overdue apartado of a store, or of all stores when tiendaID is nil.
	RevisarVencidos(ctx context.Context, tiendaID *uuid.UUID) (int, error)
	Ticket(ctx context.Context, tiendaID, id uuid.UUID) (string, error)
}

type apartadoService struct {
	repo     repository.ApartadoRepository
	tiendas  repository.TiendaRepository
	clientes repository.ClienteRepository
	stock    stockMover
	compras  *ComprasMensuales
	cot      *cotizador
	reloj    Reloj
}

func NewApartadoService(
	repo repository.ApartadoRepository,
	tiendas repository.TiendaRepository,
	clientes repository.ClienteRepository,
	productos repository.ProductoRepository,
	promos repository.PromocionRepository,
	movimientos repository.MovimientoStockRepository,
	compras *ComprasMensuales,
	reloj Reloj,
) ApartadoService {
	return &apartadoService{
		repo:     repo,
		tiendas:  tiendas,
		clientes: clientes,
		stock:    stockMover{productos: productos, movimientos: movimientos},
		compras:  compras,
		cot:      &cotizador{productos: productos, promos: promos, compras: compras, reloj: reloj},
		reloj:    reloj,
	}
}

// ── State transitions ────────────────────────────────────────────────────────
// Pure functions over *model.Apartado. The service wraps them with locking and persistence.

// abrirApartado builds a new active apartado. The deposit must cover at least
// AnticipoMinimo(total) and must be strictly below the total.
func abrirApartado(tienda *model.Tienda, cliente *model.Cliente, items []model.ApartadoItem, total, anticipo decimal.Decimal, notas string, now time.Time) (*model.Apartado, error) {
	if cliente == nil {
		return nil, ErrSinCliente
	}
	if len(items) == 0 {
		return nil, ErrCarritoVacio
	}
	if !EnCentavos(anticipo) {
		return nil, fmt.Errorf("%w: anticipo", ErrMontoInvalido)
	}
	if minimo := AnticipoMinimo(total); anticipo.LessThan(minimo) {
		return nil, fmt.Errorf("%w (minimo %s)", ErrAnticipoInsuficiente, format.Moneda(minimo))
	}
	if anticipo.GreaterThanOrEqual(total) {
		return nil, ErrAnticipoExcedeTotal
	}
	return &model.Apartado{
		ClienteID:       cliente.ID,
		ClienteNombre:   cliente.Nombre,
		ClienteTelefono: cliente.Telefono,
		TiendaID:        tienda.ID,
		TiendaNombre:    tienda.Nombre,
		Total:           total,
		AnticipoPagado:  anticipo,
		SaldoPendiente:  total.Sub(anticipo),
		Estado:          model.ApartadoActivo,
		FechaLimite:     now.AddDate(0, 0, DiasApartado),
		Notas:           notas,
		Items:           items,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// vencido is true for an active apartado past its due date, whatever its balance.
func vencido(a *model.Apartado, now time.Time) bool {
	return a.Estado == model.ApartadoActivo && now.After(a.FechaLimite)
}

// aplicarPago adds an installment. It reports whether the payment settled the balance,
// in which case the apartado is now completado.
func aplicarPago(a *model.Apartado, monto decimal.Decimal, now time.Time) (bool, error) {
	switch {
	case a.Estado == model.ApartadoVencido || vencido(a, now):
		return false, ErrApartadoVencido
	case a.Terminal():
		return false, ErrEstadoInvalido
	case !monto.IsPositive() || !EnCentavos(monto) || monto.GreaterThan(a.SaldoPendiente):
		return false, ErrMontoInvalido
	}
	a.AnticipoPagado = a.AnticipoPagado.Add(monto)
	a.SaldoPendiente = a.Total.Sub(a.AnticipoPagado)
	a.UpdatedAt = now
	if a.SaldoPendiente.IsZero() {
		a.Estado = model.ApartadoCompletado
		return true, nil
	}
	return false, nil
}

// cancelarApartado keeps the payments already received; nothing is refunded.
func cancelarApartado(a *model.Apartado, motivo string, now time.Time) error {
	if a.Terminal() {
		return ErrEstadoInvalido
	}
	a.Estado = model.ApartadoCancelado
	a.MotivoCancelacion = motivo
	a.UpdatedAt = now
	return nil
}

// completarApartado marks the goods as handed over. Only a fully paid apartado qualifies.
func completarApartado(a *model.Apartado, now time.Time) error {
	if a.Estado != model.ApartadoActivo && a.Estado != model.ApartadoCompletado {
		return ErrEstadoInvalido
	}
	if !a.SaldoPendiente.IsZero() {
		return ErrSaldoPendiente
	}
	if a.Entregado {
		return ErrYaEntregado
	}
	a.Estado = model.ApartadoCompletado
	a.Entregado = true
	a.FechaEntrega = &now
	a.UpdatedAt = now
	return nil
}

// ── Crear ────────────────────────────────────────────────────────────────────

func (s *apartadoService) Crear(ctx context.Context, actor Actor, tiendaID uuid.UUID, req dto.CrearApartadoRequest) (*dto.ApartadoResponse, error) {
	if !actor.PuedeOperar(tiendaID) {
		return nil, ErrSinPermiso
	}
	tienda, err := operativa(ctx, s.tiendas, tiendaID, req.MetodoPago)
	if err != nil {
		return nil, err
	}

	var cliente *model.Cliente
	if req.ClienteID != "" {
		if cliente, err = buscarCliente(ctx, s.clientes, &req.ClienteID); err != nil {
			return nil, err
		}
	}
	if cliente == nil {
		return nil, ErrSinCliente
	}

	// Layaways never carry a card commission, whatever the deposit method.
	carrito, lineas, err := s.cot.cotizar(ctx, tiendaID, req.Items, cliente, "")
	if err != nil {
		return nil, err
	}

	now := s.reloj.Ahora()
	a, err := abrirApartado(tienda, cliente, apartadoItems(carrito.Items), carrito.Total, req.Anticipo, req.Notas, now)
	if err != nil {
		return nil, err
	}
	a.Pagos = []model.PagoApartado{{
		Monto:       req.Anticipo,
		MetodoPago:  req.MetodoPago,
		RecibidoPor: actor.Nombre,
		CreatedAt:   now,
	}}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		numero, err := s.repo.NextNumero(ctx, tx)
		if err != nil {
			return err
		}
		a.Numero = numero
		if err := s.repo.Create(ctx, tx, a); err != nil {
			return err
		}
		for _, l := range lineas {
			if err := s.stock.mover(ctx, tx, l.Producto.ID, -l.Cantidad, model.MovApartado, "Apartado "+a.Numero, &a.ID, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("apartado", a.Numero).
		Str("tienda_id", tiendaID.String()).
		Str("total", a.Total.StringFixed(2)).
		Msg("apartado creado")
	resp := apartadoResponse(a, now)
	return &resp, nil
}

// ── AgregarPago ──────────────────────────────────────────────────────────────

func (s *apartadoService) AgregarPago(ctx context.Context, actor Actor, tiendaID, id uuid.UUID, req dto.PagoApartadoRequest) (*dto.ApartadoResponse, error) {
	if !actor.PuedeOperar(tiendaID) {
		return nil, ErrSinPermiso
	}
	if _, err := operativa(ctx, s.tiendas, tiendaID, req.MetodoPago); err != nil {
		return nil, err
	}
	// An overdue apartado is expired first, so the payment below sees it as vencido.
	if _, err := s.vencerSiCorresponde(ctx, tiendaID, id); err != nil {
		return nil, err
	}

	var (
		a          *model.Apartado
		completado bool
	)
	now := s.reloj.Ahora()
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		if a, err = s.cargarParaActualizar(ctx, tx, tiendaID, id); err != nil {
			return err
		}
		if completado, err = aplicarPago(a, req.Monto, now); err != nil {
			return err
		}
		pago := model.PagoApartado{
			ApartadoID:  a.ID,
			Monto:       req.Monto,
			MetodoPago:  req.MetodoPago,
			RecibidoPor: actor.Nombre,
			CreatedAt:   now,
		}
		if err := s.repo.CreatePagoTx(ctx, tx, &pago); err != nil {
			return err
		}
		a.Pagos = append(a.Pagos, pago)
		if err := s.repo.UpdateTx(ctx, tx, a); err != nil {
			return err
		}
		if !completado {
			return nil
		}
		return s.clientes.CreateCompraTx(ctx, tx, &model.CompraCliente{
			ClienteID:  a.ClienteID,
			ApartadoID: &a.ID,
			TiendaID:   a.TiendaID,
			Monto:      a.Total,
			CreatedAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}

	if completado {
		s.compras.Invalidar(ctx, a.ClienteID)
		log.Info().Str("apartado", a.Numero).Msg("apartado liquidado")
	}
	resp := apartadoResponse(a, now)
	return &resp, nil
}

// ── Cancelar / Completar ─────────────────────────────────────────────────────

func (s *apartadoService) Cancelar(ctx context.Context, actor Actor, tiendaID, id uuid.UUID, motivo string) (*dto.ApartadoResponse, error) {
	if !actor.PuedeOperar(tiendaID) {
		return nil, ErrSinPermiso
	}
	if _, err := s.vencerSiCorresponde(ctx, tiendaID, id); err != nil {
		return nil, err
	}

	var a *model.Apartado
	now := s.reloj.Ahora()
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		if a, err = s.cargarParaActualizar(ctx, tx, tiendaID, id); err != nil {
			return err
		}
		if err := cancelarApartado(a, motivo, now); err != nil {
			return err
		}
		if err := s.repo.UpdateTx(ctx, tx, a); err != nil {
			return err
		}
		return s.liberarStock(ctx, tx, a, "Cancelacion "+a.Numero, now)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("apartado", a.Numero).Str("motivo", motivo).Msg("apartado cancelado")
	resp := apartadoResponse(a, now)
	return &resp, nil
}

func (s *apartadoService) Completar(ctx context.Context, actor Actor, tiendaID, id uuid.UUID) (*dto.ApartadoResponse, error) {
	if !actor.PuedeOperar(tiendaID) {
		return nil, ErrSinPermiso
	}
	var a *model.Apartado
	now := s.reloj.Ahora()
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		if a, err = s.cargarParaActualizar(ctx, tx, tiendaID, id); err != nil {
			return err
		}
		if err := completarApartado(a, now); err != nil {
			return err
		}
		return s.repo.UpdateTx(ctx, tx, a)
	})
	if err != nil {
		return nil, err
	}
	resp := apartadoResponse(a, now)
	return &resp, nil
}

// ── Reads ────────────────────────────────────────────────────────────────────
// Every read expires overdue apartados first, so callers never see a stale activo.

func (s *apartadoService) Obtener(ctx context.Context, tiendaID, id uuid.UUID) (*dto.ApartadoResponse, error) {
	a, err := s.vencerSiCorresponde(ctx, tiendaID, id)
	if err != nil {
		return nil, err
	}
	resp := apartadoResponse(a, s.reloj.Ahora())
	return &resp, nil
}

func (s *apartadoService) Listar(ctx context.Context, tiendaID uuid.UUID, filter dto.ApartadoFilter) ([]dto.ApartadoResponse, error) {
	if _, err := s.RevisarVencidos(ctx, &tiendaID); err != nil {
		log.Warn().Err(err).Str("tienda_id", tiendaID.String()).Msg("revision de vencidos fallo")
	}
	list, err := s.repo.List(ctx, repository.ApartadoFilter{TiendaID: &tiendaID, Estado: filter.Estado})
	if err != nil {
		return nil, err
	}
	now := s.reloj.Ahora()
	out := make([]dto.ApartadoResponse, 0, len(list))
	for i := range list {
		out = append(out, apartadoResponse(&list[i], now))
	}
	return out, nil
}

func (s *apartadoService) ListarPorCliente(ctx context.Context, clienteID uuid.UUID, estado string) ([]model.Apartado, error) {
	list, err := s.repo.List(ctx, repository.ApartadoFilter{ClienteID: &clienteID})
	if err != nil {
		return nil, err
	}
	now := s.reloj.Ahora()
	out := make([]model.Apartado, 0, len(list))
	for i := range list {
		a := &list[i]
		if vencido(a, now) {
			if err := s.vencer(ctx, a.ID); err != nil {
				return nil, err
			}
			a.Estado = model.ApartadoVencido
		}
		if estado == "" || a.Estado == estado {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *apartadoService) Ticket(ctx context.Context, tiendaID, id uuid.UUID) (string, error) {
	a, err := s.vencerSiCorresponde(ctx, tiendaID, id)
	if err != nil {
		return "", err
	}
	tienda, err := s.tiendas.FindByID(ctx, tiendaID)
	if err != nil {
		return "", noEncontrado(err, "tienda")
	}
	return format.TicketApartado(tienda, a), nil
}

// ── Expiry ───────────────────────────────────────────────────────────────────

func (s *apartadoService) RevisarVencidos(ctx context.Context, tiendaID *uuid.UUID) (int, error) {
	list, err := s.repo.ListVencibles(ctx, tiendaID, s.reloj.Ahora())
	if err != nil {
		return 0, err
	}
	n := 0
	for _, a := range list {
		if err := s.vencer(ctx, a.ID); err != nil {
			return n, err
		}
		n++
	}
	if n > 0 {
		log.Info().Int("vencidos", n).Msg("apartados vencidos")
	}
	return n, nil
}

// vencerSiCorresponde loads an apartado of the store and expires it when overdue.
func (s *apartadoService) vencerSiCorresponde(ctx context.Context, tiendaID, id uuid.UUID) (*model.Apartado, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "apartado")
	}
	if a.TiendaID != tiendaID {
		return nil, fmt.Errorf("%w: apartado", ErrNoEncontrado)
	}
	if !vencido(a, s.reloj.Ahora()) {
		return a, nil
	}
	if err := s.vencer(ctx, a.ID); err != nil {
		return nil, err
	}
	a.Estado = model.ApartadoVencido
	return a, nil
}

// vencer re-checks under the row lock; a concurrent payment or sweep may have won.
func (s *apartadoService) vencer(ctx context.Context, id uuid.UUID) error {
	now := s.reloj.Ahora()
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		a, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return noEncontrado(err, "apartado")
		}
		if !vencido(a, now) {
			return nil
		}
		a.Estado = model.ApartadoVencido
		a.UpdatedAt = now
		if err := s.repo.UpdateTx(ctx, tx, a); err != nil {
			return err
		}
		return s.liberarStock(ctx, tx, a, "Vencimiento "+a.Numero, now)
	})
}

func (s *apartadoService) cargarParaActualizar(ctx context.Context, tx *gorm.DB, tiendaID, id uuid.UUID) (*model.Apartado, error) {
	a, err := s.repo.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, noEncontrado(err, "apartado")
	}
	if a.TiendaID != tiendaID {
		return nil, fmt.Errorf("%w: apartado", ErrNoEncontrado)
	}
	return a, nil
}

// liberarStock returns the reserved units of a cancelled or expired apartado.
func (s *apartadoService) liberarStock(ctx context.Context, tx *gorm.DB, a *model.Apartado, motivo string, now time.Time) error {
	for _, it := range a.Items {
		if err := s.stock.mover(ctx, tx, it.ProductoID, it.Cantidad, model.MovLiberacionApartado, motivo, &a.ID, now); err != nil {
			return err
		}
	}
	return nil
}

// operativa loads a store and checks it can take a payment with metodo.
func operativa(ctx context.Context, repo repository.TiendaRepository, tiendaID uuid.UUID, metodo string) (*model.Tienda, error) {
	t, err := repo.FindByID(ctx, tiendaID)
	if err != nil {
		return nil, noEncontrado(err, "tienda")
	}
	if !t.Activo {
		return nil, ErrTiendaInactiva
	}
	if metodo != "" && !t.AceptaMetodo(metodo) {
		return nil, fmt.Errorf("%w: %s", ErrMetodoNoAceptado, metodo)
	}
	return t, nil
}
