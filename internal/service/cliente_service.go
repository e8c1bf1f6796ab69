package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"fleamarket/internal/dto"
	"fleamarket/internal/format"
	"fleamarket/internal/model"
	"fleamarket/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// intentosNumero bounds the search for a free 5-digit client number.
const intentosNumero = 10

type ClienteService interface {
	Crear(ctx context.Context, actor Actor, req dto.ClienteRequest) (*dto.ClienteResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ClienteRequest) (*dto.ClienteResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error)
	ObtenerPorNumero(ctx context.Context, numero string) (*dto.ClienteResponse, error)
	Listar(ctx context.Context, filter dto.ClienteFilter) (*dto.ClienteListResponse, error)
	// VistaPublica is the unauthenticated view a customer reaches with their client number.
	VistaPublica(ctx context.Context, numero string) (*dto.ClientePublicoResponse, error)
}

type clienteService struct {
	repo      repository.ClienteRepository
	compras   *ComprasMensuales
	apartados ApartadoService
	// numero draws a candidate client number; tests replace it.
	numero func() string
}

func NewClienteService(repo repository.ClienteRepository, compras *ComprasMensuales, apartados ApartadoService) ClienteService {
	return &clienteService{repo: repo, compras: compras, apartados: apartados, numero: numeroAleatorio}
}

func numeroAleatorio() string {
	return strconv.Itoa(10000 + rand.Intn(90000))
}

func (s *clienteService) Crear(ctx context.Context, actor Actor, req dto.ClienteRequest) (*dto.ClienteResponse, error) {
	c := &model.Cliente{
		Nombre:           strings.TrimSpace(req.Nombre),
		Telefono:         strings.TrimSpace(req.Telefono),
		Email:            strings.ToLower(strings.TrimSpace(req.Email)),
		Notas:            req.Notas,
		TiendaRegistroID: actor.TiendaID,
	}
	if actor.UsuarioID != uuid.Nil {
		c.RegistradoPor = &actor.UsuarioID
	}

	for i := 0; i < intentosNumero; i++ {
		numero := s.numero()
		existe, err := s.repo.ExisteNumero(ctx, numero)
		if err != nil {
			return nil, err
		}
		if existe {
			continue
		}
		c.Numero = numero
		err = s.repo.Create(ctx, c)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost the race for this number
			continue
		}
		if err != nil {
			return nil, err
		}
		return s.respuesta(ctx, c)
	}
	return nil, ErrNumeroNoDisponible
}

func (s *clienteService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ClienteRequest) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "cliente")
	}
	c.Nombre = strings.TrimSpace(req.Nombre)
	c.Telefono = strings.TrimSpace(req.Telefono)
	c.Email = strings.ToLower(strings.TrimSpace(req.Email))
	c.Notas = req.Notas
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return s.respuesta(ctx, c)
}

func (s *clienteService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return noEncontrado(err, "cliente")
	}
	s.compras.Invalidar(ctx, id)
	return nil
}

func (s *clienteService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "cliente")
	}
	return s.respuesta(ctx, c)
}

func (s *clienteService) ObtenerPorNumero(ctx context.Context, numero string) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByNumero(ctx, strings.TrimSpace(numero))
	if err != nil {
		return nil, noEncontrado(err, "cliente")
	}
	return s.respuesta(ctx, c)
}

// Listar does not compute monthly purchases per row; ComprasMes is zero in the list.
func (s *clienteService) Listar(ctx context.Context, filter dto.ClienteFilter) (*dto.ClienteListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	list, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ClienteResponse, 0, len(list))
	for i := range list {
		data = append(data, clienteResponse(&list[i], decimal.Zero))
	}
	return &dto.ClienteListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *clienteService) VistaPublica(ctx context.Context, numero string) (*dto.ClientePublicoResponse, error) {
	c, err := s.repo.FindByNumero(ctx, strings.TrimSpace(numero))
	if err != nil {
		return nil, noEncontrado(err, "cliente")
	}
	compras, err := s.compras.Total(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	activos, err := s.apartados.ListarPorCliente(ctx, c.ID, model.ApartadoActivo)
	if err != nil {
		return nil, err
	}

	faltan := UmbralVIP.Sub(compras)
	if faltan.IsNegative() {
		faltan = decimal.Zero
	}
	resumen := make([]dto.ApartadoResumenItem, 0, len(activos))
	for _, a := range activos {
		resumen = append(resumen, dto.ApartadoResumenItem{
			Numero:         a.Numero,
			Tienda:         a.TiendaNombre,
			Total:          a.Total,
			SaldoPendiente: a.SaldoPendiente,
			FechaLimite:    format.Fecha(a.FechaLimite),
		})
	}
	return &dto.ClientePublicoResponse{
		Numero:        c.Numero,
		Nombre:        c.Nombre,
		ComprasMes:    compras,
		EsVIP:         EsVIP(compras),
		FaltanParaVIP: faltan,
		Apartados:     resumen,
	}, nil
}

func (s *clienteService) respuesta(ctx context.Context, c *model.Cliente) (*dto.ClienteResponse, error) {
	compras, err := s.compras.Total(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("compras del mes: %w", err)
	}
	resp := clienteResponse(c, compras)
	return &resp, nil
}

func clienteResponse(c *model.Cliente, comprasMes decimal.Decimal) dto.ClienteResponse {
	return dto.ClienteResponse{
		ID:         c.ID.String(),
		Numero:     c.Numero,
		Nombre:     c.Nombre,
		Telefono:   c.Telefono,
		Email:      c.Email,
		Notas:      c.Notas,
		ComprasMes: comprasMes,
		EsVIP:      EsVIP(comprasMes),
		CreatedAt:  format.ISO(c.CreatedAt),
	}
}
