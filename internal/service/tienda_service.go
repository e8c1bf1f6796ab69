package service

import (
	"context"
	"strings"

	"fleamarket/internal/dto"
	"fleamarket/internal/model"
	"fleamarket/internal/repository"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type TiendaService interface {
	Crear(ctx context.Context, req dto.TiendaRequest) (*dto.TiendaResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.TiendaRequest) (*dto.TiendaResponse, error)
	Obtener(ctx context.Context, actor Actor, id uuid.UUID) (*dto.TiendaResponse, error)
	// Listar returns every store to admins and only the assigned store to sellers.
	Listar(ctx context.Context, actor Actor, incluirInactivas bool) ([]dto.TiendaResponse, error)
}

type tiendaService struct {
	repo repository.TiendaRepository
}

func NewTiendaService(repo repository.TiendaRepository) TiendaService {
	return &tiendaService{repo: repo}
}

func aplicarTienda(t *model.Tienda, req dto.TiendaRequest) {
	t.Nombre = strings.TrimSpace(req.Nombre)
	t.Direccion = req.Direccion
	t.Telefono = req.Telefono
	t.MetodosPago = pq.StringArray(req.MetodosPago)
	t.Banco = req.Banco
	t.Cuenta = req.Cuenta
	t.CLABE = req.CLABE
	t.Titular = req.Titular
	t.PieTicket = req.PieTicket
	if req.Activo != nil {
		t.Activo = *req.Activo
	}
}

func (s *tiendaService) Crear(ctx context.Context, req dto.TiendaRequest) (*dto.TiendaResponse, error) {
	t := &model.Tienda{Activo: true}
	aplicarTienda(t, req)
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	resp := tiendaResponse(t)
	return &resp, nil
}

func (s *tiendaService) Actualizar(ctx context.Context, id uuid.UUID, req dto.TiendaRequest) (*dto.TiendaResponse, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "tienda")
	}
	aplicarTienda(t, req)
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	resp := tiendaResponse(t)
	return &resp, nil
}

func (s *tiendaService) Obtener(ctx context.Context, actor Actor, id uuid.UUID) (*dto.TiendaResponse, error) {
	if !actor.PuedeOperar(id) {
		return nil, ErrSinPermiso
	}
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "tienda")
	}
	resp := tiendaResponse(t)
	return &resp, nil
}

func (s *tiendaService) Listar(ctx context.Context, actor Actor, incluirInactivas bool) ([]dto.TiendaResponse, error) {
	if !actor.EsAdmin() {
		if actor.TiendaID == nil {
			return []dto.TiendaResponse{}, nil
		}
		t, err := s.repo.FindByID(ctx, *actor.TiendaID)
		if err != nil {
			return nil, noEncontrado(err, "tienda")
		}
		return []dto.TiendaResponse{tiendaResponse(t)}, nil
	}
	list, err := s.repo.List(ctx, incluirInactivas)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TiendaResponse, 0, len(list))
	for i := range list {
		out = append(out, tiendaResponse(&list[i]))
	}
	return out, nil
}
