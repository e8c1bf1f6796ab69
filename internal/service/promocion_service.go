package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fleamarket/internal/dto"
	"fleamarket/internal/model"
	"fleamarket/internal/repository"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type PromocionService interface {
	Crear(ctx context.Context, req dto.PromocionRequest) (*dto.PromocionResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.PromocionRequest) (*dto.PromocionResponse, error)
	CambiarActiva(ctx context.Context, id uuid.UUID, activa bool) (*dto.PromocionResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
	Listar(ctx context.Context) ([]dto.PromocionResponse, error)
	// Vigentes lists the promotions currently applicable in a store.
	Vigentes(ctx context.Context, tiendaID uuid.UUID) ([]dto.PromocionResponse, error)
}

type promocionService struct {
	repo  repository.PromocionRepository
	reloj Reloj
}

func NewPromocionService(repo repository.PromocionRepository, reloj Reloj) PromocionService {
	return &promocionService{repo: repo, reloj: reloj}
}

// aplicarPromocion copies the request onto p. The end date is inclusive: a
// promotion ending 2024-06-30 runs until 23:59:59 of that day.
func (s *promocionService) aplicarPromocion(p *model.Promocion, req dto.PromocionRequest) error {
	loc := s.reloj.Ahora().Location()
	inicio, err := time.ParseInLocation("2006-01-02", req.FechaInicio, loc)
	if err != nil {
		return fmt.Errorf("%w: fecha_inicio", ErrFechaInvalida)
	}
	fin, err := time.ParseInLocation("2006-01-02", req.FechaFin, loc)
	if err != nil {
		return fmt.Errorf("%w: fecha_fin", ErrFechaInvalida)
	}
	if fin.Before(inicio) {
		return fmt.Errorf("%w: fecha_fin es anterior a fecha_inicio", ErrFechaInvalida)
	}
	if !req.Global && len(req.Tiendas) == 0 {
		return fmt.Errorf("%w: una promocion no global requiere al menos una tienda", ErrDatoInvalido)
	}
	tiendas := req.Tiendas
	if req.Global {
		tiendas = []string{}
	}

	p.Titulo = strings.TrimSpace(req.Titulo)
	p.Categoria = strings.TrimSpace(req.Categoria)
	p.Valor = req.Valor
	p.Global = req.Global
	p.Tiendas = pq.StringArray(tiendas)
	p.FechaInicio = inicio
	p.FechaFin = fin.AddDate(0, 0, 1).Add(-time.Second)
	if req.Activa != nil {
		p.Activa = *req.Activa
	}
	return nil
}

func (s *promocionService) Crear(ctx context.Context, req dto.PromocionRequest) (*dto.PromocionResponse, error) {
	p := &model.Promocion{Activa: true}
	if err := s.aplicarPromocion(p, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	resp := promocionResponse(p, s.reloj.Ahora())
	return &resp, nil
}

func (s *promocionService) Actualizar(ctx context.Context, id uuid.UUID, req dto.PromocionRequest) (*dto.PromocionResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "promocion")
	}
	if err := s.aplicarPromocion(p, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	resp := promocionResponse(p, s.reloj.Ahora())
	return &resp, nil
}

func (s *promocionService) CambiarActiva(ctx context.Context, id uuid.UUID, activa bool) (*dto.PromocionResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "promocion")
	}
	p.Activa = activa
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	resp := promocionResponse(p, s.reloj.Ahora())
	return &resp, nil
}

func (s *promocionService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return noEncontrado(err, "promocion")
	}
	return s.repo.Delete(ctx, id)
}

func (s *promocionService) Listar(ctx context.Context) ([]dto.PromocionResponse, error) {
	list, err := s.repo.List(ctx, false)
	if err != nil {
		return nil, err
	}
	now := s.reloj.Ahora()
	out := make([]dto.PromocionResponse, 0, len(list))
	for i := range list {
		out = append(out, promocionResponse(&list[i], now))
	}
	return out, nil
}

func (s *promocionService) Vigentes(ctx context.Context, tiendaID uuid.UUID) ([]dto.PromocionResponse, error) {
	list, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	now := s.reloj.Ahora()
	out := []dto.PromocionResponse{}
	for i := range list {
		p := &list[i]
		if p.Estado(now) == model.PromoActiva && p.AplicaATienda(tiendaID) {
			out = append(out, promocionResponse(p, now))
		}
	}
	return out, nil
}
