package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fleamarket/internal/dto"
	"fleamarket/internal/model"
	"fleamarket/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ProductoService defines the business logic contract for products.
type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	Categorias(ctx context.Context) ([]string, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
	// AjustarStock applies a manual correction (recount, breakage) and records it.
	AjustarStock(ctx context.Context, actor Actor, id uuid.UUID, req dto.AjusteStockRequest) (*dto.ProductoResponse, error)
	Movimientos(ctx context.Context, id uuid.UUID, filter dto.MovimientoFilter) ([]dto.MovimientoStockResponse, int64, error)
}

type productoService struct {
	repo        repository.ProductoRepository
	movimientos repository.MovimientoStockRepository
	stock       stockMover
	db          *gorm.DB
	reloj       Reloj
}

// NewProductoService takes the *gorm.DB for stock adjustments; nil runs them without a transaction.
func NewProductoService(repo repository.ProductoRepository, movimientos repository.MovimientoStockRepository, db *gorm.DB, reloj Reloj) ProductoService {
	return &productoService{
		repo:        repo,
		movimientos: movimientos,
		stock:       stockMover{productos: repo, movimientos: movimientos},
		db:          db,
		reloj:       reloj,
	}
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	p := &model.Producto{
		Nombre:    strings.TrimSpace(req.Nombre),
		Categoria: strings.TrimSpace(req.Categoria),
		Precio:    req.Precio,
		Costo:     req.Costo,
		SKU:       strings.TrimSpace(req.SKU),
		Stock:     req.Stock,
		Activo:    true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSKUDuplicado
		}
		return nil, err
	}
	resp := productoResponse(p)
	return &resp, nil
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "producto")
	}
	resp := productoResponse(p)
	return &resp, nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 100
	}
	list, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductoResponse, 0, len(list))
	for i := range list {
		data = append(data, productoResponse(&list[i]))
	}
	return &dto.ProductoListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *productoService) Categorias(ctx context.Context) ([]string, error) {
	return s.repo.Categorias(ctx)
}

func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "producto")
	}
	if req.Nombre != nil {
		p.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.Categoria != nil {
		p.Categoria = strings.TrimSpace(*req.Categoria)
	}
	if req.Precio != nil {
		if !req.Precio.IsPositive() {
			return nil, fmt.Errorf("%w: precio debe ser mayor a cero", ErrDatoInvalido)
		}
		p.Precio = *req.Precio
	}
	if req.Costo != nil {
		if req.Costo.IsNegative() {
			return nil, fmt.Errorf("%w: costo no puede ser negativo", ErrDatoInvalido)
		}
		p.Costo = *req.Costo
	}
	if req.SKU != nil {
		p.SKU = strings.TrimSpace(*req.SKU)
	}
	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSKUDuplicado
		}
		return nil, err
	}
	resp := productoResponse(p)
	return &resp, nil
}

func (s *productoService) Desactivar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return noEncontrado(err, "producto")
	}
	return s.repo.SoftDelete(ctx, id)
}

func (s *productoService) AjustarStock(ctx context.Context, actor Actor, id uuid.UUID, req dto.AjusteStockRequest) (*dto.ProductoResponse, error) {
	if req.Delta == 0 {
		return nil, fmt.Errorf("%w: delta no puede ser cero", ErrDatoInvalido)
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, noEncontrado(err, "producto")
	}
	motivo := fmt.Sprintf("%s (%s)", req.Motivo, actor.Nombre)
	err := runTx(ctx, s.db, func(tx *gorm.DB) error {
		return s.stock.mover(ctx, tx, id, req.Delta, model.MovAjusteManual, motivo, nil, s.reloj.Ahora())
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("producto_id", id.String()).Int("delta", req.Delta).Str("por", actor.Nombre).Msg("ajuste de stock")
	return s.ObtenerPorID(ctx, id)
}

func (s *productoService) Movimientos(ctx context.Context, id uuid.UUID, filter dto.MovimientoFilter) ([]dto.MovimientoStockResponse, int64, error) {
	f := repository.MovimientoStockFilter{ProductoID: &id, Tipo: filter.Tipo, Page: filter.Page, Limit: filter.Limit}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 200 {
		f.Limit = 50
	}
	if filter.ReferenciaID != "" {
		ref, err := uuid.Parse(filter.ReferenciaID)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: referencia_id", ErrDatoInvalido)
		}
		f.ReferenciaID = &ref
	}
	if filter.Desde != "" || filter.Hasta != "" {
		desde, hasta, err := s.reloj.Rango(filter.Desde, filter.Hasta)
		if err != nil {
			return nil, 0, err
		}
		f.Desde, f.Hasta = desde, hasta
	}

	list, total, err := s.movimientos.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.MovimientoStockResponse, 0, len(list))
	for i := range list {
		out = append(out, movimientoResponse(&list[i]))
	}
	return out, total, nil
}
