package repository

import (
	"context"
	"time"

	"fleamarket/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovimientoStockFilter narrows the stock ledger. Zero values do not filter.
type MovimientoStockFilter struct {
	ProductoID   *uuid.UUID
	ReferenciaID *uuid.UUID // venta or apartado
	Tipo         string
	Desde, Hasta time.Time // [Desde, Hasta)
	Page         int
	Limit        int
}

func (f MovimientoStockFilter) scope(q *gorm.DB) *gorm.DB {
	if f.ProductoID != nil {
		q = q.Where("producto_id = ?", *f.ProductoID)
	}
	if f.ReferenciaID != nil {
		q = q.Where("referencia_id = ?", *f.ReferenciaID)
	}
	if f.Tipo != "" {
		q = q.Where("tipo = ?", f.Tipo)
	}
	if !f.Desde.IsZero() {
		q = q.Where("created_at >= ?", f.Desde)
	}
	if !f.Hasta.IsZero() {
		q = q.Where("created_at < ?", f.Hasta)
	}
	return q
}

// MovimientoStockRepository is append-only: movements are never updated or deleted.
type MovimientoStockRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, m *model.MovimientoStock) error
	List(ctx context.Context, filter MovimientoStockFilter) ([]model.MovimientoStock, int64, error)
}

type movimientoStockRepo struct{ db *gorm.DB }

func NewMovimientoStockRepository(db *gorm.DB) MovimientoStockRepository {
	return &movimientoStockRepo{db: db}
}

func (r *movimientoStockRepo) CreateTx(ctx context.Context, tx *gorm.DB, m *model.MovimientoStock) error {
	return conn(ctx, r.db, tx).Create(m).Error
}

// List returns the newest movements first.
func (r *movimientoStockRepo) List(ctx context.Context, filter MovimientoStockFilter) ([]model.MovimientoStock, int64, error) {
	base := r.db.WithContext(ctx).Model(&model.MovimientoStock{}).Scopes(filter.scope)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit < 1 || limit > 500 {
		limit = 100
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	var out []model.MovimientoStock
	err := base.Order("created_at DESC, id").Offset(offset).Limit(limit).Find(&out).Error
	return out, total, err
}
