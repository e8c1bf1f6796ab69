package repository

import (
	"context"
	"time"

	"fleamarket/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CajaRepository stores cash-close records. Closes are append-only: there is no Update or Delete.
type CajaRepository interface {
	CreateCierre(ctx context.Context, c *model.CierreCaja) error
	ListCierres(ctx context.Context, tiendaID uuid.UUID, desde, hasta time.Time) ([]model.CierreCaja, error)
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) CreateCierre(ctx context.Context, c *model.CierreCaja) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *cajaRepo) ListCierres(ctx context.Context, tiendaID uuid.UUID, desde, hasta time.Time) ([]model.CierreCaja, error) {
	var cierres []model.CierreCaja
	err := r.db.WithContext(ctx).
		Where("tienda_id = ? AND created_at >= ? AND created_at < ?", tiendaID, desde, hasta).
		Order("created_at ASC").
		Find(&cierres).Error
	return cierres, err
}
