package repository

import (
	"context"

	"fleamarket/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TiendaRepository interface {
	Create(ctx context.Context, t *model.Tienda) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Tienda, error)
	List(ctx context.Context, incluirInactivas bool) ([]model.Tienda, error)
	Update(ctx context.Context, t *model.Tienda) error
}

type tiendaRepo struct{ db *gorm.DB }

func NewTiendaRepository(db *gorm.DB) TiendaRepository { return &tiendaRepo{db: db} }

func (r *tiendaRepo) Create(ctx context.Context, t *model.Tienda) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *tiendaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Tienda, error) {
	var t model.Tienda
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	return &t, err
}

func (r *tiendaRepo) List(ctx context.Context, incluirInactivas bool) ([]model.Tienda, error) {
	var tiendas []model.Tienda
	q := r.db.WithContext(ctx).Order("nombre ASC")
	if !incluirInactivas {
		q = q.Where("activo = true")
	}
	err := q.Find(&tiendas).Error
	return tiendas, err
}

func (r *tiendaRepo) Update(ctx context.Context, t *model.Tienda) error {
	return r.db.WithContext(ctx).Save(t).Error
}
