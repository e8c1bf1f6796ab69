package repository

import (
	"context"
	"fmt"
	"time"

	"fleamarket/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApartadoFilter narrows apartado listings. Zero values mean "any".
type ApartadoFilter struct {
	TiendaID  *uuid.UUID
	ClienteID *uuid.UUID
	Estado    string
}

type ApartadoRepository interface {
	Create(ctx context.Context, tx *gorm.DB, a *model.Apartado) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Apartado, error)
	// FindByIDForUpdate loads the apartado with a row lock held until tx ends.
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Apartado, error)
	UpdateTx(ctx context.Context, tx *gorm.DB, a *model.Apartado) error
	CreatePagoTx(ctx context.Context, tx *gorm.DB, p *model.PagoApartado) error
	List(ctx context.Context, filter ApartadoFilter) ([]model.Apartado, error)
	// ListVencibles returns active apartados whose due date is before now.
	ListVencibles(ctx context.Context, tiendaID *uuid.UUID, now time.Time) ([]model.Apartado, error)
	NextNumero(ctx context.Context, tx *gorm.DB) (string, error)
	DB() *gorm.DB
}

type apartadoRepo struct{ db *gorm.DB }

func NewApartadoRepository(db *gorm.DB) ApartadoRepository { return &apartadoRepo{db: db} }

func (r *apartadoRepo) DB() *gorm.DB { return r.db }

func (r *apartadoRepo) Create(ctx context.Context, tx *gorm.DB, a *model.Apartado) error {
	return conn(ctx, r.db, tx).Create(a).Error
}

func (r *apartadoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Apartado, error) {
	var a model.Apartado
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Pagos", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&a, "id = ?", id).Error
	return &a, err
}

func (r *apartadoRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Apartado, error) {
	var a model.Apartado
	err := conn(ctx, r.db, tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&a, "id = ?", id).Error
	if err != nil {
		return &a, err
	}
	err = conn(ctx, r.db, tx).Where("apartado_id = ?", id).Find(&a.Items).Error
	if err != nil {
		return &a, err
	}
	err = conn(ctx, r.db, tx).Where("apartado_id = ?", id).Order("created_at ASC").Find(&a.Pagos).Error
	return &a, err
}

// UpdateTx saves the header columns only; items and payments are written separately.
func (r *apartadoRepo) UpdateTx(ctx context.Context, tx *gorm.DB, a *model.Apartado) error {
	return conn(ctx, r.db, tx).Omit(clause.Associations).Save(a).Error
}

func (r *apartadoRepo) CreatePagoTx(ctx context.Context, tx *gorm.DB, p *model.PagoApartado) error {
	return conn(ctx, r.db, tx).Create(p).Error
}

func (r *apartadoRepo) List(ctx context.Context, filter ApartadoFilter) ([]model.Apartado, error) {
	q := r.db.WithContext(ctx).Model(&model.Apartado{})
	if filter.TiendaID != nil {
		q = q.Where("tienda_id = ?", *filter.TiendaID)
	}
	if filter.ClienteID != nil {
		q = q.Where("cliente_id = ?", *filter.ClienteID)
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	var apartados []model.Apartado
	err := q.Preload("Items").
		Preload("Pagos", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Order("created_at DESC").
		Find(&apartados).Error
	return apartados, err
}

func (r *apartadoRepo) ListVencibles(ctx context.Context, tiendaID *uuid.UUID, now time.Time) ([]model.Apartado, error) {
	q := r.db.WithContext(ctx).Where("estado = ? AND fecha_limite < ?", model.ApartadoActivo, now)
	if tiendaID != nil {
		q = q.Where("tienda_id = ?", *tiendaID)
	}
	var apartados []model.Apartado
	err := q.Preload("Items").Find(&apartados).Error
	return apartados, err
}

// NextNumero draws from a PostgreSQL sequence and formats it as AP-00001.
func (r *apartadoRepo) NextNumero(ctx context.Context, tx *gorm.DB) (string, error) {
	var num int
	if err := conn(ctx, r.db, tx).Raw("SELECT nextval('apartados_numero_seq')").Scan(&num).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("AP-%05d", num), nil
}
