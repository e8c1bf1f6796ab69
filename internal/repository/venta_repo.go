package repository

import (
	"context"
	"time"

	"fleamarket/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VentaRango selects sales in [Desde, Hasta). Nil ids widen the query.
type VentaRango struct {
	TiendaID  *uuid.UUID
	UsuarioID *uuid.UUID
	Desde     time.Time
	Hasta     time.Time
}

type VentaRepository interface {
	Create(ctx context.Context, tx *gorm.DB, v *model.Venta) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	// UpdateEstado moves a sale from one estado to another. It returns
	// gorm.ErrRecordNotFound when the sale is not currently in estado desde.
	UpdateEstado(ctx context.Context, tx *gorm.DB, id uuid.UUID, desde, hasta string) error
	NextTicketNumber(ctx context.Context, tx *gorm.DB) (int, error)
	ListRango(ctx context.Context, rango VentaRango) ([]model.Venta, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) Create(ctx context.Context, tx *gorm.DB, v *model.Venta) error {
	return conn(ctx, r.db, tx).Create(v).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).Preload("Items").First(&v, "id = ?", id).Error
	return &v, err
}

func (r *ventaRepo) UpdateEstado(ctx context.Context, tx *gorm.DB, id uuid.UUID, desde, hasta string) error {
	res := conn(ctx, r.db, tx).Model(&model.Venta{}).
		Where("id = ? AND estado = ?", id, desde).
		Update("estado", hasta)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ventaRepo) NextTicketNumber(ctx context.Context, tx *gorm.DB) (int, error) {
	var num int
	err := conn(ctx, r.db, tx).Raw("SELECT nextval('ventas_numero_ticket_seq')").Scan(&num).Error
	return num, err
}

func (r *ventaRepo) ListRango(ctx context.Context, rango VentaRango) ([]model.Venta, error) {
	q := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", rango.Desde, rango.Hasta)
	if rango.TiendaID != nil {
		q = q.Where("tienda_id = ?", *rango.TiendaID)
	}
	if rango.UsuarioID != nil {
		q = q.Where("usuario_id = ?", *rango.UsuarioID)
	}
	var ventas []model.Venta
	err := q.Preload("Items").Order("created_at DESC").Find(&ventas).Error
	return ventas, err
}
