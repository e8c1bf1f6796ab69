package repository

import (
	"context"
	"time"

	"fleamarket/internal/dto"
	"fleamarket/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ClienteRepository interface {
	Create(ctx context.Context, c *model.Cliente) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error)
	FindByNumero(ctx context.Context, numero string) (*model.Cliente, error)
	ExisteNumero(ctx context.Context, numero string) (bool, error)
	List(ctx context.Context, filter dto.ClienteFilter) ([]model.Cliente, int64, error)
	Update(ctx context.Context, c *model.Cliente) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Purchases subcollection
	CreateCompraTx(ctx context.Context, tx *gorm.DB, c *model.CompraCliente) error
	DeleteCompraPorVentaTx(ctx context.Context, tx *gorm.DB, ventaID uuid.UUID) error
	SumCompras(ctx context.Context, clienteID uuid.UUID, desde, hasta time.Time) (decimal.Decimal, error)
}

type clienteRepo struct{ db *gorm.DB }

func NewClienteRepository(db *gorm.DB) ClienteRepository { return &clienteRepo{db: db} }

func (r *clienteRepo) Create(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *clienteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error) {
	var c model.Cliente
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *clienteRepo) FindByNumero(ctx context.Context, numero string) (*model.Cliente, error) {
	var c model.Cliente
	err := r.db.WithContext(ctx).Where("numero = ?", numero).First(&c).Error
	return &c, err
}

func (r *clienteRepo) ExisteNumero(ctx context.Context, numero string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Cliente{}).Where("numero = ?", numero).Count(&n).Error
	return n > 0, err
}

func (r *clienteRepo) List(ctx context.Context, filter dto.ClienteFilter) ([]model.Cliente, int64, error) {
	var clientes []model.Cliente
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Cliente{})
	if filter.Buscar != "" {
		like := "%" + filter.Buscar + "%"
		q = q.Where("nombre ILIKE ? OR telefono ILIKE ? OR numero = ?", like, like, filter.Buscar)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("nombre ASC").Limit(filter.Limit).Offset(offset).Find(&clientes).Error
	return clientes, total, err
}

func (r *clienteRepo) Update(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *clienteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cliente_id = ?", id).Delete(&model.CompraCliente{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Cliente{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *clienteRepo) CreateCompraTx(ctx context.Context, tx *gorm.DB, c *model.CompraCliente) error {
	return conn(ctx, r.db, tx).Create(c).Error
}

func (r *clienteRepo) DeleteCompraPorVentaTx(ctx context.Context, tx *gorm.DB, ventaID uuid.UUID) error {
	return conn(ctx, r.db, tx).Where("venta_id = ?", ventaID).Delete(&model.CompraCliente{}).Error
}

// SumCompras totals the client's purchases in [desde, hasta).
func (r *clienteRepo) SumCompras(ctx context.Context, clienteID uuid.UUID, desde, hasta time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(&model.CompraCliente{}).
		Select("COALESCE(SUM(monto), 0)").
		Where("cliente_id = ? AND created_at >= ? AND created_at < ?", clienteID, desde, hasta).
		Row().Scan(&total)
	return total, err
}
