package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cliente is a registered customer. Monthly purchases and VIP status are never
// stored; they are computed from CompraCliente rows.
type Cliente struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Numero           string    `gorm:"type:varchar(5);uniqueIndex;not null"`
	Nombre           string    `gorm:"not null"`
	Telefono         string
	Email            string
	Notas            string
	RegistradoPor    *uuid.UUID `gorm:"type:uuid"`
	TiendaRegistroID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CompraCliente is one purchase attributed to a client, either a sale or a fully paid apartado.
type CompraCliente struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClienteID  uuid.UUID       `gorm:"type:uuid;not null;index:idx_compras_cliente_fecha,priority:1"`
	VentaID    *uuid.UUID      `gorm:"type:uuid;index"`
	ApartadoID *uuid.UUID      `gorm:"type:uuid;index"`
	TiendaID   uuid.UUID       `gorm:"type:uuid;not null"`
	Monto      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt  time.Time       `gorm:"index:idx_compras_cliente_fecha,priority:2"`
}

func (CompraCliente) TableName() string { return "compras_cliente" }
