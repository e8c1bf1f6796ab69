package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	VentaNormal   = "normal"
	VentaDevuelta = "devuelta"
)

// Venta is a completed checkout. Immutable except for Estado flipping to "devuelta".
type Venta struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NumeroTicket   int        `gorm:"uniqueIndex;not null"`
	TiendaID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_ventas_tienda_fecha,priority:1"`
	UsuarioID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	UsuarioNombre  string     `gorm:"not null"`
	ClienteID      *uuid.UUID `gorm:"type:uuid;index"`
	ClienteNombre  string
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DescuentoPromo decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DescuentoVIP   decimal.Decimal `gorm:"column:descuento_vip;type:decimal(12,2);not null;default:0"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MetodoPago     string          `gorm:"type:varchar(20);not null"`
	// ComisionTarjeta is 4% of Total on card payments. Never shown to sellers or customers.
	ComisionTarjeta decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Estado          string          `gorm:"type:varchar(20);not null;default:'normal'"`
	CreatedAt       time.Time       `gorm:"index:idx_ventas_tienda_fecha,priority:2"`

	Items []VentaItem `gorm:"foreignKey:VentaID"`
}

// VentaItem is a line of a sale. Name, category and price are snapshots taken at checkout.
type VentaItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null"`
	Nombre         string          `gorm:"not null"`
	Categoria      string          `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Cantidad       int             `gorm:"not null"`
	DescuentoPromo decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// PrecioFinal = PrecioUnitario * Cantidad - DescuentoPromo
	PrecioFinal decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}
