package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	MovVenta              = "venta"
	MovApartado           = "apartado"
	MovLiberacionApartado = "liberacion_apartado"
	MovDevolucion         = "devolucion"
	MovAjusteManual       = "ajuste_manual"
)

// MovimientoStock records every change to a product's stock count.
type MovimientoStock struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Tipo          string    `gorm:"type:varchar(30);not null"`
	Cantidad      int       `gorm:"not null"` // positive = entrada, negative = salida
	StockAnterior int       `gorm:"not null"`
	StockNuevo    int       `gorm:"not null"`
	Motivo        string
	// ReferenciaID points at the venta or apartado that caused the movement
	ReferenciaID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt    time.Time
}

func (MovimientoStock) TableName() string { return "movimientos_stock" }
