package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is a catalog item shared by every store. Stock is a single global count.
type Producto struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string          `gorm:"index;not null"`
	Categoria string          `gorm:"index;not null"`
	Precio    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Costo     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	SKU       string          `gorm:"column:sku;uniqueIndex;not null"`
	Stock     int             `gorm:"not null;default:0"`
	Activo    bool            `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
