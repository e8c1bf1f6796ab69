package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	CierreManana = "manana"
	CierreTarde  = "tarde"
	CierreNoche  = "noche"
	CierreManual = "manual"
	CierreLimite = "limite"
)

// CierreCaja is a cash-close reconciliation event. Created once, never modified.
type CierreCaja struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TiendaID      uuid.UUID `gorm:"type:uuid;not null;index:idx_cierres_tienda_fecha,priority:1"`
	UsuarioID     uuid.UUID `gorm:"type:uuid;not null"`
	UsuarioNombre string    `gorm:"not null"`
	Tipo          string    `gorm:"type:varchar(20);not null"`
	// MontoEsperado is computed when the close is submitted and never recomputed.
	MontoEsperado decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MontoContado  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Diferencia = MontoContado - MontoEsperado
	Diferencia  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Notas       string
	NumVentas   int             `gorm:"not null;default:0"`
	TotalVentas decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt   time.Time       `gorm:"index:idx_cierres_tienda_fecha,priority:2"`
}

func (CierreCaja) TableName() string { return "cierres_caja" }
