package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const (
	PromoActiva     = "activa"
	PromoProgramada = "programada"
	PromoVencida    = "vencida"
	PromoInactiva   = "inactiva"
)

// Promocion is a percentage discount on one product category.
// Global promotions apply to every store; otherwise only the stores in Tiendas.
type Promocion struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Titulo      string          `gorm:"not null"`
	Categoria   string          `gorm:"index;not null"`
	Valor       decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Global      bool            `gorm:"not null;default:false"`
	Tiendas     pq.StringArray  `gorm:"type:text[];not null;default:'{}'"`
	Activa      bool            `gorm:"not null;default:true"`
	FechaInicio time.Time       `gorm:"not null"`
	FechaFin    time.Time       `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Promocion) TableName() string { return "promociones" }

// Estado derives the promotion status from the active flag and the date window.
func (p *Promocion) Estado(now time.Time) string {
	switch {
	case !p.Activa:
		return PromoInactiva
	case now.Before(p.FechaInicio):
		return PromoProgramada
	case now.After(p.FechaFin):
		return PromoVencida
	default:
		return PromoActiva
	}
}

// AplicaATienda reports whether the promotion covers the given store.
func (p *Promocion) AplicaATienda(tiendaID uuid.UUID) bool {
	if p.Global {
		return true
	}
	id := tiendaID.String()
	for _, t := range p.Tiendas {
		if t == id {
			return true
		}
	}
	return false
}
