package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	MetodoEfectivo      = "efectivo"
	MetodoTarjeta       = "tarjeta"
	MetodoTransferencia = "transferencia"
)

// Tienda is one physical store. Sales, cash closes and apartados are owned by a store.
type Tienda struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"not null"`
	Direccion string
	Telefono  string
	// MetodosPago lists the payment methods this store accepts.
	MetodosPago pq.StringArray `gorm:"type:text[];not null;default:'{efectivo}'"`

	// Transfer details printed on the ticket when paying by transferencia
	Banco   string
	Cuenta  string
	CLABE   string `gorm:"column:clabe"`
	Titular string

	PieTicket string
	Activo    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AceptaMetodo reports whether the store takes the given payment method.
func (t *Tienda) AceptaMetodo(metodo string) bool {
	for _, m := range t.MetodosPago {
		if m == metodo {
			return true
		}
	}
	return false
}
