package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ApartadoActivo     = "activo"
	ApartadoCompletado = "completado"
	ApartadoCancelado  = "cancelado"
	ApartadoVencido    = "vencido"
)

// Apartado is a layaway: goods reserved for a client who pays in installments.
// Invariant: SaldoPendiente == Total - AnticipoPagado.
type Apartado struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Numero string    `gorm:"type:varchar(20);uniqueIndex;not null"`

	ClienteID       uuid.UUID `gorm:"type:uuid;not null;index"`
	ClienteNombre   string    `gorm:"not null"`
	ClienteTelefono string

	TiendaID     uuid.UUID `gorm:"type:uuid;not null;index:idx_apartados_tienda_estado,priority:1"`
	TiendaNombre string    `gorm:"not null"`

	Total decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// AnticipoPagado only grows; it accumulates the deposit and every later payment.
	AnticipoPagado decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SaldoPendiente decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Estado            string    `gorm:"type:varchar(20);not null;default:'activo';index:idx_apartados_tienda_estado,priority:2"`
	FechaLimite       time.Time `gorm:"not null"`
	Notas             string
	MotivoCancelacion string
	Entregado         bool `gorm:"not null;default:false"`
	FechaEntrega      *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Items []ApartadoItem `gorm:"foreignKey:ApartadoID"`
	Pagos []PagoApartado `gorm:"foreignKey:ApartadoID"`
}

// ApartadoItem has the same shape as VentaItem.
type ApartadoItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ApartadoID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null"`
	Nombre         string          `gorm:"not null"`
	Categoria      string          `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Cantidad       int             `gorm:"not null"`
	DescuentoPromo decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PrecioFinal    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// PagoApartado is one installment. The initial deposit is recorded as the first one.
type PagoApartado struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ApartadoID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Monto       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MetodoPago  string          `gorm:"type:varchar(20);not null"`
	RecibidoPor string          `gorm:"not null"`
	CreatedAt   time.Time
}

// Terminal reports whether no further transition is possible from the current state.
// A completed apartado still allows the delivery mark, which is not a state change.
func (a *Apartado) Terminal() bool {
	return a.Estado != ApartadoActivo
}
