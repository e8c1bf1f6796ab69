package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemCarritoRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
}

// CotizarRequest previews the discounts of a cart without persisting anything.
type CotizarRequest struct {
	Items      []ItemCarritoRequest `json:"items"       validate:"required,min=1,dive"`
	ClienteID  *string              `json:"cliente_id"  validate:"omitempty,uuid"`
	MetodoPago string               `json:"metodo_pago" validate:"omitempty,oneof=efectivo tarjeta transferencia"`
}

type RegistrarVentaRequest struct {
	Items      []ItemCarritoRequest `json:"items"       validate:"required,min=1,dive"`
	ClienteID  *string              `json:"cliente_id"  validate:"omitempty,uuid"`
	MetodoPago string               `json:"metodo_pago" validate:"required,oneof=efectivo tarjeta transferencia"`
	// EnviarTicket mails the ticket PDF to the client when it has an email.
	EnviarTicket bool `json:"enviar_ticket"`
}

// RangoFilter is bound from ?desde=YYYY-MM-DD&hasta=YYYY-MM-DD. Empty values mean today.
type RangoFilter struct {
	Desde string `form:"desde" validate:"omitempty,datetime=2006-01-02"`
	Hasta string `form:"hasta" validate:"omitempty,datetime=2006-01-02"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVentaResponse struct {
	ProductoID     string          `json:"producto_id"`
	Nombre         string          `json:"nombre"`
	Categoria      string          `json:"categoria"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Cantidad       int             `json:"cantidad"`
	DescuentoPromo decimal.Decimal `json:"descuento_promo"`
	PrecioFinal    decimal.Decimal `json:"precio_final"`
}

type CotizacionResponse struct {
	Items          []ItemVentaResponse `json:"items"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	DescuentoPromo decimal.Decimal     `json:"descuento_promo"`
	DescuentoVIP   decimal.Decimal     `json:"descuento_vip"`
	Total          decimal.Decimal     `json:"total"`
	EsVIP          bool                `json:"es_vip"`
	AnticipoMinimo decimal.Decimal     `json:"anticipo_minimo"`
}

type VentaResponse struct {
	ID             string              `json:"id"`
	NumeroTicket   int                 `json:"numero_ticket"`
	TiendaID       string              `json:"tienda_id"`
	UsuarioID      string              `json:"usuario_id"`
	UsuarioNombre  string              `json:"usuario_nombre"`
	ClienteID      *string             `json:"cliente_id"`
	ClienteNombre  string              `json:"cliente_nombre"`
	Items          []ItemVentaResponse `json:"items"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	DescuentoPromo decimal.Decimal     `json:"descuento_promo"`
	DescuentoVIP   decimal.Decimal     `json:"descuento_vip"`
	Total          decimal.Decimal     `json:"total"`
	MetodoPago     string              `json:"metodo_pago"`
	// ComisionTarjeta is only populated for admins.
	ComisionTarjeta *decimal.Decimal `json:"comision_tarjeta,omitempty"`
	Estado          string           `json:"estado"`
	Ticket          string           `json:"ticket,omitempty"`
	CreatedAt       string           `json:"created_at"`
}
