package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearApartadoRequest struct {
	ClienteID  string               `json:"cliente_id"  validate:"omitempty,uuid"`
	Items      []ItemCarritoRequest `json:"items"       validate:"required,min=1,dive"`
	Anticipo   decimal.Decimal      `json:"anticipo"    validate:"required,gt=0"`
	MetodoPago string               `json:"metodo_pago" validate:"required,oneof=efectivo tarjeta transferencia"`
	Notas      string               `json:"notas"       validate:"max=500"`
}

type PagoApartadoRequest struct {
	Monto      decimal.Decimal `json:"monto"       validate:"required,gt=0"`
	MetodoPago string          `json:"metodo_pago" validate:"required,oneof=efectivo tarjeta transferencia"`
}

type CancelarApartadoRequest struct {
	Motivo string `json:"motivo" validate:"required,min=3,max=300"`
}

type ApartadoFilter struct {
	Estado string `form:"estado" validate:"omitempty,oneof=activo completado cancelado vencido"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PagoApartadoResponse struct {
	Monto       decimal.Decimal `json:"monto"`
	MetodoPago  string          `json:"metodo_pago"`
	RecibidoPor string          `json:"recibido_por"`
	CreatedAt   string          `json:"created_at"`
}

type ApartadoResponse struct {
	ID                string                 `json:"id"`
	Numero            string                 `json:"numero"`
	ClienteID         string                 `json:"cliente_id"`
	ClienteNombre     string                 `json:"cliente_nombre"`
	ClienteTelefono   string                 `json:"cliente_telefono"`
	TiendaID          string                 `json:"tienda_id"`
	TiendaNombre      string                 `json:"tienda_nombre"`
	Items             []ItemVentaResponse    `json:"items"`
	Total             decimal.Decimal        `json:"total"`
	AnticipoPagado    decimal.Decimal        `json:"anticipo_pagado"`
	SaldoPendiente    decimal.Decimal        `json:"saldo_pendiente"`
	Pagos             []PagoApartadoResponse `json:"pagos"`
	Estado            string                 `json:"estado"`
	FechaLimite       string                 `json:"fecha_limite"`
	DiasRestantes     int                    `json:"dias_restantes"`
	Notas             string                 `json:"notas"`
	MotivoCancelacion string                 `json:"motivo_cancelacion,omitempty"`
	Entregado         bool                   `json:"entregado"`
	FechaEntrega      *string                `json:"fecha_entrega"`
	CreatedAt         string                 `json:"created_at"`
}
