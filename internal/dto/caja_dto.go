package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type RegistrarCierreRequest struct {
	Tipo         string          `json:"tipo"          validate:"required,oneof=manana tarde noche manual limite"`
	MontoContado decimal.Decimal `json:"monto_contado" validate:"min=0"`
	Notas        string          `json:"notas"         validate:"max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CierreCajaResponse struct {
	ID            string          `json:"id"`
	TiendaID      string          `json:"tienda_id"`
	UsuarioID     string          `json:"usuario_id"`
	UsuarioNombre string          `json:"usuario_nombre"`
	Tipo          string          `json:"tipo"`
	MontoEsperado decimal.Decimal `json:"monto_esperado"`
	MontoContado  decimal.Decimal `json:"monto_contado"`
	Diferencia    decimal.Decimal `json:"diferencia"`
	Notas         string          `json:"notas"`
	NumVentas     int             `json:"num_ventas"`
	TotalVentas   decimal.Decimal `json:"total_ventas"`
	CreatedAt     string          `json:"created_at"`
}

type AlertaCaja struct {
	Tipo       string `json:"tipo"` // cierre_pendiente | limite_efectivo
	CierreTipo string `json:"cierre_tipo,omitempty"`
	Mensaje    string `json:"mensaje"`
}

// EstadoCajaResponse is the live view of a store's register for today.
type EstadoCajaResponse struct {
	TiendaID         string               `json:"tienda_id"`
	Fecha            string               `json:"fecha"`
	EfectivoEsperado decimal.Decimal      `json:"efectivo_esperado"`
	VentasEfectivo   decimal.Decimal      `json:"ventas_efectivo"`
	VentasTarjeta    decimal.Decimal      `json:"ventas_tarjeta"`
	VentasTransf     decimal.Decimal      `json:"ventas_transferencia"`
	NumVentas        int                  `json:"num_ventas"`
	CierresHoy       []CierreCajaResponse `json:"cierres_hoy"`
	Completados      map[string]bool      `json:"completados"`
	Alertas          []AlertaCaja         `json:"alertas"`
}
