package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	Nombre    string          `json:"nombre"    validate:"required,min=2,max=120"`
	Categoria string          `json:"categoria" validate:"required,max=60"`
	Precio    decimal.Decimal `json:"precio"    validate:"required,gt=0"`
	Costo     decimal.Decimal `json:"costo"     validate:"min=0"`
	SKU       string          `json:"sku"       validate:"required,max=40"`
	Stock     int             `json:"stock"     validate:"min=0"`
}

type ActualizarProductoRequest struct {
	Nombre    *string          `json:"nombre"    validate:"omitempty,min=2,max=120"`
	Categoria *string          `json:"categoria" validate:"omitempty,max=60"`
	Precio    *decimal.Decimal `json:"precio"`
	Costo     *decimal.Decimal `json:"costo"`
	SKU       *string          `json:"sku"       validate:"omitempty,max=40"`
}

type AjusteStockRequest struct {
	Delta  int    `json:"delta"  validate:"required"`
	Motivo string `json:"motivo" validate:"required,min=3"`
}

// ProductoFilter is bound from the query string of GET /v1/productos.
type ProductoFilter struct {
	Buscar    string `form:"q"`
	Categoria string `form:"categoria"`
	Activo    string `form:"activo"` // "false" | "all" | default activos
	Page      int    `form:"page,default=1"    validate:"min=1"`
	Limit     int    `form:"limit,default=100" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID        string          `json:"id"`
	Nombre    string          `json:"nombre"`
	Categoria string          `json:"categoria"`
	Precio    decimal.Decimal `json:"precio"`
	Costo     decimal.Decimal `json:"costo"`
	SKU       string          `json:"sku"`
	Stock     int             `json:"stock"`
	Activo    bool            `json:"activo"`
}

type ProductoListResponse struct {
	Data  []ProductoResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

type MovimientoStockResponse struct {
	ID            string  `json:"id"`
	Tipo          string  `json:"tipo"`
	Cantidad      int     `json:"cantidad"`
	StockAnterior int     `json:"stock_anterior"`
	StockNuevo    int     `json:"stock_nuevo"`
	Motivo        string  `json:"motivo"`
	ReferenciaID  *string `json:"referencia_id"`
	CreatedAt     string  `json:"created_at"`
}

// MovimientoFilter is bound from the query of GET /productos/:id/movimientos.
// Dates are optional; without them the whole ledger is listed.
type MovimientoFilter struct {
	Tipo         string `form:"tipo"          validate:"omitempty,oneof=venta apartado liberacion_apartado devolucion ajuste_manual"`
	ReferenciaID string `form:"referencia_id" validate:"omitempty,uuid"`
	Desde        string `form:"desde"         validate:"omitempty,datetime=2006-01-02"`
	Hasta        string `form:"hasta"         validate:"omitempty,datetime=2006-01-02"`
	Page         int    `form:"page"          validate:"omitempty,min=1"`
	Limit        int    `form:"limit"         validate:"omitempty,min=1,max=200"`
}
