package dto

import "github.com/shopspring/decimal"

type ReporteFilter struct {
	Desde    string `form:"desde"     validate:"omitempty,datetime=2006-01-02"`
	Hasta    string `form:"hasta"     validate:"omitempty,datetime=2006-01-02"`
	TiendaID string `form:"tienda_id" validate:"omitempty,uuid"`
	Formato  string `form:"formato"   validate:"omitempty,oneof=csv xlsx pdf"`
}

type TotalAgrupado struct {
	Clave  string          `json:"clave"`
	Nombre string          `json:"nombre"`
	Num    int             `json:"num"`
	Total  decimal.Decimal `json:"total"`
}

type ProductoVendido struct {
	ProductoID string          `json:"producto_id"`
	Nombre     string          `json:"nombre"`
	Cantidad   int             `json:"cantidad"`
	Total      decimal.Decimal `json:"total"`
}

// ResumenVentasResponse aggregates non-returned sales over a date range.
type ResumenVentasResponse struct {
	Desde           string            `json:"desde"`
	Hasta           string            `json:"hasta"`
	NumVentas       int               `json:"num_ventas"`
	NumDevueltas    int               `json:"num_devueltas"`
	TotalVentas     decimal.Decimal   `json:"total_ventas"`
	TotalDescuentos decimal.Decimal   `json:"total_descuentos"`
	TotalComisiones decimal.Decimal   `json:"total_comisiones"`
	TotalNeto       decimal.Decimal   `json:"total_neto"`
	PorTienda       []TotalAgrupado   `json:"por_tienda"`
	PorMetodo       []TotalAgrupado   `json:"por_metodo"`
	PorDia          []TotalAgrupado   `json:"por_dia"`
	PorVendedor     []TotalAgrupado   `json:"por_vendedor"`
	TopProductos    []ProductoVendido `json:"top_productos"`
}

// VentasVendedorResponse is the seller-facing summary. It never carries commissions.
type VentasVendedorResponse struct {
	UsuarioID string          `json:"usuario_id"`
	Desde     string          `json:"desde"`
	Hasta     string          `json:"hasta"`
	NumVentas int             `json:"num_ventas"`
	Total     decimal.Decimal `json:"total"`
	PorMetodo []TotalAgrupado `json:"por_metodo"`
	PorDia    []TotalAgrupado `json:"por_dia"`
}
