package dto

import "github.com/shopspring/decimal"

type ClienteRequest struct {
	Nombre   string `json:"nombre"   validate:"required,min=2,max=120"`
	Telefono string `json:"telefono" validate:"omitempty,min=7,max=20"`
	Email    string `json:"email"    validate:"omitempty,email"`
	Notas    string `json:"notas"    validate:"max=500"`
}

type ClienteFilter struct {
	Buscar string `form:"q"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type ClienteResponse struct {
	ID         string          `json:"id"`
	Numero     string          `json:"numero"`
	Nombre     string          `json:"nombre"`
	Telefono   string          `json:"telefono"`
	Email      string          `json:"email"`
	Notas      string          `json:"notas"`
	ComprasMes decimal.Decimal `json:"compras_mes"`
	EsVIP      bool            `json:"es_vip"`
	CreatedAt  string          `json:"created_at"`
}

type ClienteListResponse struct {
	Data  []ClienteResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// ClientePublicoResponse is what a customer sees after scanning their client card.
type ClientePublicoResponse struct {
	Numero        string                `json:"numero"`
	Nombre        string                `json:"nombre"`
	ComprasMes    decimal.Decimal       `json:"compras_mes"`
	EsVIP         bool                  `json:"es_vip"`
	FaltanParaVIP decimal.Decimal       `json:"faltan_para_vip"`
	Apartados     []ApartadoResumenItem `json:"apartados"`
}

type ApartadoResumenItem struct {
	Numero         string          `json:"numero"`
	Tienda         string          `json:"tienda"`
	Total          decimal.Decimal `json:"total"`
	SaldoPendiente decimal.Decimal `json:"saldo_pendiente"`
	FechaLimite    string          `json:"fecha_limite"`
}
