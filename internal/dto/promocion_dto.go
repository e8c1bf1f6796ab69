package dto

import "github.com/shopspring/decimal"

type PromocionRequest struct {
	Titulo      string          `json:"titulo"       validate:"required,min=2,max=120"`
	Categoria   string          `json:"categoria"    validate:"required"`
	Valor       decimal.Decimal `json:"valor"        validate:"required,gt=0,lte=100"`
	Global      bool            `json:"global"`
	Tiendas     []string        `json:"tiendas"      validate:"dive,uuid"`
	Activa      *bool           `json:"activa"`
	FechaInicio string          `json:"fecha_inicio" validate:"required,datetime=2006-01-02"`
	FechaFin    string          `json:"fecha_fin"    validate:"required,datetime=2006-01-02"`
}

type PromocionResponse struct {
	ID          string          `json:"id"`
	Titulo      string          `json:"titulo"`
	Categoria   string          `json:"categoria"`
	Valor       decimal.Decimal `json:"valor"`
	Global      bool            `json:"global"`
	Tiendas     []string        `json:"tiendas"`
	Activa      bool            `json:"activa"`
	Estado      string          `json:"estado"` // activa | programada | vencida | inactiva
	FechaInicio string          `json:"fecha_inicio"`
	FechaFin    string          `json:"fecha_fin"`
}
