package dto

type TiendaRequest struct {
	Nombre      string   `json:"nombre"       validate:"required,min=2,max=120"`
	Direccion   string   `json:"direccion"`
	Telefono    string   `json:"telefono"`
	MetodosPago []string `json:"metodos_pago" validate:"required,min=1,dive,oneof=efectivo tarjeta transferencia"`
	Banco       string   `json:"banco"`
	Cuenta      string   `json:"cuenta"`
	CLABE       string   `json:"clabe"        validate:"omitempty,numeric,len=18"`
	Titular     string   `json:"titular"`
	PieTicket   string   `json:"pie_ticket"   validate:"max=240"`
	Activo      *bool    `json:"activo"`
}

type TiendaResponse struct {
	ID          string   `json:"id"`
	Nombre      string   `json:"nombre"`
	Direccion   string   `json:"direccion"`
	Telefono    string   `json:"telefono"`
	MetodosPago []string `json:"metodos_pago"`
	Banco       string   `json:"banco"`
	Cuenta      string   `json:"cuenta"`
	CLABE       string   `json:"clabe"`
	Titular     string   `json:"titular"`
	PieTicket   string   `json:"pie_ticket"`
	Activo      bool     `json:"activo"`
}
