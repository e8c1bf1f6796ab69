package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=4,max=72"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// CrearUsuarioRequest mirrors the createUser callable: email, password, name, role, type, storeId, pin.
type CrearUsuarioRequest struct {
	Email       string  `json:"email"        validate:"required,email"`
	Password    string  `json:"password"     validate:"required,min=6,max=72"`
	Nombre      string  `json:"nombre"       validate:"required,min=2,max=100"`
	Rol         string  `json:"rol"          validate:"required,oneof=admin vendedor"`
	TipoHorario string  `json:"tipo_horario" validate:"omitempty,oneof=semana fin_de_semana"`
	TiendaID    *string `json:"tienda_id"    validate:"omitempty,uuid"`
	PIN         string  `json:"pin"          validate:"omitempty,numeric,min=4,max=6"`
}

type ActualizarUsuarioRequest struct {
	Nombre      string  `json:"nombre"       validate:"omitempty,min=2,max=100"`
	Rol         string  `json:"rol"          validate:"omitempty,oneof=admin vendedor"`
	TipoHorario string  `json:"tipo_horario" validate:"omitempty,oneof=semana fin_de_semana"`
	TiendaID    *string `json:"tienda_id"    validate:"omitempty,uuid"`
	PIN         *string `json:"pin"          validate:"omitempty,numeric,min=4,max=6"`
	Password    string  `json:"password"     validate:"omitempty,min=6,max=72"`
}

type CambiarActivoRequest struct {
	Activo *bool `json:"activo" validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UsuarioResponse struct {
	ID          string  `json:"id"`
	Nombre      string  `json:"nombre"`
	Email       string  `json:"email"`
	Rol         string  `json:"rol"`
	TipoHorario string  `json:"tipo_horario"`
	TiendaID    *string `json:"tienda_id"`
	Activo      bool    `json:"activo"`
}

// CrearUsuarioResponse is the {success, uid} result of user creation.
type CrearUsuarioResponse struct {
	Success bool   `json:"success"`
	UID     string `json:"uid"`
}

type LoginResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int             `json:"expires_in"` // seconds
	User         UsuarioResponse `json:"user"`
}
