package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	RolAdmin    = "admin"
	RolVendedor = "vendedor"

	HorarioSemana      = "semana"
	HorarioFinDeSemana = "fin_de_semana"
)

// Usuario stores staff accounts.
// Rol: "admin" | "vendedor". A vendedor is bound to TiendaID; admins may leave it nil.
type Usuario struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre       string     `gorm:"not null"`
	Email        string     `gorm:"uniqueIndex;not null"`
	PasswordHash string     `gorm:"not null"`
	Rol          string     `gorm:"type:varchar(20);not null"`
	TipoHorario  string     `gorm:"type:varchar(20);not null;default:'semana'"`
	TiendaID     *uuid.UUID `gorm:"type:uuid;index"`
	// PIN is stored for the front counter but no flow checks it.
	PIN       string `gorm:"column:pin"`
	Activo    bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
