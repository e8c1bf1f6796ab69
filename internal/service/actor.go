package service

import (
	"fleamarket/internal/model"

	"github.com/google/uuid"
)

// Actor is the authenticated staff member on whose behalf an operation runs.
// Handlers build it from the JWT claims and pass it explicitly.
type Actor struct {
	UsuarioID uuid.UUID
	Nombre    string
	Rol       string
	TiendaID  *uuid.UUID
}

func (a Actor) EsAdmin() bool { return a.Rol == model.RolAdmin }

// PuedeOperar reports whether the actor may work on the given store.
func (a Actor) PuedeOperar(tiendaID uuid.UUID) bool {
	if a.EsAdmin() {
		return true
	}
	return a.TiendaID != nil && *a.TiendaID == tiendaID
}
