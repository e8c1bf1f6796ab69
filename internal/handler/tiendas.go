package handler

import (
	"net/http"
	"strconv"

	"fleamarket/internal/dto"
	"fleamarket/internal/service"

	"github.com/gin-gonic/gin"
)

type TiendasHandler struct{ svc service.TiendaService }

func NewTiendasHandler(svc service.TiendaService) *TiendasHandler { return &TiendasHandler{svc: svc} }

// Crear godoc
// @Summary Crea una tienda
// @Tags tiendas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.TiendaRequest true "Datos de la tienda"
// @Success 201 {object} dto.TiendaResponse
// @Router /v1/tiendas [post]
func (h *TiendasHandler) Crear(c *gin.Context) {
	var req dto.TiendaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *TiendasHandler) Actualizar(c *gin.Context) {
	id, ok := tiendaParam(c)
	if !ok {
		return
	}
	var req dto.TiendaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TiendasHandler) Obtener(c *gin.Context) {
	id, ok := tiendaParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar returns every store to admins and only the assigned one to sellers.
func (h *TiendasHandler) Listar(c *gin.Context) {
	todas, _ := strconv.ParseBool(c.Query("inactivas"))
	resp, err := h.svc.Listar(c.Request.Context(), actorFrom(c), todas)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
