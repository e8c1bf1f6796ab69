package handler

import (
	"net/http"

	"fleamarket/internal/dto"
	"fleamarket/internal/service"

	"github.com/gin-gonic/gin"
)

type CajaHandler struct{ svc service.CajaService }

func NewCajaHandler(svc service.CajaService) *CajaHandler { return &CajaHandler{svc: svc} }

// Estado godoc
// @Summary Estado de caja del dia
// @Description Efectivo esperado, cierres de hoy y alertas de cierre pendiente o limite de efectivo.
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Param tid path string true "UUID de la tienda"
// @Success 200 {object} dto.EstadoCajaResponse
// @Router /v1/tiendas/{tid}/caja [get]
func (h *CajaHandler) Estado(c *gin.Context) {
	tid, ok := tiendaParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.Estado(c.Request.Context(), actorFrom(c), tid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarCierre godoc
// @Summary Registra un corte de caja
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tid  path string                     true "UUID de la tienda"
// @Param body body dto.RegistrarCierreRequest true "Tipo y efectivo contado"
// @Success 201 {object} dto.CierreCajaResponse
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/tiendas/{tid}/caja/cierres [post]
func (h *CajaHandler) RegistrarCierre(c *gin.Context) {
	tid, ok := tiendaParam(c)
	if !ok {
		return
	}
	var req dto.RegistrarCierreRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarCierre(c.Request.Context(), actorFrom(c), tid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CajaHandler) Historial(c *gin.Context) {
	tid, ok := tiendaParam(c)
	if !ok {
		return
	}
	var filter dto.RangoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Historial(c.Request.Context(), actorFrom(c), tid, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
