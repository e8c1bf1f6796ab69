package handler

import (
	"net/http"

	"fleamarket/internal/dto"
	"fleamarket/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ApartadosHandler struct{ svc service.ApartadoService }

func NewApartadosHandler(svc service.ApartadoService) *ApartadosHandler {
	return &ApartadosHandler{svc: svc}
}

// ids reads :tid and :id. It writes the 400 itself.
func ids(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	tid, ok := tiendaParam(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	id, ok := paramUUID(c, "id")
	return tid, id, ok
}

// Crear godoc
// @Summary Crea un apartado con anticipo
// @Description El anticipo debe ser al menos el 10% del total y menor al total. El stock queda reservado 15 dias.
// @Tags apartados
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tid  path string                   true "UUID de la tienda"
// @Param body body dto.CrearApartadoRequest true "Cliente, articulos y anticipo"
// @Success 201 {object} dto.ApartadoResponse
// @Failure 422 {object} apierror.APIError
// @Router /v1/tiendas/{tid}/apartados [post]
func (h *ApartadosHandler) Crear(c *gin.Context) {
	tid, ok := tiendaParam(c)
	if !ok {
		return
	}
	var req dto.CrearApartadoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), actorFrom(c), tid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// AgregarPago godoc
// @Summary Registra un abono
// @Tags apartados
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tid  path string                  true "UUID de la tienda"
// @Param id   path string                  true "UUID del apartado"
// @Param body body dto.PagoApartadoRequest true "Monto y metodo"
// @Success 200 {object} dto.ApartadoResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/tiendas/{tid}/apartados/{id}/pagos [post]
func (h *ApartadosHandler) AgregarPago(c *gin.Context) {
	tid, id, ok := ids(c)
	if !ok {
		return
	}
	var req dto.PagoApartadoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AgregarPago(c.Request.Context(), actorFrom(c), tid, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ApartadosHandler) Cancelar(c *gin.Context) {
	tid, id, ok := ids(c)
	if !ok {
		return
	}
	var req dto.CancelarApartadoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cancelar(c.Request.Context(), actorFrom(c), tid, id, req.Motivo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Completar marks a paid apartado as delivered.
func (h *ApartadosHandler) Completar(c *gin.Context) {
	tid, id, ok := ids(c)
	if !ok {
		return
	}
	resp, err := h.svc.Completar(c.Request.Context(), actorFrom(c), tid, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ApartadosHandler) Obtener(c *gin.Context) {
	tid, id, ok := ids(c)
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), tid, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ApartadosHandler) Listar(c *gin.Context) {
	tid, ok := tiendaParam(c)
	if !ok {
		return
	}
	var filter dto.ApartadoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), tid, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ApartadosHandler) Ticket(c *gin.Context) {
	tid, id, ok := ids(c)
	if !ok {
		return
	}
	texto, err := h.svc.Ticket(c.Request.Context(), tid, id)
	if err != nil {
		respondError(c, err)
		return
	}
	sendTicket(c, "apartado_"+id.String(), texto)
}
