package handler

import (
	"net/http"

	"fleamarket/internal/dto"
	"fleamarket/internal/infra"
	"fleamarket/internal/service"

	"github.com/gin-gonic/gin"
)

type VentasHandler struct{ svc service.VentaService }

func NewVentasHandler(svc service.VentaService) *VentasHandler { return &VentasHandler{svc: svc} }

// Cotizar godoc
// @Summary      Previsualiza descuentos de un carrito
// @Description  Aplica promociones y descuento VIP sin registrar nada.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        tid  path string             true "UUID de la tienda"
// @Param        body body dto.CotizarRequest true "Carrito"
// @Success      200  {object} dto.CotizacionResponse
// @Router       /v1/tiendas/{tid}/ventas/cotizar [post]
func (h *VentasHandler) Cotizar(c *gin.Context) {
	tid, ok := tiendaParam(c)
	if !ok {
		return
	}
	var req dto.CotizarRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cotizar(c.Request.Context(), actorFrom(c), tid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarVenta godoc
// @Summary      Registrar una nueva venta
// @Description  Guarda venta, descuento de stock y compra del cliente en una sola transaccion.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        tid  path string                    true "UUID de la tienda"
// @Param        body body dto.RegistrarVentaRequest true "Detalle de la venta"
// @Success      201  {object} dto.VentaResponse
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/tiendas/{tid}/ventas [post]
func (h *VentasHandler) RegistrarVenta(c *gin.Context) {
	tid, ok := tiendaParam(c)
	if !ok {
		return
	}
	var req dto.RegistrarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarVenta(c.Request.Context(), actorFrom(c), tid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// DevolverVenta godoc
// @Summary      Devolver venta
// @Description  Marca la venta como devuelta, restaura stock y retira la compra del cliente.
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Param        tid path string true "UUID de la tienda"
// @Param        id  path string true "UUID de la venta"
// @Success      200 {object} dto.VentaResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/tiendas/{tid}/ventas/{id}/devolver [patch]
func (h *VentasHandler) DevolverVenta(c *gin.Context) {
	tid, ok := tiendaParam(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.DevolverVenta(c.Request.Context(), actorFrom(c), tid, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarVentas returns the sales of a store for ?desde&hasta (default: today).
func (h *VentasHandler) ListarVentas(c *gin.Context) {
	tid, ok := tiendaParam(c)
	if !ok {
		return
	}
	var filter dto.RangoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarVentas(c.Request.Context(), actorFrom(c), tid, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *VentasHandler) ObtenerVenta(c *gin.Context) {
	tid, ok := tiendaParam(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerVenta(c.Request.Context(), actorFrom(c), tid, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Ticket serves the thermal ticket as text, or as PDF with ?formato=pdf.
func (h *VentasHandler) Ticket(c *gin.Context) {
	tid, ok := tiendaParam(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	texto, err := h.svc.Ticket(c.Request.Context(), tid, id)
	if err != nil {
		respondError(c, err)
		return
	}
	sendTicket(c, "ticket_"+id.String(), texto)
}

func sendTicket(c *gin.Context, nombre, texto string) {
	if c.Query("formato") != "pdf" {
		c.String(http.StatusOK, texto)
		return
	}
	pdf, err := infra.TicketPDF(texto)
	if err != nil {
		respondError(c, err)
		return
	}
	attachment(c, nombre+".pdf", "application/pdf", pdf)
}
