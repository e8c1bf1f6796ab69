package handler

import (
	"net/http"

	"fleamarket/internal/dto"
	"fleamarket/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportesHandler struct{ svc service.ReporteService }

func NewReportesHandler(svc service.ReporteService) *ReportesHandler {
	return &ReportesHandler{svc: svc}
}

// Resumen godoc
// @Summary Resumen de ventas (admin)
// @Tags reportes
// @Produce json
// @Security BearerAuth
// @Param desde     query string false "YYYY-MM-DD (default: hoy)"
// @Param hasta     query string false "YYYY-MM-DD (default: hoy)"
// @Param tienda_id query string false "UUID de la tienda (default: todas)"
// @Success 200 {object} dto.ResumenVentasResponse
// @Router /v1/reportes/ventas [get]
func (h *ReportesHandler) Resumen(c *gin.Context) {
	var filter dto.ReporteFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Resumen(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Exportar downloads the sales of the range as csv, xlsx or pdf (?formato=).
func (h *ReportesHandler) Exportar(c *gin.Context) {
	var filter dto.ReporteFilter
	if !bindQuery(c, &filter) {
		return
	}
	exp, err := h.svc.Exportar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	attachment(c, exp.Nombre, exp.ContentType, exp.Datos)
}

// MisVentas is the caller's own summary inside a store.
func (h *ReportesHandler) MisVentas(c *gin.Context) {
	tid, ok := tiendaParam(c)
	if !ok {
		return
	}
	var filter dto.RangoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.VentasVendedor(c.Request.Context(), actorFrom(c), tid, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
