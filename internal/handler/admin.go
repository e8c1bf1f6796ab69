package handler

import (
	"net/http"
	"strconv"

	"fleamarket/internal/apierror"
	"fleamarket/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

var colas = map[string]string{
	"email":         worker.QueueEmail,
	"mantenimiento": worker.QueueMantenimiento,
}

// AdminHandler exposes maintenance operations: dead letter queues and the apartado sweep.
type AdminHandler struct {
	rdb          redis.Cmdable
	vencimientos worker.VencimientoChecker
}

func NewAdminHandler(rdb redis.Cmdable, vencimientos worker.VencimientoChecker) *AdminHandler {
	return &AdminHandler{rdb: rdb, vencimientos: vencimientos}
}

func (h *AdminHandler) cola(c *gin.Context) (string, bool) {
	q, ok := colas[c.Param("cola")]
	if !ok {
		c.JSON(http.StatusNotFound, apierror.New("cola desconocida"))
	}
	return q, ok
}

// DLQ godoc
// @Summary Inspecciona la cola de trabajos fallidos
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param cola path  string true  "email | mantenimiento"
// @Param n    query int    false "Maximo de entradas (default 20)"
// @Success 200 {object} map[string]interface{}
// @Router /v1/admin/dlq/{cola} [get]
func (h *AdminHandler) DLQ(c *gin.Context) {
	q, ok := h.cola(c)
	if !ok {
		return
	}
	n, err := strconv.ParseInt(c.DefaultQuery("n", "20"), 10, 64)
	if err != nil || n < 1 || n > 200 {
		n = 20
	}
	total, err := worker.DLQLength(c.Request.Context(), h.rdb, q)
	if err != nil {
		respondError(c, err)
		return
	}
	entries, err := worker.DLQPeek(c.Request.Context(), h.rdb, q, n)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": total, "data": entries})
}

func (h *AdminHandler) ReplayDLQ(c *gin.Context) {
	q, ok := h.cola(c)
	if !ok {
		return
	}
	moved, err := worker.DLQReplay(c.Request.Context(), h.rdb, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"replayed": moved})
}

// RevisarVencidos expires every overdue apartado of every store synchronously.
func (h *AdminHandler) RevisarVencidos(c *gin.Context) {
	n, err := h.vencimientos.RevisarVencidos(c.Request.Context(), nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vencidos": n})
}
