package handler

import (
	"errors"
	"net/http"
	"reflect"

	"fleamarket/internal/apierror"
	"fleamarket/internal/middleware"
	"fleamarket/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

// bindQuery is bindAndValidate for query strings.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parametros invalidos: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

func runValidation(c *gin.Context, req interface{}) bool {
	err := validate.Struct(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return false
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
	return false
}

// ── Errors ───────────────────────────────────────────────────────────────────

var (
	conflictos = []error{
		service.ErrUsuarioExiste, service.ErrSKUDuplicado, service.ErrVentaYaDevuelta,
		service.ErrEstadoInvalido, service.ErrApartadoVencido, service.ErrYaEntregado,
		service.ErrStockInsuficiente, service.ErrNumeroNoDisponible,
	}
	invalidos = []error{
		service.ErrDatoInvalido, service.ErrFechaInvalida, service.ErrCarritoVacio,
		service.ErrProductoInactivo, service.ErrMetodoNoAceptado, service.ErrTiendaInactiva,
		service.ErrSinCliente, service.ErrAnticipoInsuficiente, service.ErrAnticipoExcedeTotal,
		service.ErrMontoInvalido, service.ErrSaldoPendiente,
	}
)

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// statusFor maps service errors to HTTP codes. Unknown errors are 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNoEncontrado):
		return http.StatusNotFound
	case errors.Is(err, service.ErrSinPermiso):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNoAutenticado), errors.Is(err, service.ErrCredenciales):
		return http.StatusUnauthorized
	case isAny(err, conflictos):
		return http.StatusConflict
	case isAny(err, invalidos):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error envelope. Backend failures are logged by
// middleware.ErrorHandler and answered without their message.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, apierror.New("Error interno del servidor"))
		return
	}
	c.JSON(status, apierror.New(err.Error()))
}

// ── Params ───────────────────────────────────────────────────────────────────

func actorFrom(c *gin.Context) service.Actor {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return service.Actor{}
	}
	return claims.Actor()
}

// paramUUID parses a path parameter, answering 400 when it is not a UUID.
func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return uuid.Nil, false
	}
	return id, true
}

func tiendaParam(c *gin.Context) (uuid.UUID, bool) { return paramUUID(c, "tid") }

// attachment sends a generated file as a download.
func attachment(c *gin.Context, nombre, contentType string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+nombre+`"`)
	c.Data(http.StatusOK, contentType, data)
}
