package handler

import (
	"errors"
	"net/http"
	"strconv"

	"fleamarket/internal/apierror"
	"fleamarket/internal/dto"
	"fleamarket/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// Login godoc
// @Summary Login de usuario
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credenciales"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} apierror.APIError
// @Router /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Refresh godoc
// @Summary Renueva el access token con un refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.RefreshRequest true "Refresh token"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} apierror.APIError
// @Router /v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Me(c *gin.Context) {
	resp, err := h.svc.Me(c.Request.Context(), actorFrom(c).UsuarioID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Usuarios Handler ─────────────────────────────────────────────────────────

type UsuariosHandler struct{ svc service.AuthService }

func NewUsuariosHandler(svc service.AuthService) *UsuariosHandler {
	return &UsuariosHandler{svc: svc}
}

// codedError maps a service error to the coded envelope used by user creation.
func codedError(err error) (int, *apierror.CodedError) {
	switch {
	case errors.Is(err, service.ErrNoAutenticado):
		return http.StatusUnauthorized, apierror.NewCoded(apierror.CodeUnauthenticated, err.Error())
	case errors.Is(err, service.ErrSinPermiso):
		return http.StatusForbidden, apierror.NewCoded(apierror.CodePermissionDenied, err.Error())
	case errors.Is(err, service.ErrUsuarioExiste):
		return http.StatusConflict, apierror.NewCoded(apierror.CodeAlreadyExists, err.Error())
	case errors.Is(err, service.ErrDatoInvalido):
		return http.StatusBadRequest, apierror.NewCoded(apierror.CodeInvalidArgument, err.Error())
	case errors.Is(err, service.ErrNoEncontrado):
		return http.StatusNotFound, apierror.NewCoded(apierror.CodeNotFound, err.Error())
	default:
		return http.StatusInternalServerError, apierror.NewCoded(apierror.CodeInternal, "Error interno del servidor")
	}
}

// Crear godoc
// @Summary Crea un usuario (solo admin activo)
// @Tags usuarios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CrearUsuarioRequest true "Datos del usuario"
// @Success 201 {object} dto.CrearUsuarioResponse
// @Failure 400 {object} apierror.CodedError
// @Failure 403 {object} apierror.CodedError
// @Router /v1/usuarios [post]
func (h *UsuariosHandler) Crear(c *gin.Context) {
	var req dto.CrearUsuarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewCoded(apierror.CodeInvalidArgument, "JSON invalido"))
		return
	}
	if err := validate.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewCoded(apierror.CodeInvalidArgument, err.Error()))
		return
	}
	resp, err := h.svc.CrearUsuario(c.Request.Context(), actorFrom(c).UsuarioID, req)
	if err != nil {
		status, body := codedError(err)
		if status == http.StatusInternalServerError {
			_ = c.Error(err)
		}
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *UsuariosHandler) Listar(c *gin.Context) {
	todos, _ := strconv.ParseBool(c.Query("inactivos"))
	resp, err := h.svc.ListarUsuarios(c.Request.Context(), todos)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UsuariosHandler) Actualizar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarUsuarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarUsuario(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CambiarActivo enables or disables an account. Admins cannot disable themselves.
func (h *UsuariosHandler) CambiarActivo(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.CambiarActivoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.CambiarActivo(c.Request.Context(), actorFrom(c), id, *req.Activo); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
