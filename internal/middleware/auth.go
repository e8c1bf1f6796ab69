package middleware

import (
	"net/http"
	"strings"

	"fleamarket/internal/apierror"
	"fleamarket/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ClaimsKey = "claims"
)

// JWTClaims are the custom claims embedded in every access token.
type JWTClaims struct {
	UserID      uuid.UUID
	Email       string
	Nombre      string
	Rol         string
	TiendaID    *uuid.UUID
	TipoHorario string
}

// Actor converts the claims into the service-level caller.
func (c *JWTClaims) Actor() service.Actor {
	return service.Actor{UsuarioID: c.UserID, Nombre: c.Nombre, Rol: c.Rol, TiendaID: c.TiendaID}
}

// JWTAuth validates the Bearer token on every protected route. Refresh tokens are rejected.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Autenticacion requerida"))
			return
		}

		raw, err := service.ParseToken(strings.TrimPrefix(header, "Bearer "), secret)
		if err != nil || raw["typ"] != service.TokenAccess {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token invalido o expirado"))
			return
		}

		claims, ok := claimsFrom(raw)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token mal formado"))
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

func claimsFrom(raw map[string]interface{}) (*JWTClaims, bool) {
	str := func(k string) string {
		s, _ := raw[k].(string)
		return s
	}
	uid, err := uuid.Parse(str("user_id"))
	if err != nil {
		return nil, false
	}
	claims := &JWTClaims{
		UserID:      uid,
		Email:       str("email"),
		Nombre:      str("nombre"),
		Rol:         str("rol"),
		TipoHorario: str("tipo_horario"),
	}
	if t := str("tienda_id"); t != "" {
		tid, err := uuid.Parse(t)
		if err != nil {
			return nil, false
		}
		claims.TiendaID = &tid
	}
	return claims, true
}

// RequireRole rejects requests whose JWT role is not in the allowed list.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil || !allowed[claims.Rol] {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Permisos insuficientes"))
			return
		}
		c.Next()
	}
}

// RequireTienda guards /tiendas/:tid routes: sellers only reach their own store.
func RequireTienda(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		tid, err := uuid.Parse(c.Param(param))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, apierror.New("tienda invalida"))
			return
		}
		if claims == nil || !claims.Actor().PuedeOperar(tid) {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Sin acceso a esta tienda"))
			return
		}
		c.Next()
	}
}

// GetClaims is a helper to retrieve typed claims from the Gin context.
func GetClaims(c *gin.Context) *JWTClaims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*JWTClaims)
	return claims
}
