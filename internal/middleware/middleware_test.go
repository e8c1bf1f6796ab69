package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fleamarket/internal/model"
	"fleamarket/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func init() { gin.SetMode(gin.TestMode) }

func token(t *testing.T, typ, rol string, tienda *uuid.UUID) string {
	t.Helper()
	tid := ""
	if tienda != nil {
		tid = tienda.String()
	}
	claims := jwt.MapClaims{
		"user_id":   uuid.NewString(),
		"nombre":    "Lucia",
		"rol":       rol,
		"tienda_id": tid,
		"typ":       typ,
		"exp":       time.Now().Add(time.Hour).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return raw
}

func protegido(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	chain := append([]gin.HandlerFunc{JWTAuth(secret)}, mw...)
	chain = append(chain, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"nombre": GetClaims(c).Nombre})
	})
	r.GET("/v1/tiendas/:tid/ventas", chain...)
	return r
}

func get(r http.Handler, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	r := protegido()
	path := "/v1/tiendas/" + uuid.NewString() + "/ventas"

	assert.Equal(t, http.StatusUnauthorized, get(r, path, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, path, "basura").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, path, token(t, service.TokenRefresh, model.RolAdmin, nil)).Code)

	w := get(r, path, token(t, service.TokenAccess, model.RolAdmin, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Lucia")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRequireTienda(t *testing.T) {
	propia, ajena := uuid.New(), uuid.New()
	r := protegido(RequireTienda("tid"))
	vendedor := token(t, service.TokenAccess, model.RolVendedor, &propia)

	assert.Equal(t, http.StatusOK, get(r, "/v1/tiendas/"+propia.String()+"/ventas", vendedor).Code)
	assert.Equal(t, http.StatusForbidden, get(r, "/v1/tiendas/"+ajena.String()+"/ventas", vendedor).Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/v1/tiendas/x/ventas", vendedor).Code)

	admin := token(t, service.TokenAccess, model.RolAdmin, nil)
	assert.Equal(t, http.StatusOK, get(r, "/v1/tiendas/"+ajena.String()+"/ventas", admin).Code)
}

func TestRequireRole(t *testing.T) {
	tienda := uuid.New()
	r := protegido(RequireRole(model.RolAdmin))
	path := "/v1/tiendas/" + tienda.String() + "/ventas"

	assert.Equal(t, http.StatusForbidden, get(r, path, token(t, service.TokenAccess, model.RolVendedor, &tienda)).Code)
	assert.Equal(t, http.StatusOK, get(r, path, token(t, service.TokenAccess, model.RolAdmin, nil)).Code)
}

func TestLimiter(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	l := NewLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	ok, _ := l.Allow("1.2.3.4")
	assert.True(t, ok)
	ok, _ = l.Allow("1.2.3.4")
	assert.True(t, ok)
	ok, _ = l.Allow("1.2.3.4")
	assert.False(t, ok)
	ok, _ = l.Allow("5.6.7.8")
	assert.True(t, ok, "keys are independent")

	now = now.Add(time.Minute + time.Second)
	assert.Equal(t, 2, l.Purge())
	ok, _ = l.Allow("1.2.3.4")
	assert.True(t, ok)
}

func TestRateLimiterMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimiter(NewLimiter(1, time.Minute)))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, get(r, "/ping", "").Code)
	w := get(r, "/ping", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := get(r, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")
}
