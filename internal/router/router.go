package router

import (
	"time"

	"fleamarket/internal/cache"
	"fleamarket/internal/config"
	"fleamarket/internal/handler"
	"fleamarket/internal/middleware"
	"fleamarket/internal/model"
	"fleamarket/internal/repository"
	"fleamarket/internal/service"
	"fleamarket/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Repositories groups the GORM repositories shared by the API and the workers.
type Repositories struct {
	Usuarios    repository.UsuarioRepository
	Tiendas     repository.TiendaRepository
	Productos   repository.ProductoRepository
	Movimientos repository.MovimientoStockRepository
	Clientes    repository.ClienteRepository
	Promociones repository.PromocionRepository
	Ventas      repository.VentaRepository
	Apartados   repository.ApartadoRepository
	Caja        repository.CajaRepository
}

type Services struct {
	Auth        service.AuthService
	Tiendas     service.TiendaService
	Productos   service.ProductoService
	Clientes    service.ClienteService
	Promociones service.PromocionService
	Ventas      service.VentaService
	Apartados   service.ApartadoService
	Caja        service.CajaService
	Reportes    service.ReporteService
}

// Container is the composition root: every dependency built once.
type Container struct {
	DB         *gorm.DB
	Redis      *redis.Client
	Dispatcher *worker.Dispatcher
	Repos      Repositories
	Services   Services
}

// Wire builds repositories and services.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func Wire(cfg *config.Config, db *gorm.DB, rdb *redis.Client, reloj service.Reloj) *Container {
	repos := Repositories{
		Usuarios:    repository.NewUsuarioRepository(db),
		Tiendas:     repository.NewTiendaRepository(db),
		Productos:   repository.NewProductoRepository(db),
		Movimientos: repository.NewMovimientoStockRepository(db),
		Clientes:    repository.NewClienteRepository(db),
		Promociones: repository.NewPromocionRepository(db),
		Ventas:      repository.NewVentaRepository(db),
		Apartados:   repository.NewApartadoRepository(db),
		Caja:        repository.NewCajaRepository(db),
	}

	var comprasCache cache.ComprasCache = cache.NoopComprasCache{}
	if rdb != nil {
		comprasCache = cache.NewRedisComprasCache(rdb)
	}
	compras := service.NewComprasMensuales(repos.Clientes, comprasCache, cfg.ComprasCacheTTL(), reloj)
	dispatcher := worker.NewDispatcher(rdb)
	var notifier service.TicketNotifier
	if rdb != nil {
		notifier = dispatcher
	}

	apartados := service.NewApartadoService(repos.Apartados, repos.Tiendas, repos.Clientes, repos.Productos,
		repos.Promociones, repos.Movimientos, compras, reloj)
	svcs := Services{
		Auth:        service.NewAuthService(repos.Usuarios, repos.Tiendas, cfg),
		Tiendas:     service.NewTiendaService(repos.Tiendas),
		Productos:   service.NewProductoService(repos.Productos, repos.Movimientos, db, reloj),
		Clientes:    service.NewClienteService(repos.Clientes, compras, apartados),
		Promociones: service.NewPromocionService(repos.Promociones, reloj),
		Ventas: service.NewVentaService(repos.Ventas, repos.Tiendas, repos.Clientes, repos.Productos,
			repos.Promociones, repos.Movimientos, compras, notifier, reloj),
		Apartados: apartados,
		Caja:      service.NewCajaService(repos.Caja, repos.Ventas, repos.Tiendas, reloj),
		Reportes:  service.NewReporteService(repos.Ventas, repos.Tiendas, reloj),
	}
	return &Container{DB: db, Redis: rdb, Dispatcher: dispatcher, Repos: repos, Services: svcs}
}

// New returns a configured Gin engine for the container.
func New(cfg *config.Config, c *Container, stop <-chan struct{}) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	apiLimiter := middleware.NewLimiter(1000, time.Minute)
	loginLimiter := middleware.NewLimiter(20, time.Minute)
	go apiLimiter.RunPurge(5*time.Minute, stop)
	go loginLimiter.RunPurge(5*time.Minute, stop)

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(apiLimiter)) // 1000 req/min per IP

	s := c.Services
	authH := handler.NewAuthHandler(s.Auth)
	usuariosH := handler.NewUsuariosHandler(s.Auth)
	tiendasH := handler.NewTiendasHandler(s.Tiendas)
	productosH := handler.NewProductosHandler(s.Productos)
	clientesH := handler.NewClientesHandler(s.Clientes)
	promosH := handler.NewPromocionesHandler(s.Promociones)
	ventasH := handler.NewVentasHandler(s.Ventas)
	apartadosH := handler.NewApartadosHandler(s.Apartados)
	cajaH := handler.NewCajaHandler(s.Caja)
	reportesH := handler.NewReportesHandler(s.Reportes)
	adminH := handler.NewAdminHandler(c.Redis, s.Apartados)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(map[string]handler.HealthCheck{
		"db":    handler.PostgresCheck(c.DB),
		"redis": handler.RedisCheck(c.Redis),
	}))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(loginLimiter), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Client card lookup, no auth required
	r.GET("/v1/public/clientes/:numero", clientesH.Publico)

	admin := middleware.RequireRole(model.RolAdmin)
	staff := middleware.RequireRole(model.RolAdmin, model.RolVendedor)

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret), staff)
	{
		v1.GET("/auth/me", authH.Me)

		usuarios := v1.Group("/usuarios", admin)
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.PATCH("/:id/activo", usuariosH.CambiarActivo)
		}

		v1.GET("/tiendas", tiendasH.Listar)
		v1.POST("/tiendas", admin, tiendasH.Crear)

		v1.GET("/productos", productosH.Listar)
		v1.GET("/productos/categorias", productosH.Categorias)
		v1.GET("/productos/:id", productosH.ObtenerPorID)
		prods := v1.Group("/productos", admin)
		{
			prods.POST("", productosH.Crear)
			prods.PUT("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Desactivar)
			prods.POST("/:id/stock", productosH.AjustarStock)
			prods.GET("/:id/movimientos", productosH.Movimientos)
		}

		clientes := v1.Group("/clientes")
		{
			clientes.POST("", clientesH.Crear)
			clientes.GET("", clientesH.Listar)
			clientes.GET("/numero/:numero", clientesH.PorNumero)
			clientes.GET("/:id", clientesH.Obtener)
			clientes.PUT("/:id", clientesH.Actualizar)
			clientes.DELETE("/:id", admin, clientesH.Eliminar)
		}

		v1.GET("/promociones", promosH.Listar)
		promos := v1.Group("/promociones", admin)
		{
			promos.POST("", promosH.Crear)
			promos.PUT("/:id", promosH.Actualizar)
			promos.PATCH("/:id/activa", promosH.CambiarActiva)
			promos.DELETE("/:id", promosH.Eliminar)
		}

		reportes := v1.Group("/reportes", admin)
		{
			reportes.GET("/ventas", reportesH.Resumen)
			reportes.GET("/ventas/export", reportesH.Exportar)
		}

		adm := v1.Group("/admin", admin)
		{
			adm.GET("/dlq/:cola", adminH.DLQ)
			adm.POST("/dlq/:cola/replay", adminH.ReplayDLQ)
			adm.POST("/apartados/revisar-vencidos", adminH.RevisarVencidos)
		}

		// Store routes: admins reach every store, sellers only their own
		t := v1.Group("/tiendas/:tid", middleware.RequireTienda("tid"))
		{
			t.GET("", tiendasH.Obtener)
			t.PUT("", admin, tiendasH.Actualizar)
			t.GET("/promociones", promosH.Vigentes)

			t.POST("/ventas/cotizar", ventasH.Cotizar)
			t.POST("/ventas", ventasH.RegistrarVenta)
			t.GET("/ventas", ventasH.ListarVentas)
			t.GET("/ventas/mias", reportesH.MisVentas)
			t.GET("/ventas/:id", ventasH.ObtenerVenta)
			t.GET("/ventas/:id/ticket", ventasH.Ticket)
			t.PATCH("/ventas/:id/devolver", admin, ventasH.DevolverVenta)

			t.POST("/apartados", apartadosH.Crear)
			t.GET("/apartados", apartadosH.Listar)
			t.GET("/apartados/:id", apartadosH.Obtener)
			t.GET("/apartados/:id/ticket", apartadosH.Ticket)
			t.POST("/apartados/:id/pagos", apartadosH.AgregarPago)
			t.POST("/apartados/:id/cancelar", apartadosH.Cancelar)
			t.POST("/apartados/:id/completar", apartadosH.Completar)

			t.GET("/caja", cajaH.Estado)
			t.POST("/caja/cierres", cajaH.RegistrarCierre)
			t.GET("/caja/cierres", cajaH.Historial)
		}
	}

	// Swagger UI, only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
