package router

import (
	"time"

	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/config"
	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/handler"
	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/middleware"
	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/repository"
	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/service"
	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	proveedorRepo := repository.NewProveedorRepository(db)
	plantillaRepo := repository.NewPlantillaRepository(db)
	actualizacionRepo := repository.NewActualizacionRepository(db)
	historialPrecioRepo := repository.NewHistorialPrecioRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	productoSvc := service.NewProductoService(productoRepo, historialPrecioRepo, rdb)
	proveedorSvc := service.NewProveedorService(proveedorRepo)
	plantillaSvc := service.NewPlantillaService(plantillaRepo, proveedorRepo)
	actualizacionSvc := service.NewActualizacionPrecioService(
		actualizacionRepo, plantillaRepo, proveedorRepo, productoRepo,
		historialPrecioRepo, rdb, dispatcher, cfg.NotificacionEmail)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	proveedoresH := handler.NewProveedoresHandler(proveedorSvc)
	plantillasH := handler.NewPlantillasHandler(plantillaSvc)
	actualizacionesH := handler.NewActualizacionesHandler(actualizacionSvc, cfg.MaxUploadMB)
	consultaH := handler.NewConsultaPreciosHandler(productoSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Price check — no auth required
	r.GET("/v1/precio/:barcode", consultaH.GetPrecioPorBarcode)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: vendedor, supervisor, administrador — declared per-endpoint
		v1.GET("/productos", middleware.RequireRole("vendedor", "supervisor", "administrador"), productosH.Listar)
		v1.GET("/productos/:id", middleware.RequireRole("vendedor", "supervisor", "administrador"), productosH.ObtenerPorID)
		v1.GET("/productos/barcode/:barcode", middleware.RequireRole("vendedor", "supervisor", "administrador"), productosH.ObtenerPorBarcode)
		v1.GET("/productos/:id/historial-precios", middleware.RequireRole("vendedor", "supervisor", "administrador"), productosH.HistorialPrecios)
		// PATCH stock — supervisor or administrador
		v1.PATCH("/productos/:id/stock", middleware.RequireRole("supervisor", "administrador"), productosH.AjustarStock)
		// Write operations — administrador only
		prods := v1.Group("/productos", middleware.RequireRole("administrador"))
		{
			prods.POST("", productosH.Crear)
			prods.PUT("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Desactivar)
			prods.PATCH("/:id/reactivar", productosH.Reactivar)
		}

		prov := v1.Group("/proveedores", middleware.RequireRole("administrador"))
		{
			prov.POST("", proveedoresH.Crear)
			prov.GET("", proveedoresH.Listar)
			prov.GET("/:id", proveedoresH.ObtenerPorID)
			prov.PUT("/:id", proveedoresH.Actualizar)
			prov.DELETE("/:id", proveedoresH.Eliminar)
			prov.GET("/:id/plantillas-importacion", plantillasH.ListarPorProveedor)
		}

		plantillas := v1.Group("/plantillas-importacion", middleware.RequireRole("administrador"))
		{
			plantillas.POST("", plantillasH.Crear)
			plantillas.GET("", plantillasH.Listar)
			plantillas.GET("/:id", plantillasH.ObtenerPorID)
			plantillas.PUT("/:id", plantillasH.Actualizar)
			plantillas.DELETE("/:id", plantillasH.Eliminar)
		}

		// Price update pipeline: analyze → review → apply | cancel.
		// Supervisors can analyze and review; only administrador applies.
		act := v1.Group("/actualizaciones-precios")
		{
			act.POST("/analizar", middleware.RequireRole("supervisor", "administrador"), actualizacionesH.Analizar)
			act.POST("/analizar-archivo", middleware.RequireRole("supervisor", "administrador"), actualizacionesH.AnalizarArchivo)
			act.GET("", middleware.RequireRole("supervisor", "administrador"), actualizacionesH.Listar)
			act.GET("/:id", middleware.RequireRole("supervisor", "administrador"), actualizacionesH.ObtenerPorID)
			act.POST("/:id/aplicar", middleware.RequireRole("administrador"), actualizacionesH.Aplicar)
			act.POST("/:id/cancelar", middleware.RequireRole("supervisor", "administrador"), actualizacionesH.Cancelar)
		}

		usuarios := v1.Group("/usuarios", middleware.RequireRole("administrador"))
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
			usuarios.PATCH("/:id/reactivar", usuariosH.Reactivar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
