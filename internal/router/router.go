package router

import (
	"time"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/BayaslianSantiago/cierre-caja-esf/internal/config"
	"github.com/BayaslianSantiago/cierre-caja-esf/internal/handler"
	"github.com/BayaslianSantiago/cierre-caja-esf/internal/infra"
	"github.com/BayaslianSantiago/cierre-caja-esf/internal/middleware"
	"github.com/BayaslianSantiago/cierre-caja-esf/internal/repository"
	"github.com/BayaslianSantiago/cierre-caja-esf/internal/service"
	"github.com/BayaslianSantiago/cierre-caja-esf/internal/worker"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, smtpCB *infra.CircuitBreaker) (*gin.Engine, error) {
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
	proveedorRepo := repository.NewProveedorRepository(db)
	cierreRepo := repository.NewCierreRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	proveedorSvc := service.NewProveedorService(proveedorRepo)
	cierreSvc, err := service.NewCierreService(cierreRepo, dispatcher, cfg)
	if err != nil {
		return nil, err
	}

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	proveedoresH := handler.NewProveedoresHandler(proveedorSvc)
	cierresH := handler.NewCierresHandler(cierreSvc, rdb)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, smtpCB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: cajero, supervisor, administrador — declared per-endpoint
		cierres := v1.Group("/cierres")
		{
			cierres.POST("", middleware.RequireRole("cajero", "supervisor", "administrador"), cierresH.Cerrar)
			cierres.POST("/simular", middleware.RequireRole("cajero", "supervisor", "administrador"), cierresH.Simular)
			cierres.GET("/ultimo-cambio", middleware.RequireRole("cajero", "supervisor", "administrador"), cierresH.UltimoCambio)
			cierres.GET("", middleware.RequireRole("supervisor", "administrador"), cierresH.Listar)
			cierres.GET("/export.csv", middleware.RequireRole("supervisor", "administrador"), cierresH.ExportCSV)
			cierres.GET("/:id", middleware.RequireRole("cajero", "supervisor", "administrador"), cierresH.Obtener)
			cierres.GET("/:id/reporte", middleware.RequireRole("cajero", "supervisor", "administrador"), cierresH.Reporte)
			cierres.GET("/:id/pdf", middleware.RequireRole("supervisor", "administrador"), cierresH.PDF)
		}

		prov := v1.Group("/proveedores")
		{
			prov.GET("", middleware.RequireRole("cajero", "supervisor", "administrador"), proveedoresH.Listar)
			prov.GET("/:id", middleware.RequireRole("cajero", "supervisor", "administrador"), proveedoresH.Obtener)
			admin := prov.Group("", middleware.RequireRole("administrador"))
			{
				admin.POST("", proveedoresH.Crear)
				admin.PUT("/:id", proveedoresH.Actualizar)
				admin.DELETE("/:id", proveedoresH.Eliminar)
			}
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

	return r, nil
}
