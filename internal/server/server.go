package server

import (
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/bacoteatro/taquilla/config"
	"github.com/bacoteatro/taquilla/internal/handlers"
	"github.com/bacoteatro/taquilla/internal/middleware"
	"github.com/bacoteatro/taquilla/internal/models"
)

func Start() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	setupLogging(cfg.LogLevel)

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	r := gin.Default()

	setupRoutes(r, db)

	log.Info().Str("port", cfg.Port).Msg("Starting server")
	return r.Run(":" + cfg.Port)
}

func setupLogging(level string) {
	zerolog.TimeFieldFormat = time.RFC3339
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	log.Logger = log.Output(os.Stderr).Level(parsed)
}

func setupRoutes(r *gin.Engine, db *gorm.DB) {
	r.Use(middleware.DatabaseMiddleware(db))

	public := r.Group("/v1")
	{
		public.POST("/register", handlers.Register)
		public.POST("/login", handlers.Login)
		public.POST("/sales/search", handlers.SearchSalesByEmail)

		eventPublic := public.Group("/events")
		{
			eventPublic.GET("", handlers.ListEvents)
			eventPublic.GET("/:id", handlers.GetEvent)
		}
	}

	protected := r.Group("/v1")
	protected.Use(middleware.JWTAuthMiddleware())
	{
		protected.GET("/profile", handlers.GetProfile)

		purchases := protected.Group("/purchases")
		{
			purchases.POST("", handlers.CreatePurchase)
			purchases.GET("", handlers.ListMyPurchases)
			purchases.GET("/:id", handlers.GetPurchase)
			purchases.GET("/:id/qr", handlers.PurchaseQR)
		}

		eventAdmin := protected.Group("/events")
		eventAdmin.Use(middleware.RequireRole(models.RoleAdmin, models.RoleSuperuser))
		{
			eventAdmin.POST("", handlers.CreateEvent)
			eventAdmin.PUT("/:id", handlers.UpdateEvent)
			eventAdmin.DELETE("/:id", handlers.DeleteEvent)
		}

		admin := protected.Group("/admin")
		admin.Use(middleware.RequireRole(models.RoleAdmin, models.RoleSuperuser))
		{
			admin.GET("/users", handlers.ListUsers)
			admin.GET("/sales", handlers.AdminSales)
			admin.PUT("/users/:id/role", middleware.RequireRole(models.RoleSuperuser), handlers.ChangeUserRole)
		}

		dashboard := protected.Group("/dashboard")
		{
			dashboard.GET("/superuser", middleware.RequireRole(models.RoleSuperuser), handlers.SuperuserDashboard)
			dashboard.GET("/director", middleware.RequireRole(models.RoleDirector, models.RoleSuperuser), handlers.DirectorDashboard)
			dashboard.GET("/actor", middleware.RequireRole(models.RoleActor, models.RoleSuperuser), handlers.ActorDashboard)
		}
	}
}
