// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/MACM18/NNS-sub002/internal/domain/drum"
	"github.com/MACM18/NNS-sub002/internal/domain/inventory"
	"github.com/MACM18/NNS-sub002/internal/domain/job"
	"github.com/MACM18/NNS-sub002/internal/domain/reconcile"
	"github.com/MACM18/NNS-sub002/internal/infrastructure/http/v1/handlers"
	"github.com/MACM18/NNS-sub002/internal/infrastructure/http/v1/middleware"
	"github.com/MACM18/NNS-sub002/internal/infrastructure/storage/postgres"
	"github.com/MACM18/NNS-sub002/internal/infrastructure/storage/postgres/drum_repo"
	"github.com/MACM18/NNS-sub002/internal/infrastructure/storage/postgres/inventory_repo"
	"github.com/MACM18/NNS-sub002/internal/infrastructure/storage/postgres/job_repo"
	"github.com/MACM18/NNS-sub002/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks)
	Pool *postgres.Pool

	// TxManager drives transactions and querier resolution
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// SyncLog archives reconciliation batches; may be nil
	SyncLog *postgres.SyncLog
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("", healthHandler.Live)
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// Repositories share the TxManager so they resolve the active
	// transaction from context.
	drumRepo := drum_repo.NewDrumRepo(cfg.TxManager)
	eventRepo := drum_repo.NewEventRepo(cfg.TxManager)
	jobRepo := job_repo.NewJobRepo(cfg.TxManager)
	invRepo := inventory_repo.NewInventoryRepo(cfg.TxManager)
	settingsRepo := postgres.NewSettingsRepo(cfg.TxManager)

	drumService := drum.NewService(drumRepo, eventRepo, settingsRepo, cfg.TxManager)
	jobService := job.NewService(jobRepo, drumRepo, eventRepo, invRepo, cfg.TxManager)
	invService := inventory.NewService(invRepo, cfg.TxManager)

	var batchLog reconcile.BatchLogger
	if cfg.SyncLog != nil {
		batchLog = cfg.SyncLog
	}
	reconcileService := reconcile.NewService(invRepo, cfg.TxManager, batchLog)

	base := handlers.NewBaseHandler()
	drumHandler := handlers.NewDrumHandler(base, drumService)
	jobHandler := handlers.NewJobHandler(base, jobService)
	invHandler := handlers.NewInventoryHandler(base, invService, reconcileService)

	v1 := router.Group("/api/v1")
	{
		drums := v1.Group("/drums")
		{
			drums.POST("", drumHandler.Create)
			drums.GET("", drumHandler.List)
			drums.GET("/:id", drumHandler.Get)
			drums.GET("/:id/usage", drumHandler.Usage)
			drums.GET("/:id/events", drumHandler.Events)
			drums.PUT("/:id/wastage", drumHandler.SetWastage)
			drums.POST("/:id/recompute", drumHandler.Recompute)
		}

		jobs := v1.Group("/jobs")
		{
			jobs.POST("", jobHandler.Create)
			jobs.GET("", jobHandler.List)
			jobs.GET("/:id", jobHandler.Get)
		}

		inv := v1.Group("/inventory")
		{
			inv.GET("/items", invHandler.ListItems)
			inv.GET("/items/:id", invHandler.GetItem)
			inv.POST("/items/:id/receipts", invHandler.AddReceipt)
			inv.POST("/items/:id/waste", invHandler.AddWaste)
			inv.POST("/sync", invHandler.Sync)
			inv.POST("/sync/reset", invHandler.ResetMonth)
			inv.POST("/recompute", invHandler.Recompute)
		}
	}

	return router
}
