package routes

import (
	"nregastats/internal/config"
	"nregastats/internal/controllers"
	"nregastats/internal/store"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies are the collaborators the handlers run against.
type Dependencies struct {
	Store    store.Store
	Syncer   controllers.Syncer
	Upstream controllers.UpstreamChecker // optional
	Queue    controllers.Enqueuer        // optional
}

// SetupRouter initializes all controllers and API routes
func SetupRouter(deps Dependencies, cfg *config.Config) *gin.Engine {
	syncController := controllers.SyncController{Syncer: deps.Syncer, Queue: deps.Queue, Timeout: cfg.SyncTimeout}
	regionController := controllers.RegionController{Store: deps.Store, State: cfg.StateDisplay}
	healthController := controllers.HealthController{Store: deps.Store, Upstream: deps.Upstream}

	// Set up Gin router
	router := gin.Default()
	router.Use(cors.New(corsConfig(cfg.CORSAllowOrigins)))

	router.GET("/health", healthController.GetHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Group API routes under /api/v1
	api := router.Group("/api/v1")
	{
		sync := api.Group("/sync")
		{
			// POST /api/v1/sync
			// Runs (or queues) a current-period sync or a historical backfill
			sync.POST("", syncController.TriggerSync)
			sync.GET("", syncController.Usage)
			// GET /api/v1/sync/logs?limit=10
			sync.GET("/logs", syncController.GetLogs)
		}

		regions := api.Group("/regions")
		{
			regions.GET("", regionController.GetRegions)
			// GET /api/v1/regions/:code?months=12
			regions.GET("/:code", regionController.GetRegion)
			regions.GET("/:code/compare", regionController.CompareRegion)
		}
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders: []string{"Content-Length", "Content-Type"},
		MaxAge:        12 * time.Hour,
	}
	if slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}
