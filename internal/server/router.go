package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/purecarat/diamond-backend/internal/handlers"
)

type RouterConfig struct {
	DiamondHandler *handlers.DiamondHandler
	MarginHandler  *handlers.MarginHandler
	AllowOrigins   []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	allowOrigins := cfg.AllowOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// Inventory reads
		api.GET("/diamonds", cfg.DiamondHandler.ListDiamonds)

		// Ingestion pipeline
		api.POST("/diamonds/ingest-all", cfg.DiamondHandler.IngestAll)
		api.POST("/diamonds/ingest/:vendor", cfg.DiamondHandler.IngestVendor)
		api.GET("/diamonds/processes", cfg.DiamondHandler.ListProcesses)
		api.GET("/diamonds/processes/:id", cfg.DiamondHandler.GetProcess)

		// Margin rules
		api.POST("/margins", cfg.MarginHandler.Replace)
		api.GET("/margins", cfg.MarginHandler.List)
	}

	return router
}
