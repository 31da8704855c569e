package app

import (
	"github.com/gin-gonic/gin"

	"github.com/purecarat/diamond-backend/internal/server"
)

func wireRouter(cfg Config, handlerset Handlers) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		DiamondHandler: handlerset.Diamond,
		MarginHandler:  handlerset.Margin,
		AllowOrigins:   cfg.AllowOrigins,
	})
}
