package app

import (
	"github.com/purecarat/diamond-backend/internal/handlers"
	"github.com/purecarat/diamond-backend/internal/logger"
)

type Handlers struct {
	Diamond *handlers.DiamondHandler
	Margin  *handlers.MarginHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Diamond: handlers.NewDiamondHandler(services.Ingestion, services.Process, services.Inventory),
		Margin:  handlers.NewMarginHandler(services.Margin),
	}
}
