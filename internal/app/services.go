package app

import (
	"gorm.io/gorm"

	"github.com/purecarat/diamond-backend/internal/logger"
	"github.com/purecarat/diamond-backend/internal/services"
	"github.com/purecarat/diamond-backend/internal/vendors"
)

type Services struct {
	Process   services.ProcessService
	Pricing   services.PricingService
	Margin    services.MarginService
	Ingestion services.IngestionService
	Inventory services.InventoryService
}

func wireVendors(cfg Config, log *logger.Logger) *vendors.Registry {
	log.Info("Wiring vendor adapters...")
	return vendors.NewRegistry(
		vendors.NewVDBAdapter(vendors.VDBOptions{
			BaseURL:           cfg.VDB.BaseURL,
			APIKey:            cfg.VDB.APIKey,
			AccessToken:       cfg.VDB.AccessToken,
			PageSize:          cfg.VDB.PageSize,
			RequestsPerSecond: cfg.VDB.RequestsPerSecond,
			Timeout:           cfg.VDB.Timeout,
		}, log),
		vendors.NewAarushAdapter(vendors.AarushOptions{
			BaseURL:           cfg.Aarush.BaseURL,
			Username:          cfg.Aarush.Username,
			Password:          cfg.Aarush.Password,
			RequestsPerSecond: cfg.Aarush.RequestsPerSecond,
			Timeout:           cfg.Aarush.Timeout,
		}, log),
	)
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos) Services {
	log.Info("Wiring services...")
	adapters := wireVendors(cfg, log)

	processService := services.NewProcessService(db, log, reposet.IngestionProcess)
	pricingService := services.NewPricingService(db, log, reposet.StoneMargin, reposet.DiamondPricing, reposet.IngestedDiamond)
	marginService := services.NewMarginService(db, log, reposet.StoneMargin, pricingService)
	ingestionService := services.NewIngestionService(db, log, adapters, reposet.IngestedDiamond, reposet.DiamondPricing, processService, pricingService)
	inventoryService := services.NewInventoryService(db, log, reposet.IngestedDiamond, reposet.DiamondPricing)

	return Services{
		Process:   processService,
		Pricing:   pricingService,
		Margin:    marginService,
		Ingestion: ingestionService,
		Inventory: inventoryService,
	}
}
