package app

import (
	"gorm.io/gorm"

	"github.com/purecarat/diamond-backend/internal/logger"
	"github.com/purecarat/diamond-backend/internal/repos"
)

type Repos struct {
	IngestedDiamond  repos.IngestedDiamondRepo
	StoneMargin      repos.StoneMarginRepo
	DiamondPricing   repos.DiamondPricingRepo
	IngestionProcess repos.IngestionProcessRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		IngestedDiamond:  repos.NewIngestedDiamondRepo(db, log),
		StoneMargin:      repos.NewStoneMarginRepo(db, log),
		DiamondPricing:   repos.NewDiamondPricingRepo(db, log),
		IngestionProcess: repos.NewIngestionProcessRepo(db, log),
	}
}
