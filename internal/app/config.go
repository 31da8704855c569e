package app

import (
	"strings"
	"time"

	"github.com/purecarat/diamond-backend/internal/logger"
	"github.com/purecarat/diamond-backend/internal/utils"
)

type VDBConfig struct {
	BaseURL           string
	APIKey            string
	AccessToken       string
	PageSize          int
	RequestsPerSecond float64
	Timeout           time.Duration
}

type AarushConfig struct {
	BaseURL           string
	Username          string
	Password          string
	RequestsPerSecond float64
	Timeout           time.Duration
}

type Config struct {
	Port         string
	AllowOrigins []string
	VDB          VDBConfig
	Aarush       AarushConfig
}

func LoadConfig(log *logger.Logger) Config {
	rawOrigins := utils.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000", log)
	var origins []string
	for _, o := range strings.Split(rawOrigins, ",") {
		if v := strings.TrimSpace(o); v != "" {
			origins = append(origins, v)
		}
	}

	return Config{
		Port:         utils.GetEnv("PORT", "8080", log),
		AllowOrigins: origins,
		VDB: VDBConfig{
			BaseURL:           utils.GetEnv("VDB_API_URL", "https://apiservices.vdbapp.com/v2/diamonds", log),
			APIKey:            utils.GetEnv("VDB_API_KEY", "", log),
			AccessToken:       utils.GetEnv("VDB_ACCESS_TOKEN", "", log),
			PageSize:          utils.GetEnvAsInt("VDB_PAGE_SIZE", 150, log),
			RequestsPerSecond: utils.GetEnvAsFloat("VDB_REQUESTS_PER_SECOND", 2, log),
			Timeout:           time.Duration(utils.GetEnvAsInt("VDB_TIMEOUT_SECONDS", 60, log)) * time.Second,
		},
		Aarush: AarushConfig{
			BaseURL:           utils.GetEnv("AARUSH_API_URL", "", log),
			Username:          utils.GetEnv("AARUSH_USERNAME", "", log),
			Password:          utils.GetEnv("AARUSH_PASSWORD", "", log),
			RequestsPerSecond: utils.GetEnvAsFloat("AARUSH_REQUESTS_PER_SECOND", 2, log),
			Timeout:           time.Duration(utils.GetEnvAsInt("AARUSH_TIMEOUT_SECONDS", 30, log)) * time.Second,
		},
	}
}
