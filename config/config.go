package config

import (
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Port              string  `envconfig:"PORT"                    default:":8080"`
	DatabaseURL       string  `envconfig:"DATABASE_URL"            required:"true"`
	LegacyCatalogPath string  `envconfig:"LEGACY_CATALOG_PATH"     default:""`
	UploadDir         string  `envconfig:"UPLOAD_DIR"              default:"./uploads"`
	JWTSecret         string  `envconfig:"JWT_SECRET"              required:"true"`
	LogLevel          string  `envconfig:"LOG_LEVEL"               default:"info"`
	FreeShippingLimit float64 `envconfig:"FREE_SHIPPING_THRESHOLD" default:"5000"`
	FlatShippingFee   float64 `envconfig:"FLAT_SHIPPING_FEE"       default:"150"`
}

var (
	config Config
	once   sync.Once
)

func LoadConfig(logger *logrus.Logger) *Config {
	once.Do(func() {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			logger.Warnf("Error loading .env file (but continuing): %v", err)
		} else if err == nil {
			logger.Info("Loaded configuration from .env file")
		}

		err = envconfig.Process("", &config)
		if err != nil {
			logger.Fatalf("Failed to process configuration from environment variables: %v", err)
		}

		logger.Infof("Configuration loaded: Port=%s, LogLevel=%s, UploadDir=%s", config.Port, config.LogLevel, config.UploadDir)
		if config.LegacyCatalogPath != "" {
			logger.Infof("Configuration loaded: legacy catalog reads enabled from %s", config.LegacyCatalogPath)
		}
	})
	return &config
}
