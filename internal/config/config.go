package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	DatabaseURL         string
	RedisURL            string
	FrontendURLEndsWith string
	// CatalogCacheTTL bounds how stale cached costing reference data may get.
	CatalogCacheTTL time.Duration
	// RefreshDelay is how long after a committed mutation the subtree
	// re-fetch runs. Zero disables background refresh.
	RefreshDelay time.Duration
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL_DEV")
	if env == "production" {
		dbURL = viper.GetString("DATABASE_URL_PROD")
	} else if env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}

	cacheTTL := viper.GetDuration("CATALOG_CACHE_TTL")
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	refreshDelay := viper.GetDuration("SUBTREE_REFRESH_DELAY")
	if refreshDelay < 0 {
		refreshDelay = 0
	}

	return &Config{
		Env:                 env,
		Port:                port,
		DatabaseURL:         dbURL,
		RedisURL:            viper.GetString("REDIS_URL"),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		CatalogCacheTTL:     cacheTTL,
		RefreshDelay:        refreshDelay,
	}, nil
}
