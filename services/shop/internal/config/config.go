package config

import (
	"fmt"
	"os"
	"time"

	pkgconfig "github.com/Skotchmaster/storefront/pkg/config"
	"github.com/Skotchmaster/storefront/services/shop/internal/search"
)

type Config struct {
	ServerPort  int
	DatabaseURL string
	JWTSecret   []byte
	TokenTTL    time.Duration
	PublicURL   string
	Currency    string
	LogLevel    string

	KafkaBrokers []string
	Elastic      search.ElasticConfig

	RateLimit float64
	RateBurst int

	// DevMode returns verification codes in register responses.
	DevMode bool
}

func Load() (*Config, error) {
	pkgconfig.LoadDotEnv()

	port := pkgconfig.EnvIntDefault("SERVER_PORT", 8080)
	cfg := &Config{
		ServerPort:  port,
		DatabaseURL: pkgconfig.EnvDefault("DATABASE_URL", pkgconfig.EnvDefault("SQLITE_PATH", "shop.db")),
		JWTSecret:   []byte(os.Getenv("JWT_SECRET")),
		TokenTTL:    pkgconfig.EnvDurationDefault("TOKEN_TTL", time.Hour),
		PublicURL:   pkgconfig.EnvDefault("PUBLIC_URL", fmt.Sprintf("http://localhost:%d", port)),
		Currency:    pkgconfig.EnvDefault("CURRENCY", "usd"),
		LogLevel:    pkgconfig.EnvDefault("LOG_LEVEL", "info"),

		KafkaBrokers: pkgconfig.CSV(os.Getenv("KAFKA_BROKERS")),
		Elastic: search.ElasticConfig{
			URL:      os.Getenv("ES_URL"),
			Username: os.Getenv("ES_USER"),
			Password: os.Getenv("ES_PASSWORD"),
			Index:    pkgconfig.EnvDefault("ES_INDEX", search.DefaultIndex),
		},

		RateLimit: pkgconfig.EnvFloatDefault("RATE_LIMIT", 20),
		RateBurst: pkgconfig.EnvIntDefault("RATE_BURST", 40),

		DevMode: pkgconfig.EnvDefault("SHOP_DEV_MODE", "") == "true",
	}

	if err := pkgconfig.RequireNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET"); err != nil {
		return nil, err
	}
	return cfg, nil
}
