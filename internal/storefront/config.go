package storefront

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/session"
	pkgconfig "github.com/Skotchmaster/storefront/pkg/config"
)

type Config struct {
	APIURL      string
	StatePath   string
	MergePolicy session.MergePolicy
	HTTPTimeout time.Duration
	TaxRate     decimal.Decimal
	LogLevel    string
	SuccessURL  string
	CancelURL   string
}

func LoadConfig() (*Config, error) {
	pkgconfig.LoadDotEnv()

	policy, err := session.ParseMergePolicy(os.Getenv("SHOP_MERGE_POLICY"))
	if err != nil {
		return nil, fmt.Errorf("SHOP_MERGE_POLICY: %w", err)
	}

	tax := decimal.Zero
	if v := os.Getenv("SHOP_TAX_RATE"); v != "" {
		tax, err = decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("SHOP_TAX_RATE: %w", err)
		}
		if tax.IsNegative() {
			return nil, fmt.Errorf("SHOP_TAX_RATE must not be negative")
		}
	}

	cfg := &Config{
		APIURL:      pkgconfig.EnvDefault("SHOP_API_URL", "http://localhost:8080"),
		StatePath:   pkgconfig.EnvDefault("SHOP_STATE_PATH", defaultStatePath()),
		MergePolicy: policy,
		HTTPTimeout: pkgconfig.EnvDurationDefault("SHOP_HTTP_TIMEOUT", 10*time.Second),
		TaxRate:     tax,
		LogLevel:    pkgconfig.EnvDefault("LOG_LEVEL", "warn"),
		SuccessURL:  os.Getenv("SHOP_SUCCESS_URL"),
		CancelURL:   os.Getenv("SHOP_CANCEL_URL"),
	}
	if err := pkgconfig.RequireNonEmpty(cfg.APIURL, "SHOP_API_URL"); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "shopctl-state.db"
	}
	return filepath.Join(dir, "shopctl", "state.db")
}
