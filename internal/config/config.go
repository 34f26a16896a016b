package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// MaxStrategyRefLen is the longest customerStrategyRef placeOrders accepts.
const MaxStrategyRefLen = 15

type Config struct {
	// Betfair credentials
	AppKey       string
	Username     string
	Password     string
	SessionToken string // pre-issued token; skips interactive login when set

	// Betfair endpoints
	IdentityURL string
	BettingURL  string

	// Orders
	StrategyRef   string
	OrderPlanPath string

	// Catalogue listing defaults
	CatalogueDays  int
	CatalogueLimit int

	// Audit
	AuditDBPath string

	// Alerts
	DiscordWebhookURL string

	// Telemetry
	LogLevel string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		AppKey:       envStr("BETFAIR_APP_KEY", ""),
		Username:     envStr("BETFAIR_USERNAME", ""),
		Password:     envStr("BETFAIR_PASSWORD", ""),
		SessionToken: envStr("BETFAIR_SESSION_TOKEN", ""),

		IdentityURL: envStr("BETFAIR_IDENTITY_URL", "https://identitysso.betfair.com"),
		BettingURL:  envStr("BETFAIR_BETTING_URL", "https://api.betfair.com/exchange/betting/rest/v1.0"),

		StrategyRef:   envStr("STRATEGY_REF", "best_price"),
		OrderPlanPath: envStr("ORDER_PLAN_PATH", "order_plan.yaml"),

		CatalogueDays:  envInt("CATALOGUE_DAYS", 7),
		CatalogueLimit: envInt("CATALOGUE_LIMIT", 100),

		AuditDBPath: envStr("AUDIT_DB_PATH", "data/orders.db"),

		DiscordWebhookURL: envStr("DISCORD_WEBHOOK_URL", ""),

		LogLevel: envStr("LOG_LEVEL", "info"),
	}
}

// Validate checks that the config can authenticate and place orders.
func (c *Config) Validate() error {
	var errs []error
	if c.AppKey == "" {
		errs = append(errs, errors.New("BETFAIR_APP_KEY is required"))
	}
	if c.SessionToken == "" && (c.Username == "" || c.Password == "") {
		errs = append(errs, errors.New("BETFAIR_SESSION_TOKEN or BETFAIR_USERNAME and BETFAIR_PASSWORD are required"))
	}
	if len(c.StrategyRef) > MaxStrategyRefLen {
		errs = append(errs, fmt.Errorf("STRATEGY_REF %q exceeds %d characters", c.StrategyRef, MaxStrategyRefLen))
	}
	return errors.Join(errs...)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
