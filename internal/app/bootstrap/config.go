// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/wanderhub/travelhub/internal/app/system/mailer"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for TravelHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, refresh_interval, etc.
//   - Environment variables: TRAVELHUB_MONGO_URI, TRAVELHUB_REFRESH_INTERVAL, etc.
//   - Command-line flags: --mongo_uri, --refresh_interval, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "travelhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 5, Desc: "MongoDB min connection pool size"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "travelhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie lifetime"},

	// Console engine
	{Name: "refresh_interval", Default: "30s", Desc: "Console auto-refresh interval"},
	{Name: "refresh_auto_start", Default: false, Desc: "Start auto-refresh when a console session opens"},
	{Name: "bulk_concurrency", Default: 8, Desc: "Max concurrent mutations per bulk operation"},
	{Name: "bulk_rate_per_sec", Default: "0", Desc: "Bulk mutation rate limit per second (0 = unlimited)"},
	{Name: "mailto_max_length", Default: mailer.DefaultMaxLength, Desc: "Max length of one mailto: link"},
	{Name: "console_idle_timeout", Default: "30m", Desc: "Close console sessions idle this long"},
	{Name: "console_sweep_interval", Default: "1m", Desc: "How often idle console sessions are swept"},

	// Audit logging settings
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Gateway timeouts
	{Name: "timeout_fetch", Default: "0s", Desc: "Per-resource fetch timeout (0 = default)"},
	{Name: "timeout_mutate", Default: "0s", Desc: "Per-record mutation timeout (0 = default)"},
	{Name: "timeout_bulk", Default: "0s", Desc: "Whole bulk operation timeout (0 = default)"},

	// Admin bootstrap
	{Name: "admin_email", Default: "", Desc: "Email of a user promoted (or created) as admin on startup"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, TRAVELHUB_* for app) and
// flags, merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "TRAVELHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	var ratePerSec float64
	if s := appValues.String("bulk_rate_per_sec"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, AppConfig{}, fmt.Errorf("bulk_rate_per_sec: %w", err)
		}
		ratePerSec = v
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),
		SessionMaxAge:    appValues.Duration("session_max_age", 24*time.Hour),

		RefreshInterval:  appValues.Duration("refresh_interval", 30*time.Second),
		RefreshAutoStart: appValues.Bool("refresh_auto_start"),

		BulkConcurrency: appValues.Int("bulk_concurrency"),
		BulkRatePerSec:  ratePerSec,
		MailtoMaxLength: appValues.Int("mailto_max_length"),

		ConsoleIdleTimeout:   appValues.Duration("console_idle_timeout", 30*time.Minute),
		ConsoleSweepInterval: appValues.Duration("console_sweep_interval", time.Minute),

		AuditLogAdmin: appValues.String("audit_log_admin"),

		TimeoutFetch:  appValues.Duration("timeout_fetch", 0),
		TimeoutMutate: appValues.Duration("timeout_mutate", 0),
		TimeoutBulk:   appValues.Duration("timeout_bulk", 0),

		AdminEmail: appValues.String("admin_email"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// The MongoDB URI format is checked before attempting to connect, and the
// console intervals must be positive so schedulers and sweepers can tick.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	return validateConsole(appCfg)
}

func validateConsole(appCfg AppConfig) error {
	switch {
	case appCfg.RefreshInterval <= 0:
		return fmt.Errorf("refresh_interval must be positive, got %s", appCfg.RefreshInterval)
	case appCfg.ConsoleIdleTimeout <= 0:
		return fmt.Errorf("console_idle_timeout must be positive, got %s", appCfg.ConsoleIdleTimeout)
	case appCfg.ConsoleSweepInterval <= 0:
		return fmt.Errorf("console_sweep_interval must be positive, got %s", appCfg.ConsoleSweepInterval)
	case appCfg.BulkConcurrency <= 0:
		return fmt.Errorf("bulk_concurrency must be positive, got %d", appCfg.BulkConcurrency)
	case appCfg.BulkRatePerSec < 0:
		return fmt.Errorf("bulk_rate_per_sec must not be negative, got %g", appCfg.BulkRatePerSec)
	case appCfg.MailtoMaxLength <= 0:
		return fmt.Errorf("mailto_max_length must be positive, got %d", appCfg.MailtoMaxLength)
	}
	switch appCfg.AuditLogAdmin {
	case "all", "db", "log", "off":
	default:
		return fmt.Errorf("audit_log_admin must be one of all, db, log, off; got %q", appCfg.AuditLogAdmin)
	}
	return nil
}
