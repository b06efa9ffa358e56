// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables (TRAVELHUB_*), configuration
// files, or command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig
// covers the framework-level settings: ports, TLS, logging, CORS and
// request limits. Everything the console engine needs lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: travelhub-session)
	SessionDomain string // Cookie domain (blank means current host)
	SessionMaxAge time.Duration

	// Console refresh
	RefreshInterval  time.Duration // auto-refresh period
	RefreshAutoStart bool          // start auto-refresh when a console session opens

	// Bulk operations
	BulkConcurrency int     // max in-flight mutations per bulk operation
	BulkRatePerSec  float64 // mutation pacing; 0 means unlimited
	MailtoMaxLength int     // max length of one mailto: link

	// Console session lifecycle
	ConsoleIdleTimeout   time.Duration // sessions idle this long are closed
	ConsoleSweepInterval time.Duration // how often idle sessions are swept

	// Audit logging: all | db | log | off
	AuditLogAdmin string

	// Gateway timeouts (0 keeps the defaults in system/timeouts)
	TimeoutFetch  time.Duration
	TimeoutMutate time.Duration
	TimeoutBulk   time.Duration

	// AdminEmail names a user promoted (or created) as admin on startup.
	AdminEmail string
}
