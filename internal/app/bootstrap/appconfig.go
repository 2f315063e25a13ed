// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging, CORS); AppConfig is everything specific to CrewDeck. The
// struct is passed to most lifecycle hooks, so any configuration needed
// during startup, request handling, or shutdown lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // secret key for signing session cookies
	SessionName   string // cookie name
	SessionDomain string // cookie domain (blank means current host)

	// Base URL of this service, used to build the OAuth redirect URL.
	BaseURL string
	// FrontendURL is where the browser lands after OAuth completes.
	FrontendURL string

	// Google OAuth configuration
	GoogleClientID     string
	GoogleClientSecret string

	// OAuthIdentityPolicy selects how a federated login resolves to a
	// user: "merge-by-email" (default) or "strict-by-provider".
	OAuthIdentityPolicy string

	// AuditLogMode: "all" (db+log), "db", "log", or "off".
	AuditLogMode string

	// Storage timeout tiers. Zero values keep the package defaults in
	// system/timeouts.
	TimeoutPing   time.Duration
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
