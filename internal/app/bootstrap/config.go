// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/crewdeck/internal/app/store/provision"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for CrewDeck, loaded via
// WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: CREWDECK_MONGO_URI, CREWDECK_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "crewdeck", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "session_key", Default: "", Desc: "Session signing key (required in production; a random key is generated in dev)"},
	{Name: "session_name", Default: "crewdeck-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	{Name: "base_url", Default: "http://localhost:8080", Desc: "Base URL of this service (for OAuth redirect URLs)"},
	{Name: "frontend_url", Default: "http://localhost:3000", Desc: "Frontend origin the browser is sent to after OAuth"},

	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},

	{Name: "oauth_identity_policy", Default: string(provision.MergeByEmail),
		Desc: "Federated identity resolution: 'merge-by-email' or 'strict-by-provider'"},

	{Name: "audit_log", Default: "all", Desc: "Audit event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	{Name: "timeout_ping", Default: "", Desc: "Health check timeout (e.g. '2s'; blank keeps the default)"},
	{Name: "timeout_short", Default: "", Desc: "Single-document read timeout (blank keeps the default)"},
	{Name: "timeout_medium", Default: "", Desc: "List query / single write timeout (blank keeps the default)"},
	{Name: "timeout_long", Default: "", Desc: "Multi-collection transaction timeout (blank keeps the default)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, CREWDECK_* for app), and
// command-line flags, merging with precedence flags > env > files >
// defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CREWDECK", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),

		BaseURL:     appValues.String("base_url"),
		FrontendURL: appValues.String("frontend_url"),

		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),

		OAuthIdentityPolicy: appValues.String("oauth_identity_policy"),

		AuditLogMode: appValues.String("audit_log"),
	}

	for _, tier := range []struct {
		key string
		dst *time.Duration
	}{
		{"timeout_ping", &appCfg.TimeoutPing},
		{"timeout_short", &appCfg.TimeoutShort},
		{"timeout_medium", &appCfg.TimeoutMedium},
		{"timeout_long", &appCfg.TimeoutLong},
	} {
		raw := appValues.String(tier.key)
		if raw == "" {
			continue
		}
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return nil, AppConfig{}, fmt.Errorf("%s must be a positive duration, got %q", tier.key, raw)
		}
		*tier.dst = d
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation, aborting
// startup on bad values rather than failing later mid-request.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if !provision.ValidPolicy(provision.IdentityPolicy(appCfg.OAuthIdentityPolicy)) {
		return fmt.Errorf("oauth_identity_policy must be %q or %q, got %q",
			provision.MergeByEmail, provision.StrictByProvider, appCfg.OAuthIdentityPolicy)
	}

	switch appCfg.AuditLogMode {
	case "all", "db", "log", "off":
	default:
		return fmt.Errorf("audit_log must be 'all', 'db', 'log', or 'off', got %q", appCfg.AuditLogMode)
	}

	if coreCfg.Env == "prod" && appCfg.SessionKey == "" {
		return fmt.Errorf("session_key is required in production")
	}

	return nil
}
