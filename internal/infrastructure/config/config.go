package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	OTLP      OTLPConfig
	Log       LogConfig
	Catalog   CatalogConfig
	Favorites FavoritesConfig
	Auth      AuthConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port             string
	Host             string
	ShutdownTimeout  time.Duration
	// DurationMetricMs enables the extra millisecond request duration histogram
	DurationMetricMs bool
}

type OTLPConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
	Environment string
}

type LogConfig struct {
	Level      string
	// File, when set, receives a rotated copy of every log line
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type CatalogConfig struct {
	// Path to a JSON catalog; empty uses the embedded one
	Path string
}

type FavoritesConfig struct {
	// Persist controls whether favorites are kept in the visitor's cookie.
	// When false every request starts from an empty, memory-only set.
	Persist      bool
	CookieMaxAge time.Duration
	CookieSecure bool
}

type AuthConfig struct {
	Secret       string
	DemoEmail    string
	DemoPassword string
	DemoName     string
	SessionTTL   time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

// developmentSecret signs sessions only when otel.environment is development
const developmentSecret = "demo_secret_that_is_at_least_32_characters_long"

var errMissingSecret = errors.New("auth secret must be set outside the development environment")

// env names kept from the original service layout
var envBindings = map[string]string{
	"server.host":               "SERVER_HOST",
	"server.port":               "SERVER_PORT",
	"server.shutdown_timeout":   "SERVER_SHUTDOWN_TIMEOUT",
	"server.duration_metric_ms": "SERVER_DURATION_METRIC_MS",
	"otel.enabled":              "OTEL_ENABLED",
	"otel.endpoint":             "OTEL_EXPORTER_OTLP_ENDPOINT",
	"otel.service_name":         "OTEL_SERVICE_NAME",
	"otel.environment":          "OTEL_ENVIRONMENT",
	"log.level":                 "LOG_LEVEL",
	"log.file":                  "LOG_FILE",
	"log.max_size_mb":           "LOG_MAX_SIZE_MB",
	"log.max_backups":           "LOG_MAX_BACKUPS",
	"log.max_age_days":          "LOG_MAX_AGE_DAYS",
	"catalog.path":              "CATALOG_PATH",
	"favorites.persist":         "FAVORITES_PERSIST",
	"favorites.cookie_max_age":  "FAVORITES_COOKIE_MAX_AGE",
	"favorites.cookie_secure":   "FAVORITES_COOKIE_SECURE",
	"auth.secret":               "AUTH_SECRET",
	"auth.demo_email":           "AUTH_DEMO_EMAIL",
	"auth.demo_password":        "AUTH_DEMO_PASSWORD",
	"auth.demo_name":            "AUTH_DEMO_NAME",
	"auth.session_ttl":          "AUTH_SESSION_TTL",
	"cors.allowed_origins":      "CORS_ALLOWED_ORIGINS",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.duration_metric_ms", false)
	v.SetDefault("otel.enabled", false)
	v.SetDefault("otel.endpoint", "localhost:4317")
	v.SetDefault("otel.service_name", "restyle-storefront")
	v.SetDefault("otel.environment", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("catalog.path", "")
	v.SetDefault("favorites.persist", true)
	v.SetDefault("favorites.cookie_max_age", 365*24*time.Hour)
	v.SetDefault("favorites.cookie_secure", false)
	v.SetDefault("auth.demo_email", "user@example.com")
	v.SetDefault("auth.demo_password", "password")
	v.SetDefault("auth.demo_name", "Demo User")
	v.SetDefault("auth.session_ttl", 24*time.Hour)
	v.SetDefault("cors.allowed_origins", []string{"*"})
}

// LoadConfig reads defaults, then the optional config file, then environment
// variables. Later sources win.
func LoadConfig(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:             v.GetString("server.host"),
			Port:             v.GetString("server.port"),
			ShutdownTimeout:  v.GetDuration("server.shutdown_timeout"),
			DurationMetricMs: v.GetBool("server.duration_metric_ms"),
		},
		OTLP: OTLPConfig{
			Enabled:     v.GetBool("otel.enabled"),
			Endpoint:    v.GetString("otel.endpoint"),
			ServiceName: v.GetString("otel.service_name"),
			Environment: v.GetString("otel.environment"),
		},
		Log: LogConfig{
			Level:      v.GetString("log.level"),
			File:       v.GetString("log.file"),
			MaxSizeMB:  v.GetInt("log.max_size_mb"),
			MaxBackups: v.GetInt("log.max_backups"),
			MaxAgeDays: v.GetInt("log.max_age_days"),
		},
		Catalog: CatalogConfig{
			Path: v.GetString("catalog.path"),
		},
		Favorites: FavoritesConfig{
			Persist:      v.GetBool("favorites.persist"),
			CookieMaxAge: v.GetDuration("favorites.cookie_max_age"),
			CookieSecure: v.GetBool("favorites.cookie_secure"),
		},
		Auth: AuthConfig{
			Secret:       v.GetString("auth.secret"),
			DemoEmail:    v.GetString("auth.demo_email"),
			DemoPassword: v.GetString("auth.demo_password"),
			DemoName:     v.GetString("auth.demo_name"),
			SessionTTL:   v.GetDuration("auth.session_ttl"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetStringSlice("cors.allowed_origins")),
		},
	}

	if cfg.Auth.Secret == "" {
		if cfg.OTLP.Environment != "development" {
			return nil, errMissingSecret
		}
		cfg.Auth.Secret = developmentSecret
	}

	if len(cfg.Auth.Secret) < 32 {
		return nil, fmt.Errorf("auth secret must be at least 32 characters")
	}

	return cfg, nil
}

// splitList accepts both list values and a single comma separated env value
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
