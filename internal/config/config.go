// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// JWTSecret verifies the HS256 bearer tokens issued by the identity provider. Required.
	JWTSecret string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64

	// MigrateOnStart applies pending goose migrations before serving.
	MigrateOnStart bool

	// HTTPClientTimeout bounds every outbound call. Defaults to 10s.
	HTTPClientTimeout time.Duration

	Places   PlacesConfig
	Google   GoogleConfig
	Calendar CalendarConfig
	Weather  WeatherConfig
}

// PlacesConfig configures the places lookup client.
type PlacesConfig struct {
	APIKey  string
	BaseURL string

	// QueryDelay spaces the canned text queries of a category search. Defaults to 500ms.
	QueryDelay time.Duration
}

// GoogleConfig holds the OAuth client used for calendar access.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Enabled reports whether calendar OAuth is configured.
func (g GoogleConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

// CalendarConfig configures event export.
type CalendarConfig struct {
	// TimeZone is the IANA zone activity times are interpreted in.
	// Defaults to "Europe/Bucharest".
	TimeZone string
}

// WeatherConfig configures the forecast client.
type WeatherConfig struct {
	APIKey string
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("MAX_BODY_BYTES", int64(1<<20))
	v.SetDefault("MIGRATE_ON_START", false)
	v.SetDefault("HTTP_CLIENT_TIMEOUT", 10*time.Second)
	v.SetDefault("PLACES_QUERY_DELAY", 500*time.Millisecond)
	v.SetDefault("CALENDAR_TIMEZONE", "Europe/Bucharest")

	cfg := Config{
		Port:              v.GetString("PORT"),
		DatabaseURL:       v.GetString("DATABASE_URL"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		CORSOrigins:       splitCSV(v.GetString("CORS_ORIGINS")),
		MaxBodyBytes:      v.GetInt64("MAX_BODY_BYTES"),
		MigrateOnStart:    v.GetBool("MIGRATE_ON_START"),
		HTTPClientTimeout: v.GetDuration("HTTP_CLIENT_TIMEOUT"),
		Places: PlacesConfig{
			APIKey:     v.GetString("PLACES_API_KEY"),
			BaseURL:    v.GetString("PLACES_BASE_URL"),
			QueryDelay: v.GetDuration("PLACES_QUERY_DELAY"),
		},
		Google: GoogleConfig{
			ClientID:     v.GetString("GOOGLE_CLIENT_ID"),
			ClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
			RedirectURL:  v.GetString("GOOGLE_REDIRECT_URL"),
		},
		Calendar: CalendarConfig{TimeZone: v.GetString("CALENDAR_TIMEZONE")},
		Weather:  WeatherConfig{APIKey: v.GetString("WEATHER_API_KEY")},
	}

	var missing []string
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	if cfg.MaxBodyBytes <= 0 {
		return Config{}, fmt.Errorf("MAX_BODY_BYTES must be positive, got %d", cfg.MaxBodyBytes)
	}
	if cfg.HTTPClientTimeout <= 0 {
		return Config{}, fmt.Errorf("HTTP_CLIENT_TIMEOUT must be a positive duration")
	}
	if cfg.Places.QueryDelay < 0 {
		return Config{}, fmt.Errorf("PLACES_QUERY_DELAY must not be negative")
	}

	return cfg, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
