// Package config handles loading and validation of application configuration
// from environment variables and potentially configuration files.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
	"github.com/urbanflow/urbanflow-backend/logger"
	"github.com/urbanflow/urbanflow-backend/pkg/valueobjects"
	"go.uber.org/zap"
)

// Environment represents the application's running environment (development or production).
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Environment    Environment `mapstructure:"ENVIRONMENT" yaml:"environment"`
	Port           string      `mapstructure:"PORT" yaml:"port"`
	AllowedOrigins []string    `mapstructure:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	Version        string      `mapstructure:"VERSION" yaml:"version"`
}

// RedisConfig holds Redis connection details for the recent-trip cache.
type RedisConfig struct {
	Address      string `mapstructure:"ADDRESS" yaml:"address"`
	Password     string `mapstructure:"PASSWORD" yaml:"password"`
	DB           int    `mapstructure:"DB" yaml:"db"`
	UseTLS       bool   `mapstructure:"USE_TLS" yaml:"use_tls"`
	PoolSize     int    `mapstructure:"POOL_SIZE" yaml:"pool_size"`
	MinIdleConns int    `mapstructure:"MIN_IDLE_CONNS" yaml:"min_idle_conns"`
}

// RoutingConfig holds the itinerary-planning engine endpoints and limits.
type RoutingConfig struct {
	// PrimaryEndpoint is the OTP Transmodel GraphQL endpoint.
	PrimaryEndpoint string `mapstructure:"PRIMARY_ENDPOINT" yaml:"primary_endpoint"`
	// SecondaryEndpoint is the OTP classic REST plan endpoint.
	SecondaryEndpoint string `mapstructure:"SECONDARY_ENDPOINT" yaml:"secondary_endpoint"`
	// ClientName is sent as ET-Client-Name, required by many public OTP deployments.
	ClientName      string `mapstructure:"CLIENT_NAME" yaml:"client_name"`
	TimeoutSeconds  int    `mapstructure:"TIMEOUT_SECONDS" yaml:"timeout_seconds"`
	NumTripPatterns int    `mapstructure:"NUM_TRIP_PATTERNS" yaml:"num_trip_patterns"`
	// Default origin used when a query carries no origin coordinates.
	DefaultOriginLat float64 `mapstructure:"DEFAULT_ORIGIN_LAT" yaml:"default_origin_lat"`
	DefaultOriginLng float64 `mapstructure:"DEFAULT_ORIGIN_LNG" yaml:"default_origin_lng"`
}

// GeocodingConfig holds settings for the address resolution services.
type GeocodingConfig struct {
	TimeoutSeconds int `mapstructure:"TIMEOUT_SECONDS" yaml:"timeout_seconds"`
	// UserAgent is required by Nominatim's usage policy.
	UserAgent string `mapstructure:"USER_AGENT" yaml:"user_agent"`
}

// AIConfig holds configuration for the generative backend.
type AIConfig struct {
	Enabled        bool   `mapstructure:"ENABLED" yaml:"enabled"`
	GeminiAPIKey   string `mapstructure:"GEMINI_API_KEY" yaml:"gemini_api_key"`
	Model          string `mapstructure:"MODEL" yaml:"model"`
	TimeoutSeconds int    `mapstructure:"TIMEOUT_SECONDS" yaml:"timeout_seconds"`
}

// WeatherConfig holds settings for the weather context service.
type WeatherConfig struct {
	TimeoutSeconds int `mapstructure:"TIMEOUT_SECONDS" yaml:"timeout_seconds"`
}

// FareConfig holds the placeholder fare model settings.
type FareConfig struct {
	// PerLegSurcharge is applied once per non-walk leg. Real fare tables are
	// out of scope; this constant stays pluggable through the fare estimator.
	PerLegSurcharge float64 `mapstructure:"PER_LEG_SURCHARGE" yaml:"per_leg_surcharge"`
}

// CacheConfig holds settings for the best-effort recent-trip cache.
type CacheConfig struct {
	RecentTripsTTLMinutes int `mapstructure:"RECENT_TRIPS_TTL_MINUTES" yaml:"recent_trips_ttl_minutes"`
	MaxRecentTrips        int `mapstructure:"MAX_RECENT_TRIPS" yaml:"max_recent_trips"`
}

// Config aggregates all application configuration sections.
type Config struct {
	Server    ServerConfig    `mapstructure:"SERVER" yaml:"server"`
	Redis     RedisConfig     `mapstructure:"REDIS" yaml:"redis"`
	Routing   RoutingConfig   `mapstructure:"ROUTING" yaml:"routing"`
	Geocoding GeocodingConfig `mapstructure:"GEOCODING" yaml:"geocoding"`
	AI        AIConfig        `mapstructure:"AI" yaml:"ai"`
	Weather   WeatherConfig   `mapstructure:"WEATHER" yaml:"weather"`
	Fare      FareConfig      `mapstructure:"FARE" yaml:"fare"`
	Cache     CacheConfig     `mapstructure:"CACHE" yaml:"cache"`
}

// IsDevelopment returns true if the application is running in development environment.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == EnvDevelopment
}

// IsProduction returns true if the application is running in production environment.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}

// bindEnvVars binds multiple environment variables to config keys.
// Format: []{configKey, envVar}
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

// LoadConfig loads configuration from environment variables using Viper,
// sets default values, binds environment variables to config struct fields,
// unmarshals the configuration, and validates it.
func LoadConfig() (*Config, error) {
	v := viper.New()
	log := logger.GetLogger()

	v.SetDefault("SERVER.ENVIRONMENT", EnvDevelopment)
	v.SetDefault("SERVER.PORT", "8080")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.ADDRESS", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.USE_TLS", false)
	v.SetDefault("REDIS.POOL_SIZE", 3)
	v.SetDefault("REDIS.MIN_IDLE_CONNS", 1)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ROUTING.PRIMARY_ENDPOINT", "")
	v.SetDefault("ROUTING.SECONDARY_ENDPOINT", "")
	v.SetDefault("ROUTING.CLIENT_NAME", "urbanflow-backend")
	v.SetDefault("ROUTING.TIMEOUT_SECONDS", 10)
	v.SetDefault("ROUTING.NUM_TRIP_PATTERNS", 3)
	v.SetDefault("ROUTING.DEFAULT_ORIGIN_LAT", -23.5615)
	v.SetDefault("ROUTING.DEFAULT_ORIGIN_LNG", -46.6559)
	v.SetDefault("GEOCODING.TIMEOUT_SECONDS", 10)
	v.SetDefault("GEOCODING.USER_AGENT", "UrbanFlowGeocoder/1.0")
	v.SetDefault("AI.ENABLED", true)
	v.SetDefault("AI.MODEL", "gemini-2.0-flash")
	v.SetDefault("AI.TIMEOUT_SECONDS", 30)
	v.SetDefault("WEATHER.TIMEOUT_SECONDS", 10)
	v.SetDefault("FARE.PER_LEG_SURCHARGE", 1.50)
	v.SetDefault("CACHE.RECENT_TRIPS_TTL_MINUTES", 120)
	v.SetDefault("CACHE.MAX_RECENT_TRIPS", 10)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Bind environment variables
	envBindings := [][2]string{
		// Server config
		{"SERVER.ENVIRONMENT", "SERVER_ENVIRONMENT"},
		{"SERVER.PORT", "PORT"},
		{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
		// Redis config
		{"REDIS.ADDRESS", "REDIS_ADDRESS"},
		{"REDIS.PASSWORD", "REDIS_PASSWORD"},
		{"REDIS.DB", "REDIS_DB"},
		{"REDIS.USE_TLS", "REDIS_USE_TLS"},
		// Routing config
		{"ROUTING.PRIMARY_ENDPOINT", "OTP_PRIMARY_ENDPOINT"},
		{"ROUTING.SECONDARY_ENDPOINT", "OTP_SECONDARY_ENDPOINT"},
		{"ROUTING.CLIENT_NAME", "OTP_CLIENT_NAME"},
		{"ROUTING.TIMEOUT_SECONDS", "ROUTING_TIMEOUT_SECONDS"},
		{"ROUTING.NUM_TRIP_PATTERNS", "ROUTING_NUM_TRIP_PATTERNS"},
		{"ROUTING.DEFAULT_ORIGIN_LAT", "ROUTING_DEFAULT_ORIGIN_LAT"},
		{"ROUTING.DEFAULT_ORIGIN_LNG", "ROUTING_DEFAULT_ORIGIN_LNG"},
		// Geocoding config
		{"GEOCODING.TIMEOUT_SECONDS", "GEOCODING_TIMEOUT_SECONDS"},
		{"GEOCODING.USER_AGENT", "GEOCODING_USER_AGENT"},
		// AI config
		{"AI.ENABLED", "AI_ENABLED"},
		{"AI.GEMINI_API_KEY", "GEMINI_API_KEY"},
		{"AI.MODEL", "AI_MODEL"},
		{"AI.TIMEOUT_SECONDS", "AI_TIMEOUT_SECONDS"},
		// Weather config
		{"WEATHER.TIMEOUT_SECONDS", "WEATHER_TIMEOUT_SECONDS"},
		// Fare config
		{"FARE.PER_LEG_SURCHARGE", "FARE_PER_LEG_SURCHARGE"},
		// Cache config
		{"CACHE.RECENT_TRIPS_TTL_MINUTES", "CACHE_RECENT_TRIPS_TTL_MINUTES"},
		{"CACHE.MAX_RECENT_TRIPS", "CACHE_MAX_RECENT_TRIPS"},
	}

	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	env := v.GetString("SERVER.ENVIRONMENT")
	log.Infow("Configuration loaded",
		"environment", env,
		"server_port", v.GetString("SERVER.PORT"),
		"allowed_origins", v.GetString("SERVER.ALLOWED_ORIGINS"),
		"primary_endpoint", v.GetString("ROUTING.PRIMARY_ENDPOINT"),
		"secondary_endpoint", v.GetString("ROUTING.SECONDARY_ENDPOINT"),
		"ai_enabled", v.GetBool("AI.ENABLED"),
		"ai_model", v.GetString("AI.MODEL"),
		"gemini_key", logger.MaskSensitiveString(v.GetString("AI.GEMINI_API_KEY"), 4, 2),
	)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log.Info("Configuration validated successfully")
	return &cfg, nil
}

// validateConfig checks if the loaded configuration values are valid.
func validateConfig(cfg *Config) error {
	log := logger.GetLogger()

	// Validate Server Config
	if cfg.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	// Validate AllowedOrigins format if not wildcard
	if !containsWildcard(cfg.Server.AllowedOrigins) {
		for _, origin := range cfg.Server.AllowedOrigins {
			if _, err := url.ParseRequestURI(origin); err != nil {
				return fmt.Errorf("invalid allowed origin '%s': %w", origin, err)
			}
		}
	}

	// Validate Redis Config
	if cfg.Redis.Address == "" {
		return fmt.Errorf("redis address is required")
	}
	if cfg.Redis.Password == "" && cfg.Redis.UseTLS {
		log.Warn("Redis password is not set, but TLS is enabled. Ensure this is correct for your Redis provider.")
	}

	// Validate Routing Config
	if err := validateRoutingConfig(&cfg.Routing, log); err != nil {
		return err
	}

	// Validate Geocoding Config
	if cfg.Geocoding.TimeoutSeconds <= 0 {
		return fmt.Errorf("geocoding timeout must be positive")
	}
	if cfg.Geocoding.UserAgent == "" {
		return fmt.Errorf("geocoding user agent is required")
	}

	// Validate AI Config
	if err := validateAIConfig(&cfg.AI, log); err != nil {
		return err
	}

	// Validate Weather Config
	if cfg.Weather.TimeoutSeconds <= 0 {
		return fmt.Errorf("weather timeout must be positive")
	}

	// Validate Fare Config
	if cfg.Fare.PerLegSurcharge < 0 {
		return fmt.Errorf("fare per-leg surcharge cannot be negative")
	}

	// Validate Cache Config
	if cfg.Cache.RecentTripsTTLMinutes <= 0 {
		return fmt.Errorf("recent trips TTL must be positive")
	}
	if cfg.Cache.MaxRecentTrips <= 0 {
		return fmt.Errorf("max recent trips must be positive")
	}

	return nil
}

// validateRoutingConfig validates the routing engine endpoints. Endpoints are
// optional (a missing engine is simply skipped by the cascade), but when set
// they must be valid URLs.
func validateRoutingConfig(cfg *RoutingConfig, log *zap.SugaredLogger) error {
	if cfg.PrimaryEndpoint != "" {
		if _, err := url.ParseRequestURI(cfg.PrimaryEndpoint); err != nil {
			return fmt.Errorf("invalid primary routing endpoint: %w", err)
		}
	}
	if cfg.SecondaryEndpoint != "" {
		if _, err := url.ParseRequestURI(cfg.SecondaryEndpoint); err != nil {
			return fmt.Errorf("invalid secondary routing endpoint: %w", err)
		}
	}
	if cfg.PrimaryEndpoint == "" && cfg.SecondaryEndpoint == "" {
		log.Warn("No routing endpoints configured, all searches will use generative mode")
	}
	if cfg.TimeoutSeconds <= 0 {
		return fmt.Errorf("routing timeout must be positive")
	}
	if cfg.NumTripPatterns < 1 || cfg.NumTripPatterns > 10 {
		return fmt.Errorf("routing num trip patterns must be between 1 and 10")
	}
	if _, err := valueobjects.NewGeoPoint(cfg.DefaultOriginLat, cfg.DefaultOriginLng); err != nil {
		return fmt.Errorf("invalid default origin: %w", err)
	}
	return nil
}

// validateAIConfig validates the generative backend configuration.
// If enabled but missing an API key, it auto-disables with a warning.
func validateAIConfig(cfg *AIConfig, log *zap.SugaredLogger) error {
	if !cfg.Enabled {
		return nil
	}

	if cfg.GeminiAPIKey == "" {
		log.Warn("Gemini API key not set, auto-disabling AI enhancement")
		cfg.Enabled = false
		return nil
	}

	if cfg.Model == "" {
		return fmt.Errorf("AI model name is required")
	}
	if cfg.TimeoutSeconds <= 0 {
		return fmt.Errorf("AI timeout must be positive")
	}

	return nil
}

// containsWildcard checks if the list of allowed origins contains the wildcard "*".
func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
