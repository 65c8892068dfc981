package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int    `env:"PORT" env-default:"8080" env-description:"HTTP listen port"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info" env-description:"debug, info, warn or error"`

	// CORSAllowedOrigins lists the frontends allowed to call the API.
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:5173" env-separator:"," env-description:"comma separated list of allowed origins"`

	// External services
	ContractsAPIURL  string `env:"CONTRACTS_API_URL" env-default:"http://localhost:8081" env-description:"Contracts API base URL"`
	AmendmentsAPIURL string `env:"AMENDMENTS_API_URL" env-default:"http://localhost:8082" env-description:"Amendments API base URL"`

	// HTTP client
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" env-default:"10s"`

	// Resilience
	MaxRetries     int           `env:"MAX_RETRIES" env-default:"3"`
	InitialBackoff time.Duration `env:"INITIAL_BACKOFF" env-default:"100ms"`
	MaxConcurrency int           `env:"MAX_CONCURRENCY" env-default:"50"`

	// Cache
	CacheTTL time.Duration `env:"CACHE_TTL" env-default:"5m" env-description:"contract context cache TTL"`
	DraftTTL time.Duration `env:"DRAFT_TTL" env-default:"30m" env-description:"idle lifetime of a draft session"`

	// Observability
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:"" env-description:"OTLP gRPC collector, tracing export is off when empty"`

	// JWT / Auth
	JWTSecret    string `env:"JWT_SECRET" env-default:"bfa-default-dev-secret-change-me"`
	AuthDisabled bool   `env:"AUTH_DISABLED" env-default:"false" env-description:"skip bearer token checks (local development only)"`
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Usage describes every supported variable, for --help style output.
func Usage() string {
	help, err := cleanenv.GetDescription(&Config{}, nil)
	if err != nil {
		return err.Error()
	}
	return help
}

func (c *Config) validate() error {
	switch {
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("invalid PORT %d", c.Port)
	case c.DraftTTL <= 0:
		return fmt.Errorf("DRAFT_TTL must be positive, got %s", c.DraftTTL)
	case c.CacheTTL <= 0:
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.CacheTTL)
	case !c.AuthDisabled && c.JWTSecret == "":
		return fmt.Errorf("JWT_SECRET is required unless AUTH_DISABLED=true")
	}
	return nil
}
