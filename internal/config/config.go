package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port       string `mapstructure:"PORT"`
	Env        string `mapstructure:"ENV"`
	DBDSN      string `mapstructure:"DB_DSN"`
	DBMaxConns int    `mapstructure:"DB_MAX_CONNS"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
	AppName   string `mapstructure:"APP_NAME"`

	// Zona usada para tomar la fecha calendario de taken_at.
	TimeZone string `mapstructure:"TIME_ZONE"`

	OpenFDABaseURL        string        `mapstructure:"OPENFDA_BASE_URL"`
	OpenFDATimeout        time.Duration `mapstructure:"OPENFDA_TIMEOUT"`
	OpenFDABreakerEnabled bool          `mapstructure:"OPENFDA_BREAKER_ENABLED"`

	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	HTTPReadTimeout  time.Duration `mapstructure:"HTTP_READ_TIMEOUT"`
	HTTPWriteTimeout time.Duration `mapstructure:"HTTP_WRITE_TIMEOUT"`
}

var keys = []string{
	"PORT", "ENV", "DB_DSN", "DB_MAX_CONNS",
	"LOG_LEVEL", "LOG_FORMAT", "APP_NAME",
	"TIME_ZONE",
	"OPENFDA_BASE_URL", "OPENFDA_TIMEOUT", "OPENFDA_BREAKER_ENABLED",
	"OTEL_EXPORTER_OTLP_ENDPOINT",
	"HTTP_READ_TIMEOUT", "HTTP_WRITE_TIMEOUT",
}

// Load lee env vars (y .env si existe). DB_DSN vacío => store in-memory.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("APP_NAME", "medtracker")
	v.SetDefault("TIME_ZONE", "UTC")
	v.SetDefault("OPENFDA_BASE_URL", "https://api.fda.gov")
	v.SetDefault("OPENFDA_TIMEOUT", "10s")
	v.SetDefault("OPENFDA_BREAKER_ENABLED", false)
	v.SetDefault("HTTP_READ_TIMEOUT", "5s")
	v.SetDefault("HTTP_WRITE_TIMEOUT", "15s")

	// BindEnv explícito para que Unmarshal vea las vars sin default
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// .env es opcional
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// UsesPostgres indica si hay DSN; si no, se usa el store in-memory.
func (c *Config) UsesPostgres() bool {
	return strings.TrimSpace(c.DBDSN) != ""
}

// Location resuelve TIME_ZONE; Validate garantiza que carga.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("PORT is required")
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("TIME_ZONE %q is not a valid location: %w", c.TimeZone, err)
	}
	if c.OpenFDATimeout <= 0 {
		return fmt.Errorf("OPENFDA_TIMEOUT must be positive, got %s", c.OpenFDATimeout)
	}
	if c.HTTPReadTimeout <= 0 || c.HTTPWriteTimeout <= 0 {
		return fmt.Errorf("HTTP_READ_TIMEOUT and HTTP_WRITE_TIMEOUT must be positive")
	}
	if c.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive, got %d", c.DBMaxConns)
	}
	return nil
}
