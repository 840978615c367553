package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

const defaultJWTSecret = "change-me-salons-dev-secret"

// Config holds the application configuration.
type Config struct {
	Env         string `mapstructure:"APP_ENV"`
	Port        string `mapstructure:"PORT"`
	DBDriver    string `mapstructure:"DB_DRIVER"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`

	SessionCookie string        `mapstructure:"SESSION_COOKIE"`
	SessionTTL    time.Duration `mapstructure:"SESSION_TTL"`

	MediaRoot   string `mapstructure:"MEDIA_ROOT"`
	MediaURL    string `mapstructure:"MEDIA_URL"`
	MaxUploadMB int64  `mapstructure:"MAX_UPLOAD_MB"`

	RedisURL       string        `mapstructure:"REDIS_URL"`
	SendRateLimit  int           `mapstructure:"SEND_RATE_LIMIT"`
	SendRateWindow time.Duration `mapstructure:"SEND_RATE_WINDOW"`
}

var AppConfig *Config

// LoadConfig loads the configuration from a .env file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("SESSION_COOKIE", "sessionid")
	viper.SetDefault("SESSION_TTL", "168h")
	viper.SetDefault("MEDIA_ROOT", "media")
	viper.SetDefault("MEDIA_URL", "/media/")
	viper.SetDefault("MAX_UPLOAD_MB", 10)
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("SEND_RATE_LIMIT", 30)
	viper.SetDefault("SEND_RATE_WINDOW", "1m")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("Warning: .env file not found, loading from environment variables")
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	AppConfig = &cfg
	return &cfg, nil
}

// Validate checks required values. Production refuses the development secret.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be changed from the default value in production")
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.MaxUploadMB <= 0 {
		return errors.New("MAX_UPLOAD_MB must be positive")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// MaxUploadBytes is the attachment size cap in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}
