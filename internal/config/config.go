package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port              string   `mapstructure:"PORT"`
	Env               string   `mapstructure:"ENV"`
	DatabaseURL       string   `mapstructure:"DATABASE_URL"`
	DBMaxConns        int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns        int32    `mapstructure:"DB_MIN_CONNS"`
	JWTSecret         string   `mapstructure:"JWT_SECRET"`
	AdminUsername     string   `mapstructure:"ADMIN_USERNAME"`
	AdminPasswordHash string   `mapstructure:"ADMIN_PASSWORD_HASH"`
	AnthropicAPIKey   string   `mapstructure:"ANTHROPIC_API_KEY"`
	AugmentModel      string   `mapstructure:"AUGMENT_MODEL"`
	AugmentMaxRetries int      `mapstructure:"AUGMENT_MAX_RETRIES"`
	AugmentEnabled    bool     `mapstructure:"AUGMENT_ENABLED"`
	CORSOrigins       []string `mapstructure:"CORS_ORIGINS"`
	BatchSize         int      `mapstructure:"BATCH_SIZE"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("AUGMENT_MAX_RETRIES", 2)
	v.SetDefault("AUGMENT_ENABLED", true)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("BATCH_SIZE", 10)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("ADMIN_USERNAME")
	v.BindEnv("ADMIN_PASSWORD_HASH")
	v.BindEnv("ANTHROPIC_API_KEY")
	v.BindEnv("AUGMENT_MODEL")
	v.BindEnv("AUGMENT_MAX_RETRIES")
	v.BindEnv("AUGMENT_ENABLED")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("BATCH_SIZE")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. Production requires
// real credentials; development falls back to a static signing secret so the
// server can start with nothing but DATABASE_URL set.
func (c *Config) Validate() error {
	if c.IsProduction() {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.AdminPasswordHash == "" {
			return fmt.Errorf("ADMIN_PASSWORD_HASH is required in production")
		}
	}
	if c.AugmentEnabled && c.IsProduction() && c.AnthropicAPIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required when AUGMENT_ENABLED is true in production")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("BATCH_SIZE must be positive, got %d", c.BatchSize)
	}
	return nil
}
