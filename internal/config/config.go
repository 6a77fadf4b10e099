package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	ServerPort     string `mapstructure:"port"`
	Environment    string `mapstructure:"app_env"`
	DatabaseType   string `mapstructure:"database_type"`
	DatabasePath   string `mapstructure:"database_path"`
	DatabaseURL    string `mapstructure:"database_url"`
	MigrationsPath string `mapstructure:"migrations_path"`

	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`

	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`

	SESFromEmail string `mapstructure:"ses_from_email"`
	SESFromName  string `mapstructure:"ses_from_name"`
	AWSRegion    string `mapstructure:"aws_region"`
	AppURL       string `mapstructure:"app_url"`

	GoogleClientID     string `mapstructure:"google_client_id"`
	GoogleClientSecret string `mapstructure:"google_client_secret"`

	AudioDir     string `mapstructure:"audio_dir"`
	TTSLanguage  string `mapstructure:"tts_language"`
	TTSOnStartup bool   `mapstructure:"tts_on_startup"`

	SessionIdleTimeout time.Duration `mapstructure:"session_idle_timeout"`
	DemoEnabled        bool          `mapstructure:"demo_enabled"`
	RateLimitPerMinute int           `mapstructure:"rate_limit_per_minute"`
	UploadMaxSize      int64         `mapstructure:"upload_max_size"`
}

// Load reads configuration from an optional .env file and environment
// variables with sensible defaults
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("app_env", "development")
	v.SetDefault("database_type", "sqlite")
	v.SetDefault("database_path", "./edufunkids.db")
	v.SetDefault("database_url", "")
	v.SetDefault("migrations_path", "")

	v.SetDefault("jwt_secret", "dev-secret-change-me")
	v.SetDefault("token_ttl", 72*time.Hour)

	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("cache_ttl", 10*time.Minute)

	v.SetDefault("ses_from_email", "")
	v.SetDefault("ses_from_name", "EduFunKids")
	v.SetDefault("aws_region", "us-east-1")
	v.SetDefault("app_url", "http://localhost:8080")

	v.SetDefault("google_client_id", "")
	v.SetDefault("google_client_secret", "")

	v.SetDefault("audio_dir", "./static/audio")
	v.SetDefault("tts_language", "id")
	v.SetDefault("tts_on_startup", false)

	v.SetDefault("session_idle_timeout", 30*time.Minute)
	v.SetDefault("demo_enabled", true)
	v.SetDefault("rate_limit_per_minute", 10)
	v.SetDefault("upload_max_size", 5*1024*1024) // 5MB
}

// Validate checks the combination of settings that cannot work together
func (c *Config) Validate() error {
	switch strings.ToLower(c.DatabaseType) {
	case "sqlite", "sqlite3", "":
	case "postgres", "postgresql", "mysql":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for database type %q", c.DatabaseType)
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}

	if c.IsProduction() && (c.JWTSecret == "" || c.JWTSecret == "dev-secret-change-me") {
		return errors.New("JWT_SECRET must be set in production")
	}
	return nil
}

// IsProduction reports whether the server runs with production settings
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Environment)
	return env == "prod" || env == "production"
}

// CacheEnabled reports whether a Redis address was configured
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

// EmailEnabled reports whether outgoing email is configured
func (c *Config) EmailEnabled() bool {
	return c.SESFromEmail != ""
}

// GoogleSignInEnabled reports whether Google OAuth credentials are present
func (c *Config) GoogleSignInEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}
