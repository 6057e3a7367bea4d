package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Auth      AuthConfig      `mapstructure:"auth"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	Speech    SpeechConfig    `mapstructure:"speech"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Outbox    OutboxConfig    `mapstructure:"outbox"`
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Locations LocationsConfig `mapstructure:"locations"`
	Medical   MedicalConfig   `mapstructure:"medical"`
}

type ServerConfig struct {
	Port        int           `mapstructure:"port"`
	Timeout     time.Duration `mapstructure:"timeout"`
	// MaxBodySize caps request bodies in bytes.
	MaxBodySize int64         `mapstructure:"max_body_size"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN renders the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type JWTConfig struct {
	Secret             string `mapstructure:"secret"`
	ExpiryHours        int    `mapstructure:"expiry_hours"`
	ConfirmExpiryHours int    `mapstructure:"confirm_expiry_hours"`
}

type AuthConfig struct {
	RequireEmailConfirmation bool   `mapstructure:"require_email_confirmation"`
	BcryptCost               int    `mapstructure:"bcrypt_cost"`
	ConfirmURL               string `mapstructure:"confirm_url"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type SpeechConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type DashboardConfig struct {
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
	LoaderTimeout time.Duration `mapstructure:"loader_timeout"`
	// Timezone is an IANA name; appointment dates are calendar days in it.
	Timezone string `mapstructure:"timezone"`
}

type OutboxConfig struct {
	BatchSize       int           `mapstructure:"batch_size"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	RetryAttempts   int           `mapstructure:"retry_attempts"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"`
	Retention       time.Duration `mapstructure:"retention"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	HealthPort      int           `mapstructure:"health_port"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LocationsConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// MedicalConfig.EncryptionKey is a hex AES key; empty stores free text in the clear.
type MedicalConfig struct {
	EncryptionKey string `mapstructure:"encryption_key"`
}

// secrets are overlaid from RHN_* environment variables after the file is read.
type secrets struct {
	JWTSecret    string `envconfig:"JWT_SECRET"`
	DBPassword   string `envconfig:"DB_PASSWORD"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	MedicalKey   string `envconfig:"MEDICAL_ENCRYPTION_KEY"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeout", 30*time.Second)
	v.SetDefault("server.max_body_size", 1<<20)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "health_navigator")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", 100*time.Millisecond)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry_hours", 24)
	v.SetDefault("jwt.confirm_expiry_hours", 48)

	v.SetDefault("auth.require_email_confirmation", false)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.confirm_url", "http://localhost:8080/api/v1/auth/confirm")

	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "no-reply@health-navigator.local")

	v.SetDefault("speech.enabled", false)
	v.SetDefault("speech.url", "")
	v.SetDefault("speech.timeout", 5*time.Second)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 20.0)
	v.SetDefault("rate_limit.burst", 40)

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"})

	v.SetDefault("dashboard.retry_attempts", 2)
	v.SetDefault("dashboard.retry_delay", 200*time.Millisecond)
	v.SetDefault("dashboard.loader_timeout", 5*time.Second)
	v.SetDefault("dashboard.timezone", "Asia/Kolkata")

	v.SetDefault("outbox.batch_size", 50)
	v.SetDefault("outbox.poll_interval", 2*time.Second)
	v.SetDefault("outbox.retry_attempts", 3)
	v.SetDefault("outbox.retry_delay", time.Second)
	v.SetDefault("outbox.retention", 7*24*time.Hour)
	v.SetDefault("outbox.cleanup_interval", time.Hour)
	v.SetDefault("outbox.health_port", 8081)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("locations.cache_ttl", 10*time.Minute)

	v.SetDefault("medical.encryption_key", "")
}

// LoadConfig reads config.yaml from the given paths (or the default search
// paths), applies environment overrides and validates the result. A missing
// file is not an error; defaults and environment still apply.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config", "/app/config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var s secrets
	if err := envconfig.Process("RHN", &s); err != nil {
		return nil, fmt.Errorf("failed to read secrets from environment: %w", err)
	}
	if s.JWTSecret != "" {
		cfg.JWT.Secret = s.JWTSecret
	}
	if s.DBPassword != "" {
		cfg.Database.Password = s.DBPassword
	}
	if s.SMTPPassword != "" {
		cfg.SMTP.Password = s.SMTPPassword
	}
	if s.MedicalKey != "" {
		cfg.Medical.EncryptionKey = s.MedicalKey
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt secret is required (set jwt.secret or RHN_JWT_SECRET)")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Dashboard.RetryAttempts < 1 {
		c.Dashboard.RetryAttempts = 1
	}
	if _, err := time.LoadLocation(c.Dashboard.Timezone); err != nil {
		return fmt.Errorf("invalid dashboard timezone %q: %w", c.Dashboard.Timezone, err)
	}
	if c.Outbox.BatchSize <= 0 || c.Outbox.PollInterval <= 0 {
		return errors.New("outbox batch_size and poll_interval must be positive")
	}
	return nil
}
