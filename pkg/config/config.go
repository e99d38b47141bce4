package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "DIBBA"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	// DefaultJWTSecret is only suitable for local development.
	DefaultJWTSecret = "dibba-dev-secret-change-me"
)

const (
	EnvPort                 = "PORT"
	EnvAppEnv               = "DIBBA_APP_ENV"
	EnvAppPort              = "DIBBA_APP_PORT"
	EnvLogLevel             = "DIBBA_LOG_LEVEL"
	EnvStorePath            = "DIBBA_STORE_PATH"
	EnvJWTSecret            = "DIBBA_JWT_SECRET"
	EnvJWTIssuer            = "DIBBA_JWT_ISSUER"
	EnvJWTExpMins           = "DIBBA_JWT_EXPIRATION_MINUTES"
	EnvRedisURL             = "DIBBA_REDIS_URL"
	EnvCORSDefaultOrigin    = "DIBBA_CORS_DEFAULT_ORIGIN"
	EnvRateLimitRPS         = "DIBBA_RATE_LIMIT_RPS"
	EnvRateLimitBurst       = "DIBBA_RATE_LIMIT_BURST"
	EnvMetricsEnabled       = "DIBBA_METRICS_ENABLED"
	EnvLoginEmailLimit      = "DIBBA_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT"
	EnvRegisterEmailLimit   = "DIBBA_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT"
	EnvArgonMemoryKB        = "DIBBA_ARGON_MEMORY_KB"
	EnvShutdownGracePeriod  = "DIBBA_SHUTDOWN_GRACE_PERIOD"
	EnvMaxRequestBodyBytes  = "DIBBA_MAX_REQUEST_BODY_BYTES"
	EnvReadHeaderTimeoutSec = "DIBBA_READ_HEADER_TIMEOUT"
)

type Config struct {
	App           AppConfig
	Store         StoreConfig
	JWT           JWTConfig
	Password      PasswordConfig
	CORS          CORSConfig
	Redis         RedisConfig
	AuthRateLimit AuthRateLimitConfig
	RateLimit     RateLimitConfig
	Metrics       MetricsConfig
}

// Load reads the configuration from the environment. Every field has a default.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env                 string        `envconfig:"DIBBA_APP_ENV" default:"dev"`
	Port                string        `envconfig:"DIBBA_APP_PORT" default:"3001"`
	LogLevel            string        `envconfig:"DIBBA_LOG_LEVEL" default:"info"`
	LogFormat           string        `envconfig:"DIBBA_LOG_FORMAT" default:"json"`
	LogWarnStack        bool          `envconfig:"DIBBA_LOG_WARN_STACK" default:"false"`
	MaxRequestBodyBytes int64         `envconfig:"DIBBA_MAX_REQUEST_BODY_BYTES" default:"1048576"`
	ReadHeaderTimeout   time.Duration `envconfig:"DIBBA_READ_HEADER_TIMEOUT" default:"10s"`
	ShutdownGracePeriod time.Duration `envconfig:"DIBBA_SHUTDOWN_GRACE_PERIOD" default:"10s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type StoreConfig struct {
	Path string `envconfig:"DIBBA_STORE_PATH" default:"data/db.json"`
}

type JWTConfig struct {
	Secret            string `envconfig:"DIBBA_JWT_SECRET" default:"dibba-dev-secret-change-me"`
	Issuer            string `envconfig:"DIBBA_JWT_ISSUER" default:"dibba"`
	ExpirationMinutes int    `envconfig:"DIBBA_JWT_EXPIRATION_MINUTES" default:"10080"`
}

// TTL returns the configured access token lifetime.
func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"DIBBA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"DIBBA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"DIBBA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"DIBBA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"DIBBA_ARGON_KEY_LEN" default:"32"`
}

type CORSConfig struct {
	DefaultOrigin string `envconfig:"DIBBA_CORS_DEFAULT_ORIGIN" default:"http://localhost:3000"`
}

// RedisConfig is optional; an empty URL and address disables redis-backed middleware.
type RedisConfig struct {
	URL          string        `envconfig:"DIBBA_REDIS_URL"`
	Address      string        `envconfig:"DIBBA_REDIS_ADDR"`
	Password     string        `envconfig:"DIBBA_REDIS_PASSWORD"`
	DB           int           `envconfig:"DIBBA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DIBBA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DIBBA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DIBBA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DIBBA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DIBBA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"DIBBA_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"DIBBA_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"DIBBA_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"DIBBA_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"DIBBA_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"DIBBA_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// RateLimitConfig drives the in-process per-caller token bucket. RPS 0 disables it.
type RateLimitConfig struct {
	RPS   float64 `envconfig:"DIBBA_RATE_LIMIT_RPS" default:"50"`
	Burst int     `envconfig:"DIBBA_RATE_LIMIT_BURST" default:"100"`
}

type MetricsConfig struct {
	Enabled bool `envconfig:"DIBBA_METRICS_ENABLED" default:"true"`
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("%s must not be empty", EnvStorePath)
	}
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return fmt.Errorf("%s must not be empty", EnvJWTSecret)
	}
	if c.JWT.ExpirationMinutes <= 0 {
		return fmt.Errorf("%s must be positive", EnvJWTExpMins)
	}
	if c.App.IsProd() && c.JWT.Secret == DefaultJWTSecret {
		return fmt.Errorf("%s must be set in %s", EnvJWTSecret, AppEnvProd)
	}
	if c.RateLimit.RPS < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("%s and %s must be non-negative", EnvRateLimitRPS, EnvRateLimitBurst)
	}
	return nil
}
