package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"

	"github.com/sbilibin2017/gw-auth-manager/internal/models"
)

// Config holds the service configuration.
type Config struct {
	AppHost     string `env:"APP_HOST" envDefault:"localhost"`
	AppPort     string `env:"APP_PORT" envDefault:"8080"`
	LogLevel    string `env:"APP_LOG_LEVEL" envDefault:"info"`
	LogEncoding string `env:"APP_LOG_ENCODING" envDefault:"json"`

	PostgresHost         string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort         int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser         string `env:"POSTGRES_USER" envDefault:"user"`
	PostgresPassword     string `env:"POSTGRES_PASSWORD" envDefault:"password"`
	PostgresDB           string `env:"POSTGRES_DB" envDefault:"database"`
	PostgresSSLMode      string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	PostgresMaxOpenConns int    `env:"POSTGRES_MAX_OPEN_CONNS" envDefault:"16"`
	PostgresMaxIdleConns int    `env:"POSTGRES_MAX_IDLE_CONNS" envDefault:"8"`

	RedisHost         string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort         int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisDB           int    `env:"REDIS_DB" envDefault:"0"`
	RedisPassword     string `env:"REDIS_PASSWORD"`
	RedisPoolSize     int    `env:"REDIS_POOL_SIZE" envDefault:"10"`
	RedisMinIdleConns int    `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`

	KafkaBrokers           []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic             string   `env:"KAFKA_TOPIC" envDefault:"auth-token-events"`
	KafkaBreakerTimeoutSec int      `env:"KAFKA_BREAKER_TIMEOUT" envDefault:"30"`

	JWTSecretKey        string `env:"JWT_SECRET_KEY"`
	JWTIssuer           string `env:"JWT_ISSUER"`
	JWTAudience         string `env:"JWT_AUDIENCE"`
	JWTExpirationSec    int    `env:"JWT_EXPIRATION_TIME" envDefault:"86400"`
	JWTCLIExpirationSec int    `env:"JWT_CLI_EXPIRATION_TIME" envDefault:"3600"`
	JWTLeewaySec        int    `env:"JWT_LEEWAY" envDefault:"0"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"10"`

	Users         string `env:"SIMPLE_AUTH_MANAGER_USERS" envDefault:"admin:admin"`
	PasswordsFile string `env:"SIMPLE_AUTH_MANAGER_PASSWORDS_FILE" envDefault:"simple_auth_manager_passwords.json"`
}

var (
	ErrInvalidTTL  = errors.New("token expiration must be positive")
	ErrInvalidPort = errors.New("port out of range")
)

// Load reads the optional env file at path and parses the environment.
// Variables already present in the environment take precedence over the file.
func Load(path string) (*Config, error) {
	if path != "" {
		_ = godotenv.Load(path)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTExpirationSec <= 0 || c.JWTCLIExpirationSec <= 0 {
		return ErrInvalidTTL
	}
	for _, p := range []int{c.PostgresPort, c.RedisPort} {
		if p <= 0 || p > 65535 {
			return fmt.Errorf("%w: %d", ErrInvalidPort, p)
		}
	}
	if _, err := models.ParseUserSpecs(c.Users); err != nil {
		return fmt.Errorf("SIMPLE_AUTH_MANAGER_USERS: %w", err)
	}
	return nil
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.AppHost, c.AppPort)
}

// PostgresDSN builds the connection string for the pgx driver.
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:     net.JoinHostPort(c.PostgresHost, strconv.Itoa(c.PostgresPort)),
		Path:     "/" + c.PostgresDB,
		RawQuery: url.Values{"sslmode": {c.PostgresSSLMode}}.Encode(),
	}
	return u.String()
}

// RedisAddr is the host:port of the Redis server.
func (c *Config) RedisAddr() string {
	return net.JoinHostPort(c.RedisHost, strconv.Itoa(c.RedisPort))
}

// UserSpecs returns the configured users.
func (c *Config) UserSpecs() []models.UserSpec {
	specs, _ := models.ParseUserSpecs(c.Users)
	return specs
}

// TokenTTL is the lifetime of tokens from /auth/token.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpirationSec) * time.Second
}

// CLITokenTTL is the lifetime of tokens from /auth/token/cli.
func (c *Config) CLITokenTTL() time.Duration {
	return time.Duration(c.JWTCLIExpirationSec) * time.Second
}

// JWTLeeway is the clock skew tolerated when validating tokens.
func (c *Config) JWTLeeway() time.Duration {
	return time.Duration(c.JWTLeewaySec) * time.Second
}

// KafkaBreakerTimeout is how long the publisher circuit stays open.
func (c *Config) KafkaBreakerTimeout() time.Duration {
	return time.Duration(c.KafkaBreakerTimeoutSec) * time.Second
}
