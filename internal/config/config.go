package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	EmailConsole = "console"
	EmailSMTP    = "smtp"

	defaultJWTSecret = "dev-insecure-secret-change-me"
)

type Config struct {
	Env  string `env:"APP_ENV" envDefault:"dev"`
	Port int    `env:"PORT" envDefault:"8080"`

	DB     DBConfig
	JWT    JWTConfig
	Redis  RedisConfig
	Otel   OtelConfig
	Email  EmailConfig
	Notify NotifierConfig
	HTTP   HTTPConfig
}

type DBConfig struct {
	Driver     string `env:"DB_DRIVER" envDefault:"postgres"`
	URL        string `env:"DATABASE_URL"`
	Host       string `env:"DB_HOST" envDefault:"127.0.0.1"`
	Port       string `env:"DB_PORT" envDefault:"5432"`
	User       string `env:"DB_USER" envDefault:"eventmanager"`
	Password   string `env:"DB_PASSWORD" envDefault:"eventmanager"`
	Name       string `env:"DB_NAME" envDefault:"eventmanager"`
	SSLMode    string `env:"DB_SSLMODE" envDefault:"disable"`
	MaxConns   int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"eventmanager.db"`
}

type JWTConfig struct {
	Secret     string        `env:"JWT_SECRET" envDefault:"dev-insecure-secret-change-me"`
	AccessTTL  time.Duration `env:"JWT_ACCESS_TTL" envDefault:"5m"`
	RefreshTTL time.Duration `env:"JWT_REFRESH_TTL" envDefault:"24h"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type OtelConfig struct {
	Endpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName string  `env:"OTEL_SERVICE_NAME" envDefault:"eventmanager-api"`
	SampleRatio float64 `env:"OTEL_TRACES_SAMPLER_RATIO" envDefault:"1"`
}

type EmailConfig struct {
	Backend  string `env:"EMAIL_BACKEND" envDefault:"console"`
	Host     string `env:"EMAIL_HOST" envDefault:"smtp.gmail.com"`
	Port     int    `env:"EMAIL_PORT" envDefault:"587"`
	User     string `env:"EMAIL_HOST_USER"`
	Password string `env:"EMAIL_HOST_PASSWORD"`
	UseTLS   bool   `env:"EMAIL_USE_TLS" envDefault:"true"`
	From     string `env:"DEFAULT_FROM_EMAIL" envDefault:"noreply@eventmanager.local"`
}

type NotifierConfig struct {
	Timeout          time.Duration `env:"NOTIFIER_TIMEOUT" envDefault:"3s"`
	FailureThreshold int           `env:"NOTIFIER_FAILURE_THRESHOLD" envDefault:"3"`
	Cooldown         time.Duration `env:"NOTIFIER_COOLDOWN" envDefault:"15s"`
}

type HTTPConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	RateLimitRPS   float64  `env:"RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst int      `env:"RATE_LIMIT_BURST" envDefault:"20"`
	MaxBodyBytes   int64    `env:"MAX_BODY_BYTES" envDefault:"1048576"`
}

// Load reads an optional .env file, then the process environment.
// Variables already set in the environment win over the file.
func Load() (Config, error) {
	_ = godotenv.Load()

	return Parse()
}

// Parse reads the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	switch c.DB.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER: unknown driver %q", c.DB.Driver))
	}

	switch c.Email.Backend {
	case EmailConsole, EmailSMTP:
	default:
		errs = append(errs, fmt.Errorf("EMAIL_BACKEND: unknown backend %q", c.Email.Backend))
	}

	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET: must not be empty"))
	} else if c.JWT.Secret == defaultJWTSecret && !c.IsDev() {
		errs = append(errs, errors.New("JWT_SECRET: default secret is only allowed in dev and test"))
	}

	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		errs = append(errs, errors.New("JWT_ACCESS_TTL and JWT_REFRESH_TTL must be positive"))
	}

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT: out of range %d", c.Port))
	}

	return errors.Join(errs...)
}

// IsDev reports whether insecure development defaults are acceptable.
func (c Config) IsDev() bool {
	return c.Env == "dev" || c.Env == "test"
}

// DSN returns the connection string for the configured driver.
func (c DBConfig) DSN() string {
	if c.Driver == DriverSQLite {
		return SQLiteDSN(c.SQLitePath)
	}
	if c.URL != "" {
		return c.URL
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

// SQLiteDSN builds a modernc DSN with foreign keys on, WAL and a busy timeout.
func SQLiteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}
