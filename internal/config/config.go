package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

var ErrConfigurationMissing = errors.New("configuration missing")

type Config struct {
	Env   string `env:"APP_ENV, default=dev"`
	Port  int    `env:"PORT, default=8080"`
	DBURL string `env:"DATABASE_URL"`

	DBMaxConns  int32  `env:"DB_MAX_CONNS, default=5"`
	StoreDriver string `env:"STORE_DRIVER, default=postgres"`

	SecretKey             string `env:"SECRET_KEY"`
	Algorithm             string `env:"ALGORITHM"`
	AccessTokenTTLMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES, default=30"`
	BcryptCost            int    `env:"BCRYPT_COST, default=10"`

	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS"`

	CacheTTLSeconds int `env:"CACHE_TTL_SECONDS, default=30"`

	Redis RedisConfig
	Otel  OtelConfig
	Admin AdminConfig
	DB    DBConfig
}

type DBConfig struct {
	Host     string `env:"DB_HOST, default=127.0.0.1"`
	Port     string `env:"DB_PORT, default=5432"`
	User     string `env:"DB_USER, default=schoolhub"`
	Password string `env:"DB_PASSWORD, default=schoolhub"`
	Name     string `env:"DB_NAME, default=schoolhub"`
	SSLMode  string `env:"DB_SSLMODE, default=disable"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

type OtelConfig struct {
	Enabled  bool   `env:"OTEL_ENABLED, default=false"`
	Endpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT, default=localhost:4317"`
}

// AdminConfig seeds a bootstrap admin when every field is set.
type AdminConfig struct {
	Username string `env:"ADMIN_USERNAME"`
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
}

var defaultCORSOrigins = []string{
	"http://localhost",
	"http://localhost:8080",
	"http://localhost:3000",
	"http://localhost:8000",
}

// Load reads a .env file when one is present and then the process environment.
func Load(ctx context.Context) (Config, error) {
	// a missing .env is fine, the environment may already be populated
	_ = godotenv.Load()

	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (Config, error) {
	var cfg Config

	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	})
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	if cfg.DBURL == "" {
		cfg.DBURL = cfg.DB.dsn()
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate reports settings the service cannot start without.
func (c Config) Validate() error {
	var missing []string

	if strings.TrimSpace(c.SecretKey) == "" {
		missing = append(missing, "SECRET_KEY")
	}
	if strings.TrimSpace(c.Algorithm) == "" {
		missing = append(missing, "ALGORITHM")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrConfigurationMissing, strings.Join(missing, ", "))
	}

	if c.AccessTokenTTLMinutes <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive, got %d", c.AccessTokenTTLMinutes)
	}

	switch c.StoreDriver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	return nil
}

func (c Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenTTLMinutes) * time.Minute
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func (c Config) AllowedOrigins() []string {
	if strings.TrimSpace(c.CORSAllowedOrigins) == "" {
		return append([]string(nil), defaultCORSOrigins...)
	}

	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}

	return out
}

func (c Config) IsDev() bool {
	return c.Env == "dev"
}

// dsn escapes the credentials, so passwords may contain '@', '/' or ':'.
func (d DBConfig) dsn() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}

	return u.String()
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}
