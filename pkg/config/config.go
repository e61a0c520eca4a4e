package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "FARMSTORE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv          = "FARMSTORE_APP_ENV"
	EnvPort            = "FARMSTORE_APP_PORT"
	EnvAPIBaseURL      = "FARMSTORE_API_BASE_URL"
	EnvAPITimeout      = "FARMSTORE_API_TIMEOUT"
	EnvAPISource       = "FARMSTORE_API_SOURCE"
	EnvCartStore       = "FARMSTORE_CART_STORE"
	EnvDBDriver        = "FARMSTORE_DB_DRIVER"
	EnvDBDSN           = "FARMSTORE_DB_DSN"
	EnvRedisURL        = "FARMSTORE_REDIS_URL"
	EnvMediaUploadURL  = "FARMSTORE_MEDIA_UPLOAD_URL"
	EnvMediaPreset     = "FARMSTORE_MEDIA_UPLOAD_PRESET"
	EnvHandoffMode     = "FARMSTORE_HANDOFF_MODE"
	EnvSessionToken    = "FARMSTORE_SESSION_TOKEN"
)

// Cart store backends.
const (
	CartStoreMemory = "memory"
	CartStoreDB     = "db"
	CartStoreRedis  = "redis"
)

// Database drivers supported by the cart store.
const (
	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"
)

type Config struct {
	App     AppConfig
	API     APIConfig
	Cart    CartConfig
	DB      DBConfig
	Redis   RedisConfig
	Session SessionConfig
	Handoff HandoffConfig
	Media   MediaConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.API.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Cart.validate(); err != nil {
		return nil, err
	}
	if cfg.Cart.Store == CartStoreDB {
		if err := cfg.DB.EnsureDSN(); err != nil {
			return nil, err
		}
	}
	if cfg.Cart.Store == CartStoreRedis && cfg.Redis.URL == "" && cfg.Redis.Address == "" {
		return nil, fmt.Errorf("%s is required when cart store is redis", EnvRedisURL)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FARMSTORE_APP_ENV" required:"true"`
	Port         string `envconfig:"FARMSTORE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"FARMSTORE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FARMSTORE_LOG_WARN_STACK" default:"false"`
	// MetricsFile, when set, receives the CLI's metrics in text exposition
	// format on exit.
	MetricsFile string `envconfig:"FARMSTORE_METRICS_FILE"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// APIConfig describes the storefront backend the client talks to.
type APIConfig struct {
	BaseURL string        `envconfig:"FARMSTORE_API_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"FARMSTORE_API_TIMEOUT" default:"15s"`
	// Source tags payment-url requests so the backend knows where to send the gateway return.
	Source string `envconfig:"FARMSTORE_API_SOURCE" default:"mobile"`

	BreakerMaxRequests uint32        `envconfig:"FARMSTORE_API_BREAKER_MAX_REQUESTS" default:"3"`
	BreakerInterval    time.Duration `envconfig:"FARMSTORE_API_BREAKER_INTERVAL" default:"30s"`
	BreakerTimeout     time.Duration `envconfig:"FARMSTORE_API_BREAKER_TIMEOUT" default:"20s"`
	BreakerMinRequests uint32        `envconfig:"FARMSTORE_API_BREAKER_MIN_REQUESTS" default:"5"`
}

func (a APIConfig) validate() error {
	parsed, err := url.Parse(strings.TrimSpace(a.BaseURL))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", EnvAPIBaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) url", EnvAPIBaseURL)
	}
	if a.Timeout <= 0 {
		return fmt.Errorf("%s must be positive", EnvAPITimeout)
	}
	return nil
}

type CartConfig struct {
	Store string `envconfig:"FARMSTORE_CART_STORE" default:"db"`
	// Owner keys the persisted cart; one device session owns one cart.
	Owner    string        `envconfig:"FARMSTORE_CART_OWNER" default:"default"`
	RedisTTL time.Duration `envconfig:"FARMSTORE_CART_REDIS_TTL" default:"720h"`
}

func (c CartConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Store)) {
	case CartStoreMemory, CartStoreDB, CartStoreRedis:
		return nil
	}
	return fmt.Errorf("unsupported %s %q", EnvCartStore, c.Store)
}

type DBConfig struct {
	Driver     string `envconfig:"FARMSTORE_DB_DRIVER" default:"sqlite"`
	DSN        string `envconfig:"FARMSTORE_DB_DSN"`
	SQLitePath string `envconfig:"FARMSTORE_DB_SQLITE_PATH" default:"farmstore.db"`

	MaxOpenConns    int           `envconfig:"FARMSTORE_DB_MAX_OPEN_CONNS" default:"4"`
	MaxIdleConns    int           `envconfig:"FARMSTORE_DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"FARMSTORE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FARMSTORE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FARMSTORE_REDIS_URL"`
	Address      string        `envconfig:"FARMSTORE_REDIS_ADDR"`
	Password     string        `envconfig:"FARMSTORE_REDIS_PASSWORD"`
	DB           int           `envconfig:"FARMSTORE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FARMSTORE_REDIS_POOL_SIZE" default:"4"`
	MinIdleConns int           `envconfig:"FARMSTORE_REDIS_MIN_IDLE_CONNS" default:"1"`
	DialTimeout  time.Duration `envconfig:"FARMSTORE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FARMSTORE_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"FARMSTORE_REDIS_WRITE_TIMEOUT" default:"3s"`
}

type SessionConfig struct {
	Token string `envconfig:"FARMSTORE_SESSION_TOKEN"`
	// ExpiryLeeway treats tokens expiring within the window as already expired.
	ExpiryLeeway time.Duration `envconfig:"FARMSTORE_SESSION_EXPIRY_LEEWAY" default:"30s"`
}

// HandoffConfig selects how payment URLs are opened.
type HandoffConfig struct {
	Mode string `envconfig:"FARMSTORE_HANDOFF_MODE" default:"browser"`
}

type MediaConfig struct {
	UploadURL    string        `envconfig:"FARMSTORE_MEDIA_UPLOAD_URL"`
	UploadPreset string        `envconfig:"FARMSTORE_MEDIA_UPLOAD_PRESET"`
	Folder       string        `envconfig:"FARMSTORE_MEDIA_FOLDER" default:"farmstore"`
	MaxUploadMB  int           `envconfig:"FARMSTORE_MEDIA_MAX_UPLOAD_MB" default:"10"`
	Timeout      time.Duration `envconfig:"FARMSTORE_MEDIA_TIMEOUT" default:"2m"`
}

// MaxUploadBytes returns the upload limit in bytes.
func (m MediaConfig) MaxUploadBytes() int64 {
	if m.MaxUploadMB <= 0 {
		return 0
	}
	return int64(m.MaxUploadMB) << 20
}

// EnsureDSN fills in the sqlite DSN from the path and checks the driver.
func (db *DBConfig) EnsureDSN() error {
	switch strings.ToLower(strings.TrimSpace(db.Driver)) {
	case DBDriverSQLite:
		if db.DSN == "" {
			if db.SQLitePath == "" {
				return fmt.Errorf("either %s or a sqlite path is required", EnvDBDSN)
			}
			db.DSN = fmt.Sprintf("file:%s?_foreign_keys=on", db.SQLitePath)
		}
		return nil
	case DBDriverPostgres:
		if db.DSN == "" {
			return fmt.Errorf("%s is required for the postgres driver", EnvDBDSN)
		}
		if _, err := url.Parse(db.DSN); err != nil {
			return fmt.Errorf("parsing %s: %w", EnvDBDSN, err)
		}
		return nil
	}
	return fmt.Errorf("unsupported %s %q", EnvDBDriver, db.Driver)
}
