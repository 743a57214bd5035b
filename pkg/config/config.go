package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "INVENTORY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv      = "INVENTORY_APP_ENV"
	EnvPort        = "INVENTORY_APP_PORT"
	EnvDBDSN       = "INVENTORY_DB_DSN"
	EnvDBHost      = "INVENTORY_DB_HOST"
	EnvDBUser      = "INVENTORY_DB_USER"
	EnvDBName      = "INVENTORY_DB_NAME"
	EnvRedisURL    = "INVENTORY_REDIS_URL"
	EnvJWTSecret   = "INVENTORY_JWT_SECRET"
	EnvJWTIssuer   = "INVENTORY_JWT_ISSUER"
	EnvJWTExpMins  = "INVENTORY_JWT_EXPIRATION_MINUTES"
	EnvUseSQLite   = "INVENTORY_USE_SQLITE"
	EnvSQLitePath  = "INVENTORY_SQLITE_PATH"
	EnvAutoMigrate = "INVENTORY_AUTO_MIGRATE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Inventory    InventoryConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		return &cfg, nil
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"INVENTORY_APP_ENV" required:"true"`
	Port         string `envconfig:"INVENTORY_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"INVENTORY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"INVENTORY_LOG_WARN_STACK" default:"false"`
	// CORSOrigins is a comma separated allow list.
	CORSOrigins     []string      `envconfig:"INVENTORY_CORS_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout time.Duration `envconfig:"INVENTORY_SHUTDOWN_TIMEOUT" default:"15s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"INVENTORY_DB_DSN"`

	LegacyHost     string `envconfig:"INVENTORY_DB_HOST"`
	LegacyPort     int    `envconfig:"INVENTORY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"INVENTORY_DB_USER"`
	LegacyPassword string `envconfig:"INVENTORY_DB_PASSWORD"`
	LegacyName     string `envconfig:"INVENTORY_DB_NAME"`
	LegacySSLMode  string `envconfig:"INVENTORY_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"INVENTORY_SQLITE_PATH" default:"inventory.db"`

	MaxOpenConns    int           `envconfig:"INVENTORY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"INVENTORY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"INVENTORY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"INVENTORY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	// LockTimeout bounds how long a statement waits on a row lock (Postgres lock_timeout).
	LockTimeout time.Duration `envconfig:"INVENTORY_DB_LOCK_TIMEOUT" default:"5s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"INVENTORY_REDIS_URL"`
	Address      string        `envconfig:"INVENTORY_REDIS_ADDR"`
	Password     string        `envconfig:"INVENTORY_REDIS_PASSWORD"`
	DB           int           `envconfig:"INVENTORY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"INVENTORY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"INVENTORY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"INVENTORY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"INVENTORY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"INVENTORY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"INVENTORY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"INVENTORY_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"INVENTORY_JWT_EXPIRATION_MINUTES" default:"480"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"INVENTORY_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"INVENTORY_AUTO_MIGRATE" default:"false"`
}

type InventoryConfig struct {
	MaxLinesPerRequest int           `envconfig:"INVENTORY_MAX_LINES_PER_REQUEST" default:"50"`
	GuestSessionTTL    time.Duration `envconfig:"INVENTORY_GUEST_SESSION_TTL" default:"12h"`
	IdempotencyTTL     time.Duration `envconfig:"INVENTORY_IDEMPOTENCY_TTL" default:"24h"`
	ScanRateLimit      int           `envconfig:"INVENTORY_SCAN_RATE_LIMIT" default:"120"`
	ScanRateWindow     time.Duration `envconfig:"INVENTORY_SCAN_RATE_WINDOW" default:"1m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
