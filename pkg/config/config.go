package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the envconfig namespace for all service configuration.
const EnvPrefix = "WARUNG"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Sync         SyncConfig
	Local        LocalConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"WARUNG_APP_ENV" default:"dev"`
	Port         string `envconfig:"WARUNG_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"WARUNG_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WARUNG_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"WARUNG_DB_DSN"`

	Host     string `envconfig:"WARUNG_DB_HOST"`
	Port     int    `envconfig:"WARUNG_DB_PORT" default:"5432"`
	User     string `envconfig:"WARUNG_DB_USER"`
	Password string `envconfig:"WARUNG_DB_PASSWORD"`
	Name     string `envconfig:"WARUNG_DB_NAME"`
	SSLMode  string `envconfig:"WARUNG_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WARUNG_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WARUNG_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WARUNG_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WARUNG_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"WARUNG_REDIS_URL"`
	Address      string        `envconfig:"WARUNG_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"WARUNG_REDIS_PASSWORD"`
	DB           int           `envconfig:"WARUNG_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WARUNG_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WARUNG_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WARUNG_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WARUNG_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WARUNG_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"WARUNG_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"WARUNG_JWT_ISSUER" default:"warungpos"`
}

// SyncConfig tunes the server reconciler and the create-replay guard.
type SyncConfig struct {
	CreateGuardTTL time.Duration `envconfig:"WARUNG_SYNC_CREATE_GUARD_TTL" default:"24h"`
}

// LocalConfig configures the device-side sync daemon.
type LocalConfig struct {
	QueuePath     string        `envconfig:"WARUNG_LOCAL_QUEUE_PATH" default:"warung-queue.db"`
	ServerURL     string        `envconfig:"WARUNG_LOCAL_SERVER_URL" default:"http://localhost:8080"`
	DeviceID      string        `envconfig:"WARUNG_LOCAL_DEVICE_ID"`
	BearerToken   string        `envconfig:"WARUNG_LOCAL_BEARER_TOKEN"`
	DrainInterval time.Duration `envconfig:"WARUNG_LOCAL_DRAIN_INTERVAL" default:"5m"`
	MaxRetries    int           `envconfig:"WARUNG_LOCAL_MAX_RETRIES" default:"3"`
	HTTPTimeout   time.Duration `envconfig:"WARUNG_LOCAL_HTTP_TIMEOUT" default:"30s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"WARUNG_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	for _, pair := range []struct{ env, val string }{
		{"WARUNG_DB_HOST", db.Host},
		{"WARUNG_DB_USER", db.User},
		{"WARUNG_DB_NAME", db.Name},
	} {
		if pair.val == "" {
			missing = append(missing, pair.env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either WARUNG_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
