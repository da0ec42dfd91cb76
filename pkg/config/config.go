package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "GUDANGKU"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "GUDANGKU_DB_DSN"
	EnvDBHost = "GUDANGKU_DB_HOST"
	EnvDBUser = "GUDANGKU_DB_USER"
	EnvDBName = "GUDANGKU_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Documents    DocumentConfig
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
	Env          string `envconfig:"GUDANGKU_APP_ENV" required:"true"`
	Port         string `envconfig:"GUDANGKU_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GUDANGKU_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"GUDANGKU_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"GUDANGKU_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GUDANGKU_DB_DSN"`
	Driver string `envconfig:"GUDANGKU_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GUDANGKU_DB_HOST"`
	LegacyPort     int    `envconfig:"GUDANGKU_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GUDANGKU_DB_USER"`
	LegacyPassword string `envconfig:"GUDANGKU_DB_PASSWORD"`
	LegacyName     string `envconfig:"GUDANGKU_DB_NAME"`
	LegacySSLMode  string `envconfig:"GUDANGKU_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GUDANGKU_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GUDANGKU_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GUDANGKU_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GUDANGKU_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GUDANGKU_REDIS_URL"`
	Address      string        `envconfig:"GUDANGKU_REDIS_ADDR"`
	Password     string        `envconfig:"GUDANGKU_REDIS_PASSWORD"`
	DB           int           `envconfig:"GUDANGKU_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GUDANGKU_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GUDANGKU_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GUDANGKU_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GUDANGKU_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GUDANGKU_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"GUDANGKU_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"GUDANGKU_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"GUDANGKU_JWT_EXPIRATION_MINUTES" default:"60"`
}

// DocumentConfig controls document numbering for the three posting kinds.
type DocumentConfig struct {
	TransactionPrefix string `envconfig:"GUDANGKU_DOC_TRANSACTION_PREFIX" default:"TRX"`
	TransferPrefix    string `envconfig:"GUDANGKU_DOC_TRANSFER_PREFIX" default:"TRF"`
	OpnamePrefix      string `envconfig:"GUDANGKU_DOC_OPNAME_PREFIX" default:"OPN"`
	NumberRetries     int    `envconfig:"GUDANGKU_DOC_NUMBER_RETRIES" default:"3"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"GUDANGKU_AUTO_MIGRATE" default:"false"`
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
