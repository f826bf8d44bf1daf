package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "SOKOCHAIN"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv        = "SOKOCHAIN_APP_ENV"
	EnvPort          = "SOKOCHAIN_APP_PORT"
	EnvDBDSN         = "SOKOCHAIN_DB_DSN"
	EnvDBHost        = "SOKOCHAIN_DB_HOST"
	EnvDBUser        = "SOKOCHAIN_DB_USER"
	EnvDBName        = "SOKOCHAIN_DB_NAME"
	EnvPlatformOwner = "SOKOCHAIN_PLATFORM_OWNER_ADDRESS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Platform     PlatformConfig
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
	if err := cfg.Platform.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SOKOCHAIN_APP_ENV" required:"true"`
	Port         string `envconfig:"SOKOCHAIN_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SOKOCHAIN_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SOKOCHAIN_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SOKOCHAIN_DB_DSN"`
	Driver string `envconfig:"SOKOCHAIN_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SOKOCHAIN_DB_HOST"`
	LegacyPort     int    `envconfig:"SOKOCHAIN_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SOKOCHAIN_DB_USER"`
	LegacyPassword string `envconfig:"SOKOCHAIN_DB_PASSWORD"`
	LegacyName     string `envconfig:"SOKOCHAIN_DB_NAME"`
	LegacySSLMode  string `envconfig:"SOKOCHAIN_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SOKOCHAIN_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SOKOCHAIN_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SOKOCHAIN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SOKOCHAIN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver targets an embedded sqlite file.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, "sqlite")
}

// PlatformConfig fixes the platform owner identity and the starting fee.
// The owner address is set once at initialization and never changes.
type PlatformConfig struct {
	OwnerAddress      string `envconfig:"SOKOCHAIN_PLATFORM_OWNER_ADDRESS" required:"true"`
	InitialFeePercent int    `envconfig:"SOKOCHAIN_PLATFORM_INITIAL_FEE_PERCENT" default:"5"`
	MaxFeePercent     int    `envconfig:"SOKOCHAIN_PLATFORM_MAX_FEE_PERCENT" default:"20"`
}

func (p PlatformConfig) validate() error {
	if strings.TrimSpace(p.OwnerAddress) == "" {
		return fmt.Errorf("%s is required", EnvPlatformOwner)
	}
	if p.InitialFeePercent < 0 || p.InitialFeePercent > p.MaxFeePercent {
		return fmt.Errorf("initial fee percent %d outside [0,%d]", p.InitialFeePercent, p.MaxFeePercent)
	}
	return nil
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SOKOCHAIN_AUTO_MIGRATE" default:"false"`
	SeedDemo    bool `envconfig:"SOKOCHAIN_SEED_DEMO" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required when driver is sqlite", EnvDBDSN)
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
