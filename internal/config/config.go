// Package config loads process configuration from the environment and
// optional .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/talentdesk/ats/pkg/httpserver"
	"github.com/talentdesk/ats/pkg/mongo"
)

var (
	// ErrParsingConfig is returned when environment variables cannot be parsed into the config struct.
	ErrParsingConfig = errors.New("failed to parse environment variables into config")

	// ErrInvalidConfig is returned when parsed values are inconsistent.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrLoadingEnvFile is returned when an explicitly requested .env file cannot be read.
	ErrLoadingEnvFile = errors.New("failed to load env file")
)

// MinJWTSecretLength is the shortest accepted HMAC secret.
const MinJWTSecretLength = 32

type App struct {
	Env       string `env:"APP_ENV" envDefault:"development"`
	Name      string `env:"APP_NAME" envDefault:"ats"`
	LogLevel  string `env:"LOG_LEVEL"` // Overrides the per-environment default when set.
	LogFormat string `env:"LOG_FORMAT"`
}

// IsProduction reports whether the process runs in production or staging.
func (a App) IsProduction() bool {
	switch a.Env {
	case "production", "prod", "staging", "stage":
		return true
	}
	return false
}

type Tenancy struct {
	PrimaryDomain  string        `env:"TENANCY_PRIMARY_DOMAIN,required"`
	DevDomains     []string      `env:"TENANCY_DEV_DOMAINS" envDefault:"localhost,lvh.me" envSeparator:","`
	MasterDatabase string        `env:"TENANCY_MASTER_DB" envDefault:"ats_master"`
	DatabasePrefix string        `env:"TENANCY_DB_PREFIX" envDefault:"ats_tenant_"`
	AdminPrefixes  []string      `env:"TENANCY_ADMIN_PREFIXES" envDefault:"/api/super-admin" envSeparator:","`
	ConnectTimeout time.Duration `env:"TENANCY_CONNECT_TIMEOUT" envDefault:"10s"`
}

type Auth struct {
	JWTSecret          string        `env:"AUTH_JWT_SECRET,required,unset"`
	TokenTTL           time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"12h"`
	Issuer             string        `env:"AUTH_ISSUER" envDefault:"ats"`
	MaxLoginAttempts   int           `env:"AUTH_MAX_LOGIN_ATTEMPTS" envDefault:"5"`
	LockoutDuration    time.Duration `env:"AUTH_LOCKOUT_DURATION" envDefault:"15m"`
	SuperAdminEmail    string        `env:"SUPER_ADMIN_EMAIL"`
	SuperAdminPassword string        `env:"SUPER_ADMIN_PASSWORD,unset"`
}

// Config is the complete process configuration.
type Config struct {
	App     App
	HTTP    httpserver.Config
	Mongo   mongo.Config
	Tenancy Tenancy
	Auth    Auth
}

// Load reads the given .env files (".env" when none are given, ignored if
// missing), then parses and validates the environment. Variables already
// set in the environment win over file values.
func Load(files ...string) (Config, error) {
	if err := LoadEnv(files...); err != nil {
		return Config{}, err
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// MustLoad works like Load but panics on failure.
func MustLoad(files ...string) Config {
	cfg, err := Load(files...)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// LoadEnv loads .env files into the process environment without
// overriding existing variables. A missing default .env is not an error;
// missing explicit files are.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return errors.Join(ErrLoadingEnvFile, err)
		}
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return errors.Join(ErrLoadingEnvFile, err)
	}
	return nil
}

// Validate checks cross-field constraints the struct tags cannot express.
func (c Config) Validate() error {
	var errs []error

	switch c.App.LogFormat {
	case "", "json", "text":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.App.LogFormat))
	}
	if strings.Contains(c.Tenancy.PrimaryDomain, "/") || strings.Contains(c.Tenancy.PrimaryDomain, ":") {
		errs = append(errs, fmt.Errorf("TENANCY_PRIMARY_DOMAIN must be a bare domain, got %q", c.Tenancy.PrimaryDomain))
	}
	if c.Tenancy.MasterDatabase == "" {
		errs = append(errs, errors.New("TENANCY_MASTER_DB must not be empty"))
	}
	if c.Tenancy.DatabasePrefix == "" {
		errs = append(errs, errors.New("TENANCY_DB_PREFIX must not be empty"))
	}
	if strings.HasPrefix(c.Tenancy.MasterDatabase, c.Tenancy.DatabasePrefix) && c.Tenancy.DatabasePrefix != "" {
		errs = append(errs, errors.New("TENANCY_MASTER_DB must not start with TENANCY_DB_PREFIX"))
	}
	for _, p := range c.Tenancy.AdminPrefixes {
		if !strings.HasPrefix(strings.TrimSpace(p), "/") {
			errs = append(errs, fmt.Errorf("TENANCY_ADMIN_PREFIXES entry %q must start with /", p))
		}
	}
	if c.Tenancy.ConnectTimeout <= 0 {
		errs = append(errs, errors.New("TENANCY_CONNECT_TIMEOUT must be positive"))
	}
	if len(c.Auth.JWTSecret) < MinJWTSecretLength {
		errs = append(errs, fmt.Errorf("AUTH_JWT_SECRET must be at least %d bytes", MinJWTSecretLength))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("AUTH_TOKEN_TTL must be positive"))
	}
	if (c.Auth.SuperAdminEmail == "") != (c.Auth.SuperAdminPassword == "") {
		errs = append(errs, errors.New("SUPER_ADMIN_EMAIL and SUPER_ADMIN_PASSWORD must be set together"))
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
	}
	return nil
}
