// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
	"golang.org/x/time/rate"

	"gymflow/internal/storage"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the process configuration, read from GYMFLOW_* variables.
type Config struct {
	Addr string `env:"GYMFLOW_ADDR" envDefault:":8080"`

	StorageDriver     storage.Driver `env:"GYMFLOW_STORAGE_DRIVER"      envDefault:"sqlite"`
	StorageDSN        string         `env:"GYMFLOW_STORAGE_DSN"         envDefault:"gymflow.db"`
	StorageQuotaBytes int64          `env:"GYMFLOW_STORAGE_QUOTA_BYTES" envDefault:"5242880"`

	AdminPassword string `env:"GYMFLOW_ADMIN_PASSWORD" envDefault:"universo2024"`
	IDPrefix      string `env:"GYMFLOW_ID_PREFIX"      envDefault:"UF"`
	Timezone      string `env:"GYMFLOW_TIMEZONE"       envDefault:"America/Maceio"`

	// Registrations are limited to RegistrationBurst per RegistrationEvery.
	RegistrationEvery time.Duration `env:"GYMFLOW_REGISTRATION_EVERY" envDefault:"1m"`
	RegistrationBurst int           `env:"GYMFLOW_REGISTRATION_BURST" envDefault:"5"`

	OTLPEndpoint string `env:"GYMFLOW_OTLP_ENDPOINT"`
	LogLevel     string `env:"GYMFLOW_LOG_LEVEL" envDefault:"info"`
}

// Load parses the process environment.
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values env tags cannot express.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case storage.DriverSQLite, storage.DriverPostgres, storage.DriverMemory:
	default:
		return fmt.Errorf("%w: storage driver %q", ErrInvalidConfig, c.StorageDriver)
	}
	if c.StorageDriver != storage.DriverMemory && strings.TrimSpace(c.StorageDSN) == "" {
		return fmt.Errorf("%w: storage dsn is required for %s", ErrInvalidConfig, c.StorageDriver)
	}
	if c.AdminPassword == "" {
		return fmt.Errorf("%w: admin password is empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.IDPrefix) == "" {
		return fmt.Errorf("%w: id prefix is empty", ErrInvalidConfig)
	}
	if c.RegistrationEvery <= 0 || c.RegistrationBurst <= 0 {
		return fmt.Errorf("%w: registration limit must be positive", ErrInvalidConfig)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("%w: timezone %q: %v", ErrInvalidConfig, c.Timezone, err)
	}
	return nil
}

// Location resolves Timezone. Validate has already checked it.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// RegistrationLimit converts the registration settings into a limiter rate.
func (c Config) RegistrationLimit() rate.Limit {
	return rate.Every(c.RegistrationEvery)
}
