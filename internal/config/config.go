package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"unimeal-backend-go/internal/calc"
)

// Store drivers.
const (
	DriverFirestore = "firestore"
	DriverSQLite    = "sqlite"
	DriverMongoDB   = "mongodb"
)

// Auth modes. AuthModeInsecure trusts the bearer token as the uid and is
// meant for local development against the SQLite driver.
const (
	AuthModeFirebase = "firebase"
	AuthModeInsecure = "insecure"
)

// Config holds all configuration for the application.
type Config struct {
	Port                             string        `mapstructure:"PORT"`
	GinMode                          string        `mapstructure:"GIN_MODE"`
	ClientURL                        string        `mapstructure:"CLIENT_URL"`
	StoreDriver                      string        `mapstructure:"STORE_DRIVER"`
	AuthMode                         string        `mapstructure:"AUTH_MODE"`
	FirebaseProjectID                string        `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string        `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string        `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	SQLitePath                       string        `mapstructure:"SQLITE_PATH"`
	MongoDBURI                       string        `mapstructure:"MONGODB_URI"`
	MongoDBDatabase                  string        `mapstructure:"MONGODB_DATABASE"`
	PreferencesPath                  string        `mapstructure:"PREFERENCES_PATH"`
	SessionIdleTimeout               time.Duration `mapstructure:"SESSION_IDLE_TIMEOUT"`

	Thresholds calc.Thresholds `mapstructure:",squash"`
}

var envKeys = []string{
	"PORT",
	"GIN_MODE",
	"CLIENT_URL",
	"STORE_DRIVER",
	"AUTH_MODE",
	"FIREBASE_PROJECT_ID",
	"GOOGLE_APPLICATION_CREDENTIALS",
	"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
	"SQLITE_PATH",
	"MONGODB_URI",
	"MONGODB_DATABASE",
	"PREFERENCES_PATH",
	"SESSION_IDLE_TIMEOUT",
	"EXPIRING_SOON_DAYS",
	"LOW_BUDGET_RATIO",
}

// LoadConfig loads configuration from environment variables using Viper.
// CONFIG_FILE may name a YAML, TOML or JSON file whose keys are overridden
// by the environment.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	defaults := calc.DefaultThresholds()
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("CLIENT_URL", "http://localhost:3000")
	v.SetDefault("STORE_DRIVER", DriverFirestore)
	v.SetDefault("AUTH_MODE", AuthModeFirebase)
	v.SetDefault("SQLITE_PATH", "data/unimeal.db")
	v.SetDefault("MONGODB_DATABASE", "unimeal")
	v.SetDefault("PREFERENCES_PATH", "")
	v.SetDefault("SESSION_IDLE_TIMEOUT", "15m")
	v.SetDefault("EXPIRING_SOON_DAYS", defaults.ExpiringSoonDays)
	v.SetDefault("LOW_BUDGET_RATIO", defaults.LowBudgetRatio)

	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.AuthMode = strings.ToLower(strings.TrimSpace(cfg.AuthMode))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks driver specific requirements and the shared limits.
// LoadConfig runs it for every entrypoint, including the CLI, which never
// verifies tokens and so does not care about AUTH_MODE.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverFirestore:
		if c.FirebaseProjectID == "" {
			return errors.New("FIREBASE_PROJECT_ID is required for the firestore driver")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required for the sqlite driver")
		}
	case DriverMongoDB:
		if c.MongoDBURI == "" {
			return errors.New("MONGODB_URI is required for the mongodb driver")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.Thresholds.ExpiringSoonDays < 0 {
		return errors.New("EXPIRING_SOON_DAYS must not be negative")
	}
	if c.Thresholds.LowBudgetRatio < 0 || c.Thresholds.LowBudgetRatio > 1 {
		return errors.New("LOW_BUDGET_RATIO must be between 0 and 1")
	}
	if c.SessionIdleTimeout <= 0 {
		return errors.New("SESSION_IDLE_TIMEOUT must be positive")
	}
	return nil
}

// ValidateServer adds the checks that only matter to the HTTP server:
// how incoming tokens are verified.
func (c *Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	switch c.AuthMode {
	case AuthModeFirebase:
		if c.FirebaseProjectID == "" {
			return errors.New("FIREBASE_PROJECT_ID is required when AUTH_MODE is firebase")
		}
	case AuthModeInsecure:
		if strings.EqualFold(c.GinMode, "release") {
			return errors.New("AUTH_MODE=insecure is not allowed in release mode")
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE %q", c.AuthMode)
	}
	return nil
}

// NeedsFirebase reports whether the Firebase Admin SDK must be initialized.
func (c *Config) NeedsFirebase() bool {
	return c.StoreDriver == DriverFirestore || c.AuthMode == AuthModeFirebase
}
