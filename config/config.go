package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/waldirborbajr/appstorecheck/logger"
)

const (
	DefaultLookupURL     = "https://itunes.apple.com/lookup"
	DefaultLookupTimeout = 10 * time.Second
	DefaultStoreRegion   = "cn"
)

// Config holds the application identity and the version check settings
type Config struct {
	AppID          string        // Catalog id of the application (numeric App Store id)
	BundleID       string        // Local bundle identifier, must match the catalog entry
	CurrentVersion string        // Installed version, e.g. 1.2.16
	CheckDelay     time.Duration // Wait before the lookup starts

	LookupURL     string
	LookupCountry string // Optional storefront passed as country= to the lookup
	LookupTimeout time.Duration
	StoreRegion   string // Region segment of the web store link

	AlertAllowed bool
	DebugMode    bool
	LogFile      string
	HistoryDB    string // Path of the SQLite check history; empty disables it

	warnings []string
}

// LoadEnv loads the .env file into the process environment. A missing file is not an error.
func LoadEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error loading .env file: %w", err)
	}
	return nil
}

// Warnings lists the settings FromEnv rejected and replaced by defaults
func (c Config) Warnings() []string {
	return c.warnings
}

// LogLoaded writes the rejected settings as warnings and the effective configuration at debug level.
// Call it once the logger is initialized.
func (c Config) LogLoaded() {
	c.logTo(logger.GetLogger())
}

func (c Config) logTo(log zerolog.Logger) {
	for _, w := range c.warnings {
		log.Warn().Msg(w)
	}
	if c.BundleID == "" {
		log.Warn().Msg("BUNDLE_ID is not set, every check will fail with a bundle mismatch")
	}

	log.Debug().
		Str("APP_ID", c.AppID).
		Str("BUNDLE_ID", c.BundleID).
		Str("CURRENT_VERSION", c.CurrentVersion).
		Dur("CHECK_DELAY", c.CheckDelay).
		Str("LOOKUP_URL", c.LookupURL).
		Str("LOOKUP_COUNTRY", c.LookupCountry).
		Dur("LOOKUP_TIMEOUT", c.LookupTimeout).
		Str("STORE_REGION", c.StoreRegion).
		Bool("ALERT_ALLOWED", c.AlertAllowed).
		Bool("DEBUG_MODE", c.DebugMode).
		Str("LOG_FILE", c.LogFile).
		Str("HISTORY_DB", c.HistoryDB).
		Msg("Configuration loaded")
}

// FromEnv builds a Config from a lookup function such as os.Getenv.
// Invalid values are replaced by their defaults and kept in Warnings.
func FromEnv(getenv func(string) string) Config {
	cfg := Config{
		AppID:          strings.TrimSpace(getenv("APP_ID")),
		BundleID:       strings.TrimSpace(getenv("BUNDLE_ID")),
		CurrentVersion: strings.TrimSpace(getenv("CURRENT_VERSION")),
		LookupURL:      strings.TrimSpace(getenv("LOOKUP_URL")),
		LookupCountry:  strings.TrimSpace(getenv("LOOKUP_COUNTRY")),
		StoreRegion:    strings.TrimSpace(getenv("STORE_REGION")),
		LogFile:        strings.TrimSpace(getenv("LOG_FILE")),
		HistoryDB:      strings.TrimSpace(getenv("HISTORY_DB")),
		LookupTimeout:  DefaultLookupTimeout,
		AlertAllowed:   true,
	}

	if cfg.LookupURL == "" {
		cfg.LookupURL = DefaultLookupURL
	}
	if cfg.StoreRegion == "" {
		cfg.StoreRegion = DefaultStoreRegion
	}

	if v := getenv("CHECK_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			cfg.warn("Invalid CHECK_DELAY value %q, defaulting to 0", v)
		} else {
			cfg.CheckDelay = d
		}
	}

	if v := getenv("LOOKUP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			cfg.warn("Invalid LOOKUP_TIMEOUT value %q, using default %s", v, DefaultLookupTimeout)
		} else {
			cfg.LookupTimeout = d
		}
	}

	if v := getenv("ALERT_ALLOWED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			cfg.warn("Invalid ALERT_ALLOWED value %q, defaulting to true", v)
		} else {
			cfg.AlertAllowed = b
		}
	}

	if v := getenv("DEBUG_MODE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			cfg.warn("Invalid DEBUG_MODE value %q, defaulting to false", v)
		} else {
			cfg.DebugMode = b
		}
	}

	return cfg
}

func (c *Config) warn(format string, args ...any) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

// Validate reports missing required settings
func (c Config) Validate() error {
	var missing []string
	if c.AppID == "" {
		missing = append(missing, "APP_ID")
	}
	if c.BundleID == "" {
		missing = append(missing, "BUNDLE_ID")
	}
	if c.CurrentVersion == "" {
		missing = append(missing, "CURRENT_VERSION")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}
