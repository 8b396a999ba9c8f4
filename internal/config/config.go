package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvConfigPath = "FINCAL_CONFIG"
	EnvListen     = "FINCAL_LISTEN"
	EnvLogLevel   = "FINCAL_LOG_LEVEL"
)

const (
	defaultListen        = "127.0.0.1:8080"
	defaultLogLevel      = "info"
	defaultRefreshCron   = "0 0 * * *"
	defaultSeedHorizon   = 12
	configTempFilePrefix = ".fincal-config-*.tmp"
)

// SeedConfig selects where the initial events come from.
type SeedConfig struct {
	// Builtin loads the bundled sample events.
	Builtin bool `yaml:"builtin" json:"builtin"`
	// Files lists seed files; ".ics" files are parsed as iCalendar,
	// everything else as YAML.
	Files []string `yaml:"files" json:"files"`
	// HorizonMonths bounds recurring seed expansion, counted from the
	// start of the current month.
	HorizonMonths int `yaml:"horizon_months" json:"horizon_months"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	LogLevel string `yaml:"log_level" json:"log_level"`
	// LogFile, if set, enables rotated file logging instead of stderr.
	LogFile string `yaml:"log_file,omitempty" json:"log_file,omitempty"`

	// RefreshCron is the cron schedule on which the cached "today" is
	// re-read from the clock.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	Seed SeedConfig `yaml:"seed" json:"seed"`

	// StrictIDs makes update/delete of unknown ids answer 404 instead of
	// succeeding silently.
	StrictIDs bool `yaml:"strict_ids" json:"strict_ids"`

	// BasicAuth, if non-nil, protects every endpoint except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      defaultListen,
		LogLevel:    defaultLogLevel,
		RefreshCron: defaultRefreshCron,
		Seed: SeedConfig{
			Builtin:       true,
			Files:         []string{},
			HorizonMonths: defaultSeedHorizon,
		},
	}
}

// Normalize fills in missing/zero values so partially-filled files still
// behave.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		c.LogLevel = defaultLogLevel
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefreshCron
	}
	if c.Seed.HorizonMonths <= 0 {
		c.Seed.HorizonMonths = defaultSeedHorizon
	}
	if c.Seed.Files == nil {
		c.Seed.Files = []string{}
	}
	if c.BasicAuth != nil && (c.BasicAuth.Username == "" || c.BasicAuth.Password == "") {
		c.BasicAuth = nil
	}
}

// ApplyEnv overrides fields from the process environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvListen); v != "" {
		c.Listen = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	c.Normalize()
}

// Load reads the YAML file at path. A missing file is created with the
// defaults (0600) and the defaults are returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Caller decides whether an unwritable path is fatal.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600 perms.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, configTempFilePrefix)
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
