// Package config loads and persists cashcast configuration from the
// XDG config directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the top-level cashcast configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Forecast   ForecastConfig   `toml:"forecast"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Appearance AppearanceConfig `toml:"appearance"`
}

type GeneralConfig struct {
	// DBPath overrides the default database location when set.
	DBPath string `toml:"db_path"`
	// Timezone is an IANA zone name used to resolve "today". Empty
	// means the system local zone.
	Timezone string `toml:"timezone"`
	// HorizonDays is the default forecast horizon length.
	HorizonDays int `toml:"horizon_days"`
}

type ForecastConfig struct {
	// BufferFloorCents is the minimum balance the projector treats as
	// safe when evaluating discretionary spends.
	BufferFloorCents int64 `toml:"buffer_floor_cents"`
	// StatsWindowDays bounds the spend-history window used for
	// blended statistics.
	StatsWindowDays int `toml:"stats_window_days"`
	// BandK scales the deterministic uncertainty band width.
	BandK float64 `toml:"band_k"`
	// MonteCarloIters is the default simulation count.
	MonteCarloIters int `toml:"monte_carlo_iters"`
	// MonteCarloMaxIters caps caller-requested simulation counts.
	MonteCarloMaxIters int `toml:"monte_carlo_max_iters"`
	// TightThresholdCents marks projected days within this margin of
	// the buffer floor as tight.
	TightThresholdCents int64 `toml:"tight_threshold_cents"`
}

type DaemonConfig struct {
	// Addr is the listen address for the forecast API.
	Addr string `toml:"addr"`
	// APIToken, when set, is required as a bearer token on every
	// request except the health check.
	APIToken string `toml:"api_token"`
	// SnapshotCron is the schedule for the nightly snapshot job.
	SnapshotCron string `toml:"snapshot_cron"`
}

type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the configuration used when no config file
// exists yet.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			HorizonDays: 120,
		},
		Forecast: ForecastConfig{
			BufferFloorCents:    0,
			StatsWindowDays:     180,
			BandK:               0.8,
			MonteCarloIters:     2000,
			MonteCarloMaxIters:  20000,
			TightThresholdCents: 0,
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8791",
			SnapshotCron: "0 2 * * *",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// ConfigDir returns the cashcast config directory, honoring
// XDG_CONFIG_HOME.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cashcast"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "cashcast"), nil
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Exists reports whether a config file is present on disk.
func Exists() bool {
	path, err := ConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Load reads the config file, returning defaults when none exists.
func Load() (Config, error) {
	cfg := DefaultConfig()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to disk, creating the directory as needed.
func Save(cfg Config) error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	path := filepath.Join(dir, "config.toml")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}

// DataDir returns the directory for runtime files such as the default
// database, daemon pid file, and daemon log.
func DataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "cashcast"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "cashcast"), nil
}

// DBPath resolves the database path. Precedence: CASHCAST_DB env var,
// then the configured path, then the XDG data directory.
func DBPath(cfg Config) (string, error) {
	if env := os.Getenv("CASHCAST_DB"); env != "" {
		return env, nil
	}
	if cfg.General.DBPath != "" {
		return cfg.General.DBPath, nil
	}
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "budget.db"), nil
}

// APIToken resolves the daemon bearer token, preferring the
// CASHCAST_API_TOKEN env var over the config file.
func APIToken(cfg Config) string {
	if env := os.Getenv("CASHCAST_API_TOKEN"); env != "" {
		return env
	}
	return cfg.Daemon.APIToken
}
