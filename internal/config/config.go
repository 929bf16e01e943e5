// Package config loads teleview's configuration via viper, with XDG
// default paths, environment overrides and optional hot reload of the
// config file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	Portal   PortalConfig   `mapstructure:"portal"`
	Player   PlayerConfig   `mapstructure:"player"`
	UI       UIConfig       `mapstructure:"ui"`
	EPG      EPGConfig      `mapstructure:"epg"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
}

// PortalConfig identifies the Xtream portal and account.
type PortalConfig struct {
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	// GroupCode switches provisioning groups on managed portals.
	GroupCode string `mapstructure:"group_code"`
}

// PlayerConfig tunes the playback backends.
type PlayerConfig struct {
	Fullscreen bool   `mapstructure:"fullscreen"`
	Volume     int    `mapstructure:"volume"`
	UserAgent  string `mapstructure:"user_agent"`
}

// UIConfig tunes the terminal interface.
type UIConfig struct {
	GridColumns int `mapstructure:"grid_columns"`
	GridRows    int `mapstructure:"grid_rows"`
}

// EPGConfig tunes the programme guide.
type EPGConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl"`
}

// LoggingConfig tunes the rotating file logger.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// DatabaseConfig locates the sqlite store.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// SetDefaults registers every default on a viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("portal.url", "")
	v.SetDefault("portal.username", "")
	v.SetDefault("portal.password", "")
	v.SetDefault("portal.group_code", "")

	v.SetDefault("player.fullscreen", true)
	v.SetDefault("player.volume", 0)
	v.SetDefault("player.user_agent", "")

	v.SetDefault("ui.grid_columns", 5)
	v.SetDefault("ui.grid_rows", 3)

	v.SetDefault("epg.enabled", true)
	v.SetDefault("epg.refresh_ttl", 6*time.Hour)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", filepath.Join(StateDir(), "teleview.log"))
	v.SetDefault("logging.max_size", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", true)

	v.SetDefault("database.path", filepath.Join(DataDir(), "teleview.db"))
}

// Load reads the config file (creating viper state but tolerating a
// missing file) and returns the parsed Config plus the viper instance
// for watching.
func Load(configFile string) (*Config, *viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
	}

	v.SetEnvPrefix("TELEVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file just means defaults + env.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, v, nil
}

// Watch re-reads the config on file changes and hands the fresh Config
// to onChange. Parse failures keep the previous config.
func Watch(v *viper.Viper, onChange func(*Config)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		cfg := &Config{}
		if err := v.Unmarshal(cfg); err != nil {
			slog.Warn("config reload failed, keeping previous", "file", e.Name, "error", err)
			return
		}
		slog.Info("config reloaded", "file", e.Name)
		onChange(cfg)
	})
	v.WatchConfig()
}

// InitializeDirs creates the config, data and state directories.
func InitializeDirs() error {
	for _, dir := range []string{ConfigDir(), DataDir(), StateDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// ConfigDir is where the config file lives.
func ConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "teleview")
	}
	return filepath.Join(homeDir(), ".config", "teleview")
}

// DataDir is where the database lives.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "teleview")
	}
	return filepath.Join(homeDir(), ".local", "share", "teleview")
}

// StateDir is where logs live.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "teleview")
	}
	return filepath.Join(homeDir(), ".local", "state", "teleview")
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}
