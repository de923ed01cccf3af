package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// fileConfig mirrors Config with pointer fields so we can distinguish
// "not set" from zero values when merging TOML.
type fileConfig struct {
	ServerURL       *string   `toml:"server_url"`
	Token           *string   `toml:"token"`
	CacheDir        *string   `toml:"cache_dir"`
	AutosaveDelayMS *int      `toml:"autosave_delay_ms"`
	Listen          *string   `toml:"listen"`
	LiveRefresh     *bool     `toml:"live_refresh"`
	ImportDir       *string   `toml:"import_dir"`
	LogLevel        *string   `toml:"log_level"`
	Theme           *string   `toml:"theme"`
	TreeWidth       *int      `toml:"tree_width"`
	InfoWidth       *int      `toml:"info_width"`
	LeaderKey       *string   `toml:"leader_key"`
	LeaderTimeout   *int      `toml:"leader_timeout"`
	AI              *aiConfig `toml:"ai"`
}

type aiConfig struct {
	Mode    *string `toml:"mode"`
	BaseURL *string `toml:"base_url"`
	Model   *string `toml:"model"`
	APIKey  *string `toml:"api_key"`
}

// ConfigDir returns the scribe config directory, respecting XDG_CONFIG_HOME.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "scribe")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "scribe")
}

// ConfigPath returns the full path to config.toml.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// LoadFile reads config.toml and merges non-nil fields into cfg.
// Returns true if the file existed, false otherwise.
func LoadFile(cfg *Config) (bool, error) {
	data, err := os.ReadFile(ConfigPath())
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return true, err
	}
	fc.merge(cfg)
	return true, nil
}

func (fc fileConfig) merge(cfg *Config) {
	setString(&cfg.ServerURL, fc.ServerURL)
	setString(&cfg.Token, fc.Token)
	if fc.CacheDir != nil {
		cfg.CacheDir = ExpandHome(*fc.CacheDir)
	}
	if fc.AutosaveDelayMS != nil {
		cfg.AutosaveDelay = time.Duration(*fc.AutosaveDelayMS) * time.Millisecond
	}
	setString(&cfg.Listen, fc.Listen)
	if fc.LiveRefresh != nil {
		cfg.LiveRefresh = *fc.LiveRefresh
	}
	if fc.ImportDir != nil {
		cfg.ImportDir = ExpandHome(*fc.ImportDir)
	}
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.Theme, fc.Theme)
	if fc.TreeWidth != nil {
		cfg.TreeWidth = *fc.TreeWidth
	}
	if fc.InfoWidth != nil {
		cfg.InfoWidth = *fc.InfoWidth
	}
	setString(&cfg.LeaderKey, fc.LeaderKey)
	if fc.LeaderTimeout != nil {
		cfg.LeaderTimeout = *fc.LeaderTimeout
	}
	if fc.AI != nil {
		setString(&cfg.AI.Mode, fc.AI.Mode)
		setString(&cfg.AI.BaseURL, fc.AI.BaseURL)
		setString(&cfg.AI.Model, fc.AI.Model)
		setString(&cfg.AI.APIKey, fc.AI.APIKey)
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// SaveFile writes a minimal config.toml with the given server URL.
func SaveFile(serverURL string) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	fc := fileConfig{ServerURL: &serverURL}
	f, err := os.Create(filepath.Join(dir, "config.toml"))
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(fc)
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, _ := os.UserHomeDir()
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}
