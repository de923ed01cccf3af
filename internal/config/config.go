package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// AIConfig selects how rewrite requests are sent.
type AIConfig struct {
	Mode    string `validate:"oneof=proxy direct"`
	BaseURL string `validate:"omitempty,url"`
	Model   string
	APIKey  string
}

type Config struct {
	ServerURL     string `validate:"required,url"`
	Token         string
	CacheDir      string        `validate:"required"`
	AutosaveDelay time.Duration `validate:"gt=0"`
	Listen        string        `validate:"required"`
	LiveRefresh   bool
	ImportDir     string
	LogLevel      string `validate:"oneof=debug info warn error"`
	Theme         string
	TreeWidth     int `validate:"gte=10"`
	InfoWidth     int `validate:"gte=10"`
	ShowTree      bool
	ShowInfo      bool
	ShowStatus    bool
	LeaderKey     string `validate:"required"`
	LeaderTimeout int    `validate:"gt=0"`
	AI            AIConfig
}

func Default() Config {
	return Config{
		ServerURL:     "http://localhost:8080",
		CacheDir:      defaultCacheDir(),
		AutosaveDelay: 2 * time.Second,
		Listen:        ":2222",
		LiveRefresh:   true,
		LogLevel:      "info",
		Theme:         "default",
		TreeWidth:     30,
		InfoWidth:     30,
		ShowTree:      true,
		ShowInfo:      true,
		ShowStatus:    true,
		LeaderKey:     "ctrl+x",
		LeaderTimeout: 500,
		AI:            AIConfig{Mode: "proxy"},
	}
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "scribe")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "scribe")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c Config) Validate() error {
	var errs []error
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			errs = append(errs, fmt.Errorf("%s: failed %q check (value %v)", fieldKey(fe.Namespace()), fe.Tag(), fe.Value()))
		}
	}
	if c.AI.Mode == "direct" {
		if c.AI.BaseURL == "" {
			errs = append(errs, errors.New("ai.base_url: required in direct mode"))
		}
		if c.AI.Model == "" {
			errs = append(errs, errors.New("ai.model: required in direct mode"))
		}
	}
	return errors.Join(errs...)
}

var keyNames = map[string]string{
	"ServerURL":     "server_url",
	"CacheDir":      "cache_dir",
	"AutosaveDelay": "autosave_delay_ms",
	"Listen":        "listen",
	"LogLevel":      "log_level",
	"TreeWidth":     "tree_width",
	"InfoWidth":     "info_width",
	"LeaderKey":     "leader_key",
	"LeaderTimeout": "leader_timeout",
	"AI.Mode":       "ai.mode",
	"AI.BaseURL":    "ai.base_url",
}

// fieldKey maps a validator namespace like "Config.AI.Mode" to its TOML key.
func fieldKey(ns string) string {
	ns = strings.TrimPrefix(ns, "Config.")
	if k, ok := keyNames[ns]; ok {
		return k
	}
	return ns
}
