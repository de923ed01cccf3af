package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Environment variables that carry secrets and the server address.
const (
	EnvServerURL = "SCRIBE_SERVER_URL"
	EnvToken     = "SCRIBE_TOKEN"
	EnvAIKey     = "SCRIBE_AI_API_KEY"
)

// EnvPath returns the .env file read alongside config.toml.
func EnvPath() string {
	return filepath.Join(ConfigDir(), ".env")
}

// LoadEnv applies values from the .env file and then from the process
// environment, which wins. A missing .env file is not an error.
func LoadEnv(cfg *Config) error {
	file, err := godotenv.Read(EnvPath())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v, true
		}
		v, ok := file[key]
		return v, ok && v != ""
	}

	if v, ok := lookup(EnvServerURL); ok {
		cfg.ServerURL = v
	}
	if v, ok := lookup(EnvToken); ok {
		cfg.Token = v
	}
	if v, ok := lookup(EnvAIKey); ok {
		cfg.AI.APIKey = v
	}
	return nil
}

// Load builds the effective configuration: defaults, then config.toml, then
// .env and the environment. It reports whether config.toml existed.
func Load() (Config, bool, error) {
	cfg := Default()
	exists, err := LoadFile(&cfg)
	if err != nil {
		return cfg, exists, err
	}
	if err := LoadEnv(&cfg); err != nil {
		return cfg, exists, err
	}
	return cfg, exists, nil
}
