package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the persisted user configuration. Zero values mean "use the default".
type Config struct {
	Provider      AI         `toml:"provider,omitempty"`
	APIKey        string     `toml:"api_key,omitempty"`
	Model         Model      `toml:"model,omitempty"`
	Locale        string     `toml:"locale,omitempty"`
	Generate      int        `toml:"generate,omitempty"`
	MaxLength     int        `toml:"max_length,omitempty"`
	Type          CommitType `toml:"type,omitempty"`
	TimeoutMs     int        `toml:"timeout,omitempty"`
	Proxy         string     `toml:"proxy,omitempty"`
	MaxDiffTokens *int       `toml:"max_diff_tokens,omitempty"`
	GitHubToken   string     `toml:"github_token,omitempty"`

	PathFile string `toml:"-"`
}

const (
	defaultFileName      = ".aicommits.toml"
	defaultLocale        = "en"
	defaultGenerate      = 1
	defaultMaxLength     = 50
	defaultTimeoutMs     = 10000
	defaultMaxDiffTokens = 32000

	// EnvConfigPath overrides the location of the config file.
	EnvConfigPath = "AICOMMITS_CONFIG"
)

// DefaultPath returns $AICOMMITS_CONFIG, or ~/.aicommits.toml.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error getting user home directory: %w", err)
	}
	return filepath.Join(home, defaultFileName), nil
}

// LoadConfig reads the config at DefaultPath. A missing file yields an empty config.
func LoadConfig() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFrom(path)
}

func LoadConfigFrom(path string) (*Config, error) {
	cfg := &Config{PathFile: path}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	} else if err != nil {
		return nil, fmt.Errorf("error checking config file: %w", err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("error decoding config file %s: %w", path, err)
	}
	cfg.PathFile = path

	return cfg, nil
}

// SaveConfig writes the config back to its file. The file holds secrets, so it is private to the user.
func SaveConfig(cfg *Config) error {
	if cfg.PathFile == "" {
		return fmt.Errorf("config file path is not defined")
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}

	if dir := filepath.Dir(cfg.PathFile); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating config directory: %w", err)
		}
	}

	if err := os.WriteFile(cfg.PathFile, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}

	return nil
}

// ProviderOrDefault returns the configured provider, openai when unset.
func (c *Config) ProviderOrDefault() AI {
	if c.Provider == "" {
		return AIOpenAI
	}
	return c.Provider
}

// GitHubTokenResolved prefers $GITHUB_TOKEN over the file value.
func (c *Config) GitHubTokenResolved() string {
	if t := os.Getenv("GITHUB_TOKEN"); t != "" {
		return t
	}
	return c.GitHubToken
}
