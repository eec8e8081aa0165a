// Package config loads and persists the plugin's user.toml configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/plugforge/deepseek/logging"
)

// DefaultAPIURL is used when the config file has no api_url.
const DefaultAPIURL = "https://api.deepseek.com/v1/chat/completions"

// FileName is the config file name inside the plugin's config directory.
const FileName = "user.toml"

var log = logging.New("config")

// UserConfig holds the user-editable settings under the [user] table.
type UserConfig struct {
	APIKey string `toml:"api_key,omitempty"`
	APIURL string `toml:"api_url"`
}

// fileConfig mirrors the full file layout. The [plugin] table belongs to the
// host and must survive a save untouched.
type fileConfig struct {
	Plugin map[string]interface{} `toml:"plugin,omitempty"`
	User   *UserConfig            `toml:"user,omitempty"`
}

// Manager reads and writes the config file at a fixed path.
type Manager struct {
	path string
}

// NewManager creates a manager for the config file inside dir.
func NewManager(dir string) *Manager {
	return &Manager{path: filepath.Join(dir, FileName)}
}

// Path returns the absolute config file path.
func (m *Manager) Path() string {
	return m.path
}

// LoadUser reads the [user] table. A missing file or missing table yields
// defaults with a warning rather than an error; the plugin stays usable
// until the user supplies a key.
func (m *Manager) LoadUser() UserConfig {
	cfg, err := m.load()
	if err != nil {
		log.Warn().Err(err).Str("path", m.path).Msg("could not read config, using defaults")
		return UserConfig{APIURL: DefaultAPIURL}
	}

	if cfg.User == nil {
		log.Warn().Str("path", m.path).Msg("config has no [user] table, using defaults")
		return UserConfig{APIURL: DefaultAPIURL}
	}

	user := *cfg.User
	if user.APIURL == "" {
		user.APIURL = DefaultAPIURL
	}
	return user
}

// SaveUser writes the [user] table, preserving any existing [plugin] table.
func (m *Manager) SaveUser(user UserConfig) error {
	cfg, err := m.load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read config: %w", err)
	}
	if cfg == nil {
		cfg = &fileConfig{}
	}

	if user.APIURL == "" {
		user.APIURL = DefaultAPIURL
	}
	cfg.User = &user

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (m *Manager) load() (*fileConfig, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return nil, err
	}

	var cfg fileConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(m.path), err)
	}
	return &cfg, nil
}
