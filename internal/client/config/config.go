package config

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	"github.com/localeforge/localeforge/internal/client/workspace"
	"github.com/localeforge/localeforge/internal/utils"
)

// Config is the per-project configuration stored as lforge.json at the
// project root. Zero values mean "not configured".
type Config struct {
	ResourceFormat      string `json:"format,omitempty"`
	DefaultLanguageCode string `json:"defaultLanguage,omitempty"`
	RemoteURL           string `json:"remote,omitempty"`

	Path string `json:"-"`
}

// Load reads the project configuration from the workspace. A missing
// file yields (nil, nil); the caller treats that as "not configured".
func Load(ws *workspace.Workspace) (*Config, error) {
	data, err := os.ReadFile(ws.ConfigPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", ws.ConfigPath, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", ws.ConfigPath, err)
	}

	cfg.Path = ws.ConfigPath
	return &cfg, nil
}

// Exists reports whether the project has a configuration file.
func Exists(ws *workspace.Workspace) bool {
	return utils.FileExists(ws.ConfigPath)
}

// Save writes the configuration atomically as indented JSON.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := utils.WriteFileAtomic(path, data, 0o644); err != nil {
		return err
	}

	c.Path = path
	return nil
}

// Raw returns the config file bytes exactly as stored on disk, for the
// byte-level configuration conflict comparison.
func (c *Config) Raw() ([]byte, error) {
	if c.Path == "" {
		return nil, fmt.Errorf("config has no backing file")
	}
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", c.Path, err)
	}
	return data, nil
}

// Properties returns the configuration as named property values, the
// unit of change tracking in the sync state's ConfigProperties map.
func (c *Config) Properties() map[string]string {
	return map[string]string{
		"format":          c.ResourceFormat,
		"defaultLanguage": c.DefaultLanguageCode,
		"remote":          c.RemoteURL,
	}
}
