package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"taskdeck/internal/domain"
)

// Config models taskdeck.yml.
type Config struct {
	Categories map[string]struct {
		Description string `yaml:"description"`
	} `yaml:"categories"`
	View struct {
		Filter string `yaml:"filter"`
		Sort   string `yaml:"sort"`
	} `yaml:"view"`
	Server struct {
		Addr     string `yaml:"addr"`
		BasePath string `yaml:"base_path"`
	} `yaml:"server"`
}

// Load reads and validates config from the workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; create one with td config init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional returns nil,nil if the config file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// FromYAML parses and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

// Validate ensures the config names known filters, sort keys and
// categories.
func (c *Config) Validate() error {
	if c.View.Filter != "" {
		if _, _, err := domain.ParseFilter(c.View.Filter); err != nil {
			return fmt.Errorf("config.view.filter: %w", err)
		}
	}
	if c.View.Sort != "" && !domain.SortKey(c.View.Sort).Valid() {
		return fmt.Errorf("config.view.sort: unknown sort key %q", c.View.Sort)
	}
	for name := range c.Categories {
		if name == "" {
			return fmt.Errorf("config.categories contains an empty name")
		}
		if !domain.Category(name).Valid() {
			return fmt.Errorf("config.categories: unknown category %q", name)
		}
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "taskdeck.yml")
}

// Default returns the default Config struct.
func Default() *Config {
	var cfg Config
	_ = yaml.Unmarshal([]byte(defaultTemplate), &cfg)
	return &cfg
}

// GenerateDefault returns the default config YAML.
func GenerateDefault() string {
	return defaultTemplate
}

const defaultTemplate = `categories:
  work:
    description: "Job and professional tasks"
  personal:
    description: "Everyday personal errands"
  shopping:
    description: "Things to buy"
  health:
    description: "Appointments, exercise, medication"
  study:
    description: "Courses, reading, practice"

view:
  filter: all
  sort: created-desc

server:
  addr: 127.0.0.1:8080
  base_path: /v0
`
