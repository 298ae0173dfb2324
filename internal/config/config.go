package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"stageline/internal/schema"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	// DefaultAccessSecret matches the secret the admin screens shipped with.
	DefaultAccessSecret = "11111"
)

// Config models stageline.yml.
type Config struct {
	Organization      string   `yaml:"organization"`
	Locale            string   `yaml:"locale"`
	ConstructionTypes []string `yaml:"construction_types"`
	Access            struct {
		Secret string `yaml:"secret"`
	} `yaml:"access"`
	Storage struct {
		Bucket        string `yaml:"bucket"`
		PublicBaseURL string `yaml:"public_base_url"`
		StagedTTL     string `yaml:"staged_ttl"`
	} `yaml:"storage"`
	Database struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"database"`
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; write one with sl config init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional falls back to Default when the config file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("config.locale: %w", err)
	}
	seen := map[string]bool{}
	for _, ct := range c.ConstructionTypes {
		if strings.TrimSpace(ct) == "" {
			return fmt.Errorf("config.construction_types contains an empty entry")
		}
		if seen[ct] {
			return fmt.Errorf("config.construction_types lists %q twice", ct)
		}
		seen[ct] = true
	}
	if strings.TrimSpace(c.Access.Secret) == "" {
		return fmt.Errorf("config.access.secret is required")
	}
	if strings.TrimSpace(c.Storage.Bucket) == "" {
		return fmt.Errorf("config.storage.bucket is required")
	}
	if c.Storage.StagedTTL != "" {
		if _, err := c.StagedTTL(); err != nil {
			return err
		}
	}
	switch c.Database.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("config.database.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("config.database.driver must be %s or %s", DriverSQLite, DriverPostgres)
	}
	return nil
}

// Language is the tag used to sort names and format numbers.
func (c *Config) Language() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.Thai
	}
	return tag
}

// Types returns the configured construction types, or the built-in list.
func (c *Config) Types() []string {
	if len(c.ConstructionTypes) == 0 {
		return append([]string(nil), schema.DefaultConstructionTypes...)
	}
	return append([]string(nil), c.ConstructionTypes...)
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "stageline.yml")
}

// Default returns the configuration used when a workspace has no file.
func Default() *Config {
	var cfg Config
	_ = yaml.Unmarshal([]byte(defaultTemplate), &cfg)
	return &cfg
}

// GenerateDefault returns default config YAML.
func GenerateDefault() string {
	return defaultTemplate
}

// FromYAML parses and validates config from raw YAML bytes. Keys left out
// keep their default values.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

const defaultTemplate = `organization: ""
locale: th

construction_types:
  - New construction
  - Renovation
  - Change order to existing contract

access:
  secret: "11111"

storage:
  bucket: project-files
  public_base_url: http://localhost:8080/v0/files
  staged_ttl: 24h

database:
  driver: sqlite
  dsn: ""
`
